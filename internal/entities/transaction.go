package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionExchange TransactionType = "exchange"
)

func (t TransactionType) Valid() bool {
	return t == TransactionPurchase || t == TransactionExchange
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionAccepted  TransactionStatus = "accepted"
	TransactionRejected  TransactionStatus = "rejected"
	TransactionCancelled TransactionStatus = "cancelled"
	TransactionCompleted TransactionStatus = "completed"
)

// IsOpen reports whether the transaction still holds a claim on the book.
func (s TransactionStatus) IsOpen() bool {
	return s == TransactionPending || s == TransactionAccepted
}

// Transaction is a buyer's request to purchase or exchange a listed book.
// A buyer holds at most one pending or accepted request per book.
type Transaction struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	BuyerID   string            `gorm:"size:36;not null;index;uniqueIndex:idx_transactions_open_request,where:status = 'pending' OR status = 'accepted'" json:"buyerId"`
	SellerID  string            `gorm:"size:36;not null;index" json:"sellerId"`
	BookID    string            `gorm:"size:36;not null;index;uniqueIndex:idx_transactions_open_request" json:"bookId"`
	Type      TransactionType   `gorm:"size:20;not null" json:"type"`
	Status    TransactionStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`

	Buyer  User `gorm:"foreignKey:BuyerID;constraint:OnDelete:CASCADE" json:"-"`
	Seller User `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"-"`
	Book   Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = TransactionPending
	}
	return nil
}

// TransactionView is a transaction with the book title for list rendering.
type TransactionView struct {
	Transaction
	BookTitle string `json:"bookTitle"`
}

// NewTransactionViews expects Book to be loaded on every transaction.
func NewTransactionViews(txs []Transaction) []TransactionView {
	views := make([]TransactionView, 0, len(txs))
	for _, t := range txs {
		views = append(views, TransactionView{Transaction: t, BookTitle: t.Book.Title})
	}
	return views
}
