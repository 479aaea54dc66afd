// Package transactions provides database operations for purchase and
// exchange requests between buyers and sellers.
package transactions

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookswap/internal/entities"
)

// Repository handles all transaction database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new transactions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to an open database transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// InTx runs fn inside a database transaction.
func (r *Repository) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// Create stores a new request.
func (r *Repository) Create(ctx context.Context, t *entities.Transaction) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error
}

// GetByID retrieves a transaction.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Transaction, error) {
	var t entities.Transaction
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// HasOpen reports whether buyerID already holds a pending or accepted
// request on bookID.
func (r *Repository) HasOpen(ctx context.Context, buyerID, bookID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Transaction{}).
		Where("buyer_id = ? AND book_id = ?", buyerID, bookID).
		Where("status IN ?", []entities.TransactionStatus{entities.TransactionPending, entities.TransactionAccepted}).
		Count(&count).Error
	return count > 0, err
}

// HasOpenForBook reports whether any pending or accepted request exists on bookID.
func (r *Repository) HasOpenForBook(ctx context.Context, bookID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Transaction{}).
		Where("book_id = ?", bookID).
		Where("status IN ?", []entities.TransactionStatus{entities.TransactionPending, entities.TransactionAccepted}).
		Count(&count).Error
	return count > 0, err
}

// ListForUser returns transactions where userID is buyer or seller,
// newest first, with the book title.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]entities.TransactionView, error) {
	var txs []entities.Transaction
	err := r.db.WithContext(ctx).
		Preload("Book").
		Where("buyer_id = ? OR seller_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return entities.NewTransactionViews(txs), nil
}

// UpdateStatus moves a transaction to status.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status entities.TransactionStatus) error {
	result := r.db.WithContext(ctx).Model(&entities.Transaction{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": r.db.NowFunc()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RejectOpenForBook rejects every other pending request on bookID, used
// once the book is sold.
func (r *Repository) RejectOpenForBook(ctx context.Context, bookID, exceptID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entities.Transaction{}).
		Where("book_id = ? AND id <> ? AND status = ?", bookID, exceptID, entities.TransactionPending).
		Updates(map[string]any{"status": entities.TransactionRejected, "updated_at": r.db.NowFunc()})
	return result.RowsAffected, result.Error
}
