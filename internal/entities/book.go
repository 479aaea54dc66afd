package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookCondition string

const (
	ConditionGood   BookCondition = "good"
	ConditionMedium BookCondition = "medium"
	ConditionPoor   BookCondition = "poor"
)

func (c BookCondition) Valid() bool {
	switch c {
	case ConditionGood, ConditionMedium, ConditionPoor:
		return true
	}
	return false
}

type BookStatus string

const (
	BookStatusAvailable BookStatus = "available"
	BookStatusReserved  BookStatus = "reserved"
	BookStatusSold      BookStatus = "sold"
)

func (s BookStatus) Valid() bool {
	switch s {
	case BookStatusAvailable, BookStatusReserved, BookStatusSold:
		return true
	}
	return false
}

// Book is a listing offered by a seller. Deleting it removes its favorites,
// messages and transactions.
type Book struct {
	ID             string        `gorm:"primaryKey;size:36" json:"id"`
	Title          string        `gorm:"size:512;not null;index" json:"title"`
	Author         string        `gorm:"size:256;not null;index" json:"author"`
	Subject        string        `gorm:"size:256;not null;index" json:"subject"`
	ISBN           string        `gorm:"size:20" json:"isbn,omitempty"`
	Condition      BookCondition `gorm:"size:10;not null;index" json:"condition"`
	Price          *float64      `json:"price"`
	IsExchangeable bool          `gorm:"not null;default:false" json:"isExchangeable"`
	Notes          string        `gorm:"type:text" json:"notes,omitempty"`
	SellerID       string        `gorm:"size:36;not null;index" json:"sellerId"`
	Seller         User          `gorm:"foreignKey:SellerID;constraint:OnDelete:CASCADE" json:"-"`
	Status         BookStatus    `gorm:"size:20;not null;default:available;index" json:"status"`
	CreatedAt      time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = BookStatusAvailable
	}
	return nil
}

// BookListing is a book together with the display fields of its seller.
type BookListing struct {
	Book
	SellerFirstName string `json:"firstName"`
	SellerLastName  string `json:"lastName"`
	Faculty         string `json:"faculty"`
	Department      string `json:"department"`
}

// NewBookListing expects b.Seller to be loaded.
func NewBookListing(b Book) BookListing {
	return BookListing{
		Book:            b,
		SellerFirstName: b.Seller.FirstName,
		SellerLastName:  b.Seller.LastName,
		Faculty:         b.Seller.Faculty,
		Department:      b.Seller.Department,
	}
}

func NewBookListings(books []Book) []BookListing {
	listings := make([]BookListing, 0, len(books))
	for _, b := range books {
		listings = append(listings, NewBookListing(b))
	}
	return listings
}

// BookFilter holds the optional listing filters. Empty fields are ignored.
// Title, Author and Subject match case-insensitive substrings; the rest
// match exactly.
type BookFilter struct {
	Title      string
	Author     string
	Subject    string
	Faculty    string
	Department string
	Condition  BookCondition
	SellerID   string
	Status     BookStatus
	Limit      int
	Offset     int
}

// Favorite links a user to a book they bookmarked.
type Favorite struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"userId"`
	BookID    string    `gorm:"primaryKey;size:36;index" json:"bookId"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Book      Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Favorite) TableName() string {
	return "favorites"
}
