// Package books provides database operations for book listings.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	listings, err := repo.List(ctx, entities.BookFilter{Subject: "calc"})
package books

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/entities"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a listing. A missing seller yields gorm.ErrForeignKeyViolated.
func (r *Repository) Create(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Omit("Seller").Create(book).Error
}

// GetByID retrieves a book without seller details.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetListing retrieves a book with the display fields of its seller.
func (r *Repository) GetListing(ctx context.Context, id string) (*entities.BookListing, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Preload("Seller").Where("id = ?", id).First(&book).Error
	if err != nil {
		return nil, err
	}
	listing := entities.NewBookListing(book)
	return &listing, nil
}

// List returns listings matching every supplied filter, newest first.
func (r *Repository) List(ctx context.Context, filter entities.BookFilter) ([]entities.BookListing, error) {
	query := r.db.WithContext(ctx).Model(&entities.Book{}).
		Select("books.*").
		Joins("JOIN users ON users.id = books.seller_id").
		Preload("Seller")

	if filter.Title != "" {
		query = query.Where(`LOWER(books.title) LIKE ? ESCAPE '\'`, containsPattern(filter.Title))
	}
	if filter.Author != "" {
		query = query.Where(`LOWER(books.author) LIKE ? ESCAPE '\'`, containsPattern(filter.Author))
	}
	if filter.Subject != "" {
		query = query.Where(`LOWER(books.subject) LIKE ? ESCAPE '\'`, containsPattern(filter.Subject))
	}
	if filter.Faculty != "" {
		query = query.Where("users.faculty = ?", filter.Faculty)
	}
	if filter.Department != "" {
		query = query.Where("users.department = ?", filter.Department)
	}
	if filter.Condition != "" {
		query = query.Where("books.condition = ?", filter.Condition)
	}
	if filter.SellerID != "" {
		query = query.Where("books.seller_id = ?", filter.SellerID)
	}
	if filter.Status != "" {
		query = query.Where("books.status = ?", filter.Status)
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)

	var books []entities.Book
	err := query.Order("books.created_at DESC").Order("books.id DESC").
		Limit(limit).Offset(offset).
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return entities.NewBookListings(books), nil
}

// ListBySeller returns every listing owned by sellerID, newest first.
func (r *Repository) ListBySeller(ctx context.Context, sellerID string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

// Update replaces the editable fields of book and bumps updated_at.
// Status is written only when set.
func (r *Repository) Update(ctx context.Context, book *entities.Book) error {
	book.UpdatedAt = r.db.NowFunc()
	fields := []string{"title", "author", "subject", "isbn", "condition", "price", "is_exchangeable", "notes", "updated_at"}
	if book.Status != "" {
		fields = append(fields, "status")
	}
	result := r.db.WithContext(ctx).Model(&entities.Book{ID: book.ID}).Select(fields).Updates(book)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatus changes the availability of a listing.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status entities.BookStatus) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": r.db.NowFunc()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a listing; favorites, messages and transactions go with it.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Book{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// containsPattern builds a lower-cased LIKE pattern matching s anywhere,
// with LIKE metacharacters in s taken literally.
func containsPattern(s string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(s))
	return "%" + escaped + "%"
}
