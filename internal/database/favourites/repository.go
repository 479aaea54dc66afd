// Package favourites provides database operations for bookmarked listings.
//
// # Usage
//
//	repo := favourites.NewRepository(db)
//	err := repo.Add(ctx, userID, bookID)
//	listings, err := repo.ListForUser(ctx, userID)
package favourites

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/entities"
)

// ErrAlreadyFavourite is returned when the pair already exists.
var ErrAlreadyFavourite = errors.New("book already in favorites")

// Repository handles all favourites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favourites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Add bookmarks a book for a user.
func (r *Repository) Add(ctx context.Context, userID, bookID string) error {
	err := r.db.WithContext(ctx).Omit("User", "Book").
		Create(&entities.Favorite{UserID: userID, BookID: bookID}).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyFavourite
	}
	return err
}

// Remove deletes the bookmark. Removing an absent pair is not an error.
func (r *Repository) Remove(ctx context.Context, userID, bookID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Delete(&entities.Favorite{}).Error
}

// IsFavourite reports whether the user bookmarked the book.
func (r *Repository) IsFavourite(ctx context.Context, userID, bookID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Favorite{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// ListForUser returns the bookmarked listings of a user, most recently
// bookmarked first, with seller display fields.
func (r *Repository) ListForUser(ctx context.Context, userID string) ([]entities.BookListing, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Model(&entities.Book{}).
		Select("books.*").
		Joins("JOIN favorites ON favorites.book_id = books.id").
		Where("favorites.user_id = ?", userID).
		Preload("Seller").
		Order("favorites.created_at DESC").
		Find(&books).Error
	if err != nil {
		return nil, err
	}
	return entities.NewBookListings(books), nil
}
