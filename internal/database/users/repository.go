// Package users provides database operations for marketplace accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail(ctx, "ana@uni.edu")
package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. A taken email yields gorm.ErrDuplicatedKey.
func (r *Repository) Create(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by exact email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user with the given ID is present.
func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// UpdateProfile applies the supplied fields and bumps updated_at.
// Returns gorm.ErrRecordNotFound when the user does not exist.
func (r *Repository) UpdateProfile(ctx context.Context, id string, update entities.ProfileUpdate) (*entities.User, error) {
	changes := map[string]any{"updated_at": r.db.NowFunc()}
	if update.FirstName != nil {
		changes["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		changes["last_name"] = *update.LastName
	}
	if update.Faculty != nil {
		changes["faculty"] = *update.Faculty
	}
	if update.Department != nil {
		changes["department"] = *update.Department
	}
	if update.PhoneNumber != nil {
		changes["phone_number"] = *update.PhoneNumber
	}

	result := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}

// UpdatePassword stores a new password hash.
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).
		Updates(map[string]any{"password": passwordHash, "updated_at": r.db.NowFunc()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
