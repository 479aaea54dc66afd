package services

import (
	"context"

	"github.com/mrlokans/bookswap/internal/entities"
)

// UserStore provides access to accounts.
type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id string) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateProfile(ctx context.Context, id string, update entities.ProfileUpdate) (*entities.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// BookStore provides access to listings.
type BookStore interface {
	Create(ctx context.Context, book *entities.Book) error
	GetByID(ctx context.Context, id string) (*entities.Book, error)
	GetListing(ctx context.Context, id string) (*entities.BookListing, error)
	List(ctx context.Context, filter entities.BookFilter) ([]entities.BookListing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]entities.Book, error)
	Update(ctx context.Context, book *entities.Book) error
	Delete(ctx context.Context, id string) error
}

// FavouriteStore provides access to bookmarks.
type FavouriteStore interface {
	Add(ctx context.Context, userID, bookID string) error
	Remove(ctx context.Context, userID, bookID string) error
	ListForUser(ctx context.Context, userID string) ([]entities.BookListing, error)
}

// OpenRequestStore reports whether a book is claimed by the request workflow.
type OpenRequestStore interface {
	HasOpenForBook(ctx context.Context, bookID string) (bool, error)
}

// MessageStore provides access to messages and derived conversations.
type MessageStore interface {
	Create(ctx context.Context, msg *entities.Message) error
	ListForBook(ctx context.Context, bookID, userID, otherUserID string) ([]entities.ThreadMessage, error)
	Conversations(ctx context.Context, userID string) ([]entities.Conversation, error)
}

// ActivityLog records user-visible activity. Implementations must not block.
type ActivityLog interface {
	LogListing(userID, action, bookID, description string)
	LogProfile(userID, action, description string)
	LogTransaction(userID, action, transactionID, description string)
}

type noopActivity struct{}

func (noopActivity) LogListing(string, string, string, string)     {}
func (noopActivity) LogProfile(string, string, string)             {}
func (noopActivity) LogTransaction(string, string, string, string) {}

func activityOrNoop(a ActivityLog) ActivityLog {
	if a == nil {
		return noopActivity{}
	}
	return a
}
