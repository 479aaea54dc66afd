package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/entities"
)

// ActivityReader lists a user's recorded activity.
type ActivityReader interface {
	GetEvents(ctx context.Context, userID string, limit, offset int) ([]entities.AuditEvent, int64, error)
}

type UserService struct {
	users      UserStore
	books      BookStore
	favourites FavouriteStore
	events     ActivityReader
	activity   ActivityLog
}

func NewUserService(users UserStore, books BookStore, favs FavouriteStore, events ActivityReader, activity ActivityLog) *UserService {
	return &UserService{
		users:      users,
		books:      books,
		favourites: favs,
		events:     events,
		activity:   activityOrNoop(activity),
	}
}

func (s *UserService) Profile(ctx context.Context, userID string) (*entities.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("User")
	}
	if err != nil {
		return nil, Internal("get profile", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update. Supplied name, faculty and
// department values must not be blank; an empty phone number clears it.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update entities.ProfileUpdate) (*entities.User, error) {
	if update.IsEmpty() {
		return nil, Validation("No valid updates provided")
	}

	var errs fieldErrors
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"firstName", update.FirstName},
		{"lastName", update.LastName},
		{"faculty", update.Faculty},
		{"department", update.Department},
	} {
		if f.value != nil {
			errs.required(f.name, f.value)
		}
	}
	if update.PhoneNumber != nil {
		*update.PhoneNumber = strings.TrimSpace(*update.PhoneNumber)
		if *update.PhoneNumber != "" && !ValidPhoneNumber(*update.PhoneNumber) {
			errs.add("phoneNumber", "phoneNumber must contain only digits, spaces, dashes and a leading +")
		}
	}
	if err := errs.err("invalid profile"); err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("User")
	}
	if err != nil {
		return nil, Internal("update profile", err)
	}

	s.activity.LogProfile(userID, "profile_update", "Profile updated")
	return user, nil
}

// Favourites returns the caller's bookmarked listings, most recent first.
func (s *UserService) Favourites(ctx context.Context, userID string) ([]entities.BookListing, error) {
	listings, err := s.favourites.ListForUser(ctx, userID)
	if err != nil {
		return nil, Internal("list favourites", err)
	}
	return listings, nil
}

func (s *UserService) MyBooks(ctx context.Context, userID string) ([]entities.Book, error) {
	books, err := s.books.ListBySeller(ctx, userID)
	if err != nil {
		return nil, Internal("list own books", err)
	}
	return books, nil
}

// Activity returns one page of the caller's audit trail and the total count.
func (s *UserService) Activity(ctx context.Context, userID string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	if s.events == nil {
		return []entities.AuditEvent{}, 0, nil
	}
	events, total, err := s.events.GetEvents(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, Internal("list activity", err)
	}
	return events, total, nil
}
