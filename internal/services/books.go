package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/database/favourites"
	"github.com/mrlokans/bookswap/internal/entities"
)

// BookInput carries the editable fields of a listing. Updates replace every
// field; Status is applied only when set.
type BookInput struct {
	Title          string
	Author         string
	Subject        string
	ISBN           string
	Condition      entities.BookCondition
	Price          *float64
	IsExchangeable bool
	Notes          string
	Status         entities.BookStatus
}

func (in *BookInput) validate() error {
	var errs fieldErrors
	errs.required("title", &in.Title)
	errs.required("author", &in.Author)
	errs.required("subject", &in.Subject)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Notes = strings.TrimSpace(in.Notes)
	if !in.Condition.Valid() {
		errs.add("condition", "condition must be one of good, medium, poor")
	}
	if in.Price != nil && *in.Price < 0 {
		errs.add("price", "price must not be negative")
	}
	if in.Status != "" && !in.Status.Valid() {
		errs.add("status", "status must be one of available, reserved, sold")
	}
	return errs.err("invalid book")
}

func (in BookInput) apply(book *entities.Book) {
	book.Title = in.Title
	book.Author = in.Author
	book.Subject = in.Subject
	book.ISBN = in.ISBN
	book.Condition = in.Condition
	book.Price = in.Price
	book.IsExchangeable = in.IsExchangeable
	book.Notes = in.Notes
	if in.Status != "" {
		book.Status = in.Status
	}
}

// BookService enforces listing ownership and favourite rules.
// Book status moves only through transactions while a request is open.
type BookService struct {
	books      BookStore
	favourites FavouriteStore
	requests   OpenRequestStore
	activity   ActivityLog
}

func NewBookService(books BookStore, favs FavouriteStore, requests OpenRequestStore, activity ActivityLog) *BookService {
	return &BookService{books: books, favourites: favs, requests: requests, activity: activityOrNoop(activity)}
}

// List returns listings matching filter, newest first.
func (s *BookService) List(ctx context.Context, filter entities.BookFilter) ([]entities.BookListing, error) {
	filter.Title = strings.TrimSpace(filter.Title)
	filter.Author = strings.TrimSpace(filter.Author)
	filter.Subject = strings.TrimSpace(filter.Subject)

	listings, err := s.books.List(ctx, filter)
	if err != nil {
		return nil, Internal("list books", err)
	}
	return listings, nil
}

// Get returns one listing with seller display fields.
func (s *BookService) Get(ctx context.Context, id string) (*entities.BookListing, error) {
	listing, err := s.books.GetListing(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Book")
	}
	if err != nil {
		return nil, Internal("get book", err)
	}
	return listing, nil
}

// Create lists a new book owned by sellerID.
func (s *BookService) Create(ctx context.Context, sellerID string, in BookInput) (*entities.Book, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	book := &entities.Book{SellerID: sellerID}
	in.apply(book)

	if err := s.books.Create(ctx, book); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, NotFound("User")
		}
		return nil, Internal("create book", err)
	}

	s.activity.LogListing(sellerID, "book_create", book.ID, "Listed "+book.Title)
	return book, nil
}

// Update replaces a listing owned by userID.
func (s *BookService) Update(ctx context.Context, userID, id string, in BookInput) (*entities.Book, error) {
	book, err := s.owned(ctx, userID, id, "update")
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Status != "" && in.Status != book.Status {
		open, err := s.requests.HasOpenForBook(ctx, id)
		if err != nil {
			return nil, Internal("check open transactions", err)
		}
		if open {
			return nil, Conflict("Book status is managed by an open transaction")
		}
	}

	in.apply(book)
	if err := s.books.Update(ctx, book); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Book")
		}
		return nil, Internal("update book", err)
	}

	s.activity.LogListing(userID, "book_update", book.ID, "Updated "+book.Title)
	return book, nil
}

// Delete removes a listing owned by userID together with its favourites,
// messages and transactions.
func (s *BookService) Delete(ctx context.Context, userID, id string) error {
	book, err := s.owned(ctx, userID, id, "delete")
	if err != nil {
		return err
	}

	if err := s.books.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Book")
		}
		return Internal("delete book", err)
	}

	s.activity.LogListing(userID, "book_delete", id, "Deleted "+book.Title)
	return nil
}

// AddFavourite bookmarks a book for userID.
func (s *BookService) AddFavourite(ctx context.Context, userID, bookID string) error {
	if _, err := s.find(ctx, bookID); err != nil {
		return err
	}

	err := s.favourites.Add(ctx, userID, bookID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, favourites.ErrAlreadyFavourite):
		return Conflict("Book already in favorites")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return NotFound("Book")
	default:
		return Internal("add favourite", err)
	}
}

// RemoveFavourite drops the bookmark; removing an absent one succeeds.
func (s *BookService) RemoveFavourite(ctx context.Context, userID, bookID string) error {
	if err := s.favourites.Remove(ctx, userID, bookID); err != nil {
		return Internal("remove favourite", err)
	}
	return nil
}

func (s *BookService) find(ctx context.Context, id string) (*entities.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Book")
	}
	if err != nil {
		return nil, Internal("get book", err)
	}
	return book, nil
}

func (s *BookService) owned(ctx context.Context, userID, id, verb string) (*entities.Book, error) {
	book, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if book.SellerID != userID {
		return nil, Forbidden(fmt.Sprintf("Not authorized to %s this book", verb))
	}
	return book, nil
}
