package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/database/books"
	"github.com/mrlokans/bookswap/internal/database/transactions"
	"github.com/mrlokans/bookswap/internal/entities"
)

type party int

const (
	partyBuyer party = 1 << iota
	partySeller
)

type transition struct {
	from, to entities.TransactionStatus
}

type transitionRule struct {
	allowed party
	// bookStatus is applied to the book in the same database transaction;
	// empty leaves the book untouched.
	bookStatus entities.BookStatus
}

var transitions = map[transition]transitionRule{
	{entities.TransactionPending, entities.TransactionAccepted}:   {partySeller, entities.BookStatusReserved},
	{entities.TransactionPending, entities.TransactionRejected}:   {partySeller, ""},
	{entities.TransactionPending, entities.TransactionCancelled}:  {partyBuyer, ""},
	{entities.TransactionAccepted, entities.TransactionCancelled}: {partyBuyer | partySeller, entities.BookStatusAvailable},
	{entities.TransactionAccepted, entities.TransactionCompleted}: {partySeller, entities.BookStatusSold},
}

// TransactionService runs the purchase and exchange request workflow.
// Status changes and the matching book status change commit together.
type TransactionService struct {
	txs      *transactions.Repository
	books    *books.Repository
	activity ActivityLog
}

func NewTransactionService(txs *transactions.Repository, bookRepo *books.Repository, activity ActivityLog) *TransactionService {
	return &TransactionService{txs: txs, books: bookRepo, activity: activityOrNoop(activity)}
}

// Request opens a pending transaction by buyerID on bookID.
func (s *TransactionService) Request(ctx context.Context, buyerID, bookID string, kind entities.TransactionType) (*entities.Transaction, error) {
	if bookID == "" {
		return nil, Validation("invalid transaction", FieldError{Field: "bookId", Message: "bookId is required"})
	}
	if !kind.Valid() {
		return nil, Validation("invalid transaction", FieldError{Field: "type", Message: "type must be one of purchase, exchange"})
	}

	var created *entities.Transaction
	err := s.txs.InTx(ctx, func(gtx *gorm.DB) error {
		book, err := s.books.WithTx(gtx).GetByID(ctx, bookID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Book")
		}
		if err != nil {
			return Internal("get book", err)
		}

		if book.SellerID == buyerID {
			return Validation("Cannot request your own book")
		}
		if kind == entities.TransactionExchange && !book.IsExchangeable {
			return Validation("Book is not available for exchange")
		}
		if book.Status != entities.BookStatusAvailable {
			return Conflict("Book is not available")
		}

		txRepo := s.txs.WithTx(gtx)
		open, err := txRepo.HasOpen(ctx, buyerID, bookID)
		if err != nil {
			return Internal("check open transactions", err)
		}
		if open {
			return Conflict("You already have an open request for this book")
		}

		t := &entities.Transaction{
			BuyerID:  buyerID,
			SellerID: book.SellerID,
			BookID:   bookID,
			Type:     kind,
			Status:   entities.TransactionPending,
		}
		if err := txRepo.Create(ctx, t); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return Conflict("You already have an open request for this book")
			}
			return Internal("create transaction", err)
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.LogTransaction(buyerID, "transaction_request", created.ID,
		fmt.Sprintf("Requested %s of book %s", kind, bookID))
	return created, nil
}

// List returns the transactions where userID is buyer or seller.
func (s *TransactionService) List(ctx context.Context, userID string) ([]entities.TransactionView, error) {
	views, err := s.txs.ListForUser(ctx, userID)
	if err != nil {
		return nil, Internal("list transactions", err)
	}
	return views, nil
}

// UpdateStatus moves transaction id to status on behalf of userID.
func (s *TransactionService) UpdateStatus(ctx context.Context, userID, id string, status entities.TransactionStatus) (*entities.Transaction, error) {
	var updated *entities.Transaction
	err := s.txs.InTx(ctx, func(gtx *gorm.DB) error {
		txRepo := s.txs.WithTx(gtx)
		bookRepo := s.books.WithTx(gtx)

		t, err := txRepo.GetByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NotFound("Transaction")
		}
		if err != nil {
			return Internal("get transaction", err)
		}

		var actor party
		if t.BuyerID == userID {
			actor |= partyBuyer
		}
		if t.SellerID == userID {
			actor |= partySeller
		}
		if actor == 0 {
			return Forbidden("Not authorized to update this transaction")
		}

		rule, ok := transitions[transition{t.Status, status}]
		if !ok || rule.allowed&actor == 0 {
			return Conflict("Invalid status transition")
		}

		if status == entities.TransactionAccepted {
			book, err := bookRepo.GetByID(ctx, t.BookID)
			if err != nil {
				return Internal("get book", err)
			}
			if book.Status != entities.BookStatusAvailable {
				return Conflict("Book is not available")
			}
		}

		if err := txRepo.UpdateStatus(ctx, t.ID, status); err != nil {
			return Internal("update transaction", err)
		}
		if rule.bookStatus != "" {
			if err := bookRepo.UpdateStatus(ctx, t.BookID, rule.bookStatus); err != nil {
				return Internal("update book status", err)
			}
		}
		if status == entities.TransactionCompleted {
			if _, err := txRepo.RejectOpenForBook(ctx, t.BookID, t.ID); err != nil {
				return Internal("reject other requests", err)
			}
		}

		updated, err = txRepo.GetByID(ctx, t.ID)
		if err != nil {
			return Internal("reload transaction", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.LogTransaction(userID, "transaction_"+string(status), updated.ID,
		fmt.Sprintf("Transaction %s", status))
	return updated, nil
}
