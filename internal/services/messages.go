package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/entities"
)

// MessageInput is a message about a book addressed to another user.
type MessageInput struct {
	ReceiverID string
	BookID     string
	Content    string
}

type MessageService struct {
	messages MessageStore
	users    UserStore
	books    BookStore
}

func NewMessageService(messages MessageStore, users UserStore, books BookStore) *MessageService {
	return &MessageService{messages: messages, users: users, books: books}
}

// Send stores a message from senderID. The receiver and the book must exist
// and the receiver must be someone other than the sender.
func (s *MessageService) Send(ctx context.Context, senderID string, in MessageInput) (*entities.Message, error) {
	var errs fieldErrors
	errs.required("receiverId", &in.ReceiverID)
	errs.required("bookId", &in.BookID)
	errs.required("content", &in.Content)
	if in.ReceiverID != "" && in.ReceiverID == senderID {
		errs.add("receiverId", "cannot send a message to yourself")
	}
	if err := errs.err("invalid message"); err != nil {
		return nil, err
	}

	exists, err := s.users.Exists(ctx, in.ReceiverID)
	if err != nil {
		return nil, Internal("check receiver", err)
	}
	if !exists {
		return nil, NotFound("Receiver")
	}
	if _, err := s.books.GetByID(ctx, in.BookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Book")
		}
		return nil, Internal("get book", err)
	}

	msg := &entities.Message{
		SenderID:   senderID,
		ReceiverID: in.ReceiverID,
		BookID:     in.BookID,
		Content:    in.Content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, NotFound("Book")
		}
		return nil, Internal("send message", err)
	}
	return msg, nil
}

// BookThread returns the caller's messages about bookID, oldest first.
// A non-empty otherUserID narrows the result to that counterpart.
func (s *MessageService) BookThread(ctx context.Context, userID, bookID, otherUserID string) ([]entities.ThreadMessage, error) {
	if _, err := s.books.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Book")
		}
		return nil, Internal("get book", err)
	}

	thread, err := s.messages.ListForBook(ctx, bookID, userID, otherUserID)
	if err != nil {
		return nil, Internal("list messages", err)
	}
	return thread, nil
}

// Conversations returns one summary per (book, counterpart) the caller has
// exchanged messages about, most recently active first.
func (s *MessageService) Conversations(ctx context.Context, userID string) ([]entities.Conversation, error) {
	convs, err := s.messages.Conversations(ctx, userID)
	if err != nil {
		return nil, Internal("list conversations", err)
	}
	return convs, nil
}
