package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mrlokans/bookswap/internal/entities"
)

// Thread is the conversation currently on screen: one book and, optionally,
// one counterpart.
type Thread struct {
	BookID      string
	OtherUserID string
	Messages    []entities.ThreadMessage
}

// Session is the view state of one signed-in user. Its fields change only
// through its methods; render code reads them through the accessors.
type Session struct {
	client *Client

	profile       *entities.User
	filter        entities.BookFilter
	books         []entities.BookListing
	conversations []entities.Conversation
	thread        *Thread
}

func NewSession(c *Client) *Session {
	return &Session{client: c}
}

func (s *Session) Client() *Client { return s.client }
func (s *Session) Token() string { return s.client.Token() }
func (s *Session) LoggedIn() bool { return s.client.Token() != "" }
func (s *Session) Profile() *entities.User { return s.profile }
func (s *Session) Filter() entities.BookFilter { return s.filter }
func (s *Session) Books() []entities.BookListing { return s.books }
func (s *Session) Conversations() []entities.Conversation { return s.conversations }
func (s *Session) Thread() *Thread { return s.thread }

// UserID is empty until a profile has been loaded.
func (s *Session) UserID() string {
	if s.profile == nil {
		return ""
	}
	return s.profile.ID
}

// Login stores the token and loads the profile.
func (s *Session) Login(ctx context.Context, email, password string) error {
	token, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.start(ctx, token)
}

// Register creates the account and signs in with the returned token.
func (s *Session) Register(ctx context.Context, req RegisterRequest) error {
	token, err := s.client.Register(ctx, req)
	if err != nil {
		return err
	}
	return s.start(ctx, token)
}

func (s *Session) start(ctx context.Context, token string) error {
	s.reset()
	s.client.SetToken(token)
	return s.RefreshProfile(ctx)
}

func (s *Session) RefreshProfile(ctx context.Context) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	profile, err := s.client.Profile(ctx)
	if err != nil {
		return err
	}
	s.profile = profile
	return nil
}

// Logout revokes the token on the server and clears all state. A token the
// server already rejects still counts as logged out.
func (s *Session) Logout(ctx context.Context) error {
	if !s.LoggedIn() {
		s.reset()
		return nil
	}
	err := s.client.Logout(ctx)
	if err != nil && !IsUnauthorized(err) {
		return err
	}
	s.client.SetToken("")
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.profile = nil
	s.filter = entities.BookFilter{}
	s.books = nil
	s.conversations = nil
	s.thread = nil
}

// SetFilter replaces the current filter and reloads the listing page.
func (s *Session) SetFilter(ctx context.Context, filter entities.BookFilter) error {
	books, err := s.client.ListBooks(ctx, filter)
	if err != nil {
		return err
	}
	s.filter = filter
	s.books = books
	return nil
}

func (s *Session) RefreshBooks(ctx context.Context) error {
	return s.SetFilter(ctx, s.filter)
}

func (s *Session) RefreshConversations(ctx context.Context) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	convs, err := s.client.Conversations(ctx)
	if err != nil {
		return err
	}
	s.conversations = convs
	return nil
}

// OpenThread loads the messages about bookID, narrowed to otherUserID when
// it is set.
func (s *Session) OpenThread(ctx context.Context, bookID, otherUserID string) error {
	if !s.LoggedIn() {
		return ErrNotLoggedIn
	}
	messages, err := s.client.BookMessages(ctx, bookID, otherUserID)
	if err != nil {
		return err
	}
	s.thread = &Thread{BookID: bookID, OtherUserID: otherUserID, Messages: messages}
	return nil
}

// Reply sends content into the open thread and reloads it. Without an
// explicit counterpart the reply goes to whoever sent or received the
// latest message.
func (s *Session) Reply(ctx context.Context, content string) error {
	if s.thread == nil {
		return ErrNoThread
	}
	receiver := s.thread.OtherUserID
	if receiver == "" {
		receiver = s.counterpartOfLatest()
	}
	if receiver == "" {
		return ErrNoThread
	}
	if _, err := s.client.SendMessage(ctx, receiver, s.thread.BookID, content); err != nil {
		return err
	}
	return s.OpenThread(ctx, s.thread.BookID, s.thread.OtherUserID)
}

func (s *Session) counterpartOfLatest() string {
	if len(s.thread.Messages) == 0 {
		return ""
	}
	last := s.thread.Messages[len(s.thread.Messages)-1]
	if last.SenderID == s.UserID() {
		return last.ReceiverID
	}
	return last.SenderID
}

// savedSession is what survives between CLI invocations.
type savedSession struct {
	Token       string              `json:"token"`
	Filter      entities.BookFilter `json:"filter"`
	BookID      string              `json:"threadBookId,omitempty"`
	OtherUserID string              `json:"threadOtherUserId,omitempty"`
}

// Save writes the token, filter and open thread to path with owner-only
// permissions.
func (s *Session) Save(path string) error {
	state := savedSession{Token: s.Token(), Filter: s.filter}
	if s.thread != nil {
		state.BookID = s.thread.BookID
		state.OtherUserID = s.thread.OtherUserID
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// LoadSession restores a saved session onto c. A missing file yields an
// empty, logged-out session. Nothing is fetched from the server.
func LoadSession(path string, c *Client) (*Session, error) {
	s := NewSession(c)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var state savedSession
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", path, err)
	}
	c.SetToken(state.Token)
	s.filter = state.Filter
	if state.BookID != "" {
		s.thread = &Thread{BookID: state.BookID, OtherUserID: state.OtherUserID}
	}
	return s, nil
}

// DefaultSessionPath is ~/.bookswap/session.json.
func DefaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".bookswap", "session.json")
	}
	return filepath.Join(home, ".bookswap", "session.json")
}
