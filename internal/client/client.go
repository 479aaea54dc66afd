// Package client talks to the bookswap REST API and keeps the view state a
// terminal front end needs between calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/bookswap/internal/entities"
)

const defaultTimeout = 30 * time.Second

// Client is safe for concurrent use. The bearer token is attached to every
// request once set.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the server at baseURL, e.g. http://localhost:8188.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Request bodies.

type RegisterRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Faculty     string `json:"faculty"`
	Department  string `json:"department"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// ProfileUpdate sends only the non-nil fields.
type ProfileUpdate struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Faculty     *string `json:"faculty,omitempty"`
	Department  *string `json:"department,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
}

type BookRequest struct {
	Title          string                 `json:"title"`
	Author         string                 `json:"author"`
	Subject        string                 `json:"subject"`
	ISBN           string                 `json:"isbn,omitempty"`
	Condition      entities.BookCondition `json:"condition"`
	Price          *float64               `json:"price,omitempty"`
	IsExchangeable bool                   `json:"isExchangeable"`
	Notes          string                 `json:"notes,omitempty"`
	Status         entities.BookStatus    `json:"status,omitempty"`
}

// ActivityPage is one page of the caller's audit trail.
type ActivityPage struct {
	Data    []entities.AuditEvent `json:"data"`
	Total   int64                 `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
	HasMore bool                  `json:"hasMore"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type createdResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Details []FieldError `json:"details"`
}

// Auth

func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var resp tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.Token, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Users

func (c *Client) Profile(ctx context.Context) (*entities.User, error) {
	var user entities.User
	if err := c.do(ctx, http.MethodGet, "/users/profile", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*entities.User, error) {
	var resp struct {
		Data entities.User `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/profile", nil, update, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPut, "/users/password", nil, body, nil)
}

func (c *Client) Favorites(ctx context.Context) ([]entities.BookListing, error) {
	var listings []entities.BookListing
	err := c.do(ctx, http.MethodGet, "/users/favorites", nil, nil, &listings)
	return listings, err
}

func (c *Client) MyBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := c.do(ctx, http.MethodGet, "/users/books", nil, nil, &books)
	return books, err
}

func (c *Client) Activity(ctx context.Context, limit, offset int) (*ActivityPage, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	var page ActivityPage
	if err := c.do(ctx, http.MethodGet, "/users/activity", q, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Books

func (c *Client) ListBooks(ctx context.Context, filter entities.BookFilter) ([]entities.BookListing, error) {
	var listings []entities.BookListing
	err := c.do(ctx, http.MethodGet, "/books", filterQuery(filter), nil, &listings)
	return listings, err
}

func (c *Client) GetBook(ctx context.Context, id string) (*entities.BookListing, error) {
	var listing entities.BookListing
	if err := c.do(ctx, http.MethodGet, "/books/"+url.PathEscape(id), nil, nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// CreateBook returns the new listing's ID.
func (c *Client) CreateBook(ctx context.Context, req BookRequest) (string, error) {
	var resp createdResponse
	if err := c.do(ctx, http.MethodPost, "/books", nil, req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

func (c *Client) UpdateBook(ctx context.Context, id string, req BookRequest) (*entities.Book, error) {
	var resp struct {
		Data entities.Book `json:"data"`
	}
	if err := c.do(ctx, http.MethodPut, "/books/"+url.PathEscape(id), nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Data, nil
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/books/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) AddFavorite(ctx context.Context, bookID string) error {
	return c.do(ctx, http.MethodPost, "/books/"+url.PathEscape(bookID)+"/favorite", nil, nil, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, bookID string) error {
	return c.do(ctx, http.MethodDelete, "/books/"+url.PathEscape(bookID)+"/favorite", nil, nil, nil)
}

// Messages

// SendMessage returns the stored message's ID.
func (c *Client) SendMessage(ctx context.Context, receiverID, bookID, content string) (string, error) {
	body := map[string]string{"receiverId": receiverID, "bookId": bookID, "content": content}
	var resp createdResponse
	if err := c.do(ctx, http.MethodPost, "/messages", nil, body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// BookMessages returns the caller's messages about a book, oldest first.
// A non-empty withUserID narrows them to one counterpart.
func (c *Client) BookMessages(ctx context.Context, bookID, withUserID string) ([]entities.ThreadMessage, error) {
	var q url.Values
	if withUserID != "" {
		q = url.Values{"with": {withUserID}}
	}
	var thread []entities.ThreadMessage
	err := c.do(ctx, http.MethodGet, "/messages/book/"+url.PathEscape(bookID), q, nil, &thread)
	return thread, err
}

func (c *Client) Conversations(ctx context.Context) ([]entities.Conversation, error) {
	var convs []entities.Conversation
	err := c.do(ctx, http.MethodGet, "/messages/conversations", nil, nil, &convs)
	return convs, err
}

// Transactions

func (c *Client) RequestTransaction(ctx context.Context, bookID string, kind entities.TransactionType) (*entities.Transaction, error) {
	body := map[string]string{"bookId": bookID, "type": string(kind)}
	var tx entities.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, body, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (c *Client) Transactions(ctx context.Context) ([]entities.TransactionView, error) {
	var views []entities.TransactionView
	err := c.do(ctx, http.MethodGet, "/transactions", nil, nil, &views)
	return views, err
}

func (c *Client) UpdateTransactionStatus(ctx context.Context, id string, status entities.TransactionStatus) (*entities.Transaction, error) {
	body := map[string]string{"status": string(status)}
	var tx entities.Transaction
	if err := c.do(ctx, http.MethodPut, "/transactions/"+url.PathEscape(id)+"/status", nil, body, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func filterQuery(f entities.BookFilter) url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("title", f.Title)
	set("author", f.Author)
	set("subject", f.Subject)
	set("faculty", f.Faculty)
	set("department", f.Department)
	set("condition", string(f.Condition))
	set("sellerId", f.SellerID)
	set("status", string(f.Status))
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	return q
}

// do sends one request under /api and decodes a 2xx body into out when out
// is non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + "/api" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	apiErr := &APIError{Status: status}
	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
		apiErr.Details = body.Details
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
