package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/bookswap/internal/audit"
	"github.com/mrlokans/bookswap/internal/auth"
	"github.com/mrlokans/bookswap/internal/config"
	"github.com/mrlokans/bookswap/internal/database"
	auditRepo "github.com/mrlokans/bookswap/internal/database/audit"
	"github.com/mrlokans/bookswap/internal/database/books"
	"github.com/mrlokans/bookswap/internal/database/favourites"
	"github.com/mrlokans/bookswap/internal/database/messages"
	"github.com/mrlokans/bookswap/internal/database/transactions"
	"github.com/mrlokans/bookswap/internal/database/users"
	"github.com/mrlokans/bookswap/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	audit  *audit.Service
}

type serverOption func(*RouterConfig)

func setupServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "api.db"),
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := users.NewRepository(db.DB)
	bookRepo := books.NewRepository(db.DB)
	favRepo := favourites.NewRepository(db.DB)
	txRepo := transactions.NewRepository(db.DB)
	auditService := audit.NewService(auditRepo.NewRepository(db.DB), zap.NewNop())
	t.Cleanup(auditService.Wait)

	tokens, err := auth.NewTokenManager("router-test-secret-0123456789", time.Hour, auth.NewMemoryTokenRevoker())
	require.NoError(t, err)
	limiter := auth.NewLoginLimiter(auth.LimiterConfig{MaxAttempts: 3})
	t.Cleanup(limiter.Stop)

	cfg := RouterConfig{
		Logger:       zap.NewNop(),
		Auth:         auth.NewService(userRepo, tokens, limiter, auditService, config.Auth{BcryptCost: 4}),
		Users:        services.NewUserService(userRepo, bookRepo, favRepo, auditService, auditService),
		Books:        services.NewBookService(bookRepo, favRepo, txRepo, auditService),
		Messages:     services.NewMessageService(messages.NewRepository(db.DB), userRepo, bookRepo),
		Transactions: services.NewTransactionService(txRepo, bookRepo, auditService),
		HealthChecks: map[string]Pinger{"database": db},
		Version:      "test",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testServer{router: NewRouter(cfg), audit: auditService}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func registerBody(first, email string) map[string]any {
	return map[string]any{
		"firstName":  first,
		"lastName":   "Tester",
		"email":      email,
		"password":   "secret1",
		"faculty":    "Science",
		"department": "Mathematics",
	}
}

// register creates an account and returns its token and user ID.
func (s *testServer) register(t *testing.T, first, email string) (string, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", registerBody(first, email))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token := decode[TokenResponse](t, w).Token

	w = s.do(t, http.MethodGet, "/api/users/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	return token, decode[map[string]any](t, w)["id"].(string)
}

func (s *testServer) createBook(t *testing.T, token string, body map[string]any) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/books", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[CreatedResponse](t, w).ID
}

func bookBody(title, subject string) map[string]any {
	return map[string]any{
		"title":          title,
		"author":         "Author",
		"subject":        subject,
		"condition":      "good",
		"price":          12.5,
		"isExchangeable": true,
	}
}
