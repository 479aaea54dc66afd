package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/bookswap/internal/config"
	"github.com/mrlokans/bookswap/internal/entities"
	"github.com/mrlokans/bookswap/internal/entrypoint"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// startServer runs the full application behind an httptest server.
func startServer(t *testing.T) string {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "client.db")
	cfg.Auth.BcryptCost = 4
	cfg.Tasks.Enabled = false
	cfg.RateLimit.PerMinute = 0

	app, err := entrypoint.NewApp(cfg, zap.NewNop(), "test")
	require.NoError(t, err)
	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		app.Shutdown(context.Background())
	})
	return srv.URL
}

func account(first, email string) RegisterRequest {
	return RegisterRequest{
		FirstName:  first,
		LastName:   "Student",
		Email:      email,
		Password:   "secret1",
		Faculty:    "Science",
		Department: "Mathematics",
	}
}

// signedIn registers an account on a fresh client and returns its session.
func signedIn(t *testing.T, baseURL, first, email string) *Session {
	t.Helper()
	s := NewSession(New(baseURL))
	require.NoError(t, s.Register(context.Background(), account(first, email)))
	return s
}

func price(v float64) *float64 { return &v }

func calculusBook() BookRequest {
	return BookRequest{
		Title:          "Calculus 101",
		Author:         "Stewart",
		Subject:        "Mathematics",
		Condition:      entities.ConditionGood,
		Price:          price(20),
		IsExchangeable: true,
	}
}
