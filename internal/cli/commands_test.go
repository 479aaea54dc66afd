package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/bookswap/internal/client"
	"github.com/mrlokans/bookswap/internal/config"
	"github.com/mrlokans/bookswap/internal/entities"
	"github.com/mrlokans/bookswap/internal/entrypoint"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type harness struct {
	server string
	dir    string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "cli.db")
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
	return &harness{server: srv.URL, dir: t.TempDir()}
}

// run executes a command as user, whose session lives in its own file.
func (h *harness) run(t *testing.T, user, name string, args ...string) (string, error) {
	t.Helper()
	cmd, ok := New(name)
	require.True(t, ok, name)

	args = append([]string{"-server", h.server, "-session", filepath.Join(h.dir, user+".json")}, args...)
	var out bytes.Buffer
	cmd.SetOutput(&out)
	if err := cmd.ParseFlags(args); err != nil {
		return "", err
	}
	err := cmd.Run(context.Background())
	return out.String(), err
}

func (h *harness) signup(t *testing.T, first, email string) *client.Client {
	t.Helper()
	c := client.New(h.server)
	token, err := c.Register(context.Background(), client.RegisterRequest{
		FirstName: first, LastName: "Student", Email: email, Password: "secret1",
		Faculty: "Science", Department: "Mathematics",
	})
	require.NoError(t, err)
	c.SetToken(token)
	return c
}

func TestCommands_MessagingFlow(t *testing.T) {
	h := newHarness(t)
	ben := h.signup(t, "Ben", "ben@uni.edu")
	h.signup(t, "Ana", "ana@uni.edu")

	bookID, err := ben.CreateBook(context.Background(), client.BookRequest{
		Title: "Calculus 101", Author: "Stewart", Subject: "Mathematics",
		Condition: entities.ConditionGood, IsExchangeable: true,
	})
	require.NoError(t, err)
	profile, err := ben.Profile(context.Background())
	require.NoError(t, err)

	out, err := h.run(t, "ana", "login", "-email", "ana@uni.edu", "-password", "secret1")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Ana Student")

	out, err = h.run(t, "ana", "books", "-subject", "calc")
	require.NoError(t, err)
	assert.Contains(t, out, "No books match")

	out, err = h.run(t, "ana", "books", "-subject", "math")
	require.NoError(t, err)
	assert.Contains(t, out, "Calculus 101")

	// The filter is remembered.
	out, err = h.run(t, "ana", "books")
	require.NoError(t, err)
	assert.Contains(t, out, "Calculus 101")

	out, err = h.run(t, "ana", "send", "-book", bookID, "-to", profile.ID, "-m", "Still", "available?")
	require.NoError(t, err)
	assert.Contains(t, out, "you:")
	assert.Contains(t, out, "Still available?")

	out, err = h.run(t, "ana", "send", "-m", "I can pay cash")
	require.NoError(t, err)
	assert.Contains(t, out, "I can pay cash")

	out, err = h.run(t, "ana", "conversations")
	require.NoError(t, err)
	assert.Contains(t, out, "Calculus 101")
	assert.Contains(t, out, "you: I can pay cash")

	out, err = h.run(t, "ana", "thread")
	require.NoError(t, err)
	assert.Contains(t, out, "Still available?")

	_, err = h.run(t, "ana", "transactions")
	require.NoError(t, err)

	out, err = h.run(t, "ana", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = h.run(t, "ana", "conversations")
	assert.ErrorIs(t, err, client.ErrNotLoggedIn)
}

func TestCommands_FlagErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run(t, "ana", "login", "-email", "ana@uni.edu")
	assert.Error(t, err)

	_, err = h.run(t, "ana", "send")
	assert.Error(t, err)

	_, ok := New("dance")
	assert.False(t, ok)
}

func TestCommands_BadCredentials(t *testing.T) {
	h := newHarness(t)
	h.signup(t, "Ana", "ana@uni.edu")

	_, err := h.run(t, "ana", "login", "-email", "ana@uni.edu", "-password", "wrong-pass")
	assert.True(t, client.IsUnauthorized(err))
}
