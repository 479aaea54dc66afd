package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookswap/internal/entities"
)

func TestSession_LoginLogout(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)
	signedIn(t, url, "Ana", "ana@uni.edu")

	s := NewSession(New(url))
	assert.False(t, s.LoggedIn())
	assert.ErrorIs(t, s.RefreshConversations(ctx), ErrNotLoggedIn)

	require.NoError(t, s.Login(ctx, "ana@uni.edu", "secret1"))
	assert.True(t, s.LoggedIn())
	require.NotNil(t, s.Profile())
	assert.Equal(t, "Ana", s.Profile().FirstName)
	token := s.Token()

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.LoggedIn())
	assert.Nil(t, s.Profile())

	// The old token was revoked server side.
	_, err := New(url, WithToken(token)).Profile(ctx)
	assert.True(t, IsUnauthorized(err))

	require.NoError(t, s.Logout(ctx))
}

func TestSession_FilterAndThread(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)
	ana := signedIn(t, url, "Ana", "ana@uni.edu")
	ben := signedIn(t, url, "Ben", "ben@uni.edu")

	bookID, err := ben.Client().CreateBook(ctx, calculusBook())
	require.NoError(t, err)
	history := calculusBook()
	history.Title = "World History"
	history.Subject = "History"
	_, err = ben.Client().CreateBook(ctx, history)
	require.NoError(t, err)

	require.NoError(t, ana.SetFilter(ctx, entities.BookFilter{Subject: "math"}))
	require.Len(t, ana.Books(), 1)
	assert.Equal(t, "math", ana.Filter().Subject)

	assert.ErrorIs(t, ana.Reply(ctx, "hello"), ErrNoThread)

	require.NoError(t, ana.OpenThread(ctx, bookID, ben.UserID()))
	assert.Empty(t, ana.Thread().Messages)
	require.NoError(t, ana.Reply(ctx, "Is it still available?"))
	require.Len(t, ana.Thread().Messages, 1)

	// Ben opens the thread without naming a counterpart and replies to
	// whoever wrote last.
	require.NoError(t, ben.OpenThread(ctx, bookID, ""))
	require.NoError(t, ben.Reply(ctx, "Yes"))
	require.Len(t, ben.Thread().Messages, 2)
	assert.Equal(t, ana.UserID(), ben.Thread().Messages[1].ReceiverID)

	require.NoError(t, ana.RefreshConversations(ctx))
	require.Len(t, ana.Conversations(), 1)
	assert.Equal(t, "Yes", ana.Conversations()[0].LastMessage)
	assert.Equal(t, "Calculus 101", ana.Conversations()[0].BookTitle)
}

func TestSession_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	url := startServer(t)
	s := signedIn(t, url, "Ana", "ana@uni.edu")
	require.NoError(t, s.SetFilter(ctx, entities.BookFilter{Author: "Stewart"}))
	bookID, err := s.Client().CreateBook(ctx, calculusBook())
	require.NoError(t, err)
	require.NoError(t, s.OpenThread(ctx, bookID, "user-2"))

	path := filepath.Join(t.TempDir(), "nested", "session.json")
	require.NoError(t, s.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored, err := LoadSession(path, New(url))
	require.NoError(t, err)
	assert.Equal(t, s.Token(), restored.Token())
	assert.Equal(t, "Stewart", restored.Filter().Author)
	require.NotNil(t, restored.Thread())
	assert.Equal(t, "user-2", restored.Thread().OtherUserID)
	assert.Nil(t, restored.Profile())

	require.NoError(t, restored.RefreshProfile(ctx))
	assert.Equal(t, "Ana", restored.Profile().FirstName)
}

func TestLoadSession_MissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()
	s, err := LoadSession(filepath.Join(dir, "absent.json"), New("http://localhost"))
	require.NoError(t, err)
	assert.False(t, s.LoggedIn())

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadSession(bad, New("http://localhost"))
	assert.Error(t, err)
}
