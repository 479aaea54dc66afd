package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessages_ConversationFlow(t *testing.T) {
	s := setupServer(t)
	a, aID := s.register(t, "Ana", "ana@uni.edu")
	b, bID := s.register(t, "Ben", "ben@uni.edu")
	bookID := s.createBook(t, b, bookBody("Calculus 101", "Mathematics"))

	for _, content := range []string{"Hi", "Still available?", "I can pay cash"} {
		w := s.do(t, http.MethodPost, "/api/messages", a, map[string]any{
			"receiverId": bID, "bookId": bookID, "content": content,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.NotEmpty(t, decode[CreatedResponse](t, w).ID)
	}
	w := s.do(t, http.MethodPost, "/api/messages", b, map[string]any{
		"receiverId": aID, "bookId": bookID, "content": "Yes, see you Monday",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	for _, tc := range []struct{ token, other string }{{a, bID}, {b, aID}} {
		w = s.do(t, http.MethodGet, "/api/messages/conversations", tc.token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		convs := decode[[]map[string]any](t, w)
		require.Len(t, convs, 1)
		assert.Equal(t, "Calculus 101", convs[0]["bookTitle"])
		assert.Equal(t, tc.other, convs[0]["otherUserId"])
		assert.Equal(t, "Yes, see you Monday", convs[0]["lastMessage"])
		assert.Equal(t, bID, convs[0]["lastSenderId"])
	}

	w = s.do(t, http.MethodGet, "/api/messages/book/"+bookID+"?with="+bID, a, nil)
	require.Equal(t, http.StatusOK, w.Code)
	thread := decode[[]map[string]any](t, w)
	require.Len(t, thread, 4)
	assert.Equal(t, "Hi", thread[0]["content"])
	assert.Equal(t, "Ana", thread[0]["senderFirstName"])
	assert.Equal(t, "Ben", thread[0]["receiverFirstName"])

	w = s.do(t, http.MethodGet, "/api/messages/book/missing", a, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMessages_SendErrors(t *testing.T) {
	s := setupServer(t)
	a, aID := s.register(t, "Ana", "ana@uni.edu")
	bookID := s.createBook(t, a, bookBody("Calculus 101", "Mathematics"))
	_, bID := s.register(t, "Ben", "ben@uni.edu")

	tests := []struct {
		name string
		body map[string]any
		want int
	}{
		{name: "missing content", body: map[string]any{"receiverId": bID, "bookId": bookID}, want: http.StatusBadRequest},
		{name: "to self", body: map[string]any{"receiverId": aID, "bookId": bookID, "content": "hi"}, want: http.StatusBadRequest},
		{name: "unknown receiver", body: map[string]any{"receiverId": "ghost", "bookId": bookID, "content": "hi"}, want: http.StatusNotFound},
		{name: "unknown book", body: map[string]any{"receiverId": bID, "bookId": "ghost", "content": "hi"}, want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/messages", a, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	w := s.do(t, http.MethodGet, "/api/messages/conversations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
