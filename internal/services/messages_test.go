package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_SendValidation(t *testing.T) {
	env := setupEnv(t)
	svc := NewMessageService(env.messages, env.users, env.books)
	ctx := context.Background()
	ana := env.user(t, "Ana", "ana@uni.edu")
	ben := env.user(t, "Ben", "ben@uni.edu")
	book := env.book(t, ana.ID, "Calculus 101", false)

	tests := []struct {
		name string
		in   MessageInput
		kind Kind
	}{
		{name: "blank content", in: MessageInput{ReceiverID: ana.ID, BookID: book.ID, Content: "  "}, kind: KindValidation},
		{name: "missing receiver id", in: MessageInput{BookID: book.ID, Content: "hi"}, kind: KindValidation},
		{name: "self message", in: MessageInput{ReceiverID: ben.ID, BookID: book.ID, Content: "hi"}, kind: KindValidation},
		{name: "unknown receiver", in: MessageInput{ReceiverID: "ghost", BookID: book.ID, Content: "hi"}, kind: KindNotFound},
		{name: "unknown book", in: MessageInput{ReceiverID: ana.ID, BookID: "ghost", Content: "hi"}, kind: KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, ben.ID, tt.in)
			assert.Equal(t, tt.kind, kindOf(t, err))
		})
	}
}

func TestMessageService_CalculusConversation(t *testing.T) {
	env := setupEnv(t)
	svc := NewMessageService(env.messages, env.users, env.books)
	ctx := context.Background()
	a := env.user(t, "Ana", "ana@uni.edu")
	b := env.user(t, "Ben", "ben@uni.edu")
	book := env.book(t, b.ID, "Calculus 101", false)

	for _, content := range []string{"Is it available?", "Any highlights?", "Can we meet?"} {
		_, err := svc.Send(ctx, a.ID, MessageInput{ReceiverID: b.ID, BookID: book.ID, Content: content})
		require.NoError(t, err)
	}
	reply, err := svc.Send(ctx, b.ID, MessageInput{ReceiverID: a.ID, BookID: book.ID, Content: " Yes, tomorrow "})
	require.NoError(t, err)
	assert.Equal(t, "Yes, tomorrow", reply.Content)

	for _, viewer := range []struct{ self, other string }{{a.ID, b.ID}, {b.ID, a.ID}} {
		convs, err := svc.Conversations(ctx, viewer.self)
		require.NoError(t, err)
		require.Len(t, convs, 1)
		assert.Equal(t, "Calculus 101", convs[0].BookTitle)
		assert.Equal(t, viewer.other, convs[0].OtherUserID)
		assert.Equal(t, "Yes, tomorrow", convs[0].LastMessage)
		assert.Equal(t, b.ID, convs[0].LastSenderID)
	}

	thread, err := svc.BookThread(ctx, a.ID, book.ID, "")
	require.NoError(t, err)
	require.Len(t, thread, 4)
	assert.Equal(t, "Is it available?", thread[0].Content)
	assert.Equal(t, "Ben", thread[3].SenderFirstName)

	outsider := env.user(t, "Cid", "cid@uni.edu")
	thread, err = svc.BookThread(ctx, outsider.ID, book.ID, "")
	require.NoError(t, err)
	assert.Empty(t, thread)

	_, err = svc.BookThread(ctx, a.ID, "missing", "")
	assert.Equal(t, KindNotFound, kindOf(t, err))
}
