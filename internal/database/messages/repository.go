// Package messages provides database operations for messages exchanged
// about listings, and derives per-thread conversation summaries from them.
//
// # Usage
//
//	repo := messages.NewRepository(db)
//	thread, err := repo.ListForBook(ctx, bookID, userID, "")
//	conversations, err := repo.Conversations(ctx, userID)
package messages

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bookswap/internal/entities"
)

// conversationsQuery keeps the latest message of every (book, counterpart)
// thread the user takes part in. Messages get strictly increasing created_at
// values on insert (see entities.Message), so the latest is the last one
// stored. The id tiebreak only keeps the row count at one per thread for
// rows written with explicit or foreign timestamps.
const conversationsQuery = `
WITH threads AS (
	SELECT
		m.id,
		m.book_id,
		m.created_at,
		CASE WHEN m.sender_id = @user THEN m.receiver_id ELSE m.sender_id END AS other_user_id
	FROM messages m
	WHERE m.sender_id = @user OR m.receiver_id = @user
),
ranked AS (
	SELECT
		t.id,
		t.book_id,
		t.other_user_id,
		ROW_NUMBER() OVER (
			PARTITION BY t.book_id, t.other_user_id
			ORDER BY t.created_at DESC, t.id DESC
		) AS rn
	FROM threads t
)
SELECT
	r.book_id,
	b.title AS book_title,
	r.other_user_id,
	u.first_name,
	u.last_name,
	lm.content AS last_message,
	lm.created_at AS last_message_time,
	lm.sender_id AS last_sender_id
FROM ranked r
JOIN messages lm ON lm.id = r.id
JOIN books b ON b.id = r.book_id
JOIN users u ON u.id = r.other_user_id
WHERE r.rn = 1
ORDER BY lm.created_at DESC, lm.id DESC`

// Repository handles all message database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new messages repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a message. Unknown sender, receiver or book yields
// gorm.ErrForeignKeyViolated.
func (r *Repository) Create(ctx context.Context, msg *entities.Message) error {
	return r.db.WithContext(ctx).Omit("Sender", "Receiver", "Book").Create(msg).Error
}

// ListForBook returns the messages about bookID that userID sent or
// received, oldest first. A non-empty otherUserID narrows the result to
// the thread with that counterpart.
func (r *Repository) ListForBook(ctx context.Context, bookID, userID, otherUserID string) ([]entities.ThreadMessage, error) {
	query := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Where("book_id = ?", bookID)

	if otherUserID != "" {
		query = query.Where(
			"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherUserID, otherUserID, userID,
		)
	} else {
		query = query.Where("sender_id = ? OR receiver_id = ?", userID, userID)
	}

	var messages []entities.Message
	err := query.Order("created_at ASC").Order("id ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return entities.NewThreadMessages(messages), nil
}

// Conversations summarises every thread userID takes part in, most
// recently active first.
func (r *Repository) Conversations(ctx context.Context, userID string) ([]entities.Conversation, error) {
	conversations := []entities.Conversation{}
	err := r.db.WithContext(ctx).
		Raw(conversationsQuery, map[string]any{"user": userID}).
		Scan(&conversations).Error
	return conversations, err
}
