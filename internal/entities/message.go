package entities

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is immutable once stored.
type Message struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	SenderID   string    `gorm:"size:36;not null;index" json:"senderId"`
	ReceiverID string    `gorm:"size:36;not null;index" json:"receiverId"`
	BookID     string    `gorm:"size:36;not null;index" json:"bookId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`

	Sender   User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
	Book     Book `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = nextMessageTime()
	}
	return nil
}

// messageClock hands out strictly increasing timestamps at microsecond
// precision, the finest resolution PostgreSQL keeps, so messages stored by
// one process order by created_at exactly as they were inserted.
var messageClock struct {
	sync.Mutex
	last time.Time
}

func nextMessageTime() time.Time {
	messageClock.Lock()
	defer messageClock.Unlock()

	now := time.Now().UTC().Truncate(time.Microsecond)
	if !now.After(messageClock.last) {
		now = messageClock.last.Add(time.Microsecond)
	}
	messageClock.last = now
	return now
}

// ThreadMessage is a message with the names of both parties.
type ThreadMessage struct {
	Message
	SenderFirstName   string `json:"senderFirstName"`
	SenderLastName    string `json:"senderLastName"`
	ReceiverFirstName string `json:"receiverFirstName"`
	ReceiverLastName  string `json:"receiverLastName"`
}

// NewThreadMessages expects Sender and Receiver to be loaded on every message.
func NewThreadMessages(messages []Message) []ThreadMessage {
	thread := make([]ThreadMessage, 0, len(messages))
	for _, m := range messages {
		thread = append(thread, ThreadMessage{
			Message:           m,
			SenderFirstName:   m.Sender.FirstName,
			SenderLastName:    m.Sender.LastName,
			ReceiverFirstName: m.Receiver.FirstName,
			ReceiverLastName:  m.Receiver.LastName,
		})
	}
	return thread
}

// Conversation summarises one thread: the messages exchanged between the
// requesting user and one counterpart about one book.
type Conversation struct {
	BookID          string    `gorm:"column:book_id" json:"bookId"`
	BookTitle       string    `gorm:"column:book_title" json:"bookTitle"`
	OtherUserID     string    `gorm:"column:other_user_id" json:"otherUserId"`
	FirstName       string    `gorm:"column:first_name" json:"firstName"`
	LastName        string    `gorm:"column:last_name" json:"lastName"`
	LastMessage     string    `gorm:"column:last_message" json:"lastMessage"`
	LastMessageTime time.Time `gorm:"column:last_message_time" json:"lastMessageTime"`
	LastSenderID    string    `gorm:"column:last_sender_id" json:"lastSenderId"`
}
