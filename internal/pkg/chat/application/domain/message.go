package chat

import (
	"strings"
	"time"

	apperrors "chatwire/pkg/errors"
)

// MessageStatus is the delivery lifecycle of a message.
// It only ever advances: sent -> delivered -> read.
type MessageStatus string

const (
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusRead      MessageStatus = "read"
)

var statusRank = map[MessageStatus]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

// Valid reports whether s is one of the known statuses.
func (s MessageStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether moving from s to next is a forward (or equal)
// transition. Regressions are never allowed.
func (s MessageStatus) CanAdvanceTo(next MessageStatus) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	return statusRank[next] >= statusRank[s]
}

// Message is an entry in a conversation's append-only log.
// ReceiverID is nil for group messages and set for direct ones.
// ReadAt is set if and only if Status is read.
type Message struct {
	ID             int64         `db:"id"`
	ConversationID int64         `db:"conversation_id"`
	SenderID       int64         `db:"sender_id"`
	ReceiverID     *int64        `db:"receiver_id"`
	Content        string        `db:"content"`
	CreatedAt      time.Time     `db:"created_at"`
	IsDeleted      bool          `db:"is_deleted"`
	Status         MessageStatus `db:"status"`
	ReadAt         *time.Time    `db:"read_at"`
}

// NewMessage validates and normalizes a message before persistence.
// The store assigns ID and CreatedAt; Status always starts at sent.
func NewMessage(conversationID, senderID int64, receiverID *int64, content string) (*Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, apperrors.ErrEmptyContent
	}
	return &Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Content:        trimmed,
		Status:         StatusSent,
	}, nil
}

// Advance moves the message to next, setting ReadAt on the read transition.
// Advancing to the current status is a no-op success (idempotent reads).
func (m *Message) Advance(next MessageStatus, now time.Time) error {
	if !m.Status.CanAdvanceTo(next) {
		return apperrors.ErrStatusRegression
	}
	if m.Status == next {
		return nil
	}
	m.Status = next
	if next == StatusRead {
		at := now.UTC()
		m.ReadAt = &at
	}
	return nil
}

// Newer reports whether m is the later message of the two for summary
// purposes: max CreatedAt, ties broken by highest ID.
func (m *Message) Newer(other *Message) bool {
	if other == nil {
		return true
	}
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.After(other.CreatedAt)
	}
	return m.ID > other.ID
}
