package chat

import "time"

// ConversationKind distinguishes direct threads from named groups.
type ConversationKind string

const (
	KindDirect ConversationKind = "direct"
	KindGroup  ConversationKind = "group"
)

// Conversation is a direct or group thread. Name is set only for groups.
// Direct conversations hold exactly two participants, and at most one
// direct conversation exists per unordered user pair; that uniqueness is
// derived from the participant set, not from fixed columns.
type Conversation struct {
	ID        int64            `db:"id"`
	Kind      ConversationKind `db:"kind"`
	Name      *string          `db:"name"`
	CreatedAt time.Time        `db:"created_at"`
}

// IsGroup reports whether the conversation is a named group.
func (c *Conversation) IsGroup() bool { return c.Kind == KindGroup }
