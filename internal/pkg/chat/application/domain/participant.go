package chat

import "time"

// Participant captures membership in a conversation.
// Primary key: (ConversationID, UserID). IsAdmin is meaningful only for
// group conversations.
type Participant struct {
	ConversationID int64     `db:"conversation_id"`
	UserID         int64     `db:"user_id"`
	JoinedAt       time.Time `db:"joined_at"`
	IsAdmin        bool      `db:"is_admin"`
}
