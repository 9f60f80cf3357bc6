package chat

import "time"

// User is the directory's view of an account. PublicID is the opaque
// identifier used in transport room names; it is immutable once issued and
// never doubles as a storage key.
type User struct {
	ID             int64     `db:"id"`
	Username       string    `db:"username"`
	PublicID       string    `db:"public_id"`
	Email          *string   `db:"email"`
	ProfilePicture *string   `db:"profile_picture"`
	CreatedAt      time.Time `db:"created_at"`
}

// ContactItem is one row of the contact-list summary projection:
// the conversation, its display name for the viewing user, and the latest
// non-deleted message preview.
type ContactItem struct {
	ChatID           int64  `json:"chat_id"`
	ChatName         string `json:"chat_name"`
	LatestMessage    string `json:"latest_message"`
	LatestTimestamp  string `json:"latest_message_timestamp"`
	LatestSenderID   int64  `json:"latest_sender_id,omitempty"`
}
