package repository

import (
	"context"
	"time"

	chat "chatwire/internal/pkg/chat/application/domain"
)

// Directory resolves identity and conversation membership. The realtime
// core treats it as an external collaborator: it answers who a public id
// belongs to and who participates in which conversation.
type Directory interface {
	// ResolveUser maps an opaque public id to the account it was issued to.
	ResolveUser(ctx context.Context, publicID string) (*chat.User, error)
	UserByID(ctx context.Context, id int64) (*chat.User, error)
	UserByUsername(ctx context.Context, username string) (*chat.User, error)

	GetConversation(ctx context.Context, chatID int64) (*chat.Conversation, error)
	IsParticipant(ctx context.Context, chatID, userID int64) (bool, error)
	ParticipantsOf(ctx context.Context, chatID int64) ([]int64, error)
	// DirectPeer returns the other participant of a direct conversation,
	// or nil for group conversations.
	DirectPeer(ctx context.Context, chatID, userID int64) (*chat.User, error)
	ConversationsOf(ctx context.Context, userID int64) ([]chat.Conversation, error)

	// CreateDirectConversation opens a direct thread between two users.
	// At most one direct conversation may exist per unordered pair; a
	// second attempt fails with a conflict.
	CreateDirectConversation(ctx context.Context, userA, userB int64) (*chat.Conversation, error)
	CreateGroupConversation(ctx context.Context, name string, creatorID int64, memberIDs []int64) (*chat.Conversation, error)

	// SaveNotification records an offline notification for later pickup.
	SaveNotification(ctx context.Context, userID int64, text string) error
}

// MessageStore is the durable append-only log of messages keyed by
// conversation. Appends within one conversation are serialized so ids and
// timestamps are monotonic for readers.
type MessageStore interface {
	Append(ctx context.Context, m chat.Message) (*chat.Message, error)
	GetMessage(ctx context.Context, id int64) (*chat.Message, error)
	// SetStatus advances the message's status. Implementations apply only
	// forward transitions: if the stored status already ranks at or past
	// the requested one, the row is returned unchanged.
	SetStatus(ctx context.Context, id int64, status chat.MessageStatus, readAt *time.Time) (*chat.Message, error)
	// Latest returns the newest non-deleted message of the conversation,
	// or nil when there is none.
	Latest(ctx context.Context, chatID int64) (*chat.Message, error)
	Range(ctx context.Context, chatID int64, excludeDeleted bool) ([]chat.Message, error)
}
