package usecase

import (
	"chatwire/internal/infrastructure/realtime"
)

// RoomPublisher is the fan-out surface the delivery path depends on.
// *realtime.Router satisfies it; tests substitute a recorder.
type RoomPublisher interface {
	// Publish delivers the event to every session in the room and returns
	// the delivered count. An empty room yields 0 without error.
	Publish(roomID string, ev realtime.Event) int
	// BroadcastAll delivers to every connected session.
	BroadcastAll(ev realtime.Event) int
	// SessionCount reports live sessions of a user's public id.
	SessionCount(userPublicID string) int
}

// DefaultTimeFormat is the canonical timestamp rendering on the wire.
// Some deployments prefer the short "15:04" form; set MESSAGE_TIME_FORMAT
// to override.
const DefaultTimeFormat = "2006-01-02 15:04:05"
