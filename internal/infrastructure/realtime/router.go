package realtime

import (
	"log/slog"
	"sync"
)

// Router is the single fan-out primitive: it delivers events to every
// session subscribed to a room, or to every connected session at once.
//
// Delivery is best-effort and non-blocking per receiver; a slow session is
// dropped (see Session.Send) and never stalls delivery to others.
// Publishes are serialized under one mutex, so within any single room
// events arrive at all subscribers in publish order. No ordering holds
// across rooms.
type Router struct {
	reg    *Registry
	pubMu  sync.Mutex
	logger *slog.Logger
}

// NewRouter constructs a Router that fans out over reg's membership.
func NewRouter(reg *Registry, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{reg: reg, logger: logger}
}

// Publish sends the event to every current member of the room and returns
// the number of sessions it was handed to. Publishing to an empty or
// unknown room is a normal, silent success returning 0.
func (r *Router) Publish(roomID string, ev Event) int {
	payload, err := ev.Marshal()
	if err != nil {
		r.logger.Error("event marshal failed", "event", ev.Name, "err", err)
		return 0
	}

	r.pubMu.Lock()
	defer r.pubMu.Unlock()

	delivered := 0
	for _, sess := range r.reg.MembersOf(roomID) {
		if err := sess.Send(payload); err != nil {
			r.logger.Warn("dropping session on failed send",
				"event", ev.Name, "room", roomID, "session", sess.ID, "err", err)
			continue
		}
		delivered++
	}
	return delivered
}

// BroadcastAll sends the event to every connected session regardless of
// room membership. Used for contact-list refreshes, which must reach
// participants that have not joined the conversation room.
func (r *Router) BroadcastAll(ev Event) int {
	payload, err := ev.Marshal()
	if err != nil {
		r.logger.Error("event marshal failed", "event", ev.Name, "err", err)
		return 0
	}

	r.pubMu.Lock()
	defer r.pubMu.Unlock()

	delivered := 0
	for _, sess := range r.reg.AllSessions() {
		if err := sess.Send(payload); err != nil {
			r.logger.Warn("dropping session on failed send",
				"event", ev.Name, "session", sess.ID, "err", err)
			continue
		}
		delivered++
	}
	return delivered
}

// SessionCount reports live sessions of a user; the delivery coordinator
// uses it to decide offline handling.
func (r *Router) SessionCount(userPublicID string) int {
	return r.reg.SessionCount(userPublicID)
}
