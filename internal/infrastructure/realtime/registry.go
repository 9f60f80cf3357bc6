package realtime

import (
	"sync"
)

// Registry tracks which users currently hold live sessions and which rooms
// each session has joined. It owns all ephemeral session/room state; that
// state is rebuilt from scratch on process restart.
//
// The registry is an explicitly owned object handed into each handler, not
// package-level state, so tests can construct isolated instances.
type Registry struct {
	mu           sync.RWMutex
	sessions     map[string]*Session            // sessionID -> session
	users        map[string]map[string]*Session // userPublicID -> sessionID -> session
	rooms        map[string]map[string]*Session // roomID -> sessionID -> session
	sessionRooms map[string]map[string]struct{} // sessionID -> set of roomIDs
}

// NewRegistry constructs an initialized Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions:     make(map[string]*Session),
		users:        make(map[string]map[string]*Session),
		rooms:        make(map[string]map[string]*Session),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Connect registers a new session and auto-subscribes it to the owner's
// home room. Concurrent sessions of the same user are all tracked.
func (r *Registry) Connect(sess *Session) {
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	byUser := r.users[sess.UserID]
	if byUser == nil {
		byUser = make(map[string]*Session)
		r.users[sess.UserID] = byUser
	}
	byUser[sess.ID] = sess
	r.sessionRooms[sess.ID] = make(map[string]struct{})
	r.joinLocked(HomeRoom(sess.UserID), sess)
	r.mu.Unlock()

	sess.Start()
}

// Disconnect removes the session from every room it joined and prunes
// rooms left empty. It is idempotent: disconnecting an unknown session is
// a no-op. Removal is complete before Disconnect returns, so no later
// fan-out can reach the session.
func (r *Registry) Disconnect(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sess.ID]; !ok {
		return
	}
	delete(r.sessions, sess.ID)

	if byUser, ok := r.users[sess.UserID]; ok {
		delete(byUser, sess.ID)
		if len(byUser) == 0 {
			delete(r.users, sess.UserID)
		}
	}

	for roomID := range r.sessionRooms[sess.ID] {
		r.leaveLocked(roomID, sess.ID)
	}
	delete(r.sessionRooms, sess.ID)
}

// JoinRoom adds the session to the room's subscriber set. Joining a room
// the session is already in, or joining with an untracked session, is a
// no-op.
func (r *Registry) JoinRoom(sess *Session, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sess.ID]; !ok {
		return
	}
	r.joinLocked(roomID, sess)
}

// LeaveRoom removes the session from the room; no-op if absent.
func (r *Registry) LeaveRoom(sess *Session, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leaveLocked(roomID, sess.ID)
}

// MembersOf returns a snapshot of the sessions subscribed to the room.
func (r *Registry) MembersOf(roomID string) []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.membersLocked(roomID)
}

// SessionCount reports how many live sessions the user currently holds.
func (r *Registry) SessionCount(userPublicID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users[userPublicID])
}

// AllSessions returns a snapshot of every tracked session.
func (r *Registry) AllSessions() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		all = append(all, sess)
	}
	return all
}

// Close disconnects every session and clears registry state.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		sessions = append(sessions, sess)
	}
	r.sessions = make(map[string]*Session)
	r.users = make(map[string]map[string]*Session)
	r.rooms = make(map[string]map[string]*Session)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, sess := range sessions {
		sess.Close(1001, "registry shutdown")
	}
}

func (r *Registry) membersLocked(roomID string) []*Session {
	room := r.rooms[roomID]
	if len(room) == 0 {
		return nil
	}
	members := make([]*Session, 0, len(room))
	for _, sess := range room {
		members = append(members, sess)
	}
	return members
}

func (r *Registry) joinLocked(roomID string, sess *Session) {
	room := r.rooms[roomID]
	if room == nil {
		room = make(map[string]*Session)
		r.rooms[roomID] = room
	}
	room[sess.ID] = sess

	memberships := r.sessionRooms[sess.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[sess.ID] = memberships
	}
	memberships[roomID] = struct{}{}
}

func (r *Registry) leaveLocked(roomID string, sessionID string) {
	room := r.rooms[roomID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
	if memberships, ok := r.sessionRooms[sessionID]; ok {
		delete(memberships, roomID)
	}
}
