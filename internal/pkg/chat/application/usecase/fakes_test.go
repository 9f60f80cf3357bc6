package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"chatwire/internal/infrastructure/queue/port"
	"chatwire/internal/infrastructure/realtime"
	chat "chatwire/internal/pkg/chat/application/domain"
	apperrors "chatwire/pkg/errors"
)

// fakeDirectory is an in-memory Directory seeded per test.
type fakeDirectory struct {
	users        map[int64]*chat.User
	convs        map[int64]*chat.Conversation
	participants map[int64][]int64 // chatID -> member user ids

	directPairs   map[int64][2]int64 // existing direct chats, chatID -> pair
	createErr     error
	nextConvID    int64
	notifications []string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		users:        make(map[int64]*chat.User),
		convs:        make(map[int64]*chat.Conversation),
		participants: make(map[int64][]int64),
		directPairs:  make(map[int64][2]int64),
		nextConvID:   100,
	}
}

func (d *fakeDirectory) addUser(u chat.User) *chat.User {
	d.users[u.ID] = &u
	return &u
}

func (d *fakeDirectory) addDirectChat(chatID, userA, userB int64) {
	d.convs[chatID] = &chat.Conversation{ID: chatID, Kind: chat.KindDirect}
	d.participants[chatID] = []int64{userA, userB}
	d.directPairs[chatID] = [2]int64{userA, userB}
}

func (d *fakeDirectory) addGroupChat(chatID int64, name string, members ...int64) {
	d.convs[chatID] = &chat.Conversation{ID: chatID, Kind: chat.KindGroup, Name: &name}
	d.participants[chatID] = members
}

func (d *fakeDirectory) ResolveUser(_ context.Context, publicID string) (*chat.User, error) {
	for _, u := range d.users {
		if u.PublicID == publicID {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (d *fakeDirectory) UserByID(_ context.Context, id int64) (*chat.User, error) {
	if u, ok := d.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (d *fakeDirectory) UserByUsername(_ context.Context, username string) (*chat.User, error) {
	for _, u := range d.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (d *fakeDirectory) GetConversation(_ context.Context, chatID int64) (*chat.Conversation, error) {
	if c, ok := d.convs[chatID]; ok {
		return c, nil
	}
	return nil, apperrors.ErrChatNotFound
}

func (d *fakeDirectory) IsParticipant(_ context.Context, chatID, userID int64) (bool, error) {
	for _, id := range d.participants[chatID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (d *fakeDirectory) ParticipantsOf(_ context.Context, chatID int64) ([]int64, error) {
	return d.participants[chatID], nil
}

func (d *fakeDirectory) DirectPeer(_ context.Context, chatID, userID int64) (*chat.User, error) {
	pair, ok := d.directPairs[chatID]
	if !ok {
		return nil, nil
	}
	switch userID {
	case pair[0]:
		return d.users[pair[1]], nil
	case pair[1]:
		return d.users[pair[0]], nil
	}
	return nil, nil
}

func (d *fakeDirectory) ConversationsOf(_ context.Context, userID int64) ([]chat.Conversation, error) {
	var out []chat.Conversation
	for chatID, members := range d.participants {
		for _, id := range members {
			if id == userID {
				out = append(out, *d.convs[chatID])
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (d *fakeDirectory) CreateDirectConversation(_ context.Context, userA, userB int64) (*chat.Conversation, error) {
	if d.createErr != nil {
		return nil, d.createErr
	}
	for _, pair := range d.directPairs {
		if (pair[0] == userA && pair[1] == userB) || (pair[0] == userB && pair[1] == userA) {
			return nil, apperrors.ErrContactExists
		}
	}
	d.nextConvID++
	d.addDirectChat(d.nextConvID, userA, userB)
	return d.convs[d.nextConvID], nil
}

func (d *fakeDirectory) CreateGroupConversation(_ context.Context, name string, creatorID int64, memberIDs []int64) (*chat.Conversation, error) {
	if d.createErr != nil {
		return nil, d.createErr
	}
	d.nextConvID++
	d.addGroupChat(d.nextConvID, name, append([]int64{creatorID}, memberIDs...)...)
	return d.convs[d.nextConvID], nil
}

func (d *fakeDirectory) SaveNotification(_ context.Context, _ int64, text string) error {
	d.notifications = append(d.notifications, text)
	return nil
}

// fakeStore is an in-memory MessageStore with a ticking clock so appended
// messages carry strictly increasing timestamps.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int64
	clock     time.Time
	messages  map[int64]*chat.Message
	appendErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		clock:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		messages: make(map[int64]*chat.Message),
	}
}

func (s *fakeStore) Append(_ context.Context, m chat.Message) (*chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	s.nextID++
	s.clock = s.clock.Add(time.Second)
	m.ID = s.nextID
	m.CreatedAt = s.clock
	m.Status = chat.StatusSent
	s.messages[m.ID] = &m
	cp := m
	return &cp, nil
}

func (s *fakeStore) GetMessage(_ context.Context, id int64) (*chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) SetStatus(_ context.Context, id int64, status chat.MessageStatus, readAt *time.Time) (*chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	// Forward transitions only, matching the Postgres adapter's guard.
	if m.Status.CanAdvanceTo(status) {
		m.Status = status
		if readAt != nil {
			m.ReadAt = readAt
		}
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) Latest(_ context.Context, chatID int64) (*chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *chat.Message
	for _, m := range s.messages {
		if m.ConversationID != chatID || m.IsDeleted {
			continue
		}
		if latest == nil || m.Newer(latest) {
			latest = m
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (s *fakeStore) Range(_ context.Context, chatID int64, excludeDeleted bool) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []chat.Message
	for _, m := range s.messages {
		if m.ConversationID != chatID {
			continue
		}
		if excludeDeleted && m.IsDeleted {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// fakePublisher records fan-out instead of delivering it.
type publishedEvent struct {
	room string
	ev   realtime.Event
}

type fakePublisher struct {
	published  []publishedEvent
	broadcasts []realtime.Event
	online     map[string]int // userPublicID -> live sessions
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{online: make(map[string]int)}
}

func (p *fakePublisher) Publish(roomID string, ev realtime.Event) int {
	p.published = append(p.published, publishedEvent{room: roomID, ev: ev})
	return 1
}

func (p *fakePublisher) BroadcastAll(ev realtime.Event) int {
	p.broadcasts = append(p.broadcasts, ev)
	return len(p.online)
}

func (p *fakePublisher) SessionCount(userPublicID string) int {
	return p.online[userPublicID]
}

func (p *fakePublisher) eventsNamed(name string) []realtime.Event {
	var out []realtime.Event
	for _, e := range p.published {
		if e.ev.Name == name {
			out = append(out, e.ev)
		}
	}
	return out
}

// fakeQueue records enqueued tasks.
type fakeQueue struct {
	tasks      []port.Task
	opts       []port.EnqueueOption
	enqueueErr error
}

func (q *fakeQueue) Enqueue(_ context.Context, t port.Task, opts ...port.EnqueueOption) (string, error) {
	if q.enqueueErr != nil {
		return "", q.enqueueErr
	}
	q.tasks = append(q.tasks, t)
	if len(opts) > 0 {
		q.opts = append(q.opts, opts[0])
	}
	return "task-id", nil
}

func (q *fakeQueue) Close() error { return nil }
