package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 128
)

// Conn is the subset of *websocket.Conn the session writes through.
// Tests substitute an in-memory implementation.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session wraps one websocket connection of one user and coordinates
// outbound writes via a buffered channel. A user may hold any number of
// concurrent sessions (multi-device); each is tracked independently.
// A session never outlives its transport connection.
type Session struct {
	ID       string
	UserID   string // the owner's public id, also the name of their home room

	ws    Conn
	send  chan []byte
	once  sync.Once
	close chan struct{}
}

// NewSession constructs a Session owned by the user with the given public id.
func NewSession(userPublicID string, ws Conn) *Session {
	return &Session{
		ID:     uuid.NewString(),
		UserID: userPublicID,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		close:  make(chan struct{}),
	}
}

// Start launches the write loop. It must be called exactly once per session.
func (s *Session) Start() {
	go s.writeLoop()
}

// Send enqueues payload for delivery. If the client is slow and the buffer
// is full, the session is closed to keep backpressure bounded; the caller
// never blocks.
func (s *Session) Send(payload []byte) error {
	select {
	case <-s.close:
		return errors.New("session closed")
	case s.send <- payload:
		return nil
	default:
		s.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("session buffer exceeded")
	}
}

// Close terminates the session and stops the write loop.
func (s *Session) Close(code int, reason string) {
	s.once.Do(func() {
		// send is left open: a concurrent Send may be racing the close
		// and must not panic. The closed close channel stops the write
		// loop and makes future Sends fail fast.
		close(s.close)
		_ = s.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = s.ws.Close()
	})
}

func (s *Session) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.close:
			return
		case msg, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := s.writePing(); err != nil {
				return
			}
		}
	}
}

func (s *Session) writeMessage(payload []byte) error {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.ws.WriteMessage(websocket.TextMessage, payload)
}

func (s *Session) writePing() error {
	if err := s.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return s.ws.WriteMessage(websocket.PingMessage, nil)
}
