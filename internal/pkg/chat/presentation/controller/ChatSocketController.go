package controller

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	cacheport "chatwire/internal/infrastructure/cache/port"
	"chatwire/internal/infrastructure/realtime"
	"chatwire/internal/pkg/chat/application/usecase"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
	apperrors "chatwire/pkg/errors"
)

// ChatSocketController owns the websocket endpoint: it attaches sessions
// to the presence registry, processes inbound frames until the client
// disconnects, and guarantees the session is fully removed from every
// room before the handler returns.
type ChatSocketController struct {
	registry  *realtime.Registry
	router    *realtime.Router
	directory repository.Directory
	cache     cacheport.Cache // nil disables last-seen tracking

	sendMessageUC *usecase.SendMessageUseCase
	joinRoomUC    *usecase.JoinConversationUseCase

	inflightTimeout time.Duration
	logger          *slog.Logger
}

func NewChatSocketController(
	registry *realtime.Registry,
	router *realtime.Router,
	directory repository.Directory,
	cache cacheport.Cache,
	sendMessageUC *usecase.SendMessageUseCase,
	joinRoomUC *usecase.JoinConversationUseCase,
	logger *slog.Logger,
) *ChatSocketController {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatSocketController{
		registry:        registry,
		router:          router,
		directory:       directory,
		cache:           cache,
		sendMessageUC:   sendMessageUC,
		joinRoomUC:      joinRoomUC,
		inflightTimeout: 5 * time.Second,
		logger:          logger,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

// inboundFrame mirrors the outbound envelope: an event name plus raw data.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinChatData struct {
	ChatID int64 `json:"chat_id"`
}

type sendMessageData struct {
	ChatID     int64  `json:"chat_id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID *int64 `json:"receiver_id"`
	Content    string `json:"content"`
}

type errorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const defaultReadTimeout = 60 * time.Second

// Handle upgrades the connection and processes frames until disconnect.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			fail(c, apperrors.ErrNotLoggedIn)
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			ctl.logger.Warn("websocket upgrade failed", "uuid", user.PublicID, "err", err)
			return
		}

		sess := realtime.NewSession(user.PublicID, ws)
		ctl.registry.Connect(sess)
		defer func() {
			ctl.registry.Disconnect(sess)
			sess.Close(websocket.CloseNormalClosure, "session closed")
			ctl.recordLastSeen(user.PublicID)
		}()

		// Connect side effect: announce the live session to the home room.
		// Other sessions of the same user tolerate the duplicate.
		ctl.router.Publish(realtime.HomeRoom(user.PublicID), realtime.Event{
			Name: realtime.EventUserConnected,
			Data: realtime.UserConnectedData{UUID: user.PublicID},
		})

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.logger.Debug("websocket read ended", "uuid", user.PublicID, "err", err)
				return
			}

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(sess, "bad_request", "invalid frame")
				continue
			}

			switch frame.Event {
			case "join_chat":
				ctl.handleJoin(c, sess, user.ID, frame.Data)
			case "leave_chat":
				ctl.handleLeave(sess, frame.Data)
			case "send_message":
				ctl.handleSend(c, sess, user.ID, frame.Data)
			default:
				ctl.replyError(sess, "unsupported_event", "unknown event")
			}
		}
	}
}

func (ctl *ChatSocketController) handleJoin(c *gin.Context, sess *realtime.Session, userID int64, raw json.RawMessage) {
	var data joinChatData
	if err := json.Unmarshal(raw, &data); err != nil || data.ChatID == 0 {
		ctl.replyError(sess, "bad_request", "chat_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	if err := ctl.joinRoomUC.Execute(ctx, usecase.JoinConversationInput{
		ChatID: data.ChatID,
		UserID: userID,
	}); err != nil {
		ctl.replyAppError(sess, err)
		return
	}

	room := realtime.ChatRoom(data.ChatID)
	ctl.registry.JoinRoom(sess, room)

	ctl.router.Publish(room, realtime.Event{
		Name: realtime.EventUserConnected,
		Data: realtime.UserConnectedData{UUID: sess.UserID},
	})
}

func (ctl *ChatSocketController) handleLeave(sess *realtime.Session, raw json.RawMessage) {
	var data joinChatData
	if err := json.Unmarshal(raw, &data); err != nil || data.ChatID == 0 {
		ctl.replyError(sess, "bad_request", "chat_id is required")
		return
	}
	ctl.registry.LeaveRoom(sess, realtime.ChatRoom(data.ChatID))
}

func (ctl *ChatSocketController) handleSend(c *gin.Context, sess *realtime.Session, userID int64, raw json.RawMessage) {
	var data sendMessageData
	if err := json.Unmarshal(raw, &data); err != nil || data.ChatID == 0 {
		ctl.replyError(sess, "bad_request", "chat_id and content are required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	// The authenticated session owner is the sender; a mismatching
	// sender_id in the frame is not honored.
	_, err := ctl.sendMessageUC.Execute(ctx, usecase.SendMessageInput{
		ChatID:     data.ChatID,
		SenderID:   userID,
		ReceiverID: data.ReceiverID,
		Content:    data.Content,
	})
	if err != nil {
		ctl.replyAppError(sess, err)
	}
}

func (ctl *ChatSocketController) recordLastSeen(publicID string) {
	if ctl.cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ctl.cache.Set(ctx, lastSeenKey(publicID), time.Now().UTC().Format(time.RFC3339), 0); err != nil {
		ctl.logger.Warn("last_seen update failed", "uuid", publicID, "err", err)
	}
}

func (ctl *ChatSocketController) replyAppError(sess *realtime.Session, err error) {
	ctl.replyError(sess, string(apperrors.CodeOf(err)), apperrors.MessageOf(err))
}

func (ctl *ChatSocketController) replyError(sess *realtime.Session, code, message string) {
	payload, err := realtime.Event{Name: "error", Data: errorData{Code: code, Message: message}}.Marshal()
	if err != nil {
		return
	}
	_ = sess.Send(payload)
}
