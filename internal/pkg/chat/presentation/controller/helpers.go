package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
	apperrors "chatwire/pkg/errors"
)

// Every endpoint answers the same shape: {"success": true, ...} or
// {"success": false, "message": ...}. Validation failures never surface
// as raw error dumps.

const currentUserKey = "chatwire.currentUser"

func httpStatus(code apperrors.Code) int {
	switch code {
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeForbidden:
		return http.StatusForbidden
	case apperrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case apperrors.CodeConflict:
		return http.StatusConflict
	case apperrors.CodeInvalidArgument, apperrors.CodeInvalidReceiver:
		return http.StatusBadRequest
	case apperrors.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(httpStatus(apperrors.CodeOf(err)), gin.H{
		"success": false,
		"message": apperrors.MessageOf(err),
	})
}

func ok(c *gin.Context, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(http.StatusOK, body)
}

// RequireUser resolves the caller's identity from the X-User-UUID header
// (query fallback for websocket upgrades) through the directory and stores
// it in the request context. Requests without a resolvable identity fail
// with the unauthorized shape.
func RequireUser(directory repository.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		publicID := c.GetHeader("X-User-UUID")
		if publicID == "" {
			publicID = c.Query("uuid")
		}
		if publicID == "" {
			fail(c, apperrors.ErrNotLoggedIn)
			c.Abort()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		user, err := directory.ResolveUser(ctx, publicID)
		if err != nil {
			fail(c, apperrors.ErrNotLoggedIn)
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *chat.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*chat.User)
	return u
}

// messagePayload is the REST rendering of a message. Timestamp is
// preformatted per deployment policy.
type messagePayload struct {
	ID         int64  `json:"id"`
	ChatID     int64  `json:"chat_id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID *int64 `json:"receiver_id,omitempty"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	Status     string `json:"status"`
}

func toMessagePayload(m *chat.Message, layout string) messagePayload {
	return messagePayload{
		ID:         m.ID,
		ChatID:     m.ConversationID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		Timestamp:  m.CreatedAt.Format(layout),
		Status:     string(m.Status),
	}
}
