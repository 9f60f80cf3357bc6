package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"chatwire/internal/pkg/chat/application/usecase"
	apperrors "chatwire/pkg/errors"
)

// SendMessageController handles the HTTP send endpoint. It runs the same
// delivery coordinator as the websocket path, so both share validation,
// persistence and fan-out behavior.
type SendMessageController struct {
	uc         *usecase.SendMessageUseCase
	timeFormat string
}

func NewSendMessageController(uc *usecase.SendMessageUseCase, timeFormat string) *SendMessageController {
	return &SendMessageController{uc: uc, timeFormat: timeFormat}
}

type sendMessageRequest struct {
	ChatID     int64  `json:"chat_id" binding:"required"`
	ReceiverID *int64 `json:"receiver_id"`
	Content    string `json:"content"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			fail(c, apperrors.ErrNotLoggedIn)
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperrors.InvalidArg("chat_id and content are required"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		msg, err := h.uc.Execute(ctx, usecase.SendMessageInput{
			ChatID:     req.ChatID,
			SenderID:   user.ID,
			ReceiverID: req.ReceiverID,
			Content:    req.Content,
		})
		if err != nil {
			fail(c, err)
			return
		}

		p := toMessagePayload(msg, h.timeFormat)
		ok(c, gin.H{
			"id":        p.ID,
			"chat_id":   p.ChatID,
			"content":   p.Content,
			"timestamp": p.Timestamp,
			"status":    p.Status,
		})
	}
}
