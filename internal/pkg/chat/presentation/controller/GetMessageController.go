package controller

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chatwire/internal/pkg/chat/application/usecase"
	apperrors "chatwire/pkg/errors"
)

// GetMessageController handles the conversation history endpoint.
type GetMessageController struct {
	uc         *usecase.GetMessageUseCase
	timeFormat string
}

func NewGetMessageController(uc *usecase.GetMessageUseCase, timeFormat string) *GetMessageController {
	return &GetMessageController{uc: uc, timeFormat: timeFormat}
}

func (h *GetMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			fail(c, apperrors.ErrNotLoggedIn)
			return
		}

		chatID, err := strconv.ParseInt(c.Param("chatId"), 10, 64)
		if err != nil {
			fail(c, apperrors.InvalidArg("chatId must be an integer"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		msgs, err := h.uc.Execute(ctx, usecase.GetMessageInput{ChatID: chatID, RequesterID: user.ID})
		if err != nil {
			fail(c, err)
			return
		}

		payloads := make([]messagePayload, len(msgs))
		for i := range msgs {
			payloads[i] = toMessagePayload(&msgs[i], h.timeFormat)
		}
		ok(c, gin.H{"messages": payloads})
	}
}
