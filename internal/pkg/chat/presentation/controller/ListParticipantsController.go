package controller

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chatwire/internal/pkg/chat/application/usecase"
	apperrors "chatwire/pkg/errors"
)

// ListParticipantsController returns the membership of a conversation.
type ListParticipantsController struct {
	uc *usecase.ListParticipantsUseCase
}

func NewListParticipantsController(uc *usecase.ListParticipantsUseCase) *ListParticipantsController {
	return &ListParticipantsController{uc: uc}
}

func (h *ListParticipantsController) Handle() gin.HandlerFunc {
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

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ids, err := h.uc.Execute(ctx, usecase.ListParticipantsInput{ChatID: chatID, RequesterID: user.ID})
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"chat_id": chatID, "participants": ids})
	}
}
