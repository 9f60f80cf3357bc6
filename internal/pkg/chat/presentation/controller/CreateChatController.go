package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"chatwire/internal/pkg/chat/application/usecase"
	apperrors "chatwire/pkg/errors"
)

// CreateChatController handles direct-conversation creation ("add
// contact"). A second request for the same pair fails with the conflict
// shape instead of forking a duplicate thread.
type CreateChatController struct {
	uc *usecase.CreateChatUseCase
}

func NewCreateChatController(uc *usecase.CreateChatUseCase) *CreateChatController {
	return &CreateChatController{uc: uc}
}

type createChatRequest struct {
	Username string `json:"username" binding:"required"`
}

func (h *CreateChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			fail(c, apperrors.ErrNotLoggedIn)
			return
		}

		var req createChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperrors.InvalidArg("username is required"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		out, err := h.uc.Execute(ctx, usecase.CreateChatInput{
			RequesterID:     user.ID,
			ContactUsername: req.Username,
		})
		if err != nil {
			fail(c, err)
			return
		}

		ok(c, gin.H{
			"chat_id":   out.Conversation.ID,
			"chat_name": out.Contact.Username,
			"message":   "Contact added successfully.",
		})
	}
}
