package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"chatwire/internal/pkg/chat/application/usecase"
	apperrors "chatwire/pkg/errors"
)

// CreateGroupChatController handles group creation.
type CreateGroupChatController struct {
	uc *usecase.CreateGroupChatUseCase
}

func NewCreateGroupChatController(uc *usecase.CreateGroupChatUseCase) *CreateGroupChatController {
	return &CreateGroupChatController{uc: uc}
}

type createGroupChatRequest struct {
	Name  string   `json:"name" binding:"required"`
	Users []string `json:"users" binding:"required"`
}

func (h *CreateGroupChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			fail(c, apperrors.ErrNotLoggedIn)
			return
		}

		var req createGroupChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperrors.InvalidArg("name and users are required"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		conv, err := h.uc.Execute(ctx, usecase.CreateGroupChatInput{
			CreatorID: user.ID,
			Name:      req.Name,
			Usernames: req.Users,
		})
		if err != nil {
			fail(c, err)
			return
		}

		ok(c, gin.H{"chat_id": conv.ID, "group_name": req.Name})
	}
}
