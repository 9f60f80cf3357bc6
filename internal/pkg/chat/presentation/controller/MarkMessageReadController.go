package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"chatwire/internal/pkg/chat/application/usecase"
	apperrors "chatwire/pkg/errors"
)

// MarkMessageReadController handles the read-receipt endpoint.
type MarkMessageReadController struct {
	uc *usecase.MarkMessageReadUseCase
}

func NewMarkMessageReadController(uc *usecase.MarkMessageReadUseCase) *MarkMessageReadController {
	return &MarkMessageReadController{uc: uc}
}

type markReadRequest struct {
	MessageID int64 `json:"message_id" binding:"required"`
}

func (h *MarkMessageReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			fail(c, apperrors.ErrNotLoggedIn)
			return
		}

		var req markReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperrors.InvalidArg("message_id is required"))
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		msg, err := h.uc.Execute(ctx, usecase.MarkMessageReadInput{
			MessageID: req.MessageID,
			ReaderID:  user.ID,
		})
		if err != nil {
			fail(c, err)
			return
		}

		ok(c, gin.H{"message_id": msg.ID, "status": string(msg.Status)})
	}
}
