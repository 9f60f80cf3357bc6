package controller

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"chatwire/internal/pkg/chat/application/usecase"
	apperrors "chatwire/pkg/errors"
)

// ListContactsController serves the contact-list summary projection.
type ListContactsController struct {
	uc *usecase.ListContactsUseCase
}

func NewListContactsController(uc *usecase.ListContactsUseCase) *ListContactsController {
	return &ListContactsController{uc: uc}
}

func (h *ListContactsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			fail(c, apperrors.ErrNotLoggedIn)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		contacts, err := h.uc.Execute(ctx, usecase.ListContactsInput{UserID: user.ID})
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, gin.H{"contacts": contacts})
	}
}
