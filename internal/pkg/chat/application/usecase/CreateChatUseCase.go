package usecase

import (
	"context"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
	apperrors "chatwire/pkg/errors"
)

// CreateChatInput opens a direct conversation between the requester and
// the user named by ContactUsername.
type CreateChatInput struct {
	RequesterID     int64
	ContactUsername string
}

// CreateChatOutput is the created thread plus the resolved contact, so
// the caller can render the new contact entry without a second lookup.
type CreateChatOutput struct {
	Conversation *chat.Conversation
	Contact      *chat.User
}

// CreateChatUseCase creates direct conversations. At most one direct
// conversation exists per unordered user pair; a repeat request fails
// with CONFLICT instead of creating a duplicate.
type CreateChatUseCase struct {
	directory repository.Directory
}

func NewCreateChatUseCase(directory repository.Directory) *CreateChatUseCase {
	return &CreateChatUseCase{directory: directory}
}

func (uc *CreateChatUseCase) Execute(ctx context.Context, in CreateChatInput) (*CreateChatOutput, error) {
	if in.ContactUsername == "" {
		return nil, apperrors.InvalidArg("username is required")
	}

	contact, err := uc.directory.UserByUsername(ctx, in.ContactUsername)
	if err != nil {
		return nil, storeErr(err)
	}
	if contact.ID == in.RequesterID {
		return nil, apperrors.ErrSelfContact
	}

	conv, err := uc.directory.CreateDirectConversation(ctx, in.RequesterID, contact.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return &CreateChatOutput{Conversation: conv, Contact: contact}, nil
}
