package usecase

import (
	"context"

	repository "chatwire/internal/pkg/chat/persistence/repository/port"
	apperrors "chatwire/pkg/errors"
)

// JoinConversationInput validates a request to attach a session to a
// conversation room.
type JoinConversationInput struct {
	ChatID int64
	UserID int64
}

// JoinConversationUseCase ensures the user belongs to the conversation
// before the session joins the realtime room.
type JoinConversationUseCase struct {
	directory repository.Directory
}

func NewJoinConversationUseCase(directory repository.Directory) *JoinConversationUseCase {
	return &JoinConversationUseCase{directory: directory}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) error {
	ok, err := uc.directory.IsParticipant(ctx, in.ChatID, in.UserID)
	if err != nil {
		return storeErr(err)
	}
	if !ok {
		return apperrors.ErrNotParticipant
	}
	return nil
}
