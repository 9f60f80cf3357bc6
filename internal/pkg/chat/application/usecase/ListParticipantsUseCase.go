package usecase

import (
	"context"

	repository "chatwire/internal/pkg/chat/persistence/repository/port"
	apperrors "chatwire/pkg/errors"
)

// ListParticipantsInput wraps the conversation to inspect.
type ListParticipantsInput struct {
	ChatID      int64
	RequesterID int64
}

// ListParticipantsUseCase returns user ids of all participants in the
// conversation; only participants may look.
type ListParticipantsUseCase struct {
	directory repository.Directory
}

func NewListParticipantsUseCase(directory repository.Directory) *ListParticipantsUseCase {
	return &ListParticipantsUseCase{directory: directory}
}

func (uc *ListParticipantsUseCase) Execute(ctx context.Context, in ListParticipantsInput) ([]int64, error) {
	ok, err := uc.directory.IsParticipant(ctx, in.ChatID, in.RequesterID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !ok {
		return nil, apperrors.ErrNotParticipant
	}

	ids, err := uc.directory.ParticipantsOf(ctx, in.ChatID)
	if err != nil {
		return nil, storeErr(err)
	}
	return ids, nil
}
