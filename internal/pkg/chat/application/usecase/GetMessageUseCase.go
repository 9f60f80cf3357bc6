package usecase

import (
	"context"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
	apperrors "chatwire/pkg/errors"
)

// GetMessageInput fetches the history of a conversation for one of its
// participants.
type GetMessageInput struct {
	ChatID      int64
	RequesterID int64
}

// GetMessageUseCase returns the ordered message history of a
// conversation, soft-deleted messages excluded. The sequence is
// timestamp-non-decreasing with insertion order within equal timestamps.
type GetMessageUseCase struct {
	directory repository.Directory
	store     repository.MessageStore
}

func NewGetMessageUseCase(directory repository.Directory, store repository.MessageStore) *GetMessageUseCase {
	return &GetMessageUseCase{directory: directory, store: store}
}

func (uc *GetMessageUseCase) Execute(ctx context.Context, in GetMessageInput) ([]chat.Message, error) {
	isParticipant, err := uc.directory.IsParticipant(ctx, in.ChatID, in.RequesterID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isParticipant {
		return nil, apperrors.ErrNotParticipant
	}

	msgs, err := uc.store.Range(ctx, in.ChatID, true)
	if err != nil {
		return nil, storeErr(err)
	}
	return msgs, nil
}
