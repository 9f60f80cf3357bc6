package usecase

import (
	"context"
	"time"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
	apperrors "chatwire/pkg/errors"
)

// MarkMessageReadInput identifies the message and the user claiming to
// have read it.
type MarkMessageReadInput struct {
	MessageID int64
	ReaderID  int64
}

// MarkMessageReadUseCase advances a message to read. Only the message's
// receiver may do so; a sender or third party is rejected without any
// mutation. Re-reading an already-read message is a no-op success.
type MarkMessageReadUseCase struct {
	store repository.MessageStore
}

func NewMarkMessageReadUseCase(store repository.MessageStore) *MarkMessageReadUseCase {
	return &MarkMessageReadUseCase{store: store}
}

func (uc *MarkMessageReadUseCase) Execute(ctx context.Context, in MarkMessageReadInput) (*chat.Message, error) {
	msg, err := uc.store.GetMessage(ctx, in.MessageID)
	if err != nil {
		return nil, storeErr(err)
	}

	if msg.ReceiverID == nil || *msg.ReceiverID != in.ReaderID {
		return nil, apperrors.ErrNotReceiver
	}

	if msg.Status == chat.StatusRead {
		return msg, nil
	}

	now := time.Now().UTC()
	if err := msg.Advance(chat.StatusRead, now); err != nil {
		return nil, err
	}

	updated, err := uc.store.SetStatus(ctx, msg.ID, chat.StatusRead, msg.ReadAt)
	if err != nil {
		return nil, storeWriteErr(err)
	}
	return updated, nil
}
