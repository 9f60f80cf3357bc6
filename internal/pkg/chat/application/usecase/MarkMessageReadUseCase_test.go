package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chat "chatwire/internal/pkg/chat/application/domain"
	apperrors "chatwire/pkg/errors"
)

func appendDirect(t *testing.T, store *fakeStore, chatID, senderID, receiverID int64, content string) *chat.Message {
	t.Helper()
	m, err := store.Append(context.Background(), chat.Message{
		ConversationID: chatID,
		SenderID:       senderID,
		ReceiverID:     &receiverID,
		Content:        content,
	})
	require.NoError(t, err)
	return m
}

func TestMarkMessageRead(t *testing.T) {
	store := newFakeStore()
	msg := appendDirect(t, store, 10, 1, 2, "hello")
	uc := NewMarkMessageReadUseCase(store)

	updated, err := uc.Execute(context.Background(), MarkMessageReadInput{MessageID: msg.ID, ReaderID: 2})
	require.NoError(t, err)

	assert.Equal(t, chat.StatusRead, updated.Status)
	require.NotNil(t, updated.ReadAt)
	assert.Equal(t, chat.StatusRead, store.messages[msg.ID].Status)
}

func TestMarkMessageReadIsIdempotent(t *testing.T) {
	store := newFakeStore()
	msg := appendDirect(t, store, 10, 1, 2, "hello")
	uc := NewMarkMessageReadUseCase(store)

	first, err := uc.Execute(context.Background(), MarkMessageReadInput{MessageID: msg.ID, ReaderID: 2})
	require.NoError(t, err)
	require.NotNil(t, first.ReadAt)

	again, err := uc.Execute(context.Background(), MarkMessageReadInput{MessageID: msg.ID, ReaderID: 2})
	require.NoError(t, err)
	assert.Equal(t, chat.StatusRead, again.Status)
	require.NotNil(t, again.ReadAt)
	assert.Equal(t, *first.ReadAt, *again.ReadAt, "re-reading must not move the read time")
}

func TestMarkMessageReadOnlyReceiverMay(t *testing.T) {
	store := newFakeStore()
	msg := appendDirect(t, store, 10, 1, 2, "hello")
	uc := NewMarkMessageReadUseCase(store)

	for name, readerID := range map[string]int64{"sender": 1, "third party": 3} {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Execute(context.Background(), MarkMessageReadInput{MessageID: msg.ID, ReaderID: readerID})
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
			assert.Equal(t, chat.StatusSent, store.messages[msg.ID].Status, "rejection must not mutate")
		})
	}
}

func TestMarkMessageReadGroupMessageForbidden(t *testing.T) {
	store := newFakeStore()
	m, err := store.Append(context.Background(), chat.Message{ConversationID: 20, SenderID: 1, Content: "hi all"})
	require.NoError(t, err)
	uc := NewMarkMessageReadUseCase(store)

	_, err = uc.Execute(context.Background(), MarkMessageReadInput{MessageID: m.ID, ReaderID: 2})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestMarkMessageReadUnknownMessage(t *testing.T) {
	uc := NewMarkMessageReadUseCase(newFakeStore())

	_, err := uc.Execute(context.Background(), MarkMessageReadInput{MessageID: 404, ReaderID: 2})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}
