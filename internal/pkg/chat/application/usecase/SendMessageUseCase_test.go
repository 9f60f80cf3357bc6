package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatwire/internal/infrastructure/realtime"
	chat "chatwire/internal/pkg/chat/application/domain"
	"chatwire/internal/pkg/chat/application/task"
	apperrors "chatwire/pkg/errors"
)

func sendFixture() (*fakeDirectory, *fakeStore, *fakePublisher, *fakeQueue) {
	dir := newFakeDirectory()
	dir.addUser(chat.User{ID: 1, Username: "alice", PublicID: "alice-uuid"})
	dir.addUser(chat.User{ID: 2, Username: "bob", PublicID: "bob-uuid"})
	dir.addUser(chat.User{ID: 3, Username: "carol", PublicID: "carol-uuid"})
	dir.addDirectChat(10, 1, 2)
	dir.addGroupChat(20, "friends", 1, 2, 3)
	return dir, newFakeStore(), newFakePublisher(), &fakeQueue{}
}

func TestSendMessageDirect(t *testing.T) {
	dir, store, pub, queue := sendFixture()
	pub.online["bob-uuid"] = 1
	uc := NewSendMessageUseCase(dir, store, pub, queue, nil)

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ChatID: 10, SenderID: 1, Content: "hello bob",
	})
	require.NoError(t, err)

	require.NotNil(t, msg.ReceiverID)
	assert.EqualValues(t, 2, *msg.ReceiverID, "receiver inferred from the thread")
	assert.Equal(t, chat.StatusSent, msg.Status)

	frames := pub.eventsNamed(realtime.EventReceiveMessage)
	require.Len(t, frames, 1)
	assert.Equal(t, realtime.ChatRoom(10), pub.published[0].room)
	data := frames[0].Data.(realtime.ReceiveMessageData)
	assert.Equal(t, msg.ID, data.MessageID)
	assert.Equal(t, "hello bob", data.Content)
	assert.Equal(t, "2025-03-01 12:00:01", data.Timestamp)
	assert.Equal(t, "sent", data.Status)

	require.Len(t, pub.broadcasts, 1)
	item := pub.broadcasts[0].Data.(realtime.UpdateContactItemData)
	assert.EqualValues(t, 10, item.ChatID)
	assert.Equal(t, "hello bob", item.LatestMessage)
	assert.EqualValues(t, 1, item.SenderID)

	assert.Empty(t, queue.tasks, "online receiver needs no offline notification")
}

func TestSendMessageGroupHasNoReceiver(t *testing.T) {
	dir, store, pub, queue := sendFixture()
	uc := NewSendMessageUseCase(dir, store, pub, queue, nil)

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ChatID: 20, SenderID: 1, Content: "hi all",
	})
	require.NoError(t, err)

	assert.Nil(t, msg.ReceiverID)
	frames := pub.eventsNamed(realtime.EventReceiveMessage)
	require.Len(t, frames, 1)
	assert.Nil(t, frames[0].Data.(realtime.ReceiveMessageData).ReceiverID)
	assert.Empty(t, queue.tasks, "group sends never enqueue offline notifications")
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	dir, store, pub, queue := sendFixture()
	uc := NewSendMessageUseCase(dir, store, pub, queue, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ChatID: 10, SenderID: 3, Content: "let me in",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
	assert.Empty(t, pub.published)
	assert.Empty(t, store.messages)
}

func TestSendMessageRejectsReceiverMismatch(t *testing.T) {
	dir, store, pub, queue := sendFixture()
	uc := NewSendMessageUseCase(dir, store, pub, queue, nil)

	wrong := int64(3)
	_, err := uc.Execute(context.Background(), SendMessageInput{
		ChatID: 10, SenderID: 1, ReceiverID: &wrong, Content: "hello",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidReceiver, apperrors.CodeOf(err))
	assert.Empty(t, store.messages)
}

func TestSendMessageUnknownChat(t *testing.T) {
	dir, store, pub, queue := sendFixture()
	uc := NewSendMessageUseCase(dir, store, pub, queue, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ChatID: 999, SenderID: 1, Content: "hello",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestSendMessageEmptyContent(t *testing.T) {
	dir, store, pub, queue := sendFixture()
	uc := NewSendMessageUseCase(dir, store, pub, queue, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ChatID: 10, SenderID: 1, Content: "   ",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
	assert.Empty(t, pub.published)
}

func TestSendMessagePersistFailureAbortsFanOut(t *testing.T) {
	dir, store, pub, queue := sendFixture()
	store.appendErr = assert.AnError
	uc := NewSendMessageUseCase(dir, store, pub, queue, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ChatID: 10, SenderID: 1, Content: "hello",
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeStoreUnavailable, apperrors.CodeOf(err))
	assert.Empty(t, pub.published, "no event for an unstored message")
	assert.Empty(t, pub.broadcasts)
	assert.Empty(t, queue.tasks)
}

func TestSendMessageOfflineReceiverEnqueuesNotification(t *testing.T) {
	dir, store, pub, queue := sendFixture()
	uc := NewSendMessageUseCase(dir, store, pub, queue, nil)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ChatID: 10, SenderID: 1, Content: "are you there",
	})
	require.NoError(t, err)

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, task.NotifyOfflineTaskType, queue.tasks[0].Type)
	var payload task.NotifyOfflinePayload
	require.NoError(t, json.Unmarshal(queue.tasks[0].Payload, &payload))
	assert.EqualValues(t, 2, payload.UserID)
	assert.EqualValues(t, 10, payload.ChatID)
	assert.Equal(t, "are you there", payload.Preview)
	require.Len(t, queue.opts, 1)
	assert.Equal(t, "chat", queue.opts[0].Queue)
}

func TestSendMessageDeliveryReceipts(t *testing.T) {
	t.Run("disabled leaves status at sent", func(t *testing.T) {
		dir, store, pub, queue := sendFixture()
		pub.online["bob-uuid"] = 1
		uc := NewSendMessageUseCase(dir, store, pub, queue, nil)

		msg, err := uc.Execute(context.Background(), SendMessageInput{
			ChatID: 10, SenderID: 1, Content: "hi",
		})
		require.NoError(t, err)
		assert.Equal(t, chat.StatusSent, msg.Status)
		assert.Equal(t, chat.StatusSent, store.messages[msg.ID].Status)
	})

	t.Run("never regresses a message already read", func(t *testing.T) {
		dir, store, _, queue := sendFixture()
		pub := &readRacingPublisher{fakePublisher: newFakePublisher(), store: store, readerID: 2}
		uc := NewSendMessageUseCase(dir, store, pub, queue, nil).WithDeliveryReceipts(true)

		msg, err := uc.Execute(context.Background(), SendMessageInput{
			ChatID: 10, SenderID: 1, Content: "hi",
		})
		require.NoError(t, err)

		stored := store.messages[msg.ID]
		assert.Equal(t, chat.StatusRead, stored.Status, "delivered bookkeeping must not undo a read")
		require.NotNil(t, stored.ReadAt)
	})

	t.Run("enabled advances to delivered while receiver is online", func(t *testing.T) {
		dir, store, pub, queue := sendFixture()
		pub.online["bob-uuid"] = 2
		uc := NewSendMessageUseCase(dir, store, pub, queue, nil).WithDeliveryReceipts(true)

		msg, err := uc.Execute(context.Background(), SendMessageInput{
			ChatID: 10, SenderID: 1, Content: "hi",
		})
		require.NoError(t, err)
		assert.Equal(t, chat.StatusDelivered, msg.Status)
		assert.Equal(t, chat.StatusDelivered, store.messages[msg.ID].Status)
		assert.Empty(t, queue.tasks)
	})
}

// readRacingPublisher lands the receiver's read receipt in the window
// between the room publish and the delivered bookkeeping: by the time the
// coordinator consults SessionCount, the message is already read.
type readRacingPublisher struct {
	*fakePublisher
	store    *fakeStore
	readerID int64
}

func (p *readRacingPublisher) SessionCount(string) int {
	for id := range p.store.messages {
		_, _ = NewMarkMessageReadUseCase(p.store).Execute(context.Background(), MarkMessageReadInput{
			MessageID: id, ReaderID: p.readerID,
		})
	}
	return 1
}

func TestSendMessageCustomTimeFormat(t *testing.T) {
	dir, store, pub, queue := sendFixture()
	uc := NewSendMessageUseCase(dir, store, pub, queue, nil).WithTimeFormat("15:04")

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ChatID: 20, SenderID: 1, Content: "short clocks",
	})
	require.NoError(t, err)

	frames := pub.eventsNamed(realtime.EventReceiveMessage)
	require.Len(t, frames, 1)
	assert.Equal(t, "12:00", frames[0].Data.(realtime.ReceiveMessageData).Timestamp)
}
