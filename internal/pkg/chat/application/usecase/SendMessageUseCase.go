package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"chatwire/internal/infrastructure/queue/port"
	"chatwire/internal/infrastructure/realtime"
	chat "chatwire/internal/pkg/chat/application/domain"
	"chatwire/internal/pkg/chat/application/task"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
	apperrors "chatwire/pkg/errors"
)

// SendMessageInput carries one send request. ReceiverID is required for
// direct conversations (and must name the other participant) and ignored
// for groups.
type SendMessageInput struct {
	ChatID     int64
	SenderID   int64
	ReceiverID *int64
	Content    string
}

// SendMessageUseCase is the delivery coordinator: it validates the send,
// persists the message, fans it out to the conversation room, refreshes
// every connected client's contact list, and returns the persisted
// message. Persistence failure aborts the whole operation before any
// fan-out, so an event is never published for a message that was not
// durably stored.
type SendMessageUseCase struct {
	directory repository.Directory
	store     repository.MessageStore
	publisher RoomPublisher
	queue     port.Client // nil disables offline notifications
	logger    *slog.Logger

	timeFormat       string
	deliveryReceipts bool
}

func NewSendMessageUseCase(directory repository.Directory, store repository.MessageStore, publisher RoomPublisher, queue port.Client, logger *slog.Logger) *SendMessageUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendMessageUseCase{
		directory:  directory,
		store:      store,
		publisher:  publisher,
		queue:      queue,
		logger:     logger,
		timeFormat: DefaultTimeFormat,
	}
}

// WithTimeFormat overrides the wire timestamp rendering.
func (uc *SendMessageUseCase) WithTimeFormat(layout string) *SendMessageUseCase {
	if layout != "" {
		uc.timeFormat = layout
	}
	return uc
}

// WithDeliveryReceipts enables the sent->delivered advance when the
// receiver has at least one live session at publish time. Off by default:
// deployments without receipt semantics leave messages at sent until read.
func (uc *SendMessageUseCase) WithDeliveryReceipts(enabled bool) *SendMessageUseCase {
	uc.deliveryReceipts = enabled
	return uc
}

// Execute runs the send through received -> persisted -> fanned_out ->
// acknowledged and returns the stored message.
func (uc *SendMessageUseCase) Execute(ctx context.Context, in SendMessageInput) (*chat.Message, error) {
	conv, err := uc.directory.GetConversation(ctx, in.ChatID)
	if err != nil {
		return nil, storeErr(err)
	}

	isParticipant, err := uc.directory.IsParticipant(ctx, in.ChatID, in.SenderID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !isParticipant {
		return nil, apperrors.ErrNotParticipant
	}

	var receiverID *int64
	var peer *chat.User
	if !conv.IsGroup() {
		peer, err = uc.directory.DirectPeer(ctx, in.ChatID, in.SenderID)
		if err != nil {
			return nil, storeErr(err)
		}
		if peer == nil {
			return nil, apperrors.ErrReceiverMismatch
		}
		if in.ReceiverID != nil && *in.ReceiverID != peer.ID {
			return nil, apperrors.ErrReceiverMismatch
		}
		receiverID = &peer.ID
	}

	msg, err := chat.NewMessage(in.ChatID, in.SenderID, receiverID, in.Content)
	if err != nil {
		return nil, err
	}

	stored, err := uc.store.Append(ctx, *msg)
	if err != nil {
		return nil, storeWriteErr(err)
	}

	uc.fanOut(ctx, conv, stored, peer)

	return stored, nil
}

// fanOut publishes receive_message to the conversation room and
// update_contact_item to every connected session. Fan-out is best-effort:
// an empty room is a silent success and per-session failures never undo
// the persisted message.
func (uc *SendMessageUseCase) fanOut(ctx context.Context, conv *chat.Conversation, m *chat.Message, peer *chat.User) {
	delivered := uc.publisher.Publish(realtime.ChatRoom(m.ConversationID), realtime.Event{
		Name: realtime.EventReceiveMessage,
		Data: realtime.ReceiveMessageData{
			MessageID:  m.ID,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			ChatID:     m.ConversationID,
			Content:    m.Content,
			Timestamp:  m.CreatedAt.Format(uc.timeFormat),
			Status:     string(m.Status),
		},
	})
	uc.logger.Debug("message fanned out",
		"chat_id", m.ConversationID, "message_id", m.ID, "delivered", delivered)

	if peer != nil {
		if uc.publisher.SessionCount(peer.PublicID) > 0 {
			uc.advanceDelivered(ctx, m)
		} else {
			uc.enqueueOffline(ctx, peer.ID, m)
		}
	}

	uc.publisher.BroadcastAll(realtime.Event{
		Name: realtime.EventUpdateContactItem,
		Data: realtime.UpdateContactItemData{
			ChatID:        m.ConversationID,
			LatestMessage: m.Content,
			SenderID:      m.SenderID,
		},
	})
}

func (uc *SendMessageUseCase) advanceDelivered(ctx context.Context, m *chat.Message) {
	if !uc.deliveryReceipts {
		return
	}
	updated, err := uc.store.SetStatus(ctx, m.ID, chat.StatusDelivered, nil)
	if err != nil {
		// Receipt bookkeeping only; the send already succeeded.
		uc.logger.Warn("delivered transition failed", "message_id", m.ID, "err", err)
		return
	}
	m.Status = updated.Status
}

func (uc *SendMessageUseCase) enqueueOffline(ctx context.Context, receiverID int64, m *chat.Message) {
	if uc.queue == nil {
		return
	}
	payload, err := json.Marshal(task.NotifyOfflinePayload{
		UserID:  receiverID,
		ChatID:  m.ConversationID,
		Preview: m.Content,
	})
	if err != nil {
		return
	}
	_, err = uc.queue.Enqueue(ctx, port.Task{Type: task.NotifyOfflineTaskType, Payload: payload},
		port.EnqueueOption{Queue: "chat", MaxRetry: 3, Retention: 24 * time.Hour})
	if err != nil {
		uc.logger.Warn("offline notification enqueue failed",
			"receiver_id", receiverID, "message_id", m.ID, "err", err)
	}
}
