package usecase

import (
	"context"
	"sort"

	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// ListContactsInput identifies the viewing user.
type ListContactsInput struct {
	UserID int64
}

// ListContactsUseCase computes the contact-list summary projection: every
// conversation the user participates in, its display name (the other
// participant for direct threads, the stored name for groups) and the
// latest non-deleted message. This pull path orders by the same rule as
// the update_contact_item push path: max timestamp, ties broken by
// highest id.
type ListContactsUseCase struct {
	directory  repository.Directory
	store      repository.MessageStore
	timeFormat string
}

func NewListContactsUseCase(directory repository.Directory, store repository.MessageStore) *ListContactsUseCase {
	return &ListContactsUseCase{directory: directory, store: store, timeFormat: DefaultTimeFormat}
}

// WithTimeFormat overrides the preview timestamp rendering.
func (uc *ListContactsUseCase) WithTimeFormat(layout string) *ListContactsUseCase {
	if layout != "" {
		uc.timeFormat = layout
	}
	return uc
}

func (uc *ListContactsUseCase) Execute(ctx context.Context, in ListContactsInput) ([]chat.ContactItem, error) {
	convs, err := uc.directory.ConversationsOf(ctx, in.UserID)
	if err != nil {
		return nil, storeErr(err)
	}

	type entry struct {
		item   chat.ContactItem
		latest *chat.Message
	}
	entries := make([]entry, 0, len(convs))

	for i := range convs {
		conv := &convs[i]

		var name string
		if conv.IsGroup() {
			if conv.Name != nil {
				name = *conv.Name
			}
		} else {
			peer, err := uc.directory.DirectPeer(ctx, conv.ID, in.UserID)
			if err != nil {
				return nil, storeErr(err)
			}
			if peer == nil {
				// Direct thread with no counterpart is unaddressable.
				continue
			}
			name = peer.Username
		}

		latest, err := uc.store.Latest(ctx, conv.ID)
		if err != nil {
			return nil, storeErr(err)
		}

		item := chat.ContactItem{ChatID: conv.ID, ChatName: name}
		if latest != nil {
			item.LatestMessage = latest.Content
			item.LatestTimestamp = latest.CreatedAt.Format(uc.timeFormat)
			item.LatestSenderID = latest.SenderID
		}
		entries = append(entries, entry{item: item, latest: latest})
	}

	// Most recent activity first; conversations without messages trail in
	// creation order.
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].latest, entries[j].latest
		switch {
		case a == nil && b == nil:
			return false
		case b == nil:
			return true
		case a == nil:
			return false
		default:
			return a.Newer(b)
		}
	})

	items := make([]chat.ContactItem, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	return items, nil
}
