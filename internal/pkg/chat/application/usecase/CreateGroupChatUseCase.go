package usecase

import (
	"context"
	"log/slog"
	"strings"

	"chatwire/internal/infrastructure/realtime"
	chat "chatwire/internal/pkg/chat/application/domain"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
	apperrors "chatwire/pkg/errors"
)

// CreateGroupChatInput opens a named group with the creator as admin.
type CreateGroupChatInput struct {
	CreatorID int64
	Name      string
	Usernames []string
}

// CreateGroupChatUseCase creates group conversations and announces them
// to every member's home room via group_created, so members see the new
// group without rejoining.
type CreateGroupChatUseCase struct {
	directory repository.Directory
	publisher RoomPublisher
	logger    *slog.Logger
}

func NewCreateGroupChatUseCase(directory repository.Directory, publisher RoomPublisher, logger *slog.Logger) *CreateGroupChatUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateGroupChatUseCase{directory: directory, publisher: publisher, logger: logger}
}

func (uc *CreateGroupChatUseCase) Execute(ctx context.Context, in CreateGroupChatInput) (*chat.Conversation, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.ErrGroupNameRequired
	}
	if len(in.Usernames) == 0 {
		return nil, apperrors.ErrGroupNeedsMembers
	}

	members := make([]*chat.User, 0, len(in.Usernames))
	memberIDs := make([]int64, 0, len(in.Usernames))
	for _, username := range in.Usernames {
		u, err := uc.directory.UserByUsername(ctx, username)
		if err != nil {
			return nil, storeErr(err)
		}
		members = append(members, u)
		memberIDs = append(memberIDs, u.ID)
	}

	conv, err := uc.directory.CreateGroupConversation(ctx, name, in.CreatorID, memberIDs)
	if err != nil {
		return nil, storeErr(err)
	}

	creator, err := uc.directory.UserByID(ctx, in.CreatorID)
	if err != nil {
		// The group exists either way; the creator just misses the
		// home-room announcement.
		uc.logger.Warn("creator lookup failed, skipping their group_created notice",
			"chat_id", conv.ID, "creator_id", in.CreatorID, "err", err)
	} else {
		members = append(members, creator)
	}

	ev := realtime.Event{
		Name: realtime.EventGroupCreated,
		Data: realtime.GroupCreatedData{ChatID: conv.ID, GroupName: name},
	}
	for _, m := range members {
		uc.publisher.Publish(realtime.HomeRoom(m.PublicID), ev)
	}

	return conv, nil
}
