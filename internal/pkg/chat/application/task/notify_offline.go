package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	qport "chatwire/internal/infrastructure/queue/port"
	repository "chatwire/internal/pkg/chat/persistence/repository/port"
)

// NotifyOfflineTaskType is the queue task name for recording a
// notification when a direct message reaches a receiver with no live
// session.
const NotifyOfflineTaskType = "chat:notify_offline"

// NotifyOfflinePayload is the JSON payload transported via the queue.
type NotifyOfflinePayload struct {
	UserID  int64  `json:"user_id"`
	ChatID  int64  `json:"chat_id"`
	Preview string `json:"preview"`
}

// RegisterNotifyOfflineTask binds the handler to the provided server.
// The handler persists a notification row through the directory; retries
// are governed by the enqueue options.
func RegisterNotifyOfflineTask(srv qport.Server, directory repository.Directory) {
	srv.Register(NotifyOfflineTaskType, func(ctx context.Context, t qport.Task) error {
		var p NotifyOfflinePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		text := fmt.Sprintf("New message in chat %d: %s", p.ChatID, truncate(p.Preview, 120))
		return directory.SaveNotification(ctx, p.UserID, text)
	})
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}
