package realtime

import (
	"encoding/json"
	"strconv"
)

// Event is one outbound frame: a name and a payload, marshaled as
// {"event": <name>, "data": <payload>}. Payload field names are part of
// the wire contract and must not change.
type Event struct {
	Name string
	Data any
}

// Marshal renders the wire frame.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}{Event: e.Name, Data: e.Data})
}

// Outbound event names.
const (
	EventUserConnected     = "user_connected"
	EventReceiveMessage    = "receive_message"
	EventUpdateContactItem = "update_contact_item"
	EventGroupCreated      = "group_created"
)

// UserConnectedData announces a live session of a user to a room.
type UserConnectedData struct {
	UUID string `json:"uuid"`
}

// ReceiveMessageData carries a freshly persisted message to a conversation
// room. ReceiverID is null for group messages. Timestamp is preformatted
// per deployment policy.
type ReceiveMessageData struct {
	MessageID  int64  `json:"message_id"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID *int64 `json:"receiver_id"`
	ChatID     int64  `json:"chat_id"`
	Content    string `json:"content"`
	Timestamp  string `json:"timestamp"`
	Status     string `json:"status"`
}

// UpdateContactItemData refreshes one contact-list entry on every connected
// client, whether or not they joined the conversation room.
type UpdateContactItemData struct {
	ChatID        int64  `json:"chat_id"`
	LatestMessage string `json:"latest_message"`
	SenderID      int64  `json:"sender_id"`
}

// GroupCreatedData notifies a member's home room about a new group.
type GroupCreatedData struct {
	ChatID    int64  `json:"chat_id"`
	GroupName string `json:"group_name"`
}

// ChatRoom names the room of a conversation.
func ChatRoom(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// HomeRoom names a user's personal room, auto-joined on connect.
func HomeRoom(userPublicID string) string {
	return userPublicID
}
