// Package event defines the wire contract of the chat event channel:
// the event names and the JSON payloads they carry. Field names follow
// the service's snake_case/camelCase mix exactly.
package event

import "encoding/json"

// Inbound events (channel -> client).
const (
	NewMessage   = "newMessage"
	Typing       = "typing"
	StopTyping   = "stopTyping"
	ChatUpdated  = "chatUpdated"
	AdjustStrict = "adjustStrict"
	ChatCreated  = "chatCreated"
	Error        = "error"
)

// Outbound events (client -> channel). Typing, StopTyping and
// AdjustStrict are emitted in both directions under the same name.
const (
	JoinChat            = "joinChat"
	LeaveChat           = "leaveChat"
	SendMessage         = "sendMessage"
	NotiUpdateGroupName = "sendNotiUpdateGroupName"
	NotiAdjustMember    = "sendNotiAdjustMember"
	SubscribeToUser     = "subscribeToUser"
)

// Envelope frames every message on the channel.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TypingPayload is shared by typing and stopTyping. Inbound events
// carry only the sender; outbound ones also name the conversation.
type TypingPayload struct {
	ChatID   string `json:"chat_id,omitempty"`
	SenderID string `json:"sender_id"`
}

// SendMessagePayload is the outbound send intent. ID is a
// producer-side idempotency key; the store's dedup keys on it when the
// channel redelivers.
type SendMessagePayload struct {
	ID       string `json:"_id"`
	ChatID   string `json:"chat_id"`
	SenderID string `json:"sender_id"`
	Content  string `json:"content"`
}

type StrictPayload struct {
	IsStrict bool `json:"is_strict"`
}

type UpdateGroupNamePayload struct {
	ChatID    string `json:"chat_id"`
	SenderID  string `json:"sender_id"`
	GroupName string `json:"groupName"`
}

type AdjustMemberPayload struct {
	ChatID   string `json:"chat_id"`
	SenderID string `json:"sender_id"`
	MemberID string `json:"member_id"`
	IsAdd    bool   `json:"isAdd"`
}
