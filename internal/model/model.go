package model

import "time"

// Message kinds as the server sends them in the "type" field.
const (
	KindNormal = "normal"
	KindNotice = "noti"
	KindFile   = "file"
	KindImage  = "image"
)

// Message is one entry in a conversation's history. For file and image
// kinds Content holds the download URI instead of text.
type Message struct {
	ID        string     `json:"_id"`
	SenderID  string     `json:"sender_id"`
	Content   string     `json:"content"`
	Kind      string     `json:"type,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// Deleted reports whether the message is a tombstone. Tombstones keep
// their slot in history; only the content is suppressed by the view.
func (m Message) Deleted() bool {
	return m.DeletedAt != nil
}

// IsNotice reports whether the message signals an out-of-band
// conversation change (rename, membership) that warrants a metadata
// refetch.
func (m Message) IsNotice() bool {
	return m.Kind == KindNotice
}

// Chat is the conversation metadata record. GroupName is set only for
// group chats; direct chats always have exactly two members.
type Chat struct {
	ID        string   `json:"_id"`
	OwnerID   string   `json:"owner_id"`
	IsGroup   bool     `json:"is_group"`
	Members   []string `json:"members"`
	GroupName string   `json:"groupName,omitempty"`
	IsStrict  bool     `json:"is_strict"`
}

// HasMember reports membership of the given user id.
func (c *Chat) HasMember(id string) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}

// OtherMember returns the counterpart in a direct chat, or "" for a
// group.
func (c *Chat) OtherMember(selfID string) string {
	if c.IsGroup {
		return ""
	}
	for _, m := range c.Members {
		if m != selfID {
			return m
		}
	}
	return ""
}

type User struct {
	ID        string   `json:"_id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	IsOnline  bool     `json:"isOnline"`
	FriendIDs []string `json:"friend_ids"`
}
