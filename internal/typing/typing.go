// Package typing tracks which users are currently typing in the open
// conversation. Entries leave only on an explicit stopTyping, a
// membership change or a reset; there is deliberately no timeout.
package typing

import "go-chat-client/internal/model"

type Tracker struct {
	selfID string
	users  map[string]struct{}
	order  []string
}

func New(selfID string) *Tracker {
	return &Tracker{
		selfID: selfID,
		users:  make(map[string]struct{}),
	}
}

// Typing records a typing event. Own events are ignored. In a direct
// conversation the incoming sender replaces the whole set: clearing
// first guards against stale entries left by a prior counterpart. In a
// group every distinct sender accumulates.
func (t *Tracker) Typing(senderID string, chat *model.Chat) {
	if senderID == t.selfID || chat == nil {
		return
	}

	if !chat.IsGroup {
		t.clear()
	}
	t.add(senderID)
}

// StopTyping removes the sender from the set.
func (t *Tracker) StopTyping(senderID string) {
	t.remove(senderID)
}

// RemoveMember drops a user who left the conversation.
func (t *Tracker) RemoveMember(id string) {
	t.remove(id)
}

// Prune drops everyone no longer in the member set; applied after a
// conversation refetch.
func (t *Tracker) Prune(chat *model.Chat) {
	if chat == nil {
		t.clear()
		return
	}
	for _, id := range t.Users() {
		if !chat.HasMember(id) {
			t.remove(id)
		}
	}
}

func (t *Tracker) Count() int {
	return len(t.users)
}

// Users returns the typing user ids in arrival order.
func (t *Tracker) Users() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Tracker) Reset() {
	t.clear()
}

// Indicator renders the typing line the view shows: nothing when no
// one types, "<name> is typing..." for exactly one, and a generic line
// for several people in a group. Names are never enumerated.
func (t *Tracker) Indicator(isGroup bool, name func(id string) string) string {
	switch {
	case len(t.order) == 0:
		return ""
	case len(t.order) == 1:
		n := name(t.order[0])
		if n == "" {
			n = "Someone"
		}
		return n + " is typing..."
	case isGroup:
		return "Multiple people are typing..."
	default:
		return ""
	}
}

func (t *Tracker) add(id string) {
	if _, ok := t.users[id]; ok {
		return
	}
	t.users[id] = struct{}{}
	t.order = append(t.order, id)
}

func (t *Tracker) remove(id string) {
	if _, ok := t.users[id]; !ok {
		return
	}
	delete(t.users, id)
	for i, u := range t.order {
		if u == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

func (t *Tracker) clear() {
	t.users = make(map[string]struct{})
	t.order = nil
}
