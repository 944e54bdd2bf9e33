// Package conversation owns the metadata of the open conversation:
// membership, ownership, group name and strict mode. Local user
// actions never write here; the state changes only when the channel
// delivers a chatUpdated or adjustStrict event, or when a notice
// triggers a refetch.
package conversation

import (
	"errors"
	"fmt"

	"go-chat-client/internal/model"
)

var (
	ErrOwnerNotMember = errors.New("conversation: owner is not a member")
	ErrDirectMembers  = errors.New("conversation: direct chat must have exactly 2 members")
)

type State struct {
	chat      *model.Chat
	names     map[string]string
	ownerName string
}

func New() *State {
	return &State{names: make(map[string]string)}
}

// Apply replaces the conversation with an authoritative record after
// validating its invariants. A nil chat clears the state (the
// conversation was deleted remotely).
func (s *State) Apply(c *model.Chat) error {
	if c == nil {
		s.chat = nil
		return nil
	}
	if err := validate(c); err != nil {
		return err
	}
	s.chat = c
	return nil
}

func validate(c *model.Chat) error {
	if !c.HasMember(c.OwnerID) {
		return fmt.Errorf("%w: owner %s", ErrOwnerNotMember, c.OwnerID)
	}
	if !c.IsGroup && len(c.Members) != 2 {
		return fmt.Errorf("%w: got %d", ErrDirectMembers, len(c.Members))
	}
	return nil
}

// SetStrict applies a remote strictness change.
func (s *State) SetStrict(v bool) {
	if s.chat != nil {
		s.chat.IsStrict = v
	}
}

// CanSend is the access-control predicate for ordinary messages. It is
// evaluated fresh on every call, never cached, so a strictness change
// takes effect on the next send attempt.
func (s *State) CanSend(userID string) bool {
	if s.chat == nil || !s.chat.HasMember(userID) {
		return false
	}
	if s.chat.IsGroup && s.chat.IsStrict && s.chat.OwnerID != userID {
		return false
	}
	return true
}

// Chat returns the current record, or nil when the conversation has
// been cleared.
func (s *State) Chat() *model.Chat {
	return s.chat
}

func (s *State) SetMemberName(id, name string) {
	s.names[id] = name
}

// MemberName resolves a member's display name; unknown ids fall back
// like the UI does.
func (s *State) MemberName(id string) string {
	if n, ok := s.names[id]; ok {
		return n
	}
	return "Unknown User"
}

func (s *State) SetOwnerName(name string) { s.ownerName = name }
func (s *State) OwnerName() string        { return s.ownerName }

func (s *State) Reset() {
	s.chat = nil
	s.names = make(map[string]string)
	s.ownerName = ""
}
