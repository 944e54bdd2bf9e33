package session

import "go-chat-client/internal/model"

// Read accessors for the view layer. They snapshot under the session
// lock; the view never holds references into live state.

func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Messages()
}

// Chat returns a copy of the conversation record, or nil when it has
// been cleared remotely.
func (s *Session) Chat() *model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.conv.Chat()
	if chat == nil {
		return nil
	}
	cp := *chat
	cp.Members = append([]string(nil), chat.Members...)
	return &cp
}

// CanSend evaluates the access predicate for the local actor. It is
// computed fresh every call so strictness changes take effect
// immediately.
func (s *Session) CanSend() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.CanSend(s.selfID)
}

// TypingIndicator returns the line to render under the history, or ""
// when nobody is typing.
func (s *Session) TypingIndicator() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.conv.Chat()
	if chat == nil {
		return ""
	}
	return s.typing.Indicator(chat.IsGroup, s.conv.MemberName)
}

// TypingUsers exposes the raw typing set in arrival order.
func (s *Session) TypingUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing.Users()
}

func (s *Session) MemberName(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.MemberName(id)
}

func (s *Session) OwnerName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.OwnerName()
}

func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pager.HasMore()
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pager.Loading()
}
