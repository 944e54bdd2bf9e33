package session

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-chat-client/internal/event"
	"go-chat-client/internal/logger"
	"go-chat-client/internal/model"
)

// SendMessage emits a send intent for the compose content. The message
// is not appended locally; it arrives back as a newMessage event. The
// outbound id doubles as the idempotency key the store dedups on.
// Returns ErrSendingRestricted when the access predicate denies the
// actor; the emit is then skipped entirely.
func (s *Session) SendMessage(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(content) == "" {
		return nil
	}
	if !s.conv.CanSend(s.selfID) {
		return ErrSendingRestricted
	}

	err := s.ch.Emit(event.SendMessage, event.SendMessagePayload{
		ID:       uuid.NewString(),
		ChatID:   s.chatID,
		SenderID: s.selfID,
		Content:  content,
	})
	if err != nil {
		return err
	}

	s.compose = ""
	s.emitStopTyping()
	return nil
}

// SetCompose mirrors the compose field and emits typing/stopTyping on
// every empty/non-empty transition.
func (s *Session) SetCompose(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasEmpty := s.compose == ""
	s.compose = text

	switch {
	case wasEmpty && text != "":
		s.emitTyping()
	case !wasEmpty && text == "":
		s.emitStopTyping()
	}
}

func (s *Session) Compose() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.compose
}

func (s *Session) emitTyping() {
	if err := s.ch.Emit(event.Typing, event.TypingPayload{ChatID: s.chatID, SenderID: s.selfID}); err != nil {
		logger.Log.Debug("typing emit failed", zap.Error(err))
	}
}

func (s *Session) emitStopTyping() {
	if err := s.ch.Emit(event.StopTyping, event.TypingPayload{ChatID: s.chatID, SenderID: s.selfID}); err != nil {
		logger.Log.Debug("stopTyping emit failed", zap.Error(err))
	}
}

// LoadOlder loads the next older history page when the viewport sits
// at the top. The scroll anchor is preserved by content-height delta:
// whatever grew above the fold is scrolled past, so the visible
// messages do not move.
func (s *Session) LoadOlder(atTop bool) error {
	var before int
	if s.vp != nil {
		before = s.vp.ContentHeight()
	}

	s.mu.Lock()
	msgs, err := s.pager.LoadOlder(s.ctx, atTop, func(ctx context.Context, page, limit int) ([]model.Message, int, error) {
		p, err := s.api.GetChatMessages(ctx, s.chatID, page, limit)
		if err != nil {
			return nil, 0, err
		}
		return p.Messages, p.TotalPages, nil
	})
	if err != nil {
		s.mu.Unlock()
		logger.Log.Warn("load older page failed", zap.String("chat", s.chatID), zap.Error(err))
		return err
	}
	if len(msgs) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.store.Prepend(msgs)
	s.mu.Unlock()

	if s.vp != nil {
		s.vp.ScrollTo(s.vp.ContentHeight() - before)
	}
	return nil
}

// Rename issues the group-name change and the matching notice intent.
// The new name shows up only via the resulting chatUpdated or notice
// refetch.
func (s *Session) Rename(newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.conv.Chat()
	if chat == nil {
		return ErrNoConversation
	}
	newName = strings.TrimSpace(newName)
	if newName == "" || newName == chat.GroupName {
		return nil
	}

	if err := s.api.UpdateGroupName(s.ctx, s.chatID, newName); err != nil {
		return err
	}
	return s.ch.Emit(event.NotiUpdateGroupName, event.UpdateGroupNamePayload{
		ChatID:    s.chatID,
		SenderID:  s.selfID,
		GroupName: newName,
	})
}

// ToggleStrict emits the strict-mode intent. The new value arrives on
// the adjustStrict event; nothing changes locally until then.
func (s *Session) ToggleStrict() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ch.Emit(event.AdjustStrict, s.chatID)
}

// AddMember adds a user to the group and announces it. The membership
// list updates on the resulting notice/chatUpdated, not here.
func (s *Session) AddMember(memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.conv.Chat()
	if chat == nil {
		return ErrNoConversation
	}
	if err := s.api.AddMember(s.ctx, s.chatID, memberID); err != nil {
		return err
	}
	return s.ch.Emit(event.NotiAdjustMember, event.AdjustMemberPayload{
		ChatID:   s.chatID,
		SenderID: chat.OwnerID,
		MemberID: memberID,
		IsAdd:    true,
	})
}

// RemoveMember removes a group member. Removing the counterpart of a
// direct chat degenerates to removing the contact, which also tears
// the conversation down.
func (s *Session) RemoveMember(memberID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.conv.Chat()
	if chat == nil {
		return ErrNoConversation
	}
	if !chat.IsGroup && memberID == chat.OtherMember(s.selfID) {
		return s.removeContact(chat)
	}

	if err := s.api.RemoveMember(s.ctx, s.chatID, memberID); err != nil {
		return err
	}
	return s.ch.Emit(event.NotiAdjustMember, event.AdjustMemberPayload{
		ChatID:   s.chatID,
		SenderID: chat.OwnerID,
		MemberID: memberID,
		IsAdd:    false,
	})
}

// Leave removes the local actor from the group.
func (s *Session) Leave() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.conv.Chat()
	if chat == nil {
		return ErrNoConversation
	}
	if err := s.api.RemoveMember(s.ctx, s.chatID, s.selfID); err != nil {
		return err
	}
	return s.ch.Emit(event.NotiAdjustMember, event.AdjustMemberPayload{
		ChatID:   s.chatID,
		SenderID: chat.OwnerID,
		MemberID: s.selfID,
		IsAdd:    false,
	})
}

// Delete deletes the conversation outright (owner action; the server
// is the final authority on whether it is honored).
func (s *Session) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.api.DeleteChat(s.ctx, s.chatID)
}

// RemoveContact unfriends the direct-chat counterpart and deletes the
// conversation.
func (s *Session) RemoveContact() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.conv.Chat()
	if chat == nil {
		return ErrNoConversation
	}
	return s.removeContact(chat)
}

func (s *Session) removeContact(chat *model.Chat) error {
	other := chat.OtherMember(s.selfID)
	if other == "" {
		return ErrNoConversation
	}
	if err := s.api.RemoveFriend(s.ctx, s.selfID, other); err != nil {
		return err
	}
	return s.api.DeleteChat(s.ctx, s.chatID)
}

// UploadFile validates and sends a document attachment; the resulting
// file message comes back over the channel.
func (s *Session) UploadFile(name, contentType string, size int64, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.conv.CanSend(s.selfID) {
		return ErrSendingRestricted
	}
	return s.api.UploadFile(s.ctx, s.chatID, s.selfID, name, contentType, size, r)
}

// UploadImage validates and sends an image attachment.
func (s *Session) UploadImage(name, contentType string, size int64, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.conv.CanSend(s.selfID) {
		return ErrSendingRestricted
	}
	return s.api.UploadImage(s.ctx, s.chatID, s.selfID, name, contentType, size, r)
}
