// Package session is the engine behind one open conversation. It
// seeds the message store and conversation state from the REST
// boundary, joins the conversation's room on the event channel, and
// from then on mutates state exclusively from inbound events. Local
// user actions emit intents and wait for the authoritative echo; they
// never write state directly.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"go-chat-client/internal/api"
	"go-chat-client/internal/channel"
	"go-chat-client/internal/conversation"
	"go-chat-client/internal/event"
	"go-chat-client/internal/logger"
	"go-chat-client/internal/model"
	"go-chat-client/internal/pagination"
	"go-chat-client/internal/store"
	"go-chat-client/internal/typing"
)

const defaultPageLimit = 20

var (
	ErrSendingRestricted = errors.New("session: sending is restricted in this conversation")
	ErrNoConversation    = errors.New("session: no conversation loaded")
)

// DataAPI is the slice of the REST boundary the session consumes.
// *api.Client satisfies it.
type DataAPI interface {
	GetChat(ctx context.Context, chatID string) (*model.Chat, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetChatMessages(ctx context.Context, chatID string, page, limit int) (*api.MessagesPage, error)
	UpdateGroupName(ctx context.Context, chatID, name string) error
	AddMember(ctx context.Context, chatID, memberID string) error
	RemoveMember(ctx context.Context, chatID, memberID string) error
	DeleteChat(ctx context.Context, chatID string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
	UploadFile(ctx context.Context, chatID, senderID, name, contentType string, size int64, r io.Reader) error
	UploadImage(ctx context.Context, chatID, senderID, name, contentType string, size int64, r io.Reader) error
}

// Viewport is the scroll surface the session anchors. Heights are
// content heights in whatever unit the view uses; the session only
// ever works with deltas, never message counts, because messages
// render at variable height. The session invokes these outside its own
// lock, so implementations are free to call back into its accessors.
type Viewport interface {
	ContentHeight() int
	ScrollTo(offset int)
	ScrollToBottom()
}

type Config struct {
	ChatID    string
	UserID    string
	API       DataAPI
	Channel   channel.Channel
	Viewport  Viewport
	PageLimit int
}

// Session serializes every entry point (channel callbacks and user
// actions) behind one mutex, which is the Go rendering of the
// original's single-threaded event loop.
type Session struct {
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	chatID string
	selfID string

	api DataAPI
	ch  channel.Channel
	vp  Viewport

	store  *store.Store
	pager  *pagination.Controller
	typing *typing.Tracker
	conv   *conversation.State

	compose string
	closed  bool
}

// Open loads the conversation, seeds the first history page and joins
// the conversation's room. The returned session is live: channel
// events mutate it until Close.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	limit := cfg.PageLimit
	if limit <= 0 {
		limit = defaultPageLimit
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ctx:    ctx,
		cancel: cancel,
		chatID: cfg.ChatID,
		selfID: cfg.UserID,
		api:    cfg.API,
		ch:     cfg.Channel,
		vp:     cfg.Viewport,
		store:  store.New(),
		pager:  pagination.New(limit),
		typing: typing.New(cfg.UserID),
		conv:   conversation.New(),
	}

	chat, err := s.api.GetChat(ctx, s.chatID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open conversation: %w", err)
	}
	if err := s.conv.Apply(chat); err != nil {
		cancel()
		return nil, fmt.Errorf("open conversation: %w", err)
	}
	s.resolveNames(chat)

	// A failed seed surfaces as an empty view, not as an open error.
	page, err := s.api.GetChatMessages(ctx, s.chatID, 1, limit)
	if err != nil {
		logger.Log.Warn("seed fetch failed", zap.String("chat", s.chatID), zap.Error(err))
	} else {
		s.store.Seed(page.Messages)
		s.pager.Start(page.TotalPages)
	}

	s.ch.On(event.NewMessage, s.handleNewMessage)
	s.ch.On(event.Typing, s.handleTyping)
	s.ch.On(event.StopTyping, s.handleStopTyping)
	s.ch.On(event.ChatUpdated, s.handleChatUpdated)
	s.ch.On(event.AdjustStrict, s.handleAdjustStrict)
	s.ch.On(event.Error, s.handleError)

	if err := s.ch.Emit(event.JoinChat, s.chatID); err != nil {
		logger.Log.Warn("joinChat emit failed", zap.String("chat", s.chatID), zap.Error(err))
	}

	if s.vp != nil {
		s.vp.ScrollToBottom()
	}
	return s, nil
}

// resolveNames fetches display names for the owner and every other
// member; lookup failures degrade to the fallback name.
func (s *Session) resolveNames(chat *model.Chat) {
	for _, id := range chat.Members {
		if id == s.selfID {
			continue
		}
		u, err := s.api.GetUser(s.ctx, id)
		if err != nil {
			logger.Log.Warn("member lookup failed", zap.String("user", id), zap.Error(err))
			continue
		}
		s.conv.SetMemberName(id, u.Name)
	}

	if owner, err := s.api.GetUser(s.ctx, chat.OwnerID); err == nil {
		s.conv.SetOwnerName(owner.Name)
	} else {
		logger.Log.Warn("owner lookup failed", zap.String("user", chat.OwnerID), zap.Error(err))
		s.conv.SetOwnerName("Unknown User")
	}
}

// Close leaves the room, detaches from the channel and resets all
// per-conversation state. Cancelling the context abandons any fetch
// still in flight.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	for _, name := range []string{
		event.NewMessage, event.Typing, event.StopTyping,
		event.ChatUpdated, event.AdjustStrict, event.Error,
	} {
		s.ch.Off(name)
	}

	if err := s.ch.Emit(event.LeaveChat, s.chatID); err != nil {
		logger.Log.Debug("leaveChat emit failed", zap.Error(err))
	}

	s.cancel()
	s.store.Reset()
	s.pager.Reset()
	s.typing.Reset()
	s.conv.Reset()
	s.compose = ""
}

// ---- inbound events ----

func (s *Session) handleNewMessage(data json.RawMessage) {
	var msg model.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		logger.Log.Warn("bad newMessage payload", zap.Error(err))
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	// Notices describe out-of-band state changes only partially, so
	// the conversation record is refetched wholesale.
	if msg.IsNotice() {
		s.refetchChat()
	}
	appended := s.store.Append(msg)
	s.mu.Unlock()

	if appended && s.vp != nil {
		s.vp.ScrollToBottom()
	}
}

func (s *Session) handleTyping(data json.RawMessage) {
	var p event.TypingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Log.Warn("bad typing payload", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.typing.Typing(p.SenderID, s.conv.Chat())
}

func (s *Session) handleStopTyping(data json.RawMessage) {
	var p event.TypingPayload
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Log.Warn("bad stopTyping payload", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.typing.StopTyping(p.SenderID)
}

func (s *Session) handleChatUpdated(data json.RawMessage) {
	var chat *model.Chat
	if err := json.Unmarshal(data, &chat); err != nil {
		logger.Log.Warn("bad chatUpdated payload", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if chat != nil && chat.ID != s.chatID {
		return
	}
	if err := s.conv.Apply(chat); err != nil {
		logger.Log.Warn("rejected chatUpdated", zap.Error(err))
		return
	}
	s.typing.Prune(chat)
	if chat != nil {
		s.resolveMissingNames(chat)
	}
}

func (s *Session) handleAdjustStrict(data json.RawMessage) {
	var p event.StrictPayload
	if err := json.Unmarshal(data, &p); err != nil {
		logger.Log.Warn("bad adjustStrict payload", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.conv.SetStrict(p.IsStrict)
}

func (s *Session) handleError(data json.RawMessage) {
	var msg string
	if err := json.Unmarshal(data, &msg); err != nil {
		msg = string(data)
	}
	logger.Log.Warn("channel error event", zap.String("error", msg))
}

// refetchChat pulls the authoritative conversation record; callers
// hold the lock.
func (s *Session) refetchChat() {
	chat, err := s.api.GetChat(s.ctx, s.chatID)
	if err != nil {
		logger.Log.Warn("chat refetch failed", zap.String("chat", s.chatID), zap.Error(err))
		return
	}
	if err := s.conv.Apply(chat); err != nil {
		logger.Log.Warn("rejected refetched chat", zap.Error(err))
		return
	}
	s.typing.Prune(chat)
	s.resolveMissingNames(chat)
}

func (s *Session) resolveMissingNames(chat *model.Chat) {
	for _, id := range chat.Members {
		if id == s.selfID || s.conv.MemberName(id) != "Unknown User" {
			continue
		}
		u, err := s.api.GetUser(s.ctx, id)
		if err != nil {
			logger.Log.Warn("member lookup failed", zap.String("user", id), zap.Error(err))
			continue
		}
		s.conv.SetMemberName(id, u.Name)
	}
}
