// Package roster maintains the user's chat list: seeded by one fetch,
// then kept current by chatCreated events on the user's own
// subscription room.
package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"go-chat-client/internal/channel"
	"go-chat-client/internal/event"
	"go-chat-client/internal/logger"
	"go-chat-client/internal/model"
)

// DataAPI is the slice of the REST boundary the roster needs.
type DataAPI interface {
	GetUserChats(ctx context.Context, userID string) ([]model.Chat, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
}

type Roster struct {
	mu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	selfID string
	api    DataAPI
	ch     channel.Channel

	chats []model.Chat
	names map[string]string
}

// Open fetches the chat list, resolves counterpart names for direct
// chats and subscribes to the user's room for chatCreated pushes.
func Open(ctx context.Context, selfID string, a DataAPI, ch channel.Channel) (*Roster, error) {
	ctx, cancel := context.WithCancel(ctx)

	chats, err := a.GetUserChats(ctx, selfID)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open roster: %w", err)
	}

	r := &Roster{
		ctx:    ctx,
		cancel: cancel,
		selfID: selfID,
		api:    a,
		ch:     ch,
		chats:  chats,
		names:  make(map[string]string),
	}

	for _, c := range chats {
		if !c.IsGroup {
			r.resolveName(c.OtherMember(selfID))
		}
	}

	ch.On(event.ChatCreated, r.handleChatCreated)
	if err := ch.Emit(event.SubscribeToUser, selfID); err != nil {
		logger.Log.Warn("subscribeToUser emit failed", zap.Error(err))
	}
	return r, nil
}

func (r *Roster) Close() {
	r.ch.Off(event.ChatCreated)
	r.cancel()
}

// handleChatCreated inserts a new chat or replaces an existing one
// with the same id.
func (r *Roster) handleChatCreated(data json.RawMessage) {
	var chat model.Chat
	if err := json.Unmarshal(data, &chat); err != nil {
		logger.Log.Warn("bad chatCreated payload", zap.Error(err))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, c := range r.chats {
		if c.ID == chat.ID {
			r.chats[i] = chat
			return
		}
	}
	r.chats = append(r.chats, chat)

	if !chat.IsGroup {
		r.resolveName(chat.OtherMember(r.selfID))
	}
}

func (r *Roster) resolveName(id string) {
	if id == "" {
		return
	}
	if _, ok := r.names[id]; ok {
		return
	}
	u, err := r.api.GetUser(r.ctx, id)
	if err != nil {
		logger.Log.Warn("friend lookup failed", zap.String("user", id), zap.Error(err))
		r.names[id] = "Unknown User"
		return
	}
	r.names[id] = u.Name
}

// Direct returns the one-to-one chats.
func (r *Roster) Direct() []model.Chat {
	return r.filter(false)
}

// Groups returns the group chats.
func (r *Roster) Groups() []model.Chat {
	return r.filter(true)
}

func (r *Roster) filter(group bool) []model.Chat {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.Chat
	for _, c := range r.chats {
		if c.IsGroup == group {
			out = append(out, c)
		}
	}
	return out
}

// Title returns what the list shows for a chat: the group name, or the
// counterpart's display name for a direct chat.
func (r *Roster) Title(c model.Chat) string {
	if c.IsGroup {
		return c.GroupName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.names[c.OtherMember(r.selfID)]; ok {
		return n
	}
	return "Unknown User"
}
