package main

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-chat-client/internal/model"
)

// state is the in-memory backing store. The dev server keeps nothing
// across restarts on purpose.
type state struct {
	mu       sync.Mutex
	users    map[string]*model.User
	chats    map[string]*model.Chat
	messages map[string][]model.Message // ascending by CreatedAt
}

func newState() *state {
	return &state{
		users:    make(map[string]*model.User),
		chats:    make(map[string]*model.Chat),
		messages: make(map[string][]model.Message),
	}
}

func (s *state) userByEmail(email string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (s *state) createUser(name, email string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: uuid.NewString(), Name: name, Email: email, IsOnline: true}
	s.users[u.ID] = u
	return u
}

func (s *state) user(id string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *state) adjustFriend(userID, friendID string, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false
	}

	if add {
		for _, f := range u.FriendIDs {
			if f == friendID {
				return true
			}
		}
		u.FriendIDs = append(u.FriendIDs, friendID)
		return true
	}

	for i, f := range u.FriendIDs {
		if f == friendID {
			u.FriendIDs = append(u.FriendIDs[:i], u.FriendIDs[i+1:]...)
			break
		}
	}
	return true
}

func (s *state) toggleStatus(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false
	}
	u.IsOnline = !u.IsOnline
	return true
}

func (s *state) chat(id string) *model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chats[id]; ok {
		cp := *c
		cp.Members = append([]string(nil), c.Members...)
		return &cp
	}
	return nil
}

func (s *state) userChats(userID string) []model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Chat
	for _, c := range s.chats {
		if c.HasMember(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *state) createChat(ownerID string, members []string, isGroup bool, groupName string) *model.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Chat{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		IsGroup:   isGroup,
		Members:   members,
		GroupName: groupName,
	}
	s.chats[c.ID] = c
	return c
}

func (s *state) deleteChat(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return false
	}
	delete(s.chats, id)
	delete(s.messages, id)
	return true
}

func (s *state) toggleStrict(id string) (*model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return nil, false
	}
	c.IsStrict = !c.IsStrict
	cp := *c
	return &cp, true
}

func (s *state) renameChat(id, name string) (*model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[id]
	if !ok {
		return nil, false
	}
	c.GroupName = name
	cp := *c
	return &cp, true
}

func (s *state) adjustMember(chatID, memberID string, add bool) (*model.Chat, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return nil, false
	}

	if add {
		if !c.HasMember(memberID) {
			c.Members = append(c.Members, memberID)
		}
	} else {
		for i, m := range c.Members {
			if m == memberID {
				c.Members = append(c.Members[:i], c.Members[i+1:]...)
				break
			}
		}
	}
	cp := *c
	cp.Members = append([]string(nil), c.Members...)
	return &cp, true
}

func (s *state) appendMessage(chatID, senderID, content, kind string) model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := model.Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Content:   content,
		Kind:      kind,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[chatID] = append(s.messages[chatID], m)
	return m
}

// appendWithID stores a message under the producer's idempotency key;
// a duplicate id is dropped and reported.
func (s *state) appendWithID(chatID, id, senderID, content string) (model.Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages[chatID] {
		if m.ID == id {
			return m, false
		}
	}
	m := model.Message{
		ID:        id,
		SenderID:  senderID,
		Content:   content,
		Kind:      model.KindNormal,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[chatID] = append(s.messages[chatID], m)
	return m, true
}

// page returns one backward history page: page 1 holds the newest
// `limit` messages, ascending within the page.
func (s *state) page(chatID string, page, limit int) ([]model.Message, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.messages[chatID]
	total := len(all)
	if limit <= 0 {
		limit = 20
	}
	totalPages := (total + limit - 1) / limit
	if totalPages == 0 {
		totalPages = 1
	}

	hi := total - (page-1)*limit
	lo := hi - limit
	if hi < 0 {
		hi = 0
	}
	if lo < 0 {
		lo = 0
	}

	out := make([]model.Message, hi-lo)
	copy(out, all[lo:hi])
	return out, total, totalPages
}
