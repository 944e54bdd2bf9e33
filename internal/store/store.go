// Package store keeps the ordered, deduplicated message history of a
// single open conversation. It merges paginated fetches (Seed,
// Prepend) with live-pushed messages (Append); message ids are the
// only dedup key, so redelivery by the channel is harmless.
package store

import (
	"sort"

	"go-chat-client/internal/model"
)

type Store struct {
	msgs []model.Message
	ids  map[string]struct{}
}

func New() *Store {
	return &Store{ids: make(map[string]struct{})}
}

// Seed replaces the contents with the initial fetch result, ordered by
// CreatedAt ascending. The sort is stable so equal timestamps keep the
// server's order.
func (s *Store) Seed(msgs []model.Message) {
	s.msgs = make([]model.Message, 0, len(msgs))
	s.ids = make(map[string]struct{}, len(msgs))

	for _, m := range msgs {
		if _, ok := s.ids[m.ID]; ok {
			continue
		}
		s.ids[m.ID] = struct{}{}
		s.msgs = append(s.msgs, m)
	}

	sort.SliceStable(s.msgs, func(i, j int) bool {
		return s.msgs[i].CreatedAt.Before(s.msgs[j].CreatedAt)
	})
}

// Prepend inserts an older page at the head, keeping the page's own
// order and skipping ids already present. It returns how many messages
// were actually inserted.
func (s *Store) Prepend(older []model.Message) int {
	fresh := make([]model.Message, 0, len(older))
	for _, m := range older {
		if _, ok := s.ids[m.ID]; ok {
			continue
		}
		s.ids[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}

	if len(fresh) > 0 {
		s.msgs = append(fresh, s.msgs...)
	}
	return len(fresh)
}

// Append adds a live-pushed message at the tail. It reports whether
// the message was new; duplicates are dropped, which makes redelivery
// by the channel idempotent. Live appends keep arrival order even when
// CreatedAt ties an existing entry.
func (s *Store) Append(m model.Message) bool {
	if _, ok := s.ids[m.ID]; ok {
		return false
	}
	s.ids[m.ID] = struct{}{}
	s.msgs = append(s.msgs, m)
	return true
}

// Messages returns a copy of the current sequence. Tombstones are
// included; suppressing their content is the view's job.
func (s *Store) Messages() []model.Message {
	out := make([]model.Message, len(s.msgs))
	copy(out, s.msgs)
	return out
}

func (s *Store) Len() int {
	return len(s.msgs)
}

func (s *Store) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Reset clears the store; called when the conversation is closed or
// switched.
func (s *Store) Reset() {
	s.msgs = nil
	s.ids = make(map[string]struct{})
}
