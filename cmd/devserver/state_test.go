package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessages(s *state, chatID string, n int) {
	for i := 1; i <= n; i++ {
		s.appendMessage(chatID, "u1", fmt.Sprintf("msg-%d", i), "normal")
	}
}

func TestPageWalksBackward(t *testing.T) {
	s := newState()
	seedMessages(s, "c1", 5)

	// Page 1 is the newest slice, ascending within the page.
	msgs, total, totalPages := s.page("c1", 1, 2)
	assert.Equal(t, 5, total)
	assert.Equal(t, 3, totalPages)
	require.Len(t, msgs, 2)
	assert.Equal(t, "msg-4", msgs[0].Content)
	assert.Equal(t, "msg-5", msgs[1].Content)

	msgs, _, _ = s.page("c1", 2, 2)
	require.Len(t, msgs, 2)
	assert.Equal(t, "msg-2", msgs[0].Content)
	assert.Equal(t, "msg-3", msgs[1].Content)

	// The oldest page is short.
	msgs, _, _ = s.page("c1", 3, 2)
	require.Len(t, msgs, 1)
	assert.Equal(t, "msg-1", msgs[0].Content)

	// Past the end there is nothing left.
	msgs, _, _ = s.page("c1", 4, 2)
	assert.Empty(t, msgs)
}

func TestPageEmptyHistory(t *testing.T) {
	s := newState()
	msgs, total, totalPages := s.page("c1", 1, 20)
	assert.Empty(t, msgs)
	assert.Zero(t, total)
	assert.Equal(t, 1, totalPages, "an empty history still reports one page")
}

func TestAppendWithIDDedups(t *testing.T) {
	s := newState()

	first, fresh := s.appendWithID("c1", "m1", "u1", "hello")
	assert.True(t, fresh)

	again, fresh := s.appendWithID("c1", "m1", "u1", "hello")
	assert.False(t, fresh)
	assert.Equal(t, first.CreatedAt, again.CreatedAt)

	msgs, total, _ := s.page("c1", 1, 20)
	assert.Equal(t, 1, total)
	assert.Len(t, msgs, 1)
}

func TestAdjustMemberAndFriend(t *testing.T) {
	s := newState()
	u := s.createUser("Uma", "uma@example.com")
	c := s.createChat(u.ID, []string{u.ID, "u2"}, true, "dev")

	got, ok := s.adjustMember(c.ID, "u3", true)
	require.True(t, ok)
	assert.Equal(t, []string{u.ID, "u2", "u3"}, got.Members)

	// Adding twice is a no-op.
	got, _ = s.adjustMember(c.ID, "u3", true)
	assert.Len(t, got.Members, 3)

	got, _ = s.adjustMember(c.ID, "u2", false)
	assert.Equal(t, []string{u.ID, "u3"}, got.Members)

	require.True(t, s.adjustFriend(u.ID, "u2", true))
	require.True(t, s.adjustFriend(u.ID, "u2", true))
	assert.Equal(t, []string{"u2"}, s.user(u.ID).FriendIDs)

	require.True(t, s.adjustFriend(u.ID, "u2", false))
	assert.Empty(t, s.user(u.ID).FriendIDs)
}

func TestDeleteChatDropsHistory(t *testing.T) {
	s := newState()
	c := s.createChat("u1", []string{"u1", "u2"}, false, "")
	seedMessages(s, c.ID, 3)

	require.True(t, s.deleteChat(c.ID))
	assert.False(t, s.deleteChat(c.ID))

	_, total, _ := s.page(c.ID, 1, 20)
	assert.Zero(t, total)
	assert.Nil(t, s.chat(c.ID))
}
