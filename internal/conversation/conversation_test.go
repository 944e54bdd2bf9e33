package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-chat-client/internal/model"
)

func group(strict bool) *model.Chat {
	return &model.Chat{
		ID:        "g1",
		OwnerID:   "owner",
		IsGroup:   true,
		Members:   []string{"owner", "u1", "u2"},
		GroupName: "dev",
		IsStrict:  strict,
	}
}

func TestApplyValidatesInvariants(t *testing.T) {
	s := New()

	err := s.Apply(&model.Chat{ID: "g1", OwnerID: "ghost", IsGroup: true, Members: []string{"u1", "u2"}})
	assert.ErrorIs(t, err, ErrOwnerNotMember)
	assert.Nil(t, s.Chat())

	err = s.Apply(&model.Chat{ID: "d1", OwnerID: "u1", Members: []string{"u1", "u2", "u3"}})
	assert.ErrorIs(t, err, ErrDirectMembers)

	require.NoError(t, s.Apply(group(false)))
	assert.Equal(t, "g1", s.Chat().ID)
}

func TestApplyNilClears(t *testing.T) {
	s := New()
	require.NoError(t, s.Apply(group(false)))

	require.NoError(t, s.Apply(nil))
	assert.Nil(t, s.Chat())
	assert.False(t, s.CanSend("owner"))
}

func TestCanSend(t *testing.T) {
	tests := []struct {
		name   string
		chat   *model.Chat
		userID string
		want   bool
	}{
		{"group member, not strict", group(false), "u1", true},
		{"group non-member", group(false), "stranger", false},
		{"strict group, owner", group(true), "owner", true},
		{"strict group, member", group(true), "u1", false},
		{
			"strict flag on direct chat is inert",
			&model.Chat{ID: "d1", OwnerID: "u1", Members: []string{"u1", "u2"}, IsStrict: true},
			"u2",
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			require.NoError(t, s.Apply(tt.chat))
			assert.Equal(t, tt.want, s.CanSend(tt.userID))
		})
	}
}

func TestStrictToggleTakesEffectImmediately(t *testing.T) {
	s := New()
	require.NoError(t, s.Apply(group(false)))
	assert.True(t, s.CanSend("u1"))

	s.SetStrict(true)
	assert.False(t, s.CanSend("u1"))
	assert.True(t, s.CanSend("owner"))

	s.SetStrict(false)
	assert.True(t, s.CanSend("u1"))
}

func TestMemberNameFallback(t *testing.T) {
	s := New()
	s.SetMemberName("u1", "Uma")

	assert.Equal(t, "Uma", s.MemberName("u1"))
	assert.Equal(t, "Unknown User", s.MemberName("nobody"))
}

func TestReset(t *testing.T) {
	s := New()
	require.NoError(t, s.Apply(group(true)))
	s.SetMemberName("u1", "Uma")
	s.SetOwnerName("Boss")

	s.Reset()
	assert.Nil(t, s.Chat())
	assert.Equal(t, "Unknown User", s.MemberName("u1"))
	assert.Empty(t, s.OwnerName())
}
