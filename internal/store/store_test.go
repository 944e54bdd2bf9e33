package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-chat-client/internal/model"
)

func msg(id string, at time.Time) model.Message {
	return model.Message{
		ID:        id,
		SenderID:  "u1",
		Content:   "content " + id,
		Kind:      model.KindNormal,
		CreatedAt: at,
	}
}

func ids(msgs []model.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestAppendDeduplicates(t *testing.T) {
	s := New()
	base := time.Now()

	assert.True(t, s.Append(msg("a", base)))
	assert.True(t, s.Append(msg("b", base.Add(time.Second))))

	// Redelivery by the channel must be a no-op.
	assert.False(t, s.Append(msg("a", base)))
	assert.False(t, s.Append(msg("b", base.Add(time.Minute))))

	assert.Equal(t, []string{"a", "b"}, ids(s.Messages()))
	assert.Equal(t, 2, s.Len())
}

func TestAppendKeepsArrivalOrderOnTies(t *testing.T) {
	s := New()
	at := time.Now()

	s.Seed([]model.Message{msg("a", at)})
	s.Append(msg("b", at))
	s.Append(msg("c", at))

	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Messages()))
}

func TestSeedSortsAndReplaces(t *testing.T) {
	s := New()
	base := time.Now()

	s.Append(msg("old", base))
	s.Seed([]model.Message{
		msg("c", base.Add(2*time.Second)),
		msg("a", base),
		msg("b", base.Add(time.Second)),
	})

	assert.Equal(t, []string{"a", "b", "c"}, ids(s.Messages()))
	assert.False(t, s.Contains("old"))
}

func TestPrependSkipsKnownIDsAndKeepsOrder(t *testing.T) {
	s := New()
	base := time.Now()

	s.Seed([]model.Message{msg("d", base.Add(3 * time.Second)), msg("e", base.Add(4 * time.Second))})
	inserted := s.Prepend([]model.Message{
		msg("a", base),
		msg("d", base.Add(3 * time.Second)), // duplicate from page overlap
		msg("b", base.Add(time.Second)),
	})

	assert.Equal(t, 2, inserted)
	assert.Equal(t, []string{"a", "b", "d", "e"}, ids(s.Messages()))
}

func TestPrependThenAppendPreservesRelativeOrder(t *testing.T) {
	s := New()
	base := time.Now()

	s.Seed([]model.Message{msg("m1", base.Add(10 * time.Second)), msg("m2", base.Add(11 * time.Second))})
	s.Prepend([]model.Message{msg("p1", base), msg("p2", base.Add(time.Second))})
	s.Append(msg("l1", base.Add(20*time.Second)))
	s.Append(msg("l2", base.Add(21*time.Second)))

	assert.Equal(t, []string{"p1", "p2", "m1", "m2", "l1", "l2"}, ids(s.Messages()))
}

func TestTombstonesStayInSequence(t *testing.T) {
	s := New()
	base := time.Now()
	deleted := base.Add(time.Hour)

	m := msg("gone", base.Add(time.Second))
	m.DeletedAt = &deleted

	s.Seed([]model.Message{msg("a", base), m, msg("b", base.Add(2 * time.Second))})

	got := s.Messages()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "gone", "b"}, ids(got))
	assert.True(t, got[1].Deleted())
}

func TestResetClears(t *testing.T) {
	s := New()
	s.Append(msg("a", time.Now()))
	s.Reset()

	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("a"))
	assert.True(t, s.Append(msg("a", time.Now())))
}
