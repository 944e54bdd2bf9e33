package typing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"go-chat-client/internal/model"
)

var directChat = &model.Chat{
	ID:      "c1",
	OwnerID: "A",
	IsGroup: false,
	Members: []string{"A", "B"},
}

var groupChat = &model.Chat{
	ID:        "g1",
	OwnerID:   "A",
	IsGroup:   true,
	Members:   []string{"A", "B", "C"},
	GroupName: "dev",
}

func TestDirectChatReplacesSet(t *testing.T) {
	tr := New("A")

	tr.Typing("B", directChat)
	assert.Equal(t, []string{"B"}, tr.Users())

	// A later sender replaces the whole set, guarding against a stale
	// entry from a prior counterpart.
	tr.Typing("C", directChat)
	assert.Equal(t, []string{"C"}, tr.Users())
}

func TestOwnEventsIgnored(t *testing.T) {
	tr := New("A")
	tr.Typing("A", directChat)
	tr.Typing("A", groupChat)
	assert.Zero(t, tr.Count())
}

func TestGroupAccumulatesAndStops(t *testing.T) {
	tr := New("D")

	tr.Typing("A", groupChat)
	tr.Typing("B", groupChat)
	tr.Typing("A", groupChat) // repeat, no duplicate
	assert.Equal(t, []string{"A", "B"}, tr.Users())

	tr.StopTyping("A")
	assert.Equal(t, []string{"B"}, tr.Users())

	tr.StopTyping("A") // already gone
	assert.Equal(t, []string{"B"}, tr.Users())
}

func TestPruneDropsDepartedMembers(t *testing.T) {
	tr := New("D")
	tr.Typing("A", groupChat)
	tr.Typing("B", groupChat)

	shrunk := &model.Chat{ID: "g1", OwnerID: "A", IsGroup: true, Members: []string{"A", "C", "D"}}
	tr.Prune(shrunk)
	assert.Equal(t, []string{"A"}, tr.Users())

	tr.Prune(nil)
	assert.Zero(t, tr.Count())
}

func TestIndicator(t *testing.T) {
	names := func(id string) string {
		if id == "B" {
			return "Bea"
		}
		return ""
	}

	tr := New("A")
	assert.Equal(t, "", tr.Indicator(true, names))

	tr.Typing("B", groupChat)
	assert.Equal(t, "Bea is typing...", tr.Indicator(true, names))

	tr.Typing("C", groupChat)
	// Never enumerates names with several typers.
	assert.Equal(t, "Multiple people are typing...", tr.Indicator(true, names))
}

func TestIndicatorFallbackName(t *testing.T) {
	tr := New("A")
	tr.Typing("B", directChat)
	assert.Equal(t, "Someone is typing...", tr.Indicator(false, func(string) string { return "" }))
}
