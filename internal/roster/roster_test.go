package roster

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-chat-client/internal/channel"
	"go-chat-client/internal/event"
	"go-chat-client/internal/model"
)

type fakeAPI struct {
	chats []model.Chat
	users map[string]*model.User
	err   error
}

func (a *fakeAPI) GetUserChats(context.Context, string) ([]model.Chat, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.chats, nil
}

func (a *fakeAPI) GetUser(_ context.Context, id string) (*model.User, error) {
	if u, ok := a.users[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

type fakeChannel struct {
	handlers map[string]channel.Handler
	emits    []string
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{handlers: make(map[string]channel.Handler)}
}

func (c *fakeChannel) Emit(name string, _ any) error {
	c.emits = append(c.emits, name)
	return nil
}

func (c *fakeChannel) On(name string, h channel.Handler) { c.handlers[name] = h }
func (c *fakeChannel) Off(name string)                   { delete(c.handlers, name) }
func (c *fakeChannel) Close() error                      { return nil }

func (c *fakeChannel) dispatch(t *testing.T, name string, payload any) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	if h := c.handlers[name]; h != nil {
		h(data)
	}
}

func direct(id, other string) model.Chat {
	return model.Chat{ID: id, OwnerID: "me", Members: []string{"me", other}}
}

func fixtures() *fakeAPI {
	return &fakeAPI{
		chats: []model.Chat{
			direct("d1", "u2"),
			{ID: "g1", OwnerID: "me", IsGroup: true, Members: []string{"me", "u2", "u3"}, GroupName: "dev"},
		},
		users: map[string]*model.User{
			"u2": {ID: "u2", Name: "Uma"},
		},
	}
}

func TestOpenSeedsAndSubscribes(t *testing.T) {
	ch := newFakeChannel()
	r, err := Open(context.Background(), "me", fixtures(), ch)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.Direct(), 1)
	require.Len(t, r.Groups(), 1)
	assert.Equal(t, []string{event.SubscribeToUser}, ch.emits)
	assert.Contains(t, ch.handlers, event.ChatCreated)
}

func TestOpenFailsWhenFetchFails(t *testing.T) {
	a := fixtures()
	a.err = errors.New("boom")
	_, err := Open(context.Background(), "me", a, newFakeChannel())
	assert.Error(t, err)
}

func TestTitles(t *testing.T) {
	ch := newFakeChannel()
	r, err := Open(context.Background(), "me", fixtures(), ch)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "Uma", r.Title(direct("d1", "u2")))
	assert.Equal(t, "dev", r.Title(r.Groups()[0]))
	assert.Equal(t, "Unknown User", r.Title(direct("d9", "stranger")))
}

func TestChatCreatedInsertsAndReplaces(t *testing.T) {
	a := fixtures()
	a.users["u4"] = &model.User{ID: "u4", Name: "Niko"}
	ch := newFakeChannel()
	r, err := Open(context.Background(), "me", a, ch)
	require.NoError(t, err)
	defer r.Close()

	ch.dispatch(t, event.ChatCreated, direct("d2", "u4"))
	require.Len(t, r.Direct(), 2)
	assert.Equal(t, "Niko", r.Title(direct("d2", "u4")))

	// Same id again replaces in place, no duplicate entry.
	renamed := model.Chat{ID: "g1", OwnerID: "me", IsGroup: true, Members: []string{"me", "u2"}, GroupName: "ops"}
	ch.dispatch(t, event.ChatCreated, renamed)
	groups := r.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "ops", groups[0].GroupName)
}

func TestCloseDetaches(t *testing.T) {
	ch := newFakeChannel()
	r, err := Open(context.Background(), "me", fixtures(), ch)
	require.NoError(t, err)

	r.Close()
	assert.NotContains(t, ch.handlers, event.ChatCreated)
}
