// Package api is the data-fetch boundary to the chat service's REST
// API. It only fetches and issues intents; conversation state is never
// mutated from here.
package api

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"

	"go-chat-client/internal/model"
)

// MessagesPage is one backward page of history. Page 1 holds the most
// recent messages.
type MessagesPage struct {
	Messages   []model.Message `json:"messages"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
}

type Client struct {
	http *resty.Client
}

func New(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{http: c}
}

func (c *Client) GetChatMessages(ctx context.Context, chatID string, page, limit int) (*MessagesPage, error) {
	var out MessagesPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&out).
		Get("/api/v1/chat/" + chatID + "/messages")
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get messages: status %d", resp.StatusCode())
	}
	return &out, nil
}

func (c *Client) GetChat(ctx context.Context, chatID string) (*model.Chat, error) {
	var out model.Chat
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v1/chat/" + chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get chat: status %d", resp.StatusCode())
	}
	return &out, nil
}

func (c *Client) GetUserChats(ctx context.Context, userID string) ([]model.Chat, error) {
	var out []model.Chat
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v1/chat/user/" + userID)
	if err != nil {
		return nil, fmt.Errorf("get user chats: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get user chats: status %d", resp.StatusCode())
	}
	return out, nil
}

func (c *Client) CreateChat(ctx context.Context, userID string, members []string, isGroup bool, groupName string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"members":   members,
			"is_group":  isGroup,
			"groupName": groupName,
		}).
		Post("/api/v1/chat/" + userID)
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("create chat: status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/api/v1/chat/" + chatID)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete chat: status %d", resp.StatusCode())
	}
	return nil
}

// SetStrict toggles the strict flag server-side. The authoritative
// value comes back on the adjustStrict event, not from this call.
func (c *Client) SetStrict(ctx context.Context, chatID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Patch("/api/v1/chat/" + chatID)
	if err != nil {
		return fmt.Errorf("set strict: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("set strict: status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) UpdateGroupName(ctx context.Context, chatID, name string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"name": name}).
		Patch("/api/v1/chat/" + chatID + "/update-name")
	if err != nil {
		return fmt.Errorf("update group name: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("update group name: status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) AddMember(ctx context.Context, chatID, memberID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("memberId", memberID).
		Post("/api/v1/chat/" + chatID + "/add-member")
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("add member: status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) RemoveMember(ctx context.Context, chatID, memberID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("memberId", memberID).
		Post("/api/v1/chat/" + chatID + "/remove-member")
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("remove member: status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	var out model.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/api/v1/user/" + id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get user: status %d", resp.StatusCode())
	}
	return &out, nil
}

func (c *Client) SearchFriends(ctx context.Context, userID, searchText string) ([]model.User, error) {
	var out []model.User
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("searchText", searchText).
		SetResult(&out).
		Get("/api/v1/user/" + userID + "/friends")
	if err != nil {
		return nil, fmt.Errorf("search friends: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search friends: status %d", resp.StatusCode())
	}
	return out, nil
}

func (c *Client) AddFriend(ctx context.Context, userID, friendID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"friend_id": friendID}).
		Patch("/api/v1/user/" + userID + "/friend")
	if err != nil {
		return fmt.Errorf("add friend: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("add friend: status %d", resp.StatusCode())
	}
	return nil
}

func (c *Client) RemoveFriend(ctx context.Context, userID, friendID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"friend_id": friendID}).
		Delete("/api/v1/user/" + userID + "/friend")
	if err != nil {
		return fmt.Errorf("remove friend: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("remove friend: status %d", resp.StatusCode())
	}
	return nil
}

// UpdateUserStatus flips the user's online flag; called on logout.
func (c *Client) UpdateUserStatus(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Post("/api/v1/user/" + id + "/status")
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("update user status: status %d", resp.StatusCode())
	}
	return nil
}
