package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"go-chat-client/internal/event"
	"go-chat-client/internal/logger"
	"go-chat-client/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dev harness, any origin is fine.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// client is the middleman between one websocket connection and the hub.
type client struct {
	srv  *server
	conn *websocket.Conn
	send chan []byte
}

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("upgrade failed", zap.Error(err))
		return
	}

	c := &client{srv: s, conn: conn, send: make(chan []byte, 256)}
	s.hub.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.srv.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Debug("ws read error", zap.Error(err))
			}
			break
		}

		var env event.Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.srv.emitError(c, "malformed event")
			continue
		}
		c.srv.handleEvent(c, env)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleEvent applies one inbound client event. Mutations land in the
// in-memory state first; the authoritative result is then broadcast to
// the conversation room, which is how clients learn about their own
// actions too.
func (s *server) handleEvent(c *client, env event.Envelope) {
	switch env.Event {
	case event.JoinChat:
		var chatID string
		if err := json.Unmarshal(env.Data, &chatID); err != nil {
			s.emitError(c, "joinChat: bad payload")
			return
		}
		s.hub.subscribe <- subscription{c: c, room: chatRoom(chatID)}

	case event.LeaveChat:
		var chatID string
		if err := json.Unmarshal(env.Data, &chatID); err != nil {
			return
		}
		s.hub.unsubscribe <- subscription{c: c, room: chatRoom(chatID)}

	case event.SubscribeToUser:
		var userID string
		if err := json.Unmarshal(env.Data, &userID); err != nil {
			s.emitError(c, "subscribeToUser: bad payload")
			return
		}
		s.hub.subscribe <- subscription{c: c, room: userRoom(userID)}

	case event.SendMessage:
		var p event.SendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			s.emitError(c, "sendMessage: bad payload")
			return
		}
		chat := s.state.chat(p.ChatID)
		if chat == nil || !chat.HasMember(p.SenderID) {
			s.emitError(c, "sendMessage: not a member")
			return
		}
		// Server-side strict enforcement; the client gate is advisory.
		if chat.IsGroup && chat.IsStrict && chat.OwnerID != p.SenderID {
			s.emitError(c, "sendMessage: strict mode")
			return
		}
		msg, fresh := s.state.appendWithID(p.ChatID, p.ID, p.SenderID, p.Content)
		if fresh {
			s.hub.emit(chatRoom(p.ChatID), event.NewMessage, msg)
		}

	case event.Typing, event.StopTyping:
		var p event.TypingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		s.hub.emit(chatRoom(p.ChatID), env.Event, event.TypingPayload{SenderID: p.SenderID})

	case event.AdjustStrict:
		var chatID string
		if err := json.Unmarshal(env.Data, &chatID); err != nil {
			s.emitError(c, "adjustStrict: bad payload")
			return
		}
		chat, ok := s.state.toggleStrict(chatID)
		if !ok {
			s.emitError(c, "adjustStrict: no such chat")
			return
		}
		s.hub.emit(chatRoom(chatID), event.AdjustStrict, event.StrictPayload{IsStrict: chat.IsStrict})
		s.hub.emit(chatRoom(chatID), event.ChatUpdated, chat)

	case event.NotiUpdateGroupName:
		var p event.UpdateGroupNamePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		chat := s.state.chat(p.ChatID)
		if chat == nil {
			return
		}
		notice := s.state.appendMessage(p.ChatID, p.SenderID, "Group renamed to "+p.GroupName, model.KindNotice)
		s.hub.emit(chatRoom(p.ChatID), event.NewMessage, notice)
		s.hub.emit(chatRoom(p.ChatID), event.ChatUpdated, chat)

	case event.NotiAdjustMember:
		var p event.AdjustMemberPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		chat := s.state.chat(p.ChatID)
		if chat == nil {
			return
		}
		verb := "left"
		if p.IsAdd {
			verb = "joined"
		}
		notice := s.state.appendMessage(p.ChatID, p.SenderID, s.displayName(p.MemberID)+" "+verb+" the group", model.KindNotice)
		s.hub.emit(chatRoom(p.ChatID), event.NewMessage, notice)
		s.hub.emit(chatRoom(p.ChatID), event.ChatUpdated, chat)
		if p.IsAdd {
			s.hub.emit(userRoom(p.MemberID), event.ChatCreated, chat)
		}

	default:
		s.emitError(c, "unknown event: "+env.Event)
	}
}

func (s *server) displayName(userID string) string {
	if u := s.state.user(userID); u != nil {
		return u.Name
	}
	return "A member"
}

func (s *server) emitError(c *client, msg string) {
	raw, _ := json.Marshal(msg)
	payload, err := json.Marshal(event.Envelope{Event: event.Error, Data: raw})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}
