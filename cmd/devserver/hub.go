package main

import (
	"encoding/json"

	"go-chat-client/internal/event"
)

// hub routes events to room subscribers. It maintains the set of
// connected clients and which rooms each one joined. A single
// goroutine owns all hub state, so the maps need no locking: every
// interaction goes through the channels.
type hub struct {
	register    chan *client
	unregister  chan *client
	subscribe   chan subscription
	unsubscribe chan subscription
	broadcast   chan roomMessage

	clients map[*client]map[string]bool
	rooms   map[string]map[*client]bool
}

type subscription struct {
	c    *client
	room string
}

type roomMessage struct {
	room    string
	payload []byte
}

func newHub() *hub {
	return &hub{
		register:    make(chan *client),
		unregister:  make(chan *client),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		broadcast:   make(chan roomMessage),
		clients:     make(map[*client]map[string]bool),
		rooms:       make(map[string]map[*client]bool),
	}
}

func (h *hub) run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = make(map[string]bool)

		case c := <-h.unregister:
			if rooms, ok := h.clients[c]; ok {
				for room := range rooms {
					delete(h.rooms[room], c)
				}
				delete(h.clients, c)
				close(c.send)
			}

		case sub := <-h.subscribe:
			if _, ok := h.clients[sub.c]; !ok {
				continue
			}
			if h.rooms[sub.room] == nil {
				h.rooms[sub.room] = make(map[*client]bool)
			}
			h.rooms[sub.room][sub.c] = true
			h.clients[sub.c][sub.room] = true

		case sub := <-h.unsubscribe:
			delete(h.rooms[sub.room], sub.c)
			if rooms, ok := h.clients[sub.c]; ok {
				delete(rooms, sub.room)
			}

		case msg := <-h.broadcast:
			for c := range h.rooms[msg.room] {
				select {
				case c.send <- msg.payload:
				default:
					close(c.send)
					delete(h.clients, c)
					for room := range h.rooms {
						delete(h.rooms[room], c)
					}
				}
			}
		}
	}
}

// emit marshals an event envelope and broadcasts it to a room.
func (h *hub) emit(room, name string, data any) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return
		}
		raw = b
	}
	payload, err := json.Marshal(event.Envelope{Event: name, Data: raw})
	if err != nil {
		return
	}
	h.broadcast <- roomMessage{room: room, payload: payload}
}

func chatRoom(id string) string { return "chat:" + id }
func userRoom(id string) string { return "user:" + id }
