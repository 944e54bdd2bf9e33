package channel

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"go-chat-client/internal/event"
	"go-chat-client/internal/logger"
)

const (
	writeWait      = 10 * time.Second    // Time allowed to write a message to the peer.
	pongWait       = 60 * time.Second    // Time allowed to read the next pong message from the peer.
	pingPeriod     = (pongWait * 9) / 10 // Send pings to peer with this period. Must be less than pongWait.
	maxMessageSize = 64 * 1024           // Maximum event size accepted from the peer.

	// Reconnect policy: bounded attempts, fixed backoff.
	reconnectAttempts = 5
	reconnectDelay    = time.Second
)

var ErrClosed = errors.New("channel: closed")

// Socket is the websocket-backed Channel. It keeps one reader and one
// writer goroutine per connection and redials automatically when the
// read side fails, up to reconnectAttempts times.
type Socket struct {
	url    string
	header http.Header

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string]Handler
	closed   bool

	send chan []byte
	done chan struct{}
	wg   sync.WaitGroup
}

// Dial connects to the event endpoint. The header typically carries
// the bearer token.
func Dial(url string, header http.Header) (*Socket, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return nil, err
	}

	s := &Socket{
		url:      url,
		header:   header,
		conn:     conn,
		handlers: make(map[string]Handler),
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
	}

	s.wg.Add(2)
	go s.writePump()
	go s.readPump()

	logger.Log.Info("channel connected", zap.String("url", url))
	return s, nil
}

func (s *Socket) On(name string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = h
}

func (s *Socket) Off(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, name)
}

func (s *Socket) Emit(name string, data any) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.mu.Unlock()

	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return err
		}
		raw = b
	}

	msg, err := json.Marshal(event.Envelope{Event: name, Data: raw})
	if err != nil {
		return err
	}

	select {
	case s.send <- msg:
		return nil
	case <-s.done:
		return ErrClosed
	}
}

func (s *Socket) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conn := s.conn
	s.mu.Unlock()

	close(s.done)
	err := conn.Close()
	s.wg.Wait()
	return err
}

// readPump pumps events from the connection to the registered
// handlers. On a read failure it tries to redial before giving up.
func (s *Socket) readPump() {
	defer s.wg.Done()

	for {
		conn := s.current()

		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Log.Warn("channel read error", zap.Error(err))
				}
				break
			}
			s.dispatch(message)
		}

		if !s.reconnect() {
			return
		}
	}
}

func (s *Socket) dispatch(message []byte) {
	var env event.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		logger.Log.Warn("channel: malformed event", zap.Error(err))
		return
	}

	s.mu.Lock()
	h := s.handlers[env.Event]
	s.mu.Unlock()

	if h == nil {
		logger.Log.Debug("channel: unhandled event", zap.String("event", env.Event))
		return
	}
	h(env.Data)
}

// reconnect redials with a fixed backoff. It reports whether a new
// connection was established; false means the socket is done.
func (s *Socket) reconnect() bool {
	for attempt := 1; attempt <= reconnectAttempts; attempt++ {
		select {
		case <-s.done:
			return false
		case <-time.After(reconnectDelay):
		}

		conn, _, err := websocket.DefaultDialer.Dial(s.url, s.header)
		if err != nil {
			logger.Log.Warn("channel reconnect failed",
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return false
		}
		s.conn = conn
		s.mu.Unlock()

		logger.Log.Info("channel reconnected", zap.Int("attempt", attempt))
		return true
	}

	logger.Log.Error("channel: reconnect attempts exhausted")
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()
	return false
}

func (s *Socket) current() *websocket.Conn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

// writePump pumps queued events to the connection and keeps the
// heartbeat going.
func (s *Socket) writePump() {
	defer s.wg.Done()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			s.current().WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case message := <-s.send:
			conn := s.current()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Log.Warn("channel write error", zap.Error(err))
			}

		case <-ticker.C:
			conn := s.current()
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Log.Debug("channel ping failed", zap.Error(err))
			}
		}
	}
}
