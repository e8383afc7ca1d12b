package render

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout bounds how long a slow client may hold up a broadcast.
const DefaultWriteTimeout = time.Second

// Stream is an http.Handler that upgrades requests to websockets and sends
// every broadcast frame to each connected client as JSON.
type Stream struct {
	WriteTimeout time.Duration

	upgrader websocket.Upgrader
	mu       sync.RWMutex
	clients  map[*streamClient]struct{}
}

// streamClient serializes writes to one connection.
type streamClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *streamClient) writeJSON(v any, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *streamClient) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// NewStream returns a stream without clients.
func NewStream() *Stream {
	return &Stream{
		WriteTimeout: DefaultWriteTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*streamClient]struct{}),
	}
}

func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[stream] upgrade error: %v", err)
		return
	}
	c := &streamClient{conn: conn}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	log.Printf("[stream] client connected from %s", conn.RemoteAddr())

	defer func() {
		s.remove(c)
		log.Printf("[stream] client %s disconnected", conn.RemoteAddr())
	}()
	// Clients only listen; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Stream) remove(c *streamClient) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.close()
	}
}

// Clients returns the number of connected clients.
func (s *Stream) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends f to every client and drops the ones that fail.
func (s *Stream) Broadcast(f Frame) {
	s.mu.RLock()
	clients := make([]*streamClient, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.writeJSON(f, s.WriteTimeout); err != nil {
			log.Printf("[stream] write to %s failed: %v", c.conn.RemoteAddr(), err)
			s.remove(c)
		}
	}
}

// Close disconnects all clients.
func (s *Stream) Close() {
	s.mu.Lock()
	clients := s.clients
	s.clients = make(map[*streamClient]struct{})
	s.mu.Unlock()
	for c := range clients {
		c.close()
	}
}
