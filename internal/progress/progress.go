// Package progress broadcasts pipeline progress events (lines read,
// rules inserted, rules dominated, consolidation finished) to connected
// websocket clients, for a long-running dedupe/diff job over a very
// large input set. Adapted from DNShield's api.WSServer: same
// register/unregister/broadcast channel loop and per-client read/write
// pumps, generalized from DNS-agent status/stats messages to pipeline
// progress events.
package progress

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Only allow connections from localhost; this server is meant to
		// back a local progress dashboard, not a public endpoint.
		return r.Header.Get("Origin") == "http://localhost" ||
			r.Header.Get("Origin") == "https://localhost" ||
			r.Header.Get("Origin") == ""
	},
}

// Event is one progress update pushed to every connected client.
type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Stage reports pipeline phase progress; the pipeline sends
// "parsing:<source name>" after each source is read and "consolidating"
// after each emitted rule.
type Stage struct {
	Name           string `json:"name"`
	LinesProcessed int    `json:"linesProcessed"`
	RulesEmitted   int    `json:"rulesEmitted"`
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// Server fans out Events to every connected websocket client.
type Server struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
}

// NewServer returns a Server; call Run in a goroutine before ServeWS
// starts accepting connections.
func NewServer() *Server {
	return &Server{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run drives the register/unregister/broadcast loop until the process
// exits; it never returns on its own.
func (s *Server) Run() {
	for {
		select {
		case c := <-s.register:
			s.mu.Lock()
			s.clients[c] = true
			s.mu.Unlock()
			logrus.Debug("progress: client connected")

		case c := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[c]; ok {
				delete(s.clients, c)
				close(c.send)
			}
			s.mu.Unlock()

		case message := <-s.broadcast:
			s.mu.RLock()
			for c := range s.clients {
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(s.clients, c)
				}
			}
			s.mu.RUnlock()
		}
	}
}

// ServeWS upgrades an HTTP request to a websocket connection and starts
// its read/write pumps.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Error("progress: websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 256), server: s}
	s.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) readPump() {
	defer func() {
		c.server.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Error("progress: websocket read error")
			}
			break
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// BroadcastStage pushes a pipeline stage progress update to every
// connected client.
func (s *Server) BroadcastStage(stage Stage) {
	s.broadcastEvent(Event{Type: "stage_update", Timestamp: time.Now(), Data: stage})
}

// BroadcastDomination pushes notice of one rule being pruned by a
// shorter ancestor.
func (s *Server) BroadcastDomination(dominated, dominator string) {
	s.broadcastEvent(Event{
		Type:      "rule_dominated",
		Timestamp: time.Now(),
		Data:      map[string]string{"dominated": dominated, "dominator": dominator},
	})
}

func (s *Server) broadcastEvent(evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		logrus.WithError(err).Error("progress: failed to marshal event")
		return
	}

	select {
	case s.broadcast <- data:
	default:
		logrus.Warn("progress: broadcast channel full, dropping event")
	}
}
