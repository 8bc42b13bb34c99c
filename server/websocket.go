package server

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// isValidOrigin checks if the origin is allowed to connect
func isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No origin header - could be a non-browser client
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		log.Printf("Invalid origin URL: %s", origin)
		return false
	}

	// Allow same-origin connections
	if r.Host == originURL.Host {
		return true
	}

	// Allow localhost connections for development
	if strings.HasPrefix(originURL.Host, "localhost:") ||
		strings.HasPrefix(originURL.Host, "127.0.0.1:") ||
		originURL.Host == "localhost" ||
		originURL.Host == "127.0.0.1" {
		return true
	}

	log.Printf("Rejected WebSocket connection from origin: %s", origin)
	return false
}

var upgrader = websocket.Upgrader{
	CheckOrigin:       isValidOrigin,
	EnableCompression: true, // Enable per-message deflate compression
}

// Message types
const (
	MsgTypeScan     = "scan"
	MsgTypeStatus   = "status"
	MsgTypeDeath    = "death"
	MsgTypeFriendly = "friendly"
	MsgTypePredict  = "predict"
	MsgTypeSolve    = "solve"
	MsgTypeRank     = "rank"
	MsgTypeSelect   = "select"
	MsgTypeReset    = "reset"

	MsgTypePrediction = "prediction"
	MsgTypeSolution   = "solution"
	MsgTypeRanking    = "ranking"
	MsgTypeTarget     = "target"
	MsgTypeAck        = "ack"
	MsgTypeError      = "error"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SessionStats summarizes one connected session
type SessionStats struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	Opponents int       `json:"opponents"`
	Messages  int64     `json:"messages"`
	Solutions int64     `json:"solutions"`
}

// Client is one connected shooter. Its engine is only touched from the
// read pump, so messages for a session are handled one at a time.
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan ServerMessage
	server *Server
	engine *Engine

	mu    sync.Mutex
	stats SessionStats
}

// Server tracks connected sessions
type Server struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	closeOnce  sync.Once
	engineCfg  EngineConfig
}

// NewServer creates a server whose sessions use cfg
func NewServer(cfg EngineConfig) *Server {
	return &Server{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		engineCfg:  cfg,
	}
}

// newClient creates a session with its own engine
func (s *Server) newClient(conn *websocket.Conn) *Client {
	sid := uuid.New()
	id := sid.String()
	cfg := s.engineCfg
	// Each session gets its own jitter sequence derived from the base seed
	cfg.Seed = s.engineCfg.Seed + int64(sid.ID())
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan ServerMessage, 256),
		server: s,
		engine: NewEngine(cfg),
		stats: SessionStats{
			ID:        id,
			Connected: time.Now(),
		},
	}
}

// Run handles session registration until Shutdown is called
func (s *Server) Run() {
	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()
			log.Printf("Session %s connected", client.ID)

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.ID]; ok {
				delete(s.clients, client.ID)
				close(client.send)
			}
			s.mu.Unlock()
			log.Printf("Session %s disconnected", client.ID)

		case <-s.done:
			return
		}
	}
}

// Shutdown stops the registration loop
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Sessions returns stats for every connected session, oldest first
func (s *Server) Sessions() []SessionStats {
	s.mu.RLock()
	out := make([]SessionStats, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c.Stats())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Connected.Before(out[j].Connected)
	})
	return out
}

// HandleSessionStats returns the connected sessions
func (s *Server) HandleSessionStats(w http.ResponseWriter, r *http.Request) {
	// Enable CORS for cross-origin requests
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")

	sessions := s.Sessions()
	response := map[string]interface{}{
		"total":    len(sessions),
		"sessions": sessions,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding session stats: %v", err)
	}
}

// HandleWebSocket handles WebSocket connections
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := s.newClient(conn)
	select {
	case s.register <- client:
	case <-s.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// Stats returns a snapshot of the session counters
func (c *Client) Stats() SessionStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// readPump handles incoming messages from the client
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg ClientMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.handleMessage(msg)
	}
}

// writePump sends messages to the client
func (c *Client) writePump() {
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

			if err := c.conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes a message from the client
func (c *Client) handleMessage(msg ClientMessage) {
	// Recover from any panic to prevent disconnection
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in handleMessage for session %s, type %s: %v", c.ID, msg.Type, r)
			c.sendError(msg.Type, "internal error")
		}
	}()

	c.mu.Lock()
	c.stats.Messages++
	c.mu.Unlock()

	switch msg.Type {
	case MsgTypeScan:
		c.handleScan(msg.Data)
	case MsgTypeStatus:
		c.handleStatus(msg.Data)
	case MsgTypeDeath:
		c.handleDeath(msg.Data)
	case MsgTypeFriendly:
		c.handleFriendly(msg.Data)
	case MsgTypePredict:
		c.handlePredict(msg.Data)
	case MsgTypeSolve:
		c.handleSolve(msg.Data)
	case MsgTypeRank:
		c.handleRank()
	case MsgTypeSelect:
		c.handleSelect(msg.Data)
	case MsgTypeReset:
		c.handleReset()
	default:
		log.Printf("Unknown message type: %s", msg.Type)
		c.sendError(msg.Type, "unknown message type")
	}

	c.mu.Lock()
	c.stats.Opponents = len(c.engine.trackers)
	c.mu.Unlock()
}
