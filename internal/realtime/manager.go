// Package realtime pushes view events (scroll resets, toasts, estimate
// updates) to the browser tabs attached to a wizard session.
package realtime

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

// Message is the envelope written to a websocket client
type Message struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Connection represents a WebSocket client connection
type Connection struct {
	ID          string
	SessionID   string
	Conn        *websocket.Conn
	Send        chan Message
	ConnectedAt time.Time
	closeOnce   sync.Once
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

// Manager handles WebSocket connections grouped by wizard session
type Manager struct {
	sessions map[string]map[*Connection]struct{}
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewManager creates a new WebSocket manager. allowedOrigins empty means any origin.
func NewManager(allowedOrigins []string, logger *zap.Logger) *Manager {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &Manager{
		sessions: make(map[string]map[*Connection]struct{}),
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				return allowed[r.Header.Get("Origin")]
			},
		},
	}
}

// HandleConnection upgrades the request and attaches it to sessionID.
func (m *Manager) HandleConnection(w http.ResponseWriter, r *http.Request, sessionID string) (*Connection, error) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := &Connection{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		Conn:        conn,
		Send:        make(chan Message, sendBuffer),
		ConnectedAt: time.Now(),
	}

	m.mu.Lock()
	if m.sessions[sessionID] == nil {
		m.sessions[sessionID] = make(map[*Connection]struct{})
	}
	m.sessions[sessionID][connection] = struct{}{}
	m.mu.Unlock()

	m.logger.Debug("View connected",
		zap.String("session_id", sessionID),
		zap.String("connection_id", connection.ID))

	go m.readPump(connection)
	go m.writePump(connection)

	return connection, nil
}

func (m *Manager) unregister(conn *Connection) {
	m.mu.Lock()
	if conns, ok := m.sessions[conn.SessionID]; ok {
		if _, ok := conns[conn]; ok {
			delete(conns, conn)
			conn.close()
		}
		if len(conns) == 0 {
			delete(m.sessions, conn.SessionID)
		}
	}
	m.mu.Unlock()
}

// readPump only watches for the client going away; the view never sends
// commands over the socket.
func (m *Manager) readPump(conn *Connection) {
	defer func() {
		m.unregister(conn)
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(512)
	conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				m.logger.Debug("View connection closed", zap.Error(err))
			}
			return
		}
	}
}

func (m *Manager) writePump(conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteJSON(message); err != nil {
				return
			}

		case <-ticker.C:
			conn.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendToSession queues message for every view of sessionID. Views whose
// buffer is full miss the message. It returns the number of views reached.
func (m *Manager) SendToSession(sessionID string, message Message) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	message.SessionID = sessionID
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	sent := 0
	for conn := range m.sessions[sessionID] {
		select {
		case conn.Send <- message:
			sent++
		default:
			m.logger.Warn("View buffer full, dropping message",
				zap.String("session_id", sessionID),
				zap.String("type", message.Type))
		}
	}
	return sent
}

// CloseSession disconnects every view of sessionID.
func (m *Manager) CloseSession(sessionID string) {
	m.mu.Lock()
	conns := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	for conn := range conns {
		conn.close()
	}
}

// GetConnectionCount returns the number of active connections
func (m *Manager) GetConnectionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, conns := range m.sessions {
		count += len(conns)
	}
	return count
}

// Close disconnects every view
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]map[*Connection]struct{})
	m.mu.Unlock()

	for _, conns := range sessions {
		for conn := range conns {
			conn.close()
		}
	}
}
