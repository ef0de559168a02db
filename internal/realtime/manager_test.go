package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dial(t *testing.T, m *Manager, sessionID string) (*websocket.Conn, func()) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := m.HandleConnection(w, r, sessionID)
		assert.NoError(t, err)
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestSendToSession(t *testing.T) {
	m := NewManager(nil, zap.NewNop())
	defer m.Close()

	conn, cleanup := dial(t, m, "session-1")
	defer cleanup()

	require.Eventually(t, func() bool { return m.GetConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	sent := m.SendToSession("session-1", Message{Type: "scroll_top", Data: map[string]int{"step": 2}})
	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, m.SendToSession("other-session", Message{Type: "toast"}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "scroll_top", got.Type)
	assert.Equal(t, "session-1", got.SessionID)
	assert.False(t, got.Timestamp.IsZero())
}

func TestCloseSessionDisconnectsViews(t *testing.T) {
	m := NewManager(nil, zap.NewNop())
	defer m.Close()

	conn, cleanup := dial(t, m, "session-2")
	defer cleanup()

	require.Eventually(t, func() bool { return m.GetConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	m.CloseSession("session-2")
	assert.Equal(t, 0, m.GetConnectionCount())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestCheckOrigin(t *testing.T) {
	m := NewManager([]string{"https://app.example.com"}, zap.NewNop())

	ok := httptest.NewRequest(http.MethodGet, "/", nil)
	ok.Header.Set("Origin", "https://app.example.com")
	assert.True(t, m.upgrader.CheckOrigin(ok))

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, m.upgrader.CheckOrigin(bad))
}
