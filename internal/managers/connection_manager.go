package managers

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// close reason sent to a connection bumped by a newer one
const ReplacedReason = "Replaced by new connection"

// ConnectionManager tracks at most one live WebSocket connection per
// interview. All mutations go through a single mutex since connect and
// disconnect race from independent connection handlers.
type ConnectionManager struct {
	connections map[uint]*websocket.Conn
	mu          sync.Mutex
	logger      *zap.Logger
}

func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[uint]*websocket.Conn),
		logger:      logger,
	}
}

// Connect registers conn as the single live connection for an interview.
// An existing connection is actively closed first so two tabs can never
// drive the same interview concurrently.
func (m *ConnectionManager) Connect(interviewID uint, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, exists := m.connections[interviewID]; exists {
		m.logger.Info("replacing existing connection", zap.Uint("interview_id", interviewID))
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, ReplacedReason)
		_ = old.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = old.Close()
	}
	m.connections[interviewID] = conn
	m.logger.Info("connection registered",
		zap.Uint("interview_id", interviewID), zap.Int("active", len(m.connections)))
}

// Disconnect removes the registration. When the registration was already
// replaced by a newer connection this is a no-op, so a stale handler
// unwinding cannot deregister its successor.
func (m *ConnectionManager) Disconnect(interviewID uint, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, exists := m.connections[interviewID]; exists && current == conn {
		delete(m.connections, interviewID)
		m.logger.Info("connection removed",
			zap.Uint("interview_id", interviewID), zap.Int("active", len(m.connections)))
	}
}

func (m *ConnectionManager) Get(interviewID uint) (*websocket.Conn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	conn, exists := m.connections[interviewID]
	return conn, exists
}

func (m *ConnectionManager) IsConnected(interviewID uint) bool {
	_, exists := m.Get(interviewID)
	return exists
}

func (m *ConnectionManager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.connections)
}
