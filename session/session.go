// session/session.go
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConnectionState 客户端连接状态
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Connected
	ConnectedToMaster
	JoiningLobby
	JoinedLobby
	Joining
	Joined
	Leaving
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case ConnectedToMaster:
		return "ConnectedToMaster"
	case JoiningLobby:
		return "JoiningLobby"
	case JoinedLobby:
		return "JoinedLobby"
	case Joining:
		return "Joining"
	case Joined:
		return "Joined"
	case Leaving:
		return "Leaving"
	default:
		return "Unknown"
	}
}

// Session is the local player's view of its connection.
type Session struct {
	ID         string
	Nickname   string
	RoomName   string
	CreatedAt  time.Time
	LastActive time.Time
	state      ConnectionState
	mutex      sync.RWMutex
}

func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		LastActive: now,
		state:      Disconnected,
	}
}

func (s *Session) State() ConnectionState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.state
}

// SetState records a new connection state. Leaving the Joined state clears
// the current room.
func (s *Session) SetState(state ConnectionState) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if state != Joined && state != Leaving {
		s.RoomName = ""
	}
	s.state = state
	s.LastActive = time.Now()
}

// InLobby reports whether room-list updates are expected.
func (s *Session) InLobby() bool {
	state := s.State()
	return state == JoiningLobby || state == JoinedLobby
}

// IsConnected reports whether the directory session is established.
func (s *Session) IsConnected() bool {
	state := s.State()
	return state != Disconnected && state != Connecting
}

// StatusText renders the connection status label.
func (s *Session) StatusText() string {
	return StatusText(s.State())
}

func StatusText(state ConnectionState) string {
	return "Connection Status: " + state.String()
}
