package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cbodonnell/landmark/pkg/host"
	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/messages"
	"github.com/google/uuid"
)

var _ host.Host = &ClientManager{}

// Conn is a host connection the server can push messages to.
type Conn interface {
	WriteMessage(ctx context.Context, msg *messages.Message) error
	RemoteAddr() string
	Close() error
}

// Session represents a logged in user on a host connection.
type Session struct {
	ID          string
	UserID      string
	Conn        Conn
	ConnectedAt time.Time

	position    kinematic.Vector
	hasPosition bool
}

// ErrSessionNotFound is returned when a session id is not known to the manager.
type ErrSessionNotFound struct {
	SessionID string
}

func (e *ErrSessionNotFound) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}

func IsSessionNotFound(err error) bool {
	_, ok := err.(*ErrSessionNotFound)
	return ok
}

// ClientManager tracks connected sessions and the user each one belongs to.
// A user has at most one live session: a new login replaces the previous one.
type ClientManager struct {
	sessions     map[string]*Session
	userSessions map[string]string
	sessionsLock sync.RWMutex
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		sessions:     make(map[string]*Session),
		userSessions: make(map[string]string),
	}
}

// ConnectClient registers a session for userID on conn and returns its id.
func (cm *ClientManager) ConnectClient(conn Conn, userID string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %v", err)
	}
	session := &Session{
		ID:          id.String(),
		UserID:      userID,
		Conn:        conn,
		ConnectedAt: time.Now(),
	}

	cm.sessionsLock.Lock()
	var replaced *Session
	if previousID, ok := cm.userSessions[userID]; ok {
		replaced = cm.sessions[previousID]
		delete(cm.sessions, previousID)
	}
	cm.sessions[session.ID] = session
	cm.userSessions[userID] = session.ID
	cm.sessionsLock.Unlock()

	if replaced != nil {
		log.Info("Session %s of user %s replaced by %s", replaced.ID, userID, session.ID)
		if err := replaced.Conn.Close(); err != nil {
			log.Debug("Failed to close replaced connection %s: %v", replaced.Conn.RemoteAddr(), err)
		}
	}

	return session.ID, nil
}

// DisconnectClient removes a session from the manager
func (cm *ClientManager) DisconnectClient(sessionID string) {
	cm.sessionsLock.Lock()
	defer cm.sessionsLock.Unlock()

	session, ok := cm.sessions[sessionID]
	if !ok {
		return
	}
	delete(cm.sessions, sessionID)
	if cm.userSessions[session.UserID] == sessionID {
		delete(cm.userSessions, session.UserID)
	}
}

// UserID returns the user bound to a session.
func (cm *ClientManager) UserID(sessionID string) (string, error) {
	cm.sessionsLock.RLock()
	defer cm.sessionsLock.RUnlock()
	session, ok := cm.sessions[sessionID]
	if !ok {
		return "", &ErrSessionNotFound{SessionID: sessionID}
	}
	return session.UserID, nil
}

// SetPosition records the last position reported for a session.
func (cm *ClientManager) SetPosition(sessionID string, pos kinematic.Vector) error {
	cm.sessionsLock.Lock()
	defer cm.sessionsLock.Unlock()
	session, ok := cm.sessions[sessionID]
	if !ok {
		return &ErrSessionNotFound{SessionID: sessionID}
	}
	session.position = pos
	session.hasPosition = true
	return nil
}

// Count returns the number of live sessions.
func (cm *ClientManager) Count() int {
	cm.sessionsLock.RLock()
	defer cm.sessionsLock.RUnlock()
	return len(cm.sessions)
}

// sessionForUser must be called with the lock held.
func (cm *ClientManager) sessionForUser(userID string) (*Session, bool) {
	sessionID, ok := cm.userSessions[userID]
	if !ok {
		return nil, false
	}
	session, ok := cm.sessions[sessionID]
	return session, ok
}

func (cm *ClientManager) connForUser(userID string) (Conn, error) {
	cm.sessionsLock.RLock()
	defer cm.sessionsLock.RUnlock()
	session, ok := cm.sessionForUser(userID)
	if !ok {
		return nil, host.ErrUserOffline
	}
	return session.Conn, nil
}

func (cm *ClientManager) Teleport(ctx context.Context, userID string, pos kinematic.Vector) error {
	conn, err := cm.connForUser(userID)
	if err != nil {
		return err
	}

	msg, err := messages.New(userID, messages.MessageTypeServerTeleport, messages.ServerTeleport{X: pos.X, Y: pos.Y})
	if err != nil {
		return fmt.Errorf("failed to build teleport message: %v", err)
	}
	if err := conn.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to send teleport to user %s: %v", userID, err)
	}

	// the host reports the new position eventually; assume it took effect
	cm.sessionsLock.Lock()
	if session, ok := cm.sessionForUser(userID); ok {
		session.position = pos
		session.hasPosition = true
	}
	cm.sessionsLock.Unlock()

	return nil
}

func (cm *ClientManager) SendMessage(ctx context.Context, userID string, category messages.ChatCategory, text string) error {
	conn, err := cm.connForUser(userID)
	if err != nil {
		return err
	}

	msg, err := messages.New(userID, messages.MessageTypeServerChat, messages.ServerChat{Category: category, Text: text})
	if err != nil {
		return fmt.Errorf("failed to build chat message: %v", err)
	}
	if err := conn.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to send chat to user %s: %v", userID, err)
	}
	return nil
}

func (cm *ClientManager) Position(ctx context.Context, userID string) (kinematic.Vector, error) {
	cm.sessionsLock.RLock()
	defer cm.sessionsLock.RUnlock()
	session, ok := cm.sessionForUser(userID)
	if !ok {
		return kinematic.Vector{}, host.ErrUserOffline
	}
	if !session.hasPosition {
		return kinematic.Vector{}, host.ErrNoPosition
	}
	return session.position, nil
}
