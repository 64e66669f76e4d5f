package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	authproviders "github.com/cbodonnell/landmark/pkg/auth/providers"
	"github.com/cbodonnell/landmark/pkg/events"
	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/messages"
	"github.com/cbodonnell/landmark/pkg/queue"
)

// ErrConnectionClosed is returned when the peer closed the connection
type ErrConnectionClosed struct{}

func (e *ErrConnectionClosed) Error() string {
	return "connection closed"
}

// ErrMalformedMessage is returned when a frame was read but could not be decoded.
// The connection is still usable.
type ErrMalformedMessage struct {
	Err error
}

func (e *ErrMalformedMessage) Error() string {
	return fmt.Sprintf("malformed message: %v", e.Err)
}

func (e *ErrMalformedMessage) Unwrap() error {
	return e.Err
}

// MessageReader reads the next message from a host connection.
type MessageReader func(ctx context.Context) (*messages.Message, error)

// ConnectionHandler serves a host connection until it is closed.
type ConnectionHandler func(ctx context.Context, conn Conn, read MessageReader)

type NetworkManager struct {
	AuthProvider   authproviders.AuthProvider
	ClientManager  *ClientManager
	HostEventQueue queue.Queue
	TCPServer      *TCPServer
	WSServer       *WSServer
}

type NewNetworkManagerOptions struct {
	AuthProvider   authproviders.AuthProvider
	ClientManager  *ClientManager
	HostEventQueue queue.Queue
	// TCPPort of 0 disables the TCP listener.
	TCPPort     int
	WSPort      int
	WSServerTLS *TLSConfig
	// OriginPatterns are passed to the WebSocket server.
	OriginPatterns []string
}

func NewNetworkManager(opts NewNetworkManagerOptions) *NetworkManager {
	n := &NetworkManager{
		AuthProvider:   opts.AuthProvider,
		ClientManager:  opts.ClientManager,
		HostEventQueue: opts.HostEventQueue,
	}
	if opts.TCPPort > 0 {
		n.TCPServer = NewTCPServer(NewTCPServerOptions{
			Port:              opts.TCPPort,
			ConnectionHandler: n.ServeConn,
		})
	}
	n.WSServer = NewWSServer(NewWSServerOptions{
		Port:              opts.WSPort,
		TLS:               opts.WSServerTLS,
		ConnectionHandler: n.ServeConn,
		OriginPatterns:    opts.OriginPatterns,
	})
	return n
}

func (n *NetworkManager) Start(ctx context.Context) {
	if n.TCPServer != nil {
		go n.TCPServer.Start(ctx)
	}
	go n.WSServer.Start(ctx)
}

// ServeConn reads messages from a host connection until it closes.
// The first accepted message must be a login; messages of a session are
// handled in the order they arrive.
func (n *NetworkManager) ServeConn(ctx context.Context, conn Conn, read MessageReader) {
	var sessionID string
	defer func() {
		if sessionID != "" {
			n.ClientManager.DisconnectClient(sessionID)
			log.Info("Session %s disconnected", sessionID)
		}
		conn.Close()
	}()

	for {
		message, err := read(ctx)
		if err != nil {
			var malformed *ErrMalformedMessage
			if errors.As(err, &malformed) {
				log.Warn("Dropping message from %s: %v", conn.RemoteAddr(), err)
				continue
			}
			var closed *ErrConnectionClosed
			if errors.As(err, &closed) || ctx.Err() != nil {
				log.Trace("Connection closed for %s", conn.RemoteAddr())
				return
			}
			log.Error("Error reading message from %s: %v", conn.RemoteAddr(), err)
			return
		}

		if sessionID == "" {
			if message.Type != messages.MessageTypeClientLogin {
				log.Warn("Received %s from %s before login", message.Type, conn.RemoteAddr())
				continue
			}
			id, err := n.handleClientLogin(ctx, conn, message)
			if err != nil {
				log.Error("Failed to handle client login from %s: %v", conn.RemoteAddr(), err)
				if err := n.sendServerLoginFailure(ctx, conn, err.Error()); err != nil {
					log.Error("Failed to send server login failure: %v", err)
				}
				continue
			}
			sessionID = id
			continue
		}

		if err := n.handleSessionMessage(sessionID, message); err != nil {
			log.Error("Failed to handle %s for session %s: %v", message.Type, sessionID, err)
		}
	}
}

// handleClientLogin verifies the login credential, opens a session and
// announces the session start.
func (n *NetworkManager) handleClientLogin(ctx context.Context, conn Conn, message *messages.Message) (string, error) {
	clientLogin := &messages.ClientLogin{}
	if err := json.Unmarshal(message.Payload, clientLogin); err != nil {
		return "", fmt.Errorf("failed to unmarshal client login: %v", err)
	}

	token := clientLogin.Token
	if token == "" {
		token = clientLogin.UserID
	}
	claims, err := n.AuthProvider.VerifyToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to verify token: %v", err)
	}

	sessionID, err := n.ClientManager.ConnectClient(conn, claims.UID)
	if err != nil {
		return "", fmt.Errorf("failed to connect client: %v", err)
	}
	log.Info("User %s connected with session %s", claims.UID, sessionID)

	msg, err := messages.New(claims.UID, messages.MessageTypeServerLoginSuccess, messages.ServerLoginSuccess{SessionID: sessionID})
	if err != nil {
		return "", fmt.Errorf("failed to build server login success: %v", err)
	}
	if err := conn.WriteMessage(ctx, msg); err != nil {
		log.Error("Failed to send server login success to user %s: %v", claims.UID, err)
	}

	if err := n.HostEventQueue.Enqueue(events.SessionStartEvent{UserID: claims.UID}); err != nil {
		log.Error("Failed to enqueue session start for user %s: %v", claims.UID, err)
	}

	return sessionID, nil
}

func (n *NetworkManager) sendServerLoginFailure(ctx context.Context, conn Conn, reason string) error {
	msg, err := messages.New("", messages.MessageTypeServerLoginFailure, messages.ServerLoginFailure{Reason: reason})
	if err != nil {
		return fmt.Errorf("failed to build server login failure: %v", err)
	}
	if err := conn.WriteMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to write server login failure: %v", err)
	}
	return nil
}

// handleSessionMessage queues a message from a logged in session for the
// host event worker, keeping positions, deaths and commands in arrival order.
func (n *NetworkManager) handleSessionMessage(sessionID string, message *messages.Message) error {
	userID, err := n.ClientManager.UserID(sessionID)
	if err != nil {
		return err
	}

	switch message.Type {
	case messages.MessageTypeClientPosition:
		clientPosition := &messages.ClientPosition{}
		if err := json.Unmarshal(message.Payload, clientPosition); err != nil {
			return fmt.Errorf("failed to unmarshal client position: %v", err)
		}
		event := events.PositionEvent{
			SessionID: sessionID,
			UserID:    userID,
			Position:  kinematic.Vector{X: clientPosition.X, Y: clientPosition.Y},
		}
		if err := n.HostEventQueue.Enqueue(event); err != nil {
			return fmt.Errorf("failed to enqueue position event: %v", err)
		}
	case messages.MessageTypeClientDeath:
		clientDeath := &messages.ClientDeath{}
		if err := json.Unmarshal(message.Payload, clientDeath); err != nil {
			return fmt.Errorf("failed to unmarshal client death: %v", err)
		}
		event := &events.DeathEvent{
			UserID:   userID,
			Position: kinematic.Vector{X: clientDeath.X, Y: clientDeath.Y},
		}
		if err := n.HostEventQueue.Enqueue(event); err != nil {
			return fmt.Errorf("failed to enqueue death event: %v", err)
		}
	case messages.MessageTypeClientCommand:
		clientCommand := &messages.ClientCommand{}
		if err := json.Unmarshal(message.Payload, clientCommand); err != nil {
			return fmt.Errorf("failed to unmarshal client command: %v", err)
		}
		if err := n.HostEventQueue.Enqueue(events.CommandEvent{UserID: userID, Line: clientCommand.Line}); err != nil {
			return fmt.Errorf("failed to enqueue command event: %v", err)
		}
	case messages.MessageTypeClientLogin:
		log.Warn("Ignoring repeated login on session %s", sessionID)
	default:
		return fmt.Errorf("unexpected message type %s", message.Type)
	}
	return nil
}
