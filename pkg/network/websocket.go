package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/messages"
	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
)

// WSServer accepts host connections over WebSocket.
type WSServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewWSServerOptions struct {
	Port              int
	TLS               *TLSConfig
	ConnectionHandler ConnectionHandler
	// OriginPatterns lists the foreign origins allowed to upgrade.
	// Requests without an Origin header and same host requests are always accepted.
	OriginPatterns []string
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			log.Error("Failed to accept WebSocket connection: %v", err)
			return
		}
		conn.SetReadLimit(messages.MessageBufferSize)

		wsConn := &WSConn{conn: conn, remoteAddr: r.RemoteAddr}
		log.Debug("New WebSocket connection from %s", wsConn.RemoteAddr())
		opts.ConnectionHandler(r.Context(), wsConn, wsConn.ReadMessage)
	}).Methods(http.MethodGet)

	return &WSServer{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		tls: opts.TLS,
	}
}

// Handler returns the HTTP handler serving the WebSocket endpoint.
func (s *WSServer) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the WebSocket server and blocks until ctx is cancelled or the server fails.
func (s *WSServer) Start(ctx context.Context) {
	s.server.BaseContext = func(net.Listener) context.Context {
		return ctx
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down WebSocket server: %v", err)
		}
	}()

	var listenAndServe func() error
	if s.tls != nil {
		log.Info("WebSocket server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("WebSocket server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("WebSocket server closed")
			return
		}
		log.Error("WebSocket server error: %v", err)
	}
}

// WSConn is a host connection over WebSocket.
type WSConn struct {
	conn       *websocket.Conn
	remoteAddr string
}

func (c *WSConn) RemoteAddr() string {
	return c.remoteAddr
}

func (c *WSConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

func (c *WSConn) WriteMessage(ctx context.Context, msg *messages.Message) error {
	return WriteMessageToWS(ctx, c.conn, msg)
}

func (c *WSConn) ReadMessage(ctx context.Context) (*messages.Message, error) {
	return ReadMessageFromWS(ctx, c.conn)
}

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(ctx context.Context, conn *websocket.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	if err := conn.Write(ctx, websocket.MessageBinary, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection.
// A close handshake from the peer is reported as ErrConnectionClosed.
func ReadMessageFromWS(ctx context.Context, conn *websocket.Conn) (*messages.Message, error) {
	_, b, err := conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return nil, &ErrConnectionClosed{}
		}
		return nil, fmt.Errorf("failed to read message from WebSocket connection: %v", err)
	}

	msg, err := messages.DeserializeMessage(b)
	if err != nil {
		return nil, &ErrMalformedMessage{Err: err}
	}

	return msg, nil
}
