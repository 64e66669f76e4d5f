package network

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/cbodonnell/landmark/pkg/log"
	"github.com/cbodonnell/landmark/pkg/messages"
)

// frameHeaderSize is the length prefix written before every TCP frame.
const frameHeaderSize = 4

// TCPServer accepts host connections over plain TCP.
type TCPServer struct {
	port              int
	connectionHandler ConnectionHandler
}

type NewTCPServerOptions struct {
	Port              int
	ConnectionHandler ConnectionHandler
}

// NewTCPServer creates a new TCP server.
func NewTCPServer(opts NewTCPServerOptions) *TCPServer {
	return &TCPServer{
		port:              opts.Port,
		connectionHandler: opts.ConnectionHandler,
	}
}

// Start listens on the configured port and serves until ctx is cancelled.
func (s *TCPServer) Start(ctx context.Context) {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		log.Error("Failed to listen on TCP port %d: %v", s.port, err)
		return
	}
	log.Info("TCP server listening on %s", listener.Addr().String())
	s.Serve(ctx, listener)
}

// Serve accepts connections from listener until ctx is cancelled.
func (s *TCPServer) Serve(ctx context.Context, listener net.Listener) {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.Info("TCP server closed")
				return
			}
			log.Error("Failed to accept TCP connection: %v", err)
			continue
		}

		tcpConn := &TCPConn{conn: conn}
		log.Debug("New TCP connection from %s", tcpConn.RemoteAddr())
		go s.connectionHandler(ctx, tcpConn, tcpConn.ReadMessage)
	}
}

// TCPConn is a host connection over TCP with length prefixed frames.
type TCPConn struct {
	conn      net.Conn
	writeLock sync.Mutex
}

func (c *TCPConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *TCPConn) Close() error {
	return c.conn.Close()
}

func (c *TCPConn) WriteMessage(ctx context.Context, msg *messages.Message) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return WriteMessageToTCP(c.conn, msg)
}

func (c *TCPConn) ReadMessage(ctx context.Context) (*messages.Message, error) {
	return ReadMessageFromTCP(c.conn)
}

// WriteMessageToTCP writes a Message to a TCP connection
func WriteMessageToTCP(conn net.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}
	if len(b) > messages.MessageBufferSize {
		return fmt.Errorf("message of %d bytes exceeds the %d byte limit", len(b), messages.MessageBufferSize)
	}

	frame := make([]byte, frameHeaderSize+len(b))
	binary.BigEndian.PutUint32(frame, uint32(len(b)))
	copy(frame[frameHeaderSize:], b)

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("failed to write message to TCP connection: %v", err)
	}

	return nil
}

// ReadMessageFromTCP reads a Message from a TCP connection
func ReadMessageFromTCP(conn net.Conn) (*messages.Message, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(conn, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			return nil, &ErrConnectionClosed{}
		}
		return nil, fmt.Errorf("failed to read frame header from TCP connection: %v", err)
	}

	size := binary.BigEndian.Uint32(header)
	if size > messages.MessageBufferSize {
		return nil, fmt.Errorf("frame of %d bytes exceeds the %d byte limit", size, messages.MessageBufferSize)
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return nil, fmt.Errorf("failed to read message from TCP connection: %v", err)
	}

	msg, err := messages.DeserializeMessage(buf)
	if err != nil {
		return nil, &ErrMalformedMessage{Err: err}
	}

	return msg, nil
}
