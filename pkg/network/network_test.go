package network

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	authproviders "github.com/cbodonnell/landmark/pkg/auth/providers"
	"github.com/cbodonnell/landmark/pkg/commands"
	"github.com/cbodonnell/landmark/pkg/events"
	"github.com/cbodonnell/landmark/pkg/host"
	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/landmark"
	"github.com/cbodonnell/landmark/pkg/messages"
	"github.com/cbodonnell/landmark/pkg/queue"
	"github.com/cbodonnell/landmark/pkg/store"
	"github.com/cbodonnell/landmark/pkg/workers"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func newTestNetworkManager() (*NetworkManager, *queue.InMemoryQueue) {
	hostEventQueue := queue.NewInMemoryQueue(64)
	n := NewNetworkManager(NewNetworkManagerOptions{
		AuthProvider:   authproviders.NewTrustedAuthProvider(),
		ClientManager:  NewClientManager(),
		HostEventQueue: hostEventQueue,
	})
	return n, hostEventQueue
}

func mustMessage(t *testing.T, msgType messages.MessageType, payload interface{}) *messages.Message {
	t.Helper()
	msg, err := messages.New("", msgType, payload)
	require.NoError(t, err)
	return msg
}

func dialWS(t *testing.T, ctx context.Context, n *NetworkManager) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(n.WSServer.Handler())
	t.Cleanup(server.Close)

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(server.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		conn.Close(websocket.StatusNormalClosure, "")
	})
	return conn
}

func drainEvents(t *testing.T, q *queue.InMemoryQueue, want int) []interface{} {
	t.Helper()
	var got []interface{}
	require.Eventually(t, func() bool {
		items, _ := q.ReadAllMessages()
		got = append(got, items...)
		return len(got) >= want
	}, time.Second, 5*time.Millisecond)
	return got
}

func TestNetworkManager_WebSocketSession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, hostEventQueue := newTestNetworkManager()
	conn := dialWS(t, ctx, n)

	// messages before login are ignored
	require.NoError(t, WriteMessageToWS(ctx, conn, mustMessage(t, messages.MessageTypeClientCommand, messages.ClientCommand{Line: "/ld list"})))
	require.NoError(t, WriteMessageToWS(ctx, conn, mustMessage(t, messages.MessageTypeClientLogin, messages.ClientLogin{UserID: "alice"})))

	reply, err := ReadMessageFromWS(ctx, conn)
	require.NoError(t, err)
	require.Equal(t, messages.MessageTypeServerLoginSuccess, reply.Type)
	loginSuccess := messages.ServerLoginSuccess{}
	require.NoError(t, json.Unmarshal(reply.Payload, &loginSuccess))
	assert.NotEmpty(t, loginSuccess.SessionID)

	require.NoError(t, WriteMessageToWS(ctx, conn, mustMessage(t, messages.MessageTypeClientPosition, messages.ClientPosition{X: 1, Y: 2})))
	require.NoError(t, WriteMessageToWS(ctx, conn, mustMessage(t, messages.MessageTypeClientDeath, messages.ClientDeath{X: 5, Y: 6})))
	require.NoError(t, WriteMessageToWS(ctx, conn, mustMessage(t, messages.MessageTypeClientCommand, messages.ClientCommand{Line: "/back"})))

	got := drainEvents(t, hostEventQueue, 4)
	require.Len(t, got, 4)
	assert.Equal(t, events.SessionStartEvent{UserID: "alice"}, got[0])
	assert.Equal(t, events.PositionEvent{SessionID: loginSuccess.SessionID, UserID: "alice", Position: kinematic.Vector{X: 1, Y: 2}}, got[1])
	assert.Equal(t, &events.DeathEvent{UserID: "alice", Position: kinematic.Vector{X: 5, Y: 6}}, got[2])
	assert.Equal(t, events.CommandEvent{UserID: "alice", Line: "/back"}, got[3])

	// positions are applied by the host event worker, not on receipt
	_, err = n.ClientManager.Position(ctx, "alice")
	assert.ErrorIs(t, err, host.ErrNoPosition)

	require.NoError(t, n.ClientManager.SendMessage(ctx, "alice", messages.ChatCategorySuccess, "You have successfully returned."))
	chatMsg, err := ReadMessageFromWS(ctx, conn)
	require.NoError(t, err)
	chat := messages.ServerChat{}
	require.NoError(t, json.Unmarshal(chatMsg.Payload, &chat))
	assert.Equal(t, "You have successfully returned.", chat.Text)

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool {
		return n.ClientManager.Count() == 0
	}, time.Second, 5*time.Millisecond)
}

func TestNetworkManager_CommandSeesPositionReportedBeforeIt(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, hostEventQueue := newTestNetworkManager()
	landmarks := store.NewInMemoryLandmarkStore()
	bus := events.NewBus()
	router := commands.NewRouter()
	service := landmark.NewService(landmark.NewServiceOptions{
		Landmarks: landmarks,
		Deaths:    store.NewInMemoryDeathStore(),
		Host:      n.ClientManager,
	})
	require.NoError(t, service.Register(router, bus))
	worker := workers.NewHostEventWorker(workers.NewHostEventWorkerOptions{
		HostEventQueue: hostEventQueue,
		Positions:      n.ClientManager,
		Bus:            bus,
		Router:         router,
		Host:           n.ClientManager,
		Interval:       time.Hour,
	})

	conn := dialWS(t, ctx, n)
	require.NoError(t, WriteMessageToWS(ctx, conn, mustMessage(t, messages.MessageTypeClientLogin, messages.ClientLogin{UserID: "alice"})))
	reply, err := ReadMessageFromWS(ctx, conn)
	require.NoError(t, err)
	require.Equal(t, messages.MessageTypeServerLoginSuccess, reply.Type)

	require.NoError(t, WriteMessageToWS(ctx, conn, mustMessage(t, messages.MessageTypeClientPosition, messages.ClientPosition{X: 100, Y: 200})))
	require.NoError(t, WriteMessageToWS(ctx, conn, mustMessage(t, messages.MessageTypeClientCommand, messages.ClientCommand{Line: "/ld add home"})))
	require.NoError(t, WriteMessageToWS(ctx, conn, mustMessage(t, messages.MessageTypeClientPosition, messages.ClientPosition{X: 300, Y: 400})))

	// everything arrives before the worker runs, as on a slow tick
	require.Eventually(t, func() bool {
		return hostEventQueue.Size() == 4
	}, time.Second, 5*time.Millisecond)
	worker.ProcessHostEvents(ctx)

	home, err := landmarks.Get(ctx, "alice", "home")
	require.NoError(t, err)
	assert.Equal(t, kinematic.Vector{X: 100, Y: 200}, home)

	pos, err := n.ClientManager.Position(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, kinematic.Vector{X: 300, Y: 400}, pos)
}

func TestNetworkManager_LoginFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, hostEventQueue := newTestNetworkManager()
	conn := dialWS(t, ctx, n)

	require.NoError(t, WriteMessageToWS(ctx, conn, mustMessage(t, messages.MessageTypeClientLogin, messages.ClientLogin{})))

	reply, err := ReadMessageFromWS(ctx, conn)
	require.NoError(t, err)
	require.Equal(t, messages.MessageTypeServerLoginFailure, reply.Type)
	loginFailure := messages.ServerLoginFailure{}
	require.NoError(t, json.Unmarshal(reply.Payload, &loginFailure))
	assert.Contains(t, loginFailure.Reason, "empty token")
	assert.Equal(t, 0, hostEventQueue.Size())
}

func TestNetworkManager_TCPSession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, hostEventQueue := newTestNetworkManager()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	tcpServer := NewTCPServer(NewTCPServerOptions{ConnectionHandler: n.ServeConn})
	go tcpServer.Serve(ctx, listener)

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, WriteMessageToTCP(conn, mustMessage(t, messages.MessageTypeClientLogin, messages.ClientLogin{Token: "bob"})))
	reply, err := ReadMessageFromTCP(conn)
	require.NoError(t, err)
	assert.Equal(t, messages.MessageTypeServerLoginSuccess, reply.Type)

	require.NoError(t, WriteMessageToTCP(conn, mustMessage(t, messages.MessageTypeClientCommand, messages.ClientCommand{Line: "/ld add home"})))

	got := drainEvents(t, hostEventQueue, 2)
	assert.Equal(t, events.SessionStartEvent{UserID: "bob"}, got[0])
	assert.Equal(t, events.CommandEvent{UserID: "bob", Line: "/ld add home"}, got[1])

	require.NoError(t, n.ClientManager.Teleport(ctx, "bob", kinematic.Vector{X: 7, Y: 8}))
	teleportMsg, err := ReadMessageFromTCP(conn)
	require.NoError(t, err)
	assert.Equal(t, messages.MessageTypeServerTeleport, teleportMsg.Type)
}

func TestNetworkManager_TCPDropsOversizeMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, _ := newTestNetworkManager()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	tcpServer := NewTCPServer(NewTCPServerOptions{ConnectionHandler: n.ServeConn})
	go tcpServer.Serve(ctx, listener)

	conn, err := net.Dial("tcp", listener.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	// a few hundred bytes on the wire that would expand to 16 MiB
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	bomb := enc.EncodeAll(make([]byte, 16<<20), nil)
	require.Less(t, len(bomb), messages.MessageBufferSize)
	frame := make([]byte, 4+len(bomb))
	binary.BigEndian.PutUint32(frame, uint32(len(bomb)))
	copy(frame[4:], bomb)
	_, err = conn.Write(frame)
	require.NoError(t, err)

	// the frame is dropped and the connection keeps working
	require.NoError(t, WriteMessageToTCP(conn, mustMessage(t, messages.MessageTypeClientLogin, messages.ClientLogin{Token: "bob"})))
	reply, err := ReadMessageFromTCP(conn)
	require.NoError(t, err)
	assert.Equal(t, messages.MessageTypeServerLoginSuccess, reply.Type)
}

func TestWSServer_OriginCheck(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n := NewNetworkManager(NewNetworkManagerOptions{
		AuthProvider:   authproviders.NewTrustedAuthProvider(),
		ClientManager:  NewClientManager(),
		HostEventQueue: queue.NewInMemoryQueue(8),
		OriginPatterns: []string{"play.example.com"},
	})
	server := httptest.NewServer(n.WSServer.Handler())
	defer server.Close()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	dialFrom := func(origin string) (*websocket.Conn, *http.Response, error) {
		opts := &websocket.DialOptions{}
		if origin != "" {
			opts.HTTPHeader = http.Header{"Origin": []string{origin}}
		}
		return websocket.Dial(ctx, url, opts)
	}

	_, resp, err := dialFrom("https://evil.example.net")
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	for _, origin := range []string{"", "https://play.example.com"} {
		conn, _, err := dialFrom(origin)
		require.NoError(t, err, "origin %q", origin)
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

func TestHealthz(t *testing.T) {
	n, _ := newTestNetworkManager()
	rec := httptest.NewRecorder()
	n.WSServer.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, 200, rec.Code)
}
