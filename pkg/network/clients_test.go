package network

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/cbodonnell/landmark/pkg/host"
	"github.com/cbodonnell/landmark/pkg/kinematic"
	"github.com/cbodonnell/landmark/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	lock    sync.Mutex
	written []*messages.Message
	closed  bool
}

func (c *fakeConn) WriteMessage(ctx context.Context, msg *messages.Message) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.written = append(c.written, msg)
	return nil
}

func (c *fakeConn) RemoteAddr() string {
	return "fake"
}

func (c *fakeConn) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) messages() []*messages.Message {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]*messages.Message(nil), c.written...)
}

func TestClientManager_Position(t *testing.T) {
	ctx := context.Background()
	cm := NewClientManager()

	_, err := cm.Position(ctx, "alice")
	assert.ErrorIs(t, err, host.ErrUserOffline)

	sessionID, err := cm.ConnectClient(&fakeConn{}, "alice")
	require.NoError(t, err)

	_, err = cm.Position(ctx, "alice")
	assert.ErrorIs(t, err, host.ErrNoPosition)

	require.NoError(t, cm.SetPosition(sessionID, kinematic.Vector{X: 3, Y: 4}))
	pos, err := cm.Position(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, kinematic.Vector{X: 3, Y: 4}, pos)

	err = cm.SetPosition("missing", kinematic.Vector{})
	assert.True(t, IsSessionNotFound(err))
}

func TestClientManager_TeleportAndChat(t *testing.T) {
	ctx := context.Background()
	cm := NewClientManager()
	conn := &fakeConn{}
	_, err := cm.ConnectClient(conn, "alice")
	require.NoError(t, err)

	require.NoError(t, cm.Teleport(ctx, "alice", kinematic.Vector{X: 10, Y: -2.5}))
	require.NoError(t, cm.SendMessage(ctx, "alice", messages.ChatCategorySuccess, "hello"))

	written := conn.messages()
	require.Len(t, written, 2)

	assert.Equal(t, messages.MessageTypeServerTeleport, written[0].Type)
	teleport := messages.ServerTeleport{}
	require.NoError(t, json.Unmarshal(written[0].Payload, &teleport))
	assert.Equal(t, messages.ServerTeleport{X: 10, Y: -2.5}, teleport)

	assert.Equal(t, messages.MessageTypeServerChat, written[1].Type)
	chat := messages.ServerChat{}
	require.NoError(t, json.Unmarshal(written[1].Payload, &chat))
	assert.Equal(t, messages.ServerChat{Category: messages.ChatCategorySuccess, Text: "hello"}, chat)

	// a teleport updates the known position until the host reports again
	pos, err := cm.Position(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, kinematic.Vector{X: 10, Y: -2.5}, pos)

	assert.ErrorIs(t, cm.Teleport(ctx, "bob", kinematic.Vector{}), host.ErrUserOffline)
	assert.ErrorIs(t, cm.SendMessage(ctx, "bob", messages.ChatCategoryInfo, "hi"), host.ErrUserOffline)
}

func TestClientManager_ReplaceAndDisconnect(t *testing.T) {
	ctx := context.Background()
	cm := NewClientManager()

	first := &fakeConn{}
	firstID, err := cm.ConnectClient(first, "alice")
	require.NoError(t, err)

	second := &fakeConn{}
	secondID, err := cm.ConnectClient(second, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)
	assert.True(t, first.closed)
	assert.Equal(t, 1, cm.Count())

	// the stale session going away must not drop the new one
	cm.DisconnectClient(firstID)
	require.NoError(t, cm.SendMessage(ctx, "alice", messages.ChatCategoryInfo, "still here"))
	assert.Len(t, second.messages(), 1)

	userID, err := cm.UserID(secondID)
	require.NoError(t, err)
	assert.Equal(t, "alice", userID)

	cm.DisconnectClient(secondID)
	assert.Equal(t, 0, cm.Count())
	assert.ErrorIs(t, cm.SendMessage(ctx, "alice", messages.ChatCategoryInfo, "gone"), host.ErrUserOffline)
}
