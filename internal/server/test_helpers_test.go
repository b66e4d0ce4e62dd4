package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/pilcrowe/diceduel/internal/randutil"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// newTestConn builds a connection with no socket behind it, for
// exercising the registry and room logic directly. sendBuffer controls
// how many broadcasts it can absorb before Send starts failing.
func newTestConn(t *testing.T, sendBuffer int) *Connection {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		id:     uuid.NewString(),
		send:   make(chan *Message, sendBuffer),
		logger: testLogger(),
		ctx:    ctx,
		cancel: cancel,
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newTestRegistry(t *testing.T) (*Registry, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return NewRegistry(randutil.New(42), clock, testLogger()), clock
}

// testClient wraps a raw WebSocket for driving the server end to end.
type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	registry := NewRegistry(randutil.New(42), quartz.NewReal(), testLogger())
	srv := NewServer("127.0.0.1:0", registry, testLogger())
	go srv.run()
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dialTestServer(t *testing.T, ts *httptest.Server) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(msgType MessageType, data interface{}) {
	c.t.Helper()
	msg, err := NewMessage(msgType, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

func (c *testClient) read() *Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(c.t, c.conn.ReadJSON(&msg))
	return &msg
}

func (c *testClient) readType(want MessageType) *Message {
	c.t.Helper()
	msg := c.read()
	require.Equal(c.t, want, msg.Type, "unexpected message: %s", string(msg.Data))
	return msg
}

func (c *testClient) readSnapshot() *RoomSnapshot {
	c.t.Helper()
	return decodeSnapshot(c.t, c.readType(MessageTypeUpdate))
}

func decodeSnapshot(t *testing.T, msg *Message) *RoomSnapshot {
	t.Helper()
	var snap RoomSnapshot
	require.NoError(t, json.Unmarshal(msg.Data, &snap))
	return &snap
}

func decodeError(t *testing.T, msg *Message) *ErrorData {
	t.Helper()
	var data ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return &data
}
