package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/protocol"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// fakeServer accepts websocket connections and hands them to the test,
// which plays the server side of the hub protocol.
type fakeServer struct {
	url   string
	conns chan *websocket.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{conns: make(chan *websocket.Conn, 1)}
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		fs.conns <- conn
	}))
	t.Cleanup(srv.Close)
	fs.url = srv.URL + "/hub"
	return fs
}

func (fs *fakeServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-fs.conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for connection")
		return nil
	}
}

// startHub dials the fake server and runs the hub until the test ends.
func startHub(t *testing.T) (*Hub, *websocket.Conn, <-chan error) {
	t.Helper()
	fs := newFakeServer(t)

	hub, err := Dial(t.Context(), fs.url, nil, testLogger())
	require.NoError(t, err)
	conn := fs.accept(t)

	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()
	return hub, conn, done
}

// readCall reads frames until a client invocation arrives.
func readCall(conn *websocket.Conn) (*protocol.Envelope, error) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var env protocol.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return nil, err
		}
		if env.Type == protocol.MessageTypeInvocation {
			return &env, nil
		}
	}
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Timeout waiting for result")
		return nil
	}
}

func TestHubInvokeMatchesCompletion(t *testing.T) {
	t.Parallel()

	hub, conn, _ := startHub(t)

	received := make(chan *protocol.Envelope, 1)
	go func() {
		env, err := readCall(conn)
		if err != nil {
			return
		}
		received <- env
		_ = conn.WriteJSON(protocol.NewCompletion("someone-else", protocol.StatusOk))
		_ = conn.WriteJSON(protocol.NewCompletion(env.InvocationID, protocol.StatusSeatAlreadyTaken))
	}()

	status, err := hub.Invoke(t.Context(), protocol.MethodSit, int64(7), 3, 500, "")
	require.NoError(t, err)
	assert.Equal(t, protocol.StatusSeatAlreadyTaken, status)

	env := <-received
	assert.Equal(t, string(protocol.MethodSit), env.Target)
	assert.NotEmpty(t, env.InvocationID)
	require.Len(t, env.Arguments, 4)
	assert.JSONEq(t, "7", string(env.Arguments[0]))
	assert.JSONEq(t, "3", string(env.Arguments[1]))
}

func TestHubDeliversNotificationsInOrder(t *testing.T) {
	t.Parallel()

	hub, conn, _ := startHub(t)

	for seq := int64(1); seq <= 3; seq++ {
		env, err := protocol.NewNotification(protocol.TargetMoneyAdded, seq, int64(7), int64(2), int(seq*100))
		require.NoError(t, err)
		require.NoError(t, conn.WriteJSON(env))
	}

	for seq := int64(1); seq <= 3; seq++ {
		select {
		case env := <-hub.Notifications():
			assert.Equal(t, seq, env.Seq)
			n, err := protocol.Decode(env)
			require.NoError(t, err)
			assert.Equal(t, protocol.MoneyAdded{TableID: 7, PlayerID: 2, Amount: int(seq * 100)}, n)
		case <-time.After(5 * time.Second):
			t.Fatalf("Timeout waiting for notification %d", seq)
		}
	}
}

func TestHubDuplicateConnectionEndsRun(t *testing.T) {
	t.Parallel()

	hub, conn, done := startHub(t)

	invoked := make(chan error, 1)
	go func() {
		_, err := hub.Invoke(t.Context(), protocol.MethodJoin, int64(7))
		invoked <- err
	}()

	_, err := readCall(conn)
	require.NoError(t, err)
	dup, err := protocol.NewNotification(protocol.TargetDuplicateConnection, 0)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(dup))

	assert.ErrorIs(t, waitErr(t, done), ErrDuplicateConnection)
	assert.ErrorIs(t, waitErr(t, invoked), ErrNotConnected)

	_, open := <-hub.Notifications()
	assert.False(t, open, "notifications should be closed")
}

func TestHubServerClose(t *testing.T) {
	t.Parallel()

	_, conn, done := startHub(t)
	require.NoError(t, conn.WriteJSON(&protocol.Envelope{Type: protocol.MessageTypeClose, Error: "maintenance"}))

	err := waitErr(t, done)
	assert.ErrorIs(t, err, ErrServerClosed)
	assert.Contains(t, err.Error(), "maintenance")
}

func TestHubCancelStopsCleanly(t *testing.T) {
	t.Parallel()

	fs := newFakeServer(t)
	hub, err := Dial(t.Context(), fs.url, nil, testLogger())
	require.NoError(t, err)
	fs.accept(t)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- hub.Run(ctx) }()

	cancel()
	assert.NoError(t, waitErr(t, done))

	_, err = hub.Invoke(t.Context(), protocol.MethodLeave, int64(7))
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestHubInvokeTimeoutForgetsCall(t *testing.T) {
	t.Parallel()

	hub, _, _ := startHub(t)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err := hub.Invoke(ctx, protocol.MethodFold, int64(7))
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	hub.mu.Lock()
	defer hub.mu.Unlock()
	assert.Empty(t, hub.pending)
}

func TestDialRejectsBadURL(t *testing.T) {
	t.Parallel()

	_, err := Dial(t.Context(), "://nope", nil, testLogger())
	assert.Error(t, err)
}
