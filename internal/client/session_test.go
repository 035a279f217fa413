package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/actionqueue"
	"github.com/lox/pokertable/internal/protocol"
	"github.com/lox/pokertable/internal/table"
)

const testTableID = 7

type invocation struct {
	method protocol.Method
	args   []any
}

// scriptedInvoker records calls and answers them with respond, which gets
// the number of earlier calls to the same method.
type scriptedInvoker struct {
	mu      sync.Mutex
	calls   []invocation
	respond func(ctx context.Context, method protocol.Method, n int) (protocol.Status, error)
}

func (s *scriptedInvoker) Invoke(ctx context.Context, method protocol.Method, args ...any) (protocol.Status, error) {
	s.mu.Lock()
	n := 0
	for _, c := range s.calls {
		if c.method == method {
			n++
		}
	}
	s.calls = append(s.calls, invocation{method: method, args: args})
	respond := s.respond
	s.mu.Unlock()

	if respond == nil {
		return protocol.StatusOk, nil
	}
	return respond(ctx, method, n)
}

func (s *scriptedInvoker) methods() []protocol.Method {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]protocol.Method, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.method
	}
	return out
}

func (s *scriptedInvoker) last() invocation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Table.ID = testTableID
	cfg.Player.ID = 1
	return cfg
}

func newTestTable(t *testing.T, me int64) *table.Table {
	t.Helper()
	tbl := table.New(table.Options{
		TableID:     testTableID,
		MyPlayerID:  me,
		Logger:      testLogger(),
		QueueConfig: actionqueue.Config{DisableWaits: true},
		Timings:     table.DefaultTimings(),
	})
	t.Cleanup(tbl.Close)
	return tbl
}

var errFlaky = errors.New("flaky network")

func TestSessionConnectRetriesJoin(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	trap := mClock.Trap().NewTimer("session", "retry")
	defer trap.Close()

	cfg := testConfig()
	inv := &scriptedInvoker{respond: func(_ context.Context, m protocol.Method, n int) (protocol.Status, error) {
		if m == protocol.MethodJoin && n < 2 {
			return "", errFlaky
		}
		return protocol.StatusOk, nil
	}}
	s := NewSession(cfg, inv, newTestTable(t, 1), mClock, testLogger())

	done := make(chan error, 1)
	go func() { done <- s.Connect(ctx) }()

	for range 2 {
		call := trap.MustWait(ctx)
		assert.Equal(t, cfg.reconnectDelay(), call.Duration)
		call.MustRelease(ctx)
		mClock.Advance(cfg.reconnectDelay()).MustWait(ctx)
	}

	require.NoError(t, waitErr(t, done))
	assert.Equal(t, []protocol.Method{
		protocol.MethodJoin, protocol.MethodJoin, protocol.MethodJoin, protocol.MethodJoinChat,
	}, inv.methods())
	assert.Equal(t, int64(testTableID), inv.last().args[0])
}

func TestSessionConnectGivesUp(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	trap := mClock.Trap().NewTimer("session", "retry")
	defer trap.Close()

	cfg := testConfig()
	cfg.Server.ReconnectAttempts = 1
	inv := &scriptedInvoker{respond: func(context.Context, protocol.Method, int) (protocol.Status, error) {
		return protocol.StatusTableNotFound, nil
	}}
	s := NewSession(cfg, inv, newTestTable(t, 1), mClock, testLogger())

	done := make(chan error, 1)
	go func() { done <- s.Connect(ctx) }()

	call := trap.MustWait(ctx)
	call.MustRelease(ctx)
	mClock.Advance(cfg.reconnectDelay()).MustWait(ctx)

	err := waitErr(t, done)
	require.Error(t, err)
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, protocol.StatusTableNotFound, serr.Status)
	assert.ErrorIs(t, err, ErrUnrecognizedFailure)
	assert.Len(t, inv.methods(), 2)
}

func TestSessionTerminateStopsRetries(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	mClock := quartz.NewMock(t)
	trap := mClock.Trap().NewTimer("session", "retry")
	defer trap.Close()

	inv := &scriptedInvoker{respond: func(context.Context, protocol.Method, int) (protocol.Status, error) {
		return "", errFlaky
	}}
	s := NewSession(testConfig(), inv, newTestTable(t, 1), mClock, testLogger())

	done := make(chan error, 1)
	go func() { done <- s.Connect(ctx) }()

	call := trap.MustWait(ctx)
	s.Terminate()
	call.MustRelease(ctx)
	mClock.Advance(testConfig().reconnectDelay()).MustWait(ctx)

	assert.NoError(t, waitErr(t, done), "a terminated connect is not an error")
	assert.Equal(t, []protocol.Method{protocol.MethodJoin}, inv.methods())
}

func TestSessionTerminatedBeforeConnect(t *testing.T) {
	t.Parallel()

	inv := &scriptedInvoker{}
	s := NewSession(testConfig(), inv, newTestTable(t, 1), quartz.NewMock(t), testLogger())
	s.Terminate()

	require.NoError(t, s.Connect(t.Context()))
	assert.Empty(t, inv.methods())
}

func encode(t *testing.T, n protocol.Notification, seq int64) *protocol.Envelope {
	t.Helper()
	env, err := protocol.Encode(n, seq)
	require.NoError(t, err)
	return env
}

func TestSessionPumpAppliesNotifications(t *testing.T) {
	t.Parallel()

	tbl := newTestTable(t, 1)
	s := NewSession(testConfig(), &scriptedInvoker{}, tbl, nil, testLogger())

	ch := make(chan *protocol.Envelope, 8)
	ch <- encode(t, protocol.TableStatusInfo{
		TableID:    testTableID,
		SmallBlind: 10,
		BigBlind:   20,
		MaxPlayers: 6,
	}, 1)
	ch <- encode(t, protocol.Sit{TableID: testTableID, PlayerID: 3, PlayerName: "carol", Seat: 2, Money: 500}, 2)
	ch <- &protocol.Envelope{Type: protocol.MessageTypeInvocation, Target: "SomethingNew", Seq: 3}
	// Replayed sequence number.
	ch <- encode(t, protocol.MoneyAdded{TableID: testTableID, PlayerID: 3, Amount: 1000}, 2)
	// Another table's traffic.
	ch <- encode(t, protocol.MoneyAdded{TableID: 99, PlayerID: 3, Amount: 1000}, 4)
	ch <- encode(t, protocol.MoneyAdded{TableID: testTableID, PlayerID: 3, Amount: 50}, 5)
	close(ch)

	require.NoError(t, s.Pump(t.Context(), ch))
	require.NoError(t, tbl.Queue().WaitIdle(t.Context()))

	snap := tbl.Snapshot()
	seat, ok := snap.Seat(3)
	require.True(t, ok)
	assert.Equal(t, 550, seat.Money)
	assert.Equal(t, table.PhaseConnecting, snap.Phase, "closing the stream marks the table disconnected")
}

func TestSessionPumpDuplicateConnection(t *testing.T) {
	t.Parallel()

	s := NewSession(testConfig(), &scriptedInvoker{}, newTestTable(t, 1), nil, testLogger())
	ch := make(chan *protocol.Envelope, 1)
	ch <- &protocol.Envelope{Type: protocol.MessageTypeInvocation, Target: protocol.TargetDuplicateConnection}

	assert.ErrorIs(t, s.Pump(t.Context(), ch), ErrDuplicateConnection)
}

func TestSessionResync(t *testing.T) {
	t.Parallel()

	inv := &scriptedInvoker{}
	s := NewSession(testConfig(), inv, newTestTable(t, 1), nil, testLogger())

	require.NoError(t, s.Resync(t.Context()))
	assert.Equal(t, []protocol.Method{protocol.MethodJoin}, inv.methods())

	inv.respond = func(context.Context, protocol.Method, int) (protocol.Status, error) {
		return protocol.StatusTableNotFound, nil
	}
	assert.ErrorIs(t, s.Resync(t.Context()), ErrUnrecognizedFailure)
}
