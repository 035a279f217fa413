package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertable/internal/protocol"
)

const (
	pingInterval = 15 * time.Second
	writeTimeout = 10 * time.Second
)

var (
	ErrNotConnected        = errors.New("not connected")
	ErrDuplicateConnection = errors.New("duplicate connection: another session took over")
	ErrServerClosed        = errors.New("server closed the connection")
)

// Invoker issues a call and waits for its status.
type Invoker interface {
	Invoke(ctx context.Context, method protocol.Method, args ...any) (protocol.Status, error)
}

// Hub is a websocket connection speaking the hub protocol: calls are matched
// to completions by invocation id and server pushes are delivered in order.
type Hub struct {
	conn   *websocket.Conn
	logger *log.Logger
	clock  quartz.Clock

	send          chan *protocol.Envelope
	notifications chan *protocol.Envelope
	done          chan struct{}

	mu      sync.Mutex
	pending map[string]chan protocol.Status
	closed  bool
}

// Dial connects to a hub endpoint. http and https URLs are converted to ws and wss.
func Dial(ctx context.Context, serverURL string, clock quartz.Clock, logger *log.Logger) (*Hub, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}

	logger.Info("Connecting to server", "url", u.String())
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return NewHub(conn, clock, logger), nil
}

// DialConfig dials the configured server, bounded by its connect timeout.
func DialConfig(ctx context.Context, cfg *Config, clock quartz.Clock, logger *log.Logger) (*Hub, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.connectTimeout())
	defer cancel()
	return Dial(ctx, cfg.Server.URL, clock, logger)
}

// NewHub wraps an established connection. Run must be called to start it.
func NewHub(conn *websocket.Conn, clock quartz.Clock, logger *log.Logger) *Hub {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Hub{
		conn:          conn,
		logger:        logger.WithPrefix("hub"),
		clock:         clock,
		send:          make(chan *protocol.Envelope, 64),
		notifications: make(chan *protocol.Envelope, 256),
		done:          make(chan struct{}),
		pending:       make(map[string]chan protocol.Status),
	}
}

// Notifications delivers server pushes in arrival order. It is closed when
// Run returns.
func (h *Hub) Notifications() <-chan *protocol.Envelope {
	return h.notifications
}

// Run pumps the connection until ctx is cancelled or the connection fails.
// A duplicate connection notice ends it with ErrDuplicateConnection.
func (h *Hub) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return h.readPump(gctx) })
	g.Go(func() error { return h.writePump(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		_ = h.conn.Close() // unblocks the read pump
		return nil
	})

	err := g.Wait()

	h.mu.Lock()
	h.closed = true
	for id, ch := range h.pending {
		close(ch)
		delete(h.pending, id)
	}
	h.mu.Unlock()
	close(h.done)
	close(h.notifications)

	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (h *Hub) readPump(ctx context.Context) error {
	for {
		var env protocol.Envelope
		if err := h.conn.ReadJSON(&env); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Error("WebSocket error", "error", err)
			}
			return fmt.Errorf("read: %w", err)
		}

		switch env.Type {
		case protocol.MessageTypeCompletion:
			h.complete(env.InvocationID, env.Result)
		case protocol.MessageTypePing:
		case protocol.MessageTypeClose:
			if env.Error != "" {
				return fmt.Errorf("%w: %s", ErrServerClosed, env.Error)
			}
			return ErrServerClosed
		case protocol.MessageTypeInvocation:
			if env.Target == protocol.TargetDuplicateConnection {
				h.logger.Error("Duplicate connection detected")
				return ErrDuplicateConnection
			}
			h.logger.Debug("Received notification", "target", env.Target, "seq", env.Seq)
			select {
			case h.notifications <- &env:
			case <-ctx.Done():
				return ctx.Err()
			}
		default:
			h.logger.Warn("Ignoring unknown frame", "type", env.Type)
		}
	}
}

func (h *Hub) writePump(ctx context.Context) error {
	ticker := h.clock.NewTicker(pingInterval, "hub", "ping")
	defer ticker.Stop()

	for {
		select {
		case env := <-h.send:
			if err := h.write(env); err != nil {
				return err
			}
		case <-ticker.C:
			if err := h.write(&protocol.Envelope{Type: protocol.MessageTypePing}); err != nil {
				return err
			}
		case <-ctx.Done():
			_ = h.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return ctx.Err()
		}
	}
}

func (h *Hub) write(env *protocol.Envelope) error {
	_ = h.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := h.conn.WriteJSON(env); err != nil {
		h.logger.Error("Failed to write message", "error", err)
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (h *Hub) complete(id string, status protocol.Status) {
	h.mu.Lock()
	ch, ok := h.pending[id]
	delete(h.pending, id)
	h.mu.Unlock()

	if !ok {
		h.logger.Warn("Completion for unknown invocation", "id", id)
		return
	}
	ch <- status
}

// Invoke sends a call and waits for the server's status.
func (h *Hub) Invoke(ctx context.Context, method protocol.Method, args ...any) (protocol.Status, error) {
	id := uuid.NewString()
	env, err := protocol.NewInvocation(id, method, args...)
	if err != nil {
		return "", err
	}

	ch := make(chan protocol.Status, 1)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return "", ErrNotConnected
	}
	h.pending[id] = ch
	h.mu.Unlock()

	forget := func() {
		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
	}

	select {
	case h.send <- env:
	case <-ctx.Done():
		forget()
		return "", ctx.Err()
	case <-h.done:
		return "", ErrNotConnected
	}

	h.logger.Debug("Invoked", "method", method, "id", id)
	select {
	case status, ok := <-ch:
		if !ok {
			return "", ErrNotConnected
		}
		return status, nil
	case <-ctx.Done():
		forget()
		return "", ctx.Err()
	}
}
