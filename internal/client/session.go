package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertable/internal/protocol"
	"github.com/lox/pokertable/internal/table"
)

// Session joins a table and feeds its notifications into the table state.
type Session struct {
	hub        Invoker
	table      *table.Table
	tableID    int64
	attempts   int
	delay      time.Duration
	clock      quartz.Clock
	logger     *log.Logger
	terminated atomic.Bool
}

// NewSession creates a session for the configured table.
func NewSession(cfg *Config, hub Invoker, tbl *table.Table, clock quartz.Clock, logger *log.Logger) *Session {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Session{
		hub:      hub,
		table:    tbl,
		tableID:  cfg.Table.ID,
		attempts: cfg.Server.ReconnectAttempts,
		delay:    cfg.reconnectDelay(),
		clock:    clock,
		logger:   logger.WithPrefix("session"),
	}
}

// Terminate cancels an in-progress Connect. The retry chain stops at its
// next step and Connect returns without error.
func (s *Session) Terminate() {
	s.terminated.Store(true)
}

// Connect joins the table and then its chat, retrying each step.
func (s *Session) Connect(ctx context.Context) error {
	if err := s.retry(ctx, protocol.MethodJoin, s.tableID); err != nil {
		if errors.Is(err, errTerminated) {
			return nil
		}
		return err
	}
	if err := s.retry(ctx, protocol.MethodJoinChat, s.tableID); err != nil {
		if errors.Is(err, errTerminated) {
			return nil
		}
		return err
	}
	s.logger.Info("Joined table", "table", s.tableID)
	return nil
}

// Resync asks the server for a fresh table status by rejoining.
func (s *Session) Resync(ctx context.Context) error {
	status, err := s.hub.Invoke(ctx, protocol.MethodJoin, s.tableID)
	if err != nil {
		return fmt.Errorf("resync: %w", err)
	}
	if !status.OK() {
		return &StatusError{Method: protocol.MethodJoin, Status: status}
	}
	s.logger.Debug("Requested resync", "table", s.tableID)
	return nil
}

var errTerminated = errors.New("session terminated")

func (s *Session) retry(ctx context.Context, method protocol.Method, args ...any) error {
	var lastErr error
	for attempt := 0; attempt <= s.attempts; attempt++ {
		if s.terminated.Load() {
			return errTerminated
		}
		if attempt > 0 {
			if err := s.sleep(ctx, s.delay); err != nil {
				return err
			}
			if s.terminated.Load() {
				return errTerminated
			}
		}

		status, err := s.hub.Invoke(ctx, method, args...)
		switch {
		case err == nil && status.OK():
			return nil
		case err != nil:
			lastErr = err
		default:
			lastErr = &StatusError{Method: method, Status: status}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("Call failed, retrying", "method", method, "attempt", attempt+1, "error", lastErr)
	}
	return fmt.Errorf("%s failed after %d attempts: %w", method, s.attempts+1, lastErr)
}

func (s *Session) sleep(ctx context.Context, d time.Duration) error {
	timer := s.clock.NewTimer(d, "session", "retry")
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pump applies notifications until the channel closes or ctx ends.
// Undecodable frames are logged and skipped.
func (s *Session) Pump(ctx context.Context, notifications <-chan *protocol.Envelope) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-notifications:
			if !ok {
				s.table.Disconnected()
				return nil
			}
			n, err := protocol.Decode(env)
			if err != nil {
				s.logger.Warn("Dropping notification", "target", env.Target, "error", err)
				continue
			}
			if _, dup := n.(protocol.DuplicateConnection); dup {
				return ErrDuplicateConnection
			}
			if err := s.table.Apply(env.Seq, n); err != nil {
				s.logger.Warn("Notification not applied", "target", env.Target, "error", err)
			}
		}
	}
}
