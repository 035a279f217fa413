package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertable/internal/protocol"
	"github.com/lox/pokertable/internal/table"
)

var (
	ErrActionPending       = errors.New("another action is still pending")
	ErrNotSeated           = errors.New("local player is not seated at the table")
	ErrNotValidAtThisTime  = errors.New("operation not valid at this time")
	ErrTableFrozen         = errors.New("operation not valid while the table is frozen")
	ErrInsufficientFunds   = errors.New("not sufficient funds")
	ErrSeatTaken           = errors.New("seat already taken")
	ErrUnrecognizedFailure = errors.New("call rejected")
)

var statusErrors = map[protocol.Status]error{
	protocol.StatusOperationNotValidAtThisTime:      ErrNotValidAtThisTime,
	protocol.StatusOperationNotValidWhenTableFrozen: ErrTableFrozen,
	protocol.StatusNotSufficientFunds:               ErrInsufficientFunds,
	protocol.StatusSeatAlreadyTaken:                 ErrSeatTaken,
}

// StatusError is a call the server answered with a non-Ok status.
type StatusError struct {
	Method protocol.Method
	Status protocol.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Status)
}

func (e *StatusError) Is(target error) bool {
	if err, ok := statusErrors[e.Status]; ok {
		return target == err
	}
	return target == ErrUnrecognizedFailure
}

// Controller issues the local player's table actions. Only one action may be
// outstanding at a time.
type Controller struct {
	hub     Invoker
	table   *table.Table
	resync  func(ctx context.Context) error
	tableID int64
	timeout time.Duration
	logger  *log.Logger
	pending atomic.Bool
}

// NewController creates a controller. resync is called when the server
// reports that the local state is stale.
func NewController(cfg *Config, hub Invoker, tbl *table.Table, resync func(ctx context.Context) error, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Controller{
		hub:     hub,
		table:   tbl,
		resync:  resync,
		tableID: cfg.Table.ID,
		timeout: cfg.requestTimeout(),
		logger:  logger.WithPrefix("controller"),
	}
}

func (c *Controller) call(ctx context.Context, method protocol.Method, args ...any) error {
	if !c.pending.CompareAndSwap(false, true) {
		return ErrActionPending
	}
	defer c.pending.Store(false)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	status, err := c.hub.Invoke(ctx, method, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if status.OK() {
		return nil
	}

	serr := &StatusError{Method: method, Status: status}
	c.logger.Warn("Action rejected", "method", method, "status", status)
	if status == protocol.StatusOperationNotValidAtThisTime && c.resync != nil {
		if err := c.resync(ctx); err != nil {
			c.logger.Error("Resync failed", "error", err)
		}
	}
	return serr
}

func (c *Controller) Join(ctx context.Context) error {
	return c.call(ctx, protocol.MethodJoin, c.tableID)
}

func (c *Controller) Leave(ctx context.Context) error {
	return c.call(ctx, protocol.MethodLeave, c.tableID)
}

func (c *Controller) Fold(ctx context.Context) error {
	return c.call(ctx, protocol.MethodFold, c.tableID)
}

func (c *Controller) CheckOrCall(ctx context.Context) error {
	return c.call(ctx, protocol.MethodCheckOrCall, c.tableID)
}

// BetOrRaise raises to amount, clamped into the current legal window. It
// fails with ErrNotSeated when the local player has no seat, since there is
// no window to clamp into.
func (c *Controller) BetOrRaise(ctx context.Context, amount int) error {
	snap := c.table.Snapshot()
	if _, ok := snap.Seat(snap.MyPlayerID); !ok || snap.MyPlayerID == 0 {
		return fmt.Errorf("%s: %w", protocol.MethodBetOrRaise, ErrNotSeated)
	}
	clamped := c.table.LimitsFor(snap.MyPlayerID).ClampRaise(amount)
	if clamped != amount {
		c.logger.Debug("Clamped raise", "requested", amount, "amount", clamped)
	}
	return c.call(ctx, protocol.MethodBetOrRaise, c.tableID, clamped)
}

func (c *Controller) Sit(ctx context.Context, seat, amount int, ticketCode string) error {
	return c.call(ctx, protocol.MethodSit, c.tableID, seat, amount, ticketCode)
}

func (c *Controller) Standup(ctx context.Context) error {
	return c.call(ctx, protocol.MethodStandup, c.tableID)
}

func (c *Controller) ShowCards(ctx context.Context) error {
	return c.call(ctx, protocol.MethodShowCards, c.tableID)
}

func (c *Controller) Muck(ctx context.Context) error {
	return c.call(ctx, protocol.MethodMuck, c.tableID)
}

// ShowHoleCard reveals one hole card at a 0-based position.
func (c *Controller) ShowHoleCard(ctx context.Context, position int) error {
	return c.call(ctx, protocol.MethodShowHoleCard, c.tableID, position)
}

func (c *Controller) SetTableParameters(ctx context.Context, openCardsAutomatically bool) error {
	return c.call(ctx, protocol.MethodSetTableParameters, c.tableID, openCardsAutomatically)
}

func (c *Controller) AddBalance(ctx context.Context, amount int, ticketCode string) error {
	return c.call(ctx, protocol.MethodAddBalance, c.tableID, amount, ticketCode)
}

func (c *Controller) ChangeWaitQueueSettings(ctx context.Context, waitBigBlind bool) error {
	return c.call(ctx, protocol.MethodChangeWaitQueueSettings, c.tableID, waitBigBlind)
}
