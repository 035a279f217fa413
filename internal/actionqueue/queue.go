// Package actionqueue sequences asynchronous table work so that exactly one
// task runs at a time, with optional pacing between tasks.
package actionqueue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// DefaultInterruptionStep is the sub-wait length used by the interruptible waits.
const DefaultInterruptionStep = 200 * time.Millisecond

// ErrClosed is returned by WaitIdle after Close.
var ErrClosed = errors.New("action queue closed")

// Task is a deferred unit of work.
type Task func(ctx context.Context) error

// Config controls pacing.
type Config struct {
	// Pause is slept between two tasks when more work is queued.
	Pause time.Duration
	// DisableWaits turns every wait task and the pause into a no-op.
	DisableWaits bool
	// InterruptionStep splits interruptible waits; zero means DefaultInterruptionStep.
	InterruptionStep time.Duration
}

// Queue runs tasks one at a time. Push appends, Inject prepends.
type Queue struct {
	cfg    Config
	clock  quartz.Clock
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	tasks     []Task
	executing bool
	current   chan struct{} // closed when the in-flight task returns
	idle      chan struct{} // closed when the drain loop exits
}

// New creates a queue. A nil clock means the real clock.
func New(cfg Config, clock quartz.Clock, logger *log.Logger) *Queue {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.InterruptionStep <= 0 {
		cfg.InterruptionStep = DefaultInterruptionStep
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		cfg:    cfg,
		clock:  clock,
		logger: logger.WithPrefix("actionqueue"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Config returns the pacing configuration.
func (q *Queue) Config() Config {
	return q.cfg
}

// Push appends a task and starts draining.
func (q *Queue) Push(task Task) {
	if !q.add(task, false) {
		return
	}
	q.Execute()
}

// Inject puts a task ahead of everything queued, behind the in-flight task.
func (q *Queue) Inject(task Task) {
	if !q.add(task, true) {
		return
	}
	q.Execute()
}

func (q *Queue) add(task Task, front bool) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.ctx.Err() != nil {
		return false
	}
	if front {
		q.tasks = append([]Task{task}, q.tasks...)
	} else {
		q.tasks = append(q.tasks, task)
	}
	return true
}

// PushCallback appends a synchronous callback.
func (q *Queue) PushCallback(fn func()) {
	q.Push(callbackTask(fn))
}

// InjectCallback prepends a synchronous callback.
func (q *Queue) InjectCallback(fn func()) {
	q.Inject(callbackTask(fn))
}

func callbackTask(fn func()) Task {
	return func(context.Context) error {
		fn()
		return nil
	}
}

// Wait appends a task that only delays.
func (q *Queue) Wait(d time.Duration) {
	q.Push(q.waitTask(d))
}

// InjectWait prepends a task that only delays.
func (q *Queue) InjectWait(d time.Duration) {
	q.Inject(q.waitTask(d))
}

// WaitWithInterruption appends a delay split into InterruptionStep pieces so
// injected tasks can run before the full delay has elapsed.
func (q *Queue) WaitWithInterruption(d time.Duration) {
	for _, step := range q.steps(d) {
		q.Push(q.waitTask(step))
	}
}

// InjectWaitWithInterruption prepends a split delay; its pieces run in order.
func (q *Queue) InjectWaitWithInterruption(d time.Duration) {
	steps := q.steps(d)
	for i := len(steps) - 1; i >= 0; i-- {
		q.Inject(q.waitTask(steps[i]))
	}
}

func (q *Queue) steps(d time.Duration) []time.Duration {
	if d <= 0 {
		return nil
	}
	step := q.cfg.InterruptionStep
	var out []time.Duration
	for d > step {
		out = append(out, step)
		d -= step
	}
	return append(out, d)
}

func (q *Queue) waitTask(d time.Duration) Task {
	return func(ctx context.Context) error {
		return q.sleep(ctx, d)
	}
}

func (q *Queue) sleep(ctx context.Context, d time.Duration) error {
	if q.cfg.DisableWaits || d <= 0 {
		return nil
	}
	timer := q.clock.NewTimer(d, "actionqueue", "wait")
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Clear drops all pending tasks. The in-flight task keeps running.
func (q *Queue) Clear() {
	q.mu.Lock()
	dropped := len(q.tasks)
	q.tasks = nil
	q.mu.Unlock()

	if dropped > 0 {
		q.logger.Debug("Cleared pending tasks", "count", dropped)
	}
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// IsExecuting reports whether the drain loop is active.
func (q *Queue) IsExecuting() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.executing
}

// Execute starts the drain loop. It is a no-op while already executing or
// when nothing is queued. The head task is taken before Execute returns, so
// tasks added afterwards, injected ones included, run after it.
func (q *Queue) Execute() {
	q.mu.Lock()
	if q.executing || len(q.tasks) == 0 || q.ctx.Err() != nil {
		q.mu.Unlock()
		return
	}
	q.executing = true
	q.idle = make(chan struct{})
	task, done := q.nextLocked()
	q.mu.Unlock()

	go q.drain(task, done)
}

// nextLocked dequeues the head task and marks it in flight.
func (q *Queue) nextLocked() (Task, chan struct{}) {
	task := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	done := make(chan struct{})
	q.current = done
	return task, done
}

func (q *Queue) drain(task Task, done chan struct{}) {
	for {
		q.run(task)
		close(done)

		if q.cfg.Pause > 0 && q.Len() > 0 {
			_ = q.sleep(q.ctx, q.cfg.Pause)
		}

		q.mu.Lock()
		if len(q.tasks) == 0 || q.ctx.Err() != nil {
			q.executing = false
			q.current = nil
			close(q.idle)
			q.mu.Unlock()
			return
		}
		task, done = q.nextLocked()
		q.mu.Unlock()
	}
}

// run executes one task, logging errors and recovering panics so that a
// failing task never stalls the queue.
func (q *Queue) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("Task panicked", "panic", fmt.Sprint(r))
		}
	}()

	if err := task(q.ctx); err != nil && !errors.Is(err, context.Canceled) {
		q.logger.Error("Task failed", "error", err)
	}
}

// WaitCurrentTask blocks until the in-flight task, if any, has returned.
// It does not wait for queued tasks.
func (q *Queue) WaitCurrentTask(ctx context.Context) error {
	q.mu.Lock()
	current := q.current
	q.mu.Unlock()

	if current == nil {
		return nil
	}
	select {
	case <-current:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitIdle blocks until the queue is empty and nothing is executing.
func (q *Queue) WaitIdle(ctx context.Context) error {
	for {
		q.mu.Lock()
		if !q.executing && len(q.tasks) == 0 {
			q.mu.Unlock()
			return nil
		}
		if q.ctx.Err() != nil && !q.executing {
			q.mu.Unlock()
			return ErrClosed
		}
		idle := q.idle
		q.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close drops pending tasks, aborts an in-flight wait and ignores further work.
func (q *Queue) Close() {
	q.cancel()
	q.Clear()
}
