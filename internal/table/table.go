// Package table keeps a client-side copy of one poker table in step with the
// server's notification stream and derives the betting values a UI needs.
package table

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertable/internal/actionqueue"
	"github.com/lox/pokertable/internal/cards"
	"github.com/lox/pokertable/internal/protocol"
)

var ErrWrongTable = errors.New("notification for another table")

// Phase is the coarse state of the table, derived from the data.
type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseIdle
	PhasePreflop
	PhaseFlop
	PhaseTurn
	PhaseRiver
	PhaseDistributing
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseIdle:
		return "idle"
	case PhasePreflop:
		return "preflop"
	case PhaseFlop:
		return "flop"
	case PhaseTurn:
		return "turn"
	case PhaseRiver:
		return "river"
	case PhaseDistributing:
		return "distributing"
	default:
		return "unknown"
	}
}

// Timings pace the animated transitions through the action queue.
type Timings struct {
	BetDisplay      time.Duration
	FoldHide        time.Duration
	OpenCards       time.Duration
	MoveToPot       time.Duration
	PotDistribution time.Duration
	StreetReveal    time.Duration
}

// DefaultTimings are the pacing values used by the interactive client.
func DefaultTimings() Timings {
	return Timings{
		BetDisplay:      300 * time.Millisecond,
		FoldHide:        500 * time.Millisecond,
		OpenCards:       400 * time.Millisecond,
		MoveToPot:       400 * time.Millisecond,
		PotDistribution: time.Second,
		StreetReveal:    time.Second,
	}
}

// Options configure a Table. Queue may be shared; when nil a queue is built
// from QueueConfig and Clock and owned by the table.
type Options struct {
	TableID         int64
	MyPlayerID      int64
	Logger          *log.Logger
	Queue           *actionqueue.Queue
	QueueConfig     actionqueue.Config
	Clock           quartz.Clock
	Timings         Timings
	MaxChatMessages int
}

// ChatLine is one deduplicated chat message.
type ChatLine struct {
	MessageID int64
	Sender    string
	Text      string
}

// Snapshot is a deep copy of the table state.
type Snapshot struct {
	Version    uint64
	TableID    int64
	MyPlayerID int64
	Phase      Phase

	Seats     []Seat
	Pots      []int
	Community cards.Cards

	DealerSeat     int
	SmallBlindSeat int
	BigBlindSeat   int
	SmallBlind     int
	BigBlind       int
	Ante           int
	GameType       protocol.GameType
	Limit          protocol.Limit

	BuyIn              int
	BaseBuyIn          int
	MaxBuyIn           int
	MaxPlayers         int
	RejoinMinimumBuyIn int

	GameID           int64
	CurrentPlayerID  int64
	LastRaise        int
	ActionsThisRound int
	AllBetsRounded   bool
	Limits           Limits
	MyLimits         Limits
	LastRake         int

	Frozen       bool
	Opened       bool
	Paused       bool
	Closed       bool
	TournamentID int64

	PendingBetParameters *protocol.TableBetParametersChanged
	PendingGameType      *protocol.TableGameTypeChanged

	Chat []ChatLine
}

// Seat returns the seat held by playerID.
func (s Snapshot) Seat(playerID int64) (Seat, bool) {
	for _, seat := range s.Seats {
		if seat.PlayerID == playerID {
			return seat, true
		}
	}
	return Seat{}, false
}

// Table is the state machine for one table. Notification handlers and queued
// tasks run on different goroutines; all state is guarded by mu.
type Table struct {
	logger    *log.Logger
	queue     *actionqueue.Queue
	ownsQueue bool
	timings   Timings
	maxChat   int

	mu        sync.Mutex
	version   uint64
	resyncs   atomic.Uint64 // bumped under mu by each TableStatusInfo
	observers map[int]func(Snapshot)
	nextObs   int

	id         int64
	me         int64
	connected  bool
	seats      []Seat // ordered by seat number
	pots       []int
	community  cards.Cards
	maxPlayers int

	dealerSeat     int
	smallBlindSeat int
	bigBlindSeat   int
	smallBlind     int
	bigBlind       int
	ante           int
	gameType       protocol.GameType
	limit          protocol.Limit

	buyIn              int
	baseBuyIn          int
	maxBuyIn           int
	rejoinMinimumBuyIn int

	gameID           int64
	currentPlayerID  int64
	lastRaise        int
	actionsThisRound int
	distributing     bool
	lastRake         int

	frozen       bool
	opened       bool
	paused       bool
	closed       bool
	tournamentID int64

	pendingBetParameters *protocol.TableBetParametersChanged
	pendingGameType      *protocol.TableGameTypeChanged

	lastMessageID int64
	lastBet       *protocol.BetAction
	chatSeen      map[int64]struct{}
	chatTrimmed   int64
	chat          []ChatLine
}

// New creates a table in the Connecting phase.
func New(opts Options) *Table {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	t := &Table{
		logger:    logger.WithPrefix("table"),
		queue:     opts.Queue,
		timings:   opts.Timings,
		maxChat:   opts.MaxChatMessages,
		observers: make(map[int]func(Snapshot)),
		id:        opts.TableID,
		me:        opts.MyPlayerID,
		gameType:  protocol.GameHoldem,
		chatSeen:  make(map[int64]struct{}),
	}
	if t.queue == nil {
		t.queue = actionqueue.New(opts.QueueConfig, opts.Clock, logger)
		t.ownsQueue = true
	}
	if t.maxChat <= 0 {
		t.maxChat = 100
	}
	return t
}

// Queue exposes the action queue so callers can wait for pending animations.
func (t *Table) Queue() *actionqueue.Queue {
	return t.queue
}

// Close stops the owned queue.
func (t *Table) Close() {
	if t.ownsQueue {
		t.queue.Close()
	}
}

// Disconnected returns the table to the Connecting phase until the next resync.
func (t *Table) Disconnected() {
	t.mutate(func() { t.connected = false })
}

// Subscribe registers fn to receive a snapshot after every mutation. The
// returned function removes the subscription.
func (t *Table) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

// Snapshot returns a deep copy of the current state.
func (t *Table) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// LimitsFor computes the betting window for any seated player.
func (t *Table) LimitsFor(playerID int64) Limits {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ComputeLimits(t.seats, t.pots, playerID, t.rules())
}

func (t *Table) rules() BettingRules {
	return BettingRules{BigBlind: t.bigBlind, LastRaise: t.lastRaise, Limit: t.limit}
}

func (t *Table) phaseLocked() Phase {
	switch {
	case !t.connected:
		return PhaseConnecting
	case t.distributing:
		return PhaseDistributing
	case t.gameID == 0:
		return PhaseIdle
	}
	switch {
	case len(t.community) >= 5:
		return PhaseRiver
	case len(t.community) == 4:
		return PhaseTurn
	case len(t.community) >= 3:
		return PhaseFlop
	default:
		return PhasePreflop
	}
}

func (t *Table) snapshotLocked() Snapshot {
	seats := make([]Seat, len(t.seats))
	for i := range t.seats {
		seats[i] = t.seats[i].clone()
	}
	s := Snapshot{
		Version:            t.version,
		TableID:            t.id,
		MyPlayerID:         t.me,
		Phase:              t.phaseLocked(),
		Seats:              seats,
		Pots:               slices.Clone(t.pots),
		Community:          t.community.Clone(),
		DealerSeat:         t.dealerSeat,
		SmallBlindSeat:     t.smallBlindSeat,
		BigBlindSeat:       t.bigBlindSeat,
		SmallBlind:         t.smallBlind,
		BigBlind:           t.bigBlind,
		Ante:               t.ante,
		GameType:           t.gameType,
		Limit:              t.limit,
		BuyIn:              t.buyIn,
		BaseBuyIn:          t.baseBuyIn,
		MaxBuyIn:           t.maxBuyIn,
		MaxPlayers:         t.maxPlayers,
		RejoinMinimumBuyIn: t.rejoinMinimumBuyIn,
		GameID:             t.gameID,
		CurrentPlayerID:    t.currentPlayerID,
		LastRaise:          t.lastRaise,
		ActionsThisRound:   t.actionsThisRound,
		AllBetsRounded:     AllBetsRounded(t.seats, t.actionsThisRound),
		Limits:             ComputeLimits(t.seats, t.pots, t.currentPlayerID, t.rules()),
		MyLimits:           ComputeLimits(t.seats, t.pots, t.me, t.rules()),
		LastRake:           t.lastRake,
		Frozen:             t.frozen,
		Opened:             t.opened,
		Paused:             t.paused,
		Closed:             t.closed,
		TournamentID:       t.tournamentID,
		Chat:               slices.Clone(t.chat),
	}
	if t.pendingBetParameters != nil {
		p := *t.pendingBetParameters
		s.PendingBetParameters = &p
	}
	if t.pendingGameType != nil {
		p := *t.pendingGameType
		s.PendingGameType = &p
	}
	return s
}

// mutate applies fn under the lock and notifies observers afterwards.
func (t *Table) mutate(fn func()) {
	t.mu.Lock()
	fn()
	t.publishLocked()
}

// mutateAt is mutate for queued work: fn is skipped when the table was
// resynchronized after gen was taken. It reports whether fn ran.
func (t *Table) mutateAt(gen uint64, fn func()) bool {
	t.mu.Lock()
	if t.resyncs.Load() != gen {
		t.mu.Unlock()
		t.logger.Debug("Skipping update queued before resync")
		return false
	}
	fn()
	t.publishLocked()
	return true
}

// deferred wraps fn for the queue, bound to the current resync generation.
// It does not take mu, so it may be called with mu held.
func (t *Table) deferred(fn func()) func() {
	return t.deferredAt(t.resyncs.Load(), fn)
}

func (t *Table) deferredAt(gen uint64, fn func()) func() {
	return func() { t.mutateAt(gen, fn) }
}

// publishLocked bumps the version, releases mu and notifies observers.
func (t *Table) publishLocked() {
	t.version++
	snap := t.snapshotLocked()
	observers := make([]func(Snapshot), 0, len(t.observers))
	for _, o := range t.observers {
		observers = append(observers, o)
	}
	t.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
}

// inOrder applies fn now when no animation is pending, otherwise queues it
// behind the pending work so notification order is preserved.
func (t *Table) inOrder(fn func()) {
	if t.queue.Len() == 0 && !t.queue.IsExecuting() {
		t.mutate(fn)
		return
	}
	t.queue.PushCallback(t.deferred(fn))
}

func (t *Table) seatByPlayer(playerID int64) *Seat {
	for i := range t.seats {
		if t.seats[i].PlayerID == playerID {
			return &t.seats[i]
		}
	}
	return nil
}

func (t *Table) seatByNumber(seatNo int) *Seat {
	for i := range t.seats {
		if t.seats[i].SeatNo == seatNo {
			return &t.seats[i]
		}
	}
	return nil
}

func (t *Table) sortSeats() {
	slices.SortFunc(t.seats, func(a, b Seat) int { return a.SeatNo - b.SeatNo })
}

// Apply dispatches a decoded notification. Notifications with a non-zero
// sequence at or below the last one seen are dropped.
func (t *Table) Apply(seq int64, n protocol.Notification) error {
	t.mu.Lock()
	if t.id != 0 && n.Table() != 0 && n.Table() != t.id {
		t.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrWrongTable, n.Table())
	}
	if seq != 0 {
		if seq <= t.lastMessageID {
			t.mu.Unlock()
			t.logger.Debug("Dropping replayed notification", "target", n.Target(), "seq", seq)
			return nil
		}
		t.lastMessageID = seq
	}
	t.mu.Unlock()

	switch v := n.(type) {
	case protocol.TableStatusInfo:
		t.OnTableStatusInfo(v)
	case protocol.GameStarted:
		t.OnGameStarted(v.GameID, v.Players, v.Actions, v.DealerSeat)
	case protocol.Bet:
		t.OnBet(v.PlayerID, v.Type, v.Amount, v.NextPlayerID)
	case protocol.OpenCards:
		t.OnOpenCards(v.Cards)
	case protocol.MoveMoneyToPot:
		t.OnMoveMoneyToPot(v.Pots)
	case protocol.MoneyAdded:
		t.OnMoneyAdded(v.PlayerID, v.Amount)
	case protocol.MoneyRemoved:
		t.OnMoneyRemoved(v.PlayerID, v.Amount)
	case protocol.PlayerCards:
		t.OnPlayerCards(v.PlayerID, v.Cards)
	case protocol.PlayerCardOpened:
		t.OnPlayerCardOpened(v.PlayerID, v.Position, v.Card)
	case protocol.PlayerCardsMucked:
		t.OnPlayerCardsMucked(v.PlayerID)
	case protocol.Sit:
		t.OnSit(v.PlayerID, v.PlayerName, v.Seat, v.Money)
	case protocol.Standup:
		t.OnStandup(v.PlayerID)
	case protocol.TableFlagChanged:
		t.onTableFlag(v.Flag, v.On)
	case protocol.GameFinished:
		t.OnGameFinished(v.GameID, v.Winners, v.Rake)
	case protocol.PlayerStatus:
		t.OnPlayerStatus(v.PlayerID, v.Status)
	case protocol.FinalTableCardsOpened:
		t.OnFinalTableCardsOpened(v.Cards)
	case protocol.TableTournamentChanged:
		t.OnTableTournamentChanged(v.TournamentID)
	case protocol.TableBetParametersChanged:
		t.OnTableBetParametersChanged(v.SmallBlind, v.BigBlind, v.Ante)
	case protocol.TableGameTypeChanged:
		t.OnTableGameTypeChanged(v.GameType, v.Limit)
	case protocol.ChatMessage:
		t.OnChatMessage(v.MessageID, v.Sender, v.Text)
	default:
		return fmt.Errorf("%w: %s", protocol.ErrUnknownNotification, n.Target())
	}
	return nil
}
