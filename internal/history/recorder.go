package history

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertable/internal/cards"
	"github.com/lox/pokertable/internal/protocol"
	"github.com/lox/pokertable/internal/table"
)

// Recorder rebuilds hand histories from table snapshots. Subscribe Observe to
// a table; each hand is written to dir when the table moves past it.
type Recorder struct {
	dir    string
	me     int64
	clock  quartz.Clock
	logger *log.Logger

	mu      sync.Mutex
	version uint64
	cur     *handState
	last    *Hand
	stats   Stats
}

type handState struct {
	tableID  int64
	gameID   int64
	omaha    bool
	hand     *Hand
	index    map[int64]int
	holes    []cards.Cards
	shown    []bool
	board    int
	bets     map[int64]int
	roundMax int
	folded   map[int64]bool
	acted    map[int64]bool
	settled  bool
}

// NewRecorder records hands into dir, which is created on first write. An
// empty dir keeps statistics without writing files. Results are tracked for
// myPlayerID.
func NewRecorder(dir string, myPlayerID int64, clock quartz.Clock, logger *log.Logger) *Recorder {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Recorder{
		dir:    dir,
		me:     myPlayerID,
		clock:  clock,
		logger: logger.WithPrefix("history"),
	}
}

// Observe consumes one snapshot. Snapshots older than the last one seen are
// ignored.
func (r *Recorder) Observe(s table.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s.Version != 0 && s.Version <= r.version {
		return
	}
	r.version = s.Version

	if s.Phase == table.PhaseConnecting {
		if r.cur != nil {
			r.logger.Debug("Dropping hand after disconnect", "game", r.cur.gameID)
		}
		r.cur = nil
		return
	}
	if r.cur != nil && s.GameID != r.cur.gameID {
		r.finishLocked()
	}
	if s.GameID == 0 {
		return
	}
	if r.cur == nil {
		r.cur = r.start(s)
		return
	}
	r.track(s)
}

// Flush writes the current hand if its pots have been settled.
func (r *Recorder) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cur != nil {
		r.finishLocked()
	}
}

// Stats returns the session statistics so far.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats.Clone()
}

// Last returns the most recently finished hand, or nil.
func (r *Recorder) Last() *Hand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *Recorder) start(s table.Snapshot) *handState {
	h := &Hand{
		Variant:   variant(s.GameType),
		Table:     strconv.FormatInt(s.TableID, 10),
		SeatCount: s.MaxPlayers,
		MinBet:    s.BigBlind,
		HandID:    strconv.FormatInt(s.GameID, 10),
		Timestamp: r.clock.Now(),
		Metadata: map[string]any{
			"limit":     s.Limit.String(),
			"game_type": s.GameType.String(),
		},
	}
	st := &handState{
		tableID: s.TableID,
		gameID:  s.GameID,
		omaha:   s.GameType == protocol.GameOmaha,
		hand:    h,
		index:   make(map[int64]int),
		bets:    make(map[int64]int),
		folded:  make(map[int64]bool),
		acted:   make(map[int64]bool),
		board:   len(s.Community),
	}

	for _, seat := range s.Seats {
		if !seat.Status.IsInGame() {
			continue
		}
		stack := seat.Money + seat.Bet + seat.TotalBet
		st.index[seat.PlayerID] = len(h.Players)
		h.Seats = append(h.Seats, seat.SeatNo)
		h.Players = append(h.Players, seat.PlayerName)
		h.Antes = append(h.Antes, seat.TotalBet)
		h.BlindsOrStraddles = append(h.BlindsOrStraddles, seat.Bet)
		h.StartingStacks = append(h.StartingStacks, stack)
		h.FinishingStacks = append(h.FinishingStacks, stack)
		h.Winnings = append(h.Winnings, 0)
		st.holes = append(st.holes, knownOrNil(seat.RawCards))
		st.shown = append(st.shown, false)
		st.bets[seat.PlayerID] = seat.Bet
		st.roundMax = max(st.roundMax, seat.Bet)
	}
	r.logger.Debug("Recording hand", "game", s.GameID, "players", len(h.Players))
	return st
}

func (r *Recorder) track(s table.Snapshot) {
	st := r.cur
	h := st.hand

	if len(s.Community) > st.board {
		h.Actions = append(h.Actions, "d db "+cardString(s.Community[st.board:]))
		st.board = len(s.Community)
		clear(st.bets)
		clear(st.acted)
		st.roundMax = 0
	}

	for _, seat := range s.Seats {
		i, ok := st.index[seat.PlayerID]
		if !ok {
			continue
		}
		if hole := knownOrNil(seat.RawCards); hole != nil {
			st.holes[i] = hole
		}

		before := st.bets[seat.PlayerID]
		var action string
		switch {
		case seat.Folded && !st.folded[seat.PlayerID]:
			st.folded[seat.PlayerID] = true
			action = "fold"
		case seat.Bet > before && seat.Bet > st.roundMax:
			st.roundMax = seat.Bet
			action = "raise"
		case seat.Bet > before:
			action = "call"
		case seat.ActedThisRound && !st.acted[seat.PlayerID] && seat.Bet == before:
			action = "check"
		}
		if action != "" {
			if formatted, ok := formatAction(i, action, seat.Bet); ok {
				h.Actions = append(h.Actions, formatted)
			}
		}
		st.bets[seat.PlayerID] = seat.Bet
		st.acted[seat.PlayerID] = seat.ActedThisRound

		if seat.Combination != nil {
			st.shown[i] = true
		}
		if seat.WinAmount > 0 {
			st.settled = true
		}
		h.FinishingStacks[i] = seat.Money + seat.Bet + seat.TotalBet
		if s.Phase == table.PhaseDistributing {
			h.FinishingStacks[i] = seat.Money
		}
		h.Winnings[i] = seat.WinAmount
	}
}

func (r *Recorder) finishLocked() {
	st := r.cur
	r.cur = nil
	if !st.settled {
		r.logger.Debug("Dropping unsettled hand", "game", st.gameID)
		return
	}
	h := st.hand

	holeCount := 2
	if st.omaha {
		holeCount = 4
	}
	deals := make([]string, len(h.Players))
	for i, hole := range st.holes {
		dealt := cardString(hole)
		if dealt == "" {
			dealt = strings.Repeat("??", holeCount)
		}
		deals[i] = fmt.Sprintf("d dh p%d %s", i+1, dealt)
	}
	h.Actions = append(deals, h.Actions...)
	for i, shown := range st.shown {
		if shown && st.holes[i] != nil {
			h.Actions = append(h.Actions, fmt.Sprintf("p%d sm %s", i+1, cardString(st.holes[i])))
		}
	}
	h.stampTime()

	r.last = h
	if i, ok := st.index[r.me]; ok {
		r.stats.Add(ResultFor(h, i))
	}
	if r.dir == "" {
		return
	}
	if err := r.write(st.tableID, h); err != nil {
		r.logger.Error("Failed to write hand history", "game", st.gameID, "error", err)
		return
	}
	r.logger.Info("Hand recorded", "game", st.gameID, "players", len(h.Players))
}

func (r *Recorder) write(tableID int64, h *Hand) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, h); err != nil {
		return err
	}
	name := filepath.Join(r.dir, fmt.Sprintf("table-%d-game-%s.phh", tableID, h.HandID))
	return writeFileAtomic(name, buf.Bytes(), 0o644)
}

// knownOrNil copies cs when every card is face-up.
func knownOrNil(cs cards.Cards) cards.Cards {
	if !cs.Known() {
		return nil
	}
	return cs.Clone()
}

func variant(g protocol.GameType) string {
	if g == protocol.GameOmaha {
		return "PO"
	}
	return "NT"
}
