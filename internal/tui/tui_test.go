package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertable/internal/cards"
	"github.com/lox/pokertable/internal/handrank"
	"github.com/lox/pokertable/internal/table"
)

func TestMain(m *testing.M) {
	// Plain text output so assertions can match rendered strings.
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type recordingActions struct {
	calls []string
	err   error
}

func (r *recordingActions) record(format string, args ...any) error {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
	return r.err
}

func (r *recordingActions) Fold(context.Context) error        { return r.record("fold") }
func (r *recordingActions) CheckOrCall(context.Context) error { return r.record("checkorcall") }
func (r *recordingActions) BetOrRaise(_ context.Context, amount int) error {
	return r.record("raise %d", amount)
}
func (r *recordingActions) Sit(_ context.Context, seat, amount int, ticket string) error {
	return r.record("sit %d %d %s", seat, amount, ticket)
}
func (r *recordingActions) Standup(context.Context) error   { return r.record("standup") }
func (r *recordingActions) ShowCards(context.Context) error { return r.record("show") }
func (r *recordingActions) Muck(context.Context) error      { return r.record("muck") }
func (r *recordingActions) ShowHoleCard(_ context.Context, pos int) error {
	return r.record("showcard %d", pos)
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// myTurn is a heads-up table where player 1 is to act facing a raise.
func myTurn() table.Snapshot {
	return table.Snapshot{
		TableID:         7,
		MyPlayerID:      1,
		Phase:           table.PhasePreflop,
		GameID:          100,
		CurrentPlayerID: 1,
		MaxPlayers:      6,
		SmallBlind:      10,
		BigBlind:        20,
		Seats: []table.Seat{
			{PlayerID: 1, PlayerName: "alice", SeatNo: 1, Money: 990, Bet: 10},
			{PlayerID: 2, PlayerName: "bob", SeatNo: 2, Money: 940, Bet: 60},
		},
		MyLimits: table.Limits{
			PlayerID:           1,
			MaximumBet:         60,
			CallDifference:     50,
			PotSize:            70,
			MinimumRaiseAmount: 100,
			MaximumRaiseAmount: 1000,
			Button1Amount:      50,
			Button3Amount:      1000,
			SliderMin:          100,
			SliderMax:          1000,
			CanRaise:           true,
		},
	}
}

func TestParseCommand(t *testing.T) {
	opts := Options{DefaultBuyIn: 200, TicketCode: "T1"}

	tests := []struct {
		name    string
		input   string
		snap    table.Snapshot
		want    string
		wantErr string
	}{
		{"fold", "f", myTurn(), "fold", ""},
		{"call", "call", myTurn(), "checkorcall", ""},
		{"check shorthand", "k", myTurn(), "checkorcall", ""},
		{"raise", "raise 300", myTurn(), "raise 300", ""},
		{"raise too small", "r 50", myTurn(), "", "must be between $100 and $1000"},
		{"raise too big", "raise 5000", myTurn(), "", "must be between"},
		{"raise without amount", "raise", myTurn(), "", "specify raise amount"},
		{"raise bad amount", "raise lots", myTurn(), "", "invalid amount"},
		{"min", "min", myTurn(), "raise 100", ""},
		{"pot", "pot", myTurn(), "raise 180", ""},
		{"allin", "all", myTurn(), "raise 1000", ""},
		{"fold out of turn", "fold", table.Snapshot{MyPlayerID: 1, CurrentPlayerID: 2}, "", "not your turn"},
		{"sit default buy-in", "sit 3", table.Snapshot{MaxPlayers: 6}, "sit 3 200 T1", ""},
		{"sit with buy-in", "sit 3 500", table.Snapshot{MaxPlayers: 6}, "sit 3 500 T1", ""},
		{"sit rejoin minimum", "sit 2", table.Snapshot{MaxPlayers: 6, RejoinMinimumBuyIn: 450}, "sit 2 450 T1", ""},
		{"sit bad seat", "sit 9", table.Snapshot{MaxPlayers: 6}, "", "invalid seat"},
		{"standup", "up", myTurn(), "standup", ""},
		{"standup unseated", "standup", table.Snapshot{MyPlayerID: 5}, "", "not seated"},
		{"show all", "show", myTurn(), "show", ""},
		{"show one", "show 2", myTurn(), "showcard 1", ""},
		{"muck", "muck", myTurn(), "muck", ""},
		{"unknown", "dance", myTurn(), "", "unknown action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseCommand(tt.input, tt.snap, opts)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c.run)

			a := &recordingActions{}
			require.NoError(t, c.run(t.Context(), a))
			assert.Equal(t, []string{tt.want}, a.calls)
		})
	}

	t.Run("empty and quit", func(t *testing.T) {
		c, err := parseCommand("  ", myTurn(), opts)
		require.NoError(t, err)
		assert.Nil(t, c.run)

		c, err = parseCommand("quit", myTurn(), opts)
		require.NoError(t, err)
		assert.True(t, c.quit)
	})
}

func TestDescribeChanges(t *testing.T) {
	joined := myTurn()
	joined.GameID = 0
	joined.CurrentPlayerID = 0
	for i := range joined.Seats {
		joined.Seats[i].Bet = 0
	}

	t.Run("join", func(t *testing.T) {
		lines := describeChanges(table.Snapshot{}, joined)
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "Joined table 7")
	})

	t.Run("new game posts blinds", func(t *testing.T) {
		next := myTurn()
		next.Seats[1].Bet = 20
		lines := describeChanges(joined, next)
		assert.Equal(t, []string{"*** GAME #100 ***", "alice posts $10", "bob posts $20"}, lines)
	})

	t.Run("betting", func(t *testing.T) {
		prev := myTurn()
		next := myTurn()
		next.Seats[0].Bet = 200
		assert.Equal(t, []string{"alice raises to $200"}, describeChanges(prev, next))

		next = myTurn()
		next.Seats[0].Bet = 60
		assert.Equal(t, []string{"alice calls $50"}, describeChanges(prev, next))

		next = myTurn()
		next.Seats[0].Folded = true
		assert.Equal(t, []string{"alice folds"}, describeChanges(prev, next))
	})

	t.Run("street and showdown", func(t *testing.T) {
		prev := myTurn()
		next := myTurn()
		next.Community = cards.Cards{51, 50, 49}
		combo := handrank.Combination{Type: handrank.OnePair, Cards: []int{7}}
		next.Seats[1].WinAmount = 120
		next.Seats[1].Combination = &combo
		lines := describeChanges(prev, next)
		require.Len(t, lines, 2)
		assert.Equal(t, "*** FLOP *** [A♠ K♠ Q♠]", lines[0])
		assert.Equal(t, "bob wins $120 with "+combo.String(), lines[1])
	})

	t.Run("seats and chat", func(t *testing.T) {
		prev := myTurn()
		next := myTurn()
		next.Seats = next.Seats[:1]
		next.Seats = append(next.Seats, table.Seat{PlayerID: 3, PlayerName: "carol", SeatNo: 4, Money: 300})
		next.Chat = []table.ChatLine{{MessageID: 9, Sender: "carol", Text: "hi"}}
		next.Paused = true
		lines := describeChanges(prev, next)
		assert.Equal(t, []string{
			"carol sits at seat 4 with $300",
			"bob stands up",
			"Table paused",
			"<carol> hi",
		}, lines)
	})

	t.Run("disconnect", func(t *testing.T) {
		assert.Equal(t, []string{"Disconnected"}, describeChanges(myTurn(), table.Snapshot{Phase: table.PhaseConnecting}))
	})
}

func press(t *testing.T, m *Model, input string) tea.Cmd {
	t.Helper()
	m.actionInput.SetValue(input)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestModelSubmitsActions(t *testing.T) {
	actions := &recordingActions{}
	m := New(actions, Options{DefaultBuyIn: 200}, testLogger())
	m.Update(SnapshotMsg(myTurn()))

	cmd := press(t, m, "raise 250")
	require.NotNil(t, cmd)
	assert.Empty(t, m.actionInput.Value())
	assert.Equal(t, "raise to $250", m.pending)

	// A second action is refused while one is in flight.
	press(t, m, "fold")
	assert.Equal(t, "raise to $250", m.pending)
	assert.Contains(t, m.gameLog[len(m.gameLog)-1], "Still waiting")

	m.Update(cmd())
	assert.Equal(t, []string{"raise 250"}, actions.calls)
	assert.Empty(t, m.pending)
}

func TestModelReportsFailures(t *testing.T) {
	actions := &recordingActions{err: errors.New("operation not valid at this time")}
	m := New(actions, Options{}, testLogger())
	m.Update(SnapshotMsg(myTurn()))

	cmd := press(t, m, "call")
	require.NotNil(t, cmd)
	m.Update(cmd())
	assert.Contains(t, m.gameLog[len(m.gameLog)-1], "call failed: operation not valid")

	press(t, m, "raise nope")
	assert.Empty(t, m.pending)
	assert.Contains(t, m.gameLog[len(m.gameLog)-1], "invalid amount")
}

func TestModelView(t *testing.T) {
	m := New(&recordingActions{}, Options{}, testLogger())
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	snap := myTurn()
	snap.Seats[0].RawCards = cards.Cards{51, 38}
	m.Update(SnapshotMsg(snap))

	view := m.View()
	for _, want := range []string{"Table 7", "alice", "bob", "[call $50]", "[raise $100-$1000]", "Hand: A♠ A♥"} {
		assert.True(t, strings.Contains(view, want), "view missing %q", want)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.NotNil(t, cmd)
	assert.Empty(t, m.View())
}
