package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lox/pokertable/internal/cards"
	"github.com/lox/pokertable/internal/handrank"
	"github.com/lox/pokertable/internal/history"
	"github.com/lox/pokertable/internal/table"
)

func TestParseHands(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected int
		hasError bool
	}{
		{name: "Single hand", input: []string{"A♠ K♠ Q♠ J♠ 10♠"}, expected: 1},
		{name: "Ascii suits", input: []string{"As Ks Qs Js Ts 2d 3c", "2h 2d 5c 9s Kd 7h 8h"}, expected: 2},
		{name: "Too few cards", input: []string{"A♠ K♠"}, hasError: true},
		{name: "Duplicates", input: []string{"A♠ A♠ Q♠ J♠ 10♠"}, hasError: true},
		{name: "Garbage", input: []string{"hello world"}, hasError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hands, err := parseHands(tt.input)
			if tt.hasError {
				if err == nil {
					t.Errorf("Expected error for input %v", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(hands) != tt.expected {
				t.Errorf("Expected %d hands, got %d", tt.expected, len(hands))
			}
		})
	}
}

func TestToCardRoundTrip(t *testing.T) {
	hand, err := handrank.ParseHand("A♠ 10♥ 2♣ K♦ 7♠")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"As", "Th", "2c", "Kd", "7s"}
	for i := range hand.Cards {
		if got := toCard(hand, i).String(); got != want[i] {
			t.Errorf("Card %d: got %s, want %s", i, got, want[i])
		}
	}
}

func TestHeadlineIgnoresChat(t *testing.T) {
	s := table.Snapshot{Phase: table.PhaseFlop, GameID: 3, Community: cards.Cards{0, 1, 2}, Pots: []int{60}}
	before := headlineOf(s)
	s.Chat = append(s.Chat, table.ChatLine{MessageID: 1, Sender: "bob", Text: "gl"})
	s.Version++
	if headlineOf(s) != before {
		t.Error("Chat should not change the headline")
	}
	s.CurrentPlayerID = 2
	if headlineOf(s) == before {
		t.Error("A new actor should change the headline")
	}
}

func TestRenderSnapshotShowsSeats(t *testing.T) {
	s := table.Snapshot{
		TableID:    7,
		SmallBlind: 10,
		BigBlind:   20,
		DealerSeat: 1,
		Seats: []table.Seat{
			{PlayerID: 1, PlayerName: "alice", SeatNo: 1, Money: 990, Bet: 10},
			{PlayerID: 2, PlayerName: "bob", SeatNo: 2, Money: 980, Bet: 20, Folded: true},
		},
	}
	out := renderSnapshot(s)
	for _, want := range []string{"Table 7", "alice", "bob", "folded"} {
		if !strings.Contains(out, want) {
			t.Errorf("Rendered table missing %q:\n%s", want, out)
		}
	}
}

func TestLoadConfigAppliesOverrides(t *testing.T) {
	flags := &GlobalFlags{
		Config:   filepath.Join(t.TempDir(), "missing.hcl"),
		Server:   "ws://example.test/hub",
		Table:    12,
		Player:   5,
		LogLevel: "debug",
	}
	cfg, err := loadConfig(flags, true)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.Server.URL != flags.Server || cfg.Table.ID != 12 || cfg.Player.ID != 5 || cfg.UI.LogLevel != "debug" {
		t.Errorf("Overrides not applied: %+v", cfg)
	}

	if _, err := loadConfig(&GlobalFlags{Config: flags.Config}, false); err == nil {
		t.Error("Expected validation error without a table id")
	}

	noPlayer := &GlobalFlags{Config: flags.Config, Table: 12}
	if _, err := loadConfig(noPlayer, false); err != nil {
		t.Errorf("Watching without a player id should be allowed: %v", err)
	}
	if _, err := loadConfig(noPlayer, true); err == nil {
		t.Error("Expected validation error without a player id")
	}
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	hand := &history.Hand{
		Variant:           "NT",
		Table:             "7",
		Antes:             []int{0, 0},
		BlindsOrStraddles: []int{10, 20},
		MinBet:            20,
		StartingStacks:    []int{1000, 1000},
		FinishingStacks:   []int{940, 1060},
		Winnings:          []int{0, 120},
		Actions:           []string{"d dh p1 AsKs", "d dh p2 ????", "p1 cbr 60", "p2 cc"},
		Players:           []string{"alice", "bob"},
		HandID:            "100",
	}
	f, err := os.Create(filepath.Join(dir, "table-7-game-100.phh"))
	if err != nil {
		t.Fatal(err)
	}
	if err := history.Encode(f, hand); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	flags := &GlobalFlags{Config: filepath.Join(t.TempDir(), "missing.hcl")}
	cmd := &HistoryCommand{Dir: dir, PlayerName: "bob"}
	if err := cmd.Run(flags); err != nil {
		t.Fatalf("history failed: %v", err)
	}

	empty := &HistoryCommand{Dir: t.TempDir(), PlayerName: "bob"}
	if err := empty.Run(flags); err == nil {
		t.Error("Expected an error for a directory without hands")
	}
}
