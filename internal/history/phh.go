// Package history records finished hands seen at a table in the Poker Hand
// History (PHH) TOML format and keeps running session statistics.
package history

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lox/pokertable/internal/cards"
)

// Hand is one finished hand in PHH form. Player indexes are in seat order.
type Hand struct {
	Variant           string         `toml:"variant"`
	Table             string         `toml:"table,omitempty"`
	SeatCount         int            `toml:"seat_count,omitempty"`
	Seats             []int          `toml:"seats,omitempty"`
	Antes             []int          `toml:"antes"`
	BlindsOrStraddles []int          `toml:"blinds_or_straddles"`
	MinBet            int            `toml:"min_bet"`
	StartingStacks    []int          `toml:"starting_stacks"`
	FinishingStacks   []int          `toml:"finishing_stacks,omitempty"`
	Winnings          []int          `toml:"winnings,omitempty"`
	Actions           []string       `toml:"actions"`
	Players           []string       `toml:"players,omitempty"`
	HandID            string         `toml:"hand"`
	Time              string         `toml:"time,omitempty"`
	TimeZone          string         `toml:"time_zone,omitempty"`
	Day               int            `toml:"day,omitempty"`
	Month             int            `toml:"month,omitempty"`
	Year              int            `toml:"year,omitempty"`
	Metadata          map[string]any `toml:"metadata,omitempty"`

	Timestamp time.Time `toml:"-"`
}

// Encode writes hand to w in PHH TOML format.
func Encode(w io.Writer, hand *Hand) error {
	if hand == nil {
		return fmt.Errorf("phh: hand is nil")
	}
	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// Load decodes a single-hand PHH file.
func Load(path string) (*Hand, error) {
	var hand Hand
	if _, err := toml.DecodeFile(filepath.Clean(path), &hand); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &hand, nil
}

// LoadDir decodes every *.phh file in dir, in name order.
func LoadDir(dir string) ([]*Hand, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.phh"))
	if err != nil {
		return nil, err
	}
	hands := make([]*Hand, 0, len(paths))
	for _, p := range paths {
		h, err := Load(p)
		if err != nil {
			return nil, err
		}
		hands = append(hands, h)
	}
	return hands, nil
}

// Index returns the PHH player index of name, or -1.
func (h *Hand) Index(name string) int {
	for i, p := range h.Players {
		if p == name {
			return i
		}
	}
	return -1
}

// Net is the chip result for player index i.
func (h *Hand) Net(i int) int {
	if i < 0 || i >= len(h.StartingStacks) || i >= len(h.FinishingStacks) {
		return 0
	}
	return h.FinishingStacks[i] - h.StartingStacks[i]
}

// WentToShowdown reports whether any hand was shown down.
func (h *Hand) WentToShowdown() bool {
	for _, a := range h.Actions {
		if strings.Contains(a, " sm ") {
			return true
		}
	}
	return false
}

// Pot is the sum of all winnings.
func (h *Hand) Pot() int {
	total := 0
	for _, w := range h.Winnings {
		total += w
	}
	return total
}

func (h *Hand) stampTime() {
	t := h.Timestamp
	if t.IsZero() {
		return
	}
	utc := t.UTC()
	h.Time = utc.Format("15:04:05")
	h.TimeZone = "UTC"
	h.Day = utc.Day()
	h.Month = int(utc.Month())
	h.Year = utc.Year()
}

// formatAction converts a table action into PHH notation. The player index
// is zero based; PHH players are numbered from one. Raises carry the total
// bet for the round.
func formatAction(index int, action string, total int) (string, bool) {
	player := fmt.Sprintf("p%d", index+1)
	switch action {
	case "fold":
		return player + " f", true
	case "check", "call":
		return player + " cc", true
	case "raise":
		if total <= 0 {
			return "", false
		}
		return fmt.Sprintf("%s cbr %d", player, total), true
	default:
		return fmt.Sprintf("# %s %s %d", player, action, total), true
	}
}

// cardString renders cards without separators, e.g. "AsKh". Unknown cards
// render as "??".
func cardString(cs cards.Cards) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(c.String())
	}
	return b.String()
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it over filename, so readers see either no file or all of it.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".tmp.*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	tmp = nil

	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
