package tui

import (
	"fmt"

	"github.com/lox/pokertable/internal/table"
)

var streetNames = map[int]string{3: "FLOP", 4: "TURN", 5: "RIVER"}

// describeChanges narrates what changed between two snapshots as log lines.
func describeChanges(prev, next table.Snapshot) []string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	if prev.Phase == table.PhaseConnecting && next.Phase != table.PhaseConnecting {
		add("Joined table %d: %d/%d seats, blinds $%d/$%d",
			next.TableID, len(next.Seats), next.MaxPlayers, next.SmallBlind, next.BigBlind)
		return lines
	}
	if prev.Phase != table.PhaseConnecting && next.Phase == table.PhaseConnecting {
		add("Disconnected")
		return lines
	}

	newGame := next.GameID != 0 && next.GameID != prev.GameID
	if newGame {
		add("*** GAME #%d ***", next.GameID)
	}
	if name, ok := streetNames[len(next.Community)]; ok && len(next.Community) > len(prev.Community) {
		add("*** %s *** [%s]", name, RenderCards(next.Community))
	}

	prevMax := 0
	for _, seat := range prev.Seats {
		prevMax = max(prevMax, seat.Bet)
	}

	for _, seat := range next.Seats {
		before, ok := prev.Seat(seat.PlayerID)
		if !ok {
			add("%s sits at seat %d with $%d", seat.PlayerName, seat.SeatNo, seat.Money)
			continue
		}
		switch {
		case seat.Folded && !before.Folded:
			add("%s folds", seat.PlayerName)
		case seat.Bet > before.Bet && newGame:
			add("%s posts $%d", seat.PlayerName, seat.Bet)
		case seat.Bet > before.Bet && seat.Bet > prevMax:
			add("%s raises to $%d", seat.PlayerName, seat.Bet)
		case seat.Bet > before.Bet:
			add("%s calls $%d", seat.PlayerName, seat.Bet-before.Bet)
		case seat.ActedThisRound && !before.ActedThisRound && seat.Bet == before.Bet:
			add("%s checks", seat.PlayerName)
		}
		if seat.WinAmount > before.WinAmount {
			line := fmt.Sprintf("%s wins $%d", seat.PlayerName, seat.WinAmount-before.WinAmount)
			if seat.Combination != nil {
				line += " with " + seat.Combination.String()
			}
			lines = append(lines, SuccessStyle.Render(line))
		}
		if seat.Money > before.Money && seat.WinAmount == before.WinAmount && seat.Bet == before.Bet && !newGame {
			add("%s adds $%d", seat.PlayerName, seat.Money-before.Money)
		}
	}
	for _, seat := range prev.Seats {
		if _, ok := next.Seat(seat.PlayerID); !ok {
			add("%s stands up", seat.PlayerName)
		}
	}

	if next.Paused != prev.Paused {
		lines = append(lines, WarningStyle.Render(map[bool]string{true: "Table paused", false: "Table resumed"}[next.Paused]))
	}
	if next.Frozen != prev.Frozen {
		lines = append(lines, WarningStyle.Render(map[bool]string{true: "Table frozen", false: "Table unfrozen"}[next.Frozen]))
	}
	if next.Closed && !prev.Closed {
		lines = append(lines, ErrorStyle.Render("Table closed"))
	}

	seen := make(map[int64]bool, len(prev.Chat))
	for _, c := range prev.Chat {
		seen[c.MessageID] = true
	}
	for _, c := range next.Chat {
		if !seen[c.MessageID] {
			add("<%s> %s", c.Sender, c.Text)
		}
	}
	return lines
}
