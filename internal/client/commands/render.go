package commands

import (
	"fmt"
	"strings"

	"github.com/lox/pokertable/internal/table"
	"github.com/lox/pokertable/internal/tui"
)

func renderSeat(s table.Snapshot, seat table.Seat) string {
	var b strings.Builder
	marker := "  "
	if seat.PlayerID == s.CurrentPlayerID && s.CurrentPlayerID != 0 {
		marker = tui.ActorStyle.Render("> ")
	}
	fmt.Fprintf(&b, "%s[%d] %-12s %6d", marker, seat.SeatNo, seat.PlayerName, seat.Money)
	if seat.SeatNo == s.DealerSeat {
		b.WriteString(" D")
	}
	if seat.Bet > 0 {
		fmt.Fprintf(&b, "  bet %d", seat.Bet)
	}
	switch {
	case seat.Folded:
		b.WriteString(tui.InfoStyle.Render("  folded"))
	case seat.Status.IsSitOut():
		b.WriteString(tui.InfoStyle.Render("  sitting out"))
	case !seat.CardsHidden && len(seat.RawCards) > 0:
		b.WriteString("  " + tui.RenderCards(seat.RawCards))
	}
	if seat.WinAmount > 0 {
		win := fmt.Sprintf("  wins %d", seat.WinAmount)
		if seat.Combination != nil {
			win += " with " + seat.Combination.String()
		}
		b.WriteString(tui.SuccessStyle.Render(win))
	}
	return b.String()
}

// renderSnapshot draws the whole table.
func renderSnapshot(s table.Snapshot) string {
	var b strings.Builder
	title := fmt.Sprintf("Table %d  %s  blinds %d/%d", s.TableID, s.Phase, s.SmallBlind, s.BigBlind)
	if s.Ante > 0 {
		title += fmt.Sprintf(" ante %d", s.Ante)
	}
	if s.GameID != 0 {
		title += fmt.Sprintf("  game %d", s.GameID)
	}
	b.WriteString(tui.HeaderStyle.Render(title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  board %s  pot %s\n", tui.RenderCards(s.Community), tui.RenderPots(s.Pots))
	for _, seat := range s.Seats {
		b.WriteString(renderSeat(s, seat))
		b.WriteString("\n")
	}
	return b.String()
}

// headline is the part of a snapshot worth reprinting when it changes.
type headline struct {
	phase   table.Phase
	gameID  int64
	actor   int64
	board   int
	pots    string
	winners int
}

func headlineOf(s table.Snapshot) headline {
	h := headline{
		phase:  s.Phase,
		gameID: s.GameID,
		actor:  s.CurrentPlayerID,
		board:  len(s.Community),
		pots:   tui.RenderPots(s.Pots),
	}
	for _, seat := range s.Seats {
		if seat.WinAmount > 0 {
			h.winners++
		}
	}
	return h
}
