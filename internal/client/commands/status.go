package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/lox/pokertable/internal/table"
	"github.com/lox/pokertable/internal/tui"
)

// StatusCommand joins a table, prints its current state and exits
type StatusCommand struct {
	Timeout time.Duration `default:"10s" help:"How long to wait for the table status"`
}

func (cmd *StatusCommand) Run(flags *GlobalFlags) error {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	rt, err := Setup(ctx, flags, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	return rt.Run(ctx, func(ctx context.Context) error {
		s, err := rt.WaitSynced(ctx)
		if err != nil {
			return fmt.Errorf("timeout waiting for table status: %w", err)
		}
		printStatus(s)
		return nil
	})
}

func printStatus(s table.Snapshot) {
	fmt.Println(tui.HeaderStyle.Render(fmt.Sprintf("Table %d (%s)", s.TableID, s.Phase)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Blinds\t%d/%d\n", s.SmallBlind, s.BigBlind)
	if s.Ante > 0 {
		fmt.Fprintf(w, "Ante\t%d\n", s.Ante)
	}
	fmt.Fprintf(w, "Game\t%s %s\n", s.Limit, s.GameType)
	fmt.Fprintf(w, "Buy-in\t%d (max %d)\n", s.BuyIn, s.MaxBuyIn)
	fmt.Fprintf(w, "Seats\t%d/%d\n", len(s.Seats), s.MaxPlayers)
	fmt.Fprintf(w, "Board\t%s\n", tui.RenderCards(s.Community))
	fmt.Fprintf(w, "Pots\t%s\n", tui.RenderPots(s.Pots))
	if s.Frozen || s.Paused {
		fmt.Fprintf(w, "Flags\tfrozen=%t paused=%t\n", s.Frozen, s.Paused)
	}
	_ = w.Flush()

	fmt.Println()
	for _, seat := range s.Seats {
		fmt.Println(renderSeat(s, seat))
	}
}
