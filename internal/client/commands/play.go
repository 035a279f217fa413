package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/pokertable/internal/table"
	"github.com/lox/pokertable/internal/tui"
)

// PlayCommand joins a table and opens the interactive table view
type PlayCommand struct {
	Seat  int `help:"Take this seat after joining (0 to choose later)"`
	BuyIn int `name:"buy-in" help:"Buy-in when taking a seat (defaults to config)"`
}

func (cmd *PlayCommand) Run(flags *GlobalFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, cleanup, err := SetupWithFileLogging(ctx, flags, true)
	if err != nil {
		return err
	}
	defer cleanup()

	rt.Logger.Info("Starting table UI",
		"server", rt.Config.Server.URL,
		"table", rt.Config.Table.ID,
		"player", rt.Config.Player.ID)

	model := tui.New(rt.Controller, tui.Options{
		DefaultBuyIn: rt.Config.Player.DefaultBuyIn,
		TicketCode:   rt.Config.Player.TicketCode,
	}, rt.Logger)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	// Observers must not block the table, so snapshots are buffered and
	// forwarded to the program from one goroutine.
	snapshots := make(chan table.Snapshot, 256)
	unsubscribe := rt.Table.Subscribe(func(s table.Snapshot) {
		select {
		case snapshots <- s:
		default:
			rt.Logger.Warn("UI is behind, dropping snapshot", "version", s.Version)
		}
	})
	defer unsubscribe()

	return rt.Run(ctx, func(ctx context.Context) error {
		go func() {
			for {
				select {
				case s := <-snapshots:
					program.Send(tui.SnapshotMsg(s))
				case <-ctx.Done():
					return
				}
			}
		}()

		if cmd.Seat > 0 {
			go func() {
				if _, err := rt.WaitSynced(ctx); err != nil {
					return
				}
				buyIn := cmd.BuyIn
				if buyIn == 0 {
					buyIn = rt.Config.Player.DefaultBuyIn
				}
				if err := rt.Controller.Sit(ctx, cmd.Seat, buyIn, rt.Config.Player.TicketCode); err != nil {
					rt.Logger.Error("Failed to take seat", "seat", cmd.Seat, "error", err)
				}
			}()
		}

		if _, err := program.Run(); err != nil && ctx.Err() == nil {
			return fmt.Errorf("table UI failed: %w", err)
		}
		return nil
	})
}
