package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/lox/pokertable/internal/table"
)

// WatchCommand joins a table and prints it as the game progresses
type WatchCommand struct {
	Seat  int `help:"Take this seat after joining (0 to only watch)"`
	BuyIn int `name:"buy-in" help:"Buy-in when taking a seat (defaults to config)"`
}

func (cmd *WatchCommand) Run(flags *GlobalFlags) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, cleanup, err := SetupWithFileLogging(ctx, flags, false)
	if err != nil {
		return err
	}
	defer cleanup()

	rt.Logger.Info("Starting table watcher",
		"server", rt.Config.Server.URL,
		"table", rt.Config.Table.ID,
		"player", rt.Config.Player.ID)

	var (
		mu   sync.Mutex
		last headline
	)
	unsubscribe := rt.Table.Subscribe(func(s table.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		h := headlineOf(s)
		if h == last {
			return
		}
		last = h
		fmt.Println(renderSnapshot(s))
	})
	defer unsubscribe()

	return rt.Run(ctx, func(ctx context.Context) error {
		if cmd.Seat > 0 {
			if _, err := rt.WaitSynced(ctx); err != nil {
				return err
			}
			buyIn := cmd.BuyIn
			if buyIn == 0 {
				buyIn = rt.Config.Player.DefaultBuyIn
			}
			if err := rt.Controller.Sit(ctx, cmd.Seat, buyIn, rt.Config.Player.TicketCode); err != nil {
				return fmt.Errorf("failed to take seat %d: %w", cmd.Seat, err)
			}
		}
		<-ctx.Done()
		return nil
	})
}
