package commands

import (
	"context"
	"fmt"
	"os"
	"time"
)

// ActCommand performs a single action at the table
type ActCommand struct {
	Action  string        `arg:"" enum:"fold,call,raise,sit,standup,show,muck,leave" help:"Action to perform (fold, call, raise, sit, standup, show, muck, leave)"`
	Amount  int           `short:"a" help:"Raise amount, or buy-in when sitting"`
	Seat    int           `help:"Seat to take when sitting"`
	Timeout time.Duration `default:"30s" help:"How long to wait for the action to complete"`
}

func (cmd *ActCommand) Run(flags *GlobalFlags) error {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()

	rt, err := SetupPlayer(ctx, flags, os.Stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	return rt.Run(ctx, func(ctx context.Context) error {
		if _, err := rt.WaitSynced(ctx); err != nil {
			return fmt.Errorf("timeout waiting for table status: %w", err)
		}

		c := rt.Controller
		switch cmd.Action {
		case "fold":
			err = c.Fold(ctx)
		case "call":
			err = c.CheckOrCall(ctx)
		case "raise":
			err = c.BetOrRaise(ctx, cmd.Amount)
		case "sit":
			amount := cmd.Amount
			if amount == 0 {
				amount = rt.Config.Player.DefaultBuyIn
			}
			err = c.Sit(ctx, cmd.Seat, amount, rt.Config.Player.TicketCode)
		case "standup":
			err = c.Standup(ctx)
		case "show":
			err = c.ShowCards(ctx)
		case "muck":
			err = c.Muck(ctx)
		case "leave":
			err = c.Leave(ctx)
		}
		if err != nil {
			return fmt.Errorf("%s failed: %w", cmd.Action, err)
		}
		fmt.Printf("%s ok\n", cmd.Action)
		return nil
	})
}
