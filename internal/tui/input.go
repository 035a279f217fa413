package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/pokertable/internal/table"
)

// Actions is the part of the table controller the TUI drives.
type Actions interface {
	Fold(ctx context.Context) error
	CheckOrCall(ctx context.Context) error
	BetOrRaise(ctx context.Context, amount int) error
	Sit(ctx context.Context, seat, amount int, ticketCode string) error
	Standup(ctx context.Context) error
	ShowCards(ctx context.Context) error
	Muck(ctx context.Context) error
	ShowHoleCard(ctx context.Context, position int) error
}

var (
	errNotYourTurn = errors.New("not your turn")
	errNotSeated   = errors.New("you are not seated")
)

// command is a parsed line of user input.
type command struct {
	name string
	run  func(ctx context.Context, a Actions) error
	quit bool
}

// parseCommand turns user input into an action against the current table
// state. Betting actions are only accepted on the local player's turn.
func parseCommand(input string, s table.Snapshot, opts Options) (command, error) {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return command{}, nil
	}
	action, args := parts[0], parts[1:]

	myTurn := s.MyPlayerID != 0 && s.CurrentPlayerID == s.MyPlayerID
	limits := s.MyLimits

	switch action {
	case "q", "quit", "exit":
		return command{name: "quit", quit: true}, nil

	case "f", "fold":
		if !myTurn {
			return command{}, errNotYourTurn
		}
		return command{name: "fold", run: func(ctx context.Context, a Actions) error {
			return a.Fold(ctx)
		}}, nil

	case "c", "call", "k", "check":
		if !myTurn {
			return command{}, errNotYourTurn
		}
		name := "call"
		if limits.CanCheck {
			name = "check"
		}
		return command{name: name, run: func(ctx context.Context, a Actions) error {
			return a.CheckOrCall(ctx)
		}}, nil

	case "r", "raise", "bet":
		if len(args) == 0 {
			return command{}, fmt.Errorf("specify raise amount: 'raise <amount>'")
		}
		amount, err := strconv.Atoi(args[0])
		if err != nil {
			return command{}, fmt.Errorf("invalid amount: %s", args[0])
		}
		if !myTurn {
			return command{}, errNotYourTurn
		}
		if !limits.CanRaise {
			return command{}, fmt.Errorf("raising is not possible now")
		}
		if amount < limits.MinimumRaiseAmount || amount > limits.MaximumRaiseAmount {
			return command{}, fmt.Errorf("invalid raise amount $%d, must be between $%d and $%d",
				amount, limits.MinimumRaiseAmount, limits.MaximumRaiseAmount)
		}
		return raise("raise", amount), nil

	case "min":
		if !myTurn {
			return command{}, errNotYourTurn
		}
		return raise("min raise", limits.MinimumRaiseAmount), nil

	case "pot":
		if !myTurn {
			return command{}, errNotYourTurn
		}
		amount := limits.ClampRaise(limits.MaximumBet + limits.PotSize + limits.CallDifference)
		return raise("pot raise", amount), nil

	case "a", "allin", "all":
		if !myTurn {
			return command{}, errNotYourTurn
		}
		return raise("all-in", limits.MaximumRaiseAmount), nil

	case "sit":
		if len(args) == 0 {
			return command{}, fmt.Errorf("specify a seat: 'sit <seat> [buy-in]'")
		}
		seat, err := strconv.Atoi(args[0])
		if err != nil || seat < 1 || (s.MaxPlayers > 0 && seat > s.MaxPlayers) {
			return command{}, fmt.Errorf("invalid seat: %s", args[0])
		}
		buyIn := max(opts.DefaultBuyIn, s.RejoinMinimumBuyIn)
		if len(args) > 1 {
			if buyIn, err = strconv.Atoi(args[1]); err != nil || buyIn <= 0 {
				return command{}, fmt.Errorf("invalid buy-in: %s", args[1])
			}
		}
		ticket := opts.TicketCode
		return command{name: "sit", run: func(ctx context.Context, a Actions) error {
			return a.Sit(ctx, seat, buyIn, ticket)
		}}, nil

	case "up", "standup", "stand":
		if _, seated := s.Seat(s.MyPlayerID); !seated {
			return command{}, errNotSeated
		}
		return command{name: "stand up", run: func(ctx context.Context, a Actions) error {
			return a.Standup(ctx)
		}}, nil

	case "show":
		if len(args) == 0 {
			return command{name: "show", run: func(ctx context.Context, a Actions) error {
				return a.ShowCards(ctx)
			}}, nil
		}
		pos, err := strconv.Atoi(args[0])
		if err != nil || pos < 1 {
			return command{}, fmt.Errorf("invalid card position: %s", args[0])
		}
		return command{name: "show card", run: func(ctx context.Context, a Actions) error {
			return a.ShowHoleCard(ctx, pos-1)
		}}, nil

	case "m", "muck":
		return command{name: "muck", run: func(ctx context.Context, a Actions) error {
			return a.Muck(ctx)
		}}, nil
	}

	return command{}, fmt.Errorf("unknown action: %s", action)
}

func raise(name string, amount int) command {
	return command{name: fmt.Sprintf("%s to $%d", name, amount), run: func(ctx context.Context, a Actions) error {
		return a.BetOrRaise(ctx, amount)
	}}
}
