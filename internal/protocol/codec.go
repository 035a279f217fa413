package protocol

import (
	"fmt"
)

// Decode turns a notification frame into its typed form. Argument order is
// the server's positional order.
func Decode(e *Envelope) (Notification, error) {
	a := e.Arguments
	var err error
	var n Notification

	switch e.Target {
	case TargetTableStatusInfo:
		var v TableStatusInfo
		err = unpack(a, &v.TableID, &v.Players, &v.Pots, &v.CommunityCards, &v.DealerSeat,
			&v.SmallBlind, &v.BigBlind, &v.Ante, &v.GameType, &v.Limit,
			&v.BuyIn, &v.BaseBuyIn, &v.MaxBuyIn, &v.MaxPlayers,
			&v.GameID, &v.CurrentPlayerID, &v.LastRaise,
			&v.Frozen, &v.Opened, &v.Paused, &v.TournamentID)
		n = v
	case TargetGameStarted:
		var v GameStarted
		err = unpack(a, &v.TableID, &v.GameID, &v.Players, &v.Actions, &v.DealerSeat)
		n = v
	case TargetBet:
		var v Bet
		err = unpack(a, &v.TableID, &v.PlayerID, &v.Type, &v.Amount, &v.NextPlayerID)
		n = v
	case TargetOpenCards:
		var v OpenCards
		err = unpack(a, &v.TableID, &v.Cards)
		n = v
	case TargetMoveMoneyToPot:
		var v MoveMoneyToPot
		err = unpack(a, &v.TableID, &v.Pots)
		n = v
	case TargetMoneyAdded:
		var v MoneyAdded
		err = unpack(a, &v.TableID, &v.PlayerID, &v.Amount)
		n = v
	case TargetMoneyRemoved:
		var v MoneyRemoved
		err = unpack(a, &v.TableID, &v.PlayerID, &v.Amount)
		n = v
	case TargetPlayerCards:
		var v PlayerCards
		err = unpack(a, &v.TableID, &v.PlayerID, &v.Cards)
		n = v
	case TargetPlayerCardOpened:
		var v PlayerCardOpened
		err = unpack(a, &v.TableID, &v.PlayerID, &v.Position, &v.Card)
		n = v
	case TargetPlayerCardsMucked:
		var v PlayerCardsMucked
		err = unpack(a, &v.TableID, &v.PlayerID)
		n = v
	case TargetSit:
		var v Sit
		err = unpack(a, &v.TableID, &v.PlayerID, &v.PlayerName, &v.Seat, &v.Money)
		n = v
	case TargetStandup:
		var v Standup
		err = unpack(a, &v.TableID, &v.PlayerID)
		n = v
	case TargetTableFrozen, TargetTableUnfrozen, TargetTableOpened,
		TargetTableClosed, TargetTablePaused, TargetTableResumed:
		v := flagFor(e.Target)
		err = unpack(a, &v.TableID)
		n = v
	case TargetGameFinished:
		var v GameFinished
		err = unpack(a, &v.TableID, &v.GameID, &v.Winners, &v.Rake)
		n = v
	case TargetPlayerStatus:
		var v PlayerStatus
		err = unpack(a, &v.TableID, &v.PlayerID, &v.Status)
		n = v
	case TargetFinalTableCardsOpened:
		var v FinalTableCardsOpened
		err = unpack(a, &v.TableID, &v.Cards)
		n = v
	case TargetTableTournamentChanged:
		var v TableTournamentChanged
		err = unpack(a, &v.TableID, &v.TournamentID)
		n = v
	case TargetTableBetParametersChanged:
		var v TableBetParametersChanged
		err = unpack(a, &v.TableID, &v.SmallBlind, &v.BigBlind, &v.Ante)
		n = v
	case TargetTableGameTypeChanged:
		var v TableGameTypeChanged
		err = unpack(a, &v.TableID, &v.GameType, &v.Limit)
		n = v
	case TargetChatMessage:
		var v ChatMessage
		err = unpack(a, &v.TableID, &v.MessageID, &v.Sender, &v.Text)
		n = v
	case TargetDuplicateConnection:
		n = DuplicateConnection{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownNotification, e.Target)
	}

	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", e.Target, err)
	}
	return n, nil
}

func flagFor(target string) TableFlagChanged {
	v := TableFlagChanged{Name: target}
	switch target {
	case TargetTableFrozen:
		v.Flag, v.On = FlagFrozen, true
	case TargetTableUnfrozen:
		v.Flag, v.On = FlagFrozen, false
	case TargetTableOpened:
		v.Flag, v.On = FlagOpened, true
	case TargetTableClosed:
		v.Flag, v.On = FlagClosed, true
	case TargetTablePaused:
		v.Flag, v.On = FlagPaused, true
	case TargetTableResumed:
		v.Flag, v.On = FlagPaused, false
	}
	return v
}

// Encode is the inverse of Decode, used by test servers and tooling.
func Encode(n Notification, seq int64) (*Envelope, error) {
	var args []any
	switch v := n.(type) {
	case TableStatusInfo:
		args = []any{v.TableID, v.Players, v.Pots, v.CommunityCards, v.DealerSeat,
			v.SmallBlind, v.BigBlind, v.Ante, v.GameType, v.Limit,
			v.BuyIn, v.BaseBuyIn, v.MaxBuyIn, v.MaxPlayers,
			v.GameID, v.CurrentPlayerID, v.LastRaise,
			v.Frozen, v.Opened, v.Paused, v.TournamentID}
	case GameStarted:
		args = []any{v.TableID, v.GameID, v.Players, v.Actions, v.DealerSeat}
	case Bet:
		args = []any{v.TableID, v.PlayerID, v.Type, v.Amount, v.NextPlayerID}
	case OpenCards:
		args = []any{v.TableID, v.Cards}
	case MoveMoneyToPot:
		args = []any{v.TableID, v.Pots}
	case MoneyAdded:
		args = []any{v.TableID, v.PlayerID, v.Amount}
	case MoneyRemoved:
		args = []any{v.TableID, v.PlayerID, v.Amount}
	case PlayerCards:
		args = []any{v.TableID, v.PlayerID, v.Cards}
	case PlayerCardOpened:
		args = []any{v.TableID, v.PlayerID, v.Position, v.Card}
	case PlayerCardsMucked:
		args = []any{v.TableID, v.PlayerID}
	case Sit:
		args = []any{v.TableID, v.PlayerID, v.PlayerName, v.Seat, v.Money}
	case Standup:
		args = []any{v.TableID, v.PlayerID}
	case TableFlagChanged:
		args = []any{v.TableID}
	case GameFinished:
		args = []any{v.TableID, v.GameID, v.Winners, v.Rake}
	case PlayerStatus:
		args = []any{v.TableID, v.PlayerID, v.Status}
	case FinalTableCardsOpened:
		args = []any{v.TableID, v.Cards}
	case TableTournamentChanged:
		args = []any{v.TableID, v.TournamentID}
	case TableBetParametersChanged:
		args = []any{v.TableID, v.SmallBlind, v.BigBlind, v.Ante}
	case TableGameTypeChanged:
		args = []any{v.TableID, v.GameType, v.Limit}
	case ChatMessage:
		args = []any{v.TableID, v.MessageID, v.Sender, v.Text}
	case DuplicateConnection:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownNotification, n)
	}
	return NewNotification(n.Target(), seq, args...)
}
