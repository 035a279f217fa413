package table

import (
	"github.com/lox/pokertable/internal/protocol"
)

// Limits are the betting values derived for one player from the table
// state. Raise amounts are totals for the round, not increments.
type Limits struct {
	PlayerID int64

	MaximumBet                            int
	CallDifference                        int
	CheckOrCallAmount                     int
	MaxAmountOfMoneyForOtherActivePlayers int
	PotSize                               int
	MaximumRaiseAmount                    int
	MinimumRaiseAmount                    int

	Button1Amount int
	Button2Amount int
	Button3Amount int
	SliderMin     int
	SliderMax     int

	CanCheck bool
	CanRaise bool
}

// BettingRules are the table parameters the limits depend on.
type BettingRules struct {
	BigBlind  int
	LastRaise int
	Limit     protocol.Limit
}

// MaximumBet is the largest bet in the current round.
func MaximumBet(seats []Seat) int {
	maxBet := 0
	for i := range seats {
		maxBet = max(maxBet, seats[i].Bet)
	}
	return maxBet
}

// PotSize is every settled pot plus every bet on the table.
func PotSize(seats []Seat, pots []int) int {
	total := 0
	for _, p := range pots {
		total += p
	}
	for i := range seats {
		total += seats[i].Bet
	}
	return total
}

// ComputeLimits derives the raise window and button amounts for playerID.
// A player who is not seated gets zero limits.
func ComputeLimits(seats []Seat, pots []int, playerID int64, rules BettingRules) Limits {
	l := Limits{PlayerID: playerID}
	me := -1
	for i := range seats {
		if seats[i].PlayerID == playerID {
			me = i
			break
		}
	}
	if me < 0 || playerID == 0 {
		return l
	}

	my := seats[me]
	l.MaximumBet = MaximumBet(seats)
	l.PotSize = PotSize(seats, pots)
	l.CallDifference = l.MaximumBet - my.Bet
	l.CheckOrCallAmount = min(l.CallDifference, my.Money)

	for i := range seats {
		if i == me || !seats[i].Active() {
			continue
		}
		l.MaxAmountOfMoneyForOtherActivePlayers = max(l.MaxAmountOfMoneyForOtherActivePlayers, seats[i].Bet+seats[i].Money)
	}

	myTotal := my.Money + my.Bet
	l.MaximumRaiseAmount = min(myTotal, l.MaxAmountOfMoneyForOtherActivePlayers)
	if rules.Limit == protocol.PotLimit {
		l.MaximumRaiseAmount = min(l.MaximumRaiseAmount, l.MaximumBet+l.PotSize+l.CallDifference)
	}

	l.MinimumRaiseAmount = max(l.MaximumBet+rules.LastRaise, rules.BigBlind)
	l.MinimumRaiseAmount = min(l.MinimumRaiseAmount, myTotal, l.MaxAmountOfMoneyForOtherActivePlayers, l.MaximumRaiseAmount)

	l.CanCheck = l.CallDifference <= 0
	l.CanRaise = l.MaximumRaiseAmount > l.MaximumBet && my.Money > l.CallDifference

	l.Button1Amount = l.CheckOrCallAmount
	l.Button2Amount = l.MinimumRaiseAmount
	l.Button3Amount = l.MaximumRaiseAmount
	l.SliderMin = l.MinimumRaiseAmount
	l.SliderMax = l.MaximumRaiseAmount
	return l
}

// ClampRaise moves amount into the legal raise window.
func (l Limits) ClampRaise(amount int) int {
	if amount > l.MaximumRaiseAmount {
		amount = l.MaximumRaiseAmount
	}
	if amount < l.MinimumRaiseAmount {
		amount = l.MinimumRaiseAmount
	}
	return amount
}

// AllBetsRounded reports whether the betting round is complete: every active
// seat has matched the maximum bet or is all-in, and at least as many
// actions were taken as there are active seats.
func AllBetsRounded(seats []Seat, actionsThisRound int) bool {
	maxBet := MaximumBet(seats)
	active := 0
	for i := range seats {
		s := &seats[i]
		if !s.Active() {
			continue
		}
		active++
		if s.Bet != maxBet && s.Money != 0 {
			return false
		}
	}
	return actionsThisRound >= active
}
