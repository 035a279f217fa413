package table

import (
	"slices"

	"github.com/lox/pokertable/internal/cards"
	"github.com/lox/pokertable/internal/handrank"
	"github.com/lox/pokertable/internal/protocol"
)

// OnGameFinished distributes the pots one at a time in ascending pot order,
// pausing between pots. Each settled pot is removed from the tail of the pot
// list.
func (t *Table) OnGameFinished(gameID int64, winners []protocol.Winner, rake int) {
	winners = slices.Clone(winners)

	var potNos []int
	for i := range winners {
		if winners[i].Pot <= 0 {
			winners[i].Pot = 1
		}
		if !slices.Contains(potNos, winners[i].Pot) {
			potNos = append(potNos, winners[i].Pot)
		}
	}
	slices.Sort(potNos)

	gen := t.resyncs.Load()
	t.queue.PushCallback(t.deferredAt(gen, func() {
		if t.gameID != gameID {
			t.logger.Debug("Finishing a game the table did not track", "game", gameID, "current", t.gameID)
		}
		t.distributing = true
		t.currentPlayerID = 0
		for i := range t.seats {
			s := &t.seats[i]
			s.TotalBet += s.Bet
			s.Bet = 0
		}
	}))

	for _, n := range potNos {
		t.queue.WaitWithInterruption(t.timings.PotDistribution)
		t.queue.PushCallback(t.deferredAt(gen, func() { t.settlePotLocked(n, winners) }))
	}

	t.queue.PushCallback(func() {
		finished := t.mutateAt(gen, func() {
			t.pots = nil
			t.gameID = 0
			t.currentPlayerID = 0
			t.distributing = false
			t.lastRake = rake
			t.lastBet = nil
			t.actionsThisRound = 0
			for i := range t.seats {
				t.seats[i].Bet = 0
				t.seats[i].ActedThisRound = false
			}
		})
		if finished {
			t.logger.Info("Game finished", "game", gameID, "pots", len(potNos), "rake", rake)
		}
	})
}

func (t *Table) settlePotLocked(pot int, winners []protocol.Winner) {
	for _, w := range winners {
		if w.Pot != pot {
			continue
		}
		s := t.seatByPlayer(w.PlayerID)
		if s == nil {
			t.logger.Warn("Winner is not seated", "player", w.PlayerID, "pot", pot)
			continue
		}
		if len(w.Cards) > 0 {
			s.RawCards = w.Cards.Clone()
			s.CardsHidden = false
		}
		s.Money += w.Amount
		s.WinAmount += w.Amount
		s.Combination, s.WinnerCards = t.combinationLocked(s.RawCards)
	}
	if len(t.pots) > 0 {
		t.pots = t.pots[:len(t.pots)-1]
	}
}

// combinationLocked ranks hole cards against the board. WinnerCards indexes
// hole cards first, then the board.
func (t *Table) combinationLocked(hole cards.Cards) (*handrank.Combination, []int) {
	if !hole.Known() || len(t.community) < 3 {
		return nil, nil
	}
	all := append(hole.Clone(), t.community...)
	h, err := handrank.FromCards(all)
	if err != nil {
		return nil, nil
	}

	variant := handrank.Holdem
	if t.gameType == protocol.GameOmaha && len(hole) == 4 {
		variant = handrank.Omaha
	}
	r := handrank.GetCardRankFor(h, variant)
	if r.Type == handrank.Invalid {
		return nil, nil
	}
	c := handrank.Describe(h, r)
	return &c, slices.Clone(r.WinnerCardsSet[:])
}
