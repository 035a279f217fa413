package table

import (
	"slices"

	"github.com/lox/pokertable/internal/cards"
	"github.com/lox/pokertable/internal/protocol"
)

// OnTableStatusInfo replaces the whole table state with the server's view.
// Pending animations are dropped; applying the same data twice yields the
// same state.
func (t *Table) OnTableStatusInfo(info protocol.TableStatusInfo) {
	t.queue.Clear()
	t.mutate(func() {
		t.resyncs.Add(1)
		t.connected = true
		if info.TableID != 0 {
			t.id = info.TableID
		}

		t.seats = make([]Seat, 0, len(info.Players))
		actions := 0
		for _, p := range info.Players {
			seat := Seat{
				PlayerID:       p.PlayerID,
				PlayerName:     p.PlayerName,
				SeatNo:         p.Seat,
				Money:          p.Money,
				Bet:            p.Bet,
				TotalBet:       p.TotalBet,
				Status:         Status(p.Status),
				RawCards:       p.Cards.Clone(),
				Folded:         p.Folded,
				CardsHidden:    p.Folded,
				ActedThisRound: p.Acted,
			}
			if info.GameID != 0 {
				in := seat.Status.IsInGame()
				seat.WasInGame = &in
			}
			if p.Acted {
				actions++
			}
			t.seats = append(t.seats, seat)
		}
		t.sortSeats()

		t.pots = slices.Clone(info.Pots)
		t.community = info.CommunityCards.Clone()
		t.maxPlayers = info.MaxPlayers
		t.dealerSeat = info.DealerSeat
		t.smallBlind = info.SmallBlind
		t.bigBlind = info.BigBlind
		t.ante = info.Ante
		t.gameType = info.GameType
		if t.gameType == 0 {
			t.gameType = protocol.GameHoldem
		}
		t.limit = info.Limit
		t.buyIn = info.BuyIn
		t.baseBuyIn = info.BaseBuyIn
		t.maxBuyIn = info.MaxBuyIn
		t.gameID = info.GameID
		t.currentPlayerID = info.CurrentPlayerID
		t.lastRaise = info.LastRaise
		if t.lastRaise == 0 {
			t.lastRaise = t.bigBlind
		}
		t.actionsThisRound = actions
		t.frozen = info.Frozen
		t.opened = info.Opened
		t.paused = info.Paused
		t.closed = false
		t.tournamentID = info.TournamentID
		t.distributing = false
		t.lastBet = nil
		t.computeBlindSeatsLocked()
	})
	t.logger.Debug("Table resynchronized", "table", info.TableID, "game", info.GameID, "players", len(info.Players))
}

// computeBlindSeatsLocked walks clockwise from the dealer over seats that
// are in the game. With two players the dealer posts the small blind.
func (t *Table) computeBlindSeatsLocked() {
	var inGame []int
	for i := range t.seats {
		if t.seats[i].Status.IsInGame() {
			inGame = append(inGame, t.seats[i].SeatNo)
		}
	}
	t.smallBlindSeat, t.bigBlindSeat = 0, 0
	if len(inGame) < 2 {
		return
	}

	next := func(from int) int {
		for _, s := range inGame {
			if s > from {
				return s
			}
		}
		return inGame[0]
	}

	if len(inGame) == 2 && slices.Contains(inGame, t.dealerSeat) {
		t.smallBlindSeat = t.dealerSeat
	} else {
		t.smallBlindSeat = next(t.dealerSeat)
	}
	t.bigBlindSeat = next(t.smallBlindSeat)
}

// OnGameStarted is queued behind any animation still running for the
// previous hand.
func (t *Table) OnGameStarted(gameID int64, players []int64, actions []protocol.BetAction, dealerSeat int) {
	players = slices.Clone(players)
	actions = slices.Clone(actions)

	gen := t.resyncs.Load()
	t.queue.PushCallback(func() {
		started := t.mutateAt(gen, func() {
			for i := range t.seats {
				s := &t.seats[i]
				s.resetHand()
				in := slices.Contains(players, s.PlayerID)
				s.Status.SetInGame(in)
				s.WasInGame = &in
			}

			if p := t.pendingBetParameters; p != nil {
				t.smallBlind, t.bigBlind, t.ante = p.SmallBlind, p.BigBlind, p.Ante
				t.pendingBetParameters = nil
			}
			if p := t.pendingGameType; p != nil {
				t.gameType, t.limit = p.GameType, p.Limit
				t.pendingGameType = nil
			}

			t.gameID = gameID
			t.dealerSeat = dealerSeat
			t.pots = nil
			t.community = nil
			t.currentPlayerID = 0
			t.lastRaise = t.bigBlind
			t.actionsThisRound = 0
			t.distributing = false
			t.lastRake = 0
			t.lastBet = nil
			t.computeBlindSeatsLocked()

			for _, a := range actions {
				t.applyBetLocked(a, false)
			}
		})
		if started {
			t.logger.Info("Game started", "game", gameID, "players", len(players), "dealer", dealerSeat)
		}
	})
}

// OnBet applies one chip movement. amount is the number of chips moved by
// this action.
func (t *Table) OnBet(playerID int64, betType protocol.BetType, amount int, nextPlayerID int64) {
	b := protocol.BetAction{PlayerID: playerID, Type: betType, Amount: amount, NextPlayerID: nextPlayerID}
	t.inOrder(func() { t.applyBetLocked(b, true) })
}

func (t *Table) applyBetLocked(b protocol.BetAction, paced bool) {
	if t.lastBet != nil && *t.lastBet == b && b.PlayerID != t.currentPlayerID {
		t.logger.Debug("Dropping duplicate bet", "player", b.PlayerID, "type", b.Type, "amount", b.Amount)
		return
	}
	last := b
	t.lastBet = &last

	seat := t.seatByPlayer(b.PlayerID)
	if seat == nil {
		t.logger.Warn("Bet for unknown player", "player", b.PlayerID, "type", b.Type)
	} else {
		prevMax := MaximumBet(t.seats)

		switch b.Type {
		case protocol.BetAnte:
			seat.Money -= b.Amount
			seat.TotalBet += b.Amount
			if len(t.pots) == 0 {
				t.pots = []int{0}
			}
			t.pots[0] += b.Amount
		case protocol.BetReturnMoney:
			seat.Money += b.Amount
			seat.Bet = max(0, seat.Bet-b.Amount)
		case protocol.BetFold:
			seat.Folded = true
		default:
			seat.Money -= b.Amount
			seat.Bet += b.Amount
		}

		if b.Type == protocol.BetRaise {
			t.lastRaise = max(t.lastRaise, seat.Bet-prevMax)
		}

		switch b.Type {
		case protocol.BetCheckCall, protocol.BetRaise, protocol.BetFold:
			seat.ActedThisRound = true
			t.actionsThisRound++
		}

		if b.Type == protocol.BetFold && paced {
			pid := b.PlayerID
			t.queue.Wait(t.timings.FoldHide)
			t.queue.PushCallback(t.deferred(func() {
				if s := t.seatByPlayer(pid); s != nil && s.Folded {
					s.CardsHidden = true
				}
			}))
		}
	}

	if b.NextPlayerID != 0 {
		t.currentPlayerID = b.NextPlayerID
	}
	if paced {
		t.queue.Wait(t.timings.BetDisplay)
	}
}

// resetRoundLocked starts a new betting round.
func (t *Table) resetRoundLocked() {
	for i := range t.seats {
		t.seats[i].ActedThisRound = false
	}
	t.actionsThisRound = 0
	t.lastRaise = t.bigBlind
	t.lastBet = nil
}

// mergeBoard accepts either the newly dealt cards or the whole board.
func mergeBoard(board, incoming cards.Cards) cards.Cards {
	if len(board) > 0 && len(incoming) > len(board) && slices.Equal(incoming[:len(board)], board) {
		return incoming.Clone()
	}
	return append(board.Clone(), incoming...)
}

// OnOpenCards reveals community cards after the chips have settled.
func (t *Table) OnOpenCards(cs cards.Cards) {
	cs = cs.Clone()
	t.queue.Wait(t.timings.OpenCards)
	t.queue.PushCallback(t.deferred(func() {
		t.community = mergeBoard(t.community, cs)
		t.resetRoundLocked()
	}))
}

// OnMoveMoneyToPot collects the round's bets into the pots. amounts holds
// the server's pot totals, main pot first.
func (t *Table) OnMoveMoneyToPot(amounts []int) {
	amounts = slices.Clone(amounts)
	t.queue.Wait(t.timings.MoveToPot)
	t.queue.PushCallback(t.deferred(func() {
		for i := range t.seats {
			s := &t.seats[i]
			s.TotalBet += s.Bet
			s.Bet = 0
		}
		for i, a := range amounts {
			if i < len(t.pots) {
				t.pots[i] = a
			} else {
				t.pots = append(t.pots, a)
			}
		}
		t.resetRoundLocked()
	}))
}

// OnFinalTableCardsOpened runs out the rest of the board street by street
// when every remaining player is all-in.
func (t *Table) OnFinalTableCardsOpened(cs cards.Cards) {
	cs = cs.Clone()
	gen := t.resyncs.Load()
	t.queue.PushCallback(func() {
		t.mu.Lock()
		if t.resyncs.Load() != gen {
			t.mu.Unlock()
			return
		}
		current := t.community.Clone()
		t.mu.Unlock()

		full := mergeBoard(current, cs)
		var streets []cards.Cards
		for n := len(current); n < len(full); {
			size := 1
			if n == 0 {
				size = min(3, len(full))
			}
			streets = append(streets, full[n:n+size])
			n += size
		}

		// Injected in reverse so the streets run in order ahead of queued work.
		for i := len(streets) - 1; i >= 0; i-- {
			street := streets[i]
			t.queue.InjectCallback(t.deferredAt(gen, func() {
				t.community = append(t.community, street...)
			}))
			t.queue.InjectWait(t.timings.StreetReveal)
		}
	})
}

func (t *Table) OnMoneyAdded(playerID int64, amount int) {
	t.inOrder(func() {
		if s := t.seatByPlayer(playerID); s != nil {
			s.Money += amount
		}
	})
}

func (t *Table) OnMoneyRemoved(playerID int64, amount int) {
	t.inOrder(func() {
		if s := t.seatByPlayer(playerID); s != nil {
			s.Money = max(0, s.Money-amount)
		}
	})
}

// OnPlayerCards sets a player's hole cards; other players' cards arrive face-down.
func (t *Table) OnPlayerCards(playerID int64, cs cards.Cards) {
	cs = cs.Clone()
	t.inOrder(func() {
		if s := t.seatByPlayer(playerID); s != nil {
			s.RawCards = cs
			s.CardsHidden = false
		}
	})
}

// OnPlayerCardOpened reveals one hole card at a 0-based position.
func (t *Table) OnPlayerCardOpened(playerID int64, position int, card cards.Card) {
	if position < 0 {
		return
	}
	t.inOrder(func() {
		s := t.seatByPlayer(playerID)
		if s == nil {
			return
		}
		for len(s.RawCards) <= position {
			s.RawCards = append(s.RawCards, cards.FaceDown)
		}
		s.RawCards[position] = card
		s.CardsHidden = false
	})
}

func (t *Table) OnPlayerCardsMucked(playerID int64) {
	t.inOrder(func() {
		if s := t.seatByPlayer(playerID); s != nil {
			s.RawCards = nil
			s.CardsHidden = true
		}
	})
}

// OnSit seats a player, replacing whoever the table thought held the seat.
func (t *Table) OnSit(playerID int64, name string, seatNo, money int) {
	t.inOrder(func() {
		t.seats = slices.DeleteFunc(t.seats, func(s Seat) bool {
			return s.PlayerID == playerID || s.SeatNo == seatNo
		})
		t.seats = append(t.seats, Seat{
			PlayerID:   playerID,
			PlayerName: name,
			SeatNo:     seatNo,
			Money:      money,
		})
		t.sortSeats()
		if playerID == t.me {
			t.rejoinMinimumBuyIn = 0
		}
	})
	t.logger.Debug("Player sat", "player", playerID, "seat", seatNo, "money", money)
}

// OnStandup removes a player. An action the player already took this round
// no longer counts toward round completion.
func (t *Table) OnStandup(playerID int64) {
	t.inOrder(func() {
		s := t.seatByPlayer(playerID)
		if s == nil {
			return
		}
		if s.ActedThisRound && t.actionsThisRound > 0 {
			t.actionsThisRound--
		}
		if playerID == t.me {
			minBuyIn := max(s.Money, t.buyIn)
			if t.maxBuyIn > 0 {
				minBuyIn = min(minBuyIn, t.maxBuyIn)
			}
			t.rejoinMinimumBuyIn = minBuyIn
		}
		t.seats = slices.DeleteFunc(t.seats, func(s Seat) bool { return s.PlayerID == playerID })
	})
	t.logger.Debug("Player stood up", "player", playerID)
}

func (t *Table) OnPlayerStatus(playerID int64, status int) {
	t.inOrder(func() {
		if s := t.seatByPlayer(playerID); s != nil {
			s.Status = Status(status)
		}
	})
}

func (t *Table) OnTableFrozen()   { t.onTableFlag(protocol.FlagFrozen, true) }
func (t *Table) OnTableUnfrozen() { t.onTableFlag(protocol.FlagFrozen, false) }
func (t *Table) OnTableOpened()   { t.onTableFlag(protocol.FlagOpened, true) }
func (t *Table) OnTableClosed()   { t.onTableFlag(protocol.FlagClosed, true) }
func (t *Table) OnTablePaused()   { t.onTableFlag(protocol.FlagPaused, true) }
func (t *Table) OnTableResumed()  { t.onTableFlag(protocol.FlagPaused, false) }

func (t *Table) onTableFlag(flag protocol.TableFlag, on bool) {
	t.mutate(func() {
		switch flag {
		case protocol.FlagFrozen:
			t.frozen = on
		case protocol.FlagOpened:
			t.opened = on
			if on {
				t.closed = false
			}
		case protocol.FlagClosed:
			t.closed = on
			if on {
				t.opened = false
			}
		case protocol.FlagPaused:
			t.paused = on
		}
	})
}

func (t *Table) OnTableTournamentChanged(tournamentID int64) {
	t.mutate(func() { t.tournamentID = tournamentID })
}

// OnTableBetParametersChanged takes effect at the next game start, or now
// when no game is running.
func (t *Table) OnTableBetParametersChanged(smallBlind, bigBlind, ante int) {
	t.mutate(func() {
		if t.gameID == 0 {
			t.smallBlind, t.bigBlind, t.ante = smallBlind, bigBlind, ante
			t.pendingBetParameters = nil
			return
		}
		t.pendingBetParameters = &protocol.TableBetParametersChanged{
			TableID: t.id, SmallBlind: smallBlind, BigBlind: bigBlind, Ante: ante,
		}
	})
}

// OnTableGameTypeChanged takes effect at the next game start, or now when
// no game is running.
func (t *Table) OnTableGameTypeChanged(gameType protocol.GameType, limit protocol.Limit) {
	t.mutate(func() {
		if t.gameID == 0 {
			t.gameType, t.limit = gameType, limit
			t.pendingGameType = nil
			return
		}
		t.pendingGameType = &protocol.TableGameTypeChanged{TableID: t.id, GameType: gameType, Limit: limit}
	})
}

// OnChatMessage records a chat line once per message id. Ids at or below the
// newest line trimmed from the log are treated as replays.
func (t *Table) OnChatMessage(messageID int64, sender, text string) {
	t.mutate(func() {
		if _, seen := t.chatSeen[messageID]; seen || messageID <= t.chatTrimmed {
			return
		}
		t.chatSeen[messageID] = struct{}{}
		t.chat = append(t.chat, ChatLine{MessageID: messageID, Sender: sender, Text: text})
		for len(t.chat) > t.maxChat {
			dropped := t.chat[0].MessageID
			delete(t.chatSeen, dropped)
			t.chatTrimmed = max(t.chatTrimmed, dropped)
			t.chat = t.chat[1:]
		}
	})
}
