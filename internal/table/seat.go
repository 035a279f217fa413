package table

import (
	"slices"

	"github.com/lox/pokertable/internal/cards"
	"github.com/lox/pokertable/internal/handrank"
)

// Status is the server's per-seat bitfield.
type Status int

const (
	StatusSitOut        Status = 1
	StatusParticipating Status = 2
	StatusInGame        Status = 4
)

func (s Status) IsSitOut() bool        { return s&StatusSitOut != 0 }
func (s Status) IsParticipating() bool { return s&StatusParticipating != 0 }
func (s Status) IsInGame() bool        { return s&StatusInGame != 0 }

func (s *Status) SetSitOut(on bool)        { s.set(StatusSitOut, on) }
func (s *Status) SetParticipating(on bool) { s.set(StatusParticipating, on) }
func (s *Status) SetInGame(on bool)        { s.set(StatusInGame, on) }

func (s *Status) set(bit Status, on bool) {
	if on {
		*s |= bit
	} else {
		*s &^= bit
	}
}

// Seat is one occupied seat. Seat numbers are 1-based.
type Seat struct {
	PlayerID   int64
	PlayerName string
	SeatNo     int
	Money      int
	Bet        int
	TotalBet   int
	Status     Status
	RawCards   cards.Cards

	// WasInGame is nil until the seat has seen a game start.
	WasInGame *bool

	Folded         bool
	CardsHidden    bool
	ActedThisRound bool
	WinAmount      int
	Combination    *handrank.Combination
	WinnerCards    []int
}

// Active reports whether the seat is still contesting the current hand.
func (s *Seat) Active() bool {
	return s.Status.IsInGame() && !s.Folded
}

// AllIn reports whether an active seat has no chips behind.
func (s *Seat) AllIn() bool {
	return s.Active() && s.Money == 0
}

func (s *Seat) resetHand() {
	s.Bet = 0
	s.TotalBet = 0
	s.RawCards = nil
	s.Folded = false
	s.CardsHidden = false
	s.ActedThisRound = false
	s.WinAmount = 0
	s.Combination = nil
	s.WinnerCards = nil
}

func (s Seat) clone() Seat {
	s.RawCards = s.RawCards.Clone()
	if s.WasInGame != nil {
		v := *s.WasInGame
		s.WasInGame = &v
	}
	if s.Combination != nil {
		c := *s.Combination
		c.Cards = slices.Clone(c.Cards)
		s.Combination = &c
	}
	s.WinnerCards = slices.Clone(s.WinnerCards)
	return s
}
