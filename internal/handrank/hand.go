package handrank

import (
	"errors"
	"fmt"

	"github.com/lox/pokertable/internal/cards"
)

// HandType is the classifier index returned by GetHandType. The indices are
// not in strength order; use Strength to compare.
type HandType int

const (
	FourOfAKind HandType = iota
	StraightFlush
	Straight
	Flush
	HighCard
	OnePair
	TwoPair
	RoyalFlush
	ThreeOfAKind
	FullHouse
	Invalid
)

// handTypeRanks maps a HandType index to its strength (0 weakest, 10 strongest).
var handTypeRanks = [...]int{8, 9, 5, 6, 1, 2, 3, 10, 4, 7, 0}

// Strength returns the true strength of the hand type.
func (t HandType) Strength() int {
	if t < 0 || int(t) >= len(handTypeRanks) {
		return 0
	}
	return handTypeRanks[t]
}

// String returns a human-readable hand type.
func (t HandType) String() string {
	switch t {
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case RoyalFlush:
		return "Royal Flush"
	case ThreeOfAKind:
		return "Three of a Kind"
	case FullHouse:
		return "Full House"
	default:
		return "Invalid"
	}
}

// Variant selects which five-card subsets are legal.
type Variant int

const (
	Holdem Variant = iota
	Omaha
)

// omahaHoleCards is the number of leading cards treated as hole cards for Omaha.
const omahaHoleCards = 4

func (v Variant) String() string {
	if v == Omaha {
		return "omaha"
	}
	return "holdem"
}

// Hand holds parallel face values (2..14) and suit bitmasks (1 << suit).
type Hand struct {
	Cards []int
	Suits []int
}

// ErrFaceDown is returned when a hand contains a face-down card.
var ErrFaceDown = errors.New("hand contains face-down card")

// FromCards converts server cards into the ranking representation.
func FromCards(cs cards.Cards) (Hand, error) {
	h := Hand{
		Cards: make([]int, 0, len(cs)),
		Suits: make([]int, 0, len(cs)),
	}
	for i, c := range cs {
		if !c.Valid() {
			return Hand{}, fmt.Errorf("card %d: %w", i, ErrFaceDown)
		}
		h.Cards = append(h.Cards, c.Face())
		h.Suits = append(h.Suits, 1<<c.Suit())
	}
	return h, nil
}

// Len returns the number of cards.
func (h Hand) Len() int {
	return len(h.Cards)
}

// subset builds a five-card hand from the given indices.
func (h Hand) subset(idx [5]int) Hand {
	out := Hand{Cards: make([]int, 5), Suits: make([]int, 5)}
	for i, j := range idx {
		out.Cards[i] = h.Cards[j]
		out.Suits[i] = h.Suits[j]
	}
	return out
}

// CardRank is the canonical strength of a hand together with the original
// indices of the five cards that form it.
type CardRank struct {
	Type           HandType
	Score          int
	WinnerCardsSet [5]int
}

// Compare returns 1 if r beats other, -1 if it loses and 0 on a tie.
func (r CardRank) Compare(other CardRank) int {
	switch a, b := r.Type.Strength(), other.Type.Strength(); {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	switch {
	case r.Score > other.Score:
		return 1
	case r.Score < other.Score:
		return -1
	}
	return 0
}

// Compare compares two ranks; see CardRank.Compare.
func Compare(a, b CardRank) int {
	return a.Compare(b)
}
