package handrank

import (
	"fmt"
	"sort"
	"strings"
)

// Combination describes a five-card hand for display: its type and the face
// values involved, in kicker order for that type.
type Combination struct {
	Type  HandType
	Cards []int
}

// GetHandTypeEx classifies five cards by sorting and counting, and reports
// the ranks that matter for describing the hand.
func GetHandTypeEx(h Hand) Combination {
	if len(h.Cards) != 5 || len(h.Suits) != 5 {
		return Combination{Type: Invalid}
	}

	counts := make(map[int]int, 5)
	for _, c := range h.Cards {
		counts[c]++
	}
	type group struct{ face, count int }
	groups := make([]group, 0, len(counts))
	for face, count := range counts {
		groups = append(groups, group{face, count})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].face > groups[j].face
	})

	faces := make([]int, len(groups))
	for i, g := range groups {
		faces[i] = g.face
	}

	flush := true
	for _, s := range h.Suits[1:] {
		if s != h.Suits[0] {
			flush = false
			break
		}
	}

	straightHigh := 0
	if len(groups) == 5 {
		switch {
		case faces[0]-faces[4] == 4:
			straightHigh = faces[0]
		case faces[0] == 14 && faces[1] == 5 && faces[4] == 2:
			straightHigh = 5
		}
	}

	switch {
	case straightHigh == 14 && flush:
		return Combination{Type: RoyalFlush, Cards: []int{}}
	case straightHigh > 0 && flush:
		return Combination{Type: StraightFlush, Cards: []int{straightHigh}}
	case groups[0].count == 4:
		return Combination{Type: FourOfAKind, Cards: faces}
	case groups[0].count == 3 && groups[1].count == 2:
		return Combination{Type: FullHouse, Cards: faces}
	case flush:
		return Combination{Type: Flush, Cards: faces}
	case straightHigh > 0:
		return Combination{Type: Straight, Cards: []int{straightHigh}}
	case groups[0].count == 3:
		return Combination{Type: ThreeOfAKind, Cards: faces}
	case groups[0].count == 2 && groups[1].count == 2:
		return Combination{Type: TwoPair, Cards: faces}
	case groups[0].count == 2:
		return Combination{Type: OnePair, Cards: faces}
	default:
		return Combination{Type: HighCard, Cards: faces}
	}
}

// Describe narrates the winning five cards of a ranked hand.
func Describe(h Hand, r CardRank) Combination {
	if r.Type == Invalid {
		return Combination{Type: Invalid}
	}
	return GetHandTypeEx(h.subset(r.WinnerCardsSet))
}

var faceNames = map[int][2]string{
	2:  {"Two", "Twos"},
	3:  {"Three", "Threes"},
	4:  {"Four", "Fours"},
	5:  {"Five", "Fives"},
	6:  {"Six", "Sixes"},
	7:  {"Seven", "Sevens"},
	8:  {"Eight", "Eights"},
	9:  {"Nine", "Nines"},
	10: {"Ten", "Tens"},
	11: {"Jack", "Jacks"},
	12: {"Queen", "Queens"},
	13: {"King", "Kings"},
	14: {"Ace", "Aces"},
}

func faceName(f int, plural bool) string {
	names, ok := faceNames[f]
	if !ok {
		return "?"
	}
	if plural {
		return names[1]
	}
	return names[0]
}

// String is the English fallback description; localized text is built by the
// presentation layer from Type and Cards.
func (c Combination) String() string {
	at := func(i int) int {
		if i < len(c.Cards) {
			return c.Cards[i]
		}
		return 0
	}

	switch c.Type {
	case RoyalFlush:
		return "Royal Flush"
	case StraightFlush:
		return fmt.Sprintf("Straight Flush, %s high", faceName(at(0), false))
	case FourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", faceName(at(0), true))
	case FullHouse:
		return fmt.Sprintf("Full House, %s over %s", faceName(at(0), true), faceName(at(1), true))
	case Flush:
		return fmt.Sprintf("Flush, %s high", faceName(at(0), false))
	case Straight:
		return fmt.Sprintf("Straight, %s high", faceName(at(0), false))
	case ThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", faceName(at(0), true))
	case TwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", faceName(at(0), true), faceName(at(1), true))
	case OnePair:
		return fmt.Sprintf("Pair of %s", faceName(at(0), true))
	case HighCard:
		names := make([]string, 0, len(c.Cards))
		for _, f := range c.Cards {
			names = append(names, faceName(f, false))
		}
		return "High Card, " + strings.Join(names, " ")
	default:
		return "Invalid"
	}
}
