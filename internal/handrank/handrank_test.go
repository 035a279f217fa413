package handrank

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/lox/pokertable/internal/cards"
)

func mustParse(t *testing.T, text string) Hand {
	t.Helper()
	h, err := ParseHand(text)
	if err != nil {
		t.Fatalf("ParseHand(%q) failed: %v", text, err)
	}
	return h
}

func TestGetHandType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hand string
		want HandType
	}{
		{"A♠ K♠ Q♠ J♠ 10♠", RoyalFlush},
		{"9♥ K♥ Q♥ J♥ 10♥", StraightFlush},
		{"A♦ 2♦ 3♦ 4♦ 5♦", StraightFlush},
		{"7♣ 7♦ 7♥ 7♠ 2♣", FourOfAKind},
		{"7♣ 7♦ 7♥ 2♠ 2♣", FullHouse},
		{"2♣ 9♣ J♣ 4♣ K♣", Flush},
		{"5♣ 6♦ 7♥ 8♠ 9♣", Straight},
		{"A♣ 2♦ 3♥ 4♠ 5♣", Straight},
		{"10♣ J♦ Q♥ K♠ A♣", Straight},
		{"Q♣ Q♦ Q♥ 4♠ 5♣", ThreeOfAKind},
		{"Q♣ Q♦ 4♥ 4♠ 5♣", TwoPair},
		{"Q♣ Q♦ 3♥ 4♠ 5♣", OnePair},
		{"Q♣ J♦ 3♥ 4♠ 5♣", HighCard},
		{"K♣ A♦ 2♥ 3♠ 4♣", HighCard},
	}

	for _, tt := range tests {
		t.Run(tt.hand, func(t *testing.T) {
			got := GetHandType(mustParse(t, tt.hand))
			if got != tt.want {
				t.Errorf("GetHandType(%s) = %s, want %s", tt.hand, got, tt.want)
			}
		})
	}

	if GetHandType(Hand{Cards: []int{2, 3, 4, 5}, Suits: []int{1, 1, 1, 1}}) != Invalid {
		t.Error("Four cards should classify as Invalid")
	}
}

func TestHandTypeStrengthOrder(t *testing.T) {
	t.Parallel()

	order := []HandType{Invalid, HighCard, OnePair, TwoPair, ThreeOfAKind, Straight, Flush, FullHouse, FourOfAKind, StraightFlush, RoyalFlush}
	for i, ht := range order {
		if ht.Strength() != i {
			t.Errorf("%s strength = %d, want %d", ht, ht.Strength(), i)
		}
	}
}

func permutations(a []int) [][]int {
	if len(a) <= 1 {
		return [][]int{append([]int(nil), a...)}
	}
	var out [][]int
	for i := range a {
		rest := make([]int, 0, len(a)-1)
		rest = append(rest, a[:i]...)
		rest = append(rest, a[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]int{a[i]}, p...))
		}
	}
	return out
}

func TestGetHandTypeOrderIndependent(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		deal := rng.Perm(52)[:5]
		cs := make(cards.Cards, 5)
		for i, c := range deal {
			cs[i] = cards.Card(c)
		}
		h, err := FromCards(cs)
		if err != nil {
			t.Fatal(err)
		}
		want := GetHandType(h)
		if again := GetHandType(h); again != want {
			t.Fatalf("non-deterministic result for %s: %s then %s", cs, want, again)
		}

		for _, p := range permutations([]int{0, 1, 2, 3, 4}) {
			var idx [5]int
			copy(idx[:], p)
			if got := GetHandType(h.subset(idx)); got != want {
				t.Fatalf("permutation %v of %s gave %s, want %s", p, cs, got, want)
			}
		}
	}
}

func TestPokerScoreWheel(t *testing.T) {
	t.Parallel()

	wheel := PokerScore([]int{14, 2, 3, 4, 5})
	sixHigh := PokerScore([]int{2, 3, 4, 5, 6})
	if wheel >= sixHigh {
		t.Errorf("wheel score %x should be below six-high straight %x", wheel, sixHigh)
	}
	if wheel != 0x54321 {
		t.Errorf("wheel score = %x, want 54321", wheel)
	}

	pair := PokerScore([]int{3, 14, 3, 9, 7})
	if pair != 0x33e97 {
		t.Errorf("pair score = %x, want 33e97", pair)
	}
}

func TestOutOfRangeFacesAreInvalid(t *testing.T) {
	t.Parallel()

	if got := PokerScore([]int{20, 2, 3, 4, 5}); got != 0 {
		t.Errorf("PokerScore with face 20 = %x, want 0", got)
	}
	if got := PokerScore([]int{1, 2, 3, 4, 5}); got != 0 {
		t.Errorf("PokerScore with face 1 = %x, want 0", got)
	}

	h := Hand{Cards: []int{15, 14, 13, 12, 11, 20}, Suits: []int{1, 1, 1, 1, 1, 1}}
	r := GetCardRank(h)
	if r.Type != Invalid {
		t.Errorf("GetCardRank with out-of-range faces = %s, want Invalid", r.Type)
	}
	if r.WinnerCardsSet != [5]int{-1, -1, -1, -1, -1} {
		t.Errorf("WinnerCardsSet = %v, want all -1", r.WinnerCardsSet)
	}

	h = Hand{Cards: []int{14, 14, 13, 12, 11, 20}, Suits: []int{1, 2, 1, 1, 1, 1}}
	if r := GetCardRank(h); r.Type != OnePair {
		t.Errorf("best valid subset = %s, want OnePair", r.Type)
	}
}

func TestGetCardRankRoundTrip(t *testing.T) {
	t.Parallel()

	rank := GetCardRank(mustParse(t, "A♠ 10♠ 8♠ 7♠ 2♠ A♣ 3♣"))
	if rank.Type != Flush {
		t.Fatalf("Expected Flush, got %s", rank.Type)
	}
	if rank.WinnerCardsSet != [5]int{0, 1, 2, 3, 4} {
		t.Errorf("Expected winner set [0 1 2 3 4], got %v", rank.WinnerCardsSet)
	}
}

func TestGetCardRankTieBreaks(t *testing.T) {
	t.Parallel()

	wheel := GetCardRank(mustParse(t, "A♠ 2♦ 3♣ 4♥ 5♠ K♦ K♣"))
	six := GetCardRank(mustParse(t, "6♠ 2♦ 3♣ 4♥ 5♠ K♦ K♣"))
	if wheel.Type != Straight || six.Type != Straight {
		t.Fatalf("Expected two straights, got %s and %s", wheel.Type, six.Type)
	}
	if six.Compare(wheel) != 1 {
		t.Errorf("six-high straight should beat the wheel (%x vs %x)", six.Score, wheel.Score)
	}

	higherKicker := GetCardRank(mustParse(t, "K♠ K♦ A♣ 7♥ 5♠ 3♦ 2♣"))
	lowerKicker := GetCardRank(mustParse(t, "K♥ K♣ Q♣ 7♦ 5♣ 3♠ 2♦"))
	if higherKicker.Type != OnePair || higherKicker.Compare(lowerKicker) != 1 {
		t.Errorf("Ace kicker should beat queen kicker: %+v vs %+v", higherKicker, lowerKicker)
	}

	// Best straight among seven connected cards uses the top five.
	top := GetCardRank(mustParse(t, "3♠ 4♦ 5♣ 6♥ 7♠ 8♦ 9♣"))
	if top.WinnerCardsSet != [5]int{2, 3, 4, 5, 6} {
		t.Errorf("Expected top straight indices [2 3 4 5 6], got %v", top.WinnerCardsSet)
	}
}

func TestGetCardRankOmaha(t *testing.T) {
	t.Parallel()

	// Four spades on the board and one in the hole: a flush in hold'em, but
	// Omaha needs two spades from the hole.
	h := mustParse(t, "A♥ A♦ K♠ Q♣ 2♠ 5♠ 8♠ J♠ 3♦")
	holdem := GetCardRankFor(Hand{Cards: h.Cards[2:], Suits: h.Suits[2:]}, Holdem)
	if holdem.Type != Flush {
		t.Fatalf("Board plus one spade should hold a flush in hold'em, got %s", holdem.Type)
	}

	omaha := GetCardRankFor(h, Omaha)
	if omaha.Type != OnePair {
		t.Fatalf("Expected pair of aces in Omaha, got %s", omaha.Type)
	}
	if omaha.WinnerCardsSet != [5]int{0, 1, 5, 6, 7} {
		t.Errorf("Expected both aces with J 8 5 from the board, got %v", omaha.WinnerCardsSet)
	}
	for _, i := range omaha.WinnerCardsSet[2:] {
		if i < 4 {
			t.Errorf("Omaha combination used more than two hole cards: %v", omaha.WinnerCardsSet)
		}
	}

	if r := GetCardRankFor(mustParse(t, "A♥ A♦ K♣ Q♣ 2♠ 5♠"), Omaha); r.Type != Invalid {
		t.Errorf("Omaha with a two-card board should be Invalid, got %s", r.Type)
	}
}

func TestParseHandStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want ParseStatus
	}{
		{"ok", "A♠ 10♠ 8♠ 7♠ 2♠ A♣ 3♣", StatusOk},
		{"ascii suits", "As Ts 8s 7s 2s", StatusOk},
		{"empty", "   ", StatusInvalidHand},
		{"bad glyph", "A♠ X♠ 8♠ 7♠ 2♠", StatusInvalidHand},
		{"too many", "2♠ 3♠ 4♠ 5♠ 6♠ 7♠ 8♠ 9♠ 10♠ J♠", StatusInvalidHand},
		{"no ranks", "♠ ♣ ♥", StatusCardsMissing},
		{"no suits", "A K Q J 10", StatusSuitsMissing},
		{"missing suit", "A♠ K Q♠ J♠ 10♠", StatusAllCardsShouldHaveOneSuit},
		{"double suit", "A♠♣ K♠ Q♠ J♠ 10♠", StatusAllCardsShouldHaveOneSuit},
		{"short with dup", "A♠ A♠ K♦", StatusInsufficientCardsAndDuplicates},
		{"short", "A♠ K♦", StatusInsufficientCards},
		{"dup", "A♠ A♠ K♦ Q♦ J♦", StatusDuplicatesDetected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckHand(tt.text); got != tt.want {
				t.Errorf("CheckHand(%q) = %s, want %s", tt.text, got, tt.want)
			}
			_, err := ParseHand(tt.text)
			if tt.want == StatusOk {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			} else if !errors.Is(err, tt.want.Err()) {
				t.Errorf("ParseHand(%q) error = %v, want %v", tt.text, err, tt.want.Err())
			}
		})
	}
}

func TestGetHandTypeEx(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hand  string
		want  HandType
		cards []int
		text  string
	}{
		{"A♠ K♠ Q♠ J♠ 10♠", RoyalFlush, []int{}, "Royal Flush"},
		{"A♦ 2♦ 3♦ 4♦ 5♦", StraightFlush, []int{5}, "Straight Flush, Five high"},
		{"7♣ 2♦ 7♥ 7♠ 7♦", FourOfAKind, []int{7, 2}, "Four of a Kind, Sevens"},
		{"2♣ 7♦ 2♥ 7♠ 7♣", FullHouse, []int{7, 2}, "Full House, Sevens over Twos"},
		{"2♣ 9♣ J♣ 4♣ K♣", Flush, []int{13, 11, 9, 4, 2}, "Flush, King high"},
		{"A♣ 2♦ 3♥ 4♠ 5♣", Straight, []int{5}, "Straight, Five high"},
		{"4♠ Q♦ 5♣ Q♣ Q♥", ThreeOfAKind, []int{12, 5, 4}, "Three of a Kind, Queens"},
		{"4♠ Q♦ 5♣ Q♣ 4♥", TwoPair, []int{12, 4, 5}, "Two Pair, Queens and Fours"},
		{"3♥ Q♦ 5♣ Q♣ 4♠", OnePair, []int{12, 5, 4, 3}, "Pair of Queens"},
		{"3♥ J♦ 5♣ Q♣ 4♠", HighCard, []int{12, 11, 5, 4, 3}, "High Card, Queen Jack Five Four Three"},
	}

	for _, tt := range tests {
		t.Run(tt.hand, func(t *testing.T) {
			h := mustParse(t, tt.hand)
			got := GetHandTypeEx(h)
			if got.Type != tt.want {
				t.Fatalf("GetHandTypeEx type = %s, want %s", got.Type, tt.want)
			}
			if len(got.Cards) != len(tt.cards) {
				t.Fatalf("GetHandTypeEx cards = %v, want %v", got.Cards, tt.cards)
			}
			for i := range tt.cards {
				if got.Cards[i] != tt.cards[i] {
					t.Errorf("GetHandTypeEx cards = %v, want %v", got.Cards, tt.cards)
					break
				}
			}
			if got.String() != tt.text {
				t.Errorf("String() = %q, want %q", got.String(), tt.text)
			}
			// Both classifiers agree on the category.
			if fast := GetHandType(h); fast != got.Type {
				t.Errorf("GetHandType = %s, GetHandTypeEx = %s", fast, got.Type)
			}
		})
	}
}

func TestDescribeWinningCards(t *testing.T) {
	t.Parallel()

	h := mustParse(t, "K♠ K♦ 9♣ 9♥ 4♠ 4♦ 2♣")
	r := GetCardRank(h)
	if r.Type != TwoPair {
		t.Fatalf("Expected Two Pair, got %s", r.Type)
	}
	combo := Describe(h, r)
	if combo.String() != "Two Pair, Kings and Nines" {
		t.Errorf("Unexpected description %q", combo.String())
	}
}

func TestWinners(t *testing.T) {
	t.Parallel()

	board := "Q♠ J♠ 10♦ 4♣ 2♥"
	hands := []Hand{
		mustParse(t, "A♦ K♦ "+board),
		mustParse(t, "A♣ K♣ "+board),
		mustParse(t, "Q♦ Q♣ "+board),
	}
	ranks, err := RankAll(t.Context(), hands, Holdem)
	if err != nil {
		t.Fatalf("RankAll failed: %v", err)
	}
	winners := Winners(ranks)
	if len(winners) != 2 || winners[0] != 0 || winners[1] != 1 {
		t.Errorf("Expected split between the two Broadway hands, got %v", winners)
	}
}
