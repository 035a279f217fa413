package handrank

import (
	"context"

	"golang.org/x/sync/errgroup"
)

var invalidRank = CardRank{Type: Invalid, WinnerCardsSet: [5]int{-1, -1, -1, -1, -1}}

// GetCardRank finds the best five-card Hold'em hand among 5 to 7 cards.
func GetCardRank(h Hand) CardRank {
	return GetCardRankFor(h, Holdem)
}

// GetCardRankFor finds the best legal five-card hand for the variant. For
// Omaha the first four cards are hole cards and exactly two of them must be
// combined with exactly three of the remaining table cards.
func GetCardRankFor(h Hand, v Variant) CardRank {
	if len(h.Cards) != len(h.Suits) || len(h.Cards) < 5 {
		return invalidRank
	}

	var combos [][5]int
	if v == Omaha {
		if len(h.Cards) < omahaHoleCards+3 {
			return invalidRank
		}
		combos = omahaCombinations(omahaHoleCards, len(h.Cards))
	} else {
		if len(h.Cards) > 7 {
			return invalidRank
		}
		combos = combinations(len(h.Cards))
	}

	best := invalidRank
	bestStrength := -1
	for _, idx := range combos {
		sub := h.subset(idx)
		t := GetHandType(sub)
		if t == Invalid {
			continue
		}
		strength := t.Strength()
		if strength < bestStrength {
			continue
		}
		score := PokerScore(sub.Cards)
		if strength == bestStrength && score <= best.Score {
			continue
		}
		best = CardRank{Type: t, Score: score, WinnerCardsSet: idx}
		bestStrength = strength
	}
	return best
}

// combinations returns every 5-element index subset of n, in lexicographic order.
func combinations(n int) [][5]int {
	var out [][5]int
	var idx [5]int
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == 5 {
			out = append(out, idx)
			return
		}
		for i := start; i <= n-(5-depth); i++ {
			idx[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return out
}

// omahaCombinations returns every subset made of two of the first hole
// indices and three of the remaining n-hole indices.
func omahaCombinations(hole, n int) [][5]int {
	var out [][5]int
	for a := 0; a < hole; a++ {
		for b := a + 1; b < hole; b++ {
			for c := hole; c < n; c++ {
				for d := c + 1; d < n; d++ {
					for e := d + 1; e < n; e++ {
						out = append(out, [5]int{a, b, c, d, e})
					}
				}
			}
		}
	}
	return out
}

// RankAll evaluates several hands concurrently.
func RankAll(ctx context.Context, hands []Hand, v Variant) ([]CardRank, error) {
	out := make([]CardRank, len(hands))
	g, ctx := errgroup.WithContext(ctx)
	for i, h := range hands {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = GetCardRankFor(h, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Winners returns the indices of the strongest ranks, ties included.
func Winners(ranks []CardRank) []int {
	var winners []int
	for i, r := range ranks {
		if r.Type == Invalid {
			continue
		}
		if len(winners) == 0 {
			winners = []int{i}
			continue
		}
		switch r.Compare(ranks[winners[0]]) {
		case 1:
			winners = []int{i}
		case 0:
			winners = append(winners, i)
		}
	}
	return winners
}
