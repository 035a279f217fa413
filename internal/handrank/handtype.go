package handrank

import "sort"

const (
	wheelMask = 0x403c // A,5,4,3,2
	royalMask = 0x7c00 // A,K,Q,J,T
)

// GetHandType classifies exactly five cards.
//
// Each card adds to a 4-bit counter at nibble position face*4; a counter
// holding n copies reads 2^n-1, so v%15 sums to 1 for quads, 5 for five
// distinct ranks, 6 for a pair, 7 for two pair, 9 for trips and 10 for a
// full house. Five distinct ranks are then tested for straight and flush.
func GetHandType(h Hand) HandType {
	if len(h.Cards) != 5 || len(h.Suits) != 5 {
		return Invalid
	}

	var v uint64
	for _, c := range h.Cards {
		if c < 2 || c > 14 {
			return Invalid
		}
		o := uint64(1) << (uint(c) * 4)
		v += o * ((v/o)&15 + 1)
	}

	v %= 15
	if v != 5 {
		return HandType(v - 1)
	}

	s := 1<<h.Cards[0] | 1<<h.Cards[1] | 1<<h.Cards[2] | 1<<h.Cards[3] | 1<<h.Cards[4]
	t := int(v)
	if s/(s&-s) == 31 || s == wheelMask {
		t -= 3
	} else {
		t--
	}

	flush := h.Suits[0] == h.Suits[0]|h.Suits[1]|h.Suits[2]|h.Suits[3]|h.Suits[4]
	if flush {
		if s == royalMask {
			t += 5
		} else {
			t--
		}
	}
	return HandType(t)
}

// PokerScore packs five face values into a base-16 number, ordered by
// frequency then rank, so that equal hand types compare numerically. A wheel
// scores as 5-4-3-2-1. Anything but five faces in 2..14 scores 0.
func PokerScore(faces []int) int {
	if len(faces) != 5 {
		return 0
	}

	var counts [15]int
	for _, f := range faces {
		if f < 2 || f > 14 {
			return 0
		}
		counts[f]++
	}

	a := make([]int, 5)
	copy(a, faces)
	sort.Slice(a, func(i, j int) bool {
		if counts[a[i]] != counts[a[j]] {
			return counts[a[i]] > counts[a[j]]
		}
		return a[i] > a[j]
	})

	if a[0] == 14 && a[1] == 5 && a[2] == 4 && a[3] == 3 && a[4] == 2 {
		a = []int{5, 4, 3, 2, 1}
	}

	return a[0]<<16 | a[1]<<12 | a[2]<<8 | a[3]<<4 | a[4]
}
