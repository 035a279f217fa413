package history

import (
	"fmt"
	"math"
	"sort"
)

// Result is the outcome of one hand for the tracked player.
type Result struct {
	NetBB          float64
	WentToShowdown bool
	PotChips       int
	PotBB          float64
}

// Stats accumulates results in big blinds.
type Stats struct {
	Hands  int
	SumBB  float64
	SumBB2 float64
	Values []float64

	ShowdownWins    int
	NonShowdownWins int
	ShowdownBB      float64
	NonShowdownBB   float64
	AllBB           float64

	MaxPotChips int
	MaxPotBB    float64
}

// ResultFor extracts the result of player index i from a finished hand.
func ResultFor(h *Hand, i int) Result {
	r := Result{
		WentToShowdown: h.WentToShowdown(),
		PotChips:       h.Pot(),
	}
	if h.MinBet > 0 {
		r.NetBB = float64(h.Net(i)) / float64(h.MinBet)
		r.PotBB = float64(r.PotChips) / float64(h.MinBet)
	}
	return r
}

// Add incorporates one hand.
func (s *Stats) Add(r Result) {
	s.Hands++
	s.SumBB += r.NetBB
	s.SumBB2 += r.NetBB * r.NetBB
	s.Values = append(s.Values, r.NetBB)

	if r.NetBB > 0 {
		if r.WentToShowdown {
			s.ShowdownWins++
		} else {
			s.NonShowdownWins++
		}
	}
	if r.WentToShowdown {
		s.ShowdownBB += r.NetBB
	} else {
		s.NonShowdownBB += r.NetBB
	}
	s.AllBB += r.NetBB

	if r.PotChips > s.MaxPotChips {
		s.MaxPotChips = r.PotChips
		s.MaxPotBB = r.PotBB
	}
}

// Clone returns a copy that does not share Values.
func (s Stats) Clone() Stats {
	s.Values = append([]float64(nil), s.Values...)
	return s
}

// Mean is the average result in big blinds per hand.
func (s Stats) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance is the sample variance.
func (s Stats) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

func (s Stats) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

func (s Stats) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% interval for the mean.
func (s Stats) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

func (s Stats) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), s.Values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Validate checks that the showdown split adds up.
func (s Stats) Validate() error {
	if math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) > 1e-6 {
		return fmt.Errorf("ledger mismatch: all=%.6f showdown=%.6f non-showdown=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if s.Hands != len(s.Values) {
		return fmt.Errorf("hand count %d does not match %d results", s.Hands, len(s.Values))
	}
	return nil
}

// Summary is a one-line description of the session.
func (s Stats) Summary() string {
	if s.Hands == 0 {
		return "no hands played"
	}
	lo, hi := s.ConfidenceInterval95()
	return fmt.Sprintf("%d hands, %+.2f bb/hand (95%% CI %+.2f to %+.2f), won %d at showdown and %d without",
		s.Hands, s.Mean(), lo, hi, s.ShowdownWins, s.NonShowdownWins)
}
