package engine

import (
	"math/rand/v2"
	"time"

	"github.com/lthms/reel/internal/feedback"
	"github.com/lthms/reel/internal/video"
)

// Rand is the randomness a Selector draws from. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

// entropy draws from math/rand/v2's global generator, which is seeded from
// system entropy.
type entropy struct{}

func (entropy) IntN(n int) int { return rand.IntN(n) }

// Selector performs the weighted random draw over unrated candidates.
type Selector struct {
	Rand Rand             // defaults to the entropy-seeded global generator
	Now  func() time.Time // defaults to time.Now
}

// Weighted is a candidate paired with its computed weight.
type Weighted struct {
	Candidate video.Candidate
	Weight    int
}

// Eligible returns the unrated candidates with a positive weight, in input
// order.
func (s *Selector) Eligible(candidates []video.Candidate, h *feedback.History) []Weighted {
	now := s.now()
	var out []Weighted
	for _, c := range candidates {
		if h.Has(c.Link) {
			continue
		}
		w := Weight(c, h, now)
		if w == 0 {
			continue
		}
		out = append(out, Weighted{Candidate: c, Weight: w})
	}
	return out
}

// Select draws one eligible candidate with probability proportional to its
// weight. It returns false when nothing is eligible.
func (s *Selector) Select(candidates []video.Candidate, h *feedback.History) (video.Candidate, bool) {
	eligible := s.Eligible(candidates, h)
	if len(eligible) == 0 {
		return video.Candidate{}, false
	}

	total := 0
	for _, e := range eligible {
		total += e.Weight
	}

	r := s.source().IntN(total)
	cumulative := 0
	for _, e := range eligible {
		cumulative += e.Weight
		if r < cumulative {
			return e.Candidate, true
		}
	}
	// Unreachable: r < total == final cumulative.
	return eligible[len(eligible)-1].Candidate, true
}

func (s *Selector) source() Rand {
	if s.Rand == nil {
		return entropy{}
	}
	return s.Rand
}

func (s *Selector) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
