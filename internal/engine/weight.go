// Package engine picks the next video to recommend from a candidate pool,
// weighting candidates by the feedback already given on their keyword.
package engine

import (
	"time"

	"github.com/lthms/reel/internal/feedback"
	"github.com/lthms/reel/internal/video"
)

const (
	baseWeight      = 1
	definitelyBoost = 3
	maybeBoost      = 1
	recencyBonus    = 2
	recencyWindow   = 180 * 24 * time.Hour
)

// KeywordWeight folds the history for keyword, starting from the base
// weight. A "never" resets the running weight to zero and the fold goes on,
// so boosts recorded after it count again from zero.
func KeywordWeight(keyword string, h *feedback.History) int {
	w := baseWeight
	for _, r := range h.Records() {
		if r.Keyword != keyword {
			continue
		}
		switch r.Rating {
		case feedback.Definitely:
			w += definitelyBoost
		case feedback.Maybe:
			w += maybeBoost
		case feedback.Never:
			w = 0
		}
	}
	return w
}

// Recent reports whether uploaded falls within the recency window before now.
func Recent(uploaded, now time.Time) bool {
	return !uploaded.IsZero() && uploaded.After(now.Add(-recencyWindow))
}

// Weight returns the relative draw weight of c. The recency bonus is added
// after the keyword fold unconditionally: a recent video on a "never"
// keyword weighs 2, not 0.
func Weight(c video.Candidate, h *feedback.History, now time.Time) int {
	w := KeywordWeight(c.Keyword, h)
	if Recent(c.UploadDate, now) {
		w += recencyBonus
	}
	return w
}
