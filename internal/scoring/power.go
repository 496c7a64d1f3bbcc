// Package scoring maps aggregate counts to the power level used for ranking.
package scoring

import "math"

const (
	commitWeight = 0.6
	starWeight   = 0.25
	forkWeight   = 0.15
	commitScale  = 50
)

// PowerLevel computes
//
//	round((ln(commits+1)*50*0.6 + stars*0.25 + forks*0.15) * (languages/10 + 1))
//
// Rounding is math.Round, half away from zero. Inputs are never negative in
// practice; they are clamped to zero so the result stays non-negative.
func PowerLevel(commits, stars, forks, languageCount int) int {
	c := float64(max(commits, 0))
	s := float64(max(stars, 0))
	f := float64(max(forks, 0))
	l := float64(max(languageCount, 0))

	base := math.Log(c+1)*commitScale*commitWeight +
		s*starWeight +
		f*forkWeight
	multiplier := l/10 + 1

	return int(math.Round(base * multiplier))
}
