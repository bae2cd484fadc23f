package ratings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedScore_EqualRatings(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1200, 1200), 1e-12)
}

func TestExpectedScore_FourHundredGap(t *testing.T) {
	// A 400 point edge means ten to one odds.
	assert.InDelta(t, 10.0/11.0, ExpectedScore(1600, 1200), 1e-12)
	assert.InDelta(t, 1.0/11.0, ExpectedScore(1200, 1600), 1e-12)
}

func TestDelta_EvenGame(t *testing.T) {
	assert.InDelta(t, 16.0, Delta(1200, 1200, true), 1e-12)
	assert.InDelta(t, -16.0, Delta(1200, 1200, false), 1e-12)
}

func TestDelta_UnderdogWinsMore(t *testing.T) {
	underdog := Delta(1100, 1300, true)
	favourite := Delta(1300, 1100, true)
	assert.Greater(t, underdog, favourite)
	assert.InDelta(t, KFactor, underdog+favourite, 1e-9)
}

func TestTeamRating(t *testing.T) {
	assert.Equal(t, 1250.0, TeamRating(1200, 1300))
	assert.Equal(t, 1200.5, TeamRating(1200, 1201))
}

func TestApply_IndependentRoundingCanBeAsymmetric(t *testing.T) {
	// Both sides see the same unrounded delta but round on their own.
	gain := Apply(1200, 0.5) - 1200
	loss := 1201 - Apply(1201, -0.5)
	assert.Equal(t, 0, gain)
	assert.Equal(t, 1, loss)
}

func TestApply_RoundingGapAtMostOne(t *testing.T) {
	for r1 := 1000; r1 <= 1400; r1 += 37 {
		for r2 := 1000; r2 <= 1400; r2 += 41 {
			d := Delta(float64(r1), float64(r2), r1%2 == 0)
			gain := Apply(r1, d) - r1
			loss := r2 - Apply(r2, -d)
			diff := gain - loss
			if diff < 0 {
				diff = -diff
			}
			assert.LessOrEqual(t, diff, 1, "r1=%d r2=%d delta=%f", r1, r2, d)
		}
	}
}
