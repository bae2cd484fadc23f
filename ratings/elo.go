// Package ratings implements the club rating system and the stats ledger that
// derives every member's counters from the recorded game history.
package ratings

import "math"

const (
	// KFactor is the maximum rating swing of a single game.
	KFactor = 32.0
	// Scale is the rating gap at which the stronger side is ten times as likely to win.
	Scale = 400.0
)

// ExpectedScore returns the expected score of a side rated ratingA against a
// side rated ratingB, in the range (0, 1).
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1 / (1 + math.Pow(10, (ratingB-ratingA)/Scale))
}

// Delta returns the signed adjustment for team 1. Team 1 players gain it and
// team 2 players lose it. The value is not rounded.
func Delta(team1Rating, team2Rating float64, team1Won bool) float64 {
	actual := 0.0
	if team1Won {
		actual = 1
	}
	return KFactor * (actual - ExpectedScore(team1Rating, team2Rating))
}

// TeamRating is the arithmetic mean of the two partners' ratings.
func TeamRating(a, b int) float64 {
	return float64(a+b) / 2
}

// Apply adds delta to a stored rating. Halves round to even, so two players
// on opposite sides of the same game can move by amounts that differ by one.
func Apply(rating int, delta float64) int {
	return int(math.RoundToEven(float64(rating) + delta))
}
