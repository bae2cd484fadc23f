package pairings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignCourts_FillsCourtsWithDisjointMatches(t *testing.T) {
	players := pool(1000, 1130, 1250, 1400, 1320, 1180, 1290, 1210)

	assignments, rest := AssignCourts(players, RatingBased, 2)

	require.Len(t, assignments, 2)
	assert.Empty(t, rest)
	assert.Equal(t, 1, assignments[0].Court)
	assert.Equal(t, 2, assignments[1].Court)

	seen := map[string]bool{}
	for _, a := range assignments {
		for _, n := range []string{a.Pairing.TeamA[0], a.Pairing.TeamA[1], a.Pairing.TeamB[0], a.Pairing.TeamB[1]} {
			assert.False(t, seen[n], "player %s placed twice", n)
			seen[n] = true
		}
	}
}

func TestAssignCourts_FirstCourtGetsBestMatch(t *testing.T) {
	players := pool(1000, 1130, 1250, 1400, 1320, 1180)

	assignments, rest := AssignCourts(players, RatingBased, 4)
	best, _ := Best(players, RatingBased)

	require.Len(t, assignments, 1)
	assert.Equal(t, best, assignments[0].Pairing)
	assert.Len(t, rest, 2)
}

func TestAssignCourts_NotEnoughPlayers(t *testing.T) {
	assignments, rest := AssignCourts(pool(1200, 1200, 1200), RatingBased, 3)

	assert.Empty(t, assignments)
	assert.Equal(t, []string{"A", "B", "C"}, rest)
}
