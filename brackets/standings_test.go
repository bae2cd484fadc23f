package brackets

import (
	"testing"

	"github.com/Dosada05/club-ladder/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleGroup(ids ...int) map[int]*models.GroupStanding {
	groups := make(map[int]int, len(ids))
	for _, id := range ids {
		groups[id] = 0
	}
	return NewStandings(groups)
}

func TestRecordGroupResult_TwoSetWin(t *testing.T) {
	standings := singleGroup(1, 2)

	winner, err := RecordGroupResult(standings, 1, 2, []models.SetScore{
		{Team1Score: 21, Team2Score: 10},
		{Team1Score: 21, Team2Score: 15},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, winner)

	a, b := standings[1], standings[2]
	assert.Equal(t, 1, a.Played)
	assert.Equal(t, 1, a.Won)
	assert.Equal(t, 0, a.Lost)
	assert.Equal(t, 42, a.PointsFor)
	assert.Equal(t, 25, a.PointsAgainst)
	assert.Equal(t, 2, a.Points)

	assert.Equal(t, 1, b.Played)
	assert.Equal(t, 0, b.Won)
	assert.Equal(t, 1, b.Lost)
	assert.Equal(t, 25, b.PointsFor)
	assert.Equal(t, 42, b.PointsAgainst)
	assert.Equal(t, 0, b.Points)
}

func TestRecordGroupResult_ThreeSetsTeam2Wins(t *testing.T) {
	standings := singleGroup(1, 2)

	winner, err := RecordGroupResult(standings, 1, 2, []models.SetScore{
		{Team1Score: 21, Team2Score: 19},
		{Team1Score: 18, Team2Score: 21},
		{Team1Score: 17, Team2Score: 21},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, winner)
	assert.Equal(t, 2, standings[2].Points)
	assert.Equal(t, 1, standings[1].Lost)
}

func TestRecordGroupResult_RejectsWithoutChanges(t *testing.T) {
	tests := []struct {
		name    string
		team1   int
		team2   int
		sets    []models.SetScore
		wantErr error
	}{
		{"tied set", 1, 2, []models.SetScore{{Team1Score: 21, Team2Score: 21}}, ErrTiedSet},
		{"split sets", 1, 2, []models.SetScore{{Team1Score: 21, Team2Score: 10}, {Team1Score: 10, Team2Score: 21}}, ErrNoWinner},
		{"no sets", 1, 2, nil, ErrNoSets},
		{"negative", 1, 2, []models.SetScore{{Team1Score: -1, Team2Score: 21}}, ErrNegativeScore},
		{"same team", 1, 1, []models.SetScore{{Team1Score: 21, Team2Score: 10}}, ErrSameTeam},
		{"unknown team", 1, 9, []models.SetScore{{Team1Score: 21, Team2Score: 10}}, ErrUnknownTeam},
		{"other group", 1, 3, []models.SetScore{{Team1Score: 21, Team2Score: 10}}, ErrDifferentGroups},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			standings := NewStandings(map[int]int{1: 0, 2: 0, 3: 1})

			_, err := RecordGroupResult(standings, tt.team1, tt.team2, tt.sets)
			assert.ErrorIs(t, err, tt.wantErr)
			for _, s := range standings {
				assert.Zero(t, s.Played)
				assert.Zero(t, s.PointsFor)
			}
		})
	}
}

func TestRankGroup_TieBreakers(t *testing.T) {
	standings := singleGroup(1, 2, 3, 4)
	standings[1].Points, standings[1].PointsFor, standings[1].PointsAgainst = 2, 40, 40
	standings[2].Points, standings[2].PointsFor, standings[2].PointsAgainst = 4, 30, 40
	standings[3].Points, standings[3].PointsFor, standings[3].PointsAgainst = 2, 45, 40
	standings[4].Points, standings[4].PointsFor, standings[4].PointsAgainst = 2, 40, 40

	table := RankGroup(standings, 0)
	ids := make([]int, len(table))
	for i, row := range table {
		ids[i] = row.TeamID
	}
	assert.Equal(t, []int{2, 3, 1, 4}, ids)
}

func TestQualifiers_GroupMajorOrder(t *testing.T) {
	groups, err := AssignGroups([]int{1, 2, 3, 4, 5, 6}, 2)
	require.NoError(t, err)
	standings := NewStandings(groups)
	// group 0: 1, 3, 5; group 1: 2, 4, 6
	standings[5].Points = 4
	standings[1].Points = 2
	standings[6].Points = 4
	standings[4].Points = 2

	assert.Equal(t, []int{5, 1, 6, 4}, Qualifiers(standings, 2))
}

func TestQualifiers_SmallGroup(t *testing.T) {
	standings := NewStandings(map[int]int{1: 0, 2: 1, 3: 1})
	assert.Equal(t, []int{1, 2, 3}, Qualifiers(standings, 2))
}
