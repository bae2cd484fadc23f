package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/club-ladder/models"
)

// QualifiersPerGroup is fixed regardless of group size.
const QualifiersPerGroup = 2

const pointsPerWin = 2

// NewStandings creates an empty table row for every grouped team.
func NewStandings(groups map[int]int) map[int]*models.GroupStanding {
	standings := make(map[int]*models.GroupStanding, len(groups))
	for teamID, g := range groups {
		standings[teamID] = &models.GroupStanding{TeamID: teamID, Group: g}
	}
	return standings
}

// DecideSets counts the sets each side won. Every set needs a strict winner
// and so does the encounter as a whole.
func DecideSets(sets []models.SetScore) (team1Sets, team2Sets int, err error) {
	if len(sets) == 0 {
		return 0, 0, ErrNoSets
	}
	for i, s := range sets {
		if s.Team1Score < 0 || s.Team2Score < 0 {
			return 0, 0, fmt.Errorf("%w: set %d", ErrNegativeScore, i+1)
		}
		if s.Team1Score == s.Team2Score {
			return 0, 0, fmt.Errorf("%w: set %d ended %d-%d", ErrTiedSet, i+1, s.Team1Score, s.Team2Score)
		}
		if s.Team1Score > s.Team2Score {
			team1Sets++
		} else {
			team2Sets++
		}
	}
	if team1Sets == team2Sets {
		return team1Sets, team2Sets, fmt.Errorf("%w: %d-%d", ErrNoWinner, team1Sets, team2Sets)
	}
	return team1Sets, team2Sets, nil
}

// RecordGroupResult adds one decided encounter to the group table and returns
// the winning team id. Nothing is changed when an error is returned.
func RecordGroupResult(standings map[int]*models.GroupStanding, team1ID, team2ID int, sets []models.SetScore) (int, error) {
	if team1ID == team2ID {
		return 0, ErrSameTeam
	}
	s1, ok1 := standings[team1ID]
	s2, ok2 := standings[team2ID]
	if !ok1 || !ok2 {
		return 0, fmt.Errorf("%w: %d vs %d", ErrUnknownTeam, team1ID, team2ID)
	}
	if s1.Group != s2.Group {
		return 0, fmt.Errorf("%w: %d (group %d) vs %d (group %d)", ErrDifferentGroups, team1ID, s1.Group, team2ID, s2.Group)
	}
	team1Sets, team2Sets, err := DecideSets(sets)
	if err != nil {
		return 0, err
	}

	for _, s := range sets {
		s1.PointsFor += s.Team1Score
		s1.PointsAgainst += s.Team2Score
		s2.PointsFor += s.Team2Score
		s2.PointsAgainst += s.Team1Score
	}
	s1.Played++
	s2.Played++

	winner, loser := s1, s2
	if team2Sets > team1Sets {
		winner, loser = s2, s1
	}
	winner.Won++
	winner.Points += pointsPerWin
	loser.Lost++
	return winner.TeamID, nil
}

// RankGroup returns the table of one group: points first, then point
// difference, then team id.
func RankGroup(standings map[int]*models.GroupStanding, group int) []models.GroupStanding {
	table := make([]models.GroupStanding, 0)
	for _, s := range standings {
		if s.Group == group {
			table = append(table, *s)
		}
	}
	sort.Slice(table, func(i, j int) bool {
		if table[i].Points != table[j].Points {
			return table[i].Points > table[j].Points
		}
		if table[i].PointDifference() != table[j].PointDifference() {
			return table[i].PointDifference() > table[j].PointDifference()
		}
		return table[i].TeamID < table[j].TeamID
	})
	return table
}

// GroupTables ranks every group.
func GroupTables(standings map[int]*models.GroupStanding, numGroups int) [][]models.GroupStanding {
	tables := make([][]models.GroupStanding, numGroups)
	for g := range tables {
		tables[g] = RankGroup(standings, g)
	}
	return tables
}

// Qualifiers lists the top teams of every group, group by group.
func Qualifiers(standings map[int]*models.GroupStanding, numGroups int) []int {
	qualified := make([]int, 0, numGroups*QualifiersPerGroup)
	for g := 0; g < numGroups; g++ {
		table := RankGroup(standings, g)
		for i := 0; i < len(table) && i < QualifiersPerGroup; i++ {
			qualified = append(qualified, table[i].TeamID)
		}
	}
	return qualified
}
