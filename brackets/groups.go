package brackets

import (
	"fmt"
	"sort"

	"github.com/Dosada05/club-ladder/models"
)

// AssignGroups deals teams into groups round-robin: the team at index idx
// goes to group idx mod numGroups.
func AssignGroups(teamIDs []int, numGroups int) (map[int]int, error) {
	if numGroups < 1 || numGroups > len(teamIDs) {
		return nil, fmt.Errorf("%w: %d groups for %d teams", ErrInvalidGroupCount, numGroups, len(teamIDs))
	}
	groups := make(map[int]int, len(teamIDs))
	for idx, id := range teamIDs {
		groups[id] = idx % numGroups
	}
	return groups, nil
}

// GroupMembers returns the team ids of each group in ascending id order.
func GroupMembers(groups map[int]int, numGroups int) [][]int {
	members := make([][]int, numGroups)
	for teamID, g := range groups {
		if g < 0 || g >= numGroups {
			continue
		}
		members[g] = append(members[g], teamID)
	}
	for _, ids := range members {
		sort.Ints(ids)
	}
	return members
}

// GroupFixtures creates a single round-robin inside every group: each team
// meets every other team of its group once.
func GroupFixtures(groups map[int]int, numGroups int) []models.Fixture {
	fixtures := make([]models.Fixture, 0)
	order := 0
	for g, ids := range GroupMembers(groups, numGroups) {
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				order++
				fixtures = append(fixtures, models.Fixture{
					Group:   g,
					Order:   order,
					Team1ID: ids[i],
					Team2ID: ids[j],
				})
			}
		}
	}
	return fixtures
}
