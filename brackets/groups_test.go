package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignGroups_RoundRobinDeal(t *testing.T) {
	groups, err := AssignGroups([]int{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)

	assert.Equal(t, map[int]int{1: 0, 2: 1, 3: 0, 4: 1, 5: 0}, groups)
	assert.Equal(t, [][]int{{1, 3, 5}, {2, 4}}, GroupMembers(groups, 2))
}

func TestAssignGroups_InvalidCount(t *testing.T) {
	_, err := AssignGroups([]int{1, 2}, 0)
	assert.ErrorIs(t, err, ErrInvalidGroupCount)

	_, err = AssignGroups([]int{1, 2}, 3)
	assert.ErrorIs(t, err, ErrInvalidGroupCount)
}

func TestGroupFixtures_EveryPairOnce(t *testing.T) {
	groups, err := AssignGroups([]int{1, 2, 3, 4, 5, 6, 7}, 2)
	require.NoError(t, err)

	fixtures := GroupFixtures(groups, 2)
	// 4 teams in group 0 and 3 in group 1.
	require.Len(t, fixtures, 6+3)

	seen := make(map[[2]int]bool)
	for i, f := range fixtures {
		assert.Equal(t, i+1, f.Order)
		assert.Equal(t, groups[f.Team1ID], f.Group)
		assert.Equal(t, groups[f.Team2ID], f.Group)
		assert.Less(t, f.Team1ID, f.Team2ID)
		key := [2]int{f.Team1ID, f.Team2ID}
		assert.False(t, seen[key], "duplicate fixture %v", key)
		seen[key] = true
	}
}
