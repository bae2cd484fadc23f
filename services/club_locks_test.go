package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/club-ladder/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClubLocks_ForReturnsOneLockPerClub(t *testing.T) {
	locks := NewClubLocks()
	assert.Same(t, locks.For("ONE"), locks.For("ONE"))
	assert.NotSame(t, locks.For("ONE"), locks.For("TWO"))
}

// rotatingGame builds the i-th game of a history where A plays every game
// and the other seven members rotate around A.
func rotatingGame(i int) RecordMatchInput {
	others := []string{"B", "C", "D", "E", "F", "G", "H"}
	k := i % len(others)
	s1, s2 := 21, 15
	if i%3 == 0 {
		s1, s2 = 17, 21
	}
	return recordInput("A", others[k], others[(k+1)%len(others)], others[(k+2)%len(others)], s1, s2)
}

func TestClubService_ConcurrentWritesAndReadsOnOneClub(t *testing.T) {
	const games = 40
	env := newTestEnv(t)
	ctx := context.Background()
	env.newClub(t, "ONE", models.TierPremium, "A", "B", "C", "D", "E", "F", "G", "H")

	var wg sync.WaitGroup
	for i := 0; i < games; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			_, err := env.clubs.RecordMatch(ctx, "ONE", rotatingGame(i))
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			entries, err := env.clubs.GetRankings(ctx, "ONE", true)
			if assert.NoError(t, err) {
				assert.Len(t, entries, 8)
			}
		}()
		go func(i int) {
			defer wg.Done()
			if i%4 == 0 {
				assert.NoError(t, env.clubs.Recompute(ctx, "ONE"))
				return
			}
			_, err := env.clubs.ListMatches(ctx, "ONE", 5)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	members, err := env.clubs.ListMembers(ctx, "ONE")
	require.NoError(t, err)
	incremental := make(map[string]int, len(members))
	played := 0
	for _, m := range members {
		incremental[m.Name] = m.Rating
		played += m.GamesPlayed
	}
	assert.Equal(t, games, env.member(t, "ONE", "A").GamesPlayed)
	assert.Equal(t, 4*games, played)

	require.NoError(t, env.clubs.Recompute(ctx, "ONE"))
	for name, rating := range incremental {
		m := env.member(t, "ONE", name)
		assert.Equal(t, rating, m.Rating, name)
	}

	entries, err := env.clubs.GetRankings(ctx, "ONE", true)
	require.NoError(t, err)
	require.Len(t, entries, 8)
	for _, e := range entries {
		require.NotNil(t, e.Rating, e.Name)
		assert.Equal(t, incremental[e.Name], *e.Rating, e.Name)
	}
}

func TestClubService_ClubsDoNotBlockEachOther(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.newClub(t, "ONE", models.TierPremium, "A", "B", "C", "D")
	env.newClub(t, "TWO", models.TierPremium, "A", "B", "C", "D")

	held := env.locks.For("ONE")
	held.Lock()
	locked := true
	defer func() {
		if locked {
			held.Unlock()
		}
	}()

	blocked := make(chan error, 1)
	go func() {
		_, err := env.clubs.RecordMatch(ctx, "ONE", recordInput("A", "B", "C", "D", 21, 10))
		blocked <- err
	}()

	done := make(chan error, 1)
	go func() {
		_, err := env.clubs.RecordMatch(ctx, "TWO", recordInput("A", "B", "C", "D", 21, 10))
		if err == nil {
			_, err = env.clubs.GetRankings(ctx, "TWO", true)
		}
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("club TWO waited on the lock of club ONE")
	}

	select {
	case <-blocked:
		t.Fatal("write on club ONE finished while its lock was held")
	default:
	}

	held.Unlock()
	locked = false
	select {
	case err := <-blocked:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("write on club ONE never resumed")
	}

	assert.Equal(t, 1, env.member(t, "ONE", "A").GamesPlayed)
	assert.Equal(t, 1, env.member(t, "TWO", "A").GamesPlayed)
}
