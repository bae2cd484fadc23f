package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/club-ladder/brackets"
	"github.com/Dosada05/club-ladder/cache"
	"github.com/Dosada05/club-ladder/models"
	"github.com/Dosada05/club-ladder/repositories"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store       *repositories.Store
	locks       *ClubLocks
	clubs       ClubService
	tournaments TournamentService
	notifier    *recordingNotifier
}

type recordingNotifier struct {
	rooms []string
	types []string
}

func (n *recordingNotifier) BroadcastToRoom(roomID string, message interface{}) {
	n.rooms = append(n.rooms, roomID)
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		n.types = append(n.types, msg.Type)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := repositories.NewMemoryStore()
	locks := NewClubLocks()
	logger := discardLogger()
	rankings := cache.NewNoopRankingsCache()
	notifier := &recordingNotifier{}
	return &testEnv{
		store:       store,
		locks:       locks,
		clubs:       NewClubService(store, locks, rankings, 0, logger),
		tournaments: NewTournamentService(store, locks, rankings, notifier, logger),
		notifier:    notifier,
	}
}

// newClub creates a club whose admin is the first name and adds the rest.
func (e *testEnv) newClub(t *testing.T, code string, tier models.SubscriptionTier, names ...string) *models.Club {
	t.Helper()
	ctx := context.Background()
	club, _, err := e.clubs.CreateClub(ctx, CreateClubInput{Code: code, Name: code + " club", AdminName: names[0], Tier: tier})
	require.NoError(t, err)
	for _, name := range names[1:] {
		_, err := e.clubs.AddMember(ctx, code, name)
		require.NoError(t, err)
	}
	return club
}

func (e *testEnv) member(t *testing.T, code, name string) *models.Member {
	t.Helper()
	m, err := e.clubs.GetMember(context.Background(), code, name)
	require.NoError(t, err)
	return m
}
