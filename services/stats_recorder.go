package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/club-ladder/models"
	"github.com/Dosada05/club-ladder/ratings"
	"github.com/Dosada05/club-ladder/repositories"
)

// statsRecorder is the only writer of derived member statistics. Every call
// must run inside a transaction and under the club write lock.
type statsRecorder struct {
	memberRepo repositories.MemberRepository
	gameRepo   repositories.GameRepository
	logger     *slog.Logger
}

func newStatsRecorder(store *repositories.Store, logger *slog.Logger) *statsRecorder {
	return &statsRecorder{
		memberRepo: store.Members,
		gameRepo:   store.Games,
		logger:     logger,
	}
}

// recordGames persists games in order and applies each to the ledger.
func (r *statsRecorder) recordGames(ctx context.Context, exec repositories.SQLExecutor, club *models.Club, games []*models.Game) error {
	members, err := r.memberRepo.ListByClub(ctx, exec, club.ID)
	if err != nil {
		return fmt.Errorf("failed to load roster of club %s: %w", club.Code, err)
	}
	roster := ratings.NewRoster(members)
	ledger := ratings.NewLedger(club.Tier.Capabilities(), r.logger)

	touched := make(map[string]bool)
	for _, g := range games {
		if err := r.gameRepo.Create(ctx, exec, g); err != nil {
			return handleRepositoryError(err)
		}
		ledger.ApplyMatch(roster, g)
		for _, name := range g.Players() {
			touched[name] = true
		}
	}

	for _, m := range members {
		if !touched[m.Name] {
			continue
		}
		if err := r.memberRepo.UpdateStats(ctx, exec, m); err != nil {
			return fmt.Errorf("failed to store stats of %q: %w", m.Name, handleRepositoryError(err))
		}
	}
	return nil
}

// replay rebuilds every member of the club from the full match history.
func (r *statsRecorder) replay(ctx context.Context, exec repositories.SQLExecutor, club *models.Club) error {
	members, err := r.memberRepo.ListByClub(ctx, exec, club.ID)
	if err != nil {
		return fmt.Errorf("failed to load roster of club %s: %w", club.Code, err)
	}
	history, err := r.gameRepo.ListByClub(ctx, exec, club.ID)
	if err != nil {
		return fmt.Errorf("failed to load history of club %s: %w", club.Code, err)
	}

	games := make([]*models.Game, len(history))
	for i := range history {
		games[i] = &history[i]
	}

	ledger := ratings.NewLedger(club.Tier.Capabilities(), r.logger)
	for _, m := range ledger.RecomputeAll(members, games) {
		if err := r.memberRepo.UpdateStats(ctx, exec, m); err != nil {
			return fmt.Errorf("failed to store stats of %q: %w", m.Name, handleRepositoryError(err))
		}
	}

	r.logger.Info("club statistics replayed",
		slog.String("club", club.Code),
		slog.Int("members", len(members)),
		slog.Int("games", len(games)),
	)
	return nil
}
