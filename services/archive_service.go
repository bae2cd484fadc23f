package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/club-ladder/models"
	"github.com/Dosada05/club-ladder/repositories"
	"github.com/Dosada05/club-ladder/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const archivePrefix = "archives/"

// ClubSnapshot is the archived state of one club.
type ClubSnapshot struct {
	ArchiveID   string                `json:"archive_id"`
	TakenAt     time.Time             `json:"taken_at"`
	Club        *models.Club          `json:"club"`
	Members     []*models.Member      `json:"members"`
	Rankings    []models.RankingEntry `json:"rankings"`
	Games       []models.Game         `json:"games"`
	Tournaments []models.Tournament   `json:"tournaments"`
}

type ArchiveResult struct {
	ArchiveID string `json:"archive_id"`
	Key       string `json:"key"`
	Location  string `json:"location,omitempty"`
	Games     int    `json:"games"`
}

type ArchiveService interface {
	ArchiveClub(ctx context.Context, clubCode string) (*ArchiveResult, error)
	ArchiveAll(ctx context.Context) (int, error)
	ListArchives(ctx context.Context, clubCode string) ([]storage.ObjectInfo, error)
}

type archiveService struct {
	store   *repositories.Store
	locks   *ClubLocks
	objects storage.ObjectStore
	logger  *slog.Logger
	now     func() time.Time
}

// NewArchiveService accepts a nil object store; every call then fails with
// ErrArchiveDisabled.
func NewArchiveService(store *repositories.Store, locks *ClubLocks, objects storage.ObjectStore, logger *slog.Logger) ArchiveService {
	return &archiveService{
		store:   store,
		locks:   locks,
		objects: objects,
		logger:  logger,
		now:     time.Now,
	}
}

func archiveKey(clubCode string, takenAt time.Time, id string) string {
	return fmt.Sprintf("%s%s/%s-%s.json", archivePrefix, clubCode, takenAt.UTC().Format("20060102-150405"), id)
}

func (s *archiveService) ArchiveClub(ctx context.Context, clubCode string) (*ArchiveResult, error) {
	if s.objects == nil {
		return nil, ErrArchiveDisabled
	}
	club, err := s.store.Clubs.GetByCode(ctx, normalizeName(clubCode))
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	snapshot, err := s.snapshot(ctx, club)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot of club %s: %w", club.Code, err)
	}

	key := archiveKey(club.Code, snapshot.TakenAt, snapshot.ArchiveID)
	uploaded, err := s.objects.Upload(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	s.logger.Info("club archived",
		slog.String("club", club.Code),
		slog.String("key", uploaded.Key),
		slog.Int("games", len(snapshot.Games)),
	)
	return &ArchiveResult{
		ArchiveID: snapshot.ArchiveID,
		Key:       uploaded.Key,
		Location:  uploaded.Location,
		Games:     len(snapshot.Games),
	}, nil
}

// snapshot reads the club under its read lock so the parts agree.
func (s *archiveService) snapshot(ctx context.Context, club *models.Club) (*ClubSnapshot, error) {
	lock := s.locks.For(club.Code)
	lock.RLock()
	defer lock.RUnlock()

	snapshot := &ClubSnapshot{
		ArchiveID: uuid.NewString(),
		TakenAt:   s.now().UTC(),
		Club:      club,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		members, err := s.store.Members.ListByClub(gCtx, nil, club.ID)
		if err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}
		snapshot.Members = members
		snapshot.Rankings = BuildRankings(members, club.Tier.Capabilities().RatingEnabled)
		return nil
	})
	g.Go(func() error {
		games, err := s.store.Games.ListByClub(gCtx, nil, club.ID)
		if err != nil {
			return fmt.Errorf("failed to list games: %w", err)
		}
		snapshot.Games = games
		return nil
	})
	g.Go(func() error {
		tournaments, err := s.store.Tournaments.ListByClub(gCtx, club.ID)
		if err != nil {
			return fmt.Errorf("failed to list tournaments: %w", err)
		}
		snapshot.Tournaments = tournaments
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to snapshot club %s: %w", club.Code, err)
	}
	return snapshot, nil
}

// ArchiveAll archives every club and returns how many succeeded. A failing
// club is logged and does not stop the run.
func (s *archiveService) ArchiveAll(ctx context.Context) (int, error) {
	if s.objects == nil {
		return 0, ErrArchiveDisabled
	}
	clubs, err := s.store.Clubs.List(ctx)
	if err != nil {
		return 0, err
	}
	archived := 0
	for _, club := range clubs {
		if ctx.Err() != nil {
			return archived, ctx.Err()
		}
		if _, err := s.ArchiveClub(ctx, club.Code); err != nil {
			s.logger.Error("club archive failed", slog.String("club", club.Code), slog.Any("error", err))
			continue
		}
		archived++
	}
	return archived, nil
}

func (s *archiveService) ListArchives(ctx context.Context, clubCode string) ([]storage.ObjectInfo, error) {
	if s.objects == nil {
		return nil, ErrArchiveDisabled
	}
	club, err := s.store.Clubs.GetByCode(ctx, normalizeName(clubCode))
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return s.objects.List(ctx, archivePrefix+club.Code+"/")
}
