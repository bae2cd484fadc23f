package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/club-ladder/cache"
	"github.com/Dosada05/club-ladder/models"
	"github.com/Dosada05/club-ladder/pairings"
	"github.com/Dosada05/club-ladder/repositories"
	"golang.org/x/sync/errgroup"
)

const (
	MinCourts          = 1
	MaxCourts          = 50
	DefaultMatchLimit  = 20
	MaxMatchLimit      = 500
	DefaultSuggestions = 8
)

type ClubService interface {
	CreateClub(ctx context.Context, input CreateClubInput) (*models.Club, *models.Member, error)
	GetClub(ctx context.Context, clubCode string) (*models.Club, error)
	GetClubInfo(ctx context.Context, clubCode, playerName string) (*ClubInfo, error)
	UpdateCourts(ctx context.Context, clubCode string, courts int) (*models.Club, error)

	ListMembers(ctx context.Context, clubCode string) ([]*models.Member, error)
	GetMember(ctx context.Context, clubCode, name string) (*models.Member, error)
	AddMember(ctx context.Context, clubCode, name string) (*models.Member, error)
	RemoveMember(ctx context.Context, clubCode, actorName, name string) error
	PromoteMember(ctx context.Context, clubCode, name string) error
	DemoteMember(ctx context.Context, clubCode, name string) error

	RecordMatch(ctx context.Context, clubCode string, input RecordMatchInput) (*models.Game, error)
	EditMatch(ctx context.Context, clubCode string, gameID, team1Score, team2Score int) error
	DeleteMatch(ctx context.Context, clubCode string, gameID int) error
	ListMatches(ctx context.Context, clubCode string, limit int) ([]models.Game, error)
	Recompute(ctx context.Context, clubCode string) error

	GetRankings(ctx context.Context, clubCode string, useRating bool) ([]models.RankingEntry, error)
	SuggestPairings(ctx context.Context, clubCode string, limit int) (*pairings.Result, error)
	BestMatch(ctx context.Context, clubCode string, players []string) (*pairings.Pairing, error)
	AssignCourts(ctx context.Context, clubCode string, players []string) (*CourtPlan, error)
}

type CreateClubInput struct {
	Code      string                  `json:"club_code"`
	Name      string                  `json:"club_name"`
	AdminName string                  `json:"admin_name"`
	Tier      models.SubscriptionTier `json:"subscription_tier"`
}

type RecordMatchInput struct {
	Team1      [2]string  `json:"team1"`
	Team2      [2]string  `json:"team2"`
	Team1Score int        `json:"team1_score"`
	Team2Score int        `json:"team2_score"`
	Court      string     `json:"court"`
	PlayedAt   *time.Time `json:"played_at,omitempty"`
}

type PlayerCard struct {
	Name        string            `json:"name"`
	Role        models.MemberRole `json:"role"`
	Rating      *int              `json:"rating,omitempty"`
	GamesPlayed int               `json:"games_played"`
	GamesWon    int               `json:"games_won"`
	WinRate     float64           `json:"win_rate"`
}

type ClubInfo struct {
	Club         *models.Club        `json:"club"`
	Capabilities models.Capabilities `json:"capabilities"`
	TotalMembers int                 `json:"total_members"`
	GamesPlayed  int                 `json:"games_played"`
	Player       *PlayerCard         `json:"player,omitempty"`
}

type CourtPlan struct {
	Metric  string                     `json:"metric"`
	Courts  []pairings.CourtAssignment `json:"courts"`
	Waiting []string                   `json:"waiting"`
}

type clubService struct {
	store           *repositories.Store
	locks           *ClubLocks
	rankingsCache   cache.RankingsCache
	recorder        *statsRecorder
	suggestionLimit int
	logger          *slog.Logger
}

func NewClubService(
	store *repositories.Store,
	locks *ClubLocks,
	rankingsCache cache.RankingsCache,
	suggestionLimit int,
	logger *slog.Logger,
) ClubService {
	if suggestionLimit <= 0 {
		suggestionLimit = DefaultSuggestions
	}
	return &clubService{
		store:           store,
		locks:           locks,
		rankingsCache:   rankingsCache,
		recorder:        newStatsRecorder(store, logger),
		suggestionLimit: suggestionLimit,
		logger:          logger,
	}
}

func (s *clubService) CreateClub(ctx context.Context, input CreateClubInput) (*models.Club, *models.Member, error) {
	code := normalizeName(input.Code)
	name := normalizeName(input.Name)
	adminName := normalizeName(input.AdminName)
	if code == "" || name == "" || adminName == "" {
		return nil, nil, fmt.Errorf("%w: club code, club name and admin name are required", ErrValidationFailed)
	}
	tier := input.Tier
	if tier == "" {
		tier = models.TierFree
	}
	if !tier.Valid() {
		return nil, nil, fmt.Errorf("%w: %q", ErrInvalidTier, tier)
	}

	lock := s.locks.For(code)
	lock.Lock()
	defer lock.Unlock()

	club := &models.Club{Code: code, Name: name, Courts: models.DefaultCourts, Tier: tier}
	admin := &models.Member{Name: adminName, Role: models.RoleAdmin, Rating: models.DefaultRating}

	err := s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.store.Clubs.Create(ctx, exec, club); err != nil {
			return handleRepositoryError(err)
		}
		admin.ClubID = club.ID
		if err := s.store.Members.Create(ctx, exec, admin); err != nil {
			return handleRepositoryError(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("club created", slog.String("club", club.Code), slog.String("tier", string(club.Tier)))
	return club, admin, nil
}

func (s *clubService) GetClub(ctx context.Context, clubCode string) (*models.Club, error) {
	club, err := s.store.Clubs.GetByCode(ctx, normalizeName(clubCode))
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return club, nil
}

func (s *clubService) GetClubInfo(ctx context.Context, clubCode, playerName string) (*ClubInfo, error) {
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}

	lock := s.locks.For(club.Code)
	lock.RLock()
	defer lock.RUnlock()

	var members []*models.Member
	var gamesPlayed int
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.store.Members.ListByClub(gCtx, nil, club.ID)
		if err != nil {
			return fmt.Errorf("failed to list members of club %s: %w", club.Code, err)
		}
		members = list
		return nil
	})
	g.Go(func() error {
		count, err := s.store.Games.CountByClub(gCtx, club.ID)
		if err != nil {
			return fmt.Errorf("failed to count games of club %s: %w", club.Code, err)
		}
		gamesPlayed = count
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	caps := club.Tier.Capabilities()
	info := &ClubInfo{
		Club:         club,
		Capabilities: caps,
		TotalMembers: len(members),
		GamesPlayed:  gamesPlayed,
	}
	if m := findMember(members, normalizeName(playerName)); m != nil {
		card := &PlayerCard{
			Name:        m.Name,
			Role:        m.Role,
			GamesPlayed: m.GamesPlayed,
			GamesWon:    m.GamesWon,
			WinRate:     m.WinRate(),
		}
		if caps.RatingEnabled {
			rating := m.Rating
			card.Rating = &rating
		}
		info.Player = card
	}
	return info, nil
}

func (s *clubService) UpdateCourts(ctx context.Context, clubCode string, courts int) (*models.Club, error) {
	if courts < MinCourts || courts > MaxCourts {
		return nil, fmt.Errorf("%w: %d (allowed %d..%d)", ErrInvalidCourtCount, courts, MinCourts, MaxCourts)
	}
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}

	lock := s.locks.For(club.Code)
	lock.Lock()
	defer lock.Unlock()

	if err := s.store.Clubs.UpdateCourts(ctx, club.ID, courts); err != nil {
		return nil, handleRepositoryError(err)
	}
	club.Courts = courts
	return club, nil
}

func (s *clubService) ListMembers(ctx context.Context, clubCode string) ([]*models.Member, error) {
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}

	lock := s.locks.For(club.Code)
	lock.RLock()
	defer lock.RUnlock()

	return s.store.Members.ListByClub(ctx, nil, club.ID)
}

func (s *clubService) GetMember(ctx context.Context, clubCode, name string) (*models.Member, error) {
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}
	member, err := s.store.Members.GetByName(ctx, club.ID, normalizeName(name))
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return member, nil
}

func (s *clubService) AddMember(ctx context.Context, clubCode, name string) (*models.Member, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}

	lock := s.locks.For(club.Code)
	lock.Lock()
	defer lock.Unlock()

	member := &models.Member{ClubID: club.ID, Name: name, Role: models.RoleMember, Rating: models.DefaultRating}
	if err := s.store.Members.Create(ctx, nil, member); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.invalidateRankings(ctx, club.Code)
	return member, nil
}

// RemoveMember drops a member from the roster. Recorded games keep the name;
// the next replay skips it.
func (s *clubService) RemoveMember(ctx context.Context, clubCode, actorName, name string) error {
	name = normalizeName(name)
	if name == normalizeName(actorName) {
		return ErrCannotRemoveSelf
	}
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return err
	}

	lock := s.locks.For(club.Code)
	lock.Lock()
	defer lock.Unlock()

	members, err := s.store.Members.ListByClub(ctx, nil, club.ID)
	if err != nil {
		return err
	}
	target := findMember(members, name)
	if target == nil {
		return ErrMemberNotFound
	}
	if target.Role == models.RoleAdmin && countAdmins(members) <= 1 {
		return ErrLastAdmin
	}

	if err := s.store.Members.Delete(ctx, club.ID, name); err != nil {
		return handleRepositoryError(err)
	}
	s.invalidateRankings(ctx, club.Code)
	s.logger.Info("member removed", slog.String("club", club.Code), slog.String("member", name))
	return nil
}

func (s *clubService) PromoteMember(ctx context.Context, clubCode, name string) error {
	return s.setRole(ctx, clubCode, normalizeName(name), models.RoleAdmin)
}

func (s *clubService) DemoteMember(ctx context.Context, clubCode, name string) error {
	return s.setRole(ctx, clubCode, normalizeName(name), models.RoleMember)
}

func (s *clubService) setRole(ctx context.Context, clubCode, name string, role models.MemberRole) error {
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return err
	}

	lock := s.locks.For(club.Code)
	lock.Lock()
	defer lock.Unlock()

	members, err := s.store.Members.ListByClub(ctx, nil, club.ID)
	if err != nil {
		return err
	}
	target := findMember(members, name)
	if target == nil {
		return ErrMemberNotFound
	}
	if role == models.RoleMember && target.Role == models.RoleAdmin && countAdmins(members) <= 1 {
		return ErrLastAdmin
	}

	if err := s.store.Members.UpdateRole(ctx, club.ID, name, role); err != nil {
		return handleRepositoryError(err)
	}
	s.logger.Info("member role changed",
		slog.String("club", club.Code),
		slog.String("member", name),
		slog.String("role", string(role)),
	)
	return nil
}

func (s *clubService) RecordMatch(ctx context.Context, clubCode string, input RecordMatchInput) (*models.Game, error) {
	team1, team2, err := validateLineup(input.Team1, input.Team2)
	if err != nil {
		return nil, err
	}
	if err := validateScores(input.Team1Score, input.Team2Score); err != nil {
		return nil, err
	}
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}

	lock := s.locks.For(club.Code)
	lock.Lock()
	defer lock.Unlock()

	members, err := s.store.Members.ListByClub(ctx, nil, club.ID)
	if err != nil {
		return nil, err
	}
	for _, name := range [4]string{team1[0], team1[1], team2[0], team2[1]} {
		if findMember(members, name) == nil {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
		}
	}

	court := normalizeName(input.Court)
	if court == "" {
		court = models.DefaultCourtLabel
	}
	game := &models.Game{ClubID: club.ID, Court: court, Team1: team1, Team2: team2}
	game.SetScores(input.Team1Score, input.Team2Score)
	if input.PlayedAt != nil {
		game.PlayedAt = *input.PlayedAt
	} else {
		game.PlayedAt = time.Now().UTC()
	}

	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.recorder.recordGames(ctx, exec, club, []*models.Game{game})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateRankings(ctx, club.Code)
	s.logger.Info("match recorded",
		slog.String("club", club.Code),
		slog.Int("game_id", game.ID),
		slog.Int("winner", game.Winner),
	)
	return game, nil
}

func (s *clubService) EditMatch(ctx context.Context, clubCode string, gameID, team1Score, team2Score int) error {
	if err := validateScores(team1Score, team2Score); err != nil {
		return err
	}
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return err
	}

	lock := s.locks.For(club.Code)
	lock.Lock()
	defer lock.Unlock()

	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		game, err := s.store.Games.GetByID(ctx, exec, club.ID, gameID)
		if err != nil {
			return handleRepositoryError(err)
		}
		game.SetScores(team1Score, team2Score)
		if err := s.store.Games.UpdateScores(ctx, exec, game); err != nil {
			return handleRepositoryError(err)
		}
		return s.recorder.replay(ctx, exec, club)
	})
	if err != nil {
		return err
	}

	s.invalidateRankings(ctx, club.Code)
	return nil
}

func (s *clubService) DeleteMatch(ctx context.Context, clubCode string, gameID int) error {
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return err
	}

	lock := s.locks.For(club.Code)
	lock.Lock()
	defer lock.Unlock()

	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.store.Games.Delete(ctx, exec, club.ID, gameID); err != nil {
			return handleRepositoryError(err)
		}
		return s.recorder.replay(ctx, exec, club)
	})
	if err != nil {
		return err
	}

	s.invalidateRankings(ctx, club.Code)
	return nil
}

func (s *clubService) ListMatches(ctx context.Context, clubCode string, limit int) ([]models.Game, error) {
	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	if limit > MaxMatchLimit {
		limit = MaxMatchLimit
	}
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}

	lock := s.locks.For(club.Code)
	lock.RLock()
	defer lock.RUnlock()

	return s.store.Games.ListRecent(ctx, club.ID, limit)
}

func (s *clubService) Recompute(ctx context.Context, clubCode string) error {
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return err
	}

	lock := s.locks.For(club.Code)
	lock.Lock()
	defer lock.Unlock()

	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.recorder.replay(ctx, exec, club)
	})
	if err != nil {
		return err
	}
	s.invalidateRankings(ctx, club.Code)
	return nil
}

// GetRankings orders the roster. The rating view is only available when the
// club tier enables ratings.
func (s *clubService) GetRankings(ctx context.Context, clubCode string, useRating bool) ([]models.RankingEntry, error) {
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}
	useRating = useRating && club.Tier.Capabilities().RatingEnabled

	lock := s.locks.For(club.Code)
	lock.RLock()
	defer lock.RUnlock()

	if cached, ok, err := s.rankingsCache.Get(ctx, club.Code, useRating); err != nil {
		s.logger.Warn("rankings cache read failed", slog.String("club", club.Code), slog.Any("error", err))
	} else if ok {
		return cached, nil
	}

	members, err := s.store.Members.ListByClub(ctx, nil, club.ID)
	if err != nil {
		return nil, err
	}
	entries := BuildRankings(members, useRating)

	if err := s.rankingsCache.Set(ctx, club.Code, useRating, entries); err != nil {
		s.logger.Warn("rankings cache write failed", slog.String("club", club.Code), slog.Any("error", err))
	}
	return entries, nil
}

func (s *clubService) SuggestPairings(ctx context.Context, clubCode string, limit int) (*pairings.Result, error) {
	if limit <= 0 {
		limit = s.suggestionLimit
	}
	club, pool, err := s.candidatePool(ctx, clubCode, nil)
	if err != nil {
		return nil, err
	}
	result := pairings.Suggest(pool, pairings.MetricFor(club.Tier.Capabilities()), limit)
	return &result, nil
}

func (s *clubService) BestMatch(ctx context.Context, clubCode string, players []string) (*pairings.Pairing, error) {
	club, pool, err := s.candidatePool(ctx, clubCode, players)
	if err != nil {
		return nil, err
	}
	best, ok := pairings.Best(pool, pairings.MetricFor(club.Tier.Capabilities()))
	if !ok {
		return nil, fmt.Errorf("%w: %d available", ErrNotEnoughPlayers, len(pool))
	}
	return &best, nil
}

func (s *clubService) AssignCourts(ctx context.Context, clubCode string, players []string) (*CourtPlan, error) {
	club, pool, err := s.candidatePool(ctx, clubCode, players)
	if err != nil {
		return nil, err
	}
	metric := pairings.MetricFor(club.Tier.Capabilities())
	courts, waiting := pairings.AssignCourts(pool, metric, club.Courts)
	return &CourtPlan{Metric: metric.String(), Courts: courts, Waiting: waiting}, nil
}

// candidatePool returns the pairing pool: the named available players in the
// given order, or the whole roster when none are named.
func (s *clubService) candidatePool(ctx context.Context, clubCode string, players []string) (*models.Club, []pairings.Candidate, error) {
	club, err := s.GetClub(ctx, clubCode)
	if err != nil {
		return nil, nil, err
	}

	lock := s.locks.For(club.Code)
	lock.RLock()
	defer lock.RUnlock()

	members, err := s.store.Members.ListByClub(ctx, nil, club.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(players) == 0 {
		return club, pairings.CandidatesFromMembers(members), nil
	}

	selected := make([]*models.Member, 0, len(players))
	seen := make(map[string]struct{}, len(players))
	for _, raw := range players {
		name := normalizeName(raw)
		if _, dup := seen[name]; dup {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, name)
		}
		seen[name] = struct{}{}
		m := findMember(members, name)
		if m == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
		}
		selected = append(selected, m)
	}
	return club, pairings.CandidatesFromMembers(selected), nil
}

func (s *clubService) invalidateRankings(ctx context.Context, clubCode string) {
	if err := s.rankingsCache.Invalidate(ctx, clubCode); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("rankings cache invalidation failed", slog.String("club", clubCode), slog.Any("error", err))
	}
}
