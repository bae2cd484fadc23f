package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/club-ladder/brackets"
	"github.com/Dosada05/club-ladder/cache"
	"github.com/Dosada05/club-ladder/models"
	"github.com/Dosada05/club-ladder/repositories"
)

// TournamentNotifier pushes tournament changes to live subscribers.
type TournamentNotifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

type TournamentService interface {
	CreateTournament(ctx context.Context, clubCode string, input CreateTournamentInput) (*models.Tournament, error)
	ListTournaments(ctx context.Context, clubCode string) ([]models.Tournament, error)
	GetTournament(ctx context.Context, clubCode string, tournamentID int) (*TournamentDetails, error)
	RecordResult(ctx context.Context, clubCode string, tournamentID int, input RecordResultInput) (*models.Tournament, error)
	AdvanceStage(ctx context.Context, clubCode string, tournamentID int) (*models.Tournament, error)
}

type CreateTournamentInput struct {
	Name           string      `json:"name"`
	Teams          [][2]string `json:"teams"`
	NumGroups      int         `json:"num_groups"`
	KnockoutRounds int         `json:"knockout_rounds"`
}

// RecordResultInput describes one decided encounter. Group results name both
// teams; knockout results name the bracket match and take the teams from it.
type RecordResultInput struct {
	Stage   models.MatchStage `json:"stage"`
	Team1ID int               `json:"team1_id"`
	Team2ID int               `json:"team2_id"`
	MatchID int               `json:"match_id"`
	Sets    []models.SetScore `json:"sets"`
	Court   string            `json:"court"`
}

type TournamentDetails struct {
	*models.Tournament
	Tables   [][]models.GroupStanding `json:"tables"`
	Fixtures []models.Fixture         `json:"fixtures"`
	Playable []*models.KnockoutMatch  `json:"playable_matches"`
}

type tournamentService struct {
	store    *repositories.Store
	locks    *ClubLocks
	recorder *statsRecorder
	rankings cache.RankingsCache
	notifier TournamentNotifier
	logger   *slog.Logger
}

func NewTournamentService(
	store *repositories.Store,
	locks *ClubLocks,
	rankingsCache cache.RankingsCache,
	notifier TournamentNotifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		store:    store,
		locks:    locks,
		recorder: newStatsRecorder(store, logger),
		rankings: rankingsCache,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *tournamentService) getClub(ctx context.Context, clubCode string) (*models.Club, error) {
	club, err := s.store.Clubs.GetByCode(ctx, normalizeName(clubCode))
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return club, nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, clubCode string, input CreateTournamentInput) (*models.Tournament, error) {
	name := normalizeName(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(input.Teams) < 2 {
		return nil, fmt.Errorf("%w: at least two teams are required", ErrTournamentTeams)
	}

	numGroups := input.NumGroups
	if numGroups == 0 {
		numGroups = 1
	}
	if numGroups < 1 || numGroups > len(input.Teams) {
		return nil, fmt.Errorf("%w: %d groups for %d teams", ErrInvalidGroupCount, numGroups, len(input.Teams))
	}

	rounds := input.KnockoutRounds
	if rounds == 0 {
		rounds = defaultKnockoutRounds(len(input.Teams), numGroups)
	}
	if rounds < 1 || rounds > brackets.MaxRounds {
		return nil, fmt.Errorf("%w: %d (allowed 1..%d)", ErrInvalidRoundCount, rounds, brackets.MaxRounds)
	}

	club, err := s.getClub(ctx, clubCode)
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

	teams := make([]models.TournamentTeam, 0, len(input.Teams))
	teamIDs := make([]int, 0, len(input.Teams))
	entered := make(map[string]int)
	for i, pair := range input.Teams {
		p1, p2 := normalizeName(pair[0]), normalizeName(pair[1])
		if p1 == "" || p2 == "" {
			return nil, fmt.Errorf("%w: team %d needs two players", ErrTournamentTeams, i+1)
		}
		if p1 == p2 {
			return nil, fmt.Errorf("%w: team %d lists %s twice", ErrDuplicatePlayer, i+1, p1)
		}
		for _, p := range [2]string{p1, p2} {
			if findMember(members, p) == nil {
				return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, p)
			}
			if other, ok := entered[p]; ok {
				return nil, fmt.Errorf("%w: %s already plays for team %d", ErrTournamentTeams, p, other)
			}
			entered[p] = i + 1
		}
		teams = append(teams, models.TournamentTeam{
			ID:      i + 1,
			Name:    p1 + " & " + p2,
			Players: [2]string{p1, p2},
		})
		teamIDs = append(teamIDs, i+1)
	}

	groups, err := brackets.AssignGroups(teamIDs, numGroups)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGroupCount, err)
	}

	t := &models.Tournament{
		ClubID:         club.ID,
		Name:           name,
		Status:         models.StatusGroupStage,
		NumGroups:      numGroups,
		KnockoutRounds: rounds,
		Teams:          teams,
		Groups:         groups,
		Standings:      brackets.NewStandings(groups),
	}
	if err := s.store.Tournaments.Create(ctx, nil, t); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.Info("tournament created",
		slog.String("club", club.Code),
		slog.Int("tournament_id", t.ID),
		slog.Int("teams", len(teams)),
		slog.Int("groups", numGroups),
		slog.Int("knockout_rounds", rounds),
	)
	return t, nil
}

// defaultKnockoutRounds fits every group qualifier into the bracket.
func defaultKnockoutRounds(teams, groups int) int {
	qualifiers := 0
	for g := 0; g < groups; g++ {
		size := teams / groups
		if g < teams%groups {
			size++
		}
		if size > brackets.QualifiersPerGroup {
			size = brackets.QualifiersPerGroup
		}
		qualifiers += size
	}
	rounds := 1
	for 1<<uint(rounds) < qualifiers && rounds < brackets.MaxRounds {
		rounds++
	}
	return rounds
}

func (s *tournamentService) ListTournaments(ctx context.Context, clubCode string) ([]models.Tournament, error) {
	club, err := s.getClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}

	lock := s.locks.For(club.Code)
	lock.RLock()
	defer lock.RUnlock()

	return s.store.Tournaments.ListByClub(ctx, club.ID)
}

func (s *tournamentService) GetTournament(ctx context.Context, clubCode string, tournamentID int) (*TournamentDetails, error) {
	club, err := s.getClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}

	lock := s.locks.For(club.Code)
	lock.RLock()
	defer lock.RUnlock()

	t, err := s.store.Tournaments.GetByID(ctx, nil, club.ID, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return &TournamentDetails{
		Tournament: t,
		Tables:     brackets.GroupTables(t.Standings, t.NumGroups),
		Fixtures:   brackets.GroupFixtures(t.Groups, t.NumGroups),
		Playable:   brackets.PlayableMatches(t.Bracket),
	}, nil
}

func (s *tournamentService) RecordResult(ctx context.Context, clubCode string, tournamentID int, input RecordResultInput) (*models.Tournament, error) {
	team1Sets, team2Sets, err := brackets.DecideSets(input.Sets)
	if err != nil {
		return nil, translateBracketError(err)
	}

	club, err := s.getClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}

	lock := s.locks.For(club.Code)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.store.Tournaments.GetByID(ctx, nil, club.ID, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	var team1, team2 models.TournamentTeam
	switch input.Stage {
	case models.StageGroup:
		if t.Status != models.StatusGroupStage {
			return nil, fmt.Errorf("%w: tournament is %s", ErrWrongStage, t.Status)
		}
		if team1, team2, err = s.resultTeams(t, input.Team1ID, input.Team2ID); err != nil {
			return nil, err
		}
		if _, err := brackets.RecordGroupResult(t.Standings, team1.ID, team2.ID, input.Sets); err != nil {
			return nil, translateBracketError(err)
		}

	case models.StageKnockout:
		if t.Status != models.StatusKnockout {
			return nil, fmt.Errorf("%w: tournament is %s", ErrWrongStage, t.Status)
		}
		_, _, match, ok := brackets.FindMatch(t.Bracket, input.MatchID)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrKnockoutNotFound, input.MatchID)
		}
		switch {
		case match.WinnerID != nil:
			return nil, fmt.Errorf("%w: %d", ErrMatchAlreadyDecided, match.ID)
		case match.IsBye:
			return nil, fmt.Errorf("%w: %d", ErrByeMatch, match.ID)
		case match.Team1ID == nil || match.Team2ID == nil:
			return nil, fmt.Errorf("%w: %d", ErrMatchNotReady, match.ID)
		}
		if team1, team2, err = s.resultTeams(t, *match.Team1ID, *match.Team2ID); err != nil {
			return nil, err
		}
		winnerID := team1.ID
		if team2Sets > team1Sets {
			winnerID = team2.ID
		}
		completed, err := brackets.Advance(t.Bracket, input.MatchID, winnerID, input.Sets)
		if err != nil {
			return nil, translateBracketError(err)
		}
		if brackets.ResolveByes(t.Bracket) {
			completed = true
		}
		if completed {
			t.Status = models.StatusCompleted
			t.ChampionID = brackets.Champion(t.Bracket)
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMatchStage, input.Stage)
	}

	games := s.setGames(club, t, input, team1, team2)
	err = s.store.Tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.recorder.recordGames(ctx, exec, club, games); err != nil {
			return err
		}
		return handleRepositoryError(s.store.Tournaments.Update(ctx, exec, t))
	})
	if err != nil {
		return nil, err
	}
	s.invalidateRankings(ctx, club.Code)

	s.logger.Info("tournament result recorded",
		slog.String("club", club.Code),
		slog.Int("tournament_id", t.ID),
		slog.String("stage", string(input.Stage)),
		slog.Int("team1_id", team1.ID),
		slog.Int("team2_id", team2.ID),
		slog.Int("sets", len(input.Sets)),
	)
	s.notify(t, brackets.MessageResultRecorded)
	return t, nil
}

// resultTeams looks up both sides of an encounter.
func (s *tournamentService) resultTeams(t *models.Tournament, team1ID, team2ID int) (models.TournamentTeam, models.TournamentTeam, error) {
	team1, ok1 := t.Team(team1ID)
	team2, ok2 := t.Team(team2ID)
	if !ok1 || !ok2 {
		return team1, team2, fmt.Errorf("%w: %d vs %d", ErrTeamsNotFound, team1ID, team2ID)
	}
	if team1ID == team2ID {
		return team1, team2, fmt.Errorf("%w: team %d", ErrTeamsNotDistinct, team1ID)
	}
	return team1, team2, nil
}

// setGames turns every set into a recorded match so replays include it.
func (s *tournamentService) setGames(club *models.Club, t *models.Tournament, input RecordResultInput, team1, team2 models.TournamentTeam) []*models.Game {
	court := normalizeName(input.Court)
	if court == "" {
		court = t.Name
	}
	playedAt := time.Now().UTC()
	games := make([]*models.Game, 0, len(input.Sets))
	for _, set := range input.Sets {
		g := &models.Game{
			ClubID:   club.ID,
			Court:    court,
			Team1:    team1.Players,
			Team2:    team2.Players,
			PlayedAt: playedAt,
		}
		g.SetScores(set.Team1Score, set.Team2Score)
		games = append(games, g)
	}
	return games
}

func (s *tournamentService) AdvanceStage(ctx context.Context, clubCode string, tournamentID int) (*models.Tournament, error) {
	club, err := s.getClub(ctx, clubCode)
	if err != nil {
		return nil, err
	}

	lock := s.locks.For(club.Code)
	lock.Lock()
	defer lock.Unlock()

	t, err := s.store.Tournaments.GetByID(ctx, nil, club.ID, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if t.Status != models.StatusGroupStage {
		return nil, fmt.Errorf("%w: only the group stage can be advanced, tournament is %s", ErrWrongStage, t.Status)
	}

	qualified := brackets.Qualifiers(t.Standings, t.NumGroups)
	if len(qualified) == 0 {
		return nil, ErrNoQualifiers
	}
	bracket, err := brackets.BuildBracket(qualified, t.KnockoutRounds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRoundCount, err)
	}
	t.Bracket = bracket
	t.Status = models.StatusKnockout
	if brackets.ResolveByes(bracket) {
		t.Status = models.StatusCompleted
		t.ChampionID = brackets.Champion(bracket)
	}

	if err := s.store.Tournaments.Update(ctx, nil, t); err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.Info("tournament advanced",
		slog.String("club", club.Code),
		slog.Int("tournament_id", t.ID),
		slog.String("status", string(t.Status)),
		slog.Int("qualified", len(qualified)),
	)
	s.notify(t, brackets.MessageStageAdvanced)
	return t, nil
}

func (s *tournamentService) notify(t *models.Tournament, messageType string) {
	if s.notifier == nil {
		return
	}
	room := brackets.TournamentRoom(t.ID)
	s.notifier.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    messageType,
		Payload: t,
		RoomID:  room,
	})
}

func (s *tournamentService) invalidateRankings(ctx context.Context, clubCode string) {
	if err := s.rankings.Invalidate(ctx, clubCode); err != nil {
		s.logger.Warn("rankings cache invalidation failed", slog.String("club", clubCode), slog.Any("error", err))
	}
}

// translateBracketError maps bracket engine errors onto service errors.
func translateBracketError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, brackets.ErrNoWinner):
		return fmt.Errorf("%w: %v", ErrNoWinner, err)
	case errors.Is(err, brackets.ErrTiedSet):
		return fmt.Errorf("%w: %v", ErrTieScore, err)
	case errors.Is(err, brackets.ErrNoSets), errors.Is(err, brackets.ErrNegativeScore):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	case errors.Is(err, brackets.ErrSameTeam):
		return fmt.Errorf("%w: %v", ErrTeamsNotDistinct, err)
	case errors.Is(err, brackets.ErrUnknownTeam):
		return fmt.Errorf("%w: %v", ErrTeamsNotFound, err)
	case errors.Is(err, brackets.ErrDifferentGroups):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	case errors.Is(err, brackets.ErrMatchNotFound):
		return fmt.Errorf("%w: %v", ErrKnockoutNotFound, err)
	case errors.Is(err, brackets.ErrByeMatch):
		return fmt.Errorf("%w: %v", ErrByeMatch, err)
	case errors.Is(err, brackets.ErrMatchNotReady):
		return fmt.Errorf("%w: %v", ErrMatchNotReady, err)
	case errors.Is(err, brackets.ErrMatchDecided):
		return fmt.Errorf("%w: %v", ErrMatchAlreadyDecided, err)
	default:
		return err
	}
}
