package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/club-ladder/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrTournamentInvalidClub = errors.New("invalid club reference")
)

type TournamentRepository interface {
	Create(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, clubID, id int) (*models.Tournament, error)
	ListByClub(ctx context.Context, clubID int) ([]models.Tournament, error)
	// Update stores the full tournament state.
	Update(ctx context.Context, exec SQLExecutor, tournament *models.Tournament) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, club_id, name, status, num_groups, knockout_rounds,
	teams, groups, standings, bracket, champion_id, created_at, updated_at`

// tournamentState is the JSONB encoded part of a tournament row.
type tournamentState struct {
	teams     string
	groups    string
	standings string
	bracket   sql.NullString
}

func encodeTournamentState(t *models.Tournament) (tournamentState, error) {
	var state tournamentState
	teams := t.Teams
	if teams == nil {
		teams = []models.TournamentTeam{}
	}
	groups := t.Groups
	if groups == nil {
		groups = map[int]int{}
	}
	standings := t.Standings
	if standings == nil {
		standings = map[int]*models.GroupStanding{}
	}

	parts := []struct {
		value interface{}
		dest  *string
	}{
		{teams, &state.teams},
		{groups, &state.groups},
		{standings, &state.standings},
	}
	for _, p := range parts {
		data, err := json.Marshal(p.value)
		if err != nil {
			return state, fmt.Errorf("failed to encode tournament state: %w", err)
		}
		*p.dest = string(data)
	}

	if t.Bracket != nil {
		data, err := json.Marshal(t.Bracket)
		if err != nil {
			return state, fmt.Errorf("failed to encode bracket: %w", err)
		}
		state.bracket = sql.NullString{String: string(data), Valid: true}
	}
	return state, nil
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	t := &models.Tournament{}
	var teams, groups, standings, bracket []byte
	var championID sql.NullInt64
	if err := row.Scan(
		&t.ID, &t.ClubID, &t.Name, &t.Status, &t.NumGroups, &t.KnockoutRounds,
		&teams, &groups, &standings, &bracket, &championID, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(teams, &t.Teams); err != nil {
		return nil, fmt.Errorf("failed to decode teams of tournament %d: %w", t.ID, err)
	}
	if err := json.Unmarshal(groups, &t.Groups); err != nil {
		return nil, fmt.Errorf("failed to decode groups of tournament %d: %w", t.ID, err)
	}
	if err := json.Unmarshal(standings, &t.Standings); err != nil {
		return nil, fmt.Errorf("failed to decode standings of tournament %d: %w", t.ID, err)
	}
	if len(bracket) > 0 {
		t.Bracket = &models.Bracket{}
		if err := json.Unmarshal(bracket, t.Bracket); err != nil {
			return nil, fmt.Errorf("failed to decode bracket of tournament %d: %w", t.ID, err)
		}
	}
	if championID.Valid {
		id := int(championID.Int64)
		t.ChampionID = &id
	}
	return t, nil
}

func (r *postgresTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	state, err := encodeTournamentState(t)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO tournaments (
			club_id, name, status, num_groups, knockout_rounds, teams, groups, standings, bracket, champion_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		t.ClubID, t.Name, t.Status, t.NumGroups, t.KnockoutRounds,
		state.teams, state.groups, state.standings, state.bracket, t.ChampionID,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, clubID, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE club_id = $1 AND id = $2`

	t, err := scanTournament(r.getExecutor(exec).QueryRowContext(ctx, query, clubID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListByClub(ctx context.Context, clubID int) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE club_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, *t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	state, err := encodeTournamentState(t)
	if err != nil {
		return err
	}
	query := `
		UPDATE tournaments SET
			name = $1,
			status = $2,
			teams = $3,
			groups = $4,
			standings = $5,
			bracket = $6,
			champion_id = $7,
			updated_at = NOW()
		WHERE club_id = $8 AND id = $9
		RETURNING updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		t.Name, t.Status, state.teams, state.groups, state.standings, state.bracket, t.ChampionID,
		t.ClubID, t.ID,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTournamentNotFound
	}
	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" && pqErr.Constraint == "tournaments_club_id_fkey" {
			return ErrTournamentInvalidClub
		}
	}
	return err
}
