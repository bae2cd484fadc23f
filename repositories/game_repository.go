package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/club-ladder/models"
	"github.com/lib/pq"
)

var (
	ErrGameNotFound    = errors.New("game not found")
	ErrGameInvalidClub = errors.New("invalid club reference")
	ErrGameTieScore    = errors.New("game scores cannot be equal")
)

type GameRepository interface {
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	GetByID(ctx context.Context, exec SQLExecutor, clubID, id int) (*models.Game, error)
	// ListByClub returns the full history in replay order.
	ListByClub(ctx context.Context, exec SQLExecutor, clubID int) ([]models.Game, error)
	// ListRecent returns the newest games first.
	ListRecent(ctx context.Context, clubID int, limit int) ([]models.Game, error)
	CountByClub(ctx context.Context, clubID int) (int, error)
	UpdateScores(ctx context.Context, exec SQLExecutor, game *models.Game) error
	Delete(ctx context.Context, exec SQLExecutor, clubID, id int) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `id, club_id, court, team1_player1, team1_player2, team2_player1, team2_player2,
	team1_score, team2_score, winner, played_at, created_at`

func scanGame(row rowScanner, g *models.Game) error {
	return row.Scan(
		&g.ID, &g.ClubID, &g.Court, &g.Team1[0], &g.Team1[1], &g.Team2[0], &g.Team2[1],
		&g.Team1Score, &g.Team2Score, &g.Winner, &g.PlayedAt, &g.CreatedAt,
	)
}

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	query := `
		INSERT INTO games (
			club_id, court, team1_player1, team1_player2, team2_player1, team2_player2,
			team1_score, team2_score, winner, played_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		g.ClubID, g.Court, g.Team1[0], g.Team1[1], g.Team2[0], g.Team2[1],
		g.Team1Score, g.Team2Score, g.Winner, g.PlayedAt,
	).Scan(&g.ID, &g.CreatedAt)
	return r.handleGameError(err)
}

func (r *postgresGameRepository) GetByID(ctx context.Context, exec SQLExecutor, clubID, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE club_id = $1 AND id = $2`

	g := &models.Game{}
	if err := scanGame(r.getExecutor(exec).QueryRowContext(ctx, query, clubID, id), g); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *postgresGameRepository) ListByClub(ctx context.Context, exec SQLExecutor, clubID int) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE club_id = $1 ORDER BY created_at, id`
	return r.list(ctx, r.getExecutor(exec), query, clubID)
}

func (r *postgresGameRepository) ListRecent(ctx context.Context, clubID int, limit int) ([]models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE club_id = $1 ORDER BY created_at DESC, id DESC`
	args := []interface{}{clubID}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, limit)
	}
	return r.list(ctx, r.db, query, args...)
}

func (r *postgresGameRepository) list(ctx context.Context, executor SQLExecutor, query string, args ...interface{}) ([]models.Game, error) {
	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		var g models.Game
		if scanErr := scanGame(rows, &g); scanErr != nil {
			return nil, scanErr
		}
		games = append(games, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

func (r *postgresGameRepository) CountByClub(ctx context.Context, clubID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM games WHERE club_id = $1`, clubID).Scan(&count)
	return count, err
}

func (r *postgresGameRepository) UpdateScores(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	query := `UPDATE games SET team1_score = $1, team2_score = $2, winner = $3 WHERE club_id = $4 AND id = $5`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, g.Team1Score, g.Team2Score, g.Winner, g.ClubID, g.ID)
	if err != nil {
		return r.handleGameError(err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) Delete(ctx context.Context, exec SQLExecutor, clubID, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM games WHERE club_id = $1 AND id = $2`, clubID, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503":
			if pqErr.Constraint == "games_club_id_fkey" {
				return ErrGameInvalidClub
			}
		case "23514":
			if pqErr.Constraint == "games_scores_check" {
				return ErrGameTieScore
			}
		}
	}
	return err
}
