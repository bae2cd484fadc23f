package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/club-ladder/models"
	"github.com/lib/pq"
)

var (
	ErrClubNotFound     = errors.New("club not found")
	ErrClubCodeConflict = errors.New("club code already in use")
)

type ClubRepository interface {
	Create(ctx context.Context, exec SQLExecutor, club *models.Club) error
	GetByCode(ctx context.Context, code string) (*models.Club, error)
	List(ctx context.Context) ([]models.Club, error)
	UpdateCourts(ctx context.Context, id int, courts int) error
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresClubRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Club) error {
	query := `
		INSERT INTO clubs (code, name, courts, subscription_tier)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query, c.Code, c.Name, c.Courts, c.Tier).
		Scan(&c.ID, &c.CreatedAt)
	return r.handleClubError(err)
}

func (r *postgresClubRepository) GetByCode(ctx context.Context, code string) (*models.Club, error) {
	query := `
		SELECT id, code, name, courts, subscription_tier, created_at
		FROM clubs
		WHERE code = $1`

	c := &models.Club{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.ID, &c.Code, &c.Name, &c.Courts, &c.Tier, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *postgresClubRepository) List(ctx context.Context) ([]models.Club, error) {
	query := `
		SELECT id, code, name, courts, subscription_tier, created_at
		FROM clubs
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clubs := make([]models.Club, 0)
	for rows.Next() {
		var c models.Club
		if scanErr := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Courts, &c.Tier, &c.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		clubs = append(clubs, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *postgresClubRepository) UpdateCourts(ctx context.Context, id int, courts int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE clubs SET courts = $1 WHERE id = $2`, courts, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrClubNotFound)
}

func (r *postgresClubRepository) handleClubError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23505" && pqErr.Constraint == "clubs_code_key" {
			return ErrClubCodeConflict
		}
	}
	return err
}
