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
	ErrMemberNotFound     = errors.New("member not found")
	ErrMemberNameConflict = errors.New("member name already taken in this club")
	ErrMemberInvalidClub  = errors.New("invalid club reference")
)

type MemberRepository interface {
	Create(ctx context.Context, exec SQLExecutor, member *models.Member) error
	GetByName(ctx context.Context, clubID int, name string) (*models.Member, error)
	ListByClub(ctx context.Context, exec SQLExecutor, clubID int) ([]*models.Member, error)
	UpdateRole(ctx context.Context, clubID int, name string, role models.MemberRole) error
	UpdateStats(ctx context.Context, exec SQLExecutor, member *models.Member) error
	Delete(ctx context.Context, clubID int, name string) error
}

type postgresMemberRepository struct {
	db *sql.DB
}

func NewPostgresMemberRepository(db *sql.DB) MemberRepository {
	return &postgresMemberRepository{db: db}
}

func (r *postgresMemberRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const memberColumns = `id, club_id, name, role, elo, games_played, games_won, partner_stats, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	m := &models.Member{}
	var partnerStats []byte
	if err := row.Scan(
		&m.ID, &m.ClubID, &m.Name, &m.Role, &m.Rating, &m.GamesPlayed, &m.GamesWon, &partnerStats, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	m.PartnerStats = make(map[string]models.PartnerRecord)
	if len(partnerStats) > 0 {
		if err := json.Unmarshal(partnerStats, &m.PartnerStats); err != nil {
			return nil, fmt.Errorf("failed to decode partner stats of %q: %w", m.Name, err)
		}
	}
	return m, nil
}

func (r *postgresMemberRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Member) error {
	partnerStats, err := encodePartnerStats(m.PartnerStats)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO members (club_id, name, role, elo, games_played, games_won, partner_stats)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		m.ClubID, m.Name, m.Role, m.Rating, m.GamesPlayed, m.GamesWon, partnerStats,
	).Scan(&m.ID, &m.CreatedAt)
	return r.handleMemberError(err)
}

func (r *postgresMemberRepository) GetByName(ctx context.Context, clubID int, name string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE club_id = $1 AND name = $2`

	m, err := scanMember(r.db.QueryRowContext(ctx, query, clubID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *postgresMemberRepository) ListByClub(ctx context.Context, exec SQLExecutor, clubID int) ([]*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE club_id = $1 ORDER BY id`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.Member, 0)
	for rows.Next() {
		m, scanErr := scanMember(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *postgresMemberRepository) UpdateRole(ctx context.Context, clubID int, name string, role models.MemberRole) error {
	query := `UPDATE members SET role = $1 WHERE club_id = $2 AND name = $3`
	result, err := r.db.ExecContext(ctx, query, role, clubID, name)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) UpdateStats(ctx context.Context, exec SQLExecutor, m *models.Member) error {
	partnerStats, err := encodePartnerStats(m.PartnerStats)
	if err != nil {
		return err
	}
	query := `
		UPDATE members SET
			elo = $1,
			games_played = $2,
			games_won = $3,
			partner_stats = $4
		WHERE id = $5`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		m.Rating, m.GamesPlayed, m.GamesWon, partnerStats, m.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) Delete(ctx context.Context, clubID int, name string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE club_id = $1 AND name = $2`, clubID, name)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMemberNotFound)
}

func (r *postgresMemberRepository) handleMemberError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505":
			if pqErr.Constraint == "members_club_id_name_key" {
				return ErrMemberNameConflict
			}
		case "23503":
			if pqErr.Constraint == "members_club_id_fkey" {
				return ErrMemberInvalidClub
			}
		}
	}
	return err
}

// encodePartnerStats returns text so lib/pq does not send it as bytea.
func encodePartnerStats(stats map[string]models.PartnerRecord) (string, error) {
	if stats == nil {
		stats = map[string]models.PartnerRecord{}
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return "", fmt.Errorf("failed to encode partner stats: %w", err)
	}
	return string(data), nil
}
