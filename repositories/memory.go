package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/club-ladder/models"
)

var errMemoryExecutor = errors.New("memory store transaction does not execute SQL")

// memoryDB keeps every table in maps. Values handed out are always copies.
type memoryDB struct {
	mu          sync.Mutex
	now         func() time.Time
	nextID      map[string]int
	clubs       map[int]*models.Club
	members     map[int]*models.Member
	games       map[int]*models.Game
	tournaments map[int]*models.Tournament
}

// memoryTx records undo steps so a failed WithinTx leaves no trace.
type memoryTx struct {
	undo []func()
}

func (tx *memoryTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errMemoryExecutor
}

func (tx *memoryTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errMemoryExecutor
}

func (tx *memoryTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return nil
}

// NewMemoryStore returns a Store backed by process memory.
func NewMemoryStore() *Store {
	return newMemoryStore(time.Now)
}

// NewMemoryStoreWithClock is NewMemoryStore with a custom time source.
func NewMemoryStoreWithClock(now func() time.Time) *Store {
	return newMemoryStore(now)
}

func newMemoryStore(now func() time.Time) *Store {
	m := &memoryDB{
		now:         now,
		nextID:      make(map[string]int),
		clubs:       make(map[int]*models.Club),
		members:     make(map[int]*models.Member),
		games:       make(map[int]*models.Game),
		tournaments: make(map[int]*models.Tournament),
	}
	return &Store{
		Clubs:       &memoryClubRepository{m},
		Members:     &memoryMemberRepository{m},
		Games:       &memoryGameRepository{m},
		Tournaments: &memoryTournamentRepository{m},
		Tx:          m,
	}
}

func (m *memoryDB) WithinTx(ctx context.Context, fn func(exec SQLExecutor) error) error {
	tx := &memoryTx{}
	if err := fn(tx); err != nil {
		m.mu.Lock()
		for i := len(tx.undo) - 1; i >= 0; i-- {
			tx.undo[i]()
		}
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memoryDB) id(table string) int {
	m.nextID[table]++
	return m.nextID[table]
}

// journal registers an undo step when exec is a memory transaction.
// Callers hold m.mu.
func journal(exec SQLExecutor, undo func()) {
	if tx, ok := exec.(*memoryTx); ok {
		tx.undo = append(tx.undo, undo)
	}
}

type memoryClubRepository struct{ m *memoryDB }

func (r *memoryClubRepository) Create(ctx context.Context, exec SQLExecutor, c *models.Club) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.clubs {
		if existing.Code == c.Code {
			return ErrClubCodeConflict
		}
	}
	c.ID = r.m.id("clubs")
	c.CreatedAt = r.m.now()
	stored := *c
	r.m.clubs[c.ID] = &stored
	id := c.ID
	journal(exec, func() { delete(r.m.clubs, id) })
	return nil
}

func (r *memoryClubRepository) GetByCode(ctx context.Context, code string) (*models.Club, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.clubs {
		if c.Code == code {
			found := *c
			return &found, nil
		}
	}
	return nil, ErrClubNotFound
}

func (r *memoryClubRepository) List(ctx context.Context) ([]models.Club, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	clubs := make([]models.Club, 0, len(r.m.clubs))
	for _, c := range r.m.clubs {
		clubs = append(clubs, *c)
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].ID < clubs[j].ID })
	return clubs, nil
}

func (r *memoryClubRepository) UpdateCourts(ctx context.Context, id int, courts int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.clubs[id]
	if !ok {
		return ErrClubNotFound
	}
	c.Courts = courts
	return nil
}

type memoryMemberRepository struct{ m *memoryDB }

func (r *memoryMemberRepository) find(clubID int, name string) *models.Member {
	for _, member := range r.m.members {
		if member.ClubID == clubID && member.Name == name {
			return member
		}
	}
	return nil
}

func (r *memoryMemberRepository) Create(ctx context.Context, exec SQLExecutor, member *models.Member) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.clubs[member.ClubID]; !ok {
		return ErrMemberInvalidClub
	}
	if r.find(member.ClubID, member.Name) != nil {
		return ErrMemberNameConflict
	}
	member.ID = r.m.id("members")
	member.CreatedAt = r.m.now()
	stored := member.Clone()
	r.m.members[member.ID] = stored
	id := member.ID
	journal(exec, func() { delete(r.m.members, id) })
	return nil
}

func (r *memoryMemberRepository) GetByName(ctx context.Context, clubID int, name string) (*models.Member, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	member := r.find(clubID, name)
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member.Clone(), nil
}

func (r *memoryMemberRepository) ListByClub(ctx context.Context, exec SQLExecutor, clubID int) ([]*models.Member, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	members := make([]*models.Member, 0)
	for _, member := range r.m.members {
		if member.ClubID == clubID {
			members = append(members, member.Clone())
		}
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}

func (r *memoryMemberRepository) UpdateRole(ctx context.Context, clubID int, name string, role models.MemberRole) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	member := r.find(clubID, name)
	if member == nil {
		return ErrMemberNotFound
	}
	member.Role = role
	return nil
}

func (r *memoryMemberRepository) UpdateStats(ctx context.Context, exec SQLExecutor, member *models.Member) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.members[member.ID]
	if !ok {
		return ErrMemberNotFound
	}
	previous := stored.Clone()
	updated := member.Clone()
	stored.Rating = updated.Rating
	stored.GamesPlayed = updated.GamesPlayed
	stored.GamesWon = updated.GamesWon
	stored.PartnerStats = updated.PartnerStats
	journal(exec, func() {
		stored.Rating = previous.Rating
		stored.GamesPlayed = previous.GamesPlayed
		stored.GamesWon = previous.GamesWon
		stored.PartnerStats = previous.PartnerStats
	})
	return nil
}

func (r *memoryMemberRepository) Delete(ctx context.Context, clubID int, name string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	member := r.find(clubID, name)
	if member == nil {
		return ErrMemberNotFound
	}
	delete(r.m.members, member.ID)
	return nil
}

type memoryGameRepository struct{ m *memoryDB }

func (r *memoryGameRepository) Create(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.clubs[g.ClubID]; !ok {
		return ErrGameInvalidClub
	}
	if g.Team1Score == g.Team2Score {
		return ErrGameTieScore
	}
	g.ID = r.m.id("games")
	g.CreatedAt = r.m.now()
	if g.PlayedAt.IsZero() {
		g.PlayedAt = g.CreatedAt
	}
	stored := *g
	r.m.games[g.ID] = &stored
	id := g.ID
	journal(exec, func() { delete(r.m.games, id) })
	return nil
}

func (r *memoryGameRepository) GetByID(ctx context.Context, exec SQLExecutor, clubID, id int) (*models.Game, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	g, ok := r.m.games[id]
	if !ok || g.ClubID != clubID {
		return nil, ErrGameNotFound
	}
	found := *g
	return &found, nil
}

func (r *memoryGameRepository) clubGames(clubID int) []models.Game {
	games := make([]models.Game, 0)
	for _, g := range r.m.games {
		if g.ClubID == clubID {
			games = append(games, *g)
		}
	}
	sort.Slice(games, func(i, j int) bool {
		if !games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].CreatedAt.Before(games[j].CreatedAt)
		}
		return games[i].ID < games[j].ID
	})
	return games
}

func (r *memoryGameRepository) ListByClub(ctx context.Context, exec SQLExecutor, clubID int) ([]models.Game, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.clubGames(clubID), nil
}

func (r *memoryGameRepository) ListRecent(ctx context.Context, clubID int, limit int) ([]models.Game, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	games := r.clubGames(clubID)
	for i, j := 0, len(games)-1; i < j; i, j = i+1, j-1 {
		games[i], games[j] = games[j], games[i]
	}
	if limit > 0 && len(games) > limit {
		games = games[:limit]
	}
	return games, nil
}

func (r *memoryGameRepository) CountByClub(ctx context.Context, clubID int) (int, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	count := 0
	for _, g := range r.m.games {
		if g.ClubID == clubID {
			count++
		}
	}
	return count, nil
}

func (r *memoryGameRepository) UpdateScores(ctx context.Context, exec SQLExecutor, g *models.Game) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	stored, ok := r.m.games[g.ID]
	if !ok || stored.ClubID != g.ClubID {
		return ErrGameNotFound
	}
	if g.Team1Score == g.Team2Score {
		return ErrGameTieScore
	}
	previous := *stored
	stored.Team1Score, stored.Team2Score, stored.Winner = g.Team1Score, g.Team2Score, g.Winner
	journal(exec, func() {
		stored.Team1Score, stored.Team2Score, stored.Winner = previous.Team1Score, previous.Team2Score, previous.Winner
	})
	return nil
}

func (r *memoryGameRepository) Delete(ctx context.Context, exec SQLExecutor, clubID, id int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	g, ok := r.m.games[id]
	if !ok || g.ClubID != clubID {
		return ErrGameNotFound
	}
	delete(r.m.games, id)
	journal(exec, func() { r.m.games[id] = g })
	return nil
}

type memoryTournamentRepository struct{ m *memoryDB }

// cloneTournament copies the nested state through its JSON form.
func cloneTournament(t *models.Tournament) (*models.Tournament, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	c := &models.Tournament{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *memoryTournamentRepository) Create(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.clubs[t.ClubID]; !ok {
		return ErrTournamentInvalidClub
	}
	t.ID = r.m.id("tournaments")
	t.CreatedAt = r.m.now()
	t.UpdatedAt = t.CreatedAt
	stored, err := cloneTournament(t)
	if err != nil {
		return err
	}
	r.m.tournaments[t.ID] = stored
	id := t.ID
	journal(exec, func() { delete(r.m.tournaments, id) })
	return nil
}

func (r *memoryTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, clubID, id int) (*models.Tournament, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.tournaments[id]
	if !ok || t.ClubID != clubID {
		return nil, ErrTournamentNotFound
	}
	return cloneTournament(t)
}

func (r *memoryTournamentRepository) ListByClub(ctx context.Context, clubID int) ([]models.Tournament, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	tournaments := make([]models.Tournament, 0)
	for _, t := range r.m.tournaments {
		if t.ClubID != clubID {
			continue
		}
		c, err := cloneTournament(t)
		if err != nil {
			return nil, err
		}
		tournaments = append(tournaments, *c)
	}
	sort.Slice(tournaments, func(i, j int) bool { return tournaments[i].ID > tournaments[j].ID })
	return tournaments, nil
}

func (r *memoryTournamentRepository) Update(ctx context.Context, exec SQLExecutor, t *models.Tournament) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	previous, ok := r.m.tournaments[t.ID]
	if !ok || previous.ClubID != t.ClubID {
		return ErrTournamentNotFound
	}
	t.UpdatedAt = r.m.now()
	stored, err := cloneTournament(t)
	if err != nil {
		return err
	}
	r.m.tournaments[t.ID] = stored
	id := t.ID
	journal(exec, func() { r.m.tournaments[id] = previous })
	return nil
}
