package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/room-system/models"
	"github.com/lib/pq"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentRepository — read-model турниров для сервиса комнат. Записями
// турниров владеет внешний сервис, здесь только чтение нужной проекции.
type TournamentRepository interface {
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	ListByIDs(ctx context.Context, ids []int) ([]*models.Tournament, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, name, type, status, max_participants, start_date, created_at`

func scanTournament(rowScanner interface {
	Scan(dest ...interface{}) error
}, t *models.Tournament) error {
	return rowScanner.Scan(
		&t.ID,
		&t.Name,
		&t.Type,
		&t.Status,
		&t.MaxParticipants,
		&t.StartDate,
		&t.CreatedAt,
	)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := fmt.Sprintf(`SELECT %s FROM tournaments WHERE id = $1`, tournamentColumns)

	t := &models.Tournament{}
	err := scanTournament(r.db.QueryRowContext(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListByIDs(ctx context.Context, ids []int) ([]*models.Tournament, error) {
	if len(ids) == 0 {
		return []*models.Tournament{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM tournaments WHERE id = ANY($1) ORDER BY start_date ASC`, tournamentColumns)

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments by ids: %w", err)
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0, len(ids))
	for rows.Next() {
		t := &models.Tournament{}
		if err := scanTournament(rows, t); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tournament rows: %w", err)
	}
	return tournaments, nil
}
