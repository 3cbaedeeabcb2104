package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/room-system/models"
)

var ErrRoomNotFound = errors.New("tournament room not found")

// RoomRepository хранит сетки комнат. Сетка лежит одним JSONB-документом:
// она всегда читается и фиксируется целиком (снапшот — единица консистентности),
// построчная схема team/slot дала бы только лишние джойны.
type RoomRepository interface {
	GetByTournamentID(ctx context.Context, tournamentID int) (*models.RoomLayout, error)
	Upsert(ctx context.Context, layout *models.RoomLayout) error
	Delete(ctx context.Context, tournamentID int) error
	ListTournamentIDs(ctx context.Context) ([]int, error)
}

type postgresRoomRepository struct {
	db *sql.DB
}

func NewPostgresRoomRepository(db *sql.DB) RoomRepository {
	return &postgresRoomRepository{db: db}
}

func (r *postgresRoomRepository) GetByTournamentID(ctx context.Context, tournamentID int) (*models.RoomLayout, error) {
	query := `SELECT layout FROM tournament_rooms WHERE tournament_id = $1`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room layout: %w", err)
	}

	var layout models.RoomLayout
	if err := json.Unmarshal(raw, &layout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room layout for tournament %d: %w", tournamentID, err)
	}
	return &layout, nil
}

func (r *postgresRoomRepository) Upsert(ctx context.Context, layout *models.RoomLayout) error {
	raw, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("failed to marshal room layout for tournament %d: %w", layout.TournamentID, err)
	}

	query := `
		INSERT INTO tournament_rooms (tournament_id, layout, version, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tournament_id)
		DO UPDATE SET layout = EXCLUDED.layout, version = EXCLUDED.version, updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query, layout.TournamentID, raw, layout.Version, layout.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert room layout: %w", err)
	}
	return nil
}

func (r *postgresRoomRepository) Delete(ctx context.Context, tournamentID int) error {
	query := `DELETE FROM tournament_rooms WHERE tournament_id = $1`
	result, err := r.db.ExecContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to delete room layout: %w", err)
	}
	return checkAffectedRows(result, ErrRoomNotFound)
}

func (r *postgresRoomRepository) ListTournamentIDs(ctx context.Context) ([]int, error) {
	query := `SELECT tournament_id FROM tournament_rooms ORDER BY tournament_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list room tournament ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int, 0)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan room tournament id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating room tournament ids: %w", err)
	}
	return ids, nil
}
