package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/room-system/models"
	"github.com/lib/pq"
)

var (
	ErrParticipantNotFound     = errors.New("participant not found")
	ErrParticipantSlotConflict = errors.New("participant slot number conflict")
)

// ParticipantRepository — записи участников с плоской административной
// нумерацией slot_number. Эта нумерация не связана с сеткой комнаты:
// она меняется только обменом или переносом в свободный номер, поэтому
// уникальность среди активных участников сохраняется по построению.
type ParticipantRepository interface {
	FindByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Participant, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	SwapSlotNumbers(ctx context.Context, tournamentID, sourceSlotNumber, destSlotNumber int) error
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantColumns = `id, user_id, tournament_id, slot_number, status, created_at`

func scanParticipant(rowScanner interface {
	Scan(dest ...interface{}) error
}, p *models.Participant) error {
	return rowScanner.Scan(
		&p.ID,
		&p.UserID,
		&p.TournamentID,
		&p.SlotNumber,
		&p.Status,
		&p.CreatedAt,
	)
}

func (r *postgresParticipantRepository) FindByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Participant, error) {
	query := fmt.Sprintf(`SELECT %s FROM participants WHERE user_id = $1 AND tournament_id = $2`, participantColumns)

	p := &models.Participant{}
	err := scanParticipant(r.db.QueryRowContext(ctx, query, userID, tournamentID), p)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return p, nil
}

func (r *postgresParticipantRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM participants
		WHERE tournament_id = $1 AND status = $2
		ORDER BY slot_number ASC, created_at ASC`, participantColumns)

	rows, err := r.db.QueryContext(ctx, query, tournamentID, models.ParticipantActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by tournament: %w", err)
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		p := &models.Participant{}
		if err := scanParticipant(rows, p); err != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participant rows: %w", err)
	}
	return participants, nil
}

// SwapSlotNumbers обменивает плоские номера двух участников в одной
// транзакции. Если номер назначения никем не занят, источник просто
// переезжает на него (исходный номер освобождается). Номера никогда не
// дублируются: обмен идёт через временное значение -1, чтобы не споткнуться
// об уникальный индекс (tournament_id, slot_number).
func (r *postgresParticipantRepository) SwapSlotNumbers(ctx context.Context, tournamentID, sourceSlotNumber, destSlotNumber int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin slot swap transaction: %w", err)
	}
	defer tx.Rollback()

	lockQuery := `
		SELECT id FROM participants
		WHERE tournament_id = $1 AND slot_number = $2 AND status = $3
		FOR UPDATE`

	var sourceID int
	err = tx.QueryRowContext(ctx, lockQuery, tournamentID, sourceSlotNumber, models.ParticipantActive).Scan(&sourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrParticipantNotFound
		}
		return fmt.Errorf("failed to lock source participant: %w", err)
	}

	var destID int
	destHeld := true
	err = tx.QueryRowContext(ctx, lockQuery, tournamentID, destSlotNumber, models.ParticipantActive).Scan(&destID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to lock destination participant: %w", err)
		}
		destHeld = false
	}

	updateQuery := `UPDATE participants SET slot_number = $1 WHERE id = $2`

	if destHeld {
		if _, err := tx.ExecContext(ctx, updateQuery, -1, destID); err != nil {
			return r.mapSwapError(err)
		}
	}
	if _, err := tx.ExecContext(ctx, updateQuery, destSlotNumber, sourceID); err != nil {
		return r.mapSwapError(err)
	}
	if destHeld {
		if _, err := tx.ExecContext(ctx, updateQuery, sourceSlotNumber, destID); err != nil {
			return r.mapSwapError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit slot swap: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) mapSwapError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
		return ErrParticipantSlotConflict
	}
	return fmt.Errorf("failed to update participant slot number: %w", err)
}
