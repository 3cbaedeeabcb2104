package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/room-system/models"
	"github.com/Dosada05/room-system/repositories"
)

// ParticipantService — операции над плоской административной нумерацией
// участников. Эта нумерация живёт отдельно от сетки комнаты и друг на друга
// они не влияют.
type ParticipantService struct {
	participantRepo repositories.ParticipantRepository
	tournamentRepo  repositories.TournamentRepository
	logger          *slog.Logger
}

func NewParticipantService(
	participantRepo repositories.ParticipantRepository,
	tournamentRepo repositories.TournamentRepository,
	logger *slog.Logger,
) *ParticipantService {
	return &ParticipantService{
		participantRepo: participantRepo,
		tournamentRepo:  tournamentRepo,
		logger:          logger,
	}
}

// ListByTournament возвращает участников турнира в порядке slot_number.
func (s *ParticipantService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	return s.participantRepo.ListByTournament(ctx, tournamentID)
}

// FindByUser возвращает запись участника для пользователя в турнире.
func (s *ParticipantService) FindByUser(ctx context.Context, userID, tournamentID int) (*models.Participant, error) {
	participant, err := s.participantRepo.FindByUserAndTournament(ctx, userID, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to find participant: %w", err)
	}
	return participant, nil
}

// SwapSlotNumbers атомарно меняет местами два плоских номера. Если номер
// назначения свободен, источник просто переносится на него. Оба обращения
// идут одной транзакцией, частичного состояния наружу не видно.
func (s *ParticipantService) SwapSlotNumbers(ctx context.Context, tournamentID, sourceSlotNumber, destSlotNumber int, actor models.Actor) error {
	if !actor.IsAdmin() {
		return ErrForbiddenOperation
	}
	if sourceSlotNumber == destSlotNumber {
		return ErrSameSlotMove
	}

	err := s.participantRepo.SwapSlotNumbers(ctx, tournamentID, sourceSlotNumber, destSlotNumber)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrParticipantNotFound):
			return ErrParticipantNotFound
		case errors.Is(err, repositories.ErrParticipantSlotConflict):
			return ErrSlotNumberConflict
		}
		return fmt.Errorf("failed to swap participant slot numbers: %w", err)
	}

	s.logger.Info("participant slot numbers swapped",
		slog.Int("tournament_id", tournamentID),
		slog.Int("source_slot", sourceSlotNumber),
		slog.Int("dest_slot", destSlotNumber),
		slog.Int("actor_id", actor.UserID))
	return nil
}
