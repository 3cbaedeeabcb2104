package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/Dosada05/room-system/models"
	"github.com/Dosada05/room-system/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParticipantRepo struct {
	participants map[int]*models.Participant // keyed by slot number
}

func newFakeParticipantRepo(slotNumbers ...int) *fakeParticipantRepo {
	repo := &fakeParticipantRepo{participants: make(map[int]*models.Participant)}
	for i, n := range slotNumbers {
		repo.participants[n] = &models.Participant{
			ID:           i + 1,
			UserID:       i + 1,
			TournamentID: 1,
			SlotNumber:   n,
			Status:       models.ParticipantActive,
			CreatedAt:    time.Now(),
		}
	}
	return repo
}

func (r *fakeParticipantRepo) FindByUserAndTournament(ctx context.Context, userID, tournamentID int) (*models.Participant, error) {
	for _, p := range r.participants {
		if p.UserID == userID && p.TournamentID == tournamentID {
			return p, nil
		}
	}
	return nil, repositories.ErrParticipantNotFound
}

func (r *fakeParticipantRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	result := make([]*models.Participant, 0, len(r.participants))
	for _, p := range r.participants {
		if p.TournamentID == tournamentID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SlotNumber < result[j].SlotNumber })
	return result, nil
}

func (r *fakeParticipantRepo) SwapSlotNumbers(ctx context.Context, tournamentID, sourceSlotNumber, destSlotNumber int) error {
	source, ok := r.participants[sourceSlotNumber]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	dest, destOccupied := r.participants[destSlotNumber]

	delete(r.participants, sourceSlotNumber)
	source.SlotNumber = destSlotNumber
	r.participants[destSlotNumber] = source
	if destOccupied {
		dest.SlotNumber = sourceSlotNumber
		r.participants[sourceSlotNumber] = dest
	}
	return nil
}

func newParticipantServiceFixture(t *testing.T, slotNumbers ...int) (*ParticipantService, *fakeParticipantRepo) {
	t.Helper()
	participantRepo := newFakeParticipantRepo(slotNumbers...)
	tournamentRepo := newFakeTournamentRepo(squadTournament(1, models.StatusUpcoming, time.Hour))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewParticipantService(participantRepo, tournamentRepo, logger), participantRepo
}

func TestSwapSlotNumbersExchangesBoth(t *testing.T) {
	service, repo := newParticipantServiceFixture(t, 1, 2)

	err := service.SwapSlotNumbers(context.Background(), 1, 1, 2, admin)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.participants[2].UserID)
	assert.Equal(t, 1, repo.participants[1].UserID)
	assert.Equal(t, 2, repo.participants[2].SlotNumber)
}

func TestSwapSlotNumbersRelocatesToFreeNumber(t *testing.T) {
	service, repo := newParticipantServiceFixture(t, 1)

	err := service.SwapSlotNumbers(context.Background(), 1, 1, 5, admin)
	require.NoError(t, err)

	_, sourceStillThere := repo.participants[1]
	assert.False(t, sourceStillThere)
	require.Contains(t, repo.participants, 5)
	assert.Equal(t, 5, repo.participants[5].SlotNumber)
}

func TestSwapSlotNumbersMissingSource(t *testing.T) {
	service, _ := newParticipantServiceFixture(t, 1)

	err := service.SwapSlotNumbers(context.Background(), 1, 9, 1, admin)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestSwapSlotNumbersSameNumber(t *testing.T) {
	service, _ := newParticipantServiceFixture(t, 1)

	err := service.SwapSlotNumbers(context.Background(), 1, 1, 1, admin)
	assert.ErrorIs(t, err, ErrSameSlotMove)
}

func TestSwapSlotNumbersRequiresAdmin(t *testing.T) {
	service, _ := newParticipantServiceFixture(t, 1, 2)

	err := service.SwapSlotNumbers(context.Background(), 1, 1, 2, player)
	assert.ErrorIs(t, err, ErrForbiddenOperation)
}

func TestFindParticipantByUser(t *testing.T) {
	service, repo := newParticipantServiceFixture(t, 1, 2)

	wanted := repo.participants[2]
	participant, err := service.FindByUser(context.Background(), wanted.UserID, 1)
	require.NoError(t, err)
	assert.Equal(t, wanted.UserID, participant.UserID)
	assert.Equal(t, 2, participant.SlotNumber)

	_, err = service.FindByUser(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestListParticipantsByTournament(t *testing.T) {
	service, _ := newParticipantServiceFixture(t, 3, 1, 2)

	participants, err := service.ListByTournament(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, participants, 3)
	assert.Equal(t, 1, participants[0].SlotNumber)
	assert.Equal(t, 3, participants[2].SlotNumber)
}

func TestListParticipantsUnknownTournament(t *testing.T) {
	service, _ := newParticipantServiceFixture(t)

	_, err := service.ListByTournament(context.Background(), 404)
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
