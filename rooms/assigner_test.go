package rooms

import (
	"testing"
	"time"

	"github.com/Dosada05/room-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSquadLayout(t *testing.T, maxParticipants int) *models.RoomLayout {
	t.Helper()
	layout, err := NewRoomLayout(1, models.TypeSquad, maxParticipants)
	require.NoError(t, err)
	return layout
}

func TestAssignPlayerToSlot(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	ref, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 10, Nickname: "alpha"}, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, models.SlotRef{TeamNumber: 1, SlotNumber: 2}, ref)

	slot := layout.Teams[0].Slots[1]
	require.NotNil(t, slot.Player)
	assert.Equal(t, 10, slot.Player.ID)
	assert.Equal(t, "alpha", slot.Player.Nickname)

	// Первый севший становится капитаном команды
	require.NotNil(t, layout.Teams[0].Captain)
	assert.Equal(t, 10, layout.Teams[0].Captain.ID)
}

func TestAssignPlayerToSlotOccupied(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 1)
	require.NoError(t, err)

	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 2}, 1, 1)
	assert.ErrorIs(t, err, ErrSlotOccupied)

	// Проигравший не выселяет победителя
	assert.Equal(t, 1, layout.Teams[0].Slots[0].Player.ID)
	assert.Nil(t, FindPlayerSlot(layout, 2))
}

func TestAssignPlayerToSlotLocked(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	require.NoError(t, assigner.LockSlot(layout, 1, 1, models.SystemActor, time.Now()))

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 1)
	assert.ErrorIs(t, err, ErrSlotLocked)
}

func TestAssignPlayerToSlotUnknownAddress(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 9, 1)
	assert.ErrorIs(t, err, ErrTeamNotFound)

	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 9)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestAssignPlayerToSlotVacatesPreviousSeat(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 1)
	require.NoError(t, err)

	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 2, 3)
	require.NoError(t, err)

	assert.Nil(t, layout.Teams[0].Slots[0].Player)
	ref := FindPlayerSlot(layout, 1)
	require.NotNil(t, ref)
	assert.Equal(t, models.SlotRef{TeamNumber: 2, SlotNumber: 3}, *ref)
}

func TestAutoAssignPlayerFirstFit(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 1)
	require.NoError(t, err)
	require.NoError(t, assigner.LockSlot(layout, 1, 2, models.SystemActor, time.Now()))

	// Занятый 1-1 и заблокированный 1-2 пропускаются
	ref, err := assigner.AutoAssignPlayer(layout, models.PlayerRef{ID: 2})
	require.NoError(t, err)
	assert.Equal(t, models.SlotRef{TeamNumber: 1, SlotNumber: 3}, ref)
}

func TestAutoAssignPlayerFullRoom(t *testing.T) {
	layout, err := NewRoomLayout(1, models.TypeSolo, 2)
	require.NoError(t, err)
	assigner := NewAssigner()

	_, err = assigner.AutoAssignPlayer(layout, models.PlayerRef{ID: 1})
	require.NoError(t, err)
	_, err = assigner.AutoAssignPlayer(layout, models.PlayerRef{ID: 2})
	require.NoError(t, err)

	_, err = assigner.AutoAssignPlayer(layout, models.PlayerRef{ID: 3})
	assert.ErrorIs(t, err, ErrNoAvailableSlots)
}

func TestCaptainReelectionOnDeparture(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1, Nickname: "cap"}, 1, 1)
	require.NoError(t, err)
	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 2}, 1, 3)
	require.NoError(t, err)
	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 3}, 1, 2)
	require.NoError(t, err)

	require.Equal(t, 1, layout.Teams[0].Captain.ID)

	// Капитан ушёл: новый выбирается по возрастанию номера слота, а не по
	// порядку посадки
	vacated := assigner.RemovePlayerFromAllSlots(layout, 1)
	require.NotNil(t, vacated)
	assert.Equal(t, models.SlotRef{TeamNumber: 1, SlotNumber: 1}, *vacated)
	require.NotNil(t, layout.Teams[0].Captain)
	assert.Equal(t, 3, layout.Teams[0].Captain.ID)
}

func TestCaptainClearsWhenTeamEmpties(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 1)
	require.NoError(t, err)

	assigner.RemovePlayerFromAllSlots(layout, 1)
	assert.Nil(t, layout.Teams[0].Captain)
}

func TestRemovePlayerIsIdempotent(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 1)
	require.NoError(t, err)

	require.NotNil(t, assigner.RemovePlayerFromAllSlots(layout, 1))
	assert.Nil(t, assigner.RemovePlayerFromAllSlots(layout, 1))
}

func TestMovePlayer(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1, Nickname: "mover"}, 1, 1)
	require.NoError(t, err)

	ref, err := assigner.MovePlayer(layout, 1,
		models.SlotRef{TeamNumber: 1, SlotNumber: 1},
		models.SlotRef{TeamNumber: 2, SlotNumber: 2})
	require.NoError(t, err)
	assert.Equal(t, models.SlotRef{TeamNumber: 2, SlotNumber: 2}, ref)

	assert.Nil(t, layout.Teams[0].Slots[0].Player)
	assert.Nil(t, layout.Teams[0].Captain)
	require.NotNil(t, layout.Teams[1].Slots[1].Player)
	assert.Equal(t, "mover", layout.Teams[1].Slots[1].Player.Nickname)
	assert.Equal(t, 1, layout.Teams[1].Captain.ID)
}

func TestMovePlayerRejectsOccupiedDestination(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 1)
	require.NoError(t, err)
	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 2}, 2, 1)
	require.NoError(t, err)

	_, err = assigner.MovePlayer(layout, 1,
		models.SlotRef{TeamNumber: 1, SlotNumber: 1},
		models.SlotRef{TeamNumber: 2, SlotNumber: 1})
	assert.ErrorIs(t, err, ErrSlotOccupied)

	// Отклонённый перенос не трогает ни источник, ни назначение
	assert.Equal(t, 1, layout.Teams[0].Slots[0].Player.ID)
	assert.Equal(t, 2, layout.Teams[1].Slots[0].Player.ID)
}

func TestMovePlayerRejectsStaleSource(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()

	_, err := assigner.MovePlayer(layout, 1,
		models.SlotRef{TeamNumber: 1, SlotNumber: 1},
		models.SlotRef{TeamNumber: 1, SlotNumber: 2})
	assert.ErrorIs(t, err, ErrPlayerNotInSlot)
}

func TestLockSlotKeepsOccupant(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()
	now := time.Now().UTC()

	_, err := assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 1)
	require.NoError(t, err)

	admin := models.Actor{UserID: 99, Role: models.RoleAdmin}
	require.NoError(t, assigner.LockSlot(layout, 1, 1, admin, now))

	slot := layout.Teams[0].Slots[0]
	assert.True(t, slot.IsLocked)
	require.NotNil(t, slot.Player)
	assert.Equal(t, 1, slot.Player.ID)
	require.NotNil(t, slot.LockedBy)
	assert.Equal(t, 99, *slot.LockedBy)

	require.NoError(t, assigner.UnlockSlot(layout, 1, 1))
	assert.False(t, layout.Teams[0].Slots[0].IsLocked)
	assert.Nil(t, layout.Teams[0].Slots[0].LockedBy)
}

func TestToggleRoomLockCouplesSlotChange(t *testing.T) {
	layout := newSquadLayout(t, 8)
	assigner := NewAssigner()
	now := time.Now().UTC()
	admin := models.Actor{UserID: 99, Role: models.RoleAdmin}

	assigner.ToggleRoomLock(layout, true, admin, now)
	assert.True(t, layout.IsLocked)
	assert.False(t, layout.Settings.AllowSlotChange)
	require.NotNil(t, layout.LockedBy)
	assert.Equal(t, 99, *layout.LockedBy)

	assigner.ToggleRoomLock(layout, false, admin, now)
	assert.False(t, layout.IsLocked)
	assert.True(t, layout.Settings.AllowSlotChange)
	assert.Nil(t, layout.LockedBy)
	assert.Nil(t, layout.LockedAt)
}

func TestTeamCompleteness(t *testing.T) {
	layout, err := NewRoomLayout(1, models.TypeDuo, 4)
	require.NoError(t, err)
	assigner := NewAssigner()

	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 1)
	require.NoError(t, err)
	assert.False(t, layout.Teams[0].IsComplete)

	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 2}, 1, 2)
	require.NoError(t, err)
	assert.True(t, layout.Teams[0].IsComplete)

	assigner.RemovePlayerFromAllSlots(layout, 2)
	assert.False(t, layout.Teams[0].IsComplete)
}
