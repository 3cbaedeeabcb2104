package rooms

import (
	"fmt"
	"testing"

	"github.com/Dosada05/room-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoomLayoutSquadDimensions(t *testing.T) {
	layout, err := NewRoomLayout(42, models.TypeSquad, 16)
	require.NoError(t, err)

	assert.Equal(t, 42, layout.TournamentID)
	assert.Equal(t, 4, layout.SlotsPerTeam)
	assert.Equal(t, 4, layout.MaxTeams)
	require.Len(t, layout.Teams, 4)

	for i, team := range layout.Teams {
		assert.Equal(t, i+1, team.TeamNumber)
		assert.Equal(t, fmt.Sprintf("Team %d", i+1), team.TeamName)
		require.Len(t, team.Slots, 4)
		for j, slot := range team.Slots {
			assert.Equal(t, j+1, slot.SlotNumber)
			assert.Nil(t, slot.Player)
			assert.False(t, slot.IsLocked)
		}
		assert.Nil(t, team.Captain)
		assert.False(t, team.IsComplete)
	}

	assert.True(t, layout.Settings.AllowSlotChange)
	assert.True(t, layout.Settings.AllowTeamSwitch)
	assert.True(t, layout.Settings.AutoAssignTeams)
	assert.False(t, layout.IsLocked)
}

func TestNewRoomLayoutCapacityInvariant(t *testing.T) {
	tests := []struct {
		name            string
		tournamentType  models.TournamentType
		maxParticipants int
		wantTeams       int
		wantSlots       int
	}{
		{"solo exact", models.TypeSolo, 10, 10, 1},
		{"duo uneven", models.TypeDuo, 7, 4, 2},
		{"squad exact", models.TypeSquad, 16, 4, 4},
		{"squad uneven", models.TypeSquad, 17, 5, 4},
		{"single participant", models.TypeSquad, 1, 1, 4},
		{"unknown type treated as squad", models.TournamentType("custom"), 9, 3, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := NewRoomLayout(1, tt.tournamentType, tt.maxParticipants)
			require.NoError(t, err)

			assert.Equal(t, tt.wantTeams, layout.MaxTeams)
			assert.Equal(t, tt.wantSlots, layout.SlotsPerTeam)
			assert.GreaterOrEqual(t, layout.MaxTeams*layout.SlotsPerTeam, tt.maxParticipants)
		})
	}
}

func TestNewRoomLayoutRejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewRoomLayout(1, models.TypeSquad, 0)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewRoomLayout(1, models.TypeSquad, -5)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestCloneLayoutIsDeep(t *testing.T) {
	layout, err := NewRoomLayout(1, models.TypeDuo, 4)
	require.NoError(t, err)

	assigner := NewAssigner()
	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 7, Nickname: "seven"}, 1, 1)
	require.NoError(t, err)

	clone := CloneLayout(layout)
	clone.Teams[0].Slots[0].Player.Nickname = "mutated"
	clone.Teams[0].Captain = nil
	clone.Settings.AllowSlotChange = false

	assert.Equal(t, "seven", layout.Teams[0].Slots[0].Player.Nickname)
	require.NotNil(t, layout.Teams[0].Captain)
	assert.Equal(t, 7, layout.Teams[0].Captain.ID)
	assert.True(t, layout.Settings.AllowSlotChange)
}

func TestFindPlayerSlot(t *testing.T) {
	layout, err := NewRoomLayout(1, models.TypeSquad, 8)
	require.NoError(t, err)

	assert.Nil(t, FindPlayerSlot(layout, 5))

	assigner := NewAssigner()
	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 5}, 2, 3)
	require.NoError(t, err)

	ref := FindPlayerSlot(layout, 5)
	require.NotNil(t, ref)
	assert.Equal(t, models.SlotRef{TeamNumber: 2, SlotNumber: 3}, *ref)
}

func TestAvailableSlotsOrderAndFiltering(t *testing.T) {
	layout, err := NewRoomLayout(1, models.TypeDuo, 4)
	require.NoError(t, err)

	assigner := NewAssigner()
	_, err = assigner.AssignPlayerToSlot(layout, models.PlayerRef{ID: 1}, 1, 1)
	require.NoError(t, err)
	require.NoError(t, assigner.LockSlot(layout, 2, 1, models.SystemActor, layout.UpdatedAt))

	slots := AvailableSlots(layout)
	assert.Equal(t, []models.SlotRef{
		{TeamNumber: 1, SlotNumber: 2},
		{TeamNumber: 2, SlotNumber: 2},
	}, slots)
}
