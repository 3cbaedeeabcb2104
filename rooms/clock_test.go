package rooms

import (
	"testing"
	"time"

	"github.com/Dosada05/room-system/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func editableRoom(t *testing.T) *models.RoomLayout {
	t.Helper()
	layout, err := NewRoomLayout(1, models.TypeSquad, 8)
	require.NoError(t, err)
	return layout
}

func TestEditingAllowed(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	lc := NewLifecycleClock(FixedClock{Moment: now})

	pastDeadline := now.Add(-time.Minute)
	futureDeadline := now.Add(time.Hour)

	tests := []struct {
		name    string
		mutate  func(layout *models.RoomLayout, tournament *models.Tournament)
		wantErr error
	}{
		{
			name:   "open room of upcoming tournament",
			mutate: func(layout *models.RoomLayout, tournament *models.Tournament) {},
		},
		{
			name: "live tournament still editable",
			mutate: func(layout *models.RoomLayout, tournament *models.Tournament) {
				tournament.Status = models.StatusLive
			},
		},
		{
			name: "completed tournament",
			mutate: func(layout *models.RoomLayout, tournament *models.Tournament) {
				tournament.Status = models.StatusCompleted
			},
			wantErr: ErrEditingDisabled,
		},
		{
			name: "room locked",
			mutate: func(layout *models.RoomLayout, tournament *models.Tournament) {
				layout.IsLocked = true
			},
			wantErr: ErrEditingDisabled,
		},
		{
			name: "slot change disabled",
			mutate: func(layout *models.RoomLayout, tournament *models.Tournament) {
				layout.Settings.AllowSlotChange = false
			},
			wantErr: ErrEditingDisabled,
		},
		{
			name: "deadline passed",
			mutate: func(layout *models.RoomLayout, tournament *models.Tournament) {
				layout.Settings.SlotChangeDeadline = &pastDeadline
			},
			wantErr: ErrEditingDisabled,
		},
		{
			name: "deadline exactly now",
			mutate: func(layout *models.RoomLayout, tournament *models.Tournament) {
				deadline := now
				layout.Settings.SlotChangeDeadline = &deadline
			},
			wantErr: ErrEditingDisabled,
		},
		{
			name: "deadline in the future",
			mutate: func(layout *models.RoomLayout, tournament *models.Tournament) {
				layout.Settings.SlotChangeDeadline = &futureDeadline
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout := editableRoom(t)
			tournament := &models.Tournament{
				ID:        1,
				Status:    models.StatusUpcoming,
				StartDate: now.Add(2 * time.Hour),
			}
			tt.mutate(layout, tournament)

			err := lc.EditingAllowed(layout, tournament)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAutoLockDue(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	lc := NewLifecycleClock(FixedClock{Moment: now})

	tests := []struct {
		name    string
		status  models.TournamentStatus
		startIn time.Duration
		wantDue bool
	}{
		{"start far away", models.StatusUpcoming, time.Hour, false},
		{"just outside the window", models.StatusUpcoming, AutoLockLead + time.Second, false},
		{"inside the window", models.StatusUpcoming, AutoLockLead - time.Second, true},
		{"exactly on the boundary", models.StatusUpcoming, AutoLockLead, true},
		{"already started", models.StatusLive, -time.Minute, true},
		{"completed tournament never due", models.StatusCompleted, -time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tournament := &models.Tournament{
				Status:    tt.status,
				StartDate: now.Add(tt.startIn),
			}
			assert.Equal(t, tt.wantDue, lc.AutoLockDue(tournament))
		})
	}
}

func TestHistorical(t *testing.T) {
	lc := NewLifecycleClock(NewClock())

	assert.False(t, lc.Historical(&models.Tournament{Status: models.StatusUpcoming}))
	assert.False(t, lc.Historical(&models.Tournament{Status: models.StatusLive}))
	assert.True(t, lc.Historical(&models.Tournament{Status: models.StatusCompleted}))
	assert.True(t, lc.Historical(&models.Tournament{Status: models.StatusCanceled}))
}
