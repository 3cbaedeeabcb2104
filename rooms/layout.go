package rooms

import (
	"fmt"
	"time"

	"github.com/Dosada05/room-system/models"
)

// NewRoomLayout строит пустую сетку комнаты для турнира.
// slotsPerTeam выводится из типа турнира (solo:1, duo:2, squad:4, неизвестный
// тип трактуется как squad), maxTeams = ceil(maxParticipants / slotsPerTeam).
// Инвариант вместимости: maxTeams * slotsPerTeam >= maxParticipants.
func NewRoomLayout(tournamentID int, tournamentType models.TournamentType, maxParticipants int) (*models.RoomLayout, error) {
	if maxParticipants <= 0 {
		return nil, fmt.Errorf("%w: max participants must be positive, got %d", ErrInvalidConfiguration, maxParticipants)
	}

	slotsPerTeam := tournamentType.SlotsPerTeam()
	maxTeams := (maxParticipants + slotsPerTeam - 1) / slotsPerTeam

	teams := make([]models.Team, 0, maxTeams)
	for teamNumber := 1; teamNumber <= maxTeams; teamNumber++ {
		slots := make([]models.Slot, 0, slotsPerTeam)
		for slotNumber := 1; slotNumber <= slotsPerTeam; slotNumber++ {
			slots = append(slots, models.Slot{SlotNumber: slotNumber})
		}
		teams = append(teams, models.Team{
			TeamNumber: teamNumber,
			TeamName:   fmt.Sprintf("Team %d", teamNumber),
			Slots:      slots,
		})
	}

	return &models.RoomLayout{
		TournamentID:   tournamentID,
		TournamentType: tournamentType,
		SlotsPerTeam:   slotsPerTeam,
		MaxTeams:       maxTeams,
		Teams:          teams,
		Settings: models.RoomSettings{
			AllowSlotChange: true,
			AllowTeamSwitch: true,
			AutoAssignTeams: true,
		},
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// CloneLayout делает глубокую копию сетки. Мутации ядра всегда применяются
// к копии: зафиксированный снапшот никогда не меняется на месте, читатели
// видят либо старое, либо новое состояние целиком.
func CloneLayout(layout *models.RoomLayout) *models.RoomLayout {
	if layout == nil {
		return nil
	}
	cp := *layout
	cp.LockedBy = cloneIntPtr(layout.LockedBy)
	cp.LockedAt = cloneTimePtr(layout.LockedAt)
	cp.Settings.SlotChangeDeadline = cloneTimePtr(layout.Settings.SlotChangeDeadline)
	cp.Teams = make([]models.Team, len(layout.Teams))
	for i, team := range layout.Teams {
		teamCp := team
		teamCp.Captain = clonePlayerRef(team.Captain)
		teamCp.Slots = make([]models.Slot, len(team.Slots))
		for j, slot := range team.Slots {
			slotCp := slot
			slotCp.Player = clonePlayerRef(slot.Player)
			slotCp.LockedBy = cloneIntPtr(slot.LockedBy)
			slotCp.LockedAt = cloneTimePtr(slot.LockedAt)
			teamCp.Slots[j] = slotCp
		}
		cp.Teams[i] = teamCp
	}
	return &cp
}

// resolveSlot переводит адрес (teamNumber, slotNumber) в указатели на команду
// и слот. Номера резолвятся один раз на границе операции, дальше ядро
// работает с индексами.
func resolveSlot(layout *models.RoomLayout, teamNumber, slotNumber int) (*models.Team, *models.Slot, error) {
	team, err := resolveTeam(layout, teamNumber)
	if err != nil {
		return nil, nil, err
	}
	if slotNumber < 1 || slotNumber > len(team.Slots) {
		return nil, nil, fmt.Errorf("%w: team %d has no slot %d", ErrSlotNotFound, teamNumber, slotNumber)
	}
	return team, &team.Slots[slotNumber-1], nil
}

func resolveTeam(layout *models.RoomLayout, teamNumber int) (*models.Team, error) {
	if teamNumber < 1 || teamNumber > len(layout.Teams) {
		return nil, fmt.Errorf("%w: room has no team %d", ErrTeamNotFound, teamNumber)
	}
	// Команды создаются по порядку номеров, поэтому номер == индекс+1.
	return &layout.Teams[teamNumber-1], nil
}

// FindPlayerSlot возвращает адрес слота, который занимает игрок, или nil.
// Инвариант единственной посадки гарантирует не более одного результата.
func FindPlayerSlot(layout *models.RoomLayout, playerID int) *models.SlotRef {
	for ti := range layout.Teams {
		for si := range layout.Teams[ti].Slots {
			slot := &layout.Teams[ti].Slots[si]
			if slot.Player != nil && slot.Player.ID == playerID {
				return &models.SlotRef{
					TeamNumber: layout.Teams[ti].TeamNumber,
					SlotNumber: slot.SlotNumber,
				}
			}
		}
	}
	return nil
}

// AvailableSlots возвращает адреса всех свободных и незаблокированных слотов
// в порядке (teamNumber, slotNumber) — тот же порядок, что у first-fit
// автопосадки.
func AvailableSlots(layout *models.RoomLayout) []models.SlotRef {
	refs := make([]models.SlotRef, 0)
	for ti := range layout.Teams {
		for si := range layout.Teams[ti].Slots {
			slot := &layout.Teams[ti].Slots[si]
			if !slot.Occupied() && !slot.IsLocked {
				refs = append(refs, models.SlotRef{
					TeamNumber: layout.Teams[ti].TeamNumber,
					SlotNumber: slot.SlotNumber,
				})
			}
		}
	}
	return refs
}

// recalcTeam перевыводит производное состояние команды после мутации её слотов:
// валидность капитана (капитан обязан занимать слот своей команды; при его
// уходе выбирается первый оставшийся по возрастанию номера слота) и флаг
// is_complete.
func recalcTeam(team *models.Team) {
	captainStillSeated := false
	var firstOccupant *models.PlayerRef
	complete := true

	for i := range team.Slots {
		player := team.Slots[i].Player
		if player == nil {
			complete = false
			continue
		}
		if firstOccupant == nil {
			firstOccupant = player
		}
		if team.Captain != nil && team.Captain.ID == player.ID {
			captainStillSeated = true
		}
	}

	if !captainStillSeated {
		team.Captain = clonePlayerRef(firstOccupant)
	}
	team.IsComplete = complete
}

func clonePlayerRef(p *models.PlayerRef) *models.PlayerRef {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func cloneIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
