package rooms

import (
	"time"

	"github.com/Dosada05/room-system/models"
)

// Assigner — чистые алгоритмы над сеткой комнаты. Все методы мутируют
// переданную сетку (сервис всегда передаёт клон снапшота) и не трогают
// ничего внешнего, поэтому частичных отказов здесь не бывает: либо операция
// отклонена целиком, либо применена целиком.
type Assigner struct{}

func NewAssigner() *Assigner {
	return &Assigner{}
}

// AssignPlayerToSlot сажает игрока в конкретный слот.
// Перед посадкой игрок снимается со всех прочих слотов комнаты — игрок
// никогда не держит два слота, любая посадка неявно освобождает прежнюю.
// Если у команды не было капитана, первый севший становится капитаном.
func (a *Assigner) AssignPlayerToSlot(layout *models.RoomLayout, player models.PlayerRef, teamNumber, slotNumber int) (models.SlotRef, error) {
	team, slot, err := resolveSlot(layout, teamNumber, slotNumber)
	if err != nil {
		return models.SlotRef{}, err
	}
	if slot.Occupied() {
		return models.SlotRef{}, ErrSlotOccupied
	}
	if slot.IsLocked {
		return models.SlotRef{}, ErrSlotLocked
	}

	a.RemovePlayerFromAllSlots(layout, player.ID)

	slot.Player = &models.PlayerRef{ID: player.ID, Nickname: player.Nickname}
	recalcTeam(team)

	return models.SlotRef{TeamNumber: team.TeamNumber, SlotNumber: slot.SlotNumber}, nil
}

// AutoAssignPlayer — first-fit посадка: команды в порядке номеров, слоты в
// порядке номеров, берётся первый свободный и незаблокированный. Детерминизм
// важнее балансировки: ранние игроки кучкуются в командах с младшими номерами.
func (a *Assigner) AutoAssignPlayer(layout *models.RoomLayout, player models.PlayerRef) (models.SlotRef, error) {
	for ti := range layout.Teams {
		team := &layout.Teams[ti]
		for si := range team.Slots {
			slot := &team.Slots[si]
			if slot.Occupied() || slot.IsLocked {
				continue
			}
			return a.AssignPlayerToSlot(layout, player, team.TeamNumber, slot.SlotNumber)
		}
	}
	return models.SlotRef{}, ErrNoAvailableSlots
}

// RemovePlayerFromAllSlots освобождает все слоты, занятые игроком (инвариант
// допускает максимум один). Возвращает адрес освобождённого слота или nil,
// если игрок не сидел нигде — повторный вызов является no-op, не ошибкой.
// Если ушедший был капитаном, команда перевыбирает капитана из оставшихся
// по возрастанию номера слота.
func (a *Assigner) RemovePlayerFromAllSlots(layout *models.RoomLayout, playerID int) *models.SlotRef {
	var vacated *models.SlotRef
	for ti := range layout.Teams {
		team := &layout.Teams[ti]
		touched := false
		for si := range team.Slots {
			slot := &team.Slots[si]
			if slot.Player != nil && slot.Player.ID == playerID {
				slot.Player = nil
				touched = true
				if vacated == nil {
					vacated = &models.SlotRef{TeamNumber: team.TeamNumber, SlotNumber: slot.SlotNumber}
				}
			}
		}
		if touched {
			recalcTeam(team)
		}
	}
	return vacated
}

// MovePlayer атомарно переносит игрока из (fromTeam, fromSlot) в (toTeam, toSlot).
// Источник проверяется на фактическую посадку игрока, назначение — на
// существование, незанятость и незаблокированность. Капитанство и
// завершённость перевыводятся у обеих команд.
func (a *Assigner) MovePlayer(layout *models.RoomLayout, playerID int, from, to models.SlotRef) (models.SlotRef, error) {
	fromTeam, fromSlot, err := resolveSlot(layout, from.TeamNumber, from.SlotNumber)
	if err != nil {
		return models.SlotRef{}, err
	}
	if fromSlot.Player == nil || fromSlot.Player.ID != playerID {
		return models.SlotRef{}, ErrPlayerNotInSlot
	}

	toTeam, toSlot, err := resolveSlot(layout, to.TeamNumber, to.SlotNumber)
	if err != nil {
		return models.SlotRef{}, err
	}
	if toSlot.Occupied() {
		return models.SlotRef{}, ErrSlotOccupied
	}
	if toSlot.IsLocked {
		return models.SlotRef{}, ErrSlotLocked
	}

	toSlot.Player = fromSlot.Player
	fromSlot.Player = nil
	recalcTeam(fromTeam)
	if toTeam != fromTeam {
		recalcTeam(toTeam)
	}

	return models.SlotRef{TeamNumber: toTeam.TeamNumber, SlotNumber: toSlot.SlotNumber}, nil
}

// LockSlot блокирует слот для будущих посадок. Текущий владелец, если есть,
// не выселяется.
func (a *Assigner) LockSlot(layout *models.RoomLayout, teamNumber, slotNumber int, actor models.Actor, now time.Time) error {
	_, slot, err := resolveSlot(layout, teamNumber, slotNumber)
	if err != nil {
		return err
	}
	slot.IsLocked = true
	actorID := actor.UserID
	slot.LockedBy = &actorID
	slot.LockedAt = &now
	return nil
}

// UnlockSlot снимает блокировку слота.
func (a *Assigner) UnlockSlot(layout *models.RoomLayout, teamNumber, slotNumber int) error {
	_, slot, err := resolveSlot(layout, teamNumber, slotNumber)
	if err != nil {
		return err
	}
	slot.IsLocked = false
	slot.LockedBy = nil
	slot.LockedAt = nil
	return nil
}

// ToggleRoomLock переключает блокировку комнаты целиком. Блокировка комнаты
// всегда выключает самостоятельную смену слотов, разблокировка — включает
// обратно: бинарный замок комнаты намеренно связан с флагом allow_slot_change.
func (a *Assigner) ToggleRoomLock(layout *models.RoomLayout, lock bool, actor models.Actor, now time.Time) {
	layout.IsLocked = lock
	if lock {
		actorID := actor.UserID
		layout.LockedBy = &actorID
		layout.LockedAt = &now
		layout.Settings.AllowSlotChange = false
	} else {
		layout.LockedBy = nil
		layout.LockedAt = nil
		layout.Settings.AllowSlotChange = true
	}
}
