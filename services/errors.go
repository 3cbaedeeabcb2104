package services

import (
	"errors"

	"github.com/Dosada05/room-system/rooms"
)

// Общие ошибки сервисного слоя. Ошибки ядра комнаты пробрасываются как есть,
// чтобы хендлеры мапили одну таксономию.
var (
	// Ресурс не найден — терминально, повтор бесполезен.
	ErrNotFound            = errors.New("requested resource not found")
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrRoomNotFound        = errors.New("tournament room not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrTeamNotFound        = rooms.ErrTeamNotFound
	ErrSlotNotFound        = rooms.ErrSlotNotFound

	// Конфликты политики — терминально, нужна другая цель или смена состояния.
	ErrSlotOccupied       = rooms.ErrSlotOccupied
	ErrSlotLocked         = rooms.ErrSlotLocked
	ErrPlayerNotInSlot    = rooms.ErrPlayerNotInSlot
	ErrEditingDisabled    = rooms.ErrEditingDisabled
	ErrSameSlotMove       = errors.New("destination slot is the same as the current slot")
	ErrTeamSwitchDisabled = errors.New("switching teams is disabled for this room")
	ErrAutoAssignDisabled = errors.New("automatic team assignment is disabled for this room")
	ErrSlotNumberConflict = errors.New("participant slot number conflict")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")
	ErrInvalidLockAction  = errors.New("invalid room lock action, expected 'lock' or 'unlock'")

	// Транзиентный проигрыш конкурентной мутации — вызывающий повторяет
	// попытку с бэкоффом ограниченное число раз.
	ErrSlotTemporarilyLocked = rooms.ErrSlotTemporarilyLocked

	// Некорректная конфигурация — терминально, отдаётся вызывающему/админу.
	ErrInvalidConfiguration = rooms.ErrInvalidConfiguration
	ErrNoAvailableSlots     = rooms.ErrNoAvailableSlots
)
