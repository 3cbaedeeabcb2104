package rooms

import "errors"

// Ошибки ядра комнаты. Сервисный слой оборачивает их в свою таксономию,
// хендлеры мапят на HTTP-статусы.
var (
	// NotFound: адресат мутации отсутствует в сетке.
	ErrTeamNotFound = errors.New("team not found in room layout")
	ErrSlotNotFound = errors.New("slot not found in team")

	// Conflict: правило занятости или блокировки. Повтор с той же целью бесполезен.
	ErrSlotOccupied    = errors.New("slot is already occupied")
	ErrSlotLocked      = errors.New("slot is locked")
	ErrPlayerNotInSlot = errors.New("player does not occupy the source slot")
	ErrEditingDisabled = errors.New("room editing is disabled")

	// Transient: проигрыш конкурентной мутации. Вызывающий должен повторить
	// попытку с небольшой задержкой.
	ErrSlotTemporarilyLocked = errors.New("slot is temporarily locked by a concurrent operation")

	// InvalidConfiguration: некорректные параметры создания или полная комната.
	ErrInvalidConfiguration = errors.New("invalid room configuration")
	ErrNoAvailableSlots     = errors.New("no available slots in room")
)
