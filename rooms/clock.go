package rooms

import (
	"time"

	"github.com/Dosada05/room-system/models"
)

// AutoLockLead — за сколько до старта турнира комната блокируется
// автоматически, если админ не сделал этого раньше.
const AutoLockLead = 10 * time.Minute

// Clock отдаёт текущее время. Вынесен в интерфейс, чтобы дедлайны
// проверялись в тестах фиксированным временем.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// NewClock возвращает часы на системном времени (UTC).
func NewClock() Clock { return realClock{} }

// FixedClock — часы для тестов, всегда показывают заданный момент.
type FixedClock struct {
	Moment time.Time
}

func (c FixedClock) Now() time.Time { return c.Moment }

// LifecycleClock — дедлайновая машина состояний комнаты. Сама ничего не
// планирует: внешний планировщик спрашивает AutoLockDue, сервис перед каждой
// self-service мутацией спрашивает EditingAllowed.
type LifecycleClock struct {
	clock Clock
}

func NewLifecycleClock(clock Clock) *LifecycleClock {
	return &LifecycleClock{clock: clock}
}

// EditingAllowed — общекомнатный гейт, проверяемый ДО любых слотовых проверок.
// Самостоятельная смена слотов запрещена, если комната заблокирована,
// выключен allow_slot_change, прошёл slot_change_deadline либо турнир вышел
// из изменяемых статусов. Порядок проверок фиксирован: статус турнира,
// замок комнаты, флаг настроек, дедлайн.
func (lc *LifecycleClock) EditingAllowed(layout *models.RoomLayout, tournament *models.Tournament) error {
	if !tournament.Status.IsRoomEditable() {
		return ErrEditingDisabled
	}
	if layout.IsLocked {
		return ErrEditingDisabled
	}
	if !layout.Settings.AllowSlotChange {
		return ErrEditingDisabled
	}
	if deadline := layout.Settings.SlotChangeDeadline; deadline != nil && !lc.clock.Now().Before(*deadline) {
		return ErrEditingDisabled
	}
	return nil
}

// AutoLockDue сообщает, пора ли заблокировать комнату по расписанию:
// текущий момент внутри окна [start-10min, start) и турнир ещё изменяем.
func (lc *LifecycleClock) AutoLockDue(tournament *models.Tournament) bool {
	if !tournament.Status.IsRoomEditable() {
		return false
	}
	now := lc.clock.Now()
	return !now.Before(tournament.StartDate.Add(-AutoLockLead))
}

// Historical сообщает, стала ли комната турнира исторической (read-only).
func (lc *LifecycleClock) Historical(tournament *models.Tournament) bool {
	return !tournament.Status.IsRoomEditable()
}
