package rooms

import (
	"sync"
	"time"
)

// DefaultReservationTTL покрывает окно фиксации снапшота в хранилище.
// Протухшая резервация самоочищается, поэтому упавший держатель не
// блокирует слот навсегда.
const DefaultReservationTTL = 3 * time.Second

type slotKey struct {
	TeamNumber int
	SlotNumber int
}

type slotHold struct {
	PlayerID  int
	ExpiresAt time.Time
}

// roomGuard — состояние сериализации одной комнаты: мьютекс мутаций и
// таблица короткоживущих резерваций слотов.
type roomGuard struct {
	mu    sync.Mutex
	holds map[slotKey]slotHold

	holdsMu sync.Mutex
}

// Guard сериализует мутации комнат по турнирам. Записи создаются лениво при
// первом обращении и выбрасываются, когда комната становится исторической.
// Межтурнирных блокировок нет: каждый турнир владеет только своим мьютексом.
type Guard struct {
	mu    sync.Mutex
	rooms map[int]*roomGuard
	now   func() time.Time
}

func NewGuard() *Guard {
	return &Guard{
		rooms: make(map[int]*roomGuard),
		now:   time.Now,
	}
}

func (g *Guard) room(tournamentID int) *roomGuard {
	g.mu.Lock()
	defer g.mu.Unlock()
	rg, ok := g.rooms[tournamentID]
	if !ok {
		rg = &roomGuard{holds: make(map[slotKey]slotHold)}
		g.rooms[tournamentID] = rg
	}
	return rg
}

// Acquire забирает мьютекс мутаций комнаты турнира и возвращает функцию
// освобождения. Все read-modify-write проходы над одной комнатой взаимно
// исключены; чтения ходят по зафиксированным снапшотам и мьютекс не берут.
func (g *Guard) Acquire(tournamentID int) func() {
	rg := g.room(tournamentID)
	rg.mu.Lock()
	return rg.mu.Unlock
}

// ReserveSlot ставит короткоживущую резервацию на слот назначения.
// Конкурирующая живая резервация другого игрока — транзиентный проигрыш
// гонки (ErrSlotTemporarilyLocked), вызывающий повторяет попытку после
// паузы. Повторная резервация тем же игроком продлевает срок.
func (g *Guard) ReserveSlot(tournamentID, teamNumber, slotNumber, playerID int, ttl time.Duration) error {
	rg := g.room(tournamentID)
	key := slotKey{TeamNumber: teamNumber, SlotNumber: slotNumber}
	now := g.now()

	rg.holdsMu.Lock()
	defer rg.holdsMu.Unlock()

	if hold, ok := rg.holds[key]; ok && hold.PlayerID != playerID && now.Before(hold.ExpiresAt) {
		return ErrSlotTemporarilyLocked
	}
	rg.holds[key] = slotHold{PlayerID: playerID, ExpiresAt: now.Add(ttl)}
	return nil
}

// ReleaseSlot снимает резервацию, если её всё ещё держит этот игрок.
func (g *Guard) ReleaseSlot(tournamentID, teamNumber, slotNumber, playerID int) {
	rg := g.room(tournamentID)
	key := slotKey{TeamNumber: teamNumber, SlotNumber: slotNumber}

	rg.holdsMu.Lock()
	defer rg.holdsMu.Unlock()

	if hold, ok := rg.holds[key]; ok && hold.PlayerID == playerID {
		delete(rg.holds, key)
	}
}

// Forget выбрасывает состояние охраны комнаты. Вызывается при переходе
// комнаты в исторический режим, чтобы реестр не рос бесконечно.
func (g *Guard) Forget(tournamentID int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, tournamentID)
}
