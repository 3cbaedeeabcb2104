package rooms

import (
	"time"

	"github.com/Dosada05/room-system/models"
	"github.com/google/uuid"
)

// EventKind — вид исходящего события комнаты.
type EventKind string

const (
	EventPlayerAssigned  EventKind = "PLAYER_ASSIGNED"
	EventPlayerMoved     EventKind = "PLAYER_MOVED"
	EventPlayerRemoved   EventKind = "PLAYER_REMOVED"
	EventSlotLocked      EventKind = "SLOT_LOCKED"
	EventSlotUnlocked    EventKind = "SLOT_UNLOCKED"
	EventRoomLocked      EventKind = "ROOM_LOCKED"
	EventRoomUnlocked    EventKind = "ROOM_UNLOCKED"
	EventSettingsChanged EventKind = "SETTINGS_CHANGED"
)

// Event — контракт исходящего события. Каждая успешная мутация комнаты
// порождает ровно одно событие со свежим снапшотом сетки. Доставка
// at-least-once и best-effort: ядро не зависит от её успеха.
type Event struct {
	ID           string             `json:"id"`
	TournamentID int                `json:"tournament_id"`
	Kind         EventKind          `json:"kind"`
	Actor        models.Actor       `json:"actor"`
	BeforeSlot   *models.SlotRef    `json:"before_slot,omitempty"`
	AfterSlot    *models.SlotRef    `json:"after_slot,omitempty"`
	Snapshot     *models.RoomLayout `json:"snapshot,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// NewEvent собирает событие с уникальным ID и временной меткой.
func NewEvent(tournamentID int, kind EventKind, actor models.Actor, snapshot *models.RoomLayout) Event {
	return Event{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Kind:         kind,
		Actor:        actor,
		Snapshot:     snapshot,
		CreatedAt:    time.Now().UTC(),
	}
}

// Projector переводит зафиксированные мутации в события для внешней
// realtime-доставки. Вызывается ПОСЛЕ коммита: отказ доставки никогда не
// откатывает посадку.
type Projector interface {
	Project(event Event)
}

// HubProjector шлёт события в комнату WebSocket-хаба tournament_<id>,
// заворачивая их в тот же конверт, что и остальные сообщения хаба.
type HubProjector struct {
	hub *Hub
}

func NewHubProjector(hub *Hub) *HubProjector {
	return &HubProjector{hub: hub}
}

func (p *HubProjector) Project(event Event) {
	p.hub.BroadcastToRoom(RoomID(event.TournamentID), WebSocketMessage{
		Type:    string(event.Kind),
		Payload: event,
		RoomID:  RoomID(event.TournamentID),
	})
}
