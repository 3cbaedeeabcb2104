package models

import "time"

// ParticipantStatus — статус записи участника турнира.
type ParticipantStatus string

const (
	ParticipantActive   ParticipantStatus = "active"
	ParticipantRemoved  ParticipantStatus = "removed"
	ParticipantRefunded ParticipantStatus = "refunded"
)

// Participant — запись участника на уровне турнира. SlotNumber — плоская
// административная нумерация (по умолчанию 0 = не назначен). Она живёт
// отдельно от структурированной комнаты (RoomLayout) и меняется только
// обменом номеров, поэтому уникальность среди активных участников
// сохраняется по построению.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	UserID       int               `json:"user_id" db:"user_id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	SlotNumber   int               `json:"slot_number" db:"slot_number"`
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}
