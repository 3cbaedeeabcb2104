package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusLive      TournamentStatus = "live"
	StatusCompleted TournamentStatus = "completed"
	StatusCanceled  TournamentStatus = "canceled"
)

// IsRoomEditable сообщает, находится ли турнир в фазе, когда комната ещё изменяема.
// После выхода из {upcoming, live} комната становится исторической (read-only).
func (s TournamentStatus) IsRoomEditable() bool {
	return s == StatusUpcoming || s == StatusLive
}

// TournamentType определяет размер команды в комнате турнира.
type TournamentType string

const (
	TypeSolo  TournamentType = "solo"
	TypeDuo   TournamentType = "duo"
	TypeSquad TournamentType = "squad"
)

// SlotsPerTeam возвращает количество слотов на команду для данного типа.
// Неизвестные типы трактуются как squad (4 слота).
func (t TournamentType) SlotsPerTeam() int {
	switch t {
	case TypeSolo:
		return 1
	case TypeDuo:
		return 2
	case TypeSquad:
		return 4
	default:
		return 4
	}
}

// Tournament представляет турнир. Сервису комнат нужна только урезанная
// проекция: тип, вместимость, дата старта и статус.
type Tournament struct {
	ID              int              `json:"id" db:"id"`
	Name            string           `json:"name" db:"name"`
	Type            TournamentType   `json:"type" db:"type"`
	Status          TournamentStatus `json:"status" db:"status"`
	MaxParticipants int              `json:"max_participants" db:"max_participants"`
	StartDate       time.Time        `json:"start_date" db:"start_date"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
}
