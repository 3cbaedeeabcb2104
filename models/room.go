package models

import "time"

// PlayerRef — ссылка на игрока, занимающего слот. Денормализованный ник
// сохраняется на момент посадки, чтобы отрисовка комнаты не ходила за ним.
type PlayerRef struct {
	ID       int    `json:"id"`
	Nickname string `json:"nickname,omitempty"`
}

// Slot — одна позиция в команде. Игрок в слоте может отсутствовать.
// Блокировка слота не выселяет текущего владельца, она лишь запрещает
// будущие посадки в этот слот.
type Slot struct {
	SlotNumber int        `json:"slot_number"`
	Player     *PlayerRef `json:"player,omitempty"`
	IsLocked   bool       `json:"is_locked"`
	LockedBy   *int       `json:"locked_by,omitempty"`
	LockedAt   *time.Time `json:"locked_at,omitempty"`
}

// Occupied сообщает, занят ли слот.
func (s *Slot) Occupied() bool {
	return s.Player != nil
}

// Team — команда фиксированной вместимости внутри комнаты.
// TeamNumber неизменяем после создания.
type Team struct {
	TeamNumber int        `json:"team_number"`
	TeamName   string     `json:"team_name"`
	Slots      []Slot     `json:"slots"`
	Captain    *PlayerRef `json:"captain,omitempty"`
	IsComplete bool       `json:"is_complete"`
}

// RoomSettings — настройки самообслуживания комнаты.
type RoomSettings struct {
	AllowSlotChange    bool       `json:"allow_slot_change"`
	AllowTeamSwitch    bool       `json:"allow_team_switch"`
	AutoAssignTeams    bool       `json:"auto_assign_teams"`
	SlotChangeDeadline *time.Time `json:"slot_change_deadline,omitempty"`
}

// RoomLayout — полная сетка команд и слотов одного турнира.
// Уникальный ключ — TournamentID. Version инкрементируется при каждой
// зафиксированной мутации (для upsert в репозитории и отладки гонок).
type RoomLayout struct {
	TournamentID   int            `json:"tournament_id"`
	TournamentType TournamentType `json:"tournament_type"`
	SlotsPerTeam   int            `json:"slots_per_team"`
	MaxTeams       int            `json:"max_teams"`
	Teams          []Team         `json:"teams"`
	IsLocked       bool           `json:"is_locked"`
	LockedBy       *int           `json:"locked_by,omitempty"`
	LockedAt       *time.Time     `json:"locked_at,omitempty"`
	Settings       RoomSettings   `json:"settings"`
	Version        int            `json:"version"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// SlotRef — адрес слота в комнате: номер команды и номер слота внутри неё.
type SlotRef struct {
	TeamNumber int `json:"team_number"`
	SlotNumber int `json:"slot_number"`
}
