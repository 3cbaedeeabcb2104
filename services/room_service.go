package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Dosada05/room-system/models"
	"github.com/Dosada05/room-system/repositories"
	"github.com/Dosada05/room-system/rooms"
	"github.com/Dosada05/room-system/storage"
	"golang.org/x/sync/singleflight"
)

// RoomService — оркестрация всех мутаций комнаты: сериализация через Guard,
// чистые алгоритмы Assigner над клоном снапшота, фиксация в репозитории и
// публикация события ПОСЛЕ коммита. Любой отказ доставки события не
// откатывает зафиксированную мутацию.
type RoomService struct {
	roomRepo       repositories.RoomRepository
	tournamentRepo repositories.TournamentRepository
	guard          *rooms.Guard
	assigner       *rooms.Assigner
	clock          rooms.Clock
	lifecycle      *rooms.LifecycleClock
	projector      rooms.Projector
	archiver       storage.Archiver
	logger         *slog.Logger

	createGroup    singleflight.Group
	reservationTTL time.Duration
}

func NewRoomService(
	roomRepo repositories.RoomRepository,
	tournamentRepo repositories.TournamentRepository,
	guard *rooms.Guard,
	clock rooms.Clock,
	projector rooms.Projector,
	archiver storage.Archiver,
	logger *slog.Logger,
) *RoomService {
	return &RoomService{
		roomRepo:       roomRepo,
		tournamentRepo: tournamentRepo,
		guard:          guard,
		assigner:       rooms.NewAssigner(),
		clock:          clock,
		lifecycle:      rooms.NewLifecycleClock(clock),
		projector:      projector,
		archiver:       archiver,
		logger:         logger,
		reservationTTL: rooms.DefaultReservationTTL,
	}
}

// MoveInput — запрос на перенос (или административную посадку) игрока.
type MoveInput struct {
	PlayerID int    `json:"player_id"`
	Nickname string `json:"nickname,omitempty"`
	ToTeam   int    `json:"to_team"`
	ToSlot   int    `json:"to_slot"`
}

// UpdateRoomSettingsInput — частичное обновление настроек комнаты.
type UpdateRoomSettingsInput struct {
	AllowSlotChange         *bool      `json:"allow_slot_change,omitempty"`
	AllowTeamSwitch         *bool      `json:"allow_team_switch,omitempty"`
	AutoAssignTeams         *bool      `json:"auto_assign_teams,omitempty"`
	SlotChangeDeadline      *time.Time `json:"slot_change_deadline,omitempty"`
	ClearSlotChangeDeadline bool       `json:"clear_slot_change_deadline,omitempty"`
}

// CreateRoom явно создаёт комнату турнира (обычно она создаётся лениво при
// первом обращении). Повторный вызов возвращает существующую сетку.
func (s *RoomService) CreateRoom(ctx context.Context, tournamentID int) (*models.RoomLayout, error) {
	return s.ensureRoom(ctx, tournamentID)
}

// GetRoom возвращает сетку комнаты, лениво создавая её при первом обращении.
// Чтение идёт по зафиксированному снапшоту и не конкурирует с мутациями.
func (s *RoomService) GetRoom(ctx context.Context, tournamentID int) (*models.RoomLayout, error) {
	layout, err := s.roomRepo.GetByTournamentID(ctx, tournamentID)
	if err == nil {
		return layout, nil
	}
	if !errors.Is(err, repositories.ErrRoomNotFound) {
		return nil, fmt.Errorf("failed to load room layout: %w", err)
	}
	return s.ensureRoom(ctx, tournamentID)
}

// AvailableSlots возвращает свободные и незаблокированные слоты комнаты
// в порядке first-fit.
func (s *RoomService) AvailableSlots(ctx context.Context, tournamentID int) ([]models.SlotRef, error) {
	layout, err := s.GetRoom(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return rooms.AvailableSlots(layout), nil
}

// AutoAssign сажает игрока в первый свободный незаблокированный слот.
// Вызывается платёжным/join-флоу после успешной оплаты. Если игрок уже
// сидит в комнате, возвращается его текущий слот — повторный вызов
// идемпотентен, а не ошибка.
func (s *RoomService) AutoAssign(ctx context.Context, tournamentID int, player models.PlayerRef) (*models.RoomLayout, *models.SlotRef, error) {
	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}

	unlock := s.guard.Acquire(tournamentID)
	defer unlock()

	layout, err := s.loadOrCreateLocked(ctx, tournament)
	if err != nil {
		return nil, nil, err
	}

	if current := rooms.FindPlayerSlot(layout, player.ID); current != nil {
		return layout, current, nil
	}

	if !tournament.Status.IsRoomEditable() || layout.IsLocked {
		return nil, nil, ErrEditingDisabled
	}
	if !layout.Settings.AutoAssignTeams {
		return nil, nil, ErrAutoAssignDisabled
	}

	next := rooms.CloneLayout(layout)
	placed, err := s.assigner.AutoAssignPlayer(next, player)
	if err != nil {
		return nil, nil, err
	}

	if err := s.guard.ReserveSlot(tournamentID, placed.TeamNumber, placed.SlotNumber, player.ID, s.reservationTTL); err != nil {
		return nil, nil, err
	}
	defer s.guard.ReleaseSlot(tournamentID, placed.TeamNumber, placed.SlotNumber, player.ID)

	if err := s.commit(ctx, next); err != nil {
		return nil, nil, err
	}

	event := rooms.NewEvent(tournamentID, rooms.EventPlayerAssigned, models.Actor{UserID: player.ID, Role: models.RolePlayer}, rooms.CloneLayout(next))
	event.AfterSlot = &placed
	s.projector.Project(event)

	return next, &placed, nil
}

// Move переносит игрока в указанный слот. Игрок двигает только себя, админ —
// кого угодно. Общекомнатный гейт (замок комнаты, allow_slot_change, дедлайн,
// статус турнира) проверяется ДО слотовых проверок и обходится админом —
// кроме статуса: историческую комнату не правит никто. Админ может посадить
// ещё не сидящего игрока; для самого игрока это PlayerNotInSlot.
func (s *RoomService) Move(ctx context.Context, tournamentID int, input MoveInput, actor models.Actor) (*models.RoomLayout, *models.SlotRef, error) {
	if !actor.IsAdmin() && actor.UserID != input.PlayerID {
		return nil, nil, ErrForbiddenOperation
	}

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	if !tournament.Status.IsRoomEditable() {
		return nil, nil, ErrEditingDisabled
	}

	// Транзиентная резервация цели до взятия мьютекса: из двух конкурентов
	// за один слот проигравший получает retryable-отказ сразу, не дожидаясь
	// очереди мутаций.
	if err := s.guard.ReserveSlot(tournamentID, input.ToTeam, input.ToSlot, input.PlayerID, s.reservationTTL); err != nil {
		return nil, nil, err
	}
	defer s.guard.ReleaseSlot(tournamentID, input.ToTeam, input.ToSlot, input.PlayerID)

	unlock := s.guard.Acquire(tournamentID)
	defer unlock()

	layout, err := s.loadOrCreateLocked(ctx, tournament)
	if err != nil {
		return nil, nil, err
	}

	from := rooms.FindPlayerSlot(layout, input.PlayerID)
	to := models.SlotRef{TeamNumber: input.ToTeam, SlotNumber: input.ToSlot}

	if !actor.IsAdmin() {
		if err := s.lifecycle.EditingAllowed(layout, tournament); err != nil {
			return nil, nil, err
		}
		if from == nil {
			return nil, nil, ErrPlayerNotInSlot
		}
		if from.TeamNumber != to.TeamNumber && !layout.Settings.AllowTeamSwitch {
			return nil, nil, ErrTeamSwitchDisabled
		}
	}

	if from != nil && *from == to {
		return nil, nil, ErrSameSlotMove
	}

	next := rooms.CloneLayout(layout)
	player := models.PlayerRef{ID: input.PlayerID, Nickname: input.Nickname}

	var placed models.SlotRef
	kind := rooms.EventPlayerMoved
	if from == nil {
		placed, err = s.assigner.AssignPlayerToSlot(next, player, to.TeamNumber, to.SlotNumber)
		kind = rooms.EventPlayerAssigned
	} else {
		placed, err = s.assigner.MovePlayer(next, input.PlayerID, *from, to)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, nil, err
	}

	event := rooms.NewEvent(tournamentID, kind, actor, rooms.CloneLayout(next))
	event.BeforeSlot = from
	event.AfterSlot = &placed
	s.projector.Project(event)

	return next, &placed, nil
}

// LockSlot блокирует слот для будущих посадок (текущий владелец остаётся).
func (s *RoomService) LockSlot(ctx context.Context, tournamentID, teamNumber, slotNumber int, actor models.Actor) (*models.RoomLayout, error) {
	return s.toggleSlotLock(ctx, tournamentID, teamNumber, slotNumber, actor, true)
}

// UnlockSlot снимает блокировку слота.
func (s *RoomService) UnlockSlot(ctx context.Context, tournamentID, teamNumber, slotNumber int, actor models.Actor) (*models.RoomLayout, error) {
	return s.toggleSlotLock(ctx, tournamentID, teamNumber, slotNumber, actor, false)
}

func (s *RoomService) toggleSlotLock(ctx context.Context, tournamentID, teamNumber, slotNumber int, actor models.Actor, lock bool) (*models.RoomLayout, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.Status.IsRoomEditable() {
		return nil, ErrEditingDisabled
	}

	unlock := s.guard.Acquire(tournamentID)
	defer unlock()

	layout, err := s.loadOrCreateLocked(ctx, tournament)
	if err != nil {
		return nil, err
	}

	next := rooms.CloneLayout(layout)
	if lock {
		err = s.assigner.LockSlot(next, teamNumber, slotNumber, actor, s.clock.Now())
	} else {
		err = s.assigner.UnlockSlot(next, teamNumber, slotNumber)
	}
	if err != nil {
		return nil, err
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	kind := rooms.EventSlotLocked
	if !lock {
		kind = rooms.EventSlotUnlocked
	}
	event := rooms.NewEvent(tournamentID, kind, actor, rooms.CloneLayout(next))
	event.AfterSlot = &models.SlotRef{TeamNumber: teamNumber, SlotNumber: slotNumber}
	s.projector.Project(event)

	return next, nil
}

// ToggleRoomLock ставит или снимает общекомнатный замок. Блокировка всегда
// выключает самостоятельную смену слотов, разблокировка — включает обратно.
func (s *RoomService) ToggleRoomLock(ctx context.Context, tournamentID int, action string, actor models.Actor) (*models.RoomLayout, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	var lock bool
	switch action {
	case "lock":
		lock = true
	case "unlock":
		lock = false
	default:
		return nil, ErrInvalidLockAction
	}

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.Status.IsRoomEditable() {
		return nil, ErrEditingDisabled
	}

	unlock := s.guard.Acquire(tournamentID)
	defer unlock()

	layout, err := s.loadOrCreateLocked(ctx, tournament)
	if err != nil {
		return nil, err
	}

	next := rooms.CloneLayout(layout)
	s.assigner.ToggleRoomLock(next, lock, actor, s.clock.Now())

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	kind := rooms.EventRoomLocked
	if !lock {
		kind = rooms.EventRoomUnlocked
	}
	s.projector.Project(rooms.NewEvent(tournamentID, kind, actor, rooms.CloneLayout(next)))

	return next, nil
}

// RemovePlayer снимает игрока со всех слотов комнаты. Повторный вызов для
// уже снятого игрока — no-op (возвращается текущая сетка, события нет).
func (s *RoomService) RemovePlayer(ctx context.Context, tournamentID, playerID int, actor models.Actor) (*models.RoomLayout, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.Status.IsRoomEditable() {
		return nil, ErrEditingDisabled
	}

	unlock := s.guard.Acquire(tournamentID)
	defer unlock()

	layout, err := s.loadOrCreateLocked(ctx, tournament)
	if err != nil {
		return nil, err
	}

	next := rooms.CloneLayout(layout)
	vacated := s.assigner.RemovePlayerFromAllSlots(next, playerID)
	if vacated == nil {
		return layout, nil
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	event := rooms.NewEvent(tournamentID, rooms.EventPlayerRemoved, actor, rooms.CloneLayout(next))
	event.BeforeSlot = vacated
	s.projector.Project(event)

	return next, nil
}

// UpdateSettings частично обновляет настройки комнаты.
func (s *RoomService) UpdateSettings(ctx context.Context, tournamentID int, input UpdateRoomSettingsInput, actor models.Actor) (*models.RoomLayout, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbiddenOperation
	}

	tournament, err := s.getTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if !tournament.Status.IsRoomEditable() {
		return nil, ErrEditingDisabled
	}

	unlock := s.guard.Acquire(tournamentID)
	defer unlock()

	layout, err := s.loadOrCreateLocked(ctx, tournament)
	if err != nil {
		return nil, err
	}

	next := rooms.CloneLayout(layout)
	if input.AllowSlotChange != nil {
		next.Settings.AllowSlotChange = *input.AllowSlotChange
	}
	if input.AllowTeamSwitch != nil {
		next.Settings.AllowTeamSwitch = *input.AllowTeamSwitch
	}
	if input.AutoAssignTeams != nil {
		next.Settings.AutoAssignTeams = *input.AutoAssignTeams
	}
	if input.ClearSlotChangeDeadline {
		next.Settings.SlotChangeDeadline = nil
	} else if input.SlotChangeDeadline != nil {
		deadline := input.SlotChangeDeadline.UTC()
		next.Settings.SlotChangeDeadline = &deadline
	}

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}

	s.projector.Project(rooms.NewEvent(tournamentID, rooms.EventSettingsChanged, actor, rooms.CloneLayout(next)))

	return next, nil
}

// AutoLockDueRooms — вход планировщика: блокирует комнаты турниров, до старта
// которых осталось меньше десяти минут. Ошибки отдельных комнат логируются
// и не прерывают обход.
func (s *RoomService) AutoLockDueRooms(ctx context.Context) error {
	tournaments, err := s.listRoomTournaments(ctx)
	if err != nil {
		return err
	}

	for _, tournament := range tournaments {
		if !s.lifecycle.AutoLockDue(tournament) {
			continue
		}
		if err := s.autoLockRoom(ctx, tournament); err != nil {
			s.logger.Error("failed to auto-lock room",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
		}
	}
	return nil
}

func (s *RoomService) autoLockRoom(ctx context.Context, tournament *models.Tournament) error {
	unlock := s.guard.Acquire(tournament.ID)
	defer unlock()

	layout, err := s.roomRepo.GetByTournamentID(ctx, tournament.ID)
	if err != nil {
		return err
	}
	if layout.IsLocked {
		return nil
	}

	next := rooms.CloneLayout(layout)
	s.assigner.ToggleRoomLock(next, true, models.SystemActor, s.clock.Now())

	if err := s.commit(ctx, next); err != nil {
		return err
	}

	s.logger.Info("room auto-locked before start", slog.Int("tournament_id", tournament.ID))
	s.projector.Project(rooms.NewEvent(tournament.ID, rooms.EventRoomLocked, models.SystemActor, rooms.CloneLayout(next)))
	return nil
}

// ArchiveFinishedRooms выгружает финальные снапшоты комнат завершившихся
// турниров в объектное хранилище и выбрасывает их из оперативного контура:
// строку комнаты и запись охраны. Неудачная выгрузка переносится на
// следующий проход.
func (s *RoomService) ArchiveFinishedRooms(ctx context.Context) error {
	tournaments, err := s.listRoomTournaments(ctx)
	if err != nil {
		return err
	}

	for _, tournament := range tournaments {
		if !s.lifecycle.Historical(tournament) {
			continue
		}
		if err := s.archiveRoom(ctx, tournament.ID); err != nil {
			s.logger.Error("failed to archive room",
				slog.Int("tournament_id", tournament.ID), slog.Any("error", err))
		}
	}
	return nil
}

func (s *RoomService) archiveRoom(ctx context.Context, tournamentID int) error {
	// Архивация — такая же мутация комнаты, как и остальные: без мьютекса
	// параллельный перенос мог бы воскресить удалённую строку своим commit.
	unlock := s.guard.Acquire(tournamentID)
	defer unlock()

	layout, err := s.roomRepo.GetByTournamentID(ctx, tournamentID)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("failed to marshal final room snapshot: %w", err)
	}

	key := fmt.Sprintf("rooms/%d/layout.json", tournamentID)
	result, err := s.archiver.Put(ctx, key, "application/json", bytes.NewReader(raw))
	if err != nil {
		return err
	}

	if err := s.roomRepo.Delete(ctx, tournamentID); err != nil && !errors.Is(err, repositories.ErrRoomNotFound) {
		return err
	}
	s.guard.Forget(tournamentID)

	s.logger.Info("room archived",
		slog.Int("tournament_id", tournamentID), slog.String("location", result.Location))
	return nil
}

// --- внутренние хелперы ---

// listRoomTournaments возвращает турниры всех комнат, живущих в оперативном
// хранилище. Обход идёт от комнат, а не от турниров: планировщику интересны
// только турниры, у которых комната вообще есть.
func (s *RoomService) listRoomTournaments(ctx context.Context) ([]*models.Tournament, error) {
	ids, err := s.roomRepo.ListTournamentIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list room tournaments: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	tournaments, err := s.tournamentRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournaments for rooms: %w", err)
	}
	return tournaments, nil
}

func (s *RoomService) getTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	return tournament, nil
}

// ensureRoom создаёт комнату лениво. singleflight схлопывает конкурентные
// первые обращения к одному турниру в одно создание.
func (s *RoomService) ensureRoom(ctx context.Context, tournamentID int) (*models.RoomLayout, error) {
	v, err, _ := s.createGroup.Do(strconv.Itoa(tournamentID), func() (interface{}, error) {
		tournament, err := s.getTournament(ctx, tournamentID)
		if err != nil {
			return nil, err
		}

		unlock := s.guard.Acquire(tournamentID)
		defer unlock()

		return s.loadOrCreateLocked(ctx, tournament)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.RoomLayout), nil
}

// loadOrCreateLocked читает сетку или строит пустую. Вызывается только под
// мьютексом комнаты.
func (s *RoomService) loadOrCreateLocked(ctx context.Context, tournament *models.Tournament) (*models.RoomLayout, error) {
	layout, err := s.roomRepo.GetByTournamentID(ctx, tournament.ID)
	if err == nil {
		return layout, nil
	}
	if !errors.Is(err, repositories.ErrRoomNotFound) {
		return nil, fmt.Errorf("failed to load room layout: %w", err)
	}

	layout, err = rooms.NewRoomLayout(tournament.ID, tournament.Type, tournament.MaxParticipants)
	if err != nil {
		return nil, err
	}
	layout.Version = 1
	layout.UpdatedAt = s.clock.Now()

	if err := s.roomRepo.Upsert(ctx, layout); err != nil {
		return nil, err
	}
	s.logger.Info("room layout created",
		slog.Int("tournament_id", tournament.ID),
		slog.Int("max_teams", layout.MaxTeams),
		slog.Int("slots_per_team", layout.SlotsPerTeam))
	return layout, nil
}

// commit фиксирует следующий снапшот: инкремент версии и upsert.
// Вызывается только под мьютексом комнаты, вся внешняя I/O — после успешной
// проверки инвариантов в памяти.
func (s *RoomService) commit(ctx context.Context, next *models.RoomLayout) error {
	next.Version++
	next.UpdatedAt = s.clock.Now()
	if err := s.roomRepo.Upsert(ctx, next); err != nil {
		return fmt.Errorf("failed to commit room layout: %w", err)
	}
	return nil
}
