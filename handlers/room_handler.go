package handlers

import (
	"net/http"

	"github.com/Dosada05/room-system/middleware"
	"github.com/Dosada05/room-system/models"
	"github.com/Dosada05/room-system/services"
)

type RoomHandler struct {
	roomService *services.RoomService
}

func NewRoomHandler(rs *services.RoomService) *RoomHandler {
	return &RoomHandler{
		roomService: rs,
	}
}

// actorFromContext собирает Actor из клеймов JWT в контексте запроса.
func actorFromContext(r *http.Request) (models.Actor, error) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		return models.Actor{}, err
	}
	role, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		return models.Actor{}, err
	}
	return models.Actor{UserID: userID, Role: role}, nil
}

// GetRoom godoc
// @Summary Получить сетку комнаты турнира
// @Tags rooms
// @Description Возвращает текущую сетку команд и слотов. При первом обращении комната создаётся автоматически по типу и вместимости турнира.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Сетка комнаты"
// @Failure 400 {object} map[string]string "Некорректный ID"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/room [get]
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	layout, err := h.roomService.GetRoom(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"room": layout}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AvailableSlots godoc
// @Summary Свободные слоты комнаты
// @Tags rooms
// @Description Список незанятых и незаблокированных слотов в порядке команда/слот.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Свободные слоты"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Router /tournaments/{tournamentID}/room/available-slots [get]
func (h *RoomHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slots, err := h.roomService.AvailableSlots(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"available_slots": slots}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AutoAssign godoc
// @Summary Автоматическая посадка игрока
// @Tags rooms
// @Description Сажает текущего пользователя в первый свободный слот. Повторный вызов возвращает уже занятый слот без изменений.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body object true "Nickname игрока"
// @Success 200 {object} map[string]interface{} "Слот и сетка"
// @Failure 403 {object} map[string]string "Редактирование запрещено / автопосадка выключена"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Failure 409 {object} map[string]string "Комната заполнена или слот временно удержан"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/room/auto-assign [post]
func (h *RoomHandler) AutoAssign(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		Nickname string `json:"nickname"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player := models.PlayerRef{ID: actor.UserID, Nickname: input.Nickname}
	layout, slot, err := h.roomService.AutoAssign(r.Context(), tournamentID, player)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"slot": slot, "room": layout}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Move godoc
// @Summary Перенести игрока в указанный слот
// @Tags rooms
// @Description Игрок переносит себя, админ — любого игрока (включая посадку ещё не сидящего).
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body services.MoveInput true "Игрок и целевой слот"
// @Success 200 {object} map[string]interface{} "Слот и сетка"
// @Failure 400 {object} map[string]string "Тот же слот / игрок не сидит в комнате"
// @Failure 403 {object} map[string]string "Редактирование запрещено / чужой игрок / смена команды выключена"
// @Failure 404 {object} map[string]string "Турнир, команда или слот не найдены"
// @Failure 409 {object} map[string]string "Слот занят или временно удержан"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/room/move [post]
func (h *RoomHandler) Move(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.MoveInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.PlayerID == 0 {
		input.PlayerID = actor.UserID
	}

	layout, slot, err := h.roomService.Move(r.Context(), tournamentID, input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"slot": slot, "room": layout}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// LockSlot godoc
// @Summary Заблокировать слот (админ)
// @Tags rooms
// @Description Блокирует слот для новых посадок. Сидящий в слоте игрок остаётся.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body object true "Номера команды и слота"
// @Success 200 {object} map[string]interface{} "Сетка комнаты"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Турнир, команда или слот не найдены"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/room/slots/lock [post]
func (h *RoomHandler) LockSlot(w http.ResponseWriter, r *http.Request) {
	h.slotLock(w, r, true)
}

// UnlockSlot godoc
// @Summary Разблокировать слот (админ)
// @Tags rooms
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body object true "Номера команды и слота"
// @Success 200 {object} map[string]interface{} "Сетка комнаты"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Турнир, команда или слот не найдены"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/room/slots/unlock [post]
func (h *RoomHandler) UnlockSlot(w http.ResponseWriter, r *http.Request) {
	h.slotLock(w, r, false)
}

func (h *RoomHandler) slotLock(w http.ResponseWriter, r *http.Request, lock bool) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		TeamNumber int `json:"team_number"`
		SlotNumber int `json:"slot_number"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var layout *models.RoomLayout
	if lock {
		layout, err = h.roomService.LockSlot(r.Context(), tournamentID, input.TeamNumber, input.SlotNumber, actor)
	} else {
		layout, err = h.roomService.UnlockSlot(r.Context(), tournamentID, input.TeamNumber, input.SlotNumber, actor)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"room": layout}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ToggleRoomLock godoc
// @Summary Заблокировать или разблокировать комнату (админ)
// @Tags rooms
// @Description action=lock замораживает всю комнату и выключает самостоятельную смену слотов; action=unlock включает её обратно.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body object true "Действие: lock или unlock"
// @Success 200 {object} map[string]interface{} "Сетка комнаты"
// @Failure 400 {object} map[string]string "Неизвестное действие"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/room/lock [post]
func (h *RoomHandler) ToggleRoomLock(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		Action string `json:"action"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	layout, err := h.roomService.ToggleRoomLock(r.Context(), tournamentID, input.Action, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"room": layout}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemovePlayer godoc
// @Summary Снять игрока со слота (админ)
// @Tags rooms
// @Description Убирает игрока из комнаты. Повторный вызов для уже снятого игрока возвращает текущую сетку без изменений.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param playerID path int true "Player ID"
// @Success 200 {object} map[string]interface{} "Сетка комнаты"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/room/players/{playerID} [delete]
func (h *RoomHandler) RemovePlayer(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	layout, err := h.roomService.RemovePlayer(r.Context(), tournamentID, playerID, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"room": layout}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateSettings godoc
// @Summary Обновить настройки комнаты (админ)
// @Tags rooms
// @Description Частичное обновление: передаются только изменяемые поля. clear_slot_change_deadline=true снимает дедлайн.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body services.UpdateRoomSettingsInput true "Изменяемые настройки"
// @Success 200 {object} map[string]interface{} "Сетка комнаты"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/room/settings [patch]
func (h *RoomHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	actor, err := actorFromContext(r)
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input services.UpdateRoomSettingsInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	layout, err := h.roomService.UpdateSettings(r.Context(), tournamentID, input, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"room": layout}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
