package handlers

import (
	"net/http"

	"github.com/Dosada05/room-system/services"
)

type ParticipantHandler struct {
	participantService *services.ParticipantService
}

func NewParticipantHandler(ps *services.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{
		participantService: ps,
	}
}

// ListParticipants godoc
// @Summary Список участников турнира (админ)
// @Tags participants
// @Description Участники с плоской административной нумерацией slot_number. Эта нумерация не связана с сеткой комнаты.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Участники"
// @Failure 404 {object} map[string]string "Турнир не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/participants [get]
func (h *ParticipantHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	participants, err := h.participantService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participants": participants}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMyParticipant godoc
// @Summary Моя запись участника
// @Tags participants
// @Description Возвращает запись текущего пользователя в турнире с его плоским номером.
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]interface{} "Запись участника"
// @Failure 401 {object} map[string]string "Неавторизован"
// @Failure 404 {object} map[string]string "Участник не найден"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/participants/me [get]
func (h *ParticipantHandler) GetMyParticipant(w http.ResponseWriter, r *http.Request) {
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

	participant, err := h.participantService.FindByUser(r.Context(), actor.UserID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"participant": participant}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SwapSlotNumbers godoc
// @Summary Поменять местами два плоских номера участников (админ)
// @Tags participants
// @Description Атомарный обмен slot_number двух участников. Если целевой номер свободен, участник просто переносится на него.
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Param body body object true "Исходный и целевой номера"
// @Success 200 {object} map[string]string "Обмен выполнен"
// @Failure 400 {object} map[string]string "Одинаковые номера"
// @Failure 403 {object} map[string]string "Нет прав"
// @Failure 404 {object} map[string]string "Участник с исходным номером не найден"
// @Failure 409 {object} map[string]string "Конфликт нумерации"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/participants/swap-slots [post]
func (h *ParticipantHandler) SwapSlotNumbers(w http.ResponseWriter, r *http.Request) {
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
		SourceSlotNumber int `json:"source_slot_number"`
		DestSlotNumber   int `json:"dest_slot_number"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	err = h.participantService.SwapSlotNumbers(r.Context(), tournamentID, input.SourceSlotNumber, input.DestSlotNumber, actor)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"message": "slot numbers swapped"}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
