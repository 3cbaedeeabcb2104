package routes

import (
	"github.com/Dosada05/room-system/handlers"
	"github.com/Dosada05/room-system/middleware"
	"github.com/Dosada05/room-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes собирает весь HTTP-контур сервиса комнат.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	roomHandler *handlers.RoomHandler,
	participantHandler *handlers.ParticipantHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler())

	// События комнаты: апгрейд до WebSocket, без JWT (подписка только на чтение)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		// Публичные маршруты просмотра
		r.Get("/room", roomHandler.GetRoom)
		r.Get("/room/available-slots", roomHandler.AvailableSlots)

		// Маршруты игрока
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)

			r.Post("/room/auto-assign", roomHandler.AutoAssign)
			r.Post("/room/move", roomHandler.Move)
			r.Get("/participants/me", participantHandler.GetMyParticipant)
		})

		// Административные маршруты
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.Authorize(string(models.RoleAdmin)))

			r.Post("/room/slots/lock", roomHandler.LockSlot)
			r.Post("/room/slots/unlock", roomHandler.UnlockSlot)
			r.Post("/room/lock", roomHandler.ToggleRoomLock)
			r.Delete("/room/players/{playerID}", roomHandler.RemovePlayer)
			r.Patch("/room/settings", roomHandler.UpdateSettings)

			r.Get("/participants", participantHandler.ListParticipants)
			r.Post("/participants/swap-slots", participantHandler.SwapSlotNumbers)
		})
	})
}
