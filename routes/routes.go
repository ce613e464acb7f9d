package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/sundayleague/match-system/handlers"
	"github.com/sundayleague/match-system/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	matchHandler *handlers.MatchHandler,
	rosterHandler *handlers.RosterHandler,
	scoreHandler *handlers.ScoreHandler,
	ratingHandler *handlers.RatingHandler,
	motmHandler *handlers.MotmHandler,
	maintenanceHandler *handlers.MaintenanceHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RateLimit(120, time.Minute))

	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	router.Route("/matches", func(r chi.Router) {
		// Публичные маршруты для просмотра матчей
		r.Get("/{matchID}", matchHandler.GetByIDHandler)
		r.Get("/{matchID}/proposals", matchHandler.ListProposalsHandler)
		r.Get("/{matchID}/roster", rosterHandler.ListRosterHandler)
		r.Get("/{matchID}/ratings", ratingHandler.ResultsHandler)
		r.Get("/{matchID}/motm", motmHandler.ResultsHandler)

		// Защищенные маршруты: любое изменение состояния матча требует игрока
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", matchHandler.CreateHandler)
			r.Post("/{matchID}/proposals", matchHandler.ProposeOpponentHandler)
			r.Post("/{matchID}/opponent", matchHandler.AcceptOpponentHandler)
			r.Post("/{matchID}/cancel", matchHandler.CancelHandler)
			r.Post("/{matchID}/join", rosterHandler.RequestJoinHandler)
			r.Post("/{matchID}/roster/{entryID}/decision", rosterHandler.DecideJoinHandler)
			r.Post("/{matchID}/score", scoreHandler.SubmitHandler)
			r.Get("/{matchID}/score", scoreHandler.StatusHandler)
			r.Post("/{matchID}/ratings", ratingHandler.SubmitHandler)
			r.Post("/{matchID}/motm", motmHandler.VoteHandler)
		})
	})

	router.Post("/maintenance/sweep", maintenanceHandler.SweepHandler)

	router.Get("/ws/matches/{matchID}", webSocketHandler.ServeWs)
}
