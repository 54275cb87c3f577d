package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/openbracket/tournament-engine/handlers"
	"github.com/openbracket/tournament-engine/middleware"
)

// SetupRoutes wires every handler onto the router. Read endpoints are
// public; bracket and result mutations require an organizer token.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	bracketHandler *handlers.BracketHandler,
	matchHandler *handlers.MatchHandler,
	teamHandler *handlers.TeamHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Get("/bracket", bracketHandler.GetBracketHandler)
		r.Get("/matches", bracketHandler.ListMatchesHandler)
		r.Get("/teams", teamHandler.ListRosterHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize(middleware.RoleOrganizer))

			r.Post("/bracket", bracketHandler.BuildBracketHandler)
			r.Post("/bracket/rounds", bracketHandler.GenerateSwissRoundHandler)
			r.Post("/bracket/losers", bracketHandler.GenerateLosersBracketHandler)
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetMatchHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize(middleware.RoleOrganizer))

			r.Put("/result", matchHandler.RecordResultHandler)
		})
	})

	router.Route("/teams/{teamID}", func(r chi.Router) {
		r.Get("/", teamHandler.GetTeamHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize(middleware.RoleOrganizer))

			r.Post("/logo", teamHandler.UploadTeamLogoHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
