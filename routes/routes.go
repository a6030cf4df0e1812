package routes

import (
	"github.com/gamerpro/gamerpro/handlers"
	"github.com/gamerpro/gamerpro/middleware"
	"github.com/gamerpro/gamerpro/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes wires every handler into the router. Admin-only staging and
// scheduling operations sit behind role-gated groups; lobby reads are public.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	teamHandler *handlers.TeamHandler,
	tournamentHandler *handlers.TournamentHandler,
	registrationHandler *handlers.RegistrationHandler,
	stagingHandler *handlers.StagingHandler,
	matchHandler *handlers.MatchHandler,
	lobbyHandler *handlers.LobbyHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
	discordHandler *handlers.DiscordInteractionsHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	adminOnly := auth.RequireRole(models.RoleAdmin, models.RoleSuperAdmin)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/me", authHandler.Me)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(auth.RequireRole(models.RoleSuperAdmin))
		r.Put("/{userID}/role", authHandler.PromoteUser)
	})

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.List)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/", teamHandler.Create)
			r.Post("/join", teamHandler.Join)
			r.Post("/leave", teamHandler.Leave)
			r.Get("/{teamID}", teamHandler.GetByID)
			r.Delete("/{teamID}", teamHandler.Delete)
			r.Post("/{teamID}/logo", teamHandler.UploadLogo)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/lobby", lobbyHandler.GetLobby)
		r.Get("/{tournamentID}/groups", stagingHandler.ListGroups)
		r.Get("/{tournamentID}/registrations", tournamentHandler.ListRegistrations)
		r.Get("/{tournamentID}/qualifications", lobbyHandler.ListQualifications)
		r.Get("/{tournamentID}/standings", dashboardHandler.Standings)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/{tournamentID}/register", registrationHandler.Register)
			r.Delete("/{tournamentID}/register", registrationHandler.Withdraw)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(adminOnly)
			r.Post("/", tournamentHandler.Create)
			r.Put("/{tournamentID}", tournamentHandler.Update)
			r.Delete("/{tournamentID}", tournamentHandler.Delete)
			r.Post("/{tournamentID}/banner", tournamentHandler.UploadBanner)
			r.Delete("/{tournamentID}/registrations/{teamID}", registrationHandler.Disqualify)
			r.Post("/{tournamentID}/groups/generate", stagingHandler.GenerateGroups)
			r.Post("/{tournamentID}/advance-stage", stagingHandler.AdvanceStage)
		})
	})

	router.Route("/groups/{groupID}/matches", func(r chi.Router) {
		r.Get("/", matchHandler.ListByGroup)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(adminOnly)
			r.Post("/", matchHandler.Schedule)
		})
	})

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/results", matchHandler.ListResults)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Get("/credentials", matchHandler.Credentials)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(adminOnly)
			r.Post("/start", matchHandler.Start)
			r.Post("/complete", matchHandler.Complete)
			r.Post("/results", matchHandler.SubmitResults)
		})
	})

	router.Get("/stats", dashboardHandler.PlatformStats)
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeLobby)

	if discordHandler != nil {
		router.Post("/integrations/discord/interactions", discordHandler.Interactions)
	}
}
