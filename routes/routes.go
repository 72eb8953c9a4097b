package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mauer01/5D-Chess-League-Bot/handlers"
	"github.com/mauer01/5D-Chess-League-Bot/middleware"
)

// SetupRoutes wires the HTTP surface. Reporting requires a player token;
// season control and admin endpoints additionally require the admin role.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	playerHandler *handlers.PlayerHandler,
	reportHandler *handlers.ReportHandler,
	seasonHandler *handlers.SeasonHandler,
	adminHandler *handlers.AdminHandler,
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

	router.Route("/players", func(r chi.Router) {
		r.Get("/{playerID}/stats", playerHandler.GetStats)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Post("/register", playerHandler.Register)
			r.Post("/signup", playerHandler.SignUp)
		})
	})

	router.Get("/leaderboard", playerHandler.Leaderboard)
	router.Get("/pairings", seasonHandler.GetPairings)
	router.Get("/seasons/{season}/divisions/{division}/ranking", seasonHandler.GetRanking)

	router.Route("/reports", func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Post("/", reportHandler.SubmitReport)
		r.Post("/cancel", reportHandler.CancelReport)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))
		r.Use(middleware.Authorize(middleware.RoleAdmin))

		r.Post("/seasons/start", seasonHandler.StartSeason)
		r.Post("/seasons/end", seasonHandler.EndSeason)
		r.Post("/admin/backup", adminHandler.Backup)
		r.Post("/admin/reports/purge", adminHandler.PurgeStaleReports)
	})

	router.Get("/ws/divisions/{division}", webSocketHandler.ServeWs)
}
