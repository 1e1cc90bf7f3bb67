package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Hirusha02/mootcourt-system/handlers"
	"github.com/Hirusha02/mootcourt-system/middleware"
	"github.com/Hirusha02/mootcourt-system/models"
)

// Handlers bundles everything SetupRoutes needs to wire the API surface.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Rounds     *handlers.RoundHandler
	ScoreSheet *handlers.ScoreSheetHandler
	Teams      *handlers.TeamHandler
	Dashboard  *handlers.DashboardHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(h Handlers, jwtSecret []byte) *chi.Mux {
	router := chi.NewRouter()

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

	router.Post("/auth/signin", h.Auth.SignInHandler)

	// Live round updates for the dashboard.
	router.Get("/ws", h.WebSocket.ServeWs)

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		// Read endpoints shared by both roles.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleJury))

			r.Get("/teams", h.Teams.ListHandler)
			r.Get("/teams/{teamID}", h.Teams.GetByIDHandler)
			r.Get("/oral-marks", h.ScoreSheet.ListHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Get("/dashboard", h.Dashboard.SummaryHandler)

			r.Route("/rounds", func(r chi.Router) {
				r.Post("/", h.Rounds.CreateHandler)
				r.Get("/", h.Rounds.ListHandler)
				r.Get("/eligible_teams", h.Rounds.EligibleTeamsHandler)
				r.Get("/missing_marks", h.Rounds.MissingMarksHandler)
				r.Get("/{roundID}", h.Rounds.GetByIDHandler)
				r.Patch("/{roundID}", h.Rounds.UpdateHandler)
				r.Delete("/{roundID}", h.Rounds.DeleteHandler)
				r.Post("/{roundID}/set_winner", h.Rounds.SetWinnerHandler)
				r.Get("/{roundID}/marks/{teamID}", h.ScoreSheet.AggregateHandler)
			})

			r.Route("/teams", func(r chi.Router) {
				r.Post("/", h.Teams.CreateHandler)
				r.Put("/{teamID}", h.Teams.UpdateHandler)
				r.Delete("/{teamID}", h.Teams.DeleteHandler)
				r.Post("/{teamID}/logo", h.Teams.UploadLogoHandler)
			})

			r.Post("/users", h.Auth.RegisterHandler)
			r.Get("/juries", h.Auth.ListJuriesHandler)
		})

		r.Route("/jury", func(r chi.Router) {
			r.Use(middleware.Authorize(models.RoleJury))

			r.Get("/rounds", h.Rounds.ListOwnHandler)
			r.Get("/rounds/missing_marks", h.Rounds.MissingMarksHandler)
			r.Post("/oral-marks", h.ScoreSheet.SubmitHandler)
			r.Patch("/oral-marks/{sheetID}", h.ScoreSheet.UpdateHandler)
		})
	})

	return router
}
