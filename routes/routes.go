package routes

import (
	"github.com/bracketlab/tournament-engine/docs"
	"github.com/bracketlab/tournament-engine/handlers"
	"github.com/bracketlab/tournament-engine/middleware"
	"github.com/bracketlab/tournament-engine/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SetupRoutes собирает маршрутизатор: публичные GET-ы и websocket открыты,
// все мутации сетки доступны только организатору с валидным токеном.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	participantHandler *handlers.ParticipantHandler,
	bracketHandler *handlers.BracketHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/signup", authHandler.SignUpHandler)
	router.Post("/auth/signin", authHandler.SignInHandler)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра.
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/participants", participantHandler.ListHandler)
		r.Get("/{tournamentID}/matches", bracketHandler.ListMatchesHandler)
		r.Get("/{tournamentID}/standings", bracketHandler.StandingsHandler)

		// Регистрация заявок открыта без токена, подтверждение — нет.
		r.Post("/{tournamentID}/participants", participantHandler.RegisterHandler)

		// Защищённые маршруты только для организаторов.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Use(middleware.Authorize(models.RoleOrganizer))

			r.Post("/", tournamentHandler.CreateHandler)
			r.Delete("/{tournamentID}", tournamentHandler.CancelHandler)
			r.Put("/{tournamentID}/logo", tournamentHandler.UploadLogoHandler)

			r.Patch("/{tournamentID}/participants/{participantID}/confirm", participantHandler.ConfirmHandler)
			r.Patch("/{tournamentID}/participants/{participantID}/seed", participantHandler.SetSeedHandler)
			r.Delete("/{tournamentID}/participants/{participantID}", participantHandler.WithdrawHandler)

			r.Post("/{tournamentID}/bracket", bracketHandler.GenerateHandler)
			r.Post("/{tournamentID}/results", bracketHandler.SubmitResultHandler)
			r.Post("/{tournamentID}/swiss/rounds", bracketHandler.NextRoundHandler)
			r.Post("/{tournamentID}/swiss/playoffs", bracketHandler.StartPlayoffsHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Get("/swagger/doc.json", docs.ServeOpenAPI)
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
