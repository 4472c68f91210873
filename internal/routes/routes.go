package routes

import (
	"log"

	"github.com/IlkerKadir/fitstream-backend/internal/config"
	"github.com/IlkerKadir/fitstream-backend/internal/handlers"
	"github.com/IlkerKadir/fitstream-backend/internal/middleware"
	"github.com/IlkerKadir/fitstream-backend/internal/repository"
	"github.com/IlkerKadir/fitstream-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	trainerProfileRepo := repository.NewTrainerProfileRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	ratingRepo := repository.NewRatingRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	var rtc services.RTCProvider
	if cfg.RTCConfigured() {
		rtc = services.NewRESTRTCProvider(cfg.RTCAPIBase, cfg.RTCAppID, cfg.RTCAppCertificate)
	} else {
		log.Println("RTC credentials not configured, issuing placeholder stream tokens")
		rtc = services.NewPlaceholderRTCProvider()
	}

	sessionService := services.NewSessionService(
		db,
		sessionRepo,
		bookingRepo,
		participantRepo,
		ratingRepo,
		engagementRepo,
		trainerProfileRepo,
	)
	streamService := services.NewStreamService(sessionRepo, bookingRepo, participantRepo, rtc)
	analyticsService := services.NewAnalyticsService(sessionRepo, bookingRepo, participantRepo, ratingRepo, engagementRepo)
	packageService := services.NewPackageService(db, packageRepo, transactionRepo)

	authHandler := handlers.NewAuthHandler(db, userRepo, trainerProfileRepo, cfg.JWTSecret)
	sessionHandler := handlers.NewSessionHandler(sessionService, analyticsService)
	streamHandler := handlers.NewStreamHandler(streamService)
	packageHandler := handlers.NewPackageHandler(packageService)
	userHandler := handlers.NewUserHandler(userRepo, trainerProfileRepo, bookingRepo, transactionRepo)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authRequired := middleware.AuthRequired(cfg.JWTSecret)
	trainerOnly := middleware.RequireRole("trainer", "admin")
	adminOnly := middleware.RequireRole("admin")

	// Session catalog reads are public; everything that mutates or is
	// actor-scoped stays behind auth.
	sessions := api.Group("/sessions")
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Post("", authRequired, trainerOnly, sessionHandler.CreateSession)
	sessions.Put("/:id", authRequired, trainerOnly, sessionHandler.UpdateSession)
	sessions.Put("/:id/status", authRequired, trainerOnly, sessionHandler.UpdateStatus)
	sessions.Delete("/:id", authRequired, trainerOnly, sessionHandler.DeleteSession)
	sessions.Post("/:id/book", authRequired, sessionHandler.BookSession)
	sessions.Post("/:id/rate", authRequired, sessionHandler.RateSession)
	sessions.Post("/:id/chat", authRequired, sessionHandler.PostMessage)
	sessions.Get("/:id/chat", authRequired, sessionHandler.ListMessages)
	sessions.Post("/:id/react", authRequired, sessionHandler.PostReaction)
	sessions.Get("/:id/analytics", authRequired, trainerOnly, sessionHandler.GetAnalytics)

	stream := api.Group("/stream", authRequired)
	stream.Post("/:sessionId/start", trainerOnly, streamHandler.Start)
	stream.Post("/:sessionId/end", trainerOnly, streamHandler.End)
	stream.Post("/:sessionId/join", streamHandler.Join)
	stream.Post("/:sessionId/leave", streamHandler.Leave)
	stream.Get("/:sessionId", streamHandler.GetInfo)
	stream.Get("/:sessionId/participants", streamHandler.ListParticipants)

	packages := api.Group("/packages")
	packages.Get("", middleware.OptionalAuth(cfg.JWTSecret), packageHandler.ListPackages)
	packages.Get("/:id", packageHandler.GetPackage)
	packages.Post("", authRequired, adminOnly, packageHandler.CreatePackage)
	packages.Put("/:id", authRequired, adminOnly, packageHandler.UpdatePackage)
	packages.Delete("/:id", authRequired, adminOnly, packageHandler.DeactivatePackage)
	packages.Post("/:id/purchase", authRequired, packageHandler.Purchase)

	users := api.Group("/users", authRequired)
	users.Get("/me/bookings", userHandler.ListMyBookings)
	users.Get("/me/transactions", userHandler.ListMyTransactions)
	users.Put("/me/preferences", userHandler.UpdatePreferences)
	users.Put("/me/trainer-profile", middleware.RequireRole("trainer"), userHandler.UpdateTrainerProfile)
	users.Put("/:id/tokens", adminOnly, userHandler.UpdateTokens)
	users.Get("/:id", userHandler.GetUser)
}
