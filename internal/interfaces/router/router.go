package router

import (
	"context"
	"time"

	authsvc "need1-backend/internal/application/auth"
	emailssvc "need1-backend/internal/application/emails"
	eventssvc "need1-backend/internal/application/events"
	feedsvc "need1-backend/internal/application/feed"
	healthsvc "need1-backend/internal/application/health"
	offerssvc "need1-backend/internal/application/offers"
	requestssvc "need1-backend/internal/application/requests"
	threadssvc "need1-backend/internal/application/threads"
	uploadssvc "need1-backend/internal/application/uploads"
	userssvc "need1-backend/internal/application/users"
	"need1-backend/internal/config"
	authh "need1-backend/internal/interfaces/handlers/auth"
	eventsh "need1-backend/internal/interfaces/handlers/events"
	feedh "need1-backend/internal/interfaces/handlers/feed"
	healthh "need1-backend/internal/interfaces/handlers/health"
	offersh "need1-backend/internal/interfaces/handlers/offers"
	requestsh "need1-backend/internal/interfaces/handlers/requests"
	threadsh "need1-backend/internal/interfaces/handlers/threads"
	uploadsh "need1-backend/internal/interfaces/handlers/uploads"
	usersh "need1-backend/internal/interfaces/handlers/users"
	"need1-backend/internal/middleware"
	"need1-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type gormPinger struct{ db *gorm.DB }

func (p gormPinger) PingContext(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateApp builds the Fiber app with all middleware, services, and routes.
func CreateApp(db *gorm.DB, cfg *config.Config) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionMw, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, err
	}

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(sessionMw)

	var mailer *emailssvc.Service
	if cfg.SendinblueAPIKey != "" {
		mailer = &emailssvc.Service{Sender: emailssvc.NewBrevoSender(cfg.SendinblueAPIKey, cfg.MailFrom)}
	}

	usersService := &userssvc.Service{DB: db}
	if mailer != nil {
		usersService.Mailer = mailer
	}
	authService := &authsvc.Service{
		Users:   &authsvc.GormUserFinder{DB: db},
		DB:      db,
		Redis:   rdb,
		BaseURL: cfg.MagicLinkBaseURL,
	}
	if mailer != nil {
		authService.Mailer = mailer
	}
	requestsService := &requestssvc.Service{DB: db, Redis: rdb}
	offersService := &offerssvc.Service{
		DB:       db,
		Requests: requestsService,
		Policy:   offerssvc.DefaultPolicy(),
	}
	if mailer != nil {
		offersService.Notifier = mailer
	}
	threadsService := &threadssvc.Service{DB: db}
	eventsService := &eventssvc.Service{DB: db}
	feedService := &feedsvc.Service{DB: db}
	uploadsService := uploadssvc.NewService(cfg.SupabaseURL, cfg.SupabaseSecretKey)
	healthService := &healthsvc.Service{DB: gormPinger{db}, Redis: rdb, StartedAt: time.Now()}

	authHandler := &authh.Handler{Auth: authService, Users: usersService, Redis: rdb, SessionCfg: sessionCfg}
	usersHandler := &usersh.Handler{Users: usersService}
	requestsHandler := &requestsh.Handler{Requests: requestsService}
	offersHandler := &offersh.Handler{Offers: offersService}
	threadsHandler := &threadsh.Handler{Threads: threadsService}
	eventsHandler := &eventsh.Handler{Events: eventsService}
	feedHandler := &feedh.Handler{Feed: feedService}
	uploadsHandler := &uploadsh.Handler{Uploads: uploadsService}
	healthHandler := &healthh.Handler{Health: healthService, AdminKey: cfg.HealthAdminKey}

	app.Get("/health", healthHandler.Live)
	app.Get("/health/report", healthHandler.Report)

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/magic-link", authHandler.MagicLink)
	auth.Get("/verify", authHandler.VerifyMagicLink)
	auth.Get("/me", middleware.RequireAuth(), authHandler.Me)
	auth.Post("/logout", middleware.RequireAuth(), authHandler.Logout)

	users := api.Group("/users", middleware.RequireAuth())
	users.Patch("/me", usersHandler.UpdateProfile)
	users.Get("/me/stats", usersHandler.Stats)
	users.Get("/:id", usersHandler.Get)
	users.Patch("/:id/role", middleware.AuthorizePermission(constants.AssignRole), usersHandler.UpdateRole)
	users.Delete("/:id", middleware.AuthorizePermission(constants.RemoveUser), usersHandler.Remove)

	requests := api.Group("/requests", middleware.RequireAuth())
	requests.Post("/", requestsHandler.Create)
	requests.Get("/", requestsHandler.List)
	requests.Get("/mine", requestsHandler.Mine)
	requests.Get("/:id", requestsHandler.Get)
	requests.Post("/:id/complete", requestsHandler.Complete)
	requests.Post("/:id/cancel", requestsHandler.Cancel)
	requests.Get("/:id/offers", offersHandler.ListByRequest)
	requests.Get("/:id/events", eventsHandler.ListByRequest)

	offers := api.Group("/offers", middleware.RequireAuth())
	offers.Post("/", offersHandler.Submit)
	offers.Get("/mine", offersHandler.Mine)
	offers.Post("/:id/accept", offersHandler.Accept)
	offers.Post("/:id/decline", offersHandler.Decline)

	events := api.Group("/events", middleware.RequireAuth())
	events.Get("/mine", eventsHandler.Mine)

	threads := api.Group("/threads", middleware.RequireAuth())
	threads.Get("/mine", threadsHandler.Mine)
	threads.Get("/:id", threadsHandler.Get)
	threads.Get("/:id/messages", threadsHandler.Messages)
	threads.Post("/:id/messages", threadsHandler.PostMessage)

	feed := api.Group("/feed")
	feed.Get("/requests", feedHandler.OpenRequests)
	feed.Get("/flash-drops", feedHandler.FlashDrops)
	feed.Post("/flash-drops", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ManageFlashDrops), feedHandler.CreateFlashDrop)
	feed.Post("/flash-drops/:id/join", middleware.RequireAuth(), feedHandler.JoinFlashDrop)
	feed.Get("/safe-spots", feedHandler.SafeSpots)
	feed.Post("/safe-spots", middleware.RequireAuth(), middleware.AuthorizePermission(constants.ManageFlashDrops), feedHandler.CreateSafeSpot)

	uploads := api.Group("/uploads", middleware.RequireAuth())
	uploads.Post("/sign", uploadsHandler.Sign)

	return app, nil
}
