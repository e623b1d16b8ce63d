package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/jotbook/jotbook/internal/account"
	"github.com/jotbook/jotbook/internal/auth"
	"github.com/jotbook/jotbook/internal/config"
	"github.com/jotbook/jotbook/internal/mailer"
	"github.com/jotbook/jotbook/internal/middleware"
	"github.com/jotbook/jotbook/internal/note"
	"github.com/jotbook/jotbook/internal/otp"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg        config.Config
	DB         *pgxpool.Pool
	Cache      *redis.Client
	Dispatcher mailer.Dispatcher
	Logger     *slog.Logger
}

// Setup configures middlewares and all application routes. When DB or Cache
// is nil in a dev environment, in-memory stores take their place.
func Setup(app *fiber.App, d Deps) error {
	if !isDev(d.Cfg.AppEnv) {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	// Stores and services
	var accountRepo account.Repository
	var noteRepo note.Repository
	if d.DB != nil {
		accountRepo = account.NewPostgresRepository(d.DB)
		noteRepo = note.NewPostgresRepository(d.DB)
	} else {
		accountRepo = account.NewMemoryRepository()
		noteRepo = note.NewMemoryRepository()
	}

	var pendingStore otp.Store
	if d.Cache != nil {
		pendingStore = otp.NewRedisStore(d.Cache)
	} else {
		pendingStore = otp.NewMemoryStore()
	}

	authSvc := auth.NewService(accountRepo, pendingStore, d.Dispatcher, d.Cfg.OTPTTL, d.Logger)
	authHandler := auth.NewHandler(authSvc, d.Cfg.ExposeOTP)
	noteSvc := note.NewService(noteRepo, accountRepo)
	noteHandler := note.NewHandler(noteSvc)

	// API index, kept for clients probing the service root.
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"message": "Jotbook API",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"users": "/api/users",
				"notes": "/api/notes",
			},
		})
	})

	api := app.Group("/api")
	rateLimiter := middleware.OTPRateLimit(d.Cache, d.Cfg.OTPRatePerMinute)
	RegisterUserRoutes(api, authHandler, rateLimiter)
	RegisterNoteRoutes(api, noteHandler)

	return nil
}

func isDev(env string) bool {
	switch strings.ToLower(env) {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}
