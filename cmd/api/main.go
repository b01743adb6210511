package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/prepwise/prepwise-api/internal/auth"
	"github.com/prepwise/prepwise-api/internal/config"
	"github.com/prepwise/prepwise-api/internal/database"
	"github.com/prepwise/prepwise-api/internal/handler"
	"github.com/prepwise/prepwise-api/internal/middleware"
	"github.com/prepwise/prepwise-api/internal/models"
	"github.com/prepwise/prepwise-api/internal/repository"
	"github.com/prepwise/prepwise-api/internal/router"
	"github.com/prepwise/prepwise-api/internal/service"
	"github.com/prepwise/prepwise-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Template{},
		&models.Persona{},
		&models.Session{},
		&models.Message{},
		&models.Feedback{},
		&models.Preference{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// The event bus is optional: without it, evaluation events are simply
	// not published.
	var events *nats.Conn
	if cfg.NATSURL != "" {
		events, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("event bus unavailable, evaluation events disabled")
			events = nil
		} else {
			defer events.Close()
		}
	}

	model, err := ai.NewOpenAIInterviewer(ai.OpenAIConfig{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.OpenAIModel,
		ReplyMaxTokens: cfg.ReplyMaxTokens,
		Logger:         logger,
	})
	if err != nil {
		log.Fatalf("failed to create completion client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	personaRepo := repository.NewPersonaRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)

	seedService := service.NewSeedService(templateRepo, personaRepo, logger)
	if err := seedService.EnsureDefaults(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("failed to seed default content")
	}

	interviewService := service.NewInterviewService(sessionRepo, messageRepo, templateRepo, personaRepo, model, logger)
	evaluationService := service.NewEvaluationService(sessionRepo, messageRepo, templateRepo, feedbackRepo, model, cfg.EvalMaxTokens, events, logger)
	statsService := service.NewStatsService(sessionRepo, feedbackRepo, logger)
	preferenceService := service.NewPreferenceService(preferenceRepo, validate, logger)

	sessionStore := auth.NewSessionStore(redisClient, "prep:session", cfg.SessionTTL)

	deps := router.Dependencies{
		Config:       cfg,
		SessionStore: sessionStore,
		Auth:         handler.NewAuthHandler(userRepo, sessionStore, cfg, logger),
		Templates:    handler.NewTemplateHandler(templateRepo, logger),
		Personas:     handler.NewPersonaHandler(personaRepo, logger),
		Sessions:     handler.NewSessionHandler(sessionRepo, messageRepo, feedbackRepo, interviewService, evaluationService, validate, logger),
		Stats:        handler.NewStatsHandler(statsService, logger),
		Preferences:  handler.NewPreferenceHandler(preferenceService, logger),
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:      &logger,
		CORSOrigins: cfg.CORSOrigins,
	})
	router.Register(app, deps)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
