package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/digitalkookiehub/hireez/internal/conductor"
	"github.com/digitalkookiehub/hireez/internal/config"
	"github.com/digitalkookiehub/hireez/internal/events"
	"github.com/digitalkookiehub/hireez/internal/handlers"
	"github.com/digitalkookiehub/hireez/internal/jobs"
	"github.com/digitalkookiehub/hireez/internal/llm"
	_ "github.com/digitalkookiehub/hireez/internal/llm/gemini"
	"github.com/digitalkookiehub/hireez/internal/managers"
	"github.com/digitalkookiehub/hireez/internal/metrics"
	"github.com/digitalkookiehub/hireez/internal/models"
	"github.com/digitalkookiehub/hireez/internal/notify"
	"github.com/digitalkookiehub/hireez/internal/questions"
	"github.com/digitalkookiehub/hireez/internal/repositories"
	mongorepo "github.com/digitalkookiehub/hireez/internal/repositories/mongo"
	"github.com/digitalkookiehub/hireez/internal/routers"
	"github.com/digitalkookiehub/hireez/internal/session"
	"github.com/digitalkookiehub/hireez/internal/speech"
	"github.com/digitalkookiehub/hireez/internal/utils"
)

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresUser, cfg.PostgresPassword,
		cfg.PostgresDB, cfg.PostgresPort, cfg.PostgresSSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Candidate{},
		&models.JobDescription{},
		&models.Interview{},
		&models.InterviewQuestion{},
		&models.InterviewAnswer{},
		&models.InterviewTranscript{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func registerRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, wsHandler *handlers.WSHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.InterviewRoutes(router, interviewHandler)
	routers.WSRoutes(router, wsHandler)
}

func main() {
	utils.InitLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	logger.Info("Configuration loaded", zap.String("provider", cfg.Provider))

	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	sessions := session.NewStore(rdb, cfg.SessionTTL)

	// question bank is optional; interviews fall back to generated questions
	var bank repositories.BankRepository
	var mongoClient *mongorepo.Client
	if cfg.MongoURI != "" {
		mongoClient, err = mongorepo.NewClient(context.Background(), cfg.MongoURI)
		if err != nil {
			logger.Warn("Failed to connect to question bank, bank fallback disabled", zap.Error(err))
		} else if bankDB, dbErr := mongoClient.DB(cfg.BankDBName); dbErr == nil {
			bank = mongorepo.NewBankRepo(bankDB)
		}
	}

	engine, err := llm.NewProvider(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize AI provider", zap.Error(err))
	}

	repo := &repositories.InterviewRepository{DB: db}
	questionProvider := questions.NewProvider(engine, repo, bank, logger)
	publisher := events.NewRedisPublisher(rdb, logger)
	notifier := notify.NewEmailNotifier(logger)

	cond := conductor.New(repo, sessions, engine, questionProvider, notifier, publisher, cfg.FrontendURL, logger)

	var transcriber speech.Transcriber
	var synthesizer speech.Synthesizer
	if cfg.SpeechServiceURL != "" {
		speechClient := speech.NewHTTPClient(cfg.SpeechServiceURL)
		transcriber = speechClient
		synthesizer = speechClient
	}

	connections := managers.NewConnectionManager(logger)
	interviewHandler := handlers.NewInterviewHandler(cond, logger)
	wsHandler := handlers.NewWSHandler(cond, connections, transcriber, synthesizer, cfg.JWTSecret, logger)
	healthHandler := handlers.NewHealthHandler(db, rdb, engine)

	sweeper := jobs.NewExpirySweeperJob(repo, cfg.ExpirySweepSchedule, cfg.ExpireAfter, logger)
	if err := sweeper.Start(); err != nil {
		logger.Error("Failed to start expiry sweeper", zap.Error(err))
	}

	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	router.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	router.Use(metrics.Middleware)

	registerRoutes(router, interviewHandler, wsHandler, healthHandler)

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logger.Info("Interview service starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	if mongoClient != nil {
		_ = mongoClient.Close(shutdownCtx)
	}
	_ = rdb.Close()

	logger.Info("Interview service stopped")
}
