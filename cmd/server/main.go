package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cashora/backend/docs"
	"github.com/cashora/backend/internal/audit"
	"github.com/cashora/backend/internal/config"
	"github.com/cashora/backend/internal/database"
	"github.com/cashora/backend/internal/documents"
	"github.com/cashora/backend/internal/events"
	"github.com/cashora/backend/internal/handlers"
	"github.com/cashora/backend/internal/logging"
	"github.com/cashora/backend/internal/metrics"
	"github.com/cashora/backend/internal/notify"
	"github.com/cashora/backend/internal/services"
	"github.com/cashora/backend/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Cashora API
// @version 1.0
// @description Admin and user portal for deposits, withdrawals and transfers
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	bindErr := config.BindEnv()
	cfg := config.Load()

	log, err := logging.NewLoggerFromEnv()
	if err != nil {
		log = logging.NewNoOpLogger()
	}
	logging.SetGlobal(log)
	defer log.Sync()

	if bindErr != nil {
		log.Info("config file not found, using environment and defaults", zap.Error(bindErr))
	}

	docs.SwaggerInfo.Host = "localhost:" + cfg.Port

	ctx := context.Background()

	// Nil when unreachable: logout then skips the blacklist.
	redisClient := database.InitRedis(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}

	st := store.NewMemoryStore()
	authService := services.NewAuthService(st, redisClient, services.AuthConfigFromViper())

	if err := seed(st, authService, cfg); err != nil {
		log.Fatal("failed to seed store", zap.Error(err))
	}

	var settingsStore store.SettingsStore = store.NewMemorySettingsStore()
	if cfg.SettingsBackend == "postgres" {
		db, err := database.InitDB(ctx)
		if err != nil {
			log.Fatal("failed to connect settings database", zap.Error(err))
		}
		defer db.Close()

		pg := store.NewPostgresSettingsStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal("failed to prepare settings schema", zap.Error(err))
		}
		settingsStore = pg
	}

	var chats store.ChatStore = store.NewMemoryChatStore(cfg.Support.MaxHistorySize)
	if cfg.ChatBackend == "redis" {
		if redisClient != nil {
			chats = store.NewRedisChatStore(redisClient, cfg.Support.HistoryTTL, cfg.Support.MaxHistorySize)
		} else {
			log.Warn("redis chat backend requested but redis is unavailable, keeping history in memory")
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.Info("publishing status events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer publisher.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewPrometheusCollector("cashora")
	if err := collector.Register(registry); err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}

	mailer := notify.NewBreakerMailer(notify.NewLogMailer(log), notify.DefaultBreakerConfig())
	notifier := notify.NewNotifier(mailer, cfg.MailFrom, collector)
	auditLog := audit.NewLogger(log)

	docStore, err := documents.NewStore(cfg.UploadsDir)
	if err != nil {
		log.Fatal("failed to prepare uploads directory", zap.Error(err))
	}

	settingsService, err := services.NewSettingsService(ctx, settingsStore, cfg.Settings, auditLog)
	if err != nil {
		log.Fatal("failed to load system settings", zap.Error(err))
	}
	requestService := services.NewRequestService(st, settingsService, notifier, publisher, auditLog, collector)
	dashboardService := services.NewDashboardService(st)

	r := handlers.NewRouter(handlers.Router{
		Verifier:      authService,
		Auth:          handlers.NewAuthHandler(authService, docStore),
		Registrations: handlers.NewRegistrationHandler(services.NewRegistrationService(st, notifier, publisher, auditLog)),
		Users:         handlers.NewUserHandler(services.NewUserService(st, settingsService, auditLog)),
		Banks:         handlers.NewBankHandler(services.NewBankService(st, auditLog)),
		Requests:      handlers.NewRequestHandler(requestService, docStore),
		Admin: handlers.NewAdminHandler(
			dashboardService,
			services.NewTransactionService(st),
			settingsService,
			services.NewEmailService(st, notifier, auditLog),
		),
		Portal:     handlers.NewPortalHandler(dashboardService, services.NewSupportService(chats, cfg.Support, collector)),
		UploadsDir: docStore.Dir(),
	})

	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("server stopped")
}

// seed loads the demo dataset with freshly hashed credentials.
func seed(st *store.MemoryStore, auth *services.AuthService, cfg *config.AppConfig) error {
	adminHash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	demoHash, err := auth.HashPassword(cfg.DemoPassword)
	if err != nil {
		return err
	}
	return store.Seed(st, store.SeedOptions{
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: adminHash,
		DemoPasswordHash:  demoHash,
	})
}
