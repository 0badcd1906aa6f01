package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/carbsfoods/penny-carbs-7/internal/cache"
	"github.com/carbsfoods/penny-carbs-7/internal/config"
	"github.com/carbsfoods/penny-carbs-7/internal/database"
	"github.com/carbsfoods/penny-carbs-7/internal/httpx"
	"github.com/carbsfoods/penny-carbs-7/internal/logger"
	"github.com/carbsfoods/penny-carbs-7/internal/messaging"
	"github.com/carbsfoods/penny-carbs-7/internal/metrics"
	"github.com/carbsfoods/penny-carbs-7/internal/services/cookorders"
	"github.com/carbsfoods/penny-carbs-7/internal/services/earnings"
	"github.com/carbsfoods/penny-carbs-7/internal/services/notification"
	"github.com/carbsfoods/penny-carbs-7/internal/services/pricing"
)

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (cook-api, notification-subscriber)")
		configPath = flag.String("config", "config.yaml", "Path to configuration file")
		port       = flag.Int("port", 0, "HTTP port (overrides config)")
		prefetch   = flag.Int("prefetch", 1, "RabbitMQ prefetch count")
	)
	flag.Parse()

	if *mode == "" {
		fmt.Fprintf(os.Stderr, "Error: --mode flag is required\n")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": cfg.Server.Port,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
		cancel()
	}()

	switch *mode {
	case "cook-api":
		if err := runCookAPI(ctx, cfg, log); err != nil {
			log.Error("service_failed", "Cook API failed", requestID, err, nil)
			os.Exit(1)
		}
	case "notification-subscriber":
		if err := runNotificationSubscriber(ctx, cfg, log, *prefetch); err != nil {
			log.Error("service_failed", "Notification subscriber failed", requestID, err, nil)
			os.Exit(1)
		}
	default:
		log.Error("validation_failed", fmt.Sprintf("Unknown mode: %s", *mode), requestID, nil, nil)
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

// runCookAPI runs the cook-facing HTTP API
func runCookAPI(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	db, err := database.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	log.Info("db_connected", "Connected to PostgreSQL database", requestID, nil)

	if err := db.RunMigrations(ctx, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)

	publisher := messaging.NewPublisher(conn, log)
	queryCache := cache.NewRedisCache(cfg.RedisAddr(), "cook-api")
	serverMetrics := metrics.NewServerMetrics("cook_api")

	cookOrdersService := cookorders.NewService(
		cookorders.NewPostgresRepository(db), queryCache, publisher, log)
	cookOrdersHandler := cookorders.NewHandler(cookOrdersService, log)

	earningsService := earnings.NewService(earnings.NewPostgresRepository(db), log)
	earningsHandler := earnings.NewHandler(earningsService, log)

	pricingService := pricing.NewService(pricing.NewPostgresRepository(db), log)
	pricingHandler := pricing.NewHandler(pricingService, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httpx.RequestLogger(log))
	r.Use(httpx.Metrics(serverMetrics))

	cookOrdersHandler.RegisterRoutes(r)
	earningsHandler.RegisterRoutes(r)
	pricingHandler.RegisterRoutes(r)

	r.Get("/health", healthHandler(db))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Info("server_listening", fmt.Sprintf("Cook API listening on port %d", cfg.Server.Port), requestID, map[string]interface{}{
			"port": cfg.Server.Port,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server_failed", "HTTP server failed", requestID, err, nil)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}

// runNotificationSubscriber consumes assignment status events
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", prefetch)
	subscriber := notification.NewSubscriber(consumer, log)

	return subscriber.Start(ctx)
}

// healthHandler reports service health based on the database connection
func healthHandler(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "cook-api",
		}

		if err := db.Ping(r.Context()); err != nil {
			response["status"] = "unhealthy"
			httpx.WriteJSON(w, http.StatusServiceUnavailable, response)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, response)
	}
}
