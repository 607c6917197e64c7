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

	"campus-canteen/internal/catalog"
	"campus-canteen/internal/config"
	"campus-canteen/internal/database"
	"campus-canteen/internal/gateway"
	"campus-canteen/internal/identity"
	"campus-canteen/internal/ledger"
	"campus-canteen/internal/logger"
	"campus-canteen/internal/messaging"
	"campus-canteen/internal/payments"
	"campus-canteen/internal/pricing"
	"campus-canteen/internal/services/notification"
	"campus-canteen/internal/services/order"
)

func main() {
	var (
		mode       = flag.String("mode", "", "Service mode (order-service, notification-subscriber)")
		port       = flag.Int("port", 3000, "HTTP port")
		configPath = flag.String("config", "config.yaml", "Path to config file")
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

	log := logger.New(*mode)
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": *port,
	})

	// Graceful shutdown
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
	case "order-service":
		if err := runOrderService(ctx, cfg, log, *port); err != nil {
			log.Error("service_failed", "Order service failed", requestID, err, nil)
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

// runOrderService wires and runs the order placement/confirmation HTTP service
func runOrderService(ctx context.Context, cfg *config.Config, log *logger.Logger, port int) error {
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

	// Process-wide collaborators, constructed once and passed explicitly
	resolver := identity.NewProviderClient(cfg.Identity, log)
	reader := catalog.NewPostgresReader(db)
	engine := pricing.NewEngine(reader)
	gatewayClient := gateway.NewClient(cfg.Gateway, log)
	verifier := payments.NewVerifier(cfg.Gateway.KeySecret)
	orderLedger := ledger.NewPostgresLedger(db, cfg.Gateway.Currency, log)

	service := order.NewService(resolver, reader, engine, gatewayClient, verifier, orderLedger, publisher, cfg.Gateway.Currency, log)
	handler := order.NewHandler(service, log)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler.SetupRoutes(),
	}

	go func() {
		log.Info("service_started", fmt.Sprintf("Order service started on port %d", port), requestID, map[string]interface{}{
			"port": port,
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

// runNotificationSubscriber runs the paid-order notification consumer
func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	conn, err := messaging.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging: %w", err)
	}
	defer conn.Close()

	consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", prefetch)
	subscriber := notification.NewSubscriber(consumer, log)
	defer subscriber.Close()

	return subscriber.Start(ctx)
}
