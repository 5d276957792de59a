package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kantin/internal/app"
	"kantin/internal/apperr"
	"kantin/internal/config"
	"kantin/internal/database"
	"kantin/internal/logger"
	"kantin/internal/payment"
	"kantin/internal/services"
	"kantin/pkg/rabbitmq"
)

// kantin serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

func serve(cfg config.Config) error {
	logger.Setup(cfg.AppEnv)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	if cfg.MidtransServerKey == "" {
		slog.Warn("MIDTRANS_SERVER_KEY is not set; payments and notifications will fail")
	}
	gateway := payment.NewSnapClient(app.SnapConfig(cfg))

	// --- Initialize RabbitMQ Client ---
	var publisher services.EventPublisher
	if cfg.RabbitMQEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			// Orders and payments keep working without the broker.
			slog.Error("failed to initialize RabbitMQ client, continuing without events", "error", err)
		} else {
			defer mqClient.Close() // Ensure the connection is closed on exit
			publisher = mqClient
			if err := mqClient.ConsumeOrderEvents(consumeOrderEvent); err != nil {
				slog.Error("failed to start RabbitMQ consumer", "error", err)
			}
		}
	}

	fiberApp := app.New(cfg, db, gateway, publisher)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.AppPort, "env", cfg.AppEnv)
		serverErr <- fiberApp.Listen(cfg.AppPort)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	slog.Info("shutting down server")
	if err := fiberApp.Shutdown(); err != nil {
		slog.Error("error during Fiber shutdown", "error", err)
	}
	slog.Info("server gracefully stopped")
	return nil
}

// consumeOrderEvent drops malformed events instead of requeueing them forever.
func consumeOrderEvent(body []byte) error {
	err := services.HandleOrderEvent(body)
	if errors.Is(err, apperr.ErrInvalidInput) {
		return fmt.Errorf("%w: %v", rabbitmq.ErrDiscard, err)
	}
	return err
}
