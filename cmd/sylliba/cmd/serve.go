package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nadzzz/sylliba/internal/attachment"
	"github.com/nadzzz/sylliba/internal/gateway"
	"github.com/nadzzz/sylliba/internal/health"
	"github.com/nadzzz/sylliba/internal/language"
	"github.com/nadzzz/sylliba/internal/session"
	"github.com/nadzzz/sylliba/internal/store"
	"github.com/nadzzz/sylliba/internal/transport"
	discordtransport "github.com/nadzzz/sylliba/internal/transport/discord"
	grpctransport "github.com/nadzzz/sylliba/internal/transport/grpc"
	httptransport "github.com/nadzzz/sylliba/internal/transport/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	slog.Info("sylliba starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Interactions must be answered within seconds, so models load before
	// the bot connects.
	identifier, err := newIdentifier(cfg, language.WithPreloadedModels())
	if err != nil {
		return err
	}
	slog.Info("language detector ready",
		"languages", identifier.Registry().Len(),
		"preloaded", identifier.Preloaded())

	gw := gateway.New(cfg.Translation)
	pipeline := attachment.New(cfg.Attachments.Dir)

	healthServer := health.New(cfg.Server.HealthPort)

	// The database only feeds readiness.
	if cfg.Database.URL != "" {
		db, err := store.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()
		healthServer.AddCheck("database", db.Ping)
	}

	// Initialize transports. Discord is always on; the others are optional.
	bot, err := discordtransport.New(cfg.Discord)
	if err != nil {
		return err
	}
	controller := session.New(identifier, gw, pipeline, bot,
		session.WithTimeout(cfg.Session.SelectionTimeout))
	bot.Bind(controller)
	healthServer.AddCheck("discord", bot.Check)

	transports := []transport.Transport{bot}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port, identifier, gw))
	}
	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, healthServer))
	}

	// Start health check server.
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	errs := make(chan error, len(transports))
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
				errs <- fmt.Errorf("%s: %w", t.Name(), err)
				cancel()
			}
		}(t)
	}

	healthServer.SetReady(true)
	slog.Info("sylliba ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	healthServer.SetReady(false)
	slog.Info("shutdown signal received, draining...")

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	controller.Wait()
	slog.Info("sylliba stopped")

	select {
	case err := <-errs:
		return err
	default:
		return nil
	}
}
