package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"wealthwise/internal/backend"
	"wealthwise/internal/cli"
	"wealthwise/internal/config"
	apphttp "wealthwise/internal/http"
	"wealthwise/internal/log"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the ledger web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadAndValidateConfig(*configPath)
			if err != nil {
				return err
			}
			logger := cli.SetupLogger(cfg, cmd.ErrOrStderr())

			ctx, stop := cli.SignalContext(cmd.Context())
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	store, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	publisher := backend.NewPublisher(ctx, cfg, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", log.FieldError, err)
		}
	}()

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:       ":" + cfg.Port,
		Store:      store.Store,
		Publisher:  publisher,
		CookieName: cfg.CookieName,
		Cookie: apphttp.CookieOptions{
			MaxAge: cfg.CookieMaxAge,
			Secure: cfg.CookieSecure,
		},
		CurrencySymbol:     cfg.CurrencySymbol,
		ReportsURL:         cfg.ReportsURL,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	}, logger)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting wealthwise server",
			"port", cfg.Port,
			log.FieldBackend, store.Type,
			log.FieldEvent, backend.Describe(publisher))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	m := srv.Metrics()
	logger.Info("Server stopped gracefully", "requests", m.TotalRequests)
	return nil
}
