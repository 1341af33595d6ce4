package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/iwvelando/fantasy-f1-optimiser/internal/config"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/metrics"
	"github.com/iwvelando/fantasy-f1-optimiser/internal/server"
	"github.com/iwvelando/fantasy-f1-optimiser/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var (
		serverConfigPath string
		address          string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solve API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadServerConfig(serverConfigPath, a.conf.Server)
			if err != nil {
				return fmt.Errorf("invalid server configuration: %w", err)
			}
			if address != "" {
				cfg.Address = address
			}

			repo, err := a.openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()

			m := metrics.New()
			engine := a.newEngine(m)
			runner, err := a.newComparer(engine)
			if err != nil {
				return err
			}

			handler, err := server.NewHandler(a.logger, server.Dependencies{
				Engine:      engine,
				Comparer:    runner,
				Repository:  repo,
				Projections: a.projectionStore(),
				Metrics:     m,
			}, cfg.BodySizeBytes(), a.version)
			if err != nil {
				return err
			}

			return listenAndServe(cmd.Context(), a.logger, &http.Server{
				Addr:              cfg.Address,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			})
		},
	}

	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to an optional server configuration file")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")
	return cmd
}

// listenAndServe runs srv until ctx is cancelled, then shuts it down.
func listenAndServe(ctx context.Context, logger *zap.Logger, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "cmd.serve"),
			zap.String("address", srv.Addr),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("shutting down server", zap.String("op", "cmd.serve"))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
