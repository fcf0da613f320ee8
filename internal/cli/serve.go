package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/raysh454/hfdl/internal/app"
	"github.com/raysh454/hfdl/internal/logging"
	"github.com/raysh454/hfdl/internal/server"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the script generator over HTTP",
		Long: `Start the HTTP API. GET /?hf_path=<repo>&domain=<mirror> answers with a
download script named dl.sh. Generated scripts are deleted on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Log.Verbose, cfg.Log.JSON, "hfdl")
			return runServe(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().String("addr", app.DefaultConfig().ListenAddr, "HTTP listen address")
	addServiceFlags(cmd.Flags())

	return cmd
}

func runServe(ctx context.Context, cfg *app.Config, logger logging.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, server.Config{AppConfig: cfg, Logger: logger})
	if err != nil {
		return err
	}
	hs := srv.HTTPServer()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening",
			logging.Field{Key: "addr", Value: hs.Addr},
			logging.Field{Key: "script_dir", Value: srv.Service().Store().Dir()})
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return hs.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if cerr := srv.Close(); cerr != nil {
		logger.Warn("cleanup on shutdown", logging.Field{Key: "error", Value: cerr})
		err = errors.Join(err, cerr)
	}
	return err
}
