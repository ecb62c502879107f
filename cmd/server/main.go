package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mkulima/config"
	"mkulima/database"
	"mkulima/pkg/logging"
	"mkulima/router"
)

type rootOptions struct {
	cfg config.AppConfig
	log *zap.Logger
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "mkulima",
		Short:         "Farmer advisory service: USSD menu, process records and crop suitability",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, envErr := config.Load()
			log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
				log.Warn("could not read .env", zap.Error(envErr))
			}
			if loc, err := time.LoadLocation(cfg.Timezone); err == nil {
				time.Local = loc
			}
			opts.cfg, opts.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error { return serve(cmd.Context(), opts) },
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server (default)",
			RunE:  func(cmd *cobra.Command, args []string) error { return serve(cmd.Context(), opts) },
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				db, err := database.Open(opts.cfg.DBDialect, opts.cfg.DSN())
				if err != nil {
					return err
				}
				opts.log.Info("schema migrated", zap.String("dialect", opts.cfg.DBDialect))
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
				return nil
			},
		},
		newInterpretCommand(opts),
	)
	return cmd
}

func newInterpretCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "interpret <trail>",
		Short: "Run one menu trail, e.g. 1*F100*secret, and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build(opts.cfg, opts.log)
			if err != nil {
				return err
			}
			defer a.close()
			out := a.interpreter.Interpret(cmd.Context(), args[0])
			fmt.Fprintln(cmd.OutOrStdout(), out.Status)
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return nil
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	log := opts.log
	log.Info("starting", opts.cfg.Fields()...)

	a, err := build(opts.cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	staticDir := opts.cfg.StaticDir
	if _, err := os.Stat(staticDir); err != nil {
		log.Warn("static dir not found, serving API only", zap.String("dir", staticDir))
		staticDir = ""
	}
	e := router.New(echo.New(), log, a.registry, staticDir, a.controllers)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("port", opts.cfg.Port))
		errc <- e.Start(":" + opts.cfg.Port)
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return e.Shutdown(shutdownCtx)
}
