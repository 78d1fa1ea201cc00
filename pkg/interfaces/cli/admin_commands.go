package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	kitchencsv "github.com/vsinha/kitchenplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/kitchenplan/pkg/infrastructure/repositories/postgres"
	"github.com/vsinha/kitchenplan/pkg/infrastructure/repositories/postgres/migrations"
	"github.com/vsinha/kitchenplan/pkg/interfaces/api"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planning API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			log := opts.logger

			if cfg.Database.URL != "" {
				if err := migrations.Migrate(cfg.Database.URL, log); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := opts.newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if !log.IsLevelEnabled(logrus.DebugLevel) {
				gin.SetMode(gin.ReleaseMode)
			}
			handler := api.NewHandler(app.Planner, app.Orchestrator, app.Estimator, log)
			srv := &http.Server{
				Addr:    cfg.HTTP.Addr,
				Handler: api.NewRouter(handler),
			}

			errCh := make(chan error, 1)
			go func() {
				log.WithField("addr", cfg.HTTP.Addr).Info("server starting")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("failed to start server: %w", err)
			case <-ctx.Done():
			}

			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from http.addr)")
	opts.v.BindPFlag("http.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.init(); err != nil {
				return err
			}
			if opts.cfg.Database.URL == "" {
				return fmt.Errorf("database.url is required")
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrations.Migrate(opts.cfg.Database.URL, opts.logger)
			},
		},
		&cobra.Command{
			Use:   "down [STEPS]",
			Short: "Roll back migrations (default one step)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					if _, err := fmt.Sscanf(args[0], "%d", &steps); err != nil || steps < 1 {
						return fmt.Errorf("invalid step count %q", args[0])
					}
				}
				return migrations.Rollback(opts.cfg.Database.URL, steps, opts.logger)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, dirty, err := migrations.Version(opts.cfg.Database.URL)
				if err != nil {
					return err
				}
				fmt.Fprintf(opts.out, "version %d (dirty: %t)\n", version, dirty)
				return nil
			},
		},
	)

	return cmd
}

func newSeedCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [DIR]",
		Short: "Load a scenario fixture directory into a development database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cfg.Database.URL == "" {
				return fmt.Errorf("database.url is required")
			}
			dir := cfg.Scenario.Dir
			if len(args) == 1 {
				dir = args[0]
			}

			scenario, err := kitchencsv.NewLoader().LoadScenario(dir)
			if err != nil {
				return fmt.Errorf("failed to load scenario: %w", err)
			}

			if err := migrations.Migrate(cfg.Database.URL, opts.logger); err != nil {
				return err
			}

			pool, err := postgres.NewPool(cmd.Context(), postgres.PoolConfig{
				URL:             cfg.Database.URL,
				MaxConns:        cfg.Database.MaxConns,
				MaxConnLifetime: cfg.Database.MaxConnLifetime,
			})
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.ImportScenario(cmd.Context(), pool, scenario); err != nil {
				return err
			}

			opts.logger.WithFields(logrus.Fields{
				"dir":         dir,
				"events":      len(scenario.Events),
				"recipes":     len(scenario.Recipes),
				"ingredients": len(scenario.Ingredients),
				"suppliers":   len(scenario.Suppliers),
			}).Info("scenario seeded")
			return nil
		},
	}
}
