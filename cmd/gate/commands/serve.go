package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/solar-analytics/parquet-gate/internal/api"
	"github.com/solar-analytics/parquet-gate/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the HTTP API.

Endpoints:
  GET  /health                   - Health check
  GET  /api/validation/latest    - Latest run
  GET  /api/validation/runs      - Recent runs (?limit=N)
  GET  /api/validation/runs/{id} - One run
  POST /api/validation/run       - Validate GATE_INPUT_DIR now
  GET  /api/validation/rules     - Effective rules
  GET  /api/scheduler/jobs       - Scheduled job stats (--with-scheduler)
  GET  /api/scheduler/jobs/{name}/history

Example:
  go run ./cmd/gate serve
  go run ./cmd/gate serve --port 8090 --with-scheduler`,
	RunE: runServe,
}

var (
	servePort          string
	serveWithScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API port (default PORT)")
	serveCmd.Flags().BoolVar(&serveWithScheduler, "with-scheduler", false, "also run the scheduled gate")
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := initStoreDeps(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer d.Close()

	if servePort != "" {
		d.cfg.Port = servePort
	}

	validationHandler := handlers.NewValidationHandler(
		d.runner(0), d.store, d.cfg.Validation.InputDir, *d.rules, d.rulesHash, d.log)

	var schedulerHandler *handlers.SchedulerHandler
	if serveWithScheduler {
		sched, err := newScheduler(d)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		schedulerHandler = handlers.NewSchedulerHandler(sched)
	}

	var health api.HealthChecker
	if d.db != nil {
		health = d.db
	}
	router := api.NewRouter(validationHandler, schedulerHandler, health, d.log)
	server := api.New(d.cfg, d.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	d.log.Info("Server stopped")
	return nil
}
