package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/solar-analytics/parquet-gate/internal/contracts"
	"github.com/solar-analytics/parquet-gate/internal/history"
	"github.com/solar-analytics/parquet-gate/internal/rules"
	"github.com/solar-analytics/parquet-gate/internal/table"
	"github.com/solar-analytics/parquet-gate/internal/validation"
	"github.com/solar-analytics/parquet-gate/pkg/config"
	"github.com/solar-analytics/parquet-gate/pkg/database"
	"github.com/solar-analytics/parquet-gate/pkg/logger"
	"github.com/solar-analytics/parquet-gate/pkg/redis"
)

// runLockTTL bounds how long a crashed run can block the next one
const runLockTTL = time.Hour

// deps holds everything a command needs. db, redis and store are nil
// until openStore; db stays nil when DATABASE_URL is unset.
type deps struct {
	cfg       *config.Config
	log       *logger.Logger
	rules     *rules.Rules
	rulesHash string
	db        *database.DB
	redis     *redis.Client
	store     contracts.RunStore
}

// loadConfig loads config honoring the global flags
func loadConfig() (*config.Config, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// initDeps loads config and rules without connecting to anything
func initDeps(rulesFile string) (*deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if rulesFile != "" {
		cfg.Validation.RulesFile = rulesFile
	}

	d := &deps{cfg: cfg, log: logger.New(cfg)}

	d.rules, err = rules.FromConfig(cfg.Validation)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	d.rulesHash, err = rules.Hash(d.rules)
	if err != nil {
		return nil, fmt.Errorf("hash rules: %w", err)
	}

	return d, nil
}

// initStoreDeps is initDeps plus the history store, for commands that
// record or read runs
func initStoreDeps(ctx context.Context, rulesFile string) (*deps, error) {
	d, err := initDeps(rulesFile)
	if err != nil {
		return nil, err
	}
	if err := d.openStore(ctx); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// openStore picks Postgres when configured, memory otherwise, and puts
// the Redis cache in front when enabled
func (d *deps) openStore(ctx context.Context) error {
	var store contracts.RunStore

	db, err := database.New(d.cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		d.log.Debug("DATABASE_URL not set, run history kept in memory")
		store = history.NewMemoryStore(history.DefaultMemoryCapacity)
	case err != nil:
		return fmt.Errorf("connect to database: %w", err)
	default:
		d.db = db
		if err := history.EnsureSchema(ctx, db.Pool); err != nil {
			return err
		}
		store = history.NewRepository(db.Pool)
	}

	d.redis, err = redis.New(d.cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	if d.redis.Enabled() {
		d.log.WithField("addr", d.redis.Addr()).Debug("Redis cache and run lock enabled")
		cache := redis.NewCache(d.redis, "gate")
		store = history.NewCachedStore(store, cache, d.cfg.Redis.TTL, d.log)
	}

	d.store = store
	return nil
}

// validator builds the validator for the loaded rules
func (d *deps) validator(workers int) *validation.Validator {
	if workers <= 0 {
		workers = d.cfg.Validation.Workers
	}
	return validation.New(table.NewParquetLoader(),
		validation.WithRules(*d.rules),
		validation.WithLogger(d.log),
		validation.WithWorkers(workers),
	)
}

// runner wraps the validator so every run is recorded. Requires openStore.
func (d *deps) runner(workers int) *history.Runner {
	return history.NewRunner(d.validator(workers), d.store, d.rulesHash,
		history.WithLock(redis.NewLock(d.redis, "gate", "validate", runLockTTL)),
		history.WithRunnerLogger(d.log),
	)
}

// persistent reports whether runs outlive the process
func (d *deps) persistent() bool {
	return d.db != nil
}

// Close releases connections
func (d *deps) Close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}
