// Package bootstrap builds an inventory store from configuration. Both the
// HTTP server and the command line open their store through it.
package bootstrap

import (
	"errors"
	"fmt"

	"gudang/internal/config"
	"gudang/internal/repositories"
	"gudang/internal/services"
	"gudang/pkg/logger"
	"gudang/pkg/rabbitmq"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store is an opened inventory plus the resources behind it.
type Store struct {
	Inventory *services.InventoryService
	closers   []func() error
}

// Close releases the database connection and the broker client, if any.
func (s *Store) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Options tune Open.
type Options struct {
	// Publish connects to RABBITMQ_URL and forwards every change. Ignored when
	// the URL is empty.
	Publish bool
}

// Open creates the repositories selected by cfg, loads the persisted
// inventory and returns the ready store.
func Open(cfg *config.Config, opts Options) (*Store, error) {
	st := &Store{}

	repo, err := openProductRepository(cfg, st)
	if err != nil {
		return nil, err
	}
	changes := services.NewChangeLog(repositories.NewFileChangeLogRepository(cfg.LogFile), nil)

	svcOpts := []services.Option{
		services.WithCapacity(cfg.Capacity),
		services.WithLogger(logger.Logger()),
	}
	if opts.Publish && cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue})
		if err != nil {
			logger.Warn().Err(err).Msg("Change events disabled")
		} else {
			st.closers = append(st.closers, mq.Close)
			svcOpts = append(svcOpts, services.WithPublisher(mq))
		}
	}

	st.Inventory = services.NewInventoryService(repo, changes, svcOpts...)
	loaded, skipped := st.Inventory.Load()
	logger.Info().
		Str("driver", cfg.StorageDriver).
		Int("loaded", loaded).
		Int("skipped", skipped).
		Int("capacity", st.Inventory.Capacity()).
		Msg("Inventory loaded")
	return st, nil
}

func openProductRepository(cfg *config.Config, st *Store) (repositories.ProductRepository, error) {
	var dialector gorm.Dialector
	switch cfg.StorageDriver {
	case config.DriverFile:
		return repositories.NewFileProductRepository(cfg.DataFile), nil
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	repo, err := repositories.NewGORMProductRepository(db)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	st.closers = append(st.closers, sqlDB.Close)
	return repo, nil
}
