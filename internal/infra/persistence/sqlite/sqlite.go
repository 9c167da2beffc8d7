// Package sqlite opens the embedded SQLite store used for local development
// and repository tests. It is driven by the pure-Go glebarez driver so no cgo
// toolchain is needed.
package sqlite

import (
	"context"
	"log/slog"
	"time"

	"tasktrack/config"
	"tasktrack/internal/domain/lifecycle"
	"tasktrack/internal/errors"
	"tasktrack/internal/infra/persistence/gormlog"
	"tasktrack/internal/infra/persistence/migrations"

	"github.com/glebarez/sqlite"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the configured SQLite file and registers ping, migrate and close
// lifecycle hooks.
func New(params Params) (*gorm.DB, error) {
	path := ""
	if params.Config.Database != nil && params.Config.Database.SQLite != nil {
		path = params.Config.Database.SQLite.Path
	}

	db, err := Open(path, params.Logger, params.Config)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get SQLite sql.DB")
	}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping SQLite")
			}

			if params.Config.Database.Migrate {
				applied, err := migrations.Up(ctx, sqlDB, migrations.SQLite)
				if err != nil {
					return err
				}
				params.Logger.InfoContext(ctx, "SQLite schema migrated",
					slog.String("path", path),
					slog.Int("applied", applied),
				)
			}

			return nil
		},
		OnStop: func(_ context.Context) error {
			return sqlDB.Close()
		},
	})

	return db, nil
}

// Open returns a *gorm.DB for the SQLite file at path with foreign keys
// enforced and driver errors translated to GORM's sentinel errors.
func Open(path string, logger *slog.Logger, cfg *config.Config) (*gorm.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path must be provided")
	}

	db, err := gorm.Open(sqlite.Open(path+pragmas), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlog.New(logger, cfg),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open SQLite database")
	}

	return db, nil
}
