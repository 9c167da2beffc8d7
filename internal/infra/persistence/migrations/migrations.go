// Package migrations embeds the SQL schema for every supported dialect and
// applies it with goose.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"

	"tasktrack/internal/errors"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Dialect names a migration set.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) goose() (goose.Dialect, error) {
	switch d {
	case Postgres:
		return goose.DialectPostgres, nil
	case SQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", errors.Errorf("unsupported migration dialect %q", d)
	}
}

// Up applies all pending migrations for the dialect and returns how many ran.
func Up(ctx context.Context, db *sql.DB, dialect Dialect) (int, error) {
	gooseDialect, err := dialect.goose()
	if err != nil {
		return 0, err
	}

	fsys, err := fs.Sub(files, string(dialect))
	if err != nil {
		return 0, errors.Wrap(err, "failed to open embedded migrations")
	}

	provider, err := goose.NewProvider(gooseDialect, db, fsys)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create migration provider")
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to apply migrations")
	}

	return len(results), nil
}
