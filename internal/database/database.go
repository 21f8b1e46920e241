package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"arena-god/internal/config"
	"arena-god/internal/constants"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// driverName is go-sqlite3 with pragmas applied on every new connection.
// A plain PRAGMA exec would only reach whichever pooled connection ran it.
const driverName = "sqlite3_arena"

type pragma struct {
	name  string
	value string
}

var pragmas = []pragma{
	{"journal_mode", "WAL"},
	{"synchronous", "NORMAL"},
	{"busy_timeout", "5000"},
	{"cache_size", "-64000"},
	{"temp_store", "MEMORY"},
	{"mmap_size", "268435456"}, // https://sqlite.org/mmap.html
}

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, p := range pragmas {
				if _, err := conn.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value), nil); err != nil {
					return fmt.Errorf("failed to set PRAGMA %s: %w", p.name, err)
				}
			}
			return nil
		},
	})
}

func New(cfg *config.Config, logger zerolog.Logger) (*sql.DB, error) {
	return Open(cfg.DBPath, logger)
}

// Open connects to the SQLite file at path and applies pending migrations.
func Open(path string, logger zerolog.Logger) (*sql.DB, error) {
	logger = logger.With().Str("path", path).Logger()
	logger.Info().Msg("opening kv database")

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(constants.DBMaxOpenConns)
	db.SetMaxIdleConns(constants.DBMaxIdleConns)
	db.SetConnMaxLifetime(constants.DBConnMaxLifetime)
	db.SetConnMaxIdleTime(constants.DBMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	// The first connection runs the pragma hook, so a bad pragma fails here.
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Error().Err(err).Msg("failed to connect to database")
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := migrate(ctx, db, logger); err != nil {
		db.Close()
		logger.Error().Err(err).Msg("failed to run migrations")
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info().Msg("kv database ready")
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB, logger zerolog.Logger) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return err
	}
	for _, r := range results {
		logger.Info().
			Int64("version", r.Source.Version).
			Str("file", r.Source.Path).
			Dur("took", r.Duration).
			Msg("migration applied")
	}
	return nil
}
