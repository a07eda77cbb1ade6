// internal/data/store.go
package data

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // Register goqu's postgres dialect.
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // Register goqu's sqlite3 dialect.
	_ "github.com/jackc/pgx/v5/stdlib"                  // Register the "pgx" driver with database/sql.
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // Register the "postgres" driver with database/sql.
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // Register the "sqlite" driver with database/sql.
)

//go:embed migrations
var migrations embed.FS

// ErrUnsupportedDriver is returned by Open for a driver name it does not know.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// backend describes how one database/sql driver is spoken to.
type backend struct {
	goquDialect  string
	gooseDialect goose.Dialect
	migrations   string
	returning    bool // INSERT ... RETURNING is used to read the new id
}

var backends = map[string]backend{
	"sqlite":   {goquDialect: "sqlite3", gooseDialect: goose.DialectSQLite3, migrations: "migrations/sqlite"},
	"postgres": {goquDialect: "postgres", gooseDialect: goose.DialectPostgres, migrations: "migrations/postgres", returning: true},
	"pgx":      {goquDialect: "postgres", gooseDialect: goose.DialectPostgres, migrations: "migrations/postgres", returning: true},
}

// StoreConfig selects the database and sizes its connection pool.
type StoreConfig struct {
	Driver       string        // sqlite, postgres or pgx
	DSN          string        // file path for sqlite, connection URL otherwise
	MaxOpenConns int           // ignored for sqlite, which always uses one connection
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

// Store owns the connection pool and the books schema.
type Store struct {
	db      *sqlx.DB
	backend backend
	dialect goqu.DialectWrapper
	logger  *slog.Logger
}

// Open opens a connection pool for cfg, then pings the database with a
// 5-second timeout to confirm it is reachable.
func Open(ctx context.Context, cfg StoreConfig, logger *slog.Logger) (*Store, error) {
	b, ok := backends[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Driver)
	}

	dsn := cfg.DSN
	if cfg.Driver == "sqlite" {
		dsn = sqliteDSN(dsn)
	}

	// sqlx.Open only validates its arguments; it does not actually connect yet.
	db, err := sqlx.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	if cfg.Driver == "sqlite" {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY between our own sessions.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	db.SetConnMaxIdleTime(cfg.MaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}

	return &Store{
		db:      db,
		backend: b,
		dialect: goqu.Dialect(b.goquDialect),
		logger:  logger,
	}, nil
}

// sqliteDSN adds the pragmas the service relies on unless the caller set their own.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Initialize creates the books table if it does not exist yet. It is safe to
// call on every start; an error means the service must not serve requests.
func (s *Store) Initialize(ctx context.Context) error {
	fsys, err := fs.Sub(migrations, s.backend.migrations)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	provider, err := goose.NewProvider(s.backend.gooseDialect, s.db.DB, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	for _, r := range results {
		s.logger.Info("applied migration",
			slog.String("file", r.Source.Path),
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}

// Session runs fn as one unit of work. The transaction is committed when fn
// returns nil and rolled back when it returns an error or panics; the
// connection goes back to the pool on every path.
func (s *Store) Session(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("rollback after panic failed", slog.String("error", rbErr.Error()))
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback session: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Ping checks that the database is still reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases every connection in the pool.
func (s *Store) Close() error {
	return s.db.Close()
}
