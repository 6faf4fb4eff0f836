package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/getpup/modular"
	"github.com/rubenv/sql-migrate/sqlparse"
	"github.com/spf13/afero"
)

// Config configures the SQL loader.
type Config struct {
	// DB is the database the migrations run against (required).
	DB *sql.DB

	// Fs is the filesystem migration files are read from (default: OS filesystem).
	Fs afero.Fs

	// Extension is the migration file extension (default: ".sql").
	Extension string

	// Logger is an optional logger for observability.
	Logger modular.Logger
}

// SQLLoader loads migration files made of "-- +migrate Up" and
// "-- +migrate Down" sections and runs them against a database.
type SQLLoader struct {
	config Config
}

// Compile-time check that SQLLoader implements Loader.
var _ Loader = (*SQLLoader)(nil)

// New creates a new SQLLoader with the given configuration.
// It applies default values for Fs and Extension if unset.
func New(cfg Config) *SQLLoader {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Extension == "" {
		cfg.Extension = ".sql"
	}

	return &SQLLoader{
		config: cfg,
	}
}

// Load reads and parses the migration file for rec.
// Returns a *modular.MissingFileError if the file does not exist.
func (l *SQLLoader) Load(ctx context.Context, rec modular.Record) (Unit, error) {
	path := rec.Path(l.config.Extension)

	f, err := l.config.Fs.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &modular.MissingFileError{Identifier: rec.Identifier}
		}
		return nil, fmt.Errorf("failed to open migration %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := sqlparse.ParseMigration(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse migration %s: %w", path, err)
	}

	if l.config.Logger != nil {
		l.config.Logger.Debug(ctx, "migration loaded",
			"migration", rec.Identifier,
			"upStatements", len(parsed.UpStatements),
			"downStatements", len(parsed.DownStatements))
	}

	return &sqlUnit{
		id:     rec.Identifier,
		parsed: parsed,
		db:     l.config.DB,
	}, nil
}

type sqlUnit struct {
	id     modular.Identifier
	parsed *sqlparse.ParsedMigration
	db     *sql.DB
}

func (u *sqlUnit) Identifier() modular.Identifier {
	return u.id
}

func (u *sqlUnit) Up(ctx context.Context) error {
	return u.run(ctx, u.parsed.UpStatements, !u.parsed.DisableTransactionUp)
}

// Down with no statements is a no-op.
func (u *sqlUnit) Down(ctx context.Context) error {
	return u.run(ctx, u.parsed.DownStatements, !u.parsed.DisableTransactionDown)
}

func (u *sqlUnit) Statements(direction modular.Direction) []string {
	var statements []string
	if direction == modular.DirectionDown {
		statements = u.parsed.DownStatements
	} else {
		statements = u.parsed.UpStatements
	}

	out := make([]string, len(statements))
	for i, stmt := range statements {
		out[i] = strings.TrimSpace(stmt)
	}
	return out
}

func (u *sqlUnit) run(ctx context.Context, statements []string, useTx bool) error {
	if len(statements) == 0 {
		return nil
	}
	if u.db == nil {
		return fmt.Errorf("no database configured for migration %s", u.id)
	}

	if !useTx {
		for i, stmt := range statements {
			if _, err := u.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("statement %d: %w", i+1, err)
			}
		}
		return nil
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
