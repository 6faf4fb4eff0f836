package migrations

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/getpup/modular/store/sqlstore"
	"github.com/spf13/afero"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// validateIdentifier ensures an identifier contains only safe characters for SQL.
// A schema-qualified name ("schema.table") is checked part by part.
func validateIdentifier(name, fieldName string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	for _, part := range strings.Split(name, ".") {
		if !identifierRegex.MatchString(part) {
			return fmt.Errorf("%s must start with a letter and contain only letters, numbers, and underscores (got: %s)", fieldName, name)
		}
	}
	return nil
}

// Config configures history table migration generation.
type Config struct {
	// OutputFolder is the directory where the migration file will be written
	OutputFolder string

	// OutputFilename is the name of the migration file
	OutputFilename string

	// Table is the history table name, optionally schema-qualified
	Table string

	// Fs is the filesystem the file is written to (default: OS filesystem)
	Fs afero.Fs
}

// DefaultConfig returns the default configuration for history table migrations.
// The default folder is outside the scanned migration directories so the
// generated file is applied by deployment tooling, not by the migrator itself.
func DefaultConfig() Config {
	return Config{
		OutputFolder:   filepath.Join("database", "schema"),
		OutputFilename: fmt.Sprintf("%s_create_migrations_table.sql", time.Now().Format(TimestampLayout)),
		Table:          sqlstore.DefaultTableConfig().Table,
	}
}

// HistoryTableSQL returns the history table migration in the
// "-- +migrate Up/Down" format for the given dialect.
func HistoryTableSQL(dialect sqlstore.Dialect, table string) (string, error) {
	if err := validateIdentifier(table, "Table"); err != nil {
		return "", fmt.Errorf("invalid configuration: %w", err)
	}

	var database string
	switch dialect {
	case sqlstore.Postgres:
		database = "PostgreSQL"
	case sqlstore.MySQL:
		database = "MySQL/MariaDB"
	case sqlstore.SQLite:
		database = "SQLite"
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}

	tableConfig := sqlstore.TableConfig{Table: table}
	return fmt.Sprintf(`-- Migration history table
-- Generated: %s
-- Database: %s

-- +migrate Up
%s;

-- +migrate Down
%s;
`,
		time.Now().Format(time.RFC3339),
		database,
		sqlstore.MigrationUp(dialect, tableConfig),
		sqlstore.MigrationDown(dialect, tableConfig),
	), nil
}

// Generate writes the history table migration for dialect.
func Generate(dialect sqlstore.Dialect, config *Config) error {
	sql, err := HistoryTableSQL(dialect, config.Table)
	if err != nil {
		return err
	}

	fs := config.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	// Ensure output folder exists
	if err := fs.MkdirAll(config.OutputFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	outputPath := filepath.Join(config.OutputFolder, config.OutputFilename)
	if err := afero.WriteFile(fs, outputPath, []byte(sql), 0o600); err != nil {
		return fmt.Errorf("failed to write migration file: %w", err)
	}

	return nil
}

// GeneratePostgres generates a PostgreSQL migration file.
func GeneratePostgres(config *Config) error {
	return Generate(sqlstore.Postgres, config)
}

// GenerateMySQL generates a MySQL/MariaDB migration file.
func GenerateMySQL(config *Config) error {
	return Generate(sqlstore.MySQL, config)
}

// GenerateSQLite generates a SQLite migration file.
func GenerateSQLite(config *Config) error {
	return Generate(sqlstore.SQLite, config)
}
