package sqlstore

import "fmt"

// TableConfig configures the history table.
type TableConfig struct {
	// Table is the name of the history table, optionally schema-qualified.
	Table string
}

// DefaultTableConfig returns the default table configuration.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		Table: "migrations",
	}
}

// MigrationUp returns the SQL that creates the history table.
// The statement is idempotent.
func MigrationUp(dialect Dialect, config TableConfig) string {
	table := dialect.QuoteIdentifier(config.Table)

	switch dialect {
	case MySQL:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    migration VARCHAR(255) NOT NULL PRIMARY KEY,
    batch INT NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`, table)
	default:
		return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    migration VARCHAR(255) NOT NULL PRIMARY KEY,
    batch INTEGER NOT NULL
)`, table)
	}
}

// MigrationDown returns the SQL that drops the history table.
func MigrationDown(dialect Dialect, config TableConfig) string {
	return fmt.Sprintf(`DROP TABLE IF EXISTS %s`, dialect.QuoteIdentifier(config.Table))
}
