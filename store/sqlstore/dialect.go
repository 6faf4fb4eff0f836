package sqlstore

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// Dialect selects the SQL flavour used for the history table.
// Its value is also the database/sql driver name.
type Dialect string

const (
	// Postgres uses lib/pq.
	Postgres Dialect = "postgres"

	// MySQL uses go-sql-driver/mysql. MariaDB is supported through the same driver.
	MySQL Dialect = "mysql"

	// SQLite uses mattn/go-sqlite3.
	SQLite Dialect = "sqlite3"
)

// ParseDialect maps a driver name (or a common alias) to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgsql":
		return Postgres, nil
	case "mysql", "mariadb":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q: supported drivers are postgres, mysql, sqlite3", name)
	}
}

// Placeholder returns the bind parameter for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// QuoteIdentifier quotes a table name. A schema-qualified name
// ("schema.table") is quoted part by part.
func (d Dialect) QuoteIdentifier(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		if d == MySQL {
			parts[i] = "`" + strings.ReplaceAll(part, "`", "``") + "`"
		} else {
			parts[i] = pq.QuoteIdentifier(part)
		}
	}
	return strings.Join(parts, ".")
}
