// Package migrations writes migration files: the history table DDL for
// PostgreSQL, MySQL/MariaDB and SQLite, and new module migrations created
// from the built-in default, create and edit templates.
package migrations
