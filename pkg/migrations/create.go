package migrations

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/huandu/xstrings"
	"github.com/spf13/afero"
)

// TimestampLayout is the time prefix of a migration file name.
const TimestampLayout = "2006_01_02_150405"

// MigrationType selects the template a new migration is created from.
type MigrationType string

const (
	// TypeDefault creates empty up and down sections.
	TypeDefault MigrationType = "default"

	// TypeCreate creates a table.
	TypeCreate MigrationType = "create"

	// TypeEdit alters an existing table.
	TypeEdit MigrationType = "edit"
)

var (
	// ErrInvalidName indicates a migration name that has no usable characters.
	ErrInvalidName = errors.New("invalid migration name")

	// ErrInvalidType indicates an unknown migration type.
	ErrInvalidType = errors.New("invalid migration type")

	// ErrTypeTableMismatch indicates --type was given without --table or vice versa.
	ErrTypeTableMismatch = errors.New("type and table must be used together")

	// ErrFileExists indicates the target migration file already exists.
	ErrFileExists = errors.New("migration file already exists")
)

//go:embed stubs/*.sql.tmpl
var stubs embed.FS

var snakeNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_]*$`)

// CreateOptions configures CreateMigration.
type CreateOptions struct {
	// Type is the template to use. Empty means DefaultType.
	Type MigrationType

	// DefaultType is used when Type and Table are both empty (default: TypeDefault).
	DefaultType MigrationType

	// Table is the table the create and edit templates refer to.
	Table string

	// Extension is the migration file extension (default: .sql).
	Extension string

	// Now supplies the file timestamp (default: time.Now).
	Now func() time.Time
}

// CreateMigration writes a new migration named name into dir and returns its path.
// The file name is <YYYY_MM_DD_HHMMSS>_<snake_case name><extension>.
// An existing file is never overwritten.
func CreateMigration(fsys afero.Fs, dir, name string, opts CreateOptions) (string, error) {
	if (opts.Type != "") != (opts.Table != "") {
		return "", ErrTypeTableMismatch
	}

	migrationType := opts.Type
	if migrationType == "" {
		migrationType = opts.DefaultType
	}
	if migrationType == "" {
		migrationType = TypeDefault
	}
	switch migrationType {
	case TypeDefault, TypeCreate, TypeEdit:
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidType, migrationType)
	}

	if opts.Table != "" {
		if err := validateIdentifier(opts.Table, "Table"); err != nil {
			return "", err
		}
	}

	snake := xstrings.ToSnakeCase(name)
	if !snakeNameRegex.MatchString(snake) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	ext := opts.Extension
	if ext == "" {
		ext = ".sql"
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	content, err := render(migrationType, name, opts.Table)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s%s", now().Format(TimestampLayout), snake, ext))
	exists, err := afero.Exists(fsys, path)
	if err != nil {
		return "", fmt.Errorf("failed to check %s: %w", path, err)
	}
	if exists {
		return "", fmt.Errorf("%w: %s", ErrFileExists, path)
	}

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create migration directory: %w", err)
	}

	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create migration file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		return "", fmt.Errorf("failed to write migration file: %w", err)
	}

	return path, nil
}

func render(migrationType MigrationType, name, table string) ([]byte, error) {
	stubName := fmt.Sprintf("%s.sql.tmpl", migrationType)
	tmpl, err := template.New(stubName).
		Funcs(sprig.TxtFuncMap()).
		ParseFS(stubs, "stubs/"+stubName)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s template: %w", migrationType, err)
	}

	var buf bytes.Buffer
	data := struct {
		Name  string
		Table string
	}{Name: name, Table: table}
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render %s template: %w", migrationType, err)
	}
	return buf.Bytes(), nil
}
