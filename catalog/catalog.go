// Package catalog discovers migration files across the default migration
// directory and every module migration directory, producing one globally
// ordered list keyed by identifier.
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/getpup/modular"
	"github.com/spf13/afero"
)

// DefaultExtension is the file extension of migration files.
const DefaultExtension = ".sql"

// namePattern matches "<YYYY_MM_DD_HHMMSS>_<slug>" before the extension.
// The timestamp is fixed width so identifier order is chronological.
var namePattern = regexp.MustCompile(`^\d{4}_\d{2}_\d{2}_\d{6}_[A-Za-z0-9][A-Za-z0-9_\-]*$`)

// Catalog is the ordered set of migrations found by a scan.
type Catalog struct {
	records []modular.Record
	index   map[modular.Identifier]modular.Record
}

// Option configures a scan.
type Option func(*scanConfig)

type scanConfig struct {
	extension string
}

// WithExtension sets the migration file extension (default: ".sql").
func WithExtension(ext string) Option {
	return func(c *scanConfig) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.extension = ext
	}
}

// Scan lists migration files in dirs and orders them by identifier,
// ascending or, when reverse is set, descending.
//
// Files that do not look like migrations are skipped, as are sub-directories
// and directories that do not exist. Scanning no directories yields an empty
// catalog. Two files with the same identifier produce a
// *modular.DuplicateIdentifierError.
func Scan(fsys afero.Fs, dirs []string, reverse bool, opts ...Option) (*Catalog, error) {
	cfg := scanConfig{extension: DefaultExtension}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Catalog{
		records: make([]modular.Record, 0),
		index:   make(map[modular.Identifier]modular.Record),
	}

	for _, dir := range dirs {
		entries, err := afero.ReadDir(fsys, dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read migration directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			id, ok := identifierOf(entry.Name(), cfg.extension)
			if !ok {
				continue
			}

			if existing, dup := c.index[id]; dup {
				return nil, &modular.DuplicateIdentifierError{
					Identifier:      id,
					FirstDirectory:  existing.Directory,
					SecondDirectory: dir,
				}
			}

			rec := modular.Record{Identifier: id, Directory: dir}
			c.index[id] = rec
			c.records = append(c.records, rec)
		}
	}

	sort.Slice(c.records, func(i, j int) bool {
		if reverse {
			return c.records[i].Identifier > c.records[j].Identifier
		}
		return c.records[i].Identifier < c.records[j].Identifier
	})

	return c, nil
}

// IsMigrationFile reports whether name looks like a migration file.
func IsMigrationFile(name, extension string) bool {
	_, ok := identifierOf(name, extension)
	return ok
}

func identifierOf(name, extension string) (modular.Identifier, bool) {
	if !strings.HasSuffix(name, extension) {
		return "", false
	}
	stem := strings.TrimSuffix(name, extension)
	if !namePattern.MatchString(stem) {
		return "", false
	}
	return modular.Identifier(stem), true
}

// Records returns the records in catalog order.
func (c *Catalog) Records() []modular.Record {
	return append([]modular.Record(nil), c.records...)
}

// Identifiers returns the identifiers in catalog order.
func (c *Catalog) Identifiers() []modular.Identifier {
	ids := make([]modular.Identifier, len(c.records))
	for i, rec := range c.records {
		ids[i] = rec.Identifier
	}
	return ids
}

// Lookup returns the record for id.
func (c *Catalog) Lookup(id modular.Identifier) (modular.Record, bool) {
	rec, ok := c.index[id]
	return rec, ok
}

// Len returns the number of migrations in the catalog.
func (c *Catalog) Len() int {
	return len(c.records)
}
