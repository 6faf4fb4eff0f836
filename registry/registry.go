// Package registry holds the application's modules, in registration order.
// A Registry is built once from configuration and passed explicitly to the
// components that need module directories.
package registry

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/getpup/modular"
)

// Defaults mirror the conventional modular-monolith layout.
const (
	DefaultModulesDirectory = "app/Modules"
	DefaultMigrationsPath   = "Database/Migrations"
)

var moduleNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_\-]*$`)

// Module is a registered module.
type Module struct {
	// Name is the module's directory name under the modules directory.
	Name string

	// Active modules contribute migrations to Up. Rollback and Reset
	// consider every module.
	Active bool
}

// Config configures a Registry.
type Config struct {
	// Directory is the root directory holding all modules (default: "app/Modules").
	Directory string

	// MigrationsPath is the migrations directory inside a module
	// (default: "Database/Migrations").
	MigrationsPath string

	// Modules lists the modules in registration order.
	Modules []Module
}

// Registry is an immutable, ordered list of modules.
type Registry struct {
	directory      string
	migrationsPath string
	modules        []Module
}

// New validates cfg and builds a Registry.
// Returns a *modular.ConfigurationError for empty, malformed, or duplicate module names.
func New(cfg Config) (*Registry, error) {
	if cfg.Directory == "" {
		cfg.Directory = DefaultModulesDirectory
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = DefaultMigrationsPath
	}

	seen := make(map[string]struct{}, len(cfg.Modules))
	for i, m := range cfg.Modules {
		if m.Name == "" {
			return nil, &modular.ConfigurationError{Reason: fmt.Sprintf("module #%d has no name", i+1)}
		}
		if !moduleNamePattern.MatchString(m.Name) {
			return nil, &modular.ConfigurationError{Reason: fmt.Sprintf("invalid module name %q", m.Name)}
		}
		key := strings.ToLower(m.Name)
		if _, dup := seen[key]; dup {
			return nil, &modular.ConfigurationError{Reason: fmt.Sprintf("module %q is registered twice", m.Name)}
		}
		seen[key] = struct{}{}
	}

	return &Registry{
		directory:      strings.TrimRight(cfg.Directory, `/\`),
		migrationsPath: strings.Trim(cfg.MigrationsPath, `/\`),
		modules:        append([]Module(nil), cfg.Modules...),
	}, nil
}

// All returns every module in registration order.
func (r *Registry) All() []Module {
	return append([]Module(nil), r.modules...)
}

// Active returns the active modules in registration order.
func (r *Registry) Active() []Module {
	active := make([]Module, 0, len(r.modules))
	for _, m := range r.modules {
		if m.Active {
			active = append(active, m)
		}
	}
	return active
}

// Find looks up a module by name, case-insensitively.
func (r *Registry) Find(name string) (Module, bool) {
	for _, m := range r.modules {
		if strings.EqualFold(m.Name, name) {
			return m, true
		}
	}
	return Module{}, false
}

// ModulePath returns the module's root directory.
func (r *Registry) ModulePath(m Module) string {
	return filepath.Join(r.directory, m.Name)
}

// MigrationDirectory returns the migration directory of the named module.
// Returns a *modular.ConfigurationError if the module is not registered.
func (r *Registry) MigrationDirectory(name string) (string, error) {
	m, ok := r.Find(name)
	if !ok {
		return "", &modular.ConfigurationError{Reason: fmt.Sprintf("module %q is not registered", name)}
	}
	return r.migrationDirectory(m), nil
}

// ResolveActive maps names to registered modules, dropping repeated names
// and keeping first-seen order. Every name must match an active module;
// otherwise a *modular.ConfigurationError naming the first offender is
// returned and no modules are.
func (r *Registry) ResolveActive(names []string) ([]Module, error) {
	seen := make(map[string]struct{}, len(names))
	modules := make([]Module, 0, len(names))
	for _, name := range names {
		m, ok := r.Find(name)
		if !ok {
			return nil, &modular.ConfigurationError{Reason: fmt.Sprintf("module %q is not registered", name)}
		}
		if !m.Active {
			return nil, &modular.ConfigurationError{Reason: fmt.Sprintf("module %q is not active", m.Name)}
		}
		if _, dup := seen[m.Name]; dup {
			continue
		}
		seen[m.Name] = struct{}{}
		modules = append(modules, m)
	}
	return modules, nil
}

// ActiveMigrationDirectories returns the migration directories of the active
// modules in registration order.
func (r *Registry) ActiveMigrationDirectories() []string {
	return r.directories(r.Active())
}

// AllMigrationDirectories returns the migration directories of every module
// in registration order.
func (r *Registry) AllMigrationDirectories() []string {
	return r.directories(r.modules)
}

func (r *Registry) directories(modules []Module) []string {
	dirs := make([]string, len(modules))
	for i, m := range modules {
		dirs[i] = r.migrationDirectory(m)
	}
	return dirs
}

// ModuleMigrationDirectory returns the migration directory of m.
func (r *Registry) ModuleMigrationDirectory(m Module) string {
	return r.migrationDirectory(m)
}

func (r *Registry) migrationDirectory(m Module) string {
	return filepath.Join(r.ModulePath(m), r.migrationsPath)
}
