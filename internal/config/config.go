// Package config loads the modular CLI configuration from a file and
// MODULAR_* environment variables.
package config

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/getpup/modular/internal/logx"
	"github.com/getpup/modular/migrator"
	"github.com/getpup/modular/pkg/migrations"
	"github.com/getpup/modular/registry"
	"github.com/getpup/modular/store/sqlstore"
	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. MODULAR_DATABASE_DSN.
const EnvPrefix = "MODULAR"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*(\.[A-Za-z][A-Za-z0-9_]*)?$`)

// Config holds the global configuration for the application.
type Config struct {
	Log        logx.LoggingConfig `yaml:"log" json:"log" mapstructure:"log"`
	Database   DatabaseConfig     `yaml:"database" json:"database" mapstructure:"database"`
	Migrations MigrationsConfig   `yaml:"migrations" json:"migrations" mapstructure:"migrations"`
	Modules    ModulesConfig      `yaml:"modules" json:"modules" mapstructure:"modules"`
	Metrics    MetricsConfig      `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
}

// DatabaseConfig represents the `database` configuration block.
type DatabaseConfig struct {
	Driver string `yaml:"driver" json:"driver" mapstructure:"driver"` // postgres, mysql or sqlite3
	DSN    string `yaml:"dsn" json:"dsn" mapstructure:"dsn"`
	Table  string `yaml:"table" json:"table" mapstructure:"table"` // history table
}

// MigrationsConfig represents the `migrations` configuration block.
type MigrationsConfig struct {
	Directory   string `yaml:"directory" json:"directory" mapstructure:"directory"`
	Extension   string `yaml:"extension" json:"extension" mapstructure:"extension"`
	DefaultType string `yaml:"defaultType" json:"defaultType" mapstructure:"defaultType"`
}

// ModuleEntry is a single module in the `modules.list` block.
type ModuleEntry struct {
	Name   string `yaml:"name" json:"name" mapstructure:"name"`
	Active bool   `yaml:"active" json:"active" mapstructure:"active"`
}

// ModulesConfig represents the `modules` configuration block.
type ModulesConfig struct {
	Directory      string        `yaml:"directory" json:"directory" mapstructure:"directory"`
	MigrationsPath string        `yaml:"migrationsPath" json:"migrationsPath" mapstructure:"migrationsPath"`
	List           []ModuleEntry `yaml:"list" json:"list" mapstructure:"list"`
}

// MetricsConfig represents the `metrics` configuration block.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Textfile string `yaml:"textfile" json:"textfile" mapstructure:"textfile"` // Prometheus textfile collector output
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log: logx.LoggingConfig{
			Level:          "info",
			ConsoleLogging: true,
			FileLogging:    false,
			Directory:      "storage/logs",
			Filename:       "modular.log",
			MaxSize:        10,
			MaxBackups:     3,
			MaxAge:         30,
		},
		Database: DatabaseConfig{
			Driver: string(sqlstore.Postgres),
			Table:  sqlstore.DefaultTableConfig().Table,
		},
		Migrations: MigrationsConfig{
			Directory:   migrator.DefaultDirectory,
			Extension:   ".sql",
			DefaultType: string(migrations.TypeDefault),
		},
		Modules: ModulesConfig{
			Directory:      registry.DefaultModulesDirectory,
			MigrationsPath: registry.DefaultMigrationsPath,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads the configuration file at path (any format viper supports) on
// top of the defaults, applies environment overrides and validates the result.
// An empty path loads defaults and environment only.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, NotFoundError.Wrap(err, "failed to read config file: %s", path).
				WithProperty(errorx.PropertyPayload(), path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errorx.IllegalFormat.Wrap(err, "failed to parse configuration").
			WithProperty(errorx.PropertyPayload(), path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// setDefaults registers every scalar key so environment overrides apply
// even when the key is absent from the file.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.consoleLogging", d.Log.ConsoleLogging)
	v.SetDefault("log.fileLogging", d.Log.FileLogging)
	v.SetDefault("log.directory", d.Log.Directory)
	v.SetDefault("log.filename", d.Log.Filename)
	v.SetDefault("log.maxSize", d.Log.MaxSize)
	v.SetDefault("log.maxBackups", d.Log.MaxBackups)
	v.SetDefault("log.maxAge", d.Log.MaxAge)
	v.SetDefault("log.compress", d.Log.Compress)

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("database.table", d.Database.Table)

	v.SetDefault("migrations.directory", d.Migrations.Directory)
	v.SetDefault("migrations.extension", d.Migrations.Extension)
	v.SetDefault("migrations.defaultType", d.Migrations.DefaultType)

	v.SetDefault("modules.directory", d.Modules.Directory)
	v.SetDefault("modules.migrationsPath", d.Modules.MigrationsPath)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.textfile", d.Metrics.Textfile)
}

// Validate validates all configuration fields.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return errorx.IllegalArgument.Wrap(err, "invalid log level: %s", c.Log.Level)
	}
	if c.Log.FileLogging && c.Log.Filename == "" {
		return errorx.IllegalArgument.New("log.filename is required when file logging is enabled")
	}

	if _, err := c.Dialect(); err != nil {
		return err
	}
	if !tableNamePattern.MatchString(c.Database.Table) {
		return errorx.IllegalArgument.New("invalid history table name: %q", c.Database.Table)
	}

	if c.Migrations.Directory == "" {
		return errorx.IllegalArgument.New("migrations.directory is required")
	}
	if !strings.HasPrefix(c.Migrations.Extension, ".") {
		return errorx.IllegalArgument.New("migrations.extension must start with a dot (got: %q)", c.Migrations.Extension)
	}
	switch migrations.MigrationType(c.Migrations.DefaultType) {
	case migrations.TypeDefault, migrations.TypeCreate, migrations.TypeEdit:
	default:
		return errorx.IllegalArgument.New("invalid migrations.defaultType: %q", c.Migrations.DefaultType)
	}

	if _, err := c.Registry(); err != nil {
		return err
	}

	return nil
}

// Dialect returns the configured database dialect.
func (c Config) Dialect() (sqlstore.Dialect, error) {
	d, err := sqlstore.ParseDialect(c.Database.Driver)
	if err != nil {
		return "", errorx.IllegalArgument.Wrap(err, "invalid database driver")
	}
	return d, nil
}

// Registry builds the module registry from the `modules` block.
func (c Config) Registry() (*registry.Registry, error) {
	modules := make([]registry.Module, 0, len(c.Modules.List))
	for _, m := range c.Modules.List {
		modules = append(modules, registry.Module{Name: m.Name, Active: m.Active})
	}

	reg, err := registry.New(registry.Config{
		Directory:      c.Modules.Directory,
		MigrationsPath: c.Modules.MigrationsPath,
		Modules:        modules,
	})
	if err != nil {
		return nil, errorx.IllegalArgument.Wrap(err, "invalid modules configuration")
	}
	return reg, nil
}

// Redacted returns a copy safe for display, with the DSN masked.
func (c Config) Redacted() Config {
	if c.Database.DSN != "" {
		c.Database.DSN = "********"
	}
	return c
}

// Format renders the configuration as yaml or json.
func (c Config) Format(format string) (string, error) {
	switch strings.ToLower(format) {
	case "json":
		out, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return "", errorx.IllegalFormat.Wrap(err, "failed to marshal configuration to JSON")
		}
		return string(out) + "\n", nil
	case "yaml", "text", "":
		out, err := yaml.Marshal(c)
		if err != nil {
			return "", errorx.IllegalFormat.Wrap(err, "failed to marshal configuration to YAML")
		}
		return string(out), nil
	default:
		return "", errorx.IllegalFormat.New("unsupported format: %s", format)
	}
}
