// Package logx builds the zerolog logger used by the modular CLI and adapts
// it to the modular.Logger interface.
package logx

import (
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	// Level is the log level to use (e.g., "info", "debug").
	Level string `yaml:"level" json:"level" mapstructure:"level"`
	// ConsoleLogging enables logging to the console.
	ConsoleLogging bool `yaml:"consoleLogging" json:"consoleLogging" mapstructure:"consoleLogging"`
	// FileLogging enables logging to a file.
	FileLogging bool `yaml:"fileLogging" json:"fileLogging" mapstructure:"fileLogging"`
	// Directory specifies the directory for log files (used if FileLogging is enabled).
	Directory string `yaml:"directory" json:"directory" mapstructure:"directory"`
	// Filename is the name of the log file.
	Filename string `yaml:"filename" json:"filename" mapstructure:"filename"`
	// MaxSize is the maximum size (in MB) of a log file before it is rolled.
	MaxSize int `yaml:"maxSize" json:"maxSize" mapstructure:"maxSize"`
	// MaxBackups is the maximum number of rolled log files to keep.
	MaxBackups int `yaml:"maxBackups" json:"maxBackups" mapstructure:"maxBackups"`
	// MaxAge is the maximum age (in days) to keep a log file.
	MaxAge int `yaml:"maxAge" json:"maxAge" mapstructure:"maxAge"`
	// Compress enables compression of rolled log files.
	Compress bool `yaml:"compress" json:"compress" mapstructure:"compress"`
}

// New builds a logger from cfg. Console output goes to console, file output
// to a rolling file. The returned close function releases the log file.
// With both outputs disabled the logger discards everything.
func New(cfg LoggingConfig, console io.Writer, fields map[string]string) (zerolog.Logger, func() error, error) {
	noop := func() error { return nil }

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	var writers []io.Writer
	if cfg.ConsoleLogging && console != nil {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        console,
			TimeFormat: time.RFC3339,
		})
	}

	closer := noop
	if cfg.FileLogging {
		logFile := newRollingFile(cfg)
		writers = append(writers, logFile)
		closer = logFile.Close
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	c := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp()

	for k, v := range fields {
		c = c.Str(k, v)
	}

	return c.Logger(), closer, nil
}

func newRollingFile(cfg LoggingConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Directory, cfg.Filename),
		MaxBackups: cfg.MaxBackups, // files
		MaxSize:    cfg.MaxSize,    // megabytes
		MaxAge:     cfg.MaxAge,     // days
		Compress:   cfg.Compress,
	}
}
