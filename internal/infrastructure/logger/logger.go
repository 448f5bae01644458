package logger

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger zerolog.Logger
	once         sync.Once
	mu           sync.RWMutex
)

// Options controls logger construction.
type Options struct {
	Level  string
	Format string
	// File enables an additional rotating log file sink when set.
	File string
	// Output defaults to stdout.
	Output io.Writer
}

// GetLogger returns the global logger instance
func GetLogger() zerolog.Logger {
	once.Do(func() {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		mu.Lock()
		globalLogger = zerolog.New(consoleWriter).With().Timestamp().Logger().Level(zerolog.InfoLevel)
		mu.Unlock()
	})
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// New constructs a zerolog logger based on level and format configuration.
func New(opts Options) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return zerolog.Logger{}, err
	}

	base := opts.Output
	if base == nil {
		base = os.Stdout
	}

	var out io.Writer
	switch strings.ToLower(opts.Format) {
	case "json":
		out = base
	case "console", "":
		out = zerolog.ConsoleWriter{
			Out:        base,
			TimeFormat: time.RFC3339,
		}
	default:
		return zerolog.Logger{}, errors.New("unsupported log format")
	}

	if opts.File != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		})
	}

	logger := zerolog.New(out).With().Timestamp().Logger().Level(lvl)

	// Make sure GetLogger never overwrites a configured logger.
	once.Do(func() {})
	mu.Lock()
	globalLogger = logger
	mu.Unlock()

	return logger, nil
}
