package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/chameleoncloud/trovi/internal/cache"
)

const (
	// EnvLevel overrides the file log level (debug, info, warn, error).
	EnvLevel = "TROVI_LOG_LEVEL"

	fileName  = "trovi.log"
	maxSizeMB = 1
)

var (
	defaultLogger *slog.Logger
	once          sync.Once
)

// Get returns the process-wide logger. Records go to trovi.log under the
// cache directory; nothing is printed to the terminal.
func Get() *slog.Logger {
	once.Do(func() {
		defaultLogger = newFileLogger()
	})
	return defaultLogger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFileLogger() *slog.Logger {
	dir, err := cache.GetCacheDir()
	if err != nil {
		return Discard()
	}
	if err := cache.EnsureCacheDirs(); err != nil {
		return Discard()
	}

	// One rotated backup keeps the log dir bounded at about 2 MB.
	rotating := &lumberjack.Logger{
		Filename:   filepath.Join(dir, fileName),
		MaxSize:    maxSizeMB,
		MaxBackups: 1,
	}
	return slog.New(slog.NewTextHandler(rotating, &slog.HandlerOptions{
		Level: parseLevel(os.Getenv(EnvLevel)),
	}))
}

// parseLevel maps a level name to a slog level. Unknown or empty names log
// everything.
func parseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelDebug
	}
	return level
}
