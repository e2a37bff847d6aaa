// Package log provides structured logging for swarmctl.
// It wraps a plain file writer with structured fields (level, category,
// timestamp) and is enabled at process startup from config.LogLevel.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/zjrosen/swarmctl/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts the LOG_LEVEL config value to a Level, defaulting to
// LevelInfo for unrecognized input.
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups related log messages by owning component.
type Category string

const (
	CatStore    Category = "store"
	CatGit      Category = "git"
	CatTerm     Category = "term"
	CatAgent    Category = "agent"
	CatWorkflow Category = "workflow"
	CatTool     Category = "tool"
	CatConfig   Category = "config"
	CatHosting  Category = "hosting"
	CatCache    Category = "cache"
)

// Logger provides structured logging to a writer plus a pub/sub fan-out of
// formatted lines for in-process observers.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the global logger writing to path. Returns a cleanup
// function to close the log file.
func Init(path string, minLevel Level) (func(), error) {
	var initErr error
	once.Do(func() {
		defaultLogger, initErr = newLogger(path, minLevel)
	})
	if initErr != nil {
		return nil, initErr
	}
	if defaultLogger == nil {
		return nil, fmt.Errorf("logger initialization failed or already attempted")
	}
	return func() {
		if defaultLogger != nil && defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
		}
	}, nil
}

func newLogger(path string, minLevel Level) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is operator-controlled
	if err != nil {
		return nil, err
	}

	return &Logger{
		file:     f,
		writer:   f,
		enabled:  true,
		minLevel: minLevel,
		broker:   pubsub.NewBroker[string](),
	}, nil
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.enabled = enabled
		defaultLogger.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.minLevel = level
		defaultLogger.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) { log(LevelDebug, cat, msg, fields...) }

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) { log(LevelInfo, cat, msg, fields...) }

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) { log(LevelWarn, cat, msg, fields...) }

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) { log(LevelError, cat, msg, fields...) }

// ErrorErr logs an error with the error value appended as a field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	if defaultLogger == nil || !defaultLogger.enabled {
		return
	}
	if level < defaultLogger.minLevel {
		return
	}

	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02T15:04:05")
	entry := fmt.Sprintf("%s [%s] [%s] %s", timestamp, level, cat, msg)

	for i := 0; i+1 < len(fields); i += 2 {
		entry += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		entry += fmt.Sprintf(" %v=<missing>", fields[len(fields)-1])
	}
	entry += "\n"

	if defaultLogger.writer != nil {
		_, _ = defaultLogger.writer.Write([]byte(entry))
	}
	if defaultLogger.broker != nil {
		defaultLogger.broker.Publish(pubsub.CreatedEvent, entry)
	}
}

// Event is a pubsub event containing a formatted log line.
type Event = pubsub.Event[string]

// Subscribe returns a channel of formatted log lines, closed when ctx is
// cancelled, for in-process observers.
func Subscribe(ctx context.Context) <-chan Event {
	if defaultLogger == nil || defaultLogger.broker == nil {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	return defaultLogger.broker.Subscribe(ctx)
}
