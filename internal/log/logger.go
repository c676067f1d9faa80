package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger and remembers the component it logs for.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Format    string // "text" or "json"
	Component string
	Writer    io.Writer
	Handler   slog.Handler
}

// DefaultConfig returns sensible defaults for logging
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    FormatText,
		Component: ComponentApp,
		Writer:    os.Stdout,
	}
}

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// ParseLevel maps debug, info, warn and error to slog levels. Anything else
// is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a new logger with the given configuration
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		w := config.Writer
		if w == nil {
			w = os.Stdout
		}
		opts := &slog.HandlerOptions{Level: config.Level}
		if config.Format == FormatJSON {
			handler = slog.NewJSONHandler(w, opts)
		} else {
			handler = slog.NewTextHandler(w, opts)
		}
	}

	component := config.Component
	if component == "" {
		component = ComponentApp
	}
	return &Logger{
		Logger:    slog.New(handler).With(FieldComponent, component),
		component: component,
	}
}

// Wrap adopts an existing slog logger. A nil logger means slog.Default.
func Wrap(l *slog.Logger, component string) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{Logger: l.With(FieldComponent, component), component: component}
}

// With returns a new logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// WithComponent returns a logger for a sub-component. The original
// component stays in the record as "parent".
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger.With(FieldParent, l.component, FieldComponent, component),
		component: component,
	}
}

// Mutation logs a committed change at info level.
func (l *Logger) Mutation(ctx context.Context, module, op string, id int64) {
	l.InfoContext(ctx, "State changed",
		FieldModule, module,
		FieldOperation, op,
		FieldEntityID, id)
}

// SetDefault sets the default logger for the application
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}

// Component returns the logger's component name
func (l *Logger) Component() string {
	return l.component
}
