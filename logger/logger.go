// Package logger defines the structured logging interface used across go-nclink.
//
// Every component that produces diagnostics (the transport retry loop, the unit
// system detector, the fleet prober) accepts a Logger, so applications can plug in
// their own logging framework. The default implementation is backed by log/slog.
//
// Log Levels:
//
//   - DebugLevel: per-attempt dial failures, raw frame sizes.
//   - InfoLevel:  general informational messages.
//   - WarnLevel:  detection fell back to the default unit system.
//   - ErrorLevel: transport failures that prevented a query.
//   - FatalLevel: unrecoverable errors in command-line programs.
package logger

// Level indicates the logging severity level.
type Level = int8

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel Level = iota - 1
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel
	// ErrorLevel logs are high-priority.
	ErrorLevel
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel
)

// Logger defines a common interface for logging with key-value pairs.
type Logger interface {
	// Debug logs a message at DebugLevel.
	Debug(msg string, keysAndValues ...any)
	// Info logs a message at InfoLevel.
	Info(msg string, keysAndValues ...any)
	// Warn logs a message at WarnLevel.
	Warn(msg string, keysAndValues ...any)
	// Error logs a message at ErrorLevel.
	Error(msg string, keysAndValues ...any)
	// Fatal logs a message at FatalLevel, then calls os.Exit(1).
	Fatal(msg string, keysAndValues ...any)
	// With creates a child logger and adds structured context to it.
	// Key-values added to the child don't affect the parent, and vice versa.
	With(keyValues ...any) Logger
	// Level returns the minimum enabled level for this logger.
	Level() Level
	// SetLevel sets the minimum enabled level for this logger.
	SetLevel(level Level)
}

// ParseLevel converts a level name such as "debug" or "WARN" into a Level.
// Unknown names map to InfoLevel and ok is false.
func ParseLevel(name string) (level Level, ok bool) {
	switch name {
	case "debug", "DEBUG", "Debug":
		return DebugLevel, true
	case "info", "INFO", "Info":
		return InfoLevel, true
	case "warn", "WARN", "Warn", "warning", "WARNING":
		return WarnLevel, true
	case "error", "ERROR", "Error":
		return ErrorLevel, true
	case "fatal", "FATAL", "Fatal":
		return FatalLevel, true
	}

	return InfoLevel, false
}
