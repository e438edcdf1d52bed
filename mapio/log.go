package mapio

import (
	"fmt"
	"os"
)

// LogLevel is the severity of a LoggingProtocol message.
type LogLevel int

const (
	// LogInfoVerbose is detailed diagnostic output.
	LogInfoVerbose LogLevel = iota
	// LogInfo is informational output.
	LogInfo
	// LogWarning indicates a recoverable problem.
	LogWarning
	// LogError indicates an operation failure.
	LogError
)

// String returns a string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LogInfoVerbose:
		return "verbose"
	case LogInfo:
		return "info"
	case LogWarning:
		return "warning"
	case LogError:
		return "error"
	default:
		return "unknown"
	}
}

// LoggingProtocol is an optional leveled log sink that providers invoke for
// backend diagnostics (for example, the human-readable backend error when an
// archive fails to open from a custom source).
type LoggingProtocol interface {
	Log(level LogLevel, msg string)
}

// StderrLogger is a LoggingProtocol that writes to standard error. Messages
// below MinLevel are dropped.
type StderrLogger struct {
	MinLevel LogLevel
}

// Log writes the message to stderr if it meets the minimum level.
func (l *StderrLogger) Log(level LogLevel, msg string) {
	if level < l.MinLevel {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", level, msg)
}

// Compile-time interface check.
var _ LoggingProtocol = (*StderrLogger)(nil)
