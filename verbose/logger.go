// Package verbose provides the leveled, timestamped logger shared by every
// PWSW component: the switching engine, the IPC server, the config
// supervisor, and the CLI.
package verbose

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel defines the verbosity level, matching the settings.log_level
// enum in the configuration file (error, warn, info, debug, trace).
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// ParseLevel converts a config string into a LogLevel. Unknown values
// fall back to LogLevelInfo.
func ParseLevel(s string) LogLevel {
	switch s {
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	case "debug":
		return LogLevelDebug
	case "trace":
		return LogLevelTrace
	case "silent":
		return LogLevelSilent
	default:
		return LogLevelInfo
	}
}

// Logger provides leveled, timestamped logging. It is safe for concurrent
// use by multiple goroutines, which matters here because the engine,
// the IPC acceptor, and the config watcher all log independently.
type Logger struct {
	level             LogLevel
	includeTimestamps bool
	out               io.Writer
	mutex             sync.Mutex
}

// DefaultLogger creates a logger with default settings, writing to stderr.
func DefaultLogger() *Logger {
	return NewLogger(LogLevelInfo, true, os.Stderr)
}

// NewLogger creates a new logger with specified settings.
func NewLogger(level LogLevel, includeTimestamps bool, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		level:             level,
		includeTimestamps: includeTimestamps,
		out:               out,
	}
}

// SetLevel changes the logging level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.level = level
}

// SetOutput redirects log output to w; a nil w leaves the output
// unchanged.
func (l *Logger) SetOutput(w io.Writer) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if w != nil {
		l.out = w
	}
}

// IsVerbose checks if a certain level is active.
func (l *Logger) IsVerbose(level LogLevel) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.level >= level
}

// Errorf logs an error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	if l.level >= LogLevelError {
		l.log("[ERROR]", format, args...)
	}
}

// Warnf logs a warning message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	if l.level >= LogLevelWarn {
		l.log("[WARN]", format, args...)
	}
}

// Infof logs an info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		l.log("[INFO]", format, args...)
	}
}

// Debugf logs a debug message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		l.log("[DEBUG]", format, args...)
	}
}

// Tracef logs the most verbose level, used for per-event engine tracing.
func (l *Logger) Tracef(format string, args ...interface{}) {
	if l.level >= LogLevelTrace {
		l.log("[TRACE]", format, args...)
	}
}

// log is the internal logging function.
func (l *Logger) log(prefix, format string, args ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	msg := fmt.Sprintf(format, args...)

	if l.includeTimestamps {
		ts := time.Now().Format("2006-01-02T15:04:05.000")
		fmt.Fprintf(l.out, "%s %s %s\n", ts, prefix, msg)
	} else {
		fmt.Fprintf(l.out, "%s %s\n", prefix, msg)
	}
}
