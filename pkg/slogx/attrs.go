// Package slogx holds the slog attribute helpers shared across hoot.
package slogx

import (
	"fmt"
	"log/slog"
	"time"
)

// Error returns a slog.Attr representing the provided error.
// The attribute key is "error" and the value is the error's message.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// Stringer creates a slog.Attr with the provided key and the string representation
// of the given fmt.Stringer value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// Provider tags a record with the id of a capability provider.
func Provider(id string) slog.Attr {
	return slog.String("provider", id)
}

// Capability tags a record with a capability name.
func Capability(name string) slog.Attr {
	return slog.String("capability", name)
}

// Attempt tags a record with a 1-based attempt number.
func Attempt(n int) slog.Attr {
	return slog.Int("attempt", n)
}

// Delay tags a record with a backoff delay.
func Delay(d time.Duration) slog.Attr {
	return slog.Duration("delay", d)
}

// Depth tags a record with the recursion depth of a query.
func Depth(d int) slog.Attr {
	return slog.Int("depth", d)
}

const (
	// KeyLoggerName is the key for the logger name attribute.
	KeyLoggerName = "logger"
)

// LoggerName returns an attribute for the logger name.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}
