// Package slog wraps provider implementations with structured logging.
// Each decorator logs one line per call with its inputs, result size,
// duration and error.
package slog
