// Package sl holds small helpers for structured logging with slog.
package sl

import "log/slog"

// Err wraps an error into an slog attribute under the "error" key.
//
//	log.Error("failed to delete photo", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: "error", Value: slog.StringValue("<nil>")}
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}
