package util

import (
	"io"
	"log/slog"
)

// SafeCloseFunc returns a function that closes c and logs any error.
// Intended for use with defer.
func SafeCloseFunc(c io.Closer, what string) func() {
	return func() {
		if err := c.Close(); err != nil {
			slog.Warn("failed to close resource", "resource", what, "error", err)
		}
	}
}
