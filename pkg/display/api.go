package display

import (
	"io"
	"log/slog"

	"shea/pkg/common"
)

// Display handles console output and diagnostic logging.
type Display interface {
	// Log adds a diagnostic message, shown only in verbose mode.
	Log(msg string)
	// Print writes primary output (listings, tables) to stdout.
	Print(msg string)
	// RenderOutput prints structured command output.
	RenderOutput(out *common.Output)
	// Errorf writes a user-facing diagnostic to stderr.
	Errorf(format string, args ...any)
	// SetVerbose enables or disables debug logging.
	SetVerbose(v bool)
	// Verbose reports whether debug logging is enabled.
	Verbose() bool
	// Stdout and Stderr expose the underlying streams.
	Stdout() io.Writer
	Stderr() io.Writer
	// Logger returns the logger bound to this display.
	Logger() *slog.Logger
	// RedirectLog sends log records to w instead of stderr, e.g. while a
	// full-screen view owns the terminal.
	RedirectLog(w io.Writer)
	// Close flushes and releases any resources.
	Close()
}
