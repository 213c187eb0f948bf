// Package display implements terminal output for shea.
package display

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shea/pkg/common"
)

// consoleDisplay writes output to stdout and diagnostics to stderr.
type consoleDisplay struct {
	out    io.Writer
	err    io.Writer
	level  *slog.LevelVar
	sink   *switchWriter
	logger *slog.Logger
	closer io.Closer
}

// NewConsole creates a Display bound to the process streams and installs its
// logger as the slog default.
func NewConsole() Display {
	d := NewWriterDisplay(os.Stdout, os.Stderr)
	slog.SetDefault(d.Logger())
	return d
}

// NewWriterDisplay creates a Display that writes to the provided writers.
func NewWriterDisplay(out, err io.Writer) Display {
	d := &consoleDisplay{
		out:   out,
		err:   err,
		level: new(slog.LevelVar),
		sink:  &switchWriter{w: err},
	}
	d.level.Set(slog.LevelInfo)
	d.logger = slog.New(slog.NewTextHandler(d.sink, &slog.HandlerOptions{Level: d.level}))
	return d
}

func (d *consoleDisplay) Log(msg string) {
	d.logger.Debug(msg)
}

// Print writes a message directly to the output writer.
func (d *consoleDisplay) Print(msg string) {
	fmt.Fprint(d.out, msg)
}

func (d *consoleDisplay) Errorf(format string, args ...any) {
	fmt.Fprintf(d.err, "shea: "+format+"\n", args...)
}

func (d *consoleDisplay) SetVerbose(v bool) {
	if v {
		d.level.Set(slog.LevelDebug)
	} else {
		d.level.Set(slog.LevelInfo)
	}
}

func (d *consoleDisplay) Verbose() bool        { return d.level.Level() <= slog.LevelDebug }
func (d *consoleDisplay) Stdout() io.Writer    { return d.out }
func (d *consoleDisplay) Stderr() io.Writer    { return d.err }
func (d *consoleDisplay) Logger() *slog.Logger { return d.logger }

func (d *consoleDisplay) RedirectLog(w io.Writer) {
	if d.closer != nil {
		d.closer.Close()
		d.closer = nil
	}
	if c, ok := w.(io.Closer); ok {
		d.closer = c
	}
	d.sink.w = w
}

func (d *consoleDisplay) Close() {
	if d.closer != nil {
		d.closer.Close()
		d.closer = nil
	}
	d.sink.w = d.err
}

// RenderOutput displays structured data from an Output struct to the console.
func (d *consoleDisplay) RenderOutput(out *common.Output) {
	if out == nil {
		return
	}

	if out.Message != "" {
		d.Print(fmt.Sprintln(out.Message))
	}

	for _, kv := range out.KV {
		d.Print(fmt.Sprintf("%-12s %s\n", kv.Key+":", kv.Value))
	}

	if out.Table != nil {
		d.renderTable(out.Table)
	}
}

func (d *consoleDisplay) renderTable(t *common.Table) {
	if len(t.Header) == 0 {
		return
	}

	widths := make([]int, len(t.Header))
	for i, h := range t.Header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var sb strings.Builder
	for i, h := range t.Header {
		sb.WriteString(pad(h, widths[i]))
	}
	d.Print(strings.TrimRight(sb.String(), " ") + "\n")

	totalWidth := 0
	for _, w := range widths {
		totalWidth += w + 2
	}
	d.Print(strings.Repeat("-", totalWidth-2) + "\n")

	for _, row := range t.Rows {
		sb.Reset()
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(pad(cell, widths[i]))
			}
		}
		d.Print(strings.TrimRight(sb.String(), " ") + "\n")
	}
}

// pad left-aligns cell in a column of the given visible width plus a gutter.
func pad(cell string, width int) string {
	return cell + strings.Repeat(" ", width-lipgloss.Width(cell)+2)
}

// switchWriter lets the log destination change after the handler is built.
type switchWriter struct {
	w io.Writer
}

func (s *switchWriter) Write(p []byte) (int, error) {
	return s.w.Write(p)
}
