// Package monitor samples system and process metrics and renders them as a
// live dashboard or a one-shot snapshot.
package monitor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"shea/pkg/format"
)

const (
	// DisplayLimit is the number of process rows shown by default.
	DisplayLimit = 50

	maxCommand = 60
	maxUser    = 12
)

// Column identifies a sortable process table column.
type Column int

const (
	ColPID Column = iota
	ColUser
	ColCPU
	ColMemory
	ColTime
	ColCommand
)

var columnNames = [...]string{"PID", "USER", "CPU%", "MEMORY", "TIME", "COMMAND"}

// Columns lists every column in display order.
func Columns() []Column {
	return []Column{ColPID, ColUser, ColCPU, ColMemory, ColTime, ColCommand}
}

func (c Column) String() string {
	if c < 0 || int(c) >= len(columnNames) {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnNames[c]
}

// Toggles reports whether selecting c twice flips its direction. The numeric
// columns CPU%, MEMORY and TIME always sort largest first.
func (c Column) Toggles() bool {
	return c == ColPID || c == ColUser || c == ColCommand
}

// ParseColumn accepts a column name in any case, plus a few short aliases.
func ParseColumn(s string) (Column, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pid":
		return ColPID, nil
	case "user":
		return ColUser, nil
	case "cpu", "cpu%":
		return ColCPU, nil
	case "mem", "memory", "rss":
		return ColMemory, nil
	case "time":
		return ColTime, nil
	case "cmd", "command":
		return ColCommand, nil
	}
	return 0, fmt.Errorf("unknown sort column %q (want pid, user, cpu, mem, time or command)", s)
}

// RawProcess is a process as reported by a Source.
type RawProcess struct {
	PID        int32
	Name       string
	Username   string
	CPU        float64
	MemPercent float64
	RSS        uint64
	CreateTime time.Time
	Cmdline    []string
}

// Process is a display-ready process row.
type Process struct {
	PID        int32
	User       string
	CPU        float64
	MemPercent float64
	MemBytes   uint64
	Runtime    time.Duration
	Command    string
}

// Shape converts a raw sample into a row, measuring runtime up to now.
func Shape(r RawProcess, now time.Time) Process {
	runtime := now.Sub(r.CreateTime)
	if r.CreateTime.IsZero() || runtime < 0 {
		runtime = 0
	}
	return Process{
		PID:        r.PID,
		User:       ShortUser(r.Username),
		CPU:        r.CPU,
		MemPercent: r.MemPercent,
		MemBytes:   r.RSS,
		Runtime:    runtime,
		Command:    ShortCommand(r.Cmdline, r.Name),
	}
}

// ShortUser strips a Windows domain prefix and caps the name length.
func ShortUser(name string) string {
	if i := strings.LastIndexByte(name, '\\'); i >= 0 {
		name = name[i+1:]
	}
	return truncate(name, maxUser, "")
}

// ShortCommand joins args, or falls back to name for kernel threads and
// processes whose command line is hidden.
func ShortCommand(args []string, name string) string {
	cmd := strings.Join(args, " ")
	if cmd == "" {
		cmd = name
	}
	return truncate(cmd, maxCommand, "...")
}

func truncate(s string, n int, ellipsis string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-len(ellipsis)]) + ellipsis
}

// Memory renders the MEMORY cell, e.g. "1.2% / 96.0MB".
func (p Process) Memory() string {
	return fmt.Sprintf("%.1f%% / %s", p.MemPercent, format.Ubytes(p.MemBytes))
}

// Row renders p as table cells in column order.
func (p Process) Row() []string {
	return []string{
		fmt.Sprint(p.PID),
		p.User,
		fmt.Sprintf("%.1f%%", p.CPU),
		p.Memory(),
		format.Duration(p.Runtime),
		p.Command,
	}
}

// Sort tracks the active sort column and the remembered direction of the
// toggling columns.
type Sort struct {
	Column Column
	Desc   bool

	toggled map[Column]bool
}

// NewSort starts sorting by c in its default direction.
func NewSort(c Column) *Sort {
	s := &Sort{toggled: make(map[Column]bool), Column: -1}
	s.Select(c)
	return s
}

// Select makes c the sort column. Reselecting a toggling column flips its
// direction; a newly selected toggling column starts ascending.
func (s *Sort) Select(c Column) {
	if !c.Toggles() {
		s.Column, s.Desc = c, true
		return
	}
	if s.Column == c {
		s.toggled[c] = !s.toggled[c]
	} else {
		s.toggled[c] = false
	}
	s.Column, s.Desc = c, s.toggled[c]
}

// Apply sorts procs in place. Equal keys keep their sampled order.
func (s *Sort) Apply(procs []Process) {
	less := s.less()
	sort.SliceStable(procs, func(i, j int) bool {
		if s.Desc {
			return less(procs[j], procs[i])
		}
		return less(procs[i], procs[j])
	})
}

func (s *Sort) less() func(a, b Process) bool {
	switch s.Column {
	case ColPID:
		return func(a, b Process) bool { return a.PID < b.PID }
	case ColUser:
		return func(a, b Process) bool { return strings.ToLower(a.User) < strings.ToLower(b.User) }
	case ColMemory:
		return func(a, b Process) bool { return a.MemBytes < b.MemBytes }
	case ColTime:
		return func(a, b Process) bool { return a.Runtime < b.Runtime }
	case ColCommand:
		return func(a, b Process) bool { return strings.ToLower(a.Command) < strings.ToLower(b.Command) }
	default:
		return func(a, b Process) bool { return a.CPU < b.CPU }
	}
}

// Indicator is the arrow appended to the active column header.
func (s *Sort) Indicator() string {
	if s.Desc {
		return "▼"
	}
	return "▲"
}
