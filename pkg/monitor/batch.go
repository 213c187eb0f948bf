package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/itchyny/gojq"

	"shea/pkg/common"
)

// BatchOptions control a one-shot process listing.
type BatchOptions struct {
	Sort  Column
	Limit int
	// Filter is a jq expression run against each process record.
	Filter string
	JSON   bool
}

// Filter keeps process records for which a jq program yields a truthy value.
type Filter struct {
	code *gojq.Code
}

// NewFilter compiles expr. The record fields are pid, user, cpu,
// mem_percent, mem_bytes, runtime, runtime_seconds and command.
func NewFilter(expr string) (*Filter, error) {
	q, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return &Filter{code: code}, nil
}

// Match runs the filter on rec. Any output other than false or null keeps it.
func (f *Filter) Match(ctx context.Context, rec map[string]any) (bool, error) {
	iter := f.code.RunWithContext(ctx, rec)
	for {
		v, ok := iter.Next()
		if !ok {
			return false, nil
		}
		if err, ok := v.(error); ok {
			if err, ok := err.(*gojq.HaltError); ok && err.Value() == nil {
				return false, nil
			}
			return false, err
		}
		if v != nil && v != false {
			return true, nil
		}
	}
}

// Record converts p into the plain map that filters and JSON output see.
func Record(p Process) map[string]any {
	return map[string]any{
		"pid":             int(p.PID),
		"user":            p.User,
		"cpu":             p.CPU,
		"mem_percent":     p.MemPercent,
		"mem_bytes":       int(p.MemBytes),
		"runtime":         p.Runtime.String(),
		"runtime_seconds": p.Runtime.Seconds(),
		"command":         p.Command,
	}
}

// Batch takes one snapshot and applies sorting, filtering and the row limit.
func (m *manager) Batch(ctx context.Context, opts BatchOptions) ([]Process, error) {
	var filter *Filter
	if opts.Filter != "" {
		f, err := NewFilter(opts.Filter)
		if err != nil {
			return nil, err
		}
		filter = f
	}

	procs, err := m.Snapshot(ctx, NewSort(opts.Sort))
	if err != nil {
		return nil, err
	}

	if filter != nil {
		kept := procs[:0]
		for _, p := range procs {
			ok, err := filter.Match(ctx, Record(p))
			if err != nil {
				return nil, fmt.Errorf("filter failed on pid %d: %w", p.PID, err)
			}
			if ok {
				kept = append(kept, p)
			}
		}
		procs = kept
	}

	if opts.Limit > 0 && len(procs) > opts.Limit {
		procs = procs[:opts.Limit]
	}
	return procs, nil
}

// Table renders procs with a header that marks the sort column.
func (m *manager) Table(procs []Process, s *Sort) *common.Table {
	t := &common.Table{}
	for _, c := range Columns() {
		title := c.String()
		if c == s.Column {
			title += " " + s.Indicator()
		}
		t.Header = append(t.Header, title)
	}
	for _, p := range procs {
		t.Rows = append(t.Rows, p.Row())
	}
	return t
}

// BatchResult runs Batch and packages the rows for the console.
func (m *manager) BatchResult(ctx context.Context, opts BatchOptions) (*common.ExecutionResult, error) {
	procs, err := m.Batch(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &common.ExecutionResult{
		Output: &common.Output{
			Message: fmt.Sprintf("%s %s processes", m.theme.IconProcs, humanize.Comma(int64(len(procs)))),
			Table:   m.Table(procs, NewSort(opts.Sort)),
		},
	}, nil
}

// WriteJSON writes procs as a JSON array of records.
func WriteJSON(w io.Writer, procs []Process) error {
	recs := make([]map[string]any, len(procs))
	for i, p := range procs {
		recs[i] = Record(p)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}
