package monitor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeSource struct {
	procs []RawProcess
	err   error
	calls int
}

func (f *fakeSource) CPU(context.Context) (CPUStats, error) {
	return NewCPUStats([]float64{10, 30}), nil
}

func (f *fakeSource) Memory(context.Context) (MemStats, error) {
	return MemStats{RAM: Usage{Total: 8 << 30, Used: 6 << 30, Percent: 75}}, nil
}

func (f *fakeSource) SysInfo(context.Context) (SysInfo, error) {
	return SysInfo{Uptime: 2*time.Hour + 5*time.Minute, Processes: len(f.procs)}, nil
}

func (f *fakeSource) Processes(context.Context) ([]RawProcess, error) {
	f.calls++
	return f.procs, f.err
}

func newFake() *fakeSource {
	return &fakeSource{procs: []RawProcess{
		{PID: 1, Name: "init", Username: "root", CPU: 0.1, RSS: 4 << 20, CreateTime: epoch.Add(-time.Hour), Cmdline: []string{"/sbin/init"}},
		{PID: 200, Name: "postgres", Username: "postgres", CPU: 35, RSS: 512 << 20, CreateTime: epoch.Add(-10 * time.Minute)},
		{PID: 300, Name: "go", Username: "dev", CPU: 80, RSS: 64 << 20, CreateTime: epoch.Add(-30 * time.Second), Cmdline: []string{"go", "test", "./..."}},
	}}
}

func newTestManager(src Source) Manager {
	m := NewManager(src, nil)
	m.now = func() time.Time { return epoch }
	return m
}

func TestNewCPUStats(t *testing.T) {
	s := NewCPUStats([]float64{10, 20, 60})
	if s.Average != 30 {
		t.Errorf("Average = %v, want 30", s.Average)
	}
	if NewCPUStats(nil).Average != 0 {
		t.Error("empty stats should average 0")
	}
}

func TestBatchSortAndLimit(t *testing.T) {
	m := newTestManager(newFake())
	procs, err := m.Batch(context.Background(), BatchOptions{Sort: ColCPU, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !equal(pids(procs), []int32{300, 200}) {
		t.Errorf("got %v", pids(procs))
	}
	if procs[0].Runtime != 30*time.Second {
		t.Errorf("runtime = %v", procs[0].Runtime)
	}
}

func TestBatchFilter(t *testing.T) {
	m := newTestManager(newFake())
	tests := []struct {
		filter string
		want   []int32
	}{
		{`.cpu > 10`, []int32{300, 200}},
		{`.user == "root"`, []int32{1}},
		{`.command | test("^go ")`, []int32{300}},
		{`.mem_bytes >= 64 * 1024 * 1024 and .runtime_seconds > 60`, []int32{200}},
		{`empty`, nil},
		{`null`, nil},
	}
	for _, tt := range tests {
		procs, err := m.Batch(context.Background(), BatchOptions{Sort: ColCPU, Filter: tt.filter})
		if err != nil {
			t.Fatalf("%s: %v", tt.filter, err)
		}
		if !equal(pids(procs), tt.want) {
			t.Errorf("%s: got %v, want %v", tt.filter, pids(procs), tt.want)
		}
	}
}

func TestBatchBadFilter(t *testing.T) {
	src := newFake()
	m := newTestManager(src)
	if _, err := m.Batch(context.Background(), BatchOptions{Filter: ".cpu >"}); err == nil {
		t.Fatal("expected parse error")
	}
	if src.calls != 0 {
		t.Error("a bad filter should fail before sampling")
	}
	if _, err := m.Batch(context.Background(), BatchOptions{Filter: `error("boom")`}); err == nil {
		t.Fatal("expected runtime error")
	}
}

func TestBatchSourceError(t *testing.T) {
	src := newFake()
	src.err = errors.New("no /proc")
	if _, err := newTestManager(src).Batch(context.Background(), BatchOptions{}); err == nil || !strings.Contains(err.Error(), "no /proc") {
		t.Fatalf("err = %v", err)
	}
}

func TestBatchResultTable(t *testing.T) {
	m := newTestManager(newFake())
	res, err := m.BatchResult(context.Background(), BatchOptions{Sort: ColMemory})
	if err != nil {
		t.Fatal(err)
	}
	tbl := res.Output.Table
	if tbl.Header[3] != "MEMORY ▼" {
		t.Errorf("header = %v", tbl.Header)
	}
	if tbl.Rows[0][0] != "200" || tbl.Rows[0][5] != "postgres" {
		t.Errorf("first row = %v", tbl.Rows[0])
	}
	if !strings.Contains(res.Output.Message, "3 processes") {
		t.Errorf("message = %q", res.Output.Message)
	}
}

func TestWriteJSON(t *testing.T) {
	m := newTestManager(newFake())
	procs, _ := m.Batch(context.Background(), BatchOptions{Sort: ColPID})
	var buf bytes.Buffer
	if err := WriteJSON(&buf, procs); err != nil {
		t.Fatal(err)
	}
	var recs []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 || recs[0]["pid"] != float64(1) || recs[0]["command"] != "/sbin/init" {
		t.Errorf("records = %v", recs)
	}
}

func TestModelSamplesAndSorts(t *testing.T) {
	m := newTestManager(newFake())
	mdl := m.NewModel(context.Background(), Options{Sort: ColCPU})

	mdl.Update(mdl.sampleCPU()())
	mdl.Update(mdl.sampleInfo()())
	mdl.Update(mdl.sampleProcs()())

	if got := pids(mdl.Processes()); !equal(got, []int32{300, 200, 1}) {
		t.Fatalf("initial order %v", got)
	}

	mdl.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	if mdl.SortState().Column != ColPID || mdl.SortState().Desc {
		t.Fatalf("sort = %+v", mdl.SortState())
	}
	if got := pids(mdl.Processes()); !equal(got, []int32{1, 200, 300}) {
		t.Errorf("PID order %v", got)
	}

	mdl.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	if got := pids(mdl.Processes()); !equal(got, []int32{300, 200, 1}) {
		t.Errorf("PID desc order %v", got)
	}

	mdl.Update(tea.KeyMsg{Type: tea.KeyRight})
	mdl.Update(tea.KeyMsg{Type: tea.KeyRight})
	if mdl.Picked() != ColCPU {
		t.Fatalf("picked = %v", mdl.Picked())
	}
	mdl.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	if mdl.SortState().Column != ColCPU || !mdl.SortState().Desc {
		t.Errorf("sort = %+v", mdl.SortState())
	}

	view := mdl.View()
	for _, want := range []string{"CPU Usage", "Average:", "Memory Usage", "75.0%", "2h5m", "CPU% ▼", "go test ./..."} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModelLimit(t *testing.T) {
	m := newTestManager(newFake())
	mdl := m.NewModel(context.Background(), Options{Sort: ColCPU, Limit: 1})
	mdl.Update(mdl.sampleProcs()())
	if rows := mdl.table.Rows(); len(rows) != 1 || rows[0][0] != "300" {
		t.Errorf("rows = %v", rows)
	}
}

func TestModelSkipsOverlappingProcessSamples(t *testing.T) {
	m := newTestManager(newFake())
	mdl := m.NewModel(context.Background(), Options{})
	first := mdl.sampleProcs()
	if first == nil {
		t.Fatal("first sample not scheduled")
	}
	if mdl.sampleProcs() != nil {
		t.Error("second sample scheduled while the first is running")
	}
	mdl.Update(first())
	if mdl.sampleProcs() == nil {
		t.Error("sampling not resumed after completion")
	}
}

func TestModelShowsErrors(t *testing.T) {
	src := newFake()
	src.err = errors.New("denied")
	mdl := newTestManager(src).NewModel(context.Background(), Options{})
	mdl.Update(mdl.sampleProcs()())
	if !strings.Contains(mdl.View(), "processes:") {
		t.Error("error not shown")
	}
}
