package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"shea/pkg/config"
	"shea/pkg/disk"
	"shea/pkg/display"
	"shea/pkg/monitor"
)

type stubProvider struct {
	mounts []disk.Mount
}

func (s *stubProvider) Mounts(context.Context) ([]disk.Mount, error) { return s.mounts, nil }

func (s *stubProvider) Usage(_ context.Context, path string) (*disk.Usage, error) {
	return &disk.Usage{Path: path, Total: 100 << 30, Used: 91 << 30, Percent: 91}, nil
}

type stubSource struct{}

func (stubSource) CPU(context.Context) (monitor.CPUStats, error) {
	return monitor.NewCPUStats([]float64{1}), nil
}
func (stubSource) Memory(context.Context) (monitor.MemStats, error) { return monitor.MemStats{}, nil }
func (stubSource) SysInfo(context.Context) (monitor.SysInfo, error) { return monitor.SysInfo{}, nil }

func (stubSource) Processes(context.Context) ([]monitor.RawProcess, error) {
	now := time.Now()
	return []monitor.RawProcess{
		{PID: 10, Name: "small", Username: "root", CPU: 1, RSS: 1 << 20, CreateTime: now},
		{PID: 20, Name: "big", Username: "dev", CPU: 2, RSS: 900 << 20, CreateTime: now},
	}, nil
}

type harness struct {
	engine *Engine
	out    *bytes.Buffer
	err    *bytes.Buffer
	disk   *stubProvider
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	engine, _ := newTestEngine(t, DefaultDSL)

	cfg, err := config.Init()
	if err != nil {
		t.Fatalf("config.Init: %v", err)
	}
	dir := t.TempDir()
	w := cfg.Checkout()
	w.SetConfigDir(filepath.Join(dir, "config"))
	w.SetStateDir(filepath.Join(dir, "state"))
	cfg.Freeze()

	var out, errb bytes.Buffer
	h := &harness{
		engine: engine,
		out:    &out,
		err:    &errb,
		disk:   &stubProvider{mounts: []disk.Mount{{Device: "/dev/nvme0n1p2", Mountpoint: "/"}}},
	}
	RegisterHandlers(engine, &Managers{
		Disp:    display.NewWriterDisplay(&out, &errb),
		SysCfg:  cfg,
		Prefs:   config.DefaultPreferences(),
		DiskMgr: disk.NewManager(h.disk, nil),
		TopMgr:  monitor.NewManager(stubSource{}, nil),
	})
	return h
}

func (h *harness) run(t *testing.T, args ...string) (*ExecutionResult, error) {
	t.Helper()
	h.out.Reset()
	h.err.Reset()
	return h.engine.Run(context.Background(), args)
}

func tree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"sub/deeper", ".hidden"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range []string{"a.txt", "sub/b.txt", "sub/deeper/c.txt"} {
		if err := os.WriteFile(filepath.Join(root, f), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestListCommand(t *testing.T) {
	h := newHarness(t)
	root := tree(t)

	res, err := h.run(t, "list", root)
	if err != nil || res.ExitCode != 0 {
		t.Fatalf("list: %v %+v", err, res)
	}
	if got := h.out.String(); got != "📁 sub\n📄 a.txt\n" {
		t.Errorf("list output = %q", got)
	}

	h.run(t, "list", "-a", root)
	if !strings.HasPrefix(h.out.String(), "📁 .hidden\n") {
		t.Errorf("list -a output = %q", h.out.String())
	}

	h.run(t, "list", "-t", "-d", "1", root)
	want := filepath.Base(root) + "\n├── 📁 sub\n└── 📄 a.txt\n"
	if h.out.String() != want {
		t.Errorf("tree output = %q, want %q", h.out.String(), want)
	}
}

func TestListNegativeDepth(t *testing.T) {
	h := newHarness(t)
	res, err := h.run(t, "list", "--tree", "--depth", "-1")
	if err != nil || res.ExitCode != 2 {
		t.Fatalf("got %v %+v", err, res)
	}
	if h.err.String() != "shea: depth must be >= 0\n" {
		t.Errorf("stderr = %q", h.err.String())
	}
}

func TestListMissingPath(t *testing.T) {
	h := newHarness(t)
	missing := filepath.Join(t.TempDir(), "nope")
	res, err := h.run(t, "list", missing)
	if err != nil || res.ExitCode != 1 {
		t.Fatalf("got %v %+v", err, res)
	}
	if !strings.Contains(h.err.String(), "no such file or directory: "+missing) {
		t.Errorf("stderr = %q", h.err.String())
	}
}

func TestDiskSummary(t *testing.T) {
	h := newHarness(t)
	res, err := h.run(t, "disk")
	if err != nil || res.ExitCode != 0 {
		t.Fatalf("disk: %v %+v", err, res)
	}
	for _, want := range []string{"Disk Usage", "Mount Point", "/dev/nvme0n1p2", "91.0%", "91.0GB / 100.0GB"} {
		if !strings.Contains(h.out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, h.out.String())
		}
	}

	h.disk.mounts = nil
	res, err = h.run(t, "disk")
	if err != nil || res.ExitCode != 0 {
		t.Fatalf("disk: %v %+v", err, res)
	}
	if h.err.String() != "No disk partitions found.\n" {
		t.Errorf("stderr = %q", h.err.String())
	}
}

func TestDiskBrowseValidation(t *testing.T) {
	h := newHarness(t)
	root := tree(t)

	missing := filepath.Join(root, "gone")
	res, err := h.run(t, "disk", missing)
	if err != nil || res.ExitCode != 1 || h.err.String() != "shea: path does not exist: "+missing+"\n" {
		t.Errorf("missing: %v %+v %q", err, res, h.err.String())
	}

	file := filepath.Join(root, "a.txt")
	res, err = h.run(t, "disk", file)
	if err != nil || res.ExitCode != 1 || h.err.String() != "shea: not a directory: "+file+"\n" {
		t.Errorf("file: %v %+v %q", err, res, h.err.String())
	}
}

func TestTopBatch(t *testing.T) {
	h := newHarness(t)
	res, err := h.run(t, "top", "--batch", "--sort", "mem", "-n", "1")
	if err != nil || res.ExitCode != 0 {
		t.Fatalf("top: %v %+v", err, res)
	}
	out := h.out.String()
	if !strings.Contains(out, "MEMORY ▼") || !strings.Contains(out, "big") || strings.Contains(out, "small") {
		t.Errorf("batch output:\n%s", out)
	}
}

func TestTopBatchJSONFilter(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run(t, "top", "-b", "-j", "-f", `.user == "root"`); err != nil {
		t.Fatal(err)
	}
	var recs []map[string]any
	if err := json.Unmarshal(h.out.Bytes(), &recs); err != nil {
		t.Fatalf("invalid json %q: %v", h.out.String(), err)
	}
	if len(recs) != 1 || recs[0]["command"] != "small" {
		t.Errorf("records = %v", recs)
	}
}

func TestTopUsageErrors(t *testing.T) {
	h := newHarness(t)
	for _, args := range [][]string{
		{"top", "--sort", "nice", "--batch"},
		{"top", "--json"},
		{"top", "--filter", ".cpu > 1"},
		{"top", "-b", "-n", "0"},
	} {
		if _, err := h.run(t, args...); !IsUsage(err) {
			t.Errorf("%v: expected usage error, got %v", args, err)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	if _, err := h.run(t, "version"); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(h.out.String(), "shea ") {
		t.Errorf("version = %q", h.out.String())
	}
}
