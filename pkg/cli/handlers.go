package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"shea/pkg/browser"
	"shea/pkg/config"
	"shea/pkg/disk"
	"shea/pkg/display"
	"shea/pkg/listing"
	"shea/pkg/monitor"
	"shea/pkg/sizecache"
)

// Managers bundles the services handlers work with.
type Managers struct {
	Disp    display.Display
	SysCfg  config.ReadOnly
	Prefs   *config.Preferences
	DiskMgr disk.Manager
	TopMgr  monitor.Manager
}

// RegisterHandlers binds every command of the embedded definitions.
func RegisterHandlers(e *Engine, m *Managers) {
	e.Register("list", HandlerFunc(func(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
		return runList(ctx, m, inv)
	}))
	e.Register("disk", HandlerFunc(func(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
		return runDisk(ctx, m, inv)
	}))
	e.Register("top", HandlerFunc(func(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
		return runTop(ctx, m, inv)
	}))
	e.Register("version", HandlerFunc(func(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
		return runVersion(m)
	}))
}

func runVersion(m *Managers) (*ExecutionResult, error) {
	m.Disp.Print(config.GetBuildInfo() + "\n")
	return &ExecutionResult{ExitCode: 0}, nil
}

func runList(ctx context.Context, m *Managers, inv *Invocation) (*ExecutionResult, error) {
	path := config.ExpandHome(m.SysCfg, inv.Arg("path", "."))
	opts := listing.Options{
		ShowAll: inv.Bool("all") || m.Prefs.ShowHidden,
		Err:     m.Disp.Stderr(),
	}
	if depth, ok := inv.Int("depth"); ok {
		if depth < 0 {
			m.Disp.Errorf("depth must be >= 0")
			return &ExecutionResult{ExitCode: 2}, nil
		}
		opts.Depth = &depth
	}
	m.Disp.Log(fmt.Sprintf("listing %s (tree=%v, all=%v)", path, inv.Bool("tree"), opts.ShowAll))

	show := listing.List
	if inv.Bool("tree") {
		show = listing.Tree
	}
	if err := show(m.Disp.Stdout(), path, opts); err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			// already reported on stderr
			return &ExecutionResult{ExitCode: 1}, nil
		}
		return nil, err
	}
	return &ExecutionResult{ExitCode: 0}, nil
}

func runDisk(ctx context.Context, m *Managers, inv *Invocation) (*ExecutionResult, error) {
	arg, ok := inv.Args["path"]
	if !ok {
		res, err := m.DiskMgr.Info(ctx)
		if errors.Is(err, disk.ErrNoPartitions) {
			fmt.Fprintln(m.Disp.Stderr(), "No disk partitions found.")
			return &ExecutionResult{ExitCode: 0}, nil
		}
		if err != nil {
			return nil, err
		}
		m.Disp.RenderOutput(res.Output)
		return res, nil
	}

	dir, code := browseTarget(m, arg)
	if code != 0 {
		return &ExecutionResult{ExitCode: code}, nil
	}

	if err := redirectLog(m); err != nil {
		return nil, err
	}
	err := browser.Run(ctx, dir, browser.Options{
		Cache:   sizecache.NewSyncCache(),
		Disk:    m.DiskMgr,
		Theme:   display.DefaultTheme(),
		Workers: m.Prefs.ScanWorkers,
	})
	if err != nil {
		return nil, fmt.Errorf("disk browser: %w", err)
	}
	return &ExecutionResult{ExitCode: 0}, nil
}

// browseTarget resolves the directory to explore, reporting problems on
// stderr and returning a non-zero exit code for them.
func browseTarget(m *Managers, arg string) (string, int) {
	path, err := filepath.Abs(config.ExpandHome(m.SysCfg, arg))
	if err != nil {
		m.Disp.Errorf("error: %v", err)
		return "", 1
	}
	info, err := os.Stat(path)
	if err != nil {
		m.Disp.Errorf("path does not exist: %s", path)
		return "", 1
	}
	if !info.IsDir() {
		m.Disp.Errorf("not a directory: %s", path)
		return "", 1
	}
	return sizecache.Key(path), 0
}

func runTop(ctx context.Context, m *Managers, inv *Invocation) (*ExecutionResult, error) {
	sortName, ok := inv.String("sort")
	if !ok {
		sortName = m.Prefs.TopSort
	}
	col, err := monitor.ParseColumn(sortName)
	if err != nil {
		return nil, &UsageError{Msg: err.Error()}
	}
	limit, ok := inv.Int("limit")
	if !ok {
		limit = m.Prefs.TopLimit
	}
	if limit <= 0 {
		return nil, usageErrorf("limit must be > 0")
	}
	filter, hasFilter := inv.String("filter")

	if !inv.Bool("batch") {
		if hasFilter || inv.Bool("json") {
			return nil, usageErrorf("--filter and --json require --batch")
		}
		if err := redirectLog(m); err != nil {
			return nil, err
		}
		if err := m.TopMgr.Run(ctx, monitor.Options{Sort: col, Limit: limit}); err != nil {
			return nil, fmt.Errorf("process monitor: %w", err)
		}
		return &ExecutionResult{ExitCode: 0}, nil
	}

	opts := monitor.BatchOptions{Sort: col, Limit: limit, Filter: filter, JSON: inv.Bool("json")}
	if opts.JSON {
		procs, err := m.TopMgr.Batch(ctx, opts)
		if err != nil {
			return nil, err
		}
		if err := monitor.WriteJSON(m.Disp.Stdout(), procs); err != nil {
			return nil, err
		}
		return &ExecutionResult{ExitCode: 0}, nil
	}
	res, err := m.TopMgr.BatchResult(ctx, opts)
	if err != nil {
		return nil, err
	}
	m.Disp.RenderOutput(res.Output)
	return res, nil
}

// redirectLog moves logging off the terminal before a full-screen view
// takes it over.
func redirectLog(m *Managers) error {
	f, err := config.OpenLogFile(m.SysCfg)
	if err != nil {
		return err
	}
	m.Disp.RedirectLog(f)
	return nil
}
