package monitor

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sync/errgroup"
)

const (
	cpuInterval   = 100 * time.Millisecond
	primeInterval = 100 * time.Millisecond
	procWorkers   = 16
)

// CPUStats holds utilisation per logical core and their mean.
type CPUStats struct {
	PerCore []float64
	Average float64
}

// Usage is space accounting for one memory pool.
type Usage struct {
	Total   uint64
	Used    uint64
	Percent float64
}

// MemStats holds RAM and swap usage.
type MemStats struct {
	RAM  Usage
	Swap Usage
}

// SysInfo holds host-wide counters.
type SysInfo struct {
	Uptime    time.Duration
	Processes int
}

// Source supplies metrics from the operating system.
type Source interface {
	CPU(ctx context.Context) (CPUStats, error)
	Memory(ctx context.Context) (MemStats, error)
	SysInfo(ctx context.Context) (SysInfo, error)
	// Processes returns a snapshot of every process that could be read.
	Processes(ctx context.Context) ([]RawProcess, error)
}

// NewCPUStats computes the average of per-core readings.
func NewCPUStats(perCore []float64) CPUStats {
	s := CPUStats{PerCore: perCore}
	if len(perCore) == 0 {
		return s
	}
	var sum float64
	for _, p := range perCore {
		sum += p
	}
	s.Average = sum / float64(len(perCore))
	return s
}

type systemSource struct {
	mu sync.Mutex
	// handles are kept between samples so CPU percentages are deltas
	// since the previous refresh rather than lifetime averages.
	handles map[int32]*process.Process
}

// SystemSource returns a Source backed by the host operating system.
func SystemSource() Source {
	return &systemSource{handles: make(map[int32]*process.Process)}
}

func (s *systemSource) CPU(ctx context.Context) (CPUStats, error) {
	pcts, err := cpu.PercentWithContext(ctx, cpuInterval, true)
	if err != nil {
		return CPUStats{}, err
	}
	return NewCPUStats(pcts), nil
}

func (s *systemSource) Memory(ctx context.Context) (MemStats, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemStats{}, err
	}
	stats := MemStats{RAM: Usage{Total: vm.Total, Used: vm.Used, Percent: vm.UsedPercent}}
	sw, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		slog.Debug("Swap unavailable", "err", err)
		return stats, nil
	}
	stats.Swap = Usage{Total: sw.Total, Used: sw.Used, Percent: sw.UsedPercent}
	return stats, nil
}

func (s *systemSource) SysInfo(ctx context.Context) (SysInfo, error) {
	var info SysInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		up, err := host.UptimeWithContext(gctx)
		if err != nil {
			return err
		}
		info.Uptime = time.Duration(up) * time.Second
		return nil
	})
	g.Go(func() error {
		pids, err := process.PidsWithContext(gctx)
		if err != nil {
			return err
		}
		info.Processes = len(pids)
		return nil
	})
	return info, g.Wait()
}

func (s *systemSource) Processes(ctx context.Context) ([]RawProcess, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	live := make(map[int32]*process.Process, len(procs))
	fresh := false
	for _, p := range procs {
		if h, ok := s.handles[p.Pid]; ok {
			live[p.Pid] = h
			continue
		}
		// first reading only records the CPU counters
		if _, err := p.PercentWithContext(ctx, 0); err == nil {
			fresh = true
		}
		live[p.Pid] = p
	}
	s.handles = live

	if fresh {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(primeInterval):
		}
	}

	handles := make([]*process.Process, 0, len(live))
	for _, h := range live {
		handles = append(handles, h)
	}
	out := make([]*RawProcess, len(handles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(procWorkers)
	for i, h := range handles {
		g.Go(func() error {
			r, err := readProcess(gctx, h)
			if err != nil {
				// exited or not ours to read
				slog.Debug("Skipping process", "pid", h.Pid, "err", err)
				return nil
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := make([]RawProcess, 0, len(out))
	for _, r := range out {
		if r != nil {
			res = append(res, *r)
		}
	}
	return res, ctx.Err()
}

func readProcess(ctx context.Context, p *process.Process) (*RawProcess, error) {
	name, err := p.NameWithContext(ctx)
	if err != nil {
		return nil, err
	}
	cpuPct, err := p.PercentWithContext(ctx, 0)
	if err != nil {
		return nil, err
	}
	created, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return nil, err
	}
	r := &RawProcess{
		PID:        p.Pid,
		Name:       name,
		Username:   username(ctx, p),
		CPU:        cpuPct,
		CreateTime: time.UnixMilli(created),
	}
	if pct, err := p.MemoryPercentWithContext(ctx); err == nil {
		r.MemPercent = float64(pct)
	}
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		r.RSS = mi.RSS
	}
	if args, err := p.CmdlineSliceWithContext(ctx); err == nil {
		r.Cmdline = args
	}
	return r, nil
}

// username falls back to the numeric uid when it has no passwd entry.
func username(ctx context.Context, p *process.Process) string {
	if u, err := p.UsernameWithContext(ctx); err == nil {
		return u
	}
	if uids, err := p.UidsWithContext(ctx); err == nil && len(uids) > 0 {
		return strconv.Itoa(int(uids[0]))
	}
	return "?"
}
