// Package disk reports usage of mounted filesystems.
package disk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"shea/pkg/common"
	"shea/pkg/format"
)

// ErrNoPartitions is returned when no readable partition was found.
var ErrNoPartitions = errors.New("no disk partitions found")

const (
	barWidth      = 20
	usageWorkers  = 8
	infoRuleWidth = 100
)

// Partitions returns every mount whose usage can be read, in provider order.
// Mounts that cannot be queried (permissions, stale network mounts) are skipped.
func (m *manager) Partitions(ctx context.Context) ([]Partition, error) {
	mounts, err := m.provider.Mounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list partitions: %w", err)
	}

	usages := make([]*Usage, len(mounts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(usageWorkers)
	for i, mnt := range mounts {
		g.Go(func() error {
			u, err := m.provider.Usage(ctx, mnt.Mountpoint)
			if err != nil {
				slog.Debug("Skipping partition", "mountpoint", mnt.Mountpoint, "err", err)
				return nil
			}
			usages[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var parts []Partition
	for i, mnt := range mounts {
		if usages[i] == nil {
			continue
		}
		parts = append(parts, Partition{Mount: mnt, Usage: *usages[i]})
	}
	return parts, nil
}

// Usage reports usage of the filesystem holding path.
func (m *manager) Usage(ctx context.Context, path string) (*Usage, error) {
	return m.provider.Usage(ctx, path)
}

// Info renders a usage table of all readable partitions.
func (m *manager) Info(ctx context.Context) (*common.ExecutionResult, error) {
	parts, err := m.Partitions(ctx)
	if err != nil {
		return nil, err
	}
	if len(parts) == 0 {
		return nil, ErrNoPartitions
	}

	t := m.theme
	table := &common.Table{
		Header: []string{"Device", "Usage", "Used / Total", "Bar", "Mount Point"},
	}
	for _, p := range parts {
		pct := p.Usage.Percent
		table.Rows = append(table.Rows, []string{
			p.Device,
			t.Usage(pct, fmt.Sprintf("%6.1f%%", pct)),
			fmt.Sprintf("%8s / %-8s", format.Ubytes(p.Usage.Used), format.Ubytes(p.Usage.Total)),
			t.Usage(pct, format.Bar(pct, barWidth)),
			p.Mountpoint,
		})
	}

	return &common.ExecutionResult{
		Output: &common.Output{
			Message: fmt.Sprintf("%s %s\n%s", t.IconDisk, t.Styled(t.Bold, "Disk Usage"), strings.Repeat("=", infoRuleWidth)),
			Table:   table,
		},
	}, nil
}
