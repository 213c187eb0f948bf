package disk

import (
	"context"

	gdisk "github.com/shirou/gopsutil/v4/disk"
)

type systemProvider struct{}

// SystemProvider returns a Provider backed by the host operating system.
func SystemProvider() Provider {
	return systemProvider{}
}

func (systemProvider) Mounts(ctx context.Context) ([]Mount, error) {
	parts, err := gdisk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	mounts := make([]Mount, 0, len(parts))
	for _, p := range parts {
		mounts = append(mounts, Mount{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
		})
	}
	return mounts, nil
}

func (systemProvider) Usage(ctx context.Context, path string) (*Usage, error) {
	u, err := gdisk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Usage{
		Path:    u.Path,
		Total:   u.Total,
		Used:    u.Used,
		Free:    u.Free,
		Percent: u.UsedPercent,
	}, nil
}
