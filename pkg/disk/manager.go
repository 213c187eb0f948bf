package disk

import (
	"context"

	"shea/pkg/display"
)

// manager defines the internal state for inspecting mounted filesystems.
type manager struct {
	provider Provider
	theme    *display.Theme
}

// Manager is a pointer to the internal manager implementation.
type Manager = *manager

// NewManager creates a new disk manager backed by the given provider.
func NewManager(p Provider, theme *display.Theme) Manager {
	if theme == nil {
		theme = display.DefaultTheme()
	}
	return &manager{provider: p, theme: theme}
}

// Mount is a mounted filesystem as reported by the provider.
type Mount struct {
	Device     string
	Mountpoint string
	Fstype     string
}

// Usage represents space accounting for the filesystem holding a path.
type Usage struct {
	Path    string
	Total   uint64
	Used    uint64
	Free    uint64
	Percent float64
}

// Partition is a mount together with its usage.
type Partition struct {
	Mount
	Usage Usage
}

// Provider supplies filesystem information from the operating system.
type Provider interface {
	// Mounts lists physical partitions.
	Mounts(ctx context.Context) ([]Mount, error)
	// Usage reports space usage of the filesystem containing path.
	Usage(ctx context.Context, path string) (*Usage, error)
}
