package monitor

import (
	"context"
	"fmt"
	"time"

	"shea/pkg/display"
)

// manager defines the internal state for sampling the host.
type manager struct {
	source Source
	theme  *display.Theme
	now    func() time.Time
}

// Manager is a pointer to the internal manager implementation.
type Manager = *manager

// NewManager creates a new monitor manager reading from src.
func NewManager(src Source, theme *display.Theme) Manager {
	if theme == nil {
		theme = display.DefaultTheme()
	}
	return &manager{source: src, theme: theme, now: time.Now}
}

// Snapshot samples the process list once and returns it sorted.
func (m *manager) Snapshot(ctx context.Context, s *Sort) ([]Process, error) {
	raw, err := m.source.Processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sample processes: %w", err)
	}
	now := m.now()
	procs := make([]Process, len(raw))
	for i, r := range raw {
		procs[i] = Shape(r, now)
	}
	s.Apply(procs)
	return procs, nil
}
