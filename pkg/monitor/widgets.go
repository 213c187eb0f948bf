package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shea/pkg/display"
	"shea/pkg/format"
)

const (
	cpuBarWidth  = 20
	memBarWidth  = 40
	infoPanelMin = 30
)

var panelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("6")).
	Padding(0, 1)

func title(t *display.Theme, icon, text string) string {
	return icon + " " + t.Styled(t.Cyan.Bold(true), text)
}

// CPUPanel renders one bar per core followed by the average.
func CPUPanel(t *display.Theme, s CPUStats) string {
	lines := []string{title(t, t.IconCPU, "CPU Usage"), ""}
	for i, pct := range s.PerCore {
		lines = append(lines, fmt.Sprintf("Core %2d: %s %5.1f%%", i, t.Usage(pct, format.Bar(pct, cpuBarWidth)), pct))
	}
	lines = append(lines, "", t.Styled(t.Bold, fmt.Sprintf("Average: %s %5.1f%%",
		t.Usage(s.Average, format.Bar(s.Average, cpuBarWidth)), s.Average)))
	return panelStyle.Render(strings.Join(lines, "\n"))
}

// MemoryPanel renders RAM and swap bars.
func MemoryPanel(t *display.Theme, s MemStats) string {
	lines := []string{
		title(t, t.IconMem, "Memory Usage"),
		"",
		"RAM:  " + t.Usage(s.RAM.Percent, format.Bar(s.RAM.Percent, memBarWidth)),
		"      " + usageText(s.RAM),
		"",
		"Swap: " + t.Usage(s.Swap.Percent, format.Bar(s.Swap.Percent, memBarWidth)),
	}
	if s.Swap.Total > 0 {
		lines = append(lines, "      "+usageText(s.Swap))
	} else {
		lines = append(lines, "      "+t.Styled(t.Dim, "no swap"))
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func usageText(u Usage) string {
	return fmt.Sprintf("%5.1f%% (%s / %s)", u.Percent, format.Ubytes(u.Used), format.Ubytes(u.Total))
}

// InfoPanel renders uptime and the process count.
func InfoPanel(t *display.Theme, s SysInfo) string {
	lines := []string{
		title(t, t.IconGear, "System Info"),
		"",
		fmt.Sprintf("%s  Uptime:    %s", t.IconClock, format.Duration(s.Uptime)),
		fmt.Sprintf("%s Processes: %d", t.IconProcs, s.Processes),
	}
	return panelStyle.Width(infoPanelMin).Render(strings.Join(lines, "\n"))
}
