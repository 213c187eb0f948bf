package monitor

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	fastInterval = time.Second
	slowInterval = 2 * time.Second
)

var columnWidths = [...]int{8, 12, 8, 18, 8, 60}

// Options configure a monitor session.
type Options struct {
	Sort  Column
	Limit int
}

// Model is the bubbletea model of the process monitor.
type Model struct {
	ctx    context.Context
	mgr    Manager
	sort   *Sort
	picked Column
	limit  int

	table table.Model
	help  help.Model
	keys  keyMap

	cpu   CPUStats
	mem   MemStats
	info  SysInfo
	procs []Process

	procsBusy bool
	err       string
	width     int
}

type fastTickMsg struct{}
type slowTickMsg struct{}

type cpuMsg struct {
	cpu CPUStats
	mem MemStats
	err error
}

type infoMsg struct {
	info SysInfo
	err  error
}

type procsMsg struct {
	procs []Process
	err   error
}

// NewModel creates a monitor driven by m's source.
func (m *manager) NewModel(ctx context.Context, opts Options) *Model {
	if opts.Limit <= 0 {
		opts.Limit = DisplayLimit
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))

	mdl := &Model{
		ctx:    ctx,
		mgr:    m,
		sort:   NewSort(opts.Sort),
		picked: opts.Sort,
		limit:  opts.Limit,
		help:   help.New(),
		keys:   defaultKeyMap(),
		table: table.New(
			table.WithFocused(true),
			table.WithHeight(15),
			table.WithStyles(styles),
		),
	}
	mdl.table.SetColumns(mdl.columns())
	return mdl
}

// SortState exposes the active sort for inspection.
func (m *Model) SortState() *Sort { return m.sort }

// Picked returns the column highlighted by ←/→.
func (m *Model) Picked() Column { return m.picked }

// Processes returns the rows currently shown.
func (m *Model) Processes() []Process { return m.procs }

func (m *Model) columns() []table.Column {
	cols := make([]table.Column, 0, len(columnWidths))
	for _, c := range Columns() {
		title := c.String()
		if c == m.sort.Column {
			title += " " + m.sort.Indicator()
		}
		if c == m.picked && c != m.sort.Column {
			title = "[" + title + "]"
		}
		cols = append(cols, table.Column{Title: title, Width: columnWidths[c]})
	}
	return cols
}

func fastTick() tea.Cmd {
	return tea.Tick(fastInterval, func(time.Time) tea.Msg { return fastTickMsg{} })
}

func slowTick() tea.Cmd {
	return tea.Tick(slowInterval, func(time.Time) tea.Msg { return slowTickMsg{} })
}

func (m *Model) sampleCPU() tea.Cmd {
	ctx, src := m.ctx, m.mgr.source
	return func() tea.Msg {
		cpu, err := src.CPU(ctx)
		if err != nil {
			return cpuMsg{err: err}
		}
		mem, err := src.Memory(ctx)
		return cpuMsg{cpu: cpu, mem: mem, err: err}
	}
}

func (m *Model) sampleInfo() tea.Cmd {
	ctx, src := m.ctx, m.mgr.source
	return func() tea.Msg {
		info, err := src.SysInfo(ctx)
		return infoMsg{info: info, err: err}
	}
}

// sampleProcs is skipped while a previous sample is still running.
func (m *Model) sampleProcs() tea.Cmd {
	if m.procsBusy {
		return nil
	}
	m.procsBusy = true
	ctx, mgr := m.ctx, m.mgr
	return func() tea.Msg {
		procs, err := mgr.Snapshot(ctx, NewSort(ColCPU))
		return procsMsg{procs: procs, err: err}
	}
}

func (m *Model) refresh() tea.Cmd {
	return tea.Batch(m.sampleCPU(), m.sampleInfo(), m.sampleProcs())
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), fastTick(), slowTick())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.table.SetHeight(max(msg.Height-lipgloss.Height(m.panels())-6, 5))
		return m, nil

	case fastTickMsg:
		return m, tea.Batch(m.sampleCPU(), fastTick())

	case slowTickMsg:
		return m, tea.Batch(m.sampleInfo(), m.sampleProcs(), slowTick())

	case cpuMsg:
		if msg.err != nil {
			m.fail("cpu", msg.err)
			return m, nil
		}
		m.cpu, m.mem = msg.cpu, msg.mem
		return m, nil

	case infoMsg:
		if msg.err != nil {
			m.fail("sysinfo", msg.err)
			return m, nil
		}
		m.info = msg.info
		return m, nil

	case procsMsg:
		m.procsBusy = false
		if msg.err != nil {
			m.fail("processes", msg.err)
			return m, nil
		}
		m.err = ""
		m.procs = msg.procs
		m.applySort()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		case key.Matches(msg, m.keys.SortBy):
			m.selectColumn(Column(msg.Runes[0] - '1'))
			return m, nil
		case key.Matches(msg, m.keys.Left):
			m.pick(-1)
			return m, nil
		case key.Matches(msg, m.keys.Right):
			m.pick(1)
			return m, nil
		case key.Matches(msg, m.keys.Select):
			m.selectColumn(m.picked)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) fail(what string, err error) {
	if m.ctx.Err() != nil {
		return
	}
	slog.Debug("Sample failed", "what", what, "err", err)
	m.err = what + ": " + err.Error()
}

func (m *Model) pick(delta int) {
	n := len(columnWidths)
	m.picked = Column((int(m.picked) + delta + n) % n)
	m.table.SetColumns(m.columns())
}

func (m *Model) selectColumn(c Column) {
	m.sort.Select(c)
	m.picked = c
	m.applySort()
}

// applySort reorders the last sample and rebuilds the rows without
// waiting for the next refresh.
func (m *Model) applySort() {
	m.sort.Apply(m.procs)
	shown := m.procs
	if len(shown) > m.limit {
		shown = shown[:m.limit]
	}
	rows := make([]table.Row, len(shown))
	for i, p := range shown {
		rows[i] = p.Row()
	}
	m.table.SetColumns(m.columns())
	m.table.SetRows(rows)
}

func (m *Model) panels() string {
	t := m.mgr.theme
	return lipgloss.JoinHorizontal(lipgloss.Top,
		CPUPanel(t, m.cpu),
		" ",
		MemoryPanel(t, m.mem),
		" ",
		InfoPanel(t, m.info),
	)
}

func (m *Model) View() string {
	t := m.mgr.theme
	var b strings.Builder
	b.WriteString(t.Styled(t.Bold, "shea top"))
	b.WriteString(t.Styled(t.Dim, "  Process Monitor  "+time.Now().Format("15:04:05")))
	b.WriteString("\n")
	b.WriteString(m.panels())
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	if m.err != "" {
		b.WriteString(t.Styled(t.Red, m.err))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Run starts the monitor and blocks until the user quits.
func (m *manager) Run(ctx context.Context, opts Options) error {
	_, err := tea.NewProgram(m.NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

var _ tea.Model = (*Model)(nil)
