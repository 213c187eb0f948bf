package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"shea/pkg/disk"
	"shea/pkg/display"
	"shea/pkg/format"
	"shea/pkg/sizecache"
)

const (
	statsBarWidth = 30
	colType       = 4
	colSize       = 10
	colBytes      = 18
	// lines used by everything but the table body
	chromeHeight = 7
)

// UsageSource reports usage of the filesystem holding a path.
type UsageSource interface {
	Usage(ctx context.Context, path string) (*disk.Usage, error)
}

// Options configure a browser session.
type Options struct {
	// Cache is shared by every view of the session; one is created if nil.
	Cache *sizecache.SyncCache
	// Disk supplies the usage line; it may be nil.
	Disk    UsageSource
	Theme   *display.Theme
	Workers int
}

// Model is the bubbletea model of the disk browser.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	dir    string
	cache  *sizecache.SyncCache
	loader *Loader
	disk   UsageSource
	theme  *display.Theme

	table table.Model
	help  help.Model
	keys  keyMap

	entries []Entry
	stats   string
	status  string
	loading bool
	seq     int
	width   int
}

// loadedMsg carries the result of an asynchronous directory load.
type loadedMsg struct {
	seq     int
	entries []Entry
	stats   string
	err     error
}

// New creates a browser rooted at dir, which should be an absolute path.
func New(ctx context.Context, dir string, opts Options) *Model {
	if opts.Cache == nil {
		opts.Cache = sizecache.NewSyncCache()
	}
	if opts.Theme == nil {
		opts.Theme = display.DefaultTheme()
	}

	km := table.DefaultKeyMap()
	km.HalfPageUp.SetKeys("ctrl+u")
	km.HalfPageDown.SetKeys("ctrl+d")

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))

	m := &Model{
		ctx:    ctx,
		dir:    dir,
		cache:  opts.Cache,
		loader: &Loader{Cache: opts.Cache, Workers: opts.Workers},
		disk:   opts.Disk,
		theme:  opts.Theme,
		help:   help.New(),
		keys:   defaultKeyMap(),
		table: table.New(
			table.WithColumns(columns(80)),
			table.WithFocused(true),
			table.WithHeight(20),
			table.WithKeyMap(km),
			table.WithStyles(styles),
		),
	}
	return m
}

// Dir returns the directory currently shown.
func (m *Model) Dir() string { return m.dir }

// Status returns the latest notification.
func (m *Model) Status() string { return m.status }

// Entries returns the rows currently shown.
func (m *Model) Entries() []Entry { return m.entries }

func columns(width int) []table.Column {
	name := width - colType - colSize - colBytes - 8
	if name < 12 {
		name = 12
	}
	return []table.Column{
		{Title: "Type", Width: colType},
		{Title: "Name", Width: name},
		{Title: "Size", Width: colSize},
		{Title: "Size (Bytes)", Width: colBytes},
	}
}

func (m *Model) Init() tea.Cmd {
	return m.load()
}

// load starts reading m.dir, superseding any load in flight.
func (m *Model) load() tea.Cmd {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	m.seq++
	m.loading = true

	seq, dir, loader, src, theme := m.seq, m.dir, m.loader, m.disk, m.theme
	return func() tea.Msg {
		entries, err := loader.Load(ctx, dir)
		return loadedMsg{
			seq:     seq,
			entries: entries,
			stats:   statsLine(ctx, src, theme, dir),
			err:     err,
		}
	}
}

func statsLine(ctx context.Context, src UsageSource, theme *display.Theme, dir string) string {
	if src == nil {
		return "Disk Usage: N/A"
	}
	u, err := src.Usage(ctx, dir)
	if err != nil {
		return "Disk Usage: N/A"
	}
	text := fmt.Sprintf("Disk Usage: %.1f%% (%s / %s)  %s",
		u.Percent, format.Ubytes(u.Used), format.Ubytes(u.Total), format.Bar(u.Percent, statsBarWidth))
	return theme.Usage(u.Percent, text)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(max(msg.Height-chromeHeight, 3))
		return m, nil

	case loadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.stats = msg.stats
		if msg.err != nil {
			if m.ctx.Err() != nil {
				return m, nil
			}
			m.status = "Permission denied"
			m.setEntries(WithParent(m.dir, nil))
			return m, nil
		}
		m.setEntries(msg.entries)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Open):
			return m, m.open()
		case key.Matches(msg, m.keys.Up):
			return m, m.up()
		case key.Matches(msg, m.keys.Refresh):
			Refresh(m.cache, m.dir)
			m.status = "Refreshed (cache cleared for current directory)"
			return m, m.load()
		case key.Matches(msg, m.keys.Clear):
			n := m.cache.Clear()
			m.status = fmt.Sprintf("Cleared entire cache (%d entries) and refreshed", n)
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) setEntries(entries []Entry) {
	t := m.theme
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		switch {
		case e.Parent:
			rows = append(rows, table.Row{t.IconUp, e.Name, fmt.Sprintf("%*s", colSize, "<DIR>"), fmt.Sprintf("%*s", colBytes, "0")})
		default:
			icon := t.IconFile
			if e.IsDir {
				icon = t.IconDir
			}
			rows = append(rows, table.Row{
				icon,
				e.Name,
				fmt.Sprintf("%*s", colSize, format.Bytes(e.Size)),
				fmt.Sprintf("%*s", colBytes, humanize.Comma(e.Size)),
			})
		}
	}
	m.entries = entries
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m *Model) selected() (Entry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.entries) {
		return Entry{}, false
	}
	return m.entries[i], true
}

func (m *Model) open() tea.Cmd {
	e, ok := m.selected()
	if !ok {
		return nil
	}
	if e.Parent {
		return m.up()
	}
	if e.IsDir {
		m.dir = e.Path
		m.status = "Entered: " + e.Name
		return m.load()
	}
	info, err := os.Stat(e.Path)
	if err != nil {
		m.status = "Cannot access file"
		return nil
	}
	m.status = fmt.Sprintf("File: %s (%s)", e.Name, format.Bytes(info.Size()))
	return nil
}

func (m *Model) up() tea.Cmd {
	parent := filepath.Dir(m.dir)
	if parent == m.dir {
		m.status = "Already at root"
		return nil
	}
	m.dir = parent
	m.status = "Up to: " + parent
	return m.load()
}

func (m *Model) View() string {
	t := m.theme
	var b strings.Builder

	b.WriteString(t.Styled(t.Cyan.Bold(true), fmt.Sprintf("%s Current Path: %s", t.IconPath, m.dir)))
	b.WriteString("\n")
	if m.loading {
		b.WriteString(t.Styled(t.Dim, "Scanning…"))
	} else {
		b.WriteString(m.stats)
	}
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	summary := t.Styled(t.Dim, strconv.Itoa(len(m.entries))+" entries, "+strconv.Itoa(m.cache.Len())+" cached")
	if m.status != "" {
		summary = m.status + "  " + summary
	}
	b.WriteString(summary)
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// Run starts the browser on dir and blocks until the user quits.
func Run(ctx context.Context, dir string, opts Options) error {
	m := New(ctx, dir, opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
