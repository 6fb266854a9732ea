package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/five82/daily/internal/monitor"
	"github.com/five82/daily/internal/prefs"
)

// headerLines and statusLines are the rows above the log pane.
const (
	headerLines = 1
	footerLines = 1
	statusLines = 8
)

// Options configure the console.
type Options struct {
	Context   context.Context
	Store     *monitor.Store
	Daemon    string
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
	PrefsFs   afero.Fs
	Now       func() time.Time
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx       context.Context
	store     *monitor.Store
	daemon    string
	pollTick  time.Duration
	prefsPath string
	prefsFs   afero.Fs
	now       func() time.Time
	keys      keyMap

	theme    Theme
	width    int
	height   int
	ready    bool
	showHelp bool
	follow   bool

	snapshot monitor.Snapshot
	logView  viewport.Model
}

// New creates the console model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}
	fs := opts.PrefsFs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return Model{
		ctx:       ctx,
		store:     opts.Store,
		daemon:    opts.Daemon,
		pollTick:  pollTick,
		prefsPath: opts.PrefsPath,
		prefsFs:   fs,
		now:       now,
		keys:      defaultKeyMap(),
		theme:     GetTheme(opts.ThemeName),
		follow:    true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.logView = viewport.New(msg.Width, m.logHeight())
		}
		m.ready = true
		m.logView.Width = msg.Width
		m.logView.Height = m.logHeight()
		m.updateLogView()
		return m, nil

	case tickMsg:
		select {
		case <-m.ctx.Done():
			return m, tea.Quit
		default:
		}
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(m.pollTick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = monitor.Snapshot(msg)
		m.updateLogView()
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.saveTheme()
		m.updateLogView()
	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.logView.GotoBottom()
		}
	case key.Matches(msg, m.keys.Up):
		m.follow = false
		m.logView.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logView.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.follow = false
		m.logView.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logView.PageDown()
	case key.Matches(msg, m.keys.Top):
		m.follow = false
		m.logView.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.logView.GotoBottom()
	}
	return m, nil
}

func (m Model) saveTheme() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Load(m.prefsFs, m.prefsPath)
	p.Theme = m.theme.Name
	if err := prefs.Save(m.prefsFs, m.prefsPath, p); err != nil {
		log.WithError(err).Debug("save theme preference")
	}
}

func (m Model) logHeight() int {
	h := m.height - headerLines - footerLines - statusLines
	if h < 1 {
		return 1
	}
	return h
}

func (m *Model) updateLogView() {
	if !m.ready {
		return
	}
	m.logView.SetContent(m.renderLogLines())
	if m.follow {
		m.logView.GotoBottom()
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

type tickMsg time.Time

type snapshotMsg monitor.Snapshot

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *monitor.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
