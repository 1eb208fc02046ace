// Package ui provides the terminal landing page for voxdemo.
package ui

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/voxdemo/internal/coordinator"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "saved!"
	ellipsis             = "…"
)

// Coordinator is the state container the shell observes and drives.
type Coordinator interface {
	Start(ctx context.Context)
	SelectLanguage(code string) (coordinator.Request, error)
	Resolve(ctx context.Context, req coordinator.Request) error
	TogglePlayback() bool
	Download(ctx context.Context) (string, error)
	Snapshot() coordinator.Snapshot
	Events() <-chan coordinator.Event
	Close() error
}

// NewProgram returns a new Tea program.
func NewProgram(cfg Config, c Coordinator) *tea.Program {
	log.Debug(
		"Starting voxdemo",
		"glamour",
		cfg.GlamourEnabled,
		"high_contrast",
		cfg.HighContrast,
	)

	if cfg.HighContrast {
		useHighContrast()
	}
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, c), opts...)
}

type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

type (
	startedMsg        struct{}
	eventMsg          coordinator.Event
	resolvedMsg       struct{ err error }
	heroRenderedMsg   string
	statusTimeoutMsg  struct{}
	playbackToggleMsg struct {
		wasPlaying bool
		playing    bool
	}
	downloadMsg struct {
		path string
		err  error
	}
)

type statusMessage struct {
	message string
	isError bool
}

// Common stuff we'll need to access in all views.
type commonModel struct {
	cfg    Config
	width  int
	height int
}

type model struct {
	common   *commonModel
	ctx      context.Context
	cancel   context.CancelFunc
	coord    Coordinator
	fatalErr error

	snapshot  coordinator.Snapshot
	started   bool
	activeTab int
	hero      string

	spinner  spinner.Model
	picker   pickerModel
	help     help.Model
	showHelp bool

	status      statusMessage
	statusTimer *time.Timer
}

func newModel(cfg Config, c Coordinator) model {
	common := &commonModel{cfg: cfg}
	ctx, cancel := context.WithCancel(context.Background())

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = spinnerStyle

	return model{
		common:   common,
		ctx:      ctx,
		cancel:   cancel,
		coord:    c,
		snapshot: c.Snapshot(),
		spinner:  sp,
		picker:   newPickerModel(),
		help:     help.New(),
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		startCoordinator(m.ctx, m.coord),
		waitForEvent(m.coord.Events()),
	)
}

// loading reports whether the spinner should keep turning.
func (m model) loading() bool {
	return !m.started || m.snapshot.Resolving
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, m.quit()
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Ctrl+C always quits no matter where in the application you are.
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}
		if m.picker.active {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.help.Width = msg.Width
		cmds = append(cmds, renderHero(*m.common))

	case heroRenderedMsg:
		m.hero = string(msg)

	case startedMsg:
		m.started = true
		m.snapshot = m.coord.Snapshot()

	case eventMsg:
		m.snapshot = m.coord.Snapshot()
		if cmd := m.handleEvent(coordinator.Event(msg)); cmd != nil {
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, waitForEvent(m.coord.Events()))

	case resolvedMsg:
		m.snapshot = m.coord.Snapshot()

	case playbackToggleMsg:
		m.snapshot = m.coord.Snapshot()
		if !msg.wasPlaying && !msg.playing {
			cmds = append(cmds, m.showStatusMessage(statusMessage{"Playback unavailable", true}))
		}

	case downloadMsg:
		if errors.Is(msg.err, coordinator.ErrNoSample) {
			cmds = append(cmds, m.showStatusMessage(statusMessage{"Nothing to download yet", false}))
		}

	case statusTimeoutMsg:
		m.status = statusMessage{}

	case spinner.TickMsg:
		if m.loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case errMsg:
		m.fatalErr = msg
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, m.quit()

	case key.Matches(msg, keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp

	case key.Matches(msg, keys.NextTab):
		m.activeTab = (m.activeTab + 1) % len(tabs)

	case key.Matches(msg, keys.PrevTab):
		m.activeTab = (m.activeTab - 1 + len(tabs)) % len(tabs)

	case key.Matches(msg, keys.JumpTab):
		m.activeTab = int(msg.Runes[0] - '1')
	}

	if m.activeTab != textToSpeechTab {
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.NextLang):
		return m, m.cycleLanguage(1)

	case key.Matches(msg, keys.PrevLang):
		return m, m.cycleLanguage(-1)

	case key.Matches(msg, keys.Picker):
		if len(m.snapshot.Languages) == 0 {
			return m, m.showStatusMessage(statusMessage{"No languages loaded", false})
		}
		return m, m.picker.open(m.snapshot.Languages, m.snapshot.Selected)

	case key.Matches(msg, keys.Toggle):
		return m, togglePlayback(m.coord, m.snapshot.IsPlaying)

	case key.Matches(msg, keys.Download):
		return m, download(m.ctx, m.coord)

	case key.Matches(msg, keys.Copy):
		text := m.snapshot.Sample.Text
		if text == "" {
			return m, nil
		}
		// Copy using OSC 52
		te.Copy(text)
		// Copy using native system clipboard
		_ = clipboard.WriteAll(text)
		return m, m.showStatusMessage(statusMessage{"Copied sample text", false})
	}

	return m, nil
}

func (m *model) handleEvent(ev coordinator.Event) tea.Cmd {
	switch ev.Kind {
	case coordinator.EventCatalogFailed:
		return m.showStatusMessage(statusMessage{"Couldn't load languages", true})
	case coordinator.EventSampleFailed:
		return m.showStatusMessage(statusMessage{"Couldn't load sample", true})
	case coordinator.EventDownloaded:
		return m.showStatusMessage(statusMessage{"Saved " + ev.Path, false})
	case coordinator.EventDownloadFailed:
		return m.showStatusMessage(statusMessage{"Download failed", true})
	}
	return nil
}

// cycleLanguage moves the selection by delta through the catalog, wrapping
// at either end.
func (m *model) cycleLanguage(delta int) tea.Cmd {
	langs := m.snapshot.Languages
	if len(langs) == 0 {
		return nil
	}
	i := m.snapshot.SelectedIndex()
	switch {
	case i < 0 && delta > 0:
		i = 0
	case i < 0:
		i = len(langs) - 1
	default:
		i = (i + delta + len(langs)) % len(langs)
	}
	return m.selectLanguage(langs[i].Code)
}

// selectLanguage updates the selection right away and resolves it in the
// background so the spinner shows while the fetch is outstanding.
func (m *model) selectLanguage(code string) tea.Cmd {
	if code == m.snapshot.Selected && !m.snapshot.Resolving && m.snapshot.Sample.Loaded() {
		return nil
	}
	req, err := m.coord.SelectLanguage(code)
	if err != nil {
		log.Debug("selection rejected", "language", code, "error", err)
		return nil
	}
	m.snapshot = m.coord.Snapshot()
	return tea.Batch(m.spinner.Tick, resolve(m.ctx, m.coord, req))
}

// Perform stuff that needs to happen after an action. Note that the returned
// command should be sent back through the update function.
func (m *model) showStatusMessage(msg statusMessage) tea.Cmd {
	m.status = msg
	if m.statusTimer != nil {
		m.statusTimer.Stop()
	}
	m.statusTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusTimer)
}

func (m model) quit() tea.Cmd {
	m.cancel()
	if m.statusTimer != nil {
		m.statusTimer.Stop()
	}
	if err := m.coord.Close(); err != nil {
		log.Warn("error closing coordinator", "error", err)
	}
	return tea.Quit
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr, true)
	}
	return m.shellView()
}

// COMMANDS

func startCoordinator(ctx context.Context, c Coordinator) tea.Cmd {
	return func() tea.Msg {
		c.Start(ctx)
		return startedMsg{}
	}
}

func waitForEvent(ch <-chan coordinator.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

func resolve(ctx context.Context, c Coordinator, req coordinator.Request) tea.Cmd {
	return func() tea.Msg {
		return resolvedMsg{c.Resolve(ctx, req)}
	}
}

func togglePlayback(c Coordinator, wasPlaying bool) tea.Cmd {
	return func() tea.Msg {
		return playbackToggleMsg{wasPlaying: wasPlaying, playing: c.TogglePlayback()}
	}
}

func download(ctx context.Context, c Coordinator) tea.Cmd {
	return func() tea.Msg {
		path, err := c.Download(ctx)
		return downloadMsg{path, err}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusTimeoutMsg{}
	}
}
