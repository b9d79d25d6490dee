// Package tui provides a Bubble Tea terminal user interface for modus-converter.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/handiism/modus-converter/internal/config"
	"github.com/handiism/modus-converter/internal/convert"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	fileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateConverting
	StateComplete
	StateError
)

const (
	maxLogs      = 10
	maxFileNames = 8
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   convert.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	files     []string
	summary   convert.Summary
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *convert.Manager
	events  chan convert.ProgressEvent

	processed int32
	failed    int32
	total     int32

	// Options
	modus   bool
	dryRun  bool
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model starting from settings.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "~/Music/midi or song.mid"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		modus:     settings.ModusProfile,
		logs:      make([]LogEntry, 0),
		events:    make(chan convert.ProgressEvent, 64),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent())
}

// Message types
type (
	// ProgressMsg carries one event reported by the manager.
	ProgressMsg struct {
		Event convert.ProgressEvent
	}

	// InitDoneMsg is sent when the input has been expanded into jobs.
	InitDoneMsg struct {
		Files   []string
		Manager *convert.Manager
		Err     error
	}

	// ConvertDoneMsg is sent when all conversions finished.
	ConvertDoneMsg struct {
		Summary convert.Summary
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateConverting || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				return m, tea.Batch(m.initializeConversion(), m.spinner.Tick)
			}

		case "alt+m":
			if m.state == StateInput {
				m.modus = !m.modus
			}
			return m, nil

		case "alt+n":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
			}
			return m, nil

		case "alt+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}
			return m, nil

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == convert.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.files = msg.Files
			m.manager = msg.Manager
			m.state = StateConverting
			cmds = append(cmds, m.startConversion(), m.tickProgress())
		}

	case ConvertDoneMsg:
		m.summary = msg.Summary
		m.processed = int32(msg.Summary.Converted + msg.Summary.Failed)
		m.failed = int32(msg.Summary.Failed)
		m.total = int32(msg.Summary.Total)
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil && msg.Summary.Converted == 0:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateConverting {
			m.processed, m.failed, m.total = m.manager.GetProgress()

			var percent float64
			if m.total > 0 {
				percent = float64(m.processed) / float64(m.total)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.files = nil
	m.err = nil
	m.summary = convert.Summary{}
	m.processed, m.failed, m.total = 0, 0, 0
	m.manager = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next manager event as a ProgressMsg.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ Modus Converter"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Prepare MIDI recordings for playback"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateConverting:
		b.WriteString(m.viewConverting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter a MIDI file or folder:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Modus profile and lead-in (alt+m)\n", checkbox(m.modus))
	fmt.Fprintf(&b, "  %s Dry run, write nothing (alt+n)\n", checkbox(m.dryRun))
	fmt.Fprintf(&b, "  %s Verbose output (alt+v)\n", checkbox(m.verbose))
	b.WriteString("\n")

	output := m.settings.OutputDir
	if output == "" {
		output = "next to each source file"
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("Velocity: %d-%d | Output: %s", m.settings.VelocityMin, m.settings.VelocityMax, output)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Looking for MIDI files..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewConverting() string {
	var b strings.Builder

	if len(m.files) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d file(s):", len(m.files))))
		b.WriteString("\n")
		for i, name := range m.files {
			if i == maxFileNames {
				b.WriteString(dimStyle.Render(fmt.Sprintf("  ... and %d more", len(m.files)-maxFileNames)))
				b.WriteString("\n")
				break
			}
			b.WriteString(fileStyle.Render("  ♪ " + name))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	var percent float64
	if m.total > 0 {
		percent = float64(m.processed) / float64(m.total)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d | Failed: %d", m.processed, m.total, m.failed)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	title := "Conversion Complete!"
	if m.dryRun {
		title = "Check Complete!"
	}
	s := m.summary
	b.WriteString(boxStyle.Render(fmt.Sprintf(
		"%s\n\n"+
			"Converted: %d\n"+
			"Failed: %d\n"+
			"Size: %s -> %s\n"+
			"Changes: %s",
		title,
		s.Converted,
		s.Failed,
		humanize.Bytes(uint64(s.InputBytes)),
		humanize.Bytes(uint64(s.OutputBytes)),
		s.Stats,
	)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString("  " + m.err.Error())
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case convert.LevelError:
			style = errorStyle
			prefix = "✗"
		case convert.LevelWarning:
			style = warningStyle
			prefix = "!"
		case convert.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case convert.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • alt+m: modus • alt+n: dry run • alt+v: verbose • esc: quit"
	case StateInitializing, StateConverting:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: convert more • q: quit"
	}
	return ""
}

// initializeConversion creates the manager and expands the input path.
func (m *Model) initializeConversion() tea.Cmd {
	path := expandHome(strings.TrimSpace(m.textInput.Value()))
	settings := *m.settings
	settings.ModusProfile = m.modus
	ctx := m.ctx
	events := m.events

	var opts []convert.Option
	if m.dryRun {
		opts = append(opts, convert.WithDryRun())
	}

	return func() tea.Msg {
		manager, err := convert.NewManager(&settings, func(event convert.ProgressEvent) {
			select {
			case events <- event:
			default:
			}
		}, opts...)
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		if err := manager.Initialize(ctx, []string{path}); err != nil {
			return InitDoneMsg{Err: err}
		}

		return InitDoneMsg{
			Files:   manager.GetJobNames(),
			Manager: manager,
		}
	}
}

// startConversion runs the conversions in the background.
func (m *Model) startConversion() tea.Cmd {
	manager := m.manager
	ctx := m.ctx
	return func() tea.Msg {
		if manager == nil {
			return ConvertDoneMsg{Err: fmt.Errorf("no manager")}
		}
		err := manager.StartConversions(ctx)
		return ConvertDoneMsg{Summary: manager.Summary(), Err: err}
	}
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
