package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StageMsg is sent when the crawl enters a page, post or image
type StageMsg struct {
	Stage  string
	Index  int
	Total  int
	Target string
}

// ImageSavedMsg is sent after an image is written to disk
type ImageSavedMsg struct {
	Path string
	Size int64
}

// LogMsg is sent to add a log message
type LogMsg struct {
	Level   string
	Message string
}

// DoneMsg is sent when the crawl returns
type DoneMsg struct {
	Err error
}

// TickMsg is sent periodically to refresh elapsed time
type TickMsg time.Time

// Init starts the spinner and the refresh tick
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tickCmd())
}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for stage, bar := range m.bars {
			bar.Width = barWidth(msg.Width)
			m.bars[stage] = bar
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		if m.done {
			return m, nil
		}
		return m, tickCmd()

	case StageMsg:
		m.SetStage(msg.Stage, msg.Index, msg.Total, msg.Target)
		return m, nil

	case ImageSavedMsg:
		m.CompleteImage(msg.Path, msg.Size)
		return m, nil

	case LogMsg:
		m.AddLogMessage(msg.Level, msg.Message)
		return m, nil

	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c":
		m.userQuit = true
		return m, tea.Quit

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logMessages = nil
		return m, nil
	}

	return m, nil
}

func barWidth(termWidth int) int {
	w := termWidth - 30
	if w < 10 {
		return 10
	}
	if w > 60 {
		return 60
	}
	return w
}

// tickCmd returns a command that sends a tick message
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
