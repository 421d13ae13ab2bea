package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// Stages shown on the dashboard, outermost first
var Stages = []string{"page", "post", "image"}

// StageState is the loop position of one crawl level
type StageState struct {
	Index  int
	Total  int
	Target string
}

// Fraction returns how far through the level the crawl is, in [0, 1]
func (s StageState) Fraction() float64 {
	if s.Total <= 0 {
		return 0
	}
	f := float64(s.Index) / float64(s.Total)
	if f > 1 {
		return 1
	}
	return f
}

// LogMessage represents a log entry
type LogMessage struct {
	Time    time.Time
	Level   string
	Message string
	Color   lipgloss.Color
}

// Model is the crawl dashboard state
type Model struct {
	fanClubID string

	spinner spinner.Model
	bars    map[string]progress.Model
	stages  map[string]StageState

	images     int
	totalBytes int64
	lastSaved  string
	startTime  time.Time

	logMessages    []LogMessage
	maxLogMessages int

	width    int
	height   int
	showHelp bool

	done     bool
	err      error
	userQuit bool
}

// NewModel creates a dashboard for one fan club
func NewModel(fanClubID string) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accent)

	bars := make(map[string]progress.Model, len(Stages))
	for _, stage := range Stages {
		p := progress.New(progress.WithDefaultGradient())
		p.Width = 40
		bars[stage] = p
	}

	return &Model{
		fanClubID:      fanClubID,
		spinner:        s,
		bars:           bars,
		stages:         make(map[string]StageState, len(Stages)),
		startTime:      time.Now(),
		maxLogMessages: 50,
	}
}

// SetStage records the loop position of a stage. Entering an outer stage
// clears the inner ones.
func (m *Model) SetStage(stage string, i, total int, target string) {
	m.stages[stage] = StageState{Index: i, Total: total, Target: target}

	inner := false
	for _, s := range Stages {
		if inner {
			delete(m.stages, s)
		}
		if s == stage {
			inner = true
		}
	}
}

// Stage returns the recorded position of stage
func (m *Model) Stage(stage string) (StageState, bool) {
	s, ok := m.stages[stage]
	return s, ok
}

// CompleteImage counts a saved image
func (m *Model) CompleteImage(path string, size int64) {
	m.images++
	m.totalBytes += size
	m.lastSaved = path
}

// AddLogMessage adds a log message, keeping the most recent entries
func (m *Model) AddLogMessage(level, message string) {
	m.logMessages = append(m.logMessages, LogMessage{
		Time:    time.Now(),
		Level:   level,
		Message: message,
		Color:   levelColor(level),
	})

	if len(m.logMessages) > m.maxLogMessages {
		m.logMessages = m.logMessages[len(m.logMessages)-m.maxLogMessages:]
	}
}

// Images returns the number of saved images and their total size
func (m *Model) Images() (int, int64) {
	return m.images, m.totalBytes
}

// Done reports whether the crawl finished and with which error
func (m *Model) Done() (bool, error) {
	return m.done, m.err
}

// UserQuit reports whether the dashboard was closed from the keyboard
func (m *Model) UserQuit() bool {
	return m.userQuit
}
