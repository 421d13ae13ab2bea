package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI is a full-screen crawl dashboard. It implements ui.TUI so the
// scraper can report progress while Run owns the terminal.
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a dashboard for one fan club
func NewTUI(fanClubID string, opts ...tea.ProgramOption) *TUI {
	model := NewModel(fanClubID)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}

	return &TUI{
		program: tea.NewProgram(model, opts...),
		model:   model,
	}
}

// Run blocks until the crawl finishes or the user quits
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

// Model returns the dashboard state. Read it only after Run returns.
func (t *TUI) Model() *Model {
	return t.model
}

// Finish tells the dashboard the crawl returned
func (t *TUI) Finish(err error) {
	t.program.Send(DoneMsg{Err: err})
}

// SetStage reports the current page, post or image
func (t *TUI) SetStage(stage string, i, total int, target string) {
	t.program.Send(StageMsg{Stage: stage, Index: i, Total: total, Target: target})
}

// CompleteImage reports a saved image
func (t *TUI) CompleteImage(path string, size int64) {
	t.program.Send(ImageSavedMsg{Path: path, Size: size})
}

// Log sends a log message to the dashboard
func (t *TUI) Log(level, format string, args ...interface{}) {
	t.program.Send(LogMsg{Level: level, Message: fmt.Sprintf(format, args...)})
}

// LogInfo logs an info message
func (t *TUI) LogInfo(format string, args ...interface{}) {
	t.Log("INFO", format, args...)
}

// LogSuccess logs a success message
func (t *TUI) LogSuccess(format string, args ...interface{}) {
	t.Log("SUCCESS", format, args...)
}

// LogWarning logs a warning message
func (t *TUI) LogWarning(format string, args ...interface{}) {
	t.Log("WARN", format, args...)
}

// LogError logs an error message
func (t *TUI) LogError(format string, args ...interface{}) {
	t.Log("ERROR", format, args...)
}
