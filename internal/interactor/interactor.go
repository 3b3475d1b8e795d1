// Package interactor implements the input components a dialogue
// session can run after its prompt has been displayed: a button row,
// a single-line text input, and the paginated selection list backed
// by the list engine. Interactors are Bubble Tea style value models
// behind a small common interface so the session can drive any of
// them.
package interactor

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Interactor is the input phase of one dialogue turn.
type Interactor interface {
	// Start begins the input phase. It fails when the component's
	// wiring could never produce a result.
	Start() (Interactor, tea.Cmd, error)

	// Update handles one host message.
	Update(msg tea.Msg) (Interactor, tea.Cmd)

	// View renders the component.
	View() string

	// Done reports whether a result is available.
	Done() bool
}

// NoticeMsg carries validation failure messages out of an interactor.
// The session displays them through the message box before the
// interactor resumes waiting for input.
type NoticeMsg struct {
	Messages []string
}

func noticeCmd(messages []string) tea.Cmd {
	return func() tea.Msg { return NoticeMsg{Messages: messages} }
}
