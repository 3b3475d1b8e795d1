// Package session orchestrates one dialogue turn: type the prompt
// through the message box, then run an interactor until it produces a
// result. A session guards against overlapping interactions and
// controls the visibility of the owning dialogue box, which is hidden
// whenever no interaction is in flight.
package session

import (
	"errors"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/gabtab/gabtab/internal/interactor"
	"github.com/gabtab/gabtab/internal/message"
)

// ErrInteractionActive is returned by Start while another interaction
// is still running on the same session. Interactions must be
// serialized by the caller.
var ErrInteractionActive = errors.New("an interaction is already active on this session")

// Phase is the session's position within a dialogue turn.
type Phase int

const (
	// PhaseIdle means no interaction is running; the box is hidden.
	PhaseIdle Phase = iota
	// PhasePrompt means the message box is typing the prompt.
	PhasePrompt
	// PhaseInput means the interactor is collecting input.
	PhaseInput
)

// CompletedMsg is emitted when an interaction finishes. The result is
// read from the caller's interactor handle.
type CompletedMsg struct {
	ID string
}

// FailedMsg is emitted when an interactor refuses to start, which
// indicates a wiring error in the turn's configuration.
type FailedMsg struct {
	ID  string
	Err error
}

// Session runs prompt-then-input dialogue turns, one at a time.
type Session struct {
	id     string
	box    message.Model
	inter  interactor.Interactor
	phase  Phase
	hidden bool
	// resumeInput marks that the current prompt is a validation
	// failure notice and input should resume when it finishes typing.
	resumeInput bool
	logger      *slog.Logger
}

// New creates an idle session around the given message box.
func New(box message.Model, logger *slog.Logger) Session {
	if logger == nil {
		logger = slog.Default()
	}
	return Session{
		box:    box,
		phase:  PhaseIdle,
		hidden: true,
		logger: logger,
	}
}

// ID returns the identifier of the current (or last) interaction.
func (s Session) ID() string { return s.id }

// Phase returns the session phase.
func (s Session) CurrentPhase() Phase { return s.phase }

// Hidden reports whether the owning box should be hidden.
func (s Session) Hidden() bool { return s.hidden }

// Interactor returns the interactor of the current (or last) turn,
// for reading its result after CompletedMsg.
func (s Session) Interactor() interactor.Interactor { return s.inter }

// Box returns the message box, mainly for size propagation.
func (s Session) Box() message.Model { return s.box }

// Start begins a dialogue turn. The prompt is typed first; when it
// finishes, inter runs until done. A nil interactor makes a
// prompt-only turn that completes as soon as the text is displayed.
// Starting while a turn is active fails with ErrInteractionActive.
func (s Session) Start(prompt message.Prompt, inter interactor.Interactor) (Session, tea.Cmd, error) {
	if s.phase != PhaseIdle {
		return s, nil, ErrInteractionActive
	}
	s.id = uuid.NewString()
	s.inter = inter
	s.phase = PhasePrompt
	s.hidden = false
	s.resumeInput = false
	var cmd tea.Cmd
	s.box, cmd = s.box.Start(prompt)
	s.logger.Debug("interaction started", "session", s.id, "prompt_directives", len(prompt))
	return s, cmd, nil
}

// Update implements the Bubble Tea update contract for the session.
func (s Session) Update(msg tea.Msg) (Session, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.box, _ = s.box.Update(msg)
		if s.inter != nil {
			s.inter, _ = s.inter.Update(msg)
		}
		return s, nil

	case interactor.NoticeMsg:
		// Validation failed: type the reasons, then resume input.
		s.logger.Debug("selection rejected", "session", s.id, "messages", len(msg.Messages))
		prompt := message.Prompt{message.Text("\n" + strings.Join(msg.Messages, "\n"))}
		s.phase = PhasePrompt
		s.resumeInput = true
		var cmd tea.Cmd
		s.box, cmd = s.box.Start(prompt)
		return s, cmd
	}

	switch s.phase {
	case PhasePrompt:
		if _, isKey := msg.(tea.KeyMsg); isKey {
			// Any key hurries the typewriter.
			s.box = s.box.Hurry()
		} else {
			var cmd tea.Cmd
			s.box, cmd = s.box.Update(msg)
			if !s.box.Done() {
				return s, cmd
			}
		}
		return s.promptFinished()

	case PhaseInput:
		if s.inter == nil {
			return s, nil
		}
		var cmd tea.Cmd
		s.inter, cmd = s.inter.Update(msg)
		if s.inter.Done() {
			done := s.finish()
			id := done.id
			return done, tea.Batch(cmd, func() tea.Msg { return CompletedMsg{ID: id} })
		}
		return s, cmd
	}
	return s, nil
}

// promptFinished moves from the prompt phase into input, or completes
// the turn when there is nothing to ask.
func (s Session) promptFinished() (Session, tea.Cmd) {
	if s.resumeInput {
		s.resumeInput = false
		s.phase = PhaseInput
		return s, nil
	}
	if s.inter == nil {
		done := s.finish()
		id := done.id
		return done, func() tea.Msg { return CompletedMsg{ID: id} }
	}
	inter, cmd, err := s.inter.Start()
	if err != nil {
		s.logger.Error("interactor failed to start", "session", s.id, "error", err)
		done := s.finish()
		id := done.id
		failErr := err
		return done, func() tea.Msg { return FailedMsg{ID: id, Err: failErr} }
	}
	s.inter = inter
	s.phase = PhaseInput
	return s, cmd
}

// finish returns the session to idle and hides the box.
func (s Session) finish() Session {
	s.phase = PhaseIdle
	s.hidden = true
	s.logger.Debug("interaction finished", "session", s.id)
	return s
}

// View renders the box and, during input, the interactor below it.
func (s Session) View() string {
	if s.hidden {
		return ""
	}
	var b strings.Builder
	b.WriteString(s.box.View())
	if s.phase == PhaseInput && s.inter != nil {
		b.WriteString("\n\n")
		b.WriteString(s.inter.View())
	}
	return b.String()
}
