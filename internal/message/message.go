// Package message implements the interactive message box: a dialogue
// text area that renders prompt directives letter by letter on a
// timer. A prompt is an ordered sequence of directives (text, timed
// pauses, clears); the box types through them and reports Done when
// the whole sequence has been displayed.
package message

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// DefaultCadence is the per-character typing delay used when the
// model is created without an explicit cadence.
const DefaultCadence = 30 * time.Millisecond

type directiveKind int

const (
	kindText directiveKind = iota
	kindWait
	kindClear
)

// Directive is one step of a prompt sequence.
type Directive struct {
	kind  directiveKind
	text  string
	delay time.Duration // Per-character override for text, pause for wait
}

// Text types s letter by letter at the model's cadence. Newlines in s
// start new lines.
func Text(s string) Directive {
	return Directive{kind: kindText, text: s}
}

// TextWithCadence types s with a per-character delay overriding the
// model's cadence.
func TextWithCadence(s string, perChar time.Duration) Directive {
	return Directive{kind: kindText, text: s, delay: perChar}
}

// Wait pauses typing for d.
func Wait(d time.Duration) Directive {
	return Directive{kind: kindWait, delay: d}
}

// Clear erases the displayed text.
func Clear() Directive {
	return Directive{kind: kindClear}
}

// Prompt is an ordered directive sequence.
type Prompt []Directive

// tickMsg advances typing by one step. The seq guard discards ticks
// from an abandoned prompt, the same staleness scheme the engine's
// host uses for debounced work.
type tickMsg struct {
	seq uint64
}

// Styles controls the box appearance.
type Styles struct {
	Text lipgloss.Style
}

// DefaultStyles returns the default message styling.
func DefaultStyles() Styles {
	return Styles{
		Text: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

// Model is the Bubble Tea model for the message box.
type Model struct {
	cadence time.Duration
	styles  Styles

	prompt  Prompt
	idx     int    // Current directive
	written int    // Runes of the current text directive already shown
	runes   []rune // Decoded text of the current directive

	lines  []string
	typing bool
	seq    uint64

	width  int
	height int
}

// New creates a message box with the given typing cadence. A zero or
// negative cadence falls back to DefaultCadence.
func New(cadence time.Duration) Model {
	if cadence <= 0 {
		cadence = DefaultCadence
	}
	return Model{
		cadence: cadence,
		styles:  DefaultStyles(),
		lines:   []string{""},
	}
}

// SetStyles replaces the box styling.
func (m Model) SetStyles(s Styles) Model {
	m.styles = s
	return m
}

// SetSize records the available terminal area.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Start begins typing a new prompt, abandoning any prompt still in
// progress.
func (m Model) Start(p Prompt) (Model, tea.Cmd) {
	m.prompt = p
	m.idx = 0
	m.written = 0
	m.runes = nil
	m.typing = true
	m.seq++
	seq := m.seq
	return m, func() tea.Msg { return tickMsg{seq: seq} }
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if msg.seq != m.seq {
			return m, nil // Stale tick from an abandoned prompt.
		}
		return m.advance()
	}
	return m, nil
}

// advance performs one typing step and schedules the next tick.
func (m Model) advance() (Model, tea.Cmd) {
	delay, done := m.step()
	if done {
		m.typing = false
		return m, nil
	}
	seq := m.seq
	if delay <= 0 {
		return m, func() tea.Msg { return tickMsg{seq: seq} }
	}
	return m, tea.Tick(delay, func(time.Time) tea.Msg { return tickMsg{seq: seq} })
}

// step applies directives until one costs time: a typed character or
// a wait. It returns the delay before the next step, or done when the
// prompt is exhausted.
func (m *Model) step() (time.Duration, bool) {
	for m.idx < len(m.prompt) {
		d := m.prompt[m.idx]
		switch d.kind {
		case kindClear:
			m.lines = []string{""}
			m.idx++

		case kindWait:
			m.idx++
			return d.delay, false

		case kindText:
			if m.runes == nil {
				m.runes = []rune(d.text)
			}
			if m.written >= len(m.runes) {
				m.idx++
				m.written = 0
				m.runes = nil
				continue
			}
			m.typeRune(m.runes[m.written])
			m.written++
			cadence := m.cadence
			if d.delay > 0 {
				cadence = d.delay
			}
			return cadence, false
		}
	}
	return 0, true
}

func (m *Model) typeRune(r rune) {
	if r == '\n' {
		m.lines = append(m.lines, "")
		return
	}
	m.lines[len(m.lines)-1] += string(r)
}

// Hurry completes the remaining prompt instantly, skipping pauses.
func (m Model) Hurry() Model {
	for m.idx < len(m.prompt) {
		d := m.prompt[m.idx]
		switch d.kind {
		case kindClear:
			m.lines = []string{""}
		case kindText:
			runes := []rune(d.text)
			for _, r := range runes[m.written:] {
				m.typeRune(r)
			}
		}
		m.idx++
		m.written = 0
		m.runes = nil
	}
	m.typing = false
	m.seq++ // Invalidate any scheduled tick.
	return m
}

// Typing reports whether a prompt is still being typed.
func (m Model) Typing() bool { return m.typing }

// Done reports whether the current prompt has been fully displayed.
func (m Model) Done() bool { return !m.typing }

// Text returns the currently displayed text, unstyled.
func (m Model) Text() string {
	return strings.Join(m.lines, "\n")
}

// View implements tea.Model.
func (m Model) View() string {
	lines := m.lines
	if m.height > 0 && len(lines) > m.height {
		lines = lines[len(lines)-m.height:]
	}
	var b strings.Builder
	for i, line := range lines {
		if m.width > 0 {
			line = runewidth.Truncate(line, m.width, "…")
		}
		b.WriteString(m.styles.Text.Render(line))
		if i < len(lines)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}
