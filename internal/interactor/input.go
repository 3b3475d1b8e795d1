package interactor

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// InputStyles controls text input appearance.
type InputStyles struct {
	Prompt lipgloss.Style
}

// DefaultInputStyles returns the default input styling.
func DefaultInputStyles() InputStyles {
	return InputStyles{
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

type inputKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultInputKeyMap() inputKeyMap {
	return inputKeyMap{
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "accept")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// Input is a single-line text entry interactor. A validation hook may
// reject a submitted value, in which case the failure messages are
// reported and the input keeps waiting, mirroring the list engine's
// retry loop.
type Input struct {
	ti          textinput.Model
	validate    func(value string) []string
	cancellable bool
	value       string
	cancelled   bool
	done        bool
	keymap      inputKeyMap
	styles      InputStyles
}

// NewInput creates a text input. maxLen <= 0 means unlimited;
// validate may be nil for always-accept.
func NewInput(placeholder string, maxLen int, validate func(string) []string) Input {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if maxLen > 0 {
		ti.CharLimit = maxLen
	}
	return Input{
		ti:       ti,
		validate: validate,
		keymap:   defaultInputKeyMap(),
		styles:   DefaultInputStyles(),
	}
}

// Cancellable makes Esc complete the interaction with an empty value.
func (in Input) Cancellable(on bool) Input {
	in.cancellable = on
	return in
}

// SetStyles replaces the input styling.
func (in Input) SetStyles(s InputStyles) Input {
	in.styles = s
	return in
}

// Value returns the accepted text, or "" after a cancel.
func (in Input) Value() string { return in.value }

// Cancelled reports whether the interaction ended via Esc.
func (in Input) Cancelled() bool { return in.cancelled }

// Done implements Interactor.
func (in Input) Done() bool { return in.done }

// Start implements Interactor.
func (in Input) Start() (Interactor, tea.Cmd, error) {
	in.done = false
	in.cancelled = false
	in.value = ""
	in.ti.SetValue("")
	cmd := in.ti.Focus()
	return in, tea.Batch(cmd, textinput.Blink), nil
}

// Update implements Interactor.
func (in Input) Update(msg tea.Msg) (Interactor, tea.Cmd) {
	if in.done {
		return in, nil
	}
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, in.keymap.Confirm):
			value := in.ti.Value()
			if in.validate != nil {
				if msgs := in.validate(value); len(msgs) > 0 {
					return in, noticeCmd(msgs)
				}
			}
			in.value = value
			in.done = true
			return in, nil

		case key.Matches(keyMsg, in.keymap.Cancel):
			if in.cancellable {
				in.value = ""
				in.cancelled = true
				in.done = true
			}
			return in, nil
		}
	}
	var cmd tea.Cmd
	in.ti, cmd = in.ti.Update(msg)
	return in, cmd
}

// View implements Interactor.
func (in Input) View() string {
	return in.styles.Prompt.Render("> ") + in.ti.View()
}
