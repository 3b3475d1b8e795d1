package interactor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gabtab/gabtab/internal/engine"
)

// Button is one choice in a button row.
type Button struct {
	Key      string // Result value reported on pick
	Label    string // Displayed text
	Disabled bool
}

// ButtonStyles controls button row appearance.
type ButtonStyles struct {
	Focused  lipgloss.Style
	Blurred  lipgloss.Style
	Disabled lipgloss.Style
}

// DefaultButtonStyles returns the default button styling.
func DefaultButtonStyles() ButtonStyles {
	return ButtonStyles{
		Focused:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")),
		Blurred:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Disabled: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

type buttonsKeyMap struct {
	Prev    key.Binding
	Next    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
}

func defaultButtonsKeyMap() buttonsKeyMap {
	return buttonsKeyMap{
		Prev:    key.NewBinding(key.WithKeys("left", "shift+tab"), key.WithHelp("←", "previous")),
		Next:    key.NewBinding(key.WithKeys("right", "tab"), key.WithHelp("→", "next")),
		Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// Buttons is a keyed button row interactor. Buttons are registered in
// order under unique keys; the picked button's key is the result.
type Buttons struct {
	registry    *orderedmap.OrderedMap[string, Button]
	order       []string
	focus       int
	choice      string
	cancellable bool
	done        bool
	keymap      buttonsKeyMap
	styles      ButtonStyles
}

// NewButtons creates a button row. Button keys must be unique.
func NewButtons(buttons ...Button) (Buttons, error) {
	registry := orderedmap.New[string, Button]()
	order := make([]string, 0, len(buttons))
	for _, b := range buttons {
		if _, dup := registry.Get(b.Key); dup {
			return Buttons{}, fmt.Errorf("duplicate button key %q", b.Key)
		}
		registry.Set(b.Key, b)
		order = append(order, b.Key)
	}
	return Buttons{
		registry: registry,
		order:    order,
		keymap:   defaultButtonsKeyMap(),
		styles:   DefaultButtonStyles(),
	}, nil
}

// Cancellable makes Esc complete the interaction with an empty choice.
func (b Buttons) Cancellable(on bool) Buttons {
	b.cancellable = on
	return b
}

// SetStyles replaces the row styling.
func (b Buttons) SetStyles(s ButtonStyles) Buttons {
	b.styles = s
	return b
}

// Choice returns the picked button key, or "" after a cancel.
func (b Buttons) Choice() string { return b.choice }

// Done implements Interactor.
func (b Buttons) Done() bool { return b.done }

// Start implements Interactor. A row with no enabled button and no
// cancel affordance could never produce a result, which is the same
// wiring error the list engine refuses.
func (b Buttons) Start() (Interactor, tea.Cmd, error) {
	b.done = false
	b.choice = ""
	b.focus = b.firstEnabled()
	if b.focus < 0 && !b.cancellable {
		return b, nil, fmt.Errorf("%w: no enabled buttons and no cancel", engine.ErrConfiguration)
	}
	return b, nil, nil
}

// Update implements Interactor.
func (b Buttons) Update(msg tea.Msg) (Interactor, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || b.done {
		return b, nil
	}

	switch {
	case key.Matches(keyMsg, b.keymap.Prev):
		b.focus = b.nextEnabled(b.focus, -1)

	case key.Matches(keyMsg, b.keymap.Next):
		b.focus = b.nextEnabled(b.focus, 1)

	case key.Matches(keyMsg, b.keymap.Confirm):
		if b.focus >= 0 {
			b.choice = b.order[b.focus]
			b.done = true
		}

	case key.Matches(keyMsg, b.keymap.Cancel):
		if b.cancellable {
			b.choice = ""
			b.done = true
		}
	}
	return b, nil
}

// firstEnabled returns the index of the first enabled button, or -1.
func (b Buttons) firstEnabled() int {
	for i, k := range b.order {
		if btn, _ := b.registry.Get(k); !btn.Disabled {
			return i
		}
	}
	return -1
}

// nextEnabled steps focus in the given direction, wrapping around and
// skipping disabled buttons.
func (b Buttons) nextEnabled(from, dir int) int {
	n := len(b.order)
	if n == 0 || from < 0 {
		return b.firstEnabled()
	}
	for i := 1; i <= n; i++ {
		idx := ((from+dir*i)%n + n) % n
		if btn, _ := b.registry.Get(b.order[idx]); !btn.Disabled {
			return idx
		}
	}
	return from
}

// View implements Interactor.
func (b Buttons) View() string {
	parts := make([]string, 0, len(b.order))
	for i, k := range b.order {
		btn, _ := b.registry.Get(k)
		label := " " + btn.Label + " "
		switch {
		case btn.Disabled:
			parts = append(parts, b.styles.Disabled.Render(label))
		case i == b.focus:
			parts = append(parts, b.styles.Focused.Render(label))
		default:
			parts = append(parts, b.styles.Blurred.Render(label))
		}
	}
	return strings.Join(parts, " ")
}
