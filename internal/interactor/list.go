package interactor

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/gabtab/gabtab/internal/engine"
	"github.com/gabtab/gabtab/internal/paging"
)

// Engine control keys bound by the list interactor.
const (
	ctrlPrev     = "prev"
	ctrlNext     = "next"
	ctrlPrevPage = "prevpage"
	ctrlNextPage = "nextpage"
	ctrlContinue = "continue"
	ctrlCancel   = "cancel"
)

// ListStyles controls list appearance.
type ListStyles struct {
	Cursor     lipgloss.Style
	Active     lipgloss.Style
	Selected   lipgloss.Style
	Normal     lipgloss.Style
	Unpickable lipgloss.Style
	Help       lipgloss.Style
}

// DefaultListStyles returns the default list styling.
func DefaultListStyles() ListStyles {
	return ListStyles{
		Cursor:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		Active:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Normal:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Unpickable: lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
		Help:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

type listKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Home      key.Binding
	Toggle    key.Binding
	SelectAll key.Binding
	ClearAll  key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

func defaultListKeyMap() listKeyMap {
	return listKeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevPage:  key.NewBinding(key.WithKeys("pgup", "h"), key.WithHelp("pgup", "page up")),
		NextPage:  key.NewBinding(key.WithKeys("pgdown", "l"), key.WithHelp("pgdn", "page down")),
		Home:      key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "first page")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		SelectAll: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
		ClearAll:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "select none")),
		Confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

// slotView is the host-side image of one display slot, written by the
// engine's render hooks.
type slotView struct {
	label      string
	filled     bool
	selectable bool
	status     engine.Status
}

// frame is the shared render target between the engine's hooks and
// the list model. It sits behind a pointer so hook closures and model
// copies observe the same buffer; everything runs on the single
// program goroutine.
type frame struct {
	slots   []slotView
	enabled map[string]bool
	notices []string
}

// ListConfig configures a list interactor.
type ListConfig[T comparable] struct {
	// Items is the choice list.
	Items []T

	// Label renders an item into its slot text.
	Label func(T) string

	// Validate reports why an item cannot be accepted; nil or an
	// empty result means valid. Must be pure.
	Validate func(T) []string

	// Slots is the window size. Must be positive.
	Slots int

	// Mode is the paging mode.
	Mode paging.Mode

	// MultiSelect permits selecting several items.
	MultiSelect bool

	// RequireContinue forces explicit Enter-to-confirm semantics even
	// in single-select mode, where the default is that picking an
	// item submits it immediately. Multi-select always confirms
	// explicitly.
	RequireContinue bool

	// Cancellable binds Esc to cancel, completing with no selection.
	Cancellable bool

	Logger *slog.Logger
	Styles ListStyles
}

// List is the paginated selection interactor over the list engine.
type List[T comparable] struct {
	eng    *engine.Engine[T]
	frame  *frame
	label  func(T) string
	cursor int
	multi  bool
	// confirm records whether a continue control is bound; without
	// one, picking an item in single-select mode submits it.
	confirm     bool
	cancellable bool
	done        bool
	width       int
	keymap      listKeyMap
	styles      ListStyles
}

// NewList builds the engine, wires its hooks and controls, and
// installs the items.
func NewList[T comparable](cfg ListConfig[T]) (List[T], error) {
	if cfg.Label == nil {
		cfg.Label = func(T) string { return "" }
	}

	f := &frame{
		slots:   make([]slotView, cfg.Slots),
		enabled: make(map[string]bool),
	}
	label := cfg.Label
	eng, err := engine.New(engine.Config[T]{
		Slots:       cfg.Slots,
		Mode:        cfg.Mode,
		MultiSelect: cfg.MultiSelect,
		Logger:      cfg.Logger,
		Hooks: engine.Hooks[T]{
			RenderSlot: func(slot int, item T, selectable bool, status engine.Status) {
				f.slots[slot] = slotView{
					label:      label(item),
					filled:     true,
					selectable: selectable,
					status:     status,
				}
			},
			ClearSlot: func(slot int) {
				f.slots[slot] = slotView{}
			},
			SetEnabled: func(key string, enabled bool) {
				f.enabled[key] = enabled
			},
			Notify: func(messages []string) {
				f.notices = append(f.notices, messages...)
			},
			Validate: cfg.Validate,
		},
	})
	if err != nil {
		return List[T]{}, err
	}

	eng.Bind(ctrlPrev, engine.Control{Kind: engine.ControlMove, Delta: -1})
	eng.Bind(ctrlNext, engine.Control{Kind: engine.ControlMove, Delta: 1})
	eng.Bind(ctrlPrevPage, engine.Control{Kind: engine.ControlMovePages, Delta: -1})
	eng.Bind(ctrlNextPage, engine.Control{Kind: engine.ControlMovePages, Delta: 1})
	confirm := cfg.MultiSelect || cfg.RequireContinue
	if confirm {
		eng.Bind(ctrlContinue, engine.Control{Kind: engine.ControlContinue})
	}
	if cfg.Cancellable {
		eng.Bind(ctrlCancel, engine.Control{Kind: engine.ControlCancel})
	}
	eng.SetItems(cfg.Items)

	return List[T]{
		eng:         eng,
		frame:       f,
		label:       cfg.Label,
		multi:       cfg.MultiSelect,
		confirm:     confirm,
		cancellable: cfg.Cancellable,
		keymap:      defaultListKeyMap(),
		styles:      cfg.Styles,
	}, nil
}

// Engine exposes the underlying engine, mainly for embedding hosts
// that wire extra controls.
func (l List[T]) Engine() *engine.Engine[T] { return l.eng }

// SetStyles replaces the list styling.
func (l List[T]) SetStyles(s ListStyles) List[T] {
	l.styles = s
	return l
}

// Selected returns the selected items in selection order.
func (l List[T]) Selected() []T { return l.eng.Selected() }

// Cancelled reports whether the interaction completed with no
// selection.
func (l List[T]) Cancelled() bool { return l.done && len(l.eng.Selected()) == 0 }

// Done implements Interactor.
func (l List[T]) Done() bool { return l.done }

// Start implements Interactor. It surfaces the engine's termination
// checks before any input is accepted.
func (l List[T]) Start() (Interactor, tea.Cmd, error) {
	if err := l.eng.Start(true); err != nil {
		return l, nil, err
	}
	l.done = false
	l.cursor = 0
	return l, nil, nil
}

// Update implements Interactor.
func (l List[T]) Update(msg tea.Msg) (Interactor, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.width = msg.Width
		return l, nil

	case tea.KeyMsg:
		if l.done {
			return l, nil
		}
		return l.handleKey(msg)
	}
	return l, nil
}

func (l List[T]) handleKey(msg tea.KeyMsg) (Interactor, tea.Cmd) {
	switch {
	case key.Matches(msg, l.keymap.Up):
		if l.cursor > 0 {
			l.cursor--
		} else {
			_ = l.eng.Press(ctrlPrev)
		}

	case key.Matches(msg, l.keymap.Down):
		if l.cursor < l.lastFilled() {
			l.cursor++
		} else {
			_ = l.eng.Press(ctrlNext)
		}

	case key.Matches(msg, l.keymap.PrevPage):
		_ = l.eng.Press(ctrlPrevPage)

	case key.Matches(msg, l.keymap.NextPage):
		_ = l.eng.Press(ctrlNextPage)

	case key.Matches(msg, l.keymap.Home):
		l.eng.Rewind()
		l.cursor = 0

	case key.Matches(msg, l.keymap.Toggle):
		l.eng.ToggleOne(l.cursor, true)

	case key.Matches(msg, l.keymap.SelectAll):
		l.eng.SelectAll()

	case key.Matches(msg, l.keymap.ClearAll):
		l.eng.UnselectAll()

	case key.Matches(msg, l.keymap.Confirm):
		if l.confirm {
			_ = l.eng.Press(ctrlContinue)
		} else {
			// No continue control: picking is submitting.
			l.eng.SelectOne(l.cursor, true)
		}

	case key.Matches(msg, l.keymap.Cancel):
		if l.cancellable {
			_ = l.eng.Press(ctrlCancel)
		}

	default:
		return l, nil
	}

	l.clampCursor()
	if l.eng.Resolve() {
		l.done = true
	}
	if notices := l.drainNotices(); len(notices) > 0 {
		return l, noticeCmd(notices)
	}
	return l, nil
}

// lastFilled returns the highest filled slot index, or 0.
func (l List[T]) lastFilled() int {
	last := 0
	for i, s := range l.frame.slots {
		if s.filled {
			last = i
		}
	}
	return last
}

func (l *List[T]) clampCursor() {
	if last := l.lastFilled(); l.cursor > last {
		l.cursor = last
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l List[T]) drainNotices() []string {
	notices := l.frame.notices
	l.frame.notices = nil
	return notices
}

// View implements Interactor.
func (l List[T]) View() string {
	var b strings.Builder
	for i, s := range l.frame.slots {
		if !s.filled {
			b.WriteRune('\n')
			continue
		}
		marker := "  "
		if i == l.cursor {
			marker = l.styles.Cursor.Render("> ")
		}
		check := "[ ] "
		if !l.multi {
			check = ""
		} else if s.status != engine.StatusNone {
			check = "[x] "
		}
		label := s.label
		if l.width > 6 {
			label = runewidth.Truncate(label, l.width-6, "…")
		}
		line := check + label
		switch {
		case !s.selectable:
			line = l.styles.Unpickable.Render(line)
		case s.status == engine.StatusActive:
			line = l.styles.Active.Render(line)
		case s.status == engine.StatusSelected:
			line = l.styles.Selected.Render(line)
		default:
			line = l.styles.Normal.Render(line)
		}
		b.WriteString(marker + line + "\n")
	}
	b.WriteString(l.styles.Help.Render(l.helpLine()))
	return b.String()
}

// helpLine lists only the actions whose controls are currently
// enabled, derived from the engine's enablement pushes.
func (l List[T]) helpLine() string {
	var parts []string
	if l.frame.enabled[ctrlPrev] || l.frame.enabled[ctrlNext] {
		parts = append(parts, "↑/↓ move")
	}
	if l.frame.enabled[ctrlPrevPage] || l.frame.enabled[ctrlNextPage] {
		parts = append(parts, "pgup/pgdn page")
	}
	if l.multi {
		parts = append(parts, "space toggle", "a all", "n none")
	}
	if l.confirm {
		if l.frame.enabled[ctrlContinue] {
			parts = append(parts, "enter confirm")
		}
	} else {
		parts = append(parts, "enter pick")
	}
	if l.cancellable {
		parts = append(parts, "esc cancel")
	}
	return strings.Join(parts, " · ")
}
