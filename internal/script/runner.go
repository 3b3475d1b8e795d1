package script

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gabtab/gabtab/internal/config"
	"github.com/gabtab/gabtab/internal/interactor"
	"github.com/gabtab/gabtab/internal/message"
	"github.com/gabtab/gabtab/internal/session"
)

// nextStepMsg advances the conversation to the next script step.
type nextStepMsg struct{}

// Runner is the Bubble Tea model that plays a script through a
// dialogue session, one step per interaction.
type Runner struct {
	script Script
	cfg    config.Config
	sess   session.Session
	step   int
	vars   map[string]string
	logger *slog.Logger
	err    error
}

// NewRunner creates a runner for the given script.
func NewRunner(s Script, cfg config.Config, logger *slog.Logger) Runner {
	if logger == nil {
		logger = slog.Default()
	}
	box := message.New(cfg.Typing.Cadence()).SetStyles(cfg.Theme.MessageStyles())
	return Runner{
		script: s,
		cfg:    cfg,
		sess:   session.New(box, logger),
		vars:   make(map[string]string),
		logger: logger,
	}
}

// Err returns the error that aborted the conversation, if any.
func (r Runner) Err() error { return r.err }

// Vars returns the results stored by store_as steps.
func (r Runner) Vars() map[string]string { return r.vars }

// Init implements tea.Model.
func (r Runner) Init() tea.Cmd {
	return func() tea.Msg { return nextStepMsg{} }
}

// Update implements tea.Model.
func (r Runner) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return r, tea.Quit
		}

	case nextStepMsg:
		if r.step >= len(r.script.Steps) {
			return r, tea.Quit
		}
		step := r.script.Steps[r.step]
		r.step++
		prompt, inter, err := r.buildTurn(step)
		if err != nil {
			r.err = err
			return r, tea.Quit
		}
		sess, cmd, err := r.sess.Start(prompt, inter)
		if err != nil {
			r.err = err
			return r, tea.Quit
		}
		r.sess = sess
		return r, cmd

	case session.CompletedMsg:
		r.storeResult()
		return r, func() tea.Msg { return nextStepMsg{} }

	case session.FailedMsg:
		r.err = msg.Err
		return r, tea.Quit
	}

	var cmd tea.Cmd
	r.sess, cmd = r.sess.Update(msg)
	return r, cmd
}

// View implements tea.Model.
func (r Runner) View() string {
	if r.err != nil {
		return fmt.Sprintf("conversation aborted: %v\n", r.err)
	}
	return r.sess.View()
}

// buildTurn translates a script step into a prompt and interactor.
func (r Runner) buildTurn(step Step) (message.Prompt, interactor.Interactor, error) {
	var prompt message.Prompt
	if step.Clear {
		prompt = append(prompt, message.Clear())
	}
	for i, line := range step.Say {
		if i > 0 {
			line = "\n" + line
		}
		prompt = append(prompt, message.Text(r.expand(line)))
	}
	if step.PauseMs > 0 {
		prompt = append(prompt, message.Wait(time.Duration(step.PauseMs)*time.Millisecond))
	}
	if step.Ask == nil {
		return prompt, nil, nil
	}

	switch step.Ask.Kind {
	case "buttons":
		buttons := make([]interactor.Button, 0, len(step.Ask.Buttons))
		for _, b := range step.Ask.Buttons {
			buttons = append(buttons, interactor.Button{
				Key:      b.Key,
				Label:    r.expand(b.Label),
				Disabled: b.Disabled,
			})
		}
		row, err := interactor.NewButtons(buttons...)
		if err != nil {
			return nil, nil, err
		}
		return prompt, row.SetStyles(r.cfg.Theme.ButtonStyles()), nil

	case "input":
		def := step.Ask.Input
		if def == nil {
			def = &InputDef{}
		}
		in := interactor.NewInput(def.Placeholder, def.MaxLen, inputValidator(def)).
			Cancellable(r.cfg.List.Cancellable).
			SetStyles(r.cfg.Theme.InputStyles())
		return prompt, in, nil

	case "list":
		def := step.Ask.List
		slots := def.Slots
		if slots == 0 {
			slots = r.cfg.List.Slots
		}
		pagingMode := def.Paging
		if pagingMode == "" {
			pagingMode = r.cfg.List.Paging
		}
		mode, err := config.ListConfig{Paging: pagingMode}.Mode()
		if err != nil {
			return nil, nil, err
		}
		list, err := interactor.NewList(interactor.ListConfig[string]{
			Items:           def.Items,
			Label:           func(s string) string { return s },
			Validate:        forbidValidator(def.Forbid),
			Slots:           slots,
			Mode:            mode,
			MultiSelect:     def.MultiSelect,
			RequireContinue: def.RequireContinue,
			Cancellable:     r.cfg.List.Cancellable,
			Logger:          r.logger,
			Styles:          r.cfg.Theme.ListStyles(),
		})
		if err != nil {
			return nil, nil, err
		}
		return prompt, list, nil

	default:
		return nil, nil, fmt.Errorf("unknown ask kind %q", step.Ask.Kind)
	}
}

// storeResult records the finished interactor's result under the
// step's store_as name.
func (r *Runner) storeResult() {
	idx := r.step - 1
	if idx < 0 || idx >= len(r.script.Steps) {
		return
	}
	ask := r.script.Steps[idx].Ask
	if ask == nil || ask.StoreAs == "" {
		return
	}
	switch it := r.sess.Interactor().(type) {
	case interactor.Buttons:
		r.vars[ask.StoreAs] = it.Choice()
	case interactor.Input:
		r.vars[ask.StoreAs] = it.Value()
	case interactor.List[string]:
		r.vars[ask.StoreAs] = strings.Join(it.Selected(), ", ")
	}
}

// expand substitutes ${name} references with stored results.
func (r Runner) expand(s string) string {
	return os.Expand(s, func(name string) string { return r.vars[name] })
}

// inputValidator combines the required and forbid rules of an input
// ask.
func inputValidator(def *InputDef) func(string) []string {
	forbid := forbidValidator(def.Forbid)
	if !def.Required {
		return forbid
	}
	return func(value string) []string {
		if value == "" {
			return []string{"A value is required."}
		}
		if forbid != nil {
			return forbid(value)
		}
		return nil
	}
}

// forbidValidator rejects listed values with a human-readable reason.
func forbidValidator(forbidden []string) func(string) []string {
	if len(forbidden) == 0 {
		return nil
	}
	banned := make(map[string]bool, len(forbidden))
	for _, f := range forbidden {
		banned[f] = true
	}
	return func(value string) []string {
		if banned[value] {
			return []string{fmt.Sprintf("%q cannot be chosen.", value)}
		}
		return nil
	}
}
