// Package engine implements the list interaction engine: a windowed,
// pageable view over a list of items with single- or multi-selection,
// per-item validation, and a retry loop that re-prompts until the
// selection passes. The engine owns no widgets; it talks to its host
// UI exclusively through the hooks it is configured with, and the host
// wires its own controls (buttons, key bindings) back into the engine
// via Bind and Press.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/gabtab/gabtab/internal/paging"
	"github.com/gabtab/gabtab/internal/selection"
)

// Status describes how a rendered slot relates to the current
// selection.
type Status int

const (
	// StatusNone marks an unselected item.
	StatusNone Status = iota
	// StatusSelected marks a selected item.
	StatusSelected
	// StatusActive marks the most recently selected surviving item.
	StatusActive
)

// engineState tracks the interaction state machine.
type engineState int

const (
	stateIdle       engineState = iota // Before Start
	stateAwaiting                      // Waiting for a result signal
	stateValidating                    // Checking the selection
	stateDone                          // Terminal; selection is final
)

// ControlKind identifies what a bound control does when pressed.
type ControlKind int

const (
	// ControlMove shifts the window by Delta items.
	ControlMove ControlKind = iota
	// ControlMovePages shifts the window by Delta pages.
	ControlMovePages
	// ControlContinue submits the current selection for validation.
	ControlContinue
	// ControlCancel clears the selection and submits it, ending the
	// interaction with an empty result.
	ControlCancel
)

// Control describes a navigation or submission affordance bound to
// the engine under a host-chosen key.
type Control struct {
	Kind  ControlKind
	Delta int // Item or page delta for the move kinds
}

// Hooks connect the engine to its host UI and validation policy.
// Nil members default to no-ops (and to always-valid for Validate).
type Hooks[T comparable] struct {
	// RenderSlot updates one visible slot. Called once per slot per
	// re-render; must not block and must not call back into the
	// engine.
	RenderSlot func(slot int, item T, selectable bool, status Status)

	// ClearSlot hides a slot with no item behind it.
	ClearSlot func(slot int)

	// SetEnabled pushes the derived enablement of a bound control.
	SetEnabled func(key string, enabled bool)

	// Notify reports the aggregated messages of a failed validation
	// round so the host can display them before the retry.
	Notify func(messages []string)

	// Validate returns the reasons item cannot be accepted, or an
	// empty slice when it is valid. It must be pure: the engine calls
	// it for render-time selectability, the start-time selectability
	// gate, and submit-time validation, and all three must agree.
	Validate func(item T) []string
}

// Config configures a new Engine.
type Config[T comparable] struct {
	// Slots is the number of display slots. Must be positive.
	Slots int

	// Mode is the paging mode for window navigation.
	Mode paging.Mode

	// MultiSelect permits more than one selected item. Multi-select
	// engines require a continue control to be able to terminate.
	MultiSelect bool

	Hooks  Hooks[T]
	Logger *slog.Logger
}

// Engine drives one list interaction: window navigation, selection
// tracking, and the validate-or-retry loop. All methods are safe for
// use from a single goroutine; Await may run on a second goroutine
// while a host loop presses controls.
type Engine[T comparable] struct {
	mu       sync.Mutex
	pager    *paging.Pager
	items    []T
	hasItems bool
	sel      *selection.Set[T]
	controls *orderedmap.OrderedMap[string, Control]
	multi    bool
	hooks    Hooks[T]
	logger   *slog.Logger

	state   engineState
	pending bool
	wake    chan struct{}
}

// New creates an Engine. A zero or negative slot count is a
// configuration error.
func New[T comparable](cfg Config[T]) (*Engine[T], error) {
	if cfg.Slots < 1 {
		return nil, fmt.Errorf("%w: slot count must be positive, got %d", ErrConfiguration, cfg.Slots)
	}
	pager, err := paging.New(cfg.Mode, cfg.Slots)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine[T]{
		pager:    pager,
		sel:      selection.New[T](),
		controls: orderedmap.New[string, Control](),
		multi:    cfg.MultiSelect,
		hooks:    normalizeHooks(cfg.Hooks),
		logger:   logger,
		wake:     make(chan struct{}, 1),
	}, nil
}

func normalizeHooks[T comparable](h Hooks[T]) Hooks[T] {
	if h.RenderSlot == nil {
		h.RenderSlot = func(int, T, bool, Status) {}
	}
	if h.ClearSlot == nil {
		h.ClearSlot = func(int) {}
	}
	if h.SetEnabled == nil {
		h.SetEnabled = func(string, bool) {}
	}
	if h.Notify == nil {
		h.Notify = func([]string) {}
	}
	if h.Validate == nil {
		h.Validate = func(T) []string { return nil }
	}
	return h
}

// Bind registers a control under key. Binding the same key again
// replaces the control.
func (e *Engine[T]) Bind(key string, c Control) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.controls.Set(key, c)
}

// Press dispatches a host control press. Presses on controls whose
// derived enablement is currently false are ignored.
func (e *Engine[T]) Press(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.controls.Get(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownControl, key)
	}
	if !e.enabledLocked(c) {
		return nil
	}
	switch c.Kind {
	case ControlMove:
		e.moveLocked(c.Delta)
	case ControlMovePages:
		e.movePagesLocked(c.Delta)
	case ControlContinue:
		e.submitLocked()
	case ControlCancel:
		e.sel.Clear()
		e.renderLocked()
		e.submitLocked()
	}
	return nil
}

// SetItems replaces the item list. All interaction state is reset:
// the selection is cleared, the window rewinds to the start, any
// pending result is discarded, and the engine returns to idle.
func (e *Engine[T]) SetItems(items []T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = make([]T, len(items))
	copy(e.items, items)
	e.hasItems = true
	e.sel.Clear()
	e.pager.SetItemCount(len(items))
	e.pending = false
	e.state = stateIdle
}

// Rewind moves the window back to the start and re-renders. It is a
// no-op before the first SetItems.
func (e *Engine[T]) Rewind() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hasItems {
		return
	}
	e.pager.Rewind()
	e.renderLocked()
}

// Move shifts the window by delta items, re-rendering on change.
func (e *Engine[T]) Move(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.moveLocked(delta)
}

// MovePages shifts the window by delta pages, re-rendering on change.
func (e *Engine[T]) MovePages(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.movePagesLocked(delta)
}

// CanMove reports whether Move(delta) would change the window.
func (e *Engine[T]) CanMove(delta int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pager.CanMove(delta)
}

// CanMovePages reports whether MovePages(delta) would change the
// window.
func (e *Engine[T]) CanMovePages(delta int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pager.CanMovePages(delta)
}

func (e *Engine[T]) moveLocked(delta int) {
	if !e.hasItems {
		return
	}
	if e.pager.Move(delta) {
		e.renderLocked()
	}
}

func (e *Engine[T]) movePagesLocked(delta int) {
	if !e.hasItems {
		return
	}
	if e.pager.MovePages(delta) {
		e.renderLocked()
	}
}

// SelectOne selects the item at index. When relative is true the
// index is taken from the window position; under Looping it wraps
// around the list, under the other modes an index past either end is
// ignored. In single-select mode any previous selection is replaced.
//
// A single-select engine with no continue control treats selection as
// select-and-submit: the pending result is raised atomically with the
// selection.
func (e *Engine[T]) SelectOne(index int, relative bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	abs, ok := e.resolveIndex(index, relative)
	if !ok {
		return
	}
	if !e.multi {
		e.sel.Clear()
	}
	e.sel.Add(e.items[abs])
	if !e.multi && !e.hasControlLocked(ControlContinue) {
		e.pending = true
		e.signalWake()
	}
	e.renderLocked()
}

// UnselectOne removes the item at index from the selection.
func (e *Engine[T]) UnselectOne(index int, relative bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	abs, ok := e.resolveIndex(index, relative)
	if !ok {
		return
	}
	if e.sel.Remove(e.items[abs]) {
		e.renderLocked()
	}
}

// ToggleOne flips the selection of the item at index. In single-select
// mode selecting a new item replaces the previous one.
func (e *Engine[T]) ToggleOne(index int, relative bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	abs, ok := e.resolveIndex(index, relative)
	if !ok {
		return
	}
	item := e.items[abs]
	if e.sel.Contains(item) {
		e.sel.Remove(item)
	} else {
		if !e.multi {
			e.sel.Clear()
		}
		e.sel.Add(item)
	}
	e.renderLocked()
}

// SelectAll selects every item. It is an explicit no-op in
// single-select mode.
func (e *Engine[T]) SelectAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.multi {
		return
	}
	for _, item := range e.items {
		e.sel.Add(item)
	}
	e.renderLocked()
}

// UnselectAll clears the selection.
func (e *Engine[T]) UnselectAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.Clear()
	e.renderLocked()
}

// Continue submits the current selection for validation.
func (e *Engine[T]) Continue() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.submitLocked()
}

// Cancel clears the selection and submits, so a cancelled interaction
// always completes with zero selected items.
func (e *Engine[T]) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sel.Clear()
	e.renderLocked()
	e.submitLocked()
}

func (e *Engine[T]) submitLocked() {
	e.pending = true
	e.signalWake()
}

// resolveIndex maps a selection index to an absolute item index.
func (e *Engine[T]) resolveIndex(index int, relative bool) (int, bool) {
	n := len(e.items)
	if n == 0 {
		return 0, false
	}
	abs := index
	if relative {
		abs = e.pager.Position() + index
		if e.pager.Mode() == paging.Looping {
			abs = ((abs % n) + n) % n
		}
	}
	if abs < 0 || abs >= n {
		return 0, false
	}
	return abs, true
}

// Start begins an interaction: it verifies the engine can terminate,
// rewinds the window, renders, and enters the awaiting state. When
// initialValidation is true and no cancel control is bound, Start
// additionally requires at least one selectable item, since otherwise
// the interaction would have no exit.
func (e *Engine[T]) Start(initialValidation bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == stateAwaiting || e.state == stateValidating {
		return ErrAlreadyRunning
	}
	if e.multi && !e.hasControlLocked(ControlContinue) {
		return fmt.Errorf("%w: multi-select requires a continue control", ErrConfiguration)
	}
	if !e.hasControlLocked(ControlCancel) {
		if len(e.items) == 0 {
			return fmt.Errorf("%w: no cancel control and no items to select", ErrConfiguration)
		}
		if initialValidation && !e.anySelectableLocked() {
			return fmt.Errorf("%w: no cancel control and no selectable items", ErrConfiguration)
		}
	}
	e.pending = false
	e.pager.Rewind()
	e.state = stateAwaiting
	e.renderLocked()
	e.logger.Debug("list interaction started",
		"items", len(e.items), "slots", e.pager.Slots(), "multi", e.multi)
	return nil
}

// Resolve is the engine's poll point. If a result is pending it runs
// one validation round: on failure the messages are reported through
// the Notify hook and the engine returns to awaiting; on success the
// engine is done. Resolve reports whether the interaction finished.
func (e *Engine[T]) Resolve() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolveLocked()
}

func (e *Engine[T]) resolveLocked() bool {
	if e.state == stateDone {
		return true
	}
	if e.state != stateAwaiting || !e.pending {
		return false
	}
	e.state = stateValidating
	e.pending = false
	var failures []string
	for _, item := range e.sel.Items() {
		failures = append(failures, e.hooks.Validate(item)...)
	}
	if len(failures) > 0 {
		e.logger.Debug("selection rejected", "failures", len(failures))
		e.state = stateAwaiting
		e.hooks.Notify(failures)
		return false
	}
	e.state = stateDone
	e.logger.Debug("list interaction done", "selected", e.sel.Len())
	return true
}

// Await blocks until the interaction completes or ctx is cancelled.
// It is the blocking counterpart to driving Resolve from a host loop.
func (e *Engine[T]) Await(ctx context.Context) error {
	e.mu.Lock()
	if e.state == stateIdle {
		e.mu.Unlock()
		return ErrNotRunning
	}
	for {
		if e.resolveLocked() {
			e.mu.Unlock()
			return nil
		}
		e.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.wake:
		}
		e.mu.Lock()
	}
}

// Run starts the interaction and blocks until it completes.
func (e *Engine[T]) Run(ctx context.Context, initialValidation bool) error {
	if err := e.Start(initialValidation); err != nil {
		return err
	}
	return e.Await(ctx)
}

// Done reports whether the interaction has reached its terminal state.
func (e *Engine[T]) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == stateDone
}

// Selected returns the selected items in selection order. An empty
// result after Done signifies cancellation.
func (e *Engine[T]) Selected() []T {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel.Items()
}

// Active returns the most recently selected surviving item.
func (e *Engine[T]) Active() (T, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel.Active()
}

// Position returns the index of the first visible item.
func (e *Engine[T]) Position() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pager.Position()
}

func (e *Engine[T]) anySelectableLocked() bool {
	for _, item := range e.items {
		if len(e.hooks.Validate(item)) == 0 {
			return true
		}
	}
	return false
}

func (e *Engine[T]) hasControlLocked(kind ControlKind) bool {
	for pair := e.controls.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Kind == kind {
			return true
		}
	}
	return false
}

// enabledLocked derives whether a control should currently respond.
func (e *Engine[T]) enabledLocked(c Control) bool {
	switch c.Kind {
	case ControlMove:
		return e.pager.CanMove(c.Delta)
	case ControlMovePages:
		return e.pager.CanMovePages(c.Delta)
	case ControlContinue:
		return e.sel.Len() > 0
	case ControlCancel:
		return true
	default:
		return false
	}
}

// renderLocked pushes every slot and the derived control enablement
// to the host.
func (e *Engine[T]) renderLocked() {
	for slot := 0; slot < e.pager.Slots(); slot++ {
		idx, ok := e.pager.SlotIndex(slot)
		if !ok {
			e.hooks.ClearSlot(slot)
			continue
		}
		item := e.items[idx]
		status := StatusNone
		if e.sel.Contains(item) {
			status = StatusSelected
			if active, ok := e.sel.Active(); ok && active == item {
				status = StatusActive
			}
		}
		e.hooks.RenderSlot(slot, item, len(e.hooks.Validate(item)) == 0, status)
	}
	for pair := e.controls.Oldest(); pair != nil; pair = pair.Next() {
		e.hooks.SetEnabled(pair.Key, e.enabledLocked(pair.Value))
	}
}

// signalWake nudges a blocked Await without ever blocking the caller.
func (e *Engine[T]) signalWake() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}
