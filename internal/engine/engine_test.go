package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabtab/gabtab/internal/paging"
)

// probe records everything the engine pushes through its hooks.
type probe struct {
	slots   []slotProbe
	enabled map[string]bool
	notices [][]string
}

type slotProbe struct {
	item       string
	selectable bool
	status     Status
	filled     bool
}

func newProbe(slots int) *probe {
	return &probe{
		slots:   make([]slotProbe, slots),
		enabled: make(map[string]bool),
	}
}

func (p *probe) hooks(validate func(string) []string) Hooks[string] {
	return Hooks[string]{
		RenderSlot: func(slot int, item string, selectable bool, status Status) {
			p.slots[slot] = slotProbe{item: item, selectable: selectable, status: status, filled: true}
		},
		ClearSlot: func(slot int) {
			p.slots[slot] = slotProbe{}
		},
		SetEnabled: func(key string, enabled bool) {
			p.enabled[key] = enabled
		},
		Notify: func(messages []string) {
			p.notices = append(p.notices, messages)
		},
		Validate: validate,
	}
}

type engineOpts struct {
	slots       int
	mode        paging.Mode
	multi       bool
	continueCtl bool
	cancelCtl   bool
	validate    func(string) []string
}

func newTestEngine(t *testing.T, opts engineOpts, items []string) (*Engine[string], *probe) {
	t.Helper()
	if opts.slots == 0 {
		opts.slots = 3
	}
	p := newProbe(opts.slots)
	e, err := New(Config[string]{
		Slots:       opts.slots,
		Mode:        opts.mode,
		MultiSelect: opts.multi,
		Hooks:       p.hooks(opts.validate),
	})
	require.NoError(t, err)
	e.Bind("prev", Control{Kind: ControlMove, Delta: -1})
	e.Bind("next", Control{Kind: ControlMove, Delta: 1})
	e.Bind("prevpage", Control{Kind: ControlMovePages, Delta: -1})
	e.Bind("nextpage", Control{Kind: ControlMovePages, Delta: 1})
	if opts.continueCtl {
		e.Bind("ok", Control{Kind: ControlContinue})
	}
	if opts.cancelCtl {
		e.Bind("cancel", Control{Kind: ControlCancel})
	}
	e.SetItems(items)
	return e, p
}

func items(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func TestNewRejectsZeroSlots(t *testing.T) {
	_, err := New(Config[string]{Slots: 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestSingleSelectExclusivity(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{continueCtl: true}, items(5))
	require.NoError(t, e.Start(true))

	e.SelectOne(0, false)
	e.SelectOne(1, false)
	assert.Equal(t, []string{"b"}, e.Selected())
}

func TestSelectAllTracksActive(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{multi: true, continueCtl: true}, []string{"x", "y", "z"})
	require.NoError(t, e.Start(true))

	e.SelectAll()
	active, ok := e.Active()
	require.True(t, ok)
	assert.Equal(t, "z", active)

	e.UnselectOne(2, false)
	active, ok = e.Active()
	require.True(t, ok)
	assert.Equal(t, "y", active)
}

func TestSelectAllIsNoopInSingleSelect(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{continueCtl: true}, items(4))
	require.NoError(t, e.Start(true))
	e.SelectAll()
	assert.Empty(t, e.Selected())
}

func TestToggleOne(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{multi: true, continueCtl: true}, items(5))
	require.NoError(t, e.Start(true))

	e.ToggleOne(0, false)
	e.ToggleOne(2, false)
	assert.Equal(t, []string{"a", "c"}, e.Selected())
	e.ToggleOne(0, false)
	assert.Equal(t, []string{"c"}, e.Selected())
}

func TestCancelClearsSelection(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{multi: true, continueCtl: true, cancelCtl: true}, items(5))
	require.NoError(t, e.Start(true))

	e.ToggleOne(0, false)
	e.ToggleOne(1, false)
	require.Len(t, e.Selected(), 2)

	require.NoError(t, e.Press("cancel"))
	require.True(t, e.Resolve())
	assert.True(t, e.Done())
	assert.Empty(t, e.Selected())
}

func TestDeadlockGuard(t *testing.T) {
	rejectAll := func(string) []string { return []string{"no"} }

	// No cancel control and nothing selectable: Start must refuse.
	e, _ := newTestEngine(t, engineOpts{continueCtl: true, validate: rejectAll}, items(3))
	err := e.Start(true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.False(t, e.Done())

	// No cancel control and no items at all.
	e, _ = newTestEngine(t, engineOpts{continueCtl: true}, nil)
	err = e.Start(false)
	assert.ErrorIs(t, err, ErrConfiguration)

	// A cancel control is an exit, so the same wiring starts fine.
	e, _ = newTestEngine(t, engineOpts{continueCtl: true, cancelCtl: true, validate: rejectAll}, items(3))
	assert.NoError(t, e.Start(true))
}

func TestMultiSelectRequiresContinue(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{multi: true, cancelCtl: true}, items(3))
	err := e.Start(true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestStartTwice(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{continueCtl: true}, items(3))
	require.NoError(t, e.Start(true))
	assert.ErrorIs(t, e.Start(true), ErrAlreadyRunning)
}

// A failing validation round reports its messages and loops back to
// waiting; the caller can re-submit until the selection passes.
func TestValidationRetryLoop(t *testing.T) {
	allowed := false
	validate := func(item string) []string {
		if item == "a" && !allowed {
			return []string{"a is not ready"}
		}
		return nil
	}
	e, p := newTestEngine(t, engineOpts{continueCtl: true, cancelCtl: true, validate: validate}, items(3))
	require.NoError(t, e.Start(true))

	e.SelectOne(0, false)

	// Two failing rounds.
	require.NoError(t, e.Press("ok"))
	assert.False(t, e.Resolve())
	require.NoError(t, e.Press("ok"))
	assert.False(t, e.Resolve())
	require.Len(t, p.notices, 2)
	assert.Equal(t, []string{"a is not ready"}, p.notices[0])
	assert.False(t, e.Done())

	// Third submission passes.
	allowed = true
	require.NoError(t, e.Press("ok"))
	assert.True(t, e.Resolve())
	assert.True(t, e.Done())
	assert.Equal(t, []string{"a"}, e.Selected())
	assert.Len(t, p.notices, 2)
}

// Without a continue control, picking in single-select mode submits
// atomically.
func TestDirectSelectSubmits(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{cancelCtl: true}, items(5))
	require.NoError(t, e.Start(true))

	e.SelectOne(1, true)
	require.True(t, e.Resolve())
	assert.Equal(t, []string{"b"}, e.Selected())
}

func TestRenderSelectabilityMatchesSubmit(t *testing.T) {
	validate := func(item string) []string {
		if item == "b" {
			return []string{"b is forbidden"}
		}
		return nil
	}
	e, p := newTestEngine(t, engineOpts{continueCtl: true, cancelCtl: true, validate: validate}, items(3))
	require.NoError(t, e.Start(true))

	require.True(t, p.slots[0].selectable)
	require.False(t, p.slots[1].selectable)

	// The same hook answer decides the submit outcome.
	e.SelectOne(1, false)
	require.NoError(t, e.Press("ok"))
	assert.False(t, e.Resolve())
	require.Len(t, p.notices, 1)
	assert.Equal(t, []string{"b is forbidden"}, p.notices[0])
}

func TestRenderStatusAndWindow(t *testing.T) {
	e, p := newTestEngine(t, engineOpts{multi: true, continueCtl: true}, items(5))
	require.NoError(t, e.Start(true))

	require.True(t, p.slots[0].filled)
	assert.Equal(t, "a", p.slots[0].item)
	assert.Equal(t, StatusNone, p.slots[0].status)

	e.ToggleOne(0, false)
	e.ToggleOne(1, false)
	assert.Equal(t, StatusSelected, p.slots[0].status)
	assert.Equal(t, StatusActive, p.slots[1].status)

	// Shift the window: slot 0 now shows item b.
	e.Move(1)
	assert.Equal(t, "b", p.slots[0].item)
	assert.Equal(t, StatusActive, p.slots[0].status)
}

func TestRenderClearsTrailingSlots(t *testing.T) {
	e, p := newTestEngine(t, engineOpts{slots: 4, continueCtl: true}, items(2))
	require.NoError(t, e.Start(true))
	assert.True(t, p.slots[1].filled)
	assert.False(t, p.slots[2].filled)
	assert.False(t, p.slots[3].filled)
}

func TestControlEnablementDerivation(t *testing.T) {
	e, p := newTestEngine(t, engineOpts{multi: true, continueCtl: true, cancelCtl: true}, items(7))
	require.NoError(t, e.Start(true))

	assert.False(t, p.enabled["prev"])
	assert.True(t, p.enabled["next"])
	assert.True(t, p.enabled["nextpage"])
	assert.False(t, p.enabled["ok"], "continue disabled while nothing is selected")
	assert.True(t, p.enabled["cancel"])

	e.ToggleOne(0, false)
	assert.True(t, p.enabled["ok"])

	e.MovePages(1)
	assert.True(t, p.enabled["prev"])
	assert.True(t, p.enabled["prevpage"])
}

func TestPressDisabledControlIsIgnored(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{continueCtl: true, cancelCtl: true}, items(7))
	require.NoError(t, e.Start(true))

	// prev is disabled at position 0.
	require.NoError(t, e.Press("prev"))
	assert.Equal(t, 0, e.Position())

	// Continue with an empty selection must not raise a result.
	require.NoError(t, e.Press("ok"))
	assert.False(t, e.Resolve())
}

func TestPressUnknownControl(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{continueCtl: true}, items(3))
	assert.ErrorIs(t, e.Press("bogus"), ErrUnknownControl)
}

// Relative indices wrap only under Looping; under the other modes an
// out-of-range relative index is ignored instead of selecting an
// unintended item near the boundary.
func TestRelativeIndexResolution(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{mode: paging.Clamped, continueCtl: true}, items(13))
	require.NoError(t, e.Start(true))
	e.MovePages(3) // position 9
	require.Equal(t, 9, e.Position())

	e.SelectOne(2, true)
	assert.Equal(t, []string{"l"}, e.Selected()) // item index 11

	e.Move(1) // position 10; slot 2 shows the last item
	e.SelectOne(3, true)
	assert.Equal(t, []string{"l"}, e.Selected(), "past-the-end relative index is a no-op")

	loop, _ := newTestEngine(t, engineOpts{mode: paging.Looping, continueCtl: true}, items(13))
	require.NoError(t, loop.Start(true))
	loop.Move(12)
	require.Equal(t, 12, loop.Position())
	loop.SelectOne(1, true) // wraps to item index 0
	assert.Equal(t, []string{"a"}, loop.Selected())
}

func TestSetItemsResetsEverything(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{multi: true, continueCtl: true}, items(7))
	require.NoError(t, e.Start(true))
	e.ToggleOne(0, false)
	e.MovePages(1)
	e.Continue()

	e.SetItems(items(4))
	assert.Empty(t, e.Selected())
	assert.Equal(t, 0, e.Position())
	assert.False(t, e.Resolve(), "pending result must be discarded")
	assert.False(t, e.Done())
}

func TestRewindBeforeItemsIsNoop(t *testing.T) {
	p := newProbe(3)
	e, err := New(Config[string]{Slots: 3, Hooks: p.hooks(nil)})
	require.NoError(t, err)
	e.Rewind()
	assert.False(t, p.slots[0].filled)
}

func TestAwaitCompletes(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{continueCtl: true, cancelCtl: true}, items(3))
	require.NoError(t, e.Start(true))

	go func() {
		e.SelectOne(0, false)
		e.Continue()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.Await(ctx))
	assert.True(t, e.Done())
	assert.Equal(t, []string{"a"}, e.Selected())
}

func TestAwaitWithoutStart(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{continueCtl: true}, items(3))
	assert.ErrorIs(t, e.Await(context.Background()), ErrNotRunning)
}

func TestAwaitHonorsContext(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{continueCtl: true, cancelCtl: true}, items(3))
	require.NoError(t, e.Start(true))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := e.Await(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRunDrivesToDone(t *testing.T) {
	e, _ := newTestEngine(t, engineOpts{cancelCtl: true}, items(3))

	go func() {
		// Direct-select mode: one pick finishes the run.
		time.Sleep(10 * time.Millisecond)
		e.SelectOne(2, false)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx, true))
	assert.Equal(t, []string{"c"}, e.Selected())
}
