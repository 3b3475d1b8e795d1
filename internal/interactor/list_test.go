package interactor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabtab/gabtab/internal/engine"
	"github.com/gabtab/gabtab/internal/paging"
)

func keyRune(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testListConfig(items ...string) ListConfig[string] {
	return ListConfig[string]{
		Items: items,
		Label: func(s string) string { return s },
		Slots: 3,
		Mode:  paging.Clamped,
	}
}

func startList(t *testing.T, cfg ListConfig[string]) List[string] {
	t.Helper()
	l, err := NewList(cfg)
	require.NoError(t, err)
	started, _, err := l.Start()
	require.NoError(t, err)
	return started.(List[string])
}

func press(l List[string], msg tea.Msg) (List[string], tea.Cmd) {
	next, cmd := l.Update(msg)
	return next.(List[string]), cmd
}

func TestListSingleSelectPickSubmits(t *testing.T) {
	l := startList(t, testListConfig("alpha", "beta", "gamma"))

	l, _ = press(l, keyPress(tea.KeyEnter))
	assert.True(t, l.Done())
	assert.Equal(t, []string{"alpha"}, l.Selected())
	assert.False(t, l.Cancelled())
}

func TestListCursorThenWindowShift(t *testing.T) {
	l := startList(t, testListConfig("a", "b", "c", "d", "e"))

	// Cursor walks the window first, then further presses shift it.
	l, _ = press(l, keyRune("j"))
	l, _ = press(l, keyRune("j"))
	l, _ = press(l, keyRune("j"))
	assert.Equal(t, 1, l.Engine().Position())

	l, _ = press(l, keyPress(tea.KeyEnter))
	assert.True(t, l.Done())
	assert.Equal(t, []string{"d"}, l.Selected())
}

func TestListMultiSelectConfirm(t *testing.T) {
	cfg := testListConfig("a", "b", "c", "d")
	cfg.MultiSelect = true
	l := startList(t, cfg)

	// Confirm is disabled while nothing is selected.
	l, _ = press(l, keyPress(tea.KeyEnter))
	require.False(t, l.Done())

	l, _ = press(l, keyPress(tea.KeySpace))
	l, _ = press(l, keyRune("j"))
	l, _ = press(l, keyPress(tea.KeySpace))
	l, _ = press(l, keyPress(tea.KeyEnter))

	assert.True(t, l.Done())
	assert.Equal(t, []string{"a", "b"}, l.Selected())
}

func TestListToggleRemoves(t *testing.T) {
	cfg := testListConfig("a", "b", "c")
	cfg.MultiSelect = true
	l := startList(t, cfg)

	l, _ = press(l, keyPress(tea.KeySpace))
	l, _ = press(l, keyPress(tea.KeySpace))
	l, _ = press(l, keyPress(tea.KeyEnter))
	assert.False(t, l.Done())
	assert.Empty(t, l.Engine().Selected())
}

func TestListSelectAllAndClear(t *testing.T) {
	cfg := testListConfig("a", "b", "c", "d", "e")
	cfg.MultiSelect = true
	l := startList(t, cfg)

	l, _ = press(l, keyRune("a"))
	assert.Len(t, l.Engine().Selected(), 5)

	l, _ = press(l, keyRune("n"))
	assert.Empty(t, l.Engine().Selected())

	l, _ = press(l, keyRune("a"))
	l, _ = press(l, keyPress(tea.KeyEnter))
	assert.True(t, l.Done())
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, l.Selected())
}

func TestListValidationBlocksSubmitUntilFixed(t *testing.T) {
	cfg := testListConfig("a", "forbidden", "c")
	cfg.Validate = func(s string) []string {
		if s == "forbidden" {
			return []string{"that one is off limits"}
		}
		return nil
	}
	l := startList(t, cfg)

	l, cmd := press(l, keyRune("j"))
	require.Nil(t, cmd)
	l, cmd = press(l, keyPress(tea.KeyEnter))
	require.False(t, l.Done())
	require.NotNil(t, cmd)
	notice, ok := cmd().(NoticeMsg)
	require.True(t, ok)
	assert.Equal(t, []string{"that one is off limits"}, notice.Messages)

	// Picking a valid item afterwards completes the interaction.
	l, _ = press(l, keyRune("j"))
	l, _ = press(l, keyPress(tea.KeyEnter))
	assert.True(t, l.Done())
	assert.Equal(t, []string{"c"}, l.Selected())
}

func TestListCancel(t *testing.T) {
	cfg := testListConfig("a", "b")
	cfg.Cancellable = true
	l := startList(t, cfg)

	l, _ = press(l, keyPress(tea.KeyEsc))
	assert.True(t, l.Done())
	assert.True(t, l.Cancelled())
	assert.Empty(t, l.Selected())
}

func TestListEscIgnoredWhenNotCancellable(t *testing.T) {
	l := startList(t, testListConfig("a", "b"))
	l, _ = press(l, keyPress(tea.KeyEsc))
	assert.False(t, l.Done())
}

func TestListHomeRewinds(t *testing.T) {
	l := startList(t, testListConfig("a", "b", "c", "d", "e", "f", "g"))

	l, _ = press(l, keyRune("l"))
	require.Equal(t, 3, l.Engine().Position())

	l, _ = press(l, keyRune("g"))
	assert.Equal(t, 0, l.Engine().Position())
}

func TestListRefusesStartWithoutAnyExit(t *testing.T) {
	cfg := testListConfig("a", "b")
	cfg.Validate = func(string) []string { return []string{"no"} }

	l, err := NewList(cfg)
	require.NoError(t, err)
	_, _, err = l.Start()
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrConfiguration)

	// A cancel binding restores a way out.
	cfg.Cancellable = true
	l, err = NewList(cfg)
	require.NoError(t, err)
	_, _, err = l.Start()
	assert.NoError(t, err)
}

func TestListViewShowsWindow(t *testing.T) {
	l := startList(t, testListConfig("alpha", "beta", "gamma", "delta"))

	view := l.View()
	assert.Contains(t, view, "> ")
	assert.Contains(t, view, "alpha")
	assert.Contains(t, view, "gamma")
	assert.NotContains(t, view, "delta")
	assert.Contains(t, view, "enter pick")
}
