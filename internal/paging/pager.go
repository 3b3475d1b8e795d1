// Package paging computes window positions for a list rendered into a
// fixed number of display slots. A Pager knows nothing about items or
// selection; it only does position arithmetic for the three paging
// modes and answers feasibility questions that drive the enablement of
// navigation controls.
package paging

import (
	"fmt"
)

// Mode selects how the window position responds to navigation that
// would run past the ends of the list.
type Mode int

const (
	// Snapped refuses page moves that would leave the window partially
	// past either end; the position never moves off a full window.
	Snapped Mode = iota
	// Clamped saturates: overshooting navigation lands exactly at the
	// nearest edge.
	Clamped
	// Looping wraps around the list in both directions.
	Looping
)

// String returns the mode name as used in configuration files.
func (m Mode) String() string {
	switch m {
	case Snapped:
		return "snapped"
	case Clamped:
		return "clamped"
	case Looping:
		return "looping"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "snapped":
		return Snapped, nil
	case "clamped":
		return Clamped, nil
	case "looping":
		return Looping, nil
	default:
		return Snapped, fmt.Errorf("unknown paging mode %q", s)
	}
}

// Pager tracks the first visible item index of a slot window.
//
// All methods are pure position arithmetic: a Pager holds no reference
// to the items themselves. When the whole list fits in the window
// (itemCount <= slotCount) navigation is disabled entirely.
type Pager struct {
	mode  Mode
	slots int
	items int
	pos   int
}

// New creates a Pager with the given mode and slot count.
// The slot count must be positive.
func New(mode Mode, slots int) (*Pager, error) {
	if slots < 1 {
		return nil, fmt.Errorf("slot count must be positive, got %d", slots)
	}
	return &Pager{mode: mode, slots: slots}, nil
}

// Mode returns the paging mode.
func (p *Pager) Mode() Mode { return p.mode }

// Slots returns the number of display slots.
func (p *Pager) Slots() int { return p.slots }

// Position returns the index of the first visible item.
func (p *Pager) Position() int { return p.pos }

// SetItemCount installs a new list length and rewinds to position 0.
func (p *Pager) SetItemCount(n int) {
	if n < 0 {
		n = 0
	}
	p.items = n
	p.pos = 0
}

// Rewind resets the window to the start of the list.
func (p *Pager) Rewind() { p.pos = 0 }

// navigable reports whether any movement is possible at all.
func (p *Pager) navigable() bool {
	return p.items > p.slots
}

// Move shifts the window by delta items and reports whether the
// position changed. Under Snapped and Clamped the result saturates at
// the list edges; under Looping it wraps.
func (p *Pager) Move(delta int) bool {
	next, ok := p.moveTarget(delta)
	if !ok || next == p.pos {
		return false
	}
	p.pos = next
	return true
}

// CanMove reports whether Move(delta) would change the position.
func (p *Pager) CanMove(delta int) bool {
	next, ok := p.moveTarget(delta)
	return ok && next != p.pos
}

// moveTarget computes the position a single-step move of delta items
// would land on. ok is false when navigation is disabled.
func (p *Pager) moveTarget(delta int) (next int, ok bool) {
	if !p.navigable() {
		return p.pos, false
	}
	switch p.mode {
	case Looping:
		return p.wrap(p.pos + delta%p.items), true
	default: // Snapped and Clamped behave identically for item moves.
		return clamp(p.pos+delta, 0, p.items-p.slots), true
	}
}

// MovePages shifts the window by delta pages (units of the slot count)
// and reports whether the position changed.
//
// Snapped rejects any page move whose target does not fit fully within
// the list: the position stays put rather than landing on a partial
// window. Clamped saturates to the nearest edge. Looping reduces the
// shift modulo the item count and wraps.
func (p *Pager) MovePages(delta int) bool {
	next, ok := p.pageTarget(delta)
	if !ok || next == p.pos {
		return false
	}
	p.pos = next
	return true
}

// CanMovePages reports whether MovePages(delta) would change the
// position.
func (p *Pager) CanMovePages(delta int) bool {
	next, ok := p.pageTarget(delta)
	return ok && next != p.pos
}

func (p *Pager) pageTarget(delta int) (next int, ok bool) {
	if !p.navigable() {
		return p.pos, false
	}
	shift := delta * p.slots
	switch p.mode {
	case Snapped:
		next = p.pos + shift
		if next < 0 || next > p.items-p.slots {
			return p.pos, false
		}
		return next, true
	case Clamped:
		return clamp(p.pos+shift, 0, p.items-p.slots), true
	default: // Looping
		return p.wrap(p.pos + shift%p.items), true
	}
}

// SlotIndex resolves a display slot to an absolute item index. Under
// Looping (with more items than slots) the index wraps; otherwise
// slots past the end of the list report ok == false and should be
// rendered empty.
func (p *Pager) SlotIndex(slot int) (index int, ok bool) {
	if slot < 0 || slot >= p.slots || p.items == 0 {
		return 0, false
	}
	index = p.pos + slot
	if p.mode == Looping && p.items > p.slots {
		return index % p.items, true
	}
	if index >= p.items {
		return 0, false
	}
	return index, true
}

// wrap normalizes a position into [0, items).
func (p *Pager) wrap(pos int) int {
	return ((pos % p.items) + p.items) % p.items
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
