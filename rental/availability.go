package rental

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine answers availability questions against a snapshot of committed bookings.
// Pending lines belong to a booking still being built and are passed per call.
type Engine struct {
	committed []*Booking
}

// NewEngine builds an engine over the committed bookings.
func NewEngine(committed []*Booking) *Engine {
	return &Engine{committed: committed}
}

// Excluding returns an engine that ignores the booking with the id, used when
// that booking itself is being re-dated.
func (e *Engine) Excluding(id uuid.UUID) *Engine {
	rest := make([]*Booking, 0, len(e.committed))
	for _, b := range e.committed {
		if b.ID != id {
			rest = append(rest, b)
		}
	}
	return &Engine{committed: rest}
}

// CountOccupied counts the committed and pending lines that hold the slot and
// overlap [start, end].
func (e *Engine) CountOccupied(slot SlotID, start, end time.Time, pending []BookingLine) int {
	n := 0
	for _, b := range e.committed {
		n += countLines(b.Lines, slot, start, end)
	}
	return n + countLines(pending, slot, start, end)
}

func countLines(lines []BookingLine, slot SlotID, start, end time.Time) int {
	n := 0
	for _, l := range lines {
		if Overlaps(l.Start, l.End, start, end) && l.Contains(slot) {
			n++
		}
	}
	return n
}

// FreeUnitCount returns how many slots of the type's pool are unoccupied
// over [start, end].
func (e *Engine) FreeUnitCount(t *ToolType, start, end time.Time, pending []BookingLine) int {
	return len(e.freeSlots(t, start, end, pending))
}

func (e *Engine) freeSlots(t *ToolType, start, end time.Time, pending []BookingLine) []SlotID {
	var free []SlotID
	for _, slot := range t.Slots() {
		if e.CountOccupied(slot, start, end, pending) == 0 {
			free = append(free, slot)
		}
	}
	return free
}

// GroupFreeCount sums FreeUnitCount over types sold as the same item.
func (e *Engine) GroupFreeCount(types []*ToolType, start, end time.Time, pending []BookingLine) int {
	n := 0
	for _, t := range types {
		n += e.FreeUnitCount(t, start, end, pending)
	}
	return n
}

// AllocateUnits picks quantity free slots across the candidate types, taking
// earlier types and lower slot indexes first. When fewer slots are free it
// returns a *ShortCountError and allocates nothing.
func (e *Engine) AllocateUnits(candidates []*ToolType, quantity int, start, end time.Time, pending []BookingLine) ([]SlotID, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity %d: %w", quantity, ErrInvalidArgument)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("range %s-%s: %w", FormatDate(start), FormatDate(end), ErrInvalidArgument)
	}

	picked := make([]SlotID, 0, quantity)
	for _, t := range candidates {
		for _, slot := range e.freeSlots(t, start, end, pending) {
			if len(picked) == quantity {
				return picked, nil
			}
			picked = append(picked, slot)
		}
	}
	if len(picked) < quantity {
		return nil, &ShortCountError{Requested: quantity, Available: len(picked)}
	}
	return picked, nil
}

// AnyFree reports whether at least one of the types has a free unit over the range.
func (e *Engine) AnyFree(types []*ToolType, start, end time.Time) bool {
	for _, t := range types {
		if e.FreeUnitCount(t, start, end, nil) > 0 {
			return true
		}
	}
	return false
}

// Conflict describes another booking that holds a slot of the checked booking
// in an overlapping range.
type Conflict struct {
	BookingID uuid.UUID
	Slot      SlotID
	Start     time.Time
	End       time.Time
}

// Conflicts checks every slot of every line of b against every line of every
// committed booking other than b, as if b were moved to [start, end].
func (e *Engine) Conflicts(b *Booking, start, end time.Time) []Conflict {
	var out []Conflict
	seen := map[SlotID]bool{}
	for _, l := range b.Lines {
		for _, slot := range l.Units {
			if seen[slot] {
				continue
			}
			seen[slot] = true
			for _, other := range e.committed {
				if other.ID == b.ID {
					continue
				}
				for _, ol := range other.Lines {
					if Overlaps(ol.Start, ol.End, start, end) && ol.Contains(slot) {
						out = append(out, Conflict{BookingID: other.ID, Slot: slot, Start: ol.Start, End: ol.End})
					}
				}
			}
		}
	}
	return out
}

// Redate returns copies of b's lines moved onto [start, end]. Lines of one
// booking may hold the same unit on disjoint periods; once they share the new
// period such a repeated unit is swapped for a free unit of the same type.
// When no unit is free a *ShortCountError is returned and b is left untouched.
func (e *Engine) Redate(b *Booking, start, end time.Time, cat *Catalog) ([]BookingLine, error) {
	held := BookingLine{Start: start, End: end}
	for _, l := range b.Lines {
		held.Units = append(held.Units, l.Units...)
	}
	// single-day lines never overlap, not even with themselves
	overlapping := Overlaps(start, end, start, end)

	lines := make([]BookingLine, len(b.Lines))
	taken := map[SlotID]bool{}
	for i, l := range b.Lines {
		nl := BookingLine{Units: make([]SlotID, 0, len(l.Units)), Start: start, End: end}
		for _, u := range l.Units {
			if !taken[u] || !overlapping {
				taken[u] = true
				nl.Units = append(nl.Units, u)
				continue
			}
			t, _ := cat.Type(u.TypeID)
			if t == nil {
				return nil, &ShortCountError{Requested: 1}
			}
			slots, err := e.AllocateUnits([]*ToolType{t}, 1, start, end, []BookingLine{held})
			if err != nil {
				return nil, err
			}
			held.Units = append(held.Units, slots[0])
			taken[slots[0]] = true
			nl.Units = append(nl.Units, slots[0])
		}
		lines[i] = nl
	}
	return lines, nil
}
