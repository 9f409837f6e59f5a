// Package reorder computes the order-field updates needed to move one item of an
// ordered collection to a new position.
//
// Items carry an integer order that is unique within the collection; gaps are
// allowed. Moving an item from order From to order To shifts every item between the
// two positions by one so the collection keeps a single item per order value.
package reorder

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrNoopMove is returned when From equals To.
	ErrNoopMove = errors.New("reorder: source and destination order are equal")
	// ErrNotFound is returned when the moved item is not in the collection.
	ErrNotFound = errors.New("reorder: item not found")
	// ErrStaleOrder is returned when the moved item's stored order no longer equals From.
	ErrStaleOrder = errors.New("reorder: item order changed since it was read")
)

// Entry is the part of an ordered record the algorithm needs.
type Entry struct {
	ID    string
	Order int
}

// Move asks for the item ID, currently at From, to end up at To.
type Move struct {
	ID   string
	From int
	To   int
}

// Change is a single point update.
type Change struct {
	ID       string
	OldOrder int
	NewOrder int
}

// Plan returns the point updates that realize m over entries. The moved item's
// change is always last.
//
// When From < To every entry with order in (From, To] moves up by one (decrement).
// When From > To every entry with order in [To, From) moves down by one (increment).
func Plan(entries []Entry, m Move) ([]Change, error) {
	if m.From == m.To {
		return nil, ErrNoopMove
	}

	var moved *Entry
	for i := range entries {
		if entries[i].ID == m.ID {
			moved = &entries[i]
			break
		}
	}
	if moved == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, m.ID)
	}
	if moved.Order != m.From {
		return nil, fmt.Errorf("%w: %s is at %d, not %d", ErrStaleOrder, m.ID, moved.Order, m.From)
	}

	var changes []Change
	for _, e := range entries {
		if e.ID == m.ID {
			continue
		}
		switch {
		case m.From < m.To && e.Order > m.From && e.Order <= m.To:
			changes = append(changes, Change{ID: e.ID, OldOrder: e.Order, NewOrder: e.Order - 1})
		case m.From > m.To && e.Order >= m.To && e.Order < m.From:
			changes = append(changes, Change{ID: e.ID, OldOrder: e.Order, NewOrder: e.Order + 1})
		}
	}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].OldOrder < changes[j].OldOrder })

	return append(changes, Change{ID: m.ID, OldOrder: m.From, NewOrder: m.To}), nil
}

// Apply returns a copy of entries with changes applied, sorted by order.
func Apply(entries []Entry, changes []Change) []Entry {
	next := make(map[string]int, len(changes))
	for _, c := range changes {
		next[c.ID] = c.NewOrder
	}
	out := make([]Entry, len(entries))
	for i, e := range entries {
		if o, ok := next[e.ID]; ok {
			e.Order = o
		}
		out[i] = e
	}
	Sort(out)
	return out
}

// Sort orders entries by order, then by id for ties.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Order != entries[j].Order {
			return entries[i].Order < entries[j].Order
		}
		return entries[i].ID < entries[j].ID
	})
}

// Next returns the order for an item appended to the end of the collection:
// one past the highest order, or 1 when the collection is empty.
func Next(entries []Entry) int {
	if len(entries) == 0 {
		return 1
	}
	highest := entries[0].Order
	for _, e := range entries[1:] {
		if e.Order > highest {
			highest = e.Order
		}
	}
	return highest + 1
}
