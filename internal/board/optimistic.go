// Package board keeps client-side views of the job board and the candidate
// kanban in step with the server using optimistic updates: a change is shown
// immediately, then either confirmed by refetching or rolled back.
package board

import (
	"context"
	"errors"
	"sync"
)

// ErrChangeInFlight is returned by Apply while another change is pending.
var ErrChangeInFlight = errors.New("board: a change is already in flight")

// ErrSettled is returned when Commit or Revert is called twice.
var ErrSettled = errors.New("board: change already settled")

// FetchFunc loads the authoritative state.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Optimistic holds state that can be changed speculatively. At most one
// speculative change exists at a time.
type Optimistic[T any] struct {
	mu      sync.Mutex
	state   T
	pending *Pending[T]
	fetch   FetchFunc[T]
}

// NewOptimistic creates a holder that loads state with fetch. Call Refresh to
// load the first state.
func NewOptimistic[T any](fetch FetchFunc[T]) *Optimistic[T] {
	return &Optimistic[T]{fetch: fetch}
}

// State returns the current, possibly speculative, state.
func (o *Optimistic[T]) State() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// InFlight reports whether a speculative change is pending.
func (o *Optimistic[T]) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

// Refresh replaces the state with a fresh fetch. It does not touch a pending change.
func (o *Optimistic[T]) Refresh(ctx context.Context) error {
	next, err := o.fetch(ctx)
	if err != nil {
		return err
	}
	o.mu.Lock()
	o.state = next
	o.mu.Unlock()
	return nil
}

// Apply installs f(current) as the speculative state. f must return a new value
// and leave its argument unmodified, since the argument is kept for Revert.
func (o *Optimistic[T]) Apply(f func(T) T) (*Pending[T], error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pending != nil {
		return nil, ErrChangeInFlight
	}
	p := &Pending[T]{owner: o, snapshot: o.state}
	o.state = f(o.state)
	o.pending = p
	return p, nil
}

// Pending is one speculative change awaiting Commit or Revert.
type Pending[T any] struct {
	owner    *Optimistic[T]
	snapshot T
	settled  bool
}

func (p *Pending[T]) settle(restore bool) error {
	o := p.owner
	o.mu.Lock()
	defer o.mu.Unlock()
	if p.settled {
		return ErrSettled
	}
	p.settled = true
	if restore {
		o.state = p.snapshot
	}
	o.pending = nil
	return nil
}

// Commit accepts the change and refetches the authoritative state. If the
// refetch fails the speculative state stays and the error is returned.
func (p *Pending[T]) Commit(ctx context.Context) error {
	if err := p.settle(false); err != nil {
		return err
	}
	return p.owner.Refresh(ctx)
}

// Revert restores the state from before the change, then refetches.
func (p *Pending[T]) Revert(ctx context.Context) error {
	if err := p.settle(true); err != nil {
		return err
	}
	return p.owner.Refresh(ctx)
}
