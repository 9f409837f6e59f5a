package db

import (
	"context"
	"encoding/json"
	"fmt"
)

// Table is a typed view over one collection of a Store.
type Table[T any] struct {
	store Store
	name  string
	id    func(*T) string
}

// NewTable binds a collection to its record type. id extracts the primary key.
func NewTable[T any](store Store, name string, id func(*T) string) *Table[T] {
	return &Table[T]{store: store, name: name, id: id}
}

// Get returns the record with id, or nil if it does not exist.
func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	body, err := t.store.Get(ctx, t.name, id)
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", t.name, id, err)
	}
	return &v, nil
}

// Put inserts or replaces v.
func (t *Table[T]) Put(ctx context.Context, v *T) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", t.name, err)
	}
	return t.store.Put(ctx, t.name, t.id(v), body)
}

// Delete removes the record with id.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	return t.store.Delete(ctx, t.name, id)
}

// All returns every record in primary-key order.
func (t *Table[T]) All(ctx context.Context) ([]T, error) {
	docs, err := t.store.Scan(ctx, t.name)
	if err != nil {
		return nil, err
	}
	return t.decode(docs)
}

// Where returns the records whose indexed field equals value, in primary-key order.
func (t *Table[T]) Where(ctx context.Context, field, value string) ([]T, error) {
	docs, err := t.store.Where(ctx, t.name, field, value)
	if err != nil {
		return nil, err
	}
	return t.decode(docs)
}

// First returns the first record whose field equals value, or nil.
func (t *Table[T]) First(ctx context.Context, field, value string) (*T, error) {
	all, err := t.Where(ctx, field, value)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[0], nil
}

// Count returns the number of records.
func (t *Table[T]) Count(ctx context.Context) (int, error) {
	return t.store.Count(ctx, t.name)
}

func (t *Table[T]) decode(docs [][]byte) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, body := range docs {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s record: %w", t.name, err)
		}
		out = append(out, v)
	}
	return out, nil
}
