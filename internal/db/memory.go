package db

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Memory is a Store held entirely in process memory.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string][]byte)}
}

// Migrate is a no-op; collections are created on first write.
func (m *Memory) Migrate(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Get returns a copy of the document, or nil if it does not exist.
func (m *Memory) Get(_ context.Context, collection, id string) ([]byte, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.docs[collection][id]
	if !ok {
		return nil, nil
	}
	return bytes.Clone(body), nil
}

// Put inserts or replaces a document.
func (m *Memory) Put(_ context.Context, collection, id string, body []byte) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if !json.Valid(body) {
		return fmt.Errorf("failed to put %s/%s: body is not valid JSON", collection, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string][]byte)
	}
	m.docs[collection][id] = bytes.Clone(body)
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (m *Memory) Delete(_ context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[collection], id)
	return nil
}

// Scan returns every document of a collection ordered by id.
func (m *Memory) Scan(_ context.Context, collection string) ([][]byte, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(collection, nil), nil
}

// Where returns the documents whose field, rendered as text, equals value.
func (m *Memory) Where(_ context.Context, collection, field, value string) ([][]byte, error) {
	if err := checkIndexed(collection, field); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sorted(collection, func(body []byte) bool {
		v, ok := fieldText(body, field)
		return ok && v == value
	}), nil
}

// Count returns the number of documents in a collection.
func (m *Memory) Count(_ context.Context, collection string) (int, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs[collection]), nil
}

// sorted must be called with m.mu held.
func (m *Memory) sorted(collection string, keep func([]byte) bool) [][]byte {
	docs := m.docs[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		body := docs[id]
		if keep != nil && !keep(body) {
			continue
		}
		out = append(out, bytes.Clone(body))
	}
	return out
}

// fieldText renders a top-level JSON field the way Postgres' ->> operator does.
func fieldText(body []byte, field string) (string, bool) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return "", false
	}
	v, ok := doc[field]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		return fmt.Sprint(t), true
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(raw), true
	}
}
