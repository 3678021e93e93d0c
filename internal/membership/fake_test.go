package membership

import (
	"context"
	"errors"
	"sort"
)

// memTable is an in-memory join table with injectable failures.
type memTable struct {
	rows      map[string]Set
	readErr   error
	deleteErr error
	insertErr error
	writes    int
}

func newMemTable() *memTable {
	return &memTable{rows: map[string]Set{}}
}

func (m *memTable) seed(key string, members ...string) {
	m.rows[key] = NewSet(members...)
}

func (m *memTable) set(key string) Set {
	if s, ok := m.rows[key]; ok {
		return s
	}
	s := NewSet()
	m.rows[key] = s
	return s
}

func (m *memTable) Members(_ context.Context, key string) ([]string, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := m.set(key).Sorted()
	return out, nil
}

func (m *memTable) DeleteAll(_ context.Context, key string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	n := int64(m.set(key).Len())
	m.rows[key] = NewSet()
	m.writes++
	return n, nil
}

func (m *memTable) Delete(_ context.Context, key string, members []string) (int64, error) {
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	var n int64
	s := m.set(key)
	for _, id := range members {
		if s.Has(id) {
			s.Remove(id)
			n++
		}
	}
	m.writes++
	return n, nil
}

var errDuplicate = errors.New("UNIQUE constraint failed")

func (m *memTable) Insert(_ context.Context, key string, members []string) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	s := m.set(key)
	for _, id := range members {
		if s.Has(id) {
			return errDuplicate
		}
	}
	for _, id := range members {
		s.Add(id)
	}
	m.writes++
	return nil
}

func (m *memTable) snapshot() map[string]Set {
	out := make(map[string]Set, len(m.rows))
	for k, v := range m.rows {
		out[k] = v.Clone()
	}
	return out
}

// memTx restores the table snapshot when fn fails.
type memTx struct {
	table *memTable
}

func (tx memTx) InTx(_ context.Context, fn func(Table) error) error {
	snap := tx.table.snapshot()
	if err := fn(tx.table); err != nil {
		tx.table.rows = snap
		return err
	}
	return nil
}

func sorted(ids ...string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
