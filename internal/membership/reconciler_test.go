package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategies = []Strategy{FullReplace, MinimalDiff}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, FullReplace, s)

	s, err = ParseStrategy(" DIFF ")
	require.NoError(t, err)
	assert.Equal(t, MinimalDiff, s)

	_, err = ParseStrategy("merge")
	assert.Error(t, err)
}

func TestReconcile_SetEquality(t *testing.T) {
	desiredSets := [][]string{
		{},
		{"g1"},
		{"g1", "g2"},
		{"g2", "g3", "g4"},
		{"g1", "g1", "g5"},
	}

	for _, st := range strategies {
		for _, atomic := range []bool{false, true} {
			table := newMemTable()
			table.seed("w1", "g1", "g3")
			table.seed("w2", "g9")

			opts := []Option{WithStrategy(st)}
			if atomic {
				opts = append(opts, WithTx(memTx{table}))
			}
			r := New(table, opts...)

			for _, d := range desiredSets {
				_, err := r.Reconcile(context.Background(), "w1", NewSet(d...))
				require.NoError(t, err)

				got, _ := table.Members(context.Background(), "w1")
				assert.Equal(t, NewSet(d...).Sorted(), got, "strategy=%s atomic=%v desired=%v", st, atomic, d)
			}
			assert.Equal(t, []string{"g9"}, table.rows["w2"].Sorted(), "other keys untouched")
		}
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	for _, st := range strategies {
		t.Run(st.String(), func(t *testing.T) {
			table := newMemTable()
			table.seed("w1", "a")
			r := New(table, WithStrategy(st))
			desired := NewSet("a", "b", "c")

			for i := 0; i < 2; i++ {
				_, err := r.Reconcile(context.Background(), "w1", desired)
				require.NoError(t, err)
				got, _ := table.Members(context.Background(), "w1")
				assert.Equal(t, []string{"a", "b", "c"}, got)
			}
		})
	}
}

func TestReconcile_EmptySetClears(t *testing.T) {
	for _, st := range strategies {
		table := newMemTable()
		table.seed("w1", "a", "b")
		r := New(table, WithStrategy(st))

		res, err := r.Reconcile(context.Background(), "w1", nil)
		require.NoError(t, err)
		assert.EqualValues(t, 2, res.Deleted)
		assert.Zero(t, res.Inserted)
		assert.Empty(t, table.rows["w1"])
	}
}

func TestReconcile_MinimalDiffWritesOnlyDifference(t *testing.T) {
	table := newMemTable()
	table.seed("w1", "a", "b")
	r := New(table, WithStrategy(MinimalDiff))

	res, err := r.Reconcile(context.Background(), "w1", NewSet("b", "c"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Deleted)
	assert.Equal(t, 1, res.Inserted)

	table.writes = 0
	_, err = r.Reconcile(context.Background(), "w1", NewSet("b", "c"))
	require.NoError(t, err)
	assert.Zero(t, table.writes, "converged set needs no writes")
}

func TestReconcile_FullReplaceSurvivesStaleState(t *testing.T) {
	table := newMemTable()
	table.seed("w1", "a")
	r := New(table)

	res, err := r.Reconcile(context.Background(), "w1", NewSet("a", "b"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Deleted)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, sorted("b", "a"), table.rows["w1"].Sorted())
}

func TestReconcile_DeletePhaseFailureSkipsInsert(t *testing.T) {
	for _, st := range strategies {
		table := newMemTable()
		table.seed("w1", "a")
		table.deleteErr = errors.New("connection reset")
		r := New(table, WithStrategy(st))

		_, err := r.Reconcile(context.Background(), "w1", NewSet("b"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDeletePhase)
		assert.NotErrorIs(t, err, ErrInsertPhase)
		assert.Equal(t, []string{"a"}, table.rows["w1"].Sorted(), "no insert attempted")
	}
}

func TestReconcile_InsertFailureWithoutTx(t *testing.T) {
	table := newMemTable()
	table.seed("w1", "a", "b")
	table.insertErr = errors.New("disk full")
	r := New(table)

	_, err := r.Reconcile(context.Background(), "w1", NewSet("c"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsertPhase)

	var pe *PhaseError
	require.True(t, errors.As(err, &pe))
	assert.True(t, pe.Committed)
	assert.Contains(t, err.Error(), "entity now has none")
	assert.Empty(t, table.rows["w1"], "two-phase replace leaves zero memberships")
}

func TestReconcile_InsertFailureWithNothingRemoved(t *testing.T) {
	for _, st := range strategies {
		table := newMemTable()
		table.seed("w1", "a")
		table.insertErr = errors.New("disk full")
		r := New(table, WithStrategy(st))

		desired := NewSet("a", "b")
		if st == FullReplace {
			table.seed("w1")
			desired = NewSet("b")
		}
		_, err := r.Reconcile(context.Background(), "w1", desired)
		require.ErrorIs(t, err, ErrInsertPhase)

		var pe *PhaseError
		require.True(t, errors.As(err, &pe))
		assert.False(t, pe.Committed, "%s: no rows were removed", st)
		assert.NotContains(t, err.Error(), "already")
	}
}

func TestReconcile_InsertFailureWithTxRollsBack(t *testing.T) {
	for _, st := range strategies {
		table := newMemTable()
		table.seed("w1", "a", "b")
		table.insertErr = errors.New("disk full")
		r := New(table, WithStrategy(st), WithTx(memTx{table}))

		_, err := r.Reconcile(context.Background(), "w1", NewSet("c"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInsertPhase)

		var pe *PhaseError
		require.True(t, errors.As(err, &pe))
		assert.False(t, pe.Committed)
		assert.Equal(t, []string{"a", "b"}, table.rows["w1"].Sorted())
	}
}

func TestReconcile_ReadFailure(t *testing.T) {
	table := newMemTable()
	table.readErr = errors.New("timeout")
	r := New(table, WithStrategy(MinimalDiff))

	_, err := r.Reconcile(context.Background(), "w1", NewSet("a"))
	assert.ErrorIs(t, err, ErrReadPhase)
	assert.Zero(t, table.writes)
}

func TestReconcile_CheckRejectsBeforeWrites(t *testing.T) {
	table := newMemTable()
	table.seed("w1", "a")
	errForeign := errors.New("group belongs to another owner")

	var seen Set
	r := New(table, WithCheck(func(_ context.Context, key string, desired Set) error {
		seen = desired
		return errForeign
	}))

	_, err := r.Reconcile(context.Background(), "w1", NewSet("x", "x"))
	assert.ErrorIs(t, err, errForeign)
	assert.Equal(t, 1, seen.Len())
	assert.Zero(t, table.writes)
	assert.Equal(t, []string{"a"}, table.rows["w1"].Sorted())
}
