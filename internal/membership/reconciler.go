// Package membership converges the persisted members of one entity in a join
// table to a desired set.
package membership

import (
	"context"
	"errors"
	"fmt"
	"strings"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("membership")

// Table is one side of a join table: rows are (key, member) pairs and every
// call is scoped to a single key.
type Table interface {
	Members(ctx context.Context, key string) ([]string, error)
	DeleteAll(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string, members []string) (int64, error)
	Insert(ctx context.Context, key string, members []string) error
}

// Txer runs fn against a Table bound to a single transaction.
// A non-nil error from fn rolls the transaction back.
type Txer interface {
	InTx(ctx context.Context, fn func(Table) error) error
}

// Check validates a request before any write happens.
type Check func(ctx context.Context, key string, desired Set) error

type Strategy int

const (
	// FullReplace deletes every row for the key and inserts the desired set.
	FullReplace Strategy = iota
	// MinimalDiff reads the current rows and writes only the difference.
	MinimalDiff
)

func (s Strategy) String() string {
	switch s {
	case FullReplace:
		return "replace"
	case MinimalDiff:
		return "diff"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy accepts "replace" or "diff".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "replace":
		return FullReplace, nil
	case "diff":
		return MinimalDiff, nil
	}
	return 0, fmt.Errorf("unknown membership strategy %q", s)
}

type Phase string

const (
	PhaseRead   Phase = "read"
	PhaseDelete Phase = "delete"
	PhaseInsert Phase = "insert"
)

var (
	ErrReadPhase   = errors.New("membership read failed")
	ErrDeletePhase = errors.New("membership delete phase failed")
	ErrInsertPhase = errors.New("membership insert phase failed")
)

// PhaseError reports which phase of a reconcile failed. Committed is set when
// writes of the same call may have been kept without a rollback.
type PhaseError struct {
	Phase     Phase
	Key       string
	Strategy  Strategy
	Committed bool
	Err       error
}

func (e *PhaseError) Error() string {
	msg := fmt.Sprintf("reconcile memberships of %s: %s phase: %v", e.Key, e.Phase, e.Err)
	if e.Committed && e.Phase == PhaseInsert {
		if e.Strategy == FullReplace {
			msg += " (existing memberships were already removed, entity now has none)"
		} else {
			msg += " (removals were already applied)"
		}
	}
	return msg
}

func (e *PhaseError) Unwrap() error { return e.Err }

func (e *PhaseError) Is(target error) bool {
	switch target {
	case ErrReadPhase:
		return e.Phase == PhaseRead
	case ErrDeletePhase:
		return e.Phase == PhaseDelete
	case ErrInsertPhase:
		return e.Phase == PhaseInsert
	}
	return false
}

// Result counts the rows written by one reconcile.
type Result struct {
	Deleted  int64
	Inserted int
}

type Reconciler struct {
	table    Table
	txer     Txer
	strategy Strategy
	check    Check
}

type Option func(*Reconciler)

func WithStrategy(s Strategy) Option {
	return func(r *Reconciler) { r.strategy = s }
}

// WithTx makes both phases run in one transaction.
func WithTx(t Txer) Option {
	return func(r *Reconciler) { r.txer = t }
}

func WithCheck(c Check) Option {
	return func(r *Reconciler) { r.check = c }
}

// New returns a reconciler over table. Without WithTx the phases are
// committed independently.
func New(table Table, opts ...Option) *Reconciler {
	r := &Reconciler{table: table, strategy: FullReplace}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Reconciler) Strategy() Strategy { return r.strategy }

// Reconcile makes the members of key equal desired.
func (r *Reconciler) Reconcile(ctx context.Context, key string, desired Set) (Result, error) {
	if desired == nil {
		desired = NewSet()
	}
	if r.check != nil {
		if err := r.check(ctx, key, desired); err != nil {
			log.Warnf("Reconcile: rejected %s: %v", key, err)
			return Result{}, err
		}
	}

	if r.txer == nil {
		res, err := r.apply(ctx, r.table, key, desired, false)
		if err != nil {
			log.Errorf("Reconcile: %v", err)
		}
		return res, err
	}

	var res Result
	err := r.txer.InTx(ctx, func(t Table) error {
		var err error
		res, err = r.apply(ctx, t, key, desired, true)
		return err
	})
	if err != nil {
		log.Errorf("Reconcile: %v", err)
		return Result{}, err
	}
	return res, nil
}

func (r *Reconciler) apply(ctx context.Context, t Table, key string, desired Set, atomic bool) (Result, error) {
	var res Result
	// A failed delete may have removed some rows; a failed insert has only
	// committed what the delete phase reported.
	fail := func(p Phase, err error) error {
		committed := !atomic && (p == PhaseDelete || res.Deleted > 0)
		return &PhaseError{Phase: p, Key: key, Strategy: r.strategy, Committed: committed, Err: err}
	}

	toAdd := desired.Sorted()

	switch r.strategy {
	case MinimalDiff:
		current, err := t.Members(ctx, key)
		if err != nil {
			return res, fail(PhaseRead, err)
		}
		var toRemove []string
		toAdd, toRemove = Diff(NewSet(current...), desired)
		if len(toRemove) > 0 {
			n, err := t.Delete(ctx, key, toRemove)
			if err != nil {
				return res, fail(PhaseDelete, err)
			}
			res.Deleted = n
		}
	default:
		n, err := t.DeleteAll(ctx, key)
		if err != nil {
			return res, fail(PhaseDelete, err)
		}
		res.Deleted = n
	}

	if len(toAdd) == 0 {
		log.Debugf("apply: %s converged, %d deleted, nothing to insert", key, res.Deleted)
		return res, nil
	}
	if err := t.Insert(ctx, key, toAdd); err != nil {
		return res, fail(PhaseInsert, err)
	}
	res.Inserted = len(toAdd)

	log.Debugf("apply: %s converged with %s, %d deleted, %d inserted", key, r.strategy, res.Deleted, res.Inserted)
	return res, nil
}
