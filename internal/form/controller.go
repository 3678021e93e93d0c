// Package form holds the create/edit controllers behind the wallet and tag
// dialogs: a baseline snapshot, a draft, dirty detection and a guarded submit.
package form

import (
	"context"
	"errors"
	"fmt"
	"sync"

	logging "github.com/ipfs/go-log/v2"

	"sorta/internal/chain"
	"sorta/internal/notify"
)

var log = logging.Logger("form")

var (
	ErrBusy      = errors.New("a save is already in progress")
	ErrClosed    = errors.New("form is closed")
	ErrNoChanges = errors.New("no changes to save")
)

// ValidationError is returned before any store call when a required field
// is missing.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string { return e.Msg }

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

type draft[D any] interface {
	Equal(D) bool
	Clone() D
	// normalize returns the draft as the store keeps it.
	normalize() D
}

// persistFunc stores d. base is the last persisted state; id is empty in
// create mode. It returns the id of the stored entity.
type persistFunc[D any] func(ctx context.Context, mode Mode, id string, base, d D) (string, error)

// controller is the state shared by every form.
type controller[D draft[D]] struct {
	mu       sync.Mutex
	open     bool
	busy     bool
	gen      uint64
	mode     Mode
	id       string
	baseline D
	draft    D

	notifier notify.Notifier
	onSaved  func()
}

type settings struct {
	onSaved      func()
	defaultChain chain.Chain
	strict       bool
}

type Option func(*settings)

// WithOnSaved registers the callback run after every successful save,
// typically a list reload.
func WithOnSaved(fn func()) Option {
	return func(s *settings) { s.onSaved = fn }
}

func WithDefaultChain(c chain.Chain) Option {
	return func(s *settings) { s.defaultChain = c }
}

// WithStrictAddresses makes wallet validation check the address format of
// the selected chain.
func WithStrictAddresses(strict bool) Option {
	return func(s *settings) { s.strict = strict }
}

func newSettings(opts []Option) settings {
	s := settings{defaultChain: chain.ETH}
	for _, o := range opts {
		o(&s)
	}
	return s
}

func (c *controller[D]) init(n notify.Notifier, onSaved func()) {
	if n == nil {
		n = notify.Discard{}
	}
	c.notifier = n
	c.onSaved = onSaved
}

func (c *controller[D]) reset(mode Mode, id string, baseline D) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.open = true
	c.busy = false
	c.mode = mode
	c.id = id
	c.baseline = baseline.Clone()
	c.draft = baseline.Clone()
}

// Close discards the draft. A submit still running completes in the store
// but no longer touches this form.
func (c *controller[D]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.open = false
	c.busy = false
}

func (c *controller[D]) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *controller[D]) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// ID of the entity being edited, empty while creating.
func (c *controller[D]) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *controller[D]) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *controller[D]) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.draft.Equal(c.baseline)
}

func (c *controller[D]) snapshot() (D, D) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline.Clone(), c.draft.Clone()
}

// edit applies fn to the draft of an open form and is a no-op otherwise.
func (c *controller[D]) edit(fn func(d *D)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}
	fn(&c.draft)
}

func (c *controller[D]) canSave(validate func(D) error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open && !c.busy && !c.draft.Equal(c.baseline) && validate(c.draft) == nil
}

// submit validates and persists the current draft. While it runs the form is
// busy and further submits fail with ErrBusy.
func (c *controller[D]) submit(ctx context.Context, what string, validate func(D) error, persist persistFunc[D]) (string, error) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return "", ErrClosed
	}
	if c.busy {
		c.mu.Unlock()
		return "", ErrBusy
	}
	if c.draft.Equal(c.baseline) {
		c.mu.Unlock()
		return "", ErrNoChanges
	}
	if err := validate(c.draft); err != nil {
		c.mu.Unlock()
		c.notifier.Error(err.Error(), nil)
		return "", err
	}
	c.busy = true
	gen, mode, id := c.gen, c.mode, c.id
	base, d := c.baseline.Clone(), c.draft.Clone()
	c.mu.Unlock()

	log.Debugf("submit: saving %s in %s mode", what, mode)
	newID, err := persist(ctx, mode, id, base, d)

	c.mu.Lock()
	stale := gen != c.gen
	if !stale {
		c.busy = false
	}
	if err == nil && !stale {
		saved := d.normalize()
		if c.draft.Equal(d) {
			c.draft = saved.Clone()
		}
		c.baseline = saved
		c.mode = ModeEdit
		c.id = newID
	}
	c.mu.Unlock()

	if err != nil {
		verb := "update"
		if mode == ModeCreate {
			verb = "create"
		}
		c.notifier.Error(fmt.Sprintf("Failed to %s %s", verb, what), err)
		return "", err
	}

	if mode == ModeCreate {
		c.notifier.Success(fmt.Sprintf("%s created successfully", capitalize(what)))
	} else {
		c.notifier.Success(fmt.Sprintf("%s updated successfully", capitalize(what)))
	}
	if stale {
		log.Debugf("submit: %s %s saved after the form was closed", what, newID)
	}
	if c.onSaved != nil {
		c.onSaved()
	}
	return newID, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
