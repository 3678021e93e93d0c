package form

import (
	"context"
	"strings"

	"sorta/internal/chain"
	"sorta/internal/membership"
	"sorta/internal/models"
	"sorta/internal/notify"
)

// WalletSaver persists a wallet draft.
type WalletSaver interface {
	CreateWalletWithTags(ctx context.Context, ownerID string, fields models.WalletFields, groupIDs, tagIDs []string) (*models.Wallet, error)
	UpdateWallet(ctx context.Context, ownerID, id string, fields models.WalletFields) (*models.Wallet, error)
	ReconcileWalletGroups(ctx context.Context, ownerID, walletID string, groupIDs []string) (membership.Result, error)
	ReconcileWalletTags(ctx context.Context, ownerID, walletID string, tagIDs []string) (membership.Result, error)
}

// WalletDraft is the editable state of the wallet dialog.
type WalletDraft struct {
	Name    string
	Chain   chain.Chain
	Address string
	Groups  membership.Set
	Tags    membership.Set
}

func (d WalletDraft) Equal(o WalletDraft) bool {
	return d.Name == o.Name &&
		d.Chain == o.Chain &&
		d.Address == o.Address &&
		d.Groups.Equal(o.Groups) &&
		d.Tags.Equal(o.Tags)
}

func (d WalletDraft) Clone() WalletDraft {
	d.Groups = d.Groups.Clone()
	d.Tags = d.Tags.Clone()
	return d
}

func (d WalletDraft) normalize() WalletDraft {
	n := d.Clone()
	f := d.fields()
	if err := f.Validate(); err == nil {
		n.Name, n.Chain, n.Address = f.Name, f.Chain, f.Address
	}
	return n
}

func (d WalletDraft) fields() models.WalletFields {
	return models.WalletFields{Name: d.Name, Chain: d.Chain, Address: d.Address}
}

func (d WalletDraft) sameFields(o WalletDraft) bool {
	return d.Name == o.Name && d.Chain == o.Chain && d.Address == o.Address
}

// WalletForm drives the add/edit wallet dialog.
type WalletForm struct {
	c       controller[WalletDraft]
	saver   WalletSaver
	ownerID string
	set     settings
}

func NewWalletForm(saver WalletSaver, n notify.Notifier, ownerID string, opts ...Option) *WalletForm {
	f := &WalletForm{saver: saver, ownerID: ownerID, set: newSettings(opts)}
	f.c.init(n, f.set.onSaved)
	return f
}

// OpenCreate opens an empty draft. It is not dirty until a field changes.
func (f *WalletForm) OpenCreate() {
	f.c.reset(ModeCreate, "", WalletDraft{
		Chain:  f.set.defaultChain,
		Groups: membership.NewSet(),
		Tags:   membership.NewSet(),
	})
}

// OpenEdit seeds baseline and draft from a loaded wallet.
func (f *WalletForm) OpenEdit(w models.WalletWithGroups) {
	f.c.reset(ModeEdit, w.ID, WalletDraft{
		Name:    w.Name,
		Chain:   w.Chain,
		Address: w.Address,
		Groups:  membership.NewSet(w.GroupIDs()...),
		Tags:    membership.NewSet(w.TagIDs()...),
	})
}

func (f *WalletForm) Close()        { f.c.Close() }
func (f *WalletForm) IsOpen() bool  { return f.c.IsOpen() }
func (f *WalletForm) Mode() Mode    { return f.c.Mode() }
func (f *WalletForm) ID() string    { return f.c.ID() }
func (f *WalletForm) Busy() bool    { return f.c.Busy() }
func (f *WalletForm) IsDirty() bool { return f.c.IsDirty() }

func (f *WalletForm) SetName(name string) {
	f.c.edit(func(d *WalletDraft) { d.Name = name })
}

func (f *WalletForm) SetAddress(addr string) {
	f.c.edit(func(d *WalletDraft) { d.Address = addr })
}

func (f *WalletForm) SetChain(c chain.Chain) {
	f.c.edit(func(d *WalletDraft) { d.Chain = c })
}

// ToggleGroup flips one group in the draft and reports whether it is now
// selected.
func (f *WalletForm) ToggleGroup(id string) bool {
	var on bool
	f.c.edit(func(d *WalletDraft) { on = d.Groups.Toggle(id) })
	return on
}

func (f *WalletForm) SetGroups(ids ...string) {
	f.c.edit(func(d *WalletDraft) { d.Groups = membership.NewSet(ids...) })
}

func (f *WalletForm) ToggleTag(id string) bool {
	var on bool
	f.c.edit(func(d *WalletDraft) { on = d.Tags.Toggle(id) })
	return on
}

func (f *WalletForm) SetTags(ids ...string) {
	f.c.edit(func(d *WalletDraft) { d.Tags = membership.NewSet(ids...) })
}

// Draft returns a copy of the current draft.
func (f *WalletForm) Draft() WalletDraft {
	_, d := f.c.snapshot()
	return d
}

// Baseline returns a copy of the last persisted state.
func (f *WalletForm) Baseline() WalletDraft {
	b, _ := f.c.snapshot()
	return b
}

func (f *WalletForm) CanSave() bool { return f.c.canSave(f.validate) }

// Validate checks the current draft without saving.
func (f *WalletForm) Validate() error { return f.validate(f.Draft()) }

func (f *WalletForm) validate(d WalletDraft) error {
	if strings.TrimSpace(d.Address) == "" {
		return &ValidationError{Field: "address", Msg: "wallet address is required"}
	}
	fields := d.fields()
	if err := fields.Validate(); err != nil {
		return &ValidationError{Field: "wallet", Msg: err.Error()}
	}
	if f.set.strict {
		if err := chain.ValidateAddress(fields.Chain, fields.Address); err != nil {
			return &ValidationError{Field: "address", Msg: err.Error()}
		}
	}
	return nil
}

// Submit saves the draft. In create mode the wallet is created with its
// groups and tags; in edit mode changed fields are updated and each changed
// membership set is reconciled. It returns the wallet id.
func (f *WalletForm) Submit(ctx context.Context) (string, error) {
	return f.c.submit(ctx, "wallet", f.validate, f.persist)
}

func (f *WalletForm) persist(ctx context.Context, mode Mode, id string, base, d WalletDraft) (string, error) {
	if mode == ModeCreate {
		w, err := f.saver.CreateWalletWithTags(ctx, f.ownerID, d.fields(), d.Groups.Sorted(), d.Tags.Sorted())
		if err != nil {
			return "", err
		}
		return w.ID, nil
	}

	if !d.sameFields(base) {
		if _, err := f.saver.UpdateWallet(ctx, f.ownerID, id, d.fields()); err != nil {
			return "", err
		}
	}
	if !d.Groups.Equal(base.Groups) {
		if _, err := f.saver.ReconcileWalletGroups(ctx, f.ownerID, id, d.Groups.Sorted()); err != nil {
			return "", err
		}
	}
	if !d.Tags.Equal(base.Tags) {
		if _, err := f.saver.ReconcileWalletTags(ctx, f.ownerID, id, d.Tags.Sorted()); err != nil {
			return "", err
		}
	}
	return id, nil
}
