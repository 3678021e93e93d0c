package form

import (
	"context"
	"strings"

	"sorta/internal/listview"
	"sorta/internal/membership"
	"sorta/internal/models"
	"sorta/internal/notify"
)

// TagSaver persists a tag draft.
type TagSaver interface {
	CreateTag(ctx context.Context, ownerID string, params models.CreateLabelParams, walletIDs []string) (*models.Tag, error)
	UpdateTag(ctx context.Context, ownerID, id string, params models.UpdateLabelParams) (*models.Tag, error)
	ReconcileTagWallets(ctx context.Context, ownerID, tagID string, walletIDs []string) (membership.Result, error)
}

// TagDraft is a tag name with the set of wallets carrying it.
type TagDraft struct {
	Name    string
	Color   string
	Wallets membership.Set
}

func (d TagDraft) Equal(o TagDraft) bool {
	return d.Name == o.Name && d.Color == o.Color && d.Wallets.Equal(o.Wallets)
}

func (d TagDraft) Clone() TagDraft {
	d.Wallets = d.Wallets.Clone()
	return d
}

func (d TagDraft) normalize() TagDraft {
	n := d.Clone()
	p := models.CreateLabelParams{Name: d.Name, Color: d.Color}
	if err := p.Validate(); err == nil {
		n.Name, n.Color = p.Name, p.Color
	}
	return n
}

// TagForm drives the tag dialog, where wallets are picked from the tag side.
type TagForm struct {
	c       controller[TagDraft]
	saver   TagSaver
	ownerID string
}

func NewTagForm(saver TagSaver, n notify.Notifier, ownerID string, opts ...Option) *TagForm {
	f := &TagForm{saver: saver, ownerID: ownerID}
	set := newSettings(opts)
	f.c.init(n, set.onSaved)
	return f
}

func (f *TagForm) OpenCreate() {
	f.c.reset(ModeCreate, "", TagDraft{Wallets: membership.NewSet()})
}

// OpenEdit seeds the form from a tag and the ids of the wallets carrying it.
func (f *TagForm) OpenEdit(t models.Tag, walletIDs membership.Set) {
	f.c.reset(ModeEdit, t.ID, TagDraft{Name: t.Name, Color: t.Color, Wallets: walletIDs.Clone()})
}

func (f *TagForm) Close()        { f.c.Close() }
func (f *TagForm) IsOpen() bool  { return f.c.IsOpen() }
func (f *TagForm) Mode() Mode    { return f.c.Mode() }
func (f *TagForm) ID() string    { return f.c.ID() }
func (f *TagForm) Busy() bool    { return f.c.Busy() }
func (f *TagForm) IsDirty() bool { return f.c.IsDirty() }

func (f *TagForm) SetName(name string) {
	f.c.edit(func(d *TagDraft) { d.Name = name })
}

func (f *TagForm) SetColor(color string) {
	f.c.edit(func(d *TagDraft) { d.Color = color })
}

func (f *TagForm) ToggleWallet(id string) bool {
	var on bool
	f.c.edit(func(d *TagDraft) { on = d.Wallets.Toggle(id) })
	return on
}

func (f *TagForm) SetWallets(ids ...string) {
	f.c.edit(func(d *TagDraft) { d.Wallets = membership.NewSet(ids...) })
}

// ToggleAll selects every visible wallet, or clears them when all are
// already selected.
func (f *TagForm) ToggleAll(visible []models.WalletWithGroups) {
	f.c.edit(func(d *TagDraft) { d.Wallets = listview.ToggleAll(visible, d.Wallets) })
}

// Selection reports the select-all checkbox state for visible.
func (f *TagForm) Selection(visible []models.WalletWithGroups) listview.SelectionState {
	return listview.Selection(visible, f.Draft().Wallets)
}

func (f *TagForm) Draft() TagDraft {
	_, d := f.c.snapshot()
	return d
}

func (f *TagForm) Baseline() TagDraft {
	b, _ := f.c.snapshot()
	return b
}

func (f *TagForm) CanSave() bool { return f.c.canSave(validateTag) }

func (f *TagForm) Validate() error { return validateTag(f.Draft()) }

func validateTag(d TagDraft) error {
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Msg: "tag name is required"}
	}
	p := models.CreateLabelParams{Name: d.Name, Color: d.Color}
	if err := p.Validate(); err != nil {
		return &ValidationError{Field: "tag", Msg: err.Error()}
	}
	return nil
}

// Submit creates or updates the tag and reconciles its wallets. After a
// create the form stays open in edit mode on the new tag.
func (f *TagForm) Submit(ctx context.Context) (string, error) {
	return f.c.submit(ctx, "tag", validateTag, f.persist)
}

func (f *TagForm) persist(ctx context.Context, mode Mode, id string, base, d TagDraft) (string, error) {
	if mode == ModeCreate {
		t, err := f.saver.CreateTag(ctx, f.ownerID, models.CreateLabelParams{Name: d.Name, Color: d.Color}, d.Wallets.Sorted())
		if err != nil {
			return "", err
		}
		return t.ID, nil
	}

	if d.Name != base.Name || d.Color != base.Color {
		params := models.UpdateLabelParams{}
		if d.Name != base.Name {
			params.Name = &d.Name
		}
		if d.Color != base.Color {
			params.Color = &d.Color
		}
		if _, err := f.saver.UpdateTag(ctx, f.ownerID, id, params); err != nil {
			return "", err
		}
	}
	if !d.Wallets.Equal(base.Wallets) {
		if _, err := f.saver.ReconcileTagWallets(ctx, f.ownerID, id, d.Wallets.Sorted()); err != nil {
			return "", err
		}
	}
	return id, nil
}
