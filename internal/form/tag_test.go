package form

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sorta/internal/listview"
	"sorta/internal/membership"
	"sorta/internal/models"
)

func visible(ids ...string) []models.WalletWithGroups {
	out := make([]models.WalletWithGroups, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.WalletWithGroups{Wallet: models.Wallet{ID: id}})
	}
	return out
}

func TestTagForm_NameRequired(t *testing.T) {
	saver := &fakeTags{}
	f := NewTagForm(saver, nil, "alice")
	f.OpenCreate()

	f.ToggleWallet("w1")
	assert.True(t, f.IsDirty())
	assert.False(t, f.CanSave())

	f.SetName("  ")
	_, err := f.Submit(context.Background())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.Empty(t, saver.calls)

	f.SetName("Airdrop")
	assert.True(t, f.CanSave())
}

func TestTagForm_CreateThenEdit(t *testing.T) {
	saver := &fakeTags{}
	n := &recorder{}
	f := NewTagForm(saver, n, "alice")
	f.OpenCreate()
	f.SetName("Airdrop")
	f.SetWallets("w2", "w1")

	id, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "t1", id)
	assert.Equal(t, ModeEdit, f.Mode())
	assert.Equal(t, []string{"w1", "w2"}, saver.calls[0].ids)
	assert.Equal(t, []string{"Tag created successfully"}, n.success)

	f.ToggleWallet("w1")
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, saver.calls, 2)
	assert.Equal(t, "reconcile", saver.calls[1].op)
	assert.Equal(t, "t1", saver.calls[1].id)
	assert.Equal(t, []string{"w2"}, saver.calls[1].ids)
}

func TestTagForm_UnopenedIgnoresEdits(t *testing.T) {
	f := NewTagForm(&fakeTags{}, nil, "alice")

	require.NotPanics(t, func() { assert.False(t, f.ToggleWallet("w1")) })
	assert.False(t, f.IsDirty())
}

func TestTagForm_BaselineIsTrimmed(t *testing.T) {
	f := NewTagForm(&fakeTags{}, nil, "alice")
	f.OpenCreate()
	f.SetName(" Airdrop ")

	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Airdrop", f.Baseline().Name)
	assert.Equal(t, "Airdrop", f.Draft().Name)
	assert.False(t, f.IsDirty())
}

func TestTagForm_RenameOnly(t *testing.T) {
	saver := &fakeTags{}
	f := NewTagForm(saver, nil, "alice")
	f.OpenEdit(models.Tag{ID: "t9", Name: "Old"}, membership.NewSet("w1"))

	f.SetName("New")
	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, saver.calls, 1)
	assert.Equal(t, "update", saver.calls[0].op)
}

func TestTagForm_ToggleAll(t *testing.T) {
	f := NewTagForm(&fakeTags{}, nil, "alice")
	f.OpenEdit(models.Tag{ID: "t1", Name: "x"}, membership.NewSet("hidden"))

	rows := visible("a", "b")
	assert.Equal(t, listview.SelectedSome, f.Selection(rows))

	f.ToggleAll(rows)
	assert.Equal(t, listview.SelectedAll, f.Selection(rows))
	assert.True(t, f.Draft().Wallets.Equal(membership.NewSet("a", "b", "hidden")))

	f.ToggleAll(rows)
	assert.True(t, f.Draft().Wallets.Equal(membership.NewSet("hidden")))
	assert.False(t, f.IsDirty())
}
