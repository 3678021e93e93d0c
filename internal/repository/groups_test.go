package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sorta/internal/models"
)

func TestGroupsCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, DefaultOptions())

	mustGroup(t, s, alice, "Zeta")
	a := mustGroup(t, s, alice, "Alpha")
	mustGroup(t, s, bob, "Other")

	groups, err := s.ListGroups(ctx, alice)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Alpha", groups[0].Name)
	assert.Equal(t, "Zeta", groups[1].Name)

	name := " Whales "
	got, err := s.UpdateGroup(ctx, alice, a.ID, models.UpdateLabelParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Whales", got.Name)
	assert.Equal(t, "bg-blue-500", got.Color, "nil fields unchanged")

	_, err = s.UpdateGroup(ctx, bob, a.ID, models.UpdateLabelParams{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.CreateGroup(ctx, alice, models.CreateLabelParams{Name: ""})
	assert.EqualError(t, err, "name is required")
}

func TestDeleteGroup_Cascades(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, DefaultOptions())

	g := mustGroup(t, s, alice, "Whales")
	keep := mustGroup(t, s, alice, "Keep")
	for _, addr := range []string{"0x01", "0x02", "0x03"} {
		mustWallet(t, s, alice, "", addr, g.ID, keep.ID)
	}

	require.NoError(t, s.DeleteGroup(ctx, alice, g.ID))

	var n int64
	require.NoError(t, s.DB.Model(&models.WalletGroupMember{}).Where("group_id = ?", g.ID).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, s.DB.Model(&models.WalletGroupMember{}).Where("group_id = ?", keep.ID).Count(&n).Error)
	assert.EqualValues(t, 3, n)

	_, err := s.GetGroup(ctx, alice, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteGroup_NoMembers(t *testing.T) {
	s := newTestStore(t, DefaultOptions())
	g := mustGroup(t, s, alice, "Empty")

	assert.NoError(t, s.DeleteGroup(context.Background(), alice, g.ID))
}

func TestDeleteGroup_CascadeFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, DefaultOptions())
	g := mustGroup(t, s, alice, "G")
	mustWallet(t, s, alice, "", "0x01", g.ID)

	require.NoError(t, s.DB.Migrator().DropTable(&models.WalletGroupMember{}))

	err := s.DeleteGroup(ctx, alice, g.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCascade)

	_, err = s.GetGroup(ctx, alice, g.ID)
	assert.NoError(t, err, "group survives a failed cascade")
}

func TestReconcileGroupWallets(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, DefaultOptions())
	g := mustGroup(t, s, alice, "G")
	w1 := mustWallet(t, s, alice, "", "0x01", g.ID)
	w2 := mustWallet(t, s, alice, "", "0x02")
	w3 := mustWallet(t, s, alice, "", "0x03")

	_, err := s.ReconcileGroupWallets(ctx, alice, g.ID, []string{w2.ID, w3.ID})
	require.NoError(t, err)

	counts, err := s.GroupMemberCounts(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, counts[g.ID])

	ids, err := s.WalletGroupIDs(ctx, w1.ID)
	require.NoError(t, err)
	assert.Zero(t, ids.Len())
	ids, err = s.WalletGroupIDs(ctx, w2.ID)
	require.NoError(t, err)
	assert.True(t, ids.Has(g.ID))
}

func TestGroupMemberCounts_IncludesEmpty(t *testing.T) {
	s := newTestStore(t, DefaultOptions())
	g := mustGroup(t, s, alice, "Empty")

	counts, err := s.GroupMemberCounts(context.Background(), alice)
	require.NoError(t, err)
	v, ok := counts[g.ID]
	assert.True(t, ok)
	assert.Zero(t, v)
}
