package form

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sorta/internal/chain"
	"sorta/internal/models"
)

func loaded(groupIDs ...string) models.WalletWithGroups {
	w := models.WalletWithGroups{Wallet: models.Wallet{
		ID:      "w1",
		Name:    "Main",
		Chain:   chain.ETH,
		Address: "0xabc",
	}}
	for _, id := range groupIDs {
		w.Groups = append(w.Groups, models.Group{ID: id})
	}
	return w
}

func TestWalletForm_DirtyIsOrderIndependent(t *testing.T) {
	f := NewWalletForm(&fakeWallets{}, nil, "alice")

	tests := []struct {
		name  string
		draft []string
		dirty bool
	}{
		{name: "same set reordered", draft: []string{"B", "A"}, dirty: false},
		{name: "superset", draft: []string{"A", "B", "C"}, dirty: true},
		{name: "subset", draft: []string{"A"}, dirty: true},
		{name: "duplicates collapse", draft: []string{"A", "B", "A"}, dirty: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.OpenEdit(loaded("A", "B"))
			require.False(t, f.IsDirty())
			f.SetGroups(tt.draft...)
			assert.Equal(t, tt.dirty, f.IsDirty())
		})
	}
}

func TestWalletForm_FieldsMakeDirty(t *testing.T) {
	f := NewWalletForm(&fakeWallets{}, nil, "alice")
	f.OpenEdit(loaded("A"))

	f.SetName("Cold")
	assert.True(t, f.IsDirty())
	f.SetName("Main")
	assert.False(t, f.IsDirty())

	f.SetChain(chain.SOL)
	assert.True(t, f.IsDirty())
	f.SetChain(chain.ETH)

	assert.False(t, f.ToggleGroup("A"))
	assert.True(t, f.IsDirty())
	assert.True(t, f.ToggleGroup("A"))
	assert.False(t, f.IsDirty())
}

func TestWalletForm_CreateStartsClean(t *testing.T) {
	f := NewWalletForm(&fakeWallets{}, nil, "alice", WithDefaultChain(chain.SOL))
	f.OpenCreate()

	assert.Equal(t, ModeCreate, f.Mode())
	assert.False(t, f.IsDirty())
	assert.False(t, f.CanSave())
	assert.Equal(t, chain.SOL, f.Draft().Chain)
}

func TestWalletForm_CanSaveNeedsAddress(t *testing.T) {
	saver := &fakeWallets{}
	f := NewWalletForm(saver, nil, "alice")
	f.OpenCreate()

	f.SetName("Hot")
	assert.True(t, f.IsDirty())
	assert.False(t, f.CanSave())

	f.SetAddress("   ")
	assert.False(t, f.CanSave())

	var verr *ValidationError
	_, err := f.Submit(context.Background())
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "address", verr.Field)
	assert.Empty(t, saver.calls, "validation runs before any store call")

	f.SetAddress(" 0xabc ")
	assert.True(t, f.CanSave())
}

func TestWalletForm_StrictAddresses(t *testing.T) {
	f := NewWalletForm(&fakeWallets{}, nil, "alice", WithStrictAddresses(true))
	f.OpenCreate()
	f.SetAddress("0x123")
	assert.Error(t, f.Validate())

	f.SetAddress("0x52908400098527886E0F7030069857D2E4169EE7")
	assert.NoError(t, f.Validate())
}

func TestWalletForm_SubmitCreate(t *testing.T) {
	saver := &fakeWallets{}
	n := &recorder{}
	reloads := 0
	f := NewWalletForm(saver, n, "alice", WithOnSaved(func() { reloads++ }))

	f.OpenCreate()
	f.SetAddress("0xabc")
	f.SetGroups("g2", "g1")

	id, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "w1", id)
	require.Len(t, saver.calls, 1)
	assert.Equal(t, []string{"g1", "g2"}, saver.calls[0].ids)

	assert.Equal(t, 1, reloads)
	assert.Equal(t, []string{"Wallet created successfully"}, n.success)
	assert.False(t, f.IsDirty(), "baseline is reset to the saved draft")
	assert.Equal(t, ModeEdit, f.Mode())
	assert.Equal(t, "w1", f.ID())
}

func TestWalletForm_SubmitEditWritesOnlyWhatChanged(t *testing.T) {
	saver := &fakeWallets{}
	f := NewWalletForm(saver, nil, "alice")

	f.OpenEdit(loaded("A", "B"))
	f.SetGroups("A")
	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"reconcile"}, saver.ops())

	f.SetName("Renamed")
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"reconcile", "update"}, saver.ops())

	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestWalletForm_Tags(t *testing.T) {
	saver := &fakeWallets{}
	f := NewWalletForm(saver, nil, "alice")

	f.OpenCreate()
	f.SetAddress("0xabc")
	f.SetTags("t2", "t1")
	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.Len(t, saver.calls, 1)
	assert.Equal(t, []string{"t1", "t2"}, saver.calls[0].tags, "tags go out with the create")

	w := loaded("A")
	w.Tags = []models.Tag{{ID: "t1"}}
	f.OpenEdit(w)
	assert.False(t, f.ToggleTag("t1"))
	assert.True(t, f.IsDirty())
	assert.True(t, f.ToggleTag("t1"))
	assert.False(t, f.IsDirty())

	f.SetTags()
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"create", "reconcile-tags"}, saver.ops())
}

func TestWalletForm_InvalidEditWritesNothing(t *testing.T) {
	saver := &fakeWallets{}
	f := NewWalletForm(saver, nil, "alice")
	f.OpenEdit(loaded("A"))
	f.SetTags("t1")
	f.SetAddress("   ")

	var verr *ValidationError
	_, err := f.Submit(context.Background())
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, saver.calls)
}

func TestWalletForm_UnopenedIgnoresEdits(t *testing.T) {
	f := NewWalletForm(&fakeWallets{}, nil, "alice")

	require.NotPanics(t, func() {
		assert.False(t, f.ToggleGroup("g1"))
		assert.False(t, f.ToggleTag("t1"))
		f.SetName("Main")
	})
	assert.False(t, f.IsDirty())
	assert.False(t, f.CanSave())
}

func TestWalletForm_BaselineIsStoredValue(t *testing.T) {
	saver := &fakeWallets{}
	f := NewWalletForm(saver, nil, "alice")
	f.OpenCreate()
	f.SetName(" Main ")
	f.SetAddress(" 0xabc ")

	_, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Main", f.Baseline().Name)
	assert.Equal(t, "0xabc", f.Baseline().Address)
	assert.False(t, f.IsDirty())

	f.SetName("Main")
	assert.False(t, f.IsDirty(), "trimmed name matches what the store holds")
	_, err = f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNoChanges)
	assert.Equal(t, []string{"create"}, saver.ops())
}

func TestWalletForm_SubmitFailureKeepsDraft(t *testing.T) {
	saver := &fakeWallets{err: errors.New("store down")}
	n := &recorder{}
	reloads := 0
	f := NewWalletForm(saver, n, "alice", WithOnSaved(func() { reloads++ }))

	f.OpenEdit(loaded("A"))
	f.SetGroups("B")
	_, err := f.Submit(context.Background())
	require.Error(t, err)

	assert.True(t, f.IsDirty())
	assert.False(t, f.Busy())
	assert.Zero(t, reloads)
	assert.Equal(t, []string{"Failed to update wallet: store down"}, n.failures)
}

func TestWalletForm_DoubleSubmit(t *testing.T) {
	saver := &fakeWallets{block: make(chan struct{})}
	f := NewWalletForm(saver, nil, "alice")
	f.OpenEdit(loaded())
	f.SetGroups("A")

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, f.Busy, time.Second, time.Millisecond)
	assert.False(t, f.CanSave())
	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(saver.block)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"reconcile"}, saver.ops())
}

func TestWalletForm_CloseDuringSubmit(t *testing.T) {
	saver := &fakeWallets{block: make(chan struct{})}
	f := NewWalletForm(saver, nil, "alice")
	f.OpenEdit(loaded())
	f.SetGroups("A")

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	require.Eventually(t, f.Busy, time.Second, time.Millisecond)

	f.Close()
	close(saver.block)
	require.NoError(t, <-done)

	assert.False(t, f.IsOpen())
	assert.False(t, f.Busy())
	assert.Empty(t, f.Baseline().Groups, "a closed form is not updated by a late result")

	_, err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
