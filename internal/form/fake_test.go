package form

import (
	"context"
	"fmt"
	"sync"

	"sorta/internal/membership"
	"sorta/internal/models"
)

type recorder struct {
	mu       sync.Mutex
	success  []string
	failures []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success = append(r.success, msg)
}

func (r *recorder) Error(msg string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	r.failures = append(r.failures, msg)
}

type walletCall struct {
	op     string
	id     string
	fields models.WalletFields
	ids    []string
	tags   []string
}

type fakeWallets struct {
	mu    sync.Mutex
	calls []walletCall
	err   error
	// block, when set, is waited on before every call returns.
	block chan struct{}
	next  int
}

func (f *fakeWallets) record(c walletCall) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
	return f.err
}

func (f *fakeWallets) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.op)
	}
	return out
}

func (f *fakeWallets) CreateWalletWithTags(_ context.Context, _ string, fields models.WalletFields, groupIDs, tagIDs []string) (*models.Wallet, error) {
	if err := f.record(walletCall{op: "create", fields: fields, ids: groupIDs, tags: tagIDs}); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.next++
	id := fmt.Sprintf("w%d", f.next)
	f.mu.Unlock()
	return &models.Wallet{ID: id, Name: fields.Name, Chain: fields.Chain, Address: fields.Address}, nil
}

func (f *fakeWallets) UpdateWallet(_ context.Context, _ string, id string, fields models.WalletFields) (*models.Wallet, error) {
	if err := f.record(walletCall{op: "update", id: id, fields: fields}); err != nil {
		return nil, err
	}
	return &models.Wallet{ID: id}, nil
}

func (f *fakeWallets) ReconcileWalletGroups(_ context.Context, _ string, id string, groupIDs []string) (membership.Result, error) {
	if err := f.record(walletCall{op: "reconcile", id: id, ids: groupIDs}); err != nil {
		return membership.Result{}, err
	}
	return membership.Result{Inserted: len(groupIDs)}, nil
}

func (f *fakeWallets) ReconcileWalletTags(_ context.Context, _ string, id string, tagIDs []string) (membership.Result, error) {
	if err := f.record(walletCall{op: "reconcile-tags", id: id, tags: tagIDs}); err != nil {
		return membership.Result{}, err
	}
	return membership.Result{Inserted: len(tagIDs)}, nil
}

type fakeTags struct {
	calls []walletCall
	err   error
}

func (f *fakeTags) CreateTag(_ context.Context, _ string, params models.CreateLabelParams, walletIDs []string) (*models.Tag, error) {
	f.calls = append(f.calls, walletCall{op: "create", ids: walletIDs})
	if f.err != nil {
		return nil, f.err
	}
	return &models.Tag{ID: "t1", Name: params.Name}, nil
}

func (f *fakeTags) UpdateTag(_ context.Context, _ string, id string, params models.UpdateLabelParams) (*models.Tag, error) {
	f.calls = append(f.calls, walletCall{op: "update", id: id})
	if f.err != nil {
		return nil, f.err
	}
	return &models.Tag{ID: id}, nil
}

func (f *fakeTags) ReconcileTagWallets(_ context.Context, _ string, id string, walletIDs []string) (membership.Result, error) {
	f.calls = append(f.calls, walletCall{op: "reconcile", id: id, ids: walletIDs})
	return membership.Result{}, f.err
}
