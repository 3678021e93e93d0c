package cli

import (
	"context"
	"strings"

	"golang.org/x/xerrors"

	"sorta/internal/models"
	"sorta/internal/repository"
)

// Commands accept a record id or, for convenience, a name (groups, tags) or
// an address (wallets). Names are matched ignoring case and must be unique.

func (a *App) resolveGroup(ctx context.Context, owner, ref string) (*models.Group, error) {
	groups, err := a.Store.ListGroups(ctx, owner)
	if err != nil {
		return nil, err
	}
	var match *models.Group
	for i := range groups {
		g := &groups[i]
		if g.ID == ref {
			return g, nil
		}
		if strings.EqualFold(g.Name, ref) {
			if match != nil {
				return nil, xerrors.Errorf("group name %q is ambiguous, use the id", ref)
			}
			match = g
		}
	}
	if match == nil {
		return nil, xerrors.Errorf("group %s: %w", ref, repository.ErrNotFound)
	}
	return match, nil
}

func (a *App) resolveGroups(ctx context.Context, owner string, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		g, err := a.resolveGroup(ctx, owner, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, g.ID)
	}
	return ids, nil
}

func (a *App) resolveTag(ctx context.Context, owner, ref string) (*models.Tag, error) {
	tags, err := a.Store.ListTags(ctx, owner)
	if err != nil {
		return nil, err
	}
	var match *models.Tag
	for i := range tags {
		t := &tags[i]
		if t.ID == ref {
			return t, nil
		}
		if strings.EqualFold(t.Name, ref) {
			if match != nil {
				return nil, xerrors.Errorf("tag name %q is ambiguous, use the id", ref)
			}
			match = t
		}
	}
	if match == nil {
		return nil, xerrors.Errorf("tag %s: %w", ref, repository.ErrNotFound)
	}
	return match, nil
}

func (a *App) resolveTags(ctx context.Context, owner string, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		t, err := a.resolveTag(ctx, owner, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// resolveWallet finds a wallet by id or address.
func (a *App) resolveWallet(ctx context.Context, owner, ref string, all []models.WalletWithGroups) (*models.WalletWithGroups, error) {
	if all == nil {
		var err error
		if all, err = a.Store.ListWalletsWithGroups(ctx, owner); err != nil {
			return nil, err
		}
	}
	var match *models.WalletWithGroups
	for i := range all {
		w := &all[i]
		if w.ID == ref {
			return w, nil
		}
		if strings.EqualFold(w.Address, ref) {
			if match != nil {
				return nil, xerrors.Errorf("address %s is tracked more than once, use the id", ref)
			}
			match = w
		}
	}
	if match == nil {
		return nil, xerrors.Errorf("wallet %s: %w", ref, repository.ErrNotFound)
	}
	return match, nil
}

func (a *App) resolveWallets(ctx context.Context, owner string, refs []string, all []models.WalletWithGroups) ([]string, error) {
	if all == nil && len(refs) > 0 {
		var err error
		if all, err = a.Store.ListWalletsWithGroups(ctx, owner); err != nil {
			return nil, err
		}
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		w, err := a.resolveWallet(ctx, owner, ref, all)
		if err != nil {
			return nil, err
		}
		ids = append(ids, w.ID)
	}
	return ids, nil
}
