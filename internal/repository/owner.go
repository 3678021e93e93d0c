package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sorta/internal/membership"
)

type ownerRow struct {
	ID     string
	UserID string
}

// requireOwned checks that the row id of model exists and belongs to ownerID.
func requireOwned(ctx context.Context, db *gorm.DB, model any, what, ownerID, id string) error {
	var n int64
	err := db.WithContext(ctx).Model(model).
		Where("id = ? AND user_id = ?", id, ownerID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}

// requireMembers checks that every id exists in model. With EnforceOwner each
// one must also belong to ownerID.
func (s *Store) requireMembers(ctx context.Context, model any, what, ownerID string, ids membership.Set) error {
	if ids.Len() == 0 {
		return nil
	}

	var rows []ownerRow
	err := s.DB.WithContext(ctx).Model(model).
		Select("id, user_id").
		Where("id IN ?", ids.Sorted()).
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to look up %ss: %w", what, err)
	}

	owners := make(map[string]string, len(rows))
	for _, r := range rows {
		owners[r.ID] = r.UserID
	}
	for _, id := range ids.Sorted() {
		owner, ok := owners[id]
		if !ok {
			return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
		}
		if s.opts.EnforceOwner && owner != ownerID {
			return fmt.Errorf("%s %s: %w", what, id, ErrOwnerMismatch)
		}
	}
	return nil
}

// ownedCheck validates a reconcile of an owned entity against members of
// memberModel.
func (s *Store) ownedCheck(ownerID string, model any, what string, memberModel any, memberWhat string) membership.Check {
	return func(ctx context.Context, key string, desired membership.Set) error {
		if err := requireOwned(ctx, s.DB, model, what, ownerID, key); err != nil {
			return err
		}
		return s.requireMembers(ctx, memberModel, memberWhat, ownerID, desired)
	}
}
