package repository

import (
	"context"
	"fmt"

	"sorta/internal/membership"
	"sorta/internal/models"
)

// ListTags returns the owner's tags ordered by name.
func (s *Store) ListTags(ctx context.Context, ownerID string) ([]models.Tag, error) {
	var tags []models.Tag
	err := s.DB.WithContext(ctx).Where("user_id = ?", ownerID).Order("name").Find(&tags).Error
	if err != nil {
		log.Errorf("ListTags: failed to query tags: %v", err)
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

func (s *Store) GetTag(ctx context.Context, ownerID, id string) (*models.Tag, error) {
	var t models.Tag
	if err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&t).Error; err != nil {
		return nil, notFound(err, "tag", id)
	}
	return &t, nil
}

// CreateTag stores a tag and assigns its initial wallets.
func (s *Store) CreateTag(ctx context.Context, ownerID string, params models.CreateLabelParams, walletIDs []string) (*models.Tag, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	t := &models.Tag{UserID: ownerID, Name: params.Name, Color: params.Color}
	err := s.write(ctx, func(st *Store) error {
		if err := st.requireMembers(ctx, &models.Wallet{}, "wallet", ownerID, membership.NewSet(walletIDs...)); err != nil {
			return err
		}
		if err := st.DB.Create(t).Error; err != nil {
			return fmt.Errorf("failed to create tag: %w", err)
		}
		if len(walletIDs) == 0 {
			return nil
		}
		_, err := st.ReconcileTagWallets(ctx, ownerID, t.ID, walletIDs)
		return err
	})
	if err != nil {
		log.Errorf("CreateTag: %v", err)
		return nil, err
	}

	log.Infof("CreateTag: created tag %s (%s) with %d wallets", t.ID, t.Name, len(walletIDs))
	return t, nil
}

func (s *Store) UpdateTag(ctx context.Context, ownerID, id string, params models.UpdateLabelParams) (*models.Tag, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := updateLabel(ctx, s.DB, &models.Tag{}, "tag", ownerID, id, params); err != nil {
		log.Errorf("UpdateTag: %v", err)
		return nil, err
	}
	return s.GetTag(ctx, ownerID, id)
}

// DeleteTag removes every association of the tag, then the tag.
func (s *Store) DeleteTag(ctx context.Context, ownerID, id string) error {
	log.Infof("DeleteTag: deleting tag %s", id)

	err := s.write(ctx, func(st *Store) error {
		if err := requireOwned(ctx, st.DB, &models.Tag{}, "tag", ownerID, id); err != nil {
			return err
		}
		if _, err := st.tagWallets().DeleteAll(ctx, id); err != nil {
			return &CascadeError{Entity: "tag", ID: id, Err: err}
		}
		if err := st.DB.Where("id = ?", id).Delete(&models.Tag{}).Error; err != nil {
			return fmt.Errorf("failed to delete tag: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Errorf("DeleteTag: %v", err)
		return err
	}
	return nil
}

// ReconcileTagWallets makes the tag's wallets exactly walletIDs.
func (s *Store) ReconcileTagWallets(ctx context.Context, ownerID, tagID string, walletIDs []string) (membership.Result, error) {
	check := s.ownedCheck(ownerID, &models.Tag{}, "tag", &models.Wallet{}, "wallet")
	return reconciler(s, s.tagWallets(), check).Reconcile(ctx, tagID, membership.NewSet(walletIDs...))
}

// TagWalletIDs reads the persisted wallet set of a tag.
func (s *Store) TagWalletIDs(ctx context.Context, tagID string) (membership.Set, error) {
	ids, err := s.tagWallets().Members(ctx, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag wallets: %w", err)
	}
	return membership.NewSet(ids...), nil
}

func (s *Store) TagMemberCounts(ctx context.Context, ownerID string) (map[string]int, error) {
	return memberCounts(ctx, s, models.Tag{}.TableName(), models.WalletTagAssociation{}.TableName(), "tag_id", ownerID)
}

func (s *Store) CountTags(ctx context.Context, ownerID string) (int64, error) {
	return count(ctx, s.DB, &models.Tag{}, ownerID)
}
