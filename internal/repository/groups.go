package repository

import (
	"context"
	"fmt"

	"sorta/internal/membership"
	"sorta/internal/models"
)

// ListGroups returns the owner's groups ordered by name.
func (s *Store) ListGroups(ctx context.Context, ownerID string) ([]models.Group, error) {
	var groups []models.Group
	err := s.DB.WithContext(ctx).Where("user_id = ?", ownerID).Order("name").Find(&groups).Error
	if err != nil {
		log.Errorf("ListGroups: failed to query groups: %v", err)
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

func (s *Store) GetGroup(ctx context.Context, ownerID, id string) (*models.Group, error) {
	var g models.Group
	if err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&g).Error; err != nil {
		return nil, notFound(err, "group", id)
	}
	return &g, nil
}

func (s *Store) CreateGroup(ctx context.Context, ownerID string, params models.CreateLabelParams) (*models.Group, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	g := &models.Group{UserID: ownerID, Name: params.Name, Color: params.Color}
	if err := s.DB.WithContext(ctx).Create(g).Error; err != nil {
		log.Errorf("CreateGroup: failed to create %q: %v", params.Name, err)
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	log.Infof("CreateGroup: created group %s (%s)", g.ID, g.Name)
	return g, nil
}

func (s *Store) UpdateGroup(ctx context.Context, ownerID, id string, params models.UpdateLabelParams) (*models.Group, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := updateLabel(ctx, s.DB, &models.Group{}, "group", ownerID, id, params); err != nil {
		log.Errorf("UpdateGroup: %v", err)
		return nil, err
	}
	return s.GetGroup(ctx, ownerID, id)
}

// DeleteGroup removes every membership of the group, then the group.
func (s *Store) DeleteGroup(ctx context.Context, ownerID, id string) error {
	log.Infof("DeleteGroup: deleting group %s", id)

	err := s.write(ctx, func(st *Store) error {
		if err := requireOwned(ctx, st.DB, &models.Group{}, "group", ownerID, id); err != nil {
			return err
		}
		n, err := st.groupWallets().DeleteAll(ctx, id)
		if err != nil {
			return &CascadeError{Entity: "group", ID: id, Err: err}
		}
		log.Debugf("DeleteGroup: removed %d memberships of %s", n, id)
		if err := st.DB.Where("id = ?", id).Delete(&models.Group{}).Error; err != nil {
			return fmt.Errorf("failed to delete group: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Errorf("DeleteGroup: %v", err)
		return err
	}
	return nil
}

// ReconcileGroupWallets makes the group's wallets exactly walletIDs.
func (s *Store) ReconcileGroupWallets(ctx context.Context, ownerID, groupID string, walletIDs []string) (membership.Result, error) {
	check := s.ownedCheck(ownerID, &models.Group{}, "group", &models.Wallet{}, "wallet")
	return reconciler(s, s.groupWallets(), check).Reconcile(ctx, groupID, membership.NewSet(walletIDs...))
}

// GroupMemberCounts returns the number of wallets in each of the owner's groups.
func (s *Store) GroupMemberCounts(ctx context.Context, ownerID string) (map[string]int, error) {
	return memberCounts(ctx, s, models.Group{}.TableName(), models.WalletGroupMember{}.TableName(), "group_id", ownerID)
}

func (s *Store) CountGroups(ctx context.Context, ownerID string) (int64, error) {
	return count(ctx, s.DB, &models.Group{}, ownerID)
}

type memberCount struct {
	ID string
	N  int
}

func memberCounts(ctx context.Context, s *Store, labelTbl, joinTbl, labelCol, ownerID string) (map[string]int, error) {
	var rows []memberCount
	err := s.DB.WithContext(ctx).
		Table(labelTbl+" AS l").
		Select("l.id AS id, COUNT(m.wallet_id) AS n").
		Joins("LEFT JOIN "+joinTbl+" AS m ON m."+labelCol+" = l.id").
		Where("l.user_id = ?", ownerID).
		Group("l.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.ID] = r.N
	}
	return out, nil
}
