package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sorta/internal/membership"
	"sorta/internal/models"
)

// CreateWallet stores a new wallet and assigns its initial groups.
func (s *Store) CreateWallet(ctx context.Context, ownerID string, fields models.WalletFields, groupIDs []string) (*models.Wallet, error) {
	return s.CreateWalletWithTags(ctx, ownerID, fields, groupIDs, nil)
}

// CreateWalletWithTags stores a new wallet with its initial groups and tags.
// Nothing is written if any group or tag is rejected.
func (s *Store) CreateWalletWithTags(ctx context.Context, ownerID string, fields models.WalletFields, groupIDs, tagIDs []string) (*models.Wallet, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	log.Infof("CreateWallet: creating %s wallet for %s with %d groups and %d tags", fields.Chain, ownerID, len(groupIDs), len(tagIDs))

	w := &models.Wallet{
		UserID:  ownerID,
		Name:    fields.Name,
		Chain:   fields.Chain,
		Address: fields.Address,
	}
	err := s.write(ctx, func(st *Store) error {
		// Members are checked up front so a rejected set leaves no wallet
		// behind even when writes are not transactional.
		if err := st.requireMembers(ctx, &models.Group{}, "group", ownerID, membership.NewSet(groupIDs...)); err != nil {
			return err
		}
		if err := st.requireMembers(ctx, &models.Tag{}, "tag", ownerID, membership.NewSet(tagIDs...)); err != nil {
			return err
		}
		if err := st.DB.Create(w).Error; err != nil {
			return fmt.Errorf("failed to create wallet: %w", err)
		}
		if len(groupIDs) > 0 {
			if _, err := st.ReconcileWalletGroups(ctx, ownerID, w.ID, groupIDs); err != nil {
				return err
			}
		}
		if len(tagIDs) > 0 {
			if _, err := st.ReconcileWalletTags(ctx, ownerID, w.ID, tagIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Errorf("CreateWallet: %v", err)
		return nil, err
	}

	log.Infof("CreateWallet: created wallet %s", w.ID)
	return w, nil
}

func (s *Store) GetWallet(ctx context.Context, ownerID, id string) (*models.Wallet, error) {
	var w models.Wallet
	err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&w).Error
	if err != nil {
		return nil, notFound(err, "wallet", id)
	}
	return &w, nil
}

// UpdateWallet replaces the editable fields of a wallet.
func (s *Store) UpdateWallet(ctx context.Context, ownerID, id string, fields models.WalletFields) (*models.Wallet, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	res := s.DB.WithContext(ctx).Model(&models.Wallet{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Select("name", "chain", "address", "updated_at").
		Updates(map[string]any{
			"name":       fields.Name,
			"chain":      fields.Chain,
			"address":    fields.Address,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		log.Errorf("UpdateWallet: failed to update %s: %v", id, res.Error)
		return nil, fmt.Errorf("failed to update wallet: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("wallet %s: %w", id, ErrNotFound)
	}

	log.Infof("UpdateWallet: updated wallet %s", id)
	return s.GetWallet(ctx, ownerID, id)
}

// DeleteWallet removes the wallet's group and tag memberships, then the wallet.
func (s *Store) DeleteWallet(ctx context.Context, ownerID, id string) error {
	log.Infof("DeleteWallet: deleting wallet %s", id)

	err := s.write(ctx, func(st *Store) error {
		if err := requireOwned(ctx, st.DB, &models.Wallet{}, "wallet", ownerID, id); err != nil {
			return err
		}
		if _, err := st.walletGroups().DeleteAll(ctx, id); err != nil {
			return &CascadeError{Entity: "wallet", ID: id, Err: err}
		}
		if _, err := st.walletTags().DeleteAll(ctx, id); err != nil {
			return &CascadeError{Entity: "wallet", ID: id, Err: err}
		}
		if err := st.DB.Where("id = ?", id).Delete(&models.Wallet{}).Error; err != nil {
			return fmt.Errorf("failed to delete wallet: %w", err)
		}
		return nil
	})
	if err != nil {
		log.Errorf("DeleteWallet: %v", err)
		return err
	}

	log.Infof("DeleteWallet: deleted wallet %s", id)
	return nil
}

// ListWalletsWithGroups returns the owner's wallets, newest first, each with
// its groups and tags.
func (s *Store) ListWalletsWithGroups(ctx context.Context, ownerID string) ([]models.WalletWithGroups, error) {
	var wallets []models.Wallet
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&wallets).Error
	if err != nil {
		log.Errorf("ListWalletsWithGroups: failed to query wallets: %v", err)
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	out, err := s.attachLabels(ctx, wallets)
	if err != nil {
		return nil, err
	}
	log.Debugf("ListWalletsWithGroups: found %d wallets for %s", len(out), ownerID)
	return out, nil
}

// GetWalletWithGroups returns one wallet with its groups and tags.
func (s *Store) GetWalletWithGroups(ctx context.Context, ownerID, id string) (*models.WalletWithGroups, error) {
	w, err := s.GetWallet(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	out, err := s.attachLabels(ctx, []models.Wallet{*w})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// labelRow is one joined (wallet, label) row before it is folded back into
// WalletWithGroups.
type labelRow struct {
	WalletID string
	ID       string
	UserID   string
	Name     string
	Color    string
}

func (s *Store) joinedLabels(ctx context.Context, joinTbl, labelTbl, labelCol string, walletIDs []string) (map[string][]labelRow, error) {
	var rows []labelRow
	err := s.DB.WithContext(ctx).
		Table(joinTbl+" AS m").
		Select("m.wallet_id AS wallet_id, l.id AS id, l.user_id AS user_id, l.name AS name, l.color AS color").
		Joins("JOIN "+labelTbl+" AS l ON l.id = m."+labelCol).
		Where("m.wallet_id IN ?", walletIDs).
		Order("l.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	byWallet := make(map[string][]labelRow)
	for _, r := range rows {
		byWallet[r.WalletID] = append(byWallet[r.WalletID], r)
	}
	return byWallet, nil
}

// attachLabels flattens the join tables into each wallet's Groups and Tags.
func (s *Store) attachLabels(ctx context.Context, wallets []models.Wallet) ([]models.WalletWithGroups, error) {
	out := make([]models.WalletWithGroups, 0, len(wallets))
	if len(wallets) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(wallets))
	for _, w := range wallets {
		ids = append(ids, w.ID)
	}

	groups, err := s.joinedLabels(ctx, models.WalletGroupMember{}.TableName(), models.Group{}.TableName(), "group_id", ids)
	if err != nil {
		log.Errorf("attachLabels: failed to load groups: %v", err)
		return nil, fmt.Errorf("failed to load wallet groups: %w", err)
	}
	tags, err := s.joinedLabels(ctx, models.WalletTagAssociation{}.TableName(), models.Tag{}.TableName(), "tag_id", ids)
	if err != nil {
		log.Errorf("attachLabels: failed to load tags: %v", err)
		return nil, fmt.Errorf("failed to load wallet tags: %w", err)
	}

	for _, w := range wallets {
		item := models.WalletWithGroups{Wallet: w, Groups: []models.Group{}, Tags: []models.Tag{}}
		for _, r := range groups[w.ID] {
			item.Groups = append(item.Groups, models.Group{ID: r.ID, UserID: r.UserID, Name: r.Name, Color: r.Color})
		}
		for _, r := range tags[w.ID] {
			item.Tags = append(item.Tags, models.Tag{ID: r.ID, UserID: r.UserID, Name: r.Name, Color: r.Color})
		}
		out = append(out, item)
	}
	return out, nil
}

// ReconcileWalletGroups makes the wallet's groups exactly groupIDs.
func (s *Store) ReconcileWalletGroups(ctx context.Context, ownerID, walletID string, groupIDs []string) (membership.Result, error) {
	check := s.ownedCheck(ownerID, &models.Wallet{}, "wallet", &models.Group{}, "group")
	return reconciler(s, s.walletGroups(), check).Reconcile(ctx, walletID, membership.NewSet(groupIDs...))
}

// ReconcileWalletTags makes the wallet's tags exactly tagIDs.
func (s *Store) ReconcileWalletTags(ctx context.Context, ownerID, walletID string, tagIDs []string) (membership.Result, error) {
	check := s.ownedCheck(ownerID, &models.Wallet{}, "wallet", &models.Tag{}, "tag")
	return reconciler(s, s.walletTags(), check).Reconcile(ctx, walletID, membership.NewSet(tagIDs...))
}

// WalletGroupIDs reads the persisted group set of a wallet.
func (s *Store) WalletGroupIDs(ctx context.Context, walletID string) (membership.Set, error) {
	ids, err := s.walletGroups().Members(ctx, walletID)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet groups: %w", err)
	}
	return membership.NewSet(ids...), nil
}

// AddWalletToGroup adds a single membership. Adding an existing one is a no-op.
func (s *Store) AddWalletToGroup(ctx context.Context, ownerID, walletID, groupID string) error {
	if err := requireOwned(ctx, s.DB, &models.Wallet{}, "wallet", ownerID, walletID); err != nil {
		return err
	}
	if err := s.requireMembers(ctx, &models.Group{}, "group", ownerID, membership.NewSet(groupID)); err != nil {
		return err
	}

	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.WalletGroupMember{WalletID: walletID, GroupID: groupID}).Error
	if err != nil {
		log.Errorf("AddWalletToGroup: %s -> %s: %v", walletID, groupID, err)
		return fmt.Errorf("failed to add wallet to group: %w", err)
	}
	return nil
}

// RemoveWalletFromGroup removes a single membership if present.
func (s *Store) RemoveWalletFromGroup(ctx context.Context, ownerID, walletID, groupID string) error {
	if err := requireOwned(ctx, s.DB, &models.Wallet{}, "wallet", ownerID, walletID); err != nil {
		return err
	}
	if _, err := s.walletGroups().Delete(ctx, walletID, []string{groupID}); err != nil {
		log.Errorf("RemoveWalletFromGroup: %s -> %s: %v", walletID, groupID, err)
		return fmt.Errorf("failed to remove wallet from group: %w", err)
	}
	return nil
}

// CountWallets returns the number of wallets the owner tracks.
func (s *Store) CountWallets(ctx context.Context, ownerID string) (int64, error) {
	return count(ctx, s.DB, &models.Wallet{}, ownerID)
}

func count(ctx context.Context, db *gorm.DB, model any, ownerID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(model).Where("user_id = ?", ownerID).Count(&n).Error
	return n, err
}
