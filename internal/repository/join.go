package repository

import (
	"context"

	"gorm.io/gorm"

	"sorta/internal/membership"
	"sorta/internal/models"
)

// joinTable is one side of a join model T, keyed by keyCol.
// It implements membership.Table and membership.Txer.
type joinTable[T any] struct {
	db        *gorm.DB
	keyCol    string
	memberCol string
	row       func(key, member string) T
}

func (j joinTable[T]) Members(ctx context.Context, key string) ([]string, error) {
	var ids []string
	err := j.db.WithContext(ctx).
		Model(new(T)).
		Where(j.keyCol+" = ?", key).
		Order(j.memberCol).
		Pluck(j.memberCol, &ids).Error
	return ids, err
}

func (j joinTable[T]) DeleteAll(ctx context.Context, key string) (int64, error) {
	res := j.db.WithContext(ctx).Where(j.keyCol+" = ?", key).Delete(new(T))
	return res.RowsAffected, res.Error
}

func (j joinTable[T]) Delete(ctx context.Context, key string, members []string) (int64, error) {
	res := j.db.WithContext(ctx).
		Where(j.keyCol+" = ? AND "+j.memberCol+" IN ?", key, members).
		Delete(new(T))
	return res.RowsAffected, res.Error
}

func (j joinTable[T]) Insert(ctx context.Context, key string, members []string) error {
	rows := make([]T, 0, len(members))
	for _, m := range members {
		rows = append(rows, j.row(key, m))
	}
	return j.db.WithContext(ctx).Create(&rows).Error
}

func (j joinTable[T]) InTx(ctx context.Context, fn func(membership.Table) error) error {
	return j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bound := j
		bound.db = tx
		return fn(bound)
	})
}

func (s *Store) walletGroups() joinTable[models.WalletGroupMember] {
	return joinTable[models.WalletGroupMember]{
		db: s.DB, keyCol: "wallet_id", memberCol: "group_id",
		row: func(wallet, group string) models.WalletGroupMember {
			return models.WalletGroupMember{WalletID: wallet, GroupID: group}
		},
	}
}

func (s *Store) groupWallets() joinTable[models.WalletGroupMember] {
	return joinTable[models.WalletGroupMember]{
		db: s.DB, keyCol: "group_id", memberCol: "wallet_id",
		row: func(group, wallet string) models.WalletGroupMember {
			return models.WalletGroupMember{WalletID: wallet, GroupID: group}
		},
	}
}

func (s *Store) walletTags() joinTable[models.WalletTagAssociation] {
	return joinTable[models.WalletTagAssociation]{
		db: s.DB, keyCol: "wallet_id", memberCol: "tag_id",
		row: func(wallet, tag string) models.WalletTagAssociation {
			return models.WalletTagAssociation{WalletID: wallet, TagID: tag}
		},
	}
}

func (s *Store) tagWallets() joinTable[models.WalletTagAssociation] {
	return joinTable[models.WalletTagAssociation]{
		db: s.DB, keyCol: "tag_id", memberCol: "wallet_id",
		row: func(tag, wallet string) models.WalletTagAssociation {
			return models.WalletTagAssociation{WalletID: wallet, TagID: tag}
		},
	}
}

// reconciler builds a membership.Reconciler over one side of a join table.
func reconciler[T any](s *Store, j joinTable[T], check membership.Check) *membership.Reconciler {
	opts := []membership.Option{
		membership.WithStrategy(s.opts.Strategy),
		membership.WithCheck(check),
	}
	if s.opts.Atomic {
		opts = append(opts, membership.WithTx(j))
	}
	return membership.New(j, opts...)
}
