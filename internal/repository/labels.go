package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"sorta/internal/models"
)

// updateLabel applies the non-nil fields of params to a group or tag row.
func updateLabel(ctx context.Context, db *gorm.DB, model any, what, ownerID, id string, params models.UpdateLabelParams) error {
	if err := requireOwned(ctx, db, model, what, ownerID, id); err != nil {
		return err
	}

	updates := map[string]any{}
	if params.Name != nil {
		updates["name"] = *params.Name
	}
	if params.Color != nil {
		updates["color"] = *params.Color
	}
	if len(updates) == 0 {
		return nil
	}

	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update %s: %w", what, err)
	}
	return nil
}
