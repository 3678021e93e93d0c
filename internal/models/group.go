package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Group is a named, colored set of wallets.
type Group struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Color     string    `gorm:"size:32" json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Group) TableName() string { return "wallet_groups" }

func (g *Group) BeforeCreate(*gorm.DB) error {
	g.ID = newID(g.ID)
	return nil
}

// WalletGroupMember links one wallet to one group. The pair is the key.
type WalletGroupMember struct {
	WalletID  string    `gorm:"primaryKey;size:36" json:"walletId"`
	GroupID   string    `gorm:"primaryKey;size:36;index" json:"groupId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (WalletGroupMember) TableName() string { return "wallet_group_members" }

// Tag is a lightweight label. Tags are managed from the tag side: a tag
// holds the set of wallets carrying it.
type Tag struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Color     string    `gorm:"size:32" json:"color,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Tag) TableName() string { return "wallet_tags" }

func (t *Tag) BeforeCreate(*gorm.DB) error {
	t.ID = newID(t.ID)
	return nil
}

// WalletTagAssociation links one wallet to one tag.
type WalletTagAssociation struct {
	WalletID  string    `gorm:"primaryKey;size:36" json:"walletId"`
	TagID     string    `gorm:"primaryKey;size:36;index" json:"tagId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (WalletTagAssociation) TableName() string { return "wallet_tag_associations" }

// CreateLabelParams creates a group or a tag.
type CreateLabelParams struct {
	Name  string
	Color string
}

func (p *CreateLabelParams) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.New("name is required")
	}
	return validateLabel(&p.Name, &p.Color)
}

// UpdateLabelParams updates a group or a tag. Nil fields are left unchanged.
type UpdateLabelParams struct {
	Name  *string
	Color *string
}

func (p *UpdateLabelParams) Validate() error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return errors.New("name cannot be empty")
		}
		p.Name = &name
	}
	return validateLabel(p.Name, p.Color)
}

func validateLabel(name, color *string) error {
	if name != nil && len(*name) > 128 {
		return errors.New("name must be 128 characters or less")
	}
	if color != nil && len(*color) > 32 {
		return errors.New("color must be 32 characters or less")
	}
	return nil
}
