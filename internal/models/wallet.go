package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"sorta/internal/chain"
)

// Wallet is a tracked address owned by one user.
type Wallet struct {
	ID        string      `gorm:"primaryKey;size:36" json:"id"`
	UserID    string      `gorm:"size:36;not null;index" json:"userId"`
	Name      string      `gorm:"size:128" json:"name,omitempty"`
	Chain     chain.Chain `gorm:"size:16;not null" json:"chain"`
	Address   string      `gorm:"size:128;not null" json:"walletAddress"`
	CreatedAt time.Time   `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func (Wallet) TableName() string { return "wallets" }

func (w *Wallet) BeforeCreate(*gorm.DB) error {
	w.ID = newID(w.ID)
	return nil
}

// WalletFields are the user editable fields of a wallet.
type WalletFields struct {
	Name    string
	Chain   chain.Chain
	Address string
}

// Validate trims the fields and checks the required ones.
func (f *WalletFields) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.Address = strings.TrimSpace(f.Address)
	if f.Address == "" {
		return errors.New("wallet address is required")
	}
	if len(f.Address) > 128 {
		return errors.New("wallet address must be 128 characters or less")
	}
	if len(f.Name) > 128 {
		return errors.New("name must be 128 characters or less")
	}
	c, err := chain.Parse(string(f.Chain))
	if err != nil {
		return err
	}
	f.Chain = c
	return nil
}

// WalletWithGroups is a wallet with its group and tag memberships flattened
// out of the join tables.
type WalletWithGroups struct {
	Wallet
	Groups []Group `json:"groups"`
	Tags   []Tag   `json:"tags"`
}

func (w WalletWithGroups) GroupIDs() []string {
	ids := make([]string, 0, len(w.Groups))
	for _, g := range w.Groups {
		ids = append(ids, g.ID)
	}
	return ids
}

func (w WalletWithGroups) TagIDs() []string {
	ids := make([]string, 0, len(w.Tags))
	for _, t := range w.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
