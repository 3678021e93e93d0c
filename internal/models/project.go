package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"sorta/internal/chain"
)

type WhitelistType string

const (
	WhitelistGTD  WhitelistType = "GTD"
	WhitelistFCFS WhitelistType = "FCFS"
)

type ProjectStatus string

const (
	StatusPending  ProjectStatus = "Pending"
	StatusMinted   ProjectStatus = "Minted"
	StatusWillPass ProjectStatus = "Will Pass"
	StatusDelayed  ProjectStatus = "Delayed"
)

// ParseWhitelistType accepts GTD or FCFS in any case.
func ParseWhitelistType(s string) (WhitelistType, error) {
	switch WhitelistType(strings.ToUpper(strings.TrimSpace(s))) {
	case WhitelistGTD:
		return WhitelistGTD, nil
	case WhitelistFCFS:
		return WhitelistFCFS, nil
	}
	return "", fmt.Errorf("whitelist type must be GTD or FCFS, got %q", s)
}

// ParseProjectStatus matches a status name ignoring case, spaces and dashes.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	norm := func(v string) string {
		v = strings.ToLower(v)
		return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(v)
	}
	for _, st := range []ProjectStatus{StatusPending, StatusMinted, StatusWillPass, StatusDelayed} {
		if norm(string(st)) == norm(s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

// Project is an NFT project the user holds a whitelist spot for.
type Project struct {
	ID            string           `gorm:"primaryKey;size:36" json:"id"`
	UserID        string           `gorm:"size:36;not null;index" json:"userId"`
	Name          string           `gorm:"size:128;not null" json:"projectName"`
	Chain         chain.Chain      `gorm:"size:16;not null" json:"chain"`
	XAccount      string           `gorm:"size:64" json:"xAccount,omitempty"`
	MintAt        time.Time        `gorm:"not null;index" json:"mintDatetime"`
	MintPrice     *decimal.Decimal `gorm:"type:decimal(20,8)" json:"mintPrice,omitempty"`
	Supply        *int             `json:"supply,omitempty"`
	Launchpad     string           `gorm:"size:128" json:"launchpad,omitempty"`
	WhitelistType WhitelistType    `gorm:"size:8;not null" json:"whitelistType"`
	Notes         string           `gorm:"type:text" json:"notes,omitempty"`
	Status        ProjectStatus    `gorm:"size:16;not null" json:"status"`
	CreatedAt     time.Time        `json:"createdAt"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(*gorm.DB) error {
	p.ID = newID(p.ID)
	if p.Status == "" {
		p.Status = StatusPending
	}
	return nil
}

// Validate checks the required project fields.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("project name is required")
	}
	if p.MintAt.IsZero() {
		return fmt.Errorf("mint datetime is required")
	}
	if p.MintPrice != nil && p.MintPrice.IsNegative() {
		return fmt.Errorf("mint price must be non-negative")
	}
	if p.Supply != nil && *p.Supply < 0 {
		return fmt.Errorf("supply must be non-negative")
	}
	if _, err := ParseWhitelistType(string(p.WhitelistType)); err != nil {
		return err
	}
	return nil
}
