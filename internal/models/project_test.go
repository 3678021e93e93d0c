package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProjectStatus(t *testing.T) {
	tests := []struct {
		in   string
		want ProjectStatus
	}{
		{"pending", StatusPending},
		{"Minted", StatusMinted},
		{"will-pass", StatusWillPass},
		{"Will Pass", StatusWillPass},
		{"DELAYED", StatusDelayed},
	}
	for _, tt := range tests {
		got, err := ParseProjectStatus(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseProjectStatus("sold")
	assert.Error(t, err)
}

func TestParseWhitelistType(t *testing.T) {
	wt, err := ParseWhitelistType("fcfs")
	require.NoError(t, err)
	assert.Equal(t, WhitelistFCFS, wt)

	_, err = ParseWhitelistType("raffle")
	assert.Error(t, err)
}

func TestProject_Validate(t *testing.T) {
	neg := decimal.NewFromInt(-1)
	supply := -5
	base := func() Project {
		return Project{Name: "Pudgy", MintAt: time.Now(), WhitelistType: WhitelistGTD}
	}

	p := base()
	assert.NoError(t, p.Validate())

	p = base()
	p.Name = "  "
	assert.EqualError(t, p.Validate(), "project name is required")

	p = base()
	p.MintAt = time.Time{}
	assert.EqualError(t, p.Validate(), "mint datetime is required")

	p = base()
	p.MintPrice = &neg
	assert.EqualError(t, p.Validate(), "mint price must be non-negative")

	p = base()
	p.Supply = &supply
	assert.EqualError(t, p.Validate(), "supply must be non-negative")

	p = base()
	p.WhitelistType = "OG"
	assert.Error(t, p.Validate())
}
