// Package listview derives what a wallet or tag list shows from the loaded
// records: filtering, empty states, display names and member counts.
package listview

import (
	"fmt"
	"strings"

	"sorta/internal/models"
)

// Query filters a wallet list. An empty Search matches everything and an
// empty GroupID or TagID means no filter. Search is used as typed, spaces
// included.
type Query struct {
	Search  string
	GroupID string
	TagID   string
}

// Active reports whether any filter is set.
func (q Query) Active() bool {
	return q.Search != "" || q.GroupID != "" || q.TagID != ""
}

func (q Query) matches(w models.WalletWithGroups) bool {
	if q.GroupID != "" && !hasGroup(w, q.GroupID) {
		return false
	}
	if q.TagID != "" && !hasTag(w, q.TagID) {
		return false
	}
	return matchesText(q.Search, w.Name, w.Address)
}

func hasGroup(w models.WalletWithGroups, id string) bool {
	for _, g := range w.Groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

func hasTag(w models.WalletWithGroups, id string) bool {
	for _, t := range w.Tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

// matchesText is a case-insensitive substring match against any field.
func matchesText(search string, fields ...string) bool {
	needle := strings.ToLower(search)
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// FilterWallets keeps the wallets matching q in their original order.
func FilterWallets(items []models.WalletWithGroups, q Query) []models.WalletWithGroups {
	out := make([]models.WalletWithGroups, 0, len(items))
	for _, w := range items {
		if q.matches(w) {
			out = append(out, w)
		}
	}
	return out
}

// FilterTags keeps the tags whose name contains search.
func FilterTags(tags []models.Tag, search string) []models.Tag {
	out := make([]models.Tag, 0, len(tags))
	for _, t := range tags {
		if matchesText(search, t.Name) {
			out = append(out, t)
		}
	}
	return out
}

type EmptyState int

const (
	NotEmpty EmptyState = iota
	// NoData means nothing is stored yet.
	NoData
	// NoResults means records exist but the filters hide all of them.
	NoResults
)

// Message is the line shown for an empty list.
func (e EmptyState) Message(noun string) string {
	switch e {
	case NoData:
		return fmt.Sprintf("No %s yet", noun)
	case NoResults:
		return fmt.Sprintf("No %s found. Try adjusting your search or filters", noun)
	}
	return ""
}

// Empty tells NoData apart from NoResults for a filtered list.
func Empty(filtered int, q Query) EmptyState {
	if filtered > 0 {
		return NotEmpty
	}
	if q.Active() {
		return NoResults
	}
	return NoData
}
