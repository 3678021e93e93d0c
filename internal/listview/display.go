package listview

import (
	"fmt"
	"strings"

	"sorta/internal/membership"
	"sorta/internal/models"
)

// DisplayName returns the wallet's name, or "<CHAIN> Wallet <n>" where n is its
// position among wallets of the same chain in all.
func DisplayName(w models.Wallet, all []models.WalletWithGroups) string {
	if name := strings.TrimSpace(w.Name); name != "" {
		return name
	}
	idx := 0
	for _, o := range all {
		if o.Chain != w.Chain {
			continue
		}
		idx++
		if o.ID == w.ID {
			return fmt.Sprintf("%s Wallet %d", w.Chain, idx)
		}
	}
	return "Unnamed Wallet"
}

// TruncateAddress shortens addresses longer than 12 characters to first6...last4.
func TruncateAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// TagWithCount is a tag and the number of loaded wallets carrying it.
type TagWithCount struct {
	models.Tag
	MemberCount int
}

// CountTagMembers counts members from the loaded wallet list.
func CountTagMembers(tags []models.Tag, wallets []models.WalletWithGroups) []TagWithCount {
	counts := make(map[string]int, len(tags))
	for _, w := range wallets {
		for _, id := range w.TagIDs() {
			counts[id]++
		}
	}
	out := make([]TagWithCount, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagWithCount{Tag: t, MemberCount: counts[t.ID]})
	}
	return out
}

// WalletsWithTag returns the ids of the loaded wallets carrying tagID.
func WalletsWithTag(wallets []models.WalletWithGroups, tagID string) membership.Set {
	s := membership.NewSet()
	for _, w := range wallets {
		if hasTag(w, tagID) {
			s.Add(w.ID)
		}
	}
	return s
}

// Partition splits visible wallets into selected ones first, then the rest,
// keeping the order within each part.
func Partition(visible []models.WalletWithGroups, selected membership.Set) (in, out []models.WalletWithGroups) {
	for _, w := range visible {
		if selected.Has(w.ID) {
			in = append(in, w)
		} else {
			out = append(out, w)
		}
	}
	return in, out
}

// SelectionState of the select-all box over the visible wallets.
type SelectionState int

const (
	SelectedNone SelectionState = iota
	SelectedSome
	SelectedAll
)

// Selection reports how much of visible is in selected. SelectedSome also
// covers selections made outside the visible rows.
func Selection(visible []models.WalletWithGroups, selected membership.Set) SelectionState {
	if len(visible) > 0 {
		all := true
		for _, w := range visible {
			if !selected.Has(w.ID) {
				all = false
				break
			}
		}
		if all {
			return SelectedAll
		}
	}
	if selected.Len() > 0 {
		return SelectedSome
	}
	return SelectedNone
}

// ToggleAll removes every visible wallet from selected when all of them are
// selected, otherwise adds all of them. Hidden selections are kept.
func ToggleAll(visible []models.WalletWithGroups, selected membership.Set) membership.Set {
	next := selected.Clone()
	if Selection(visible, selected) == SelectedAll {
		for _, w := range visible {
			next.Remove(w.ID)
		}
		return next
	}
	for _, w := range visible {
		next.Add(w.ID)
	}
	return next
}
