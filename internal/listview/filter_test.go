package listview

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sorta/internal/chain"
	"sorta/internal/models"
)

func wallet(id, name, addr string, groups ...string) models.WalletWithGroups {
	w := models.WalletWithGroups{Wallet: models.Wallet{ID: id, Name: name, Address: addr, Chain: chain.ETH}}
	for _, g := range groups {
		w.Groups = append(w.Groups, models.Group{ID: g, Name: g})
	}
	return w
}

func ids(ws []models.WalletWithGroups) []string {
	out := []string{}
	for _, w := range ws {
		out = append(out, w.ID)
	}
	return out
}

func TestFilterWallets_Search(t *testing.T) {
	items := []models.WalletWithGroups{
		wallet("1", "Alice Wallet", "0xAB12"),
		wallet("2", "Bob", "0xCD34"),
	}
	assert.Equal(t, []string{"1"}, ids(FilterWallets(items, Query{Search: "ab"})))
	assert.Equal(t, []string{"1"}, ids(FilterWallets(items, Query{Search: "e w"})), "spaces are matched as typed")
	assert.Empty(t, FilterWallets(items, Query{Search: " ab"}))

	byName := []models.WalletWithGroups{
		wallet("n", "Cold Storage", "0x0000"),
		wallet("x", "Hot", "0x1111"),
	}
	assert.Equal(t, []string{"n"}, ids(FilterWallets(byName, Query{Search: "STORAGE"})), "name path")

	byAddress := []models.WalletWithGroups{
		wallet("a", "Hot", "0xFEED99"),
		wallet("y", "Other", "0x2222"),
	}
	assert.Equal(t, []string{"a"}, ids(FilterWallets(byAddress, Query{Search: "feed"})), "address path")

	unnamed := []models.WalletWithGroups{wallet("u", "", "0xBEEF")}
	assert.Equal(t, []string{"u"}, ids(FilterWallets(unnamed, Query{Search: "beef"})), "missing name still matches address")
	assert.Empty(t, FilterWallets(unnamed, Query{Search: "zzz"}))
}

func TestFilterWallets_GroupAndOrder(t *testing.T) {
	items := []models.WalletWithGroups{
		wallet("3", "c", "0x3", "whales"),
		wallet("2", "b", "0x2"),
		wallet("1", "a", "0x1", "whales", "og"),
	}

	assert.Equal(t, []string{"3", "2", "1"}, ids(FilterWallets(items, Query{})), "no filter keeps input order")
	assert.Equal(t, []string{"3", "1"}, ids(FilterWallets(items, Query{GroupID: "whales"})))
	assert.Equal(t, []string{"1"}, ids(FilterWallets(items, Query{GroupID: "og", Search: "A"})))
	assert.Empty(t, FilterWallets(items, Query{GroupID: "whale"}), "group match is exact")
}

func TestFilterWallets_Tag(t *testing.T) {
	w := wallet("1", "a", "0x1")
	w.Tags = []models.Tag{{ID: "t1"}}
	items := []models.WalletWithGroups{w, wallet("2", "b", "0x2")}

	assert.Equal(t, []string{"1"}, ids(FilterWallets(items, Query{TagID: "t1"})))
}

func TestFilterTags(t *testing.T) {
	tags := []models.Tag{{ID: "1", Name: "Minters"}, {ID: "2", Name: "OG"}}
	got := FilterTags(tags, "mint")
	assert.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.Len(t, FilterTags(tags, ""), 2)
}

func TestEmpty(t *testing.T) {
	assert.Equal(t, NotEmpty, Empty(2, Query{Search: "x"}))
	assert.Equal(t, NoData, Empty(0, Query{}))
	assert.Equal(t, NoResults, Empty(0, Query{Search: "  "}), "spaces are a search")
	assert.Equal(t, NoResults, Empty(0, Query{Search: "x"}))
	assert.Equal(t, NoResults, Empty(0, Query{GroupID: "g"}))

	assert.Equal(t, "No wallets yet", NoData.Message("wallets"))
	assert.Equal(t, "No wallets found. Try adjusting your search or filters", NoResults.Message("wallets"))
}
