package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"sorta/internal/chain"
	"sorta/internal/form"
	"sorta/internal/listview"
	"sorta/internal/models"
	"sorta/internal/ui/tablewriter"
)

// WalletCmd manages tracked wallets and their group memberships.
var WalletCmd = &cli.Command{
	Name:  "wallet",
	Usage: "Manage tracked wallets",
	Subcommands: []*cli.Command{
		walletAdd,
		walletList,
		walletEdit,
		walletDelete,
	},
}

func (a *App) walletForm(owner string) (*form.WalletForm, error) {
	def, err := chain.Parse(a.Config.Wallets.DefaultChain)
	if err != nil {
		return nil, err
	}
	return form.NewWalletForm(a.Store, a.Notifier, owner,
		form.WithDefaultChain(def),
		form.WithStrictAddresses(a.Config.Wallets.StrictAddresses),
	), nil
}

var walletAdd = &cli.Command{
	Name:  "add",
	Usage: "Track a new wallet",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "address", Usage: "wallet address", Required: true},
		&cli.StringFlag{Name: "name", Usage: "display name"},
		&cli.StringFlag{Name: "chain", Usage: "BTC, ETH, SOL, HYPE or FIL (default from config)"},
		&cli.StringSliceFlag{Name: "group", Usage: "group id or name, repeatable"},
		&cli.StringSliceFlag{Name: "tag", Usage: "tag id or name, repeatable"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		f, err := a.walletForm(owner)
		if err != nil {
			return err
		}
		f.OpenCreate()
		defer f.Close()

		f.SetAddress(cctx.String("address"))
		f.SetName(cctx.String("name"))
		if cctx.IsSet("chain") {
			c, err := chain.Parse(cctx.String("chain"))
			if err != nil {
				return err
			}
			f.SetChain(c)
		}
		groupIDs, err := a.resolveGroups(ctx, owner, cctx.StringSlice("group"))
		if err != nil {
			return err
		}
		f.SetGroups(groupIDs...)
		tagIDs, err := a.resolveTags(ctx, owner, cctx.StringSlice("tag"))
		if err != nil {
			return err
		}
		f.SetTags(tagIDs...)

		id, err := f.Submit(ctx)
		if err != nil {
			return xerrors.Errorf("add wallet: %w", err)
		}
		a.printf("%s\n", id)
		return nil
	},
}

var walletList = &cli.Command{
	Name:  "list",
	Usage: "List wallets with their groups and tags",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "search", Usage: "match name or address"},
		&cli.StringFlag{Name: "group", Usage: "only wallets in this group"},
		&cli.StringFlag{Name: "tag", Usage: "only wallets with this tag"},
		&cli.BoolFlag{Name: "full", Usage: "do not truncate addresses"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}

		all, err := a.Store.ListWalletsWithGroups(ctx, owner)
		if err != nil {
			return xerrors.Errorf("list wallets: %w", err)
		}

		q := listview.Query{Search: cctx.String("search")}
		if ref := cctx.String("group"); ref != "" {
			g, err := a.resolveGroup(ctx, owner, ref)
			if err != nil {
				return err
			}
			q.GroupID = g.ID
		}
		if ref := cctx.String("tag"); ref != "" {
			t, err := a.resolveTag(ctx, owner, ref)
			if err != nil {
				return err
			}
			q.TagID = t.ID
		}
		items := listview.FilterWallets(all, q)

		tw := tablewriter.New(
			tablewriter.Col("ID"),
			tablewriter.Col("Name"),
			tablewriter.Col("Chain"),
			tablewriter.Col("Address"),
			tablewriter.Col("Groups"),
			tablewriter.Col("Tags"),
		).Empty(listview.Empty(len(items), q).Message("wallets"))

		for _, w := range items {
			addr := w.Address
			if !cctx.Bool("full") {
				addr = listview.TruncateAddress(addr)
			}
			tw.Write(map[string]interface{}{
				"ID":      w.ID,
				"Name":    listview.DisplayName(w.Wallet, all),
				"Chain":   w.Chain,
				"Address": addr,
				"Groups":  labelNames(w.Groups),
				"Tags":    tagNames(w.Tags),
			})
		}
		return tw.Flush(a.Out)
	},
}

func labelNames(groups []models.Group) string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

func tagNames(tags []models.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

var walletEdit = &cli.Command{
	Name:      "edit",
	Usage:     "Edit a wallet and its group memberships",
	ArgsUsage: "<wallet id or address>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "display name, empty to clear"},
		&cli.StringFlag{Name: "chain", Usage: "BTC, ETH, SOL, HYPE or FIL"},
		&cli.StringFlag{Name: "address", Usage: "wallet address"},
		&cli.StringSliceFlag{Name: "group", Usage: "replace the groups with these, repeatable"},
		&cli.BoolFlag{Name: "no-groups", Usage: "remove the wallet from every group"},
		&cli.StringSliceFlag{Name: "add-group", Usage: "add to a group, repeatable"},
		&cli.StringSliceFlag{Name: "remove-group", Usage: "remove from a group, repeatable"},
		&cli.StringSliceFlag{Name: "tag", Usage: "replace the tags with these, repeatable"},
		&cli.BoolFlag{Name: "no-tags", Usage: "remove every tag from the wallet"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		if !cctx.Args().Present() {
			return xerrors.New("must specify the wallet to edit")
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}

		w, err := a.resolveWallet(ctx, owner, cctx.Args().First(), nil)
		if err != nil {
			return err
		}
		f, err := a.walletForm(owner)
		if err != nil {
			return err
		}
		f.OpenEdit(*w)
		defer f.Close()

		if cctx.IsSet("name") {
			f.SetName(cctx.String("name"))
		}
		if cctx.IsSet("address") {
			f.SetAddress(cctx.String("address"))
		}
		if cctx.IsSet("chain") {
			c, err := chain.Parse(cctx.String("chain"))
			if err != nil {
				return err
			}
			f.SetChain(c)
		}
		if cctx.Bool("no-groups") {
			f.SetGroups()
		}
		if cctx.IsSet("group") {
			ids, err := a.resolveGroups(ctx, owner, cctx.StringSlice("group"))
			if err != nil {
				return err
			}
			f.SetGroups(ids...)
		}
		if err := toggleGroups(ctx, a, owner, f, cctx.StringSlice("add-group"), true); err != nil {
			return err
		}
		if err := toggleGroups(ctx, a, owner, f, cctx.StringSlice("remove-group"), false); err != nil {
			return err
		}

		if cctx.Bool("no-tags") {
			f.SetTags()
		}
		if cctx.IsSet("tag") {
			ids, err := a.resolveTags(ctx, owner, cctx.StringSlice("tag"))
			if err != nil {
				return err
			}
			f.SetTags(ids...)
		}

		if _, err := f.Submit(ctx); err != nil {
			if errors.Is(err, form.ErrNoChanges) {
				a.printf("no changes\n")
				return nil
			}
			return xerrors.Errorf("edit wallet: %w", err)
		}
		return nil
	},
}

// toggleGroups flips each group in refs that is not already in the wanted
// state.
func toggleGroups(ctx context.Context, a *App, owner string, f *form.WalletForm, refs []string, want bool) error {
	ids, err := a.resolveGroups(ctx, owner, refs)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if f.Draft().Groups.Has(id) != want {
			f.ToggleGroup(id)
		}
	}
	return nil
}

var walletDelete = &cli.Command{
	Name:      "del",
	Usage:     "Stop tracking a wallet",
	ArgsUsage: "<wallet id or address>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "force", Usage: "do not ask for confirmation"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		if !cctx.Args().Present() {
			return xerrors.New("must specify the wallet to delete")
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		all, err := a.Store.ListWalletsWithGroups(ctx, owner)
		if err != nil {
			return err
		}
		w, err := a.resolveWallet(ctx, owner, cctx.Args().First(), all)
		if err != nil {
			return err
		}

		if !a.confirm(cctx.Bool("force"), "Delete wallet %s (%s)? This cannot be undone.", listview.DisplayName(w.Wallet, all), w.Address) {
			return nil
		}
		if err := a.Store.DeleteWallet(ctx, owner, w.ID); err != nil {
			a.Notifier.Error("Failed to delete wallet", err)
			return xerrors.Errorf("delete wallet: %w", err)
		}
		a.Notifier.Success("Wallet deleted successfully")
		return nil
	},
}
