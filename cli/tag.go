package cli

import (
	"errors"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"sorta/internal/form"
	"sorta/internal/listview"
	"sorta/internal/ui/tablewriter"
)

// TagCmd manages tags. Tags are edited from the tag side: a tag holds the
// set of wallets carrying it.
var TagCmd = &cli.Command{
	Name:  "tag",
	Usage: "Manage wallet tags",
	Subcommands: []*cli.Command{
		tagAdd,
		tagList,
		tagEdit,
		tagDelete,
		tagMembers,
	},
}

var tagAdd = &cli.Command{
	Name:  "add",
	Usage: "Create a tag, optionally with wallets",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "color", Usage: "color token"},
		&cli.StringSliceFlag{Name: "wallet", Usage: "wallet id or address, repeatable"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		ids, err := a.resolveWallets(ctx, owner, cctx.StringSlice("wallet"), nil)
		if err != nil {
			return err
		}

		f := form.NewTagForm(a.Store, a.Notifier, owner)
		f.OpenCreate()
		defer f.Close()
		f.SetName(cctx.String("name"))
		f.SetColor(cctx.String("color"))
		f.SetWallets(ids...)

		id, err := f.Submit(ctx)
		if err != nil {
			return xerrors.Errorf("add tag: %w", err)
		}
		a.printf("%s\n", id)
		return nil
	},
}

var tagList = &cli.Command{
	Name:  "list",
	Usage: "List tags with the number of wallets carrying them",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "search", Usage: "match tag name"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		tags, err := a.Store.ListTags(ctx, owner)
		if err != nil {
			return xerrors.Errorf("list tags: %w", err)
		}
		counts, err := a.Store.TagMemberCounts(ctx, owner)
		if err != nil {
			return xerrors.Errorf("count tag members: %w", err)
		}

		q := listview.Query{Search: cctx.String("search")}
		items := listview.FilterTags(tags, q.Search)
		tw := tablewriter.New(
			tablewriter.Col("ID"),
			tablewriter.Col("Name"),
			tablewriter.Col("Wallets", tablewriter.RightAlign()),
		).Empty(listview.Empty(len(items), q).Message("tags"))
		for _, t := range items {
			tw.Write(map[string]interface{}{
				"ID":      t.ID,
				"Name":    t.Name,
				"Wallets": counts[t.ID],
			})
		}
		return tw.Flush(a.Out)
	},
}

var tagEdit = &cli.Command{
	Name:      "edit",
	Usage:     "Rename a tag or change which wallets carry it",
	ArgsUsage: "<tag id or name>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name"},
		&cli.StringFlag{Name: "color"},
		&cli.StringSliceFlag{Name: "wallet", Usage: "make the tag exactly these wallets, repeatable"},
		&cli.StringSliceFlag{Name: "add-wallet", Usage: "repeatable"},
		&cli.StringSliceFlag{Name: "remove-wallet", Usage: "repeatable"},
		&cli.BoolFlag{Name: "toggle-all", Usage: "select every visible wallet, or clear them when all are selected"},
		&cli.StringFlag{Name: "search", Usage: "limit the visible wallets for --toggle-all"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		if !cctx.Args().Present() {
			return xerrors.New("must specify the tag to edit")
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		t, err := a.resolveTag(ctx, owner, cctx.Args().First())
		if err != nil {
			return err
		}
		current, err := a.Store.TagWalletIDs(ctx, t.ID)
		if err != nil {
			return err
		}
		all, err := a.Store.ListWalletsWithGroups(ctx, owner)
		if err != nil {
			return err
		}

		f := form.NewTagForm(a.Store, a.Notifier, owner)
		f.OpenEdit(*t, current)
		defer f.Close()

		if cctx.IsSet("name") {
			f.SetName(cctx.String("name"))
		}
		if cctx.IsSet("color") {
			f.SetColor(cctx.String("color"))
		}
		if cctx.IsSet("wallet") {
			ids, err := a.resolveWallets(ctx, owner, cctx.StringSlice("wallet"), all)
			if err != nil {
				return err
			}
			f.SetWallets(ids...)
		}
		if cctx.Bool("toggle-all") {
			f.ToggleAll(listview.FilterWallets(all, listview.Query{Search: cctx.String("search")}))
		}
		for _, step := range []struct {
			flag string
			want bool
		}{{"add-wallet", true}, {"remove-wallet", false}} {
			ids, err := a.resolveWallets(ctx, owner, cctx.StringSlice(step.flag), all)
			if err != nil {
				return err
			}
			for _, id := range ids {
				if f.Draft().Wallets.Has(id) != step.want {
					f.ToggleWallet(id)
				}
			}
		}

		if _, err := f.Submit(ctx); err != nil {
			if errors.Is(err, form.ErrNoChanges) {
				a.printf("no changes\n")
				return nil
			}
			return xerrors.Errorf("edit tag: %w", err)
		}
		return nil
	},
}

var tagDelete = &cli.Command{
	Name:      "del",
	Usage:     "Delete a tag",
	ArgsUsage: "<tag id or name>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "force", Usage: "do not ask for confirmation"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		if !cctx.Args().Present() {
			return xerrors.New("must specify the tag to delete")
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		t, err := a.resolveTag(ctx, owner, cctx.Args().First())
		if err != nil {
			return err
		}
		if !a.confirm(cctx.Bool("force"), "Delete tag %q? It is removed from every wallet.", t.Name) {
			return nil
		}
		if err := a.Store.DeleteTag(ctx, owner, t.ID); err != nil {
			a.Notifier.Error("Failed to delete tag", err)
			return xerrors.Errorf("delete tag: %w", err)
		}
		a.Notifier.Success("Tag deleted successfully")
		return nil
	},
}

var tagMembers = &cli.Command{
	Name:      "members",
	Usage:     "Show the wallets carrying a tag",
	ArgsUsage: "<tag id or name>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "all", Usage: "list every wallet, carriers first, with a checkbox"},
		&cli.StringFlag{Name: "search", Usage: "match name or address"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		if !cctx.Args().Present() {
			return xerrors.New("must specify the tag")
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		t, err := a.resolveTag(ctx, owner, cctx.Args().First())
		if err != nil {
			return err
		}
		all, err := a.Store.ListWalletsWithGroups(ctx, owner)
		if err != nil {
			return err
		}
		if !cctx.Bool("all") {
			return printMembers(a, all, listview.Query{Search: cctx.String("search"), TagID: t.ID}, t.Name)
		}

		q := listview.Query{Search: cctx.String("search")}
		visible := listview.FilterWallets(all, q)
		selected := listview.WalletsWithTag(all, t.ID)
		in, out := listview.Partition(visible, selected)
		head := selectionMark(listview.Selection(visible, selected))

		tw := tablewriter.New(
			tablewriter.Col(head),
			tablewriter.Col("Name"),
			tablewriter.Col("Chain"),
			tablewriter.Col("Address"),
		).Empty(listview.Empty(len(visible), q).Message("wallets"))
		for _, w := range append(in, out...) {
			mark := "[ ]"
			if selected.Has(w.ID) {
				mark = "[x]"
			}
			tw.Write(map[string]interface{}{
				head:      mark,
				"Name":    listview.DisplayName(w.Wallet, all),
				"Chain":   w.Chain,
				"Address": listview.TruncateAddress(w.Address),
			})
		}
		return tw.Flush(a.Out)
	},
}

// selectionMark renders the select-all checkbox.
func selectionMark(s listview.SelectionState) string {
	switch s {
	case listview.SelectedAll:
		return "[x]"
	case listview.SelectedSome:
		return "[-]"
	}
	return "[ ]"
}
