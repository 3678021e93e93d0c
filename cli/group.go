package cli

import (
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"sorta/internal/listview"
	"sorta/internal/models"
	"sorta/internal/ui/tablewriter"
)

// GroupCmd manages wallet groups.
var GroupCmd = &cli.Command{
	Name:  "group",
	Usage: "Manage wallet groups",
	Subcommands: []*cli.Command{
		groupAdd,
		groupList,
		groupEdit,
		groupDelete,
		groupMembers,
	},
}

var groupAdd = &cli.Command{
	Name:  "add",
	Usage: "Create a group",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "color", Usage: "color token, e.g. bg-blue-500", Value: "bg-blue-500"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		owner, err := a.owner(cctx.Context)
		if err != nil {
			return err
		}
		g, err := a.Store.CreateGroup(cctx.Context, owner, models.CreateLabelParams{
			Name:  cctx.String("name"),
			Color: cctx.String("color"),
		})
		if err != nil {
			a.Notifier.Error("Failed to create group", err)
			return xerrors.Errorf("create group: %w", err)
		}
		a.Notifier.Success("Group created successfully")
		a.printf("%s\n", g.ID)
		return nil
	},
}

var groupList = &cli.Command{
	Name:  "list",
	Usage: "List groups with member counts",
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		groups, err := a.Store.ListGroups(ctx, owner)
		if err != nil {
			return xerrors.Errorf("list groups: %w", err)
		}
		counts, err := a.Store.GroupMemberCounts(ctx, owner)
		if err != nil {
			return xerrors.Errorf("count group members: %w", err)
		}

		tw := tablewriter.New(
			tablewriter.Col("ID"),
			tablewriter.Col("Name"),
			tablewriter.Col("Color"),
			tablewriter.Col("Wallets", tablewriter.RightAlign()),
		).Empty(listview.NoData.Message("groups"))
		for _, g := range groups {
			tw.Write(map[string]interface{}{
				"ID":      g.ID,
				"Name":    g.Name,
				"Color":   g.Color,
				"Wallets": counts[g.ID],
			})
		}
		return tw.Flush(a.Out)
	},
}

var groupEdit = &cli.Command{
	Name:      "edit",
	Usage:     "Rename or recolor a group",
	ArgsUsage: "<group id or name>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name"},
		&cli.StringFlag{Name: "color"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		if !cctx.Args().Present() {
			return xerrors.New("must specify the group to edit")
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		g, err := a.resolveGroup(ctx, owner, cctx.Args().First())
		if err != nil {
			return err
		}

		var params models.UpdateLabelParams
		if cctx.IsSet("name") && cctx.String("name") != g.Name {
			name := cctx.String("name")
			params.Name = &name
		}
		if cctx.IsSet("color") && cctx.String("color") != g.Color {
			color := cctx.String("color")
			params.Color = &color
		}
		if params.Name == nil && params.Color == nil {
			a.printf("no changes\n")
			return nil
		}

		if _, err := a.Store.UpdateGroup(ctx, owner, g.ID, params); err != nil {
			a.Notifier.Error("Failed to update group", err)
			return xerrors.Errorf("update group: %w", err)
		}
		a.Notifier.Success("Group updated successfully")
		return nil
	},
}

var groupDelete = &cli.Command{
	Name:      "del",
	Usage:     "Delete a group and its memberships",
	ArgsUsage: "<group id or name>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "force", Usage: "do not ask for confirmation"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		if !cctx.Args().Present() {
			return xerrors.New("must specify the group to delete")
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		g, err := a.resolveGroup(ctx, owner, cctx.Args().First())
		if err != nil {
			return err
		}
		if !a.confirm(cctx.Bool("force"), "Delete group %q? Wallets are kept, only the grouping is removed.", g.Name) {
			return nil
		}
		if err := a.Store.DeleteGroup(ctx, owner, g.ID); err != nil {
			a.Notifier.Error("Failed to delete group", err)
			return xerrors.Errorf("delete group: %w", err)
		}
		a.Notifier.Success("Group deleted successfully")
		return nil
	},
}

var groupMembers = &cli.Command{
	Name:      "members",
	Usage:     "Show or change the wallets of a group",
	ArgsUsage: "<group id or name>",
	Flags: []cli.Flag{
		&cli.StringSliceFlag{Name: "set", Usage: "make the group exactly these wallets, repeatable"},
		&cli.BoolFlag{Name: "clear", Usage: "remove every wallet from the group"},
		&cli.StringSliceFlag{Name: "add", Usage: "add a wallet, repeatable"},
		&cli.StringSliceFlag{Name: "remove", Usage: "remove a wallet, repeatable"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		if !cctx.Args().Present() {
			return xerrors.New("must specify the group")
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		g, err := a.resolveGroup(ctx, owner, cctx.Args().First())
		if err != nil {
			return err
		}
		all, err := a.Store.ListWalletsWithGroups(ctx, owner)
		if err != nil {
			return err
		}

		changed := false
		if cctx.Bool("clear") || cctx.IsSet("set") {
			ids, err := a.resolveWallets(ctx, owner, cctx.StringSlice("set"), all)
			if err != nil {
				return err
			}
			res, err := a.Store.ReconcileGroupWallets(ctx, owner, g.ID, ids)
			if err != nil {
				a.Notifier.Error("Failed to update group members", err)
				return xerrors.Errorf("reconcile group members: %w", err)
			}
			log.Debugf("groupMembers: %s removed %d added %d", g.ID, res.Deleted, res.Inserted)
			changed = true
		}
		addIDs, err := a.resolveWallets(ctx, owner, cctx.StringSlice("add"), all)
		if err != nil {
			return err
		}
		for _, id := range addIDs {
			if err := a.Store.AddWalletToGroup(ctx, owner, id, g.ID); err != nil {
				return xerrors.Errorf("add to group: %w", err)
			}
			changed = true
		}
		removeIDs, err := a.resolveWallets(ctx, owner, cctx.StringSlice("remove"), all)
		if err != nil {
			return err
		}
		for _, id := range removeIDs {
			if err := a.Store.RemoveWalletFromGroup(ctx, owner, id, g.ID); err != nil {
				return xerrors.Errorf("remove from group: %w", err)
			}
			changed = true
		}

		if changed {
			a.Notifier.Success("Group members updated")
			// reload, the list is never patched in place
			if all, err = a.Store.ListWalletsWithGroups(ctx, owner); err != nil {
				return err
			}
		}
		return printMembers(a, all, listview.Query{GroupID: g.ID}, g.Name)
	},
}

func printMembers(a *App, all []models.WalletWithGroups, q listview.Query, label string) error {
	items := listview.FilterWallets(all, q)
	tw := tablewriter.New(
		tablewriter.Col("ID"),
		tablewriter.Col("Name"),
		tablewriter.Col("Chain"),
		tablewriter.Col("Address"),
	).Empty("No wallets in " + label)
	for _, w := range items {
		tw.Write(map[string]interface{}{
			"ID":      w.ID,
			"Name":    listview.DisplayName(w.Wallet, all),
			"Chain":   w.Chain,
			"Address": listview.TruncateAddress(w.Address),
		})
	}
	return tw.Flush(a.Out)
}
