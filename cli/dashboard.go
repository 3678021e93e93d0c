package cli

import (
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"sorta/internal/calendar"
	"sorta/internal/models"
	"sorta/internal/ui/tablewriter"
)

const upcomingLimit = 5

// DashboardCmd prints counts and the next mints.
var DashboardCmd = &cli.Command{
	Name:  "dashboard",
	Usage: "Overview of wallets, groups, tags and upcoming mints",
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}

		wallets, err := a.Store.CountWallets(ctx, owner)
		if err != nil {
			return xerrors.Errorf("count wallets: %w", err)
		}
		groups, err := a.Store.CountGroups(ctx, owner)
		if err != nil {
			return xerrors.Errorf("count groups: %w", err)
		}
		tags, err := a.Store.CountTags(ctx, owner)
		if err != nil {
			return xerrors.Errorf("count tags: %w", err)
		}

		tw := tablewriter.New(tablewriter.Col("Item"), tablewriter.Col("Count", tablewriter.RightAlign()))
		tw.Write(map[string]interface{}{"Item": "Wallets", "Count": wallets})
		tw.Write(map[string]interface{}{"Item": "Groups", "Count": groups})
		tw.Write(map[string]interface{}{"Item": "Tags", "Count": tags})
		for _, st := range []models.ProjectStatus{"", models.StatusPending, models.StatusMinted, models.StatusWillPass, models.StatusDelayed} {
			n, err := a.Store.CountProjects(ctx, owner, st)
			if err != nil {
				return xerrors.Errorf("count projects: %w", err)
			}
			item := "Projects"
			if st != "" {
				item = "  " + string(st)
			}
			tw.Write(map[string]interface{}{"Item": item, "Count": n})
		}
		if err := tw.Flush(a.Out); err != nil {
			return err
		}

		now := time.Now()
		projects, err := a.Store.ListProjects(ctx, owner, now, time.Time{})
		if err != nil {
			return xerrors.Errorf("list projects: %w", err)
		}
		a.printf("\nUpcoming mints\n")
		return printProjects(a, calendar.Upcoming(projects, now, upcomingLimit), "")
	},
}
