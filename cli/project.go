package cli

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"sorta/internal/calendar"
	"sorta/internal/chain"
	"sorta/internal/listview"
	"sorta/internal/models"
	"sorta/internal/ui/tablewriter"
)

const mintLayout = "2006-01-02 15:04"

// parseMint accepts "YYYY-MM-DD HH:MM" in loc or RFC 3339.
func parseMint(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(mintLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, xerrors.Errorf("mint time must be %q or RFC 3339, got %q", mintLayout, s)
	}
	return t, nil
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, xerrors.Errorf("date must be YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// ProjectCmd tracks whitelist spots for upcoming mints.
var ProjectCmd = &cli.Command{
	Name:  "project",
	Usage: "Track NFT projects and their mint dates",
	Subcommands: []*cli.Command{
		projectAdd,
		projectList,
		projectStatus,
		projectDelete,
	},
}

var projectAdd = &cli.Command{
	Name:  "add",
	Usage: "Add a project",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true},
		&cli.StringFlag{Name: "mint", Usage: "mint time, " + mintLayout + " local time or RFC 3339", Required: true},
		&cli.StringFlag{Name: "chain", Usage: "default from config"},
		&cli.StringFlag{Name: "type", Usage: "whitelist type, GTD or FCFS", Value: string(models.WhitelistGTD)},
		&cli.StringFlag{Name: "x", Usage: "X (Twitter) account"},
		&cli.StringFlag{Name: "price", Usage: "mint price"},
		&cli.IntFlag{Name: "supply"},
		&cli.StringFlag{Name: "launchpad"},
		&cli.StringFlag{Name: "notes"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}

		chainName := a.Config.Wallets.DefaultChain
		if cctx.IsSet("chain") {
			chainName = cctx.String("chain")
		}
		c, err := chain.Parse(chainName)
		if err != nil {
			return err
		}
		mintAt, err := parseMint(cctx.String("mint"), time.Local)
		if err != nil {
			return err
		}
		wl, err := models.ParseWhitelistType(cctx.String("type"))
		if err != nil {
			return err
		}

		p := &models.Project{
			Name:          cctx.String("name"),
			Chain:         c,
			XAccount:      cctx.String("x"),
			MintAt:        mintAt,
			Launchpad:     cctx.String("launchpad"),
			WhitelistType: wl,
			Notes:         cctx.String("notes"),
		}
		if cctx.IsSet("price") {
			price, err := decimal.NewFromString(cctx.String("price"))
			if err != nil {
				return xerrors.Errorf("invalid price: %w", err)
			}
			p.MintPrice = &price
		}
		if cctx.IsSet("supply") {
			supply := cctx.Int("supply")
			p.Supply = &supply
		}

		if err := a.Store.CreateProject(ctx, owner, p); err != nil {
			a.Notifier.Error("Failed to add project", err)
			return xerrors.Errorf("add project: %w", err)
		}
		a.Notifier.Success("Project added successfully")
		a.printf("%s\n", p.ID)
		return nil
	},
}

var projectList = &cli.Command{
	Name:  "list",
	Usage: "List projects by mint time",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "from", Usage: "YYYY-MM-DD, inclusive"},
		&cli.StringFlag{Name: "to", Usage: "YYYY-MM-DD, exclusive"},
		&cli.StringFlag{Name: "status", Usage: "Pending, Minted, Will Pass or Delayed"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		from, err := parseDay(cctx.String("from"), time.Local)
		if err != nil {
			return err
		}
		to, err := parseDay(cctx.String("to"), time.Local)
		if err != nil {
			return err
		}
		var status models.ProjectStatus
		if s := cctx.String("status"); s != "" {
			if status, err = models.ParseProjectStatus(s); err != nil {
				return err
			}
		}

		projects, err := a.Store.ListProjects(ctx, owner, from, to)
		if err != nil {
			return xerrors.Errorf("list projects: %w", err)
		}
		return printProjects(a, projects, status)
	},
}

func printProjects(a *App, projects []models.Project, status models.ProjectStatus) error {
	tw := tablewriter.New(
		tablewriter.Col("ID"),
		tablewriter.Col("Mint"),
		tablewriter.Col("Name"),
		tablewriter.Col("Chain"),
		tablewriter.Col("WL"),
		tablewriter.Col("Price", tablewriter.RightAlign()),
		tablewriter.Col("Supply", tablewriter.RightAlign()),
		tablewriter.Col("Status"),
		tablewriter.NewLineCol("Notes"),
	).Empty(listview.NoData.Message("projects"))

	for _, p := range projects {
		if status != "" && p.Status != status {
			continue
		}
		row := map[string]interface{}{
			"ID":     p.ID,
			"Mint":   p.MintAt.Local().Format(mintLayout),
			"Name":   p.Name,
			"Chain":  p.Chain,
			"WL":     p.WhitelistType,
			"Status": p.Status,
			"Notes":  p.Notes,
		}
		if p.MintPrice != nil {
			row["Price"] = p.MintPrice.String()
		}
		if p.Supply != nil {
			row["Supply"] = *p.Supply
		}
		tw.Write(row)
	}
	return tw.Flush(a.Out)
}

var projectStatus = &cli.Command{
	Name:      "status",
	Usage:     "Set the status of a project",
	ArgsUsage: "<project id> <Pending|Minted|Will Pass|Delayed>",
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		if cctx.Args().Len() != 2 {
			return xerrors.New("expected a project id and a status")
		}
		status, err := models.ParseProjectStatus(cctx.Args().Get(1))
		if err != nil {
			return err
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		if err := a.Store.SetProjectStatus(ctx, owner, cctx.Args().Get(0), status); err != nil {
			a.Notifier.Error("Failed to update project", err)
			return xerrors.Errorf("set project status: %w", err)
		}
		a.Notifier.Success("Project marked " + string(status))
		return nil
	},
}

var projectDelete = &cli.Command{
	Name:      "del",
	Usage:     "Delete a project",
	ArgsUsage: "<project id>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "force", Usage: "do not ask for confirmation"},
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		if !cctx.Args().Present() {
			return xerrors.New("must specify the project to delete")
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}
		id := cctx.Args().First()
		if !a.confirm(cctx.Bool("force"), "Delete project %s?", id) {
			return nil
		}
		if err := a.Store.DeleteProject(ctx, owner, id); err != nil {
			a.Notifier.Error("Failed to delete project", err)
			return xerrors.Errorf("delete project: %w", err)
		}
		a.Notifier.Success("Project deleted successfully")
		return nil
	},
}

// CalendarCmd shows a month of mints.
var CalendarCmd = &cli.Command{
	Name:      "calendar",
	Usage:     "Show project mints on a month calendar",
	ArgsUsage: "[YYYY-MM]",
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		ctx := cctx.Context
		year, month, err := calendar.ParseMonth(cctx.Args().First(), time.Now())
		if err != nil {
			return err
		}
		owner, err := a.owner(ctx)
		if err != nil {
			return err
		}

		// fetch a week either side so the leading and trailing days are filled
		from, to := calendar.Bounds(year, month, time.Local)
		projects, err := a.Store.ListProjects(ctx, owner, from.AddDate(0, 0, -7), to.AddDate(0, 0, 7))
		if err != nil {
			return xerrors.Errorf("list projects: %w", err)
		}
		return calendar.Render(a.Out, calendar.Month(projects, year, month, time.Local), time.Local)
	},
}
