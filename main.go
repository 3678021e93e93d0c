package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"

	cli2 "sorta/cli"
	appcfg "sorta/internal/config"
	"sorta/lib/trackerlog"
)

var log = logging.Logger("sorta")

func main() {
	var app *cli2.App

	root := &cli.App{
		Name:    "sorta",
		Usage:   "Organize NFT whitelist wallets into groups and tags, and track upcoming mints",
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the TOML config file",
				EnvVars: []string{appcfg.EnvConfigPath},
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := appcfg.Load(c.String("config"))
			if err != nil {
				return err
			}
			if err := trackerlog.SetupLogLevels(cfg.Log.Level); err != nil {
				return err
			}
			if app, err = cli2.NewApp(cfg); err != nil {
				return err
			}
			c.Context = cli2.WithApp(c.Context, app)
			return nil
		},
		After: func(c *cli.Context) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
		Commands: cli2.All(),
	}

	if err := root.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
