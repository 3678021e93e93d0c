package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"sorta/internal/auth"
	appcfg "sorta/internal/config"
	"sorta/internal/membership"
	"sorta/internal/notify"
	"sorta/internal/repository"
)

var log = logging.Logger("cli")

type ctxKey string

const (
	CtxApp ctxKey = "app"
)

// App is everything a command needs. It is built once in the root Before hook
// and handed to commands through the context.
type App struct {
	Config   *appcfg.Config
	Store    *repository.Store
	Auth     *auth.Service
	Notifier notify.Notifier
	Out      io.Writer
	In       io.Reader
}

// All returns every command of the tool.
func All() []*cli.Command {
	return []*cli.Command{
		AuthCmd,
		WalletCmd,
		GroupCmd,
		TagCmd,
		ProjectCmd,
		CalendarCmd,
		DashboardCmd,
	}
}

// NewApp opens the store and the session keyring described by cfg.
func NewApp(cfg *appcfg.Config) (*App, error) {
	strategy, err := membership.ParseStrategy(cfg.Membership.Strategy)
	if err != nil {
		return nil, err
	}
	store, err := repository.OpenStore(cfg.Database.Path, repository.Options{
		Strategy:     strategy,
		Atomic:       cfg.Membership.Atomic,
		EnforceOwner: cfg.Membership.EnforceOwner,
	})
	if err != nil {
		return nil, err
	}

	seed := cfg.Security.Seed
	if seed == "" {
		host, _ := os.Hostname()
		seed = host + ":" + filepath.Clean(cfg.Database.Path)
		log.Warnf("NewApp: Security.Seed is not set, deriving the session key from the host name")
	}
	keyring, err := auth.NewFileKeyring(cfg.Security.SessionFile, seed)
	if err != nil {
		_ = store.Close()
		return nil, xerrors.Errorf("open session file: %w", err)
	}

	return &App{
		Config:   cfg,
		Store:    store,
		Auth:     auth.NewService(store, keyring, auth.WithSessionTTL(cfg.Security.SessionTTL.Duration)),
		Notifier: notify.NewConsole(os.Stdout),
		Out:      os.Stdout,
		In:       os.Stdin,
	}, nil
}

func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// WithApp stores app in ctx for the commands.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, CtxApp, app)
}

func appFrom(cctx *cli.Context) *App {
	app, _ := cctx.Context.Value(CtxApp).(*App)
	if app == nil {
		panic("cli: App missing from context")
	}
	return app
}

// owner resolves the signed in user id.
func (a *App) owner(ctx context.Context) (string, error) {
	u, err := a.Auth.RequireUser(ctx)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

// confirm asks a yes/no question unless force is set.
func (a *App) confirm(force bool, format string, args ...any) bool {
	if force {
		return true
	}
	fmt.Fprintf(a.Out, format+"\n", args...)
	fmt.Fprint(a.Out, "Type 'yes' to confirm: ")
	answer, _ := bufio.NewReader(a.In).ReadString('\n')
	if strings.TrimSpace(answer) != "yes" {
		fmt.Fprintln(a.Out, "Cancelled")
		return false
	}
	return true
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.Out, format, args...)
}
