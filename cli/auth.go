package cli

import (
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"
)

func emailFlag() cli.Flag {
	return &cli.StringFlag{Name: "email", Usage: "account email", Required: true}
}

func passwordFlag() cli.Flag {
	return &cli.StringFlag{Name: "password", Usage: "account password", Required: true, EnvVars: []string{"SORTA_PASSWORD"}}
}

// AuthCmd manages the local account and the current sign-in.
var AuthCmd = &cli.Command{
	Name:  "auth",
	Usage: "Sign up, sign in and manage the local account",
	Subcommands: []*cli.Command{
		authSignUp,
		authSignIn,
		authSignOut,
		authWhoami,
		authReset,
		authResetConfirm,
	},
}

var authSignUp = &cli.Command{
	Name:  "signup",
	Usage: "Create an account and sign in",
	Flags: []cli.Flag{emailFlag(), passwordFlag()},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		u, err := a.Auth.SignUp(cctx.Context, cctx.String("email"), cctx.String("password"))
		if err != nil {
			a.Notifier.Error("Failed to sign up", err)
			return xerrors.Errorf("sign up: %w", err)
		}
		a.Notifier.Success("Signed up as " + u.Email)
		return nil
	},
}

var authSignIn = &cli.Command{
	Name:  "signin",
	Usage: "Sign in with email and password",
	Flags: []cli.Flag{emailFlag(), passwordFlag()},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		u, err := a.Auth.SignIn(cctx.Context, cctx.String("email"), cctx.String("password"))
		if err != nil {
			a.Notifier.Error("Failed to sign in", err)
			return xerrors.Errorf("sign in: %w", err)
		}
		a.Notifier.Success("Signed in as " + u.Email)
		return nil
	},
}

var authSignOut = &cli.Command{
	Name:  "signout",
	Usage: "End the current session",
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		if err := a.Auth.SignOut(cctx.Context); err != nil {
			return xerrors.Errorf("sign out: %w", err)
		}
		a.Notifier.Success("Signed out")
		return nil
	},
}

var authWhoami = &cli.Command{
	Name:  "whoami",
	Usage: "Show the signed in account",
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		u, err := a.Auth.CurrentUser(cctx.Context)
		if err != nil {
			return err
		}
		if u == nil {
			a.printf("Not signed in\n")
			return nil
		}
		a.printf("%s (%s)\n", u.Email, u.ID)
		return nil
	},
}

// authReset has no mail transport, the token is printed for the local user.
var authReset = &cli.Command{
	Name:  "reset",
	Usage: "Request a password reset token",
	Flags: []cli.Flag{emailFlag()},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		token, err := a.Auth.RequestPasswordReset(cctx.Context, cctx.String("email"))
		if err != nil {
			return xerrors.Errorf("request password reset: %w", err)
		}
		a.Notifier.Success("If the account exists a reset token was issued")
		if token != "" {
			a.printf("Reset token (valid for 1 hour): %s\n", token)
		}
		return nil
	},
}

var authResetConfirm = &cli.Command{
	Name:  "reset-confirm",
	Usage: "Set a new password with a reset token",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "token", Usage: "token printed by auth reset", Required: true},
		passwordFlag(),
	},
	Action: func(cctx *cli.Context) error {
		a := appFrom(cctx)
		if err := a.Auth.ResetPassword(cctx.Context, cctx.String("token"), cctx.String("password")); err != nil {
			a.Notifier.Error("Failed to reset password", err)
			return xerrors.Errorf("reset password: %w", err)
		}
		a.Notifier.Success("Password updated, sign in again")
		return nil
	},
}
