package command

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
	"github.com/yndnr/metacall-deploy-go/internal/core/service"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in to the dashboard, reusing a valid stored session",
		Description: "Uses METACALL_API_KEY, then --token, then the stored token. " +
			"A stale token is refreshed; a rejected one leads to a new login.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "method",
				Aliases: []string{"m"},
				Usage:   "Login method: token, login, signup (asked when omitted)",
			},
			&cli.StringFlag{
				Name:    "alias",
				Aliases: []string{"a"},
				Usage:   "Account alias for signup",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Ignore the stored token and log in again",
			},
		},
		Action: loginAction,
	}
}

func loginAction(c *cli.Context) error {
	rt := getRuntime(c)

	method, err := domain.ParseMethod(c.String("method"))
	if err != nil {
		return err
	}

	req := service.EnsureSessionRequest{
		Acquisition: rt.acquisition(method, c.String("alias")),
		Dev:         rt.flags.Dev,
		Force:       c.Bool("force"),
	}

	session, err := rt.sessions(true).EnsureSession(rt.ctx, req)
	if errors.Is(err, domain.ErrVerificationPending) {
		printInfo(rt.stderr, "%s", domain.Details(err))
		return nil
	}
	if err != nil {
		return err
	}
	rt.token = session.Token

	switch session.Source {
	case domain.SourceDev:
		printInfo(rt.stderr, "Development mode, using %s", rt.serviceURL)
	case domain.SourceEnv:
		printInfo(rt.stderr, "Using the token from %s", service.APIKeyEnv)
	}
	printInfo(rt.stdout, "Login Successful!")
	return nil
}
