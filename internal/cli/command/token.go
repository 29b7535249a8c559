package command

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
	"github.com/yndnr/metacall-deploy-go/internal/core/service"
)

// TokenCommand returns the token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Manage the stored token",
		Subcommands: []*cli.Command{
			{
				Name:  "refresh",
				Usage: "Validate the stored token and refresh it if it is close to expiry",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Refresh even if the token is not stale",
					},
				},
				Action: tokenRefresh,
			},
		},
	}
}

func tokenRefresh(c *cli.Context) error {
	rt := getRuntime(c)
	sessions := rt.sessions(false)

	var session *domain.Session
	err := rt.spinner("Refreshing token").Run(func() error {
		var err error
		if c.Bool("force") {
			session, err = sessions.RefreshStored(rt.ctx)
		} else {
			session, err = sessions.EnsureSession(rt.ctx, service.EnsureSessionRequest{
				Acquisition: rt.acquisition(domain.MethodUnspecified, ""),
			})
		}
		return err
	})
	if err != nil {
		return err
	}
	rt.token = session.Token

	remaining := session.ExpiresIn(time.Now()).Round(time.Second)
	switch session.Source {
	case domain.SourceRefreshed:
		printInfo(rt.stdout, "Token refreshed, valid for %s", remaining)
	case domain.SourceEnv:
		printInfo(rt.stdout, "Using the token from %s, nothing to refresh", service.APIKeyEnv)
	default:
		printInfo(rt.stdout, "Token is valid for %s, no refresh needed", remaining)
	}
	return nil
}
