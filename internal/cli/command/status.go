package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
	"github.com/yndnr/metacall-deploy-go/internal/core/service"
)

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the current session without changing it",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "validate",
				Usage: "Ask the dashboard whether the token is still accepted",
			},
		},
		Action: statusAction,
	}
}

func statusAction(c *cli.Context) error {
	rt := getRuntime(c)

	req := service.StatusRequest{
		Token:      rt.flags.Token,
		Validate:   c.Bool("validate"),
		ServiceURL: rt.serviceURL,
	}

	var status *domain.SessionStatus
	err := rt.spinner("Checking session").Run(func() error {
		var err error
		status, err = rt.sessions(false).Status(rt.ctx, req)
		return err
	})
	if err != nil {
		return err
	}

	if err := rt.formatter.Format(rt.stdout, status); err != nil {
		return err
	}
	if status.Source == domain.SourceNone {
		printWarn(rt.stderr, "Not logged in, run `metacall-deploy login`")
	}
	return nil
}
