package command

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Delete the local credential record",
		Action: logoutAction,
	}
}

func logoutAction(c *cli.Context) error {
	rt := getRuntime(c)

	err := rt.sessions(false).Logout(rt.ctx)
	if errors.Is(err, domain.ErrNotLoggedIn) {
		// Nothing to remove is reported but does not fail the run.
		PrintError(rt.stderr, err)
		return nil
	}
	if err != nil {
		return err
	}
	printInfo(rt.stdout, "Your session has expired! See you later.")
	return nil
}
