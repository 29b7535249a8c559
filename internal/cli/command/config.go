package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/metacall-deploy-go/internal/cli/config"
	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect or seed the credential record",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration (token masked)",
				Action: configShow,
			},
			{
				Name:      "import",
				Usage:     "Merge settings from a .ini, .env or .yaml file into the record",
				ArgsUsage: "FILE",
				Action:    configImport,
			},
		},
	}
}

// configView is the printable form of the effective record.
type configView struct {
	Path      string `json:"path" yaml:"path"`
	BaseURL   string `json:"baseURL" yaml:"baseURL"`
	APIURL    string `json:"apiURL" yaml:"apiURL"`
	DevURL    string `json:"devURL" yaml:"devURL"`
	RenewTime string `json:"renewTime" yaml:"renewTime"`
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
}

func newConfigView(path string, r *domain.CredentialRecord) configView {
	view := configView{
		Path:      path,
		BaseURL:   r.BaseURL,
		APIURL:    r.APIURL,
		DevURL:    r.DevURL,
		RenewTime: r.RenewThreshold().String(),
	}
	if r.Token != "" {
		view.Token = domain.MaskToken(r.Token)
	}
	return view
}

func configShow(c *cli.Context) error {
	rt := getRuntime(c)
	return rt.formatter.Format(rt.stdout, newConfigView(rt.store.Path(), rt.record))
}

func configImport(c *cli.Context) error {
	rt := getRuntime(c)

	if c.NArg() != 1 {
		return domain.ErrMissingArgument.WithDetails("usage: metacall-deploy config import FILE")
	}

	patch, err := config.ReadPatch(c.Args().First())
	if err != nil {
		return err
	}
	if err := rt.store.Save(patch); err != nil {
		return err
	}

	printInfo(rt.stdout, "Configuration imported into %s", rt.store.Path())
	return nil
}
