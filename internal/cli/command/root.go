package command

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
	"github.com/yndnr/metacall-deploy-go/internal/infra/buildinfo"
	"github.com/yndnr/metacall-deploy-go/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "metacall-deploy",
		Usage:   "Log in to the MetaCall FaaS dashboard and manage the local session",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			LogoutCommand(),
			StatusCommand(),
			TokenCommand(),
			ConfigCommand(),
		},
		Metadata: make(map[string]any),
		Before:   before,
		After:    after,
		// main decides the exit code
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "conf-dir",
			Aliases: []string{"d"},
			Usage:   "Directory holding config.ini",
			EnvVars: []string{"METACALL_DEPLOY_CONF_DIR"},
		},
		&cli.StringFlag{
			Name:    "server-url",
			Aliases: []string{"u"},
			Usage:   "Dashboard URL, overrides baseURL from the configuration",
			EnvVars: []string{"METACALL_DEPLOY_SERVER_URL"},
		},
		&cli.BoolFlag{
			Name:  "dev",
			Usage: "Development mode: skip authentication and use devURL",
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "API token to use instead of the stored one",
		},
		&cli.StringFlag{
			Name:    "email",
			Aliases: []string{"e"},
			Usage:   "Account email for login or signup",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Account password for login or signup",
		},
		&cli.BoolFlag{
			Name:    "non-interactive",
			Usage:   "Never prompt; fail instead",
			EnvVars: []string{"METACALL_DEPLOY_NON_INTERACTIVE"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
			Value: "text",
		},
		&cli.StringFlag{
			Name:    "metrics-file",
			Usage:   "Write Prometheus metrics to this file on exit (textfile collector format)",
			EnvVars: []string{"METACALL_DEPLOY_METRICS_FILE"},
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	// Local state
	ConfDir   string
	ServerURL string
	Dev       bool

	// Credentials
	Token    string
	Email    string
	Password string

	NonInteractive bool

	// Output and diagnostics
	Output      string // table, json, yaml
	Verbose     bool
	LogFormat   string
	MetricsFile string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfDir:        c.String("conf-dir"),
		ServerURL:      c.String("server-url"),
		Dev:            c.Bool("dev"),
		Token:          c.String("token"),
		Email:          c.String("email"),
		Password:       c.String("password"),
		NonInteractive: c.Bool("non-interactive"),
		Output:         c.String("output"),
		Verbose:        c.Bool("verbose"),
		LogFormat:      c.String("log-format"),
		MetricsFile:    c.String("metrics-file"),
	}
}

func before(c *cli.Context) error {
	rt, err := newRuntime(c, ParseGlobalFlags(c))
	if err != nil {
		return err
	}
	c.App.Metadata[runtimeKey] = rt
	c.Context = rt.ctx
	return nil
}

func after(c *cli.Context) error {
	rt, ok := c.App.Metadata[runtimeKey].(*runtime)
	if !ok {
		return nil
	}
	if err := rt.shutdown.Shutdown(); err != nil {
		// The command result stands; cleanup problems are only reported.
		logger.L(rt.ctx).Warn("cleanup failed", "error", err)
	}
	return nil
}

// ============================================================================
// Messages
// ============================================================================

// Operator-facing lines: "i" informs, "!" warns, "X" reports a failure.

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "i "+format+"\n", args...)
}

func printWarn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "! "+format+"\n", args...)
}

// PrintError prints err to w as an operator-facing failure line.
func PrintError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "X %s\n", logger.RedactString(describe(err)))
}

// describe renders err without its code: "<message>: <details>".
func describe(err error) string {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		return err.Error()
	}
	if de.Details != "" {
		return de.Message + ": " + de.Details
	}
	return de.Message
}
