package command

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/metacall-deploy-go/internal/cli/config"
	"github.com/yndnr/metacall-deploy-go/internal/cli/connection"
	"github.com/yndnr/metacall-deploy-go/internal/cli/output"
	"github.com/yndnr/metacall-deploy-go/internal/cli/prompt"
	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
	"github.com/yndnr/metacall-deploy-go/internal/core/service"
	"github.com/yndnr/metacall-deploy-go/internal/infra/shutdown"
	"github.com/yndnr/metacall-deploy-go/internal/telemetry/logger"
	"github.com/yndnr/metacall-deploy-go/internal/telemetry/metric"
)

const runtimeKey = "metacall.runtime"

// runtime is everything a command needs for one invocation.
type runtime struct {
	ctx   context.Context
	flags *GlobalFlags

	store      *config.Store
	record     *domain.CredentialRecord // effective: defaults, file, environment
	serviceURL string

	api         *connection.AuthAPI
	terminal    *prompt.Terminal
	interactive bool
	formatter   output.Formatter
	format      output.Format

	metrics  *metric.Recorder
	shutdown *shutdown.Handler

	stdout io.Writer
	stderr io.Writer

	// token is the session token once a command has one; read by the
	// expiry collector at exit.
	token string
}

func newRuntime(c *cli.Context, flags *GlobalFlags) (*runtime, error) {
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return nil, err
	}

	rt := &runtime{
		flags:     flags,
		format:    format,
		formatter: output.NewFormatter(format),
		stdout:    writerOr(c.App.Writer, os.Stdout),
		stderr:    writerOr(c.App.ErrWriter, os.Stderr),
		metrics:   metric.NewRecorder(),
		shutdown:  shutdown.NewHandler(shutdown.DefaultTimeout),
	}

	log, err := logger.New(logger.ForInvocation(flags.Verbose, flags.LogFormat, rt.stderr))
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithDetails(err.Error())
	}
	logger.SetDefault(log)

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, log)
	rt.ctx = logger.WithRequestID(ctx, logger.NewRequestID())

	rt.store = config.NewStore(flags.ConfDir)
	if rt.record, err = rt.store.LoadEffective(); err != nil {
		return nil, err
	}

	rt.serviceURL = rt.record.BaseURL
	switch {
	case flags.Dev:
		rt.serviceURL = rt.record.DevURL
	case flags.ServerURL != "":
		rt.serviceURL = flags.ServerURL
	}

	rt.api = connection.NewAuthAPI(rt.serviceURL,
		connection.WithTransport(rt.metrics.InstrumentRoundTripper(nil)))

	input := readerOr(c.App.Reader, os.Stdin)
	rt.terminal = prompt.NewTerminal(input, rt.stderr)
	stdin, _ := input.(*os.File)
	rt.interactive = !flags.NonInteractive && prompt.IsInteractive(os.Getenv, stdin)

	rt.shutdown.OnShutdown(func(context.Context) error {
		return rt.terminal.Restore()
	})
	if flags.MetricsFile != "" {
		if err := rt.metrics.RegisterExpiry(func() string { return rt.token }); err != nil {
			return nil, err
		}
		rt.shutdown.OnShutdown(func(context.Context) error {
			return rt.metrics.WriteTextfile(flags.MetricsFile)
		})
	}

	logger.L(rt.ctx).Debug("runtime ready",
		"config", rt.store.Path(),
		"service_url", rt.serviceURL,
		"interactive", rt.interactive,
	)
	return rt, nil
}

func getRuntime(c *cli.Context) *runtime {
	if rt, ok := c.App.Metadata[runtimeKey].(*runtime); ok {
		return rt
	}
	return nil
}

// sessions builds the session services. Without an acquirer, a missing or
// rejected token ends in ErrNotLoggedIn instead of prompting.
func (rt *runtime) sessions(withAcquirer bool) *service.SessionService {
	tokens := service.NewTokenService(rt.api, rt.metrics)

	var acquirer *service.Acquirer
	if withAcquirer {
		log := logger.L(rt.ctx)
		acquirer = service.NewAcquirer(tokens, rt.api, rt.terminal, rt.interactive,
			service.DefaultAcquirerConfig(),
			service.WithOutput(rt.stderr),
			service.WithAcquirerMetrics(rt.metrics),
			service.WithOnAttempt(func(a domain.Attempt) {
				log.Debug("acquisition attempt", "method", a.Method.String(), "outcome", string(a.Outcome))
			}),
		)
	}

	return service.NewSessionService(rt.store, tokens, acquirer,
		service.WithRenewThreshold(rt.record.RenewThreshold()),
		service.WithSessionMetrics(rt.metrics))
}

// acquisition builds the request from the global credential flags.
func (rt *runtime) acquisition(method domain.Method, alias string) domain.AcquisitionRequest {
	return domain.AcquisitionRequest{
		Method:         method,
		Token:          rt.flags.Token,
		Email:          rt.flags.Email,
		Password:       rt.flags.Password,
		Alias:          alias,
		NonInteractive: !rt.interactive,
	}
}

// spinner returns a spinner on stderr, or nil when nobody is watching or
// the output is meant for a machine.
func (rt *runtime) spinner(message string) *output.Spinner {
	if !rt.interactive || rt.format != output.FormatTable || rt.flags.Verbose {
		return nil
	}
	return output.NewSpinner(rt.stderr, message)
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

func readerOr(r, fallback io.Reader) io.Reader {
	if r != nil {
		return r
	}
	return fallback
}
