package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tastetrail/tastetrail/internal/api/metrics"
	"github.com/tastetrail/tastetrail/internal/core/domain"
	"github.com/tastetrail/tastetrail/internal/core/service"
	"github.com/tastetrail/tastetrail/internal/core/session"
	"github.com/tastetrail/tastetrail/internal/infrastructure/apiclient"
	"github.com/tastetrail/tastetrail/internal/infrastructure/storage"
	"github.com/tastetrail/tastetrail/internal/navigation"
	"github.com/tastetrail/tastetrail/internal/pkg/config"
	"github.com/tastetrail/tastetrail/pkg/logger"
)

// rootOptions are the persistent flags shared by the client commands. Unset
// flags fall back to the TASTETRAIL_* environment.
type rootOptions struct {
	apiURL      string
	sessionFile string
	timeout     time.Duration
	logLevel    string
	pretty      bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "tastetrail",
		Short:         "TasteTrail accounts, sessions and role-gated navigation.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.apiURL, "api-url", "", "backend base URL (default $TASTETRAIL_API_URL)")
	pf.StringVar(&opts.sessionFile, "session-file", "", "where the session is kept (default $TASTETRAIL_SESSION_FILE or the user config dir)")
	pf.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default $TASTETRAIL_TIMEOUT)")
	pf.StringVar(&opts.logLevel, "log-level", "", "trace, debug, info, warn, error or off")
	pf.BoolVar(&opts.pretty, "pretty", false, "human-friendly log output")

	root.AddCommand(
		newServeCmd(),
		newLoginCmd(opts),
		newSignupCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newOpenCmd(opts),
		newUsersCmd(opts),
		newPromoteCmd(opts),
		newDeleteUserCmd(opts),
	)
	return root
}

// clientApp is everything a client command needs, with the session already
// restored from disk.
type clientApp struct {
	log   zerolog.Logger
	store *session.Store
	api   *apiclient.Client
	nav   *navigation.Navigator
	flow  *service.AuthFlow
	out   io.Writer
}

func newClientApp(cmd *cobra.Command, opts *rootOptions) (*clientApp, error) {
	cfg, err := config.LoadClient(cmd.Context())
	if err != nil {
		return nil, err
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	if opts.sessionFile != "" {
		cfg.SessionFile = opts.sessionFile
	}
	if opts.timeout > 0 {
		cfg.Timeout = opts.timeout
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if cfg.SessionFile == "" {
		if cfg.SessionFile, err = storage.DefaultPath(); err != nil {
			return nil, err
		}
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  opts.pretty,
		Output:  cmd.ErrOrStderr(),
		Service: "tastetrail",
	})

	store := session.New(storage.NewFile(cfg.SessionFile), log)
	store.Restore()

	client, err := apiclient.New(apiclient.Config{BaseURL: cfg.APIURL, Timeout: cfg.Timeout}, store)
	if err != nil {
		return nil, err
	}

	return &clientApp{
		log:   log,
		store: store,
		api:   client,
		nav:   navigation.NewNavigator(store, metrics.DecisionRecorder{}, log),
		flow:  service.NewAuthFlow(client, store, log),
		out:   cmd.OutOrStdout(),
	}, nil
}

func (a *clientApp) Close() {
	a.nav.Close()
}

// enter navigates to path and turns anything but Allow into an exit error.
func (a *clientApp) enter(cmd *cobra.Command, path string) (*navigation.Visit, error) {
	v, err := a.nav.Navigate(cmd.Context(), path)
	if err != nil {
		return nil, err
	}
	if ee := decisionExit(v.Decision); ee != nil {
		return nil, ee
	}
	return v, nil
}

// fail routes an API error through the navigator so an expired credential
// logs the session out.
func (a *clientApp) fail(v *navigation.Visit, err error) error {
	if d := a.nav.Fail(v, err); d.Kind == domain.RedirectToLogin {
		return &exitError{code: exitAuthRequired, err: fmt.Errorf("session expired, run `tastetrail login --next %s`", v.Path)}
	}
	if errors.Is(err, domain.ErrForbidden) {
		return &exitError{code: exitForbidden, err: err}
	}
	return err
}

// decisionExit maps a redirect decision to its exit code, or nil for Allow.
func decisionExit(d domain.Decision) *exitError {
	switch d.Kind {
	case domain.RedirectToLogin:
		return &exitError{code: exitAuthRequired, err: fmt.Errorf("authentication required: %s", d.Location())}
	case domain.RedirectToForbidden:
		return &exitError{code: exitForbidden, err: fmt.Errorf("forbidden: %s", d.Location())}
	default:
		return nil
	}
}
