package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/api"
	"github.com/idilsaglam/campusfinder/internal/config"
	"github.com/idilsaglam/campusfinder/internal/logging"
	"github.com/idilsaglam/campusfinder/internal/route"
	"github.com/idilsaglam/campusfinder/internal/session"
	"github.com/idilsaglam/campusfinder/internal/store/jsonstore"
	"github.com/idilsaglam/campusfinder/internal/ui"
)

// Options wire the runner to its terminal. Nil fields default to the
// process's own streams.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
}

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

var errLoginRequired = errors.New("login required")

// usageError marks bad invocations; they exit with ExitUsage.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func usageArgs(fn cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := fn(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

type rootFlags struct {
	config  string
	server  string
	theme   string
	verbose bool
}

// app is what every command runs against. It is built once per Run by the
// root's PersistentPreRunE.
type app struct {
	opt   Options
	flags rootFlags

	cfg      *config.Config
	log      *zap.Logger
	sessions *session.Store
	client   *api.Client
	guard    *route.Guard
}

// Run executes one command line and returns its exit code
// (0 ok, 1 error, 2 usage or authorization).
func Run(args []string, opt Options) int {
	if opt.Stdout == nil {
		opt.Stdout = os.Stdout
	}
	if opt.Stderr == nil {
		opt.Stderr = os.Stderr
	}
	if opt.Stdin == nil {
		opt.Stdin = os.Stdin
	}

	a := &app{opt: opt}
	defer a.close()

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(opt.Stdout)
	root.SetErr(opt.Stderr)
	root.SetIn(opt.Stdin)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	ui.Fail(opt.Stderr, err.Error())

	var ue *usageError
	switch {
	case errors.Is(err, errLoginRequired):
		ui.Hint(opt.Stderr, "Run: campusfinder auth login")
		return ExitUsage
	case errors.As(err, &ue):
		ui.Hint(opt.Stderr, "Run: campusfinder --help")
		return ExitUsage
	}
	return ExitError
}

// setup loads config, applies root flags and opens the session store and API
// client.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.flags.config
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.flags.server != "" {
		cfg.Server.BaseURL = a.flags.server
	}
	if a.flags.theme != "" {
		cfg.UI.Theme = a.flags.theme
	}
	if a.flags.verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{err: err}
	}
	a.cfg = cfg
	ui.SetTheme(cfg.UI.Theme)

	log, err := logging.New(cfg.Logging, logging.Options{
		Path:   cfg.LogPath(),
		Stderr: a.flags.verbose && cmd.HasParent(),
	})
	if err != nil {
		return err
	}
	a.log = log.With(zap.String("command", cmd.CommandPath()))

	a.sessions = session.Open(jsonstore.New(cfg.Storage.Dir), a.log)
	a.guard = route.NewGuard(a.sessions)
	a.client, err = api.New(cfg.Server.BaseURL, a.sessions,
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithLogger(a.log),
	)
	if err != nil {
		return &usageError{err: err}
	}
	return nil
}

// pageAnnotation ties a command to the page it stands in for; the route
// guard decides whether it may run.
const pageAnnotation = "campusfinder/page"

func (a *app) authorize(cmd *cobra.Command) error {
	p, ok := cmd.Annotations[pageAnnotation]
	if !ok {
		return nil
	}
	path, err := route.Parse(p)
	if err != nil {
		return err
	}
	if d := a.guard.Resolve(path); d.Redirected {
		a.log.Info("refused guarded command", zap.String("page", string(path)))
		return errLoginRequired
	}
	return nil
}

func (a *app) requireSession() error {
	if a.sessions.Get() == nil {
		return errLoginRequired
	}
	return nil
}

func (a *app) close() {
	if a.log != nil {
		_ = a.log.Sync()
	}
}

func (a *app) out() io.Writer { return a.opt.Stdout }
