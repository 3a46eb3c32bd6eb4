package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/route"
	"github.com/idilsaglam/campusfinder/internal/session"
	"github.com/idilsaglam/campusfinder/internal/tui"
)

func (a *app) rootCmd() *cobra.Command {
	var page string
	root := &cobra.Command{
		Use:   "campusfinder",
		Short: "Campus Lost & Found client",
		Long: `campusfinder talks to the Campus Lost & Found server.

Run without a command to open the interactive app. Reporting and deleting
items needs a login (campusfinder auth login).`,
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			return a.authorize(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			start := a.cfg.StartPath()
			if page != "" {
				p, err := route.Parse(page)
				if err != nil {
					return &usageError{err: err}
				}
				start = p
			}
			return a.runTUI(cmd, start)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.config, "config", "", "config file (default ~/.campusfinder/config.yaml)")
	pf.StringVar(&a.flags.server, "server", "", "API base URL, e.g. http://localhost:8080/api")
	pf.StringVar(&a.flags.theme, "theme", "", "color theme: classic, neon or mono")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "debug logging")
	root.Flags().StringVar(&page, "page", "", "page to open: / search report-lost report-found login signup")

	root.AddCommand(
		a.lsCmd(),
		a.searchCmd(),
		a.reportCmd(),
		a.rmCmd(),
		a.authCmd(),
		a.configCmd(),
	)
	return root
}

// runTUI shows the interactive app. The session file is watched so a login
// or logout from another terminal shows up immediately.
func (a *app) runTUI(cmd *cobra.Command, start route.Path) error {
	w, err := session.NewWatcher(a.sessions)
	if err != nil {
		a.log.Warn("session watcher unavailable", zap.Error(err))
	} else {
		if err := w.Start(cmd.Context()); err != nil {
			a.log.Warn("session watcher unavailable", zap.Error(err))
		}
		defer w.Stop()
	}
	a.log.Info("starting tui", zap.String("page", string(start)), zap.String("server", a.client.BaseURL()))
	return tui.Run(cmd.Context(), &tui.Deps{Client: a.client, Sessions: a.sessions, Log: a.log}, start)
}
