// Package cli implements the admin-cli command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikelcalvo/admin-cli/internal/auth"
	"github.com/mikelcalvo/admin-cli/internal/cli/output"
	"github.com/mikelcalvo/admin-cli/internal/config"
	"github.com/mikelcalvo/admin-cli/internal/logging"
	"github.com/mikelcalvo/admin-cli/internal/requester"
	"github.com/mikelcalvo/admin-cli/internal/shop"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=...".
var Version = "0.1.0"

// app is the state shared by every command of one invocation.
type app struct {
	cfgFile string
	profile string
	format  string
	verbose bool

	cfg       *config.Config
	out       *output.Printer
	logger    *slog.Logger
	logCloser io.Closer
}

// Execute runs the command line with os.Args.
func Execute(ctx context.Context) error {
	root, a := newRoot()
	defer a.close()
	return root.ExecuteContext(ctx)
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	root, _ := newRoot()
	return root
}

func newRoot() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "admin-cli",
		Short: "Shop administration from the terminal",
		Long: `admin-cli manages the products, categories, orders, order items, customers
and employees of a shop admin API.

Run it without arguments to open the interactive dashboard, or use the
resource commands for scripting.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runTUI,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.admin-cli/config.yaml)")
	flags.StringVar(&a.profile, "profile", "", "profile to use (default: current profile)")
	flags.StringVarP(&a.format, "output", "o", "table", "output format: table, json, yaml")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		a.newLoginCmd(),
		a.newLogoutCmd(),
		a.newWhoamiCmd(),
		a.newConfigCmd(),
		a.newPingCmd(),
		a.newTUICmd(),
	)
	for _, kind := range shop.Kinds() {
		root.AddCommand(a.newResourceCmd(kind))
	}

	return root, a
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	format, err := output.ParseFormat(a.format)
	if err != nil {
		return err
	}
	a.out = output.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), format)

	a.cfg, err = config.Load(a.cfgFile)
	if err != nil {
		return err
	}

	level := logging.ParseLevel(a.cfg.Log.Level)
	if a.verbose {
		level = slog.LevelDebug
	}
	// The dashboard owns the terminal, so it only ever logs to a file.
	path := a.cfg.Log.File
	if path == "" && a.verbose && !isDashboard(cmd) {
		path = "-"
	}
	a.logger, a.logCloser, err = logging.Open(path, level, a.cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	return nil
}

func isDashboard(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "tui"
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// profileName is the --profile flag, else the current profile. Profile names are
// stored lowercase.
func (a *app) profileName() string {
	name := a.profile
	if name == "" {
		name = a.cfg.CurrentProfile
	}
	if name == "" {
		name = config.DefaultProfile
	}
	return strings.ToLower(name)
}

// session builds the executor of the selected profile. Refreshed tokens are written
// back to the config file.
func (a *app) session() *auth.Session {
	name := a.profileName()
	return auth.NewSession(auth.Config{
		BaseURL: a.cfg.BaseURL,
		Timeout: a.cfg.Timeout,
		Logger:  a.logger,
		Store:   a.cfg.TokenStore(name),
	}, a.cfg.Tokens(name))
}

// client wires the resource clients to the selected profile's session.
func (a *app) client() (*shop.Client, error) {
	s := a.session()
	if !s.LoggedIn() {
		return nil, fmt.Errorf("%w to profile '%s', run 'admin-cli login'", auth.ErrNotLoggedIn, a.profileName())
	}
	f := requester.New(a.cfg.BaseURL, s, requester.WithAnalyticsPath(a.cfg.AnalyticsPath))
	return shop.NewClient(f), nil
}
