package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type configView struct {
	Path           string   `json:"path"`
	BaseURL        string   `json:"base_url"`
	AnalyticsPath  string   `json:"analytics_path"`
	Timeout        string   `json:"timeout"`
	Brand          string   `json:"brand"`
	LogLevel       string   `json:"log_level"`
	LogFormat      string   `json:"log_format"`
	LogFile        string   `json:"log_file,omitempty"`
	CurrentProfile string   `json:"current_profile"`
	Profiles       []string `json:"profiles"`
}

// settable lists the keys accepted by "config set".
var settable = []string{"base_url", "analytics_path", "timeout", "brand", "log.level", "log.format", "log.file", "current_profile"}

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the current configuration",
		Long:  "Show the configuration in effect after applying the config file, .env and ADMIN_* variables. Tokens are never printed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showConfig()
		},
	}
	cmd.AddCommand(a.newConfigSetCmd())
	return cmd
}

func (a *app) showConfig() error {
	c := a.cfg
	view := configView{
		Path:           c.Path(),
		BaseURL:        c.BaseURL,
		AnalyticsPath:  c.AnalyticsPath,
		Timeout:        c.Timeout.String(),
		Brand:          c.Brand,
		LogLevel:       c.Log.Level,
		LogFormat:      c.Log.Format,
		LogFile:        c.Log.File,
		CurrentProfile: c.CurrentProfile,
		Profiles:       make([]string, 0, len(c.Profiles)),
	}
	for name := range c.Profiles {
		view.Profiles = append(view.Profiles, name)
	}
	sort.Strings(view.Profiles)

	if handled, err := a.out.Structured(view); handled {
		return err
	}

	a.out.Info("Current configuration:")
	a.out.Field("Config file", view.Path)
	a.out.Field("Base URL", view.BaseURL)
	if view.AnalyticsPath != "" {
		a.out.Field("Analytics path", view.AnalyticsPath)
	} else {
		a.out.Field("Analytics path", "analytics (default)")
	}
	a.out.Field("Timeout", view.Timeout)
	a.out.Field("Brand", view.Brand)
	a.out.Field("Log", fmt.Sprintf("%s, %s", view.LogLevel, view.LogFormat))
	if view.LogFile != "" {
		a.out.Field("Log file", view.LogFile)
	}
	a.out.Field("Current profile", view.CurrentProfile)
	if len(view.Profiles) == 0 {
		a.out.Field("Profiles", "none, run 'admin-cli login'")
	} else {
		a.out.Field("Profiles", strings.Join(view.Profiles, ", "))
	}
	return nil
}

func (a *app) newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a configuration value",
		Long:  "Change a configuration value and save the config file.\n\nKeys: " + strings.Join(settable, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := strings.ToLower(args[0]), args[1]
			c := a.cfg

			switch key {
			case "base_url":
				c.BaseURL = value
			case "analytics_path":
				c.AnalyticsPath = value
			case "timeout":
				d, err := time.ParseDuration(value)
				if err != nil {
					return fmt.Errorf("invalid timeout %q: %w", value, err)
				}
				c.Timeout = d
			case "brand":
				c.Brand = value
			case "log.level":
				c.Log.Level = value
			case "log.format":
				c.Log.Format = value
			case "log.file":
				c.Log.File = value
			case "current_profile":
				value = strings.ToLower(value)
				if _, err := c.GetProfile(value); err != nil {
					return err
				}
				c.CurrentProfile = value
			default:
				return fmt.Errorf("unknown key %q (keys: %s)", key, strings.Join(settable, ", "))
			}

			if err := c.Validate(); err != nil {
				return err
			}
			if err := c.Save(); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			a.out.Success("Set %s to %s", key, value)
			return nil
		},
	}
}
