package cli

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mikelcalvo/admin-cli/internal/auth"
	"github.com/mikelcalvo/admin-cli/internal/shop"
	"github.com/mikelcalvo/admin-cli/internal/tui"
)

func (a *app) newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the connection and the stored credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.out.Info("Testing connection to %s...", a.cfg.BaseURL)

			client, err := a.client()
			if err != nil {
				return err
			}

			start := time.Now()
			resp, err := client.Categories.List(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("connection failed: %w", err)
			}
			elapsed := time.Since(start)

			if resp.StatusCode == http.StatusUnauthorized {
				return fmt.Errorf("authentication failed, run 'admin-cli login': %w", shop.CheckResponse(resp))
			}
			if err := shop.CheckResponse(resp); err != nil {
				return describe(err)
			}

			username := ""
			if p, err := a.cfg.GetProfile(a.profileName()); err == nil {
				username = p.Username
			}

			a.out.Success("Connection successful")
			a.out.Field("Authenticated as", username)
			a.out.Field("Profile", a.profileName())
			a.out.Field("Latency", elapsed.Round(time.Millisecond).String())
			return nil
		},
	}
}

func (a *app) newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive dashboard",
		Args:  cobra.NoArgs,
		RunE:  a.runTUI,
	}
}

func (a *app) runTUI(cmd *cobra.Command, _ []string) error {
	client, err := a.client()
	if errors.Is(err, auth.ErrNotLoggedIn) {
		ok, lerr := tui.RunLogin(cmd.Context(), tui.LoginConfig{
			Brand:   a.cfg.Brand,
			BaseURL: a.cfg.BaseURL,
			Login:   a.login,
		})
		if lerr != nil || !ok {
			return lerr
		}
		client, err = a.client()
	}
	if err != nil {
		return err
	}

	user := ""
	if p, err := a.cfg.GetProfile(a.profileName()); err == nil {
		user = p.Username
	}

	a.logger.Info("starting dashboard", "base_url", a.cfg.BaseURL, "profile", a.profileName())
	return tui.Run(cmd.Context(), client, tui.Config{
		Brand:  a.cfg.Brand,
		User:   user,
		Logger: a.logger,
	})
}
