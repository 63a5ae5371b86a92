package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mikelcalvo/admin-cli/internal/auth"
)

func (a *app) newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the shop API",
		Long: `Exchange a username and password for an access/refresh token pair and save it
in the selected profile. Missing credentials are prompted for.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if username == "" {
				if username, err = prompt(in, cmd.ErrOrStderr(), "Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = promptPassword(cmd.InOrStdin(), in, cmd.ErrOrStderr()); err != nil {
					return err
				}
			}
			if username == "" {
				return fmt.Errorf("username is required")
			}
			if password == "" {
				return fmt.Errorf("password is required")
			}

			if err := a.login(cmd.Context(), a.cfg.BaseURL, username, password); err != nil {
				return err
			}

			profile := a.profileName()
			a.out.Success("Logged in as %s", username)
			a.out.Info("Profile '%s' saved to %s", profile, a.cfg.Path())
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

// login exchanges credentials for tokens against baseURL and saves them, with
// baseURL, in the selected profile.
func (a *app) login(ctx context.Context, baseURL, username, password string) error {
	s := auth.NewSession(auth.Config{
		BaseURL: baseURL,
		Timeout: a.cfg.Timeout,
		Logger:  a.logger,
	}, auth.Tokens{})
	tokens, err := s.Login(ctx, username, password)
	if err != nil {
		return err
	}

	previous := a.cfg.BaseURL
	a.cfg.BaseURL = baseURL
	if err := a.cfg.Validate(); err != nil {
		a.cfg.BaseURL = previous
		return err
	}
	if err := a.cfg.SaveProfile(a.profileName(), username, tokens.Access, tokens.Refresh); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

func (a *app) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credentials of a profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			profile := a.profileName()
			if err := a.cfg.RemoveProfile(profile); err != nil {
				return err
			}

			a.out.Success("Logged out from profile '%s'", profile)
			return nil
		},
	}
}

type whoami struct {
	Profile        string     `json:"profile"`
	Username       string     `json:"username"`
	BaseURL        string     `json:"base_url"`
	AccessExpires  *time.Time `json:"access_expires,omitempty"`
	RefreshExpires *time.Time `json:"refresh_expires,omitempty"`
}

func (a *app) newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user of the selected profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := a.profileName()
			p, err := a.cfg.GetProfile(name)
			if err != nil {
				return fmt.Errorf("%w: %v", auth.ErrNotLoggedIn, err)
			}

			info := whoami{Profile: name, Username: p.Username, BaseURL: a.cfg.BaseURL}
			if exp, ok := auth.ExpiresAt(p.AccessToken); ok {
				info.AccessExpires = &exp
			}
			if exp, ok := auth.ExpiresAt(p.RefreshToken); ok {
				info.RefreshExpires = &exp
			}

			if handled, err := a.out.Structured(info); handled {
				return err
			}

			a.out.Field("Profile", info.Profile)
			a.out.Field("Username", info.Username)
			a.out.Field("Base URL", info.BaseURL)
			a.out.Field("Access token", expiry(info.AccessExpires))
			a.out.Field("Refresh token", expiry(info.RefreshExpires))
			return nil
		},
	}
}

func expiry(t *time.Time) string {
	if t == nil {
		return "no expiry"
	}
	left := time.Until(*t)
	if left <= 0 {
		return "expired " + t.Local().Format(time.DateTime)
	}
	return fmt.Sprintf("expires %s (in %s)", t.Local().Format(time.DateTime), left.Round(time.Second))
}

func prompt(in *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo when stdin is a terminal.
func promptPassword(stdin io.Reader, in *bufio.Reader, w io.Writer) (string, error) {
	f, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return prompt(in, w, "Password: ")
	}

	fmt.Fprint(w, "Password: ")
	b, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
