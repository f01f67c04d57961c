package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nutriplan/portal/pkg/claims"
)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the portal",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}

		email, _ := cmd.Flags().GetString("email")
		superadmin, _ := cmd.Flags().GetBool("superadmin")
		stdin := bufio.NewReader(cmd.InOrStdin())

		if email == "" {
			fmt.Fprint(cmd.OutOrStdout(), "email: ")
			line, err := stdin.ReadString('\n')
			if err != nil {
				return err
			}
			email = strings.TrimSpace(line)
		}
		if email == "" {
			return errors.New("email is required")
		}

		password, err := promptPassword(cmd, stdin)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if superadmin {
			err = a.accounts.SuperadminLogin(ctx, email, password)
		} else {
			err = a.accounts.Login(ctx, email, password)
		}
		if err != nil {
			return err
		}

		id := a.sessions.Identity()
		fmt.Fprintln(cmd.OutOrStdout(), a.tr.T(a.locale, "cli.signed_in", "email", id.Email, "role", string(id.Role)))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and discard stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		a.accounts.Logout(cmd.Context())
		fmt.Fprintln(cmd.OutOrStdout(), a.tr.T(a.locale, "cli.signed_out"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		if err := a.requireSession(cmd); err != nil {
			return err
		}

		id := a.sessions.Identity()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "email:        %s\n", id.Email)
		fmt.Fprintf(out, "role:         %s\n", id.Role)
		if id.SubscriptionStatus != "" {
			fmt.Fprintf(out, "subscription: %s\n", id.SubscriptionStatus)
		}
		if id.IsCanceled {
			fmt.Fprintln(out, "canceled:     yes")
		}
		if id.Role == claims.RoleSuperadmin || id.IsSuperuser {
			fmt.Fprintln(out, "superadmin:   yes")
		}
		fmt.Fprintf(out, "token expiry: %s\n", id.ExpiresAt.Format("2006-01-02 15:04 MST"))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringP("email", "e", "", "account email (prompted when omitted)")
	loginCmd.Flags().Bool("superadmin", false, "sign in to the operator area")
}

func promptPassword(cmd *cobra.Command, stdin *bufio.Reader) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "password: ")
	defer fmt.Fprintln(cmd.OutOrStdout())

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := readPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	// Piped input, e.g. in tests or scripts.
	line, err := stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
