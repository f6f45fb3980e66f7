// ABOUTME: CLI commands for login, registration and the current session.
// ABOUTME: Passwords come from --password or an interactive prompt.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/harperreed/jetgym/internal/models"
)

var (
	authPassword string
	authImage    string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in, register and manage the session",
	Long: `Manage your jetgym session.

The login token is cached locally for as long as the server says it is valid.
Logging in also caches your workouts so later commands work offline.

COMMANDS:

  login      Log in with email and password
  register   Create an account
  logout     End the session and clear your cached data
  whoami     Show the logged-in user`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), authPassword)
		if err != nil {
			return err
		}

		resp, err := svc.Auth.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		success.Fprintf(out, "✓ Logged in as %s\n", resp.UserData.Name)
		fmt.Fprintf(out, "  %d workouts cached\n", len(resp.Workouts))
		return nil
	},
}

var authRegisterCmd = &cobra.Command{
	Use:   "register <name> <email>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), authPassword)
		if err != nil {
			return err
		}

		msg, err := svc.Auth.Register(cmd.Context(), models.User{
			Name:         args[0],
			Email:        args[1],
			Password:     password,
			ProfileImage: authImage,
		})
		if err != nil {
			return err
		}

		success.Fprintf(cmd.OutOrStdout(), "✓ %s\n", msg.Message)
		fmt.Fprintln(cmd.OutOrStdout(), "Run 'jetgym auth login' to start a session.")
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := svc.Auth.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
		success.Fprintln(cmd.OutOrStdout(), "✓ Logged out")
		return nil
	},
}

var authWhoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := svc.Auth.CurrentUser()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s <%s>\n", user.Name, user.Email)
		fmt.Fprintf(out, "  ID: %d\n", user.ID)
		if user.MembershipStatus != "" {
			fmt.Fprintf(out, "  Membership: %s\n", user.MembershipStatus)
		}
		return nil
	},
}

// readPassword returns flagValue, or prompts for the password on in.
// Terminal input is read without echo.
func readPassword(in io.Reader, prompt io.Writer, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	fmt.Fprint(prompt, "Password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	authLoginCmd.Flags().StringVarP(&authPassword, "password", "p", "", "password (prompted when omitted)")
	authRegisterCmd.Flags().StringVarP(&authPassword, "password", "p", "", "password (prompted when omitted)")
	authRegisterCmd.Flags().StringVar(&authImage, "image", "", "profile image URL")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authRegisterCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authWhoamiCmd)
	rootCmd.AddCommand(authCmd)
}
