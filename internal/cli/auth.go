package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/campusfinder/internal/api"
	"github.com/idilsaglam/campusfinder/internal/model"
	"github.com/idilsaglam/campusfinder/internal/ui"
)

func (a *app) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in, sign up and manage the saved session",
		Long: `Manage the identity saved in ~/.campusfinder/user.json.

Available subcommands:
  login  - Log in and save the session
  signup - Create an account
  logout - Log out and forget the session
  status - Show the saved session
  whoami - Ask the server who you are`,
	}
	cmd.AddCommand(
		a.loginCmd(),
		a.signupCmd(),
		a.logoutCmd(),
		a.statusCmd(),
		a.whoamiCmd(),
	)
	return cmd
}

// Terminal access, swapped out by tests.
var (
	isTerminal = term.IsTerminal
	readNoEcho = term.ReadPassword
)

// fdReader is stdin when it is a real file.
type fdReader interface {
	io.Reader
	Fd() uintptr
}

// readPassword prompts without echo on a terminal and otherwise takes the
// first line of stdin. A non-empty flag wins.
func (a *app) readPassword(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if f, ok := a.opt.Stdin.(fdReader); ok && isTerminal(f.Fd()) {
		fmt.Fprint(a.opt.Stderr, "Password: ")
		b, err := readNoEcho(f.Fd())
		fmt.Fprintln(a.opt.Stderr)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if len(b) == 0 {
			return "", usagef("password is required")
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(a.opt.Stdin).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", usagef("password is required (--password or stdin)")
		}
		return "", usagef("password is required")
	}
	return line, nil
}

func (a *app) loginCmd() *cobra.Command {
	var creds model.Credentials
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Log in and save the session",
		Example: `  echo "$PASSWORD" | campusfinder auth login --username alice`,
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if creds.Username == "" {
				return usagef("--username is required")
			}
			pw, err := a.readPassword(creds.Password)
			if err != nil {
				return err
			}
			creds.Password = pw

			sess, err := a.client.Login(cmd.Context(), creds)
			if err != nil {
				if api.IsStatus(err, http.StatusUnauthorized) {
					return errors.New("invalid username or password")
				}
				return fmt.Errorf("login: %w", err)
			}
			if err := a.sessions.Set(*sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			ui.OK(a.out(), "Logged in as "+sess.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "password (read from stdin when empty)")
	return cmd
}

func (a *app) signupCmd() *cobra.Command {
	var s model.Signup
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.Username == "" || s.Email == "" {
				return usagef("--username and --email are required")
			}
			pw, err := a.readPassword(s.Password)
			if err != nil {
				return err
			}
			s.Password = pw

			sess, err := a.client.Signup(cmd.Context(), s)
			if err != nil {
				if api.IsStatus(err, http.StatusConflict) {
					return fmt.Errorf("username %q is already taken", s.Username)
				}
				return fmt.Errorf("signup: %w", err)
			}
			if sess == nil {
				ui.OK(a.out(), "Account created")
				ui.Hint(a.out(), "Run: campusfinder auth login --username "+s.Username)
				return nil
			}
			if err := a.sessions.Set(*sess); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			ui.OK(a.out(), "Account created. Logged in as "+sess.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&s.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&s.Email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&s.Password, "password", "p", "", "password (read from stdin when empty)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the session",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.sessions.Get() == nil {
				ui.Hint(a.out(), "Not logged in")
				return nil
			}
			if err := a.client.Logout(cmd.Context()); err != nil {
				a.log.Warn("server logout failed", zap.Error(err))
			}
			if err := a.sessions.Clear(); err != nil {
				return fmt.Errorf("clear session: %w", err)
			}
			ui.OK(a.out(), "Logged out")
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the saved session",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := ui.Current()
			lines := []string{
				t.Title.Render("CampusFinder"),
				"server:  " + a.client.BaseURL(),
				"session: " + a.sessions.Path(),
			}
			if s := a.sessions.Get(); s != nil {
				lines = append(lines, "user:    "+t.Accent.Render(s.Username)+" (id "+s.ID.String()+")")
			} else {
				lines = append(lines, "user:    "+t.Muted.Render("not logged in"))
			}
			fmt.Fprintln(a.out(), ui.Panel(lines))
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Ask the server who you are",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.Me(cmd.Context())
			if err != nil {
				if api.IsStatus(err, http.StatusUnauthorized) {
					return errors.New("the server does not know you")
				}
				return fmt.Errorf("whoami: %w", err)
			}
			fmt.Fprintln(a.out(), s.Username+" (id "+s.ID.String()+")")
			if local := a.sessions.Get(); local == nil || local.ID != s.ID {
				ui.Hint(a.out(), "The saved session differs from the server's.")
			}
			return nil
		},
	}
}
