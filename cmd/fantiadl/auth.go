package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fantiadl/pkg/auth"
	"fantiadl/pkg/ui"
)

var (
	userAgentFlag string
	clearAll      bool
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored session cookie",
	Long: `Manage the _session_id cookie used to access fan club posts.

fantiadl never logs in by itself. Copy the cookie from a browser where you
are logged into fantia.jp and store it here. Sessions are kept in:
  - the system keychain (when available)
  - an encrypted file protected with a PBKDF2 derived key
FANTIADL_SESSION_ID is read as well but never written.

Never share your session cookie or config files!`,
}

// setCmd represents the auth set command
var setCmd = &cobra.Command{
	Use:   "set [profile]",
	Short: "Store a session cookie",
	Long: `Store the value of the _session_id cookie under a profile name
(default: "default").

To find the value:
1. Log into fantia.jp in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies > https://fantia.jp
4. Copy the value of _session_id

The value is read without echo. It can also be piped on stdin.`,
	Example: `  # Interactive
  fantiadl auth set

  # Second account with its own browser User-Agent
  fantiadl auth set alt --user-agent "Mozilla/5.0 ..."

  # From a file
  fantiadl auth set < cookie.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthSet,
}

// clearCmd represents the auth clear command
var clearCmd = &cobra.Command{
	Use:   "clear [profile]",
	Short: "Remove a stored session cookie",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuthClear,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:     "status [profile]",
	Aliases: []string{"list"},
	Short:   "Show stored sessions with the cookie masked",
	Args:    cobra.MaximumNArgs(1),
	RunE:    runAuthStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(setCmd)
	authCmd.AddCommand(clearCmd)
	authCmd.AddCommand(statusCmd)

	setCmd.Flags().StringVar(&userAgentFlag, "user-agent", "", "User-Agent of the browser the cookie came from")
	clearCmd.Flags().BoolVar(&clearAll, "all", false, "remove every stored profile")
}

func profileArg(args []string) string {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0])
	}
	return auth.DefaultProfile
}

func runAuthSet(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	profile := profileArg(args)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(cmd.OutOrStdout(), "_session_id cookie value for profile %q: ", profile)
	}
	sessionID, err := readSecret(os.Stdin)
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to read session cookie: %w", err)
	}
	if sessionID == "" {
		return errors.New("session cookie is empty")
	}

	session := &auth.Session{
		Profile:   profile,
		SessionID: sessionID,
		UserAgent: strings.TrimSpace(userAgentFlag),
	}
	if err := manager.Store(session); err != nil {
		return err
	}

	ui.PrintSuccess(fmt.Sprintf("Session stored for profile %q (%s)", profile, auth.MaskString(sessionID)))
	if profile != auth.DefaultProfile {
		ui.PrintInfo("Use it with", "fantiadl crawl <fan_club_id> --profile "+profile)
	}
	return nil
}

func runAuthClear(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	profiles := []string{profileArg(args)}
	if clearAll {
		sessions, err := manager.List()
		if err != nil {
			return err
		}
		profiles = profiles[:0]
		for _, s := range sessions {
			profiles = append(profiles, s.Profile)
		}
		if len(profiles) == 0 {
			ui.PrintWarning("No stored sessions")
			return nil
		}
	}

	for _, profile := range profiles {
		if err := manager.Delete(profile); err != nil {
			return err
		}
		ui.PrintSuccess("Session removed: " + profile)
	}
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	var sessions []*auth.Session
	if len(args) > 0 {
		session, err := manager.Retrieve(profileArg(args))
		if err != nil {
			return err
		}
		sessions = append(sessions, session)
	} else if sessions, err = manager.List(); err != nil {
		return err
	}

	if len(sessions) == 0 {
		ui.PrintWarning("No stored sessions", "run 'fantiadl auth set' to add one")
		return nil
	}

	out := cmd.OutOrStdout()
	ui.PrintHighlight("Stored Sessions")
	for _, session := range sessions {
		s := auth.SanitizeSession(session)
		fmt.Fprintf(out, "\n%s\n", ui.Cyan(s.Profile))
		fmt.Fprintf(out, "   Session ID: %s\n", s.SessionID)
		if s.UserAgent != "" {
			fmt.Fprintf(out, "   User Agent: %s\n", s.UserAgent)
		}
		if s.LastModified.IsZero() {
			fmt.Fprintln(out, "   Source: environment")
		} else {
			fmt.Fprintf(out, "   Last Modified: %s\n", s.LastModified.Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

// readSecret reads one value from r, without echo when r is a terminal
func readSecret(r *os.File) (string, error) {
	if fd := int(r.Fd()); term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
