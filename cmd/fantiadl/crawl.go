package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fantiadl/pkg/auth"
	"fantiadl/pkg/config"
	"fantiadl/pkg/logger"
	"fantiadl/pkg/scraper"
	"fantiadl/pkg/ui"
	"fantiadl/pkg/ui/tui"
)

var (
	// Crawl command flags
	outputDir     string
	interval      int
	sessionIDFlag string
	profileName   string
	useTUI        bool
	notify        bool
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl [fan_club_id]",
	Short: "Download every image of a fan club",
	Long: `Download the original file of every image in every post of a fan club.

The fan club ID may also come from the configuration file or
FANTIADL_FAN_CLUB_ID. The session cookie is taken from, in order:
  - the --session-id flag
  - FANTIADL_SESSION_ID or the configuration file
  - the stored session of --profile (see 'fantiadl auth set')

Pages, posts and images are processed one at a time, sleeping the
configured interval before each image. The first error stops the crawl
and the command exits with status 1. Re-running overwrites existing files.`,
	Example: `  # Crawl with the default stored session
  fantiadl crawl 12345

  # Use a named session profile and a slower pace
  fantiadl crawl 12345 --profile alt --interval 10

  # Follow progress in a full-screen dashboard
  fantiadl crawl 12345 --tui`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCrawl,
}

func init() {
	rootCmd.AddCommand(crawlCmd)
	addCrawlFlags(crawlCmd)
}

// addCrawlFlags registers the crawl flags on cmd. The root command carries
// them too so "fantiadl <id> --output x" works without the subcommand.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "download root directory (default: downloads next to the executable)")
	cmd.Flags().IntVar(&interval, "interval", 3, "seconds to wait before each image")
	cmd.Flags().StringVar(&sessionIDFlag, "session-id", "", "value of the _session_id cookie")
	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "stored session profile to use")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "show an interactive progress dashboard")
	cmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the crawl ends")
}

func runCrawl(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if len(args) > 0 {
		flags["fan-club-id"] = strings.TrimSpace(args[0])
	}
	if cmd.Flags().Changed("interval") {
		flags["interval"] = interval
	}
	if sessionIDFlag != "" {
		flags["session-id"] = sessionIDFlag
	}
	if cmd.Flags().Changed("log-level") {
		flags["log-level"] = logLevel
	} else if quiet {
		flags["log-level"] = "error"
	}
	if noColor {
		flags["no-color"] = true
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}

	// Relative paths from the config file are anchored at the executable;
	// --output is taken relative to the working directory.
	if dir, err := config.ProgramDir(); err == nil {
		cfg.ResolvePaths(dir)
	}
	if outputDir != "" {
		abs, err := filepath.Abs(outputDir)
		if err != nil {
			return fmt.Errorf("invalid output directory: %w", err)
		}
		cfg.Download.RootDirectory = abs
	}

	if useTUI {
		cfg.Logging.DisableConsole = true
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithField("version", version)

	if err := resolveSession(cfg, log); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg, log)
	if err != nil {
		return err
	}

	log.InfoWithFields("crawl requested", map[string]interface{}{
		"fan_club":   cfg.Fantia.FanClubID,
		"root":       cfg.Download.RootDirectory,
		"interval_s": cfg.Download.IntervalSeconds,
	})

	var summary *scraper.Summary
	if useTUI {
		summary, err = crawlWithTUI(ctx, s, cfg.Fantia.FanClubID)
	} else {
		ui.PrintBanner()
		ui.PrintInfo("Fan club", cfg.Fantia.FanClubID)
		ui.PrintInfo("Saving to", filepath.Join(cfg.Download.RootDirectory, cfg.Fantia.FanClubID))
		summary, err = s.Run(ctx)
	}

	var notifier *ui.Notifier
	if notify {
		notifier = ui.NewNotifier()
	}

	if err != nil {
		if nerr := notifier.SendError("fantiadl", err.Error()); nerr != nil {
			log.WithError(nerr).Debug("desktop notification failed")
		}
		return fmt.Errorf("crawl of fan club %s failed: %w", cfg.Fantia.FanClubID, err)
	}

	message := fmt.Sprintf("Saved %d images (%s) from %d posts on %d pages in %s",
		summary.Images, ui.FormatBytes(summary.Bytes), summary.Posts, summary.Pages, summary.Duration.Round(time.Millisecond))
	if !useTUI {
		ui.PrintSuccess(message)
	}
	if nerr := notifier.SendSuccess("fantiadl", message); nerr != nil {
		log.WithError(nerr).Debug("desktop notification failed")
	}
	return nil
}

// resolveSession fills cfg.Fantia.SessionID from the credential store when
// neither the flag nor the environment or config file supplied one
func resolveSession(cfg *config.Config, log logger.Logger) error {
	if sessionIDFlag != "" {
		log.Debug("using session from --session-id")
		return nil
	}
	if profileName == "" && cfg.RequireSession() == nil {
		log.Debug("using session from configuration")
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	session, err := manager.Retrieve(profileName)
	if err != nil {
		return fmt.Errorf("no session cookie found (run 'fantiadl auth set' or pass --session-id): %w", err)
	}

	cfg.Fantia.SessionID = session.SessionID
	if session.UserAgent != "" {
		cfg.Fantia.UserAgent = session.UserAgent
	}
	log.WithField("profile", session.Profile).Info("using stored session")
	return nil
}

// crawlWithTUI runs the crawl in a goroutine while the dashboard owns the
// terminal. Quitting the dashboard cancels the crawl.
func crawlWithTUI(ctx context.Context, s *scraper.Scraper, fanClubID string) (*scraper.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dashboard := tui.NewTUI(fanClubID)
	s.SetTUI(dashboard)

	type result struct {
		summary *scraper.Summary
		err     error
	}
	done := make(chan result, 1)

	go func() {
		var res result
		defer func() {
			if r := recover(); r != nil {
				res.err = fmt.Errorf("crawl panicked: %v\n%s", r, debug.Stack())
			}
			dashboard.Finish(res.err)
			done <- res
		}()
		res.summary, res.err = s.Run(ctx)
	}()

	uiErr := dashboard.Run()
	if uiErr != nil || dashboard.Model().UserQuit() {
		cancel()
	}

	res := <-done
	if uiErr != nil {
		logger.WithError(uiErr).Error("dashboard failed")
	}
	if res.err == nil && dashboard.Model().UserQuit() {
		res.err = context.Canceled
	}
	return res.summary, res.err
}
