package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"fantiadl/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fantiadl [fan_club_id]",
	Short: "Download every image posted to a Fantia fan club",
	Long: `fantiadl walks the post listing of a Fantia fan club and saves the
original file of every image of every post.

Images are written to {download_root}/{fan_club_id}/{post_id}_{yyyymmdd}_{hhmmss}/.
A logged-in browser session cookie (_session_id) is required; store it once
with 'fantiadl auth set' or pass it with --session-id.`,
	Example: `  # Crawl a fan club with the stored session
  fantiadl 12345

  # Same, explicitly
  fantiadl crawl 12345 --output ./archive --interval 5`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.ArbitraryArgs,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			ui.SetColor(false)
		}
		if quiet {
			ui.SetQuiet(true)
		}
	},
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "fantiadl %s\n", version)
		fmt.Fprintf(out, "Commit: %s\n", gitCommit)
		fmt.Fprintf(out, "Built: %s\n", buildDate)
		fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
		fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .fantiadl.yaml or ~/.config/fantiadl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	addCrawlFlags(rootCmd)
	rootCmd.AddCommand(versionCmd)

	// Set here rather than in the literal: isKnownCommand reads rootCmd
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		// A bare fan club ID is shorthand for the crawl command
		if len(args) > 0 && !isKnownCommand(args[0]) {
			return runCrawl(cmd, args)
		}
		return cmd.Help()
	}

	rootCmd.SetVersionTemplate(`fantiadl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

func isKnownCommand(arg string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}
	return false
}
