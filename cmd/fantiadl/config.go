package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"fantiadl/pkg/auth"
	"fantiadl/pkg/config"
	"fantiadl/pkg/ui"
)

const defaultConfigPath = ".fantiadl.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage fantiadl configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (FANTIADL_*)
  - .env or ~/.fantiadl.env
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created in the current directory as '.fantiadl.yaml'
unless a different path is specified with the --config flag.`,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging every source.
The session cookie is masked.`,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate [fan_club_id]",
	Short: "Validate the effective configuration",
	Long: `Validate the configuration for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields
  - Value ranges and URLs
  - Whether the download root and log directory can be created`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# fantiadl configuration file
#
# Every value can also be set through FANTIADL_* environment variables,
# for example FANTIADL_SESSION_ID or FANTIADL_INTERVAL_SECONDS.

fantia:
  # Value of the _session_id cookie of a logged-in browser session.
  # Prefer 'fantiadl auth set' over keeping it in this file.
  session_id: "YOUR_SESSION_ID"

  # Fan club to crawl when none is given on the command line
  fan_club_id: ""

  # User agent sent with every request
  user_agent: ""

  site_url: "https://fantia.jp"
  api_url: "https://fantia.jp/api/v1"

download:
  # Seconds to wait before each image
  interval_seconds: 3

  # Images go to {root_directory}/{fan_club_id}/{post_id}_{yyyymmdd}_{hhmmss}/
  # Relative paths are resolved against the directory of the executable.
  root_directory: "downloads"

  # Per-request timeout, e.g. 30s. 0 waits forever.
  request_timeout: 0s

logging:
  # debug, info, warn, error
  level: "info"

  # Plain-text copy of the console log. Empty disables it.
  file: "fantiadl.log"

  no_color: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s (remove it first to start over)", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "1. Store your session cookie with 'fantiadl auth set'")
	fmt.Fprintln(out, "2. Run 'fantiadl config validate <fan_club_id>' to check the configuration")
	fmt.Fprintln(out, "3. Start downloading with 'fantiadl crawl <fan_club_id>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(configFile, nil)
	if err != nil {
		return err
	}

	display := *cfg
	display.Fantia.SessionID = auth.MaskString(display.Fantia.SessionID)

	data, err := yaml.Marshal(&display)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintln(out, "2. Environment variables (FANTIADL_*)")
	if configFile != "" {
		fmt.Fprintf(out, "3. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(out, "3. Configuration file: (searched in default locations)")
	}
	fmt.Fprintln(out, "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	flags := make(map[string]interface{})
	if len(args) > 0 {
		flags["fan-club-id"] = args[0]
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return err
	}
	if dir, err := config.ProgramDir(); err == nil {
		cfg.ResolvePaths(dir)
	}

	var warnings []string
	var problems []error

	if cfg.RequireSession() != nil {
		warnings = append(warnings, "session ID not configured; a stored session will be used")
	}
	if err := os.MkdirAll(cfg.Download.RootDirectory, 0755); err != nil {
		problems = append(problems, fmt.Errorf("cannot create download root: %w", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Errorf("cannot create log directory: %w", err))
		}
	}

	if len(problems) > 0 {
		return errors.Join(problems...)
	}

	for _, w := range warnings {
		ui.PrintWarning(w)
	}
	ui.PrintSuccess("Configuration is valid")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Fan club: %s\n", cfg.Fantia.FanClubID)
	fmt.Fprintf(out, "  Download root: %s\n", cfg.Download.RootDirectory)
	fmt.Fprintf(out, "  Interval: %ds per image\n", cfg.Download.IntervalSeconds)
	fmt.Fprintf(out, "  Request timeout: %s\n", cfg.Download.RequestTimeout)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
