package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the fan club downloader
type Config struct {
	// Site and credentials
	Fantia FantiaConfig `yaml:"fantia" json:"fantia"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// FantiaConfig holds site-specific configuration
type FantiaConfig struct {
	SessionID string `yaml:"session_id" json:"session_id"`
	FanClubID string `yaml:"fan_club_id" json:"fan_club_id"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	SiteURL   string `yaml:"site_url" json:"site_url"`
	APIURL    string `yaml:"api_url" json:"api_url"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	// IntervalSeconds is slept once before every image
	IntervalSeconds int           `yaml:"interval_seconds" json:"interval_seconds"`
	RootDirectory   string        `yaml:"root_directory" json:"root_directory"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	File    string `yaml:"file" json:"file"`
	NoColor bool   `yaml:"no_color" json:"no_color"`

	// DisableConsole keeps events off stdout while a full-screen UI owns it
	DisableConsole bool `yaml:"-" json:"-"`
}

const (
	DefaultSiteURL   = "https://fantia.jp"
	DefaultAPIURL    = "https://fantia.jp/api/v1"
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"
)

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Fantia: FantiaConfig{
			UserAgent: DefaultUserAgent,
			SiteURL:   DefaultSiteURL,
			APIURL:    DefaultAPIURL,
		},
		Download: DownloadConfig{
			IntervalSeconds: 3,
			RootDirectory:   "downloads",
			RequestTimeout:  0, // no timeout
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "fantiadl.log",
		},
	}
}

// Interval returns the per-image pacing delay
func (c *Config) Interval() time.Duration {
	return time.Duration(c.Download.IntervalSeconds) * time.Second
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if sessionID := os.Getenv("FANTIADL_SESSION_ID"); sessionID != "" {
		c.Fantia.SessionID = strings.TrimSpace(sessionID)
	}
	if fanClubID := os.Getenv("FANTIADL_FAN_CLUB_ID"); fanClubID != "" {
		c.Fantia.FanClubID = strings.TrimSpace(fanClubID)
	}
	if userAgent := os.Getenv("FANTIADL_USER_AGENT"); userAgent != "" {
		c.Fantia.UserAgent = userAgent
	}

	if interval := os.Getenv("FANTIADL_INTERVAL_SECONDS"); interval != "" {
		val, err := strconv.Atoi(strings.TrimSpace(interval))
		if err != nil {
			return fmt.Errorf("invalid FANTIADL_INTERVAL_SECONDS %q: %w", interval, err)
		}
		c.Download.IntervalSeconds = val
	}
	if rootDir := os.Getenv("FANTIADL_ROOT_DIR"); rootDir != "" {
		c.Download.RootDirectory = rootDir
	}

	if logLevel := os.Getenv("FANTIADL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := os.LookupEnv("FANTIADL_LOG_FILE"); ok {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home, _ := os.UserHomeDir()
	locations := []string{
		".fantiadl.yaml",
		".fantiadl.yml",
		filepath.Join(home, ".config", "fantiadl", "config.yaml"),
		filepath.Join(home, ".config", "fantiadl", "config.yml"),
		filepath.Join(home, ".fantiadl.yaml"),
		filepath.Join(home, ".fantiadl.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
// The session ID is not checked here since it may still come from a
// credential store; see RequireSession.
func (c *Config) Validate() error {
	var errs []error

	if c.Fantia.FanClubID == "" {
		errs = append(errs, errors.New("fan club ID is required"))
	} else if strings.ContainsAny(c.Fantia.FanClubID, `/\?#`) {
		errs = append(errs, fmt.Errorf("fan club ID %q contains path characters", c.Fantia.FanClubID))
	}
	if err := validateBaseURL("site URL", c.Fantia.SiteURL); err != nil {
		errs = append(errs, err)
	}
	if err := validateBaseURL("API URL", c.Fantia.APIURL); err != nil {
		errs = append(errs, err)
	}

	if c.Download.IntervalSeconds < 0 {
		errs = append(errs, errors.New("download interval cannot be negative"))
	}
	if c.Download.RootDirectory == "" {
		errs = append(errs, errors.New("download root directory is required"))
	}
	if c.Download.RequestTimeout < 0 {
		errs = append(errs, errors.New("request timeout cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// RequireSession reports an error when no session cookie has been supplied
func (c *Config) RequireSession() error {
	if c.Fantia.SessionID == "" || c.Fantia.SessionID == "YOUR_SESSION_ID" {
		return errors.New("session ID is required")
	}
	return nil
}

func validateBaseURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be http or https, got %q", name, raw)
	}
	return nil
}

// ResolvePaths makes relative download and log paths absolute against
// baseDir, which is normally the directory holding the executable.
func (c *Config) ResolvePaths(baseDir string) {
	c.Download.RootDirectory = resolveAgainst(baseDir, c.Download.RootDirectory)
	if c.Logging.File != "" {
		c.Logging.File = resolveAgainst(baseDir, c.Logging.File)
	}
}

func resolveAgainst(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ProgramDir returns the directory of the running executable
func ProgramDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if sessionID, ok := flags["session-id"].(string); ok && sessionID != "" {
		c.Fantia.SessionID = strings.TrimSpace(sessionID)
	}
	if fanClubID, ok := flags["fan-club-id"].(string); ok && fanClubID != "" {
		c.Fantia.FanClubID = strings.TrimSpace(fanClubID)
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Download.RootDirectory = outputDir
	}
	if interval, ok := flags["interval"].(int); ok && interval >= 0 {
		c.Download.IntervalSeconds = interval
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if noColor, ok := flags["no-color"].(bool); ok && noColor {
		c.Logging.NoColor = true
	}
}

// Resolve gathers configuration from all sources without validating it.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Resolve(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	home, _ := os.UserHomeDir()
	_ = godotenv.Load(".env")
	if home != "" {
		_ = godotenv.Load(filepath.Join(home, ".fantiadl.env"))
	}

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	return config, nil
}

// Load resolves configuration from all sources and validates the result
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	config, err := Resolve(configPath, flags)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
