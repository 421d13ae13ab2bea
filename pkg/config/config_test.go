package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Download.IntervalSeconds != 3 {
		t.Errorf("Expected default interval to be 3, got %d", config.Download.IntervalSeconds)
	}

	if config.Download.RootDirectory != "downloads" {
		t.Errorf("Expected default root directory to be downloads, got %s", config.Download.RootDirectory)
	}

	if config.Download.RequestTimeout != 0 {
		t.Errorf("Expected no default request timeout, got %v", config.Download.RequestTimeout)
	}

	if config.Fantia.SiteURL != DefaultSiteURL || config.Fantia.APIURL != DefaultAPIURL {
		t.Errorf("Unexpected default URLs: %s %s", config.Fantia.SiteURL, config.Fantia.APIURL)
	}

	if config.Interval() != 3*time.Second {
		t.Errorf("Expected interval duration 3s, got %v", config.Interval())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("FANTIADL_SESSION_ID", " test-session-id ")
	t.Setenv("FANTIADL_FAN_CLUB_ID", "12345")
	t.Setenv("FANTIADL_INTERVAL_SECONDS", "7")
	t.Setenv("FANTIADL_ROOT_DIR", "/tmp/test-downloads")
	t.Setenv("FANTIADL_LOG_LEVEL", "debug")
	t.Setenv("FANTIADL_LOG_FILE", "")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Fantia.SessionID != "test-session-id" {
		t.Errorf("Expected trimmed session ID, got %q", config.Fantia.SessionID)
	}
	if config.Fantia.FanClubID != "12345" {
		t.Errorf("Expected fan club ID 12345, got %s", config.Fantia.FanClubID)
	}
	if config.Download.IntervalSeconds != 7 {
		t.Errorf("Expected interval 7, got %d", config.Download.IntervalSeconds)
	}
	if config.Download.RootDirectory != "/tmp/test-downloads" {
		t.Errorf("Expected root directory /tmp/test-downloads, got %s", config.Download.RootDirectory)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", config.Logging.Level)
	}
	if config.Logging.File != "" {
		t.Errorf("Expected empty log file to disable file output, got %s", config.Logging.File)
	}
}

func TestLoadFromEnvInvalidInterval(t *testing.T) {
	t.Setenv("FANTIADL_INTERVAL_SECONDS", "soon")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Error("Expected error for non-numeric interval")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.Fantia.FanClubID = "12345"
		return c
	}

	tests := []struct {
		name      string
		modify    func(c *Config)
		wantError string
	}{
		{
			name:   "valid config",
			modify: func(c *Config) {},
		},
		{
			name:      "missing fan club",
			modify:    func(c *Config) { c.Fantia.FanClubID = "" },
			wantError: "fan club ID is required",
		},
		{
			name:      "fan club with slash",
			modify:    func(c *Config) { c.Fantia.FanClubID = "../etc" },
			wantError: "contains path characters",
		},
		{
			name:      "negative interval",
			modify:    func(c *Config) { c.Download.IntervalSeconds = -1 },
			wantError: "interval cannot be negative",
		},
		{
			name:   "zero interval allowed",
			modify: func(c *Config) { c.Download.IntervalSeconds = 0 },
		},
		{
			name:      "empty root directory",
			modify:    func(c *Config) { c.Download.RootDirectory = "" },
			wantError: "root directory is required",
		},
		{
			name:      "bad site url",
			modify:    func(c *Config) { c.Fantia.SiteURL = "ftp://fantia.jp" },
			wantError: "site URL must be http or https",
		},
		{
			name:      "invalid log level",
			modify:    func(c *Config) { c.Logging.Level = "loud" },
			wantError: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(c)
			err := c.Validate()
			if tt.wantError == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantError)
			}
		})
	}
}

func TestRequireSession(t *testing.T) {
	c := DefaultConfig()
	if err := c.RequireSession(); err == nil {
		t.Error("Expected error for empty session")
	}

	c.Fantia.SessionID = "YOUR_SESSION_ID"
	if err := c.RequireSession(); err == nil {
		t.Error("Expected error for placeholder session")
	}

	c.Fantia.SessionID = "abcdef"
	if err := c.RequireSession(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()

	c := DefaultConfig()
	c.ResolvePaths(base)
	if c.Download.RootDirectory != filepath.Join(base, "downloads") {
		t.Errorf("Expected relative root to resolve against base, got %s", c.Download.RootDirectory)
	}
	if c.Logging.File != filepath.Join(base, "fantiadl.log") {
		t.Errorf("Expected relative log file to resolve against base, got %s", c.Logging.File)
	}

	abs := filepath.Join(base, "elsewhere")
	c = DefaultConfig()
	c.Download.RootDirectory = abs
	c.Logging.File = ""
	c.ResolvePaths("/ignored")
	if c.Download.RootDirectory != abs {
		t.Errorf("Expected absolute root to be kept, got %s", c.Download.RootDirectory)
	}
	if c.Logging.File != "" {
		t.Errorf("Expected empty log file to stay empty, got %s", c.Logging.File)
	}
}

func TestLoadFromFileAndSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `fantia:
  session_id: file-session
  fan_club_id: "777"
download:
  interval_seconds: 10
  root_directory: /data/fantia
  request_timeout: 45s
logging:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	c := DefaultConfig()
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if c.Fantia.SessionID != "file-session" || c.Fantia.FanClubID != "777" {
		t.Errorf("Unexpected fantia section: %+v", c.Fantia)
	}
	if c.Download.IntervalSeconds != 10 || c.Download.RootDirectory != "/data/fantia" {
		t.Errorf("Unexpected download section: %+v", c.Download)
	}
	if c.Download.RequestTimeout != 45*time.Second {
		t.Errorf("Expected 45s timeout, got %v", c.Download.RequestTimeout)
	}
	// untouched keys keep defaults
	if c.Fantia.SiteURL != DefaultSiteURL {
		t.Errorf("Expected default site URL to survive, got %s", c.Fantia.SiteURL)
	}

	savePath := filepath.Join(dir, "nested", "saved.yaml")
	if err := c.Save(savePath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	info, err := os.Stat(savePath)
	if err != nil {
		t.Fatalf("Saved file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	reloaded := DefaultConfig()
	if err := reloaded.LoadFromFile(savePath); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if reloaded.Fantia.FanClubID != "777" || reloaded.Download.RequestTimeout != 45*time.Second {
		t.Errorf("Reloaded config differs: %+v", reloaded)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("fantia: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}

	c := DefaultConfig()
	if err := c.LoadFromFile(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `fantia:
  fan_club_id: "from-file"
download:
  interval_seconds: 5
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FANTIADL_FAN_CLUB_ID", "from-env")
	t.Setenv("FANTIADL_INTERVAL_SECONDS", "")

	flags := map[string]interface{}{
		"interval": 1,
		"output":   "/flag/output",
	}

	c, err := Load(path, flags)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if c.Fantia.FanClubID != "from-env" {
		t.Errorf("Expected env to override file, got %s", c.Fantia.FanClubID)
	}
	if c.Download.IntervalSeconds != 1 {
		t.Errorf("Expected flag to override file, got %d", c.Download.IntervalSeconds)
	}
	if c.Download.RootDirectory != "/flag/output" {
		t.Errorf("Expected flag output directory, got %s", c.Download.RootDirectory)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("download:\n  interval_seconds: 2\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FANTIADL_FAN_CLUB_ID", "")

	if _, err := Load(path, nil); err == nil {
		t.Error("Expected validation error without fan club ID")
	}
}

func TestResolveSkipsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("download:\n  interval_seconds: -1\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FANTIADL_FAN_CLUB_ID", "")

	c, err := Resolve(path, map[string]interface{}{"session-id": "  cookie  "})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if c.Download.IntervalSeconds != -1 {
		t.Errorf("Expected file value to be kept, got %d", c.Download.IntervalSeconds)
	}
	if c.Fantia.SessionID != "cookie" {
		t.Errorf("Expected trimmed flag session, got %q", c.Fantia.SessionID)
	}
	if err := c.Validate(); err == nil {
		t.Error("Expected Validate to reject the resolved config")
	}
}
