package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Resync policies applied after a successful save.
const (
	ResyncDiscard  = "discard"
	ResyncPreserve = "preserve"
)

// DefaultServerAddr is the backend the reviewer talks to when nothing else
// is configured.
const DefaultServerAddr = "http://127.0.0.1:5000"

// Config holds the reviewer configuration
type Config struct {
	ServerAddr            string `toml:"server_addr"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`

	// ResyncPolicy controls what happens to unsaved edits on other rows
	// when a save triggers a reload: "discard" or "preserve".
	ResyncPolicy string `toml:"resync_policy"`
	// ConfirmDiscard makes the TUI ask before a save that would drop
	// unsaved edits on other rows.
	ConfirmDiscard bool `toml:"confirm_discard"`

	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`
	Reviewer string `toml:"reviewer"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		ServerAddr:            DefaultServerAddr,
		RequestTimeoutSeconds: 10,
		ResyncPolicy:          ResyncDiscard,
		ConfirmDiscard:        true,
		LogLevel:              "info",
	}
}

// RequestTimeout returns the HTTP timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// LogPath returns the configured log file, defaulting to the data dir.
func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(DataDir(), "hrreview.log")
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	switch c.ResyncPolicy {
	case ResyncDiscard, ResyncPreserve:
	default:
		return fmt.Errorf("resync_policy must be %q or %q, got %q", ResyncDiscard, ResyncPreserve, c.ResyncPolicy)
	}
	if c.ServerAddr == "" {
		return fmt.Errorf("server_addr is empty")
	}
	return nil
}

// DataDir returns the hrreview data directory.
// Uses HRREVIEW_DATA_DIR env var if set, otherwise ~/.hrreview
func DataDir() string {
	if dir := os.Getenv("HRREVIEW_DATA_DIR"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hrreview")
}

// GlobalConfigPath returns the path to the global config file
func GlobalConfigPath() string {
	return filepath.Join(DataDir(), "config.toml")
}

// LoadGlobal loads the global configuration from the default path
func LoadGlobal() (*Config, error) {
	return LoadGlobalFrom(GlobalConfigPath())
}

// LoadGlobalFrom loads the configuration from a specific path. A missing
// file yields the defaults. HRREVIEW_SERVER_ADDR overrides server_addr.
func LoadGlobalFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if addr := os.Getenv("HRREVIEW_SERVER_ADDR"); addr != "" {
		cfg.ServerAddr = addr
	}
	cfg.ServerAddr = NormalizeServerAddr(cfg.ServerAddr)
	cfg.ResyncPolicy = strings.ToLower(strings.TrimSpace(cfg.ResyncPolicy))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NormalizeServerAddr adds an http:// scheme when missing and strips a
// trailing slash.
func NormalizeServerAddr(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return addr
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return strings.TrimRight(addr, "/")
}

// SaveGlobal saves the global configuration
func SaveGlobal(cfg *Config) error {
	return SaveGlobalTo(GlobalConfigPath(), cfg)
}

// SaveGlobalTo writes cfg to path via a temp file and rename.
func SaveGlobalTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*.toml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
