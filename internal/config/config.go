// Package config handles TOML-based configuration loading and validation.
// Values come from defaults, then the config file, then YTGRAB_* environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v10"

	"ytgrab/internal/media"
)

// AppName names the config and data directories.
const AppName = "ytgrab"

// Config holds all application configuration.
type Config struct {
	DownloadDir   string        `toml:"download_dir" env:"YTGRAB_DOWNLOAD_DIR"`
	Downloader    string        `toml:"downloader" env:"YTGRAB_DOWNLOADER"`
	FFmpeg        string        `toml:"ffmpeg" env:"YTGRAB_FFMPEG"`
	DefaultFormat string        `toml:"default_format" env:"YTGRAB_DEFAULT_FORMAT"`
	ProbeTimeout  time.Duration `toml:"probe_timeout" env:"YTGRAB_PROBE_TIMEOUT"`
	AutoInstall   bool          `toml:"auto_install" env:"YTGRAB_AUTO_INSTALL"`
	AutoUpdate    bool          `toml:"auto_update" env:"YTGRAB_AUTO_UPDATE"`
	History       bool          `toml:"history" env:"YTGRAB_HISTORY"`
	Debug         bool          `toml:"debug" env:"YTGRAB_DEBUG"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DownloadDir:   "Downloads",
		Downloader:    "yt-dlp",
		FFmpeg:        "ffmpeg",
		DefaultFormat: string(media.FormatBest),
		ProbeTimeout:  30 * time.Second,
		AutoInstall:   true,
		AutoUpdate:    false,
		History:       true,
		Debug:         false,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file, merges it over defaults and applies
// environment overrides. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err == nil {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if _, err := media.ParseFormat(c.DefaultFormat); err != nil {
		return fmt.Errorf("default_format: %w", err)
	}
	if strings.TrimSpace(c.Downloader) == "" {
		return fmt.Errorf("downloader cannot be empty")
	}
	if strings.TrimSpace(c.FFmpeg) == "" {
		return fmt.Errorf("ffmpeg cannot be empty")
	}
	if c.DownloadDir == "" {
		return fmt.Errorf("download_dir cannot be empty")
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("probe_timeout must be positive, got %s", c.ProbeTimeout)
	}
	return nil
}

// Format returns the validated default format.
func (c *Config) Format() media.Format {
	f, err := media.ParseFormat(c.DefaultFormat)
	if err != nil {
		return media.FormatBest
	}
	return f
}

// ExpandDownloadDir resolves ~ in the download directory path and makes it
// absolute. Relative paths are relative to the working directory.
func (c *Config) ExpandDownloadDir() (string, error) {
	dir := c.DownloadDir
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}
	return filepath.Abs(dir)
}

// HistoryPath returns the path to the download history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, AppName, "history.db"), nil
}
