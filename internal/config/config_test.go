package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgrab/internal/media"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DownloadDir != "Downloads" {
		t.Errorf("default download dir = %q, want Downloads", cfg.DownloadDir)
	}
	if cfg.Downloader != "yt-dlp" {
		t.Errorf("default downloader = %q, want yt-dlp", cfg.Downloader)
	}
	if cfg.Format() != media.FormatBest {
		t.Errorf("default format = %q, want best", cfg.Format())
	}
	if !cfg.History {
		t.Error("default history should be true")
	}
	if !cfg.AutoInstall {
		t.Error("default auto_install should be true")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"invalid format", func(c *Config) { c.DefaultFormat = "flac" }, true},
		{"empty downloader", func(c *Config) { c.Downloader = " " }, true},
		{"empty ffmpeg", func(c *Config) { c.FFmpeg = "" }, true},
		{"empty download dir", func(c *Config) { c.DownloadDir = "" }, true},
		{"zero probe timeout", func(c *Config) { c.ProbeTimeout = 0 }, true},
		{"valid audio", func(c *Config) { c.DefaultFormat = "audio" }, false},
		{"valid custom binary", func(c *Config) { c.Downloader = "/opt/yt-dlp" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, content string) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	dir := filepath.Join(tmpDir, AppName)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644))
}

func TestLoadFromTOML(t *testing.T) {
	writeConfig(t, `
download_dir = "/srv/media"
downloader = "/usr/local/bin/yt-dlp"
default_format = "audio"
probe_timeout = "5s"
history = false
auto_install = false
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/media", cfg.DownloadDir)
	assert.Equal(t, "/usr/local/bin/yt-dlp", cfg.Downloader)
	assert.Equal(t, media.FormatAudio, cfg.Format())
	assert.Equal(t, 5*time.Second, cfg.ProbeTimeout)
	assert.False(t, cfg.History)
	assert.False(t, cfg.AutoInstall)
	assert.Equal(t, "ffmpeg", cfg.FFmpeg, "unset keys keep defaults")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	writeConfig(t, `
default_format = "audio"
debug = false
`)
	t.Setenv("YTGRAB_DEFAULT_FORMAT", "video")
	t.Setenv("YTGRAB_DEBUG", "true")
	t.Setenv("YTGRAB_PROBE_TIMEOUT", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, media.FormatVideo, cfg.Format())
	assert.True(t, cfg.Debug)
	assert.Equal(t, time.Minute, cfg.ProbeTimeout)
}

func TestLoadInvalidFile(t *testing.T) {
	writeConfig(t, `default_format = "flac"`)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}
	if cfg.Downloader != "yt-dlp" {
		t.Errorf("missing file should return defaults, got downloader = %q", cfg.Downloader)
	}
}

func TestExpandDownloadDir(t *testing.T) {
	cfg := Default()
	cfg.DownloadDir = "/tmp/test-downloads"

	dir, err := cfg.ExpandDownloadDir()
	if err != nil {
		t.Fatalf("ExpandDownloadDir() error: %v", err)
	}
	if dir != "/tmp/test-downloads" {
		t.Errorf("got %q, want /tmp/test-downloads", dir)
	}
}

func TestExpandDownloadDirRelative(t *testing.T) {
	cfg := Default()
	wd, err := os.Getwd()
	require.NoError(t, err)

	dir, err := cfg.ExpandDownloadDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "Downloads"), dir)
}

func TestHistoryPath(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	path, err := HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "ytgrab", "history.db"), path)
}
