// Package deps verifies the external tools the downloader relies on and,
// for the downloader only, attempts a one-time automatic install.
package deps

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"
)

// ErrDownloaderMissing is returned when the downloader is absent and could not
// be installed.
var ErrDownloaderMissing = errors.New("downloader not available")

// Installer fetches a downloader binary and returns its path.
type Installer interface {
	Install(ctx context.Context) (string, error)
}

// LookPathFunc matches exec.LookPath.
type LookPathFunc func(file string) (string, error)

// Report is the outcome of a dependency check.
type Report struct {
	// Downloader is the resolved downloader executable.
	Downloader string
	// Installed is set when the downloader was installed during the check.
	Installed bool
	// FFmpeg is the resolved media processor path, empty if missing.
	FFmpeg string
}

// FFmpegMissing reports whether format merging and audio extraction will be
// unavailable.
func (r Report) FFmpegMissing() bool { return r.FFmpeg == "" }

// Checker looks up the downloader and media processor.
type Checker struct {
	Downloader  string
	FFmpeg      string
	AutoInstall bool
	LookPath    LookPathFunc
	Installer   Installer
	Logger      zerolog.Logger
}

// NewChecker returns a checker using PATH lookups and the upstream installer.
func NewChecker(downloader, ffmpeg string, autoInstall bool, logger zerolog.Logger) *Checker {
	return &Checker{
		Downloader:  downloader,
		FFmpeg:      ffmpeg,
		AutoInstall: autoInstall,
		LookPath:    exec.LookPath,
		Installer:   YtdlpInstaller{},
		Logger:      logger,
	}
}

// Check resolves both tools. A missing downloader triggers exactly one
// install attempt; a missing media processor is reported but not fatal.
func (c *Checker) Check(ctx context.Context) (Report, error) {
	var report Report

	path, err := c.LookPath(c.Downloader)
	switch {
	case err == nil:
		report.Downloader = path
		c.Logger.Debug().Str("path", path).Msg("downloader found")
	case !c.AutoInstall:
		return report, fmt.Errorf("%w: %s not found in PATH", ErrDownloaderMissing, c.Downloader)
	default:
		c.Logger.Info().Str("name", c.Downloader).Msg("downloader not found, installing")
		installed, ierr := c.Installer.Install(ctx)
		if ierr != nil {
			return report, fmt.Errorf("%w: installing %s: %v", ErrDownloaderMissing, c.Downloader, ierr)
		}
		report.Downloader = installed
		report.Installed = true
	}

	if path, err := c.LookPath(c.FFmpeg); err == nil {
		report.FFmpeg = path
	} else {
		c.Logger.Debug().Err(err).Str("name", c.FFmpeg).Msg("media processor not found")
	}

	return report, nil
}

// YtdlpInstaller downloads a pinned downloader release into the user cache.
type YtdlpInstaller struct{}

// Install fetches the downloader and returns the executable path.
func (YtdlpInstaller) Install(ctx context.Context) (string, error) {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return "", err
	}
	return resolved.Executable, nil
}

// Update asks the downloader to update itself. Failures are returned for the
// caller to log; they never block a session.
func Update(ctx context.Context, executable string) error {
	if _, err := ytdlp.New().SetExecutable(executable).Update(ctx); err != nil {
		return fmt.Errorf("updating %s: %w", executable, err)
	}
	return nil
}
