// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ytgrab/internal/config"
	"ytgrab/internal/deps"
	"ytgrab/internal/session"
	"ytgrab/internal/ui"
)

// Version is set at build time via ldflags.
var Version = "dev"

// shutdownGrace bounds how long an interrupted menu gets to stop a running
// download before the process exits.
const shutdownGrace = 3 * time.Second

var flagDebug bool

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

// logger writes diagnostics to stderr. User-facing output never goes here.
var logger = zerolog.Nop()

var rootCmd = &cobra.Command{
	Use:   "ytgrab",
	Short: "Download YouTube videos, playlists and channels",
	Long: `ytgrab is an interactive front end for yt-dlp.
Pick what to download from a menu, paste a URL, choose a format and ytgrab
builds a hardened yt-dlp command, with a simplified retry if it fails.`,
	Args:              cobra.NoArgs,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              rootRun,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < env < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagDebug {
		cfg.Debug = true
	}

	level := zerolog.InfoLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Str("app", config.AppName).
		Logger()

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...any) {
	logger.Debug().Msgf(format, args...)
}

func rootRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	term := ui.Stdout()
	styles := ui.NewStyles(term.Out, term.Interactive)

	dir, err := cfg.ExpandDownloadDir()
	if err != nil {
		return err
	}
	showWelcome(term, styles, dir)

	downloader, err := checkDependencies(ctx, term, styles)
	if err != nil {
		return err
	}
	if cfg.AutoUpdate {
		updateDownloader(ctx, term, styles, downloader)
	}

	sess, err := session.New(session.Options{
		Config:     cfg,
		Downloader: downloader,
		Logger:     logger,
		Terminal:   term,
		Styles:     &styles,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn().Err(err).Msg("cleanup failed")
		}
	}()

	m := &menu{
		prompt:  ui.NewPrompter(os.Stdin, term.Out, styles),
		grabber: sess,
		dir:     sess.DownloadDir,
		format:  sess.Format,
	}

	done := make(chan error, 1)
	go func() { done <- m.run(ctx) }()

	err = awaitMenu(ctx, m, done, shutdownGrace)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintf(term.Out, "\n\n%s\n", styles.Warning.Render("Program interrupted by user. Exiting..."))
		return nil
	}
	return err
}

func showWelcome(term ui.Terminal, styles ui.Styles, dir string) {
	rule := styles.Title.Render(strings.Repeat("=", 50))
	fmt.Fprintf(term.Out, "\n%s\n", rule)
	fmt.Fprintln(term.Out, styles.Title.Render(fmt.Sprintf("  %s %s - YouTube Content Downloader", config.AppName, Version)))
	fmt.Fprintln(term.Out, rule)
	fmt.Fprintln(term.Out, styles.Warning.Render("Download videos, playlists, and channels with ease"))
	fmt.Fprintf(term.Out, "Downloads will be saved to: %s\n\n", styles.Success.Render(dir))
}

// checkDependencies reports on the downloader and ffmpeg and returns the
// downloader executable to use for this run.
func checkDependencies(ctx context.Context, term ui.Terminal, styles ui.Styles) (string, error) {
	fmt.Fprintln(term.Out, styles.Bold.Render("Checking dependencies..."))

	checker := deps.NewChecker(cfg.Downloader, cfg.FFmpeg, cfg.AutoInstall, logger)

	var (
		report deps.Report
		err    error
	)
	ui.Spin(term, styles, "Looking for "+cfg.Downloader+"...", func() {
		report, err = checker.Check(ctx)
	})
	if err != nil {
		fmt.Fprintln(term.Out, styles.Error.Render(fmt.Sprintf("✗ Failed to install %s. Please install it manually with 'pip install yt-dlp'", cfg.Downloader)))
		return "", err
	}

	if report.Installed {
		fmt.Fprintln(term.Out, styles.Success.Render(fmt.Sprintf("✓ %s installed successfully", cfg.Downloader)))
	} else {
		fmt.Fprintln(term.Out, styles.Success.Render(fmt.Sprintf("✓ %s is installed", cfg.Downloader)))
	}
	debugf("downloader: %s", report.Downloader)

	if report.FFmpegMissing() {
		fmt.Fprintln(term.Out, styles.Warning.Render("⚠ FFmpeg not found. Some features may not work properly."))
		fmt.Fprintln(term.Out, styles.Warning.Render("  Please install FFmpeg from https://ffmpeg.org/download.html"))
	} else {
		fmt.Fprintln(term.Out, styles.Success.Render("✓ FFmpeg is installed"))
	}

	return report.Downloader, nil
}

func updateDownloader(ctx context.Context, term ui.Terminal, styles ui.Styles, executable string) {
	fmt.Fprintln(term.Out, styles.Bold.Render(fmt.Sprintf("Updating %s to latest version...", cfg.Downloader)))

	var err error
	ui.Spin(term, styles, "Updating...", func() {
		err = deps.Update(ctx, executable)
	})
	if err != nil {
		logger.Warn().Err(err).Msg("update failed")
		fmt.Fprintln(term.Out, styles.Warning.Render(fmt.Sprintf("⚠ Could not update %s, continuing anyway", cfg.Downloader)))
		return
	}
	fmt.Fprintln(term.Out, styles.Success.Render(fmt.Sprintf("✓ %s updated successfully", cfg.Downloader)))
}

// awaitMenu waits for the menu to finish. After ctx is cancelled it returns
// at once if the menu is blocked on a prompt, since a stdin read cannot be
// interrupted. A running download is killed through ctx and given up to
// grace to return.
func awaitMenu(ctx context.Context, m *menu, done <-chan error, grace time.Duration) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	if !m.working() {
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-time.After(grace):
		return ctx.Err()
	}
}
