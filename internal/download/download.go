// Package download runs a request through the downloader: the full command
// first and, if that fails, exactly one reduced fallback command.
package download

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"ytgrab/internal/history"
	"ytgrab/internal/media"
	"ytgrab/internal/relay"
	"ytgrab/internal/ui"
	"ytgrab/internal/ytdlp"
)

// CookieSource provides the cookie jar path for the full command.
type CookieSource interface {
	Path() (string, error)
}

// Downloader executes download commands and relays their output.
type Downloader struct {
	Builder   *ytdlp.Builder
	Runner    ytdlp.Runner
	Cookies   CookieSource
	Recorder  history.Recorder
	SessionID string

	Out     io.Writer
	Styles  ui.Styles
	InPlace bool
	Logger  zerolog.Logger
	Now     func() time.Time
}

// Download runs the full command and falls back once on failure. It reports
// whether either attempt succeeded. The error is non-nil only when ctx was
// cancelled, in which case no fallback is attempted.
func (d *Downloader) Download(ctx context.Context, req media.Request) (bool, error) {
	cookiePath, err := d.Cookies.Path()
	if err != nil {
		d.Logger.Warn().Err(err).Msg("continuing without cookie jar")
		cookiePath = ""
	}

	cmd, err := d.Builder.Full(req, cookiePath)
	if err != nil {
		return false, err
	}

	fmt.Fprintf(d.Out, "\n%s\n", d.Styles.Warning.Render("Executing download command..."))
	code, runErr := d.run(ctx, cmd, false)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	d.record(ctx, req, media.AttemptFull, code, runErr)

	if runErr == nil && code == 0 {
		fmt.Fprintln(d.Out, d.Styles.Success.Bold(true).Render("✓ Download completed successfully!"))
		return true, nil
	}

	if runErr != nil {
		fmt.Fprintln(d.Out, d.Styles.Error.Bold(true).Render("✗ An error occurred during download:"))
		fmt.Fprintln(d.Out, d.Styles.Error.Render(runErr.Error()))
	} else {
		fmt.Fprintln(d.Out, d.Styles.Error.Bold(true).Render(fmt.Sprintf("✗ Download failed with error code %d.", code)))
	}

	return d.fallback(ctx, req)
}

func (d *Downloader) fallback(ctx context.Context, req media.Request) (bool, error) {
	fmt.Fprintf(d.Out, "\n%s\n", d.Styles.Warning.Render("Trying fallback download method..."))

	cmd, err := d.Builder.Fallback(req)
	if err != nil {
		return false, err
	}

	fmt.Fprintln(d.Out, d.Styles.Warning.Render("Executing fallback command..."))
	code, runErr := d.run(ctx, cmd, true)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	d.record(ctx, req, media.AttemptFallback, code, runErr)

	switch {
	case runErr != nil:
		fmt.Fprintln(d.Out, d.Styles.Error.Render("✗ Fallback download error: "+runErr.Error()))
		fmt.Fprintln(d.Out, d.Styles.Error.Render("✗ Unable to download the requested content."))
		return false, nil
	case code != 0:
		fmt.Fprintln(d.Out, d.Styles.Error.Bold(true).Render("✗ Fallback download also failed."))
		return false, nil
	default:
		fmt.Fprintln(d.Out, d.Styles.Success.Bold(true).Render("✓ Fallback download completed successfully!"))
		return true, nil
	}
}

// run executes cmd and relays its output. It returns the exit code and any
// launch error.
func (d *Downloader) run(ctx context.Context, cmd ytdlp.Command, fallback bool) (int, error) {
	d.Logger.Debug().Bool("fallback", fallback).Str("command", cmd.String()).Msg("running downloader")

	r := relay.New(d.Out, d.Styles, relay.Options{InPlace: d.InPlace, Fallback: fallback})
	code, err := d.Runner.Run(ctx, cmd, func(rd io.Reader) {
		if _, err := r.Stream(rd); err != nil {
			d.Logger.Debug().Err(err).Msg("relay stopped")
		}
	})

	state := r.Finish(code)
	stats := r.Stats()
	d.Logger.Debug().
		Int("exit_code", code).
		Stringer("state", state).
		Int("lines", stats.Lines).
		Int("filtered", stats.Filtered).
		Int("errors", stats.Errors).
		Msg("downloader exited")

	return code, err
}

func (d *Downloader) record(ctx context.Context, req media.Request, attempt media.Attempt, code int, runErr error) {
	if d.Recorder == nil {
		return
	}
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	entry := media.HistoryEntry{
		SessionID: d.SessionID,
		URL:       req.URL,
		Type:      req.Type,
		Format:    req.Format,
		Limit:     req.Limit,
		Attempt:   attempt,
		Success:   runErr == nil && code == 0,
		ExitCode:  code,
		CreatedAt: now(),
	}
	if err := d.Recorder.Save(ctx, entry); err != nil {
		d.Logger.Warn().Err(err).Msg("saving history failed")
	}
}
