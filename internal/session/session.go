// Package session owns the resources of one program run: the cookie jar,
// the history store and the downloader wiring. A Session is created once,
// used for every request, and closed on every exit path.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ytgrab/internal/config"
	"ytgrab/internal/cookie"
	"ytgrab/internal/download"
	"ytgrab/internal/history"
	"ytgrab/internal/media"
	"ytgrab/internal/ui"
	"ytgrab/internal/youtube"
	"ytgrab/internal/ytdlp"
)

// Options configures a Session. Nil fields get production defaults.
type Options struct {
	Config     *config.Config
	Downloader string
	Logger     zerolog.Logger
	Terminal   ui.Terminal
	Styles     *ui.Styles
	Runner     ytdlp.Runner
	Prober     youtube.Prober
	Recorder   history.Recorder
	Jar        *cookie.Jar
	Now        func() time.Time
}

// Session holds per-run state.
type Session struct {
	ID          string
	DownloadDir string
	// Format is used for requests that do not name one.
	Format      media.Format

	logger     zerolog.Logger
	terminal   ui.Terminal
	styles     ui.Styles
	jar        *cookie.Jar
	prober     youtube.Prober
	recorder   history.Recorder
	downloader *download.Downloader
	closed     bool
}

// New creates the downloads directory and wires a session.
func New(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	dir, err := cfg.ExpandDownloadDir()
	if err != nil {
		return nil, fmt.Errorf("resolving download dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating download dir: %w", err)
	}

	executable := opts.Downloader
	if executable == "" {
		executable = cfg.Downloader
	}

	term := opts.Terminal
	if term.Out == nil {
		term = ui.Stdout()
	}
	styles := ui.NewStyles(term.Out, term.Interactive)
	if opts.Styles != nil {
		styles = *opts.Styles
	}

	s := &Session{
		ID:          uuid.NewString(),
		DownloadDir: dir,
		Format:      cfg.Format(),
		logger:      opts.Logger,
		terminal:    term,
		styles:      styles,
		jar:         opts.Jar,
		prober:      opts.Prober,
		recorder:    opts.Recorder,
	}

	if s.jar == nil {
		s.jar = cookie.New(config.AppName)
	}
	if s.prober == nil {
		s.prober = youtube.NewDownloaderProber(executable, cfg.ProbeTimeout)
	}
	if s.recorder == nil {
		s.recorder = openRecorder(cfg, s.logger)
	}

	runner := opts.Runner
	if runner == nil {
		runner = ytdlp.ExecRunner{}
	}

	builder := ytdlp.NewBuilder(executable, dir)
	if opts.Now != nil {
		builder.Now = opts.Now
	}

	s.downloader = &download.Downloader{
		Builder:   builder,
		Runner:    runner,
		Cookies:   s.jar,
		Recorder:  s.recorder,
		SessionID: s.ID,
		Out:       term.Out,
		Styles:    styles,
		InPlace:   term.Interactive,
		Logger:    s.logger,
		Now:       opts.Now,
	}

	s.logger.Debug().Str("session", s.ID).Str("dir", dir).Str("downloader", executable).Msg("session started")
	return s, nil
}

func openRecorder(cfg *config.Config, logger zerolog.Logger) history.Recorder {
	if !cfg.History {
		return history.Nop{}
	}
	path, err := config.HistoryPath()
	if err != nil {
		logger.Warn().Err(err).Msg("history disabled")
		return history.Nop{}
	}
	store, err := history.Open(path)
	if err != nil {
		logger.Warn().Err(err).Msg("history disabled")
		return history.Nop{}
	}
	return store
}

// Classify resolves the content type of a URL, probing the downloader when
// the URL alone is ambiguous.
func (s *Session) Classify(ctx context.Context, url string) media.ContentType {
	var c youtube.Classification
	ui.Spin(s.terminal, s.styles, "Detecting content type...", func() {
		c = youtube.Classify(ctx, url, s.prober)
	})

	ev := s.logger.Debug().Str("url", url).Str("type", c.Type.String()).Str("rule", c.Rule)
	if c.Probed {
		ev = ev.Bool("probed", true).Str("canonical", c.Canonical)
	}
	if c.ProbeErr != nil {
		ev = ev.AnErr("probe_error", c.ProbeErr)
	}
	ev.Msg("classified")

	return c.Type
}

// Download normalizes and, if needed, classifies the request, prints a
// summary and runs it. The error is non-nil only for invalid input or
// cancellation; a failed download is reported as false.
func (s *Session) Download(ctx context.Context, req media.Request) (bool, error) {
	req.URL = youtube.Normalize(req.URL)
	if err := youtube.ValidateURL(req.URL); err != nil {
		return false, err
	}
	if req.Type == media.Unknown {
		req.Type = s.Classify(ctx, req.URL)
	}
	if req.Format == "" {
		req.Format = s.Format
	}
	if !req.Type.IsCollection() {
		req.Limit = media.All
	}

	s.printSummary(req)

	return s.downloader.Download(ctx, req)
}

func (s *Session) printSummary(req media.Request) {
	out := s.terminal.Out
	label := func(name string) string { return s.styles.Accent.Render(name + ":") }

	fmt.Fprintf(out, "\n%s\n", s.styles.Bold.Render("Starting download:"))
	fmt.Fprintf(out, "  %s %s\n", label("URL"), req.URL)
	fmt.Fprintf(out, "  %s %s\n", label("Type"), req.Type)
	fmt.Fprintf(out, "  %s %s\n", label("Format"), req.Format.Description())
	if req.Type.IsCollection() {
		if req.Limit.IsAll() {
			fmt.Fprintf(out, "  %s All videos\n", label("Limit"))
		} else {
			fmt.Fprintf(out, "  %s %d videos\n", label("Limit"), req.Limit)
		}
	}
}

// CookiePath exposes the session's cookie jar path, creating it if needed.
func (s *Session) CookiePath() (string, error) {
	return s.jar.Path()
}

// Close removes the cookie jar and closes the history store. It is safe to
// call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := errors.Join(s.jar.Close(), s.recorder.Close())
	s.logger.Debug().Str("session", s.ID).Err(err).Msg("session closed")
	return err
}
