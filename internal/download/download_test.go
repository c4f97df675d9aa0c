package download

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgrab/internal/media"
	"ytgrab/internal/ui"
	"ytgrab/internal/ytdlp"
)

type step struct {
	output string
	code   int
	err    error
}

type fakeRunner struct {
	steps []step
	calls []ytdlp.Command
}

func (f *fakeRunner) Run(ctx context.Context, cmd ytdlp.Command, consume func(io.Reader)) (int, error) {
	f.calls = append(f.calls, cmd)
	s := f.steps[len(f.calls)-1]
	if s.err != nil {
		return -1, s.err
	}
	consume(strings.NewReader(s.output))
	return s.code, nil
}

type staticCookies struct {
	path string
	err  error
}

func (c staticCookies) Path() (string, error) { return c.path, c.err }

type memRecorder struct {
	entries []media.HistoryEntry
}

func (m *memRecorder) Save(ctx context.Context, e media.HistoryEntry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memRecorder) Close() error { return nil }

func newTestDownloader(runner *fakeRunner, rec *memRecorder, out *bytes.Buffer) *Downloader {
	b := ytdlp.NewBuilder("yt-dlp", "Downloads")
	b.Now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	b.UserAgent = func() string { return "UA" }

	return &Downloader{
		Builder:   b,
		Runner:    runner,
		Cookies:   staticCookies{path: "/tmp/cookies.txt"},
		Recorder:  rec,
		SessionID: "session",
		Out:       out,
		Styles:    ui.NewStyles(out, false),
		Logger:    zerolog.Nop(),
	}
}

var videoRequest = media.Request{URL: "https://www.youtube.com/watch?v=abc", Type: media.Video, Format: media.FormatBest}

func TestDownloadSuccess(t *testing.T) {
	runner := &fakeRunner{steps: []step{{output: "[download] 100% of 1MiB\n", code: 0}}}
	rec := &memRecorder{}
	var out bytes.Buffer

	ok, err := newTestDownloader(runner, rec, &out).Download(context.Background(), videoRequest)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0].Args, "--cookies")
	assert.Contains(t, out.String(), "✓ Download completed successfully!")

	require.Len(t, rec.entries, 1)
	assert.Equal(t, media.AttemptFull, rec.entries[0].Attempt)
	assert.True(t, rec.entries[0].Success)
	assert.Equal(t, "session", rec.entries[0].SessionID)
}

func TestDownloadFallsBackOnce(t *testing.T) {
	runner := &fakeRunner{steps: []step{
		{output: "ERROR: Sign in to confirm you're not a bot\n", code: 1},
		{output: "[download] 100%\n", code: 0},
	}}
	rec := &memRecorder{}
	var out bytes.Buffer

	ok, err := newTestDownloader(runner, rec, &out).Download(context.Background(), videoRequest)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, runner.calls, 2)

	fallback := runner.calls[1]
	assert.NotContains(t, fallback.Args, "--cookies")
	assert.NotContains(t, fallback.Args, "--user-agent")
	assert.Less(t, len(fallback.Args), len(runner.calls[0].Args))

	text := out.String()
	assert.Contains(t, text, "✗ Download failed with error code 1.")
	assert.Contains(t, text, "Trying fallback download method...")
	assert.Contains(t, text, "✓ Fallback download completed successfully!")

	require.Len(t, rec.entries, 2)
	assert.False(t, rec.entries[0].Success)
	assert.Equal(t, 1, rec.entries[0].ExitCode)
	assert.Equal(t, media.AttemptFallback, rec.entries[1].Attempt)
	assert.True(t, rec.entries[1].Success)
}

func TestDownloadFallbackFailureIsTerminal(t *testing.T) {
	runner := &fakeRunner{steps: []step{
		{output: "ERROR: boom\n", code: 1},
		{output: "ERROR: boom again\n", code: 1},
	}}
	var out bytes.Buffer

	ok, err := newTestDownloader(runner, &memRecorder{}, &out).Download(context.Background(), videoRequest)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, runner.calls, 2, "no second retry after the fallback")
	assert.Contains(t, out.String(), "✗ Fallback download also failed.")
}

func TestDownloadLaunchErrorTriggersFallback(t *testing.T) {
	runner := &fakeRunner{steps: []step{
		{err: errors.New("exec: \"yt-dlp\": executable file not found in $PATH")},
		{err: errors.New("exec: \"yt-dlp\": executable file not found in $PATH")},
	}}
	var out bytes.Buffer

	ok, err := newTestDownloader(runner, &memRecorder{}, &out).Download(context.Background(), videoRequest)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, runner.calls, 2)

	text := out.String()
	assert.Contains(t, text, "✗ An error occurred during download:")
	assert.Contains(t, text, "✗ Fallback download error:")
	assert.Contains(t, text, "✗ Unable to download the requested content.")
}

func TestDownloadCancelledSkipsFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{steps: []step{{err: context.Canceled}}}
	cancel()

	ok, err := newTestDownloader(runner, &memRecorder{}, &bytes.Buffer{}).Download(ctx, videoRequest)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.Len(t, runner.calls, 1)
}

func TestDownloadWithoutCookieJar(t *testing.T) {
	runner := &fakeRunner{steps: []step{{code: 0}}}
	d := newTestDownloader(runner, &memRecorder{}, &bytes.Buffer{})
	d.Cookies = staticCookies{err: errors.New("read-only tmp")}

	ok, err := d.Download(context.Background(), videoRequest)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotContains(t, runner.calls[0].Args, "--cookies")
}

func TestDownloadFiltersDebugOutput(t *testing.T) {
	runner := &fakeRunner{steps: []step{{output: "[debug] secret\nhello\n", code: 0}}}
	var out bytes.Buffer

	_, err := newTestDownloader(runner, &memRecorder{}, &out).Download(context.Background(), videoRequest)
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "secret")
	assert.Contains(t, out.String(), "hello\n")
}
