package youtube

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"
)

// DefaultProbeTimeout bounds a metadata-only downloader run.
const DefaultProbeTimeout = 30 * time.Second

// DownloaderProber runs the downloader in metadata-only mode and reports the
// canonical page URL it resolves.
type DownloaderProber struct {
	Executable string
	Timeout    time.Duration
}

// NewDownloaderProber creates a prober for the given downloader binary.
func NewDownloaderProber(executable string, timeout time.Duration) *DownloaderProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &DownloaderProber{Executable: executable, Timeout: timeout}
}

// Probe returns the first canonical URL printed by the downloader.
func (p *DownloaderProber) Probe(ctx context.Context, url string) (string, error) {
	if err := ValidateURL(url); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	dl := ytdlp.New().
		SkipDownload().
		Print("webpage_url").
		NoWarnings()
	if p.Executable != "" {
		dl = dl.SetExecutable(p.Executable)
	}

	res, err := dl.Run(ctx, url)
	if err != nil {
		return "", fmt.Errorf("probing %s: %w", url, err)
	}

	return firstLine(res.Stdout), nil
}

// firstLine returns the first non-blank line of s.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
