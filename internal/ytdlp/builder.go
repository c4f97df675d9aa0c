// Package ytdlp builds and runs downloader invocations.
// Commands are always explicit argument slices, and the URL is placed after
// "--" so it can never be parsed as an option.
package ytdlp

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alessio/shellescape"

	"ytgrab/internal/media"
)

// DefaultExecutable is the downloader binary looked up on PATH.
const DefaultExecutable = "yt-dlp"

// Command is a fully built downloader invocation.
type Command struct {
	Executable string
	Args       []string
}

// String renders the command shell-quoted, for logs.
func (c Command) String() string {
	return shellescape.QuoteCommand(append([]string{c.Executable}, c.Args...))
}

// Builder turns requests into downloader commands.
type Builder struct {
	Executable  string
	DownloadDir string
	Now         func() time.Time
	UserAgent   func() string
}

// NewBuilder returns a Builder writing under downloadDir.
func NewBuilder(executable, downloadDir string) *Builder {
	if executable == "" {
		executable = DefaultExecutable
	}
	return &Builder{
		Executable:  executable,
		DownloadDir: downloadDir,
		Now:         time.Now,
		UserAgent:   RandomUserAgent,
	}
}

// OutputTemplate returns the output path template for a content type.
// Videos are written flat, playlists grouped by playlist title and channels
// grouped by uploader. The fallback variant tags filenames with "_fallback".
func (b *Builder) OutputTemplate(ct media.ContentType, fallback bool) string {
	stamp := b.Now().Format(TimestampLayout)
	if fallback {
		stamp = "fallback_" + stamp
	}
	name := FieldTitle + "_" + stamp + "." + FieldExt

	switch ct {
	case media.Playlist:
		return filepath.Join(b.DownloadDir, FieldPlaylistTitle, name)
	case media.Channel:
		return filepath.Join(b.DownloadDir, FieldUploader, name)
	default:
		return filepath.Join(b.DownloadDir, name)
	}
}

// Full builds the primary command with the complete reliability flag set.
func (b *Builder) Full(req media.Request, cookiePath string) (Command, error) {
	if err := req.Validate(); err != nil {
		return Command{}, fmt.Errorf("building download command: %w", err)
	}

	args := []string{
		IgnoreErrors,
		NoWarnings,
		GeoBypass,
		AddMetadata,
	}
	if ua := b.UserAgent(); ua != "" {
		args = append(args, UserAgentFlag, ua)
	}
	if cookiePath != "" {
		args = append(args, Cookies, cookiePath)
	}
	args = append(args,
		Output, b.OutputTemplate(req.Type, false),
		NoOverwrites,
		Continue,
	)

	switch req.Format {
	case media.FormatAudio:
		args = append(args,
			FormatFlag, SelectBestAudio,
			ExtractAudio,
			AudioFormat, CodecMP3,
			AudioQuality, AudioBitrate,
		)
	case media.FormatBest:
		args = append(args,
			FormatFlag, SelectBestSeparated,
			MergeOutputFormat, ContainerMP4,
		)
	default:
		args = append(args,
			FormatFlag, SelectBest,
			MergeOutputFormat, ContainerMP4,
		)
	}

	args = append(args, limitArgs(req)...)
	args = append(args, Verbose, EndOfOptions, req.URL)

	return Command{Executable: b.Executable, Args: args}, nil
}

// Fallback builds the reduced command used after the full command failed.
// It omits cookies, the user agent, metadata and resume handling.
func (b *Builder) Fallback(req media.Request) (Command, error) {
	if err := req.Validate(); err != nil {
		return Command{}, fmt.Errorf("building fallback command: %w", err)
	}

	args := []string{
		IgnoreErrors,
		FormatFlag, SelectBest,
		Output, b.OutputTemplate(req.Type, true),
		NoOverwrites,
		GeoBypass,
	}

	if req.Format == media.FormatAudio {
		args = append(args, ExtractAudio, AudioFormat, CodecMP3)
	}

	args = append(args, limitArgs(req)...)
	args = append(args, EndOfOptions, req.URL)

	return Command{Executable: b.Executable, Args: args}, nil
}

// limitArgs restricts collections to their first N items.
func limitArgs(req media.Request) []string {
	if !req.Type.IsCollection() || req.Limit.IsAll() {
		return nil
	}
	return []string{PlaylistItems, "1-" + strconv.Itoa(int(req.Limit))}
}
