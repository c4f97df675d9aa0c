// Package media defines shared types for the ytgrab application.
package media

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ContentType is the kind of content a URL points at. It decides the output
// layout and whether a limit applies.
type ContentType int

const (
	Unknown ContentType = iota
	Video
	Playlist
	Channel
)

func (c ContentType) String() string {
	switch c {
	case Video:
		return "video"
	case Playlist:
		return "playlist"
	case Channel:
		return "channel"
	default:
		return "unknown"
	}
}

// IsCollection reports whether the type groups several videos, in which case
// an item limit is meaningful.
func (c ContentType) IsCollection() bool {
	return c == Playlist || c == Channel
}

// ParseContentType parses the lower-case name produced by String.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video":
		return Video, nil
	case "playlist":
		return Playlist, nil
	case "channel":
		return Channel, nil
	default:
		return Unknown, fmt.Errorf("unknown content type %q", s)
	}
}

// Format selects what the downloader keeps.
type Format string

const (
	FormatVideo Format = "video"
	FormatAudio Format = "audio"
	FormatBest  Format = "best"
)

// Description returns the human readable label shown in download summaries.
func (f Format) Description() string {
	switch f {
	case FormatAudio:
		return "Audio only (mp3)"
	case FormatBest:
		return "Best quality (mp4)"
	default:
		return "Video (mp4)"
	}
}

// Ext returns the container extension the format ends up in.
func (f Format) Ext() string {
	if f == FormatAudio {
		return "mp3"
	}
	return "mp4"
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatVideo, FormatAudio, FormatBest:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (valid: video, audio, best)", s)
	}
}

// ErrInvalidLimit is returned by ParseLimit for anything other than "all" or a
// positive integer.
var ErrInvalidLimit = errors.New("limit must be 'all' or a positive number")

// Limit caps how many items of a playlist or channel are fetched.
// The zero value means all items.
type Limit int

// All is the unbounded limit.
const All Limit = 0

// ParseLimit accepts "", "all" or a positive integer.
func ParseLimit(s string) (Limit, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return All, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return All, ErrInvalidLimit
	}
	if n <= 0 {
		return All, fmt.Errorf("%w: got %d", ErrInvalidLimit, n)
	}
	return Limit(n), nil
}

// IsAll reports whether the limit is unbounded.
func (l Limit) IsAll() bool { return l <= 0 }

func (l Limit) String() string {
	if l.IsAll() {
		return "all"
	}
	return strconv.Itoa(int(l))
}

// Request is one user download request. It is passed by value and never
// modified once handed to the command builder.
type Request struct {
	URL    string
	Type   ContentType
	Format Format
	Limit  Limit
}

// Validate checks the request is ready for command building.
func (r Request) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("request has no URL")
	}
	if r.Type == Unknown {
		return fmt.Errorf("content type of %q is not resolved", r.URL)
	}
	if _, err := ParseFormat(string(r.Format)); err != nil {
		return err
	}
	return nil
}

// Attempt names which command variant a history entry refers to.
type Attempt string

const (
	AttemptFull     Attempt = "full"
	AttemptFallback Attempt = "fallback"
)

// HistoryEntry records one download attempt.
type HistoryEntry struct {
	ID        int64
	SessionID string
	URL       string
	Type      ContentType
	Format    Format
	Limit     Limit
	Attempt   Attempt
	Success   bool
	ExitCode  int
	CreatedAt time.Time
}
