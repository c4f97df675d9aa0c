package youtube

import (
	"context"
	"errors"
	"strings"

	"ytgrab/internal/media"
)

// verdict is the outcome of matching a URL against the rule table.
type verdict int

const (
	verdictVideo verdict = iota
	verdictPlaylist
	verdictChannel
	verdictAmbiguous
)

// ChannelMarkers are path fragments that indicate a channel-scoped URL.
var ChannelMarkers = []string{"/c/", "/channel/", "/user/", "@"}

type rule struct {
	name    string
	match   func(url string) bool
	verdict verdict
}

// rules is evaluated top to bottom; the first match wins. The same table is
// used for user input and for the canonical URL reported by a probe.
var rules = []rule{
	{"shorts", contains("/shorts/"), verdictVideo},
	{"playlist", contains("list="), verdictPlaylist},
	{"channel-videos", all(hasChannelMarker, contains("/videos")), verdictChannel},
	{"channel-watch", all(hasChannelMarker, contains("watch?v=")), verdictVideo},
	{"channel", hasChannelMarker, verdictAmbiguous},
}

func contains(substr string) func(string) bool {
	return func(url string) bool { return strings.Contains(url, substr) }
}

func all(preds ...func(string) bool) func(string) bool {
	return func(url string) bool {
		for _, p := range preds {
			if !p(url) {
				return false
			}
		}
		return true
	}
}

func hasChannelMarker(url string) bool {
	for _, m := range ChannelMarkers {
		if strings.Contains(url, m) {
			return true
		}
	}
	return false
}

// evaluate returns the first matching rule, or a default video rule.
func evaluate(url string) rule {
	for _, r := range rules {
		if r.match(url) {
			return r
		}
	}
	return rule{name: "default", verdict: verdictVideo}
}

func (v verdict) contentType() media.ContentType {
	switch v {
	case verdictPlaylist:
		return media.Playlist
	case verdictChannel:
		return media.Channel
	default:
		return media.Video
	}
}

// ErrProbeEmpty is reported when the downloader printed no canonical URL.
var ErrProbeEmpty = errors.New("probe returned no URL")

// Prober asks the downloader for the canonical URL of ambiguous input.
type Prober interface {
	Probe(ctx context.Context, url string) (string, error)
}

// Classification is the resolved content type plus how it was reached.
type Classification struct {
	Type media.ContentType
	// Rule is the name of the rule that decided the type.
	Rule string
	// Probed is set when the downloader was consulted.
	Probed bool
	// Canonical is the URL reported by the probe, if any.
	Canonical string
	// ProbeErr holds the probe failure that forced the video default.
	ProbeErr error
}

// Classify labels a URL as video, playlist or channel. Channel-looking URLs
// without an explicit /videos suffix are resolved by probing; a failed or
// inconclusive probe defaults to video. Classification never fails.
func Classify(ctx context.Context, raw string, prober Prober) Classification {
	url := Normalize(raw)

	r := evaluate(url)
	if r.verdict != verdictAmbiguous {
		return Classification{Type: r.verdict.contentType(), Rule: r.name}
	}

	c := Classification{Type: media.Video, Rule: "probe-default", Probed: true}
	if prober == nil {
		c.ProbeErr = errors.New("no prober configured")
		return c
	}

	canonical, err := prober.Probe(ctx, url)
	if err != nil {
		c.ProbeErr = err
		return c
	}
	canonical = strings.TrimSpace(canonical)
	if canonical == "" {
		c.ProbeErr = ErrProbeEmpty
		return c
	}
	c.Canonical = canonical

	pr := evaluate(canonical)
	c.Rule = "probe-" + pr.name
	if pr.verdict == verdictAmbiguous {
		// The downloader resolved it to a channel page, not a single video.
		c.Type = media.Channel
		return c
	}
	c.Type = pr.verdict.contentType()
	return c
}
