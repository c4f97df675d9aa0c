package youtube

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytgrab/internal/media"
)

type fakeProber struct {
	url   string
	err   error
	calls int
}

func (f *fakeProber) Probe(ctx context.Context, url string) (string, error) {
	f.calls++
	return f.url, f.err
}

func TestClassifyWithoutProbe(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want media.ContentType
	}{
		{"watch url", "https://www.youtube.com/watch?v=abc", media.Video},
		{"short link", "youtu.be/abc", media.Video},
		{"shorts", "https://www.youtube.com/shorts/abc", media.Video},
		{"shorts on channel", "https://www.youtube.com/@chan/shorts/abc", media.Video},
		{"shorts beats list", "https://www.youtube.com/shorts/abc?list=PL1", media.Video},
		{"playlist", "https://www.youtube.com/playlist?list=PL123", media.Playlist},
		{"watch in playlist", "https://www.youtube.com/watch?v=abc&list=PL123", media.Playlist},
		{"list beats channel videos", "https://www.youtube.com/c/foo/videos?list=PL1", media.Playlist},
		{"channel videos handle", "https://www.youtube.com/@chan/videos", media.Channel},
		{"channel videos id", "https://www.youtube.com/channel/UC123/videos", media.Channel},
		{"channel videos legacy", "https://www.youtube.com/user/someone/videos", media.Channel},
		{"channel videos custom", "https://www.youtube.com/c/foo/videos", media.Channel},
		{"watch with channel marker", "https://www.youtube.com/watch?v=abc&ab_channel=@x", media.Video},
		{"unknown site", "https://example.com/clip", media.Video},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProber{err: errors.New("should not be called")}
			got := Classify(context.Background(), tt.url, p)
			assert.Equal(t, tt.want, got.Type)
			assert.False(t, got.Probed)
			assert.Zero(t, p.calls)
		})
	}
}

func TestClassifyShortsAlwaysVideo(t *testing.T) {
	urls := []string{
		"https://www.youtube.com/shorts/x",
		"https://www.youtube.com/@chan/shorts/x",
		"https://www.youtube.com/channel/UC1/shorts/x/videos",
		"https://www.youtube.com/shorts/x?list=PL1&feature=share",
	}
	for _, u := range urls {
		got := Classify(context.Background(), u, &fakeProber{url: "https://www.youtube.com/playlist?list=X"})
		assert.Equal(t, media.Video, got.Type, u)
	}
}

func TestClassifyListAlwaysPlaylist(t *testing.T) {
	urls := []string{
		"https://www.youtube.com/playlist?list=PL1",
		"https://www.youtube.com/@chan/playlist?list=PL1",
		"https://www.youtube.com/channel/UC1/videos?list=PL1",
		"youtube.com/watch?v=a&list=RD1",
	}
	for _, u := range urls {
		got := Classify(context.Background(), u, &fakeProber{err: errors.New("unreachable")})
		assert.Equal(t, media.Playlist, got.Type, u)
	}
}

func TestClassifyProbe(t *testing.T) {
	tests := []struct {
		name      string
		probeURL  string
		probeErr  error
		want      media.ContentType
		wantErr   bool
		wantCanon string
	}{
		{"probe failure defaults to video", "", errors.New("exit status 1"), media.Video, true, ""},
		{"empty probe output", "   ", nil, media.Video, true, ""},
		{"probe resolves channel", "https://www.youtube.com/@somechannel", nil, media.Channel, false, "https://www.youtube.com/@somechannel"},
		{"probe resolves playlist", "https://www.youtube.com/playlist?list=UU1", nil, media.Playlist, false, "https://www.youtube.com/playlist?list=UU1"},
		{"probe resolves video", "https://www.youtube.com/watch?v=abc", nil, media.Video, false, "https://www.youtube.com/watch?v=abc"},
		{"probe resolves channel video", "https://www.youtube.com/@x/watch?v=abc", nil, media.Video, false, "https://www.youtube.com/@x/watch?v=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProber{url: tt.probeURL, err: tt.probeErr}
			got := Classify(context.Background(), "@somechannel", p)

			assert.Equal(t, 1, p.calls)
			assert.True(t, got.Probed)
			assert.Equal(t, tt.want, got.Type)
			assert.Equal(t, tt.wantErr, got.ProbeErr != nil)
			assert.Equal(t, tt.wantCanon, got.Canonical)
		})
	}
}

func TestClassifyHandleWithoutVideosFallsBackToVideo(t *testing.T) {
	p := &fakeProber{err: errors.New("network unreachable")}

	got := Classify(context.Background(), "@somechannel", p)

	require.True(t, got.Probed)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, media.Video, got.Type)
	assert.Error(t, got.ProbeErr)
}

func TestClassifyNilProber(t *testing.T) {
	got := Classify(context.Background(), "https://www.youtube.com/c/foo", nil)
	assert.Equal(t, media.Video, got.Type)
	assert.True(t, got.Probed)
	assert.Error(t, got.ProbeErr)
}

func TestFirstLine(t *testing.T) {
	assert.Equal(t, "a", firstLine("\n  a \nb\n"))
	assert.Equal(t, "", firstLine("\n \n"))
}
