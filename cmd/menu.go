package cmd

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"ytgrab/internal/config"
	"ytgrab/internal/media"
	"ytgrab/internal/ui"
)

// grabber is the part of a session the menu drives.
type grabber interface {
	Classify(ctx context.Context, url string) media.ContentType
	Download(ctx context.Context, req media.Request) (bool, error)
}

var menuItems = []string{
	"Download Video",
	"Download Playlist",
	"Download Channel",
	"Auto-detect and Download",
	"Exit",
}

// choiceTypes maps menu choices to fixed content types. Choice 4 resolves
// the type from the URL instead.
var choiceTypes = map[string]media.ContentType{
	"1": media.Video,
	"2": media.Playlist,
	"3": media.Channel,
	"4": media.Unknown,
}

var failureTips = []string{
	"Make sure the URL is correct and accessible",
	"For channels, try different URL formats (e.g., /channel/ID, @username)",
	"Some videos may be region-restricted or age-restricted",
	"Search for the video directly on YouTube and copy the URL",
}

type menu struct {
	prompt  *ui.Prompter
	grabber grabber
	dir     string
	// format is preselected in the format prompt. Empty means best quality.
	format  media.Format

	// busy is set while the grabber runs, as opposed to waiting on a prompt.
	busy atomic.Bool
}

// working reports whether a classification or download is in progress.
func (m *menu) working() bool { return m.busy.Load() }

func (m *menu) defaultFormat() media.Format {
	if m.format == "" {
		return media.FormatBest
	}
	return m.format
}

// run loops until the user exits, stdin closes or ctx is cancelled.
func (m *menu) run(ctx context.Context) error {
	for {
		again, err := m.once(ctx)
		switch {
		case errors.Is(err, ui.ErrAborted):
			m.goodbye()
			return nil
		case err != nil:
			return err
		case !again:
			m.goodbye()
			return nil
		}
	}
}

// once handles one pass through the menu. It reports whether the loop should
// continue.
func (m *menu) once(ctx context.Context) (bool, error) {
	s := m.prompt.Styles()

	choice, err := m.prompt.Select(
		fmt.Sprintf("==== %s Main Menu ====", config.AppName),
		menuItems,
		"\n"+s.Bold.Render("Enter your choice (1-5): "),
	)
	if err != nil {
		return false, err
	}
	if choice == "5" {
		return false, nil
	}
	ct, ok := choiceTypes[choice]
	if !ok {
		m.prompt.Printf("%s\n", s.Error.Render("Invalid choice! Please select 1-5"))
		return true, nil
	}

	url, err := m.prompt.Input("\n" + s.Bold.Render("Enter YouTube URL: "))
	if err != nil {
		return false, err
	}
	if url == "" {
		m.prompt.Printf("%s\n", s.Error.Render("URL cannot be empty!"))
		return true, nil
	}

	if ct == media.Unknown {
		m.busy.Store(true)
		ct = m.grabber.Classify(ctx, url)
		m.busy.Store(false)
		m.prompt.Printf("%s\n", s.Warning.Render("Auto-detected content type: "+ct.String()))
	}
	debugf("menu choice %s resolved to %s", choice, ct)

	format, err := m.prompt.AskFormat(m.defaultFormat())
	if err != nil {
		return false, err
	}

	limit := media.All
	if ct.IsCollection() {
		if limit, err = m.prompt.AskLimit(ct); err != nil {
			return false, err
		}
	}

	m.busy.Store(true)
	ok, err = m.grabber.Download(ctx, media.Request{URL: url, Type: ct, Format: format, Limit: limit})
	m.busy.Store(false)
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		m.prompt.Printf("%s\n", s.Error.Render("✗ "+err.Error()))
	}

	if ok {
		m.prompt.Printf("\n%s\n%s\n", s.Success.Render("Content downloaded successfully to:"), s.Success.Render(m.dir))
	} else {
		m.printTips()
	}

	return m.prompt.Confirm("\n" + s.Bold.Render("Download another?"))
}

func (m *menu) printTips() {
	s := m.prompt.Styles()
	m.prompt.Printf("\n%s\n", s.Error.Render("Download failed. Please check the URL and try again."))
	m.prompt.Printf("%s\n", s.Warning.Render("Tips for successful downloads:"))
	for i, tip := range failureTips {
		m.prompt.Printf("%d. %s\n", i+1, tip)
	}
}

func (m *menu) goodbye() {
	s := m.prompt.Styles()
	m.prompt.Printf("\n%s\n", s.Warning.Render(fmt.Sprintf("Thanks for using %s! Goodbye.", config.AppName)))
}
