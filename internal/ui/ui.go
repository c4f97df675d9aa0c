// Package ui implements the interactive terminal prompts: numbered menus,
// free-text input and yes/no questions read line by line from stdin.
package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"ytgrab/internal/media"
)

// ErrAborted is returned when input ends before an answer was given.
var ErrAborted = errors.New("input closed")

// Prompter reads answers from in and writes prompts to out.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	styles Styles
}

// NewPrompter creates a prompter.
func NewPrompter(in io.Reader, out io.Writer, styles Styles) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, styles: styles}
}

// Styles returns the palette used for prompts.
func (p *Prompter) Styles() Styles { return p.styles }

// Out returns the writer prompts are written to.
func (p *Prompter) Out() io.Writer { return p.out }

// Printf writes formatted text to the prompt output.
func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

// Input shows prompt and returns the trimmed reply.
func (p *Prompter) Input(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Select prints items as a numbered list starting at 1 and returns the raw
// reply. Validation is left to the caller so it can decide how to re-prompt.
func (p *Prompter) Select(title string, items []string, prompt string) (string, error) {
	if title != "" {
		fmt.Fprintf(p.out, "\n%s\n", p.styles.Bold.Render(title))
	}
	for i, item := range items {
		fmt.Fprintf(p.out, "%s %s\n", p.styles.Bold.Render(fmt.Sprintf("%d.", i+1)), p.styles.Option.Render(item))
	}
	return p.Input(prompt)
}

// Confirm asks a yes/no question. Only "y" (any case) counts as yes.
func (p *Prompter) Confirm(prompt string) (bool, error) {
	reply, err := p.Input(fmt.Sprintf("%s (%s/%s): ", prompt, p.styles.Success.Render("y"), p.styles.Error.Render("n")))
	if err != nil {
		return false, err
	}
	return strings.EqualFold(reply, "y"), nil
}

// AskFormat offers best quality or audio only. An empty or unrecognised
// reply selects def.
func (p *Prompter) AskFormat(def media.Format) (media.Format, error) {
	marker := "1"
	if def == media.FormatAudio {
		marker = "2"
	}

	reply, err := p.Select("Available formats:",
		[]string{"Best quality (video+audio)", "Audio only (mp3)"},
		fmt.Sprintf("\nSelect format (1-2) [%s]: ", p.styles.Accent.Render(marker)))
	if err != nil {
		return "", err
	}

	switch reply {
	case "1":
		return media.FormatBest, nil
	case "2":
		return media.FormatAudio, nil
	default:
		return def, nil
	}
}

// AskLimit asks how many items of a playlist or channel to fetch, repeating
// the question until the reply is "all", empty or a positive number.
func (p *Prompter) AskLimit(ct media.ContentType) (media.Limit, error) {
	for {
		reply, err := p.Input(fmt.Sprintf("How many %s videos do you want to download? [%s/number]: ", ct, p.styles.Accent.Render("all")))
		if err != nil {
			return media.All, err
		}

		limit, err := media.ParseLimit(reply)
		if err == nil {
			return limit, nil
		}
		if strings.HasPrefix(strings.TrimSpace(reply), "-") || strings.TrimSpace(reply) == "0" {
			fmt.Fprintln(p.out, p.styles.Warning.Render("Please enter a positive number."))
		} else {
			fmt.Fprintln(p.out, p.styles.Warning.Render("Please enter 'all' or a number."))
		}
	}
}
