// Package relay reformats the downloader's line-oriented output for the
// terminal: debug chatter is dropped, errors are highlighted and percentage
// updates rewrite the current line in place.
package relay

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"ytgrab/internal/ui"
)

// State is where the relay is after handling a line or the process exit.
type State int

const (
	Running State = iota
	Filtered
	ErrorDisplayed
	ProgressDisplayed
	Passthrough
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Filtered:
		return "filtered"
	case ErrorDisplayed:
		return "error"
	case ProgressDisplayed:
		return "progress"
	case Passthrough:
		return "passthrough"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// progressMarkers mark lines worth highlighting as transfer progress.
var progressMarkers = []string{"download", "progress", "ETA", "%"}

// maxLineSize bounds a single line of downloader output.
const maxLineSize = 1024 * 1024

// Classify decides how a single trimmed output line is displayed. The second
// result reports an in-place percentage update.
func Classify(line string) (State, bool) {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "[debug]") {
		return Filtered, false
	}
	if strings.Contains(lower, "error") {
		return ErrorDisplayed, false
	}
	for _, m := range progressMarkers {
		if strings.Contains(line, m) {
			inPlace := strings.Contains(line, "[download]") && strings.Contains(line, "%")
			return ProgressDisplayed, inPlace
		}
	}
	return Passthrough, false
}

// Stats counts lines per display state.
type Stats struct {
	Lines    int
	Filtered int
	Errors   int
	Progress int
	Plain    int
}

// Options controls rendering.
type Options struct {
	// InPlace rewrites percentage updates on the current line. Only useful
	// on an interactive terminal.
	InPlace bool
	// Fallback switches progress highlighting to the fallback color.
	Fallback bool
}

// Relay writes reformatted downloader output to a terminal.
type Relay struct {
	w      io.Writer
	styles ui.Styles
	opts   Options

	// midLine is set while the cursor sits after an in-place update.
	midLine bool
	state   State
	stats   Stats
}

// New creates a relay writing to w.
func New(w io.Writer, styles ui.Styles, opts Options) *Relay {
	return &Relay{w: w, styles: styles, opts: opts}
}

// State returns the state after the last handled event.
func (r *Relay) State() State { return r.state }

// Stats returns the counts gathered so far.
func (r *Relay) Stats() Stats { return r.stats }

// Stream relays every line from rd until EOF, then ends the current line.
func (r *Relay) Stream(rd io.Reader) (Stats, error) {
	r.state = Running

	scanner := bufio.NewScanner(rd)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	scanner.Split(scanLines)

	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}
		r.Line(scanner.Text())
	}

	fmt.Fprintln(r.w)
	r.midLine = false

	if err := scanner.Err(); err != nil {
		return r.stats, fmt.Errorf("reading downloader output: %w", err)
	}
	return r.stats, nil
}

// Line handles one raw output line and returns the state it produced.
func (r *Relay) Line(raw string) State {
	line := strings.TrimSpace(raw)
	r.stats.Lines++

	state, inPlace := Classify(line)
	r.state = state

	switch state {
	case Filtered:
		r.stats.Filtered++
	case ErrorDisplayed:
		r.stats.Errors++
		r.println(r.styles.Error.Render(line))
	case ProgressDisplayed:
		r.stats.Progress++
		style := r.styles.Progress
		if r.opts.Fallback {
			style = r.styles.Fallback
		}
		if inPlace && r.opts.InPlace {
			fmt.Fprint(r.w, "\r"+style.Render(line))
			r.midLine = true
			return state
		}
		r.println(style.Render(line))
	default:
		r.stats.Plain++
		r.println(line)
	}
	return state
}

// Finish records the process exit status and returns the terminal state.
func (r *Relay) Finish(exitCode int) State {
	if exitCode == 0 {
		r.state = Succeeded
	} else {
		r.state = Failed
	}
	return r.state
}

func (r *Relay) println(s string) {
	if r.midLine {
		fmt.Fprintln(r.w)
		r.midLine = false
	}
	fmt.Fprintln(r.w, s)
}

// scanLines splits on \n, \r\n and bare \r. Progress updates from the
// downloader are separated by carriage returns.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\r' {
			if i+1 < len(data) {
				if data[i+1] == '\n' {
					return i + 2, data[:i], nil
				}
				return i + 1, data[:i], nil
			}
			if !atEOF {
				// Need one more byte to tell \r from \r\n.
				return 0, nil, nil
			}
		}
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
