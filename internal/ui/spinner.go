package ui

import (
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type spinDoneMsg struct{}

type spinModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func (m spinModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(spinDoneMsg); ok {
		m.done = true
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m spinModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label
}

// Spin runs fn while showing a spinner with label on out. On a
// non-interactive output fn simply runs.
func Spin(t Terminal, styles Styles, label string, fn func()) {
	if !t.Interactive {
		fn()
		return
	}

	model := spinModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Accent)),
		label:   label,
	}
	p := tea.NewProgram(model,
		tea.WithOutput(t.Out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		fn()
		p.Send(spinDoneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		io.WriteString(t.Out, label+"\n")
	}
	<-finished
}
