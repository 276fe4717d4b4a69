package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// slowAfter is when the spinner starts showing elapsed time.
const slowAfter = 2 * time.Second

var (
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	elapsedStyle = lipgloss.NewStyle().Faint(true)
)

type loadedMsg[T any] struct {
	value T
	err   error
}

// loadModel spins on stderr until its request returns, then holds the typed
// result for the caller.
type loadModel[T any] struct {
	spinner spinner.Model
	label   string
	load    tea.Cmd
	started time.Time
	now     func() time.Time

	value    T
	err      error
	finished bool
}

func newLoadModel[T any](label string, now func() time.Time, load func() (T, error)) loadModel[T] {
	return loadModel[T]{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		label:   label,
		load: func() tea.Msg {
			value, err := load()
			return loadedMsg[T]{value: value, err: err}
		},
		started: now(),
		now:     now,
	}
}

func (m loadModel[T]) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

func (m loadModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[T]:
		m.value, m.err, m.finished = msg.value, msg.err, true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m loadModel[T]) View() string {
	if m.finished {
		return ""
	}
	line := m.spinner.View() + " " + m.label
	if elapsed := m.now().Sub(m.started); elapsed >= slowAfter {
		line += elapsedStyle.Render(fmt.Sprintf(" (%ds)", int(elapsed.Seconds())))
	}
	return line
}

// spinWhile runs load behind a spinner written to output and returns its
// result. Cancelling ctx abandons the spinner and reports ctx's error.
func spinWhile[T any](ctx context.Context, output io.Writer, label string, now func() time.Time, load func(context.Context) (T, error)) (T, error) {
	var zero T
	model := newLoadModel(label, now, func() (T, error) { return load(ctx) })

	final, err := tea.NewProgram(model,
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return zero, ctxErr
	}
	if err != nil {
		return zero, fmt.Errorf("run spinner: %w", err)
	}

	done, ok := final.(loadModel[T])
	if !ok {
		return zero, fmt.Errorf("unexpected final spinner model type %T", final)
	}
	return done.value, done.err
}
