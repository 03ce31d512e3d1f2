package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var ErrCancelled = errors.New("cancelled")

type loadDoneMsg[T any] struct {
	value T
	err   error
}

type loaderModel[T any] struct {
	label   string
	load    func(ctx context.Context) (T, error)
	timeout time.Duration
	spinner spinner.Model
	result  T
	err     error
	done    bool
}

func newLoaderModel[T any](label string, timeout time.Duration, load func(ctx context.Context) (T, error)) loaderModel[T] {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel[T]{label: label, load: load, timeout: timeout, spinner: sp}
}

func (m loaderModel[T]) Init() tea.Cmd {
	load, timeout := m.load, m.timeout
	run := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		v, err := load(ctx)
		return loadDoneMsg[T]{value: v, err: err}
	}
	return tea.Batch(run, m.spinner.Tick)
}

func (m loaderModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadDoneMsg[T]:
		m.result = msg.value
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel[T]) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s...\n", m.spinner.View(), m.label)
}

// RunLoader shows a spinner labelled label while load runs. It renders inline
// (no alt screen).
func RunLoader[T any](label string, timeout time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	p := tea.NewProgram(newLoaderModel(label, timeout, load))
	result, err := p.Run()
	if err != nil {
		var zero T
		return zero, err
	}
	final := result.(loaderModel[T])
	return final.result, final.err
}
