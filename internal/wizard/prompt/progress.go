package prompt

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Waiter shows progress while a slow step runs. Prompters that do not
// implement it get a plain status line instead.
type Waiter interface {
	Wait(ctx context.Context, title string, fn func(context.Context) error) error
}

var (
	spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3b82f6"))
)

const tickInterval = 100 * time.Millisecond

type tickMsg struct{}

type doneMsg struct{ err error }

// progressModel is the Bubble Tea model behind Forms.Wait.
type progressModel struct {
	title   string
	frame   int
	done    bool
	aborted bool
	err     error
}

func (m progressModel) Init() tea.Cmd {
	return tickCmd()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}

	case tickMsg:
		m.frame++
		return m, tickCmd()

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	return spinnerStyle.Render(spinnerFrames[m.frame%len(spinnerFrames)]) + " " + mutedStyle.Render(m.title) + "\n"
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Wait implements Waiter with a spinner on stderr. Ctrl+C cancels fn and
// returns ErrAborted.
func (Forms) Wait(ctx context.Context, title string, fn func(context.Context) error) error {
	return runProgress(ctx, title, fn, tea.WithOutput(os.Stderr))
}

func runProgress(ctx context.Context, title string, fn func(context.Context) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(progressModel{title: title}, append(opts, tea.WithContext(ctx))...)

	go func() {
		p.Send(doneMsg{err: fn(ctx)})
	}()

	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("progress: %w", err)
	}

	m := final.(progressModel)
	if m.aborted {
		return ErrAborted
	}
	return m.err
}

// wait runs fn behind p's progress view, or after a status line on out.
func wait(ctx context.Context, p Prompter, out io.Writer, title string, fn func(context.Context) error) error {
	if w, ok := p.(Waiter); ok {
		return w.Wait(ctx, title, fn)
	}
	fmt.Fprintln(out, mutedStyle.Render(title))
	return fn(ctx)
}
