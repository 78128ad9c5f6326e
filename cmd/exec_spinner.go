package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const maxSpinnerCommandRunes = 40

type execDoneMsg struct {
	err error
}

type execSpinnerModel struct {
	spinner spinner.Model
	command string
	timeout time.Duration
	started time.Time
	now     func() time.Time
	run     tea.Cmd
	err     error
	done    bool
}

func newExecSpinnerModel(command string, timeout time.Duration, run tea.Cmd) execSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return execSpinnerModel{
		spinner: s,
		command: spinnerCommand(command),
		timeout: timeout,
		started: time.Now(),
		now:     time.Now,
		run:     run,
	}
}

func (m execSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m execSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case execDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m execSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s Running %s (%s)", m.spinner.View(), m.command, m.progress())
}

// progress reports elapsed time, against the timeout when one is set.
func (m execSpinnerModel) progress() string {
	elapsed := m.now().Sub(m.started).Truncate(100 * time.Millisecond)
	if m.timeout <= 0 {
		return elapsed.String()
	}
	return fmt.Sprintf("%s of %s", elapsed, m.timeout)
}

// spinnerCommand keeps the spinner on one line: only the first line of the
// command is shown, cut at maxSpinnerCommandRunes.
func spinnerCommand(command string) string {
	command = strings.TrimSpace(command)
	line, rest, multiline := strings.Cut(command, "\n")
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) > maxSpinnerCommandRunes {
		return string([]rune(line)[:maxSpinnerCommandRunes]) + "..."
	}
	if multiline && strings.TrimSpace(rest) != "" {
		return line + " ..."
	}
	return line
}

// runExecSpinner shows a spinner with the running command and its elapsed
// time on output while run executes.
func runExecSpinner(ctx context.Context, output io.Writer, command string, timeout time.Duration, run func(context.Context) error) error {
	runCmd := func() tea.Msg {
		return execDoneMsg{err: run(ctx)}
	}

	p := tea.NewProgram(
		newExecSpinnerModel(command, timeout, runCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(execSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
