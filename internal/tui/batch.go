package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/blockmark/internal/batch"
	"github.com/gerunddev/blockmark/internal/styles"
)

// BatchMsg is sent when a batch run completes
type BatchMsg struct {
	Result *batch.Result
	Err    error
}

// batchModel is the Bubble Tea model for the batch progress display
type batchModel struct {
	spinner  spinner.Model
	status   string
	complete bool
	result   *batch.Result
	err      error
}

// InitBatchModel creates a new batch progress model
func InitBatchModel(status string) batchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return batchModel{
		spinner: s,
		status:  status,
	}
}

func (m batchModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m batchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case BatchMsg:
		m.complete = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m batchModel) View() string {
	if !m.complete {
		return fmt.Sprintf("\n%s %s\n\n", m.spinner.View(), m.status)
	}

	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Batch failed: "+m.err.Error()) + "\n"
	}

	elapsed := styles.HelpStyle.Render(fmt.Sprintf("Completed in %v",
		m.result.EndTime.Sub(m.result.StartTime).Round(time.Millisecond))) + "\n"

	if m.result.FilesConverted == 0 {
		return styles.SuccessStyle.Render("✓ Nothing to convert") + "\n" + elapsed
	}

	verb := "Converted"
	if m.result.DryRun {
		verb = "Would convert"
	}
	msg := styles.SuccessStyle.Render(fmt.Sprintf("✓ %s %d file(s)", verb, m.result.FilesConverted))
	if len(m.result.Errors) > 0 {
		msg += ", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", len(m.result.Errors)))
	}
	for _, f := range m.result.Converted {
		msg += "\n" + styles.DimStyle.Render("  "+f)
	}
	return msg + "\n" + elapsed
}

// Done reports whether the batch finished
func (m batchModel) Done() bool {
	return m.complete
}
