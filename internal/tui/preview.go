package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/gerunddev/blockmark/internal/blocks"
	"github.com/gerunddev/blockmark/internal/convert"
	"github.com/gerunddev/blockmark/internal/styles"
)

type outputView int

const (
	viewJSON outputView = iota
	viewRendered
)

type pane int

const (
	paneInput pane = iota
	paneOutput
)

// previewModel is the paste-markdown-and-preview tool: markdown goes in on
// the left, converted blocks come out on the right
type previewModel struct {
	input     textarea.Model
	output    viewport.Model
	converter *convert.Converter
	doc       *convert.Document
	view      outputView
	focus     pane
	width     int
	height    int
	status    string
	err       error
}

// InitPreviewModel creates the preview model, optionally seeded with markdown
func InitPreviewModel(conv *convert.Converter, initial string) previewModel {
	ta := textarea.New()
	ta.Placeholder = "Paste your markdown here..."
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.SetValue(initial)
	ta.Focus()

	vp := viewport.New(40, 20)
	vp.SetContent(styles.DimStyle.Render("Preview will appear here..."))

	m := previewModel{
		input:     ta,
		output:    vp,
		converter: conv,
		status:    "ctrl+s convert • tab switch pane • ctrl+t toggle json/rendered • esc quit",
	}
	if initial != "" {
		m = m.convert()
	}
	return m
}

func (m previewModel) Init() tea.Cmd {
	return textarea.Blink
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.resize()
		m = m.refreshOutput()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+s":
			return m.convert(), nil
		case "ctrl+t":
			if m.view == viewJSON {
				m.view = viewRendered
			} else {
				m.view = viewJSON
			}
			return m.refreshOutput(), nil
		case "tab":
			if m.focus == paneInput {
				m.focus = paneOutput
				m.input.Blur()
				return m, nil
			}
			m.focus = paneInput
			return m, m.input.Focus()
		}
	}

	if m.focus == paneInput {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.output, cmd = m.output.Update(msg)
	}
	return m, cmd
}

func (m previewModel) View() string {
	inputStyle, outputStyle := styles.FocusedPaneStyle, styles.PaneStyle
	if m.focus == paneOutput {
		inputStyle, outputStyle = styles.PaneStyle, styles.FocusedPaneStyle
	}

	title := "Blocks (JSON)"
	if m.view == viewRendered {
		title = "Rendered"
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Markdown Input"),
		inputStyle.Render(m.input.View()))
	right := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render(title),
		outputStyle.Render(m.output.View()))

	footer := styles.HelpStyle.Render(m.status)
	if m.err != nil {
		footer = styles.ErrorStyle.Render("✗ " + m.err.Error())
	} else if m.doc != nil {
		footer = styles.SuccessStyle.Render(fmt.Sprintf("✓ %d block(s)", len(m.doc.Blocks))) +
			"  " + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right),
		footer)
}

// Document returns the last conversion, nil if nothing was converted
func (m previewModel) Document() *convert.Document {
	return m.doc
}

func (m previewModel) convert() previewModel {
	m.doc = m.converter.Convert(m.input.Value())
	return m.refreshOutput()
}

func (m previewModel) refreshOutput() previewModel {
	if m.doc == nil {
		return m
	}

	var (
		content string
		err     error
	)
	switch m.view {
	case viewRendered:
		content, err = RenderMarkdown(convert.Render(m.doc.Blocks), m.output.Width)
	default:
		content, err = blocks.EncodeString(m.doc.Blocks, true)
	}
	m.err = err
	if err == nil {
		m.output.SetContent(content)
		m.output.GotoTop()
	}
	return m
}

func (m previewModel) resize() previewModel {
	// borders, padding, title and footer
	paneWidth := (m.width - 1) / 2
	innerWidth := paneWidth - 4
	innerHeight := m.height - 5
	if innerWidth < 10 {
		innerWidth = 10
	}
	if innerHeight < 3 {
		innerHeight = 3
	}

	m.input.SetWidth(innerWidth)
	m.input.SetHeight(innerHeight)
	m.output.Width = innerWidth
	m.output.Height = innerHeight
	return m
}

// RenderMarkdown renders markdown for the terminal with glamour's dark style
func RenderMarkdown(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return out, nil
}
