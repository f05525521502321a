package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/selva-k-r/dbt-docgen/manifest"
)

// CoverageModel is a Bubble Tea model for the documentation coverage view.
type CoverageModel struct {
	coverage manifest.Coverage
	width    int
	height   int
	quitting bool
}

// NewCoverageModel creates a coverage model.
func NewCoverageModel(cov manifest.Coverage) CoverageModel {
	return CoverageModel{coverage: cov}
}

// Init implements tea.Model.
func (m CoverageModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m CoverageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m CoverageModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Documentation Coverage"))
	b.WriteString("\n\n")

	boxes := []string{
		m.renderStatBox("Models", m.coverage.Models, highlightColor),
		m.renderStatBox("Documented", m.coverage.Documented, successColor),
		m.renderStatBox("Undocumented", m.coverage.Undocumented, errorColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	b.WriteString("\n\n")

	columnBoxes := []string{
		m.renderStatBox("Columns", m.coverage.ColumnsTotal, highlightColor),
		m.renderStatBox("Described", m.coverage.ColumnsDocumented, successColor),
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columnBoxes...))

	help := HelpStyle.Render("Press q or Ctrl+C to quit")
	return b.String() + "\n" + help
}

func (m CoverageModel) renderStatBox(label string, value int, color lipgloss.Color) string {
	boxStyle := StatBoxStyle.BorderForeground(color)

	valueStr := StatValueStyle.Foreground(color).Render(fmt.Sprintf("%d", value))
	labelStr := StatLabelStyle.Render(label)

	content := lipgloss.JoinVertical(lipgloss.Center, valueStr, labelStr)

	return boxStyle.Render(content)
}

// RunCoverageTUI runs the coverage TUI.
func RunCoverageTUI(data any) error {
	cov, ok := data.(manifest.Coverage)
	if !ok {
		return fmt.Errorf("invalid data type for coverage view")
	}
	model := NewCoverageModel(cov)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderCoverageStatic renders coverage data without full TUI (for fallback).
func RenderCoverageStatic(cov manifest.Coverage) string {
	model := NewCoverageModel(cov)
	model.width = 80
	model.height = 24
	return lipgloss.NewStyle().Padding(1, 2).Render(model.View())
}
