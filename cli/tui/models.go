package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/selva-k-r/dbt-docgen/manifest"
)

// modelItem adapts a ModelSummary to the bubbles list item interface.
type modelItem struct {
	summary manifest.ModelSummary
}

func (i modelItem) Title() string { return i.summary.Name }

func (i modelItem) Description() string {
	documented := "undocumented"
	if i.summary.Documented {
		documented = "documented"
	}
	return fmt.Sprintf("%s, %d columns, %d deps, %s",
		i.summary.Materialization, i.summary.Columns, i.summary.Dependencies, documented)
}

func (i modelItem) FilterValue() string { return i.summary.Name }

// ModelsModel is a Bubble Tea model for the models listing view.
type ModelsModel struct {
	list     list.Model
	quitting bool
}

// NewModelsModel creates a models listing model.
func NewModelsModel(summaries []manifest.ModelSummary) ModelsModel {
	items := make([]list.Item, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, modelItem{summary: s})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(primaryColor).
		BorderLeftForeground(primaryColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(mutedColor).
		BorderLeftForeground(primaryColor)

	l := list.New(items, delegate, 80, 24)
	l.Title = "Models"
	l.Styles.Title = TitleStyle
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)

	return ModelsModel{list: l}
}

// Init implements tea.Model.
func (m ModelsModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ModelsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// Let the filter input capture keystrokes while active.
		if m.list.FilterState() == list.Filtering {
			break
		}
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ModelsModel) View() string {
	if m.quitting {
		return ""
	}
	return m.list.View()
}

// keyMap defines key bindings.
type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunModelsTUI runs the models listing TUI.
func RunModelsTUI(data any) error {
	summaries, ok := data.([]manifest.ModelSummary)
	if !ok {
		return fmt.Errorf("invalid data type for models view")
	}
	model := NewModelsModel(summaries)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// RenderModelsStatic renders the models listing without full TUI (for fallback).
func RenderModelsStatic(summaries []manifest.ModelSummary) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Models"))
	b.WriteString("\n")
	for _, s := range summaries {
		marker := DocumentedStyle(s.Documented).Render("●")
		b.WriteString(fmt.Sprintf("%s %s  %s\n",
			marker,
			ValueStyle.Render(s.Name),
			HelpStyle.Render(modelItem{summary: s}.Description())))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
