package models

import (
	"strings"

	kb "github.com/PizzaHomicide/sociallogin/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/sociallogin/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel displays the key bindings for the view it was opened from, with scrolling
type HelpModel struct {
	width, height int
	context       View
	viewport      viewport.Model
}

func NewHelpModel() *HelpModel {
	return &HelpModel{
		viewport: viewport.New(0, 0),
	}
}

// SetContext chooses which view's bindings are shown
func (m *HelpModel) SetContext(view View) {
	m.context = view
	m.updateContent()
	m.viewport.GotoTop()
}

func (m *HelpModel) Init() tea.Cmd {
	return nil
}

func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
	case tea.KeyMsg:
		switch kb.GetActionByKey(msg, kb.ContextHelp) {
		case kb.ActionMoveUp:
			m.viewport.LineUp(1)
		case kb.ActionMoveDown:
			m.viewport.LineDown(1)
		case kb.ActionPageUp:
			m.viewport.ViewUp()
		case kb.ActionPageDown:
			m.viewport.ViewDown()
		case kb.ActionMoveTop:
			m.viewport.GotoTop()
		case kb.ActionMoveBottom:
			m.viewport.GotoBottom()
		}
	}
	return m, cmd
}

func (m *HelpModel) Resize(width, height int) {
	m.width = width
	m.height = height

	m.viewport.Width = max(min(width, 80)-4, 1)
	m.viewport.Height = max(height-8, 1)
	m.updateContent()
}

func (m *HelpModel) updateContent() {
	var b strings.Builder
	b.WriteString(kb.GetHelpText("Global", kb.ContextBindings[kb.ContextGlobal]))

	if context, ok := helpContexts[m.context]; ok {
		b.WriteString("\n")
		b.WriteString(kb.GetHelpText(context.title, kb.ContextBindings[context.name]))
	}
	m.viewport.SetContent(b.String())
}

var helpContexts = map[View]struct {
	title string
	name  kb.ContextName
}{
	ViewProviderSelect: {"Provider selection", kb.ContextProviderSelect},
	ViewCredentials:    {"Credential entry", kb.ContextCredentials},
	ViewResult:         {"Login result", kb.ContextResult},
}

func (m *HelpModel) View() string {
	contentWidth := min(m.width, 80)
	header := styles.Header(contentWidth, "Help")
	body := styles.ContentBox(contentWidth, m.viewport.View(), 0)
	footer := styles.CenteredText(contentWidth, styles.Muted.Render("esc or ctrl+h to close"))
	return styles.CenteredView(m.width, m.height, lipgloss.JoinVertical(lipgloss.Center, header, body, footer))
}
