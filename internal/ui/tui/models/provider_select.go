package models

import (
	"strings"

	"github.com/PizzaHomicide/sociallogin/internal/domain"
	"github.com/PizzaHomicide/sociallogin/internal/log"
	"github.com/PizzaHomicide/sociallogin/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/sociallogin/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/sociallogin/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ProviderSelectModel lets the user pick a social provider, narrowing the list by typing part of its name
type ProviderSelectModel struct {
	width, height int
	filter        textinput.Model
	matches       []domain.SocialProvider
	cursor        int
}

func NewProviderSelectModel() *ProviderSelectModel {
	ti := textinput.New()
	ti.Placeholder = "Type to filter providers"
	ti.Prompt = "/ "
	ti.CharLimit = 32
	ti.Focus()

	return &ProviderSelectModel{
		filter:  ti,
		matches: domain.MatchProviders(""),
	}
}

func (m *ProviderSelectModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ProviderSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch kb.GetActionByKey(msg, kb.ContextProviderSelect) {
		case kb.ActionMoveUp:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case kb.ActionMoveDown:
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		case kb.ActionMoveTop, kb.ActionPageUp:
			m.cursor = 0
			return m, nil
		case kb.ActionMoveBottom, kb.ActionPageDown:
			m.cursor = max(len(m.matches)-1, 0)
			return m, nil
		case kb.ActionSelectProvider:
			provider, ok := m.Selected()
			if !ok {
				return m, nil
			}
			log.Info("Provider selected", "provider", provider)
			return m, func() tea.Msg { return ProviderSelectedMsg{Provider: provider} }
		}
	}

	// Everything else goes to the filter input
	var cmd tea.Cmd
	before := m.filter.Value()
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.applyFilter()
	}
	return m, cmd
}

// Selected returns the highlighted provider, if the filter left any
func (m *ProviderSelectModel) Selected() (domain.SocialProvider, bool) {
	if len(m.matches) == 0 {
		return "", false
	}
	return m.matches[m.cursor], true
}

func (m *ProviderSelectModel) applyFilter() {
	m.matches = domain.MatchProviders(m.filter.Value())
	if m.cursor >= len(m.matches) {
		m.cursor = max(len(m.matches)-1, 0)
	}
	log.Trace("Provider filter applied", "filter", m.filter.Value(), "matches", len(m.matches))
}

// Reset clears the filter and moves the cursor back to the top
func (m *ProviderSelectModel) Reset() {
	m.filter.SetValue("")
	m.matches = domain.MatchProviders("")
	m.cursor = 0
}

func (m *ProviderSelectModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ProviderSelectModel) View() string {
	contentWidth := min(m.width, 80)

	header := styles.Header(contentWidth, "Social Login")

	var b strings.Builder
	b.WriteString(styles.CenteredText(contentWidth-2, styles.Info.Render("Choose the provider you want to log in with")))
	b.WriteString("\n\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.matches) == 0 {
		b.WriteString(styles.Muted.Render("No providers match the filter"))
	}
	for i, p := range m.matches {
		if i == m.cursor {
			b.WriteString(styles.Selected.Render("> " + p.DisplayName()))
		} else {
			b.WriteString(styles.Unselected.Render("  " + p.DisplayName()))
		}
		b.WriteString("\n")
	}

	mainContent := styles.ContentBox(contentWidth, b.String(), 1)
	footer := components.KeyBindingsBar(contentWidth, kb.ContextProviderSelect, kb.ActionMoveUp, kb.ActionMoveDown, kb.ActionSelectProvider)

	return styles.CenteredView(m.width, m.height, lipgloss.JoinVertical(lipgloss.Center, header, mainContent, footer))
}
