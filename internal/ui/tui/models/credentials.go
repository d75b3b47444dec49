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

// CredentialsModel collects the provider credential to exchange: either an access token or an authorization code
type CredentialsModel struct {
	width, height int
	provider      domain.SocialProvider
	kind          domain.PayloadKind
	input         textinput.Model
	// browserURL is shown while a browser login is waiting for the provider redirect
	browserURL string
	errMsg     string
}

func NewCredentialsModel() *CredentialsModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 4096

	m := &CredentialsModel{input: ti}
	m.setKind(domain.PayloadAuthorizationCode)
	return m
}

// SetProvider prepares the model for a fresh credential for provider
func (m *CredentialsModel) SetProvider(provider domain.SocialProvider) tea.Cmd {
	m.provider = provider
	m.input.SetValue("")
	m.browserURL = ""
	m.errMsg = ""
	return m.input.Focus()
}

func (m *CredentialsModel) Provider() domain.SocialProvider {
	return m.provider
}

// SetBrowserURL records the provider login page opened for a browser login
func (m *CredentialsModel) SetBrowserURL(url string) {
	m.browserURL = url
}

// SetError shows err below the input, or clears the message when err is nil
func (m *CredentialsModel) SetError(err error) {
	if err == nil {
		m.errMsg = ""
		return
	}
	m.errMsg = err.Error()
}

func (m *CredentialsModel) setKind(kind domain.PayloadKind) {
	m.kind = kind
	if kind == domain.PayloadAuthorizationCode {
		m.input.Placeholder = "Paste the authorization code"
	} else {
		m.input.Placeholder = "Paste the provider access token"
	}
}

// Payload builds the payload for the current input
func (m *CredentialsModel) Payload() domain.AuthorizationPayload {
	value := strings.TrimSpace(m.input.Value())
	if m.kind == domain.PayloadAuthorizationCode {
		return domain.AuthorizationCode(value)
	}
	return domain.AccessToken(value)
}

func (m *CredentialsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *CredentialsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch kb.GetActionByKey(msg, kb.ContextCredentials) {
		case kb.ActionTogglePayloadKind:
			if m.kind == domain.PayloadAuthorizationCode {
				m.setKind(domain.PayloadAccessToken)
			} else {
				m.setKind(domain.PayloadAuthorizationCode)
			}
			log.Debug("Credential kind changed", "kind", m.kind)
			return m, nil

		case kb.ActionSubmitCredential:
			payload := m.Payload()
			if payload.Value() == "" {
				m.errMsg = "Enter a credential first"
				return m, nil
			}
			m.errMsg = ""
			provider := m.provider
			return m, func() tea.Msg { return CredentialSubmittedMsg{Provider: provider, Payload: payload} }

		case kb.ActionBrowserLogin:
			m.errMsg = ""
			provider := m.provider
			return m, func() tea.Msg { return BrowserLoginRequestedMsg{Provider: provider} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *CredentialsModel) Resize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = max(min(width, 80)-8, 10)
}

func (m *CredentialsModel) View() string {
	contentWidth := min(m.width, 80)

	header := styles.Header(contentWidth, "Log in with "+m.provider.DisplayName())

	var b strings.Builder
	codeTab, tokenTab := styles.Unselected, styles.Unselected
	if m.kind == domain.PayloadAuthorizationCode {
		codeTab = styles.Selected
	} else {
		tokenTab = styles.Selected
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, codeTab.Render("Authorization code"), " ", tokenTab.Render("Access token")))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())

	if m.browserURL != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Info.Render("Waiting for the provider.  If your browser didn't open, visit:"))
		b.WriteString("\n")
		b.WriteString(styles.Url.Render(m.browserURL))
	}

	if m.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Error.Render(m.errMsg))
	}

	mainContent := styles.ContentBox(contentWidth, b.String(), 1)
	footer := components.KeyBindingsBar(contentWidth, kb.ContextCredentials,
		kb.ActionTogglePayloadKind, kb.ActionSubmitCredential, kb.ActionBrowserLogin)

	return styles.CenteredView(m.width, m.height, lipgloss.JoinVertical(lipgloss.Center, header, mainContent, footer))
}
