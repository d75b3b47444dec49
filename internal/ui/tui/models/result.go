package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PizzaHomicide/sociallogin/internal/api"
	"github.com/PizzaHomicide/sociallogin/internal/domain"
	"github.com/PizzaHomicide/sociallogin/internal/token"
	"github.com/PizzaHomicide/sociallogin/internal/ui/tui/components"
	kb "github.com/PizzaHomicide/sociallogin/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/sociallogin/internal/ui/tui/styles"
	"github.com/PizzaHomicide/sociallogin/internal/ui/tui/util"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ResultModel shows the outcome of a login, or the tokens remembered from a previous one
type ResultModel struct {
	width, height int
	provider      domain.SocialProvider
	result        domain.LoginResult
	info          *token.Info
	// stored is set when the tokens were loaded from config rather than from a login in this session
	stored bool
	now    func() time.Time
}

func NewResultModel() *ResultModel {
	return &ResultModel{now: time.Now}
}

// SetResult replaces the displayed outcome
func (m *ResultModel) SetResult(provider domain.SocialProvider, result domain.LoginResult, stored bool) {
	m.provider = provider
	m.result = result
	m.stored = stored
	m.info = nil
	if result.Succeeded() {
		if info, err := token.Inspect(result.AccessToken); err == nil {
			m.info = info
		}
	}
}

func (m *ResultModel) Result() domain.LoginResult {
	return m.result
}

func (m *ResultModel) Init() tea.Cmd {
	return nil
}

func (m *ResultModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

func (m *ResultModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

func (m *ResultModel) View() string {
	contentWidth := min(m.width, 100)
	valueWidth := max(contentWidth-22, 10)

	title := "Login result"
	if m.provider != "" {
		title = m.provider.DisplayName() + " login"
	}
	header := styles.Header(contentWidth, title)

	var b strings.Builder
	if m.result.Succeeded() {
		if m.stored {
			b.WriteString(styles.Success.Render("Logged in (tokens from a previous session)"))
		} else {
			b.WriteString(styles.Success.Render("Logged in"))
		}
		b.WriteString("\n\n")
		b.WriteString(row("Access token", util.TruncateString(m.result.AccessToken, valueWidth)))
		refresh := styles.Muted.Render("not issued")
		if m.result.RefreshToken != "" {
			refresh = util.TruncateString(m.result.RefreshToken, valueWidth)
		}
		b.WriteString(row("Refresh token", refresh))

		if m.info != nil {
			if m.info.Subject != "" {
				b.WriteString(row("Subject", util.TruncateString(m.info.Subject, valueWidth)))
			}
			if m.info.Issuer != "" {
				b.WriteString(row("Issuer", util.TruncateString(m.info.Issuer, valueWidth)))
			}
			if !m.info.ExpiresAt.IsZero() {
				expiry := m.info.ExpiresAt.Local().Format(time.RFC1123)
				expiry += " (" + util.FormatRemaining(m.info.ExpiresIn(m.now())) + ")"
				b.WriteString(row("Expires", expiry))
			}
		} else {
			b.WriteString(row("Format", styles.Muted.Render("opaque token")))
		}
	} else {
		b.WriteString(styles.Error.Render("Login failed"))
		b.WriteString("\n\n")
		b.WriteString(styles.Info.Render(describeError(m.result.Err)))
	}

	mainContent := styles.ContentBox(contentWidth, b.String(), 1)
	footer := components.KeyBindingsBar(contentWidth, kb.ContextResult, kb.ActionNewLogin)

	return styles.CenteredView(m.width, m.height, lipgloss.JoinVertical(lipgloss.Center, header, mainContent, footer))
}

func row(label, value string) string {
	return styles.Label.Width(16).Render(label) + "  " + value + "\n"
}

// describeError turns a login error into something a user can act on
func describeError(err error) string {
	var netErr *api.NetworkError
	var statusErr *api.StatusError
	switch {
	case err == nil:
		return "Unknown error"
	case errors.Is(err, domain.ErrAPIResponse):
		return "The API answered but did not issue an access token."
	case errors.As(err, &netErr):
		return fmt.Sprintf("Could not reach the API: %v", netErr.Err)
	case errors.As(err, &statusErr):
		if statusErr.Message != "" {
			return statusErr.Message
		}
		return fmt.Sprintf("The API rejected the login (HTTP %d).", statusErr.StatusCode)
	default:
		return err.Error()
	}
}
