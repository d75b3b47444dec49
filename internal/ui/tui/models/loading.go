package models

import (
	"strings"
	"time"

	"github.com/PizzaHomicide/sociallogin/internal/ui/tui/styles"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LoadingModel displays a loading indicator with contextual messages
type LoadingModel struct {
	width, height int
	title         string // Optional title for the loading box
	message       string // Primary message displayed with the spinner
	contextInfo   string // Optional additional context
	spinner       spinner.Model
	startTime     time.Time
}

// NewLoadingModel creates a new loading model with the required message
func NewLoadingModel(message string) *LoadingModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))

	return &LoadingModel{
		message:   message,
		spinner:   s,
		startTime: time.Now(),
	}
}

// WithTitle adds an optional title to the loading box
func (m *LoadingModel) WithTitle(title string) *LoadingModel {
	m.title = title
	return m
}

// WithContextInfo adds additional context information
func (m *LoadingModel) WithContextInfo(info string) *LoadingModel {
	m.contextInfo = info
	return m
}

func (m *LoadingModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *LoadingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *LoadingModel) View() string {
	contentWidth := min(m.width-20, 80)
	if contentWidth < 40 {
		contentWidth = min(m.width-4, 40)
	}

	spinnerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#9D86FF")).
		Bold(true).
		PaddingRight(1)

	messageStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Bold(true)

	centerStyle := lipgloss.NewStyle().
		Width(contentWidth - 6). // Account for padding
		Align(lipgloss.Center)

	var contentBuilder strings.Builder
	primaryRow := spinnerStyle.Render(m.spinner.View()) + " " + messageStyle.Render(m.message)
	contentBuilder.WriteString(centerStyle.Render(primaryRow))

	if m.contextInfo != "" {
		contentBuilder.WriteString("\n\n")
		contentBuilder.WriteString(centerStyle.Inherit(styles.Muted).Italic(true).Render(m.contextInfo))
	}

	// Slow requests get the elapsed time so the user can tell nothing is stuck
	if elapsed := m.GetElapsedTime(); elapsed > 3*time.Second {
		contentBuilder.WriteString("\n\n")
		contentBuilder.WriteString(centerStyle.Inherit(styles.Muted).Render(elapsed.Truncate(time.Second).String() + " elapsed"))
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#9D86FF")).
		Padding(2, 3).
		Width(contentWidth)

	var finalView string
	if m.title != "" {
		header := styles.Header(contentWidth, m.title)
		finalView = lipgloss.JoinVertical(lipgloss.Center, header, boxStyle.Render(contentBuilder.String()))
	} else {
		finalView = boxStyle.Render(contentBuilder.String())
	}

	return styles.CenteredView(m.width, m.height, finalView)
}

// Resize updates the dimensions of the loading model
func (m *LoadingModel) Resize(width, height int) {
	m.width = width
	m.height = height
}

// GetElapsedTime returns the time elapsed since loading started
func (m *LoadingModel) GetElapsedTime() time.Duration {
	return time.Since(m.startTime)
}
