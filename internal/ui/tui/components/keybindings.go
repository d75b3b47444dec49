package components

import (
	"fmt"
	"strings"

	kb "github.com/PizzaHomicide/sociallogin/internal/ui/tui/keybindings"
	"github.com/PizzaHomicide/sociallogin/internal/ui/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// keyStyle is used to highlight keyboard shortcuts in UI
var keyStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#7D56F4")).
	Bold(true)

// KeyBindingsBar creates a centered footer showing the keys for the given actions in a context
func KeyBindingsBar(width int, context kb.ContextName, actions ...kb.Action) string {
	bindings := kb.ContextBindings[context]

	var parts []string
	for _, action := range actions {
		for _, b := range bindings {
			if b.Action != action {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %s", keyStyle.Render(b.KeyMap.Primary), b.KeyMap.Help))
			break
		}
	}

	keyBar := styles.Info.Render(strings.Join(parts, " • "))
	return styles.CenteredText(width, keyBar)
}
