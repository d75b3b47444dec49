package keybindings

import tea "github.com/charmbracelet/bubbletea"

// Action represents a specific action that can be triggered by a key
type Action string

const (
	// Global actions
	ActionQuit       Action = "quit"
	ActionToggleHelp Action = "toggle_help"
	ActionLogout     Action = "logout"
	ActionBack       Action = "back" // General purpose "go back" or "cancel"

	// Navigation actions
	ActionMoveUp     Action = "move_up"
	ActionMoveDown   Action = "move_down"
	ActionPageUp     Action = "page_up"
	ActionPageDown   Action = "page_down"
	ActionMoveTop    Action = "move_top"
	ActionMoveBottom Action = "move_bottom"

	// Provider selection actions
	ActionSelectProvider Action = "select_provider"

	// Credential entry actions
	ActionTogglePayloadKind Action = "toggle_payload_kind"
	ActionSubmitCredential  Action = "submit_credential"
	ActionBrowserLogin      Action = "browser_login"

	// Result view actions
	ActionNewLogin Action = "new_login"
)

// ContextName represents a specific UI context in the application that has its own keybinds
type ContextName string

const (
	ContextGlobal         ContextName = "global"
	ContextProviderSelect ContextName = "provider_select"
	ContextCredentials    ContextName = "credentials"
	ContextResult         ContextName = "result"
	ContextHelp           ContextName = "help"
)

var ContextBindings = map[ContextName][]Binding{
	ContextGlobal:         globalBindings,
	ContextProviderSelect: providerSelectBindings,
	ContextCredentials:    credentialBindings,
	ContextResult:         resultBindings,
	ContextHelp:           helpBindings,
}

// KeyMap stores the keys bound to an action
type KeyMap struct {
	Primary   string
	Secondary string // Optional alternative key
	Help      string // Description for help screen
}

// Binding maps an action to its keys and help text
type Binding struct {
	Action Action
	KeyMap KeyMap
}

// navigationBindings are shared by every list style view.  Letter keys are left out because those views also take
// free text input.
var navigationBindings = []Binding{
	{
		Action: ActionMoveUp,
		KeyMap: KeyMap{
			Primary:   "up",
			Secondary: "ctrl+p",
			Help:      "Move cursor up",
		},
	},
	{
		Action: ActionMoveDown,
		KeyMap: KeyMap{
			Primary:   "down",
			Secondary: "ctrl+n",
			Help:      "Move cursor down",
		},
	},
	{
		Action: ActionPageUp,
		KeyMap: KeyMap{
			Primary: "pgup",
			Help:    "Move up one page",
		},
	},
	{
		Action: ActionPageDown,
		KeyMap: KeyMap{
			Primary: "pgdown",
			Help:    "Move down one page",
		},
	},
	{
		Action: ActionMoveTop,
		KeyMap: KeyMap{
			Primary: "home",
			Help:    "Move top of view",
		},
	},
	{
		Action: ActionMoveBottom,
		KeyMap: KeyMap{
			Primary: "end",
			Help:    "Move bottom of view",
		},
	},
}

var globalBindings = []Binding{
	{
		Action: ActionQuit,
		KeyMap: KeyMap{
			Primary: "ctrl+c",
			Help:    "Quit application",
		},
	},
	{
		Action: ActionToggleHelp,
		KeyMap: KeyMap{
			Primary: "ctrl+h",
			Help:    "Toggle help screen",
		},
	},
	{
		Action: ActionLogout,
		KeyMap: KeyMap{
			Primary: "ctrl+l",
			Help:    "Logout (forget stored tokens)",
		},
	},
	{
		Action: ActionBack,
		KeyMap: KeyMap{
			Primary: "esc",
			Help:    "Go back/cancel current action",
		},
	},
}

var providerSelectBindings = withNavigation([]Binding{
	{
		Action: ActionSelectProvider,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Log in with the highlighted provider",
		},
	},
})

var credentialBindings = []Binding{
	{
		Action: ActionTogglePayloadKind,
		KeyMap: KeyMap{
			Primary: "tab",
			Help:    "Switch between access token and authorization code",
		},
	},
	{
		Action: ActionSubmitCredential,
		KeyMap: KeyMap{
			Primary: "enter",
			Help:    "Exchange the credential for API tokens",
		},
	},
	{
		Action: ActionBrowserLogin,
		KeyMap: KeyMap{
			Primary: "ctrl+b",
			Help:    "Get an authorization code by logging in through the browser",
		},
	},
}

var resultBindings = []Binding{
	{
		Action: ActionNewLogin,
		KeyMap: KeyMap{
			Primary:   "enter",
			Secondary: "n",
			Help:      "Start a new login",
		},
	},
}

var helpBindings = withNavigation([]Binding{})

// GetActionKey returns the primary key for an action
func GetActionKey(action Action, bindings []Binding) string {
	for _, binding := range bindings {
		if binding.Action == action {
			return binding.KeyMap.Primary
		}
	}
	return ""
}

// GetBindingByKey returns the action and help text for a given key
func GetBindingByKey(key string, bindings []Binding) (Action, string) {
	for _, binding := range bindings {
		if binding.KeyMap.Primary == key || binding.KeyMap.Secondary == key {
			return binding.Action, binding.KeyMap.Help
		}
	}
	return "", ""
}

// GetActionByKey returns just the action for a given key, or an empty Action if not found
func GetActionByKey(keyMsg tea.KeyMsg, name ContextName) Action {
	action, _ := GetBindingByKey(keyMsg.String(), ContextBindings[name])
	return action
}

// FormatKeyHelp formats a key binding for display in help text
func FormatKeyHelp(binding Binding) string {
	if binding.KeyMap.Secondary != "" {
		return binding.KeyMap.Primary + "/" + binding.KeyMap.Secondary + ": " + binding.KeyMap.Help
	}
	return binding.KeyMap.Primary + ": " + binding.KeyMap.Help
}

// GetHelpText generates formatted help text for a set of bindings
func GetHelpText(title string, bindings []Binding) string {
	helpText := "## " + title + "\n\n"
	for _, binding := range bindings {
		helpText += "* " + FormatKeyHelp(binding) + "\n"
	}
	return helpText
}

// withNavigation is a helper function to include navigation bindings in other binding sets
func withNavigation(bindings []Binding) []Binding {
	return append(append([]Binding{}, navigationBindings...), bindings...)
}
