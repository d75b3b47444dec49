package models

// View represents a specific UI view in the application
type View string

// Available views in the application
const (
	ViewProviderSelect View = "provider-select"
	ViewCredentials    View = "credentials"
	ViewLoading        View = "loading"
	ViewResult         View = "result"
	ViewHelp           View = "help"
)

// Modal represents a UI intended to be temporarily shown to the user before returning to the original view
type Modal string

const (
	ModalNone Modal = "none"
	ModalHelp Modal = "help"
)
