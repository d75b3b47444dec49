package models

import (
	"github.com/PizzaHomicide/sociallogin/internal/auth"
	"github.com/PizzaHomicide/sociallogin/internal/domain"
)

// ProviderSelectedMsg is sent when the user picks a provider to log in with
type ProviderSelectedMsg struct {
	Provider domain.SocialProvider
}

// CredentialSubmittedMsg is sent when the user asks to exchange a credential
type CredentialSubmittedMsg struct {
	Provider domain.SocialProvider
	Payload  domain.AuthorizationPayload
}

// BrowserLoginRequestedMsg is sent when the user wants to fetch an authorization code through the browser
type BrowserLoginRequestedMsg struct {
	Provider domain.SocialProvider
}

// BrowserLoginStartedMsg carries the provider URL so it can be shown in case the browser did not open
type BrowserLoginStartedMsg struct {
	Provider domain.SocialProvider
	URL      string
	auth     *auth.Auth
}

// BrowserCodeReceivedMsg is sent when the provider redirected back with an authorization code
type BrowserCodeReceivedMsg struct {
	Provider domain.SocialProvider
	Code     string
}

// BrowserLoginFailedMsg is sent when the browser flow could not produce a code
type BrowserLoginFailedMsg struct {
	Provider domain.SocialProvider
	Error    error
}

// LoginCompletedMsg is delivered once the API exchange finished, successfully or not
type LoginCompletedMsg struct {
	Provider domain.SocialProvider
	Result   domain.LoginResult
	loginID  int
}
