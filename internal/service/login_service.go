package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PizzaHomicide/sociallogin/internal/api"
	"github.com/PizzaHomicide/sociallogin/internal/config"
	"github.com/PizzaHomicide/sociallogin/internal/domain"
	"github.com/PizzaHomicide/sociallogin/internal/log"
)

// LoginService runs social logins against the configured identity API
type LoginService struct {
	manager    *api.Manager
	loginURL   *url.URL
	dispatcher api.Dispatcher
}

// NewLoginService builds the manager and login URL from cfg.  Callbacks of every login are posted to dispatcher.
func NewLoginService(cfg *config.Config, dispatcher api.Dispatcher) (*LoginService, error) {
	loginURL, err := url.Parse(cfg.LoginURL())
	if err != nil {
		return nil, fmt.Errorf("invalid login url: %w", err)
	}
	if loginURL.Scheme == "" || loginURL.Host == "" {
		return nil, fmt.Errorf("invalid login url %q: scheme and host are required", cfg.LoginURL())
	}

	manager, err := api.NewManager(api.Config{
		Timeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, err
	}

	return NewLoginServiceWithManager(manager, loginURL, dispatcher), nil
}

// NewLoginServiceWithManager creates a service around an existing manager
func NewLoginServiceWithManager(manager *api.Manager, loginURL *url.URL, dispatcher api.Dispatcher) *LoginService {
	return &LoginService{
		manager:    manager,
		loginURL:   loginURL,
		dispatcher: dispatcher,
	}
}

// LoginURL returns the endpoint social login requests are posted to
func (s *LoginService) LoginURL() *url.URL {
	return s.loginURL
}

// ResetSession drops the cookies earlier logins left behind, so a later login only succeeds on tokens issued to it
func (s *LoginService) ResetSession() error {
	log.Info("Resetting API session")
	return s.manager.ResetCookies()
}

// LoginWithAccessToken exchanges a provider access token.  Blocks until the response is handled; cb is posted to the
// dispatcher.
func (s *LoginService) LoginWithAccessToken(ctx context.Context, provider domain.SocialProvider, accessToken string, cb api.AccessTokenCallback) {
	log.Info("Starting social login", "provider", provider, "payload", domain.PayloadAccessToken, "token", log.Secret(accessToken))
	s.manager.Execute(ctx, api.NewSocialLoginWithAccessToken(s.loginURL, accessToken, provider, s.dispatcher, cb))
}

// LoginWithAuthorizationCode exchanges a provider authorization code.  Blocks until the response is handled; cb is
// posted to the dispatcher.
func (s *LoginService) LoginWithAuthorizationCode(ctx context.Context, provider domain.SocialProvider, code string, cb api.AccessTokenCallback) {
	log.Info("Starting social login", "provider", provider, "payload", domain.PayloadAuthorizationCode)
	s.manager.Execute(ctx, api.NewSocialLoginWithAuthorizationCode(s.loginURL, code, provider, s.dispatcher, cb))
}

// Login exchanges whichever credential payload carries
func (s *LoginService) Login(ctx context.Context, provider domain.SocialProvider, payload domain.AuthorizationPayload, cb api.AccessTokenCallback) {
	switch payload.Kind() {
	case domain.PayloadAuthorizationCode:
		s.LoginWithAuthorizationCode(ctx, provider, payload.Value(), cb)
	default:
		s.LoginWithAccessToken(ctx, provider, payload.Value(), cb)
	}
}

// SaveTokens persists a successful login to the config file so it survives restarts
func SaveTokens(provider domain.SocialProvider, result domain.LoginResult) error {
	if !result.Succeeded() {
		return fmt.Errorf("refusing to save tokens from a failed login")
	}
	return config.UpdateConfig(func(c *config.Config) {
		c.Auth.Provider = provider.String()
		c.Auth.AccessToken = result.AccessToken
		c.Auth.RefreshToken = result.RefreshToken
	})
}

// ClearTokens removes stored tokens from the config file.  Cookies held by a running LoginService are not touched;
// use ResetSession for those.
func ClearTokens() error {
	return config.UpdateConfig(func(c *config.Config) {
		c.Auth.Provider = ""
		c.Auth.AccessToken = ""
		c.Auth.RefreshToken = ""
	})
}
