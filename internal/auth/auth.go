package auth

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strconv"
	"time"

	"github.com/PizzaHomicide/sociallogin/internal/domain"
	"github.com/PizzaHomicide/sociallogin/internal/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	callbackPath = "/callback"
	authTimeout  = 5 * time.Minute
)

// ErrStateMismatch is returned when the provider redirect carries a state that this login did not issue
var ErrStateMismatch = errors.New("oauth state mismatch")

// Result represents the outcome of a browser login attempt
type Result struct {
	Code  string
	Error error
}

// ProviderError is reported by the provider on the redirect, for example when the user denies access
type ProviderError struct {
	Code        string
	Description string
}

func (e *ProviderError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("provider returned %s: %s", e.Code, e.Description)
	}
	return "provider returned " + e.Code
}

// Auth obtains an authorization code from a social provider by sending the user through the provider's consent page
// in a browser and catching the redirect on a local server.
type Auth struct {
	// LoginURL is only set once the callback server is listening
	LoginURL *url.URL

	provider    domain.SocialProvider
	oauthConfig *oauth2.Config
	state       string
	port        int
	resultCh    chan Result
	httpServer  *http.Server
	openBrowser func(string) error
	onLoginURL  func(string)
}

// NewAuth creates an Auth for provider.  port 0 picks a free port when the callback server starts.
func NewAuth(provider domain.SocialProvider, clientID string, scopes []string, port int) (*Auth, error) {
	endpoint, err := providerEndpoint(provider)
	if err != nil {
		return nil, err
	}
	if clientID == "" {
		return nil, fmt.Errorf("no client id configured for %s", provider.DisplayName())
	}

	return &Auth{
		provider: provider,
		oauthConfig: &oauth2.Config{
			ClientID: clientID,
			Scopes:   scopes,
			Endpoint: endpoint,
		},
		state:       uuid.NewString(),
		port:        port,
		resultCh:    make(chan Result, 1),
		openBrowser: OpenBrowser,
	}, nil
}

func providerEndpoint(provider domain.SocialProvider) (oauth2.Endpoint, error) {
	switch provider {
	case domain.ProviderGoogle:
		return endpoints.Google, nil
	case domain.ProviderFacebook:
		return endpoints.Facebook, nil
	case domain.ProviderGitHub:
		return endpoints.GitHub, nil
	case domain.ProviderLinkedIn:
		return endpoints.LinkedIn, nil
	default:
		return oauth2.Endpoint{}, fmt.Errorf("unsupported social provider %q", provider)
	}
}

// StartCallbackServer starts the local server that receives the provider redirect
func (auth *Auth) StartCallbackServer() error {
	log.Info("Starting auth callback server", "provider", auth.provider)

	// Listen early so a busy port is reported before the browser is opened
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(auth.port)))
	if err != nil {
		log.Error("Could not listen on port", "port", auth.port, "error", err)
		return err
	}

	port := listener.Addr().(*net.TCPAddr).Port
	auth.oauthConfig.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d%s", port, callbackPath)
	loginURL, err := url.Parse(auth.oauthConfig.AuthCodeURL(auth.state))
	if err != nil {
		_ = listener.Close()
		return fmt.Errorf("failed to build provider login url: %w", err)
	}
	auth.LoginURL = loginURL

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, auth.handleCallback)

	auth.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := auth.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server error", "error", err)
		}
	}()

	return nil
}

// OnLoginURL registers fn to receive the provider login URL once the callback server is listening, before the
// browser is opened
func (auth *Auth) OnLoginURL(fn func(loginURL string)) {
	auth.onLoginURL = fn
}

// Start runs the callback server and sends the user's browser to the provider.  Follow it with Wait.
func (auth *Auth) Start() error {
	if err := auth.StartCallbackServer(); err != nil {
		return err
	}

	loginURL := auth.LoginURL.String()
	if auth.onLoginURL != nil {
		auth.onLoginURL(loginURL)
	}
	if err := auth.openBrowser(loginURL); err != nil {
		// The user can still open the URL by hand
		log.Warn("Failed to open browser automatically", "error", err)
	}
	return nil
}

// DoAuth performs the entire browser flow and returns the authorization code
func (auth *Auth) DoAuth(ctx context.Context) Result {
	if err := auth.Start(); err != nil {
		return Result{Error: err}
	}
	return auth.Wait(ctx)
}

// Wait waits up to five minutes for the provider redirect once the callback server is running
func (auth *Auth) Wait(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	code, err := auth.WaitForCode(ctx)
	if err != nil {
		return Result{Error: err}
	}
	return Result{Code: code}
}

// WaitForCode waits for the provider to redirect back with a code, then stops the callback server
func (auth *Auth) WaitForCode(ctx context.Context) (string, error) {
	log.Debug("Waiting for provider redirect", "provider", auth.provider)
	defer auth.StopCallbackServer()

	select {
	case <-ctx.Done():
		log.Debug("WaitForCode exiting because context is done")
		return "", ctx.Err()
	case result := <-auth.resultCh:
		if result.Error != nil {
			log.Warn("Provider login failed", "provider", auth.provider, "error", result.Error)
			return "", result.Error
		}
		log.Info("Received authorization code", "provider", auth.provider)
		return result.Code, nil
	}
}

// StopCallbackServer stops the HTTP server
func (auth *Auth) StopCallbackServer() {
	if auth.httpServer == nil {
		log.Warn("Call to StopCallbackServer when server was not started")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := auth.httpServer.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
	log.Debug("Callback server shutdown successfully")
}

func (auth *Auth) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var result Result
	switch {
	case query.Get("error") != "":
		result.Error = &ProviderError{Code: query.Get("error"), Description: query.Get("error_description")}
	case query.Get("state") != auth.state:
		result.Error = ErrStateMismatch
	case query.Get("code") == "":
		result.Error = errors.New("provider redirect did not include a code")
	default:
		result.Code = query.Get("code")
	}

	// Only the first redirect counts, later ones are answered but ignored
	select {
	case auth.resultCh <- result:
	default:
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if result.Error != nil {
		w.WriteHeader(http.StatusBadRequest)
	}
	if err := callbackPage.Execute(w, callbackPageData{Provider: auth.provider.DisplayName(), Err: result.Error}); err != nil {
		log.Error("Error handling callback", "error", err)
	}
}

type callbackPageData struct {
	Provider string
	Err      error
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>sociallogin</title>
</head>
<body>
{{if .Err}}
    <h1>{{.Provider}} login failed</h1>
    <p>{{.Err}}</p>
{{else}}
    <h1>{{.Provider}} login successful!</h1>
    <p>You can close this window and return to the terminal.</p>
{{end}}
</body>
</html>
`))

// OpenBrowser opens the specified URL in the default browser
func OpenBrowser(url string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	return cmd.Start()
}
