package auth

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/PizzaHomicide/sociallogin/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startAuth(t *testing.T) *Auth {
	t.Helper()
	a, err := NewAuth(domain.ProviderGoogle, "client-123", []string{"openid", "email"}, 0)
	require.NoError(t, err)
	require.NoError(t, a.StartCallbackServer())
	return a
}

// redirect simulates the provider sending the browser back to the callback server
func redirect(t *testing.T, a *Auth, params url.Values) int {
	t.Helper()
	redirectURL, err := url.Parse(a.LoginURL.Query().Get("redirect_uri"))
	require.NoError(t, err)
	redirectURL.RawQuery = params.Encode()

	resp, err := http.Get(redirectURL.String())
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestNewAuth(t *testing.T) {
	_, err := NewAuth(domain.SocialProvider("myspace"), "id", nil, 0)
	assert.Error(t, err)

	_, err = NewAuth(domain.ProviderGitHub, "", nil, 0)
	assert.Error(t, err)
}

func TestLoginURL(t *testing.T) {
	a := startAuth(t)
	defer a.StopCallbackServer()

	assert.Equal(t, "accounts.google.com", a.LoginURL.Host)
	query := a.LoginURL.Query()
	assert.Equal(t, "client-123", query.Get("client_id"))
	assert.Equal(t, "code", query.Get("response_type"))
	assert.Equal(t, "openid email", query.Get("scope"))
	assert.NotEmpty(t, query.Get("state"))
	assert.Contains(t, query.Get("redirect_uri"), "http://127.0.0.1:")
}

func TestCallbackDeliversCode(t *testing.T) {
	a := startAuth(t)

	status := redirect(t, a, url.Values{"code": {"the-code"}, "state": {a.LoginURL.Query().Get("state")}})
	assert.Equal(t, http.StatusOK, status)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	code, err := a.WaitForCode(ctx)
	require.NoError(t, err)
	assert.Equal(t, "the-code", code)
}

func TestCallbackRejectsWrongState(t *testing.T) {
	a := startAuth(t)

	status := redirect(t, a, url.Values{"code": {"the-code"}, "state": {"forged"}})
	assert.Equal(t, http.StatusBadRequest, status)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := a.WaitForCode(ctx)
	assert.ErrorIs(t, err, ErrStateMismatch)
}

func TestCallbackProviderError(t *testing.T) {
	a := startAuth(t)

	redirect(t, a, url.Values{"error": {"access_denied"}, "error_description": {"User denied"}})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := a.WaitForCode(ctx)

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, "access_denied", providerErr.Code)
	assert.Equal(t, "User denied", providerErr.Description)
}

func TestWaitForCodeTimeout(t *testing.T) {
	a := startAuth(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := a.WaitForCode(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoAuthOpensBrowser(t *testing.T) {
	a, err := NewAuth(domain.ProviderFacebook, "fb-client", []string{"email"}, 0)
	require.NoError(t, err)

	var announced string
	a.OnLoginURL(func(u string) { announced = u })
	opened := make(chan string, 1)
	a.openBrowser = func(u string) error {
		assert.NotEmpty(t, announced, "the URL is announced before the browser opens")
		opened <- u
		return nil
	}

	done := make(chan Result, 1)
	go func() { done <- a.DoAuth(context.Background()) }()

	loginURL, err := url.Parse(<-opened)
	require.NoError(t, err)
	assert.Equal(t, "www.facebook.com", loginURL.Host)

	redirectURL, err := url.Parse(loginURL.Query().Get("redirect_uri"))
	require.NoError(t, err)
	redirectURL.RawQuery = url.Values{"code": {"fb-code"}, "state": {loginURL.Query().Get("state")}}.Encode()
	resp, err := http.Get(redirectURL.String())
	require.NoError(t, err)
	resp.Body.Close()

	result := <-done
	require.NoError(t, result.Error)
	assert.Equal(t, "fb-code", result.Code)
	assert.Equal(t, loginURL.String(), announced)
}

func TestStartFailsWhenPortIsBusy(t *testing.T) {
	first := startAuth(t)
	defer first.StopCallbackServer()
	redirectURL, err := url.Parse(first.LoginURL.Query().Get("redirect_uri"))
	require.NoError(t, err)
	port, err := strconv.Atoi(redirectURL.Port())
	require.NoError(t, err)

	second, err := NewAuth(domain.ProviderGoogle, "client-123", nil, port)
	require.NoError(t, err)
	opened := false
	second.openBrowser = func(string) error {
		opened = true
		return nil
	}

	assert.Error(t, second.Start())
	assert.False(t, opened)
}
