package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/PizzaHomicide/sociallogin/internal/domain"
	"github.com/PizzaHomicide/sociallogin/internal/log"
)

const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
)

// AccessTokenCallback receives the outcome of a login.  On success err is nil and accessToken is set; refreshToken
// is empty when the API did not issue one.  On failure both tokens are empty.
type AccessTokenCallback func(accessToken, refreshToken string, err error)

// RequestState tracks how far a SocialLoginRequest has progressed
type RequestState string

const (
	StateCreated          RequestState = "created"
	StateRequestPrepared  RequestState = "request_prepared"
	StateAwaitingResponse RequestState = "awaiting_response"
	StateSucceeded        RequestState = "succeeded"
	StateFailed           RequestState = "failed"
)

// SocialLoginRequest exchanges a social provider credential for API tokens.  The API answers by setting access_token
// and refresh_token cookies for the request URL; the body is never read.
//
// The callback is always posted through the dispatcher, which must not be nil, and fires exactly once.
type SocialLoginRequest struct {
	url        *url.URL
	provider   domain.SocialProvider
	payload    domain.AuthorizationPayload
	dispatcher Dispatcher
	callback   AccessTokenCallback

	mu    sync.Mutex
	state RequestState
	once  sync.Once
}

// NewSocialLoginWithAccessToken creates a request that exchanges a provider access token
func NewSocialLoginWithAccessToken(u *url.URL, accessToken string, provider domain.SocialProvider, dispatcher Dispatcher, callback AccessTokenCallback) *SocialLoginRequest {
	return newSocialLoginRequest(u, domain.AccessToken(accessToken), provider, dispatcher, callback)
}

// NewSocialLoginWithAuthorizationCode creates a request that exchanges a provider authorization code
func NewSocialLoginWithAuthorizationCode(u *url.URL, code string, provider domain.SocialProvider, dispatcher Dispatcher, callback AccessTokenCallback) *SocialLoginRequest {
	return newSocialLoginRequest(u, domain.AuthorizationCode(code), provider, dispatcher, callback)
}

func newSocialLoginRequest(u *url.URL, payload domain.AuthorizationPayload, provider domain.SocialProvider, dispatcher Dispatcher, callback AccessTokenCallback) *SocialLoginRequest {
	return &SocialLoginRequest{
		url:        u,
		provider:   provider,
		payload:    payload,
		dispatcher: dispatcher,
		callback:   callback,
		state:      StateCreated,
	}
}

func (r *SocialLoginRequest) URL() *url.URL {
	return r.url
}

func (r *SocialLoginRequest) Provider() domain.SocialProvider {
	return r.provider
}

func (r *SocialLoginRequest) Payload() domain.AuthorizationPayload {
	return r.payload
}

// State returns the current lifecycle state
func (r *SocialLoginRequest) State() RequestState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *SocialLoginRequest) setState(s RequestState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Body returns the JSON document sent to the API
func (r *SocialLoginRequest) Body() ([]byte, error) {
	body := map[string]map[string]string{
		"providerData": {
			"providerId":          r.provider.String(),
			r.payload.FieldName(): r.payload.Value(),
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("unable to encode social login body: %w", err)
	}
	return data, nil
}

// Prepare turns req into a POST carrying the provider data
func (r *SocialLoginRequest) Prepare(req *http.Request) error {
	data, err := r.Body()
	if err != nil {
		return err
	}

	req.Method = http.MethodPost
	req.Body = io.NopCloser(bytes.NewReader(data))
	req.ContentLength = int64(len(data))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}

	r.setState(StateRequestPrepared)
	log.Debug("Prepared social login request", "provider", r.provider, "payload", r.payload.Kind())
	return nil
}

// Sent records that the request is on the wire
func (r *SocialLoginRequest) Sent() {
	r.setState(StateAwaitingResponse)
}

// Complete reads the tokens out of the cookies the API set for the request URL
func (r *SocialLoginRequest) Complete(_ []byte, _ *http.Response, jar http.CookieJar) {
	if jar == nil {
		log.Warn("No cookie jar available to read social login tokens from")
		r.Fail(domain.ErrAPIResponse)
		return
	}

	var accessToken, refreshToken string
	// Duplicate names resolve to the last cookie the jar returns
	for _, cookie := range jar.Cookies(r.url) {
		switch cookie.Name {
		case accessTokenCookie:
			accessToken = cookie.Value
		case refreshTokenCookie:
			refreshToken = cookie.Value
		}
	}

	if accessToken == "" {
		log.Warn("Social login response did not set an access token", "provider", r.provider)
		r.Fail(domain.ErrAPIResponse)
		return
	}

	log.Info("Social login succeeded", "provider", r.provider, "has_refresh_token", refreshToken != "")
	r.finish(accessToken, refreshToken, nil)
}

// Fail reports err to the callback with no tokens
func (r *SocialLoginRequest) Fail(err error) {
	r.finish("", "", err)
}

// finish moves to a terminal state and posts the callback.  Only the first call has any effect.
func (r *SocialLoginRequest) finish(accessToken, refreshToken string, err error) {
	r.once.Do(func() {
		if err != nil {
			r.setState(StateFailed)
		} else {
			r.setState(StateSucceeded)
		}

		if r.callback == nil {
			return
		}
		r.dispatcher.Post(func() {
			r.callback(accessToken, refreshToken, err)
		})
	})
}
