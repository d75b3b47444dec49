package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/PizzaHomicide/sociallogin/internal/log"
	"github.com/PizzaHomicide/sociallogin/internal/version"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout = 30 * time.Second
	// Error bodies larger than this are not inspected for a message
	maxErrorBody = 64 * 1024
)

// Request is a single API call run by a Manager.  The manager builds the HTTP request, lets the Request prepare it,
// performs the call and then hands the outcome back through exactly one of Complete or Fail.
type Request interface {
	// URL is the target of the request
	URL() *url.URL
	// Prepare sets the method and body of the outgoing request.  A returned error aborts the call and is reported
	// through Fail.
	Prepare(req *http.Request) error
	// Complete is called for 2xx responses with the raw body and the cookie jar the client stored response cookies
	// in.  jar is nil if the client has no cookie jar.
	Complete(data []byte, resp *http.Response, jar http.CookieJar)
	// Fail is called for preparation, transport and non-2xx failures
	Fail(err error)
}

// sentNotifier is implemented by Requests that want to know when the call has been handed to the transport
type sentNotifier interface {
	Sent()
}

// Config holds the settings for a Manager
type Config struct {
	// Timeout for a single request including reading the body.  Defaults to 30s.
	Timeout time.Duration
	// Jar stores cookies set by the API.  When nil a new in-memory jar is created.
	Jar http.CookieJar
}

// Manager owns the HTTP client used to talk to the API and runs Requests against it
type Manager struct {
	mu     sync.Mutex
	client *http.Client
}

// NewManager creates a manager with its own HTTP client and cookie jar
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	jar := cfg.Jar
	if jar == nil {
		var err error
		jar, err = NewCookieJar()
		if err != nil {
			return nil, err
		}
	}

	return &Manager{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
	}, nil
}

// NewManagerWithClient creates a manager around an existing client.  The client's Jar is what Requests see in
// Complete, so a client without a jar makes cookie based requests fail.
func NewManagerWithClient(client *http.Client) *Manager {
	return &Manager{client: client}
}

// NewCookieJar creates an in-memory cookie jar that respects public suffix boundaries
func NewCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("unable to create cookie jar: %w", err)
	}
	return jar, nil
}

// ResetCookies forgets every cookie the API has set, so the next Request cannot see a previous session's tokens.
// Requests already running keep the jar they started with.  A client without a jar is left without one.
func (m *Manager) ResetCookies() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.client.Jar == nil {
		return nil
	}
	jar, err := NewCookieJar()
	if err != nil {
		return err
	}

	client := *m.client
	client.Jar = jar
	m.client = &client
	log.Debug("API cookies reset")
	return nil
}

func (m *Manager) currentClient() *http.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.client
}

// Execute runs r to completion.  It blocks until the response has been handed to r.
func (m *Manager) Execute(ctx context.Context, r Request) {
	client := m.currentClient()
	requestID := uuid.NewString()
	target := r.URL()
	if target == nil {
		r.Fail(fmt.Errorf("request has no url"))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		r.Fail(fmt.Errorf("unable to build request: %w", err))
		return
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "sociallogin/"+version.GetVersion())
	req.Header.Set("X-Request-ID", requestID)

	if err := r.Prepare(req); err != nil {
		log.Warn("Failed to prepare API request", "request_id", requestID, "error", err)
		r.Fail(err)
		return
	}

	log.Debug("Sending API request", "request_id", requestID, "method", req.Method, "url", target.Redacted())
	if n, ok := r.(sentNotifier); ok {
		n.Sent()
	}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		log.Warn("API request failed", "request_id", requestID, "error", err)
		r.Fail(&NetworkError{Err: err})
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn("Failed to read API response", "request_id", requestID, "error", err)
		r.Fail(&NetworkError{Err: err})
		return
	}

	log.Debug("Received API response", "request_id", requestID, "status", resp.StatusCode,
		"duration", time.Since(start), "bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.Fail(&StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)})
		return
	}

	r.Complete(data, resp, client.Jar)
}

// errorMessage pulls a human readable message out of a JSON error body, if there is one
func errorMessage(data []byte) string {
	if len(data) == 0 || len(data) > maxErrorBody {
		return ""
	}
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
