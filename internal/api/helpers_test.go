package api

import (
	"net/http"
	"net/url"
	"sync"
)

// recordingDispatcher queues posted functions until Drain is called, so tests can observe that callbacks never run
// before being dispatched.
type recordingDispatcher struct {
	mu     sync.Mutex
	queued []func()
	posts  int
}

func (d *recordingDispatcher) Post(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queued = append(d.queued, fn)
	d.posts++
}

// Drain runs every queued function and returns how many ran
func (d *recordingDispatcher) Drain() int {
	d.mu.Lock()
	queued := d.queued
	d.queued = nil
	d.mu.Unlock()

	for _, fn := range queued {
		fn()
	}
	return len(queued)
}

func (d *recordingDispatcher) Posts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.posts
}

// callbackRecorder captures every callback invocation
type callbackRecorder struct {
	calls []callbackCall
}

type callbackCall struct {
	accessToken  string
	refreshToken string
	err          error
}

func (c *callbackRecorder) callback(accessToken, refreshToken string, err error) {
	c.calls = append(c.calls, callbackCall{accessToken: accessToken, refreshToken: refreshToken, err: err})
}

// fixedJar returns the same cookies for every URL, in the order given
type fixedJar struct {
	cookies []*http.Cookie
}

func (j *fixedJar) SetCookies(*url.URL, []*http.Cookie) {}

func (j *fixedJar) Cookies(*url.URL) []*http.Cookie {
	return j.cookies
}

func mustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}
