package translate

import (
	"net/http"
	"net/url"
	"sync"
	"time"
)

// Scope is the request scope translation calls run in. While active it owns
// one HTTP client whose connections are reused across calls; Release closes
// them.
//
// Callers use acquire-if-absent semantics:
//
//	if sc.Acquire() {
//		defer sc.Release()
//	}
//
// so only the caller that activated the scope ends it.
type Scope struct {
	mu      sync.Mutex
	active  bool
	client  *http.Client
	proxy   string
	timeout time.Duration
}

// NewScope returns an inactive scope whose clients use proxy and timeout.
func NewScope(proxy string, timeout time.Duration) *Scope {
	return &Scope{proxy: proxy, timeout: timeout}
}

// Acquire activates the scope. It reports whether this call activated it;
// it returns false if the scope was already active.
func (s *Scope) Acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return false
	}
	s.active = true
	s.client = makeHTTPClient(s.proxy, s.timeout)
	return true
}

// Release deactivates the scope and closes its idle connections.
func (s *Scope) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.client.CloseIdleConnections()
	s.client = nil
	s.active = false
}

// Active reports whether the scope is active.
func (s *Scope) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// HTTPClient returns the scope's client while active, otherwise a new
// single-use client.
func (s *Scope) HTTPClient() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return s.client
	}
	return makeHTTPClient(s.proxy, s.timeout)
}

// ---------------------------------------------------------------------------
// HTTP client with proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
