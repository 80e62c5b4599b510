package llm

import (
	"net"
	"net/http"
	"time"
)

// PrivacyHeaders are attached to every outbound generation request. They ask
// the backend not to train on or retain the content and mark the session as
// private.
var PrivacyHeaders = map[string]string{
	"HTTP-Referer":            "private",
	"X-Session-Type":          "private",
	"OpenAI-Internal-Request": "false",
	"X-Data-Use-Consent":      "false",
}

// identityHeaders are removed before a request leaves the process.
var identityHeaders = []string{"Cookie", "OpenAI-Organization", "OpenAI-Project"}

// TransportConfig sizes the pooled HTTP client.
type TransportConfig struct {
	Timeout      time.Duration
	MaxConns     int
	MaxIdleConns int
	// Headers are extra per-request headers (e.g. a provider API key header).
	Headers map[string]string
}

// NewHTTPClient builds the pooled client shared by every call of one
// Client. It carries no cookie jar.
func NewHTTPClient(cfg TransportConfig) *http.Client {
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = DefaultMaxConns
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = DefaultMaxIdleConns
	}

	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxConnsPerHost:       cfg.MaxConns,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &http.Client{
		Transport: &privacyTransport{base: base, extra: cfg.Headers},
		Timeout:   cfg.Timeout,
	}
}

// privacyTransport stamps privacy headers on the request and strips
// anything that could identify the user or session.
type privacyTransport struct {
	base  http.RoundTripper
	extra map[string]string
}

func (t *privacyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	for _, h := range identityHeaders {
		out.Header.Del(h)
	}
	for k, v := range PrivacyHeaders {
		out.Header.Set(k, v)
	}
	for k, v := range t.extra {
		out.Header.Set(k, v)
	}
	return t.base.RoundTrip(out)
}

// closeIdler is implemented by *http.Transport.
type closeIdler interface {
	CloseIdleConnections()
}

func (t *privacyTransport) CloseIdleConnections() {
	if c, ok := t.base.(closeIdler); ok {
		c.CloseIdleConnections()
	}
}
