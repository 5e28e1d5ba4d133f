package httpclient

import (
	"net"
	"net/http"
	"time"
)

// Config shapes the *http.Client used against ENA, NCBI and the FASTQ mirrors.
type Config struct {
	// Timeout bounds a whole request including the body read. Zero leaves it
	// to the request context, which FASTQ downloads rely on.
	Timeout time.Duration
	// UserAgent is set on requests that do not carry one.
	UserAgent string
	Transport TransportConfig
}

// TransportConfig holds connection-level limits.
type TransportConfig struct {
	Dial           time.Duration
	KeepAlive      time.Duration
	TLSHandshake   time.Duration
	ResponseHeader time.Duration
	IdleConn       time.Duration
	MaxIdle        int
	MaxIdlePerHost int
}

func DefaultConfig() Config {
	return Config{
		Timeout: 30 * time.Second,
		Transport: TransportConfig{
			Dial:           10 * time.Second,
			KeepAlive:      30 * time.Second,
			TLSHandshake:   10 * time.Second,
			ResponseHeader: 60 * time.Second,
			IdleConn:       90 * time.Second,
			MaxIdle:        32,
			MaxIdlePerHost: 8,
		},
	}
}

// New builds a client from cfg. Proxies come from the environment.
func New(cfg Config) *http.Client {
	t := cfg.Transport
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   t.Dial,
			KeepAlive: t.KeepAlive,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          t.MaxIdle,
		MaxIdleConnsPerHost:   t.MaxIdlePerHost,
		IdleConnTimeout:       t.IdleConn,
		TLSHandshakeTimeout:   t.TLSHandshake,
		ResponseHeaderTimeout: t.ResponseHeader,
		ExpectContinueTimeout: time.Second,
	}

	c := &http.Client{Transport: tr, Timeout: cfg.Timeout}
	if cfg.UserAgent != "" {
		c.Transport = userAgent{next: tr, value: cfg.UserAgent}
	}
	return c
}

type userAgent struct {
	next  http.RoundTripper
	value string
}

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", u.value)
	}
	return u.next.RoundTrip(req)
}
