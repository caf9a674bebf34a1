// Package slideshare is a client for the SlideShare v2 XML API: signed
// requests, presentation upload, slideshow lookups and search, with an
// optional response cache in front of every read.
package slideshare

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/slideshare/cache"
)

const (
	DefaultBaseURL = "https://www.slideshare.net/api/2"

	defaultTimeout      = 5 * time.Second
	defaultMaxRedirects = 2
)

// Doer sends one HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the SlideShare API. It holds no per-request state; whether
// it may be shared between goroutines depends on the Doer and cache.Cache it
// was given.
type Client struct {
	http    Doer
	baseURL *url.URL
	log     zerolog.Logger
	now     func() time.Time

	apiKey       string
	sharedSecret string
	username     string
	password     string

	cache        cache.Cache // optional; nil means no cache
	ttl          time.Duration
	defaultCache bool

	optErr error // first option failure, returned by New
}

type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(h Doer) Option {
	return func(c *Client) { c.http = h }
}

// WithBaseURL points the client at another API root, e.g. a test server.
// raw must be an absolute URL; anything else makes New fail.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		u, err := url.Parse(raw)
		if err == nil && (u.Scheme == "" || u.Host == "") {
			err = fmt.Errorf("%q is not an absolute URL", raw)
		}
		if err != nil {
			if c.optErr == nil {
				c.optErr = fmt.Errorf("base URL: %w", err)
			}
			return
		}
		c.baseURL = u
	}
}

// WithCredentials sets the account used for uploads.
func WithCredentials(username, password string) Option {
	return func(c *Client) { c.username, c.password = username, password }
}

// WithCache enables the read cache. ttl <= 0 leaves expiry to the cache.
func WithCache(cache cache.Cache, ttl time.Duration) Option {
	return func(c *Client) { c.cache, c.ttl = cache, ttl }
}

// WithDefaultCache enables a file cache under ~/.slideshare_cache.
func WithDefaultCache() Option {
	return func(c *Client) { c.defaultCache = true }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithClock sets the time source used to sign requests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New builds a client. apiKey and sharedSecret are required.
func New(apiKey, sharedSecret string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("apiKey required")
	}
	if sharedSecret == "" {
		return nil, errors.New("sharedSecret required")
	}

	u, _ := url.Parse(DefaultBaseURL)
	c := &Client{
		baseURL:      u,
		log:          zerolog.Nop(),
		now:          time.Now,
		apiKey:       apiKey,
		sharedSecret: sharedSecret,
	}
	for _, o := range opts {
		o(c)
	}
	if c.optErr != nil {
		return nil, c.optErr
	}

	if c.http == nil {
		c.http = NewDefaultHTTPClient()
	}
	if c.cache == nil && c.defaultCache {
		fc, err := cache.NewFileCache("")
		if err != nil {
			return nil, fmt.Errorf("default cache: %w", err)
		}
		c.cache = fc
	}
	return c, nil
}

// NewDefaultHTTPClient returns the transport used when none is injected:
// a short timeout and at most two redirects.
func NewDefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: defaultTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > defaultMaxRedirects {
				return fmt.Errorf("stopped after %d redirects", defaultMaxRedirects)
			}
			return nil
		},
	}
}
