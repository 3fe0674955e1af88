package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	BackendColly = "colly"
	BackendHTTP  = "http"

	DefaultUserAgent = "wordfreq-bot/1.0"
	defaultTimeout   = 15 * time.Second
	maxBodyBytes     = 10 << 20
)

// Fetcher retrieves the HTML body of a page as text.
type Fetcher interface {
	FetchHTML(ctx context.Context, rawURL string) (string, error)
}

// Options configures either backend.
type Options struct {
	UserAgent     string
	Timeout       time.Duration
	RespectRobots bool
}

type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch error (status %d)", e.Status)
	}
	return fmt.Sprintf("fetch error (status %d): %v", e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// New returns the fetcher for backend.
func New(backend string, opts Options) (Fetcher, error) {
	switch backend {
	case "", BackendColly:
		return NewCollyFetcher(opts), nil
	case BackendHTTP:
		return NewPoliteClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown fetch backend %q", backend)
	}
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return o
}

func normalizeURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u.Scheme = "https"
	}
	return u.String(), nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "default"
	}
	return normalizeHost(u.Hostname())
}
