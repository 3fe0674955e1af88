package urlutil

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrEmpty  = errors.New("url is required")
	ErrScheme = errors.New("only http and https urls are supported")
	ErrNoHost = errors.New("url has no host")
)

// Normalize cleans a user-typed URL: surrounding space is trimmed, a missing
// scheme becomes https, the host is lower-cased and the fragment dropped.
// It returns the normalized URL and its host.
func Normalize(raw string) (string, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ErrEmpty
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", "", ErrScheme
	}
	if u.Hostname() == "" {
		return "", "", ErrNoHost
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	return u.String(), u.Hostname(), nil
}
