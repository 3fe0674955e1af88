package observability

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/baxromumarov/wordfreq/internal/httpx"
)

const (
	ErrorNetwork      = "network"
	ErrorRateLimit    = "rate_limit"
	ErrorParsing      = "parsing"
	ErrorSegmentation = "segmentation"
	ErrorRender       = "render"
	ErrorStore        = "store"
	ErrorInput        = "input"
	ErrorUnknown      = "unknown"
)

func ClassifyFetchError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	var fe *httpx.FetchError
	if errors.As(err, &fe) {
		if fe.Status == http.StatusTooManyRequests {
			return ErrorRateLimit
		}
		return ErrorNetwork
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrorNetwork
	}
	return ErrorUnknown
}

// ClassifyError labels an error by the message conventions of the packages
// that produce it when no typed error is available.
func ClassifyError(err error) string {
	if err == nil {
		return ErrorUnknown
	}
	if kind := ClassifyFetchError(err); kind != ErrorUnknown {
		return kind
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "parse failed"),
		strings.Contains(msg, "decode failed"):
		return ErrorParsing
	case strings.Contains(msg, "dictionary"):
		return ErrorSegmentation
	case strings.Contains(msg, "font"),
		strings.Contains(msg, "render"):
		return ErrorRender
	}
	return ErrorUnknown
}
