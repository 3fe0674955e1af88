package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

// CollyFetcher fetches pages through a fresh colly collector per request,
// with per-host rate limits shared across requests.
type CollyFetcher struct {
	opts         Options
	mu           sync.Mutex
	defaultRate  rate.Limit
	defaultBurst int
	hosts        map[string]*rate.Limiter
}

func NewCollyFetcher(opts Options) *CollyFetcher {
	return &CollyFetcher{
		opts:         opts.withDefaults(),
		defaultRate:  rate.Every(time.Second),
		defaultBurst: 2,
		hosts:        make(map[string]*rate.Limiter),
	}
}

func (f *CollyFetcher) FetchHTML(ctx context.Context, rawURL string) (string, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return "", &FetchError{Err: err}
	}
	if err := f.limiter(hostKey(target)).Wait(ctx); err != nil {
		return "", &FetchError{Err: err}
	}

	body, contentType, status, err := f.fetchOnce(ctx, target)
	if err != nil {
		return "", &FetchError{Status: status, Err: err}
	}

	// colly converts charsets named in the Content-Type header; pages that
	// declare theirs only in <meta> arrive as raw bytes.
	if strings.Contains(strings.ToLower(contentType), "charset") {
		return string(body), nil
	}
	decoded, err := decodeHTML(body, contentType)
	if err != nil {
		return "", &FetchError{Status: status, Err: err}
	}
	return decoded, nil
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, target string) ([]byte, string, int, error) {
	c := f.newCollector()

	var body []byte
	var contentType string
	status := 0
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		contentType = r.Headers.Get("Content-Type")
		body = append([]byte(nil), r.Body...)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		reqErr = err
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	if err := c.Request(http.MethodGet, target, nil, collyCtx, nil); err != nil {
		return nil, "", status, err
	}
	if reqErr != nil {
		return nil, "", status, reqErr
	}
	if ctx.Err() != nil {
		return nil, "", status, ctx.Err()
	}
	if status < 200 || status > 299 {
		if status == 0 {
			return nil, "", status, errors.New("no response")
		}
		return nil, "", status, fmt.Errorf("status %d", status)
	}
	return body, contentType, status, nil
}

func (f *CollyFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.opts.UserAgent),
		colly.MaxBodySize(maxBodyBytes),
	)
	c.IgnoreRobotsTxt = !f.opts.RespectRobots
	c.SetRequestTimeout(f.opts.Timeout)

	c.OnRequest(func(r *colly.Request) {
		ctx := context.Background()
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok {
				ctx = reqCtx
			}
		}
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	return c
}

func (f *CollyFetcher) limiter(host string) *rate.Limiter {
	if host == "" {
		host = "default"
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.hosts[host]; ok {
		return l
	}
	l := rate.NewLimiter(f.defaultRate, f.defaultBurst)
	f.hosts[host] = l
	return l
}
