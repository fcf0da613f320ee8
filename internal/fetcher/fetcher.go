package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raysh454/hfdl/internal/logging"
	"github.com/raysh454/hfdl/internal/retry"
	"github.com/raysh454/hfdl/internal/webclient"
)

// ErrFetchFailed wraps every error FetchListing returns.
var ErrFetchFailed = errors.New("failed to fetch listing")

// StatusError is a non-2xx answer from the mirror. 4xx answers are not retried.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Retryable reports whether the mirror might answer differently next time.
func (e *StatusError) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout
}

// IsNotFound reports whether err carries a 404 from the mirror.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Module: fetcher
// Gets listing pages from the mirror, retrying transient failures.
type Fetcher struct {
	cfg    Config
	wc     webclient.WebClient
	logger logging.Logger
}

// New creates a new Fetcher with the given webclient and logger
func New(cfg Config, wc webclient.WebClient, logger logging.Logger) (*Fetcher, error) {
	if wc == nil {
		return nil, fmt.Errorf("fetcher: webclient is nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Fetcher{
		cfg:    cfg,
		wc:     wc,
		logger: logger.With(logging.Field{Key: "component", Value: "fetcher"}),
	}, nil
}

// FetchListing GETs url and returns the body of the first 2xx response.
func (f *Fetcher) FetchListing(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0

	op := func() error {
		attempt++
		resp, err := f.wc.Get(ctx, url)
		if err != nil {
			f.logger.Warn("listing request failed",
				logging.Field{Key: "url", Value: url},
				logging.Field{Key: "attempt", Value: attempt},
				logging.Field{Key: "error", Value: err})
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			f.logger.Warn("listing request returned non-2xx",
				logging.Field{Key: "url", Value: url},
				logging.Field{Key: "attempt", Value: attempt},
				logging.Field{Key: "status", Value: resp.StatusCode})
			return &StatusError{URL: url, StatusCode: resp.StatusCode, Body: snippet(resp.Body)}
		}
		body = resp.Body
		return nil
	}

	if err := retry.Do(ctx, f.cfg.Retry, "GET "+url, op, isRetryable); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	f.logger.Debug("fetched listing",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "attempts", Value: attempt},
		logging.Field{Key: "bytes", Value: len(body)})
	return body, nil
}

func isRetryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return !errors.Is(err, webclient.ErrNilRequest) && !errors.Is(err, webclient.ErrBodyTooLarge)
}

func snippet(body []byte) string {
	const maxSnippet = 256
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippet {
		return s[:maxSnippet] + "..."
	}
	return s
}
