// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/raysh454/hfdl/internal/logging"
	"github.com/raysh454/hfdl/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// WarnCount returns the number of recorded warnings.
func (l *DummyLogger) WarnCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.Warns)
}

// ─── WebClient ─────────────────────────────────────────────────────────

// ErrDummyFetch is returned for URLs listed in DummyWebClient.FailURLs.
var ErrDummyFetch = errors.New("dummy fetch fail")

// DummyWebClient implements webclient.WebClient.
// Pages maps a URL to the body served with status 200; unknown URLs get 404.
// Statuses queues status codes per URL that are answered (with an empty body)
// before the page itself, to simulate a flaky mirror.
// Set FailURLs[url] = true to force a transport error for a specific URL.
type DummyWebClient struct {
	ResponseDelay time.Duration
	Pages         map[string]string
	Statuses      map[string][]int
	FailURLs      map[string]bool

	mu       sync.Mutex
	Requests []*webclient.Request
	Closed   bool
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if req == nil {
		return nil, webclient.ErrNilRequest
	}
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.Requests = append(d.Requests, req)

	if d.FailURLs[req.URL] {
		return nil, ErrDummyFetch
	}

	if queued := d.Statuses[req.URL]; len(queued) > 0 {
		d.Statuses[req.URL] = queued[1:]
		return &webclient.Response{Request: req, StatusCode: queued[0], Headers: http.Header{}, FetchedAt: time.Now()}, nil
	}

	body, ok := d.Pages[req.URL]
	if !ok {
		return &webclient.Response{Request: req, StatusCode: http.StatusNotFound, Headers: http.Header{}, Body: []byte("not found"), FetchedAt: time.Now()}, nil
	}

	return &webclient.Response{
		Request:    req,
		Headers:    http.Header{"Content-Type": []string{"text/html; charset=utf-8"}},
		Body:       []byte(body),
		StatusCode: http.StatusOK,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: http.MethodGet, URL: url})
}

func (d *DummyWebClient) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

// RequestCount returns how many requests hit url.
func (d *DummyWebClient) RequestCount(url string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.Requests {
		if r.URL == url {
			n++
		}
	}
	return n
}
