package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/raysh454/hfdl/internal/cache"
	"github.com/raysh454/hfdl/internal/fetcher"
	"github.com/raysh454/hfdl/internal/logging"
	"github.com/raysh454/hfdl/internal/mirror"
	"github.com/raysh454/hfdl/internal/script"
	"github.com/raysh454/hfdl/internal/webclient"
)

// Script is a generated download script held in temporary storage.
type Script struct {
	ID        string        `json:"id"`
	Path      string        `json:"-"`
	FileName  string        `json:"file_name"`
	Target    mirror.Target `json:"target"`
	Links     []string      `json:"links"`
	Content   string        `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

// Option customises a Service at construction.
type Option func(*Service)

// WithWebClient makes the service use wc instead of building the configured backend.
func WithWebClient(wc webclient.WebClient) Option {
	return func(s *Service) { s.wc = wc }
}

// WithCache makes the service use c instead of building the configured cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// Service turns repository targets into download scripts.
// It owns the webclient, the listing cache and the script store.
type Service struct {
	cfg     *Config
	logger  logging.Logger
	wc      webclient.WebClient
	fetcher *fetcher.Fetcher
	cache   cache.Cache
	store   *script.Store

	jobsMu     sync.Mutex
	jobs       map[string]*Job
	jobCancels map[string]context.CancelFunc
	jobsWG     sync.WaitGroup
	genWG      sync.WaitGroup
	closing    context.Context
	stopAll    context.CancelFunc
	closed     bool
	closeOnce  sync.Once
	closeErr   error
}

// NewService builds a Service from cfg. Components not supplied through opts
// are constructed from cfg.
func NewService(ctx context.Context, cfg *Config, logger logging.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Service{
		cfg:        cfg,
		logger:     logger.With(logging.Field{Key: "component", Value: "service"}),
		jobs:       make(map[string]*Job),
		jobCancels: make(map[string]context.CancelFunc),
	}
	s.closing, s.stopAll = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(s)
	}

	if s.wc == nil {
		wc, err := webclient.NewWebClient(cfg.WebClient, logger)
		if err != nil {
			return nil, fmt.Errorf("new webclient: %w", err)
		}
		s.wc = wc
	}

	f, err := fetcher.New(cfg.Fetcher, s.wc, logger)
	if err != nil {
		_ = s.wc.Close()
		return nil, fmt.Errorf("new fetcher: %w", err)
	}
	s.fetcher = f

	if s.cache == nil {
		c, err := cache.New(ctx, cfg.Cache, logger)
		if err != nil {
			_ = s.wc.Close()
			return nil, fmt.Errorf("new cache: %w", err)
		}
		s.cache = c
	}

	store, err := script.NewStore(cfg.TempDir, logger)
	if err != nil {
		_ = s.wc.Close()
		_ = s.cache.Close()
		return nil, fmt.Errorf("new script store: %w", err)
	}
	s.store = store

	return s, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *Config { return s.cfg }

// Store exposes the script store for serving files.
func (s *Service) Store() *script.Store { return s.store }

// Target validates request parameters, falling back to the configured
// default domain.
func (s *Service) Target(domain, repoPath, revision string) (mirror.Target, error) {
	if domain == "" {
		domain = s.cfg.DefaultDomain
	}
	return mirror.NewTarget(domain, repoPath, revision)
}

// Links returns the download links listed for t. Cache failures are logged
// and otherwise ignored.
func (s *Service) Links(ctx context.Context, t mirror.Target) ([]string, error) {
	key := t.CacheKey()

	links, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("reading listing cache", logging.Field{Key: "key", Value: key}, logging.Field{Key: "error", Value: err})
	} else if ok {
		s.logger.Debug("listing cache hit", logging.Field{Key: "target", Value: t.String()}, logging.Field{Key: "links", Value: len(links)})
		return links, nil
	}

	body, err := s.fetcher.FetchListing(ctx, t.ListingURL())
	if err != nil {
		return nil, err
	}

	links, err = mirror.ExtractDownloadLinks(t.BaseURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, links, s.cfg.Cache.TTL); err != nil {
		s.logger.Warn("writing listing cache", logging.Field{Key: "key", Value: key}, logging.Field{Key: "error", Value: err})
	}

	s.logger.Info("extracted download links", logging.Field{Key: "target", Value: t.String()}, logging.Field{Key: "links", Value: len(links)})
	return links, nil
}

// Generate fetches the listing for t, renders the script and saves it.
func (s *Service) Generate(ctx context.Context, t mirror.Target) (*Script, error) {
	return s.generate(ctx, t, nil)
}

func (s *Service) generate(ctx context.Context, t mirror.Target, onLinks func(n int)) (*Script, error) {
	s.jobsMu.Lock()
	if s.closed {
		s.jobsMu.Unlock()
		return nil, ErrClosed
	}
	s.genWG.Add(1)
	s.jobsMu.Unlock()
	defer s.genWG.Done()

	// Close aborts in-flight generations so nothing is saved after Cleanup.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(s.closing, cancel)
	defer stop()

	links, err := s.Links(ctx, t)
	if err != nil {
		return nil, err
	}
	if onLinks != nil {
		onLinks(len(links))
	}

	content, err := script.Render(t.DirName(), links)
	if err != nil {
		return nil, fmt.Errorf("rendering script: %w", err)
	}

	f, err := s.store.Save(content)
	if err != nil {
		return nil, err
	}

	s.logger.Info("generated script",
		logging.Field{Key: "target", Value: t.String()},
		logging.Field{Key: "script_id", Value: f.ID},
		logging.Field{Key: "links", Value: len(links)})

	return &Script{
		ID:        f.ID,
		Path:      f.Path,
		FileName:  script.FileName,
		Target:    t,
		Links:     links,
		Content:   content,
		CreatedAt: f.CreatedAt,
	}, nil
}

// Close cancels running jobs and generations, waits for them, releases the
// webclient and cache and deletes every generated script. Safe to call more
// than once.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.jobsMu.Lock()
		s.closed = true
		for _, cancel := range s.jobCancels {
			cancel()
		}
		s.jobsMu.Unlock()
		s.stopAll()
		s.jobsWG.Wait()
		s.genWG.Wait()

		var errs []error
		if err := s.wc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close webclient: %w", err))
		}
		if err := s.cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
		if err := s.store.Cleanup(); err != nil {
			errs = append(errs, fmt.Errorf("cleanup scripts: %w", err))
		}
		s.closeErr = errors.Join(errs...)
		s.logger.Info("service closed")
	})
	return s.closeErr
}
