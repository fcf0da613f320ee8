// Package cache keeps extracted link lists so repeated requests for the same
// repository revision skip the mirror.
package cache

import (
	"context"
	"time"
)

// Cache stores link lists by key. Get reports a miss with ok == false and a
// nil error.
type Cache interface {
	Get(ctx context.Context, key string) (links []string, ok bool, err error)
	Set(ctx context.Context, key string, links []string, ttl time.Duration) error
	Close() error
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]string, bool, error)        { return nil, false, nil }
func (Noop) Set(context.Context, string, []string, time.Duration) error { return nil }
func (Noop) Close() error                                               { return nil }
