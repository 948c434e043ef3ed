// Package cache holds resolved comparisons keyed by the exact `d` wire value
// so repeated resolutions of a popular link skip re-verification bookkeeping.
// The cache is strictly optional: a miss or a cache failure never fails a
// resolve, and the cache's own persistence/clustering is the backing store's
// concern.
package cache

import (
	"context"

	"github.com/utilbot/juxtapose/pkg/errorcode"
	"github.com/utilbot/juxtapose/pkg/models/juxtapose"
)

// A ResolveCache stores resolved comparisons by their `d` value.
type ResolveCache interface {
	// Get returns the cached comparison for `d`, or `errorcode.ErrorNotFound`
	// on a miss (including expired entries).
	Get(ctx context.Context, d string) (*juxtapose.ResolvedComparison, error)
	// Put stores the comparison for `d`, overwriting an existing entry.
	Put(ctx context.Context, d string, resolved *juxtapose.ResolvedComparison) error
}

// A NoopCache misses on every Get and discards every Put. Used when caching
// is disabled in the configuration.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, d string) (*juxtapose.ResolvedComparison, error) {
	return nil, errorcode.ErrorNotFound
}

func (NoopCache) Put(ctx context.Context, d string, resolved *juxtapose.ResolvedComparison) error {
	return nil
}
