// internal/domain/repository/result_cache.go
package repository

import (
	"context"
	"time"

	"github.com/spirittours/travelcore/internal/domain/entity"
)

// ResultCache stores aggregate results keyed by request fingerprint with
// bounded staleness. Fetch is the single-flight combinator: a fresh entry is
// returned without invoking fn, and concurrent callers of the same fingerprint
// collapse into one in-flight computation. The boolean reports a cache hit.
type ResultCache interface {
	Get(fingerprint string) (*entity.AggregateResult, bool)
	Put(fingerprint string, result *entity.AggregateResult, ttl time.Duration)
	Fetch(ctx context.Context, fingerprint string, ttl time.Duration,
		fn func(ctx context.Context) (*entity.AggregateResult, error)) (*entity.AggregateResult, bool, error)
}
