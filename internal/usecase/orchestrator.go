package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/provider"
	"github.com/spirittours/travelcore/internal/domain/repository"
	"github.com/spirittours/travelcore/pkg/logger"
	"github.com/spirittours/travelcore/pkg/metrics"
)

// Orchestrator fans a canonical search request out to the configured provider
// adapters concurrently and merges their outcomes into one AggregateResult.
// The adapter registry is fixed at construction, so the orchestrator carries
// no hidden global state and tests can run against fake adapters.
type Orchestrator struct {
	adapters       map[string]provider.Adapter
	names          []string // lexicographic, the fixed iteration order
	cache          repository.ResultCache
	adapterTimeout time.Duration
	cacheTTL       time.Duration
	logger         logger.Logger
	metrics        *metrics.Metrics
}

// NewOrchestrator creates a new orchestrator over the given adapters
func NewOrchestrator(
	adapters []provider.Adapter,
	cache repository.ResultCache,
	adapterTimeout time.Duration,
	cacheTTL time.Duration,
	log logger.Logger,
	m *metrics.Metrics,
) *Orchestrator {
	byName := make(map[string]provider.Adapter, len(adapters))
	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
		names = append(names, a.Name())
	}
	sort.Strings(names)
	return &Orchestrator{
		adapters:       byName,
		names:          names,
		cache:          cache,
		adapterTimeout: adapterTimeout,
		cacheTTL:       cacheTTL,
		logger:         log,
		metrics:        m,
	}
}

// Adapter returns the configured adapter for a provider identity
func (o *Orchestrator) Adapter(name string) (provider.Adapter, bool) {
	a, ok := o.adapters[name]
	return a, ok
}

// SearchAll runs one orchestrated search. A fresh cached aggregate for the
// same fingerprint is returned without contacting any provider; concurrent
// identical requests collapse into a single provider round-trip. Individual
// provider failures are recorded per provider and never abort the aggregate.
func (o *Orchestrator) SearchAll(ctx context.Context, req *entity.SearchRequest, providerSubset []string) (*entity.AggregateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search request: %w", err)
	}
	o.metrics.SearchesTotal.Inc()

	fingerprint := req.Fingerprint()
	subset := o.resolveSubset(req, providerSubset)

	result, hit, err := o.cache.Fetch(ctx, fingerprint, o.cacheTTL, func(ctx context.Context) (*entity.AggregateResult, error) {
		return o.fanOut(ctx, req, fingerprint, subset), nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		// the single-flight wait gave up; search directly rather than fail
		o.logger.Warn("cache fetch failed, searching directly", "fingerprint", fingerprint, "error", err)
		result = o.fanOut(ctx, req, fingerprint, subset)
		o.cache.Put(fingerprint, result, o.cacheTTL)
		hit = false
	}

	if hit {
		o.metrics.CacheHitsTotal.Inc()
		// cached aggregates are shared read-only; report the hit on a copy
		copied := *result
		copied.Stats.CacheHit = true
		result = &copied
	}
	return result, nil
}

// resolveSubset returns the providers to query, in lexicographic order.
// An empty filter selects every adapter supporting the request's category.
// Unknown names stay in the subset so the aggregate records their failure.
func (o *Orchestrator) resolveSubset(req *entity.SearchRequest, filter []string) []string {
	if len(filter) == 0 {
		subset := make([]string, 0, len(o.names))
		for _, name := range o.names {
			if o.adapters[name].Supports(req.Service) {
				subset = append(subset, name)
			}
		}
		return subset
	}
	subset := append([]string(nil), filter...)
	sort.Strings(subset)
	return subset
}

type providerOutcome struct {
	name   string
	result *entity.SearchResult
}

// fanOut launches one bounded unit of work per selected provider and collects
// every outcome. It always returns a structurally valid aggregate with exactly
// one entry per selected provider, even when all of them fail.
func (o *Orchestrator) fanOut(ctx context.Context, req *entity.SearchRequest, fingerprint string, subset []string) *entity.AggregateResult {
	start := time.Now()
	resCh := make(chan providerOutcome, len(subset))
	var wg sync.WaitGroup

	for _, name := range subset {
		adapter, ok := o.adapters[name]
		if !ok {
			resCh <- providerOutcome{name, entity.NewFailureResult(
				name, req.Service, fingerprint, "not_configured", "provider not configured")}
			continue
		}

		wg.Add(1)
		go func(name string, adapter provider.Adapter) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("provider panic recovered", "provider", name, "panic", r)
					o.metrics.ProviderErrors.WithLabelValues(name).Inc()
					resCh <- providerOutcome{name, entity.NewFailureResult(
						name, req.Service, fingerprint, "panic", fmt.Sprint(r))}
				}
			}()

			adapterCtx, cancel := context.WithTimeout(ctx, o.adapterTimeout)
			defer cancel()

			searchStart := time.Now()
			result, err := adapter.Search(adapterCtx, req)
			o.metrics.ProviderLatency.WithLabelValues(name).Observe(time.Since(searchStart).Seconds())

			if err != nil {
				o.logger.Warn("provider search failed", "provider", name, "error", err)
				o.metrics.ProviderErrors.WithLabelValues(name).Inc()
				resCh <- providerOutcome{name, entity.NewFailureResult(
					name, req.Service, fingerprint, provider.KindOf(err), err.Error())}
				return
			}
			if result == nil {
				result = entity.NewSearchResult(name, req.Service, fingerprint, []entity.ResultItem{})
			}
			result.Fingerprint = fingerprint
			resCh <- providerOutcome{name, result}
		}(name, adapter)
	}

	wg.Wait()
	close(resCh)

	agg := &entity.AggregateResult{
		Fingerprint: fingerprint,
		Service:     req.Service,
		Providers:   make(map[string]*entity.SearchResult, len(subset)),
		CreatedAt:   time.Now().UTC(),
	}
	for outcome := range resCh {
		agg.Providers[outcome.name] = outcome.result
		if outcome.result.Failure != nil {
			agg.Stats.ProvidersFailed++
		} else {
			agg.Stats.ProvidersSucceeded++
		}
	}
	agg.Stats.ProvidersQueried = len(subset)
	agg.Stats.DurationMs = time.Since(start).Milliseconds()
	o.metrics.SearchDuration.Observe(time.Since(start).Seconds())

	return agg
}
