// Package customvariant resolves store-exclusive and promotional finishes
// that never appear in a set's base printing data and so cannot be found
// by the hard, era, or override rule layers. A Resolver queries one or
// more DataSources, folds their answers into the card's variant map, and
// applies "replaces standard" semantics where a custom finish supersedes
// one of the seven base Finish keys.
package customvariant

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/guarzo/variantctl/internal/cache"
	"github.com/guarzo/variantctl/internal/model"
)

// DataSource looks up custom variants for a single card. Implementations
// wrap a scraper, a static catalog, or any other external lookup; all of
// them are expected to be slow or unreliable relative to the in-process
// rule layers, which is why Resolver wraps every call with a timeout and
// a failure policy.
type DataSource interface {
	Name() string
	Lookup(ctx context.Context, card model.CardRecord) ([]model.CustomVariant, error)
}

// DefaultTimeout bounds a single DataSource call. A source that routinely
// needs longer should be wrapped with its own internal retry rather than
// pushing the timeout up here, since Resolver treats a timeout and any
// other failure identically: skip the source, keep going.
const DefaultTimeout = 2 * time.Second

// Resolver queries a set of DataSources for a card and merges their
// answers into an existing VariantResult. It caches per-card answers and
// rate-limits outbound lookups the way the teacher's population scraper
// rate-limits outbound HTTP.
type Resolver struct {
	sources []DataSource
	timeout time.Duration
	limiter *rate.Limiter
	cache   *cache.Cache
	ttl     time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// WithCache attaches a persistent cache so repeated lookups for the same
// card within ttl skip the network entirely.
func WithCache(c *cache.Cache, ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cache = c
		r.ttl = ttl
	}
}

// WithRateLimit caps outbound lookups per second across all sources.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(r *Resolver) { r.limiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

// NewResolver builds a Resolver over the given sources. With no options,
// lookups run uncached and unthrottled with DefaultTimeout.
func NewResolver(sources []DataSource, opts ...Option) *Resolver {
	r := &Resolver{sources: sources, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve queries every configured source for card and applies each
// returned CustomVariant to result in place. A source that errors or
// times out is skipped with a logged warning and an explanation entry;
// it never aborts the remaining sources or fails the card.
func (r *Resolver) Resolve(ctx context.Context, card model.CardRecord, result *model.VariantResult) {
	if len(r.sources) == 0 {
		return
	}

	if r.cache != nil {
		var cached []model.CustomVariant
		if found, err := r.cache.Get(cache.CustomVariantKey(card.ID), &cached); err == nil && found {
			for _, cv := range cached {
				apply(result, cv)
			}
			return
		}
	}

	var all []model.CustomVariant
	for _, src := range r.sources {
		if r.limiter != nil {
			if err := r.limiter.Wait(ctx); err != nil {
				result.Explanations = append(result.Explanations,
					fmt.Sprintf("custom variant source %s skipped: %v", src.Name(), err))
				continue
			}
		}

		cvs, err := r.query(ctx, src, card)
		if err != nil {
			log.Printf("customvariant: source %s unavailable for card %s: %v", src.Name(), card.ID, err)
			result.Explanations = append(result.Explanations,
				fmt.Sprintf("custom variant source %s unavailable, skipped", src.Name()))
			continue
		}

		for _, cv := range cvs {
			if cv.Active {
				all = append(all, cv)
			}
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].DisplayName < all[j].DisplayName })

	for _, cv := range all {
		apply(result, cv)
	}

	if r.cache != nil && len(all) > 0 {
		if err := r.cache.Put(cache.CustomVariantKey(card.ID), all, r.ttl); err != nil {
			log.Printf("customvariant: cache put failed for card %s: %v", card.ID, err)
		}
	}
}

func (r *Resolver) query(ctx context.Context, src DataSource, card model.CardRecord) ([]model.CustomVariant, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return src.Lookup(timeoutCtx, card)
}

// ActiveCustomVariants is the standalone custom-variant entry point from
// spec.md §6: given a card and a single DataSource, it returns only the
// variants the source marks Active. Unlike Resolver.Resolve, which degrades
// a source failure locally into a warning explanation, this entry point
// surfaces a transport failure to its caller as a typed
// CustomVariantSourceUnavailable error; the engine itself never retries.
func ActiveCustomVariants(ctx context.Context, src DataSource, card model.CardRecord) ([]model.CustomVariant, error) {
	cvs, err := src.Lookup(ctx, card)
	if err != nil {
		return nil, model.NewCustomVariantSourceUnavailable(card.ID, err.Error())
	}
	var active []model.CustomVariant
	for _, cv := range cvs {
		if cv.Active {
			active = append(active, cv)
		}
	}
	return active, nil
}

// apply folds a single active CustomVariant into result. When the variant
// names a Replaces finish, the standard finish it supersedes is marked
// absent with override provenance at high confidence. Callers only ever
// pass already-filtered active variants.
func apply(result *model.VariantResult, cv model.CustomVariant) {
	if cv.Replaces != nil {
		result.Variants[*cv.Replaces] = model.VariantFlag{
			Exists:     false,
			Provenance: model.ProvenanceOverride,
			Confidence: model.ConfidenceHigh,
		}
	}
	result.Explanations = append(result.Explanations,
		fmt.Sprintf("custom variant available: %s", cv.DisplayName))
}
