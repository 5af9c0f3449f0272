// Package cache stores browse responses in Redis so that repeated list
// requests with the same effective filters are served without a round trip.
//
// Entries are keyed by resource path plus the normalized query string. The
// filter package only emits non-default parameters, so two clients viewing the
// same page with the same filters share one entry.
//
// # Basic Usage
//
//	manager := cache.NewManager(redisClient, 2*time.Minute)
//
//	key := cache.Key{
//		Resource: "/professionals",
//		Query:    url.Values{"page": {"1"}, "limit": {"12"}, "category": {"plumbing"}},
//	}
//
//	entry, err := manager.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from the API
//	}
//
// # Freshness
//
// ResponseToEntry derives the expiry from Cache-Control max-age, then
// Expires, then the manager default. Responses marked no-store are never
// written. When an entry carries an ETag or Last-Modified value, the client
// revalidates it with a conditional request and a 304 extends its lifetime.
//
// # Metrics
//
//   - homi_cache_hits_total
//   - homi_cache_misses_total
//   - homi_cache_size_bytes
//   - homi_cache_not_modified_total
//   - homi_cache_conditional_requests_total
//   - homi_cache_errors_total{operation}
package cache
