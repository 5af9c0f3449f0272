// Package pagination implements the filtered, paginated list fetch used by
// the professionals and jobs browse views.
//
// A Controller[T] loads pages of one resource for a filter snapshot and
// merges them into a single list: a reset fetch replaces the list and
// restarts the cursor, any other fetch appends. Failures stop pagination
// until the next reset. Each fetch carries a sequence number and a reset
// supersedes every earlier fetch, so a slow response for old filters can
// never overwrite the list for newer ones.
//
// The Reconciler watches a filter.Store and issues exactly one reset fetch
// per real filter change. The Sentinel is the infinite-scroll trigger:
// when it becomes visible it asks the controller for the next page, which
// is refused while a fetch is outstanding.
//
// Example usage:
//
//	pros := client.Professionals(c)
//	ctrl := pagination.NewController(pros, pagination.DefaultPageSize, logger)
//	rec := pagination.NewReconciler(ctrl, publisher, pros.Path(), logger)
//	go rec.Run(ctx, store)
//
//	sentinel := pagination.NewSentinel(ctrl, pagination.DefaultThreshold)
//	sentinel.Visible(ctx, 0.4)
//
// BatchFetcher[T] fetches every page of a filtered resource in parallel for
// exports.
package pagination
