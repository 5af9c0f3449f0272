package listing

// RenderState tells a list renderer which fallback to show.
type RenderState string

const (
	// RenderSkeleton is shown while the first page is loading.
	RenderSkeleton RenderState = "skeleton"

	// RenderEmpty is shown when a finished fetch produced no items.
	RenderEmpty RenderState = "empty"

	// RenderItems is shown when items are available.
	RenderItems RenderState = "items"
)

// View is the render model of a list page.
type View[T any] struct {
	State       RenderState
	Items       []T
	LoadingMore bool
	HasMore     bool
	Failed      bool
}

// NewView picks the render state for the given list status. A reset fetch in
// flight always shows the full-page skeleton.
func NewView[T any](items []T, loading, loadingMore, hasMore bool, err error) View[T] {
	v := View[T]{
		Items:       items,
		LoadingMore: loadingMore,
		HasMore:     hasMore,
		Failed:      err != nil,
	}

	switch {
	case loading:
		v.State = RenderSkeleton
	case len(items) == 0:
		v.State = RenderEmpty
	default:
		v.State = RenderItems
	}
	return v
}
