package cache

import (
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key written by the manager.
const KeyPrefix = "homi:list"

// Key identifies a cached list response.
type Key struct {
	// Resource is the endpoint path, e.g. "/professionals".
	Resource string

	// Query holds the request parameters.
	Query url.Values
}

// String renders a deterministic Redis key:
//
//	homi:list:professionals:category=plumbing:limit=12:page=1
//
// Multi-valued parameters keep their value order.
func (k Key) String() string {
	parts := []string{KeyPrefix}

	if resource := strings.Trim(k.Resource, "/"); resource != "" {
		parts = append(parts, resource)
	}

	names := make([]string, 0, len(k.Query))
	for name := range k.Query {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		parts = append(parts, name+"="+strings.Join(k.Query[name], ","))
	}

	return strings.Join(parts, ":")
}

// ResourcePattern returns the SCAN pattern matching every key of a resource.
func ResourcePattern(resource string) string {
	return KeyPrefix + ":" + strings.Trim(resource, "/") + ":*"
}
