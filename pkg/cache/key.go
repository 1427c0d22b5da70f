package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Key identifies one cached page of a backend resource.
type Key struct {
	// Resource is the backend resource name (e.g., "posts", "albums", "analytics").
	Resource string

	// Page is the 1-based page number (0 for unpaginated resources).
	Page int

	// PageSize is the page size used for the fetch (0 for unpaginated resources).
	PageSize int

	// Params are additional query parameters (e.g., {"search": "ambient"}).
	Params map[string]string
}

// String generates a deterministic cache key string.
// Format: resonance:resource:page=N:size=M:param1=val1:param2=val2
//
// Example:
//
//	resonance:posts:page=2:size=15:kind=track:search=ambient
func (k Key) String() string {
	parts := []string{"resonance"}

	resource := strings.Trim(k.Resource, "/")
	if resource != "" {
		parts = append(parts, resource)
	}

	if k.Page > 0 {
		parts = append(parts, fmt.Sprintf("page=%d", k.Page))
	}
	if k.PageSize > 0 {
		parts = append(parts, fmt.Sprintf("size=%d", k.PageSize))
	}

	// Params sorted for determinism
	if len(k.Params) > 0 {
		paramKeys := make([]string, 0, len(k.Params))
		for key, value := range k.Params {
			if value == "" {
				continue
			}
			paramKeys = append(paramKeys, key)
		}
		sort.Strings(paramKeys)

		for _, key := range paramKeys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params[key]))
		}
	}

	return strings.Join(parts, ":")
}

// ResourcePrefix returns the key prefix shared by every page of the resource.
// Passing it to InvalidatePattern drops the whole cached family at once.
func (k Key) ResourcePrefix() string {
	return "resonance:" + strings.Trim(k.Resource, "/")
}
