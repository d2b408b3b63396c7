package domain

import "errors"

var (
	// ErrUnknownCatalog marks a category outside the closed catalog set.
	ErrUnknownCatalog = errors.New("unknown catalog")
	// ErrAdapterTimeout marks a catalog branch that exceeded its deadline.
	ErrAdapterTimeout = errors.New("adapter timeout")
	// ErrAdapterUpstream marks a non-2xx or malformed upstream response.
	ErrAdapterUpstream = errors.New("adapter upstream error")
	// ErrCacheUnavailable marks a cache backend that cannot be reached.
	// Treated as a miss on the search path.
	ErrCacheUnavailable = errors.New("cache unavailable")
)
