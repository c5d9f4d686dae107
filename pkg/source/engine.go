package source

import (
	"context"
	"fmt"
)

// Engine dispatches locations to the first fetcher that accepts them and
// caches the results.
type Engine struct {
	fetchers []Fetcher
	cache    *Cache
}

// NewEngine creates an engine with registered fetchers, tried in order.
func NewEngine(fetchers ...Fetcher) *Engine {
	return &Engine{
		fetchers: fetchers,
		cache:    NewCache(),
	}
}

// Fetch reads location with the appropriate fetcher.
// Checks cache first, then finds and invokes the matching fetcher.
func (e *Engine) Fetch(ctx context.Context, location string) (*Object, error) {
	if cached := e.cache.Get(location); cached != nil {
		return cached, nil
	}

	for _, f := range e.fetchers {
		if f.CanFetch(location) {
			obj, err := f.Fetch(ctx, location)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name(), err)
			}
			e.cache.Set(location, obj)
			return obj, nil
		}
	}

	return nil, fmt.Errorf("no fetcher available for %q", location)
}

// IsRemote reports whether location names something other than a local path.
func IsRemote(location string) bool {
	s := scheme(location)
	return s != "" && s != "file"
}
