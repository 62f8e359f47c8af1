package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rigelquant/smacross/internal/types"
)

// InMemoryBarSource serves a preloaded bar slice. It is the source of choice
// for tests and for callers that already hold a materialized series.
type InMemoryBarSource struct {
	bars []types.Bar
}

// NewInMemoryBarSource wraps the given bars. The slice is used as-is; callers
// are responsible for chronological order, which the engine verifies.
func NewInMemoryBarSource(bars []types.Bar) *InMemoryBarSource {
	return &InMemoryBarSource{bars: bars}
}

func (s *InMemoryBarSource) inRange(bar types.Bar, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && bar.Date.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && bar.Date.After(end.Unwrap()) {
		return false
	}

	return true
}

// ReadAll implements BarSource.
func (s *InMemoryBarSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		for _, bar := range s.bars {
			if !s.inRange(bar, start, end) {
				continue
			}

			if !yield(bar, nil) {
				return
			}
		}
	}
}

// Count implements BarSource.
func (s *InMemoryBarSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	count := 0

	for _, bar := range s.bars {
		if s.inRange(bar, start, end) {
			count++
		}
	}

	return count, nil
}

// Close implements BarSource.
func (s *InMemoryBarSource) Close() error {
	return nil
}
