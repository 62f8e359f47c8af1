// Package datasource supplies ordered daily bar series to the simulation
// engine. Sources are read-only: the engine materializes the full series
// before its loop starts and never fetches mid-run.
package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rigelquant/smacross/internal/types"
)

// BarSource is the data-provider boundary of the engine. Implementations must
// yield bars sorted ascending by date and deduplicated; the engine treats a
// malformed series as a fetch failure, not a trading signal.
type BarSource interface {
	// ReadAll yields every bar in the source within the optional [start, end]
	// range, in chronological order.
	ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool)
	// Count returns the number of bars within the optional [start, end] range.
	Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases any resources held by the source.
	Close() error
}
