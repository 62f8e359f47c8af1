package types

import (
	"fmt"
	"time"

	"github.com/moznion/go-optional"
)

// Bar is a single daily price bar for one instrument. The simulation only
// consumes Date and Close; the remaining fields are carried for persistence
// and reporting.
type Bar struct {
	Date     time.Time                `csv:"date" yaml:"date"`
	Open     float64                  `csv:"open" yaml:"open"`
	High     float64                  `csv:"high" yaml:"high"`
	Low      float64                  `csv:"low" yaml:"low"`
	Close    float64                  `csv:"close" yaml:"close"`
	Volume   int64                    `csv:"volume" yaml:"volume"`
	AdjClose optional.Option[float64] `csv:"adj_close" yaml:"adj_close"`
}

// ValidateSeries checks that bars are sorted strictly ascending by date with
// no duplicates. Gaps are allowed; trading calendars have them.
func ValidateSeries(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return &SeriesOrderError{
				Index: i,
				Prev:  bars[i-1].Date,
				Curr:  bars[i].Date,
			}
		}
	}

	return nil
}

// SeriesOrderError reports the first out-of-order or duplicate date in a bar series.
type SeriesOrderError struct {
	Index int
	Prev  time.Time
	Curr  time.Time
}

func (e *SeriesOrderError) Error() string {
	return fmt.Sprintf("bar series not strictly ascending by date at index %d: %s follows %s",
		e.Index, e.Curr.Format("2006-01-02"), e.Prev.Format("2006-01-02"))
}
