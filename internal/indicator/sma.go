// Package indicator computes the rolling indicators consumed by the
// simulation engine. Calculations are pure functions of the bar series: the
// value at index i depends only on bars at indices <= i.
package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rigelquant/smacross/pkg/errors"
)

// SMASeries computes the trailing simple moving average of closes for the
// given window, one value per input index. Indices with fewer than window
// observations are None (the warm-up period). The mean at index i is taken
// over closes[i-window+1 .. i] inclusive.
func SMASeries(closes []float64, window int) ([]optional.Option[float64], error) {
	if window <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidWindow, "window must be a positive integer, got %d", window)
	}

	values := make([]optional.Option[float64], len(closes))

	for i := range closes {
		if i < window-1 {
			values[i] = optional.None[float64]()
			continue
		}

		sum := 0.0
		for j := i - window + 1; j <= i; j++ {
			sum += closes[j]
		}

		values[i] = optional.Some(sum / float64(window))
	}

	return values, nil
}
