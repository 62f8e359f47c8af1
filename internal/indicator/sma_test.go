package indicator

import (
	"testing"

	"github.com/rigelquant/smacross/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SMATestSuite struct {
	suite.Suite
}

func TestSMASuite(t *testing.T) {
	suite.Run(t, new(SMATestSuite))
}

func (suite *SMATestSuite) TestWarmUpUndefined() {
	closes := []float64{10, 11, 12, 9, 14}

	short, err := SMASeries(closes, 2)
	suite.NoError(err)

	long, err := SMASeries(closes, 3)
	suite.NoError(err)

	// window 2 becomes defined at index 1, window 3 at index 2
	suite.True(short[0].IsNone())
	suite.True(short[1].IsSome())
	suite.True(long[0].IsNone())
	suite.True(long[1].IsNone())
	suite.True(long[2].IsSome())
}

func (suite *SMATestSuite) TestValues() {
	closes := []float64{10, 11, 12, 9, 14}

	short, err := SMASeries(closes, 2)
	suite.NoError(err)
	suite.InDelta(10.5, short[1].Unwrap(), 1e-9)
	suite.InDelta(11.5, short[2].Unwrap(), 1e-9)
	suite.InDelta(10.5, short[3].Unwrap(), 1e-9)
	suite.InDelta(11.5, short[4].Unwrap(), 1e-9)

	long, err := SMASeries(closes, 3)
	suite.NoError(err)
	suite.InDelta(11.0, long[2].Unwrap(), 1e-9)
	suite.InDelta(32.0/3.0, long[3].Unwrap(), 1e-9)
	suite.InDelta(35.0/3.0, long[4].Unwrap(), 1e-9)
}

func (suite *SMATestSuite) TestWindowOne() {
	closes := []float64{10, 11, 12}

	values, err := SMASeries(closes, 1)
	suite.NoError(err)

	for i, v := range values {
		suite.True(v.IsSome())
		suite.InDelta(closes[i], v.Unwrap(), 1e-9)
	}
}

func (suite *SMATestSuite) TestWindowLargerThanSeries() {
	closes := []float64{10, 11}

	values, err := SMASeries(closes, 5)
	suite.NoError(err)

	for _, v := range values {
		suite.True(v.IsNone())
	}
}

func (suite *SMATestSuite) TestEmptySeries() {
	values, err := SMASeries(nil, 3)
	suite.NoError(err)
	suite.Empty(values)
}

func (suite *SMATestSuite) TestInvalidWindow() {
	_, err := SMASeries([]float64{1, 2, 3}, 0)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidWindow))

	_, err = SMASeries([]float64{1, 2, 3}, -2)
	suite.Error(err)
}

func (suite *SMATestSuite) TestNoLookAhead() {
	closes := []float64{10, 11, 12, 9, 14}

	full, err := SMASeries(closes, 3)
	suite.NoError(err)

	// Values over a prefix must match the same indices of the full series.
	prefix, err := SMASeries(closes[:3], 3)
	suite.NoError(err)

	for i := range prefix {
		suite.Equal(full[i].IsSome(), prefix[i].IsSome())

		if prefix[i].IsSome() {
			suite.InDelta(full[i].Unwrap(), prefix[i].Unwrap(), 1e-12)
		}
	}
}
