package datasource

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rigelquant/smacross/internal/types"
	"github.com/stretchr/testify/suite"
)

type InMemoryBarSourceTestSuite struct {
	suite.Suite
	bars []types.Bar
}

func TestInMemoryBarSourceSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBarSourceTestSuite))
}

func testDate(i int) time.Time {
	return time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func (suite *InMemoryBarSourceTestSuite) SetupTest() {
	suite.bars = []types.Bar{
		{Date: testDate(0), Close: 10, Volume: 100},
		{Date: testDate(1), Close: 11, Volume: 100},
		{Date: testDate(2), Close: 12, Volume: 100},
		{Date: testDate(3), Close: 9, Volume: 100},
		{Date: testDate(4), Close: 14, Volume: 100},
	}
}

func drain(source BarSource, start, end optional.Option[time.Time]) ([]types.Bar, error) {
	var bars []types.Bar

	for bar, err := range source.ReadAll(start, end) {
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

func (suite *InMemoryBarSourceTestSuite) TestReadAllYieldsEverything() {
	source := NewInMemoryBarSource(suite.bars)

	bars, err := drain(source, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(suite.bars, bars)
}

func (suite *InMemoryBarSourceTestSuite) TestReadAllHonorsTimeRange() {
	source := NewInMemoryBarSource(suite.bars)

	bars, err := drain(source, optional.Some(testDate(1)), optional.Some(testDate(3)))
	suite.Require().NoError(err)

	suite.Require().Len(bars, 3)
	suite.Equal(testDate(1), bars[0].Date)
	suite.Equal(testDate(3), bars[2].Date)
}

func (suite *InMemoryBarSourceTestSuite) TestReadAllEarlyStop() {
	source := NewInMemoryBarSource(suite.bars)

	count := 0

	for _, err := range source.ReadAll(optional.None[time.Time](), optional.None[time.Time]()) {
		suite.Require().NoError(err)

		count++
		if count == 2 {
			break
		}
	}

	suite.Equal(2, count)
}

func (suite *InMemoryBarSourceTestSuite) TestCountMatchesReadAll() {
	source := NewInMemoryBarSource(suite.bars)

	count, err := source.Count(optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(5, count)

	count, err = source.Count(optional.Some(testDate(2)), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Equal(3, count)
}

func (suite *InMemoryBarSourceTestSuite) TestEmptySource() {
	source := NewInMemoryBarSource(nil)

	bars, err := drain(source, optional.None[time.Time](), optional.None[time.Time]())
	suite.Require().NoError(err)
	suite.Empty(bars)

	suite.NoError(source.Close())
}
