package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type RunStateTestSuite struct {
	suite.Suite
}

func TestRunStateSuite(t *testing.T) {
	suite.Run(t, new(RunStateTestSuite))
}

func (suite *RunStateTestSuite) TestOpenAndClosePositionMoveCashExactly() {
	state := NewRunState("TEST", decimal.NewFromInt(1000))

	suite.False(state.Holding())

	state.OpenPosition(day(0), decimal.NewFromFloat(110), 9)
	suite.True(state.Holding())
	suite.True(state.Cash().Equal(decimal.NewFromInt(10)))

	pos := state.Position().Unwrap()
	suite.Equal(int64(9), pos.Quantity)
	suite.True(pos.EntryPrice.Equal(decimal.NewFromInt(110)))

	trade := state.ClosePosition(day(1), decimal.NewFromFloat(99))
	suite.False(state.Holding())
	suite.True(state.Cash().Equal(decimal.NewFromInt(901)))
	suite.Equal("TEST", trade.Symbol)
	suite.True(trade.Profit().Equal(decimal.NewFromInt(-99)))
	suite.Len(state.Trades(), 1)
}

func (suite *RunStateTestSuite) TestSnapshotValuesOpenPosition() {
	state := NewRunState("TEST", decimal.NewFromInt(1000))
	state.OpenPosition(day(0), decimal.NewFromFloat(100), 5)

	snapshot := state.TakeSnapshot(day(0), decimal.NewFromFloat(120))

	suite.True(snapshot.PortfolioValue.Equal(decimal.NewFromInt(1100)))
	suite.True(snapshot.CashBalance.Equal(decimal.NewFromInt(500)))
	suite.Equal(1, snapshot.OpenPositions)
}

func (suite *RunStateTestSuite) TestPeakNeverDecreases() {
	state := NewRunState("TEST", decimal.NewFromInt(1000))
	state.OpenPosition(day(0), decimal.NewFromFloat(100), 10)

	first := state.TakeSnapshot(day(0), decimal.NewFromFloat(150))
	suite.True(first.PeakPortfolioValue.Equal(decimal.NewFromInt(1500)))

	second := state.TakeSnapshot(day(1), decimal.NewFromFloat(80))
	suite.True(second.PeakPortfolioValue.Equal(decimal.NewFromInt(1500)))
	suite.True(second.PortfolioValue.Equal(decimal.NewFromInt(800)))
}

func (suite *RunStateTestSuite) TestDrawdownAgainstRunningPeak() {
	state := NewRunState("TEST", decimal.NewFromInt(1000))
	state.OpenPosition(day(0), decimal.NewFromFloat(100), 10)

	state.TakeSnapshot(day(0), decimal.NewFromFloat(200)) // value 2000, new peak
	snapshot := state.TakeSnapshot(day(1), decimal.NewFromFloat(150))

	// (2000 - 1500) / 2000 * 100 = 25.
	suite.True(snapshot.DrawdownPct.Equal(decimal.NewFromInt(25)))
	suite.True(state.MaxDrawdown().Equal(decimal.NewFromInt(25)))
}

func (suite *RunStateTestSuite) TestDailyReturnZeroOnFirstBar() {
	state := NewRunState("TEST", decimal.NewFromInt(1000))

	first := state.TakeSnapshot(day(0), decimal.NewFromFloat(100))
	suite.True(first.DailyReturnPct.IsZero())

	state.OpenPosition(day(1), decimal.NewFromFloat(100), 10)
	second := state.TakeSnapshot(day(1), decimal.NewFromFloat(110))

	// (1100 - 1000) / 1000 * 100 = 10.
	suite.True(second.DailyReturnPct.Equal(decimal.NewFromInt(10)))
}

func (suite *RunStateTestSuite) TestTroughTracksMinimumValue() {
	state := NewRunState("TEST", decimal.NewFromInt(1000))

	// No snapshots yet: trough falls back to starting cash.
	suite.True(state.Trough(decimal.NewFromInt(1000)).Equal(decimal.NewFromInt(1000)))

	state.OpenPosition(day(0), decimal.NewFromFloat(100), 10)
	state.TakeSnapshot(day(0), decimal.NewFromFloat(70))  // value 700
	state.TakeSnapshot(day(1), decimal.NewFromFloat(130)) // value 1300

	suite.True(state.Trough(decimal.NewFromInt(1000)).Equal(decimal.NewFromInt(700)))
	suite.True(state.Peak().Equal(decimal.NewFromInt(1300)))
}
