package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySnapshot is the end-of-bar valuation of the simulated account. Exactly
// one snapshot exists per bar, including warm-up bars with undefined
// indicators. Values are kept at full decimal precision inside the engine;
// the persistence layer rounds to 2 fractional digits on the way out.
type DailySnapshot struct {
	Date               time.Time       `yaml:"date" csv:"date"`
	PortfolioValue     decimal.Decimal `yaml:"portfolio_value" csv:"portfolio_value"`
	CashBalance        decimal.Decimal `yaml:"cash_balance" csv:"cash_balance"`
	DailyReturnPct     decimal.Decimal `yaml:"daily_return_pct" csv:"daily_return_pct"`
	PeakPortfolioValue decimal.Decimal `yaml:"peak_portfolio_value" csv:"peak_portfolio_value"`
	DrawdownPct        decimal.Decimal `yaml:"drawdown_pct" csv:"drawdown_pct"`
	OpenPositions      int             `yaml:"open_positions" csv:"open_positions"`
}
