package engine

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rigelquant/smacross/internal/types"
	"github.com/shopspring/decimal"
)

// RunState is the single-owner mutable state of one simulation run: cash, the
// open position (if any), the running peak, and the accumulated ledger and
// snapshot series. One RunState belongs to exactly one run; nothing is shared
// across concurrent runs.
//
// The account is either flat (position is None) or holding exactly one
// position. All monetary arithmetic is decimal so that the cash-conservation
// invariant (cash + quantity*close == portfolio value) holds exactly.
type RunState struct {
	symbol      string
	cash        decimal.Decimal
	position    optional.Option[types.Position]
	peak        decimal.Decimal
	trough      optional.Option[decimal.Decimal]
	maxDrawdown decimal.Decimal
	prevValue   optional.Option[decimal.Decimal]
	trades      []types.Trade
	snapshots   []types.DailySnapshot
}

var hundred = decimal.NewFromInt(100)

// NewRunState creates the state for a fresh run. The peak starts at the
// initial cash amount.
func NewRunState(symbol string, startingCash decimal.Decimal) *RunState {
	return &RunState{
		symbol:      symbol,
		cash:        startingCash,
		position:    optional.None[types.Position](),
		peak:        startingCash,
		trough:      optional.None[decimal.Decimal](),
		maxDrawdown: decimal.Zero,
		prevValue:   optional.None[decimal.Decimal](),
		trades:      nil,
		snapshots:   nil,
	}
}

// Holding reports whether a position is currently open.
func (s *RunState) Holding() bool {
	return s.position.IsSome()
}

// Position returns the open position, if any.
func (s *RunState) Position() optional.Option[types.Position] {
	return s.position
}

// Cash returns the current cash balance.
func (s *RunState) Cash() decimal.Decimal {
	return s.cash
}

// OpenPosition buys quantity shares at price, deducting the cost from cash.
// The caller guarantees the account is flat and quantity >= 1.
func (s *RunState) OpenPosition(date time.Time, price decimal.Decimal, quantity int64) {
	s.cash = s.cash.Sub(price.Mul(decimal.NewFromInt(quantity)))
	s.position = optional.Some(types.Position{
		Quantity:   quantity,
		EntryPrice: price,
		EntryDate:  date,
	})
}

// ClosePosition sells the open position at price, credits cash, and appends
// exactly one trade to the ledger. The caller guarantees the account is
// holding.
func (s *RunState) ClosePosition(date time.Time, price decimal.Decimal) types.Trade {
	pos := s.position.Unwrap()
	s.cash = s.cash.Add(price.Mul(decimal.NewFromInt(pos.Quantity)))
	s.position = optional.None[types.Position]()

	trade := types.Trade{
		Symbol:     s.symbol,
		EntryDate:  pos.EntryDate,
		EntryPrice: pos.EntryPrice,
		Quantity:   pos.Quantity,
		ExitDate:   date,
		ExitPrice:  price,
	}
	s.trades = append(s.trades, trade)

	return trade
}

// TakeSnapshot values the account at the bar's close and appends one
// DailySnapshot. It runs once per bar, after the bar's decision is final, and
// maintains the running peak, trough, and maximum drawdown.
func (s *RunState) TakeSnapshot(date time.Time, closePrice decimal.Decimal) types.DailySnapshot {
	value := s.cash
	openPositions := 0

	if s.position.IsSome() {
		pos := s.position.Unwrap()
		value = value.Add(closePrice.Mul(decimal.NewFromInt(pos.Quantity)))
		openPositions = 1
	}

	if value.GreaterThan(s.peak) {
		s.peak = value
	}

	drawdown := decimal.Zero
	if s.peak.IsPositive() {
		drawdown = s.peak.Sub(value).Div(s.peak).Mul(hundred)
	}

	dailyReturn := decimal.Zero
	if s.prevValue.IsSome() {
		prev := s.prevValue.Unwrap()
		if !prev.IsZero() {
			dailyReturn = value.Sub(prev).Div(prev).Mul(hundred)
		}
	}

	if s.trough.IsNone() || value.LessThan(s.trough.Unwrap()) {
		s.trough = optional.Some(value)
	}

	if drawdown.GreaterThan(s.maxDrawdown) {
		s.maxDrawdown = drawdown
	}

	snapshot := types.DailySnapshot{
		Date:               date,
		PortfolioValue:     value,
		CashBalance:        s.cash,
		DailyReturnPct:     dailyReturn,
		PeakPortfolioValue: s.peak,
		DrawdownPct:        drawdown,
		OpenPositions:      openPositions,
	}
	s.snapshots = append(s.snapshots, snapshot)
	s.prevValue = optional.Some(value)

	return snapshot
}

// Trades returns the append-only ledger in creation order.
func (s *RunState) Trades() []types.Trade {
	return s.trades
}

// Snapshots returns the per-bar snapshot series in date order.
func (s *RunState) Snapshots() []types.DailySnapshot {
	return s.snapshots
}

// Peak returns the running maximum portfolio value.
func (s *RunState) Peak() decimal.Decimal {
	return s.peak
}

// Trough returns the minimum portfolio value recorded across all snapshots,
// or the starting cash when no snapshot was taken.
func (s *RunState) Trough(startingCash decimal.Decimal) decimal.Decimal {
	if s.trough.IsSome() {
		return s.trough.Unwrap()
	}

	return startingCash
}

// MaxDrawdown returns the largest drawdown percentage recorded across all
// snapshots.
func (s *RunState) MaxDrawdown() decimal.Decimal {
	return s.maxDrawdown
}
