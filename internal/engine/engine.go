// Package engine runs the moving-average-crossover simulation: a stateful,
// single-pass walk over an ordered daily bar series that computes rolling
// indicators, applies the entry/exit policy with risk overrides, keeps the
// portfolio books, and emits an auditable trade ledger plus a per-bar
// snapshot series.
package engine

import (
	"github.com/moznion/go-optional"
	"github.com/rigelquant/smacross/internal/datasource"
	"github.com/rigelquant/smacross/internal/indicator"
	"github.com/rigelquant/smacross/internal/logger"
	"github.com/rigelquant/smacross/internal/types"
	"github.com/rigelquant/smacross/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProgressCallback is invoked after each processed bar with the number of
// bars processed so far and the total bar count.
type ProgressCallback func(current int, total int)

// Result bundles everything one run produces. Either a complete, internally
// consistent Result is returned or nothing is.
type Result struct {
	Outcome   types.Outcome
	Trades    []types.Trade
	Snapshots []types.DailySnapshot
}

// SimulationEngine evaluates the crossover strategy against a bar source.
// One engine value may run many simulations; each run owns isolated state.
type SimulationEngine struct {
	log *logger.Logger
}

// NewSimulationEngine creates an engine that logs through the given logger.
func NewSimulationEngine(log *logger.Logger) *SimulationEngine {
	return &SimulationEngine{log: log}
}

// Run executes one simulation over the bars the source yields for the
// config's time range. The series is fully materialized before the loop
// starts; the loop itself never blocks or fetches.
func (e *SimulationEngine) Run(cfg Config, source datasource.BarSource, onProgress optional.Option[ProgressCallback]) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bars, err := e.materialize(cfg, source)
	if err != nil {
		return nil, err
	}

	minWindow := cfg.ShortWindow
	if cfg.LongWindow < minWindow {
		minWindow = cfg.LongWindow
	}

	if len(bars) < minWindow {
		return nil, errors.Newf(errors.ErrCodeInsufficientHistory,
			"%d bars for %s, need at least %d for any indicator to become defined",
			len(bars), cfg.Symbol, minWindow)
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	shortMA, err := indicator.SMASeries(closes, cfg.ShortWindow)
	if err != nil {
		return nil, err
	}

	longMA, err := indicator.SMASeries(closes, cfg.LongWindow)
	if err != nil {
		return nil, err
	}

	startingCash := decimal.NewFromFloat(cfg.InitialCapital)
	state := NewRunState(cfg.Symbol, startingCash)

	stopFactor := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(cfg.StopLossPct).Div(hundred))
	takeFactor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(cfg.TakeProfitPct).Div(hundred))

	for i := range bars {
		e.processBar(state, bars, shortMA, longMA, i, stopFactor, takeFactor)

		if onProgress.IsSome() {
			onProgress.Unwrap()(i+1, len(bars))
		}
	}

	// Any position still open is liquidated at the final bar's close.
	if state.Holding() {
		last := bars[len(bars)-1]
		trade := state.ClosePosition(last.Date, decimal.NewFromFloat(last.Close))
		e.log.Debug("Forced end-of-series liquidation",
			zap.String("symbol", cfg.Symbol),
			zap.Time("date", last.Date),
			zap.String("exit_price", trade.ExitPrice.String()),
		)
	}

	outcome := e.summarize(cfg, state, startingCash, bars)

	e.log.Info("Simulation completed",
		zap.String("symbol", cfg.Symbol),
		zap.Int("bars", len(bars)),
		zap.Int("trades", outcome.NumberOfTrades),
		zap.String("total_profit", outcome.TotalProfit.String()),
		zap.String("total_return_pct", outcome.TotalReturnPct.String()),
	)

	return &Result{
		Outcome:   outcome,
		Trades:    state.Trades(),
		Snapshots: state.Snapshots(),
	}, nil
}

// materialize drains the source into memory and verifies chronological order.
func (e *SimulationEngine) materialize(cfg Config, source datasource.BarSource) ([]types.Bar, error) {
	var bars []types.Bar

	for bar, err := range source.ReadAll(cfg.StartTime, cfg.EndTime) {
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to fetch bars for %s", cfg.Symbol)
		}

		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataUnavailable, "no bars available for %s", cfg.Symbol)
	}

	if err := types.ValidateSeries(bars); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMalformedSeries, err, "malformed bar series for %s", cfg.Symbol)
	}

	return bars, nil
}

// processBar applies the per-bar decision policy in its fixed order: bars
// with undefined indicators are skipped (but still valued), a risk exit takes
// precedence and suppresses same-bar signal evaluation, then crossover
// signals fire if the previous bar's indicators were defined. The snapshot is
// taken after the decision is final.
func (e *SimulationEngine) processBar(
	state *RunState,
	bars []types.Bar,
	shortMA, longMA []optional.Option[float64],
	i int,
	stopFactor, takeFactor decimal.Decimal,
) {
	bar := bars[i]
	closePrice := decimal.NewFromFloat(bar.Close)

	if shortMA[i].IsNone() || longMA[i].IsNone() {
		state.TakeSnapshot(bar.Date, closePrice)

		return
	}

	riskExited := false

	if state.Holding() {
		pos := state.Position().Unwrap()
		stopPrice := pos.EntryPrice.Mul(stopFactor)
		takeProfitPrice := pos.EntryPrice.Mul(takeFactor)

		if closePrice.LessThanOrEqual(stopPrice) || closePrice.GreaterThanOrEqual(takeProfitPrice) {
			state.ClosePosition(bar.Date, closePrice)

			riskExited = true

			e.log.Debug("Risk exit",
				zap.Time("date", bar.Date),
				zap.String("close", closePrice.String()),
				zap.String("stop_price", stopPrice.String()),
				zap.String("take_profit_price", takeProfitPrice.String()),
			)
		}
	}

	// A risk exit suppresses crossover evaluation for this bar; no same-bar
	// re-entry. Crossovers also need the previous bar's indicators defined.
	if !riskExited && i > 0 && shortMA[i-1].IsSome() && longMA[i-1].IsSome() {
		prevShort := shortMA[i-1].Unwrap()
		prevLong := longMA[i-1].Unwrap()
		currShort := shortMA[i].Unwrap()
		currLong := longMA[i].Unwrap()

		switch {
		case prevShort <= prevLong && currShort > currLong && !state.Holding():
			quantity := e.affordableQuantity(state.Cash(), closePrice)
			if quantity >= 1 {
				state.OpenPosition(bar.Date, closePrice, quantity)
				e.log.Debug("Golden cross entry",
					zap.Time("date", bar.Date),
					zap.Int64("quantity", quantity),
					zap.String("price", closePrice.String()),
				)
			}
		case prevShort >= prevLong && currShort < currLong && state.Holding():
			state.ClosePosition(bar.Date, closePrice)
			e.log.Debug("Death cross exit",
				zap.Time("date", bar.Date),
				zap.String("price", closePrice.String()),
			)
		}
	}

	state.TakeSnapshot(bar.Date, closePrice)
}

// affordableQuantity is floor(cash / price) in whole shares. Division rounds
// at fixed decimal precision, so the result is re-checked against cash.
func (e *SimulationEngine) affordableQuantity(cash, price decimal.Decimal) int64 {
	if !price.IsPositive() {
		return 0
	}

	quantity := cash.Div(price).Floor().IntPart()
	if quantity >= 1 && price.Mul(decimal.NewFromInt(quantity)).GreaterThan(cash) {
		quantity--
	}

	return quantity
}

// summarize derives the terminal Outcome after the loop (and any forced
// liquidation) finished. Trough and maximum drawdown are true running extrema
// over the whole snapshot history. Monetary and percentage fields are rounded
// to 2 fractional digits.
func (e *SimulationEngine) summarize(cfg Config, state *RunState, startingCash decimal.Decimal, bars []types.Bar) types.Outcome {
	closingAmount := state.Cash()
	totalProfit := closingAmount.Sub(startingCash)
	totalReturnPct := decimal.Zero

	if startingCash.IsPositive() {
		totalReturnPct = totalProfit.Div(startingCash).Mul(hundred)
	}

	return types.Outcome{
		Symbol:         cfg.Symbol,
		StartDate:      bars[0].Date,
		EndDate:        bars[len(bars)-1].Date,
		StartingAmount: startingCash.Round(2),
		ClosingAmount:  closingAmount.Round(2),
		TotalProfit:    totalProfit.Round(2),
		TotalReturnPct: totalReturnPct.Round(2),
		NumberOfTrades: len(state.Trades()),
		PeakValue:      state.Peak().Round(2),
		TroughValue:    state.Trough(startingCash).Round(2),
		MaxDrawdownPct: state.MaxDrawdown().Round(2),
	}
}
