// Package resultstore persists completed simulation runs. The engine itself
// never touches storage; the CLI hands it a finished Result and this package
// records the outcome, the trade ledger, and the daily snapshot series under
// a generated run ID.
package resultstore

import (
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rigelquant/smacross/internal/engine"
	"github.com/rigelquant/smacross/internal/logger"
	"github.com/rigelquant/smacross/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store writes run results into a DuckDB database file.
type Store struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewStore opens (or creates) the results database at path.
func NewStore(path string, logger *logger.Logger) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreInitFailed, "failed to open results database", err)
	}

	return &Store{
		db:     db,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Initialize creates the result tables if they do not exist.
func (s *Store) Initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS backtest_results (
			run_id TEXT PRIMARY KEY,
			created_at TIMESTAMP,
			symbol TEXT,
			start_date TIMESTAMP,
			end_date TIMESTAMP,
			short_window INTEGER,
			long_window INTEGER,
			stop_loss_pct DOUBLE,
			take_profit_pct DOUBLE,
			starting_amount DECIMAL(12,2),
			closing_amount DECIMAL(12,2),
			total_profit DECIMAL(12,2),
			total_return_pct DECIMAL(7,2),
			number_of_trades INTEGER,
			peak_value DECIMAL(12,2),
			trough_value DECIMAL(12,2),
			max_drawdown_pct DECIMAL(7,2)
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreInitFailed, "failed to create backtest_results table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			run_id TEXT,
			symbol TEXT,
			entry_date TIMESTAMP,
			entry_price DECIMAL(10,2),
			quantity BIGINT,
			exit_date TIMESTAMP,
			exit_price DECIMAL(10,2),
			profit DECIMAL(12,2)
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreInitFailed, "failed to create trades table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS daily_snapshots (
			run_id TEXT,
			date TIMESTAMP,
			portfolio_value DECIMAL(12,2),
			cash_balance DECIMAL(12,2),
			daily_return_pct DECIMAL(7,2),
			peak_portfolio_value DECIMAL(12,2),
			drawdown_pct DECIMAL(7,2),
			open_positions INTEGER,
			UNIQUE (run_id, date)
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreInitFailed, "failed to create daily_snapshots table", err)
	}

	return nil
}

// SaveRun persists one complete run atomically and returns its run ID.
// Monetary and percentage values are rounded to 2 fractional digits on the
// way in; nothing is written if any insert fails.
func (s *Store) SaveRun(cfg engine.Config, result *engine.Result) (string, error) {
	runID := uuid.New().String()

	tx, err := s.db.Begin()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to begin transaction", err)
	}

	insertRun := s.sq.
		Insert("backtest_results").
		Columns(
			"run_id", "created_at", "symbol", "start_date", "end_date",
			"short_window", "long_window", "stop_loss_pct", "take_profit_pct",
			"starting_amount", "closing_amount", "total_profit", "total_return_pct",
			"number_of_trades", "peak_value", "trough_value", "max_drawdown_pct",
		).
		Values(
			runID, time.Now().UTC(), result.Outcome.Symbol, result.Outcome.StartDate, result.Outcome.EndDate,
			cfg.ShortWindow, cfg.LongWindow, cfg.StopLossPct, cfg.TakeProfitPct,
			result.Outcome.StartingAmount.String(), result.Outcome.ClosingAmount.String(),
			result.Outcome.TotalProfit.String(), result.Outcome.TotalReturnPct.String(),
			result.Outcome.NumberOfTrades, result.Outcome.PeakValue.String(),
			result.Outcome.TroughValue.String(), result.Outcome.MaxDrawdownPct.String(),
		).
		RunWith(tx)

	if _, err := insertRun.Exec(); err != nil {
		tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to insert backtest result", err)
	}

	for _, trade := range result.Trades {
		insertTrade := s.sq.
			Insert("trades").
			Columns("run_id", "symbol", "entry_date", "entry_price", "quantity", "exit_date", "exit_price", "profit").
			Values(
				runID, trade.Symbol, trade.EntryDate, trade.EntryPrice.Round(2).String(),
				trade.Quantity, trade.ExitDate, trade.ExitPrice.Round(2).String(),
				trade.Profit().Round(2).String(),
			).
			RunWith(tx)

		if _, err := insertTrade.Exec(); err != nil {
			tx.Rollback()

			return "", errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to insert trade", err)
		}
	}

	for _, snapshot := range result.Snapshots {
		insertSnapshot := s.sq.
			Insert("daily_snapshots").
			Columns(
				"run_id", "date", "portfolio_value", "cash_balance",
				"daily_return_pct", "peak_portfolio_value", "drawdown_pct", "open_positions",
			).
			Values(
				runID, snapshot.Date, snapshot.PortfolioValue.Round(2).String(),
				snapshot.CashBalance.Round(2).String(), snapshot.DailyReturnPct.Round(2).String(),
				snapshot.PeakPortfolioValue.Round(2).String(), snapshot.DrawdownPct.Round(2).String(),
				snapshot.OpenPositions,
			).
			RunWith(tx)

		if _, err := insertSnapshot.Exec(); err != nil {
			tx.Rollback()

			return "", errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to insert daily snapshot", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", errors.Wrap(errors.ErrCodeStoreWriteFailed, "failed to commit run", err)
	}

	s.logger.Info("Run persisted",
		zap.String("run_id", runID),
		zap.String("symbol", result.Outcome.Symbol),
		zap.Int("trades", len(result.Trades)),
		zap.Int("snapshots", len(result.Snapshots)),
	)

	return runID, nil
}

// CountTrades returns the number of trades stored for a run.
func (s *Store) CountTrades(runID string) (int, error) {
	query := s.sq.Select("COUNT(*)").From("trades").Where(squirrel.Eq{"run_id": runID}).RunWith(s.db)

	var count int
	if err := query.QueryRow().Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count trades", err)
	}

	return count, nil
}

// CountSnapshots returns the number of daily snapshots stored for a run.
func (s *Store) CountSnapshots(runID string) (int, error) {
	query := s.sq.Select("COUNT(*)").From("daily_snapshots").Where(squirrel.Eq{"run_id": runID}).RunWith(s.db)

	var count int
	if err := query.QueryRow().Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count snapshots", err)
	}

	return count, nil
}

// TotalProfit returns the persisted total profit of a run.
func (s *Store) TotalProfit(runID string) (decimal.Decimal, error) {
	query := s.sq.Select("total_profit").From("backtest_results").Where(squirrel.Eq{"run_id": runID}).RunWith(s.db)

	var profit string
	if err := query.QueryRow().Scan(&profit); err != nil {
		return decimal.Zero, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read total profit", err)
	}

	return decimal.NewFromString(profit)
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
