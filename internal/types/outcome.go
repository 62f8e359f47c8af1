package types

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Outcome is the terminal summary of one simulation run. It is computed once
// after the loop finishes and never mutated. All monetary and percentage
// fields carry 2 fractional digits. Outcome is a pure function of the config
// and the bar series: identical inputs yield identical outcomes; run identity
// (ID, execution time) belongs to the persistence layer.
type Outcome struct {
	// Symbol of the instrument tested.
	Symbol string `yaml:"symbol"`
	// StartDate and EndDate bound the tested bar series.
	StartDate time.Time `yaml:"start_date"`
	EndDate   time.Time `yaml:"end_date"`
	// StartingAmount is the initial cash.
	StartingAmount decimal.Decimal `yaml:"starting_amount"`
	// ClosingAmount is the final cash after forced liquidation.
	ClosingAmount decimal.Decimal `yaml:"closing_amount"`
	// TotalProfit is ClosingAmount - StartingAmount.
	TotalProfit decimal.Decimal `yaml:"total_profit"`
	// TotalReturnPct is TotalProfit / StartingAmount * 100.
	TotalReturnPct decimal.Decimal `yaml:"total_return_pct"`
	// NumberOfTrades counts completed entry-to-exit cycles.
	NumberOfTrades int `yaml:"number_of_trades"`
	// PeakValue is the highest portfolio value reached during the run.
	PeakValue decimal.Decimal `yaml:"peak_value"`
	// TroughValue is the lowest portfolio value recorded across all snapshots.
	TroughValue decimal.Decimal `yaml:"trough_value"`
	// MaxDrawdownPct is the largest drawdown recorded across all snapshots.
	MaxDrawdownPct decimal.Decimal `yaml:"max_drawdown_pct"`
}

// WriteOutcomes writes outcome summaries to a YAML report file.
func WriteOutcomes(path string, outcomes []Outcome) error {
	data, err := yaml.Marshal(outcomes)
	if err != nil {
		return fmt.Errorf("failed to marshal outcomes to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write outcomes to file: %w", err)
	}

	return nil
}
