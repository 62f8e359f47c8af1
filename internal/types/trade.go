package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents the single open holding of a simulation run. At most one
// position exists at a time; it is created on entry and consumed into a Trade
// on exit.
type Position struct {
	Quantity   int64           `yaml:"quantity"`
	EntryPrice decimal.Decimal `yaml:"entry_price"`
	EntryDate  time.Time       `yaml:"entry_date"`
}

// Trade is one completed entry-to-exit cycle. Records are append-only; a trade
// is never mutated after creation.
type Trade struct {
	Symbol     string          `yaml:"symbol" csv:"symbol"`
	EntryDate  time.Time       `yaml:"entry_date" csv:"entry_date"`
	EntryPrice decimal.Decimal `yaml:"entry_price" csv:"entry_price"`
	Quantity   int64           `yaml:"quantity" csv:"quantity"`
	ExitDate   time.Time       `yaml:"exit_date" csv:"exit_date"`
	ExitPrice  decimal.Decimal `yaml:"exit_price" csv:"exit_price"`
}

// Profit returns (exit - entry) * quantity.
func (t Trade) Profit() decimal.Decimal {
	return t.ExitPrice.Sub(t.EntryPrice).Mul(decimal.NewFromInt(t.Quantity))
}
