package writer

import (
	"github.com/rigelquant/smacross/internal/types"
)

// BarWriter defines the interface for writing downloaded daily bars to a
// destination.
type BarWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single daily bar for the given symbol.
	Write(symbol string, bar types.Bar) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}
