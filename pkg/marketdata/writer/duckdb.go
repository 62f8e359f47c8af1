package writer

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rigelquant/smacross/internal/types"
)

// DuckDBWriter implements BarWriter on top of DuckDB. Bars are staged in an
// in-memory table inside one transaction and exported to a Parquet file on
// Finalize.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	outputPath string
}

// NewDuckDBWriter creates a new DuckDBWriter. outputPath is the Parquet file
// the bars are exported to.
func NewDuckDBWriter(outputPath string) BarWriter {
	return &DuckDBWriter{
		db:         nil,
		tx:         nil,
		stmt:       nil,
		outputPath: outputPath,
	}
}

// Initialize opens the staging database, creates the bars table, begins a
// transaction, and prepares the insert statement.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return fmt.Errorf("failed to open DuckDB connection: %w", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			time TIMESTAMP,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume BIGINT,
			adj_close DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to create bars table: %w", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	w.stmt, err = w.tx.Prepare(`
		INSERT INTO bars (time, symbol, open, high, low, close, volume, adj_close)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		w.tx.Rollback()
		w.db.Close()

		return fmt.Errorf("failed to prepare statement: %w", err)
	}

	return nil
}

// Write persists a single bar using the prepared statement within the transaction.
func (w *DuckDBWriter) Write(symbol string, bar types.Bar) error {
	if w.stmt == nil {
		return fmt.Errorf("writer not initialized or statement is nil")
	}

	var adjClose interface{}
	if bar.AdjClose.IsSome() {
		adjClose = bar.AdjClose.Unwrap()
	}

	_, err := w.stmt.Exec(
		bar.Date,
		symbol,
		bar.Open,
		bar.High,
		bar.Low,
		bar.Close,
		bar.Volume,
		adjClose,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bar: %w", err)
	}

	return nil
}

// Finalize commits the transaction and exports the bars to a Parquet file.
func (w *DuckDBWriter) Finalize() (outputPath string, err error) {
	if w.tx == nil {
		return "", fmt.Errorf("writer not initialized or transaction is nil")
	}

	if err = w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	w.tx = nil

	_, err = w.db.Exec(fmt.Sprintf(`COPY bars TO '%s' (FORMAT PARQUET)`, w.outputPath))
	if err != nil {
		return "", fmt.Errorf("failed to export to Parquet: %w", err)
	}

	return w.outputPath, nil
}

// Close cleans up the statement, any live transaction, and the database
// connection.
func (w *DuckDBWriter) Close() error {
	var closeErrors []error

	if w.stmt != nil {
		if err := w.stmt.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close statement: %w", err))
		}

		w.stmt = nil
	}

	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil {
			log.Printf("Warning: failed to rollback transaction during close: %v", err)
		}

		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			closeErrors = append(closeErrors, fmt.Errorf("failed to close db connection: %w", err))
		}

		w.db = nil
	}

	if len(closeErrors) > 0 {
		errMsg := "errors occurred during close:"
		for _, e := range closeErrors {
			errMsg += fmt.Sprintf("\n- %v", e)
		}

		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

// GetOutputPath returns the configured output file path.
func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}
