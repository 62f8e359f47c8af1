package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rigelquant/smacross/internal/logger"
	"github.com/rigelquant/smacross/internal/types"
	"github.com/rigelquant/smacross/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBBarSource reads one instrument's daily bars from a bars file written
// by the download tooling. The file may be a Parquet file or a DuckDB
// database containing a bars table.
type DuckDBBarSource struct {
	db     *sql.DB
	symbol string
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBBarSource opens an in-memory DuckDB instance scoped to the given
// symbol. Call Initialize to point it at a bars file.
func NewDuckDBBarSource(symbol string, logger *logger.Logger) (*DuckDBBarSource, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataUnavailable, "failed to open DuckDB", err)
	}

	return &DuckDBBarSource{
		db:     db,
		symbol: symbol,
		logger: logger,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// Initialize creates the bars view over the given data file. Parquet files
// are read directly; anything else is attached as a DuckDB database with a
// bars table.
func (d *DuckDBBarSource) Initialize(path string) error {
	d.logger.Debug("Initializing DuckDB bar source",
		zap.String("path", path),
		zap.String("symbol", d.symbol),
	)

	if _, err := d.db.Exec(`DROP VIEW IF EXISTS bars;`); err != nil {
		return errors.Wrap(errors.ErrCodeDataUnavailable, "failed to drop existing bars view", err)
	}

	var query string

	// CREATE VIEW does not take bound parameters; the path is interpolated.
	switch filepath.Ext(path) {
	case ".parquet":
		query = fmt.Sprintf(`CREATE VIEW bars AS SELECT * FROM read_parquet('%s');`, path)
	default:
		if _, err := d.db.Exec(fmt.Sprintf(`ATTACH '%s' AS bardb (READ_ONLY);`, path)); err != nil {
			return errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to attach bars database %s", path)
		}

		query = `CREATE VIEW bars AS SELECT * FROM bardb.bars;`
	}

	if _, err := d.db.Exec(query); err != nil {
		return errors.Wrapf(errors.ErrCodeDataUnavailable, err, "failed to create bars view over %s", path)
	}

	return nil
}

// Count implements BarSource.
func (d *DuckDBBarSource) Count(start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	query := d.sq.
		Select("COUNT(*)").
		From("bars").
		Where(squirrel.Eq{"symbol": d.symbol})

	if start.IsSome() {
		query = query.Where(squirrel.GtOrEq{"time": start.Unwrap()})
	}

	if end.IsSome() {
		query = query.Where(squirrel.LtOrEq{"time": end.Unwrap()})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build count query", err)
	}

	var count int
	if err := d.db.QueryRow(sqlStr, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count bars", err)
	}

	return count, nil
}

// ReadAll implements BarSource. Bars are yielded in ascending date order,
// deduplicated on date (the earliest written row wins).
func (d *DuckDBBarSource) ReadAll(start optional.Option[time.Time], end optional.Option[time.Time]) func(yield func(types.Bar, error) bool) {
	return func(yield func(types.Bar, error) bool) {
		query := `
			SELECT time, open, high, low, close, volume, adj_close
			FROM bars
			WHERE symbol = $1
		`

		params := []interface{}{d.symbol}
		conditions := []string{}

		if start.IsSome() {
			params = append(params, start.Unwrap())
			conditions = append(conditions, fmt.Sprintf("time >= $%d", len(params)))
		}

		if end.IsSome() {
			params = append(params, end.Unwrap())
			conditions = append(conditions, fmt.Sprintf("time <= $%d", len(params)))
		}

		if len(conditions) > 0 {
			query += " AND " + strings.Join(conditions, " AND ")
		}

		query += " ORDER BY time ASC"

		rows, err := d.db.Query(query, params...)
		if err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read bars", err))

			return
		}
		defer rows.Close()

		var lastDate time.Time

		for rows.Next() {
			var (
				timestamp       time.Time
				open, high, low float64
				closePx         float64
				volume          int64
				adjClose        sql.NullFloat64
			)

			if err := rows.Scan(&timestamp, &open, &high, &low, &closePx, &volume, &adjClose); err != nil {
				yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar row", err))

				return
			}

			// Duplicate dates collapse to the first row seen.
			if !lastDate.IsZero() && !timestamp.After(lastDate) {
				continue
			}

			lastDate = timestamp

			bar := types.Bar{
				Date:   timestamp,
				Open:   open,
				High:   high,
				Low:    low,
				Close:  closePx,
				Volume: volume,
			}

			if adjClose.Valid {
				bar.AdjClose = optional.Some(adjClose.Float64)
			} else {
				bar.AdjClose = optional.None[float64]()
			}

			if !yield(bar, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.Bar{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed while iterating bars", err))
		}
	}
}

// Close implements BarSource.
func (d *DuckDBBarSource) Close() error {
	return d.db.Close()
}
