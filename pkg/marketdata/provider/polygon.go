package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/rigelquant/smacross/internal/types"
	"github.com/rigelquant/smacross/pkg/marketdata/writer"
)

type PolygonClient struct {
	client *polygon.Client
	writer writer.BarWriter
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("apiKey is required")
	}

	client := polygon.New(apiKey)

	return &PolygonClient{
		client: client,
		writer: nil,
	}, nil
}

func (c *PolygonClient) ConfigWriter(w writer.BarWriter) {
	c.writer = w
}

// Download fetches daily aggregates for the ticker and writes them through
// the configured writer.
func (c *PolygonClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", fmt.Errorf("no writer configured for PolygonClient. Call ConfigWriter first")
	}

	err = c.writer.Initialize()
	if err != nil {
		return "", fmt.Errorf("failed to initialize writer: %w", err)
	}

	defer func() {
		if cerr := c.writer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing writer: %w", cerr)
		}
	}()

	totalDays := endDate.Sub(startDate).Hours()/24 + 1

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(startDate),
		To:         models.Millis(endDate),
	}.WithLimit(50000).WithAdjusted(false)

	iter := c.client.ListAggs(ctx, params)

	processedCount := 0

	for iter.Next() {
		if onProgress != nil {
			onProgress(float64(processedCount), totalDays, fmt.Sprintf("Downloading %s", ticker))
		}

		agg := iter.Item()
		bar := types.Bar{
			Date:     time.Time(agg.Timestamp),
			Open:     agg.Open,
			High:     agg.High,
			Low:      agg.Low,
			Close:    agg.Close,
			Volume:   int64(agg.Volume),
			AdjClose: optional.None[float64](),
		}

		if err := c.writer.Write(ticker, bar); err != nil {
			return "", fmt.Errorf("failed to write bar: %w", err)
		}

		processedCount++
	}

	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("failed to download aggregates: %w", err)
	}

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}
