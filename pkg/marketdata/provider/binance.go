package provider

import (
	"context"
	"fmt"
	"strconv"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/moznion/go-optional"

	"github.com/rigelquant/smacross/internal/types"
	"github.com/rigelquant/smacross/pkg/marketdata/writer"
)

type BinanceClient struct {
	client *binance.Client
	writer writer.BarWriter
}

func NewBinanceClient() (Provider, error) {
	client := binance.NewClient("", "")

	return &BinanceClient{
		client: client,
		writer: nil,
	}, nil
}

func (c *BinanceClient) ConfigWriter(w writer.BarWriter) {
	c.writer = w
}

// Download fetches daily klines for the ticker and writes them through the
// configured writer. Binance limits each request to 500 klines, so the
// download paginates on the last seen open time.
func (c *BinanceClient) Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error) {
	if c.writer == nil {
		return "", fmt.Errorf("writer is not configured")
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

	startTimeMillis := startDate.UnixMilli()
	endTimeMillis := endDate.UnixMilli()
	totalDays := endDate.Sub(startDate).Hours()/24 + 1

	currentStartTime := startTimeMillis
	processedCount := 0

	for {
		klines, err := c.client.NewKlinesService().
			Symbol(ticker).
			Interval("1d").
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Do(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to fetch klines from Binance: %w", err)
		}

		if len(klines) == 0 {
			break
		}

		for _, kline := range klines {
			bar, err := klineToBar(kline)
			if err != nil {
				return "", fmt.Errorf("failed to parse kline: %w", err)
			}

			if err := c.writer.Write(ticker, bar); err != nil {
				return "", fmt.Errorf("failed to write bar: %w", err)
			}

			processedCount++
		}

		if onProgress != nil {
			onProgress(float64(processedCount), totalDays, fmt.Sprintf("Downloading %s", ticker))
		}

		lastOpenTime := klines[len(klines)-1].OpenTime
		if lastOpenTime >= endTimeMillis || len(klines) < 500 {
			break
		}

		// Next page starts one kline past the last one seen.
		currentStartTime = lastOpenTime + 1
	}

	outputPath, err := c.writer.Finalize()
	if err != nil {
		return "", fmt.Errorf("failed to finalize writer: %w", err)
	}

	return outputPath, nil
}

func klineToBar(kline *binance.Kline) (types.Bar, error) {
	open, err := strconv.ParseFloat(kline.Open, 64)
	if err != nil {
		return types.Bar{}, fmt.Errorf("invalid open price %q: %w", kline.Open, err)
	}

	high, err := strconv.ParseFloat(kline.High, 64)
	if err != nil {
		return types.Bar{}, fmt.Errorf("invalid high price %q: %w", kline.High, err)
	}

	low, err := strconv.ParseFloat(kline.Low, 64)
	if err != nil {
		return types.Bar{}, fmt.Errorf("invalid low price %q: %w", kline.Low, err)
	}

	closePx, err := strconv.ParseFloat(kline.Close, 64)
	if err != nil {
		return types.Bar{}, fmt.Errorf("invalid close price %q: %w", kline.Close, err)
	}

	volume, err := strconv.ParseFloat(kline.Volume, 64)
	if err != nil {
		return types.Bar{}, fmt.Errorf("invalid volume %q: %w", kline.Volume, err)
	}

	return types.Bar{
		Date:     time.UnixMilli(kline.OpenTime).UTC(),
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePx,
		Volume:   int64(volume),
		AdjClose: optional.None[float64](),
	}, nil
}
