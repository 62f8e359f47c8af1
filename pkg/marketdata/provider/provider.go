// Package provider implements the bar-fetch collaborators: remote market
// data clients that download historical daily bars and hand them to a writer.
package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/rigelquant/smacross/pkg/marketdata/writer"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// OnDownloadProgress reports download progress to the caller.
type OnDownloadProgress = func(current float64, total float64, message string)

// Provider downloads historical daily bars for a ticker and date range.
type Provider interface {
	// ConfigWriter configures the writer the downloaded bars are handed to.
	ConfigWriter(writer writer.BarWriter)
	// Download fetches daily bars for the ticker in [startDate, endDate] and
	// writes them through the configured writer. The context cancels the
	// download. It returns the path the writer finalized to.
	Download(ctx context.Context, ticker string, startDate time.Time, endDate time.Time, onProgress OnDownloadProgress) (path string, err error)
}

// NewProvider creates a market data provider of the given type. The Polygon
// provider takes its API key as config.
func NewProvider(providerType ProviderType, config any) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient()
	case ProviderPolygon:
		apiKey, ok := config.(string)
		if !ok {
			return nil, fmt.Errorf("polygon provider requires API key string config")
		}

		return NewPolygonClient(apiKey)
	default:
		return nil, fmt.Errorf("unsupported market data provider: %s", providerType)
	}
}
