// Package marketdata downloads historical daily bars from remote providers
// and stores them in the format the backtest datasource reads.
package marketdata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rigelquant/smacross/pkg/marketdata/provider"
	"github.com/rigelquant/smacross/pkg/marketdata/writer"
)

// WriterType defines the type of market data writer.
type WriterType string

const (
	WriterDuckDB WriterType = "duckdb"
)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType  provider.ProviderType `validate:"required,oneof=polygon binance"`
	WriterType    WriterType            `validate:"required,oneof=duckdb"`
	DataPath      string                `validate:"required"`
	PolygonApiKey string                `validate:"required_if=ProviderType polygon"`
}

// DownloadParams holds the parameters for a bar download request.
type DownloadParams struct {
	Ticker    string    `validate:"required"`
	StartDate time.Time `validate:"required"`
	EndDate   time.Time `validate:"required,gtfield=StartDate"`
}

// Client downloads bars from a provider and stores them using a writer.
type Client struct {
	provider   provider.Provider
	config     ClientConfig
	validate   *validator.Validate
	onProgress provider.OnDownloadProgress
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, onProgress provider.OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid client configuration: %w", err)
	}

	var barProvider provider.Provider

	var err error

	switch config.ProviderType {
	case provider.ProviderPolygon:
		barProvider, err = provider.NewPolygonClient(config.PolygonApiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Polygon client: %w", err)
		}
	case provider.ProviderBinance:
		barProvider, err = provider.NewBinanceClient()
		if err != nil {
			return nil, fmt.Errorf("failed to create Binance client: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", config.ProviderType)
	}

	return &Client{
		provider:   barProvider,
		config:     config,
		validate:   validate,
		onProgress: onProgress,
	}, nil
}

// Download fetches daily bars per the given parameters and returns the path
// of the written data file. The context can cancel the download.
func (c *Client) Download(ctx context.Context, params DownloadParams) (string, error) {
	if err := c.validate.Struct(params); err != nil {
		return "", fmt.Errorf("invalid download parameters: %w", err)
	}

	barWriter, err := c.setupWriter(params)
	if err != nil {
		return "", err
	}

	c.provider.ConfigWriter(barWriter)

	path, err := c.provider.Download(ctx, params.Ticker, params.StartDate, params.EndDate, c.onProgress)
	if err != nil {
		return "", fmt.Errorf("download failed: %w", err)
	}

	return path, nil
}

func (c *Client) setupWriter(params DownloadParams) (writer.BarWriter, error) {
	if err := os.MkdirAll(c.config.DataPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	fileName := fmt.Sprintf("%s_%s_%s.parquet",
		params.Ticker,
		params.StartDate.Format("2006-01-02"),
		params.EndDate.Format("2006-01-02"),
	)
	outputPath := filepath.Join(c.config.DataPath, fileName)

	switch c.config.WriterType {
	case WriterDuckDB:
		return writer.NewDuckDBWriter(outputPath), nil
	default:
		return nil, fmt.Errorf("unsupported writer type: %s", c.config.WriterType)
	}
}
