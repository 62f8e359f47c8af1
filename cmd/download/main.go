package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rigelquant/smacross/pkg/marketdata"
	"github.com/rigelquant/smacross/pkg/marketdata/provider"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
)

// downloadAction parses arguments, sets up the market data client, and starts
// the download.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	ticker := cmd.String("ticker")
	startDate := cmd.Timestamp("start")
	endDate := cmd.Timestamp("end")
	providerFlag := cmd.String("provider")
	dataPath := cmd.String("data")

	clientConfig := marketdata.ClientConfig{
		ProviderType:  provider.ProviderType(providerFlag),
		WriterType:    marketdata.WriterDuckDB,
		DataPath:      dataPath,
		PolygonApiKey: os.Getenv("POLYGON_API_KEY"),
	}

	totalDays := int(endDate.Sub(startDate).Hours()/24) + 1
	bar := progressbar.NewOptions(totalDays,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", ticker)),
		progressbar.OptionShowCount(),
	)

	onProgress := func(current float64, total float64, message string) {
		_ = bar.Set(int(current))
	}

	client, err := marketdata.NewClient(clientConfig, onProgress)
	if err != nil {
		return fmt.Errorf("failed to create market data client: %w", err)
	}

	downloadParams := marketdata.DownloadParams{
		Ticker:    ticker,
		StartDate: startDate,
		EndDate:   endDate,
	}

	log.Printf("Starting download for %s from %s to %s using %s provider...",
		ticker, startDate.Format("2006-01-02"), endDate.Format("2006-01-02"), providerFlag)

	path, err := client.Download(ctx, downloadParams)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}

	log.Printf("Download completed successfully: %s", path)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "download",
		Usage: "Download historical daily bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "ticker",
				Aliases:  []string{"t"},
				Usage:    "Instrument symbol",
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "start",
				Aliases: []string{"s"},
				Usage:   "Start date in `YYYY-MM-DD` format",
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
				Required: true,
			},
			&cli.TimestampFlag{
				Name:    "end",
				Aliases: []string{"e"},
				Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
				Value:   time.Now(),
				Config: cli.TimestampConfig{
					Layouts: []string{"2006-01-02"},
				},
			},
			&cli.StringFlag{
				Name:    "provider",
				Aliases: []string{"p"},
				Usage:   fmt.Sprintf("Data provider to use (%s, %s)", provider.ProviderPolygon, provider.ProviderBinance),
				Value:   string(provider.ProviderPolygon),
			},
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to the data output directory",
				Value:   "data",
			},
		},
		Action: downloadAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
