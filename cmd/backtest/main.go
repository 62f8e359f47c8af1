package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/moznion/go-optional"
	"github.com/rigelquant/smacross/internal/datasource"
	"github.com/rigelquant/smacross/internal/engine"
	"github.com/rigelquant/smacross/internal/logger"
	"github.com/rigelquant/smacross/internal/resultstore"
	"github.com/rigelquant/smacross/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// backtestAction loads the simulation config, runs one simulation per symbol,
// persists each run, and writes a YAML outcome report.
func backtestAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	resultsDir := cmd.String("results")
	symbols := cmd.StringSlice("symbol")

	configBytes, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	var cfg engine.Config
	if err := yaml.Unmarshal(configBytes, &cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if len(symbols) == 0 {
		symbols = []string{cfg.Symbol}
	}

	zapLogger, err := logger.NewDevelopmentLogger()
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer zapLogger.Sync()

	if err := os.MkdirAll(resultsDir, 0755); err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	store, err := resultstore.NewStore(filepath.Join(resultsDir, "results.db"), zapLogger.Named("store"))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		return err
	}

	sim := engine.NewSimulationEngine(zapLogger.Named("engine"))

	var outcomes []types.Outcome

	for _, symbol := range symbols {
		runCfg := cfg
		runCfg.Symbol = symbol

		outcome, err := runSymbol(zapLogger, sim, store, runCfg, dataPath)
		if err != nil {
			zapLogger.Error("Simulation failed",
				zap.String("symbol", symbol),
				zap.Error(err),
			)

			return err
		}

		outcomes = append(outcomes, outcome)
	}

	reportPath := filepath.Join(resultsDir, "outcomes.yaml")
	if err := types.WriteOutcomes(reportPath, outcomes); err != nil {
		return err
	}

	zapLogger.Info("Backtest complete",
		zap.Int("symbols", len(outcomes)),
		zap.String("report", reportPath),
	)

	return nil
}

func runSymbol(zapLogger *logger.Logger, sim *engine.SimulationEngine, store *resultstore.Store, cfg engine.Config, dataPath string) (types.Outcome, error) {
	source, err := datasource.NewDuckDBBarSource(cfg.Symbol, zapLogger.Named("datasource"))
	if err != nil {
		return types.Outcome{}, err
	}
	defer source.Close()

	if err := source.Initialize(dataPath); err != nil {
		return types.Outcome{}, err
	}

	count, err := source.Count(cfg.StartTime, cfg.EndTime)
	if err != nil {
		return types.Outcome{}, err
	}

	bar := progressbar.NewOptions(count,
		progressbar.OptionSetDescription(fmt.Sprintf("Simulating %s", cfg.Symbol)),
		progressbar.OptionShowCount(),
	)

	onProgress := engine.ProgressCallback(func(current int, total int) {
		_ = bar.Set(current)
	})

	result, err := sim.Run(cfg, source, optional.Some(onProgress))
	if err != nil {
		return types.Outcome{}, err
	}

	runID, err := store.SaveRun(cfg, result)
	if err != nil {
		return types.Outcome{}, err
	}

	zapLogger.Info("Run saved",
		zap.String("symbol", cfg.Symbol),
		zap.String("run_id", runID),
		zap.String("total_profit", result.Outcome.TotalProfit.String()),
		zap.String("total_return_pct", result.Outcome.TotalReturnPct.String()),
	)

	return result.Outcome, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Run the SMA crossover simulation against stored daily bars",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the simulation config YAML",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Path to the bars data file (Parquet or DuckDB)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"r"},
				Usage:   "Directory the results database and outcome report are written to",
				Value:   "results",
			},
			&cli.StringSliceFlag{
				Name:    "symbol",
				Aliases: []string{"s"},
				Usage:   "Symbol(s) to simulate; overrides the config symbol, may be repeated",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
