package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-monitor/internal/config"
	"github.com/rxtech-lab/argo-monitor/internal/logger"
	"github.com/rxtech-lab/argo-monitor/internal/marketdata"
	"github.com/rxtech-lab/argo-monitor/internal/monitor"
	"github.com/rxtech-lab/argo-monitor/internal/notification"
	"github.com/rxtech-lab/argo-monitor/internal/storage"
	"github.com/rxtech-lab/argo-monitor/internal/strategy"
	"github.com/rxtech-lab/argo-monitor/internal/types"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func runAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	appLogger, err := logger.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Sync()

	apiKey := os.Getenv("POLYGON_API_KEY")

	provider, err := marketdata.NewPolygonProvider(apiKey, cfg.MarketData.LookbackDays, cfg.MarketData.Indexes, appLogger)
	if err != nil {
		return err
	}

	store, err := storage.NewStore(cfg.Storage.Path, appLogger)
	if err != nil {
		return err
	}
	defer store.Close()

	var notifier notification.Notifier = notification.NewNopNotifier()
	if cfg.Notification.Enabled {
		notifier = notification.NewWebhookNotifier(cfg.Notification.WebhookURL, appLogger)
	}

	universe, err := fetchUniverse(ctx, provider, cfg.Monitor.Symbols, appLogger)
	if err != nil {
		return err
	}

	strat, err := strategy.New(cfg.Strategy, universe)
	if err != nil {
		return err
	}

	appLogger.Info("starting monitor",
		zap.String("strategy", strat.Name()),
		zap.Int("symbols", len(cfg.Monitor.Symbols)),
		zap.Duration("interval", cfg.Monitor.Interval),
	)

	return monitor.NewMonitor(cfg.Monitor, strat, provider, store, notifier, appLogger).Run(ctx)
}

// fetchUniverse snapshots reference data per symbol for cap-dependent
// screening thresholds. A symbol without reference data still gets monitored;
// the strategy falls back to the loose threshold.
func fetchUniverse(ctx context.Context, provider marketdata.Provider, symbols []string, appLogger *logger.Logger) (map[string]types.StockInfo, error) {
	universe := make(map[string]types.StockInfo, len(symbols))

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		info, err := provider.GetStockInfo(ctx, symbol)
		if err != nil {
			appLogger.Warn("no reference data for symbol", zap.String("symbol", symbol), zap.Error(err))
			continue
		}

		universe[symbol] = info
	}

	return universe, nil
}

func schemaAction(_ context.Context, _ *cli.Command) error {
	var cfg config.Config

	schema, err := json.MarshalIndent(cfg.GenerateSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	fmt.Println(string(schema))

	return nil
}

func main() {
	// Missing .env is fine; the environment may be set by the shell
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "argo-monitor",
		Usage: "Monitor daily equity bars and act on strategy signals",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the YAML configuration file",
				Required: true,
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the configuration file",
				Action: schemaAction,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
