// Command arbscan compares a centralized exchange against Hyperliquid order book mids
// and reports fee-adjusted spread opportunities. It never places orders.
//
// Usage:
//
//	arbscan --config config.yaml
//	arbscan --setup
//	arbscan --cex binance --pair SOL_USDC (uses CLI arguments)
//
// Optional environment variables (only public market data is read):
//
//	BINANCE_API_KEY, BINANCE_API_SECRET
//	BYBIT_API_KEY, BYBIT_API_SECRET
//	HYPERLIQUID_PRIVATE_KEY, HYPERLIQUID_API_URL
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/config"
	"github.com/vadiminshakov/arbscan/internal"
	"github.com/vadiminshakov/arbscan/internal/setup"
)

func main() {
	conf, opts, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if opts.Setup {
		path, err := setup.RunTUI()
		if err != nil {
			log.Fatal(err)
		}
		if conf, err = config.Load(path); err != nil {
			log.Fatal(err)
		}
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cexClient, err := internal.NewClient(conf.CexPlatform)
	if err != nil {
		log.Fatal(err)
	}
	dexClient, err := internal.NewClient(conf.DexPlatform)
	if err != nil {
		log.Fatal(err)
	}

	reference, err := internal.NewQuoteSource(cexClient, conf.Markets, logger)
	if err != nil {
		log.Fatal(err)
	}
	compared, err := internal.NewQuoteSource(dexClient, conf.Markets, logger)
	if err != nil {
		log.Fatal(err)
	}

	scanner, err := internal.NewArbScanner(conf, reference, compared, logger)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := scanner.Run(ctx); err != nil {
		logger.Error("scanner exited with error", zap.Error(err))
	}
}
