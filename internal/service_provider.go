package internal

import (
	"fmt"
	"os"

	binance "github.com/adshao/go-binance/v2"
	bybit "github.com/hirokisan/bybit/v2"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/clients"
	"github.com/vadiminshakov/arbscan/internal/domain"
	"github.com/vadiminshakov/arbscan/internal/services/quotes"
)

// NewClient creates the venue client for platform. Credentials are optional: only public
// market data endpoints are used.
func NewClient(platform domain.Platform) (any, error) {
	switch platform {
	case domain.PlatformBinance:
		return clients.NewBinanceClient(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET")), nil
	case domain.PlatformBybit:
		return clients.NewBybitClient(os.Getenv("BYBIT_API_KEY"), os.Getenv("BYBIT_API_SECRET")), nil
	case domain.PlatformHyperliquid:
		return clients.NewHyperliquidClient(os.Getenv("HYPERLIQUID_PRIVATE_KEY"), os.Getenv("HYPERLIQUID_API_URL"))
	default:
		return nil, fmt.Errorf("unsupported platform: %s", platform)
	}
}

// NewQuoteSource creates the quote source matching the client type.
// This is the single point of truth for dispatching to venue-specific implementations.
func NewQuoteSource(client any, markets []domain.Market, logger *zap.Logger) (quotes.Source, error) {
	switch c := client.(type) {
	case *binance.Client:
		return quotes.NewBinanceSource(c, markets, logger), nil
	case *bybit.Client:
		return quotes.NewBybitSource(c, markets, logger), nil
	case *clients.HyperliquidClient:
		return quotes.NewHyperliquidSource(c.Info(), markets, logger), nil
	default:
		return nil, fmt.Errorf("unsupported client type: %T", client)
	}
}
