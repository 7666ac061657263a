package quotes

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// BinanceSource reads last prices from the Binance spot ticker endpoint.
type BinanceSource struct {
	client *binance.Client
	ids    symbolMap
	l      *zap.Logger
	now    func() time.Time
}

// NewBinanceSource creates a Binance quote source for the given markets.
func NewBinanceSource(client *binance.Client, markets []domain.Market, l *zap.Logger) *BinanceSource {
	return &BinanceSource{
		client: client,
		ids:    newSymbolMap(markets, func(m domain.Market) string { return m.CexSymbol }),
		l:      l.With(zap.String("venue", domain.PlatformBinance.String())),
		now:    time.Now,
	}
}

// Name returns the venue name.
func (s *BinanceSource) Name() string {
	return domain.PlatformBinance.String()
}

// Fetch loads the full ticker list once and picks the requested symbols from it.
func (s *BinanceSource) Fetch(ctx context.Context, symbols []string) []domain.MarketPrice {
	prices, err := s.client.NewListPricesService().Do(ctx)
	if err != nil {
		s.l.Warn("failed to fetch binance prices", zap.Error(err))
		return nil
	}

	index := make(map[string]string, len(prices))
	for _, p := range prices {
		index[p.Symbol] = p.Price
	}

	return collect(s.l, symbols, s.ids, index, s.now())
}
