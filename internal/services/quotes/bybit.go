package quotes

import (
	"context"
	"time"

	"github.com/hirokisan/bybit/v2"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// BybitSource reads last prices from Bybit v5 spot tickers.
type BybitSource struct {
	client *bybit.Client
	ids    symbolMap
	l      *zap.Logger
	now    func() time.Time
}

// NewBybitSource creates a Bybit quote source for the given markets.
func NewBybitSource(client *bybit.Client, markets []domain.Market, l *zap.Logger) *BybitSource {
	return &BybitSource{
		client: client,
		ids:    newSymbolMap(markets, func(m domain.Market) string { return m.CexSymbol }),
		l:      l.With(zap.String("venue", domain.PlatformBybit.String())),
		now:    time.Now,
	}
}

// Name returns the venue name.
func (s *BybitSource) Name() string {
	return domain.PlatformBybit.String()
}

// Fetch queries the ticker of every requested symbol. A failed symbol is left out of the result.
func (s *BybitSource) Fetch(ctx context.Context, symbols []string) []domain.MarketPrice {
	index := make(map[string]string, len(symbols))
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			s.l.Warn("bybit fetch cancelled", zap.Error(ctx.Err()))
			return nil
		}

		venueSymbol := bybit.SymbolV5(s.ids.venue(symbol))
		result, err := s.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
			Category: "spot",
			Symbol:   &venueSymbol,
		})
		if err != nil {
			s.l.Warn("failed to fetch bybit ticker", zap.String("symbol", symbol), zap.Error(err))
			continue
		}
		if len(result.Result.Spot.List) == 0 {
			continue
		}
		index[string(venueSymbol)] = result.Result.Spot.List[0].LastPrice
	}

	return collect(s.l, symbols, s.ids, index, s.now())
}
