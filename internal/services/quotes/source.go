// Package quotes adapts venue clients into normalized price quotes.
// A source never returns an error: venue failures are logged and yield an empty result.
package quotes

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

// Source produces normalized quotes for logical symbols.
type Source interface {
	Name() string
	Fetch(ctx context.Context, symbols []string) []domain.MarketPrice
}

// symbolMap translates logical symbols into venue identifiers and back.
type symbolMap map[string]string

func newSymbolMap(markets []domain.Market, venueID func(domain.Market) string) symbolMap {
	m := make(symbolMap, len(markets))
	for _, market := range markets {
		m[market.Symbol()] = venueID(market)
	}

	return m
}

// venue returns the venue identifier for symbol, falling back to the symbol itself.
func (m symbolMap) venue(symbol string) string {
	if id, ok := m[symbol]; ok && id != "" {
		return id
	}

	return symbol
}

// collect resolves every requested symbol against the venue's price index.
// Symbols without a parsable price are left out.
func collect(l *zap.Logger, symbols []string, ids symbolMap, index map[string]string, now time.Time) []domain.MarketPrice {
	out := make([]domain.MarketPrice, 0, len(symbols))
	for _, symbol := range symbols {
		venueID := ids.venue(symbol)
		raw, ok := index[venueID]
		if !ok || raw == "" {
			l.Warn("venue returned no price", zap.String("symbol", symbol), zap.String("venue_id", venueID))
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			l.Warn("venue returned malformed price", zap.String("symbol", symbol), zap.String("price", raw), zap.Error(err))
			continue
		}
		out = append(out, domain.NewMarketPrice(symbol, price, now))
	}

	return out
}
