package quotes

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

type midsProvider interface {
	AllMids(ctx context.Context) (map[string]string, error)
}

// HyperliquidSource reads mid prices of the on-chain order books.
type HyperliquidSource struct {
	info midsProvider
	ids  symbolMap
	l    *zap.Logger
	now  func() time.Time
}

// NewHyperliquidSource creates a DEX quote source. Markets are addressed by DexMarket (e.g. SOL or @107).
func NewHyperliquidSource(info midsProvider, markets []domain.Market, l *zap.Logger) *HyperliquidSource {
	return &HyperliquidSource{
		info: info,
		ids:  newSymbolMap(markets, func(m domain.Market) string { return m.DexMarket }),
		l:    l.With(zap.String("venue", domain.PlatformHyperliquid.String())),
		now:  time.Now,
	}
}

// Name returns the venue name.
func (s *HyperliquidSource) Name() string {
	return domain.PlatformHyperliquid.String()
}

// Fetch returns the mid price ((best bid + best ask) / 2) of every requested market.
func (s *HyperliquidSource) Fetch(ctx context.Context, symbols []string) []domain.MarketPrice {
	if s.info == nil {
		s.l.Warn("hyperliquid info client is nil")
		return nil
	}

	mids, err := s.info.AllMids(ctx)
	if err != nil {
		s.l.Warn("failed to fetch hyperliquid mids", zap.Error(err))
		return nil
	}

	return collect(s.l, symbols, s.ids, mids, s.now())
}
