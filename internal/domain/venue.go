package domain

// Platform venue a quote source talks to.
type Platform string

const (
	// PlatformBinance Binance spot REST ticker.
	PlatformBinance Platform = "binance"
	// PlatformBybit Bybit v5 spot tickers.
	PlatformBybit Platform = "bybit"
	// PlatformHyperliquid Hyperliquid on-chain order book mids.
	PlatformHyperliquid Platform = "hyperliquid"
)

// String returns the string representation.
func (p Platform) String() string {
	return string(p)
}

// IsCex reports whether the platform can serve as the reference (centralized) venue.
func (p Platform) IsCex() bool {
	return p == PlatformBinance || p == PlatformBybit
}

// IsDex reports whether the platform can serve as the decentralized venue.
func (p Platform) IsDex() bool {
	return p == PlatformHyperliquid
}
