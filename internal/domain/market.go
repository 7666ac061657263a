package domain

// Market maps one logical instrument to its identifiers on both venues.
type Market struct {
	// Pair logical instrument, its Symbol() is the key used across a scan.
	Pair Pair
	// CexSymbol ticker on the centralized exchange, e.g. SOLUSDC.
	CexSymbol string
	// DexMarket market identifier on the decentralized venue (coin name or on-chain market address).
	DexMarket string
}

// Symbol returns the logical symbol of the market.
func (m Market) Symbol() string {
	return m.Pair.Symbol()
}
