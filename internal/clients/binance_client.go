// Package clients constructs the venue SDK clients used by the quote sources.
package clients

import (
	"github.com/adshao/go-binance/v2"
)

// NewBinanceClient creates a Binance client. The ticker endpoint is public,
// so empty credentials are accepted.
func NewBinanceClient(apiKey, apiSecret string) *binance.Client {
	client := binance.NewClient(apiKey, apiSecret)
	return client
}
