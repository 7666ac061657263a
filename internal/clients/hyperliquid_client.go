package clients

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	hyperliquid "github.com/sonirico/go-hyperliquid"
)

// HyperliquidMainnetURL public Hyperliquid API endpoint.
const HyperliquidMainnetURL = "https://api.hyperliquid.xyz"

// HyperliquidClient read-only access to Hyperliquid market data.
type HyperliquidClient struct {
	exchange *hyperliquid.Exchange
}

// NewHyperliquidClient builds a client. Market data needs no signing, so when
// privateKeyHex is empty an ephemeral key is generated for the SDK.
func NewHyperliquidClient(privateKeyHex string, baseURL string) (*HyperliquidClient, error) {
	if baseURL == "" {
		baseURL = HyperliquidMainnetURL
	}

	privateKey, err := loadOrGenerateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}

	pub := privateKey.Public()
	pubECDSA, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("error casting public key to ECDSA")
	}
	accountAddr := crypto.PubkeyToAddress(*pubECDSA).Hex()

	// Info and SpotMeta are fetched lazily by the SDK
	ex := hyperliquid.NewExchange(
		context.Background(),
		privateKey,
		baseURL,
		nil,
		"",
		accountAddr,
		nil,
	)

	return &HyperliquidClient{exchange: ex}, nil
}

func loadOrGenerateKey(privateKeyHex string) (*ecdsa.PrivateKey, error) {
	if privateKeyHex == "" {
		return crypto.GenerateKey()
	}

	key := privateKeyHex
	if len(key) >= 2 && (key[:2] == "0x" || key[:2] == "0X") {
		key = key[2:]
	}

	return crypto.HexToECDSA(key)
}

func (c *HyperliquidClient) Info() *hyperliquid.Info { return c.exchange.Info() }
