package quotes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adshao/go-binance/v2"
	"github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vadiminshakov/arbscan/internal/domain"
)

var testMarkets = []domain.Market{
	{Pair: domain.Pair{From: "SOL", To: "USDC"}, CexSymbol: "SOLUSDC", DexMarket: "SOL"},
	{Pair: domain.Pair{From: "ETH", To: "USDT"}, CexSymbol: "ETHUSDT", DexMarket: "ETH"},
}

type mockMids struct {
	mock.Mock
}

func (m *mockMids) AllMids(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	mids, _ := args.Get(0).(map[string]string)
	return mids, args.Error(1)
}

func newBinanceTestSource(t *testing.T, handler http.HandlerFunc) *BinanceSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := binance.NewClient("", "")
	client.BaseURL = srv.URL

	return NewBinanceSource(client, testMarkets, zap.NewNop())
}

func TestBinanceSource_Fetch(t *testing.T) {
	t.Run("returns requested symbols only", func(t *testing.T) {
		src := newBinanceTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/ticker/price", r.URL.Path)
			fmt.Fprint(w, `[{"symbol":"SOLUSDC","price":"145.12000000"},{"symbol":"BTCUSDT","price":"64000.00"},{"symbol":"ETHUSDT","price":"3100.5"}]`)
		})

		prices := src.Fetch(context.Background(), []string{"SOLUSDC"})
		require.Len(t, prices, 1)
		assert.Equal(t, "SOLUSDC", prices[0].Symbol)
		assert.True(t, prices[0].Price.Equal(decimal.RequireFromString("145.12")))
		assert.False(t, prices[0].Timestamp.IsZero())
	})

	t.Run("missing symbol is left out", func(t *testing.T) {
		src := newBinanceTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{"symbol":"SOLUSDC","price":"145.12"}]`)
		})

		prices := src.Fetch(context.Background(), []string{"SOLUSDC", "ETHUSDT"})
		require.Len(t, prices, 1)
		assert.Equal(t, "SOLUSDC", prices[0].Symbol)
	})

	t.Run("api failure yields empty result", func(t *testing.T) {
		src := newBinanceTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"code":-1000,"msg":"unknown error"}`)
		})

		assert.Empty(t, src.Fetch(context.Background(), []string{"SOLUSDC"}))
	})
}

func newBybitTestSource(t *testing.T, handler http.HandlerFunc) *BybitSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewBybitSource(bybit.NewClient().WithBaseURL(srv.URL), testMarkets, zap.NewNop())
}

func bybitTicker(symbol, lastPrice string) string {
	list := "[]"
	if symbol != "" {
		list = fmt.Sprintf(`[{"symbol":%q,"lastPrice":%q}]`, symbol, lastPrice)
	}
	return fmt.Sprintf(`{"retCode":0,"retMsg":"OK","result":{"category":"spot","list":%s},"retExtInfo":{},"time":1714560000000}`, list)
}

func TestBybitSource_Fetch(t *testing.T) {
	t.Run("queries each symbol", func(t *testing.T) {
		src := newBybitTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v5/market/tickers", r.URL.Path)
			assert.Equal(t, "spot", r.URL.Query().Get("category"))
			switch r.URL.Query().Get("symbol") {
			case "SOLUSDC":
				fmt.Fprint(w, bybitTicker("SOLUSDC", "145.1"))
			case "ETHUSDT":
				fmt.Fprint(w, bybitTicker("ETHUSDT", "3100.5"))
			}
		})

		prices := src.Fetch(context.Background(), []string{"SOLUSDC", "ETHUSDT"})
		require.Len(t, prices, 2)
		assert.Equal(t, "SOLUSDC", prices[0].Symbol)
		assert.True(t, prices[0].Price.Equal(decimal.RequireFromString("145.1")))
		assert.Equal(t, "ETHUSDT", prices[1].Symbol)
		assert.True(t, prices[1].Price.Equal(decimal.RequireFromString("3100.5")))
	})

	t.Run("failed symbol is left out", func(t *testing.T) {
		src := newBybitTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("symbol") == "ETHUSDT" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fmt.Fprint(w, bybitTicker("SOLUSDC", "145.1"))
		})

		prices := src.Fetch(context.Background(), []string{"SOLUSDC", "ETHUSDT"})
		require.Len(t, prices, 1)
		assert.Equal(t, "SOLUSDC", prices[0].Symbol)
	})

	t.Run("empty ticker list is left out", func(t *testing.T) {
		src := newBybitTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("symbol") == "ETHUSDT" {
				fmt.Fprint(w, bybitTicker("", ""))
				return
			}
			fmt.Fprint(w, bybitTicker("SOLUSDC", "145.1"))
		})

		prices := src.Fetch(context.Background(), []string{"SOLUSDC", "ETHUSDT"})
		require.Len(t, prices, 1)
		assert.Equal(t, "SOLUSDC", prices[0].Symbol)
	})

	t.Run("cancelled context yields nothing", func(t *testing.T) {
		src := newBybitTestSource(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected after cancellation")
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Empty(t, src.Fetch(ctx, []string{"SOLUSDC"}))
	})
}

func TestHyperliquidSource_Fetch(t *testing.T) {
	t.Run("maps dex markets back to logical symbols", func(t *testing.T) {
		mids := &mockMids{}
		mids.On("AllMids", mock.Anything).Return(map[string]string{"SOL": "145.3", "ETH": "3099.9", "BTC": "64010"}, nil).Once()

		src := NewHyperliquidSource(mids, testMarkets, zap.NewNop())
		prices := src.Fetch(context.Background(), []string{"SOLUSDC", "ETHUSDT"})

		require.Len(t, prices, 2)
		assert.Equal(t, "SOLUSDC", prices[0].Symbol)
		assert.True(t, prices[0].Price.Equal(decimal.RequireFromString("145.3")))
		assert.Equal(t, "ETHUSDT", prices[1].Symbol)
		mids.AssertExpectations(t)
	})

	t.Run("malformed mid is skipped", func(t *testing.T) {
		mids := &mockMids{}
		mids.On("AllMids", mock.Anything).Return(map[string]string{"SOL": "not-a-number", "ETH": "3099.9"}, nil)

		src := NewHyperliquidSource(mids, testMarkets, zap.NewNop())
		prices := src.Fetch(context.Background(), []string{"SOLUSDC", "ETHUSDT"})

		require.Len(t, prices, 1)
		assert.Equal(t, "ETHUSDT", prices[0].Symbol)
	})

	t.Run("network failure yields empty result", func(t *testing.T) {
		mids := &mockMids{}
		mids.On("AllMids", mock.Anything).Return(nil, errors.New("connection reset"))

		src := NewHyperliquidSource(mids, testMarkets, zap.NewNop())
		assert.Empty(t, src.Fetch(context.Background(), []string{"SOLUSDC"}))
	})

	t.Run("nil client yields empty result", func(t *testing.T) {
		src := NewHyperliquidSource(nil, testMarkets, zap.NewNop())
		assert.Empty(t, src.Fetch(context.Background(), []string{"SOLUSDC"}))
	})
}

func TestSymbolMap_Venue(t *testing.T) {
	ids := newSymbolMap(testMarkets, func(m domain.Market) string { return m.DexMarket })

	assert.Equal(t, "SOL", ids.venue("SOLUSDC"))
	assert.Equal(t, "UNKNOWN", ids.venue("UNKNOWN"))
}
