package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient points a client at a fake Alpha Vantage server answering by function name
func newTestClient(t *testing.T, responses map[string]string) (*Client, *int32) {
	t.Helper()
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))

		body, ok := responses[r.URL.Query().Get("function")]
		if !ok {
			http.Error(w, "unknown function", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := NewClient("test-key", time.Hour, zerolog.Nop())
	client.BaseURL = srv.URL
	return client, &calls
}

func TestQuote_GlobalQuote(t *testing.T) {
	client, calls := newTestClient(t, map[string]string{
		"GLOBAL_QUOTE": `{
			"Global Quote": {
				"01. symbol": "IBM",
				"05. price": "186.2000",
				"07. latest trading day": "2024-01-15"
			}
		}`,
	})

	quote, err := client.Quote(context.Background(), " ibm ")

	require.NoError(t, err)
	assert.Equal(t, "IBM", quote.Symbol)
	assert.True(t, decimal.RequireFromString("186.2").Equal(quote.Price))
	assert.Equal(t, "USD", quote.Currency)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), quote.LastUpdated)

	// Second call is served from cache
	_, err = client.Quote(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestClearCache_RefetchesQuote(t *testing.T) {
	client, calls := newTestClient(t, map[string]string{
		"GLOBAL_QUOTE": `{"Global Quote": {"01. symbol": "IBM", "05. price": "186.20", "07. latest trading day": "2024-01-15"}}`,
	})
	ctx := context.Background()

	_, err := client.Quote(ctx, "IBM")
	require.NoError(t, err)
	_, err = client.Quote(ctx, "IBM")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))

	client.ClearCache()

	_, err = client.Quote(ctx, "IBM")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(calls))
}

func TestQuote_Crypto(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"CURRENCY_EXCHANGE_RATE": `{
			"Realtime Currency Exchange Rate": {
				"1. From_Currency Code": "ETH",
				"3. To_Currency Code": "EUR",
				"5. Exchange Rate": "3120.55000000",
				"6. Last Refreshed": "2024-05-01 12:30:00"
			}
		}`,
	})

	quote, err := client.Quote(context.Background(), "ETH-EUR")

	require.NoError(t, err)
	assert.Equal(t, "EUR", quote.Currency)
	assert.True(t, decimal.RequireFromString("3120.55").Equal(quote.Price))
	assert.Equal(t, time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC), quote.LastUpdated)
}

func TestQuote_Errors(t *testing.T) {
	t.Run("Unknown symbol", func(t *testing.T) {
		client, _ := newTestClient(t, map[string]string{"GLOBAL_QUOTE": `{"Global Quote": {}}`})

		_, err := client.Quote(context.Background(), "NOPE")

		assert.Equal(t, ErrSymbolNotFound{Symbol: "NOPE"}, err)
	})

	t.Run("Rate limited", func(t *testing.T) {
		client, _ := newTestClient(t, map[string]string{"GLOBAL_QUOTE": `{"Note": "Thank you for using Alpha Vantage! Our standard API call frequency is 5 calls per minute"}`})

		_, err := client.Quote(context.Background(), "IBM")

		assert.IsType(t, ErrRateLimitExceeded{}, err)
	})

	t.Run("Missing API key", func(t *testing.T) {
		client := NewClient("", 0, zerolog.Nop())

		_, err := client.Quote(context.Background(), "IBM")

		assert.IsType(t, ErrInvalidAPIKey{}, err)
	})

	t.Run("Empty symbol", func(t *testing.T) {
		client := NewClient("test-key", 0, zerolog.Nop())

		_, err := client.Quote(context.Background(), "  ")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestDividendHistory(t *testing.T) {
	client, calls := newTestClient(t, map[string]string{
		"DIVIDENDS": "ex_dividend_date,declaration_date,record_date,payment_date,amount\r\n" +
			"2024-11-14,2024-10-30,2024-11-14,2024-12-02,0.83\r\n" +
			"2024-08-15,2024-07-31,2024-08-15,None,0.75\r\n" +
			"None,2024-04-30,2024-05-16,2024-06-03,0.75\r\n" +
			"2024-02-14,2024-01-31,2024-02-15,2024-03-01,None\r\n",
	})

	dividends, err := client.DividendHistory(context.Background(), "MSFT")

	require.NoError(t, err)
	require.Len(t, dividends, 2)

	assert.Equal(t, time.Date(2024, 11, 14, 0, 0, 0, 0, time.UTC), dividends[0].ExDate)
	require.NotNil(t, dividends[0].PaymentDate)
	assert.Equal(t, time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC), *dividends[0].PaymentDate)
	assert.True(t, decimal.RequireFromString("0.83").Equal(dividends[0].Amount))
	assert.Equal(t, domain.DividendTypeCash, dividends[0].Type)

	assert.Nil(t, dividends[1].PaymentDate)

	// Mutating the result does not leak into the cache
	dividends[0].Amount = decimal.Zero
	again, err := client.DividendHistory(context.Background(), "MSFT")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.83").Equal(again[0].Amount))
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestDividendHistory_Empty(t *testing.T) {
	client, _ := newTestClient(t, map[string]string{
		"DIVIDENDS": "ex_dividend_date,declaration_date,record_date,payment_date,amount\r\n",
	})

	dividends, err := client.DividendHistory(context.Background(), "BRK.B")

	require.NoError(t, err)
	assert.Empty(t, dividends)
}

func TestCryptoPair(t *testing.T) {
	tests := []struct {
		symbol   string
		from, to string
		ok       bool
	}{
		{"BTC", "BTC", "USD", true},
		{"ETH-EUR", "ETH", "EUR", true},
		{"SOL/USD", "SOL", "USD", true},
		{"AAPL", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			from, to, ok := cryptoPair(tt.symbol)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.from, from)
			assert.Equal(t, tt.to, to)
		})
	}
}

func TestAPIErrorDetection(t *testing.T) {
	client := NewClient("test-key", 0, zerolog.Nop())

	tests := []struct {
		name        string
		body        string
		expectError bool
	}{
		{"Rate limit note", `{"Note": "API call frequency is limited"}`, true},
		{"Daily quota information", `{"Information": "Our standard API rate limit is 25 requests per day."}`, true},
		{"Error message", `{"Error Message": "Invalid API call"}`, true},
		{"Valid json", `{"Global Quote": {}}`, false},
		{"Csv body", "ex_dividend_date,amount\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.checkAPIError([]byte(tt.body))
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildCacheKey(t *testing.T) {
	a := buildCacheKey("GLOBAL_QUOTE", map[string]string{"symbol": "IBM", "apikey": "secret"})
	b := buildCacheKey("GLOBAL_QUOTE", map[string]string{"apikey": "other", "symbol": "IBM"})

	assert.Equal(t, a, b)
	assert.NotContains(t, a, "secret")
}
