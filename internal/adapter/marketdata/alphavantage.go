// Package marketdata implements domain.MarketData on top of the Alpha Vantage HTTP API.
package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"github.com/simaogato/networth-backend/internal/domain"
	"github.com/simaogato/networth-backend/internal/metrics"
)

const (
	// DefaultBaseURL is the Alpha Vantage query endpoint
	DefaultBaseURL = "https://www.alphavantage.co/query"

	// DefaultQuoteTTL is how long a quote is served from cache
	DefaultQuoteTTL = 15 * time.Minute

	// DividendTTL is how long a dividend history is served from cache
	DividendTTL = 24 * time.Hour
)

// cryptoBases are tickers quoted through the exchange rate endpoint even without a "-USD" suffix
var cryptoBases = map[string]bool{
	"BTC": true, "ETH": true, "USDT": true, "BNB": true,
	"SOL": true, "ADA": true, "DOGE": true, "XRP": true,
}

// Client is an Alpha Vantage client with an in-memory response cache
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	apiKey   string
	quoteTTL time.Duration
	cache    *cache.Cache
	log      zerolog.Logger
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, quoteTTL time.Duration, log zerolog.Logger) *Client {
	if quoteTTL <= 0 {
		quoteTTL = DefaultQuoteTTL
	}
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		quoteTTL:   quoteTTL,
		cache:      cache.New(quoteTTL, 2*quoteTTL),
		log:        log.With().Str("client", "alphavantage").Logger(),
	}
}

// Quote returns the latest price for a stock, ETF or crypto symbol.
// Crypto symbols ("BTC", "ETH-EUR", "SOL/USD") go through CURRENCY_EXCHANGE_RATE,
// everything else through GLOBAL_QUOTE.
func (c *Client) Quote(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", domain.ErrInvalidInput)
	}

	if from, to, ok := cryptoPair(symbol); ok {
		params := map[string]string{"from_currency": from, "to_currency": to}
		return c.cachedQuote(ctx, "CURRENCY_EXCHANGE_RATE", params, func(body []byte) (*domain.Quote, error) {
			return parseExchangeRate(symbol, to, body)
		})
	}

	params := map[string]string{"symbol": symbol}
	return c.cachedQuote(ctx, "GLOBAL_QUOTE", params, func(body []byte) (*domain.Quote, error) {
		return parseGlobalQuote(symbol, body)
	})
}

// DividendHistory returns every dividend Alpha Vantage knows for symbol, newest first.
// An empty slice means the symbol never paid one.
func (c *Client) DividendHistory(ctx context.Context, symbol string) ([]domain.Dividend, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	params := map[string]string{"symbol": symbol, "datatype": "csv"}

	key := buildCacheKey("DIVIDENDS", params)
	if cached, ok := c.cache.Get(key); ok {
		metrics.QuoteRequests.WithLabelValues("DIVIDENDS", "cache").Inc()
		return append([]domain.Dividend(nil), cached.([]domain.Dividend)...), nil
	}

	body, err := c.get(ctx, "DIVIDENDS", params)
	if err != nil {
		return nil, err
	}

	dividends, err := parseDividendsCSV(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dividends for %s: %w", symbol, err)
	}

	c.cache.Set(key, append([]domain.Dividend(nil), dividends...), DividendTTL)
	c.log.Debug().Str("symbol", symbol).Int("count", len(dividends)).Msg("Fetched dividend history")
	return dividends, nil
}

// ClearCache drops every cached response
func (c *Client) ClearCache() {
	c.cache.Flush()
}

func (c *Client) cachedQuote(ctx context.Context, function string, params map[string]string, parse func([]byte) (*domain.Quote, error)) (*domain.Quote, error) {
	key := buildCacheKey(function, params)
	if cached, ok := c.cache.Get(key); ok {
		metrics.QuoteRequests.WithLabelValues(function, "cache").Inc()
		quote := cached.(domain.Quote)
		return &quote, nil
	}

	body, err := c.get(ctx, function, params)
	if err != nil {
		return nil, err
	}

	quote, err := parse(body)
	if err != nil {
		return nil, err
	}

	c.cache.Set(key, *quote, c.quoteTTL)
	return quote, nil
}

// get performs one API call and returns the raw body after checking for API-level errors
func (c *Client) get(ctx context.Context, function string, params map[string]string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrInvalidAPIKey{}
	}

	q := url.Values{}
	q.Set("function", function)
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	metrics.QuoteRequests.WithLabelValues(function, "upstream").Inc()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call alpha vantage %s: %w", function, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read alpha vantage response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage %s returned status %d", function, resp.StatusCode)
	}

	if err := c.checkAPIError(body); err != nil {
		c.log.Warn().Err(err).Str("function", function).Msg("Alpha Vantage API error")
		return nil, err
	}

	return body, nil
}

// checkAPIError detects the error payloads Alpha Vantage sends with a 200 status
func (c *Client) checkAPIError(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if bytes.Contains(trimmed, []byte("Thank you for using Alpha Vantage")) {
		return ErrRateLimitExceeded{}
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}

	var payload struct {
		Note         string `json:"Note"`
		Information  string `json:"Information"`
		ErrorMessage string `json:"Error Message"`
	}
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil
	}

	switch {
	case payload.Note != "":
		return ErrRateLimitExceeded{Message: payload.Note}
	case strings.Contains(strings.ToLower(payload.Information), "api key"):
		return ErrInvalidAPIKey{}
	case payload.Information != "":
		return ErrRateLimitExceeded{Message: payload.Information}
	case payload.ErrorMessage != "":
		return fmt.Errorf("alpha vantage error: %s", payload.ErrorMessage)
	}
	return nil
}

// cryptoPair splits a crypto symbol into its base and quote currency
func cryptoPair(symbol string) (from, to string, ok bool) {
	sep := strings.IndexAny(symbol, "-/")
	if sep < 0 {
		if cryptoBases[symbol] {
			return symbol, domain.DefaultCurrency, true
		}
		return "", "", false
	}

	from, to = symbol[:sep], symbol[sep+1:]
	if to == "" {
		to = domain.DefaultCurrency
	}
	return from, to, true
}

// buildCacheKey derives a stable key from the function and its parameters, never the API key
func buildCacheKey(function string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "apikey" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(function)
	for _, k := range keys {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	return b.String()
}
