package marketdata

import "fmt"

// ErrRateLimitExceeded is returned when Alpha Vantage refuses a call because of its quota
type ErrRateLimitExceeded struct {
	Message string
}

func (e ErrRateLimitExceeded) Error() string {
	if e.Message == "" {
		return "alpha vantage rate limit exceeded"
	}
	return "alpha vantage rate limit exceeded: " + e.Message
}

// ErrInvalidAPIKey is returned when no key is configured or the key is rejected
type ErrInvalidAPIKey struct{}

func (e ErrInvalidAPIKey) Error() string {
	return "alpha vantage API key is missing or invalid"
}

// ErrSymbolNotFound is returned when the provider has no data for a symbol
type ErrSymbolNotFound struct {
	Symbol string
}

func (e ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("no market data found for symbol %s", e.Symbol)
}
