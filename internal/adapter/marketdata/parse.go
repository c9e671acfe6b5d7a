package marketdata

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/networth-backend/internal/domain"
)

// parseGlobalQuote reads a GLOBAL_QUOTE response. Alpha Vantage quotes equities in USD.
func parseGlobalQuote(symbol string, body []byte) (*domain.Quote, error) {
	var payload struct {
		GlobalQuote map[string]string `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode global quote: %w", err)
	}

	raw := payload.GlobalQuote["05. price"]
	if raw == "" {
		return nil, ErrSymbolNotFound{Symbol: symbol}
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q for %s: %w", raw, symbol, err)
	}

	return &domain.Quote{
		Symbol:      symbol,
		Price:       price,
		Currency:    domain.DefaultCurrency,
		LastUpdated: orNow(parseDate(payload.GlobalQuote["07. latest trading day"])),
	}, nil
}

// parseExchangeRate reads a CURRENCY_EXCHANGE_RATE response
func parseExchangeRate(symbol, to string, body []byte) (*domain.Quote, error) {
	var payload struct {
		Rate map[string]string `json:"Realtime Currency Exchange Rate"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode exchange rate: %w", err)
	}

	raw := payload.Rate["5. Exchange Rate"]
	if raw == "" {
		return nil, ErrSymbolNotFound{Symbol: symbol}
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid exchange rate %q for %s: %w", raw, symbol, err)
	}

	return &domain.Quote{
		Symbol:      symbol,
		Price:       price,
		Currency:    to,
		LastUpdated: orNow(parseDateTime(payload.Rate["6. Last Refreshed"])),
	}, nil
}

// parseDividendsCSV reads the csv flavour of the DIVIDENDS endpoint:
// ex_dividend_date,declaration_date,record_date,payment_date,amount
// Rows without an ex-date or amount are skipped.
func parseDividendsCSV(body []byte) ([]domain.Dividend, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimSpace(body)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []domain.Dividend{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) < 5 {
		return nil, fmt.Errorf("unexpected dividend header %v", header)
	}

	dividends := []domain.Dividend{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 5 {
			continue
		}

		exDate := parseDate(record[0])
		amount, err := decimal.NewFromString(strings.TrimSpace(record[4]))
		if exDate.IsZero() || err != nil {
			continue
		}

		div := domain.Dividend{
			ExDate:   exDate,
			Amount:   amount,
			Currency: domain.DefaultCurrency,
			Type:     domain.DividendTypeCash,
		}
		if paid := parseDate(record[3]); !paid.IsZero() {
			div.PaymentDate = &paid
		}
		dividends = append(dividends, div)
	}

	return dividends, nil
}

// parseDate parses a YYYY-MM-DD date, returning the zero time for "None" and friends
func parseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseDateTime parses "YYYY-MM-DD HH:MM:SS" in UTC, falling back to a bare date
func parseDateTime(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", strings.TrimSpace(s))
	if err != nil {
		return parseDate(s)
	}
	return t
}

func orNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}
