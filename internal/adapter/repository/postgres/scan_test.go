package postgres

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNullDecimal(t *testing.T) {
	d, err := parseNullDecimal("quantity", sql.NullString{})
	require.NoError(t, err)
	assert.False(t, d.Valid)

	d, err = parseNullDecimal("quantity", sql.NullString{String: "12.5000", Valid: true})
	require.NoError(t, err)
	assert.True(t, d.Valid)
	assert.True(t, decimal.RequireFromString("12.5").Equal(d.Decimal))

	_, err = parseNullDecimal("quantity", sql.NullString{String: "abc", Valid: true})
	assert.ErrorContains(t, err, "failed to parse quantity")
}

func TestNullDecimalArg(t *testing.T) {
	assert.Nil(t, nullDecimalArg(decimal.NullDecimal{}))
	assert.Equal(t, "3.14", nullDecimalArg(decimal.NewNullDecimal(decimal.RequireFromString("3.14"))))
}

func TestTimePtr(t *testing.T) {
	assert.Nil(t, timePtr(sql.NullTime{}))

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	got := timePtr(sql.NullTime{Time: now, Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, now, *got)
}
