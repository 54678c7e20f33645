package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		amount   float64
		currency string
		ok       bool
	}{
		{"Symbol before number", "$12.99", 12.99, "$", true},
		{"Number before symbol", "12.99$", 12.99, "$", true},
		{"Price prefix", "Price: $1,234.56", 1234.56, "$", true},
		{"List price prefix", "List Price: $49.99", 49.99, "$", true},
		{"Limited time deal prefix", "Limited time deal $7.50", 7.5, "$", true},
		{"Options text", "3 options from $9.99", 9.99, "$", true},
		{"Euro", "€1999.00", 1999.00, "€", true},
		{"Pound", "£5.25", 5.25, "£", true},
		{"Yen", "¥1,500", 1500, "¥", true},
		{"Bare number", "42.00", 42.0, "$", true},
		{"Thousands separator", "$2,349.00", 2349.0, "$", true},
		{"Empty", "", 0, "$", false},
		{"Whitespace only", "   ", 0, "$", false},
		{"No digits", "Currently unavailable", 0, "$", false},
		{"Zero is a miss", "$0.00", 0, "$", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, currency, ok := Parse(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.currency, currency)
			if tt.ok {
				assert.InDelta(t, tt.amount, amount, 0.001)
			}
		})
	}
}

func TestParseOptionsText(t *testing.T) {
	val, ok := ParseOptionsText("3 options from $9.99")
	require.True(t, ok)
	assert.InDelta(t, 9.99, val, 0.001)

	val, ok = ParseOptionsText("1 option from $ 1,299.00")
	require.True(t, ok)
	assert.InDelta(t, 1299.0, val, 0.001)

	_, ok = ParseOptionsText("no offers here")
	assert.False(t, ok)
}

func TestContainsCurrency(t *testing.T) {
	assert.True(t, ContainsCurrency("$12.99"))
	assert.True(t, ContainsCurrency("price is €5"))
	assert.False(t, ContainsCurrency("12.99"))
}
