package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSalary(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		min      *int
		max      *int
		currency string
	}{
		{"usd range", "$80,000 - $100,000", intPtr(80000), intPtr(100000), "USD"},
		{"gbp single", "£45000 per year", intPtr(45000), nil, "GBP"},
		{"eur range no spaces", "€50000-€60000", intPtr(50000), intPtr(60000), "EUR"},
		{"no symbol keeps default", "120000 - 150000", intPtr(120000), intPtr(150000), "CAD"},
		{"competitive", "Competitive", nil, nil, "CAD"},
		{"empty", "", nil, nil, "CAD"},
		{"zero is absent", "$0 - $90,000", nil, intPtr(90000), "USD"},
		{"inverted kept", "$100,000 - $80,000", intPtr(100000), intPtr(80000), "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minSalary, maxSalary, currency := ParseSalary(tt.input, "CAD")
			assert.Equal(t, tt.min, minSalary)
			assert.Equal(t, tt.max, maxSalary)
			assert.Equal(t, tt.currency, currency)
		})
	}
}

func TestParseSalary_USDRange(t *testing.T) {
	minSalary, maxSalary, currency := ParseSalary("$80,000 - $100,000", "USD")
	require.NotNil(t, minSalary)
	require.NotNil(t, maxSalary)
	assert.Equal(t, 80000, *minSalary)
	assert.Equal(t, 100000, *maxSalary)
	assert.Equal(t, "USD", currency)
}

func intPtr(n int) *int { return &n }
