package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"25", 2500},
		{"25.5", 2550},
		{"25.50", 2550},
		{"1,250.00", 125000},
		{"0.05", 5},
	}
	for _, tt := range tests {
		got, err := parseAmountCents(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "abc", "1.234", "-5"} {
		_, err := parseAmountCents(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePaymentDate(t *testing.T) {
	d, err := parsePaymentDate("2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", d.Format("2006-01-02"))

	d, err = parsePaymentDate("15/06/2024")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", d.Format("2006-01-02"))

	_, err = parsePaymentDate("June 15")
	assert.Error(t, err)
}

func TestIsHeaderRow(t *testing.T) {
	assert.True(t, isHeaderRow([]string{"full_name", "ic", "amount", "date"}))
	assert.False(t, isHeaderRow([]string{"Ahmad bin Ali", "880101-14-5523", "25.00", "2024-06-15"}))
}
