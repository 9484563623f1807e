package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeDue(t *testing.T) {
	nisab := int64(2_975_000) // 85g at RM 350/g

	tests := []struct {
		name        string
		wealth      int64
		liabilities int64
		want        int64
	}{
		{"below nisab", 1_000_000, 0, 0},
		{"exactly nisab", 2_975_000, 0, 74_375},
		{"above nisab", 4_000_000, 0, 100_000},
		{"liabilities pull below nisab", 3_000_000, 500_000, 0},
		{"liabilities exceed wealth", 100, 200, 0},
		{"zero wealth", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeDue(tt.wealth, tt.liabilities, nisab))
		})
	}
}

func TestValidAsnaf(t *testing.T) {
	assert.True(t, ValidAsnaf(AsnafFakir))
	assert.True(t, ValidAsnaf(AsnafIbnuSabil))
	assert.False(t, ValidAsnaf("vip"))
	assert.False(t, ValidAsnaf(""))
}
