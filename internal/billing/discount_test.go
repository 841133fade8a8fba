package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFinalAmount(t *testing.T) {
	tests := []struct {
		name      string
		rentCents int64
		percent   int
		want      int64
	}{
		{"no discount", 1000000, 0, 1000000},
		{"fifteen percent", 1000000, 15, 850000},
		{"twenty percent", 1000000, 20, 800000},
		{"full discount", 1000000, 100, 0},
		{"rounds half up", 999, 15, 999 - 150}, // 149.85 → 150
		{"one cent rent", 1, 50, 0},            // 0.5 → 1 cent discount
		{"negative percent clamped", 1000000, -5, 1000000},
		{"over hundred clamped", 1000000, 150, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeFinalAmount(tt.rentCents, tt.percent))
		})
	}
}

func TestLedgerIdentity(t *testing.T) {
	// final == rent - discount must hold exactly for every pct in range.
	rents := []int64{1, 99, 1000, 999999, 1000000, 123456789}
	for _, rent := range rents {
		for pct := 0; pct <= 100; pct++ {
			discount := DiscountCents(rent, pct)
			final := ComputeFinalAmount(rent, pct)
			assert.Equal(t, rent, final+discount,
				"identity broken for rent=%d pct=%d", rent, pct)
			assert.GreaterOrEqual(t, final, int64(0))
		}
	}
}

func TestZeroPercentIsIdentity(t *testing.T) {
	for _, rent := range []int64{1, 500, 1000000} {
		assert.Equal(t, rent, ComputeFinalAmount(rent, 0))
		assert.Equal(t, int64(0), DiscountCents(rent, 0))
	}
}
