package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw      string
		want     float64
		ok       bool
		wantNote bool
	}{
		{"10", 10, true, false},
		{"2.5", 2.5, true, false},
		{"-3", -3, true, false},
		{".5", 0.5, true, false},
		{"$1,234.50", 1234.5, true, true},
		{"1,234,567", 1234567, true, true},
		{"1,5", 1.5, true, true},
		{"12 pcs", 12, true, true},
		{" 7 ", 7, true, false},
		{"USD 99.99", 99.99, true, true},
		{"1e3", 1000, true, false},
		{"1.5e2", 150, true, false},
		{"5 lb", 5, true, true},
		{"ABC-123", 0, false, false},
		{"abc12", 0, false, false},
		{"2024-01-05", 0, false, false},
		{"1,2,3", 0, false, false},
		{"1.2.3", 0, false, false},
		{"12 pcs 4", 0, false, false},
		{"", 0, false, false},
		{"   ", 0, false, false},
		{"N/A", 0, false, false},
		{"abc", 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			res, ok := ParseNumber(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, res.Value, 1e-9)
			if tt.wantNote {
				assert.NotEmpty(t, res.Note)
			} else {
				assert.Empty(t, res.Note)
			}
		})
	}
}

func TestParseWeightKg(t *testing.T) {
	res, ok := ParseWeightKg("10 lbs")
	assert.True(t, ok)
	assert.InDelta(t, 4.5359237, res.Value, 1e-9)
	assert.Contains(t, res.Note, "from lb")

	res, ok = ParseWeightKg("1lb")
	assert.True(t, ok)
	assert.InDelta(t, 0.45359237, res.Value, 1e-9)

	res, ok = ParseWeightKg("2.5")
	assert.True(t, ok)
	assert.Equal(t, 2.5, res.Value)
	assert.Empty(t, res.Note)

	res, ok = ParseWeightKg("3 kg")
	assert.True(t, ok)
	assert.Equal(t, 3.0, res.Value)
	assert.NotContains(t, res.Note, "lb")

	_, ok = ParseWeightKg("heavy")
	assert.False(t, ok)
}

func TestDropThousands(t *testing.T) {
	assert.Equal(t, "1234", dropThousands("1,234"))
	assert.Equal(t, "1234.56", dropThousands("1,234.56"))
	assert.Equal(t, "1,5", dropThousands("1,5"))
	assert.Equal(t, "1,2345", dropThousands("1,2345"))
}
