package cable

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fp(v float64) *float64 { return &v }

func TestTotal(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name               string
		start, middle, end *float64
		want               float64
	}{
		{"all readings present", fp(100), fp(50), fp(30), 130},
		{"middle is a checkpoint only", fp(100), fp(9999), fp(30), 130},
		{"all nil", nil, nil, nil, 0},
		{"only middle present", nil, fp(20), nil, 0},
		{"nil start", nil, fp(50), fp(30), 30},
		{"nil end", fp(100), fp(50), nil, 100},
		{"nan start coerced to zero", &nan, fp(50), fp(30), 30},
		{"inf end coerced to zero", fp(100), fp(50), &inf, 100},
		{"zero readings", fp(0), fp(0), fp(0), 0},
		{"fractional meters", fp(12.5), nil, fp(7.25), 19.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Total(tt.start, tt.middle, tt.end))
		})
	}
}

func TestTotalOf(t *testing.T) {
	m := Measurement{Start: fp(210), Middle: fp(100), End: fp(45)}
	assert.Equal(t, 255.0, TotalOf(m))
}

func TestCoerce(t *testing.T) {
	nan := math.NaN()
	assert.Equal(t, 0.0, Coerce(nil))
	assert.Equal(t, 0.0, Coerce(&nan))
	assert.Equal(t, 42.0, Coerce(fp(42)))
}
