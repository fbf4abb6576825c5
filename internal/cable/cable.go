package cable

import "math"

// Measurement holds the three meter-counter readings recorded at a line
// installation. Middle is a mid-run checkpoint used by field technicians to
// sanity-check the draw; it never contributes to the total.
type Measurement struct {
	Start  *float64 `json:"cable_start"`
	Middle *float64 `json:"cable_middle"`
	End    *float64 `json:"cable_end"`
}

// Coerce maps a missing or non-finite reading to 0. Field devices sometimes
// report NaN when the counter was never read.
func Coerce(v *float64) float64 {
	if v == nil {
		return 0
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

// Total returns the total cable drawn for a line: first-leg plus last-leg
// reading. Always returns a number, never an error.
func Total(start, middle, end *float64) float64 {
	_ = middle // checkpoint only
	return Coerce(start) + Coerce(end)
}

// TotalOf is Total applied to a Measurement.
func TotalOf(m Measurement) float64 {
	return Total(m.Start, m.Middle, m.End)
}
