package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseInSLT(t *testing.T) {
	got, err := ParseInSLT(DateLayout, "2026-02-15")
	assert.NoError(t, err)
	assert.Equal(t, 2026, got.Year())
	assert.Equal(t, time.February, got.Month())
	assert.Equal(t, 15, got.Day())

	_, offset := got.Zone()
	assert.Equal(t, 5*3600+1800, offset)

	_, err = ParseInSLT(DateLayout, "15-02-2026")
	assert.Error(t, err)
}

func TestMonthRange(t *testing.T) {
	start, end := MonthRange(2026, time.February)
	assert.Equal(t, 1, start.Day())
	assert.Equal(t, time.February, start.Month())
	assert.Equal(t, 28, end.Day())
	assert.True(t, end.After(start))

	// Leap year
	_, end = MonthRange(2028, time.February)
	assert.Equal(t, 29, end.Day())

	// Year boundary
	start, end = MonthRange(2026, time.December)
	assert.Equal(t, time.December, start.Month())
	assert.Equal(t, 31, end.Day())
}

func TestStartAndEndOfDay(t *testing.T) {
	ref := time.Date(2026, time.June, 10, 14, 30, 0, 0, time.UTC)

	start := StartOfDay(ref)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 0, start.Minute())

	end := EndOfDay(ref)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, 59, end.Minute())
	assert.True(t, end.After(start))
}
