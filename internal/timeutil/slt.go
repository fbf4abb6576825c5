package timeutil

import (
	"time"
)

// SLT is the Sri Lanka Standard Time location (UTC+5:30)
var SLT *time.Location

func init() {
	var err error
	SLT, err = time.LoadLocation("Asia/Colombo")
	if err != nil {
		// Fallback: create fixed zone if Asia/Colombo not available
		SLT = time.FixedZone("SLT", 5*60*60+30*60) // UTC+5:30
	}
}

// Now returns the current time in SLT
func Now() time.Time {
	return time.Now().In(SLT)
}

// ToSLT converts any time to SLT
func ToSLT(t time.Time) time.Time {
	return t.In(SLT)
}

// ParseInSLT parses a time string and returns it in SLT
func ParseInSLT(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, SLT)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatSLT formats a time in SLT using the given layout
func FormatSLT(t time.Time, layout string) string {
	return t.In(SLT).Format(layout)
}

// StartOfDay returns the start of day (00:00:00) in SLT for the given time
func StartOfDay(t time.Time) time.Time {
	slt := t.In(SLT)
	return time.Date(slt.Year(), slt.Month(), slt.Day(), 0, 0, 0, 0, SLT)
}

// EndOfDay returns the end of day (23:59:59) in SLT for the given time
func EndOfDay(t time.Time) time.Time {
	slt := t.In(SLT)
	return time.Date(slt.Year(), slt.Month(), slt.Day(), 23, 59, 59, 999999999, SLT)
}

// MonthRange returns the first and last instant of a calendar month in SLT
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, SLT)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// Common layouts for SLT formatting
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
