// Package datekey converts between calendar dates and the canonical
// YYYY-MM-DD keys that identify a day's record.
//
// Keys are always derived from a time's own calendar fields in its Location.
// Callers convert to the dashboard's location first; nothing here converts to UTC.
package datekey

import (
	"fmt"
	"time"
)

// Layout is the reference layout for a DateKey.
const Layout = "2006-01-02"

// Key formats t's local year, month and day as YYYY-MM-DD.
func Key(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// Parse returns midnight of the keyed day in loc.
func Parse(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if len(key) != len(Layout) {
		return time.Time{}, fmt.Errorf("invalid date key %q", key)
	}
	t, err := time.ParseInLocation(Layout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date key %q: %w", key, err)
	}
	return t, nil
}

// Valid reports whether key is a well-formed, real calendar date.
func Valid(key string) bool {
	_, err := Parse(key, time.UTC)
	return err == nil
}

// Midnight truncates t to the start of its calendar day, keeping its Location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// AddDays moves t by n calendar days. Unlike t.Add(n*24h) this never lands on
// the wrong day across a DST transition.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

// Shift returns the key n days away from key. Malformed keys are returned unchanged.
func Shift(key string, n int) string {
	t, err := Parse(key, time.UTC)
	if err != nil {
		return key
	}
	return Key(AddDays(t, n))
}
