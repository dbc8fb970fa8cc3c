package datekey

import (
	"sort"
	"testing"
	"time"
)

func TestKeyUsesLocalFields(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 23:30 local on Jan 5 is already Jan 6 in UTC.
	late := time.Date(2026, 1, 5, 23, 30, 0, 0, ny)
	if got := Key(late); got != "2026-01-05" {
		t.Errorf("Key = %q, want %q", got, "2026-01-05")
	}
	if got := Key(late.UTC()); got != "2026-01-06" {
		t.Errorf("Key(UTC) = %q, want %q", got, "2026-01-06")
	}
}

func TestKeyZeroPadding(t *testing.T) {
	got := Key(time.Date(987, 3, 7, 12, 0, 0, 0, time.UTC))
	if got != "0987-03-07" {
		t.Errorf("Key = %q, want %q", got, "0987-03-07")
	}
}

func TestKeySortsChronologically(t *testing.T) {
	start := time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)
	var keys []string
	for i := 40; i >= 0; i-- {
		keys = append(keys, Key(AddDays(start, i)))
	}
	sort.Strings(keys)
	for i := 1; i < len(keys); i++ {
		a, _ := Parse(keys[i-1], time.UTC)
		b, _ := Parse(keys[i], time.UTC)
		if !a.Before(b) {
			t.Fatalf("keys out of order: %s before %s", keys[i-1], keys[i])
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"2026-10-15", false},
		{"2024-02-29", false},
		{"2025-02-29", true},
		{"2026-13-01", true},
		{"2026-1-5", true},
		{"", true},
		{"2026-10-15T00:00:00Z", true},
	}
	for _, tt := range tests {
		_, err := Parse(tt.key, time.UTC)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) err = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
		if Valid(tt.key) == tt.wantErr {
			t.Errorf("Valid(%q) = %v", tt.key, !tt.wantErr)
		}
	}
}

func TestAddDaysAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// DST starts 2026-03-08 in New York; the day is only 23 hours long.
	d := time.Date(2026, 3, 7, 0, 0, 0, 0, ny)
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		k := Key(AddDays(d, i))
		if seen[k] {
			t.Fatalf("duplicate key %s", k)
		}
		seen[k] = true
	}
	if got := Key(AddDays(d, 2)); got != "2026-03-09" {
		t.Errorf("AddDays(+2) = %s, want 2026-03-09", got)
	}
}

func TestShift(t *testing.T) {
	if got := Shift("2026-03-01", -1); got != "2026-02-28" {
		t.Errorf("Shift = %q, want 2026-02-28", got)
	}
	if got := Shift("bogus", 3); got != "bogus" {
		t.Errorf("Shift(bogus) = %q", got)
	}
}
