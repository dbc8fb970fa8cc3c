// Package streak counts consecutive workout days.
package streak

import (
	"time"

	"github.com/dukerupert/dauphindash/internal/datekey"
	"github.com/dukerupert/dauphindash/internal/model"
)

// MaxLookback bounds how far back Current scans.
const MaxLookback = 365

// Current counts consecutive workout days ending today. Today must already be
// marked; there is no grace day.
func Current(s model.Store, today time.Time) int {
	day := datekey.Midnight(today)
	n := 0
	for i := 0; i < MaxLookback; i++ {
		if !s.Get(datekey.Key(datekey.AddDays(day, -i))).Workout {
			break
		}
		n++
	}
	return n
}

// Longest returns the longest run of consecutive workout days ever recorded.
func Longest(s model.Store) int {
	longest, run := 0, 0
	prev := ""
	for _, k := range s.SortedKeys() {
		if !s[k].Workout {
			continue
		}
		if prev != "" && datekey.Shift(prev, 1) == k {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = k
	}
	return longest
}
