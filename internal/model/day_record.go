package model

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DayRecord holds the three tracked metrics for one calendar day.
// A nil Weight means "not recorded", which is distinct from zero.
type DayRecord struct {
	Weight   *float64 `json:"weight"`
	LeetCode int      `json:"leetcode"`
	Workout  bool     `json:"workout"`
}

// HasWeight reports whether a weight was logged.
func (r DayRecord) HasWeight() bool {
	return r.Weight != nil
}

// HasCoding reports whether at least one problem was solved.
func (r DayRecord) HasCoding() bool {
	return r.LeetCode > 0
}

// IsZero reports whether the record carries no activity at all. Such a record
// is indistinguishable from a missing day.
func (r DayRecord) IsZero() bool {
	return r.Weight == nil && r.LeetCode <= 0 && !r.Workout
}

// Clone returns a deep copy so the weight pointer is never shared.
func (r DayRecord) Clone() DayRecord {
	if r.Weight != nil {
		w := *r.Weight
		r.Weight = &w
	}
	return r
}

// UnmarshalJSON accepts partially populated and null fields.
func (r *DayRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Weight   *float64 `json:"weight"`
		LeetCode *float64 `json:"leetcode"`
		Workout  *bool    `json:"workout"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = DayRecord{}
	if raw.Weight != nil && !math.IsNaN(*raw.Weight) && *raw.Weight > 0 {
		w := *raw.Weight
		r.Weight = &w
	}
	if raw.LeetCode != nil && *raw.LeetCode > 0 {
		r.LeetCode = int(*raw.LeetCode)
	}
	if raw.Workout != nil {
		r.Workout = *raw.Workout
	}
	return nil
}

// Float returns a pointer to w, for building records with a weight.
func Float(w float64) *float64 {
	return &w
}

// ParseDayInput validates raw form input. A weight that is empty, non-numeric
// or not positive is treated as absent. The coding count accepts leading digits
// ("3 problems" is 3) and falls back to 0.
func ParseDayInput(weight, leetcode string, workout bool) DayRecord {
	rec := DayRecord{Workout: workout}

	if w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64); err == nil && w > 0 && !math.IsInf(w, 0) {
		rec.Weight = &w
	}

	s := strings.TrimSpace(leetcode)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if n, err := strconv.Atoi(s[:end]); err == nil && n > 0 {
		rec.LeetCode = n
	}
	return rec
}

// Store maps a DateKey to its DayRecord. Key order carries no meaning.
type Store map[string]DayRecord

// Get returns the record for key, or the zero record when absent.
func (s Store) Get(key string) DayRecord {
	return s[key]
}

// SortedKeys returns all keys in chronological order.
func (s Store) SortedKeys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the store.
func (s Store) Clone() Store {
	out := make(Store, len(s))
	for k, v := range s {
		out[k] = v.Clone()
	}
	return out
}
