// Package trend computes goal-relative trend indicators and chart series from
// the day-record store. Every function is pure; callers pass "today".
package trend

import (
	"math"
	"sort"
	"time"

	"github.com/dukerupert/dauphindash/internal/datekey"
	"github.com/dukerupert/dauphindash/internal/model"
)

// WeightReading is a recorded weight and the day it was logged.
type WeightReading struct {
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
}

// MostRecentWeight returns the latest recorded weight, or nil if none exists.
func MostRecentWeight(s model.Store) *WeightReading {
	keys := s.SortedKeys()
	for i := len(keys) - 1; i >= 0; i-- {
		if w := s[keys[i]].Weight; w != nil {
			return &WeightReading{Date: keys[i], Weight: *w}
		}
	}
	return nil
}

// PreviousWeight returns the nearest recorded weight strictly before key.
func PreviousWeight(s model.Store, key string) *WeightReading {
	keys := s.SortedKeys()
	i := sort.SearchStrings(keys, key)
	for i--; i >= 0; i-- {
		if w := s[keys[i]].Weight; w != nil {
			return &WeightReading{Date: keys[i], Weight: *w}
		}
	}
	return nil
}

// Weight classifies the change from previous to current against goal.
// Gaining is bad only while above goal; losing is bad only while at or
// below it. Without a previous reading there is no trend.
func Weight(current float64, previous *float64, goal float64) model.TrendResult {
	if previous == nil {
		return model.TrendResult{Direction: model.DirectionNone, Color: model.ColorNeutral}
	}
	diff := current - *previous
	aboveGoal := current > goal
	res := model.TrendResult{Magnitude: math.Abs(diff)}

	switch {
	case diff > 0:
		res.Direction = model.DirectionUp
		res.Color = model.ColorGood
		if aboveGoal {
			res.Color = model.ColorBad
		}
	case diff < 0:
		res.Direction = model.DirectionDown
		res.Color = model.ColorBad
		if aboveGoal {
			res.Color = model.ColorGood
		}
	default:
		res.Direction = model.DirectionFlat
		res.Color = model.ColorNeutral
	}
	return res
}

// Compare classifies a higher-is-better count against its previous value.
func Compare(current, previous int) model.TrendResult {
	diff := current - previous
	res := model.TrendResult{Magnitude: math.Abs(float64(diff))}
	switch {
	case diff > 0:
		res.Direction, res.Color = model.DirectionUp, model.ColorGood
	case diff < 0:
		res.Direction, res.Color = model.DirectionDown, model.ColorBad
	default:
		res.Direction, res.Color = model.DirectionFlat, model.ColorNeutral
	}
	return res
}

// WeeklyCoding sums problems solved over the trailing seven days ending today
// and over the seven days before that.
func WeeklyCoding(s model.Store, today time.Time) (thisWeek, lastWeek int) {
	day := datekey.Midnight(today)
	for i := 0; i < 14; i++ {
		n := s.Get(datekey.Key(datekey.AddDays(day, -i))).LeetCode
		if i < 7 {
			thisWeek += n
		} else {
			lastWeek += n
		}
	}
	return thisWeek, lastWeek
}

// DaysElapsed counts days of the current week so far, Monday = 1 through
// Sunday = 7.
func DaysElapsed(t time.Time) int {
	if t.Weekday() == time.Sunday {
		return 7
	}
	return int(t.Weekday())
}

// WeekStart returns the Monday of the week containing t.
func WeekStart(t time.Time) time.Time {
	return datekey.AddDays(datekey.Midnight(t), -(DaysElapsed(t) - 1))
}

// WorkoutsThisWeek counts workout days from Monday through today.
func WorkoutsThisWeek(s model.Store, today time.Time) int {
	start := WeekStart(today)
	n := 0
	for i := 0; i < DaysElapsed(today); i++ {
		if s.Get(datekey.Key(datekey.AddDays(start, i))).Workout {
			n++
		}
	}
	return n
}

// WorkoutPace compares this week's workouts to a linear pace toward the
// weekly goal. Meeting the goal outright is reported as Complete.
func WorkoutPace(count, goalPerWeek, daysElapsed int) model.TrendResult {
	expected := float64(daysElapsed) / 7 * float64(goalPerWeek)
	res := model.TrendResult{Magnitude: math.Abs(float64(count) - expected)}
	switch {
	case count >= goalPerWeek:
		res.Direction, res.Color, res.Complete = model.DirectionUp, model.ColorGood, true
	case float64(count) >= expected:
		res.Direction, res.Color = model.DirectionUp, model.ColorGood
	default:
		res.Direction, res.Color = model.DirectionDown, model.ColorBad
	}
	return res
}

// TotalCoding sums every problem ever recorded.
func TotalCoding(s model.Store) int {
	total := 0
	for _, rec := range s {
		total += rec.LeetCode
	}
	return total
}
