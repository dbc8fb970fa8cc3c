package trend

import (
	"time"

	"github.com/dukerupert/dauphindash/internal/datekey"
	"github.com/dukerupert/dauphindash/internal/model"
)

// DefaultChartWeeks is how many weekly buckets the charts show.
const DefaultChartWeeks = 12

// WeekBucket aggregates seven consecutive days for the bar charts.
type WeekBucket struct {
	Start    string `json:"start"`
	End      string `json:"end"`
	LeetCode int    `json:"leetcode"`
	Workouts int    `json:"workouts"`
	Weighins int    `json:"weigh_ins"`
}

// WeeklyBuckets splits the trailing weeks*7 days ending today into seven-day
// buckets, oldest first.
func WeeklyBuckets(s model.Store, today time.Time, weeks int) []WeekBucket {
	if weeks < 1 {
		weeks = DefaultChartWeeks
	}
	end := datekey.Midnight(today)
	out := make([]WeekBucket, 0, weeks)
	for w := weeks - 1; w >= 0; w-- {
		last := datekey.AddDays(end, -7*w)
		first := datekey.AddDays(last, -6)
		b := WeekBucket{Start: datekey.Key(first), End: datekey.Key(last)}
		for i := 0; i < 7; i++ {
			rec := s.Get(datekey.Key(datekey.AddDays(first, i)))
			b.LeetCode += rec.LeetCode
			if rec.Workout {
				b.Workouts++
			}
			if rec.HasWeight() {
				b.Weighins++
			}
		}
		out = append(out, b)
	}
	return out
}

// WeightSeries lists every recorded weight in chronological order.
func WeightSeries(s model.Store) []WeightReading {
	var out []WeightReading
	for _, k := range s.SortedKeys() {
		if w := s[k].Weight; w != nil {
			out = append(out, WeightReading{Date: k, Weight: *w})
		}
	}
	return out
}
