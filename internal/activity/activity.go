// Package activity turns a DayRecord into the shade used to colour its
// calendar cell. Two policies exist and a dashboard uses exactly one:
//
//   - Weighted: a continuous 0..1 score bucketed into five intensity levels.
//   - Categorical: empty, a single activity, or combined.
package activity

import (
	"fmt"
	"math"

	"github.com/dukerupert/dauphindash/internal/model"
)

const (
	PolicyWeighted    = "weighted"
	PolicyCategorical = "categorical"
)

// Policy maps a day's record to its shade. Implementations are pure.
type Policy interface {
	Name() string
	Shade(rec model.DayRecord) model.Shade
}

// ForName returns the policy registered under name.
func ForName(name string, codingCap int) (Policy, error) {
	switch name {
	case "", PolicyWeighted:
		w := DefaultWeighted()
		if codingCap > 0 {
			w.CodingCap = codingCap
		}
		return w, nil
	case PolicyCategorical:
		return DefaultCategorical(), nil
	default:
		return nil, fmt.Errorf("unknown score policy %q", name)
	}
}

// Weighted scores a day by summing fixed shares for each activity. Coding
// scales linearly up to CodingCap problems; more adds nothing.
type Weighted struct {
	WeightShare  float64
	WorkoutShare float64
	CodingShare  float64
	CodingCap    int
	Colors       [5]string
}

func DefaultWeighted() Weighted {
	return Weighted{
		WeightShare:  0.20,
		WorkoutShare: 0.25,
		CodingShare:  0.55,
		CodingCap:    5,
		Colors: [5]string{
			"#ebedf0",
			"#f4eed8",
			"#d9c596",
			"#b89f5f",
			"#8c7535",
		},
	}
}

func (w Weighted) Name() string { return PolicyWeighted }

// Score returns the activity score in [0, 1], rounded to four decimals so
// that shares summing to a bucket edge land on it exactly.
func (w Weighted) Score(rec model.DayRecord) float64 {
	var score float64
	if rec.HasWeight() {
		score += w.WeightShare
	}
	if rec.Workout {
		score += w.WorkoutShare
	}
	if rec.LeetCode > 0 && w.CodingCap > 0 {
		ratio := math.Min(float64(rec.LeetCode)/float64(w.CodingCap), 1)
		score += w.CodingShare * ratio
	}
	return math.Round(score*1e4) / 1e4
}

// Level buckets a score: 0 for nothing, then quarters up to 4.
func Level(score float64) int {
	switch {
	case score <= 0:
		return 0
	case score <= 0.25:
		return 1
	case score <= 0.50:
		return 2
	case score <= 0.75:
		return 3
	default:
		return 4
	}
}

func (w Weighted) Shade(rec model.DayRecord) model.Shade {
	score := w.Score(rec)
	lvl := Level(score)
	return model.Shade{
		Policy:   PolicyWeighted,
		Score:    score,
		Level:    lvl,
		Category: Categorize(rec),
		Color:    w.Colors[lvl],
	}
}

const (
	CategoryEmpty    = "empty"
	CategoryWeight   = "weight"
	CategoryCoding   = "coding"
	CategoryWorkout  = "workout"
	CategoryCombined = "combined"
)

// Categorical colours a day by which activities happened, not how much.
type Categorical struct {
	Colors map[string]string
}

func DefaultCategorical() Categorical {
	return Categorical{Colors: map[string]string{
		CategoryEmpty:    "#ebedf0",
		CategoryWeight:   "#0a843d",
		CategoryCoding:   "#d69e2e",
		CategoryWorkout:  "#3182ce",
		CategoryCombined: "#8c7535",
	}}
}

func (c Categorical) Name() string { return PolicyCategorical }

func (c Categorical) Shade(rec model.DayRecord) model.Shade {
	cat := Categorize(rec)
	n := flagCount(rec)
	return model.Shade{
		Policy:   PolicyCategorical,
		Score:    float64(n) / 3,
		Level:    n,
		Category: cat,
		Marker:   Marker(rec),
		Color:    c.Colors[cat],
	}
}

// Categorize returns empty, the single activity present, or combined.
func Categorize(rec model.DayRecord) string {
	switch flagCount(rec) {
	case 0:
		return CategoryEmpty
	case 1:
		return Marker(rec)
	default:
		return CategoryCombined
	}
}

// Marker picks the one activity drawn when a cell shows a single marker:
// weight first, then coding, then workout.
func Marker(rec model.DayRecord) string {
	switch {
	case rec.HasWeight():
		return CategoryWeight
	case rec.HasCoding():
		return CategoryCoding
	case rec.Workout:
		return CategoryWorkout
	default:
		return ""
	}
}

func flagCount(rec model.DayRecord) int {
	n := 0
	if rec.HasWeight() {
		n++
	}
	if rec.HasCoding() {
		n++
	}
	if rec.Workout {
		n++
	}
	return n
}
