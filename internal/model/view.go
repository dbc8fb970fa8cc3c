package model

import "time"

// Shade is the visual classification of a day produced by an activity policy.
type Shade struct {
	Policy   string  `json:"policy"`
	Score    float64 `json:"score"`
	Level    int     `json:"level"`
	Category string  `json:"category"`
	Marker   string  `json:"marker,omitempty"`
	Color    string  `json:"color"`
}

// CalendarCell is one day in a calendar grid. InPeriod is false for padding
// days borrowed from an adjacent period to fill out a week.
type CalendarCell struct {
	Date     time.Time `json:"-"`
	DateKey  string    `json:"date"`
	Weekday  int       `json:"weekday"`
	Record   DayRecord `json:"record"`
	InPeriod bool      `json:"in_period"`
	IsToday  bool      `json:"is_today,omitempty"`
	Shade    *Shade    `json:"shade,omitempty"`
}

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
	DirectionNone Direction = "none"
)

type TrendColor string

const (
	ColorGood    TrendColor = "good"
	ColorBad     TrendColor = "bad"
	ColorNeutral TrendColor = "neutral"
)

// TrendResult describes a change between two readings. Complete is set only by
// workout pacing when the weekly goal is already met.
type TrendResult struct {
	Direction Direction  `json:"direction"`
	Magnitude float64    `json:"magnitude"`
	Color     TrendColor `json:"color"`
	Complete  bool       `json:"complete,omitempty"`
}

// Goals are the user's targets used for goal-relative trends and pacing.
type Goals struct {
	Weight          float64 `json:"goal_weight"`
	WorkoutsPerWeek int     `json:"workouts_per_week"`
	CodingCapPerDay int     `json:"coding_cap_per_day"`
}

// DefaultGoals returns the goals used until the user configures their own.
func DefaultGoals() Goals {
	return Goals{Weight: 160, WorkoutsPerWeek: 5, CodingCapPerDay: 5}
}
