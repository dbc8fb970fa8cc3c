package model

import "time"

type StravaActivity struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	Distance           float64   `json:"distance"`
	MovingTime         int       `json:"moving_time"`
	ElapsedTime        int       `json:"elapsed_time"`
	TotalElevationGain float64   `json:"total_elevation_gain"`
	StartDate          time.Time `json:"start_date"`
	StartDateLocal     string    `json:"start_date_local"`
	Timezone           string    `json:"timezone"`
	AverageSpeed       float64   `json:"average_speed"`
	MaxSpeed           float64   `json:"max_speed"`
	AverageHeartrate   *float64  `json:"average_heartrate,omitempty"`
	Calories           *float64  `json:"calories,omitempty"`
}

// LocalDateKey returns the athlete-local calendar day of the activity.
// Strava reports start_date_local as a wall-clock time with a "Z" suffix,
// so the first ten characters are already the local date.
func (a StravaActivity) LocalDateKey() string {
	if len(a.StartDateLocal) >= 10 {
		return a.StartDateLocal[:10]
	}
	return a.StartDate.Format("2006-01-02")
}

// IsRun reports whether the activity counts toward running stats.
func (a StravaActivity) IsRun() bool {
	return a.Type == "Run"
}

type RunningStats struct {
	TotalRuns          int        `json:"total_runs"`
	TotalDistanceKm    float64    `json:"total_distance_km"`
	TotalDistanceMiles float64    `json:"total_distance_miles"`
	TotalTimeHours     float64    `json:"total_time_hours"`
	TotalElevationM    float64    `json:"total_elevation_m"`
	TotalElevationFt   float64    `json:"total_elevation_ft"`
	AvgDistanceKm      float64    `json:"avg_distance_km"`
	AvgDistanceMiles   float64    `json:"avg_distance_miles"`
	AvgPacePerKm       string     `json:"avg_pace_per_km"`
	AvgPacePerMile     string     `json:"avg_pace_per_mile"`
	ThisWeekRuns       int        `json:"this_week_runs"`
	ThisWeekDistanceKm float64    `json:"this_week_distance_km"`
	ThisMonthRuns      int        `json:"this_month_runs"`
	ThisMonthDistKm    float64    `json:"this_month_distance_km"`
	LastRun            *time.Time `json:"last_run,omitempty"`
	LongestRunKm       float64    `json:"longest_run_km"`
	LongestRunMiles    float64    `json:"longest_run_miles"`
}

type WeeklyRuns struct {
	WeekStart     string  `json:"week_start"`
	Runs          int     `json:"runs"`
	DistanceKm    float64 `json:"distance_km"`
	DistanceMiles float64 `json:"distance_miles"`
}
