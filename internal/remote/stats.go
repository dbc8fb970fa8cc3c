package remote

import (
	"fmt"
	"math"
	"time"

	"github.com/dukerupert/dauphindash/internal/datekey"
	"github.com/dukerupert/dauphindash/internal/model"
)

const (
	metersPerKm   = 1000.0
	metersPerMile = 1609.34
	feetPerMeter  = 3.28084
)

const localLayout = "2006-01-02T15:04:05"

// localStart reads start_date_local as a wall-clock time in loc.
func localStart(a model.StravaActivity, loc *time.Location) time.Time {
	if len(a.StartDateLocal) >= len(localLayout) {
		if t, err := time.ParseInLocation(localLayout, a.StartDateLocal[:len(localLayout)], loc); err == nil {
			return t
		}
	}
	return a.StartDate.In(loc)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Pace formats seconds per unit distance as m:ss. Zero distance is "0:00".
func Pace(meters float64, seconds int, unitMeters float64) string {
	if meters <= 0 {
		return "0:00"
	}
	perUnit := float64(seconds) / (meters / unitMeters)
	total := int(perUnit)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// RunningStats summarises the runs among activities as of now. It returns nil
// when there are no runs.
func RunningStats(activities []model.StravaActivity, now time.Time) *model.RunningStats {
	loc := now.Location()
	weekAgo := now.AddDate(0, 0, -7)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	var (
		stats                        model.RunningStats
		distance, elevation, longest float64
		seconds                      int
		weekDistance, monthDistance  float64
		last                         time.Time
	)
	for _, a := range activities {
		if !a.IsRun() {
			continue
		}
		start := localStart(a, loc)
		stats.TotalRuns++
		distance += a.Distance
		seconds += a.MovingTime
		elevation += a.TotalElevationGain
		if a.Distance > longest {
			longest = a.Distance
		}
		if !start.Before(weekAgo) {
			stats.ThisWeekRuns++
			weekDistance += a.Distance
		}
		if !start.Before(monthStart) {
			stats.ThisMonthRuns++
			monthDistance += a.Distance
		}
		if start.After(last) {
			last = start
		}
	}
	if stats.TotalRuns == 0 {
		return nil
	}

	n := float64(stats.TotalRuns)
	stats.TotalDistanceKm = round(distance/metersPerKm, 1)
	stats.TotalDistanceMiles = round(distance/metersPerMile, 1)
	stats.TotalTimeHours = round(float64(seconds)/3600, 1)
	stats.TotalElevationM = round(elevation, 0)
	stats.TotalElevationFt = round(elevation*feetPerMeter, 0)
	stats.AvgDistanceKm = round(distance/metersPerKm/n, 1)
	stats.AvgDistanceMiles = round(distance/metersPerMile/n, 1)
	stats.AvgPacePerKm = Pace(distance, seconds, metersPerKm)
	stats.AvgPacePerMile = Pace(distance, seconds, metersPerMile)
	stats.ThisWeekDistanceKm = round(weekDistance/metersPerKm, 1)
	stats.ThisMonthDistKm = round(monthDistance/metersPerKm, 1)
	stats.LastRun = &last
	stats.LongestRunKm = round(longest/metersPerKm, 2)
	stats.LongestRunMiles = round(longest/metersPerMile, 2)
	return &stats
}

// WeeklyRunSeries buckets runs into trailing 7-day weeks ending today, oldest first.
func WeeklyRunSeries(activities []model.StravaActivity, now time.Time, weeks int) []model.WeeklyRuns {
	if weeks <= 0 {
		return nil
	}
	today := datekey.Midnight(now)
	out := make([]model.WeeklyRuns, weeks)
	starts := make([]time.Time, weeks)
	for i := range out {
		starts[i] = datekey.AddDays(today, -(weeks-1-i)*7-6)
		out[i].WeekStart = datekey.Key(starts[i])
	}
	end := datekey.AddDays(today, 1)

	for _, a := range activities {
		if !a.IsRun() {
			continue
		}
		start := localStart(a, now.Location())
		if start.Before(starts[0]) || !start.Before(end) {
			continue
		}
		i := weeks - 1
		for i > 0 && start.Before(starts[i]) {
			i--
		}
		out[i].Runs++
		out[i].DistanceKm += a.Distance / metersPerKm
		out[i].DistanceMiles += a.Distance / metersPerMile
	}
	for i := range out {
		out[i].DistanceKm = round(out[i].DistanceKm, 2)
		out[i].DistanceMiles = round(out[i].DistanceMiles, 2)
	}
	return out
}
