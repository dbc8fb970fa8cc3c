package dashboard

import (
	"fmt"

	"github.com/dukerupert/dauphindash/internal/calendar"
	"github.com/dukerupert/dauphindash/internal/datekey"
	"github.com/dukerupert/dauphindash/internal/model"
	"github.com/dukerupert/dauphindash/internal/streak"
	"github.com/dukerupert/dauphindash/internal/trend"
)

// CalendarView is the JSON view model of one calendar grid.
type CalendarView struct {
	View      calendar.Kind         `json:"view"`
	Title     string                `json:"title"`
	Year      int                   `json:"year"`
	Index     int                   `json:"index"`
	Start     string                `json:"start"`
	End       string                `json:"end"`
	Today     string                `json:"today"`
	Policy    string                `json:"policy"`
	WeekCount int                   `json:"week_count"`
	Weeks     []calendar.Week       `json:"weeks"`
	Labels    []calendar.MonthLabel `json:"labels"`
	Layout    calendar.Layout       `json:"layout"`
	Prev      *calendar.Navigator   `json:"prev,omitempty"`
	Next      *calendar.Navigator   `json:"next,omitempty"`
}

// Navigator returns the navigation state for view starting at today's period.
func (d *Dashboard) Navigator(view calendar.Kind) (calendar.Navigator, error) {
	return calendar.NavigatorFor(view, d.Today())
}

// Calendar builds the month or quarter grid the navigator points at.
func (d *Dashboard) Calendar(nav calendar.Navigator) (CalendarView, error) {
	if !nav.Valid() {
		return CalendarView{}, fmt.Errorf("invalid %s index %d", nav.View, nav.Index)
	}
	v := d.build(nav.Period(d.loc))
	prev, next := nav, nav
	prev.Prev()
	next.Next()
	v.Prev, v.Next = &prev, &next
	return v, nil
}

// YearCalendar builds the rolling one-year grid ending today.
func (d *Dashboard) YearCalendar() CalendarView {
	return d.build(calendar.Year(d.Today()))
}

func (d *Dashboard) build(p calendar.Period) CalendarView {
	today := d.Today()

	d.mu.RLock()
	b := calendar.Builder{Policy: d.policy, Layout: calendar.DefaultLayout, Today: today}
	grid := b.Build(p, d.store)
	policy := d.policy.Name()
	d.mu.RUnlock()

	return CalendarView{
		View:      p.Kind,
		Title:     p.Title(),
		Year:      p.Year,
		Index:     p.Index,
		Start:     datekey.Key(p.Start()),
		End:       datekey.Key(p.End()),
		Today:     datekey.Key(today),
		Policy:    policy,
		WeekCount: len(grid.Weeks),
		Weeks:     grid.Weeks,
		Labels:    grid.Labels,
		Layout:    grid.Layout,
	}
}

// Stats is the summary panel: today's record, trends against the previous
// reading or week, pacing toward goals, and streaks.
type Stats struct {
	Date  string          `json:"date"`
	Today model.DayRecord `json:"today"`
	Goals model.Goals     `json:"goals"`

	CurrentWeight  *trend.WeightReading `json:"current_weight,omitempty"`
	PreviousWeight *trend.WeightReading `json:"previous_weight,omitempty"`
	WeightTrend    model.TrendResult    `json:"weight_trend"`
	ToGoal         *float64             `json:"to_goal,omitempty"`

	CodingThisWeek int               `json:"coding_this_week"`
	CodingLastWeek int               `json:"coding_last_week"`
	CodingTrend    model.TrendResult `json:"coding_trend"`
	CodingTotal    int               `json:"coding_total"`

	WorkoutsThisWeek int               `json:"workouts_this_week"`
	DaysElapsed      int               `json:"days_elapsed"`
	WorkoutPace      model.TrendResult `json:"workout_pace"`
	CurrentStreak    int               `json:"current_streak"`
	LongestStreak    int               `json:"longest_streak"`

	DaysTracked int `json:"days_tracked"`
}

func (d *Dashboard) Stats() Stats {
	today := d.Today()

	d.mu.RLock()
	defer d.mu.RUnlock()
	s := d.store

	st := Stats{
		Date:  datekey.Key(today),
		Today: s.Get(datekey.Key(today)).Clone(),
		Goals: d.goals,
		WeightTrend: model.TrendResult{
			Direction: model.DirectionNone,
			Color:     model.ColorNeutral,
		},
	}

	if cur := trend.MostRecentWeight(s); cur != nil {
		st.CurrentWeight = cur
		st.PreviousWeight = trend.PreviousWeight(s, cur.Date)
		var prev *float64
		if st.PreviousWeight != nil {
			prev = &st.PreviousWeight.Weight
		}
		st.WeightTrend = trend.Weight(cur.Weight, prev, d.goals.Weight)
		toGoal := cur.Weight - d.goals.Weight
		st.ToGoal = &toGoal
	}

	st.CodingThisWeek, st.CodingLastWeek = trend.WeeklyCoding(s, today)
	st.CodingTrend = trend.Compare(st.CodingThisWeek, st.CodingLastWeek)
	st.CodingTotal = trend.TotalCoding(s)

	st.WorkoutsThisWeek = trend.WorkoutsThisWeek(s, today)
	st.DaysElapsed = trend.DaysElapsed(today)
	st.WorkoutPace = trend.WorkoutPace(st.WorkoutsThisWeek, d.goals.WorkoutsPerWeek, st.DaysElapsed)
	st.CurrentStreak = streak.Current(s, today)
	st.LongestStreak = streak.Longest(s)

	for _, rec := range s {
		if !rec.IsZero() {
			st.DaysTracked++
		}
	}
	return st
}

// Charts holds the series behind the weight, coding and workout charts.
type Charts struct {
	Weeks  []trend.WeekBucket    `json:"weeks"`
	Weight []trend.WeightReading `json:"weight"`
}

// Charts returns the last weeks of weekly buckets. Non-positive weeks uses
// the default.
func (d *Dashboard) Charts(weeks int) Charts {
	if weeks <= 0 {
		weeks = trend.DefaultChartWeeks
	}
	today := d.Today()

	d.mu.RLock()
	defer d.mu.RUnlock()
	return Charts{
		Weeks:  trend.WeeklyBuckets(d.store, today, weeks),
		Weight: trend.WeightSeries(d.store),
	}
}
