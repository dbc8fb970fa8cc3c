// Package calendar builds week-aligned calendar grids for a period and
// tracks month/quarter navigation.
package calendar

import (
	"time"

	"github.com/dukerupert/dauphindash/internal/activity"
	"github.com/dukerupert/dauphindash/internal/datekey"
	"github.com/dukerupert/dauphindash/internal/model"
)

// Week is one grid row, Sunday through Saturday.
type Week [7]model.CalendarCell

// MonthLabel positions a month name above the first column that holds its
// first day.
type MonthLabel struct {
	Name   string `json:"name"`
	Month  int    `json:"month"`
	Offset int    `json:"offset_days"`
	Column int    `json:"column"`
	X      int    `json:"x"`
}

// Layout holds the pixel geometry used to turn columns into x offsets.
type Layout struct {
	CellSize int `json:"cell_size"`
	CellGap  int `json:"cell_gap"`
	LeftPad  int `json:"left_pad"`
	TopPad   int `json:"top_pad"`
}

// DefaultLayout matches the contribution graph's 12px cells with 3px gaps.
var DefaultLayout = Layout{CellSize: 12, CellGap: 3, LeftPad: 30, TopPad: 20}

// ColumnX returns the x offset of a week column.
func (l Layout) ColumnX(col int) int {
	return l.LeftPad + col*(l.CellSize+l.CellGap)
}

// RowY returns the y offset of a weekday row (Sunday = 0).
func (l Layout) RowY(weekday int) int {
	return l.TopPad + weekday*(l.CellSize+l.CellGap)
}

// Grid is the derived view of one period. It is never persisted.
type Grid struct {
	Period Period
	Weeks  []Week
	Labels []MonthLabel
	Layout Layout
}

// Cells returns every cell in row order.
func (g Grid) Cells() []model.CalendarCell {
	out := make([]model.CalendarCell, 0, len(g.Weeks)*7)
	for _, w := range g.Weeks {
		out = append(out, w[:]...)
	}
	return out
}

// Builder assembles grids. A nil Policy leaves cells unshaded; a zero Today
// marks no cell as today.
type Builder struct {
	Policy activity.Policy
	Layout Layout
	Today  time.Time
}

// Build is a convenience for an unshaded grid with the default layout.
func Build(p Period, s model.Store) Grid {
	return Builder{Layout: DefaultLayout}.Build(p, s)
}

// Build walks from the Sunday on or before the period start through the
// Saturday on or after its end, one cell per calendar day.
func (b Builder) Build(p Period, s model.Store) Grid {
	layout := b.Layout
	if layout == (Layout{}) {
		layout = DefaultLayout
	}

	first := GridStart(p.Start())
	last := GridEnd(p.End())

	todayKey := ""
	if !b.Today.IsZero() {
		todayKey = datekey.Key(b.Today)
	}

	g := Grid{Period: p, Layout: layout}
	var week Week
	for i := 0; ; i++ {
		d := datekey.AddDays(first, i)
		if d.After(last) {
			break
		}
		key := datekey.Key(d)
		rec := s.Get(key).Clone()
		cell := model.CalendarCell{
			Date:     d,
			DateKey:  key,
			Weekday:  int(d.Weekday()),
			Record:   rec,
			InPeriod: p.Contains(d),
			IsToday:  key == todayKey,
		}
		if b.Policy != nil {
			shade := b.Policy.Shade(rec)
			cell.Shade = &shade
		}

		// A rolling window that starts mid-month still names its first month
		// when the start falls within that month's first week.
		startsWindow := p.Kind == KindWindow && d.Equal(p.Start()) && d.Day() <= 7
		if cell.InPeriod && (d.Day() == 1 || startsWindow) {
			g.Labels = append(g.Labels, newLabel(d, i, layout))
		}

		week[cell.Weekday] = cell
		if cell.Weekday == int(time.Saturday) {
			g.Weeks = append(g.Weeks, week)
			week = Week{}
		}
	}
	return g
}

func newLabel(d time.Time, offset int, l Layout) MonthLabel {
	col := offset / 7
	return MonthLabel{
		Name:   monthNames[d.Month()-1][:3],
		Month:  int(d.Month()) - 1,
		Offset: offset,
		Column: col,
		X:      l.ColumnX(col),
	}
}

// GridStart returns the Sunday on or before t.
func GridStart(t time.Time) time.Time {
	d := datekey.Midnight(t)
	return datekey.AddDays(d, -int(d.Weekday()))
}

// GridEnd returns the Saturday on or after t.
func GridEnd(t time.Time) time.Time {
	d := datekey.Midnight(t)
	return datekey.AddDays(d, 6-int(d.Weekday()))
}

// WeeksBetween counts the week columns of a grid spanning start through end.
func WeeksBetween(start, end time.Time) int {
	if end.Before(start) {
		start, end = end, start
	}
	first := GridStart(start)
	last := GridEnd(end)
	n := 0
	for d := first; !d.After(last); d = datekey.AddDays(d, 7) {
		n++
	}
	return n
}
