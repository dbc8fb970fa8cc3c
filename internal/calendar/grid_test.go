package calendar

import (
	"testing"
	"time"

	"github.com/dukerupert/dauphindash/internal/activity"
	"github.com/dukerupert/dauphindash/internal/datekey"
	"github.com/dukerupert/dauphindash/internal/model"
)

func checkGridShape(t *testing.T, g Grid) {
	t.Helper()
	cells := g.Cells()
	if len(cells) == 0 {
		t.Fatal("grid has no cells")
	}
	if len(cells)%7 != 0 {
		t.Errorf("%s: %d cells, not a multiple of 7", g.Period.Title(), len(cells))
	}
	if wd := cells[0].Date.Weekday(); wd != time.Sunday {
		t.Errorf("%s: first cell is %s", g.Period.Title(), wd)
	}
	if wd := cells[len(cells)-1].Date.Weekday(); wd != time.Saturday {
		t.Errorf("%s: last cell is %s", g.Period.Title(), wd)
	}
	seen := make(map[string]bool, len(cells))
	for i, c := range cells {
		if seen[c.DateKey] {
			t.Errorf("%s: duplicate date %s", g.Period.Title(), c.DateKey)
		}
		seen[c.DateKey] = true
		if c.Weekday != i%7 {
			t.Errorf("%s: cell %d (%s) weekday %d, want %d", g.Period.Title(), i, c.DateKey, c.Weekday, i%7)
		}
		if i > 0 && datekey.Shift(cells[i-1].DateKey, 1) != c.DateKey {
			t.Errorf("%s: gap between %s and %s", g.Period.Title(), cells[i-1].DateKey, c.DateKey)
		}
	}
}

func TestMonthGridsAlwaysAligned(t *testing.T) {
	locs := []*time.Location{time.UTC}
	if ny, err := time.LoadLocation("America/New_York"); err == nil {
		locs = append(locs, ny)
	}
	for _, loc := range locs {
		for year := 2023; year <= 2027; year++ {
			for m := 0; m < 12; m++ {
				g := Build(Month(year, m, loc), model.Store{})
				checkGridShape(t, g)
			}
		}
	}
}

func TestQuarterGridsAlwaysAligned(t *testing.T) {
	for year := 2023; year <= 2027; year++ {
		for q := 0; q < 4; q++ {
			checkGridShape(t, Build(Quarter(year, q, time.UTC), model.Store{}))
		}
	}
}

func TestMonthGridInPeriod(t *testing.T) {
	// October 2026 starts on a Thursday and ends on a Saturday.
	g := Build(Month(2026, 9, time.UTC), model.Store{})
	cells := g.Cells()
	if len(cells) != 35 {
		t.Fatalf("cells = %d, want 35", len(cells))
	}
	if cells[0].DateKey != "2026-09-27" {
		t.Errorf("first = %s, want 2026-09-27", cells[0].DateKey)
	}
	if cells[len(cells)-1].DateKey != "2026-10-31" {
		t.Errorf("last = %s, want 2026-10-31", cells[len(cells)-1].DateKey)
	}
	for _, c := range cells {
		want := c.Date.Month() == time.October && c.Date.Year() == 2026
		if c.InPeriod != want {
			t.Errorf("%s InPeriod = %v, want %v", c.DateKey, c.InPeriod, want)
		}
	}
}

func TestQuarterGridInPeriodAcrossYear(t *testing.T) {
	// Q1 2027 pads back into December 2026, which is outside the period even
	// though December is a month of Q4.
	g := Build(Quarter(2027, 0, time.UTC), model.Store{})
	cells := g.Cells()
	if cells[0].DateKey != "2026-12-27" {
		t.Errorf("first = %s, want 2026-12-27", cells[0].DateKey)
	}
	for _, c := range cells {
		want := c.Date.Year() == 2027 && c.Date.Month() <= time.March
		if c.InPeriod != want {
			t.Errorf("%s InPeriod = %v, want %v", c.DateKey, c.InPeriod, want)
		}
	}
}

func TestGridLooksUpRecords(t *testing.T) {
	s := model.Store{
		"2026-10-15": {LeetCode: 5, Workout: true},
		"2026-09-30": {Weight: model.Float(150)},
	}
	b := Builder{Policy: activity.DefaultWeighted(), Today: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	g := b.Build(Month(2026, 9, time.UTC), s)

	var today, pad *model.CalendarCell
	for _, w := range g.Weeks {
		for i := range w {
			c := w[i]
			switch c.DateKey {
			case "2026-10-15":
				today = &c
			case "2026-09-30":
				pad = &c
			}
		}
	}
	if today == nil || pad == nil {
		t.Fatal("expected cells missing")
	}
	if !today.IsToday {
		t.Error("2026-10-15 should be marked today")
	}
	if today.Shade == nil || today.Shade.Level != 4 {
		t.Errorf("today shade = %+v, want level 4", today.Shade)
	}
	if pad.InPeriod {
		t.Error("2026-09-30 is padding")
	}
	if !pad.Record.HasWeight() {
		t.Error("padding cell should still carry its record")
	}
}

func TestQuarterMonthLabels(t *testing.T) {
	g := Build(Quarter(2026, 3, time.UTC), model.Store{})
	if len(g.Labels) != 3 {
		t.Fatalf("labels = %d, want 3", len(g.Labels))
	}
	// Grid starts Sunday 2026-09-27.
	want := []MonthLabel{
		{Name: "Oct", Month: 9, Offset: 4, Column: 0, X: 30},
		{Name: "Nov", Month: 10, Offset: 35, Column: 5, X: 30 + 5*15},
		{Name: "Dec", Month: 11, Offset: 65, Column: 9, X: 30 + 9*15},
	}
	for i, w := range want {
		if g.Labels[i] != w {
			t.Errorf("label %d = %+v, want %+v", i, g.Labels[i], w)
		}
	}
}

func TestYearWindow(t *testing.T) {
	today := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)
	p := Year(today)
	if got := datekey.Key(p.Start()); got != "2025-10-15" {
		t.Errorf("start = %s, want 2025-10-15", got)
	}
	g := Build(p, model.Store{})
	checkGridShape(t, g)
	for _, c := range g.Cells() {
		want := c.DateKey >= "2025-10-15" && c.DateKey <= "2026-10-15"
		if c.InPeriod != want {
			t.Errorf("%s InPeriod = %v, want %v", c.DateKey, c.InPeriod, want)
		}
	}
	// Oct 2025 starts mid-month past its first week, so the first label is Nov.
	if len(g.Labels) == 0 || g.Labels[0].Name != "Nov" {
		t.Errorf("first label = %+v, want Nov", g.Labels)
	}
}

func TestWindowStartLabel(t *testing.T) {
	g := Build(Window(time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), 12), model.Store{})
	// Window 2026-10-04 .. 2026-10-15 starts in October's first week.
	if len(g.Labels) != 1 || g.Labels[0].Name != "Oct" {
		t.Errorf("labels = %+v, want [Oct]", g.Labels)
	}
}

func TestWeeksBetweenOneYear(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7*60; i++ {
		today := datekey.AddDays(start, i)
		p := Year(today)
		n := WeeksBetween(p.Start(), p.End())
		if n < 52 || n > 54 {
			t.Errorf("year ending %s: %d weeks", datekey.Key(today), n)
		}
		if g := Build(p, model.Store{}); len(g.Weeks) != n {
			t.Errorf("year ending %s: grid has %d weeks, WeeksBetween %d", datekey.Key(today), len(g.Weeks), n)
		}
	}
}
