package calendar

import (
	"testing"
	"time"
)

func TestQuarterNavigationWraps(t *testing.T) {
	n := Navigator{View: KindQuarter, Index: 2, Year: 2026}
	for i := 0; i < 4; i++ {
		n.Next()
	}
	if n.Index != 2 || n.Year != 2027 {
		t.Errorf("after 4x Next = %+v, want index 2 year 2027", n)
	}
}

func TestMonthNavigationWraps(t *testing.T) {
	n := Navigator{View: KindMonth, Index: 11, Year: 2026}
	n.Next()
	if n.Index != 0 || n.Year != 2027 {
		t.Errorf("Next from Dec = %+v", n)
	}
	n.Prev()
	if n.Index != 11 || n.Year != 2026 {
		t.Errorf("Prev from Jan = %+v", n)
	}

	n = Navigator{View: KindQuarter, Index: 0, Year: 2026}
	n.Prev()
	if n.Index != 3 || n.Year != 2025 {
		t.Errorf("Prev from Q1 = %+v", n)
	}
}

func TestNavigatorStep(t *testing.T) {
	n := Navigator{View: KindMonth, Index: 9, Year: 2026}
	n.Step(-22)
	if n.Index != 11 || n.Year != 2024 {
		t.Errorf("Step(-22) = %+v, want index 11 year 2024", n)
	}
	n.Step(22)
	if n.Index != 9 || n.Year != 2026 {
		t.Errorf("Step(22) = %+v, want index 9 year 2026", n)
	}
}

func TestNavigatorLargeStep(t *testing.T) {
	n := Navigator{View: KindMonth, Index: 0, Year: 2026}
	n.Step(1 << 62)
	// 2^62 = 12*384307168202282325 + 4
	if n.Index != 4 || n.Year != 2026+384307168202282325 {
		t.Errorf("Step(1<<62) = %+v", n)
	}
	if n.Valid() {
		t.Error("far-future navigator should not be valid")
	}

	n = Navigator{View: KindQuarter, Index: 1, Year: 2026}
	n.Step(-4001)
	if n.Index != 0 || n.Year != 1026 {
		t.Errorf("Step(-4001) = %+v, want index 0 year 1026", n)
	}
}

func TestNavigatorStepMatchesNext(t *testing.T) {
	for _, view := range []Kind{KindMonth, KindQuarter} {
		for delta := -30; delta <= 30; delta++ {
			want := Navigator{View: view, Index: 1, Year: 2026}
			for i := 0; i < delta; i++ {
				want.Next()
			}
			for i := 0; i > delta; i-- {
				want.Prev()
			}
			got := Navigator{View: view, Index: 1, Year: 2026}
			got.Step(delta)
			if got != want {
				t.Errorf("%s Step(%d) = %+v, want %+v", view, delta, got, want)
			}
		}
	}
}

func TestNavigatorValidYear(t *testing.T) {
	for _, year := range []int{MinYear - 1, MaxYear + 1} {
		if (Navigator{View: KindMonth, Index: 0, Year: year}).Valid() {
			t.Errorf("year %d should be invalid", year)
		}
	}
	if !(Navigator{View: KindMonth, Index: 11, Year: MaxYear}).Valid() {
		t.Error("December of the last navigable year should be valid")
	}
}

func TestNavigatorFor(t *testing.T) {
	today := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)

	m, err := NavigatorFor(KindMonth, today)
	if err != nil || m.Index != 9 || m.Year != 2026 {
		t.Errorf("month navigator = %+v, %v", m, err)
	}
	q, err := NavigatorFor(KindQuarter, today)
	if err != nil || q.Index != 3 || q.Year != 2026 {
		t.Errorf("quarter navigator = %+v, %v", q, err)
	}
	if _, err := NavigatorFor(KindWindow, today); err == nil {
		t.Error("expected error for window navigation")
	}

	p := q.Period(time.UTC)
	if p.Title() != "Q4 2026" {
		t.Errorf("title = %q", p.Title())
	}
	if got := m.Period(time.UTC).Title(); got != "October 2026" {
		t.Errorf("title = %q", got)
	}
}

func TestNavigatorValid(t *testing.T) {
	if (Navigator{View: KindQuarter, Index: 4}).Valid() {
		t.Error("quarter 4 should be invalid")
	}
	if !(Navigator{View: KindMonth, Index: 11}).Valid() {
		t.Error("month 11 should be valid")
	}
	if (Navigator{View: KindWindow}).Valid() {
		t.Error("window view should be invalid")
	}
}
