package calendar

import (
	"fmt"
	"time"

	"github.com/dukerupert/dauphindash/internal/datekey"
)

// Kind identifies how a period is bounded.
type Kind string

const (
	KindMonth   Kind = "month"
	KindQuarter Kind = "quarter"
	KindWindow  Kind = "window"
)

// Period is a displayed calendar range. Month and quarter periods compare by
// calendar month; windows cover an inclusive run of days.
type Period struct {
	Kind  Kind
	Year  int
	Index int // month 0-11 or quarter 0-3; unused for windows
	start time.Time
	end   time.Time
}

// Month returns the period for month (0 = January) of year.
func Month(year, index int, loc *time.Location) Period {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, time.Month(index+1), 1, 0, 0, 0, 0, loc)
	end := time.Date(year, time.Month(index+2), 0, 0, 0, 0, 0, loc)
	return Period{Kind: KindMonth, Year: year, Index: index, start: start, end: end}
}

// Quarter returns quarter q (0-3) of year.
func Quarter(year, q int, loc *time.Location) Period {
	if loc == nil {
		loc = time.Local
	}
	first := time.Month(q*3 + 1)
	start := time.Date(year, first, 1, 0, 0, 0, 0, loc)
	end := time.Date(year, first+3, 0, 0, 0, 0, 0, loc)
	return Period{Kind: KindQuarter, Year: year, Index: q, start: start, end: end}
}

// Window returns the rolling period of days ending on end, inclusive.
func Window(end time.Time, days int) Period {
	if days < 1 {
		days = 1
	}
	last := datekey.Midnight(end)
	first := datekey.AddDays(last, -(days - 1))
	return Period{Kind: KindWindow, Year: last.Year(), start: first, end: last}
}

// Year returns the rolling window from the same date one year ago through today.
func Year(today time.Time) Period {
	last := datekey.Midnight(today)
	first := last.AddDate(-1, 0, 0)
	return Period{Kind: KindWindow, Year: last.Year(), start: first, end: last}
}

// Start is the first day inside the period.
func (p Period) Start() time.Time { return p.start }

// End is the last day inside the period.
func (p Period) End() time.Time { return p.end }

// Contains reports whether the calendar day of t lies inside the period.
func (p Period) Contains(t time.Time) bool {
	switch p.Kind {
	case KindMonth, KindQuarter:
		y, m, _ := t.Date()
		if y != p.Year {
			return false
		}
		return !monthBefore(y, m, p.start) && !monthAfter(y, m, p.end)
	default:
		k := datekey.Key(t)
		return k >= datekey.Key(p.start) && k <= datekey.Key(p.end)
	}
}

func monthBefore(y int, m time.Month, ref time.Time) bool {
	ry, rm, _ := ref.Date()
	return y < ry || (y == ry && m < rm)
}

func monthAfter(y int, m time.Month, ref time.Time) bool {
	ry, rm, _ := ref.Date()
	return y > ry || (y == ry && m > rm)
}

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Title is the human heading for the period, e.g. "October 2026" or "Q4 2026".
func (p Period) Title() string {
	switch p.Kind {
	case KindMonth:
		return fmt.Sprintf("%s %d", monthNames[p.Index], p.Year)
	case KindQuarter:
		return fmt.Sprintf("Q%d %d", p.Index+1, p.Year)
	default:
		return fmt.Sprintf("%s to %s", datekey.Key(p.start), datekey.Key(p.end))
	}
}
