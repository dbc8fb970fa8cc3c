package calendar

import (
	"fmt"
	"time"
)

// Navigable years. Keys outside this range do not format as four digits.
const (
	MinYear = 1
	MaxYear = 9999
)

// Navigator is the (period index, year) state behind the prev/next buttons.
// Stepping past the last period of a year rolls into period 0 of the next
// year and vice versa.
type Navigator struct {
	View  Kind `json:"view"`
	Index int  `json:"index"`
	Year  int  `json:"year"`
}

// NavigatorFor starts on the period containing today.
func NavigatorFor(view Kind, today time.Time) (Navigator, error) {
	switch view {
	case KindMonth:
		return Navigator{View: KindMonth, Index: int(today.Month()) - 1, Year: today.Year()}, nil
	case KindQuarter:
		return Navigator{View: KindQuarter, Index: (int(today.Month()) - 1) / 3, Year: today.Year()}, nil
	default:
		return Navigator{}, fmt.Errorf("view %q has no navigation", view)
	}
}

func (n Navigator) periods() int {
	if n.View == KindQuarter {
		return 4
	}
	return 12
}

// Valid reports whether the index is in range for the view and the year is
// navigable.
func (n Navigator) Valid() bool {
	if n.View != KindMonth && n.View != KindQuarter {
		return false
	}
	if n.Year < MinYear || n.Year > MaxYear {
		return false
	}
	return n.Index >= 0 && n.Index < n.periods()
}

// Next advances one period.
func (n *Navigator) Next() {
	n.Index++
	if n.Index >= n.periods() {
		n.Index = 0
		n.Year++
	}
}

// Prev retreats one period.
func (n *Navigator) Prev() {
	n.Index--
	if n.Index < 0 {
		n.Index = n.periods() - 1
		n.Year--
	}
}

// Step moves by delta periods in either direction. The index must already
// be in range.
func (n *Navigator) Step(delta int) {
	p := n.periods()
	idx := n.Index + delta%p
	years := delta / p
	switch {
	case idx >= p:
		idx -= p
		years++
	case idx < 0:
		idx += p
		years--
	}
	n.Index = idx
	n.Year += years
}

// Period returns the calendar period for the current state.
func (n Navigator) Period(loc *time.Location) Period {
	if n.View == KindQuarter {
		return Quarter(n.Year, n.Index, loc)
	}
	return Month(n.Year, n.Index, loc)
}
