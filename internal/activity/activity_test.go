package activity

import (
	"testing"

	"github.com/dukerupert/dauphindash/internal/model"
)

func TestWeightedScoreLevels(t *testing.T) {
	w := DefaultWeighted()
	tests := []struct {
		name      string
		rec       model.DayRecord
		wantScore float64
		wantLevel int
	}{
		{"empty", model.DayRecord{}, 0, 0},
		{"weight only", model.DayRecord{Weight: model.Float(150)}, 0.20, 1},
		{"workout only", model.DayRecord{Workout: true}, 0.25, 1},
		{"weight and workout", model.DayRecord{Weight: model.Float(150), Workout: true}, 0.45, 2},
		{"coding at cap", model.DayRecord{LeetCode: 5}, 0.55, 3},
		{"coding over cap", model.DayRecord{LeetCode: 12}, 0.55, 3},
		{"weight and full coding", model.DayRecord{Weight: model.Float(150), LeetCode: 5}, 0.75, 3},
		{"everything", model.DayRecord{Weight: model.Float(150), LeetCode: 5, Workout: true}, 1, 4},
		{"one problem", model.DayRecord{LeetCode: 1}, 0.11, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shade := w.Shade(tt.rec)
			if shade.Score != tt.wantScore {
				t.Errorf("score = %v, want %v", shade.Score, tt.wantScore)
			}
			if shade.Level != tt.wantLevel {
				t.Errorf("level = %d, want %d", shade.Level, tt.wantLevel)
			}
			if shade.Color != w.Colors[tt.wantLevel] {
				t.Errorf("color = %s, want %s", shade.Color, w.Colors[tt.wantLevel])
			}
		})
	}
}

func TestWeightedScoreMonotonic(t *testing.T) {
	w := DefaultWeighted()
	for _, hasWeight := range []bool{false, true} {
		for _, workout := range []bool{false, true} {
			for lc := 0; lc <= 8; lc++ {
				base := record(hasWeight, lc, workout)
				s := w.Score(base)

				if got := w.Score(record(true, lc, workout)); got < s {
					t.Errorf("adding weight lowered score: %v -> %v", s, got)
				}
				if got := w.Score(record(hasWeight, lc, true)); got < s {
					t.Errorf("adding workout lowered score: %v -> %v", s, got)
				}
				if got := w.Score(record(hasWeight, lc+1, workout)); got < s {
					t.Errorf("adding a problem lowered score: %v -> %v", s, got)
				}
				if s < 0 || s > 1 {
					t.Errorf("score %v out of range", s)
				}
			}
		}
	}
}

func record(weight bool, leetcode int, workout bool) model.DayRecord {
	rec := model.DayRecord{LeetCode: leetcode, Workout: workout}
	if weight {
		rec.Weight = model.Float(155)
	}
	return rec
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		rec        model.DayRecord
		wantCat    string
		wantMarker string
	}{
		{model.DayRecord{}, CategoryEmpty, ""},
		{model.DayRecord{Weight: model.Float(150)}, CategoryWeight, CategoryWeight},
		{model.DayRecord{LeetCode: 2}, CategoryCoding, CategoryCoding},
		{model.DayRecord{Workout: true}, CategoryWorkout, CategoryWorkout},
		{model.DayRecord{LeetCode: 1, Workout: true}, CategoryCombined, CategoryCoding},
		{model.DayRecord{Weight: model.Float(150), Workout: true}, CategoryCombined, CategoryWeight},
	}
	for _, tt := range tests {
		if got := Categorize(tt.rec); got != tt.wantCat {
			t.Errorf("Categorize(%+v) = %s, want %s", tt.rec, got, tt.wantCat)
		}
		if got := Marker(tt.rec); got != tt.wantMarker {
			t.Errorf("Marker(%+v) = %q, want %q", tt.rec, got, tt.wantMarker)
		}
	}
}

func TestZeroRecordMatchesAbsent(t *testing.T) {
	store := model.Store{"2026-10-14": {Weight: nil, LeetCode: 0, Workout: false}}
	for _, p := range []Policy{DefaultWeighted(), DefaultCategorical()} {
		present := p.Shade(store.Get("2026-10-14"))
		absent := p.Shade(store.Get("2026-10-15"))
		if present != absent {
			t.Errorf("%s: zero record %+v != absent %+v", p.Name(), present, absent)
		}
	}
}

func TestForName(t *testing.T) {
	p, err := ForName("", 3)
	if err != nil {
		t.Fatalf("default policy: %v", err)
	}
	w, ok := p.(Weighted)
	if !ok {
		t.Fatalf("default policy = %T, want Weighted", p)
	}
	if w.CodingCap != 3 {
		t.Errorf("coding cap = %d, want 3", w.CodingCap)
	}

	if p, err := ForName(PolicyCategorical, 0); err != nil || p.Name() != PolicyCategorical {
		t.Errorf("categorical = %v, %v", p, err)
	}
	if _, err := ForName("rainbow", 0); err == nil {
		t.Error("expected error for unknown policy")
	}
}
