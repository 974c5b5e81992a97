package tracker

import (
	"testing"

	"github.com/picklepulse/pulse/internal/model"
)

func TestComputeAverages(t *testing.T) {
	entries := []model.CheckIn{
		{SleepHours: 6, Hunger: 3, Soreness: 2, Performance: 4},
		{SleepHours: 8, Hunger: 5, Soreness: 4, Performance: 2},
	}

	got := computeAverages(entries)
	want := Averages{Sleep: 7.0, Hunger: 4.0, Soreness: 3.0, Performance: 3.0}
	if got != want {
		t.Errorf("computeAverages = %+v, want %+v", got, want)
	}
}

func TestComputeAveragesEmpty(t *testing.T) {
	got := computeAverages(nil)
	if got != (Averages{}) {
		t.Errorf("expected zero sentinel for no data, got %+v", got)
	}
}

func TestComputeAveragesNullAsZero(t *testing.T) {
	// A record with an absent sleep value decodes to 0 but still counts
	// toward the denominator.
	entries := []model.CheckIn{
		{SleepHours: 8, Hunger: 4, Soreness: 2, Performance: 4},
		{SleepHours: 0, Hunger: 4, Soreness: 2, Performance: 4},
	}

	got := computeAverages(entries)
	if got.Sleep != 4.0 {
		t.Errorf("expected zero-valued record to drag average to 4.0, got %g", got.Sleep)
	}
}

func TestRound1(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{7.25, 7.3},
		{7.24, 7.2},
		{7.35, 7.4},
		{0, 0},
		{4.999, 5.0},
	}
	for _, c := range cases {
		if got := round1(c.in); got != c.want {
			t.Errorf("round1(%g) = %g, want %g", c.in, got, c.want)
		}
	}
}

func TestValidWindow(t *testing.T) {
	for _, w := range Windows {
		if !ValidWindow(w) {
			t.Errorf("expected %d to be a valid window", w)
		}
	}
	for _, w := range []int{0, 1, 6, 15, 31, -7} {
		if ValidWindow(w) {
			t.Errorf("expected %d to be rejected", w)
		}
	}
}
