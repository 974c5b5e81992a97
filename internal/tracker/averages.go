package tracker

import (
	"math"

	"github.com/picklepulse/pulse/internal/model"
)

// Windows are the selectable averaging windows in trailing days.
var Windows = []int{7, 14, 30}

// ValidWindow reports whether w is a selectable averaging window.
func ValidWindow(w int) bool {
	for _, v := range Windows {
		if v == w {
			return true
		}
	}
	return false
}

// Averages holds the per-metric rolling averages for a window. The zero
// value is the defined sentinel for "no data in window"; callers
// distinguish it from "still loading" with their own loading flag, never
// by value.
type Averages struct {
	Sleep       float64
	Hunger      float64
	Soreness    float64
	Performance float64
}

// computeAverages returns the arithmetic mean of each metric across the
// given check-ins, rounded half-away-from-zero to one decimal place.
//
// A metric that was stored as null decodes to 0 and is summed as 0 while
// its record still counts toward the denominator. That biases averages
// downward when fields are absent, but it is the behavior users have
// relied on; changing it would silently shift historical numbers.
func computeAverages(entries []model.CheckIn) Averages {
	if len(entries) == 0 {
		return Averages{}
	}

	var sleep, hunger, soreness, performance float64
	for _, e := range entries {
		sleep += e.SleepHours
		hunger += float64(e.Hunger)
		soreness += float64(e.Soreness)
		performance += float64(e.Performance)
	}

	n := float64(len(entries))
	return Averages{
		Sleep:       round1(sleep / n),
		Hunger:      round1(hunger / n),
		Soreness:    round1(soreness / n),
		Performance: round1(performance / n),
	}
}

// round1 rounds to one decimal place, half away from zero.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
