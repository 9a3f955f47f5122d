// Package schedule lays out an observing session: each target's slot on
// the 24-hour clock and the exposure plan sent to the imaging rig.
package schedule

import (
	"math"
	"time"
)

const hoursPerDay = 24.0

// Window is a target's slot on the wraparound clock, in hours [0, 24).
// End is less than Start when the slot crosses midnight.
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Crosses reports whether the window spans midnight.
func (w Window) Crosses() bool {
	return w.End < w.Start
}

// ComputeWindows lays targets end to end from startHour. durations are in
// hours; delays[i] is the pause before target i and may be shorter than
// durations. The running offset is only reduced mod 24 when read, so
// ordering survives midnight.
func ComputeWindows(startHour float64, durations []float64, delays []time.Duration) []Window {
	windows := make([]Window, len(durations))
	cumulative := startHour

	for i, dur := range durations {
		delay := 0.0
		if i < len(delays) {
			delay = delays[i].Hours()
		}

		windows[i] = Window{
			Start: wrap(cumulative + delay),
			End:   wrap(cumulative + delay + dur),
		}
		cumulative += dur + delay
	}

	return windows
}

// MaxDuration returns the hours from startHour until sunriseHour on the
// wraparound clock.
func MaxDuration(startHour, sunriseHour float64) float64 {
	return wrap(sunriseHour - startHour)
}

// wrap reduces h to [0, 24).
func wrap(h float64) float64 {
	h = math.Mod(h, hoursPerDay)
	if h < 0 {
		h += hoursPerDay
	}
	return h
}
