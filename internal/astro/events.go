package astro

import (
	"time"
)

// Event search parameters. Crossings are bracketed by a coarse scan and
// refined by bisection.
const (
	searchSpan      = 24 * time.Hour
	searchStep      = 10 * time.Minute
	searchTolerance = time.Second
)

// Events holds the next horizon crossings and upper transit of an object
// after a reference instant. A nil field means no such event was found
// within one day (circumpolar or never-rising objects).
type Events struct {
	Rise     *time.Time
	Set      *time.Time
	Meridian *time.Time
}

// SunEventKind selects which solar horizon crossing to search for.
type SunEventKind int

const (
	SunRise SunEventKind = iota
	SunSet
)

// String returns the kind name.
func (k SunEventKind) String() string {
	if k == SunRise {
		return "sunrise"
	}
	return "sunset"
}

// Sun altitude thresholds in degrees.
const (
	sunVisualThreshold = 0.0
	sunCivilThreshold  = -6.0
)

// crossing is the sign change searched for by findCrossing.
type crossing int

const (
	ascending crossing = iota
	descending
)

// SearchRiseSet finds the next rise, set and upper transit of a fixed
// position after t. Altitudes are geometric; rise and set are the 0°
// crossings and transit is the hour angle passing through zero.
func SearchRiseSet(obs Observer, t time.Time, raDeg, decDeg float64) Events {
	alt := func(at time.Time) float64 {
		_, a := geometricHorizontal(raDeg, decDeg, obs, at)
		return a
	}
	ha := func(at time.Time) float64 {
		return hourAngle(raDeg, obs, at)
	}

	return Events{
		Rise:     findCrossing(alt, t, searchSpan, ascending),
		Set:      findCrossing(alt, t, searchSpan, descending),
		Meridian: findCrossing(ha, t, searchSpan, ascending),
	}
}

// SearchSunEvent finds the next sunrise or sunset after t. With civil set
// the threshold is -6° (civil twilight), otherwise the geometric horizon.
func SearchSunEvent(obs Observer, t time.Time, kind SunEventKind, civil bool) *time.Time {
	threshold := sunVisualThreshold
	if civil {
		threshold = sunCivilThreshold
	}

	f := func(at time.Time) float64 {
		return SunAltitude(obs, at) - threshold
	}

	dir := descending
	if kind == SunRise {
		dir = ascending
	}
	return findCrossing(f, t, searchSpan, dir)
}

// Night is the sunset to sunrise bracket that anchors an altitude track.
type Night struct {
	Sunset  time.Time
	Sunrise time.Time
	Polar   bool // no sunset or sunrise found; bracket is t to t+12h
}

// polarNight is the fallback bracket length when the Sun does not cross
// the threshold.
const polarNight = 12 * time.Hour

// NightBracket returns the night containing t, or the coming night when the
// Sun is still up at t. The sunrise is the first one after the sunset.
func NightBracket(obs Observer, t time.Time, civil bool) Night {
	threshold := sunVisualThreshold
	if civil {
		threshold = sunCivilThreshold
	}

	from := t
	if SunAltitude(obs, t) < threshold {
		from = t.Add(-searchSpan)
	}

	set, rise := sunsetThenSunrise(obs, from, civil)
	if rise != nil && !rise.After(t) {
		// The look-back window reached the previous evening when the
		// days are shortening: skip to the sunset after that night.
		set, rise = sunsetThenSunrise(obs, *rise, civil)
	}
	if set == nil || rise == nil {
		return Night{Sunset: t, Sunrise: t.Add(polarNight), Polar: true}
	}

	return Night{Sunset: *set, Sunrise: *rise}
}

// sunsetThenSunrise returns the first sunset after from and the sunrise
// that follows it. Either is nil when the Sun does not cross the threshold.
func sunsetThenSunrise(obs Observer, from time.Time, civil bool) (set, rise *time.Time) {
	set = SearchSunEvent(obs, from, SunSet, civil)
	if set == nil {
		return nil, nil
	}
	return set, SearchSunEvent(obs, *set, SunRise, civil)
}

// Duration returns the length of the night.
func (n Night) Duration() time.Duration {
	return n.Sunrise.Sub(n.Sunset)
}

// findCrossing scans f over [start, start+span] and returns the first time
// f changes sign in the requested direction, refined to searchTolerance.
func findCrossing(f func(time.Time) float64, start time.Time, span time.Duration, dir crossing) *time.Time {
	prevT := start
	prev := f(prevT)

	for elapsed := searchStep; elapsed <= span; elapsed += searchStep {
		curT := start.Add(elapsed)
		cur := f(curT)

		if matches(prev, cur, dir) {
			at := bisect(f, prevT, curT, dir)
			return &at
		}
		prevT, prev = curT, cur
	}
	return nil
}

func matches(prev, cur float64, dir crossing) bool {
	if dir == ascending {
		return prev < 0 && cur >= 0
	}
	return prev >= 0 && cur < 0
}

// bisect narrows a bracketed sign change to searchTolerance.
func bisect(f func(time.Time) float64, lo, hi time.Time, dir crossing) time.Time {
	for hi.Sub(lo) > searchTolerance {
		mid := lo.Add(hi.Sub(lo) / 2)
		v := f(mid)

		below := v < 0
		if dir == descending {
			below = !below
		}
		if below {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo.Add(hi.Sub(lo) / 2).Round(time.Second)
}
