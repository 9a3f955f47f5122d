package astro

import (
	"math"
	"time"
)

// Status classifies how observable an object is at one instant.
type Status string

const (
	StatusNonVisible       Status = "non-visible"
	StatusPartiallyVisible Status = "partially-visible"
	StatusMasked           Status = "masked"
	StatusVisible          Status = "visible"
)

// Classification thresholds in degrees of altitude.
const (
	HorizonAltitude = 0.0
	VisibleAltitude = 20.0
)

// DefaultPadding is the number of hours sampled before and after a night.
const DefaultPadding = 2

const (
	maskSectorDeg   = 10.0
	maskSectorCount = 36
	trackStep       = 30 * time.Minute
	samplesPerHour  = int(time.Hour / trackStep)
)

// rank orders statuses for aggregation: visible > masked > partial > none.
func (s Status) rank() int {
	switch s {
	case StatusVisible:
		return 3
	case StatusMasked:
		return 2
	case StatusPartiallyVisible:
		return 1
	default:
		return 0
	}
}

// HorizonMask marks obstructed azimuth sectors. Sector i covers azimuths
// [10i, 10i+10) degrees. The zero value is an unobstructed horizon.
type HorizonMask [maskSectorCount]bool

// Masked reports whether the sector containing azDeg is obstructed.
func (m HorizonMask) Masked(azDeg float64) bool {
	i := int(math.Floor(normalizeAngle360(azDeg) / maskSectorDeg))
	if i >= maskSectorCount {
		i = maskSectorCount - 1
	}
	return m[i]
}

// Classify returns the visibility status of an object at the given apparent
// altitude and azimuth.
func Classify(altDeg, azDeg float64, mask HorizonMask) Status {
	switch {
	case altDeg < HorizonAltitude:
		return StatusNonVisible
	case mask.Masked(azDeg):
		return StatusMasked
	case altDeg < VisibleAltitude:
		return StatusPartiallyVisible
	default:
		return StatusVisible
	}
}

// AggregateStatus returns the best status in the list by the precedence
// visible > masked > partially-visible > non-visible. An empty list is
// non-visible.
func AggregateStatus(statuses ...Status) Status {
	best := StatusNonVisible
	for _, s := range statuses {
		if s.rank() > best.rank() {
			best = s
		}
	}
	return best
}

// Transform maps an equatorial position to azimuth and altitude for an
// observer and instant.
type Transform func(raDeg, decDeg float64, obs Observer, t time.Time) (azDeg, altDeg float64, err error)

// TrackSample is one half-hourly point of an altitude track.
type TrackSample struct {
	Index       int           // absolute position in the track
	Elapsed     time.Duration // offset from the padded window start
	Time        time.Time
	TimeOfDay   float64 // local hour of day, wraps at 24
	AltitudeDeg float64
	AzimuthDeg  float64
	Visibility  Status
}

// Track is the altitude curve of one object across a night, padded on
// both sides.
type Track struct {
	Samples        []TrackSample
	PaddingSamples int
	Total          int // samples attempted, including skipped ones
	Skipped        int // samples whose transform failed
}

// TrackRequest describes the window and object to sample.
type TrackRequest struct {
	Observer     Observer
	Start        time.Time
	End          time.Time
	RADeg        float64
	DecDeg       float64
	PaddingHours int
	Mask         HorizonMask
	Location     *time.Location // for TimeOfDay; nil means UTC
	Transform    Transform      // nil means Horizontal
}

// SampleTrack samples the object's altitude every 30 minutes over
// [Start-pad, End+pad). Samples whose transform fails are dropped, leaving
// a gap in the index sequence.
func SampleTrack(req TrackRequest) Track {
	transform := req.Transform
	if transform == nil {
		transform = Horizontal
	}
	loc := req.Location
	if loc == nil {
		loc = time.UTC
	}

	pad := req.PaddingHours
	if pad < 0 {
		pad = 0
	}
	hours := int(math.Ceil(req.End.Sub(req.Start).Hours()))
	if hours < 0 {
		hours = 0
	}
	n := samplesPerHour * (hours + 2*pad)

	windowStart := req.Start.Add(-time.Duration(pad) * time.Hour)
	track := Track{
		Samples:        make([]TrackSample, 0, n),
		PaddingSamples: samplesPerHour * pad,
		Total:          n,
	}

	for i := 0; i < n; i++ {
		elapsed := time.Duration(i) * trackStep
		at := windowStart.Add(elapsed)

		az, alt, err := transform(req.RADeg, req.DecDeg, req.Observer, at)
		if err != nil {
			track.Skipped++
			continue
		}

		track.Samples = append(track.Samples, TrackSample{
			Index:       i,
			Elapsed:     elapsed,
			Time:        at,
			TimeOfDay:   HourOfDay(at, loc),
			AltitudeDeg: alt,
			AzimuthDeg:  az,
			Visibility:  Classify(alt, az, req.Mask),
		})
	}

	return track
}

// interior reports whether a sample index lies outside the padding.
func (t Track) interior(idx int) bool {
	return idx >= t.PaddingSamples && idx < t.Total-t.PaddingSamples
}

// VisibleSamples counts the visible samples inside the unpadded window.
// Each sample stands for half an hour.
func (t Track) VisibleSamples() int {
	count := 0
	for _, s := range t.Samples {
		if s.Visibility == StatusVisible && t.interior(s.Index) {
			count++
		}
	}
	return count
}

// Status aggregates the classifications of the unpadded window.
func (t Track) Status() Status {
	best := StatusNonVisible
	for _, s := range t.Samples {
		if t.interior(s.Index) && s.Visibility.rank() > best.rank() {
			best = s.Visibility
		}
	}
	return best
}

// MaxAltitude returns the highest sampled altitude and when it occurred.
// ok is false for an empty track.
func (t Track) MaxAltitude() (sample TrackSample, ok bool) {
	for i, s := range t.Samples {
		if i == 0 || s.AltitudeDeg > sample.AltitudeDeg {
			sample = s
			ok = true
		}
	}
	return sample, ok
}

// ElevationTier categorizes elevation for UI display.
type ElevationTier int

const (
	ElevationNone   ElevationTier = iota // Below horizon
	ElevationLow                         // 0-20 degrees
	ElevationMedium                      // 20-45 degrees
	ElevationHigh                        // 45+ degrees
)

// GetElevationTier returns the tier for a given elevation.
func GetElevationTier(elDeg float64) ElevationTier {
	switch {
	case elDeg < HorizonAltitude:
		return ElevationNone
	case elDeg < VisibleAltitude:
		return ElevationLow
	case elDeg < 45:
		return ElevationMedium
	default:
		return ElevationHigh
	}
}
