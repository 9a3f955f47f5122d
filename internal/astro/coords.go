// Package astro provides astronomical coordinate transformations and sky math.
package astro

import (
	"errors"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/refraction"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"
)

// ErrTransform is returned when an equatorial to horizontal transform
// produces a non-finite result (bad observer, bad coordinates, bad time).
var ErrTransform = errors.New("horizontal transform failed")

// deltaT is TT-UT in seconds, used to turn UT Julian dates into the
// ephemeris Julian dates the meeus series expect.
const deltaT = 69.2

// refractionFloor is the lowest true altitude, in degrees, at which
// atmospheric refraction is applied.
const refractionFloor = -1.0

// SkyCoord represents celestial coordinates with both equatorial (RA/Dec)
// and horizontal (Az/El) components.
type SkyCoord struct {
	// Equatorial coordinates
	RAdeg  float64 // Right Ascension in degrees (0-360)
	DecDeg float64 // Declination in degrees (-90 to +90)

	// Horizontal coordinates (observer-relative)
	AzDeg float64 // Azimuth in degrees (0=N, 90=E, 180=S, 270=W)
	ElDeg float64 // Elevation/Altitude in degrees (0=horizon, 90=zenith)

	// Distance (optional, for solar system bodies)
	RangeKm float64
}

// Observer represents a ground-based observer location.
type Observer struct {
	LatDeg     float64 // Latitude in degrees (north positive)
	LonDeg     float64 // Longitude in degrees (east positive)
	ElevationM float64 // Height above sea level, carried but treated as 0
	Name       string  // Optional name for the site
}

// EquatorialToHorizontal converts equatorial coordinates (RA/Dec) to horizontal
// coordinates (Az/El) for a given observer and time.
//
// The function preserves the input RA/Dec values and populates Az/El.
// Elevation is the apparent altitude: normal atmospheric refraction is added
// for true altitudes above -1°.
// Uses standard astronomical conventions:
//   - Azimuth: 0° = North, 90° = East, 180° = South, 270° = West
//   - Elevation: 0° = horizon, 90° = zenith
func EquatorialToHorizontal(eq SkyCoord, obs Observer, t time.Time) SkyCoord {
	az, alt := geometricHorizontal(eq.RAdeg, eq.DecDeg, obs, t)

	if alt > refractionFloor {
		alt += refraction.Saemundsson(unit.AngleFromDeg(alt)).Deg()
	}

	return SkyCoord{
		RAdeg:   eq.RAdeg,
		DecDeg:  eq.DecDeg,
		AzDeg:   az,
		ElDeg:   alt,
		RangeKm: eq.RangeKm,
	}
}

// Horizontal returns the apparent azimuth and altitude of an equatorial
// position, reporting ErrTransform instead of NaN or Inf results.
func Horizontal(raDeg, decDeg float64, obs Observer, t time.Time) (azDeg, altDeg float64, err error) {
	h := EquatorialToHorizontal(SkyCoord{RAdeg: raDeg, DecDeg: decDeg}, obs, t)
	if !finite(h.AzDeg) || !finite(h.ElDeg) {
		return 0, 0, ErrTransform
	}
	return h.AzDeg, h.ElDeg, nil
}

// geometricHorizontal returns the airless azimuth and altitude in degrees.
func geometricHorizontal(raDeg, decDeg float64, obs Observer, t time.Time) (azDeg, altDeg float64) {
	lat := ToRadians(obs.LatDeg)
	dec := ToRadians(decDeg)
	ha := ToRadians(hourAngle(raDeg, obs, t))

	sinAlt := math.Sin(dec)*math.Sin(lat) + math.Cos(dec)*math.Cos(lat)*math.Cos(ha)
	alt := math.Asin(clamp(sinAlt, -1, 1))

	// Azimuth from north through east
	az := math.Atan2(-math.Cos(dec)*math.Sin(ha),
		math.Sin(dec)*math.Cos(lat)-math.Cos(dec)*math.Sin(lat)*math.Cos(ha))

	return normalizeAngle360(ToDegrees(az)), ToDegrees(alt)
}

// hourAngle returns the local hour angle in degrees, normalized to (-180, 180].
func hourAngle(raDeg float64, obs Observer, t time.Time) float64 {
	ha := normalizeAngle360(localSiderealTime(t, obs.LonDeg) - raDeg)
	if ha > 180 {
		ha -= 360
	}
	return ha
}

// localSiderealTime calculates the apparent Local Sidereal Time in degrees
// for a given UTC time and observer longitude.
func localSiderealTime(t time.Time, lonDeg float64) float64 {
	return normalizeAngle360(greenwichSiderealTime(t) + lonDeg)
}

// greenwichSiderealTime returns apparent Greenwich sidereal time in degrees.
func greenwichSiderealTime(t time.Time) float64 {
	return normalizeAngle360(sidereal.Apparent(julianDate(t)).Angle().Deg())
}

// julianDate calculates the (UT) Julian Date for a given time.
func julianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// julianEphemerisDate returns the TT Julian Ephemeris Date for a UTC time.
func julianEphemerisDate(t time.Time) float64 {
	return julianDate(t) + deltaT/86400
}

// HourOfDay returns the local time of day in fractional hours (0-23.999)
// as hours + minutes/60 in the given location.
func HourOfDay(t time.Time, loc *time.Location) float64 {
	if loc != nil {
		t = t.In(loc)
	}
	return float64(t.Hour()) + float64(t.Minute())/60
}

// ToRadians converts degrees to radians.
func ToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToDegrees converts radians to degrees.
func ToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// HoursToDegrees converts a right ascension in hours to degrees.
func HoursToDegrees(h float64) float64 {
	return h * 15
}

// DegreesToHours converts a right ascension in degrees to hours.
func DegreesToHours(deg float64) float64 {
	return deg / 15
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
