package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/solar"
)

// SunPosition calculates the apparent geocentric equatorial coordinates of
// the Sun (Meeus chapter 25, low accuracy series).
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	ra, dec := solar.ApparentEquatorial(julianEphemerisDate(t))
	return normalizeAngle360(ra.Deg()), dec.Deg()
}

// SunDistanceAU returns the Earth-Sun distance in astronomical units.
func SunDistanceAU(t time.Time) float64 {
	return solar.Radius(base.J2000Century(julianEphemerisDate(t)))
}

// SunSeparation calculates the angular separation between the Sun and a target.
// Returns the separation angle in degrees.
func SunSeparation(targetRA, targetDec float64, t time.Time) float64 {
	sunRA, sunDec := SunPosition(t)
	return AngularSeparation(sunRA, sunDec, targetRA, targetDec)
}

// SunAltitude returns the geometric altitude of the Sun in degrees.
func SunAltitude(obs Observer, t time.Time) float64 {
	ra, dec := SunPosition(t)
	_, alt := geometricHorizontal(ra, dec, obs, t)
	return alt
}

// normalizeAngle360 normalizes an angle to 0-360 degrees.
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
