package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/solar"
)

// earthRadiusKm is the equatorial radius used for the parallax correction.
const earthRadiusKm = 6378.14

// moonImageBuckets is the number of phase images, one per 15° of phase.
const moonImageBuckets = 24

// moonGeocentricVec returns the apparent geocentric equatorial position of
// the Moon in kilometers (Meeus chapter 47, nutation applied).
func moonGeocentricVec(t time.Time) Vec3 {
	jde := julianEphemerisDate(t)
	lon, lat, distKm := moonposition.Position(jde)
	dPsi, dEps := nutation.Nutation(jde)
	eps := nutation.MeanObliquity(jde) + dEps

	ecl := eclipticVec(lon.Deg()+dPsi.Deg(), lat.Deg(), distKm)
	return rotateX(ecl, -eps.Rad())
}

// sunGeocentricVec returns the apparent geocentric equatorial position of
// the Sun in kilometers.
func sunGeocentricVec(t time.Time) Vec3 {
	ra, dec := SunPosition(t)
	return ToCartesian(DegreesToHours(ra), dec, AUToKm(SunDistanceAU(t)))
}

// observerVec returns the observer's position relative to the Earth's
// centre in the equatorial frame of date, in kilometers. Elevation is
// ignored and the Earth is treated as a sphere.
func observerVec(obs Observer, t time.Time) Vec3 {
	lst := ToRadians(localSiderealTime(t, obs.LonDeg))
	lat := ToRadians(obs.LatDeg)
	return Vec3{
		X: earthRadiusKm * math.Cos(lat) * math.Cos(lst),
		Y: earthRadiusKm * math.Cos(lat) * math.Sin(lst),
		Z: earthRadiusKm * math.Sin(lat),
	}
}

// MoonPosition returns the apparent geocentric right ascension and
// declination of the Moon in degrees, and its distance in kilometers.
func MoonPosition(t time.Time) (raDeg, decDeg, distKm float64) {
	v := moonGeocentricVec(t)
	raDeg, decDeg = EquatorialFromVec(v)
	return raDeg, decDeg, v.Norm()
}

// MoonTopocentric returns the Moon's position as seen from the observer,
// corrected for parallax.
func MoonTopocentric(obs Observer, t time.Time) (raDeg, decDeg, distKm float64) {
	v := moonGeocentricVec(t).Sub(observerVec(obs, t))
	raDeg, decDeg = EquatorialFromVec(v)
	return raDeg, decDeg, v.Norm()
}

// MoonIllumination returns the illuminated percentage of the lunar disc
// together with the angle between the Moon and Sun as seen by the observer.
func MoonIllumination(obs Observer, t time.Time) (pct, phaseAngleDeg float64) {
	o := observerVec(obs, t)
	moon := moonGeocentricVec(t).Sub(o)
	sun := sunGeocentricVec(t).Sub(o)

	phaseAngleDeg = AngleBetween(moon, sun)
	return IlluminationFromPhaseAngle(phaseAngleDeg), phaseAngleDeg
}

// IlluminationFromPhaseAngle converts the Moon-Sun angle into an illuminated
// percentage: 0 at 0°, 50 at 90°, 100 at 180°.
func IlluminationFromPhaseAngle(angleDeg float64) float64 {
	return 0.5 * (1 - math.Cos(ToRadians(angleDeg))) * 100
}

// MoonPhaseLongitude returns the difference between the apparent ecliptic
// longitudes of the Moon and the Sun in degrees (0 new, 90 first quarter,
// 180 full, 270 last quarter).
func MoonPhaseLongitude(t time.Time) float64 {
	jde := julianEphemerisDate(t)
	moonLon, _, _ := moonposition.Position(jde)
	dPsi, _ := nutation.Nutation(jde)
	sunLon := solar.ApparentLongitude(base.J2000Century(jde))

	return normalizeAngle360(moonLon.Deg() + dPsi.Deg() - sunLon.Deg())
}

// MoonImageIndex maps a phase longitude to one of 24 image buckets.
func MoonImageIndex(phaseDeg float64) int {
	idx := int(math.Floor(normalizeAngle360(phaseDeg) / (360.0 / moonImageBuckets)))
	if idx >= moonImageBuckets {
		idx = moonImageBuckets - 1
	}
	return idx
}
