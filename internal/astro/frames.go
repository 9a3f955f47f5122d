package astro

import (
	"math"
)

// AU is the Astronomical Unit in kilometers.
const AU = 149597870.7

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the scalar product of two vectors.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// ToCartesian converts spherical equatorial coordinates to a cartesian
// vector. RA is in hours, declination in degrees; the result has length dist.
func ToCartesian(raHours, decDeg, dist float64) Vec3 {
	ra := ToRadians(HoursToDegrees(raHours))
	dec := ToRadians(decDeg)
	return Vec3{
		X: dist * math.Cos(dec) * math.Cos(ra),
		Y: dist * math.Cos(dec) * math.Sin(ra),
		Z: dist * math.Sin(dec),
	}
}

// AngleBetween returns the angle between two vectors in degrees.
// Returns 0 when either vector has zero length.
func AngleBetween(a, b Vec3) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return ToDegrees(math.Acos(clamp(a.Dot(b)/(na*nb), -1, 1)))
}

// EquatorialFromVec returns the right ascension (degrees, 0-360) and
// declination (degrees) of an equatorial vector.
func EquatorialFromVec(v Vec3) (raDeg, decDeg float64) {
	r := v.Norm()
	if r == 0 {
		return 0, 0
	}
	return normalizeAngle360(ToDegrees(math.Atan2(v.Y, v.X))),
		ToDegrees(math.Asin(clamp(v.Z/r, -1, 1)))
}

// AUToKm converts Astronomical Units to kilometers.
func AUToKm(au float64) float64 {
	return au * AU
}

// EclipticLatitude returns the ecliptic latitude in degrees for a vector.
func EclipticLatitude(v Vec3) float64 {
	r := v.Norm()
	if r == 0 {
		return 0
	}
	return ToDegrees(math.Asin(v.Z / r))
}

// EclipticLongitude returns the ecliptic longitude in degrees for a vector.
func EclipticLongitude(v Vec3) float64 {
	lon := ToDegrees(math.Atan2(v.Y, v.X))
	if lon < 0 {
		lon += 360
	}
	return lon
}

// Obliquity is the Earth's axial tilt (J2000 epoch) in radians.
const obliquityRad = 23.439291 * math.Pi / 180

// EclipticToEquatorial converts ecliptic XYZ to equatorial XYZ (J2000).
func EclipticToEquatorial(ecl Vec3) Vec3 {
	return rotateX(ecl, -obliquityRad)
}

// rotateX rotates the frame about the X axis by angle radians.
func rotateX(v Vec3, angle float64) Vec3 {
	cosE := math.Cos(angle)
	sinE := math.Sin(angle)

	return Vec3{
		X: v.X,
		Y: v.Y*cosE + v.Z*sinE,
		Z: -v.Y*sinE + v.Z*cosE,
	}
}

// eclipticVec builds an ecliptic vector from longitude/latitude in degrees.
func eclipticVec(lonDeg, latDeg, dist float64) Vec3 {
	lon := ToRadians(lonDeg)
	lat := ToRadians(latDeg)
	return Vec3{
		X: dist * math.Cos(lat) * math.Cos(lon),
		Y: dist * math.Cos(lat) * math.Sin(lon),
		Z: dist * math.Sin(lat),
	}
}
