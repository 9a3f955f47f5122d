package astro

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/meeus/v3/precess"
	"github.com/soniakeys/unit"
)

// ErrUnknownBody is returned when a position is requested for a body the
// ephemeris does not cover.
var ErrUnknownBody = errors.New("unknown solar system body")

// Body identifies a solar system object whose position changes with time.
type Body int

const (
	BodyNone Body = iota
	BodySun
	BodyMoon
	BodyMercury
	BodyVenus
	BodyMars
	BodyJupiter
	BodySaturn
	BodyUranus
	BodyNeptune
	BodyPluto
)

var bodyNames = map[Body]string{
	BodySun:     "Sun",
	BodyMoon:    "Moon",
	BodyMercury: "Mercury",
	BodyVenus:   "Venus",
	BodyMars:    "Mars",
	BodyJupiter: "Jupiter",
	BodySaturn:  "Saturn",
	BodyUranus:  "Uranus",
	BodyNeptune: "Neptune",
	BodyPluto:   "Pluto",
}

// String returns the English name of the body.
func (b Body) String() string {
	if name, ok := bodyNames[b]; ok {
		return name
	}
	return "Unknown"
}

// ParseBody resolves a catalog object name to a Body. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseBody(name string) (Body, bool) {
	name = strings.TrimSpace(name)
	for b, n := range bodyNames {
		if strings.EqualFold(n, name) {
			return b, true
		}
	}
	return BodyNone, false
}

// BodyPosition returns the apparent right ascension and declination in
// degrees of a body as seen by the observer at t. The Moon is topocentric;
// other bodies are geocentric.
func BodyPosition(b Body, obs Observer, t time.Time) (raDeg, decDeg float64, err error) {
	switch b {
	case BodySun:
		raDeg, decDeg = SunPosition(t)
		return raDeg, decDeg, nil
	case BodyMoon:
		raDeg, decDeg, _ = MoonTopocentric(obs, t)
		return raDeg, decDeg, nil
	case BodyPluto:
		raDeg, decDeg = geocentricFromHelio(plutoHeliocentric(t), t)
		return raDeg, decDeg, nil
	}

	el, ok := planetElements[b]
	if !ok {
		return 0, 0, ErrUnknownBody
	}
	raDeg, decDeg = geocentricFromHelio(el.heliocentric(centuriesJ2000(t)), t)
	return raDeg, decDeg, nil
}

// orbitalElements are JPL mean Keplerian elements valid 1800-2050 AD:
// value at J2000 plus rate per Julian century. Angles in degrees, a in AU.
type orbitalElements struct {
	a, da   float64
	e, de   float64
	i, di   float64
	l, dl   float64 // mean longitude
	lp, dlp float64 // longitude of perihelion
	n, dn   float64 // longitude of ascending node
}

var earthBarycenter = orbitalElements{
	1.00000261, 0.00000562,
	0.01671123, -0.00004392,
	-0.00001531, -0.01294668,
	100.46457166, 35999.37244981,
	102.93768193, 0.32327364,
	0, 0,
}

var planetElements = map[Body]orbitalElements{
	BodyMercury: {
		0.38709927, 0.00000037,
		0.20563593, 0.00001906,
		7.00497902, -0.00594749,
		252.25032350, 149472.67411175,
		77.45779628, 0.16047689,
		48.33076593, -0.12534081,
	},
	BodyVenus: {
		0.72333566, 0.00000390,
		0.00677672, -0.00004107,
		3.39467605, -0.00078890,
		181.97909950, 58517.81538729,
		131.60246718, 0.00268329,
		76.67984255, -0.27769418,
	},
	BodyMars: {
		1.52371034, 0.00001847,
		0.09339410, 0.00007882,
		1.84969142, -0.00813131,
		-4.55343205, 19140.30268499,
		-23.94362959, 0.44441088,
		49.55953891, -0.29257343,
	},
	BodyJupiter: {
		5.20288700, -0.00011607,
		0.04838624, -0.00013253,
		1.30439695, -0.00183714,
		34.39644051, 3034.74612775,
		14.72847983, 0.21252668,
		100.47390909, 0.20469106,
	},
	BodySaturn: {
		9.53667594, -0.00125060,
		0.05386179, -0.00050991,
		2.48599187, 0.00193609,
		49.95424423, 1222.49362201,
		92.59887831, -0.41897216,
		113.66242448, -0.28867794,
	},
	BodyUranus: {
		19.18916464, -0.00196176,
		0.04725744, -0.00004397,
		0.77263783, -0.00242939,
		313.23810451, 428.48202785,
		170.95427630, 0.40805281,
		74.01692503, 0.04240589,
	},
	BodyNeptune: {
		30.06992276, 0.00026291,
		0.00859048, 0.00005105,
		1.77004347, 0.00035372,
		-55.12002969, 218.45945325,
		44.96476227, -0.32241464,
		131.78422574, -0.00508664,
	},
}

// heliocentric returns the J2000 ecliptic position in AU at T centuries
// past J2000.
func (el orbitalElements) heliocentric(T float64) Vec3 {
	a := el.a + T*el.da
	e := el.e + T*el.de
	i := ToRadians(el.i + T*el.di)
	L := ToRadians(normalizeAngle360(el.l + T*el.dl))
	wbar := ToRadians(normalizeAngle360(el.lp + T*el.dlp))
	node := ToRadians(normalizeAngle360(el.n + T*el.dn))

	M := normalizeRadians(L - wbar)
	w := wbar - node

	E := solveKepler(M, e)

	// Position in the orbital plane, x toward perihelion
	xp := a * (math.Cos(E) - e)
	yp := a * math.Sqrt(1-e*e) * math.Sin(E)

	cw, sw := math.Cos(w), math.Sin(w)
	cn, sn := math.Cos(node), math.Sin(node)
	ci, si := math.Cos(i), math.Sin(i)

	return Vec3{
		X: (cw*cn-sw*sn*ci)*xp + (-sw*cn-cw*sn*ci)*yp,
		Y: (cw*sn+sw*cn*ci)*xp + (-sw*sn+cw*cn*ci)*yp,
		Z: (sw*si)*xp + (cw*si)*yp,
	}
}

// solveKepler solves M = E - e sin E for E by Newton-Raphson.
func solveKepler(M, e float64) float64 {
	E := M + e*math.Sin(M)*(1+e*math.Cos(M))
	for iter := 0; iter < 15; iter++ {
		f := E - e*math.Sin(E) - M
		if math.Abs(f) < 1e-12 {
			break
		}
		E -= f / (1 - e*math.Cos(E))
	}
	return E
}

func normalizeRadians(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

func plutoHeliocentric(t time.Time) Vec3 {
	l, b, r := pluto.Heliocentric(julianEphemerisDate(t))
	return eclipticVec(l.Deg(), b.Deg(), r)
}

// geocentricFromHelio turns a heliocentric J2000 ecliptic position into
// geocentric equatorial right ascension and declination referred to the
// mean equinox of t.
func geocentricFromHelio(helio Vec3, t time.Time) (raDeg, decDeg float64) {
	earth := earthBarycenter.heliocentric(centuriesJ2000(t))
	return EquatorialFromVec(precessEcliptic(helio.Sub(earth), t))
}

// precessEcliptic carries a J2000 ecliptic vector to the ecliptic and
// equator of date (Meeus chapter 21) and returns it in the equatorial frame.
func precessEcliptic(ecl Vec3, t time.Time) Vec3 {
	jde := julianEphemerisDate(t)
	from := &coord.Ecliptic{
		Lon: unit.AngleFromDeg(EclipticLongitude(ecl)),
		Lat: unit.AngleFromDeg(EclipticLatitude(ecl)),
	}
	to := precess.NewEclipticPrecessor(2000, julianEpoch(jde)).Precess(from, &coord.Ecliptic{})
	ofDate := eclipticVec(to.Lon.Deg(), to.Lat.Deg(), ecl.Norm())
	return rotateX(ofDate, -nutation.MeanObliquity(jde).Rad())
}

// julianEpoch returns the Julian epoch (years) of a Julian ephemeris date.
func julianEpoch(jde float64) float64 {
	return 2000 + (jde-2451545.0)/365.25
}

// centuriesJ2000 returns Julian centuries (TT) since J2000.0.
func centuriesJ2000(t time.Time) float64 {
	return (julianEphemerisDate(t) - 2451545.0) / 36525
}
