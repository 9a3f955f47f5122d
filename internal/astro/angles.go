package astro

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrBadSexagesimal is returned for coordinate strings that are not
// of the form ±DD:MM:SS[.frac].
var ErrBadSexagesimal = errors.New("malformed sexagesimal coordinate")

// AngularSeparation calculates the angular separation between two points on
// the celestial sphere using the spherical law of cosines.
// All coordinates in degrees (RA as degrees, not hours). Returns degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	ra1Rad := ToRadians(ra1)
	dec1Rad := ToRadians(dec1)
	ra2Rad := ToRadians(ra2)
	dec2Rad := ToRadians(dec2)

	cosTheta := math.Sin(dec1Rad)*math.Sin(dec2Rad) +
		math.Cos(dec1Rad)*math.Cos(dec2Rad)*math.Cos(ra1Rad-ra2Rad)

	// Floating point can overshoot ±1 for identical or antipodal points
	return ToDegrees(math.Acos(clamp(cosTheta, -1, 1)))
}

// ParseSexagesimal parses a "±DD:MM:SS[.frac]" string into signed decimal
// units (degrees for declination, hours for right ascension).
// The sign applies to the whole magnitude.
func ParseSexagesimal(s string) (float64, error) {
	coord := strings.TrimSpace(s)

	sign := 1.0
	switch {
	case strings.HasPrefix(coord, "+"):
		coord = coord[1:]
	case strings.HasPrefix(coord, "-"):
		coord = coord[1:]
		sign = -1
	}

	frac := 0.0
	if i := strings.IndexByte(coord, '.'); i >= 0 {
		digits := coord[i+1:]
		if !isDigits(digits) {
			return 0, fmt.Errorf("%w: fractional part %q", ErrBadSexagesimal, s)
		}
		f, err := strconv.ParseFloat("0."+digits, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadSexagesimal, s)
		}
		frac = f
		coord = coord[:i]
	}

	parts := strings.Split(coord, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q has %d components", ErrBadSexagesimal, s, len(parts))
	}

	var fields [3]float64
	for i, p := range parts {
		if !isDigits(p) {
			return 0, fmt.Errorf("%w: component %q in %q", ErrBadSexagesimal, p, s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadSexagesimal, s)
		}
		fields[i] = float64(n)
	}

	return sign * (fields[0] + fields[1]/60 + (fields[2]+frac)/3600), nil
}

// FormatSexagesimal formats a decimal value as "±DD:MM:SS", rounded to the
// nearest second.
func FormatSexagesimal(v float64) string {
	sign := '+'
	if v < 0 {
		sign = '-'
		v = -v
	}

	total := int64(math.Round(v * 3600))
	d := total / 3600
	m := (total % 3600) / 60
	sec := total % 60

	return fmt.Sprintf("%c%02d:%02d:%02d", sign, d, m, sec)
}

// FormatClock formats an hour of day as "HH:MM", rounded to the nearest
// minute and wrapped into 00:00-23:59.
func FormatClock(h float64) string {
	total := int64(math.Round(h*60)) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
