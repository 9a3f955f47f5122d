package astro

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/nutation"
)

func TestParseBody(t *testing.T) {
	tests := []struct {
		name   string
		want   Body
		wantOK bool
	}{
		{"Moon", BodyMoon, true},
		{"moon", BodyMoon, true},
		{" Jupiter ", BodyJupiter, true},
		{"SATURN", BodySaturn, true},
		{"Pluto", BodyPluto, true},
		{"Sun", BodySun, true},
		{"M31", BodyNone, false},
		{"", BodyNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseBody(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseBody(%q) = (%v, %v), want (%v, %v)", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBodyString(t *testing.T) {
	if BodyMars.String() != "Mars" {
		t.Errorf("BodyMars.String() = %q", BodyMars.String())
	}
	if BodyNone.String() != "Unknown" {
		t.Errorf("BodyNone.String() = %q", BodyNone.String())
	}
}

func TestBodyPosition_Unknown(t *testing.T) {
	_, _, err := BodyPosition(BodyNone, Observer{}, time.Now())
	if !errors.Is(err, ErrUnknownBody) {
		t.Errorf("BodyPosition(BodyNone) error = %v, want ErrUnknownBody", err)
	}
}

func TestBodyPosition_NearEcliptic(t *testing.T) {
	obs := Observer{LatDeg: 48.8, LonDeg: 2.3}
	planets := []Body{BodyMercury, BodyVenus, BodyMars, BodyJupiter, BodySaturn, BodyUranus, BodyNeptune}

	for _, b := range planets {
		for month := time.January; month <= time.December; month += 3 {
			at := time.Date(2024, month, 1, 0, 0, 0, 0, time.UTC)
			ra, dec, err := BodyPosition(b, obs, at)
			if err != nil {
				t.Fatalf("BodyPosition(%v) error = %v", b, err)
			}

			ecl := rotateX(ToCartesian(DegreesToHours(ra), dec, 1), obliquityRad)
			if lat := EclipticLatitude(ecl); math.Abs(lat) > 8 {
				t.Errorf("%v on %v: ecliptic latitude %.2f°, want within 8°", b, at.Format("2006-01-02"), lat)
			}
		}
	}
}

func TestBodyPosition_InnerPlanetElongation(t *testing.T) {
	maxElongation := map[Body]float64{BodyMercury: 28.5, BodyVenus: 47.5}

	for b, limit := range maxElongation {
		for day := 0; day < 365; day += 10 {
			at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
			ra, dec, err := BodyPosition(b, Observer{}, at)
			if err != nil {
				t.Fatalf("BodyPosition(%v) error = %v", b, err)
			}
			if sep := SunSeparation(ra, dec, at); sep > limit {
				t.Errorf("%v on %v: elongation %.2f° exceeds %.1f°", b, at.Format("2006-01-02"), sep, limit)
			}
		}
	}
}

func TestBodyPosition_SunMatches(t *testing.T) {
	at := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	ra, dec, err := BodyPosition(BodySun, Observer{}, at)
	if err != nil {
		t.Fatal(err)
	}
	wantRA, wantDec := SunPosition(at)
	if ra != wantRA || dec != wantDec {
		t.Errorf("BodyPosition(Sun) = (%v, %v), want (%v, %v)", ra, dec, wantRA, wantDec)
	}
}

func TestEarthElementsAgreeWithSun(t *testing.T) {
	// The geocentric Sun is the negated heliocentric Earth. The J2000
	// ecliptic differs from the ecliptic of date by well under 1°.
	at := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	earth := earthBarycenter.heliocentric(centuriesJ2000(at))
	sunLon := EclipticLongitude(Vec3{}.Sub(earth))

	ra, dec := SunPosition(at)
	want := EclipticLongitude(rotateX(ToCartesian(DegreesToHours(ra), dec, 1), obliquityRad))

	if d := math.Abs(sunLon - want); d > 1 && d < 359 {
		t.Errorf("Sun longitude from Earth elements = %.3f°, from solar series = %.3f°", sunLon, want)
	}
	if r := earth.Norm(); math.Abs(r-SunDistanceAU(at)) > 0.001 {
		t.Errorf("Earth-Sun distance = %.5f AU, want %.5f", r, SunDistanceAU(at))
	}
}

func TestBodyPosition_Pluto(t *testing.T) {
	// Pluto crossed into Aquarius in 2024, around RA 20h15m, Dec -23°
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	ra, dec, err := BodyPosition(BodyPluto, Observer{}, at)
	if err != nil {
		t.Fatal(err)
	}
	if ra < 295 || ra > 310 {
		t.Errorf("Pluto RA = %.2f°, want 295..310", ra)
	}
	if dec < -26 || dec > -20 {
		t.Errorf("Pluto Dec = %.2f°, want -26..-20", dec)
	}
}

func TestSolveKepler(t *testing.T) {
	for _, e := range []float64{0, 0.0167, 0.2056, 0.5} {
		for M := 0.0; M < 2*math.Pi; M += 0.5 {
			E := solveKepler(M, e)
			if got := E - e*math.Sin(E); math.Abs(got-M) > 1e-10 {
				t.Errorf("solveKepler(%v, %v): E - e sin E = %v", M, e, got)
			}
		}
	}
}

func TestPrecessEcliptic(t *testing.T) {
	vernal := Vec3{1, 0, 0}

	// At J2000 the frames coincide
	j2000 := time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)
	if d := AngleBetween(precessEcliptic(vernal, j2000), EclipticToEquatorial(vernal)); d > 0.001 {
		t.Errorf("precession at J2000 moved the point by %.4f°", d)
	}

	// General precession in longitude is about 50.29" per year, so after
	// 26 years the J2000 equinox sits about 0.363° east of the equinox of date
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	got := precessEcliptic(vernal, at)
	lon := EclipticLongitude(rotateX(got, nutation.MeanObliquity(julianEphemerisDate(at)).Rad()))
	if math.Abs(lon-0.363) > 0.005 {
		t.Errorf("precessed longitude = %.4f°, want 0.363 ± 0.005", lon)
	}
	if n := got.Norm(); math.Abs(n-1) > 1e-9 {
		t.Errorf("precession changed the distance to %v", n)
	}
}
