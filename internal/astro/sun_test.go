package astro

import (
	"math"
	"testing"
	"time"
)

func TestSunPosition(t *testing.T) {
	tests := []struct {
		name       string
		time       time.Time
		wantRAMin  float64 // RA in degrees
		wantRAMax  float64
		wantDecMin float64 // Dec in degrees
		wantDecMax float64
	}{
		{
			name:       "Spring Equinox 2024 - Sun near 0h RA, 0° Dec",
			time:       time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC),
			wantRAMin:  359, // Near 0h (can be 359-1)
			wantRAMax:  2,
			wantDecMin: -1,
			wantDecMax: 1,
		},
		{
			name:       "Summer Solstice 2024 - Sun near 6h RA, +23.5° Dec",
			time:       time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC),
			wantRAMin:  88, // 6h = 90°
			wantRAMax:  92,
			wantDecMin: 23,
			wantDecMax: 24,
		},
		{
			name:       "Autumn Equinox 2024 - Sun near 12h RA, 0° Dec",
			time:       time.Date(2024, 9, 22, 12, 0, 0, 0, time.UTC),
			wantRAMin:  178, // 12h = 180°
			wantRAMax:  182,
			wantDecMin: -1,
			wantDecMax: 1,
		},
		{
			name:       "Winter Solstice 2024 - Sun near 18h RA, -23.5° Dec",
			time:       time.Date(2024, 12, 21, 12, 0, 0, 0, time.UTC),
			wantRAMin:  268, // 18h = 270°
			wantRAMax:  272,
			wantDecMin: -24,
			wantDecMax: -23,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotRA, gotDec := SunPosition(tt.time)

			// Handle RA wrap-around for spring equinox
			raOK := false
			if tt.wantRAMin > tt.wantRAMax {
				// Wrap-around case (e.g., 359-2)
				raOK = gotRA >= tt.wantRAMin || gotRA <= tt.wantRAMax
			} else {
				raOK = gotRA >= tt.wantRAMin && gotRA <= tt.wantRAMax
			}

			if !raOK {
				t.Errorf("SunPosition() RA = %.2f°, want between %.2f° and %.2f°",
					gotRA, tt.wantRAMin, tt.wantRAMax)
			}

			if gotDec < tt.wantDecMin || gotDec > tt.wantDecMax {
				t.Errorf("SunPosition() Dec = %.2f°, want between %.2f° and %.2f°",
					gotDec, tt.wantDecMin, tt.wantDecMax)
			}
		})
	}
}

func TestSunSeparation(t *testing.T) {
	// Test sun separation for a target near the sun during summer solstice
	// Sun is at ~90° RA, ~+23.5° Dec during summer solstice
	summerSolstice := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		targetRA  float64
		targetDec float64
		wantMin   float64
		wantMax   float64
	}{
		{
			name:      "Target at sun position",
			targetRA:  90, // Near summer solstice sun position
			targetDec: 23.5,
			wantMin:   0,
			wantMax:   3, // Allow small tolerance for solar motion
		},
		{
			name:      "Target opposite sun",
			targetRA:  270, // 180° from sun
			targetDec: -23.5,
			wantMin:   175,
			wantMax:   180,
		},
		{
			name:      "Target 90° RA from sun",
			targetRA:  180,
			targetDec: 23.5,
			wantMin:   75, // RA difference is ~90°, but great circle distance depends on declination
			wantMax:   95,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunSeparation(tt.targetRA, tt.targetDec, summerSolstice)
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("SunSeparation() = %.2f°, want between %.2f° and %.2f°",
					got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestSunDistanceAU(t *testing.T) {
	// Perihelion in early January, aphelion in early July
	jan := SunDistanceAU(time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC))
	jul := SunDistanceAU(time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC))

	if math.Abs(jan-0.9833) > 0.001 {
		t.Errorf("perihelion distance = %v AU, want ~0.9833", jan)
	}
	if math.Abs(jul-1.0167) > 0.001 {
		t.Errorf("aphelion distance = %v AU, want ~1.0167", jul)
	}
}

func TestSearchSunEvent_Equinox(t *testing.T) {
	obs := Observer{LatDeg: 0, LonDeg: 0}
	from := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	set := SearchSunEvent(obs, from, SunSet, false)
	if set == nil {
		t.Fatal("no sunset found at the equator")
	}
	// Geometric sunset: 6h after transit, transit ~12:07 from the equation of time
	want := time.Date(2024, 3, 20, 18, 7, 0, 0, time.UTC)
	if d := set.Sub(want); d < -10*time.Minute || d > 10*time.Minute {
		t.Errorf("sunset = %v, want ~%v", set, want)
	}

	rise := SearchSunEvent(obs, from, SunRise, false)
	if rise == nil {
		t.Fatal("no sunrise found at the equator")
	}
	if !rise.Before(*set) {
		t.Errorf("sunrise %v should precede sunset %v", rise, set)
	}

	dusk := SearchSunEvent(obs, from, SunSet, true)
	if dusk == nil {
		t.Fatal("no civil dusk found")
	}
	if !dusk.After(*set) {
		t.Errorf("civil dusk %v should follow sunset %v", dusk, set)
	}
}

func TestSearchSunEvent_PolarDay(t *testing.T) {
	// Midsummer well inside the Arctic circle: the Sun never sets
	obs := Observer{LatDeg: 80, LonDeg: 15}
	from := time.Date(2024, 6, 21, 0, 0, 0, 0, time.UTC)

	if set := SearchSunEvent(obs, from, SunSet, false); set != nil {
		t.Errorf("unexpected sunset during polar day: %v", set)
	}
}

func TestNightBracket(t *testing.T) {
	obs := Observer{LatDeg: 0, LonDeg: 0}

	t.Run("daytime picks the coming night", func(t *testing.T) {
		noon := time.Date(2024, 3, 20, 12, 0, 0, 0, time.UTC)
		night := NightBracket(obs, noon, false)

		if night.Polar {
			t.Fatal("unexpected polar fallback")
		}
		if !night.Sunset.After(noon) {
			t.Errorf("sunset %v should be after %v", night.Sunset, noon)
		}
		if !night.Sunrise.After(night.Sunset) {
			t.Errorf("sunrise %v should follow sunset %v", night.Sunrise, night.Sunset)
		}
		if h := night.Duration().Hours(); h < 11.5 || h > 12.5 {
			t.Errorf("equinox night at the equator = %.2fh, want ~12h", h)
		}
	})

	t.Run("nighttime picks the current night", func(t *testing.T) {
		midnight := time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC)
		night := NightBracket(obs, midnight, false)

		if night.Polar {
			t.Fatal("unexpected polar fallback")
		}
		if !night.Sunset.Before(midnight) {
			t.Errorf("sunset %v should be before %v", night.Sunset, midnight)
		}
		if !night.Sunrise.After(midnight) {
			t.Errorf("sunrise %v should be after %v", night.Sunrise, midnight)
		}
	})

	t.Run("shortening days just after sunset", func(t *testing.T) {
		mid := Observer{LatDeg: 50}
		set := SearchSunEvent(mid, time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC), SunSet, false)
		if set == nil {
			t.Fatal("no sunset found")
		}
		at := set.Add(20 * time.Second)
		night := NightBracket(mid, at, false)

		if night.Polar {
			t.Fatal("unexpected polar fallback")
		}
		if !night.Sunrise.After(at) {
			t.Errorf("bracket %v..%v ends before %v", night.Sunset, night.Sunrise, at)
		}
		if d := night.Sunset.Sub(*set); d < -5*time.Second || d > 5*time.Second {
			t.Errorf("sunset = %v, want %v", night.Sunset, *set)
		}
	})

	t.Run("around sunset and sunrise at mid-latitude", func(t *testing.T) {
		mid := Observer{LatDeg: 50}
		for _, day := range []time.Time{
			time.Date(2024, 3, 25, 12, 0, 0, 0, time.UTC),
			time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC),
		} {
			set := SearchSunEvent(mid, day, SunSet, false)
			if set == nil {
				t.Fatalf("%s: no sunset found", day.Format("2006-01-02"))
			}
			rise := SearchSunEvent(mid, *set, SunRise, false)
			if rise == nil {
				t.Fatalf("%s: no sunrise found", day.Format("2006-01-02"))
			}

			cases := []struct {
				name     string
				at       time.Time
				wantSet  time.Time
				wantRise time.Time
			}{
				{"sunset-1m", set.Add(-time.Minute), *set, *rise},
				{"sunset+1m", set.Add(time.Minute), *set, *rise},
				{"sunrise-1m", rise.Add(-time.Minute), *set, *rise},
			}
			for _, c := range cases {
				night := NightBracket(mid, c.at, false)
				if d := night.Sunset.Sub(c.wantSet); d < -5*time.Second || d > 5*time.Second {
					t.Errorf("%s %s: sunset = %v, want %v", day.Format("01-02"), c.name, night.Sunset, c.wantSet)
				}
				if d := night.Sunrise.Sub(c.wantRise); d < -5*time.Second || d > 5*time.Second {
					t.Errorf("%s %s: sunrise = %v, want %v", day.Format("01-02"), c.name, night.Sunrise, c.wantRise)
				}
			}

			after := rise.Add(time.Minute)
			night := NightBracket(mid, after, false)
			if !night.Sunset.After(after) || !night.Sunset.After(*rise) {
				t.Errorf("%s sunrise+1m: sunset %v should be the coming one", day.Format("01-02"), night.Sunset)
			}
		}
	})

	t.Run("polar day falls back", func(t *testing.T) {
		at := time.Date(2024, 6, 21, 12, 0, 0, 0, time.UTC)
		night := NightBracket(Observer{LatDeg: 80}, at, false)

		if !night.Polar {
			t.Fatal("expected polar fallback")
		}
		if !night.Sunset.Equal(at) || night.Duration() != 12*time.Hour {
			t.Errorf("fallback bracket = %v..%v", night.Sunset, night.Sunrise)
		}
	})
}
