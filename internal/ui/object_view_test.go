package ui

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/catalog"
	"github.com/litescript/ls-skyplan/internal/state"
)

func testTrack(alts ...float64) astro.Track {
	start := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
	tr := astro.Track{Total: len(alts)}
	for i, alt := range alts {
		tr.Samples = append(tr.Samples, astro.TrackSample{
			Index:       i,
			Elapsed:     time.Duration(i) * 30 * time.Minute,
			Time:        start.Add(time.Duration(i) * 30 * time.Minute),
			AltitudeDeg: alt,
		})
	}
	return tr
}

func TestObjectModel_Navigation(t *testing.T) {
	m := NewObjectModel(time.UTC)
	m = m.UpdateData(testSnapshot())

	if m.SelectedIndex() != 0 {
		t.Fatalf("initial selection = %d, want first entry", m.SelectedIndex())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.SelectedIndex() != 1 {
		t.Errorf("after right = %d, want 1", m.SelectedIndex())
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.SelectedIndex() != 4 {
		t.Errorf("left from the first entry should wrap, got %d", m.SelectedIndex())
	}

	m = m.Select(2)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	if m.SelectedIndex() != 3 {
		t.Errorf("after ']' = %d, want 3", m.SelectedIndex())
	}
}

func TestObjectModel_ViewNoPanic(t *testing.T) {
	rise := time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC)
	meridian := rise.Add(6 * time.Hour)
	set := rise.Add(12 * time.Hour)

	snap := state.Snapshot{
		Entries: []catalog.Enriched{
			{
				Entry: catalog.Entry{
					Index: 0, Name: "M31", NGC: "NGC 224", ObjectType: "Galaxy",
					ConstellationEN: "Andromeda", Magnitude: 3.4, RAHours: 0.712, DecDeg: 41.27,
				},
				AltitudeDeg:      55,
				AzimuthDeg:       80,
				SunSeparationDeg: 121.4,
				Rise:             &rise,
				Meridian:         &meridian,
				Set:              &set,
				Status:           astro.StatusVisible,
				CurrentStatus:    astro.StatusVisible,
				VisibleSamples:   13,
				Track:            testTrack(-5, 10, 30, 60, 70, 50, 20, -2),
				Description:      "The nearest large spiral galaxy.",
				Enriched:         true,
			},
			{Entry: catalog.Entry{Index: 1, Name: "Placeholder"}},
			{
				Entry:           catalog.Entry{Index: 2, Name: "Moon", Dynamic: true, Body: astro.BodyMoon, Image: "moon6.png"},
				IlluminationPct: 48,
				Status:          astro.StatusPartiallyVisible,
				Enriched:        true,
			},
		},
		Events: []state.Event{
			{Type: state.EventRose, Timestamp: rise, Index: 0, Name: "M31", OldStatus: astro.StatusNonVisible, NewStatus: astro.StatusVisible},
			{Type: state.EventSet, Timestamp: set, Index: 2, Name: "Moon"},
		},
	}

	m := NewObjectModel(time.UTC).SetSize(100, 40).UpdateData(snap)

	view := m.View()
	for _, want := range []string{"M31", "NGC 224", "Andromeda", "13 visible samples (6.5 h)", "Rise 17:00", "Set 05:00", "ROSE", "nearest large spiral", "121.4°"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, "SET ") {
		t.Error("events of other objects should not be listed")
	}

	m = m.Select(1)
	if !strings.Contains(m.View(), "No position") {
		t.Error("entry without coordinates should say so")
	}

	m = m.Select(2)
	if view := m.View(); !strings.Contains(view, "48%") || !strings.Contains(view, "moon6.png") {
		t.Errorf("moon view missing illumination: %s", view)
	}

	m = m.Select(99)
	if !strings.Contains(m.View(), "No object selected") {
		t.Error("unknown index should show the empty message")
	}
}

func TestResampleAltitude(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if got := resampleAltitude(nil, 10); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("zero width", func(t *testing.T) {
		if got := resampleAltitude(testTrack(1, 2).Samples, 0); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})

	t.Run("averaging", func(t *testing.T) {
		got := resampleAltitude(testTrack(10, 20, 30, 40).Samples, 2)
		want := []float64{15, 35}
		for i := range want {
			if math.Abs(got[i]-want[i]) > 1e-9 {
				t.Errorf("bucket %d = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("fewer samples than width", func(t *testing.T) {
		got := resampleAltitude(testTrack(10, 50).Samples, 4)
		if len(got) != 4 {
			t.Fatalf("len = %d, want 4", len(got))
		}
		for i, v := range got {
			if v != 10 && v != 50 {
				t.Errorf("bucket %d = %v, want a sample value", i, v)
			}
		}
	})
}

func TestInterpolateElevColor(t *testing.T) {
	tests := []struct {
		t    float64
		want [3]uint8
	}{
		{0, elevColorLow},
		{-1, elevColorLow},
		{0.5, elevColorMid},
		{1, elevColorHigh},
		{2, elevColorHigh},
	}

	for _, tt := range tests {
		r, g, b := interpolateElevColor(tt.t)
		if [3]uint8{r, g, b} != tt.want {
			t.Errorf("interpolateElevColor(%v) = %v, want %v", tt.t, [3]uint8{r, g, b}, tt.want)
		}
	}
}

func TestRenderAltitudeSparklineStates(t *testing.T) {
	m := NewObjectModel(time.UTC)

	if got := m.renderAltitudeSparkline(astro.Track{}); !strings.Contains(got, "No track") {
		t.Errorf("empty track = %q", got)
	}

	failed := astro.Track{Total: 20, Skipped: 20}
	if got := m.renderAltitudeSparkline(failed); !strings.Contains(got, "could not be sampled") {
		t.Errorf("fully skipped track = %q", got)
	}

	got := m.renderAltitudeSparkline(testTrack(-10, 20, 90, 20, -10))
	if !strings.Contains(got, "peak 90°") {
		t.Errorf("sparkline missing peak: %q", got)
	}
	if !strings.Contains(got, "·") {
		t.Errorf("below-horizon samples should render as dots: %q", got)
	}
	if !strings.ContainsRune(got, '█') {
		t.Errorf("90° should reach the top block: %q", got)
	}
}

func TestSparklineBlocks(t *testing.T) {
	if len(sparklineBlocks) != 8 {
		t.Fatalf("expected 8 sparkline blocks, got %d", len(sparklineBlocks))
	}
	for i := 1; i < len(sparklineBlocks); i++ {
		if sparklineBlocks[i] <= sparklineBlocks[i-1] {
			t.Errorf("blocks should ascend: %q then %q", sparklineBlocks[i-1], sparklineBlocks[i])
		}
	}
}
