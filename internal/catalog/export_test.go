package catalog

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/litescript/ls-skyplan/internal/astro"
)

func exportFixture() []Enriched {
	rise := time.Date(2024, 1, 15, 18, 5, 0, 0, time.UTC)
	return []Enriched{
		{
			Entry:          Entry{Index: 0, Name: "M31", ObjectType: "Galaxy", Magnitude: 3.4, RAHours: 0.7122, DecDeg: 41.269},
			AltitudeDeg:    55.2,
			AzimuthDeg:     280.1,
			Rise:           &rise,
			Status:         astro.StatusVisible,
			VisibleSamples: 9,
			Enriched:       true,
		},
		{
			Entry:           Entry{Index: 1, Name: "Moon", ObjectType: "Solar system", Dynamic: true, Body: astro.BodyMoon, RAHours: 3, DecDeg: 15},
			IlluminationPct: 42.5,
			Status:          astro.StatusPartiallyVisible,
			Enriched:        true,
		},
		{
			Entry: Entry{Index: 2, Name: "Unplaced galaxy with a long name", ObjectType: "Galaxy"},
		},
	}
}

func TestExportSnapshot(t *testing.T) {
	obs := astro.Observer{Name: "Backyard", LatDeg: 48.85, LonDeg: 2.35}
	at := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	night := astro.Night{
		Sunset:  time.Date(2024, 1, 15, 16, 20, 0, 0, time.UTC),
		Sunrise: time.Date(2024, 1, 16, 7, 40, 0, 0, time.UTC),
	}

	export := ExportSnapshot(exportFixture(), obs, at, night)

	if !export.Instant.Equal(at) || export.Observer.Name != "Backyard" {
		t.Errorf("header = %+v", export)
	}
	if len(export.Entries) != 3 {
		t.Fatalf("Entries count = %d, want 3", len(export.Entries))
	}

	m31 := export.Entries[0]
	if m31.RA != "+00:42:44" {
		t.Errorf("RA = %q, want +00:42:44", m31.RA)
	}
	if m31.Illumination != nil {
		t.Error("illumination should only be set for the Moon")
	}
	if m31.Rise == nil || m31.Set != nil {
		t.Errorf("events = rise %v set %v", m31.Rise, m31.Set)
	}

	moon := export.Entries[1]
	if moon.Illumination == nil || *moon.Illumination != 42.5 {
		t.Errorf("Moon illumination = %v", moon.Illumination)
	}

	if export.Entries[2].Enriched {
		t.Error("unplaced entry should not be marked enriched")
	}
}

func TestSnapshotExport_WriteJSON(t *testing.T) {
	export := ExportSnapshot(exportFixture(), astro.Observer{}, time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC), astro.Night{})

	var buf bytes.Buffer
	if err := export.WriteJSON(&buf); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	entries, ok := decoded["entries"].([]interface{})
	if !ok || len(entries) != 3 {
		t.Fatalf("entries = %v", decoded["entries"])
	}
	first := entries[0].(map[string]interface{})
	if first["status"] != "visible" || first["name"] != "M31" {
		t.Errorf("first entry = %v", first)
	}
	if _, ok := first["set"]; ok {
		t.Error("nil set time should be omitted")
	}
}

func TestWriteSummaryTable(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2024, 1, 15, 21, 0, 0, 0, time.UTC)
	WriteSummaryTable(&buf, exportFixture(), astro.Observer{Name: "Backyard"}, at, time.UTC)

	out := buf.String()
	for _, want := range []string{"Backyard", "M31", "18:05", "--:--", "4.5", "no position", "Unplaced galax..", "1 visible tonight"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	WriteSummaryTable(&buf, nil, astro.Observer{LatDeg: 10, LonDeg: 20}, time.Now(), nil)
	if !strings.Contains(buf.String(), "No objects") {
		t.Errorf("output = %q", buf.String())
	}
	if !strings.Contains(buf.String(), "10.0000, 20.0000") {
		t.Errorf("site should fall back to coordinates: %q", buf.String())
	}
}
