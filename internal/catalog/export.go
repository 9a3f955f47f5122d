package catalog

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/litescript/ls-skyplan/internal/astro"
)

// SnapshotExport is the JSON-serializable result of one engine pass.
type SnapshotExport struct {
	Instant     time.Time      `json:"instant"`
	GeneratedAt time.Time      `json:"generated_at"`
	Observer    ObserverExport `json:"observer"`
	Night       NightExport    `json:"night"`
	Entries     []EntryExport  `json:"entries"`
}

// ObserverExport is a JSON-friendly observer.
type ObserverExport struct {
	Name       string  `json:"name,omitempty"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	ElevationM float64 `json:"elevation_m"`
}

// NightExport is the sunset to sunrise bracket.
type NightExport struct {
	Sunset  time.Time `json:"sunset"`
	Sunrise time.Time `json:"sunrise"`
	Polar   bool      `json:"polar,omitempty"`
}

// EntryExport is a JSON-friendly enriched entry.
type EntryExport struct {
	Index          int        `json:"index"`
	Name           string     `json:"name"`
	ObjectType     string     `json:"object_type"`
	Magnitude      float64    `json:"magnitude"`
	RA             string     `json:"ra"`
	Dec            string     `json:"dec"`
	Azimuth        float64    `json:"azimuth"`
	Altitude       float64    `json:"altitude"`
	Rise           *time.Time `json:"rise,omitempty"`
	Set            *time.Time `json:"set,omitempty"`
	Meridian       *time.Time `json:"meridian,omitempty"`
	MoonSeparation float64    `json:"moon_separation"`
	SunSeparation  float64    `json:"sun_separation"`
	Illumination   *float64   `json:"illumination_pct,omitempty"`
	Status         string     `json:"status,omitempty"`
	CurrentStatus  string     `json:"current_status,omitempty"`
	VisibleSamples int        `json:"visible_samples"`
	Description    string     `json:"description,omitempty"`
	Enriched       bool       `json:"enriched"`
}

// ExportSnapshot converts an engine result to an exportable format.
func ExportSnapshot(entries []Enriched, obs astro.Observer, at time.Time, night astro.Night) *SnapshotExport {
	export := &SnapshotExport{
		Instant:     at,
		GeneratedAt: time.Now().UTC(),
		Observer: ObserverExport{
			Name:       obs.Name,
			Latitude:   obs.LatDeg,
			Longitude:  obs.LonDeg,
			ElevationM: obs.ElevationM,
		},
		Night: NightExport{
			Sunset:  night.Sunset,
			Sunrise: night.Sunrise,
			Polar:   night.Polar,
		},
		Entries: make([]EntryExport, 0, len(entries)),
	}

	for _, e := range entries {
		ex := EntryExport{
			Index:          e.Index,
			Name:           e.Name,
			ObjectType:     e.ObjectType,
			Magnitude:      e.Magnitude,
			RA:             astro.FormatSexagesimal(e.RAHours),
			Dec:            astro.FormatSexagesimal(e.DecDeg),
			Azimuth:        e.AzimuthDeg,
			Altitude:       e.AltitudeDeg,
			Rise:           e.Rise,
			Set:            e.Set,
			Meridian:       e.Meridian,
			MoonSeparation: e.MoonSeparationDeg,
			SunSeparation:  e.SunSeparationDeg,
			Status:         string(e.Status),
			CurrentStatus:  string(e.CurrentStatus),
			VisibleSamples: e.VisibleSamples,
			Description:    e.Description,
			Enriched:       e.Enriched,
		}
		if e.Body == astro.BodyMoon && e.Enriched {
			pct := e.IlluminationPct
			ex.Illumination = &pct
		}
		export.Entries = append(export.Entries, ex)
	}

	return export
}

// WriteJSON writes the snapshot as JSON to the given writer.
func (s *SnapshotExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// SummaryRow represents one row in the summary table.
type SummaryRow struct {
	Name     string
	Type     string
	Mag      float64
	Alt      float64
	Az       float64
	Rise     string
	Set      string
	Hours    float64
	Status   astro.Status
	Enriched bool
}

// GenerateSummaryRows creates summary rows from enriched entries. Times
// are shown in loc.
func GenerateSummaryRows(entries []Enriched, loc *time.Location) []SummaryRow {
	if loc == nil {
		loc = time.UTC
	}

	rows := make([]SummaryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, SummaryRow{
			Name:     e.Name,
			Type:     e.ObjectType,
			Mag:      e.Magnitude,
			Alt:      e.AltitudeDeg,
			Az:       e.AzimuthDeg,
			Rise:     formatEvent(e.Rise, loc),
			Set:      formatEvent(e.Set, loc),
			Hours:    e.VisibleHours(),
			Status:   e.Status,
			Enriched: e.Enriched,
		})
	}
	return rows
}

// WriteSummaryTable writes a text table to the given writer.
func WriteSummaryTable(w io.Writer, entries []Enriched, obs astro.Observer, at time.Time, loc *time.Location) {
	rows := GenerateSummaryRows(entries, loc)

	site := obs.Name
	if site == "" {
		site = fmt.Sprintf("%.4f, %.4f", obs.LatDeg, obs.LonDeg)
	}
	fmt.Fprintf(w, "Sky @ %s from %s\n", at.Format(time.RFC3339), site)
	fmt.Fprintln(w, strings.Repeat("─", 90))

	if len(rows) == 0 {
		fmt.Fprintln(w, "No objects")
		return
	}

	// Header
	fmt.Fprintf(w, "%-16s %-12s %5s %7s %6s %-6s %-6s %5s %-17s\n",
		"Name", "Type", "Mag", "Alt", "Az", "Rise", "Set", "Hours", "Status")
	fmt.Fprintln(w, strings.Repeat("─", 90))

	visible := 0
	for _, r := range rows {
		if !r.Enriched {
			fmt.Fprintf(w, "%-16s %-12s %5.1f %7s %6s %-6s %-6s %5s %-17s\n",
				truncateStr(r.Name, 16), truncateStr(r.Type, 12), r.Mag,
				"-", "-", "-", "-", "-", "no position")
			continue
		}
		if r.Status == astro.StatusVisible {
			visible++
		}
		fmt.Fprintf(w, "%-16s %-12s %5.1f %6.1f° %5.1f° %-6s %-6s %5.1f %-17s\n",
			truncateStr(r.Name, 16),
			truncateStr(r.Type, 12),
			r.Mag,
			r.Alt,
			r.Az,
			r.Rise,
			r.Set,
			r.Hours,
			r.Status,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d objects, %d visible tonight\n", len(rows), visible)
}

func formatEvent(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "--:--"
	}
	return t.In(loc).Format("15:04")
}

func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-2] + ".."
}
