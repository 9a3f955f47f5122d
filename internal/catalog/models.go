// Package catalog loads deep-sky and solar system object catalogs and
// enriches them with observing data for a site and instant.
package catalog

import (
	"time"

	"github.com/litescript/ls-skyplan/internal/astro"
)

// Entry is one catalog row. RA is in hours as the catalog writes it.
// For dynamic entries RA/Dec are rewritten on every evaluation.
type Entry struct {
	Index              int        `json:"index"`
	Name               string     `json:"name"`
	NGC                string     `json:"ngc,omitempty"`
	ObjectType         string     `json:"object_type"`
	Season             string     `json:"season,omitempty"`
	Magnitude          float64    `json:"magnitude"`
	ConstellationEN    string     `json:"constellation_en,omitempty"`
	ConstellationFR    string     `json:"constellation_fr,omitempty"`
	ConstellationLatin string     `json:"constellation_latin,omitempty"`
	RAHours            float64    `json:"ra_hours"`
	DecDeg             float64    `json:"dec_deg"`
	Distance           float64    `json:"distance"`
	Size               float64    `json:"size"`
	Image              string     `json:"image,omitempty"`
	ImageSky           string     `json:"image_sky,omitempty"`
	Location           string     `json:"location,omitempty"`
	Dynamic            bool       `json:"dynamic"`
	Body               astro.Body `json:"-"`
}

// RADeg returns the right ascension in degrees.
func (e Entry) RADeg() float64 {
	return astro.HoursToDegrees(e.RAHours)
}

// HasPosition reports whether the entry carries coordinates. An entry at
// exactly RA 0, Dec 0 is treated as having none.
func (e Entry) HasPosition() bool {
	return e.RAHours != 0 || e.DecDeg != 0
}

// Enriched is a catalog entry with the observing data computed for one
// observer and instant.
type Enriched struct {
	Entry

	AzimuthDeg        float64      `json:"azimuth_deg"`
	AltitudeDeg       float64      `json:"altitude_deg"`
	Meridian          *time.Time   `json:"meridian,omitempty"`
	Rise              *time.Time   `json:"rise,omitempty"`
	Set               *time.Time   `json:"set,omitempty"`
	MoonSeparationDeg float64      `json:"moon_separation_deg"`
	SunSeparationDeg  float64      `json:"sun_separation_deg"`
	IlluminationPct   float64      `json:"illumination_pct,omitempty"`
	MoonImage         int          `json:"moon_image,omitempty"`
	Description       string       `json:"description,omitempty"`
	Status            astro.Status `json:"status,omitempty"`
	CurrentStatus     astro.Status `json:"current_status,omitempty"`
	VisibleSamples    int          `json:"visible_samples"`
	Track             astro.Track  `json:"-"`
	Enriched          bool         `json:"enriched"`
}

// VisibleHours returns the visible sample count as hours.
func (e Enriched) VisibleHours() float64 {
	return float64(e.VisibleSamples) / 2
}
