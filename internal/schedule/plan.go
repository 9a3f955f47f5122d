package schedule

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/catalog"
)

// ErrEmptyPlan is returned when no target has an exposure to run.
var ErrEmptyPlan = errors.New("plan has no exposures")

// ExposureGroup is a run of identical frames.
type ExposureGroup struct {
	Count       int     `json:"count"`
	ExposureSec float64 `json:"exposure_sec"`
	Filter      string  `json:"filter"`
	Gain        int     `json:"gain"`
	Refocus     bool    `json:"refocus"`
}

// Duration returns the group's total exposure time.
func (g ExposureGroup) Duration() time.Duration {
	return time.Duration(float64(g.Count) * g.ExposureSec * float64(time.Second))
}

// Target is one object of the session with its exposures.
type Target struct {
	Name        string          `json:"name"`
	RAHours     float64         `json:"ra_hours"`
	DecDeg      float64         `json:"dec_deg"`
	Exposures   []ExposureGroup `json:"exposures"`
	DelayBefore time.Duration   `json:"delay_before"`

	meridian *time.Time
}

// TargetFromEntry creates a target without exposures from an enriched
// catalog entry.
func TargetFromEntry(e catalog.Enriched) Target {
	return Target{
		Name:     e.Name,
		RAHours:  e.RAHours,
		DecDeg:   e.DecDeg,
		meridian: e.Meridian,
	}
}

// Duration returns the total exposure time in hours, delay excluded.
func (t Target) Duration() float64 {
	total := 0.0
	for _, g := range t.Exposures {
		total += float64(g.Count) * g.ExposureSec
	}
	return total / 3600
}

// SortByMeridian orders targets by meridian transit time. Targets without
// a transit keep their relative position after those with one.
func SortByMeridian(targets []Target) {
	sort.SliceStable(targets, func(i, j int) bool {
		a, b := targets[i].meridian, targets[j].meridian
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.Before(*b)
	})
}

// Windows returns each target's slot from startHour.
func Windows(startHour float64, targets []Target) []Window {
	durations := make([]float64, len(targets))
	delays := make([]time.Duration, len(targets))
	for i, t := range targets {
		durations[i] = t.Duration()
		delays[i] = t.DelayBefore
	}
	return ComputeWindows(startHour, durations, delays)
}

// Step is one exposure group in execution order, as sent to the rig.
type Step struct {
	Start   float64 `json:"start"` // hour of day, not wrapped
	Object  string  `json:"object"`
	RA      float64 `json:"ra"`
	Dec     float64 `json:"dec"`
	Expo    float64 `json:"expo"`
	NExpo   int     `json:"nExpo"`
	Filter  string  `json:"filter"`
	Gain    int     `json:"gain"`
	Refocus bool    `json:"focus"`
}

// Plan is a session ready for execution.
type Plan struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	StartHour float64   `json:"start_hour"`
	Steps     []Step    `json:"steps"`
}

// BuildPlan flattens targets into steps. Each target's delay is applied
// before its first group and every group advances the start by its
// exposure time.
func BuildPlan(startHour float64, targets []Target) (*Plan, error) {
	plan := &Plan{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
		StartHour: startHour,
	}

	start := startHour
	for _, t := range targets {
		start += t.DelayBefore.Hours()
		for _, g := range t.Exposures {
			if g.Count <= 0 || g.ExposureSec <= 0 {
				continue
			}
			plan.Steps = append(plan.Steps, Step{
				Start:   start,
				Object:  t.Name,
				RA:      t.RAHours,
				Dec:     t.DecDeg,
				Expo:    g.ExposureSec,
				NExpo:   g.Count,
				Filter:  g.Filter,
				Gain:    g.Gain,
				Refocus: g.Refocus,
			})
			start += g.Duration().Hours()
		}
	}

	if len(plan.Steps) == 0 {
		return nil, ErrEmptyPlan
	}
	return plan, nil
}

// End returns the hour of day at which the last step finishes, wrapped.
func (p *Plan) End() float64 {
	if len(p.Steps) == 0 {
		return wrap(p.StartHour)
	}
	last := p.Steps[len(p.Steps)-1]
	return wrap(last.Start + last.Expo*float64(last.NExpo)/3600)
}

// WriteJSON writes the plan as JSON to the given writer.
func (p *Plan) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// WriteWindows writes a text listing of target slots.
func WriteWindows(w io.Writer, targets []Target, windows []Window) {
	for i, t := range targets {
		if i >= len(windows) {
			return
		}
		fmt.Fprintf(w, "%-16s %s -> %s  (%.2fh)\n",
			t.Name, formatHour(windows[i].Start), formatHour(windows[i].End), t.Duration())
	}
}

func formatHour(h float64) string {
	return astro.FormatClock(h)
}
