package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/catalog"
)

// Status colors
const (
	colorVisible    = "#7CFC00" // Lawn green
	colorPartial    = "#FFD700" // Gold
	colorMasked     = "#FF6347" // Tomato
	colorBelow      = "#444444" // Dark gray
	colorNoPosition = "60"      // muted purple
)

// statusColor returns the display color for a visibility status. The empty
// status belongs to entries without coordinates.
func statusColor(s astro.Status) string {
	switch s {
	case astro.StatusVisible:
		return colorVisible
	case astro.StatusPartiallyVisible:
		return colorPartial
	case astro.StatusMasked:
		return colorMasked
	case astro.StatusNonVisible:
		return colorBelow
	default:
		return colorNoPosition
	}
}

// statusLabel returns a short fixed-width label for list columns.
func statusLabel(s astro.Status) string {
	switch s {
	case astro.StatusVisible:
		return "visible"
	case astro.StatusPartiallyVisible:
		return "partial"
	case astro.StatusMasked:
		return "masked"
	case astro.StatusNonVisible:
		return "below"
	default:
		return "--"
	}
}

// renderStatus renders a status label in its color.
func renderStatus(s astro.Status) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor(s)))
	return style.Render(statusLabel(s))
}

// tierToBar converts elevation tier to a 4-character bar representation.
func tierToBar(tier astro.ElevationTier) string {
	switch tier {
	case astro.ElevationHigh:
		return "████"
	case astro.ElevationMedium:
		return "██░░"
	case astro.ElevationLow:
		return "█░░░"
	default:
		return "░░░░"
	}
}

// tierToColor returns the color for an elevation tier.
func tierToColor(tier astro.ElevationTier) string {
	switch tier {
	case astro.ElevationHigh:
		return colorVisible
	case astro.ElevationMedium:
		return colorPartial
	case astro.ElevationLow:
		return colorMasked
	default:
		return colorBelow
	}
}

// RenderAltitudeBar renders a compact bar for the current altitude.
func RenderAltitudeBar(altDeg float64) string {
	tier := astro.GetElevationTier(altDeg)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(tierToColor(tier)))
	return style.Render(tierToBar(tier))
}

// RenderEventsPanel renders the rise, meridian and set times of an entry.
// Format:
//
//	Rise 19:30   Meridian 03:15 @ 60°   Set 10:57
func RenderEventsPanel(e catalog.Enriched, loc *time.Location) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	if !e.Enriched {
		return dimStyle.Render("No position")
	}
	if e.Rise == nil && e.Set == nil {
		if e.Meridian == nil {
			return dimStyle.Render("No events found")
		}
		if e.Status == astro.StatusNonVisible {
			return dimStyle.Render("Never rises")
		}
		return colorByStatus(e.Status, "Circumpolar   Meridian "+clock(e.Meridian, loc))
	}

	var parts []string
	if e.Rise != nil {
		parts = append(parts, "Rise "+clock(e.Rise, loc))
	}
	if e.Meridian != nil {
		part := "Meridian " + clock(e.Meridian, loc)
		if peak, ok := e.Track.MaxAltitude(); ok {
			part += fmt.Sprintf(" @ %.0f°", peak.AltitudeDeg)
		}
		parts = append(parts, part)
	}
	if e.Set != nil {
		parts = append(parts, "Set "+clock(e.Set, loc))
	}
	return colorByStatus(e.Status, strings.Join(parts, "   "))
}

// clock formats an event time as HH:MM in loc, or "--:--" when absent.
func clock(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "--:--"
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("15:04")
}

// colorByStatus applies status-based coloring to text.
func colorByStatus(s astro.Status, text string) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(statusColor(s)))
	return style.Render(text)
}
