package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/catalog"
	"github.com/litescript/ls-skyplan/internal/schedule"
	"github.com/litescript/ls-skyplan/internal/state"
)

// Defaults for a freshly picked target: twelve five-minute frames.
const (
	DefaultFrames      = 12
	DefaultExposureSec = 300.0
)

// PlanModel lays the picked objects end to end from sunset.
type PlanModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
	loc      *time.Location

	picked []catalog.Enriched
	frames map[string]int // by target name
}

// NewPlanModel creates an empty session plan showing times in loc.
func NewPlanModel(loc *time.Location) PlanModel {
	if loc == nil {
		loc = time.UTC
	}
	return PlanModel{loc: loc, frames: make(map[string]int)}
}

// SetSize updates the viewport size.
func (m PlanModel) SetSize(width, height int) PlanModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m PlanModel) UpdateData(snapshot state.Snapshot) PlanModel {
	m.snapshot = snapshot
	return m
}

// SetPicked replaces the session's objects.
func (m PlanModel) SetPicked(entries []catalog.Enriched) PlanModel {
	m.picked = entries
	if m.cursor >= len(entries) {
		m.cursor = 0
	}
	return m
}

// Targets returns the session ordered by meridian transit, with each
// target's frame count applied.
func (m PlanModel) Targets() []schedule.Target {
	targets := make([]schedule.Target, 0, len(m.picked))
	for _, e := range m.picked {
		t := schedule.TargetFromEntry(e)
		t.Exposures = []schedule.ExposureGroup{{
			Count:       m.frameCount(e.Name),
			ExposureSec: DefaultExposureSec,
		}}
		targets = append(targets, t)
	}
	schedule.SortByMeridian(targets)
	return targets
}

func (m PlanModel) frameCount(name string) int {
	if n, ok := m.frames[name]; ok {
		return n
	}
	return DefaultFrames
}

// StartHour returns the local hour of sunset, or of the snapshot instant
// when there is no night.
func (m PlanModel) StartHour() float64 {
	if !m.snapshot.Night.Sunset.IsZero() {
		return astro.HourOfDay(m.snapshot.Night.Sunset, m.loc)
	}
	return astro.HourOfDay(m.snapshot.Instant, m.loc)
}

// Available returns the hours between the start and sunrise.
func (m PlanModel) Available() float64 {
	if m.snapshot.Night.Sunrise.IsZero() {
		return 0
	}
	return schedule.MaxDuration(m.StartHour(), astro.HourOfDay(m.snapshot.Night.Sunrise, m.loc))
}

// Update handles messages.
func (m PlanModel) Update(msg tea.Msg) (PlanModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	targets := m.Targets()
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(targets)-1 {
			m.cursor++
		}
	case "+", "=":
		if m.cursor < len(targets) {
			name := targets[m.cursor].Name
			m.frames[name] = m.frameCount(name) + 1
		}
	case "-":
		if m.cursor < len(targets) {
			name := targets[m.cursor].Name
			if n := m.frameCount(name); n > 0 {
				m.frames[name] = n - 1
			}
		}
	}
	return m, nil
}

// View renders the session plan.
func (m PlanModel) View() string {
	var b strings.Builder
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	b.WriteString(titleStyle.Render("Session"))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(fmt.Sprintf("from %s, %.1fh until sunrise",
		hourLabel(m.StartHour()), m.Available())))
	b.WriteString("\n\n")

	targets := m.Targets()
	if len(targets) == 0 {
		b.WriteString("  No objects picked. Press space on catalog rows to add them.\n")
		return b.String()
	}

	header := fmt.Sprintf("  %-18s %-8s %-12s %6s  %-13s", "Object", "Meridian", "Frames", "Hours", "Window")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	windows := schedule.Windows(m.StartHour(), targets)
	total := 0.0
	for i, t := range targets {
		total += t.Duration()

		meridian := "--:--"
		for _, e := range m.picked {
			if e.Name == t.Name {
				meridian = clock(e.Meridian, m.loc)
				break
			}
		}

		row := fmt.Sprintf("  %-18s %-8s %3d x %4.0fs %6.2f  %s -> %s",
			truncate(t.Name, 18),
			meridian,
			t.Exposures[0].Count,
			t.Exposures[0].ExposureSec,
			t.Duration(),
			hourLabel(windows[i].Start),
			hourLabel(windows[i].End),
		)
		if i == m.cursor {
			b.WriteString(selectedRowStyle.Render(row))
		} else {
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	summary := fmt.Sprintf("  Total %.2fh of %.2fh", total, m.Available())
	if avail := m.Available(); avail > 0 && total > avail {
		b.WriteString(errorStyle.Render(summary + "  (runs past sunrise)"))
	} else {
		b.WriteString(dimStyle.Render(summary))
	}
	b.WriteString("\n")

	return b.String()
}

// hourLabel formats an hour of day as HH:MM.
func hourLabel(h float64) string {
	return astro.FormatClock(h)
}
