package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/catalog"
	"github.com/litescript/ls-skyplan/internal/state"
)

// SparklineWidth is the number of cells in the altitude sparkline.
const SparklineWidth = 48

var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline gradient endpoints: low (dark blue), mid (blue), high (cyan).
var (
	elevColorLow  = [3]uint8{0x1e, 0x2a, 0x78}
	elevColorMid  = [3]uint8{0x3b, 0x82, 0xf6}
	elevColorHigh = [3]uint8{0x22, 0xd3, 0xee}
)

// ObjectModel shows everything computed for one catalog entry.
type ObjectModel struct {
	width    int
	height   int
	selected int // entry Index, -1 for none
	snapshot state.Snapshot
	loc      *time.Location
	animTick int
}

// NewObjectModel creates an object view showing times in loc.
func NewObjectModel(loc *time.Location) ObjectModel {
	if loc == nil {
		loc = time.UTC
	}
	return ObjectModel{selected: -1, loc: loc}
}

// SetSize updates the viewport size.
func (m ObjectModel) SetSize(width, height int) ObjectModel {
	m.width = width
	m.height = height
	return m
}

// SetAnimTick updates the animation tick for shimmer effects.
func (m ObjectModel) SetAnimTick(tick int) ObjectModel {
	m.animTick = tick
	return m
}

// UpdateData updates with new data snapshot.
func (m ObjectModel) UpdateData(snapshot state.Snapshot) ObjectModel {
	m.snapshot = snapshot
	if m.selected < 0 && len(snapshot.Entries) > 0 {
		m.selected = snapshot.Entries[0].Index
	}
	return m
}

// Select shows the entry with the given catalog Index.
func (m ObjectModel) Select(index int) ObjectModel {
	m.selected = index
	return m
}

// SelectedIndex returns the catalog Index of the shown entry.
func (m ObjectModel) SelectedIndex() int {
	return m.selected
}

// Update handles messages.
func (m ObjectModel) Update(msg tea.Msg) (ObjectModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "right", "]", "l":
			m = m.step(1)
		case "left", "[", "h":
			m = m.step(-1)
		}
	}
	return m, nil
}

func (m ObjectModel) step(delta int) ObjectModel {
	entries := m.snapshot.Entries
	if len(entries) == 0 {
		return m
	}
	pos := m.position()
	if pos < 0 {
		m.selected = entries[0].Index
		return m
	}
	pos = (pos + delta + len(entries)) % len(entries)
	m.selected = entries[pos].Index
	return m
}

func (m ObjectModel) position() int {
	for i, e := range m.snapshot.Entries {
		if e.Index == m.selected {
			return i
		}
	}
	return -1
}

func (m ObjectModel) entry() *catalog.Enriched {
	pos := m.position()
	if pos < 0 {
		return nil
	}
	e := m.snapshot.Entries[pos]
	return &e
}

// View renders the object view.
func (m ObjectModel) View() string {
	e := m.entry()
	if e == nil {
		return "No object selected. Press enter on a catalog row.\n"
	}

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	field := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(value) + "\n"
	}

	var b strings.Builder

	title := e.Name
	if e.NGC != "" {
		title += "  (" + e.NGC + ")"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render("←/→ to step through the catalog"))
	b.WriteString("\n\n")

	b.WriteString(field("Type", e.ObjectType))
	if c := constellation(e.Entry); c != "" {
		b.WriteString(field("Const.", c))
	}
	b.WriteString(field("Magnitude", fmt.Sprintf("%.1f", e.Magnitude)))
	if e.Size > 0 {
		b.WriteString(field("Size", fmt.Sprintf("%.1f'", e.Size)))
	}
	if e.Season != "" {
		b.WriteString(field("Season", e.Season))
	}

	if !e.Enriched {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No position in the catalog, nothing computed."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(field("RA", astro.FormatSexagesimal(e.RAHours)[1:]))
	b.WriteString(field("Dec", astro.FormatSexagesimal(e.DecDeg)))
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", "Alt/Az")) +
		valueStyle.Render(fmt.Sprintf("%.1f° / %.1f°  ", e.AltitudeDeg, e.AzimuthDeg)) +
		RenderAltitudeBar(e.AltitudeDeg) + "\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", "Now")) + renderStatus(e.CurrentStatus) + "\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-12s", "Tonight")) + renderStatus(e.Status) +
		valueStyle.Render(fmt.Sprintf("  %d visible samples (%.1f h)", e.VisibleSamples, e.VisibleHours())) + "\n")
	b.WriteString(field("Moon sep.", fmt.Sprintf("%.1f°", e.MoonSeparationDeg)))
	b.WriteString(field("Sun sep.", fmt.Sprintf("%.1f°", e.SunSeparationDeg)))
	if isMoon(e.Entry) {
		b.WriteString(field("Illuminated", fmt.Sprintf("%.0f%%  (%s)", e.IlluminationPct, e.Image)))
	}

	b.WriteString("\n")
	b.WriteString(RenderEventsPanel(*e, m.loc))
	b.WriteString("\n\n")
	b.WriteString(m.renderAltitudeSparkline(e.Track))
	b.WriteString("\n")

	if events := m.objectEvents(e.Index); len(events) > 0 {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render("Changes"))
		b.WriteString("\n")
		for _, ev := range events {
			b.WriteString(dimStyle.Render(ev.Timestamp.In(m.loc).Format("15:04")))
			b.WriteString(fmt.Sprintf("  %-13s %s → %s\n", ev.Type, statusLabel(ev.OldStatus), renderStatus(ev.NewStatus)))
		}
	}

	if e.Description != "" {
		width := m.width - 4
		if width < 20 {
			width = 20
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Foreground(lipgloss.Color("250")).Render(e.Description))
		b.WriteString("\n")
	}

	return b.String()
}

func (m ObjectModel) objectEvents(index int) []state.Event {
	var out []state.Event
	for _, ev := range m.snapshot.Events {
		if ev.Index == index {
			out = append(out, ev)
		}
	}
	return out
}

func isMoon(e catalog.Entry) bool {
	if e.Body == astro.BodyMoon {
		return true
	}
	body, ok := astro.ParseBody(e.Name)
	return ok && body == astro.BodyMoon
}

func constellation(e catalog.Entry) string {
	switch {
	case e.ConstellationEN != "":
		return e.ConstellationEN
	case e.ConstellationLatin != "":
		return e.ConstellationLatin
	default:
		return e.ConstellationFR
	}
}

// renderAltitudeSparkline draws the night's altitude track, one cell per
// bucket of samples. Cells below the horizon are dots.
func (m ObjectModel) renderAltitudeSparkline(track astro.Track) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	if len(track.Samples) == 0 {
		if track.Total > 0 {
			return m.renderShimmerSparkline("Track could not be sampled")
		}
		return dimStyle.Render("No track for this night")
	}

	alts := resampleAltitude(track.Samples, SparklineWidth)
	if len(alts) == 0 {
		return dimStyle.Render("No track for this night")
	}

	var sb strings.Builder
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	sb.WriteString(labelStyle.Render(clock(&track.Samples[0].Time, m.loc)))
	sb.WriteString(" ")

	for _, alt := range alts {
		if alt < 0 {
			sb.WriteString(dimStyle.Render("·"))
			continue
		}
		if alt > 90 {
			alt = 90
		}
		t := alt / 90.0

		blockIdx := int(t * 7.0)
		if blockIdx > 7 {
			blockIdx = 7
		}

		r, g, b := interpolateElevColor(t)
		color := fmt.Sprintf("#%02x%02x%02x", r, g, b)
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(sparklineBlocks[blockIdx])))
	}

	last := track.Samples[len(track.Samples)-1].Time
	sb.WriteString(" ")
	sb.WriteString(labelStyle.Render(clock(&last, m.loc)))

	if peak, ok := track.MaxAltitude(); ok {
		nowStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
		sb.WriteString(nowStyle.Render(fmt.Sprintf("  peak %.0f° at %s", peak.AltitudeDeg, clock(&peak.Time, m.loc))))
	}

	if track.Skipped > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  (%d skipped)", track.Skipped)))
	}

	return sb.String()
}

// renderShimmerSparkline renders a placeholder sparkline with a message.
func (m ObjectModel) renderShimmerSparkline(msg string) string {
	var sb strings.Builder

	offset := m.animTick % SparklineWidth
	for i := 0; i < SparklineWidth; i++ {
		dist := (i - offset + SparklineWidth) % SparklineWidth
		gray := 60
		if dist < 8 {
			gray = 60 + dist*8
		}
		color := fmt.Sprintf("#%02x%02x%02x", gray, gray, gray)
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("▄"))
	}

	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sb.WriteString(" ")
	sb.WriteString(dimStyle.Render(msg))

	return sb.String()
}

// interpolateElevColor returns RGB color for altitude value t in [0, 1].
func interpolateElevColor(t float64) (uint8, uint8, uint8) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	from, to, s := elevColorLow, elevColorMid, t*2
	if t >= 0.5 {
		from, to, s = elevColorMid, elevColorHigh, (t-0.5)*2
	}

	mix := func(a, b uint8) uint8 {
		return uint8(float64(a)*(1-s) + float64(b)*s)
	}
	return mix(from[0], to[0]), mix(from[1], to[1]), mix(from[2], to[2])
}

// resampleAltitude averages track samples into a fixed number of buckets.
func resampleAltitude(samples []astro.TrackSample, width int) []float64 {
	if len(samples) == 0 || width <= 0 {
		return nil
	}

	result := make([]float64, width)
	perBucket := float64(len(samples)) / float64(width)

	for i := 0; i < width; i++ {
		startIdx := int(float64(i) * perBucket)
		endIdx := int(float64(i+1) * perBucket)
		if endIdx <= startIdx {
			endIdx = startIdx + 1
		}
		if endIdx > len(samples) {
			endIdx = len(samples)
		}

		sum := 0.0
		count := 0
		for j := startIdx; j < endIdx; j++ {
			sum += samples[j].AltitudeDeg
			count++
		}
		if count > 0 {
			result[i] = sum / float64(count)
		}
	}

	return result
}
