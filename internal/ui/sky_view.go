package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/catalog"
	"github.com/litescript/ls-skyplan/internal/state"
)

const (
	// Field of view in degrees
	fovAz = 120.0
	fovEl = 60.0

	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond

	glyphObject        = '✦'
	glyphObjectFocused = '◆'
	glyphMaskedSector  = '▒'

	// Background stars by magnitude
	glyphStarBright = '*'
	glyphStarMedium = '+'
	glyphStarDim    = '.'

	colorStarBright = "255"
	colorStarMedium = "250"
	colorStarDim    = "242"

	colorFocused = "229" // bright gold
)

// LabelMode controls how object labels are displayed.
type LabelMode int

const (
	LabelNone    LabelMode = iota // No labels
	LabelFocused                  // Only the focused object
	LabelAll                      // Every object
)

// SkyModel renders the part of the sky dome around a camera direction with
// every catalog object above the horizon.
type SkyModel struct {
	width  int
	height int

	camAz float64
	camEl float64

	animating   bool
	animStartAz float64
	animStartEl float64
	animTargAz  float64
	animTargEl  float64
	animStart   time.Time

	focusIdx int
	objects  []catalog.Enriched // above the horizon, catalog order
	mask     astro.HorizonMask
	stars    []astro.PlacedStar

	labelMode LabelMode
}

// NewSkyModel creates a sky view looking south at mid altitude.
func NewSkyModel() SkyModel {
	return SkyModel{
		camAz:     180,
		camEl:     30,
		labelMode: LabelFocused,
	}
}

// SetSize updates the viewport size.
func (m SkyModel) SetSize(width, height int) SkyModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData keeps the objects above the horizon. Focus follows the
// focused object by catalog Index.
func (m SkyModel) UpdateData(snapshot state.Snapshot) SkyModel {
	focused := -1
	if f := m.Focused(); f != nil {
		focused = f.Index
	}

	m.objects = nil
	for _, e := range snapshot.Entries {
		if e.Enriched && e.AltitudeDeg >= astro.HorizonAltitude {
			m.objects = append(m.objects, e)
		}
	}
	m.mask = snapshot.Mask
	m.stars = nil
	if !snapshot.Instant.IsZero() {
		m.stars = astro.StarsAbove(snapshot.Observer, snapshot.Instant, astro.HorizonAltitude)
	}

	m.focusIdx = 0
	for i, e := range m.objects {
		if e.Index == focused {
			m.focusIdx = i
		}
	}
	return m
}

// FocusIndex points the camera at the object with the given catalog
// Index, if it is above the horizon.
func (m SkyModel) FocusIndex(index int) (SkyModel, tea.Cmd) {
	for i, e := range m.objects {
		if e.Index == index {
			m.focusIdx = i
			return m.startAnimation()
		}
	}
	return m, nil
}

// Focused returns the focused object, if any.
func (m SkyModel) Focused() *catalog.Enriched {
	if m.focusIdx < 0 || m.focusIdx >= len(m.objects) {
		return nil
	}
	e := m.objects[m.focusIdx]
	return &e
}

type animTickMsg time.Time

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// Update handles messages.
func (m SkyModel) Update(msg tea.Msg) (SkyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			return m.focusPrev()
		case "down", "j":
			return m.focusNext()
		case "l":
			m.labelMode = (m.labelMode + 1) % 3
		}

	case animTickMsg:
		if m.animating {
			return m.updateAnimation()
		}
	}

	return m, nil
}

func (m SkyModel) focusNext() (SkyModel, tea.Cmd) {
	if len(m.objects) == 0 {
		return m, nil
	}
	m.focusIdx = (m.focusIdx + 1) % len(m.objects)
	return m.startAnimation()
}

func (m SkyModel) focusPrev() (SkyModel, tea.Cmd) {
	if len(m.objects) == 0 {
		return m, nil
	}
	m.focusIdx--
	if m.focusIdx < 0 {
		m.focusIdx = len(m.objects) - 1
	}
	return m.startAnimation()
}

func (m SkyModel) startAnimation() (SkyModel, tea.Cmd) {
	f := m.Focused()
	if f == nil {
		return m, nil
	}

	m.animating = true
	m.animStartAz = m.camAz
	m.animStartEl = m.camEl
	m.animTargAz = f.AzimuthDeg
	m.animTargEl = f.AltitudeDeg
	m.animStart = time.Now()

	return m, animTick()
}

func (m SkyModel) updateAnimation() (SkyModel, tea.Cmd) {
	t := float64(time.Since(m.animStart)) / float64(animDuration)

	if t >= 1.0 {
		m.animating = false
		m.camAz = m.animTargAz
		m.camEl = m.animTargEl
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	m.camAz = lerpAngle(m.animStartAz, m.animTargAz, t)
	m.camEl = lerp(m.animStartEl, m.animTargEl, t)

	return m, animTick()
}

// View renders the sky view.
func (m SkyModel) View() string {
	if m.width < 20 || m.height < 10 {
		return "Sky view requires larger terminal"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderSkyCanvas(m.width, m.height-4))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	return b.String()
}

func (m SkyModel) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	labels := [...]string{"labels: off", "labels: focused", "labels: all"}
	return titleStyle.Render("Sky View") + "  " +
		dimStyle.Render(fmt.Sprintf("looking az %.0f° alt %.0f°  |  %d objects up  |  %s",
			normalizeAngle360(m.camAz), m.camEl, len(m.objects), labels[m.labelMode]))
}

func (m SkyModel) renderStatus() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	f := m.Focused()
	if f == nil {
		return dimStyle.Render("Nothing above the horizon")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(colorFocused)).Render("◆ "+f.Name) +
		dimStyle.Render(fmt.Sprintf("  alt %.1f°  az %.1f°  ", f.AltitudeDeg, f.AzimuthDeg)) +
		renderStatus(f.CurrentStatus)
}

type objectPos struct {
	x, y       int
	name       string
	isFocused  bool
	labelStart int
	labelEnd   int
}

func (m SkyModel) renderSkyCanvas(width, height int) string {
	canvas := make([][]rune, height)
	colors := make([][]lipgloss.Color, height)
	for y := 0; y < height; y++ {
		canvas[y] = make([]rune, width)
		colors[y] = make([]lipgloss.Color, width)
		for x := 0; x < width; x++ {
			canvas[y][x] = ' '
			colors[y][x] = "236"
		}
	}

	horizonY := height - 2

	for _, star := range m.stars {
		x, y, visible := m.projectToScreen(star.AzDeg, star.AltDeg, width, height)
		if !visible || x < 0 || x >= width || y < 0 || y >= horizonY {
			continue
		}
		canvas[y][x], colors[y][x] = starGlyph(star.Mag)
	}

	// Horizon, with obstructed sectors shaded
	for x := 0; x < width; x++ {
		canvas[horizonY][x] = '─'
		colors[horizonY][x] = "60"
		if az, ok := m.screenToAzimuth(x, width); ok && m.mask.Masked(az) {
			canvas[horizonY][x] = glyphMaskedSector
			colors[horizonY][x] = colorMasked
		}
	}

	m.drawCardinal(canvas, colors, width, height, "N", 0)
	m.drawCardinal(canvas, colors, width, height, "E", 90)
	m.drawCardinal(canvas, colors, width, height, "S", 180)
	m.drawCardinal(canvas, colors, width, height, "W", 270)

	var positions []objectPos
	for i, e := range m.objects {
		x, y, visible := m.projectToScreen(e.AzimuthDeg, e.AltitudeDeg, width, height)
		if !visible || x < 0 || x >= width || y < 0 || y >= horizonY {
			continue
		}

		isFocused := i == m.focusIdx
		sym := glyphObject
		color := lipgloss.Color(statusColor(e.CurrentStatus))
		if isFocused {
			sym = glyphObjectFocused
			color = colorFocused
		}

		canvas[y][x] = sym
		colors[y][x] = color
		positions = append(positions, objectPos{x: x, y: y, name: e.Name, isFocused: isFocused})
	}

	m.renderLabels(canvas, colors, width, horizonY, positions)

	// Observer marker at bottom center
	if sx, sy := width/2, height-1; sy >= 0 {
		canvas[sy][sx] = '▲'
		colors[sy][sx] = "46"
	}

	var b strings.Builder
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			style := lipgloss.NewStyle().Foreground(colors[y][x])
			b.WriteString(style.Render(string(canvas[y][x])))
		}
		if y < height-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderLabels writes object names to the right of their glyphs. The
// focused label wins where labels overlap.
func (m SkyModel) renderLabels(canvas [][]rune, colors [][]lipgloss.Color, width, horizonY int, positions []objectPos) {
	if m.labelMode == LabelNone || len(positions) == 0 {
		return
	}

	for i := range positions {
		pos := &positions[i]
		pos.labelStart = pos.x + 2
		n := len([]rune(pos.name))
		if pos.isFocused {
			n += 2
		}
		pos.labelEnd = pos.labelStart + n
	}

	claimed := make(map[int]map[int]bool) // y -> x
	for _, pos := range positions {
		if !pos.isFocused {
			continue
		}
		if claimed[pos.y] == nil {
			claimed[pos.y] = make(map[int]bool)
		}
		for x := pos.labelStart; x < pos.labelEnd; x++ {
			claimed[pos.y][x] = true
		}
	}

	for _, pos := range positions {
		if m.labelMode == LabelFocused && !pos.isFocused {
			continue
		}

		color := lipgloss.Color("250")
		text := pos.name
		if pos.isFocused {
			color = colorFocused
			text = "◄ " + pos.name
		}

		for i, r := range []rune(text) {
			x := pos.labelStart + i
			if x < 0 || x >= width || pos.y < 0 || pos.y >= horizonY {
				continue
			}
			if !pos.isFocused && claimed[pos.y][x] {
				continue
			}
			canvas[pos.y][x] = r
			colors[pos.y][x] = color
		}
	}
}

// starGlyph returns the glyph and color for a star of the given magnitude.
func starGlyph(mag float64) (rune, lipgloss.Color) {
	switch {
	case mag < 1.5:
		return glyphStarBright, colorStarBright
	case mag < 3.0:
		return glyphStarMedium, colorStarMedium
	default:
		return glyphStarDim, colorStarDim
	}
}

func (m SkyModel) drawCardinal(canvas [][]rune, colors [][]lipgloss.Color, width, height int, label string, az float64) {
	x, _, visible := m.projectToScreen(az, m.camEl, width, height)
	if !visible {
		return
	}
	y := height - 2
	if x >= 0 && x < width && y >= 0 {
		canvas[y][x] = rune(label[0])
		colors[y][x] = "252"
	}
}

// projectToScreen converts az/alt to screen coordinates relative to the
// camera.
func (m SkyModel) projectToScreen(az, el float64, width, height int) (int, int, bool) {
	dAz := normalizeAngle(az - m.camAz)
	dEl := el - m.camEl

	if dAz < -fovAz/2 || dAz > fovAz/2 {
		return 0, 0, false
	}
	if dEl < -fovEl/2 || dEl > fovEl/2 {
		return 0, 0, false
	}

	// X: -fovAz/2..+fovAz/2 -> 0..width
	// Y: +fovEl/2..-fovEl/2 -> 0..horizonY
	horizonY := height - 2
	x := int((dAz + fovAz/2) / fovAz * float64(width))
	y := int((fovEl/2 - dEl) / fovEl * float64(horizonY))

	return x, y, true
}

// screenToAzimuth inverts the horizontal projection for one column.
func (m SkyModel) screenToAzimuth(x, width int) (float64, bool) {
	if width <= 0 || x < 0 || x >= width {
		return 0, false
	}
	dAz := (float64(x)+0.5)/float64(width)*fovAz - fovAz/2
	return normalizeAngle360(m.camAz + dAz), true
}

// normalizeAngle wraps angle to -180..+180 range
func normalizeAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	return a
}

func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// lerpAngle interpolates between angles, taking shortest path
func lerpAngle(a, b, t float64) float64 {
	return a + normalizeAngle(b-a)*t
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
