// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/state"
	"github.com/litescript/ls-skyplan/internal/version"
)

// ViewMode represents the current UI view.
type ViewMode int

const (
	ViewCatalog ViewMode = iota
	ViewObject
	ViewSky
	ViewPlan
)

const viewCount = 4

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// AnimTickMsg triggers fast animation updates.
	AnimTickMsg time.Time

	// DataUpdateMsg signals a new computation was committed.
	DataUpdateMsg struct {
		Snapshot state.Snapshot
	}

	// ErrorMsg signals a failed load or computation.
	ErrorMsg struct {
		Error error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	state   *state.Manager
	refresh func()
	loc     *time.Location

	// UI state
	viewMode  ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	animTick  int

	// Sub-models
	catalog CatalogModel
	object  ObjectModel
	sky     SkyModel
	plan    PlanModel

	snapshot state.Snapshot
}

// New creates a new root UI model. refresh, when set, is called on the
// refresh key to request an immediate recomputation. Times are shown in loc.
func New(stateMgr *state.Manager, loc *time.Location, refresh func()) Model {
	if loc == nil {
		loc = time.UTC
	}
	return Model{
		state:    stateMgr,
		refresh:  refresh,
		loc:      loc,
		viewMode: ViewCatalog,
		catalog:  NewCatalogModel(),
		object:   NewObjectModel(loc),
		sky:      NewSkyModel(),
		plan:     NewPlanModel(loc),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		animTickCmd(),
		m.catalog.Init(),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// The keyword prompt owns the keyboard while open
		if m.viewMode == ViewCatalog && m.catalog.Searching() {
			cmds = append(cmds, m.updateActiveView(msg))
			break
		}

		switch msg.String() {
		case "q":
			return m, tea.Quit

		case "1", "c":
			m.setView(ViewCatalog)
		case "2", "o":
			m.setView(ViewObject)
		case "3", "s":
			m.setView(ViewSky)
		case "4", "w":
			m.setView(ViewPlan)

		case "tab":
			m.setView((m.viewMode + 1) % viewCount)

		case "r":
			if m.refresh != nil {
				m.statusMsg = "Recomputing..."
				go m.refresh()
			}

		default:
			cmds = append(cmds, m.updateActiveView(msg))
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// Logo takes ~10 lines, footer ~2 lines
		contentHeight := msg.Height - 14
		m.catalog = m.catalog.SetSize(msg.Width, contentHeight)
		m.object = m.object.SetSize(msg.Width, contentHeight)
		m.sky = m.sky.SetSize(msg.Width, contentHeight)
		m.plan = m.plan.SetSize(msg.Width, contentHeight)

	case TickMsg:
		cmds = append(cmds, tickCmd())
		if m.state != nil {
			if snap := m.state.Snapshot(); snap.Generation != m.snapshot.Generation || snap.LastCompute != m.snapshot.LastCompute {
				m.applySnapshot(snap)
			}
		}

	case AnimTickMsg:
		cmds = append(cmds, animTickCmd())
		m.animTick++
		m.object = m.object.SetAnimTick(m.animTick)

	case DataUpdateMsg:
		m.applySnapshot(msg.Snapshot)
		m.statusMsg = ""

	case OpenEntryMsg:
		m.object = m.object.Select(msg.Index)
		m.viewMode = ViewObject
		var cmd tea.Cmd
		m.sky, cmd = m.sky.FocusIndex(msg.Index)
		cmds = append(cmds, cmd)

	case ErrorMsg:
		m.catalog = m.catalog.SetError(msg.Error)

	default:
		cmds = append(cmds, m.updateActiveView(msg))
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) setView(v ViewMode) {
	if v == ViewPlan {
		m.plan = m.plan.SetPicked(m.catalog.Picked())
	}
	m.viewMode = v
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.catalog = m.catalog.UpdateData(snap)
	m.object = m.object.UpdateData(snap)
	m.sky = m.sky.UpdateData(snap)
	m.plan = m.plan.UpdateData(snap).SetPicked(m.catalog.Picked())
}

func (m *Model) updateActiveView(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.viewMode {
	case ViewCatalog:
		m.catalog, cmd = m.catalog.Update(msg)
	case ViewObject:
		m.object, cmd = m.object.Update(msg)
	case ViewSky:
		m.sky, cmd = m.sky.Update(msg)
	case ViewPlan:
		m.plan, cmd = m.plan.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var content string
	switch m.viewMode {
	case ViewCatalog:
		content = m.catalog.View()
	case ViewObject:
		content = m.object.View()
	case ViewSky:
		content = m.sky.View()
	case ViewPlan:
		content = m.plan.View()
	}

	return m.renderHeader() + "\n" + content + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	return m.renderLogo() + m.renderTabs() + "\n"
}

func (m Model) renderLogo() string {
	// ASCII art with smooth truecolor gradient
	logo := []string{
		`  ██╗     ███████╗      ███████╗██╗  ██╗██╗   ██╗██████╗ ██╗      █████╗ ███╗   ██╗`,
		`  ██║     ██╔════╝      ██╔════╝██║ ██╔╝╚██╗ ██╔╝██╔══██╗██║     ██╔══██╗████╗  ██║`,
		`  ██║     ███████╗█████╗███████╗█████╔╝  ╚████╔╝ ██████╔╝██║     ███████║██╔██╗ ██║`,
		`  ██║     ╚════██║╚════╝╚════██║██╔═██╗   ╚██╔╝  ██╔═══╝ ██║     ██╔══██║██║╚██╗██║`,
		`  ███████╗███████║      ███████║██║  ██╗   ██║   ██║     ███████╗██║  ██║██║ ╚████║`,
		`  ╚══════╝╚══════╝      ╚══════╝╚═╝  ╚═╝   ╚═╝   ╚═╝     ╚══════╝╚═╝  ╚═╝╚═╝  ╚═══╝`,
	}

	var b strings.Builder
	b.WriteString("\n")

	for row, line := range logo {
		runes := []rune(line)
		for col, r := range runes {
			color := gradientColor(col, row, len(runes), len(logo))
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(string(r)))
		}
		b.WriteString("\n")
	}

	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	b.WriteString(muted.Render("  " + m.siteLine()))
	b.WriteString("\n\n")

	return b.String()
}

// siteLine describes the observer and night under the logo.
func (m Model) siteLine() string {
	obs := m.snapshot.Observer
	line := fmt.Sprintf("Night Sky Planner · v%s", version.Version)
	if m.snapshot.Instant.IsZero() {
		return line
	}

	site := obs.Name
	if site == "" {
		site = fmt.Sprintf("%.2f°, %.2f°", obs.LatDeg, obs.LonDeg)
	}
	line += " · " + site + " · " + m.snapshot.Instant.In(m.loc).Format("2006-01-02 15:04")

	night := m.snapshot.Night
	if !night.Sunset.IsZero() && !night.Polar {
		line += fmt.Sprintf(" · night %s → %s", clock(&night.Sunset, m.loc), clock(&night.Sunrise, m.loc))
	} else if night.Polar {
		line += " · no sunset"
	}
	return line
}

// gradientColor returns a hex color for a position in the logo gradient:
// blue, purple, magenta, pink from left to right, darker toward the bottom.
func gradientColor(col, row, width, height int) string {
	xRatio := float64(col) / float64(width)
	yRatio := float64(row) / float64(height)

	var r, g, b float64
	switch {
	case xRatio < 0.33:
		t := xRatio / 0.33
		r = 59 + t*(139-59)
		g = 130 + t*(92-130)
		b = 246
	case xRatio < 0.66:
		t := (xRatio - 0.33) / 0.33
		r = 139 + t*(217-139)
		g = 92 + t*(70-92)
		b = 246 + t*(239-246)
	default:
		t := (xRatio - 0.66) / 0.34
		r = 217 + t*(236-217)
		g = 70 + t*(72-70)
		b = 239 + t*(153-239)
	}

	brightness := 1.0 - yRatio*0.5
	return fmt.Sprintf("#%02X%02X%02X", clampByte(r*brightness), clampByte(g*brightness), clampByte(b*brightness))
}

func clampByte(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return int(v)
	}
}

func (m Model) renderTabs() string {
	tabs := []string{"[1] Catalog", "[2] Object", "[3] Sky", "[4] Session"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.viewMode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#7B2CBF"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	spinner := spinnerFrames[m.animTick%len(spinnerFrames)]

	var status string
	switch {
	case m.snapshot.LastError != nil:
		status = errStyle.Render("ERROR: " + m.snapshot.LastError.Error())
	case !m.snapshot.LastCompute.IsZero():
		status = accentStyle.Render(spinner) + dimStyle.Render(" "+m.visibleSummary())
		if m.state != nil {
			if interval := m.state.RefreshInterval(); interval > 0 {
				next := time.Until(m.snapshot.LastCompute.Add(interval)).Round(time.Second)
				if next < 0 {
					next = 0
				}
				status += dimStyle.Render(fmt.Sprintf(" · refresh in %ds", int(next.Seconds())))
			}
		}
		if m.snapshot.ComputeDuration > 0 {
			status += dimStyle.Render(" (" + m.snapshot.ComputeDuration.Round(time.Millisecond).String() + ")")
		}
	default:
		status = accentStyle.Render(spinner) + " " + m.renderShimmerText("Computing the sky...")
	}

	var help string
	switch m.viewMode {
	case ViewObject:
		help = "←/→: object"
	case ViewSky:
		help = "j/k: focus | l: labels"
	case ViewPlan:
		help = "↑↓: target | +/-: frames"
	default:
		help = "↑↓: navigate | enter: open | space: pick | n/m/p: gates | t: type | /: search"
	}
	help += " | r: recompute | tab: switch view"

	footer := "  " + status + "  " + dimStyle.Render("|") + "  " + dimStyle.Render(help)
	if m.statusMsg != "" {
		footer += "\n  " + dimStyle.Render(m.statusMsg)
	}
	return footer
}

func (m Model) visibleSummary() string {
	visible := 0
	for _, e := range m.snapshot.Entries {
		if e.Status == astro.StatusVisible {
			visible++
		}
	}
	return fmt.Sprintf("%d objects, %d visible tonight", len(m.snapshot.Entries), visible)
}

// ActiveView returns the current view.
func (m Model) ActiveView() ViewMode {
	return m.viewMode
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return AnimTickMsg(t)
	})
}

// SendDataUpdate creates a command that sends a data update message.
func SendDataUpdate(snapshot state.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return DataUpdateMsg{Snapshot: snapshot}
	}
}

// SendError creates a command that sends an error message.
func SendError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Error: err}
	}
}

// renderShimmerText renders text with a subtle moving shine effect.
func (m Model) renderShimmerText(text string) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}

	pos := m.animTick % (len(runes) + 8)

	var result strings.Builder
	for i, r := range runes {
		dist := i - pos + 4
		if dist < 0 {
			dist = -dist
		}

		var r8, g8, b8 int
		switch {
		case dist <= 1:
			r8, g8, b8 = 180, 160, 220
		case dist <= 3:
			r8, g8, b8 = 140, 120, 180
		case dist <= 5:
			r8, g8, b8 = 110, 90, 150
		default:
			r8, g8, b8 = 80, 70, 120
		}

		hexColor := fmt.Sprintf("#%02X%02X%02X", r8, g8, b8)
		result.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor)).Render(string(r)))
	}

	return result.String()
}
