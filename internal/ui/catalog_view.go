package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyplan/internal/catalog"
	"github.com/litescript/ls-skyplan/internal/state"
)

// Styles for the catalog list
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Background(lipgloss.Color("235")).
			Padding(0, 1)

	rowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	gateOnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9D4EDD")).
			Bold(true)

	gateOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// OpenEntryMsg requests the object view for a catalog entry.
type OpenEntryMsg struct {
	Index int
}

// CatalogModel lists enriched entries through the filter gates.
type CatalogModel struct {
	width    int
	height   int
	cursor   int
	snapshot state.Snapshot
	lastErr  error

	filter    catalog.FilterOptions
	types     []string
	searching bool
	picked    map[int]bool // by entry Index

	rows []catalog.Enriched
}

// NewCatalogModel creates a catalog list with every gate closed.
func NewCatalogModel() CatalogModel {
	return CatalogModel{
		filter: catalog.FilterOptions{Type: catalog.TypeAll},
		picked: make(map[int]bool),
	}
}

// Init implements the Bubble Tea model interface.
func (m CatalogModel) Init() tea.Cmd {
	return nil
}

// SetSize updates the viewport size.
func (m CatalogModel) SetSize(width, height int) CatalogModel {
	m.width = width
	m.height = height
	return m
}

// UpdateData updates the model with new data.
func (m CatalogModel) UpdateData(snapshot state.Snapshot) CatalogModel {
	m.snapshot = snapshot
	m.types = catalog.ObjectTypes(snapshot.Entries)
	m.lastErr = snapshot.LastError
	return m.refilter()
}

// SetError sets the last error for display.
func (m CatalogModel) SetError(err error) CatalogModel {
	m.lastErr = err
	return m
}

// Searching reports whether keystrokes go to the keyword prompt.
func (m CatalogModel) Searching() bool {
	return m.searching
}

// Filter returns the active filter.
func (m CatalogModel) Filter() catalog.FilterOptions {
	return m.filter
}

// Rows returns the entries that pass the filter, in catalog order.
func (m CatalogModel) Rows() []catalog.Enriched {
	return m.rows
}

// Picked returns the selected entries in catalog order.
func (m CatalogModel) Picked() []catalog.Enriched {
	var out []catalog.Enriched
	for _, e := range m.snapshot.Entries {
		if m.picked[e.Index] {
			out = append(out, e)
		}
	}
	return out
}

func (m CatalogModel) refilter() CatalogModel {
	m.rows = catalog.Filter(m.snapshot.Entries, m.filter)
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

// Update handles messages.
func (m CatalogModel) Update(msg tea.Msg) (CatalogModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.searching {
		return m.updateSearch(key), nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "home":
		m.cursor = 0
	case "end":
		if len(m.rows) > 0 {
			m.cursor = len(m.rows) - 1
		}
	case "n":
		m.filter.IncludeNonVisible = !m.filter.IncludeNonVisible
		m = m.refilter()
	case "m":
		m.filter.IncludeMasked = !m.filter.IncludeMasked
		m = m.refilter()
	case "p":
		m.filter.IncludePartial = !m.filter.IncludePartial
		m = m.refilter()
	case "t":
		m.filter.Type = nextType(m.types, m.filter.Type)
		m = m.refilter()
	case "/":
		m.searching = true
	case "esc":
		m.filter.Keyword = ""
		m = m.refilter()
	case " ", "space":
		if e := m.Selected(); e != nil {
			if m.picked[e.Index] {
				delete(m.picked, e.Index)
			} else {
				m.picked[e.Index] = true
			}
		}
	case "enter":
		if e := m.Selected(); e != nil {
			idx := e.Index
			return m, func() tea.Msg { return OpenEntryMsg{Index: idx} }
		}
	}

	return m, nil
}

func (m CatalogModel) updateSearch(key tea.KeyMsg) CatalogModel {
	switch key.Type {
	case tea.KeyEnter:
		m.searching = false
	case tea.KeyEsc:
		m.searching = false
		m.filter.Keyword = ""
	case tea.KeyBackspace:
		if r := []rune(m.filter.Keyword); len(r) > 0 {
			m.filter.Keyword = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.filter.Keyword += " "
	case tea.KeyRunes:
		m.filter.Keyword += string(key.Runes)
	default:
		return m
	}
	m.cursor = 0
	return m.refilter()
}

// nextType cycles all -> each known type -> all.
func nextType(types []string, current string) string {
	if current == catalog.TypeAll || current == "" {
		if len(types) == 0 {
			return catalog.TypeAll
		}
		return types[0]
	}
	for i, t := range types {
		if t == current && i+1 < len(types) {
			return types[i+1]
		}
	}
	return catalog.TypeAll
}

// View renders the catalog list.
func (m CatalogModel) View() string {
	var b strings.Builder

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render("Error: " + m.lastErr.Error()))
		b.WriteString("\n\n")
	}

	if m.snapshot.Entries == nil && m.lastErr == nil {
		b.WriteString("Waiting for catalog...\n")
		return b.String()
	}

	b.WriteString(m.renderGates())
	b.WriteString("\n\n")
	b.WriteString(m.renderTable())

	return b.String()
}

func (m CatalogModel) renderGates() string {
	gate := func(key, label string, on bool) string {
		if on {
			return gateOnStyle.Render(fmt.Sprintf("[%s] %s", key, label))
		}
		return gateOffStyle.Render(fmt.Sprintf("[%s] %s", key, label))
	}

	parts := []string{
		gate("n", "non-visible", m.filter.IncludeNonVisible),
		gate("m", "masked", m.filter.IncludeMasked),
		gate("p", "partial", m.filter.IncludePartial),
		gate("t", "type: "+m.filter.Type, m.filter.Type != catalog.TypeAll),
	}

	search := "[/] " + m.filter.Keyword
	if m.searching {
		search += "▏"
		parts = append(parts, gateOnStyle.Render(search))
	} else {
		parts = append(parts, gate("/", m.filter.Keyword, m.filter.Keyword != ""))
	}

	return titleStyle.Render("Catalog") + "  " + strings.Join(parts, "  ")
}

func (m CatalogModel) renderTable() string {
	var b strings.Builder

	header := fmt.Sprintf("  %-18s %-14s %5s %6s %6s %-8s %5s %6s",
		"Name", "Type", "Mag", "Alt", "Az", "Status", "Hours", "Moon")
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString("  No objects pass the filter\n")
		return b.String()
	}

	maxRows := m.height - 6
	if maxRows < 5 {
		maxRows = 5
	}

	startIdx := 0
	if m.cursor >= maxRows {
		startIdx = m.cursor - maxRows + 1
	}
	endIdx := startIdx + maxRows
	if endIdx > len(m.rows) {
		endIdx = len(m.rows)
	}

	for i := startIdx; i < endIdx; i++ {
		e := m.rows[i]

		mark := " "
		if m.picked[e.Index] {
			mark = "●"
		}

		var row string
		if e.Enriched {
			row = fmt.Sprintf("%s %-18s %-14s %5.1f %6.1f %6.1f %-8s %5.1f %6.1f",
				mark,
				truncate(e.Name, 18),
				truncate(e.ObjectType, 14),
				e.Magnitude,
				e.AltitudeDeg,
				e.AzimuthDeg,
				statusLabel(e.CurrentStatus),
				e.VisibleHours(),
				e.MoonSeparationDeg,
			)
		} else {
			row = fmt.Sprintf("%s %-18s %-14s %5.1f %6s %6s %-8s %5s %6s",
				mark, truncate(e.Name, 18), truncate(e.ObjectType, 14), e.Magnitude,
				"--", "--", statusLabel(""), "--", "--")
		}

		switch {
		case i == m.cursor:
			b.WriteString(selectedRowStyle.Render(row))
		case e.Enriched:
			b.WriteString(colorByStatus(e.Status, row))
		default:
			b.WriteString(rowStyle.Render(row))
		}
		b.WriteString("\n")
	}

	if len(m.rows) > maxRows {
		b.WriteString(fmt.Sprintf("\n  Showing %d-%d of %d objects", startIdx+1, endIdx, len(m.rows)))
	}

	return b.String()
}

// Selected returns the entry under the cursor, if any.
func (m CatalogModel) Selected() *catalog.Enriched {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	e := m.rows[m.cursor]
	return &e
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
