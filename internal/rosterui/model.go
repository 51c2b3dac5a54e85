// Package rosterui provides the Bubble Tea viewer for a roster and its statistics.
package rosterui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/choirsched/internal/model"
	"github.com/verte-zerg/choirsched/internal/schedule"
	"github.com/verte-zerg/choirsched/internal/stats"
	"github.com/verte-zerg/choirsched/internal/tabular"
)

const (
	tabRoster = iota
	tabStats
	tabFairness
)

const maxColumnWidth = 48

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Data is what the viewer shows.
type Data struct {
	AssignmentPath string
	StatsPath      string
	Roster         tabular.Table
	Stats          tabular.Table
}

// Model implements the Bubble Tea roster viewer.
type Model struct {
	data    Data
	summary stats.Summary
	filter  string

	tabs      []string
	activeTab int
	tables    []table.Model
	fairness  viewport.Model

	width  int
	height int

	filterMode  bool
	filterInput textinput.Model
}

// NewModel constructs a viewer over the given tables.
func NewModel(data Data) *Model {
	m := &Model{
		data:    data,
		summary: stats.Summarize(stats.DecodeRows(data.Stats)),
		tabs:    []string{"Roster", "Statistics", "Fairness"},
	}
	m.filterInput = textinput.New()
	m.filterInput.Prompt = "Name: "
	m.filterInput.Placeholder = "part of a name"
	m.filterInput.Cursor.SetMode(cursor.CursorBlink)
	m.tables = []table.Model{newTable(), newTable()}
	m.tables[tabRoster].Focus()
	m.fairness = viewport.New(0, 0)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "/":
			m.filterMode = true
			m.filterInput.SetValue(m.filter)
			m.filterInput.CursorEnd()
			return m, m.filterInput.Focus()
		case "g", "home":
			if m.activeTab == tabFairness {
				m.fairness.GotoTop()
			} else {
				m.tables[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabFairness {
				m.fairness.GotoBottom()
			} else {
				m.tables[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if m.activeTab == tabFairness {
				m.fairness, cmd = m.fairness.Update(msg)
			} else {
				m.tables[m.activeTab], cmd = m.tables[m.activeTab].Update(msg)
			}
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterMode = false
		m.filterInput.Blur()
		return m, nil
	case "enter":
		m.filterMode = false
		m.filterInput.Blur()
		m.filter = strings.TrimSpace(m.filterInput.Value())
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	return m, cmd
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.tables {
		m.tables[i].SetWidth(m.width)
		m.tables[i].SetHeight(maxInt(1, bodyHeight-1))
	}
	m.fairness.Width = m.width
	m.fairness.Height = bodyHeight
	m.filterInput.Width = maxInt(10, m.width-lipgloss.Width(m.filterInput.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	m.activeTab = next
	for i := range m.tables {
		if i == m.activeTab {
			m.tables[i].Focus()
		} else {
			m.tables[i].Blur()
		}
	}
}

// refresh rebuilds every tab for the current filter.
func (m *Model) refresh() {
	cols, rows := rosterTableData(m.data.Roster, m.filter)
	m.tables[tabRoster].SetRows(nil)
	m.tables[tabRoster].SetColumns(cols)
	m.tables[tabRoster].SetRows(rows)
	m.tables[tabRoster].GotoTop()

	cols, rows = statsTableData(m.data.Stats, m.filter)
	m.tables[tabStats].SetRows(nil)
	m.tables[tabStats].SetColumns(cols)
	m.tables[tabStats].SetRows(rows)
	m.tables[tabStats].GotoTop()

	m.fairness.SetContent(renderFairness(m.summary))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	source := m.data.AssignmentPath
	if m.activeTab != tabRoster {
		source = m.data.StatsPath
	}
	summary := fmt.Sprintf("File: %s  slots=%d  people=%d", source, len(m.data.Roster.Rows), len(m.data.Stats.Rows))
	if m.filter != "" {
		summary += fmt.Sprintf("  filter=%q", m.filter)
	}
	return tabs + "\n" + headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return m.filterInput.View()
	}
	return headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Top/bottom: g/G  Filter: /  Quit: q")
}

func (m *Model) renderBody() string {
	if m.activeTab == tabFairness {
		return m.fairness.View()
	}
	t := m.tables[m.activeTab]
	if len(t.Rows()) == 0 {
		if m.filter != "" {
			return fmt.Sprintf("No rows match %q.", m.filter)
		}
		return "No rows."
	}
	return tableMutedStyle.Render(t.View())
}

func newTable() table.Model {
	t := table.New(table.WithHeight(1))
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

// rosterTableData lays out one row per slot with names comma-joined. A
// non-empty filter keeps only slots where a name contains it.
func rosterTableData(t tabular.Table, filter string) ([]table.Column, []table.Row) {
	roster := schedule.DecodeRoster(t)
	header := []string{schedule.SlotHeader}
	for _, p := range model.Parts {
		header = append(header, string(p))
	}
	rows := make([]table.Row, 0, len(roster.Slots))
	for _, slot := range roster.Slots {
		row := table.Row{slot}
		match := filter == ""
		for _, p := range model.Parts {
			names := roster.Names(slot, p)
			if !match && anyNameContains(names, filter) {
				match = true
			}
			row = append(row, strings.Join(names, ", "))
		}
		if match {
			rows = append(rows, row)
		}
	}
	return sizeColumns(header, rows), rows
}

// statsTableData lays out the statistics rows, keeping only names that
// contain filter when it is non-empty.
func statsTableData(t tabular.Table, filter string) ([]table.Column, []table.Row) {
	nameIdx := t.Index(stats.NameHeader)
	rows := make([]table.Row, 0, len(t.Rows))
	for i := range t.Rows {
		if filter != "" && !anyNameContains([]string{t.Value(i, nameIdx)}, filter) {
			continue
		}
		row := make(table.Row, len(t.Header))
		for col := range t.Header {
			row[col] = t.Value(i, col)
		}
		rows = append(rows, row)
	}
	return sizeColumns(t.Header, rows), rows
}

func anyNameContains(names []string, filter string) bool {
	needle := strings.ToLower(filter)
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), needle) {
			return true
		}
	}
	return false
}

func sizeColumns(header []string, rows []table.Row) []table.Column {
	cols := make([]table.Column, len(header))
	for i, h := range header {
		width := lipgloss.Width(h)
		for _, row := range rows {
			if w := lipgloss.Width(row[i]); w > width {
				width = w
			}
		}
		cols[i] = table.Column{Title: h, Width: minInt(width, maxColumnWidth)}
	}
	return cols
}

func renderFairness(s stats.Summary) string {
	var buf bytes.Buffer
	if err := stats.WriteSummary(&buf, s); err != nil {
		return fmt.Sprintf("Failed to render fairness summary: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
