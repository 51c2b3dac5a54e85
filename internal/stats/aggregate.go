package stats

import (
	"sort"
	"strconv"

	"github.com/verte-zerg/choirsched/internal/availability"
	"github.com/verte-zerg/choirsched/internal/model"
	"github.com/verte-zerg/choirsched/internal/schedule"
	"github.com/verte-zerg/choirsched/internal/tabular"
)

// Output headers after the part column.
const (
	NameHeader     = "Name"
	AssignedHeader = "TotalAssignedSlots"
	WantedHeader   = "TotalWantedSlots"
)

type personInfo struct {
	part   string
	wanted int
}

// Aggregate counts how many roster cells name each person and joins the
// counts with the responses. The first roster column is the slot label; every
// other column is read as a cell of newline-separated names. People missing
// from the responses are kept with part "Unknown". Rows are sorted by part,
// then most assigned, then name.
func Aggregate(roster tabular.Table, records []model.Record) []model.StatsRow {
	counts := map[string]int{}
	for i := range roster.Rows {
		for col := 1; col < len(roster.Header); col++ {
			for _, name := range schedule.SplitCell(roster.Value(i, col)) {
				if name == "" {
					continue
				}
				counts[name]++
			}
		}
	}

	lookup := make(map[string]personInfo, len(records))
	for _, rec := range records {
		if _, ok := lookup[rec.Name]; ok {
			continue
		}
		info := personInfo{part: rec.Part}
		if rec.HasAvailability {
			info.wanted = availability.CountEntries(rec.Availability)
		}
		lookup[rec.Name] = info
	}

	rows := make([]model.StatsRow, 0, len(counts))
	for name, assigned := range counts {
		row := model.StatsRow{Name: name, TotalAssignedSlots: assigned, Part: model.UnknownPart}
		if info, ok := lookup[name]; ok {
			row.TotalWantedSlots = info.wanted
			if info.part != "" {
				row.Part = info.part
			}
		}
		rows = append(rows, row)
	}
	SortRows(rows)
	return rows
}

// SortRows orders rows by part ascending, assigned slots descending and name
// ascending.
func SortRows(rows []model.StatsRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Part != rows[j].Part {
			return rows[i].Part < rows[j].Part
		}
		if rows[i].TotalAssignedSlots != rows[j].TotalAssignedSlots {
			return rows[i].TotalAssignedSlots > rows[j].TotalAssignedSlots
		}
		return rows[i].Name < rows[j].Name
	})
}

// EncodeRows lays rows out for persistence. partHeader names the first column.
func EncodeRows(rows []model.StatsRow, partHeader string) tabular.Table {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Part,
			r.Name,
			strconv.Itoa(r.TotalAssignedSlots),
			strconv.Itoa(r.TotalWantedSlots),
		})
	}
	return tabular.Table{
		Header: []string{partHeader, NameHeader, AssignedHeader, WantedHeader},
		Rows:   out,
	}
}

// DecodeRows reads a persisted statistics table. Unparseable counts read as 0.
func DecodeRows(t tabular.Table) []model.StatsRow {
	nameIdx := t.Index(NameHeader)
	assignedIdx := t.Index(AssignedHeader)
	wantedIdx := t.Index(WantedHeader)
	rows := make([]model.StatsRow, 0, len(t.Rows))
	for i := range t.Rows {
		assigned, _ := strconv.Atoi(t.Value(i, assignedIdx))
		wanted, _ := strconv.Atoi(t.Value(i, wantedIdx))
		rows = append(rows, model.StatsRow{
			Part:               t.Value(i, 0),
			Name:               t.Value(i, nameIdx),
			TotalAssignedSlots: assigned,
			TotalWantedSlots:   wanted,
		})
	}
	return rows
}
