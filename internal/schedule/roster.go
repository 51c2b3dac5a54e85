package schedule

import (
	"strings"

	"github.com/verte-zerg/choirsched/internal/model"
	"github.com/verte-zerg/choirsched/internal/tabular"
)

// SlotHeader is the index column of a persisted roster.
const SlotHeader = "Slot"

// NameSeparator joins the names within one persisted roster cell.
const NameSeparator = "\n"

// EncodeRoster lays the roster out as one row per slot and one column per
// part. Empty cells are written as empty strings.
func EncodeRoster(r model.Roster) tabular.Table {
	header := make([]string, 0, len(model.Parts)+1)
	header = append(header, SlotHeader)
	for _, p := range model.Parts {
		header = append(header, string(p))
	}
	rows := make([][]string, 0, len(r.Slots))
	for _, slot := range r.Slots {
		row := make([]string, 0, len(header))
		row = append(row, slot)
		for _, p := range model.Parts {
			row = append(row, strings.Join(r.Names(slot, p), NameSeparator))
		}
		rows = append(rows, row)
	}
	return tabular.Table{Header: header, Rows: rows}
}

// DecodeRoster reads a persisted roster back. The first column holds slot
// labels; columns not named after a voice part are ignored.
func DecodeRoster(t tabular.Table) model.Roster {
	slots := make([]string, 0, len(t.Rows))
	for i := range t.Rows {
		slots = append(slots, t.Value(i, 0))
	}
	r := model.NewRoster(slots)
	for col := 1; col < len(t.Header); col++ {
		if !model.IsPart(t.Header[col]) {
			continue
		}
		part := model.Part(t.Header[col])
		for i := range t.Rows {
			if names := SplitCell(t.Value(i, col)); len(names) > 0 {
				r.Set(t.Value(i, 0), part, names)
			}
		}
	}
	return r
}

// SplitCell returns the names stored in a persisted cell.
func SplitCell(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, NameSeparator)
}
