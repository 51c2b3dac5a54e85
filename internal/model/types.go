// Package model defines shared data structures.
package model

import "time"

// Part is a choir voice part.
type Part string

// Voice parts in scheduling order.
const (
	Soprano Part = "Soprano"
	Alto    Part = "Alto"
	Tenor   Part = "Tenor"
	Bass    Part = "Bass"
)

// UnknownPart labels people who are on the roster but missing from the responses.
const UnknownPart = "Unknown"

// Parts lists the voice parts in the order they are filled for each slot.
var Parts = []Part{Soprano, Alto, Tenor, Bass}

// IsPart reports whether value names one of the four voice parts.
func IsPart(value string) bool {
	for _, p := range Parts {
		if string(p) == value {
			return true
		}
	}
	return false
}

// Record is one raw survey response row.
type Record struct {
	Name            string
	Part            string
	Availability    string
	HasAvailability bool
}

// Availability is a single (person, part, slot) triple.
type Availability struct {
	Name string
	Part Part
	Slot string
}

// Cell holds the people assigned to one part at one slot.
type Cell struct {
	Slot  string
	Part  Part
	Names []string
}

// Roster is the assignment table: one row per slot, one cell per part.
type Roster struct {
	Slots []string
	Cells map[string]map[Part][]string
}

// NewRoster creates a roster with an empty cell for every slot and part.
func NewRoster(slots []string) Roster {
	r := Roster{
		Slots: append([]string(nil), slots...),
		Cells: make(map[string]map[Part][]string, len(slots)),
	}
	for _, slot := range slots {
		r.Cells[slot] = make(map[Part][]string, len(Parts))
	}
	return r
}

// Names returns the people assigned to a cell.
func (r Roster) Names(slot string, part Part) []string {
	row, ok := r.Cells[slot]
	if !ok {
		return nil
	}
	return row[part]
}

// Set replaces the names in a cell, adding the slot row if it is new.
func (r *Roster) Set(slot string, part Part, names []string) {
	if r.Cells == nil {
		r.Cells = map[string]map[Part][]string{}
	}
	row, ok := r.Cells[slot]
	if !ok {
		row = make(map[Part][]string, len(Parts))
		r.Cells[slot] = row
		r.Slots = append(r.Slots, slot)
	}
	row[part] = append([]string(nil), names...)
}

// Walk visits every cell in slot order then part order.
func (r Roster) Walk(fn func(Cell)) {
	for _, slot := range r.Slots {
		for _, part := range Parts {
			fn(Cell{Slot: slot, Part: part, Names: r.Names(slot, part)})
		}
	}
}

// StatsRow summarizes one person's assignments.
type StatsRow struct {
	Part               string
	Name               string
	TotalAssignedSlots int
	TotalWantedSlots   int
}

// Columns names the survey fields read from the responses file.
type Columns struct {
	Name         string
	Part         string
	Availability string
}

// Required returns the column names in declaration order.
func (c Columns) Required() []string {
	return []string{c.Name, c.Part, c.Availability}
}

// RunConfig defines the inputs, outputs and limits for a run.
type RunConfig struct {
	Responses   string
	Assignment  string
	Stats       string
	Columns     Columns
	Capacity    int
	Year        int
	PreviewRows int
}

// RunRecord captures a completed run for the history store.
type RunRecord struct {
	StartedAt     time.Time
	Responses     string
	Assignment    string
	Slots         int
	People        int
	AssignedCells int
	FairnessScore float64
	Roster        Roster
}

// RunSummary is a stored run as listed by the history store.
type RunSummary struct {
	ID            string
	StartedAt     time.Time
	Responses     string
	Assignment    string
	Slots         int
	People        int
	AssignedCells int
	FairnessScore float64
}
