// Package availability turns survey responses into (person, part, slot) triples.
package availability

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/choirsched/internal/model"
	"github.com/verte-zerg/choirsched/internal/tabular"
)

// SchemaError is returned when the responses lack one or more required columns.
type SchemaError struct {
	Source   string
	Expected []string
	Found    []string
	Missing  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s is missing required columns %s (needed: %s; found: %s)",
		e.Source, quoteJoin(e.Missing), quoteJoin(e.Expected), quoteJoin(e.Found))
}

func quoteJoin(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Load reads the responses file at path and extracts its records.
func Load(path string, cols model.Columns) ([]model.Record, error) {
	t, err := tabular.Read(path)
	if err != nil {
		return nil, err
	}
	return ReadRecords(t, cols, path)
}

// ReadRecords extracts one record per row. Name and part are trimmed; an empty
// availability cell marks the record as having no availability.
func ReadRecords(t tabular.Table, cols model.Columns, source string) ([]model.Record, error) {
	if missing := t.Missing(cols.Required()...); len(missing) > 0 {
		return nil, &SchemaError{
			Source:   source,
			Expected: cols.Required(),
			Found:    append([]string(nil), t.Header...),
			Missing:  missing,
		}
	}
	nameIdx := t.Index(cols.Name)
	partIdx := t.Index(cols.Part)
	availIdx := t.Index(cols.Availability)

	records := make([]model.Record, 0, len(t.Rows))
	for i := range t.Rows {
		avail := t.Value(i, availIdx)
		records = append(records, model.Record{
			Name:            strings.TrimSpace(t.Value(i, nameIdx)),
			Part:            strings.TrimSpace(t.Value(i, partIdx)),
			Availability:    avail,
			HasAvailability: avail != "",
		})
	}
	return records, nil
}
