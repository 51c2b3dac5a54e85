// Package schedule orders rehearsal slots and assigns singers to them.
package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

const slotLayout = "2 Jan 2006 3PM"

var ordinalSuffix = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)

// ParseWarning reports a slot label that could not be read as a date. The slot
// is still scheduled, after every parseable slot.
type ParseWarning struct {
	Label string
	Err   error
}

func (w ParseWarning) Error() string {
	return fmt.Sprintf("could not parse slot %q, placing at end: %v", w.Label, w.Err)
}

func (w ParseWarning) Unwrap() error {
	return w.Err
}

// ParseSlot reads labels such as "Weds 19th Nov 11am" in the given year. The
// leading weekday is ignored and ordinal suffixes are dropped; what remains
// must be exactly day, abbreviated month and an hour with am/pm.
func ParseSlot(label string, year int) (time.Time, error) {
	rest := label
	if _, after, ok := strings.Cut(label, " "); ok {
		rest = after
	}
	rest = ordinalSuffix.ReplaceAllString(rest, "$1")
	fields := strings.Split(rest, " ")
	if len(fields) != 3 {
		return time.Time{}, errors.New("expected day, month and time after the weekday")
	}
	value := fmt.Sprintf("%s %s %04d %s", fields[0], fields[1], year, strings.ToUpper(fields[2]))
	t, err := time.Parse(slotLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// OrderSlots returns the distinct labels sorted chronologically. Labels that
// do not parse keep their encounter order and come last; each one is reported
// as a ParseWarning.
func OrderSlots(labels []string, year int) ([]string, []ParseWarning) {
	type keyed struct {
		label  string
		at     time.Time
		parsed bool
	}
	seen := make(map[string]struct{}, len(labels))
	items := make([]keyed, 0, len(labels))
	var warnings []ParseWarning
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		at, err := ParseSlot(label, year)
		if err != nil {
			warnings = append(warnings, ParseWarning{Label: label, Err: err})
			items = append(items, keyed{label: label})
			continue
		}
		items = append(items, keyed{label: label, at: at, parsed: true})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].parsed != items[j].parsed {
			return items[i].parsed
		}
		if !items[i].parsed {
			return false
		}
		return items[i].at.Before(items[j].at)
	})

	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.label
	}
	return out, warnings
}
