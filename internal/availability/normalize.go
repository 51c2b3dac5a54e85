package availability

import (
	"strings"

	"github.com/verte-zerg/choirsched/internal/model"
)

// Normalize flattens records into availability triples, one per person and
// non-empty slot label, in record order then label order. Records without an
// availability value produce nothing.
func Normalize(records []model.Record) []model.Availability {
	var out []model.Availability
	for _, rec := range records {
		if !rec.HasAvailability {
			continue
		}
		for _, label := range SplitSlots(rec.Availability) {
			out = append(out, model.Availability{
				Name: rec.Name,
				Part: model.Part(rec.Part),
				Slot: label,
			})
		}
	}
	return out
}

// SplitSlots splits a comma-delimited availability value into trimmed,
// non-empty slot labels.
func SplitSlots(value string) []string {
	parts := strings.Split(value, ",")
	labels := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		labels = append(labels, part)
	}
	return labels
}

// CountEntries counts the comma-delimited entries of a raw availability value,
// including empty ones. An empty value has no entries.
func CountEntries(value string) int {
	if value == "" {
		return 0
	}
	return strings.Count(value, ",") + 1
}

// People returns the distinct names in the relation in first-appearance order.
func People(avail []model.Availability) []string {
	seen := make(map[string]struct{}, len(avail))
	var people []string
	for _, a := range avail {
		if _, ok := seen[a.Name]; ok {
			continue
		}
		seen[a.Name] = struct{}{}
		people = append(people, a.Name)
	}
	return people
}

// UnknownParts returns records whose part is not one of the voice parts, one
// per distinct name. Such people never become candidates.
func UnknownParts(records []model.Record) []model.Record {
	seen := map[string]struct{}{}
	var out []model.Record
	for _, rec := range records {
		if !rec.HasAvailability || model.IsPart(rec.Part) {
			continue
		}
		if _, ok := seen[rec.Name]; ok {
			continue
		}
		seen[rec.Name] = struct{}{}
		out = append(out, rec)
	}
	return out
}
