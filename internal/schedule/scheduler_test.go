package schedule

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/choirsched/internal/model"
)

func triples(slot string, part model.Part, names ...string) []model.Availability {
	out := make([]model.Availability, 0, len(names))
	for _, n := range names {
		out = append(out, model.Availability{Name: n, Part: part, Slot: slot})
	}
	return out
}

func TestSelectCandidatesPrefersFewestAssignments(t *testing.T) {
	counters := map[string]int{"A": 0, "B": 1, "C": 0, "D": 2}
	got := SelectCandidates([]string{"A", "B", "C", "D"}, counters, 3)
	require.Equal(t, []string{"A", "C", "B"}, got)
}

func TestSelectCandidatesUnderCapacityKeepsAll(t *testing.T) {
	counters := map[string]int{"A": 5, "B": 0}
	require.Equal(t, []string{"A", "B"}, SelectCandidates([]string{"A", "B"}, counters, 3))
}

func TestAssignExampleScenario(t *testing.T) {
	slot := "Mon 17th Nov 9am"
	avail := triples(slot, model.Soprano, "A", "B", "C", "D")
	state := NewState(avail)
	state.Counters["B"] = 1
	state.Counters["D"] = 2

	roster, err := New().Assign(avail, state)
	require.NoError(t, err)
	require.Equal(t, []string{"A", "C", "B"}, roster.Names(slot, model.Soprano))
	require.Equal(t, map[string]int{"A": 1, "B": 2, "C": 1, "D": 2}, state.Counters)
}

func TestAssignEmptyCellsAndAllSlotsPresent(t *testing.T) {
	avail := append(triples("Tues 18th Nov 2pm", model.Alto, "Ann"),
		model.Availability{Name: "Baz", Part: "Baritone", Slot: "Mon 17th Nov 9am"})
	state := NewState(avail)

	roster, err := New().Assign(avail, state)
	require.NoError(t, err)
	require.Equal(t, []string{"Mon 17th Nov 9am", "Tues 18th Nov 2pm"}, roster.Slots)
	for _, p := range model.Parts {
		require.Empty(t, roster.Names("Mon 17th Nov 9am", p))
	}
	require.Equal(t, []string{"Ann"}, roster.Names("Tues 18th Nov 2pm", model.Alto))
	require.Equal(t, 0, state.Counters["Baz"])
	require.Equal(t, 1, state.Counters["Ann"])
}

func TestAssignCarriesCountsAcrossSlots(t *testing.T) {
	first := "Mon 17th Nov 9am"
	second := "Tues 18th Nov 2pm"
	// Listed second-slot-first to check chronological processing.
	avail := append(triples(second, model.Bass, "W", "X", "Y", "Z"),
		triples(first, model.Bass, "W", "X", "Y")...)

	roster, err := New().Assign(avail, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"W", "X", "Y"}, roster.Names(first, model.Bass))
	require.Equal(t, []string{"Z", "W", "X"}, roster.Names(second, model.Bass))
}

func TestAssignDeduplicatesCandidates(t *testing.T) {
	slot := "Mon 17th Nov 9am"
	avail := triples(slot, model.Tenor, "T1", "T1", "T2")
	state := NewState(avail)
	roster, err := New().Assign(avail, state)
	require.NoError(t, err)
	require.Equal(t, []string{"T1", "T2"}, roster.Names(slot, model.Tenor))
	require.Equal(t, 1, state.Counters["T1"])
}

func TestAssignRejectsBadCapacity(t *testing.T) {
	_, err := New(WithCapacity(0)).Assign(nil, nil)
	require.Error(t, err)
}

func TestAssignLogsParseWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	avail := triples("Garbage Label", model.Soprano, "A")
	_, err := New(WithLogger(logger)).Assign(avail, nil)
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"slot":"Garbage Label"`)
	require.Contains(t, buf.String(), `"level":"warn"`)
}

func buildRelation() []model.Availability {
	slots := []string{"Mon 17th Nov 9am", "Tues 18th Nov 2pm", "Weds 19th Nov 11am", "Fri 21st Nov 6pm", "Not a date"}
	var avail []model.Availability
	for i, slot := range slots {
		for pi, part := range model.Parts {
			for n := 0; n < 7; n++ {
				if (n+i+pi)%3 == 0 {
					continue
				}
				avail = append(avail, model.Availability{
					Name: fmt.Sprintf("%s-%d", part, n),
					Part: part,
					Slot: slot,
				})
			}
		}
	}
	return avail
}

func TestAssignProperties(t *testing.T) {
	avail := buildRelation()
	allowed := map[model.Availability]bool{}
	for _, a := range avail {
		allowed[a] = true
	}

	last := map[string]int{}
	var decisions []Decision
	hook := func(d Decision) {
		decisions = append(decisions, d)
		for name, before := range d.Before {
			require.GreaterOrEqual(t, before, last[name], "counter for %s decreased", name)
			last[name] = before
		}
	}
	state := NewState(avail)
	roster, err := New(WithDecisionHook(hook)).Assign(avail, state)
	require.NoError(t, err)

	roster.Walk(func(c model.Cell) {
		for _, name := range c.Names {
			require.True(t, allowed[model.Availability{Name: name, Part: c.Part, Slot: c.Slot}],
				"%s not available for %s/%s", name, c.Slot, c.Part)
		}
		require.LessOrEqual(t, len(c.Names), 3)
	})

	require.NotEmpty(t, decisions)
	for _, d := range decisions {
		want := len(d.Candidates)
		if want > 3 {
			want = 3
		}
		require.Len(t, d.Assigned, want)
		if len(d.Candidates) <= 3 {
			continue
		}
		assigned := map[string]bool{}
		for _, n := range d.Assigned {
			assigned[n] = true
		}
		for _, a := range d.Assigned {
			for _, c := range d.Candidates {
				if assigned[c] {
					continue
				}
				require.LessOrEqual(t, d.Before[a], d.Before[c],
					"%s assigned over %s at %s/%s", a, c, d.Slot, d.Part)
			}
		}
	}

	total := 0
	roster.Walk(func(c model.Cell) { total += len(c.Names) })
	sum := 0
	for _, v := range state.Counters {
		sum += v
	}
	require.Equal(t, total, sum)
}

func TestAssignDeterministic(t *testing.T) {
	avail := buildRelation()
	first, err := New().Assign(avail, nil)
	require.NoError(t, err)
	second, err := New().Assign(avail, nil)
	require.NoError(t, err)
	require.Equal(t, EncodeRoster(first), EncodeRoster(second))
}

func TestRosterCodecRoundTrip(t *testing.T) {
	avail := buildRelation()
	roster, err := New().Assign(avail, nil)
	require.NoError(t, err)

	table := EncodeRoster(roster)
	require.Equal(t, []string{"Slot", "Soprano", "Alto", "Tenor", "Bass"}, table.Header)
	require.Len(t, table.Rows, len(roster.Slots))
	require.Equal(t, "Not a date", table.Rows[len(table.Rows)-1][0])

	decoded := DecodeRoster(table)
	require.Equal(t, roster.Slots, decoded.Slots)
	roster.Walk(func(c model.Cell) {
		require.Equal(t, len(c.Names), len(decoded.Names(c.Slot, c.Part)))
	})
	require.Equal(t, table, EncodeRoster(decoded))
}
