package schedule

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/choirsched/internal/availability"
	"github.com/verte-zerg/choirsched/internal/model"
)

// DefaultCapacity is the most people assigned to one part at one slot.
const DefaultCapacity = 3

// DefaultYear is assumed when parsing slot labels, which omit the year.
const DefaultYear = 2025

// State is the per-run scheduling arena: the running assignment count of every
// person in the availability relation. Counts only ever go up.
type State struct {
	Counters map[string]int
	People   []string
}

// NewState starts every person in avail at zero assignments.
func NewState(avail []model.Availability) *State {
	people := availability.People(avail)
	counters := make(map[string]int, len(people))
	for _, p := range people {
		counters[p] = 0
	}
	return &State{Counters: counters, People: people}
}

// Decision describes one filled (slot, part) cell, with the counts of its
// candidates as they were before the cell was assigned.
type Decision struct {
	Slot       string
	Part       model.Part
	Candidates []string
	Before     map[string]int
	Assigned   []string
}

// Scheduler fills a roster slot by slot, favouring the least-assigned people.
type Scheduler struct {
	capacity int
	year     int
	logger   zerolog.Logger
	onDecide func(Decision)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithCapacity sets how many people each (slot, part) cell can take.
func WithCapacity(n int) Option {
	return func(s *Scheduler) { s.capacity = n }
}

// WithYear sets the year used to parse slot labels.
func WithYear(year int) Option {
	return func(s *Scheduler) { s.year = year }
}

// WithLogger sets the logger used for parse warnings and decisions.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithDecisionHook registers fn to be called after every non-empty cell.
func WithDecisionHook(fn func(Decision)) Option {
	return func(s *Scheduler) { s.onDecide = fn }
}

// New returns a Scheduler with capacity 3, year 2025 and a no-op logger unless
// overridden.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		capacity: DefaultCapacity,
		year:     DefaultYear,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assign builds the roster for avail, mutating state's counters as it goes.
// Slots are visited chronologically and parts in Soprano, Alto, Tenor, Bass
// order. The roster has a row for every distinct slot, even if all its cells
// stay empty.
func (s *Scheduler) Assign(avail []model.Availability, state *State) (model.Roster, error) {
	if s.capacity < 1 {
		return model.Roster{}, fmt.Errorf("capacity must be >= 1, got %d", s.capacity)
	}
	if state == nil {
		state = NewState(avail)
	}

	labels := make([]string, len(avail))
	for i, a := range avail {
		labels[i] = a.Slot
	}
	slots, warnings := OrderSlots(labels, s.year)
	for _, w := range warnings {
		s.logger.Warn().Str("slot", w.Label).Err(w.Err).Msg("could not parse slot date, placing at end")
	}

	candidates := indexCandidates(avail)
	roster := model.NewRoster(slots)
	for _, slot := range slots {
		for _, part := range model.Parts {
			pool := candidates[slot][part]
			if len(pool) == 0 {
				continue
			}
			var before map[string]int
			if s.onDecide != nil {
				before = snapshot(state.Counters, pool)
			}
			assigned := SelectCandidates(pool, state.Counters, s.capacity)
			roster.Set(slot, part, assigned)
			for _, name := range assigned {
				state.Counters[name]++
			}
			s.logger.Debug().
				Str("slot", slot).
				Str("part", string(part)).
				Int("candidates", len(pool)).
				Strs("assigned", assigned).
				Msg("filled cell")
			if s.onDecide != nil {
				s.onDecide(Decision{
					Slot:       slot,
					Part:       part,
					Candidates: append([]string(nil), pool...),
					Before:     before,
					Assigned:   append([]string(nil), assigned...),
				})
			}
		}
	}
	return roster, nil
}

// SelectCandidates returns everyone when they fit in capacity. Otherwise it
// ranks candidates by their current count, keeping the given order for equal
// counts, and returns the first capacity names.
func SelectCandidates(candidates []string, counters map[string]int, capacity int) []string {
	ranked := append([]string(nil), candidates...)
	if len(ranked) <= capacity {
		return ranked
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return counters[ranked[i]] < counters[ranked[j]]
	})
	return ranked[:capacity]
}

// indexCandidates groups people by slot and part in relation order, listing
// each person once per cell.
func indexCandidates(avail []model.Availability) map[string]map[model.Part][]string {
	index := map[string]map[model.Part][]string{}
	seen := map[model.Availability]struct{}{}
	for _, a := range avail {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		byPart, ok := index[a.Slot]
		if !ok {
			byPart = map[model.Part][]string{}
			index[a.Slot] = byPart
		}
		byPart[a.Part] = append(byPart[a.Part], a.Name)
	}
	return index
}

func snapshot(counters map[string]int, names []string) map[string]int {
	out := make(map[string]int, len(names))
	for _, n := range names {
		out[n] = counters[n]
	}
	return out
}
