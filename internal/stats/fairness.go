package stats

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/stat"

	"github.com/verte-zerg/choirsched/internal/model"
)

// PartSummary describes the spread of assignments within one part.
type PartSummary struct {
	Part          string
	People        int
	AssignedCells int
	Mean          float64
	StdDev        float64
	Score         float64
}

// Summary describes the spread of assignments across everyone on the roster.
type Summary struct {
	PartSummary
	ByPart []PartSummary
}

// Summarize computes the mean and population standard deviation of assigned
// slots overall and per part. Rows are expected in SortRows order.
func Summarize(rows []model.StatsRow) Summary {
	var s Summary
	s.PartSummary = summarizePart("All", rows)

	start := 0
	for i := 1; i <= len(rows); i++ {
		if i < len(rows) && rows[i].Part == rows[start].Part {
			continue
		}
		s.ByPart = append(s.ByPart, summarizePart(rows[start].Part, rows[start:i]))
		start = i
	}
	return s
}

func summarizePart(part string, rows []model.StatsRow) PartSummary {
	ps := PartSummary{Part: part, People: len(rows), Score: 100}
	if len(rows) == 0 {
		return ps
	}
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = float64(r.TotalAssignedSlots)
		ps.AssignedCells += r.TotalAssignedSlots
	}
	ps.Mean, ps.StdDev = stat.PopMeanStdDev(values, nil)
	ps.Score = FairnessScore(ps.Mean, ps.StdDev)
	return ps
}

// FairnessScore maps spread to a 0-100 percentage: 100 when everyone has the
// same number of slots, 0 once the deviation reaches the mean.
func FairnessScore(mean, stdDev float64) float64 {
	if mean == 0 {
		return 100
	}
	score := (1 - stdDev/mean) * 100
	if score < 0 {
		return 0
	}
	return score
}

// WriteSummary renders the summary as a text table.
func WriteSummary(w io.Writer, s Summary) error {
	headers := []string{"Part", "People", "Slots", "Mean", "StdDev", "Fairness"}
	rows := make([][]string, 0, len(s.ByPart)+1)
	for _, p := range append(append([]PartSummary(nil), s.ByPart...), s.PartSummary) {
		rows = append(rows, []string{
			p.Part,
			fmt.Sprintf("%d", p.People),
			fmt.Sprintf("%d", p.AssignedCells),
			fmt.Sprintf("%.2f", p.Mean),
			fmt.Sprintf("%.2f", p.StdDev),
			fmt.Sprintf("%.1f%%", p.Score),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range FormatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
