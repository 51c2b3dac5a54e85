package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/choirsched/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestRecordAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	roster := model.NewRoster([]string{"Mon 17th Nov 9am", "Tues 18th Nov 2pm"})
	roster.Set("Mon 17th Nov 9am", model.Soprano, []string{"Anna", "Beth"})
	roster.Set("Tues 18th Nov 2pm", model.Bass, []string{"Anna"})

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := st.RecordRun(ctx, model.RunRecord{
			StartedAt:     time.Unix(0, 0).Add(time.Duration(i) * time.Minute),
			Responses:     "responses.csv",
			Assignment:    "choir_assignment.csv",
			Slots:         2,
			People:        2,
			AssignedCells: 3,
			FairnessScore: 66.7,
			Roster:        roster,
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := st.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	require.Equal(t, ids[2], runs[0].ID)
	require.Equal(t, ids[1], runs[1].ID)
	require.Equal(t, 3, runs[0].AssignedCells)
	require.InDelta(t, 66.7, runs[0].FairnessScore, 1e-9)

	all, err := st.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	got, err := st.RunRoster(ctx, ids[0])
	require.NoError(t, err)
	require.Equal(t, []string{"Mon 17th Nov 9am", "Tues 18th Nov 2pm"}, got.Slots)
	require.Equal(t, []string{"Anna", "Beth"}, got.Names("Mon 17th Nov 9am", model.Soprano))
	require.Equal(t, []string{"Anna"}, got.Names("Tues 18th Nov 2pm", model.Bass))

	counts, err := st.NameCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int{"Anna": 6, "Beth": 3}, counts)
}

func TestRunRosterUnknownID(t *testing.T) {
	st := openTestStore(t)
	got, err := st.RunRoster(context.Background(), "missing")
	require.NoError(t, err)
	require.Empty(t, got.Slots)
}
