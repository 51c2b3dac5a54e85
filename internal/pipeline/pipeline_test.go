package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/choirsched/internal/availability"
	"github.com/verte-zerg/choirsched/internal/config"
	"github.com/verte-zerg/choirsched/internal/model"
	"github.com/verte-zerg/choirsched/internal/schedule"
	"github.com/verte-zerg/choirsched/internal/tabular"
)

const responsesCSV = `Name and Part,part,Please select dates and times you are available on:
Anna,Soprano,"Mon 17th Nov 9am, Tues 18th Nov 2pm"
Beth,Soprano,Mon 17th Nov 9am
Carl,Tenor,"Tues 18th Nov 2pm, Garbage"
Dora,Alto,
Eve,Mezzo,Mon 17th Nov 9am
`

type fakeRecorder struct {
	runs []model.RunRecord
	err  error
}

func (f *fakeRecorder) RecordRun(_ context.Context, run model.RunRecord) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.runs = append(f.runs, run)
	return "run-1", nil
}

func testConfig(t *testing.T, responses string) model.RunConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultRunConfig()
	cfg.Responses = filepath.Join(dir, "responses.csv")
	cfg.Assignment = filepath.Join(dir, "out", "choir_assignment.csv")
	cfg.Stats = filepath.Join(dir, "out", "stats.csv")
	require.NoError(t, os.WriteFile(cfg.Responses, []byte(responses), 0o644))
	return cfg
}

func TestRunWritesBothTables(t *testing.T) {
	cfg := testConfig(t, responsesCSV)
	var logs bytes.Buffer
	rec := &fakeRecorder{}

	res, err := Run(context.Background(), cfg, zerolog.New(&logs), rec)
	require.NoError(t, err)
	require.Equal(t, "run-1", res.RunID)

	roster, err := tabular.Read(cfg.Assignment)
	require.NoError(t, err)
	require.Equal(t, []string{"Slot", "Soprano", "Alto", "Tenor", "Bass"}, roster.Header)
	require.Equal(t, [][]string{
		{"Mon 17th Nov 9am", "Anna\nBeth", "", "", ""},
		{"Tues 18th Nov 2pm", "Anna", "", "Carl", ""},
		{"Garbage", "", "", "Carl", ""},
	}, roster.Rows)

	statsTable, err := tabular.Read(cfg.Stats)
	require.NoError(t, err)
	require.Equal(t, []string{"part", "Name", "TotalAssignedSlots", "TotalWantedSlots"}, statsTable.Header)
	require.Equal(t, [][]string{
		{"Soprano", "Anna", "2", "2"},
		{"Soprano", "Beth", "1", "1"},
		{"Tenor", "Carl", "2", "2"},
	}, statsTable.Rows)

	require.Len(t, rec.runs, 1)
	run := rec.runs[0]
	assert.Equal(t, 3, run.Slots)
	assert.Equal(t, 3, run.People)
	assert.Equal(t, 5, run.AssignedCells)
	assert.Equal(t, cfg.Responses, run.Responses)
	assert.Equal(t, []string{"Anna", "Beth"}, run.Roster.Names("Mon 17th Nov 9am", model.Soprano))

	out := logs.String()
	assert.Contains(t, out, `"slot":"Garbage"`)
	assert.Contains(t, out, `"name":"Eve"`)
	assert.Contains(t, out, `"part":"Mezzo"`)
}

func TestAssignStageMissingColumnWritesNothing(t *testing.T) {
	cfg := testConfig(t, "Name and Part,part\nAnna,Soprano\n")

	_, err := Run(context.Background(), cfg, zerolog.Nop(), nil)
	require.Error(t, err)

	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	require.Equal(t, StageAssign, stageErr.Stage)

	var schemaErr *availability.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Equal(t, []string{config.DefaultAvailabilityColumn}, schemaErr.Missing)
	require.Contains(t, err.Error(), config.DefaultAvailabilityColumn)

	_, statErr := os.Stat(cfg.Assignment)
	require.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(cfg.Stats)
	require.True(t, os.IsNotExist(statErr))
}

func TestAssignStageMissingResponses(t *testing.T) {
	cfg := testConfig(t, responsesCSV)
	cfg.Responses = filepath.Join(t.TempDir(), "nope.csv")

	_, err := AssignStage(context.Background(), cfg, zerolog.Nop())
	var notFound *tabular.SourceNotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, cfg.Responses, notFound.Path)
}

func TestAssignStageRejectsBadCapacity(t *testing.T) {
	cfg := testConfig(t, responsesCSV)
	cfg.Capacity = 0

	_, err := AssignStage(context.Background(), cfg, zerolog.Nop())
	require.Error(t, err)
	_, statErr := os.Stat(cfg.Assignment)
	require.True(t, os.IsNotExist(statErr))
}

func TestStatsStageNeedsAssignment(t *testing.T) {
	cfg := testConfig(t, responsesCSV)

	_, err := StatsStage(context.Background(), cfg, zerolog.Nop())
	var stageErr *StageError
	require.True(t, errors.As(err, &stageErr))
	require.Equal(t, StageStats, stageErr.Stage)
	var notFound *tabular.SourceNotFoundError
	require.True(t, errors.As(err, &notFound))
}

func TestStatsStageReadsEditedRoster(t *testing.T) {
	cfg := testConfig(t, responsesCSV)
	roster := model.NewRoster([]string{"Mon 17th Nov 9am"})
	roster.Set("Mon 17th Nov 9am", model.Bass, []string{"Beth", "Zed"})
	require.NoError(t, tabular.Write(cfg.Assignment, schedule.EncodeRoster(roster)))

	res, err := StatsStage(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, []model.StatsRow{
		{Part: "Soprano", Name: "Beth", TotalAssignedSlots: 1, TotalWantedSlots: 1},
		{Part: "Unknown", Name: "Zed", TotalAssignedSlots: 1, TotalWantedSlots: 0},
	}, res.Rows)
}

func TestRunIgnoresRecorderFailure(t *testing.T) {
	cfg := testConfig(t, responsesCSV)
	var logs bytes.Buffer

	res, err := Run(context.Background(), cfg, zerolog.New(&logs), &fakeRecorder{err: errors.New("disk full")})
	require.NoError(t, err)
	require.Empty(t, res.RunID)
	require.Contains(t, logs.String(), "disk full")
}

func TestRunStopsOnCanceledContext(t *testing.T) {
	cfg := testConfig(t, responsesCSV)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, zerolog.Nop(), nil)
	require.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(cfg.Assignment)
	require.True(t, os.IsNotExist(statErr))
}

func TestReport(t *testing.T) {
	cfg := testConfig(t, responsesCSV)
	res, err := Run(context.Background(), cfg, zerolog.Nop(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, res, 1))
	out := buf.String()
	assert.Contains(t, out, "--- Success! ---")
	assert.Contains(t, out, cfg.Assignment)
	assert.Contains(t, out, cfg.Stats)
	assert.Contains(t, out, "Anna, Beth")
	assert.NotContains(t, out, "Tues 18th Nov 2pm")
	assert.Contains(t, out, "Fairness")
	assert.True(t, strings.Index(out, cfg.Assignment) < strings.Index(out, cfg.Stats))
}
