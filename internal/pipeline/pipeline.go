// Package pipeline runs the assign and stats stages end to end.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/verte-zerg/choirsched/internal/availability"
	"github.com/verte-zerg/choirsched/internal/model"
	"github.com/verte-zerg/choirsched/internal/schedule"
	"github.com/verte-zerg/choirsched/internal/stats"
	"github.com/verte-zerg/choirsched/internal/tabular"
)

// Stage names reported in StageError.
const (
	StageAssign = "assign"
	StageStats  = "stats"
)

// StageError names the stage a run failed in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Recorder stores completed runs.
type Recorder interface {
	RecordRun(ctx context.Context, run model.RunRecord) (string, error)
}

// AssignResult is the outcome of the assign stage.
type AssignResult struct {
	Path     string
	Roster   model.Roster
	Table    tabular.Table
	People   int
	Counters map[string]int
}

// StatsResult is the outcome of the stats stage.
type StatsResult struct {
	Path    string
	Rows    []model.StatsRow
	Table   tabular.Table
	Summary stats.Summary
}

// Result is the outcome of a full run.
type Result struct {
	RunID     string
	StartedAt time.Time
	Assign    AssignResult
	Stats     StatsResult
}

// AssignStage loads the responses, schedules them and writes the roster.
// Nothing is written when any step fails.
func AssignStage(ctx context.Context, cfg model.RunConfig, logger zerolog.Logger) (AssignResult, error) {
	res, err := assign(ctx, cfg, logger)
	if err != nil {
		return AssignResult{}, &StageError{Stage: StageAssign, Err: err}
	}
	return res, nil
}

func assign(ctx context.Context, cfg model.RunConfig, logger zerolog.Logger) (AssignResult, error) {
	records, err := availability.Load(cfg.Responses, cfg.Columns)
	if err != nil {
		return AssignResult{}, err
	}
	logger.Info().Str("path", cfg.Responses).Int("records", len(records)).Msg("loaded responses")
	for _, rec := range availability.UnknownParts(records) {
		logger.Warn().Str("name", rec.Name).Str("part", rec.Part).Msg("part is not a voice part, skipping")
	}

	avail := availability.Normalize(records)
	state := schedule.NewState(avail)
	sched := schedule.New(
		schedule.WithCapacity(cfg.Capacity),
		schedule.WithYear(cfg.Year),
		schedule.WithLogger(logger),
	)
	roster, err := sched.Assign(avail, state)
	if err != nil {
		return AssignResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return AssignResult{}, err
	}

	table := schedule.EncodeRoster(roster)
	if err := tabular.Write(cfg.Assignment, table); err != nil {
		return AssignResult{}, fmt.Errorf("failed to write assignment: %w", err)
	}
	logger.Info().Str("path", cfg.Assignment).Int("slots", len(roster.Slots)).Msg("wrote assignment")
	return AssignResult{
		Path:     cfg.Assignment,
		Roster:   roster,
		Table:    table,
		People:   len(state.People),
		Counters: state.Counters,
	}, nil
}

// StatsStage reads the persisted roster back, joins it with the responses and
// writes the per-person statistics.
func StatsStage(ctx context.Context, cfg model.RunConfig, logger zerolog.Logger) (StatsResult, error) {
	res, err := aggregate(ctx, cfg, logger)
	if err != nil {
		return StatsResult{}, &StageError{Stage: StageStats, Err: err}
	}
	return res, nil
}

func aggregate(ctx context.Context, cfg model.RunConfig, logger zerolog.Logger) (StatsResult, error) {
	roster, err := tabular.Read(cfg.Assignment)
	if err != nil {
		return StatsResult{}, err
	}
	records, err := availability.Load(cfg.Responses, cfg.Columns)
	if err != nil {
		return StatsResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return StatsResult{}, err
	}

	rows := stats.Aggregate(roster, records)
	table := stats.EncodeRows(rows, cfg.Columns.Part)
	if err := tabular.Write(cfg.Stats, table); err != nil {
		return StatsResult{}, fmt.Errorf("failed to write stats: %w", err)
	}
	logger.Info().Str("path", cfg.Stats).Int("people", len(rows)).Msg("wrote stats")
	return StatsResult{
		Path:    cfg.Stats,
		Rows:    rows,
		Table:   table,
		Summary: stats.Summarize(rows),
	}, nil
}

// Run executes the assign stage and, if it succeeds, the stats stage. When
// rec is non-nil the run is recorded; recording failures are only logged.
func Run(ctx context.Context, cfg model.RunConfig, logger zerolog.Logger, rec Recorder) (Result, error) {
	res := Result{StartedAt: time.Now()}
	var err error
	res.Assign, err = AssignStage(ctx, cfg, logger)
	if err != nil {
		return res, err
	}
	res.Stats, err = StatsStage(ctx, cfg, logger)
	if err != nil {
		return res, err
	}
	if rec == nil {
		return res, nil
	}

	id, err := rec.RecordRun(ctx, model.RunRecord{
		StartedAt:     res.StartedAt,
		Responses:     cfg.Responses,
		Assignment:    cfg.Assignment,
		Slots:         len(res.Assign.Roster.Slots),
		People:        res.Stats.Summary.People,
		AssignedCells: res.Stats.Summary.AssignedCells,
		FairnessScore: res.Stats.Summary.Score,
		Roster:        res.Assign.Roster,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to record run history")
		return res, nil
	}
	res.RunID = id
	logger.Debug().Str("run", id).Msg("recorded run")
	return res, nil
}
