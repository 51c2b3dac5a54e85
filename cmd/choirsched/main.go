// Package main provides the CLI entrypoint for choirsched.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/choirsched/internal/config"
	"github.com/verte-zerg/choirsched/internal/logging"
	"github.com/verte-zerg/choirsched/internal/model"
	"github.com/verte-zerg/choirsched/internal/pipeline"
	"github.com/verte-zerg/choirsched/internal/rosterui"
	"github.com/verte-zerg/choirsched/internal/schedule"
	"github.com/verte-zerg/choirsched/internal/stats"
	"github.com/verte-zerg/choirsched/internal/store"
	"github.com/verte-zerg/choirsched/internal/tabular"
)

const defaultHistoryLast = 10

var (
	runResponses   string
	runAssignment  string
	runStats       string
	runCapacity    int
	runYear        int
	runNameCol     string
	runPartCol     string
	runAvailCol    string
	runNoHistory   bool
	runLogLevel    string
	runPreviewRows int

	historyLast   int
	historyShow   string
	historyPeople bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	rootCmd := newRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "choirsched",
		Short:         "Fair choir volunteer scheduler",
		Long:          "Assign choir volunteers to rehearsal slots from survey responses, then summarize how many slots each person got.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runFullCmd,
	}
	addRunFlags(rootCmd)

	rootCmd.AddCommand(newAssignCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newViewCmd())

	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runResponses, "responses", config.DefaultResponsesPath, "survey responses file (.csv or .xlsx)")
	cmd.Flags().StringVar(&runAssignment, "assignment", config.DefaultAssignmentPath, "assignment table output (.csv or .xlsx)")
	cmd.Flags().StringVar(&runStats, "stats", config.DefaultStatsPath, "statistics output (.csv or .xlsx)")
	cmd.Flags().IntVar(&runCapacity, "capacity", config.DefaultCapacity, "people per part per slot")
	cmd.Flags().IntVar(&runYear, "year", config.DefaultYear, "year assumed for slot labels")
	cmd.Flags().StringVar(&runNameCol, "name-col", config.DefaultNameColumn, "name column header")
	cmd.Flags().StringVar(&runPartCol, "part-col", config.DefaultPartColumn, "part column header")
	cmd.Flags().StringVar(&runAvailCol, "avail-col", config.DefaultAvailabilityColumn, "availability column header")
	cmd.Flags().BoolVar(&runNoHistory, "no-history", false, "do not record the run in history")
	cmd.Flags().StringVar(&runLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().IntVar(&runPreviewRows, "preview-rows", config.DefaultPreviewRows, "rows shown in each preview")
}

// loadRunConfig merges the config file into unset flags and validates the result.
func loadRunConfig(cmd *cobra.Command) (model.RunConfig, config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.RunConfig{}, config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "responses", &runResponses, fileCfg.Files.Responses)
	applyStringConfig(cmd, "assignment", &runAssignment, fileCfg.Files.Assignment)
	applyStringConfig(cmd, "stats", &runStats, fileCfg.Files.Stats)
	applyIntConfig(cmd, "capacity", &runCapacity, fileCfg.Schedule.Capacity)
	applyIntConfig(cmd, "year", &runYear, fileCfg.Schedule.Year)
	applyStringConfig(cmd, "name-col", &runNameCol, fileCfg.Columns.Name)
	applyStringConfig(cmd, "part-col", &runPartCol, fileCfg.Columns.Part)
	applyStringConfig(cmd, "avail-col", &runAvailCol, fileCfg.Columns.Availability)
	applyIntConfig(cmd, "preview-rows", &runPreviewRows, fileCfg.Report.PreviewRows)

	cfg := model.RunConfig{
		Responses:  runResponses,
		Assignment: runAssignment,
		Stats:      runStats,
		Columns: model.Columns{
			Name:         runNameCol,
			Part:         runPartCol,
			Availability: runAvailCol,
		},
		Capacity:    runCapacity,
		Year:        runYear,
		PreviewRows: runPreviewRows,
	}
	if err := config.Validate(cfg); err != nil {
		return model.RunConfig{}, config.FileConfig{}, err
	}
	return cfg, fileCfg, nil
}

func newLogger(component string) (zerolog.Logger, error) {
	logger, err := logging.New(os.Stderr, runLogLevel, component)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid --log-level: %w", err)
	}
	return logger, nil
}

func runFullCmd(cmd *cobra.Command, _ []string) error {
	cfg, fileCfg, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger("run")
	if err != nil {
		return err
	}

	var rec pipeline.Recorder
	if historyEnabled(fileCfg) {
		st, err := store.Open(historyPath(fileCfg))
		if err != nil {
			logger.Warn().Err(err).Msg("run history unavailable")
		} else {
			defer func() {
				if cerr := st.Close(); cerr != nil {
					logErrf("failed to close history db: %v\n", cerr)
				}
			}()
			rec = st
		}
	}

	res, err := pipeline.Run(cmd.Context(), cfg, logger, rec)
	if err != nil {
		return err
	}
	return pipeline.Report(cmd.OutOrStdout(), res, cfg.PreviewRows)
}

func newAssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Build the assignment table only",
		Args:  cobra.NoArgs,
		RunE:  runAssignCmd,
	}
	addRunFlags(cmd)
	return cmd
}

func runAssignCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(pipeline.StageAssign)
	if err != nil {
		return err
	}
	res, err := pipeline.AssignStage(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	return pipeline.ReportAssign(cmd.OutOrStdout(), res, cfg.PreviewRows)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize an existing assignment table",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	addRunFlags(cmd)
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadRunConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(pipeline.StageStats)
	if err != nil {
		return err
	}
	res, err := pipeline.StatsStage(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	return pipeline.ReportStats(cmd.OutOrStdout(), res, cfg.PreviewRows)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N runs (0 for all)")
	cmd.Flags().StringVar(&historyShow, "show", "", "print the roster of the run with this ID")
	cmd.Flags().BoolVar(&historyPeople, "people", false, "print how many cells named each person across all runs")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	st, err := store.Open(historyPath(fileCfg))
	if err != nil {
		return fmt.Errorf("failed to open history db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close history db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	switch {
	case historyShow != "":
		roster, err := st.RunRoster(ctx, historyShow)
		if err != nil {
			return fmt.Errorf("failed to load run: %w", err)
		}
		if len(roster.Slots) == 0 {
			return fmt.Errorf("no roster recorded for run %q", historyShow)
		}
		table := schedule.EncodeRoster(roster)
		return stats.WritePreview(out, table, len(table.Rows))
	case historyPeople:
		counts, err := st.NameCounts(ctx)
		if err != nil {
			return fmt.Errorf("failed to load counts: %w", err)
		}
		return writeNameCounts(out, counts)
	default:
		runs, err := st.ListRuns(ctx, historyLast)
		if err != nil {
			return fmt.Errorf("failed to list runs: %w", err)
		}
		if len(runs) == 0 {
			logErrln("No runs recorded yet.")
			return nil
		}
		return writeRuns(out, runs)
	}
}

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the assignment and statistics tables",
		Args:  cobra.NoArgs,
		RunE:  runViewCmd,
	}
	cmd.Flags().StringVar(&runAssignment, "assignment", config.DefaultAssignmentPath, "assignment table to show")
	cmd.Flags().StringVar(&runStats, "stats", config.DefaultStatsPath, "statistics table to show")
	return cmd
}

func runViewCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "assignment", &runAssignment, fileCfg.Files.Assignment)
	applyStringConfig(cmd, "stats", &runStats, fileCfg.Files.Stats)

	roster, err := tabular.Read(runAssignment)
	if err != nil {
		return err
	}
	statsTable, err := tabular.Read(runStats)
	if err != nil {
		return err
	}

	m := rosterui.NewModel(rosterui.Data{
		AssignmentPath: runAssignment,
		StatsPath:      runStats,
		Roster:         roster,
		Stats:          statsTable,
	})
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

func historyEnabled(fileCfg config.FileConfig) bool {
	if runNoHistory {
		return false
	}
	if fileCfg.History.Enabled != nil {
		return *fileCfg.History.Enabled
	}
	return true
}

func historyPath(fileCfg config.FileConfig) string {
	if fileCfg.History.Path != nil && *fileCfg.History.Path != "" {
		return *fileCfg.History.Path
	}
	return config.DefaultHistoryPath()
}

func writeRuns(w io.Writer, runs []model.RunSummary) error {
	headers := []string{"ID", "Started", "Slots", "People", "Cells", "Fairness", "Responses"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(r.Slots),
			strconv.Itoa(r.People),
			strconv.Itoa(r.AssignedCells),
			fmt.Sprintf("%.1f%%", r.FairnessScore),
			r.Responses,
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true}
	for _, line := range stats.FormatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func writeNameCounts(w io.Writer, counts map[string]int) error {
	rows := make([]model.StatsRow, 0, len(counts))
	for name, n := range counts {
		rows = append(rows, model.StatsRow{Name: name, TotalAssignedSlots: n})
	}
	stats.SortRows(rows)
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{r.Name, strconv.Itoa(r.TotalAssignedSlots)})
	}
	for _, line := range stats.FormatTable([]string{"Name", "Cells"}, table, map[int]bool{1: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# choirsched configuration
# Uncomment a value to enable it. CLI flags override config values.

[columns]
# name = %q
# part = %q
# availability = %q

[files]
# responses = %q     # .csv or .xlsx
# assignment = %q
# stats = %q

[schedule]
# capacity = %d      # People per part per slot
# year = %d          # Year assumed for slot labels

[history]
# enabled = true
# path = %q

[report]
# preview-rows = %d
`,
		config.DefaultNameColumn,
		config.DefaultPartColumn,
		config.DefaultAvailabilityColumn,
		config.DefaultResponsesPath,
		config.DefaultAssignmentPath,
		config.DefaultStatsPath,
		config.DefaultCapacity,
		config.DefaultYear,
		config.DefaultHistoryPath(),
		config.DefaultPreviewRows,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
