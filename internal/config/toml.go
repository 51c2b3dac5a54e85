// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/choirsched/internal/model"
)

// Defaults used when neither the config file nor a flag sets a value.
const (
	DefaultNameColumn         = "Name and Part"
	DefaultPartColumn         = "part"
	DefaultAvailabilityColumn = "Please select dates and times you are available on:"

	DefaultResponsesPath  = "data/responses.csv"
	DefaultAssignmentPath = "choir_assignment.csv"
	DefaultStatsPath      = "assignment_summary_stats_by_part.csv"

	DefaultCapacity    = 3
	DefaultYear        = 2025
	DefaultPreviewRows = 5
)

// ErrInvalidConfig is returned when a run configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Columns  ColumnsConfig  `toml:"columns"`
	Files    FilesConfig    `toml:"files"`
	Schedule ScheduleConfig `toml:"schedule"`
	History  HistoryConfig  `toml:"history"`
	Report   ReportConfig   `toml:"report"`
}

// ColumnsConfig maps the survey column names.
type ColumnsConfig struct {
	Name         *string `toml:"name"`
	Part         *string `toml:"part"`
	Availability *string `toml:"availability"`
}

// FilesConfig maps input and output paths.
type FilesConfig struct {
	Responses  *string `toml:"responses"`
	Assignment *string `toml:"assignment"`
	Stats      *string `toml:"stats"`
}

// ScheduleConfig maps scheduling limits.
type ScheduleConfig struct {
	Capacity *int `toml:"capacity"`
	Year     *int `toml:"year"`
}

// HistoryConfig maps run history settings.
type HistoryConfig struct {
	Enabled *bool   `toml:"enabled"`
	Path    *string `toml:"path"`
}

// ReportConfig maps console report settings.
type ReportConfig struct {
	PreviewRows *int `toml:"preview-rows"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// DefaultRunConfig returns the run configuration used when nothing is overridden.
func DefaultRunConfig() model.RunConfig {
	return model.RunConfig{
		Responses:  DefaultResponsesPath,
		Assignment: DefaultAssignmentPath,
		Stats:      DefaultStatsPath,
		Columns: model.Columns{
			Name:         DefaultNameColumn,
			Part:         DefaultPartColumn,
			Availability: DefaultAvailabilityColumn,
		},
		Capacity:    DefaultCapacity,
		Year:        DefaultYear,
		PreviewRows: DefaultPreviewRows,
	}
}

// Validate checks a run configuration for values the pipeline cannot use.
func Validate(cfg model.RunConfig) error {
	switch {
	case cfg.Responses == "":
		return fmt.Errorf("%w: responses path must not be empty", ErrInvalidConfig)
	case cfg.Assignment == "":
		return fmt.Errorf("%w: assignment path must not be empty", ErrInvalidConfig)
	case cfg.Stats == "":
		return fmt.Errorf("%w: stats path must not be empty", ErrInvalidConfig)
	case cfg.Columns.Name == "" || cfg.Columns.Part == "" || cfg.Columns.Availability == "":
		return fmt.Errorf("%w: column names must not be empty", ErrInvalidConfig)
	case cfg.Capacity < 1:
		return fmt.Errorf("%w: capacity must be >= 1", ErrInvalidConfig)
	case cfg.Year < 1:
		return fmt.Errorf("%w: year must be >= 1", ErrInvalidConfig)
	case cfg.PreviewRows < 0:
		return fmt.Errorf("%w: preview rows must be >= 0", ErrInvalidConfig)
	}
	return nil
}
