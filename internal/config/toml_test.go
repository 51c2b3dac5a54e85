package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Nil(t, cfg.Schedule.Capacity)
	require.Nil(t, cfg.Columns.Name)
}

func TestLoadConfigDecodesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[columns]
name = "Singer"
availability = "Dates"

[files]
responses = "in.xlsx"

[schedule]
capacity = 4
year = 2026

[history]
enabled = false

[report]
preview-rows = 10
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "Singer", *cfg.Columns.Name)
	require.Nil(t, cfg.Columns.Part)
	require.Equal(t, "Dates", *cfg.Columns.Availability)
	require.Equal(t, "in.xlsx", *cfg.Files.Responses)
	require.Equal(t, 4, *cfg.Schedule.Capacity)
	require.Equal(t, 2026, *cfg.Schedule.Year)
	require.False(t, *cfg.History.Enabled)
	require.Equal(t, 10, *cfg.Report.PreviewRows)
}

func TestLoadConfigRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[schedule\ncapacity = "), 0o644))
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(DefaultRunConfig()))

	cfg := DefaultRunConfig()
	cfg.Capacity = 0
	require.ErrorIs(t, Validate(cfg), ErrInvalidConfig)

	cfg = DefaultRunConfig()
	cfg.Columns.Part = ""
	require.ErrorIs(t, Validate(cfg), ErrInvalidConfig)

	cfg = DefaultRunConfig()
	cfg.PreviewRows = -1
	require.ErrorIs(t, Validate(cfg), ErrInvalidConfig)
}
