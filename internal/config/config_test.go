package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadKDL_NoFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Project.Root)
	require.Equal(t, Default().Index.MaxFileSize, cfg.Index.MaxFileSize)
}

func TestLoadKDL_ParsesDocument(t *testing.T) {
	dir := t.TempDir()
	doc := `
project {
    name "logos"
}
index {
    max-file-size 2097152
    follow-symlinks true
}
watch {
    enabled false
    debounce-ms 300
}
include "**/*.go"
exclude "**/*_test.go"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".logos.kdl"), []byte(doc), 0o644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.Equal(t, "logos", cfg.Project.Name)
	require.Equal(t, int64(2097152), cfg.Index.MaxFileSize)
	require.True(t, cfg.Index.FollowSymlinks)
	require.False(t, cfg.Watch.Enabled)
	require.Equal(t, 300, cfg.Watch.DebounceMs)
	require.Equal(t, []string{"**/*.go"}, cfg.Include)
	require.Equal(t, []string{"**/*_test.go"}, cfg.Exclude)
}

func TestApplyTOMLOverlay_MergesOntoKDLDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlDoc := `
include = ["**/*.rs"]
[index]
max_file_size = 4096
[watch]
debounce_ms = 500
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".logos.toml"), []byte(tomlDoc), 0o644))

	cfg := Default()
	cfg.Project.Root = dir
	require.NoError(t, ApplyTOMLOverlay(cfg, dir))

	require.Equal(t, int64(4096), cfg.Index.MaxFileSize)
	require.Equal(t, 500, cfg.Watch.DebounceMs)
	require.True(t, cfg.Watch.Enabled) // untouched by overlay
	require.Equal(t, []string{"**/*.rs"}, cfg.Include)
}

func TestLoad_NoFilesReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, dir, cfg.Project.Root)
}
