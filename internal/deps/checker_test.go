package deps

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractVersion(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"Latexmk, John Collins, 7 Jan. 2023. Version 4.79", "4.79"},
		{"XeTeX 3.141592653-2.6-0.999995 (TeX Live 2023)", "3.141592653"},
		{"tool v1.2.3", "1.2.3"},
		{"no digits here", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractVersion(tt.output), tt.output)
	}
}

func TestMeetsMinVersion(t *testing.T) {
	tests := []struct {
		detected, required string
		want               bool
	}{
		{"4.79", "4.0", true},
		{"4.10", "4.9", true},
		{"3.9", "4.0", false},
		{"4", "4.0", true},
		{"v1.2.3", "1.2.4", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, meetsMinVersion(tt.detected, tt.required), "%s >= %s", tt.detected, tt.required)
	}
}

func TestCheckMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	statuses := CheckAll(context.Background(), PDFToolchain())
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.False(t, s.Available)
		assert.Contains(t, s.Problem, "not found in PATH")
	}
	assert.False(t, MissingRequired(statuses), "PDF toolchain is optional")

	required := Check(context.Background(), Dependency{Name: "git", DisplayName: "git", CheckCommands: []string{"git"}})
	assert.True(t, MissingRequired([]Status{required}))
}

func TestCheckFound(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "latexmk")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho 'Latexmk, Version 4.83'\n"), 0o755))
	t.Setenv("PATH", dir)

	status := Check(context.Background(), PDFToolchain()[0])
	assert.True(t, status.Available)
	assert.Equal(t, script, status.Path)
	assert.Equal(t, "4.83", status.Version)
	assert.Empty(t, status.Problem)
}
