package deps

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/internal/appcontext"
	"github.com/waajacu/minerals/internal/deps"
)

func execute(t *testing.T, format string, list []deps.Dependency) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := &cobra.Command{RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd, &appcontext.Mock{Format: format}, list)
	}, SilenceUsage: true, SilenceErrors: true}
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDepsOptionalMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	out, err := execute(t, "json", deps.PDFToolchain())
	require.NoError(t, err)

	var got []deps.Status
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "latexmk", got[0].Dependency.Name)
	assert.False(t, got[0].Available)
}

func TestDepsRequiredMissing(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	out, err := execute(t, "table", []deps.Dependency{{Name: "convert", DisplayName: "ImageMagick", CheckCommands: []string{"convert"}}})
	assert.ErrorContains(t, err, "required programs are missing")
	assert.Contains(t, out, "ImageMagick")
	assert.Contains(t, out, "missing")
}

func TestDepsCommandShape(t *testing.T) {
	cmd := NewCommand(&appcontext.Mock{})
	assert.Equal(t, "deps", cmd.Use)
	assert.Equal(t, "management", cmd.GroupID)
}
