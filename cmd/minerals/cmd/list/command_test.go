package list

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/internal/appcontext"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/minerals"
)

func seed(t *testing.T) *store.Store {
	t.Helper()
	st := store.New(t.TempDir())
	id := "record.silicates.0xabc"
	require.NoError(t, st.CreateFolder(id))
	base := minerals.DiskRecord{CommonName: "Quartz", Family: "Silicates", Formula: "SiO2", HardnessMohs: 7}
	require.NoError(t, st.WriteRecord(id, "record.en.json", base))
	de := base
	de.CommonName = "Quarz"
	require.NoError(t, st.WriteRecord(id, "record.de.json", de))
	return st
}

func execute(t *testing.T, st *store.Store, format string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(&appcontext.Mock{
		StoreFunc: func() *store.Store { return st },
		Format:    format,
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestListLanguages(t *testing.T) {
	st := seed(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "default language", want: "Quartz"},
		{name: "translated", args: []string{"--lang", "de"}, want: "Quarz"},
		{name: "falls back to base", args: []string{"-l", "ja"}, want: "Quartz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, st, "json", tt.args...)
			require.NoError(t, err)
			var got []minerals.Mineral
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].CommonName)
		})
	}
}

func TestListTable(t *testing.T) {
	out, err := execute(t, seed(t), "wide")
	require.NoError(t, err)
	assert.Contains(t, out, "record.silicates.0xabc")
	assert.Contains(t, out, "SiO2")
}

func TestListErrors(t *testing.T) {
	st := seed(t)

	_, err := execute(t, st, "json", "--lang", "xx")
	assert.ErrorContains(t, err, "unsupported language")

	_, err = execute(t, st, "csv")
	assert.ErrorContains(t, err, "invalid format")
}

func TestListMatch(t *testing.T) {
	st := seed(t)
	id := "record.carbonates.0x123"
	require.NoError(t, st.CreateFolder(id))
	require.NoError(t, st.WriteRecord(id, "record.en.json", minerals.DiskRecord{CommonName: "Calcite", Family: "Carbonates"}))

	tests := []struct {
		pattern string
		want    []string
	}{
		{pattern: "calc", want: []string{"Calcite"}},
		{pattern: "record.silicates.*", want: []string{"Quartz"}},
		{pattern: "^(calcite|quartz)$", want: []string{"Calcite", "Quartz"}},
		{pattern: "gypsum", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			out, err := execute(t, st, "json", "--match", tt.pattern)
			require.NoError(t, err)
			var got []minerals.Mineral
			require.NoError(t, json.Unmarshal([]byte(out), &got))
			names := make([]string, 0, len(got))
			for _, m := range got {
				names = append(names, m.CommonName)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}

	_, err := execute(t, st, "json", "--match", "(")
	assert.ErrorContains(t, err, "invalid regex pattern")
}
