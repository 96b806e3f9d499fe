package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/internal/sweep"
	"github.com/waajacu/minerals/pkg/minerals"
)

var quartz = minerals.Mineral{
	ID:               "record.silicates.0xabc",
	CommonName:       "Quartz",
	Family:           "Silicates",
	Formula:          "SiO2",
	HardnessMohs:     7,
	DensityGCm3:      2.65,
	CrystalSystem:    "Trigonal",
	Luster:           "Vitreous",
	MajorElementsPct: map[string]float64{"Si": 46.7, "O": 53.3},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		give    string
		want    Format
		wantErr bool
	}{
		{give: "", want: ""},
		{give: "JSON", want: FormatJSON},
		{give: "yaml", want: FormatYAML},
		{give: "wide", want: FormatWide},
		{give: "csv", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.give, func(t *testing.T) {
			got, err := ParseFormat(tt.give)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectFormatExplicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestMineralsTable(t *testing.T) {
	narrow := MineralsTable([]minerals.Mineral{quartz}, false)
	require.Len(t, narrow.Rows, 1)
	assert.Len(t, narrow.Headers, 6)
	assert.Equal(t, []string{"record.silicates.0xabc", "Quartz", "Silicates", "SiO2", "7", "2.65"}, narrow.Rows[0])

	wide := MineralsTable([]minerals.Mineral{quartz}, true)
	assert.Len(t, wide.Headers, 10)
	assert.Len(t, wide.ColumnAlignment, 10)
	assert.Equal(t, "Trigonal", wide.Rows[0][6])
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatTable).Format(&buf, MineralsTable([]minerals.Mineral{quartz}, false)))
	out := buf.String()
	assert.Contains(t, out, "Quartz")
	assert.Contains(t, out, "SiO2")
}

func TestTableFormatterStruct(t *testing.T) {
	var buf bytes.Buffer
	res := struct {
		Applied bool   `json:"applied"`
		Folder  string `json:"folder_name"`
		hidden  int
	}{Applied: true, Folder: "x"}

	require.NoError(t, (&TableFormatter{}).Format(&buf, res))
	assert.Contains(t, buf.String(), "Folder Name")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestJSONAndYAMLFormatters(t *testing.T) {
	var js bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON).Format(&js, quartz))
	assert.Contains(t, js.String(), `"common_name": "Quartz"`)

	var ym bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML).Format(&ym, []store.Skip{{Folder: "tmp", Reason: "no metadata file"}}))
	assert.Contains(t, ym.String(), "folder: tmp")
}

func TestOrphansTable(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := OrphansTable([]sweep.Orphan{{ID: "record.x.0xabc", ModTime: now.Add(-90 * time.Minute), Files: 2}}, now)
	require.Len(t, d.Rows, 1)
	assert.Equal(t, []string{"record.x.0xabc", "1h30m0s", "2"}, d.Rows[0])
}
