package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/pkg/minerals"
)

func TestDetectPatternType(t *testing.T) {
	tests := []struct {
		pattern string
		want    PatternType
	}{
		{"quartz", Glob},
		{"record.silicates.*", Glob},
		{"qu?rtz", Glob},
		{"[qQ]uartz", Glob},
		{"^quartz$", Regex},
		{`0x\w+`, Regex},
		{"quartz|calcite", Regex},
		{"(?i)quartz", Regex},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, detectPatternType(tt.pattern))
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name        string
		patternType PatternType
		pattern     string
		input       string
		want        bool
	}{
		{"substring", Auto, "quar", "Quartz", true},
		{"substring miss", Auto, "calc", "Quartz", false},
		{"glob identifier", Glob, "record.silicates.*", "record.silicates.0xabc", true},
		{"glob other family", Glob, "record.silicates.*", "record.carbonates.0xabc", false},
		{"glob case", Glob, "QUARTZ", "quartz", true},
		{"regex anchored", Regex, "^quartz$", "Quartz", true},
		{"regex anchored miss", Regex, "^quartz$", "Rose Quartz", false},
		{"regex alternation", Auto, "calcite|quartz", "Quartz", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.input))
		})
	}
}

func TestNewInvalid(t *testing.T) {
	_, err := New(Glob, "[")
	assert.ErrorContains(t, err, "invalid glob pattern")

	_, err = New(Regex, "(")
	assert.ErrorContains(t, err, "invalid regex pattern")

	_, err = New(PatternType(42), "x")
	assert.ErrorContains(t, err, "unsupported pattern type")
}

func TestFilter(t *testing.T) {
	items := []minerals.Mineral{
		{ID: "record.silicates.0xabc", CommonName: "Quartz", Family: "Silicates"},
		{ID: "record.carbonates.0x123", CommonName: "Calcite", Family: "Carbonates"},
		{ID: "record.silicates.0xdef", CommonName: "Orthoclase", Family: "Silicates"},
	}

	m, err := New(Auto, "silicates")
	require.NoError(t, err)
	got := m.Filter(items)
	require.Len(t, got, 2)
	assert.Equal(t, "Quartz", got[0].CommonName)
	assert.Equal(t, "Orthoclase", got[1].CommonName)

	m, err = New(Auto, "calcite")
	require.NoError(t, err)
	assert.Len(t, m.Filter(items), 1)

	m, err = New(Auto, "gypsum")
	require.NoError(t, err)
	assert.Empty(t, m.Filter(items))
}

func TestPatternTypeString(t *testing.T) {
	assert.Equal(t, "glob", Glob.String())
	assert.Equal(t, "regex", Regex.String())
	assert.Equal(t, "auto", Auto.String())
	assert.Equal(t, "unknown", PatternType(9).String())
}
