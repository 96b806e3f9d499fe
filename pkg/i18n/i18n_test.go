package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	want := []Code{"en", "es", "cs", "de", "fr", "zh", "ar", "pt", "hi", "ja"}
	assert.Equal(t, want, Codes())
	assert.Equal(t, Code("en"), Base())
	assert.True(t, Code("en").IsBase())
	assert.False(t, Code("es").IsBase())

	targets := Targets()
	require.Len(t, targets, 9)
	assert.Equal(t, Code("es"), targets[0].Code)

	ar := MustLookup("ar")
	assert.Equal(t, RTL, ar.Dir)
	assert.Equal(t, "Arabic", ar.Name)
	assert.Equal(t, "العربية", ar.NativeName)
	assert.Equal(t, LTR, MustLookup("cs").Dir)
}

func TestParseCode(t *testing.T) {
	tests := []struct {
		in   string
		want Code
		ok   bool
	}{
		{"en", "en", true},
		{" ES ", "es", true},
		{"pt-BR", "pt", true},
		{"zh_Hant", "zh", true},
		{"xx", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCode(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		header string
		want   Code
		ok     bool
	}{
		{"de-DE,de;q=0.9,en;q=0.8", "de", true},
		{"ja", "ja", true},
		{"fr-CA", "fr", true},
		{"", "", false},
		{"tlh", "", false},
		{"sw", "", false},
		{"sw,de;q=0.5", "de", true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := Match(tt.header)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestText(t *testing.T) {
	assert.Equal(t, "Catálogo de minerales", Text("es", "catalog_title"))
	// de has no label_formula row and falls back to the base language
	assert.Equal(t, "Formula", Text("de", "label_formula"))
	assert.Equal(t, "missing_key", Text("en", "missing_key"))
}

func TestUIText(t *testing.T) {
	es := UIText("es")
	assert.Equal(t, "Catálogo de minerales", es["catalog_title"])
	assert.Equal(t, "Formula", UIText("de")["label_formula"])
	assert.Len(t, UIText("xx"), len(UIText("en")))

	// Callers own the returned map.
	es["catalog_title"] = "changed"
	assert.Equal(t, "Catálogo de minerales", Text("es", "catalog_title"))
}

func TestLoadRejectsBadTables(t *testing.T) {
	saved := languages
	savedIdx := byCode
	savedMatcher := matcher
	t.Cleanup(func() {
		languages, byCode, matcher = saved, savedIdx, savedMatcher
	})

	assert.Error(t, load([]byte("languages: []")))
	assert.Error(t, load([]byte("languages:\n  - code: en\n    name: English\n  - code: en\n    name: Again\n")))
	assert.Error(t, load([]byte("languages:\n  - code: en\n")))
}
