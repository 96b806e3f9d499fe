package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waajacu/minerals/internal/report"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/minerals"
)

type fakeCompiler struct {
	err   error
	write bool
	dir   string
}

func (f *fakeCompiler) Compile(_ context.Context, dir, texFile string) error {
	f.dir = dir
	if f.err != nil {
		return f.err
	}
	if f.write {
		return os.WriteFile(filepath.Join(dir, PDFFile), []byte("%PDF-1.7"), constants.FilePermissions)
	}
	return nil
}

const testID = "record.oxides.0xabc123"

func setup(t *testing.T) (*store.Store, report.Report) {
	t.Helper()
	st := store.New(t.TempDir())
	require.NoError(t, st.CreateFolder(testID))
	m := minerals.Mineral{
		ID:               testID,
		CommonName:       "Hematite <red>",
		Family:           "Oxides",
		Formula:          "Fe_2O_3",
		HardnessMohs:     5.5,
		DensityGCm3:      5.26,
		MajorElementsPct: map[string]float64{"Fe": 69.9, "O": 30.1},
		Notes:            "50% of samples & more",
		ImagePath:        constants.PublicDataPrefix + "/" + testID + "/image.jpg",
	}
	return st, report.Generate(m, report.Request{}, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

func TestEscapeTeX(t *testing.T) {
	assert.Equal(t, `50\% Fe\_2O\_3 \& quartz`, EscapeTeX("50% Fe_2O_3 & quartz"))
	assert.Equal(t, `\textbackslash{}x \{y\} \$ \# \textasciitilde{} \textasciicircum{}`, EscapeTeX(`\x {y} $ # ~ ^`))
}

func TestRenderWritesArtifacts(t *testing.T) {
	st, rep := setup(t)
	compiler := &fakeCompiler{write: true}
	r := New(st, compiler)

	out, err := r.Render(context.Background(), i18n.MustLookup("en"), rep)
	require.NoError(t, err)
	assert.Equal(t, Artifacts{
		HTML: "/data/minerals/" + testID + "/report.html",
		TeX:  "/data/minerals/" + testID + "/report.tex",
		PDF:  "/data/minerals/" + testID + "/report.pdf",
	}, out)
	assert.Equal(t, st.FolderPath(testID), compiler.dir)

	html, err := os.ReadFile(filepath.Join(st.FolderPath(testID), HTMLFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Hematite &lt;red&gt;")
	assert.Contains(t, string(html), "Major Chemical Composition")
	assert.Contains(t, string(html), `dir="ltr"`)

	tex, err := os.ReadFile(filepath.Join(st.FolderPath(testID), TeXFile))
	require.NoError(t, err)
	assert.Contains(t, string(tex), `Fe\_2O\_3`)
	assert.Contains(t, string(tex), `50\% of samples \& more`)
	assert.Contains(t, string(tex), `\includegraphics[width=0.4\textwidth]{image.jpg}`)
	assert.Contains(t, string(tex), `Fe & 69.90 \\`)
}

func TestRenderRightToLeft(t *testing.T) {
	st, rep := setup(t)
	_, err := New(st, &fakeCompiler{write: true}).Render(context.Background(), i18n.MustLookup("ar"), rep)
	require.NoError(t, err)

	html, err := os.ReadFile(filepath.Join(st.FolderPath(testID), HTMLFile))
	require.NoError(t, err)
	assert.Contains(t, string(html), `lang="ar" dir="rtl"`)
}

func TestRenderCompilerFailureKeepsSources(t *testing.T) {
	st, rep := setup(t)
	missing := &errors.DependencyError{Dependency: "latexmk", Message: "not installed"}
	out, err := New(st, &fakeCompiler{err: missing}).Render(context.Background(), i18n.MustLookup("en"), rep)

	require.Error(t, err)
	assert.True(t, errors.IsProviderUnavailable(err))
	assert.Empty(t, out.PDF)
	assert.NotEmpty(t, out.HTML)
	assert.FileExists(t, filepath.Join(st.FolderPath(testID), TeXFile))
}

func TestRenderCompilerProducedNothing(t *testing.T) {
	st, rep := setup(t)
	out, err := New(st, &fakeCompiler{}).Render(context.Background(), i18n.MustLookup("en"), rep)
	var pe *errors.ProcessError
	require.ErrorAs(t, err, &pe)
	assert.Empty(t, out.PDF)
}

func TestRenderUnknownRecord(t *testing.T) {
	st, rep := setup(t)
	rep.Mineral.ID = "record.none.0xfff"
	_, err := New(st, &fakeCompiler{}).Render(context.Background(), i18n.MustLookup("en"), rep)
	assert.True(t, errors.IsNotFound(err))
}

func TestLatexmkMissing(t *testing.T) {
	err := Latexmk{Path: "definitely-not-latexmk-xyz"}.Compile(context.Background(), t.TempDir(), TeXFile)
	var de *errors.DependencyError
	require.ErrorAs(t, err, &de)
	assert.True(t, errors.IsProviderUnavailable(err))
}
