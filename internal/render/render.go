// Package render writes report documents into a record folder: an HTML page,
// a XeLaTeX source and, when a TeX toolchain is installed, the compiled PDF.
package render

import (
	"bytes"
	"context"
	"embed"
	htmltemplate "html/template"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/waajacu/minerals/internal/report"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/pkg/constants"
	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/i18n"
	"github.com/waajacu/minerals/pkg/logging"
)

// Output file names inside the record folder.
const (
	HTMLFile = "report.html"
	TeXFile  = "report.tex"
	PDFFile  = "report.pdf"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	htmlTemplate = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/report.html.tmpl"))
	texTemplate  = texttemplate.Must(texttemplate.New("report.tex.tmpl").
			Delims("<<", ">>").
			Funcs(texttemplate.FuncMap{"tex": EscapeTeX}).
			ParseFS(templateFS, "templates/report.tex.tmpl"))
)

var texEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`&`, `\&`,
	`%`, `\%`,
	`$`, `\$`,
	`#`, `\#`,
	`_`, `\_`,
	`{`, `\{`,
	`}`, `\}`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// EscapeTeX escapes the characters that are special in LaTeX body text.
func EscapeTeX(s string) string {
	return texEscaper.Replace(s)
}

// Compiler turns a TeX source in dir into a PDF next to it.
type Compiler interface {
	Compile(ctx context.Context, dir, texFile string) error
}

// Latexmk compiles with latexmk and XeLaTeX.
type Latexmk struct {
	// Path overrides the latexmk executable.
	Path string
}

// Compile implements Compiler.
func (l Latexmk) Compile(ctx context.Context, dir, texFile string) error {
	bin := l.Path
	if bin == "" {
		bin = "latexmk"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return &errors.DependencyError{
			Dependency: bin,
			Message:    "not installed; install latexmk with XeLaTeX and the Noto fonts to produce PDFs",
		}
	}
	args := []string{"-xelatex", "-interaction=nonstopmode", "-halt-on-error", texFile}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.NewTimeoutError("latexmk", constants.RenderTimeout.String(), "PDF compilation did not finish")
		}
		exit := -1
		if ee, ok := err.(*exec.ExitError); ok {
			exit = ee.ExitCode()
		}
		pe := errors.NewProcessError("render", bin+" "+strings.Join(args, " "), strings.TrimSpace(string(out)), err)
		pe.ExitCode = exit
		return pe
	}
	return nil
}

// Artifacts are the public paths of the written documents. PDF is empty when
// compilation failed.
type Artifacts struct {
	HTML string `json:"html_path"`
	TeX  string `json:"tex_path"`
	PDF  string `json:"pdf_path,omitempty"`
}

// Renderer writes report documents for records in a store.
type Renderer struct {
	store    *store.Store
	compiler Compiler
	timeout  time.Duration
}

// New creates a Renderer. A nil compiler uses Latexmk.
func New(st *store.Store, compiler Compiler) *Renderer {
	if compiler == nil {
		compiler = Latexmk{}
	}
	return &Renderer{store: st, compiler: compiler, timeout: constants.RenderTimeout}
}

type view struct {
	Report    report.Report
	Lang      i18n.Code
	Dir       i18n.Direction
	Generated string
	ImageFile string
}

// T looks up a UI label for the view language.
func (v view) T(key string) string {
	return i18n.Text(v.Lang, key)
}

// Render writes report.html and report.tex into the record folder and
// compiles the PDF. When compilation fails the HTML and TeX artifacts are
// still returned together with the error.
func (r *Renderer) Render(ctx context.Context, lang i18n.Language, rep report.Report) (Artifacts, error) {
	id := rep.Mineral.ID
	v := view{
		Report:    rep,
		Lang:      lang.Code,
		Dir:       lang.Dir,
		Generated: rep.GeneratedAt.Format(time.RFC3339),
	}
	if rep.Mineral.ImagePath != "" {
		v.ImageFile = filepath.Base(rep.Mineral.ImagePath)
	}

	exists, err := r.store.Exists(id)
	if err != nil {
		return Artifacts{}, err
	}
	if !exists {
		return Artifacts{}, errors.NewNotFoundError("mineral", id)
	}

	var html bytes.Buffer
	if err := htmlTemplate.Execute(&html, v); err != nil {
		return Artifacts{}, errors.NewInternalError("render", "execute html template", err)
	}
	if err := r.store.WriteFile(id, HTMLFile, html.Bytes()); err != nil {
		return Artifacts{}, err
	}

	var tex bytes.Buffer
	if err := texTemplate.Execute(&tex, v); err != nil {
		return Artifacts{}, errors.NewInternalError("render", "execute tex template", err)
	}
	if err := r.store.WriteFile(id, TeXFile, tex.Bytes()); err != nil {
		return Artifacts{}, err
	}

	out := Artifacts{
		HTML: publicPath(id, HTMLFile),
		TeX:  publicPath(id, TeXFile),
	}

	cctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	folder := r.store.FolderPath(id)
	if err := r.compiler.Compile(cctx, folder, TeXFile); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("mineral", id).Msg("PDF compilation failed")
		return out, err
	}
	if _, err := os.Stat(filepath.Join(folder, PDFFile)); err != nil {
		return out, errors.NewProcessError("render", "latexmk", "", errors.New("compiler finished without producing "+PDFFile))
	}
	out.PDF = publicPath(id, PDFFile)
	return out, nil
}

func publicPath(id, file string) string {
	return constants.PublicDataPrefix + "/" + id + "/" + file
}
