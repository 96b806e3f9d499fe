package handlers

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/goccy/go-yaml"

	"github.com/waajacu/minerals/internal/server/response"
	"github.com/waajacu/minerals/pkg/i18n"
)

//go:embed pages.yaml
var pagesYAML []byte

// Page is a static information page.
type Page struct {
	Slug    string   `yaml:"slug" json:"slug"`
	Aliases []string `yaml:"aliases" json:"-"`
	Title   string   `yaml:"title" json:"title"`
	Body    string   `yaml:"body" json:"body"`
}

type pageTable struct {
	Fallback Page   `yaml:"fallback"`
	Pages    []Page `yaml:"pages"`
}

var (
	pages        []Page
	pagesBySlug  map[string]Page
	fallbackPage Page
)

func init() {
	var t pageTable
	if err := yaml.Unmarshal(pagesYAML, &t); err != nil {
		panic(fmt.Sprintf("handlers: embedded page table: %v", err))
	}
	pages = t.Pages
	fallbackPage = t.Fallback
	pagesBySlug = make(map[string]Page, len(t.Pages))
	for _, p := range t.Pages {
		pagesBySlug[p.Slug] = p
		for _, a := range p.Aliases {
			pagesBySlug[a] = p
		}
	}
}

// lookupPage returns the page for slug, or the generic information page.
func lookupPage(slug string) Page {
	if p, ok := pagesBySlug[slug]; ok {
		return p
	}
	p := fallbackPage
	p.Slug = slug
	return p
}

// HandleInfoPages handles GET /api/v1/info.
// @Summary List information pages
// @Tags info
// @Produce json
// @Success 200 {object} response.Response{data=[]Page}
// @Router /api/v1/info [get].
func (h *Handlers) HandleInfoPages(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, pages)
}

// HandleInfoPage handles GET /api/v1/info/{page}. Unknown slugs get the
// generic information page.
// @Summary Information page
// @Tags info
// @Produce json
// @Param page path string true "Page slug"
// @Success 200 {object} response.Response{data=object}
// @Router /api/v1/info/{page} [get].
func (h *Handlers) HandleInfoPage(w http.ResponseWriter, r *http.Request) {
	lang := i18n.MustLookup(h.resolveLanguage(r))
	response.OK(w, map[string]any{
		"language": lang.Code,
		"dir":      lang.Dir,
		"page":     lookupPage(r.PathValue("page")),
	})
}
