// Package report derives an analysis report for a single mineral from its
// properties. Reports are deterministic apart from their timestamp.
package report

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/waajacu/minerals/pkg/minerals"
)

// Request defaults.
const (
	DefaultAudience    = "technical geologist"
	DefaultPurpose     = "exploration briefing"
	DefaultSiteContext = "pilot drill campaign"
)

// Request describes who the report is for.
type Request struct {
	Audience    string `json:"audience"`
	Purpose     string `json:"purpose"`
	SiteContext string `json:"site_context"`
}

// Normalize trims every field and fills blanks with defaults.
func (r Request) Normalize() Request {
	return Request{
		Audience:    orDefault(r.Audience, DefaultAudience),
		Purpose:     orDefault(r.Purpose, DefaultPurpose),
		SiteContext: orDefault(r.SiteContext, DefaultSiteContext),
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// ElementShare is one element of the composition breakdown.
type ElementShare struct {
	Name    string  `json:"name"`
	Percent float64 `json:"percent"`
}

// Report is the derived analysis for one mineral.
type Report struct {
	Mineral            minerals.Mineral `json:"mineral"`
	Audience           string           `json:"audience"`
	Purpose            string           `json:"purpose"`
	SiteContext        string           `json:"site_context"`
	GeneratedAt        time.Time        `json:"generated_utc"`
	DominantElement    string           `json:"dominant_element"`
	DominantElementPct float64          `json:"dominant_element_pct"`
	HardnessBand       string           `json:"hardness_band"`
	DensityBand        string           `json:"density_band"`
	Summary            string           `json:"summary"`
	Recommendations    []string         `json:"recommendations"`
	ElementBreakdown   []ElementShare   `json:"element_breakdown"`
}

// HardnessBand classifies a Mohs hardness.
func HardnessBand(h float64) string {
	switch {
	case h < 3:
		return "soft"
	case h < 6:
		return "medium"
	case h < 7.5:
		return "hard"
	default:
		return "very hard"
	}
}

// DensityBand classifies a density in g/cm3.
func DensityBand(d float64) string {
	switch {
	case d < 2.6:
		return "light"
	case d < 3.2:
		return "moderate"
	default:
		return "dense"
	}
}

// Breakdown returns the composition sorted by percent, largest first. Ties
// are ordered by element name.
func Breakdown(elements map[string]float64) []ElementShare {
	out := make([]ElementShare, 0, len(elements))
	for name, pct := range elements {
		out = append(out, ElementShare{Name: name, Percent: pct})
	}
	slices.SortFunc(out, func(a, b ElementShare) int {
		if c := cmp.Compare(b.Percent, a.Percent); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Generate builds the report for m.
func Generate(m minerals.Mineral, req Request, now time.Time) Report {
	req = req.Normalize()
	breakdown := Breakdown(m.MajorElementsPct)
	dominant := ElementShare{Name: "Unknown"}
	if len(breakdown) > 0 {
		dominant = breakdown[0]
	}

	r := Report{
		Mineral:            m.Clone(),
		Audience:           req.Audience,
		Purpose:            req.Purpose,
		SiteContext:        req.SiteContext,
		GeneratedAt:        now.UTC(),
		DominantElement:    dominant.Name,
		DominantElementPct: dominant.Percent,
		HardnessBand:       HardnessBand(m.HardnessMohs),
		DensityBand:        DensityBand(m.DensityGCm3),
		ElementBreakdown:   breakdown,
	}
	r.Summary = fmt.Sprintf("For %s and the %s context, %s is classified as %s with %s density behavior. "+
		"The chemistry is led by %s (%.1f wt%%), supporting %s decisions.",
		r.Audience, r.SiteContext, m.CommonName, r.HardnessBand, r.DensityBand,
		r.DominantElement, r.DominantElementPct, r.Purpose)
	r.Recommendations = recommendations(r)
	return r
}

func recommendations(r Report) []string {
	recs := []string{
		fmt.Sprintf("Prioritize samples of %s where %s enrichment is strongest.", r.Mineral.CommonName, r.DominantElement),
	}
	if r.HardnessBand == "hard" || r.HardnessBand == "very hard" {
		recs = append(recs, "Use abrasion-resistant tooling and adjust comminution energy estimates upward.")
	} else {
		recs = append(recs, "Validate breakage and weathering rates early, as softer material can bias grade control.")
	}
	if r.DensityBand == "dense" {
		recs = append(recs, "Run density separation testwork to confirm recovery uplift potential in early flowsheets.")
	} else {
		recs = append(recs, "Combine XRD with geochemistry to avoid over-reliance on density-based separation.")
	}
	return append(recs, fmt.Sprintf("Archive this report against '%s' objectives for reproducible decision records.", r.Purpose))
}
