// Package minerals defines the catalog data model: the language-resolved
// Mineral served to readers, the per-language DiskRecord persisted in each
// record folder, and the Catalog built from a directory scan.
package minerals

import (
	"encoding/json"
	"sort"
	"strings"
)

// Mineral is one catalog entry resolved for a single language.
type Mineral struct {
	ID               string             `json:"id"`
	CommonName       string             `json:"common_name"`
	Description      string             `json:"description"`
	Family           string             `json:"mineral_family"`
	Formula          string             `json:"formula"`
	HardnessMohs     float64            `json:"hardness_mohs"`
	DensityGCm3      float64            `json:"density_g_cm3"`
	CrystalSystem    string             `json:"crystal_system"`
	Color            string             `json:"color"`
	Streak           string             `json:"streak"`
	Luster           string             `json:"luster"`
	MajorElementsPct map[string]float64 `json:"major_elements_pct"`
	Notes            string             `json:"notes"`
	ImagePath        string             `json:"image_path,omitempty"`
}

// Clone returns a deep copy of m.
func (m Mineral) Clone() Mineral {
	m.MajorElementsPct = cloneElements(m.MajorElementsPct)
	return m
}

// DiskRecord is the persisted form of a Mineral for one language.
// The image is stored as a bare file name inside the record folder.
type DiskRecord struct {
	CommonName       string             `json:"common_name"`
	Description      string             `json:"description"`
	Family           string             `json:"mineral_family"`
	Formula          string             `json:"formula"`
	HardnessMohs     float64            `json:"hardness_mohs"`
	DensityGCm3      float64            `json:"density_g_cm3"`
	CrystalSystem    string             `json:"crystal_system"`
	Color            string             `json:"color"`
	Streak           string             `json:"streak"`
	Luster           string             `json:"luster"`
	MajorElementsPct map[string]float64 `json:"major_elements_pct"`
	Notes            string             `json:"notes"`
	ImageFile        string             `json:"image_file,omitempty"`
}

// UnmarshalJSON accepts the legacy "mineral_group" name for the family field.
func (r *DiskRecord) UnmarshalJSON(data []byte) error {
	type plain DiskRecord
	var aux struct {
		plain
		MineralGroup string `json:"mineral_group"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = DiskRecord(aux.plain)
	if r.Family == "" {
		r.Family = aux.MineralGroup
	}
	if r.MajorElementsPct == nil {
		r.MajorElementsPct = map[string]float64{}
	}
	return nil
}

// ToMineral resolves r into a Mineral with identifier id. imageURLPrefix is
// joined with the folder and file name to build the servable image path.
func (r DiskRecord) ToMineral(id, imageURLPrefix string) Mineral {
	m := Mineral{
		ID:               id,
		CommonName:       r.CommonName,
		Description:      r.Description,
		Family:           r.Family,
		Formula:          r.Formula,
		HardnessMohs:     r.HardnessMohs,
		DensityGCm3:      r.DensityGCm3,
		CrystalSystem:    r.CrystalSystem,
		Color:            r.Color,
		Streak:           r.Streak,
		Luster:           r.Luster,
		MajorElementsPct: cloneElements(r.MajorElementsPct),
		Notes:            r.Notes,
	}
	if r.ImageFile != "" {
		m.ImagePath = strings.TrimRight(imageURLPrefix, "/") + "/" + id + "/" + r.ImageFile
	}
	return m
}

// Text holds the translatable fields of a record. Numeric properties and the
// element composition are language independent and never translated.
type Text struct {
	CommonName    string `json:"common_name"`
	Description   string `json:"description"`
	Family        string `json:"mineral_family"`
	Formula       string `json:"formula"`
	CrystalSystem string `json:"crystal_system"`
	Color         string `json:"color"`
	Streak        string `json:"streak"`
	Luster        string `json:"luster"`
	Notes         string `json:"notes"`
}

// Text returns the translatable fields of r.
func (r DiskRecord) Text() Text {
	return Text{
		CommonName:    r.CommonName,
		Description:   r.Description,
		Family:        r.Family,
		Formula:       r.Formula,
		CrystalSystem: r.CrystalSystem,
		Color:         r.Color,
		Streak:        r.Streak,
		Luster:        r.Luster,
		Notes:         r.Notes,
	}
}

// Localize returns a copy of r with its text replaced by t. A field of t that
// is empty after trimming keeps the value from r.
func (r DiskRecord) Localize(t Text) DiskRecord {
	out := r
	out.MajorElementsPct = cloneElements(r.MajorElementsPct)
	out.CommonName = orSource(t.CommonName, r.CommonName)
	out.Description = orSource(t.Description, r.Description)
	out.Family = orSource(t.Family, r.Family)
	out.Formula = orSource(t.Formula, r.Formula)
	out.CrystalSystem = orSource(t.CrystalSystem, r.CrystalSystem)
	out.Color = orSource(t.Color, r.Color)
	out.Streak = orSource(t.Streak, r.Streak)
	out.Luster = orSource(t.Luster, r.Luster)
	out.Notes = orSource(t.Notes, r.Notes)
	return out
}

func orSource(translated, source string) string {
	if v := strings.TrimSpace(translated); v != "" {
		return v
	}
	return source
}

func cloneElements(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Catalog is the language-resolved view of every record in the store.
type Catalog struct {
	byID    map[string]Mineral
	ordered []Mineral
}

// NewCatalog builds a catalog ordered by display name, then identifier.
func NewCatalog(items []Mineral) *Catalog {
	c := &Catalog{
		byID:    make(map[string]Mineral, len(items)),
		ordered: make([]Mineral, 0, len(items)),
	}
	for _, m := range items {
		if _, dup := c.byID[m.ID]; dup {
			continue
		}
		c.byID[m.ID] = m
		c.ordered = append(c.ordered, m)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool {
		a, b := c.ordered[i], c.ordered[j]
		if a.CommonName != b.CommonName {
			return a.CommonName < b.CommonName
		}
		return a.ID < b.ID
	})
	return c
}

// Get returns the mineral with the given identifier.
func (c *Catalog) Get(id string) (Mineral, bool) {
	m, ok := c.byID[id]
	if !ok {
		return Mineral{}, false
	}
	return m.Clone(), true
}

// List returns the minerals in display order.
func (c *Catalog) List() []Mineral {
	out := make([]Mineral, len(c.ordered))
	for i, m := range c.ordered {
		out[i] = m.Clone()
	}
	return out
}

// IDs returns every identifier in display order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.ordered))
	for i, m := range c.ordered {
		ids[i] = m.ID
	}
	return ids
}

// Len returns the number of minerals.
func (c *Catalog) Len() int {
	return len(c.ordered)
}

// Clone returns an independent copy of c.
func (c *Catalog) Clone() *Catalog {
	return NewCatalog(c.List())
}
