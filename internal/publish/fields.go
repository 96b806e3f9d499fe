package publish

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/waajacu/minerals/pkg/errors"
	"github.com/waajacu/minerals/pkg/minerals"
)

// Fields are the raw values submitted by the operator for a draft.
type Fields struct {
	CommonName    string `json:"common_name"`
	Description   string `json:"description"`
	Family        string `json:"mineral_family"`
	Formula       string `json:"formula"`
	HardnessMohs  string `json:"hardness_mohs"`
	DensityGCm3   string `json:"density_g_cm3"`
	CrystalSystem string `json:"crystal_system"`
	Color         string `json:"color"`
	Streak        string `json:"streak"`
	Luster        string `json:"luster"`
	MajorElements string `json:"major_elements"`
	Notes         string `json:"notes"`
}

// Record validates f and returns the base-language disk record. The image
// file name is left empty.
func (f Fields) Record() (minerals.DiskRecord, error) {
	var r minerals.DiskRecord
	text := []struct {
		key string
		val string
		dst *string
	}{
		{"common_name", f.CommonName, &r.CommonName},
		{"description", f.Description, &r.Description},
		{"mineral_family", f.Family, &r.Family},
		{"formula", f.Formula, &r.Formula},
		{"crystal_system", f.CrystalSystem, &r.CrystalSystem},
		{"color", f.Color, &r.Color},
		{"streak", f.Streak, &r.Streak},
		{"luster", f.Luster, &r.Luster},
		{"notes", f.Notes, &r.Notes},
	}
	for _, t := range text {
		v, err := required(t.key, t.val)
		if err != nil {
			return minerals.DiskRecord{}, err
		}
		*t.dst = v
	}

	var err error
	if r.HardnessMohs, err = number("hardness_mohs", f.HardnessMohs); err != nil {
		return minerals.DiskRecord{}, err
	}
	if r.DensityGCm3, err = number("density_g_cm3", f.DensityGCm3); err != nil {
		return minerals.DiskRecord{}, err
	}
	if r.MajorElementsPct, err = minerals.ParseElements(f.MajorElements); err != nil {
		return minerals.DiskRecord{}, err
	}
	return r, nil
}

func required(key, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", errors.NewValidationError(key, value, fmt.Sprintf("'%s' is required", key))
	}
	return v, nil
}

func number(key, value string) (float64, error) {
	v, err := required(key, value)
	if err != nil {
		return 0, err
	}
	n, perr := strconv.ParseFloat(v, 64)
	if perr != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, errors.NewValidationError(key, value, fmt.Sprintf("'%s' must be a number", key))
	}
	return n, nil
}
