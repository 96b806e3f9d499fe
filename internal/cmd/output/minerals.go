package output

import (
	"strconv"
	"strings"
	"time"

	"github.com/waajacu/minerals/internal/deps"
	"github.com/waajacu/minerals/internal/store"
	"github.com/waajacu/minerals/internal/sweep"
	"github.com/waajacu/minerals/pkg/minerals"
)

// MineralsTable lays out a catalog. Wide adds the optical properties.
func MineralsTable(items []minerals.Mineral, wide bool) Data {
	headers := []string{"ID", "Name", "Family", "Formula", "Hardness", "Density"}
	align := []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight}
	if wide {
		headers = append(headers, "Crystal System", "Color", "Luster", "Elements")
		align = append(align, AlignLeft, AlignLeft, AlignLeft, AlignLeft)
	}

	rows := make([][]string, 0, len(items))
	for _, m := range items {
		row := []string{
			m.ID,
			m.CommonName,
			m.Family,
			m.Formula,
			number(m.HardnessMohs),
			number(m.DensityGCm3),
		}
		if wide {
			row = append(row, m.CrystalSystem, m.Color, m.Luster,
				strings.ReplaceAll(minerals.ElementsToText(m.MajorElementsPct), "\n", " "))
		}
		rows = append(rows, row)
	}
	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// SkipsTable lists folders a scan left out.
func SkipsTable(skips []store.Skip) Data {
	rows := make([][]string, 0, len(skips))
	for _, s := range skips {
		rows = append(rows, []string{s.Folder, s.Reason})
	}
	return Data{Headers: []string{"Folder", "Reason"}, Rows: rows}
}

// OrphansTable lists unfinished record folders.
func OrphansTable(orphans []sweep.Orphan, now time.Time) Data {
	rows := make([][]string, 0, len(orphans))
	for _, o := range orphans {
		rows = append(rows, []string{
			o.ID,
			now.Sub(o.ModTime).Truncate(time.Minute).String(),
			strconv.Itoa(o.Files),
		})
	}
	return Data{
		Headers:         []string{"Folder", "Age", "Files"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight},
	}
}

func number(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// DependenciesTable lists external program checks.
func DependenciesTable(statuses []deps.Status) Data {
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		state := "ok"
		switch {
		case !s.Available:
			state = "missing"
		case s.Problem != "":
			state = "outdated"
		}
		note := s.Dependency.Purpose
		if s.Problem != "" {
			note = s.Problem
			if s.Dependency.InstallHint != "" {
				note += "; " + s.Dependency.InstallHint
			}
		}
		rows = append(rows, []string{s.Dependency.DisplayName, state, s.Version, s.Path, note})
	}
	return Data{Headers: []string{"Program", "Status", "Version", "Path", "Notes"}, Rows: rows}
}
