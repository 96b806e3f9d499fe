// Package deps checks for the external programs the service shells out to.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// Dependency is an external program looked up on PATH.
type Dependency struct {
	Name          string   `json:"name" yaml:"name"`
	DisplayName   string   `json:"display_name" yaml:"display_name"`
	Purpose       string   `json:"purpose" yaml:"purpose"`
	CheckCommands []string `json:"check_commands" yaml:"check_commands"`
	MinVersion    string   `json:"min_version,omitempty" yaml:"min_version,omitempty"`
	InstallHint   string   `json:"install_hint,omitempty" yaml:"install_hint,omitempty"`
	Optional      bool     `json:"optional" yaml:"optional"`
}

// Status is the outcome of checking one Dependency.
type Status struct {
	Dependency Dependency `json:"dependency" yaml:"dependency"`
	Available  bool       `json:"available" yaml:"available"`
	Path       string     `json:"path,omitempty" yaml:"path,omitempty"`
	Version    string     `json:"version,omitempty" yaml:"version,omitempty"`
	Problem    string     `json:"problem,omitempty" yaml:"problem,omitempty"`
}

// PDFToolchain lists the programs report PDF compilation needs.
func PDFToolchain() []Dependency {
	hint := "install TeX Live (latexmk, xetex) and the Noto fonts"
	return []Dependency{
		{
			Name:          "latexmk",
			DisplayName:   "latexmk",
			Purpose:       "drives report PDF compilation",
			CheckCommands: []string{"latexmk"},
			MinVersion:    "4.0",
			InstallHint:   hint,
			Optional:      true,
		},
		{
			Name:          "xelatex",
			DisplayName:   "XeLaTeX",
			Purpose:       "typesets reports in every catalog script",
			CheckCommands: []string{"xelatex"},
			InstallHint:   hint,
			Optional:      true,
		},
	}
}

// Check looks for dep on PATH, trying each check command in order.
func Check(ctx context.Context, dep Dependency) Status {
	status := Status{Dependency: dep}
	for _, name := range dep.CheckCommands {
		path, err := exec.LookPath(name)
		if err != nil {
			continue
		}
		status.Available = true
		status.Path = path

		if dep.MinVersion != "" {
			version, err := getVersion(ctx, path)
			if err != nil {
				status.Problem = fmt.Sprintf("found %s but could not detect version: %v", name, err)
				return status
			}
			status.Version = version
			if !meetsMinVersion(version, dep.MinVersion) {
				status.Problem = fmt.Sprintf("found %s version %s but requires %s or later", name, version, dep.MinVersion)
			}
		}
		return status
	}
	status.Problem = fmt.Sprintf("%s not found in PATH (tried: %s)", dep.DisplayName, strings.Join(dep.CheckCommands, ", "))
	return status
}

// CheckAll checks every dependency in order.
func CheckAll(ctx context.Context, deps []Dependency) []Status {
	out := make([]Status, 0, len(deps))
	for _, dep := range deps {
		out = append(out, Check(ctx, dep))
	}
	return out
}

// MissingRequired reports whether a non-optional dependency is unusable.
func MissingRequired(statuses []Status) bool {
	for _, s := range statuses {
		if !s.Dependency.Optional && (!s.Available || s.Problem != "") {
			return true
		}
	}
	return false
}

func getVersion(ctx context.Context, path string) (string, error) {
	for _, flag := range []string{"--version", "-v"} {
		//nolint:gosec // path comes from exec.LookPath on a fixed command list
		out, err := exec.CommandContext(ctx, path, flag).CombinedOutput()
		if err != nil {
			continue
		}
		if v := extractVersion(string(out)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("could not determine version")
}

var versionPattern = regexp.MustCompile(`v?(\d+\.\d+(?:\.\d+)?)`)

// extractVersion returns the first dotted version number in output.
func extractVersion(output string) string {
	if m := versionPattern.FindStringSubmatch(output); len(m) > 1 {
		return m[1]
	}
	return ""
}

// meetsMinVersion compares dotted versions numerically. Missing parts count
// as zero.
func meetsMinVersion(detected, required string) bool {
	d := strings.Split(strings.TrimPrefix(detected, "v"), ".")
	r := strings.Split(strings.TrimPrefix(required, "v"), ".")
	for i := 0; i < max(len(d), len(r)); i++ {
		dv, rv := part(d, i), part(r, i)
		if dv != rv {
			return dv > rv
		}
	}
	return true
}

func part(parts []string, i int) int {
	if i >= len(parts) {
		return 0
	}
	n, _ := strconv.Atoi(parts[i])
	return n
}
