package minerals

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/waajacu/minerals/pkg/errors"
)

// ElementsField is the form field carrying the element composition.
const ElementsField = "major_elements"

// ParseElements parses the line-oriented composition format. Each non-blank
// line is key=value, or key:value when the line has no '='.
func ParseElements(raw string) (map[string]float64, error) {
	values := make(map[string]float64)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sep := ":"
		if strings.Contains(line, "=") {
			sep = "="
		}
		key, value, _ := strings.Cut(line, sep)
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			return nil, errors.NewValidationError(ElementsField, line,
				fmt.Sprintf("'%s' lines must be like 'Si=46.7' (got %q)", ElementsField, line))
		}
		pct, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(pct) || math.IsInf(pct, 0) {
			return nil, errors.NewValidationError(ElementsField, value,
				fmt.Sprintf("invalid percentage for '%s'", key))
		}
		values[key] = pct
	}
	return values, nil
}

// ElementsToText renders a composition as key=value lines sorted by key,
// with two decimals.
func ElementsToText(values map[string]float64) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = fmt.Sprintf("%s=%.2f", k, values[k])
	}
	return strings.Join(lines, "\n")
}
