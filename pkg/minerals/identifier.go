package minerals

import (
	"regexp"
	"strings"

	"github.com/waajacu/minerals/pkg/constants"
)

// identifierPattern is record.<family-slug>.0x<hex>.
var identifierPattern = regexp.MustCompile(`^` + constants.RecordPrefix + `\.[a-z0-9]+(?:-[a-z0-9]+)*\.0x[0-9a-f]{3,}$`)

// ValidIdentifier reports whether name is a well-formed record folder name.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// NewIdentifier composes a record folder name from a family slug and a hex suffix.
func NewIdentifier(familySlug, hexSuffix string) string {
	return constants.RecordPrefix + "." + familySlug + ".0x" + hexSuffix
}

// Slugify reduces a family name to lowercase ASCII alphanumeric runs joined
// by single dashes. Input with no alphanumerics yields "unknown".
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
		default:
			pendingDash = true
			continue
		}
		if pendingDash && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingDash = false
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
