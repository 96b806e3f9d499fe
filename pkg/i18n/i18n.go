// Package i18n holds the table of supported catalog languages.
//
// The table lives in languages.yaml and is embedded at build time, so adding
// a language is a data change: append a row with its code, names, text
// direction and any UI strings that differ from the base language.
package i18n

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"golang.org/x/text/language"
)

//go:embed languages.yaml
var languagesYAML []byte

// Code is a two-letter language code such as "en" or "zh".
type Code string

// String implements fmt.Stringer.
func (c Code) String() string { return string(c) }

// Direction is the text direction of a language.
type Direction string

// Text directions.
const (
	LTR Direction = "ltr"
	RTL Direction = "rtl"
)

// Language is one row of the language table.
type Language struct {
	Code       Code              `yaml:"code" json:"code"`
	Name       string            `yaml:"name" json:"name"`
	NativeName string            `yaml:"native_name" json:"native_name"`
	Dir        Direction         `yaml:"dir" json:"dir"`
	UI         map[string]string `yaml:"ui" json:"-"`
}

type table struct {
	Languages []Language `yaml:"languages"`
}

var (
	languages []Language
	byCode    map[Code]int
	matcher   language.Matcher
)

func init() {
	if err := load(languagesYAML); err != nil {
		panic(fmt.Sprintf("i18n: embedded language table: %v", err))
	}
}

// load parses and indexes a language table.
func load(data []byte) error {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return err
	}
	if len(t.Languages) == 0 {
		return fmt.Errorf("no languages defined")
	}

	index := make(map[Code]int, len(t.Languages))
	tags := make([]language.Tag, 0, len(t.Languages))
	for i, l := range t.Languages {
		if l.Code == "" || l.Name == "" {
			return fmt.Errorf("row %d: code and name are required", i)
		}
		if _, dup := index[l.Code]; dup {
			return fmt.Errorf("duplicate language %q", l.Code)
		}
		if l.Dir == "" {
			t.Languages[i].Dir = LTR
		}
		tag, err := language.Parse(string(l.Code))
		if err != nil {
			return fmt.Errorf("language %q: %w", l.Code, err)
		}
		index[l.Code] = i
		tags = append(tags, tag)
	}

	languages = t.Languages
	byCode = index
	matcher = language.NewMatcher(tags)
	return nil
}

// Base returns the base language code.
func Base() Code {
	return languages[0].Code
}

// IsBase reports whether c is the base language.
func (c Code) IsBase() bool {
	return c == Base()
}

// All returns every supported language in display order.
func All() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Codes returns every supported language code in display order.
func Codes() []Code {
	codes := make([]Code, len(languages))
	for i, l := range languages {
		codes[i] = l.Code
	}
	return codes
}

// Targets returns every language except the base, in display order.
func Targets() []Language {
	return All()[1:]
}

// Lookup returns the table row for a supported code.
func Lookup(c Code) (Language, bool) {
	i, ok := byCode[c]
	if !ok {
		return Language{}, false
	}
	return languages[i], true
}

// MustLookup is Lookup for codes already known to be supported.
func MustLookup(c Code) Language {
	l, ok := Lookup(c)
	if !ok {
		panic(fmt.Sprintf("i18n: unsupported language %q", c))
	}
	return l
}

// ParseCode normalizes user input such as " PT-br " to a supported code.
func ParseCode(s string) (Code, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i >= 0 {
		s = s[:i]
	}
	c := Code(s)
	if _, ok := byCode[c]; !ok {
		return "", false
	}
	return c, true
}

// Match negotiates an Accept-Language header against the supported codes.
func Match(acceptLanguage string) (Code, bool) {
	if strings.TrimSpace(acceptLanguage) == "" {
		return "", false
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "", false
	}
	_, idx, conf := matcher.Match(tags...)
	// Low confidence is x/text guessing the default for an unrelated language.
	if conf < language.High {
		return "", false
	}
	return languages[idx].Code, true
}

// Text returns a UI string for c, falling back to the base language and
// finally to the key itself.
func Text(c Code, key string) string {
	if l, ok := Lookup(c); ok {
		if s, ok := l.UI[key]; ok && s != "" {
			return s
		}
	}
	if s, ok := languages[0].UI[key]; ok {
		return s
	}
	return key
}

// UIText returns every UI string for c, with base-language values filling
// the keys c does not translate.
func UIText(c Code) map[string]string {
	out := make(map[string]string, len(languages[0].UI))
	for k, v := range languages[0].UI {
		out[k] = v
	}
	if l, ok := Lookup(c); ok {
		for k, v := range l.UI {
			if v != "" {
				out[k] = v
			}
		}
	}
	return out
}
