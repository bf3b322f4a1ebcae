// Package language normalizes target-language values supplied by callers
// into the display form passed to the translation provider.
package language

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type entry struct {
	code2   string // ISO 639-1 (2-letter)
	display string // Human-readable name
}

var languages = []entry{
	{"en", "English"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"pt", "Portuguese"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"zh", "Chinese"},
	{"ru", "Russian"},
	{"ar", "Arabic"},
	{"hi", "Hindi"},
	{"nl", "Dutch"},
	{"pl", "Polish"},
	{"sv", "Swedish"},
	{"da", "Danish"},
	{"no", "Norwegian"},
	{"fi", "Finnish"},
}

var byCode2 = func() map[string]string {
	m := make(map[string]string, len(languages))
	for _, e := range languages {
		m[e.code2] = e.display
	}
	return m
}()

var byWord = func() map[string]string {
	m := make(map[string]string, len(languages))
	for _, e := range languages {
		m[strings.ToLower(e.display)] = e.display
	}
	return m
}()

var titleCaser = cases.Title(language.English)

// Display resolves a caller-supplied language value (2-letter code or a
// language word in any casing) to a display name. Unknown values are
// title-cased and passed through so uncataloged languages still work.
func Display(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	lower := strings.ToLower(trimmed)
	if display, ok := byCode2[lower]; ok {
		return display
	}
	if display, ok := byWord[lower]; ok {
		return display
	}
	return titleCaser.String(lower)
}
