// Package i18n holds the supported guide languages and the category labels
// used when matching search queries.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Language is a two-letter code of a supported guide language.
type Language string

// Supported languages.
const (
	Macedonian Language = "mk"
	English    Language = "en"
	Serbian    Language = "sr"
	Greek      Language = "el"
)

// DefaultLanguage is used when the client sends nothing usable.
const DefaultLanguage = Macedonian

// Languages lists every supported language in display order.
var Languages = []Language{Macedonian, English, Serbian, Greek}

// Common non-standard codes seen in the wild.
var aliases = map[string]Language{
	"mkd": Macedonian,
	"gr":  Greek,
	"srb": Serbian,
	"rs":  Serbian,
	"eng": English,
}

var matcher = language.NewMatcher([]language.Tag{
	language.Macedonian,
	language.English,
	language.Serbian,
	language.Greek,
})

// Valid reports whether l is one of the supported languages.
func (l Language) Valid() bool {
	switch l {
	case Macedonian, English, Serbian, Greek:
		return true
	default:
		return false
	}
}

func (l Language) String() string { return string(l) }

// ParseLanguage resolves a code, BCP 47 tag or Accept-Language value to a
// supported language. The boolean is false when nothing matched with confidence.
func ParseLanguage(raw string) (Language, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return DefaultLanguage, false
	}
	if l := Language(raw); l.Valid() {
		return l, true
	}
	if l, ok := aliases[raw]; ok {
		return l, true
	}

	tags, _, err := language.ParseAcceptLanguage(raw)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage, false
	}
	_, idx, confidence := matcher.Match(tags...)
	if confidence < language.High {
		return DefaultLanguage, false
	}
	return Languages[idx], true
}

// LanguageOrDefault is ParseLanguage without the confidence flag.
func LanguageOrDefault(raw string) Language {
	l, _ := ParseLanguage(raw)
	return l
}
