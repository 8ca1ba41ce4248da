// Package langmeta provides the locale table used to turn human language
// names into filename codes, plus display metadata (native names and emoji
// flags) for CLI output.
//
// Locale data comes from CLDR via golang.org/x/text/language/display.
package langmeta

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// FallbackLanguageCode is used when no code can be derived from a name.
const FallbackLanguageCode = "translation"

// Locale is a single record of a locale table.
type Locale struct {
	// Language is the ISO 639 language code ("de").
	Language string
	// Country is the ISO 3166 country code ("AT"), empty for language-only locales.
	Country string
	// DisplayLanguage is the English name of the language ("German").
	DisplayLanguage string
}

// Table is a queryable set of locales. Iteration order is defined by the
// implementation and is not guaranteed to be stable.
type Table interface {
	Locales() []Locale
}

// StaticTable is a Table backed by a fixed slice.
type StaticTable []Locale

// Locales implements Table.
func (t StaticTable) Locales() []Locale { return t }

var (
	systemOnce  sync.Once
	systemTable StaticTable
)

// SystemTable returns the locale table built from the CLDR data shipped with
// golang.org/x/text.
//
// For every supported language the table holds the language-only locale,
// then the locale of its most likely country, then any other country
// variants CLDR names explicitly. The order follows the x/text coverage
// list and may change between x/text releases.
//
// Only names x/text knows in English match. "Norwegian" is listed as
// "Norwegian Bokmål" and "Norwegian Nynorsk", so it derives "nor" rather
// than "no".
func SystemTable() Table {
	systemOnce.Do(func() {
		systemTable = buildTable(display.Supported.Tags())
	})
	return systemTable
}

func buildTable(tags []language.Tag) StaticTable {
	var bases []string
	regions := make(map[string][]string)
	for _, tag := range tags {
		base, conf := tag.Base()
		if conf == language.No {
			continue
		}
		code := base.String()
		if _, ok := regions[code]; !ok {
			bases = append(bases, code)
			regions[code] = nil
		}
		if region, rc := tag.Region(); rc == language.Exact && region.IsCountry() {
			regions[code] = append(regions[code], region.String())
		}
	}

	var table StaticTable
	seen := make(map[string]bool)
	add := func(lang, country, name string) {
		id := lang + "-" + country
		if seen[id] {
			return
		}
		seen[id] = true
		table = append(table, Locale{Language: lang, Country: country, DisplayLanguage: name})
	}
	for _, code := range bases {
		tag := language.Make(code)
		name := display.English.Languages().Name(tag)
		add(code, "", name)
		if region, rc := tag.Region(); rc != language.No && region.IsCountry() {
			add(code, region.String(), name)
		}
		for _, r := range regions[code] {
			add(code, r, name)
		}
	}
	return table
}

// ---------------------------------------------------------------------------
// Resolver
// ---------------------------------------------------------------------------

// Resolver derives filename codes and translation labels from a Table.
type Resolver struct {
	Table Table
}

// NewResolver returns a Resolver over t, or over SystemTable when t is nil.
func NewResolver(t Table) *Resolver {
	if t == nil {
		t = SystemTable()
	}
	return &Resolver{Table: t}
}

// DeriveLanguageCode maps an English language name ("German") to its code
// ("de"). Unknown names fall back to SanitizeLanguageName.
func (r *Resolver) DeriveLanguageCode(name string) string {
	if strings.TrimSpace(name) == "" {
		return FallbackLanguageCode
	}
	for _, l := range r.Table.Locales() {
		if strings.EqualFold(l.DisplayLanguage, name) {
			if l.Language == "" {
				return SanitizeLanguageName(name)
			}
			return l.Language
		}
	}
	return SanitizeLanguageName(name)
}

// FindDefaultCountryCode returns the country of the first locale in table
// order that has a country and whose language code equals languageCode or
// whose English name equals languageName.
//
// The answer depends on table order; see SystemTable.
func (r *Resolver) FindDefaultCountryCode(languageCode, languageName string) (string, bool) {
	for _, l := range r.Table.Locales() {
		if l.Country == "" {
			continue
		}
		if strings.EqualFold(l.Language, languageCode) ||
			(languageName != "" && strings.EqualFold(l.DisplayLanguage, languageName)) {
			return l.Country, true
		}
	}
	return "", false
}

// BuildLocaleLabel returns the English display name of a locale, such as
// "French (Canada)", for use as a translation target label.
func (r *Resolver) BuildLocaleLabel(languageCode, countryCode string) string {
	lang := englishLanguageName(languageCode)
	if lang == "" {
		lang = languageCode
	}
	label := lang
	if countryCode != "" {
		region := englishRegionName(countryCode)
		if region == "" {
			region = countryCode
		}
		label = lang + " (" + region + ")"
	}
	if strings.TrimSpace(label) == "" {
		if countryCode == "" {
			return languageCode
		}
		return languageCode + "-" + countryCode
	}
	return label
}

func englishLanguageName(code string) string {
	base, err := language.ParseBase(code)
	if err != nil {
		return ""
	}
	return display.English.Languages().Name(language.Make(base.String()))
}

func englishRegionName(code string) string {
	region, err := language.ParseRegion(code)
	if err != nil {
		return ""
	}
	return display.English.Regions().Name(region)
}

// ---------------------------------------------------------------------------
// Sanitizers
// ---------------------------------------------------------------------------

// lettersOnly keeps ASCII letters of s.
func lettersOnly(s string) string {
	var b strings.Builder
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// SanitizeLanguageName lowercases name, strips non-letters and keeps at most
// three characters. An empty result becomes FallbackLanguageCode.
func SanitizeLanguageName(name string) string {
	cleaned := lettersOnly(strings.ToLower(name))
	if len(cleaned) > 3 {
		cleaned = cleaned[:3]
	}
	if cleaned == "" {
		return FallbackLanguageCode
	}
	return cleaned
}

// SanitizeCountryCode strips non-letters, uppercases and keeps at most three
// characters. A token without letters yields "".
func SanitizeCountryCode(token string) string {
	cleaned := strings.ToUpper(lettersOnly(token))
	if len(cleaned) > 3 {
		cleaned = cleaned[:3]
	}
	return cleaned
}

// SanitizeCountryList sanitizes every token and drops empty and duplicate
// results, keeping first-seen order.
func SanitizeCountryList(tokens []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, t := range tokens {
		c := SanitizeCountryCode(t)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// ---------------------------------------------------------------------------
// Display metadata
// ---------------------------------------------------------------------------

// Meta describes language display metadata.
type Meta struct {
	Name string
	Flag string
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort metadata for a file stem such as "de" or
// "pt_BR": the language's own name and the flag of its country, when the
// stem carries one. Unknown codes pass through as the name.
func Resolve(lang string) Meta {
	normalized := canonicalize(lang)
	tag, err := language.Parse(normalized)
	if err != nil {
		return Meta{Name: lang}
	}
	name := display.Self.Name(tag)
	if name == "" {
		name = lang
	}
	var flag string
	if region, conf := tag.Region(); conf == language.Exact {
		flag = Flag(region.String())
	}
	return Meta{Name: name, Flag: flag}
}

// Flag returns the emoji flag for a two-letter country code, or "".
func Flag(country string) string {
	if len(country) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range strings.ToUpper(country) {
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String()
}
