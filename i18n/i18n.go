// Package i18n translates jsloc's own messages.
//
// Catalogs live in locales/<lang>/LC_MESSAGES/jsloc.po and are embedded in
// the binary. Init picks the embedded catalog closest to the requested or
// environment language; T and N pass msgids through when none matches.
package i18n

import (
	"embed"
	"io/fs"
	"os"
	"strings"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"
)

//go:embed all:locales
var catalogs embed.FS

const (
	domain     = "jsloc"
	catalogDir = "locales"

	// SourceLanguage is the language msgids are written in.
	SourceLanguage = "en"
)

// localeVars are consulted in gettext order.
var localeVars = []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"}

var (
	active string
	loc    *gotext.Locale
)

// Init selects the message catalog. An empty lang is taken from the
// environment. Call it once before T or N.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}
	active, loc = SourceLanguage, nil

	name := match(lang)
	if name == "" {
		return
	}
	l := gotext.NewLocaleFSWithPath(name, catalogs, catalogDir)
	l.AddDomain(domain)
	l.SetDomain(domain)
	active, loc = name, l
}

// Lang reports the language of the catalog in use, or SourceLanguage when
// messages are untranslated.
func Lang() string {
	if active == "" {
		return SourceLanguage
	}
	return active
}

// T returns the translation of msgid, or msgid itself.
func T(msgid string) string {
	if loc == nil {
		return msgid
	}
	return loc.Get(msgid)
}

// N picks the plural form of singular/plural for n.
func N(singular, plural string, n int) string {
	if loc == nil {
		if n == 1 {
			return singular
		}
		return plural
	}
	return loc.GetN(singular, plural, n)
}

// embedded lists the languages that ship a catalog.
func embedded() []string {
	entries, err := fs.ReadDir(catalogs, catalogDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names
}

// match returns the embedded catalog serving lang, or "" when none does.
// "de_AT" is served by "de".
func match(lang string) string {
	tag, err := language.Parse(strings.ReplaceAll(lang, "_", "-"))
	if err != nil {
		return ""
	}
	names := embedded()
	if len(names) == 0 {
		return ""
	}
	tags := make([]language.Tag, len(names))
	for i, n := range names {
		tags[i] = language.Make(n)
	}
	_, i, conf := language.NewMatcher(tags).Match(tag)
	if conf == language.No {
		return ""
	}
	return names[i]
}

// detectLanguage returns the first usable value of localeVars with any
// codeset or modifier removed. "C" and "POSIX" are skipped.
func detectLanguage() string {
	for _, name := range localeVars {
		val := os.Getenv(name)
		if name == "LANGUAGE" {
			val, _, _ = strings.Cut(val, ":")
		}
		if i := strings.IndexAny(val, ".@"); i >= 0 {
			val = val[:i]
		}
		switch val {
		case "", "C", "POSIX":
			continue
		}
		return val
	}
	return SourceLanguage
}
