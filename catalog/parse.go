package catalog

import (
	"fmt"
	"os"
	"regexp"
)

var (
	// plainEntry matches 'key': 'value' with either quote style.
	plainEntry = regexp.MustCompile(`['"]([^'"]+)['"]\s*:\s*['"]([^'"]*)['"]`)
	// templateEntry matches 'key': str`value`.
	templateEntry = regexp.MustCompile("['\"]([^'\"]+)['\"]\\s*:\\s*str`([^`]*)`")
)

// ParseFile reads and parses a catalog file.
func ParseFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(string(data)), nil
}

// Parse extracts entries from catalog source text.
//
// Plain entries are collected first, then template entries. Both passes
// run over the whole text, so when a key is matched by both the template
// entry replaces the plain one while keeping the plain entry's position.
func Parse(content string) *Catalog {
	c := New()
	for _, m := range plainEntry.FindAllStringSubmatch(content, -1) {
		c.Set(Entry{Key: m[1], Value: m[2]})
	}
	for _, m := range templateEntry.FindAllStringSubmatch(content, -1) {
		c.Set(Entry{Key: m[1], Value: m[2], Template: true})
	}
	return c
}
