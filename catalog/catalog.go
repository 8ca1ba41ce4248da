// Package catalog implements reading and writing of Lit-style JavaScript
// UI-string catalogs.
//
// The expected file format is an ES module exporting a single object literal:
//
//	import { str } from '@lit/localize';
//
//	export const templates = {
//	    'welcome': 'Welcome',
//	    'greeting': str`Hello ${0}`,
//	};
//
// Plain entries use a quoted string value. Template entries use the str tag
// with a backtick literal and may carry positional ${n} placeholders.
// Parsing is lenient scraping: fragments that do not look like an entry are
// ignored rather than reported.
package catalog

// Entry is a single key/value pair of a catalog.
type Entry struct {
	Key   string
	Value string
	// Template is set when the value was declared as a str`...` literal.
	Template bool
}

// Catalog is an insertion-ordered set of entries with unique keys.
type Catalog struct {
	keys    []string
	entries map[string]Entry
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[string]Entry)}
}

// Set inserts or replaces the entry for e.Key. A replaced entry keeps its
// original position; a new key is appended.
func (c *Catalog) Set(e Entry) {
	if c.entries == nil {
		c.entries = make(map[string]Entry)
	}
	if _, ok := c.entries[e.Key]; !ok {
		c.keys = append(c.keys, e.Key)
	}
	c.entries[e.Key] = e
}

// Get returns the entry for key.
func (c *Catalog) Get(key string) (Entry, bool) {
	e, ok := c.entries[key]
	return e, ok
}

// Keys returns the keys in insertion order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Entries returns all entries in insertion order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.entries[k])
	}
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.keys)
}

// HasTemplates reports whether any entry is a template entry.
func (c *Catalog) HasTemplates() bool {
	for _, e := range c.entries {
		if e.Template {
			return true
		}
	}
	return false
}
