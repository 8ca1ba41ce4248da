package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Ext is the file extension of catalog files.
const Ext = ".js"

// strImport is prepended when the catalog contains template entries.
const strImport = "import { str } from '@lit/localize';\n\n"

// barePlaceholder matches $0, $1, ... that are not already written as ${n}.
var barePlaceholder = regexp.MustCompile(`\$(\d+)`)

// NormalizePlaceholders rewrites shorthand $n placeholders to ${n}.
// Already wrapped placeholders are left alone, so the function is idempotent.
func NormalizePlaceholders(s string) string {
	return barePlaceholder.ReplaceAllString(s, "$${${1}}")
}

func escapeSingleQuotes(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}

func escapeBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "\\`")
}

// Marshal renders the catalog as an ES module exporting a templates object.
// Entries are written in insertion order, each followed by a comma.
func Marshal(c *Catalog) []byte {
	var b strings.Builder
	if c.HasTemplates() {
		b.WriteString(strImport)
	}
	b.WriteString("export const templates = {\n")
	for _, e := range c.Entries() {
		b.WriteString("    '")
		b.WriteString(e.Key)
		b.WriteString("': ")
		if e.Template {
			b.WriteString("str`")
			b.WriteString(escapeBackticks(NormalizePlaceholders(e.Value)))
			b.WriteString("`")
		} else {
			b.WriteString("'")
			b.WriteString(escapeSingleQuotes(e.Value))
			b.WriteString("'")
		}
		b.WriteString(",\n")
	}
	b.WriteString("};\n")
	return []byte(b.String())
}

// FilePath returns the catalog path for a file stem such as "de" or "de-AT".
func FilePath(dir, stem string) string {
	return filepath.Join(dir, stem+Ext)
}

// WriteFile writes c to dir/stem.js, replacing any existing file.
//
// An empty catalog is only written when allowEmpty is set; otherwise nothing
// happens and written is false. The returned path is set in both cases.
func WriteFile(dir, stem string, c *Catalog, allowEmpty bool) (path string, written bool, err error) {
	path = FilePath(dir, stem)
	if c.Len() == 0 && !allowEmpty {
		return path, false, nil
	}
	if err := os.WriteFile(path, Marshal(c), 0644); err != nil {
		return path, false, fmt.Errorf("writing %s: %w", path, err)
	}
	return path, true, nil
}
