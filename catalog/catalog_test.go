package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sample = `import { str } from '@lit/localize';

export const templates = {
    'hello': 'Hello',
    "quoted": "Double",
    'dup': 'plain',
    'greet': str` + "`Hello ${0}`" + `,
    'dup': str` + "`template`" + `,
    not an entry at all
};
`

func TestParse_PlainThenTemplate(t *testing.T) {
	c := Parse(sample)

	wantKeys := []string{"hello", "quoted", "dup", "greet"}
	if got := c.Keys(); !reflect.DeepEqual(got, wantKeys) {
		t.Fatalf("Keys() = %v, want %v", got, wantKeys)
	}

	tests := []struct {
		key      string
		value    string
		template bool
	}{
		{"hello", "Hello", false},
		{"quoted", "Double", false},
		{"dup", "template", true},
		{"greet", "Hello ${0}", true},
	}
	for _, tc := range tests {
		e, ok := c.Get(tc.key)
		if !ok {
			t.Fatalf("missing key %q", tc.key)
		}
		if e.Value != tc.value || e.Template != tc.template {
			t.Errorf("%s = %#v, want value=%q template=%v", tc.key, e, tc.value, tc.template)
		}
	}
}

func TestParse_Lenient(t *testing.T) {
	c := Parse("const x = 1;\n'broken: 'value'\nfoo: bar\n")
	if c.Len() != 0 {
		t.Fatalf("expected no entries, got %v", c.Entries())
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "en.js")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSetKeepsPosition(t *testing.T) {
	c := New()
	c.Set(Entry{Key: "a", Value: "1"})
	c.Set(Entry{Key: "b", Value: "2"})
	c.Set(Entry{Key: "a", Value: "3", Template: true})

	if got := c.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Keys() = %v", got)
	}
	if e, _ := c.Get("a"); e.Value != "3" || !e.Template {
		t.Fatalf("a = %#v", e)
	}
}

func TestNormalizePlaceholders(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Hello $0", "Hello ${0}"},
		{"Hello ${0}", "Hello ${0}"},
		{"$1 of $12", "${1} of ${12}"},
		{"costs $ 5", "costs $ 5"},
		{"", ""},
	}
	for _, tc := range cases {
		got := NormalizePlaceholders(tc.in)
		if got != tc.want {
			t.Errorf("NormalizePlaceholders(%q) = %q, want %q", tc.in, got, tc.want)
		}
		if again := NormalizePlaceholders(got); again != got {
			t.Errorf("NormalizePlaceholders not idempotent for %q: %q", tc.in, again)
		}
	}
}

func TestMarshal(t *testing.T) {
	c := New()
	c.Set(Entry{Key: "plain", Value: "it's"})
	c.Set(Entry{Key: "tpl", Value: "a`b $0", Template: true})

	want := "import { str } from '@lit/localize';\n\n" +
		"export const templates = {\n" +
		"    'plain': 'it\\'s',\n" +
		"    'tpl': str`a\\`b ${0}`,\n" +
		"};\n"
	if got := string(Marshal(c)); got != want {
		t.Fatalf("Marshal() =\n%s\nwant\n%s", got, want)
	}
}

func TestMarshal_NoImportWithoutTemplates(t *testing.T) {
	c := New()
	c.Set(Entry{Key: "hi", Value: "Hi"})

	want := "export const templates = {\n    'hi': 'Hi',\n};\n"
	if got := string(Marshal(c)); got != want {
		t.Fatalf("Marshal() = %q, want %q", got, want)
	}
}

func TestMarshalParseRoundTrip(t *testing.T) {
	c := New()
	c.Set(Entry{Key: "title", Value: "Dev UI"})
	c.Set(Entry{Key: "count", Value: "Found $0 beans in ${1}", Template: true})
	c.Set(Entry{Key: "empty", Value: ""})

	parsed := Parse(string(Marshal(c)))
	if !reflect.DeepEqual(parsed.Keys(), []string{"title", "empty", "count"}) {
		// plain entries are collected before template entries
		t.Fatalf("Keys() = %v", parsed.Keys())
	}
	for _, e := range c.Entries() {
		got, ok := parsed.Get(e.Key)
		if !ok {
			t.Fatalf("missing %q after round trip", e.Key)
		}
		want := e
		if e.Template {
			want.Value = NormalizePlaceholders(e.Value)
		}
		if got != want {
			t.Errorf("round trip %q = %#v, want %#v", e.Key, got, want)
		}
	}

	if again := Parse(string(Marshal(parsed))); !reflect.DeepEqual(again.Entries(), parsed.Entries()) {
		t.Fatalf("second round trip changed entries: %v", again.Entries())
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, written, err := WriteFile(dir, "fr-CA", New(), false)
	if err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if written {
		t.Fatal("empty catalog must not be written without allowEmpty")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file should not exist, stat err=%v", err)
	}

	path, written, err = WriteFile(dir, "fr-CA", New(), true)
	if err != nil || !written {
		t.Fatalf("WriteFile(allowEmpty) = %v, %v", written, err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "export const templates = {\n};\n" {
		t.Fatalf("empty module = %q", data)
	}

	c := New()
	c.Set(Entry{Key: "hi", Value: "Salut"})
	if _, _, err := WriteFile(dir, "fr-CA", c, false); err != nil {
		t.Fatalf("overwrite error: %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(dir, "fr-CA.js"))
	if string(data) != "export const templates = {\n    'hi': 'Salut',\n};\n" {
		t.Fatalf("overwritten module = %q", data)
	}
}

func TestWriteFile_MissingDir(t *testing.T) {
	c := New()
	c.Set(Entry{Key: "hi", Value: "Hi"})
	if _, written, err := WriteFile(filepath.Join(t.TempDir(), "missing"), "de", c, false); err == nil || written {
		t.Fatalf("expected write error, got written=%v err=%v", written, err)
	}
}
