package settings

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestPathsUseXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	if want := filepath.Join(tmp, "jsloc"); dir != want {
		t.Fatalf("DataDir() = %q, want %q", dir, want)
	}

	auth, err := AuthFilePath()
	if err != nil || auth != filepath.Join(tmp, "jsloc", "auth.json") {
		t.Fatalf("AuthFilePath() = %q, %v", auth, err)
	}
	prompts, err := PromptsFilePath()
	if err != nil || prompts != filepath.Join(tmp, "jsloc", "prompts.json") {
		t.Fatalf("PromptsFilePath() = %q, %v", prompts, err)
	}
}

func TestDataDirFallsBackToHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("HOME", home)

	dir, err := DataDir()
	if err != nil {
		t.Fatalf("DataDir() error: %v", err)
	}
	if want := filepath.Join(home, ".local", "share", "jsloc"); dir != want {
		t.Fatalf("DataDir() = %q, want %q", dir, want)
	}
}

func TestCredentialLifecycle(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() on missing file = %#v, want empty", got)
	}

	if err := SetAPIKey("groq", "gsk_1234567890", ""); err != nil {
		t.Fatalf("SetAPIKey(groq) error: %v", err)
	}
	if err := SetAPIKey("custom-openai", "sk-abcdefghij", "https://llm.example.com/v1"); err != nil {
		t.Fatalf("SetAPIKey(custom-openai) error: %v", err)
	}

	info, err := os.Stat(filepath.Join(tmp, "jsloc", "auth.json"))
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("auth.json mode = %o, want 600", info.Mode().Perm())
	}

	if got := APIKey("groq"); got != "gsk_1234567890" {
		t.Fatalf("APIKey(groq) = %q", got)
	}
	if got := BaseURL("custom-openai"); got != "https://llm.example.com/v1" {
		t.Fatalf("BaseURL(custom-openai) = %q", got)
	}
	if got := Providers(); !reflect.DeepEqual(got, []string{"custom-openai", "groq"}) {
		t.Fatalf("Providers() = %v", got)
	}

	if err := Remove("groq"); err != nil {
		t.Fatalf("Remove(groq) error: %v", err)
	}
	if got := APIKey("groq"); got != "" {
		t.Fatalf("APIKey after remove = %q, want empty", got)
	}
	if err := Remove("missing"); err != nil {
		t.Fatalf("Remove(missing) should be a no-op, got %v", err)
	}

	if err := RemoveAll(); err != nil {
		t.Fatalf("RemoveAll() error: %v", err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() after RemoveAll = %#v, want empty", got)
	}
	if err := RemoveAll(); err != nil {
		t.Fatalf("RemoveAll() on missing file error: %v", err)
	}
}

func TestLoadIgnoresInvalidJSON(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	path := filepath.Join(tmp, "jsloc", "auth.json")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() = %#v, want empty store", got)
	}
}

func TestMaskKey(t *testing.T) {
	cases := map[string]string{
		"short":          "****",
		"12345678":       "****",
		"gsk_1234567890": "gsk_...7890",
	}
	for in, want := range cases {
		if got := MaskKey(in); got != want {
			t.Errorf("MaskKey(%q) = %q, want %q", in, got, want)
		}
	}
}
