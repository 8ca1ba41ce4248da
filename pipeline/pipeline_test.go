package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/minios-linux/jsloc/catalog"
	"github.com/minios-linux/jsloc/langmeta"
	"github.com/minios-linux/jsloc/lockfile"
	"github.com/minios-linux/jsloc/translate"
)

type call struct {
	session, label, text string
	scopeActive          bool
}

type fakeTranslator struct {
	scope *translate.Scope
	fn    func(label, text string) (string, error)
	calls []call
}

func newFake(fn func(label, text string) (string, error)) *fakeTranslator {
	return &fakeTranslator{scope: translate.NewScope("", time.Second), fn: fn}
}

func (f *fakeTranslator) Translate(ctx context.Context, sessionID, label, text string) (string, error) {
	f.calls = append(f.calls, call{session: sessionID, label: label, text: text, scopeActive: f.scope.Active()})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.fn(label, text)
}

func (f *fakeTranslator) Scope() *translate.Scope { return f.scope }

// germanDialects prefixes German translations; Austrian German differs only
// for "Hello".
func germanDialects(label, text string) (string, error) {
	if label == "German (Austria)" && text == "Hello" {
		return "Servus", nil
	}
	return "de " + text, nil
}

var testResolver = langmeta.NewResolver(langmeta.StaticTable{
	{Language: "de", DisplayLanguage: "German"},
	{Language: "de", Country: "DE", DisplayLanguage: "German"},
	{Language: "de", Country: "AT", DisplayLanguage: "German"},
	{Language: "fr", DisplayLanguage: "French"},
	{Language: "fr", Country: "CA", DisplayLanguage: "French"},
})

const sourceCatalog = "import { str } from '@lit/localize';\n" +
	"export const templates = {\n" +
	"  'hi': 'Hello',\n" +
	"  'bye': 'Bye',\n" +
	"  'count': str`$0 items`,\n" +
	"};\n"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

type logs struct {
	info, errs []string
}

func (l *logs) options(opts Options) Options {
	opts.OnLog = func(format string, args ...any) { l.info = append(l.info, fmt.Sprintf(format, args...)) }
	opts.OnError = func(format string, args ...any) { l.errs = append(l.errs, fmt.Sprintf(format, args...)) }
	return opts
}

// ---------------------------------------------------------------------------
// Run
// ---------------------------------------------------------------------------

func TestRunWritesBaseAndDialects(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "ext", "i18n")
	writeFile(t, filepath.Join(dir, "en.js"), sourceCatalog)

	var out bytes.Buffer
	var l logs
	tr := newFake(germanDialects)
	r := New(tr, testResolver, l.options(Options{
		Language:  " German ",
		Countries: []string{"at", "ch", "DE", "A-T"},
		Out:       &out,
	}))

	sum, err := r.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantBase := "import { str } from '@lit/localize';\n\n" +
		"export const templates = {\n" +
		"    'hi': 'de Hello',\n" +
		"    'bye': 'de Bye',\n" +
		"    'count': str`de ${0} items`,\n" +
		"};\n"
	if got := readFile(t, filepath.Join(dir, "de.js")); got != wantBase {
		t.Fatalf("de.js =\n%s\nwant\n%s", got, wantBase)
	}

	wantAT := "export const templates = {\n    'hi': 'Servus',\n};\n"
	if got := readFile(t, filepath.Join(dir, "de-AT.js")); got != wantAT {
		t.Fatalf("de-AT.js =\n%s\nwant\n%s", got, wantAT)
	}

	if exists(filepath.Join(dir, "de-CH.js")) {
		t.Fatal("de-CH.js must not be written: no entry differs from the base")
	}
	if exists(filepath.Join(dir, "de-DE.js")) {
		t.Fatal("default country must not get a dialect file outside the main directory")
	}

	wantWritten := []string{filepath.Join(dir, "de.js"), filepath.Join(dir, "de-AT.js")}
	if sum.Groups != 1 || !reflect.DeepEqual(sum.Written, wantWritten) || sum.Errors != 0 || sum.Failed != 0 {
		t.Fatalf("unexpected summary: %#v", sum)
	}

	if !strings.Contains(out.String(), "\n== "+dir+" ==\n") {
		t.Fatalf("missing group header in output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "hi = Hello -> de Hello\n") {
		t.Fatalf("missing progress line in output:\n%s", out.String())
	}

	labels := map[string]int{}
	for _, c := range tr.calls {
		labels[c.label]++
	}
	want := map[string]int{"German": 3, "German (Austria)": 3, "German (Switzerland)": 3}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("translation labels = %v, want %v", labels, want)
	}

	wantLog := "Skipping " + filepath.Join(dir, "de-CH.js") + " (no entries to write)"
	found := false
	for _, line := range l.info {
		if line == wantLog {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing %q in logs %v", wantLog, l.info)
	}
}

func TestRunMainDirWritesDefaultCountryMarker(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, filepath.FromSlash(DefaultMainDir))
	writeFile(t, filepath.Join(dir, "en.js"), `'hi': 'Hello'`)

	r := New(newFake(germanDialects), testResolver, Options{Language: "German", Countries: []string{"DE"}})
	if _, err := r.Run(context.Background(), root); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dir, "de-DE.js")); got != "export const templates = {\n};\n" {
		t.Fatalf("de-DE.js = %q, want empty catalog", got)
	}
	if !exists(filepath.Join(dir, "de.js")) {
		t.Fatal("de.js not written")
	}
}

func TestRunSkipsGroupWithExistingBase(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "i18n")
	writeFile(t, filepath.Join(dir, "en.js"), `'hi': 'Hello'`)
	writeFile(t, filepath.Join(dir, "de.js"), "keep me")

	var l logs
	tr := newFake(germanDialects)
	r := New(tr, testResolver, l.options(Options{Language: "German", Countries: []string{"AT"}}))
	sum, err := r.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if sum.Skipped != 1 || len(sum.Written) != 0 {
		t.Fatalf("unexpected summary: %#v", sum)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("translator called %d times for a skipped group", len(tr.calls))
	}
	if got := readFile(t, filepath.Join(dir, "de.js")); got != "keep me" {
		t.Fatalf("existing base overwritten: %q", got)
	}
	if exists(filepath.Join(dir, "de-AT.js")) {
		t.Fatal("dialects must not be written for a skipped group")
	}
	if want := "Skipping " + dir + " because de.js already exists"; len(l.info) == 0 || l.info[0] != want {
		t.Fatalf("logs = %v, want %q first", l.info, want)
	}
}

func TestRunTranslationErrorUsesSentinel(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "i18n")
	writeFile(t, filepath.Join(dir, "en.js"), `'hi': 'Hello', 'bye': 'Bye'`)

	var l logs
	tr := newFake(func(label, text string) (string, error) {
		if text == "Bye" {
			return "", errors.New("quota exceeded")
		}
		return "Bonjour", nil
	})
	r := New(tr, testResolver, l.options(Options{Language: "French"}))
	sum, err := r.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := "export const templates = {\n    'hi': 'Bonjour',\n    'bye': '" + TranslationError + "',\n};\n"
	if got := readFile(t, filepath.Join(dir, "fr.js")); got != want {
		t.Fatalf("fr.js =\n%s\nwant\n%s", got, want)
	}
	if sum.Errors != 1 {
		t.Fatalf("Errors = %d, want 1", sum.Errors)
	}
	if len(l.errs) != 1 || l.errs[0] != `Failed to translate "Bye": quota exceeded` {
		t.Fatalf("errors = %v", l.errs)
	}
}

func TestRunWithoutTranslator(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "i18n")
	writeFile(t, filepath.Join(dir, "en.js"), `'hi': 'Hello'`)

	r := New(nil, testResolver, Options{Language: "French"})
	if _, err := r.Run(context.Background(), root); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := "export const templates = {\n    'hi': '" + ServiceUnavailable + "',\n};\n"
	if got := readFile(t, filepath.Join(dir, "fr.js")); got != want {
		t.Fatalf("fr.js = %q", got)
	}
}

func TestRunSharesSessionAndScope(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "i18n", "en.js"), `'x': 'X'`)
	writeFile(t, filepath.Join(root, "b", "i18n", "en.js"), `'y': 'Y'`)

	tr := newFake(germanDialects)
	r := New(tr, testResolver, Options{Language: "German", Countries: []string{"AT"}})
	if _, err := r.Run(context.Background(), root); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(tr.calls) != 4 {
		t.Fatalf("calls = %d, want 4", len(tr.calls))
	}
	for _, c := range tr.calls {
		if c.session != r.SessionID() {
			t.Fatalf("call used session %q, want %q", c.session, r.SessionID())
		}
		if !c.scopeActive {
			t.Fatal("translation ran outside an active scope")
		}
	}
	if tr.scope.Active() {
		t.Fatal("scope must be released after Run")
	}
	if tr.calls[0].text != "X" || tr.calls[2].text != "Y" {
		t.Fatalf("groups not processed in directory order: %#v", tr.calls)
	}

	other := New(tr, testResolver, Options{Language: "German"})
	if other.SessionID() == r.SessionID() {
		t.Fatal("each Runner must get its own session ID")
	}
}

func TestProcessGroupReleasesOnlyOwnScope(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "i18n", "en.js"), `'x': 'X'`)

	tr := newFake(germanDialects)
	r := New(tr, testResolver, Options{Language: "German"})
	groups, err := r.Walk(root)
	if err != nil || len(groups) != 1 {
		t.Fatalf("Walk() = %v, %v", groups, err)
	}

	if !tr.scope.Acquire() {
		t.Fatal("Acquire() failed")
	}
	if _, err := r.ProcessGroup(context.Background(), groups[0]); err != nil {
		t.Fatalf("ProcessGroup() error = %v", err)
	}
	if !tr.scope.Active() {
		t.Fatal("ProcessGroup released a scope it did not acquire")
	}
	tr.scope.Release()

	if err := os.Remove(filepath.Join(root, "i18n", "de.js")); err != nil {
		t.Fatal(err)
	}
	before := len(tr.calls)
	if _, err := r.ProcessGroup(context.Background(), groups[0]); err != nil {
		t.Fatalf("ProcessGroup() error = %v", err)
	}
	if len(tr.calls) != before+1 {
		t.Fatalf("calls = %d, want %d", len(tr.calls), before+1)
	}
	if !tr.calls[len(tr.calls)-1].scopeActive || tr.scope.Active() {
		t.Fatal("ProcessGroup must acquire and release the scope itself when inactive")
	}
}

func TestRunErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	writeFile(t, file, "x")

	r := New(newFake(germanDialects), testResolver, Options{Language: "German"})
	if _, err := r.Run(context.Background(), file); err == nil {
		t.Fatal("expected error for non-directory root")
	}

	r = New(newFake(germanDialects), testResolver, Options{Language: "  "})
	if _, err := r.Run(context.Background(), root); err == nil {
		t.Fatal("expected error for empty language")
	}
}

func TestRunCancelled(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "i18n")
	writeFile(t, filepath.Join(dir, "en.js"), `'hi': 'Hello'`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(newFake(germanDialects), testResolver, Options{Language: "German"})
	if _, err := r.Run(ctx, root); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if exists(filepath.Join(dir, "de.js")) {
		t.Fatal("nothing may be written after cancellation")
	}
}

func TestRunPrintsProgressOnlyForBase(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "i18n", "en.js"), sourceCatalog)

	var out bytes.Buffer
	r := New(newFake(germanDialects), testResolver, Options{
		Language:  "German",
		Countries: []string{"AT"},
		Out:       &out,
	})
	if _, err := r.Run(context.Background(), root); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if n := strings.Count(out.String(), " -> "); n != 3 {
		t.Fatalf("progress lines = %d, want 3:\n%s", n, out.String())
	}
	if strings.Contains(out.String(), "Servus") {
		t.Fatalf("dialect translations must not be printed:\n%s", out.String())
	}
}

func TestRunStopsTranslatingAfterCancel(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "i18n")
	writeFile(t, filepath.Join(dir, "en.js"), sourceCatalog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tr := newFake(func(label, text string) (string, error) {
		cancel()
		return "de " + text, nil
	})

	var l logs
	r := New(tr, testResolver, l.options(Options{Language: "German", Countries: []string{"AT"}}))
	sum, err := r.Run(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if len(tr.calls) != 1 {
		t.Fatalf("translator calls = %d, want 1", len(tr.calls))
	}
	if sum.Errors != 0 || len(l.errs) != 0 {
		t.Fatalf("cancellation reported as translation errors: %d, %v", sum.Errors, l.errs)
	}
	if exists(filepath.Join(dir, "de.js")) {
		t.Fatal("nothing may be written after cancellation")
	}
}

func TestRunContinuesAfterWriteError(t *testing.T) {
	root := t.TempDir()
	ext := filepath.Join(root, "ext", "i18n")
	z := filepath.Join(root, "z", "i18n")
	writeFile(t, filepath.Join(ext, "en.js"), sourceCatalog)
	writeFile(t, filepath.Join(z, "en.js"), sourceCatalog)
	if err := os.MkdirAll(filepath.Join(ext, "de-AT.js"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	var l logs
	r := New(newFake(germanDialects), testResolver, l.options(Options{Language: "German", Countries: []string{"AT"}}))
	sum, err := r.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		filepath.Join(ext, "de.js"),
		filepath.Join(z, "de.js"),
		filepath.Join(z, "de-AT.js"),
	}
	if sum.Failed != 1 || !reflect.DeepEqual(sum.Written, want) {
		t.Fatalf("summary = %#v, want 1 failure and written %v", sum, want)
	}
	if len(l.errs) != 1 || !strings.HasPrefix(l.errs[0], "Failed to write "+filepath.Join(ext, "de-AT.js")) {
		t.Fatalf("errors = %v", l.errs)
	}
}

func TestRunRecordsLockfile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "ext", "i18n")
	writeFile(t, filepath.Join(dir, "en.js"), sourceCatalog)

	lock, err := lockfile.Load(root)
	if err != nil {
		t.Fatal(err)
	}
	r := New(newFake(germanDialects), testResolver, Options{Language: "German", Countries: []string{"AT"}, Lock: lock})
	if _, err := r.Run(context.Background(), root); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	reloaded, err := lockfile.Load(root)
	if err != nil {
		t.Fatalf("lockfile.Load() error = %v", err)
	}
	got, ok := reloaded.Lookup(filepath.Join(dir, "de-AT.js"))
	if !ok {
		t.Fatalf("de-AT.js not recorded; targets = %v", reloaded.Targets())
	}
	src := catalog.Parse(sourceCatalog)
	want := lockfile.Output{
		Sources:  []string{"ext/i18n/en.js"},
		Checksum: lockfile.Hash(catalog.Marshal(src)),
		Label:    "German (Austria)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("record = %#v, want %#v", got, want)
	}
}

func TestRunDryRun(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "i18n")
	writeFile(t, filepath.Join(dir, "en.js"), `'hi': 'Hello'`)

	var l logs
	tr := newFake(germanDialects)
	r := New(tr, testResolver, l.options(Options{Language: "German", Countries: []string{"AT"}, DryRun: true}))
	sum, err := r.Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(tr.calls) != 0 || len(sum.Written) != 0 {
		t.Fatalf("dry run translated or wrote: calls=%d written=%v", len(tr.calls), sum.Written)
	}
	if exists(filepath.Join(dir, "de.js")) {
		t.Fatal("dry run wrote de.js")
	}
	if len(l.info) != 2 {
		t.Fatalf("dry run logs = %v", l.info)
	}
}

func TestIsMainDir(t *testing.T) {
	cases := []struct {
		dir  string
		want bool
	}{
		{"/src/quarkus/" + DefaultMainDir, true},
		{"/src/quarkus/" + DefaultMainDir + "/", true},
		{"/src/quarkus/xextensions/devui/resources/src/main/resources/dev-ui/i18n", false},
		{"/src/quarkus/devui/resources/src/main/resources/dev-ui/i18n", false},
		{"/src/quarkus/" + DefaultMainDir + "/sub", false},
		{"/i18n", false},
	}
	for _, tc := range cases {
		if got := isMainDir(tc.dir, DefaultMainDir); got != tc.want {
			t.Errorf("isMainDir(%q) = %v, want %v", tc.dir, got, tc.want)
		}
	}
}
