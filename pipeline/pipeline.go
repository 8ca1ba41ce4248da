// Package pipeline runs a translation over a source tree: it groups the
// English catalogs per localization directory, translates every group into
// the target language and writes the base catalog plus sparse dialect
// override catalogs next to the sources.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/minios-linux/jsloc/catalog"
	"github.com/minios-linux/jsloc/langmeta"
	"github.com/minios-linux/jsloc/lockfile"
	"github.com/minios-linux/jsloc/scan"
	"github.com/minios-linux/jsloc/translate"
)

// DefaultMainDir is the path suffix of the main Dev UI localization
// directory. Only there is the default-country marker file written.
const DefaultMainDir = "extensions/devui/resources/src/main/resources/dev-ui/i18n"

// Values substituted for entries that could not be translated.
const (
	TranslationError   = "<translation error>"
	ServiceUnavailable = "<translation service unavailable>"
)

// ---------------------------------------------------------------------------
// Options and results
// ---------------------------------------------------------------------------

// Options controls a Runner.
type Options struct {
	// Language is the English name of the target language ("German").
	Language string
	// Countries are the dialect country codes; they are sanitized first.
	Countries []string
	// MainDir overrides DefaultMainDir.
	MainDir string
	// Marker, CatalogNames and SkipDirs are passed to scan.Walk.
	Marker       string
	CatalogNames []string
	SkipDirs     []string
	// Lock, if set, records every written file.
	Lock *lockfile.LockFile
	// DryRun reports the files that would be written without translating.
	DryRun bool
	// Out receives group headers and per-entry progress lines.
	Out io.Writer
	// OnLog emits notices.
	OnLog func(format string, args ...any)
	// OnError emits errors.
	OnError func(format string, args ...any)
	// Verbose enables merge override reporting.
	Verbose bool
}

func (o *Options) log(format string, args ...any) {
	if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) logError(format string, args ...any) {
	if o.OnError != nil {
		o.OnError(format, args...)
	} else if o.OnLog != nil {
		o.OnLog(format, args...)
	}
}

func (o *Options) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return io.Discard
}

func (o *Options) mainDir() string {
	if o.MainDir != "" {
		return o.MainDir
	}
	return DefaultMainDir
}

// GroupResult describes what ProcessGroup did with one group.
type GroupResult struct {
	Dir string
	// Skipped is set when the base catalog already existed.
	Skipped bool
	// Written lists the files written, in order.
	Written []string
	// Failed counts files that could not be written.
	Failed int
	// Errors counts entries that could not be translated.
	Errors int
}

// Summary aggregates the results of a run.
type Summary struct {
	Groups  int
	Skipped int
	Written []string
	Failed  int
	Errors  int
}

func (s *Summary) add(r *GroupResult) {
	if r.Skipped {
		s.Skipped++
	}
	s.Written = append(s.Written, r.Written...)
	s.Failed += r.Failed
	s.Errors += r.Errors
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

// Runner translates groups of catalogs. All translation calls of one Runner
// share a session ID.
type Runner struct {
	Translator translate.Translator
	Resolver   *langmeta.Resolver
	Options    Options

	sessionID string
}

// New returns a Runner with a fresh session ID. A nil resolver uses the
// system locale table; a nil translator yields ServiceUnavailable values.
func New(tr translate.Translator, resolver *langmeta.Resolver, opts Options) *Runner {
	if resolver == nil {
		resolver = langmeta.NewResolver(nil)
	}
	return &Runner{
		Translator: tr,
		Resolver:   resolver,
		Options:    opts,
		sessionID:  uuid.NewString(),
	}
}

// SessionID returns the ID passed to every translation call.
func (r *Runner) SessionID() string { return r.sessionID }

// Walk discovers the groups below root with the Runner's scan options.
func (r *Runner) Walk(root string) ([]*scan.Group, error) {
	opts := scan.Options{
		Marker:       r.Options.Marker,
		CatalogNames: r.Options.CatalogNames,
		SkipDirs:     r.Options.SkipDirs,
		OnError:      r.Options.logError,
	}
	if r.Options.Verbose {
		opts.OnOverride = func(file string, keys []string) {
			r.Options.log("%s overrides %d key(s): %s", file, len(keys), strings.Join(keys, ", "))
		}
	}
	return scan.Walk(root, opts)
}

// Run processes every group below root in directory order. It fails only
// when root cannot be walked or ctx is cancelled; per-file and per-entry
// problems are reported and counted in the summary.
func (r *Runner) Run(ctx context.Context, root string) (*Summary, error) {
	if strings.TrimSpace(r.Options.Language) == "" {
		return nil, fmt.Errorf("target language is empty")
	}

	groups, err := r.Walk(root)
	if err != nil {
		return nil, err
	}

	if r.Translator != nil {
		if sc := r.Translator.Scope(); sc != nil && sc.Acquire() {
			defer sc.Release()
		}
	}

	sum := &Summary{Groups: len(groups)}
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		res, err := r.ProcessGroup(ctx, g)
		sum.add(res)
		if err != nil {
			return sum, err
		}
	}

	if lock := r.Options.Lock; lock != nil && !r.Options.DryRun && len(sum.Written) > 0 {
		if err := lock.Save(); err != nil {
			r.Options.logError("Failed to write %s: %v", lock.Path(), err)
		}
	}
	return sum, nil
}

// ProcessGroup translates one group. It returns an error only when ctx was
// cancelled, in which case nothing further is written for the group.
func (r *Runner) ProcessGroup(ctx context.Context, g *scan.Group) (*GroupResult, error) {
	res := &GroupResult{Dir: g.Dir}
	out := r.Options.out()
	language := strings.TrimSpace(r.Options.Language)

	fmt.Fprintf(out, "\n== %s ==\n", g.Dir)

	code := r.Resolver.DeriveLanguageCode(language)
	baseName := code + catalog.Ext
	if _, err := os.Stat(catalog.FilePath(g.Dir, code)); err == nil {
		r.Options.log("Skipping %s because %s already exists", g.Dir, baseName)
		res.Skipped = true
		return res, nil
	}

	defaultCountry := ""
	if cc, ok := r.Resolver.FindDefaultCountryCode(code, language); ok {
		defaultCountry = langmeta.SanitizeCountryCode(cc)
	}
	var dialects []string
	for _, c := range langmeta.SanitizeCountryList(r.Options.Countries) {
		if !strings.EqualFold(c, defaultCountry) {
			dialects = append(dialects, c)
		}
	}
	writeMarker := defaultCountry != "" && isMainDir(g.Dir, r.Options.mainDir())

	if r.Options.DryRun {
		r.reportDryRun(g, code, defaultCountry, writeMarker, dialects)
		return res, nil
	}

	checksum := lockfile.Hash(catalog.Marshal(g.Catalog))

	base := r.translateCatalog(ctx, g.Catalog, language, true, res)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	r.write(g, code, base, false, language, checksum, res)

	if writeMarker {
		r.write(g, code+"-"+defaultCountry, catalog.New(), true, language, checksum, res)
	}

	for _, country := range dialects {
		label := r.Resolver.BuildLocaleLabel(code, country)
		dialect := r.translateCatalog(ctx, g.Catalog, label, false, res)
		if err := ctx.Err(); err != nil {
			return res, err
		}
		r.write(g, code+"-"+country, catalog.Diff(base, dialect), false, label, checksum, res)
	}
	return res, nil
}

// translateCatalog translates every entry of src under label, keeping keys,
// order and template flags. Progress lines are printed only for the base
// pass. It stops at the first entry after ctx is cancelled.
func (r *Runner) translateCatalog(ctx context.Context, src *catalog.Catalog, label string, progress bool, res *GroupResult) *catalog.Catalog {
	out := r.Options.out()
	dst := catalog.New()
	for _, e := range src.Entries() {
		if ctx.Err() != nil {
			break
		}
		translated := r.translateValue(ctx, label, e.Value, res)
		if ctx.Err() != nil {
			break
		}
		if progress {
			fmt.Fprintf(out, "%s = %s -> %s\n", e.Key, e.Value, translated)
		}
		dst.Set(catalog.Entry{Key: e.Key, Value: translated, Template: e.Template})
	}
	return dst
}

// translateValue runs one translation inside the translator's request
// scope. Failures are reported and replaced by a sentinel value.
func (r *Runner) translateValue(ctx context.Context, label, text string, res *GroupResult) string {
	if r.Translator == nil {
		return ServiceUnavailable
	}
	if sc := r.Translator.Scope(); sc != nil && sc.Acquire() {
		defer sc.Release()
	}

	translated, err := r.Translator.Translate(ctx, r.sessionID, label, text)
	if err != nil {
		if ctx.Err() != nil {
			return TranslationError
		}
		r.Options.logError("Failed to translate \"%s\": %v", text, err)
		res.Errors++
		return TranslationError
	}
	return translated
}

func (r *Runner) write(g *scan.Group, stem string, c *catalog.Catalog, allowEmpty bool, label, checksum string, res *GroupResult) {
	path, written, err := catalog.WriteFile(g.Dir, stem, c, allowEmpty)
	if err != nil {
		r.Options.logError("Failed to write %s: %v", path, err)
		res.Failed++
		return
	}
	if !written {
		r.Options.log("Skipping %s (no entries to write)", path)
		return
	}
	r.Options.log("Written %s", path)
	res.Written = append(res.Written, path)
	if r.Options.Lock != nil {
		r.Options.Lock.Record(path, label, checksum, g.Files)
	}
}

func (r *Runner) reportDryRun(g *scan.Group, code, defaultCountry string, writeMarker bool, dialects []string) {
	n := g.Catalog.Len()
	r.Options.log("Would translate %d entries into %s", n, catalog.FilePath(g.Dir, code))
	if writeMarker {
		r.Options.log("Would write empty %s", catalog.FilePath(g.Dir, code+"-"+defaultCountry))
	}
	for _, c := range dialects {
		r.Options.log("Would translate %d entries for %s", n, catalog.FilePath(g.Dir, code+"-"+c))
	}
}

// isMainDir reports whether dir ends with the path components of suffix.
func isMainDir(dir, suffix string) bool {
	dirParts := splitPath(dir)
	sufParts := splitPath(suffix)
	if len(sufParts) == 0 || len(sufParts) > len(dirParts) {
		return false
	}
	tail := dirParts[len(dirParts)-len(sufParts):]
	for i := range sufParts {
		if tail[i] != sufParts[i] {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	p = filepath.ToSlash(filepath.Clean(p))
	var parts []string
	for _, s := range strings.Split(p, "/") {
		if s != "" && s != "." {
			parts = append(parts, s)
		}
	}
	return parts
}
