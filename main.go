// jsloc translates the English UI-string catalogs of a source tree with AI
// providers and writes sparse per-dialect override catalogs.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/minios-linux/jsloc/catalog"
	"github.com/minios-linux/jsloc/config"
	"github.com/minios-linux/jsloc/i18n"
	"github.com/minios-linux/jsloc/langmeta"
	"github.com/minios-linux/jsloc/lockfile"
	"github.com/minios-linux/jsloc/pipeline"
	"github.com/minios-linux/jsloc/scan"
	"github.com/minios-linux/jsloc/settings"
	"github.com/minios-linux/jsloc/translate"
	"github.com/spf13/cobra"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Providers
// ---------------------------------------------------------------------------

type providerInfo struct {
	id      string
	name    string
	desc    string
	auth    string // "api-key" or "none"
	helpURL string
	models  []string
}

var allProviders = []providerInfo{
	{
		id: translate.ProviderGoogle, name: "Google AI Studio", desc: "Gemini models",
		auth: "api-key", helpURL: "https://aistudio.google.com/apikey",
		models: []string{"gemini-2.5-flash", "gemini-2.0-flash-exp", "gemini-1.5-pro"},
	},
	{
		id: translate.ProviderGroq, name: "Groq Cloud", desc: "fast open models",
		auth: "api-key", helpURL: "https://console.groq.com/keys",
		models: []string{"llama-3.3-70b-versatile", "mixtral-8x7b-32768"},
	},
	{
		id: translate.ProviderOpenCode, name: "OpenCode", desc: "multi-format dispatcher",
		auth:   "api-key",
		models: []string{"big-pickle", "gemini-2.5-flash", "claude-sonnet-4.5", "gpt-4o"},
	},
	{
		id: translate.ProviderCustomOpenAI, name: "Custom OpenAI", desc: "any OpenAI-compatible endpoint",
		auth:   "api-key",
		models: []string{"gpt-4o", "gpt-4o-mini"},
	},
	{
		id: translate.ProviderOllama, name: "Ollama", desc: "local server",
		auth:   "none",
		models: []string{"llama3.2", "qwen2.5", "mistral", "phi3"},
	},
}

func findProvider(id string) (providerInfo, bool) {
	for _, p := range allProviders {
		if p.id == id {
			return p, true
		}
	}
	return providerInfo{}, false
}

func authProviderIDs() []string {
	var ids []string
	for _, p := range allProviders {
		if p.auth != "none" {
			ids = append(ids, p.id)
		}
	}
	return ids
}

func completeProviders(authOnly bool) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		completions := make([]string, 0, len(allProviders))
		for _, p := range allProviders {
			if authOnly && p.auth == "none" {
				continue
			}
			completions = append(completions, fmt.Sprintf("%s\t%s", p.id, p.name))
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "jsloc",
		Short: i18n.T("Translate JavaScript UI-string catalogs with AI"),
		Long: `jsloc finds English UI-string catalogs (en.js, en-US.js, en-GB.js) below a
source root, merges them per i18n directory and writes a translated catalog
for the target language plus sparse override catalogs for its dialects.

Commands:
  translate   Translate every i18n directory below a root
  scan        List i18n directories and their source catalogs
  status      Show which translations exist and whether they are stale
  auth        Manage provider API keys

AI Providers:
  google         Google AI (Gemini), API key
  groq           Groq, API key
  opencode       OpenCode (multi-format dispatcher)
  ollama         Ollama local server
  custom-openai  Custom OpenAI-compatible endpoint`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTranslateCmd(),
		newScanCmd(),
		newStatusCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "jsloc version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
			fmt.Fprintf(out, "  locale:    %s\n", i18n.Lang())
		},
	}
}

// ---------------------------------------------------------------------------
// Interactive input
// ---------------------------------------------------------------------------

// prompter asks questions on out and reads single-line answers from in.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// ask prints question and returns the trimmed answer. ok is false once input
// is exhausted.
func (p *prompter) ask(question string) (answer string, ok bool) {
	fmt.Fprint(p.out, question)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// askRoot repeats until the answer names an existing directory.
func (p *prompter) askRoot() (string, error) {
	for {
		answer, ok := p.ask(i18n.T("Enter the path to the source root: "))
		if !ok {
			return "", fmt.Errorf("no source root given")
		}
		if answer == "" {
			logWarning("%s", i18n.T("A source path is required."))
			continue
		}
		if info, err := os.Stat(answer); err != nil || !info.IsDir() {
			logWarning(i18n.T("Path %s is not a directory. Please try again."), answer)
			continue
		}
		return answer, nil
	}
}

// askLanguage repeats until a non-blank answer is given.
func (p *prompter) askLanguage() (string, error) {
	for {
		answer, ok := p.ask(i18n.T("Which language are we translating to? "))
		if !ok {
			return "", fmt.Errorf("no target language given")
		}
		if answer != "" {
			return answer, nil
		}
		logWarning("%s", i18n.T("Please enter a language to translate to."))
	}
}

// askCountries asks once; an empty answer means no dialects.
func (p *prompter) askCountries() []string {
	answer, ok := p.ask(i18n.T("Optional comma separated country codes (excluding the default): "))
	if !ok || answer == "" {
		return nil
	}
	return parseCountries(answer)
}

// parseCountries splits a comma-separated list and sanitizes each code.
func parseCountries(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return langmeta.SanitizeCountryList(strings.Split(s, ","))
}

// stdinIsTerminal reports whether stdin is an interactive character device.
func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// loadConfig resolves root (from args or an interactive prompt) and loads
// its configuration.
func loadConfig(args []string, p *prompter) (string, *config.Config, error) {
	var root string
	if len(args) > 0 {
		root = args[0]
	} else if p != nil {
		r, err := p.askRoot()
		if err != nil {
			return "", nil, err
		}
		root = r
	} else {
		root = "."
	}

	cfg, err := config.Load(root)
	if err != nil {
		return "", nil, err
	}
	if cfg.FilePath != "" {
		logInfo(i18n.T("Using %s"), cfg.FilePath)
	}
	return root, cfg, nil
}

func scanOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Language:     cfg.Language,
		Countries:    cfg.Countries,
		MainDir:      cfg.MainDir,
		Marker:       cfg.Marker,
		CatalogNames: cfg.Catalogs,
		SkipDirs:     cfg.SkipDirs,
		OnLog:        logInfo,
		OnError:      logError,
	}
}

func relPath(root, path string) string {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(absRoot, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ---------------------------------------------------------------------------
// translate
// ---------------------------------------------------------------------------

type translateArgs struct {
	language, countries              string
	provider, apiKey, model, baseURL string
	prompt, proxy                    string
	timeout                          time.Duration
	maxRetries                       int
	verbose, dryRun, noLock          bool
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate [root]",
		Short: i18n.T("Translate every i18n directory below a root"),
		Long: `Translate the merged English catalog of every i18n directory below root.

For each directory without an existing translation jsloc writes <code>.js, an
empty <code>-<DEFAULT>.js marker in the main Dev UI directory, and one
<code>-<COUNTRY>.js per dialect holding only the entries that differ from
the base translation.

Missing root and language are asked for interactively. Settings may also come
from .jsloc.yaml, .env and JSLOC_* environment variables; flags win.

Examples:
  jsloc translate ~/src/quarkus -l German -c AT,CH --provider google --model gemini-2.5-flash
  jsloc translate . -l French --provider ollama --model llama3.2
  jsloc translate . -l German -c AT --dry-run`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, args, a)
		},
	}

	cmd.Flags().StringVarP(&a.language, "language", "l", "", "Target language in English (e.g. German)")
	cmd.Flags().StringVarP(&a.countries, "countries", "c", "", "Dialect country codes, comma-separated (e.g. AT,CH)")

	cmd.Flags().StringVar(&a.provider, "provider", "", "AI provider: google, groq, opencode, ollama, custom-openai")
	cmd.Flags().StringVar(&a.model, "model", "", "Model name")
	cmd.Flags().StringVar(&a.apiKey, "api-key", "", "API key (or JSLOC_API_KEY env var)")
	cmd.Flags().StringVar(&a.baseURL, "base-url", "", "Custom API base URL")

	cmd.Flags().StringVar(&a.prompt, "prompt", "", "Custom system prompt (use {{targetLang}} placeholder)")
	cmd.Flags().BoolVar(&a.verbose, "verbose", false, "Enable detailed logging")
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Show what would be written without calling AI")
	cmd.Flags().BoolVar(&a.noLock, "no-lock", false, "Do not record written files in "+lockfile.LockFileName)

	cmd.Flags().DurationVar(&a.timeout, "timeout", 0, "Request timeout (0 = provider default)")
	cmd.Flags().StringVar(&a.proxy, "proxy", "", "HTTP/HTTPS proxy URL")
	cmd.Flags().IntVar(&a.maxRetries, "max-retries", 3, "Maximum retries on rate limits and server errors")

	_ = cmd.RegisterFlagCompletionFunc("provider", completeProviders(false))
	_ = cmd.RegisterFlagCompletionFunc("model", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		id, _ := cmd.Flags().GetString("provider")
		if p, ok := findProvider(id); ok {
			return p.models, cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// applyTranslateFlags overrides cfg with the flags that were set explicitly.
func applyTranslateFlags(cmd *cobra.Command, cfg *config.Config, a translateArgs) {
	changed := cmd.Flags().Changed
	if changed("language") {
		cfg.Language = a.language
	}
	if changed("countries") {
		cfg.Countries = parseCountries(a.countries)
	}
	if changed("provider") {
		cfg.Provider = a.provider
	}
	if changed("model") {
		cfg.Model = a.model
	}
	if changed("api-key") {
		cfg.APIKey = a.apiKey
	}
	if changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if changed("prompt") {
		cfg.Prompt = a.prompt
	}
	if changed("proxy") {
		cfg.Proxy = a.proxy
	}
	if changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if changed("max-retries") {
		cfg.MaxRetries = a.maxRetries
	}
}

// resolveAPIKey returns the first non-empty key of: flag or environment
// (already folded into cfg), then the credential store.
func resolveAPIKey(cfg *config.Config) string {
	if cfg.APIKey != "" {
		return cfg.APIKey
	}
	return settings.APIKey(strings.ToLower(cfg.Provider))
}

func runTranslate(cmd *cobra.Command, args []string, a translateArgs) error {
	var p *prompter
	if len(args) == 0 || !cmd.Flags().Changed("language") {
		p = newPrompter(os.Stdin, os.Stderr)
	}

	root, cfg, err := loadConfig(args, p)
	if err != nil {
		return err
	}
	applyTranslateFlags(cmd, cfg, a)

	if strings.TrimSpace(cfg.Language) == "" {
		if p == nil {
			p = newPrompter(os.Stdin, os.Stderr)
		}
		if cfg.Language, err = p.askLanguage(); err != nil {
			return err
		}
	}
	cfg.Language = strings.TrimSpace(cfg.Language)

	if !cmd.Flags().Changed("countries") && len(cfg.Countries) == 0 && stdinIsTerminal() {
		if p == nil {
			p = newPrompter(os.Stdin, os.Stderr)
		}
		cfg.Countries = p.askCountries()
	}
	cfg.Countries = langmeta.SanitizeCountryList(cfg.Countries)

	var tr translate.Translator
	if !a.dryRun {
		client, err := newClient(cfg, a.verbose)
		if err != nil {
			return err
		}
		tr = client
	}

	opts := scanOptions(cfg)
	opts.DryRun = a.dryRun
	opts.Verbose = a.verbose
	opts.Out = cmd.OutOrStdout()

	if !a.noLock && !a.dryRun {
		lock, err := lockfile.Load(root)
		if err != nil {
			logWarning(i18n.T("Ignoring %s: %v"), lockfile.LockFileName, err)
		} else {
			if removed := lock.Prune(); len(removed) > 0 && a.verbose {
				logInfo("Dropped %d stale lock record(s)", len(removed))
			}
			opts.Lock = lock
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := pipeline.New(tr, nil, opts)
	if a.verbose {
		logInfo("Session: %s", runner.SessionID())
	}

	logInfo(i18n.T("Translating %s to %s"), root, cfg.Language)
	if len(cfg.Countries) > 0 {
		logInfo(i18n.T("Dialects: %s"), strings.Join(cfg.Countries, ", "))
	}

	start := time.Now()
	sum, err := runner.Run(ctx, root)
	if sum != nil {
		printSummary(sum, a.dryRun, time.Since(start))
	}
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d file(s) could not be written", sum.Failed)
	}
	return nil
}

func printSummary(sum *pipeline.Summary, dryRun bool, elapsed time.Duration) {
	if dryRun {
		logInfo(i18n.T("Dry run: %d group(s) found, %d already translated"), sum.Groups, sum.Skipped)
		return
	}
	if sum.Groups == 0 {
		logWarning("%s", i18n.T("No i18n directories with English catalogs found"))
		return
	}
	logSuccess(i18n.N("%d file written", "%d files written", len(sum.Written))+" (%s)",
		len(sum.Written), elapsed.Round(time.Second))
	if sum.Skipped > 0 {
		logInfo(i18n.N("%d group already translated", "%d groups already translated", sum.Skipped), sum.Skipped)
	}
	if sum.Errors > 0 {
		logWarning(i18n.N("%d entry could not be translated", "%d entries could not be translated", sum.Errors), sum.Errors)
	}
}

func newClient(cfg *config.Config, verbose bool) (*translate.Client, error) {
	if cfg.Provider == "" {
		return nil, fmt.Errorf("--provider is required (one of: %s)", strings.Join(providerIDs(), ", "))
	}

	apiKey := resolveAPIKey(cfg)
	prov := resolveProvider(cfg.Provider, cfg.BaseURL, apiKey, cfg.Model, cfg.Proxy, cfg.Timeout)
	if err := validateProvider(prov, apiKey); err != nil {
		return nil, err
	}

	if cfg.Prompt == "" {
		if path, err := translate.LoadPromptsFromDefaultLocation(); err != nil {
			logWarning(i18n.T("Using built-in prompt: %v"), err)
		} else if verbose {
			logInfo("Prompts: %s", path)
		}
	}

	return translate.NewClient(translate.Options{
		Provider:     prov,
		SystemPrompt: cfg.Prompt,
		Timeout:      cfg.Timeout,
		MaxRetries:   clientRetries(cfg.MaxRetries),
		MemoryWindow: cfg.MemoryWindow,
		OnLog:        logInfo,
		OnError:      logError,
		Verbose:      verbose,
	}), nil
}

// clientRetries maps a configured retry count to the client option, where
// zero means the default rather than no retries.
func clientRetries(n int) int {
	if n == 0 {
		return -1
	}
	return n
}

func providerIDs() []string {
	ids := make([]string, 0, len(allProviders))
	for _, p := range allProviders {
		ids = append(ids, p.id)
	}
	return ids
}

func resolveProvider(name, baseURL, apiKey, model, proxy string, timeout time.Duration) translate.Provider {
	defaults := translate.DefaultProviders()

	var prov translate.Provider

	if p, ok := defaults[strings.ToLower(name)]; ok {
		prov = p
	} else {
		prov = translate.Provider{
			ID:      translate.ProviderCustomOpenAI,
			Name:    name,
			BaseURL: name,
			Timeout: 60 * time.Second,
		}
	}

	if baseURL != "" {
		prov.BaseURL = baseURL
	} else if prov.ID == translate.ProviderCustomOpenAI {
		if storedURL := settings.BaseURL(prov.ID); storedURL != "" {
			prov.BaseURL = storedURL
		}
	}
	if apiKey != "" {
		prov.APIKey = apiKey
	}
	if model != "" {
		prov.Model = model
	}
	if proxy != "" {
		prov.Proxy = proxy
	}
	if timeout > 0 {
		prov.Timeout = timeout
	}

	return prov
}

// ollamaProbe checks that an Ollama server answers; replaced in tests.
var ollamaProbe = func(baseURL string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	root := strings.TrimSuffix(strings.TrimSuffix(baseURL, "/"), "/v1")
	resp, err := client.Get(root + "/api/tags")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func validateProvider(prov translate.Provider, apiKey string) error {
	if prov.Model == "" {
		examples := "check provider documentation"
		if p, ok := findProvider(prov.ID); ok && len(p.models) > 0 {
			examples = strings.Join(p.models, ", ")
		}
		return fmt.Errorf("--model is required for provider '%s'\n\n"+
			"Example models for %s:\n  %s\n\n"+
			"Usage: --provider %s --model MODEL_NAME",
			prov.ID, prov.Name, examples, prov.ID)
	}

	switch prov.ID {
	case translate.ProviderGoogle:
		if apiKey == "" {
			return fmt.Errorf("provider 'google' requires an API key\n\n" +
				"Option 1: Store your API key:\n" +
				"  jsloc auth login --provider google\n\n" +
				"Option 2: Pass key directly:\n" +
				"  --api-key YOUR_KEY or export JSLOC_API_KEY=YOUR_KEY\n\n" +
				"Get an API key from: https://aistudio.google.com/apikey")
		}

	case translate.ProviderGroq:
		if apiKey == "" {
			return fmt.Errorf("provider 'groq' requires an API key\n\n" +
				"Option 1: Store your API key:\n" +
				"  jsloc auth login --provider groq\n\n" +
				"Option 2: Pass key directly:\n" +
				"  --api-key YOUR_KEY or export JSLOC_API_KEY=YOUR_KEY\n\n" +
				"Get a free API key from: https://console.groq.com/keys")
		}

	case translate.ProviderOpenCode:
		// OpenCode can work without API key for some models

	case translate.ProviderCustomOpenAI:
		if prov.BaseURL == "" {
			return fmt.Errorf("provider 'custom-openai' requires an endpoint URL\n\n" +
				"Option 1: Configure via auth:\n" +
				"  jsloc auth login --provider custom-openai\n\n" +
				"Option 2: Pass directly:\n" +
				"  --base-url https://api.example.com/v1")
		}

	case translate.ProviderOllama:
		if err := ollamaProbe(prov.BaseURL); err != nil {
			return fmt.Errorf("provider 'ollama' requires Ollama server to be running\n\n" +
				"Start Ollama with: ollama serve\n" +
				"Install from: https://ollama.com")
		}
	}

	return nil
}

// ---------------------------------------------------------------------------
// scan
// ---------------------------------------------------------------------------

func newScanCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "scan [root]",
		Short: i18n.T("List i18n directories and their source catalogs"),
		Long: `List every i18n directory below root with the English catalogs merged into
it and the number of entries. Nothing is translated or written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := loadConfig(args, nil)
			if err != nil {
				return err
			}
			opts := scanOptions(cfg)
			opts.Verbose = verbose
			groups, err := pipeline.New(nil, nil, opts).Walk(root)
			if err != nil {
				return err
			}
			printGroups(cmd.OutOrStdout(), root, groups)
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Report keys overridden while merging")

	return cmd
}

func printGroups(out io.Writer, root string, groups []*scan.Group) {
	if len(groups) == 0 {
		logWarning("%s", i18n.T("No i18n directories with English catalogs found"))
		return
	}
	total := 0
	for _, g := range groups {
		templates := 0
		for _, e := range g.Catalog.Entries() {
			if e.Template {
				templates++
			}
		}
		total += g.Catalog.Len()
		fmt.Fprintf(out, "%s%s%s  %d entries", colorBlue, relPath(root, g.Dir), colorReset, g.Catalog.Len())
		if templates > 0 {
			fmt.Fprintf(out, " (%d templates)", templates)
		}
		fmt.Fprintln(out)
		for _, f := range g.Files {
			fmt.Fprintf(out, "  %s\n", relPath(g.Dir, f))
		}
	}
	fmt.Fprintln(out)
	logSuccess(i18n.T("%d group(s), %d entries"), len(groups), total)
}

// ---------------------------------------------------------------------------
// status
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [root]",
		Short: i18n.T("Show which translations exist and whether they are stale"),
		Long: `Show every i18n directory below root with the translated catalogs found next
to its English sources. Files recorded in ` + lockfile.LockFileName + ` are marked
up to date when the merged English catalog is unchanged since they were written,
stale otherwise. Does not modify any files.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, cfg, err := loadConfig(args, nil)
			if err != nil {
				return err
			}
			groups, err := pipeline.New(nil, nil, scanOptions(cfg)).Walk(root)
			if err != nil {
				return err
			}
			lock, err := lockfile.Load(root)
			if err != nil {
				logWarning(i18n.T("Ignoring %s: %v"), lockfile.LockFileName, err)
				lock = nil
			}
			printStatus(cmd.OutOrStdout(), root, cfg, groups, lock)
			return nil
		},
	}
}

// translationState describes one translated catalog next to a group.
type translationState struct {
	Stem   string
	Path   string
	Status string // "up to date", "stale" or "untracked"
}

// translations lists the translated catalogs in g.Dir: every .js file that
// is not a source catalog name. States are sorted by stem.
func translations(g *scan.Group, sourceNames []string, lock *lockfile.LockFile) ([]translationState, error) {
	entries, err := os.ReadDir(g.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", g.Dir, err)
	}
	sources := make(map[string]bool, len(sourceNames))
	for _, n := range sourceNames {
		sources[n] = true
	}

	checksum := lockfile.Hash(catalog.Marshal(g.Catalog))
	var states []translationState
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || sources[name] || filepath.Ext(name) != catalog.Ext {
			continue
		}
		st := translationState{
			Stem:   strings.TrimSuffix(name, catalog.Ext),
			Path:   filepath.Join(g.Dir, name),
			Status: "untracked",
		}
		if lock != nil {
			if _, ok := lock.Lookup(st.Path); ok {
				st.Status = "up to date"
				if lock.IsStale(st.Path, checksum) {
					st.Status = "stale"
				}
			}
		}
		states = append(states, st)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Stem < states[j].Stem })
	return states, nil
}

func printStatus(out io.Writer, root string, cfg *config.Config, groups []*scan.Group, lock *lockfile.LockFile) {
	if len(groups) == 0 {
		logWarning("%s", i18n.T("No i18n directories with English catalogs found"))
		return
	}

	var code string
	if cfg.Language != "" {
		code = langmeta.NewResolver(nil).DeriveLanguageCode(cfg.Language)
	}

	missing := 0
	for _, g := range groups {
		fmt.Fprintf(out, "\n%s%s%s  %d entries\n", colorBlue, relPath(root, g.Dir), colorReset, g.Catalog.Len())
		fmt.Fprintln(out, strings.Repeat("─", 60))

		states, err := translations(g, cfg.Catalogs, lock)
		if err != nil {
			logError("%v", err)
			continue
		}
		if code != "" && !fileExists(catalog.FilePath(g.Dir, code)) {
			missing++
			fmt.Fprintf(out, "  %s%-10s%s missing\n", colorRed, code, colorReset)
		}
		for _, st := range states {
			meta := langmeta.Resolve(st.Stem)
			color := colorGreen
			switch st.Status {
			case "stale":
				color = colorYellow
			case "untracked":
				color = colorReset
			}
			label := meta.Name
			if meta.Flag != "" {
				label = meta.Flag + " " + label
			}
			fmt.Fprintf(out, "  %-10s %-28s %s%s%s\n", st.Stem, label, color, st.Status, colorReset)
		}
	}
	fmt.Fprintln(out)

	if lock != nil {
		logInfo("%s: %s", lockfile.LockFileName, lock.Summary())
	}
	if code != "" && missing > 0 {
		logInfo(i18n.N("%d group still needs a %s translation", "%d groups still need a %s translation", missing), missing, code)
	}
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage provider API keys"),
		Long: `Store, list and remove provider API keys.

Keys are saved in $XDG_DATA_HOME/jsloc/auth.json (default
~/.local/share/jsloc/auth.json) with mode 0600. A key given with --api-key
or JSLOC_API_KEY takes precedence over the stored one.`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "login",
		Short: i18n.T("Store an API key for a provider"),
		Long: `Store an API key for a provider.

If --provider is not specified, you will be prompted to choose.

API key providers:
  google        Paste your Google AI Studio API key
  groq          Paste your Groq API key
  opencode      Paste your OpenCode API key
  custom-openai Paste your API key + endpoint URL`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(os.Stdin, os.Stderr)
			if provider == "" {
				chosen, err := chooseProvider(p)
				if err != nil {
					return err
				}
				provider = chosen
			}

			switch provider {
			case translate.ProviderGoogle, translate.ProviderGroq, translate.ProviderOpenCode:
				return authLoginAPIKey(p, provider)
			case translate.ProviderCustomOpenAI:
				return authLoginCustomOpenAI(p)
			default:
				return fmt.Errorf("unknown provider '%s'. Run 'jsloc auth login' for options", provider)
			}
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to authenticate")
	_ = cmd.RegisterFlagCompletionFunc("provider", completeProviders(true))

	return cmd
}

// chooseProvider accepts a menu number or a provider ID.
func chooseProvider(p *prompter) (string, error) {
	fmt.Fprintf(p.out, "\n%s%s%s\n\n", colorBlue, i18n.T("Select provider to authenticate:"), colorReset)
	ids := authProviderIDs()
	for i, id := range ids {
		info, _ := findProvider(id)
		fmt.Fprintf(p.out, "  %d. %s%-13s%s %s\n", i+1, colorYellow, id, colorReset, info.desc)
	}
	fmt.Fprintln(p.out)

	choice, ok := p.ask(i18n.T("Enter choice (number or name): "))
	if !ok {
		return "", fmt.Errorf("no input received")
	}
	for i, id := range ids {
		if choice == fmt.Sprintf("%d", i+1) || choice == id {
			return id, nil
		}
	}
	return "", fmt.Errorf("invalid choice. Use: jsloc auth login --provider PROVIDER")
}

func authLoginAPIKey(p *prompter, providerID string) error {
	info, _ := findProvider(providerID)

	fmt.Fprintf(p.out, "\n%s%s API key%s\n", colorBlue, info.name, colorReset)
	fmt.Fprintln(p.out, strings.Repeat("─", 60))
	if info.helpURL != "" {
		fmt.Fprintf(p.out, "  Get your API key from: %s%s%s\n\n", colorGreen, info.helpURL, colorReset)
	}

	existing := settings.APIKey(providerID)
	question := "  Enter API key: "
	if existing != "" {
		fmt.Fprintf(p.out, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existing), colorReset)
		question = "  Enter new key to replace, or press Enter to keep: "
	}

	key, ok := p.ask(question)
	if !ok {
		return fmt.Errorf("no input received")
	}
	if key == "" {
		if existing != "" {
			logInfo("%s", i18n.T("Keeping existing key"))
			return nil
		}
		return fmt.Errorf("no API key provided")
	}

	if err := settings.SetAPIKey(providerID, key, ""); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}
	logSuccess(i18n.T("%s API key saved"), info.name)
	return nil
}

func authLoginCustomOpenAI(p *prompter) error {
	fmt.Fprintf(p.out, "\n%sCustom OpenAI-Compatible Endpoint%s\n", colorBlue, colorReset)
	fmt.Fprintln(p.out, strings.Repeat("─", 60))

	id := translate.ProviderCustomOpenAI
	existingURL := settings.BaseURL(id)
	existingKey := settings.APIKey(id)

	question := "  Enter endpoint URL (e.g., https://api.example.com/v1): "
	if existingURL != "" {
		fmt.Fprintf(p.out, "  Current endpoint: %s%s%s\n", colorYellow, existingURL, colorReset)
		question = "  Enter new endpoint URL, or press Enter to keep: "
	}
	baseURL, ok := p.ask(question)
	if !ok {
		return fmt.Errorf("no input received")
	}
	if baseURL == "" {
		baseURL = existingURL
	}
	if baseURL == "" {
		return fmt.Errorf("endpoint URL is required")
	}

	question = "  Enter API key (or press Enter if not required): "
	if existingKey != "" {
		fmt.Fprintf(p.out, "  Current key: %s%s%s\n", colorYellow, settings.MaskKey(existingKey), colorReset)
		question = "  Enter new API key, or press Enter to keep: "
	}
	apiKey, ok := p.ask(question)
	if !ok {
		return fmt.Errorf("no input received")
	}
	if apiKey == "" {
		apiKey = existingKey
	}

	if err := settings.SetAPIKey(id, apiKey, baseURL); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	logSuccess("%s", i18n.T("Custom OpenAI endpoint saved"))
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: i18n.T("Remove stored credentials"),
		Long: `Remove stored credentials for one or all providers.

If --provider is not specified, credentials for ALL providers are removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if provider == "" {
				if err := settings.RemoveAll(); err != nil {
					return fmt.Errorf("removing credentials: %w", err)
				}
				logSuccess("%s", i18n.T("All stored credentials removed"))
				return nil
			}
			if _, ok := findProvider(provider); !ok {
				return fmt.Errorf("unknown provider '%s'. Run 'jsloc auth list' to see providers", provider)
			}
			if err := settings.Remove(provider); err != nil {
				return fmt.Errorf("removing %s credentials: %w", provider, err)
			}
			logSuccess(i18n.T("%s credentials removed"), provider)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Provider to logout (default: all)")
	_ = cmd.RegisterFlagCompletionFunc("provider", completeProviders(true))

	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   i18n.T("Show stored credentials"),
		Run: func(cmd *cobra.Command, args []string) {
			printCredentials(os.Stderr, settings.Load(), os.Getenv("JSLOC_API_KEY"))
		},
	}
}

func printCredentials(out io.Writer, store settings.Store, envKey string) {
	fmt.Fprintf(out, "\n%sStored Credentials%s\n", colorBlue, colorReset)
	fmt.Fprintln(out, strings.Repeat("─", 60))

	for _, id := range authProviderIDs() {
		entry, ok := store[id]
		switch {
		case ok && entry.Key != "":
			status := fmt.Sprintf("%sconfigured%s (key: %s)", colorGreen, colorReset, settings.MaskKey(entry.Key))
			if entry.BaseURL != "" {
				status += fmt.Sprintf("\n  %14s endpoint: %s", "", entry.BaseURL)
			}
			fmt.Fprintf(out, "  %-14s %s\n", id, status)
		case ok && entry.BaseURL != "":
			fmt.Fprintf(out, "  %-14s %sconfigured%s (no key)\n  %14s endpoint: %s\n", id, colorGreen, colorReset, "", entry.BaseURL)
		default:
			fmt.Fprintf(out, "  %-14s %snot configured%s\n", id, colorRed, colorReset)
		}
	}

	fmt.Fprintf(out, "\n  %sEnvironment Variables%s\n", colorYellow, colorReset)
	if envKey != "" {
		fmt.Fprintf(out, "  JSLOC_API_KEY: %s%s%s (overrides stored keys)\n", colorGreen, settings.MaskKey(envKey), colorReset)
	} else {
		fmt.Fprintf(out, "  JSLOC_API_KEY: %snot set%s\n", colorRed, colorReset)
	}
	fmt.Fprintln(out)
}
