// Package translate implements the translation capability used by the
// pipeline: one source string in, one translated string out, for a target
// language label and a session identifier.
//
// Client talks to HTTP AI providers: Google AI (Gemini), Groq, OpenCode
// (multi-format), custom OpenAI-compatible endpoints and Ollama.
package translate

import (
	"context"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderGoogle       = "google"
	ProviderGroq         = "groq"
	ProviderOpenCode     = "opencode"
	ProviderCustomOpenAI = "custom-openai"
	ProviderOllama       = "ollama"
)

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for an AI translation service.
type Provider struct {
	// ID is the provider identifier (google, groq, opencode, etc.).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for local services).
	APIKey string
	// Model is the model identifier.
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderGoogle: {
			ID:      ProviderGoogle,
			Name:    "Google AI (Gemini)",
			BaseURL: "https://generativelanguage.googleapis.com",
			Timeout: 120 * time.Second,
		},
		ProviderGroq: {
			ID:      ProviderGroq,
			Name:    "Groq",
			BaseURL: "https://api.groq.com/openai/v1",
			Timeout: 60 * time.Second,
		},
		ProviderOpenCode: {
			ID:      ProviderOpenCode,
			Name:    "OpenCode",
			BaseURL: "https://opencode.ai/zen/v1",
			Timeout: 120 * time.Second,
		},
		ProviderCustomOpenAI: {
			ID:      ProviderCustomOpenAI,
			Name:    "Custom OpenAI",
			Timeout: 60 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434/v1",
			Timeout: 120 * time.Second,
		},
	}
}

// ---------------------------------------------------------------------------
// Translator
// ---------------------------------------------------------------------------

// Translator translates single UI strings.
//
// sessionID groups calls of one run; implementations may use it to keep
// conversational context. targetLabel is a display name such as "German" or
// "German (Austria)".
type Translator interface {
	Translate(ctx context.Context, sessionID, targetLabel, text string) (string, error)
	// Scope returns the request scope calls should run in, or nil.
	Scope() *Scope
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

// Options controls the Client.
type Options struct {
	// Provider is the AI provider configuration.
	Provider Provider
	// SystemPrompt overrides the default system prompt. {{targetLang}} is
	// replaced with the target label.
	SystemPrompt string
	// Timeout is the per-request timeout (overrides provider timeout if set).
	Timeout time.Duration
	// MaxRetries is the maximum number of retries on 429, 5xx and transport
	// errors. Default: 3. Negative disables retries, matching MemoryWindow.
	MaxRetries int
	// MemoryWindow is how many past messages of a session are replayed with
	// each request. Default: 10. Negative disables memory.
	MemoryWindow int
	// OnLog emits log messages.
	OnLog func(format string, args ...any)
	// OnError emits error messages.
	OnError func(format string, args ...any)
	// Verbose enables HTTP debug logging.
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

func (o *Options) effectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	if o.Provider.Timeout > 0 {
		return o.Provider.Timeout
	}
	return 120 * time.Second
}

func (o *Options) effectiveMaxRetries() int {
	switch {
	case o.MaxRetries > 0:
		return o.MaxRetries
	case o.MaxRetries < 0:
		return 0
	}
	return 3
}

func (o *Options) effectiveMemoryWindow() int {
	switch {
	case o.MemoryWindow < 0:
		return 0
	case o.MemoryWindow == 0:
		return 10
	default:
		return o.MemoryWindow
	}
}

// resolvedPrompt returns the system prompt with {{targetLang}} replaced.
func (o *Options) resolvedPrompt(targetLabel string) string {
	prompt := o.SystemPrompt
	if prompt == "" {
		prompt = getPrompt(promptDefault)
	}
	return strings.ReplaceAll(prompt, "{{targetLang}}", targetLabel)
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Client is the HTTP provider implementation of Translator.
type Client struct {
	opts   Options
	memory *Memory
	scope  *Scope
	retry  retryPolicy
}

// NewClient returns a Client for opts.
func NewClient(opts Options) *Client {
	return &Client{
		opts:   opts,
		memory: NewMemory(opts.effectiveMemoryWindow()),
		scope:  NewScope(opts.Provider.Proxy, opts.effectiveTimeout()),
		retry:  defaultRetryPolicy(),
	}
}

// Scope implements Translator.
func (c *Client) Scope() *Scope { return c.scope }

// Memory returns the session memory of the client.
func (c *Client) Memory() *Memory { return c.memory }

// Translate implements Translator. The reply is trimmed of whitespace and
// of a surrounding markdown code block.
func (c *Client) Translate(ctx context.Context, sessionID, targetLabel, text string) (string, error) {
	req := chatRequest{
		System:  c.opts.resolvedPrompt(targetLabel),
		History: c.memory.History(sessionID),
		User:    text,
	}

	reply, err := c.callProvider(ctx, req)
	if err != nil {
		return "", err
	}
	reply = cleanReply(reply)

	c.memory.Append(sessionID,
		Message{Role: RoleUser, Content: text},
		Message{Role: RoleAssistant, Content: reply},
	)
	return reply, nil
}

// cleanReply strips a markdown code block and surrounding whitespace.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	if m := markdownCodeBlock.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	return strings.TrimSpace(s)
}

// truncate truncates a string to maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
