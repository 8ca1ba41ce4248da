package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// API format types
// ---------------------------------------------------------------------------

type apiFormat int

const (
	formatOpenAIChat      apiFormat = iota // OpenAI chat/completions
	formatGeminiNative                     // Google Gemini generateContent
	formatAnthropic                        // Anthropic messages
	formatOpenAIResponses                  // OpenAI responses API
)

// chatRequest is one provider call: system prompt, replayed session history
// and the new user message.
type chatRequest struct {
	System  string
	History []Message
	User    string
}

// ---------------------------------------------------------------------------
// Request builders for each API format
// ---------------------------------------------------------------------------

type roleContent struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func conversation(chat chatRequest) []roleContent {
	msgs := make([]roleContent, 0, len(chat.History)+1)
	for _, m := range chat.History {
		msgs = append(msgs, roleContent{Role: m.Role, Content: m.Content})
	}
	return append(msgs, roleContent{Role: RoleUser, Content: chat.User})
}

func buildOpenAIChatRequest(model string, chat chatRequest, temperature float64) ([]byte, error) {
	messages := append([]roleContent{{Role: "system", Content: chat.System}}, conversation(chat)...)
	req := struct {
		Model       string        `json:"model"`
		Messages    []roleContent `json:"messages"`
		Temperature float64       `json:"temperature"`
		Stream      bool          `json:"stream"`
	}{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	}
	return json.Marshal(req)
}

func buildGeminiRequest(chat chatRequest, temperature float64) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type genConfig struct {
		Temperature float64 `json:"temperature"`
	}

	var contents []content
	for _, m := range conversation(chat) {
		role := m.Role
		if role == RoleAssistant {
			role = "model"
		}
		contents = append(contents, content{Role: role, Parts: []part{{Text: m.Content}}})
	}

	req := struct {
		Contents          []content `json:"contents"`
		GenerationConfig  genConfig `json:"generationConfig"`
		SystemInstruction *content  `json:"systemInstruction,omitempty"`
	}{
		Contents:         contents,
		GenerationConfig: genConfig{Temperature: temperature},
	}
	if chat.System != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: chat.System}}}
	}
	return json.Marshal(req)
}

func buildAnthropicRequest(model string, chat chatRequest) ([]byte, error) {
	req := struct {
		Model     string        `json:"model"`
		MaxTokens int           `json:"max_tokens"`
		System    string        `json:"system,omitempty"`
		Messages  []roleContent `json:"messages"`
	}{
		Model:     model,
		MaxTokens: 4096,
		System:    chat.System,
		Messages:  conversation(chat),
	}
	return json.Marshal(req)
}

// buildOpenAIResponsesRequest flattens the conversation into the single
// "input" string the responses API takes.
func buildOpenAIResponsesRequest(model string, chat chatRequest) ([]byte, error) {
	var b strings.Builder
	b.WriteString(chat.System)
	for _, m := range chat.History {
		b.WriteString("\n\n")
		if m.Role == RoleAssistant {
			b.WriteString("Assistant: ")
		} else {
			b.WriteString("User: ")
		}
		b.WriteString(m.Content)
	}
	b.WriteString("\n\n")
	b.WriteString(chat.User)

	req := struct {
		Model string `json:"model"`
		Input string `json:"input"`
	}{
		Model: model,
		Input: b.String(),
	}
	return json.Marshal(req)
}

// ---------------------------------------------------------------------------
// Response parsers (multi-format)
// ---------------------------------------------------------------------------

var markdownCodeBlock = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// extractResponseText tries all known response formats and returns the text.
func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	// OpenAI chat: choices[0].message.content
	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	// Gemini: candidates[0].content.parts[0].text
	if candidates, ok := raw["candidates"].([]any); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]any); ok {
			if content, ok := candidate["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]any); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}

	// Anthropic: content[].type=="text"
	if blocks, ok := raw["content"].([]any); ok {
		for _, c := range blocks {
			if block, ok := c.(map[string]any); ok && block["type"] == "text" {
				if text, ok := block["text"].(string); ok {
					return text, nil
				}
			}
		}
	}

	// OpenAI responses: output[].type=="message" -> content[].type=="output_text"
	if output, ok := raw["output"].([]any); ok {
		for _, o := range output {
			item, ok := o.(map[string]any)
			if !ok || item["type"] != "message" {
				continue
			}
			blocks, _ := item["content"].([]any)
			for _, c := range blocks {
				if block, ok := c.(map[string]any); ok && block["type"] == "output_text" {
					if text, ok := block["text"].(string); ok {
						return text, nil
					}
				}
			}
		}
	}

	if resp, ok := raw["response"].(string); ok {
		return resp, nil
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

// ---------------------------------------------------------------------------
// Retry policy
// ---------------------------------------------------------------------------

type retryPolicy struct {
	// backoff is the wait after a transport error or 5xx response.
	backoff func(attempt int) time.Duration
	// rateLimitDelay is the wait after a 429 response.
	rateLimitDelay func(body []byte) time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		backoff: func(attempt int) time.Duration {
			return time.Duration(math.Pow(2, float64(attempt))) * time.Second
		},
		rateLimitDelay: parseRetryDelay,
	}
}

// parseRetryDelay extracts the retry delay from a 429 response body using
// Google's RetryInfo detail. Defaults to 60s; a 5s buffer is always added.
func parseRetryDelay(body []byte) time.Duration {
	const buffer = 5 * time.Second
	const defaultDelay = 60*time.Second + buffer

	var errResp struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return defaultDelay
	}

	for _, detail := range errResp.Error.Details {
		if strings.Contains(detail.Type, "RetryInfo") && detail.RetryDelay != "" {
			d := strings.TrimSuffix(detail.RetryDelay, "s")
			if secs, err := strconv.ParseFloat(d, 64); err == nil {
				return time.Duration(secs*1000)*time.Millisecond + buffer
			}
		}
	}
	return defaultDelay
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ---------------------------------------------------------------------------
// Provider dispatch
// ---------------------------------------------------------------------------

// callProvider sends chat to the configured provider and returns the reply.
func (c *Client) callProvider(ctx context.Context, chat chatRequest) (string, error) {
	prov := c.opts.Provider
	switch prov.ID {
	case ProviderGoogle:
		return c.callHTTPProvider(ctx, chat, formatGeminiNative)
	case ProviderOpenCode:
		return c.callHTTPProvider(ctx, chat, openCodeFormat(prov.Model))
	default:
		// groq, custom-openai, ollama and anything else speak OpenAI chat.
		return c.callHTTPProvider(ctx, chat, formatOpenAIChat)
	}
}

// openCodeFormat picks the API format OpenCode expects for a model.
func openCodeFormat(model string) apiFormat {
	switch {
	case strings.HasPrefix(model, "gemini-"):
		return formatGeminiNative
	case strings.HasPrefix(model, "claude-"):
		return formatAnthropic
	case strings.HasPrefix(model, "gpt-"):
		return formatOpenAIResponses
	default:
		return formatOpenAIChat
	}
}

// ---------------------------------------------------------------------------
// HTTP-based provider call
// ---------------------------------------------------------------------------

func (c *Client) callHTTPProvider(ctx context.Context, chat chatRequest, format apiFormat) (string, error) {
	prov := c.opts.Provider
	maxRetries := c.opts.effectiveMaxRetries()

	endpoint, headers, body, err := buildHTTPRequest(prov, chat, format)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	client := c.scope.HTTPClient()

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("creating request: %w", err)
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		if c.opts.Verbose {
			log.Printf("[DEBUG] %s attempt %d: POST %s", prov.Name, attempt+1, endpoint)
		}

		resp, err := client.Do(req)
		if err != nil {
			if attempt < maxRetries && ctx.Err() == nil {
				if err := sleepCtx(ctx, c.retry.backoff(attempt)); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("API request failed: %w", err)
		}

		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt < maxRetries {
				delay := c.retry.rateLimitDelay(respBody)
				c.opts.log("Rate limited by %s, waiting %v before retry (attempt %d/%d)", prov.Name, delay, attempt+1, maxRetries)
				if err := sleepCtx(ctx, delay); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("rate limited after %d retries: %s", maxRetries, truncate(string(respBody), 500))
		}

		if resp.StatusCode != http.StatusOK {
			if attempt < maxRetries && resp.StatusCode >= 500 {
				if c.opts.Verbose {
					log.Printf("[DEBUG] %s returned %d, retrying", prov.Name, resp.StatusCode)
				}
				if err := sleepCtx(ctx, c.retry.backoff(attempt)); err != nil {
					return "", err
				}
				continue
			}
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 500))
		}

		return extractResponseText(respBody)
	}

	return "", fmt.Errorf("exhausted all %d retries", maxRetries)
}

// buildHTTPRequest constructs the endpoint, headers and body for a call.
func buildHTTPRequest(prov Provider, chat chatRequest, format apiFormat) (string, map[string]string, []byte, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	base := strings.TrimRight(prov.BaseURL, "/")

	var endpoint string
	var body []byte
	var err error

	switch format {
	case formatGeminiNative:
		if prov.ID == ProviderOpenCode {
			endpoint = fmt.Sprintf("%s/models/%s", base, prov.Model)
		} else {
			endpoint = fmt.Sprintf("%s/v1beta/models/%s:generateContent", base, prov.Model)
		}
		if prov.APIKey != "" {
			headers["x-goog-api-key"] = prov.APIKey
		}
		body, err = buildGeminiRequest(chat, 0.3)

	case formatAnthropic:
		endpoint = base + "/messages"
		if prov.APIKey != "" {
			headers["x-api-key"] = prov.APIKey
		}
		headers["anthropic-version"] = "2023-06-01"
		body, err = buildAnthropicRequest(prov.Model, chat)

	case formatOpenAIResponses:
		endpoint = base + "/responses"
		if prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + prov.APIKey
		}
		body, err = buildOpenAIResponsesRequest(prov.Model, chat)

	default:
		endpoint = base
		if !strings.HasSuffix(endpoint, "/chat/completions") {
			endpoint += "/chat/completions"
		}
		if prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + prov.APIKey
		}
		body, err = buildOpenAIChatRequest(prov.Model, chat, 0.3)
	}

	if err != nil {
		return "", nil, nil, err
	}
	return endpoint, headers, body, nil
}
