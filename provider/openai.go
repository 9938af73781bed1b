package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/ZaguanLabs/pagetlai"
	"github.com/ZaguanLabs/pagetlai/processor"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Backend using OpenAI's chat completion API.
// HTML values are split into text segments so markup never reaches the model.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	temperature float32
	html        *processor.HTMLProcessor
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL for OpenAI-compatible endpoints (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = &http.Client{Transport: userAgentTransport{next: http.DefaultTransport}}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		html:        processor.NewHTMLProcessor(),
	}
}

// userAgentTransport identifies pagetlai on every API request.
type userAgentTransport struct {
	next http.RoundTripper
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", pagetlai.UserAgent())
	return t.next.RoundTrip(req)
}

// Translate translates one value.
func (p *OpenAIProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req.Text, nil
	}

	if req.TagHandling == pagetlai.TagHandlingHTML && processor.LooksLikeHTML(req.Text) {
		return p.translateHTML(ctx, req)
	}

	translations, err := p.complete(ctx, req, []string{req.Text}, nil)
	if err != nil {
		return "", err
	}
	return translations[0], nil
}

func (p *OpenAIProvider) translateHTML(ctx context.Context, req TranslateRequest) (string, error) {
	fragment, segments, err := p.html.Extract(req.Text)
	if err != nil {
		return "", err
	}
	if len(segments) == 0 {
		return req.Text, nil
	}

	texts := make([]string, len(segments))
	contexts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
		contexts[i] = seg.Context
	}

	translations, err := p.complete(ctx, req, texts, contexts)
	if err != nil {
		return "", err
	}

	byHash := make(map[string]string, len(segments))
	for i, seg := range segments {
		byHash[seg.Hash] = translations[i]
	}
	return p.html.Apply(fragment, byHash)
}

func (p *OpenAIProvider) complete(ctx context.Context, req TranslateRequest, texts, contexts []string) ([]string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.buildSystemPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: p.buildUserMessage(texts, contexts)},
		},
		Temperature: p.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, &pagetlai.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &pagetlai.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return p.parseResponse(resp.Choices[0].Message.Content, len(texts))
}

func (p *OpenAIProvider) buildSystemPrompt(req TranslateRequest) string {
	sourceName := "the source language"
	if req.SourceLocale != "" {
		sourceName = pagetlai.GetLanguageName(req.SourceLocale)
	}
	targetName := pagetlai.GetLanguageName(req.TargetLocale)

	contextText := "The content is website page content."
	if req.Context != "" {
		contextText = fmt.Sprintf("The content is for: %s. Adapt the tone to be appropriate for this context.", req.Context)
	}

	prompt := fmt.Sprintf(`# Role
You are an expert native translator. You translate content from %s to %s with the fluency of a highly educated native speaker.

# Context
%s

# Register
%s

# Task
Translate the provided texts into idiomatic %s.

# Style Guide
- **Natural Flow**: Avoid literal translations. Rephrase sentences to sound natural to a native speaker.
- **Idioms**: Never translate idioms literally. Use natural %s equivalents.
- **Code Safety**: Do NOT translate URLs, email addresses, or content inside backticks.
- **Interpolation**: Do NOT translate variables or placeholders (e.g., {{name}}, {count}, %%s, $1).`,
		sourceName, targetName, contextText, StyleDescription(req.Style), targetName, targetName)

	if req.PreserveFormatting {
		prompt += "\n- **Formatting**: Preserve punctuation, capitalization and whitespace exactly where the target language allows it."
	}

	if len(req.Glossary) > 0 {
		prompt += "\n\n# Glossary\nAlways use these translations for the following terms:"
		for _, source := range slices.Sorted(maps.Keys(req.Glossary)) {
			prompt += fmt.Sprintf("\n- \"%s\" → %s", source, req.Glossary[source])
		}
	}

	prompt += `

# Format
Return a valid JSON object with a single key "translations" containing an array of strings in the exact same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }
- Do NOT wrap in Markdown code blocks.
- Do NOT include the "context" hints in your output.`

	return prompt
}

func (p *OpenAIProvider) buildUserMessage(texts, contexts []string) string {
	hasContexts := false
	for _, ctx := range contexts {
		if ctx != "" {
			hasContexts = true
			break
		}
	}

	if !hasContexts {
		data, _ := json.Marshal(texts)
		return string(data)
	}

	type item struct {
		Text    string `json:"text"`
		Context string `json:"context,omitempty"`
	}

	items := make([]item, len(texts))
	for i, text := range texts {
		items[i].Text = text
		if i < len(contexts) {
			items[i].Context = contexts[i]
		}
	}

	data, _ := json.Marshal(map[string][]item{"items": items})
	return string(data)
}

func (p *OpenAIProvider) parseResponse(content string, expectedCount int) ([]string, error) {
	var objResult map[string]any
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]any); ok {
				return toStringSlice(arr, expectedCount)
			}
		}

		// Some models pick their own key
		for _, v := range objResult {
			if arr, ok := v.([]any); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	var arrResult []any
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &pagetlai.ProviderError{
		Message:   "invalid response format from OpenAI",
		Retryable: false,
	}
}

func toStringSlice(arr []any, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &pagetlai.ProviderError{
			Message:   "unexpected response length",
			Cause:     &pagetlai.CountMismatchError{Expected: expectedCount, Got: len(result)},
			Retryable: true,
		}
	}

	return result, nil
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Backend
var _ Backend = (*OpenAIProvider)(nil)
