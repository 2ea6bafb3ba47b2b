package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

const (
	// MaxOutputTokens caps every completion.
	MaxOutputTokens = 4000
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 60 * time.Second
)

var (
	ErrMissingAPIKey   = errors.New("llm api key is required")
	ErrUnknownProvider = errors.New("unknown llm provider")
	ErrEmptyResponse   = errors.New("llm returned an empty response")
)

// Completer sends one system + user message exchange to a model and returns
// the text of the reply.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single-turn completion.
type Request struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Tokens returns the output cap, defaulting to MaxOutputTokens.
func (r Request) Tokens() int {
	if r.MaxTokens <= 0 {
		return MaxOutputTokens
	}
	return r.MaxTokens
}

var defaultModels = map[string]string{
	ProviderAnthropic: "claude-3-sonnet-20240229",
	ProviderOpenAI:    "gpt-4o",
	ProviderGemini:    "gemini-2.0-flash",
}

var fallbackModels = map[string][]string{
	ProviderAnthropic: {
		"claude-3-haiku-20240307",
		"claude-3-opus-20240229",
		"claude-3-5-sonnet-20240620",
		"claude-instant-1.2",
		"claude-2.0",
	},
	ProviderOpenAI: {
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-3.5-turbo",
	},
	ProviderGemini: {
		"gemini-1.5-pro",
		"gemini-1.5-flash",
	},
}

// NormalizeProvider lowercases the provider name and applies the default.
func NormalizeProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "claude" {
		return ProviderAnthropic
	}
	return name
}

// DefaultModel returns the primary model used when none is configured.
func DefaultModel(provider string) string {
	return defaultModels[NormalizeProvider(provider)]
}

// FallbackModels returns a copy of the fixed fallback order for provider.
func FallbackModels(provider string) []string {
	list := fallbackModels[NormalizeProvider(provider)]
	out := make([]string, len(list))
	copy(out, list)
	return out
}
