package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"docanalysis-backend/internal/llm"
	"docanalysis-backend/internal/llm/anthropic"
	"docanalysis-backend/internal/llm/gemini"
	"docanalysis-backend/internal/llm/openai"
)

// Settings selects and configures a completion provider.
type Settings struct {
	Provider string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// Selection is a ready Completer with its model order.
type Selection struct {
	Provider  string
	Completer llm.Completer
	Primary   string
	Fallbacks []string
}

// New builds the Completer for the configured provider. A missing API key is
// an error.
func New(ctx context.Context, s Settings) (Selection, error) {
	name := llm.NormalizeProvider(s.Provider)
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}

	var (
		completer llm.Completer
		err       error
	)
	switch name {
	case llm.ProviderAnthropic:
		completer, err = anthropic.NewClient(s.APIKey, timeout)
	case llm.ProviderOpenAI:
		completer, err = openai.NewClient(s.APIKey, timeout)
	case llm.ProviderGemini:
		completer, err = gemini.NewClient(ctx, s.APIKey, timeout, "")
	default:
		return Selection{}, fmt.Errorf("%w: %s", llm.ErrUnknownProvider, name)
	}
	if err != nil {
		return Selection{}, err
	}

	primary := strings.TrimSpace(s.Model)
	if primary == "" {
		primary = llm.DefaultModel(name)
	}
	return Selection{
		Provider:  name,
		Completer: completer,
		Primary:   primary,
		Fallbacks: llm.FallbackModels(name),
	}, nil
}
