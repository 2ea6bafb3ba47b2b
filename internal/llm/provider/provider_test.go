package provider

import (
	"context"
	"errors"
	"testing"

	"docanalysis-backend/internal/llm"
)

func TestNewDefaultsToAnthropic(t *testing.T) {
	sel, err := New(context.Background(), Settings{APIKey: "k"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if sel.Provider != llm.ProviderAnthropic {
		t.Fatalf("expected anthropic, got %s", sel.Provider)
	}
	if sel.Primary != "claude-3-sonnet-20240229" {
		t.Fatalf("unexpected primary %s", sel.Primary)
	}
	want := []string{
		"claude-3-haiku-20240307",
		"claude-3-opus-20240229",
		"claude-3-5-sonnet-20240620",
		"claude-instant-1.2",
		"claude-2.0",
	}
	if len(sel.Fallbacks) != len(want) {
		t.Fatalf("unexpected fallbacks %v", sel.Fallbacks)
	}
	for i := range want {
		if sel.Fallbacks[i] != want[i] {
			t.Fatalf("fallback %d = %s, want %s", i, sel.Fallbacks[i], want[i])
		}
	}
}

func TestNewHonorsConfiguredModel(t *testing.T) {
	sel, err := New(context.Background(), Settings{Provider: "OpenAI", APIKey: "k", Model: " gpt-4o-mini "})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if sel.Provider != llm.ProviderOpenAI || sel.Primary != "gpt-4o-mini" {
		t.Fatalf("unexpected selection %+v", sel)
	}
}

func TestNewMissingKey(t *testing.T) {
	for _, name := range []string{llm.ProviderAnthropic, llm.ProviderOpenAI, llm.ProviderGemini} {
		if _, err := New(context.Background(), Settings{Provider: name}); !errors.Is(err, llm.ErrMissingAPIKey) {
			t.Fatalf("%s: expected ErrMissingAPIKey, got %v", name, err)
		}
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Settings{Provider: "bard", APIKey: "k"}); !errors.Is(err, llm.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestFallbackModelsReturnsCopy(t *testing.T) {
	list := llm.FallbackModels(llm.ProviderAnthropic)
	list[0] = "mutated"
	if llm.FallbackModels(llm.ProviderAnthropic)[0] == "mutated" {
		t.Fatalf("fallback list must not be shared")
	}
}
