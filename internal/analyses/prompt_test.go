package analyses

import (
	"strings"
	"testing"
)

func TestBuildPromptDefaultTemplate(t *testing.T) {
	system, prompt := BuildPrompt([]ExtractedContent{
		{Name: "alpha", Type: "text/plain", Content: "first body"},
		{Name: "beta", Type: "text/csv", Content: "a | b"},
	}, "")

	if system != systemComparison {
		t.Fatalf("unexpected system message %q", system)
	}
	for _, want := range []string{
		"## DOCUMENT 1: alpha (Format: text/plain)\n\nfirst body\n\n---\n\n",
		"## DOCUMENT 2: beta (Format: text/csv)\n\na | b\n\n---\n\n",
		"A brief summary of each document",
		"The main similarities",
		"Notable differences",
		"patterns",
		"Conclusions",
		"markdown",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Index(prompt, "DOCUMENT 1") > strings.Index(prompt, "DOCUMENT 2") {
		t.Fatalf("documents out of order")
	}
}

func TestBuildPromptCustomTemplate(t *testing.T) {
	system, prompt := BuildPrompt([]ExtractedContent{
		{Name: "alpha", Type: "text/plain", Content: "body"},
	}, "list every date")

	if system != systemCustom {
		t.Fatalf("unexpected system message %q", system)
	}
	if !strings.HasPrefix(prompt, "I have the following documents and I need you to: list every date\n\n") {
		t.Fatalf("unexpected prompt start:\n%s", prompt)
	}
	if strings.Contains(prompt, "comparative analysis") {
		t.Fatalf("custom prompt should not use the comparison template")
	}
}

func TestBuildPromptBlankCustomUsesDefault(t *testing.T) {
	system, _ := BuildPrompt(nil, "   ")
	if system != systemComparison {
		t.Fatalf("expected comparison template for blank instruction")
	}
}

func TestBuildPromptTruncatesContent(t *testing.T) {
	long := strings.Repeat("ж", 15000)
	_, prompt := BuildPrompt([]ExtractedContent{{Name: "big", Type: "text/plain", Content: long}}, "")

	if got := strings.Count(prompt, "ж"); got != MaxContentChars {
		t.Fatalf("expected %d characters, got %d", MaxContentChars, got)
	}
	if !strings.Contains(prompt, strings.Repeat("ж", MaxContentChars)+"\n\n---") {
		t.Fatalf("truncated content should be followed by the separator")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{in: "hello", n: 10, want: "hello"},
		{in: "hello", n: 5, want: "hello"},
		{in: "hello", n: 2, want: "he"},
		{in: "héllo", n: 2, want: "hé"},
		{in: "", n: 3, want: ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
