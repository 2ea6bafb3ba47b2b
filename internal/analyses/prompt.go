package analyses

import (
	"fmt"
	"strings"
)

// MaxContentChars caps each document's text inside a prompt.
const MaxContentChars = 10000

const (
	systemCustom     = "You are a helpful assistant. Follow the user's instructions carefully regarding the documents."
	systemComparison = "You are an expert analyst who performs thorough comparative analysis of documents."
)

const comparisonInstructions = `
Please analyze these documents and provide:
1. A brief summary of each document
2. The main similarities between the documents
3. Notable differences between the documents
4. Any insights or patterns you noticed
5. Conclusions about how these documents relate to each other

Structure your answer clearly and readably, using markdown.
`

const customInstructions = `
Please answer my request based on these documents.
Structure your answer clearly and readably, using markdown.
`

// BuildPrompt returns the system message and user prompt for a run. A
// non-empty custom prompt selects the instruction-following template.
func BuildPrompt(contents []ExtractedContent, customPrompt string) (system, prompt string) {
	var b strings.Builder
	custom := strings.TrimSpace(customPrompt) != ""
	if custom {
		fmt.Fprintf(&b, "I have the following documents and I need you to: %s\n\n", customPrompt)
	} else {
		b.WriteString("Please perform a detailed comparative analysis of the following documents:\n\n")
	}

	for i, c := range contents {
		fmt.Fprintf(&b, "## DOCUMENT %d: %s (Format: %s)\n\n", i+1, c.Name, c.Type)
		b.WriteString(truncate(c.Content, MaxContentChars))
		b.WriteString("\n\n---\n\n")
	}

	if custom {
		b.WriteString(customInstructions)
		return systemCustom, b.String()
	}
	b.WriteString(comparisonInstructions)
	return systemComparison, b.String()
}

// truncate keeps the first n characters of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
