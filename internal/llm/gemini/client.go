package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"

	"docanalysis-backend/internal/llm"
)

// Client implements llm.Completer using the Gemini API.
type Client struct {
	api *genai.Client
}

// NewClient constructs a Gemini client. baseURL overrides the API endpoint and
// is empty in production.
func NewClient(ctx context.Context, apiKey string, timeout time.Duration, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY: %w", llm.ErrMissingAPIKey)
	}
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}
	cfg := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	c, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{api: c}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	temperature := float32(req.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.Tokens()),
	}
	if strings.TrimSpace(req.System) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.api.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("gemini %s: %w", req.Model, err)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini %s: %w", req.Model, llm.ErrEmptyResponse)
	}
	return text, nil
}
