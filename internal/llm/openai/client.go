package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"docanalysis-backend/internal/llm"
)

// Client implements llm.Completer using OpenAI Chat Completions.
type Client struct {
	api sdk.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey string, timeout time.Duration, opts ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY: %w", llm.ErrMissingAPIKey)
	}
	if timeout <= 0 {
		timeout = llm.DefaultTimeout
	}
	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
		option.WithMaxRetries(0),
	}
	return &Client{api: sdk.NewClient(append(base, opts...)...)}, nil
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	messages := make([]sdk.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, sdk.SystemMessage(req.System))
	}
	messages = append(messages, sdk.UserMessage(req.Prompt))

	params := sdk.ChatCompletionNewParams{
		Model:               sdk.ChatModel(req.Model),
		Messages:            messages,
		MaxCompletionTokens: sdk.Int(int64(req.Tokens())),
	}
	// gpt-5 family rejects an explicit temperature.
	if !isGPT5(req.Model) {
		params.Temperature = sdk.Float(req.Temperature)
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai %s: %w", req.Model, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai %s: %w", req.Model, llm.ErrEmptyResponse)
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("openai %s: %w", req.Model, llm.ErrEmptyResponse)
	}
	return content, nil
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}
