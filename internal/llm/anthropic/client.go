package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"docanalysis-backend/internal/llm"
)

// Client implements llm.Completer using the Anthropic Messages API.
type Client struct {
	api sdk.Client
}

// NewClient constructs a client. Retries are disabled; the fallback model list
// is the only retry mechanism.
func NewClient(apiKey string, timeout time.Duration, opts ...option.RequestOption) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("CLAUDE_API_KEY: %w", llm.ErrMissingAPIKey)
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
	params := sdk.MessageNewParams{
		Model:       sdk.Model(req.Model),
		MaxTokens:   int64(req.Tokens()),
		Temperature: sdk.Float(req.Temperature),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if strings.TrimSpace(req.System) != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic %s: %w", req.Model, err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic %s: %w", req.Model, llm.ErrEmptyResponse)
}
