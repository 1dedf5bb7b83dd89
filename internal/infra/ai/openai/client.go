package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/kmclabs/medassist/internal/domain/analysis"
	"github.com/kmclabs/medassist/internal/infra/ai/prompt"
)

const maxTokens = 2048

// Client implements analysis.Analyzer against the OpenAI chat completion
// API with JSON response format.
type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// Analyze performs exactly one chat completion call and decodes the reply.
func (c *Client) Analyze(ctx context.Context, text string) (*analysis.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, analysis.ErrEmptyInput
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(c.Model, "o1") || strings.HasPrefix(c.Model, "o3") || strings.HasPrefix(c.Model, "o4") || strings.HasPrefix(c.Model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in reply", analysis.ErrMalformedResponse)
	}

	payload := strings.TrimSpace(resp.Choices[0].Message.Content)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty reply", analysis.ErrMalformedResponse)
	}
	return analysis.Decode([]byte(payload))
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: openai %d %s", analysis.ErrUpstreamRejected, apiErr.HTTPStatusCode, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", analysis.ErrNetwork, err)
}
