package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/kmclabs/medassist/internal/domain/analysis"
	"github.com/kmclabs/medassist/internal/infra/ai/prompt"
)

const defaultModel = "gemini-3-flash-preview"

// Client implements analysis.Analyzer against the Gemini API with a strict
// structured-output schema.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &Client{client: cli, model: model}, nil
}

// responseSchema constrains the reply to exactly the result shape. Fields
// outside the schema are not requested; the decoder ignores any the model
// adds anyway.
func responseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary":             {Type: genai.TypeString},
			"considerations":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"redFlagStatus":       {Type: genai.TypeString},
			"redFlagDetails":      {Type: genai.TypeString},
			"nextSteps":           {Type: genai.TypeString},
			"medicalEducation":    {Type: genai.TypeString},
			"disclaimer":          {Type: genai.TypeString},
			"isEmergencyOverride": {Type: genai.TypeBoolean},
		},
		Required: prompt.SchemaFieldNames,
	}
}

// Analyze performs exactly one generateContent call and decodes the reply.
func (c *Client) Analyze(ctx context.Context, text string) (*analysis.Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, analysis.ErrEmptyInput
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(text),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.SystemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    responseSchema(),
		},
	)
	if err != nil {
		return nil, classify(err)
	}

	payload := strings.TrimSpace(resp.Text())
	if payload == "" {
		return nil, fmt.Errorf("%w: empty reply", analysis.ErrMalformedResponse)
	}
	return analysis.Decode([]byte(payload))
}

// classify maps transport and service errors onto the failure taxonomy.
func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: gemini %d %s", analysis.ErrUpstreamRejected, apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("%w: %v", analysis.ErrNetwork, err)
}
