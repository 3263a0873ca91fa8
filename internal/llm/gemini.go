package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiClient calls the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, opts Options) (*GeminiClient, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if u := strings.TrimSpace(opts.BaseURL); u != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: u}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultGeminiModel
	}

	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Service() string { return ServiceGemini }

func (c *GeminiClient) Model() string { return c.model }

func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("validate request: %w", err)
	}

	contents, config := geminiParams(req)

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil {
		return "", ErrEmptyResponse
	}

	return result.Text(), nil
}

// geminiParams maps system messages onto the system instruction and the rest
// onto user contents.
func geminiParams(req Request) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens), //nolint:gosec // Bounded by prompt settings.
	}

	var (
		system   []string
		contents []*genai.Content
	)
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
	}

	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	return contents, config
}
