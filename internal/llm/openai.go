package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

type preset struct {
	baseURL string
	model   string
}

const (
	ServiceDeepSeek = "deepseek"
	ServiceZhipu    = "zhipu"
	ServiceQwen     = "qwen"
	ServiceOpenAI   = "openai"
	ServiceGemini   = "gemini"
)

//nolint:gochecknoglobals // Preset table meant to be immutable.
var presets = map[string]preset{
	ServiceDeepSeek: {baseURL: "https://api.deepseek.com", model: "deepseek-chat"},
	ServiceZhipu:    {baseURL: "https://open.bigmodel.cn/api/paas/v4/", model: "glm-4"},
	ServiceQwen:     {baseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1", model: "qwen-turbo"},
	ServiceOpenAI:   {model: "gpt-4o-mini"},
}

// OpenAIClient talks to any OpenAI-compatible Chat Completions endpoint.
type OpenAIClient struct {
	client  openai.Client
	service string
	baseURL string
	model   string
}

// NewOpenAIClient resolves the service preset and builds a client. Unknown
// services fall back to DeepSeek.
func NewOpenAIClient(opts Options, extra ...option.RequestOption) (*OpenAIClient, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("API key is empty")
	}

	service := strings.ToLower(strings.TrimSpace(opts.Service))
	p, ok := presets[service]
	if !ok {
		service = ServiceDeepSeek
		p = presets[ServiceDeepSeek]
	}

	baseURL := p.baseURL
	if u := strings.TrimSpace(opts.BaseURL); u != "" {
		baseURL = u
	}

	model := p.model
	if m := strings.TrimSpace(opts.Model); m != "" {
		model = m
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(baseURL))
	}
	reqOpts = append(reqOpts, extra...)

	return &OpenAIClient{
		client:  openai.NewClient(reqOpts...),
		service: service,
		baseURL: baseURL,
		model:   model,
	}, nil
}

func (c *OpenAIClient) Service() string { return c.service }

func (c *OpenAIClient) BaseURL() string { return c.baseURL }

func (c *OpenAIClient) Model() string { return c.model }

// Complete sends the messages and returns the first choice's content.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", fmt.Errorf("validate request: %w", err)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(req.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
